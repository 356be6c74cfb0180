package source

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"douyin_monitor/config"
	"douyin_monitor/internal/common"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
)

// DouyinAdapter lấy video và bình luận từ trang web Douyin bằng HTTP + goquery.
// Trang yêu cầu session đăng nhập: khi nguồn redirect về trang passport
// thì adapter trả ErrLoginRequired để pipeline dừng chu kỳ.
type DouyinAdapter struct {
	client    *http.Client
	baseURL   string
	userAgent string
}

// NewDouyinAdapter khởi tạo adapter với timeout và base URL từ cấu hình.
func NewDouyinAdapter(cfg *config.Configuration) *DouyinAdapter {
	timeout := 30 * time.Second
	baseURL := "https://www.douyin.com"
	userAgent := ""
	if cfg != nil {
		if cfg.Source_RequestTimeout > 0 {
			timeout = time.Duration(cfg.Source_RequestTimeout) * time.Second
		}
		if cfg.Source_BaseURL != "" {
			baseURL = cfg.Source_BaseURL
		}
		userAgent = cfg.Source_UserAgent
	}
	return &DouyinAdapter{
		client:    &http.Client{Timeout: timeout},
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		userAgent: userAgent,
	}
}

// ListRecentVideos lấy tối đa limit video mới nhất trên trang cá nhân của account.
func (a *DouyinAdapter) ListRecentVideos(ctx context.Context, accountID string, limit int) ([]Video, error) {
	pageURL := fmt.Sprintf("%s/user/%s", a.baseURL, accountID)
	doc, err := a.fetchDocument(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	videos := make([]Video, 0, limit)
	doc.Find(".video-item, .aweme-item").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if limit > 0 && len(videos) >= limit {
			return false
		}

		href, ok := s.Find("a").First().Attr("href")
		if !ok || href == "" {
			return true
		}
		if !strings.HasPrefix(href, "http") {
			href = a.baseURL + href
		}

		videoID := ExtractVideoID(href)
		if videoID == "" {
			logrus.WithFields(logrus.Fields{
				"url": href,
			}).Debug("🔍 [SOURCE] Bỏ qua phần tử video không trích được id")
			return true
		}

		videos = append(videos, Video{
			ExternalID:   videoID,
			URL:          href,
			Title:        strings.TrimSpace(s.Find(".title, .desc").First().Text()),
			AuthorName:   strings.TrimSpace(s.Find(".author, .nickname").First().Text()),
			ViewCount:    ParseCount(s.Find(".play-count, .view-count").First().Text()),
			LikeCount:    ParseCount(s.Find(".like-count, .digg-count").First().Text()),
			CommentCount: ParseCount(s.Find(".comment-count").First().Text()),
			ShareCount:   ParseCount(s.Find(".share-count").First().Text()),
		})
		return true
	})

	return videos, nil
}

// ListComments lấy các bình luận hiện có trên trang video.
// Phần tử không có data-id bị bỏ qua: id ổn định phía nguồn là điều kiện
// để pipeline đảm bảo idempotency giữa các chu kỳ.
func (a *DouyinAdapter) ListComments(ctx context.Context, videoExternalID string) ([]Comment, error) {
	pageURL := fmt.Sprintf("%s/video/%s", a.baseURL, videoExternalID)
	doc, err := a.fetchDocument(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	var comments []Comment
	doc.Find(".comment-item, .comment").Each(func(i int, s *goquery.Selection) {
		commentID, ok := s.Attr("data-id")
		if !ok || strings.TrimSpace(commentID) == "" {
			return
		}

		content := strings.TrimSpace(s.Find(".comment-text, .content").First().Text())
		if content == "" {
			return
		}

		author := strings.TrimSpace(s.Find(".author, .username").First().Text())
		if author == "" {
			author = "未知用户"
		}

		comments = append(comments, Comment{
			ExternalID: strings.TrimSpace(commentID),
			Content:    content,
			AuthorName: author,
			LikeCount:  ParseCount(s.Find(".like-count, .digg-count").First().Text()),
		})
	})

	return comments, nil
}

// fetchDocument tải và parse một trang HTML, chuẩn hóa lỗi theo phân loại nguồn.
func (a *DouyinAdapter) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, common.NewError(common.ErrCodeSourceScraping, fmt.Sprintf("Lỗi tạo request tới nguồn: %v", err), common.StatusBadGateway, err)
	}
	if a.userAgent != "" {
		req.Header.Set("User-Agent", a.userAgent)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		// Timeout và lỗi mạng đều là lỗi tạm thời — scheduler sẽ thử lại
		return nil, common.NewError(common.ErrCodeSourceScraping, fmt.Sprintf("Lỗi request tới nguồn: %v", err), common.StatusBadGateway, err)
	}
	defer resp.Body.Close()

	// Redirect về trang đăng nhập: session hết hạn
	if resp.Request != nil && resp.Request.URL != nil && strings.Contains(resp.Request.URL.String(), "passport") {
		return nil, common.ErrLoginRequired
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, common.NewRateLimited(retryAfter(resp))
	}

	if resp.StatusCode != http.StatusOK {
		return nil, common.NewError(common.ErrCodeSourceScraping, fmt.Sprintf("Nguồn trả về status %s", resp.Status), common.StatusBadGateway, nil)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, common.NewError(common.ErrCodeSourceScraping, fmt.Sprintf("Lỗi parse HTML từ nguồn: %v", err), common.StatusBadGateway, err)
	}
	return doc, nil
}

// retryAfter đọc header Retry-After (giây) làm gợi ý cool-down. 0 nếu không có.
func retryAfter(resp *http.Response) time.Duration {
	v := resp.Header.Get("Retry-After")
	if v == "" {
		return 0
	}
	seconds, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil || seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
