// Package source - Test adapter Douyin với server HTTP giả: parse HTML,
// phát hiện redirect đăng nhập và gợi ý cool-down khi bị rate limit.
package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"douyin_monitor/config"
	"douyin_monitor/internal/common"
)

const userPageHTML = `
<html><body>
<div class="video-item">
  <a href="/video/7301111111111111111?from=profile"></a>
  <span class="title">合同纠纷怎么处理</span>
  <span class="author">测试律师</span>
  <span class="play-count">1.2万</span>
  <span class="like-count">3千</span>
  <span class="comment-count">45</span>
</div>
<div class="video-item">
  <a href="/video/7302222222222222222"></a>
  <span class="title">劳动仲裁流程</span>
</div>
<div class="video-item">
  <!-- không có thẻ a: phải bị bỏ qua -->
  <span class="title">phần tử hỏng</span>
</div>
</body></html>`

const videoPageHTML = `
<html><body>
<div class="comment-item" data-id="c-100">
  <span class="comment-text">我想咨询合同的问题</span>
  <span class="author">用户甲</span>
  <span class="like-count">12</span>
</div>
<div class="comment-item" data-id="c-200">
  <span class="comment-text">谢谢分享</span>
</div>
<div class="comment-item">
  <span class="comment-text">không có data-id, phải bị bỏ qua</span>
</div>
<div class="comment-item" data-id="c-300">
  <span class="comment-text"></span>
</div>
</body></html>`

func newTestAdapter(baseURL string) *DouyinAdapter {
	return NewDouyinAdapter(&config.Configuration{
		Source_BaseURL:        baseURL,
		Source_RequestTimeout: 5,
		Source_UserAgent:      "test-agent",
	})
}

func TestListRecentVideos_ParseTrangCaNhan(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(userPageHTML))
	}))
	defer server.Close()

	adapter := newTestAdapter(server.URL)
	videos, err := adapter.ListRecentVideos(context.Background(), "acc-1", 10)
	if err != nil {
		t.Fatalf("ListRecentVideos lỗi: %v", err)
	}

	if len(videos) != 2 {
		t.Fatalf("phải parse được 2 video (phần tử hỏng bị bỏ qua), nhận được %d", len(videos))
	}
	first := videos[0]
	if first.ExternalID != "7301111111111111111" {
		t.Errorf("video id phải trích từ href và bỏ query string, nhận được %q", first.ExternalID)
	}
	if first.Title != "合同纠纷怎么处理" {
		t.Errorf("title không đúng: %q", first.Title)
	}
	if first.AuthorName != "测试律师" {
		t.Errorf("author không đúng: %q", first.AuthorName)
	}
	if first.ViewCount != 12000 {
		t.Errorf("1.2万 phải thành 12000, nhận được %d", first.ViewCount)
	}
	if first.LikeCount != 3000 {
		t.Errorf("3千 phải thành 3000, nhận được %d", first.LikeCount)
	}
	if first.CommentCount != 45 {
		t.Errorf("comment count phải là 45, nhận được %d", first.CommentCount)
	}
}

func TestListRecentVideos_GioiHanLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(userPageHTML))
	}))
	defer server.Close()

	adapter := newTestAdapter(server.URL)
	videos, err := adapter.ListRecentVideos(context.Background(), "acc-1", 1)
	if err != nil {
		t.Fatalf("ListRecentVideos lỗi: %v", err)
	}
	if len(videos) != 1 {
		t.Errorf("limit=1 phải trả về đúng 1 video, nhận được %d", len(videos))
	}
}

func TestListComments_BoQuaPhanTuThieuDataID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(videoPageHTML))
	}))
	defer server.Close()

	adapter := newTestAdapter(server.URL)
	comments, err := adapter.ListComments(context.Background(), "7301111111111111111")
	if err != nil {
		t.Fatalf("ListComments lỗi: %v", err)
	}

	// c-300 nội dung rỗng và phần tử thiếu data-id đều bị bỏ qua
	if len(comments) != 2 {
		t.Fatalf("phải parse được 2 bình luận hợp lệ, nhận được %d", len(comments))
	}
	if comments[0].ExternalID != "c-100" || comments[0].AuthorName != "用户甲" || comments[0].LikeCount != 12 {
		t.Errorf("bình luận đầu parse sai: %+v", comments[0])
	}
	if comments[1].AuthorName != "未知用户" {
		t.Errorf("bình luận không có author phải nhận tên mặc định, nhận được %q", comments[1].AuthorName)
	}
}

func TestFetchDocument_RedirectPassportLaLoginRequired(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/passport/login" {
			w.Write([]byte("<html>login</html>"))
			return
		}
		http.Redirect(w, r, "/passport/login", http.StatusFound)
	}))
	defer server.Close()

	adapter := newTestAdapter(server.URL)
	_, err := adapter.ListRecentVideos(context.Background(), "acc-1", 10)
	if !errors.Is(err, common.ErrLoginRequired) {
		t.Fatalf("redirect về trang passport phải trả về ErrLoginRequired, nhận được %v", err)
	}
}

func TestFetchDocument_RateLimitKemGoiYCooldown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "90")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	adapter := newTestAdapter(server.URL)
	_, err := adapter.ListRecentVideos(context.Background(), "acc-1", 10)
	if !errors.Is(err, common.ErrRateLimited) {
		t.Fatalf("status 429 phải trả về ErrRateLimited, nhận được %v", err)
	}
	if cooldown := common.RateLimitCooldown(err); cooldown != 90*time.Second {
		t.Errorf("gợi ý cool-down phải đọc từ Retry-After (90s), nhận được %s", cooldown)
	}
}

func TestFetchDocument_Status500LaLoiScraping(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	adapter := newTestAdapter(server.URL)
	_, err := adapter.ListRecentVideos(context.Background(), "acc-1", 10)
	if !errors.Is(err, common.ErrScraping) {
		t.Fatalf("status 500 phải trả về lỗi scraping, nhận được %v", err)
	}
}
