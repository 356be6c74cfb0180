package monitorsvc

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	monitormodels "douyin_monitor/internal/api/monitor/models"
	"douyin_monitor/internal/common"
	"douyin_monitor/internal/source"
)

// VideoStore là phần của DyVideoService mà pipeline cần — test dùng fake.
type VideoStore interface {
	FindOneByVideoID(ctx context.Context, videoID string) (monitormodels.DyVideo, error)
	InsertFromSource(ctx context.Context, taskID primitive.ObjectID, v source.Video) (monitormodels.DyVideo, bool, error)
	RefreshEngagement(ctx context.Context, id primitive.ObjectID, v source.Video) error
}

// CommentStore là phần của DyCommentService mà pipeline cần — test dùng fake.
type CommentStore interface {
	ExistsByCommentID(ctx context.Context, commentID string) (bool, error)
	InsertFromSource(ctx context.Context, taskID primitive.ObjectID, videoID *primitive.ObjectID, c source.Comment, result FilterResult) (bool, error)
}

// AccountChecker kiểm tra tài khoản còn session hợp lệ trước mỗi chu kỳ.
type AccountChecker interface {
	IsAuthenticated(ctx context.Context, accountID string) (bool, error)
}

// CycleResult là kết quả một chu kỳ thu thập. CycleID gắn vào mọi log của
// chu kỳ để truy vết. Chu kỳ lỗi giữa chừng vẫn trả về các bộ đếm đã tích lũy
// — scheduler dùng VideosSeen > 0 để nhận biết thành công một phần.
type CycleResult struct {
	CycleID         string
	VideosSeen      int // Video nguồn trả về trong chu kỳ
	VideosNew       int // Video lần đầu phát hiện
	CommentsSeen    int // Bình luận nguồn trả về
	CommentsNew     int // Bình luận mới thu nhận
	CommentsSkipped int // Bình luận bị lọc hoặc đã tồn tại
}

// MonitorIngestService thực thi một chu kỳ thu thập cho một task:
// pre-check session → lấy video → upsert theo external id → lấy và lọc
// bình luận → ghi bản ghi mới. Chạy lại trên cùng dữ liệu nguồn không tạo
// thêm bản ghi nào (idempotent theo external id).
type MonitorIngestService struct {
	adapter  source.Adapter
	videos   VideoStore
	comments CommentStore
	accounts AccountChecker

	fetchDelay time.Duration // Khoảng nghỉ giữa 2 video liên tiếp

	// sleep có thể thay trong test để không chờ thật
	sleep func(ctx context.Context, d time.Duration) error
}

// NewMonitorIngestService tạo pipeline với các dependency đã nối sẵn.
// fetchDelay ≤ 0 dùng mặc định 6 giây.
func NewMonitorIngestService(adapter source.Adapter, videos VideoStore, comments CommentStore, accounts AccountChecker, fetchDelay time.Duration) *MonitorIngestService {
	if fetchDelay <= 0 {
		fetchDelay = 6 * time.Second
	}
	return &MonitorIngestService{
		adapter:    adapter,
		videos:     videos,
		comments:   comments,
		accounts:   accounts,
		fetchDelay: fetchDelay,
		sleep:      sleepCtx,
	}
}

// FilterConfigFromTask trích cấu hình lọc từ task.
func FilterConfigFromTask(task *monitormodels.MonitorTask) FilterConfig {
	return FilterConfig{
		MinLength:       task.MinCommentLength,
		MaxLength:       task.MaxCommentLength,
		FilterSpam:      task.FilterSpam,
		Keywords:        task.Keywords,
		ExcludeKeywords: task.ExcludeKeywords,
	}
}

// RunCycle chạy một chu kỳ thu thập cho task.
// Lỗi adapter/hệ thống propagate nguyên phân loại (LoginRequired, RateLimited,
// Scraping, lỗi DB); lỗi phân tích từng bản ghi chỉ log và bỏ qua bản ghi đó.
func (s *MonitorIngestService) RunCycle(ctx context.Context, task *monitormodels.MonitorTask) (CycleResult, error) {
	result := CycleResult{CycleID: uuid.NewString()}
	log := logrus.WithFields(logrus.Fields{
		"cycleId":  result.CycleID,
		"taskId":   task.ID.Hex(),
		"taskName": task.TaskName,
	})

	if !task.MonitorVideos {
		// Không giám sát video thì chu kỳ không có gì để làm
		log.Debug("🔍 [MONITOR] Task không bật giám sát video, bỏ qua chu kỳ")
		return result, nil
	}

	// Pre-check session trước khi chạm vào nguồn
	authenticated, err := s.accounts.IsAuthenticated(ctx, task.AccountID)
	if err != nil {
		return result, err
	}
	if !authenticated {
		return result, common.ErrLoginRequired
	}

	budget := task.MaxVideosPerCheck
	if budget <= 0 {
		budget = monitormodels.DefaultVideosPerCheck
	}

	videos, err := s.adapter.ListRecentVideos(ctx, task.AccountID, budget)
	if err != nil {
		return result, err
	}

	filterCfg := FilterConfigFromTask(task)

	for i, v := range videos {
		if i >= budget {
			break
		}
		result.VideosSeen++

		record, isNew, err := s.upsertVideo(ctx, task.ID, v)
		if err != nil {
			return result, err
		}
		if isNew {
			result.VideosNew++
		}

		if task.MonitorComments {
			if err := s.ingestComments(ctx, task, record.ID, v.ExternalID, filterCfg, &result); err != nil {
				return result, err
			}
		}

		// Khoảng nghỉ giữa các video để tránh request quá dày — có thể hủy
		if i < len(videos)-1 && i < budget-1 {
			if err := s.sleep(ctx, s.fetchDelay); err != nil {
				return result, err
			}
		}
	}

	log.WithFields(logrus.Fields{
		"videosSeen":      result.VideosSeen,
		"videosNew":       result.VideosNew,
		"commentsSeen":    result.CommentsSeen,
		"commentsNew":     result.CommentsNew,
		"commentsSkipped": result.CommentsSkipped,
	}).Info("🔍 [MONITOR] Hoàn thành chu kỳ thu thập")

	return result, nil
}

// upsertVideo tìm bản ghi video theo external id; đã có thì làm mới chỉ số
// tương tác, chưa có thì tạo mới. Duplicate-key khi insert (2 chu kỳ chồng
// lấn) không coi là lỗi.
func (s *MonitorIngestService) upsertVideo(ctx context.Context, taskID primitive.ObjectID, v source.Video) (monitormodels.DyVideo, bool, error) {
	existing, err := s.videos.FindOneByVideoID(ctx, v.ExternalID)
	if err == nil {
		if refreshErr := s.videos.RefreshEngagement(ctx, existing.ID, v); refreshErr != nil {
			// Làm mới chỉ số là best-effort — không làm hỏng chu kỳ
			logrus.WithFields(logrus.Fields{
				"videoId": v.ExternalID,
				"error":   refreshErr,
			}).Warn("🔍 [MONITOR] Không làm mới được chỉ số tương tác video")
		}
		return existing, false, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return monitormodels.DyVideo{}, false, err
	}

	return s.videos.InsertFromSource(ctx, taskID, v)
}

// ingestComments lấy, lọc và ghi bình luận của một video.
func (s *MonitorIngestService) ingestComments(ctx context.Context, task *monitormodels.MonitorTask, videoRecordID primitive.ObjectID, videoExternalID string, filterCfg FilterConfig, result *CycleResult) error {
	comments, err := s.adapter.ListComments(ctx, videoExternalID)
	if err != nil {
		return err
	}

	for _, c := range comments {
		result.CommentsSeen++

		evaluation := EvaluateComment(c.Content, filterCfg)
		if !evaluation.Accept {
			result.CommentsSkipped++
			continue
		}

		exists, err := s.comments.ExistsByCommentID(ctx, c.ExternalID)
		if err != nil {
			return err
		}
		if exists {
			result.CommentsSkipped++
			continue
		}

		videoID := videoRecordID
		inserted, err := s.comments.InsertFromSource(ctx, task.ID, &videoID, c, evaluation)
		if err != nil {
			return err
		}
		if inserted {
			result.CommentsNew++
		} else {
			// Chu kỳ khác vừa ghi trước — unique index chặn, coi là skip
			result.CommentsSkipped++
		}
	}
	return nil
}

// sleepCtx ngủ d hoặc trả lỗi ngay khi context bị hủy.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
