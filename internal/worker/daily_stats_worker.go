package worker

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	monitorsvc "douyin_monitor/internal/api/monitor/service"
	"douyin_monitor/internal/logger"
)

// DailyStatsWorker tổng hợp thống kê theo ngày cho từng task: số video mới,
// số bình luận mới và phân bố theo category. Mỗi lần chạy tính lại hôm nay
// và hôm qua (bản ghi gần nửa đêm rơi vào ngày cũ vẫn được đếm đủ); kết quả
// upsert theo (taskId, ngày) nên tính lại bao nhiêu lần cũng ra một bản ghi.
type DailyStatsWorker struct {
	taskService    *monitorsvc.MonitorTaskService
	videoService   *monitorsvc.DyVideoService
	commentService *monitorsvc.DyCommentService
	statService    *monitorsvc.MonitorStatService
	interval       time.Duration // Khoảng thời gian giữa các lần tổng hợp
}

// NewDailyStatsWorker tạo mới DailyStatsWorker.
// Tham số:
//   - interval: Khoảng thời gian giữa các lần tổng hợp (mặc định: 1 giờ)
func NewDailyStatsWorker(interval time.Duration) (*DailyStatsWorker, error) {
	taskService, err := monitorsvc.GetTaskService()
	if err != nil {
		return nil, err
	}
	videoService, err := monitorsvc.GetVideoService()
	if err != nil {
		return nil, err
	}
	commentService, err := monitorsvc.GetCommentService()
	if err != nil {
		return nil, err
	}
	statService, err := monitorsvc.GetStatService()
	if err != nil {
		return nil, err
	}
	if interval < time.Minute {
		interval = time.Hour
	}
	return &DailyStatsWorker{
		taskService:    taskService,
		videoService:   videoService,
		commentService: commentService,
		statService:    statService,
		interval:       interval,
	}, nil
}

// Start chạy worker trong vòng lặp: tổng hợp ngay một lần rồi lặp theo interval.
func (w *DailyStatsWorker) Start(ctx context.Context) {
	log := logger.GetAppLogger()

	log.WithFields(map[string]interface{}{
		"interval": w.interval.String(),
	}).Info("📊 [STATS] Starting Daily Stats Worker...")

	w.aggregate(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("📊 [STATS] Daily Stats Worker stopped")
			return
		case <-ticker.C:
			w.aggregate(ctx)
		}
	}
}

// aggregate tính lại thống kê hôm nay và hôm qua cho toàn bộ task.
func (w *DailyStatsWorker) aggregate(ctx context.Context) {
	log := logger.GetAppLogger()
	defer func() {
		if r := recover(); r != nil {
			log.WithFields(map[string]interface{}{
				"panic": r,
			}).Error("📊 [STATS] Panic khi tổng hợp thống kê, sẽ tiếp tục ở lần chạy tiếp theo")
		}
	}()

	tasks, err := w.taskService.Find(ctx, bson.M{}, nil)
	if err != nil {
		log.WithError(err).Error("📊 [STATS] Lỗi lấy danh sách task")
		return
	}
	if len(tasks) == 0 {
		return
	}

	today := startOfDay(time.Now())
	days := []time.Time{today.AddDate(0, 0, -1), today}

	updated := 0
	for _, task := range tasks {
		for _, day := range days {
			if err := w.aggregateDay(ctx, task.ID, day); err != nil {
				log.WithError(err).WithFields(map[string]interface{}{
					"taskId": task.ID.Hex(),
					"date":   day.Format("2006-01-02"),
				}).Warn("📊 [STATS] Tổng hợp thất bại, bỏ qua và sẽ thử lại lần sau")
				continue
			}
			updated++
		}
	}

	if updated > 0 {
		log.WithFields(map[string]interface{}{
			"tasks":   len(tasks),
			"records": updated,
		}).Info("📊 [STATS] Đã tổng hợp thống kê theo ngày")
	}
}

// aggregateDay tính thống kê của một task cho một ngày [00:00, 00:00 hôm sau)
// và upsert vào collection thống kê.
func (w *DailyStatsWorker) aggregateDay(ctx context.Context, taskID primitive.ObjectID, day time.Time) error {
	from := day.UnixMilli()
	to := day.AddDate(0, 0, 1).UnixMilli()
	date := day.Format("2006-01-02")

	newVideos, err := w.videoService.CountNewInRange(ctx, taskID, from, to)
	if err != nil {
		return err
	}
	newComments, err := w.commentService.CountNewInRange(ctx, taskID, from, to)
	if err != nil {
		return err
	}
	categoryCounts, err := w.commentService.CategoryCountsInRange(ctx, taskID, from, to)
	if err != nil {
		return err
	}

	_, err = w.statService.UpsertDailyStat(ctx, taskID, date, newVideos, newComments, categoryCounts)
	return err
}

// startOfDay trả về 00:00 local của t.
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
