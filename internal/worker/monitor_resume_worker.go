package worker

import (
	"context"
	"time"

	monitorsvc "douyin_monitor/internal/api/monitor/service"
	"douyin_monitor/internal/logger"
)

// MonitorResumeWorker khôi phục vòng lặp giám sát cho các task đang active
// trong DB: chạy một lần ngay khi service khởi động (task active trước khi
// restart tiếp tục được giám sát) rồi định kỳ đối soát lại — loop chết vì
// lý do bất thường sẽ được dựng lại ở lần đối soát kế tiếp.
type MonitorResumeWorker struct {
	taskService *monitorsvc.MonitorTaskService
	interval    time.Duration // Khoảng thời gian giữa các lần đối soát
}

// NewMonitorResumeWorker tạo mới MonitorResumeWorker.
// Tham số:
//   - interval: Khoảng thời gian giữa các lần đối soát (mặc định: 5 phút)
func NewMonitorResumeWorker(interval time.Duration) (*MonitorResumeWorker, error) {
	taskService, err := monitorsvc.GetTaskService()
	if err != nil {
		return nil, err
	}
	if interval < time.Minute {
		interval = 5 * time.Minute
	}
	return &MonitorResumeWorker{
		taskService: taskService,
		interval:    interval,
	}, nil
}

// Start chạy worker: khôi phục ngay một lần rồi lặp theo interval.
// ResumeActiveTasks idempotent (task đã có loop bị bỏ qua) nên gọi lặp an toàn.
func (w *MonitorResumeWorker) Start(ctx context.Context) {
	log := logger.GetAppLogger()

	log.WithFields(map[string]interface{}{
		"interval": w.interval.String(),
	}).Info("🔄 [RESUME] Starting Monitor Resume Worker...")

	w.resume(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("🔄 [RESUME] Monitor Resume Worker stopped")
			return
		case <-ticker.C:
			w.resume(ctx)
		}
	}
}

func (w *MonitorResumeWorker) resume(ctx context.Context) {
	log := logger.GetAppLogger()
	defer func() {
		if r := recover(); r != nil {
			log.WithFields(map[string]interface{}{
				"panic": r,
			}).Error("🔄 [RESUME] Panic khi khôi phục task, sẽ thử lại ở lần đối soát tiếp theo")
		}
	}()

	resumed, err := w.taskService.ResumeActiveTasks(ctx)
	if err != nil {
		log.WithError(err).Error("🔄 [RESUME] Lỗi khôi phục các task active")
		return
	}
	if resumed > 0 {
		log.WithFields(map[string]interface{}{
			"resumed": resumed,
		}).Info("🔄 [RESUME] Đã khôi phục loop giám sát")
	}
}
