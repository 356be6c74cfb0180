package monitorsvc

import (
	"fmt"
	"time"

	"douyin_monitor/config"
	accountsvc "douyin_monitor/internal/api/account/service"
	"douyin_monitor/internal/source"
)

// Các service giám sát dùng chung một đồ thị dependency (adapter nguồn,
// alerter, registry loop) nên được dựng một lần lúc khởi động và chia sẻ
// qua package-level instance — handler và worker lấy qua Get*.
var (
	taskService    *MonitorTaskService
	videoService   *DyVideoService
	commentService *DyCommentService
	statService    *MonitorStatService
)

// Init dựng toàn bộ đồ thị service giám sát. Gọi một lần trong cmd/server
// sau khi registry collection đã sẵn sàng.
func Init(cfg *config.Configuration, adapter source.Adapter, alerter Alerter) error {
	accounts, err := accountsvc.NewDyAccountService()
	if err != nil {
		return fmt.Errorf("init monitor services: %w", err)
	}
	videos, err := NewDyVideoService()
	if err != nil {
		return fmt.Errorf("init monitor services: %w", err)
	}
	comments, err := NewDyCommentService()
	if err != nil {
		return fmt.Errorf("init monitor services: %w", err)
	}
	stats, err := NewMonitorStatService()
	if err != nil {
		return fmt.Errorf("init monitor services: %w", err)
	}

	ingest := NewMonitorIngestService(adapter, videos, comments, accounts,
		time.Duration(cfg.Monitor_FetchDelay)*time.Second)

	tasks, err := NewMonitorTaskService(cfg, ingest, alerter, accounts, videos, comments, stats)
	if err != nil {
		return fmt.Errorf("init monitor services: %w", err)
	}

	videoService = videos
	commentService = comments
	statService = stats
	taskService = tasks
	return nil
}

// GetTaskService trả về MonitorTaskService dùng chung.
func GetTaskService() (*MonitorTaskService, error) {
	if taskService == nil {
		return nil, fmt.Errorf("monitor services chưa được khởi tạo")
	}
	return taskService, nil
}

// GetVideoService trả về DyVideoService dùng chung.
func GetVideoService() (*DyVideoService, error) {
	if videoService == nil {
		return nil, fmt.Errorf("monitor services chưa được khởi tạo")
	}
	return videoService, nil
}

// GetCommentService trả về DyCommentService dùng chung.
func GetCommentService() (*DyCommentService, error) {
	if commentService == nil {
		return nil, fmt.Errorf("monitor services chưa được khởi tạo")
	}
	return commentService, nil
}

// GetStatService trả về MonitorStatService dùng chung.
func GetStatService() (*MonitorStatService, error) {
	if statService == nil {
		return nil, fmt.Errorf("monitor services chưa được khởi tạo")
	}
	return statService, nil
}
