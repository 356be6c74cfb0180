package main

import (
	"context"

	"github.com/sirupsen/logrus"

	"douyin_monitor/config"
	accountmodels "douyin_monitor/internal/api/account/models"
	monitormodels "douyin_monitor/internal/api/monitor/models"
	monitorsvc "douyin_monitor/internal/api/monitor/service"
	"douyin_monitor/internal/alert"
	"douyin_monitor/internal/database"
	"douyin_monitor/internal/global"
	"douyin_monitor/internal/source"
)

// Hàm khởi tạo các biến toàn cục
func InitGlobal() {
	initColNames()         // Khởi tạo tên các collection trong database
	initValidator()        // Khởi tạo validator
	initConfig()           // Khởi tạo cấu hình server
	initDatabase_MongoDB() // Khởi tạo kết nối database
}

// Hàm khởi tạo tên các collection trong database
func initColNames() {
	global.MongoDB_ColNames.MonitorTasks = "monitor_tasks"
	global.MongoDB_ColNames.MonitorVideos = "monitor_videos"
	global.MongoDB_ColNames.MonitorComments = "monitor_comments"
	global.MongoDB_ColNames.MonitorAccounts = "monitor_accounts"
	global.MongoDB_ColNames.MonitorStats = "monitor_stats_daily"

	logrus.Info("Initialized collection names") // Ghi log thông báo đã khởi tạo tên các collection
}

// Hàm khởi tạo validator (dùng global.InitValidator để đăng ký custom validators: no_xss, exists, ...)
func initValidator() {
	global.InitValidator()
	logrus.Info("Initialized validator") // Ghi log thông báo đã khởi tạo validator
}

// Hàm khởi tạo cấu hình server
func initConfig() {
	global.MongoDB_ServerConfig = config.NewConfig()
	if global.MongoDB_ServerConfig == nil {
		logrus.Fatalf("Failed to initialize config: config is nil") // Ghi log lỗi nếu khởi tạo cấu hình thất bại
	}
	logrus.Info("Initialized server config") // Ghi log thông báo đã khởi tạo cấu hình server
}

// Hàm khởi tạo kết nối database
func initDatabase_MongoDB() {
	var err error
	global.MongoDB_Session, err = database.GetInstance(global.MongoDB_ServerConfig)
	if err != nil {
		logrus.Fatalf("Failed to get database instance: %v", err) // Ghi log lỗi nếu kết nối database thất bại
	}
	logrus.Info("Connected to MongoDB") // Ghi log thông báo đã kết nối database thành công

	// Khởi tạo các db và collections nếu chưa có
	database.EnsureDatabaseAndCollections(global.MongoDB_Session)
	logrus.Info("Ensured database and collections") // Ghi log thông báo đã đảm bảo database và các collection

	// Khơi tạo các index cho các collection
	dbName := global.MongoDB_ServerConfig.MongoDB_DBName
	database.CreateIndexes(context.TODO(), global.MongoDB_Session.Database(dbName).Collection(global.MongoDB_ColNames.MonitorTasks), monitormodels.MonitorTask{})
	database.CreateIndexes(context.TODO(), global.MongoDB_Session.Database(dbName).Collection(global.MongoDB_ColNames.MonitorVideos), monitormodels.DyVideo{})
	database.CreateIndexes(context.TODO(), global.MongoDB_Session.Database(dbName).Collection(global.MongoDB_ColNames.MonitorComments), monitormodels.DyComment{})
	database.CreateIndexes(context.TODO(), global.MongoDB_Session.Database(dbName).Collection(global.MongoDB_ColNames.MonitorAccounts), accountmodels.DyAccount{})
	database.CreateIndexes(context.TODO(), global.MongoDB_Session.Database(dbName).Collection(global.MongoDB_ColNames.MonitorStats), monitormodels.MonitorDailyStat{})
}

// InitMonitorServices dựng đồ thị service giám sát (adapter nguồn, kênh cảnh
// báo, các service domain). Gọi sau khi registry collection đã sẵn sàng.
func InitMonitorServices() {
	cfg := global.MongoDB_ServerConfig
	adapter := source.NewDouyinAdapter(cfg)
	alerter := alert.NewAlertService(cfg)

	if err := monitorsvc.Init(cfg, adapter, alerter); err != nil {
		logrus.Fatalf("Failed to initialize monitor services: %v", err)
	}
	logrus.Info("Initialized monitor services")
}
