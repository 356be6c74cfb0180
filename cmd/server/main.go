package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"

	monitorsvc "douyin_monitor/internal/api/monitor/service"
	"douyin_monitor/internal/database"
	"douyin_monitor/internal/global"
	"douyin_monitor/internal/logger"
	"douyin_monitor/internal/worker"
)

// initLogger khởi tạo và cấu hình logger cho toàn bộ ứng dụng
func initLogger() {
	// Khởi tạo logger với cấu hình mặc định
	// Logger sẽ tự động đọc environment variables để cấu hình
	if err := logger.Init(nil); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	// Log thông tin khởi tạo bằng logger mới
	log := logger.GetAppLogger()
	log.Info("Logger system initialized successfully")
}

// startWorkers khởi động các background worker: khôi phục loop giám sát và
// tổng hợp thống kê theo ngày. Mỗi worker chạy trong goroutine riêng với
// recover để một worker chết không kéo theo server.
func startWorkers(ctx context.Context) {
	log := logger.GetAppLogger()

	if global.MongoDB_ServerConfig.Monitor_ResumeOnStartup {
		resumeWorker, err := worker.NewMonitorResumeWorker(5 * time.Minute)
		if err != nil {
			log.WithError(err).Error("Failed to create monitor resume worker, continuing without it")
		} else {
			go func() {
				defer func() {
					if r := recover(); r != nil {
						log.WithFields(map[string]interface{}{
							"panic": r,
						}).Error("🔄 [RESUME] Worker goroutine panic")
					}
				}()
				resumeWorker.Start(ctx)
			}()
		}
	} else {
		log.Info("🔄 [RESUME] Monitor resume disabled by config")
	}

	statsWorker, err := worker.NewDailyStatsWorker(time.Hour)
	if err != nil {
		log.WithError(err).Error("Failed to create daily stats worker, continuing without it")
	} else {
		go func() {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(map[string]interface{}{
						"panic": r,
					}).Error("📊 [STATS] Worker goroutine panic")
				}
			}()
			statsWorker.Start(ctx)
		}()
	}
}

// main_thread khởi tạo và chạy Fiber server
func main_thread(app *fiber.App) {
	cfg := global.MongoDB_ServerConfig
	address := cfg.Address

	log := logger.GetAppLogger()
	log.WithFields(map[string]interface{}{
		"address":  address,
		"protocol": "HTTP",
	}).Info("Starting Fiber server...")

	listenConfig := fiber.ListenConfig{}
	if err := app.Listen(address, listenConfig); err != nil {
		log.Fatalf("Error in Fiber Listen: %v", err)
	}
}

// Hàm main
func main() {
	// Khởi tạo logger
	initLogger()

	// Khởi tạo các biến toàn cục
	InitGlobal()

	// Khởi tạo registry
	InitRegistry()

	// Khởi tạo đồ thị service giám sát
	InitMonitorServices()

	log := logger.GetAppLogger()

	// Context chung cho các background worker, hủy khi shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	startWorkers(ctx)

	// Khởi tạo Fiber app
	app := InitFiberApp()

	// Graceful shutdown: nhận SIGINT/SIGTERM → dừng HTTP server, hủy worker,
	// chờ các loop giám sát thoát rồi đóng kết nối DB
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		log.WithFields(map[string]interface{}{
			"signal": sig.String(),
		}).Info("Received shutdown signal, stopping...")

		cancel()

		if taskService, err := monitorsvc.GetTaskService(); err == nil {
			taskService.Shutdown()
			log.Info("All monitor loops stopped")
		}

		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.WithError(err).Error("Error during server shutdown")
		}

		if err := database.CloseInstance(global.MongoDB_Session); err != nil {
			log.WithError(err).Error("Error closing MongoDB connection")
		}
	}()

	// Chạy Fiber server trên main thread
	main_thread(app)

	log.Info("Server stopped")
}
