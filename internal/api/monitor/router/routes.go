// Package router đăng ký các route thuộc domain giám sát (task, video,
// bình luận, thống kê).
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	"douyin_monitor/internal/api/middleware"
	monitorhdl "douyin_monitor/internal/api/monitor/handler"
	apirouter "douyin_monitor/internal/api/router"
)

// Register đăng ký tất cả route giám sát lên v1.
// Task có các route vòng đời riêng (create/update/start/stop/delete/statistics)
// vì chúng đụng vào loop đang chạy; video, bình luận và thống kê là dữ liệu
// pipeline ghi nên chỉ mở đọc, cộng hai thao tác đánh dấu trên bình luận.
func Register(v1 fiber.Router, r *apirouter.Router) error {
	taskHandler, err := monitorhdl.NewMonitorTaskHandler()
	if err != nil {
		return fmt.Errorf("create task handler: %w", err)
	}
	videoHandler, err := monitorhdl.NewDyVideoHandler()
	if err != nil {
		return fmt.Errorf("create video handler: %w", err)
	}
	commentHandler, err := monitorhdl.NewDyCommentHandler()
	if err != nil {
		return fmt.Errorf("create comment handler: %w", err)
	}
	statHandler, err := monitorhdl.NewMonitorStatHandler()
	if err != nil {
		return fmt.Errorf("create stat handler: %w", err)
	}

	apiKey := middleware.ApiKeyMiddleware()

	// Vòng đời task
	apirouter.RegisterRouteWithMiddleware(v1, "/monitor/task", "POST", "/create", []fiber.Handler{apiKey}, taskHandler.HandleCreate)
	apirouter.RegisterRouteWithMiddleware(v1, "/monitor/task", "PUT", "/update/:id", []fiber.Handler{apiKey}, taskHandler.HandleUpdate)
	apirouter.RegisterRouteWithMiddleware(v1, "/monitor/task", "POST", "/start/:id", []fiber.Handler{apiKey}, taskHandler.HandleStart)
	apirouter.RegisterRouteWithMiddleware(v1, "/monitor/task", "POST", "/stop/:id", []fiber.Handler{apiKey}, taskHandler.HandleStop)
	apirouter.RegisterRouteWithMiddleware(v1, "/monitor/task", "DELETE", "/delete/:id", []fiber.Handler{apiKey}, taskHandler.HandleDelete)
	apirouter.RegisterRouteWithMiddleware(v1, "/monitor/task", "GET", "/statistics/:id", []fiber.Handler{apiKey}, taskHandler.HandleStatistics)
	r.RegisterCRUDRoutes(v1, "/monitor/task", taskHandler, apirouter.ReadOnlyConfig)

	// Dữ liệu pipeline thu thập
	r.RegisterCRUDRoutes(v1, "/monitor/video", videoHandler, apirouter.ReadOnlyConfig)

	apirouter.RegisterRouteWithMiddleware(v1, "/monitor/comment", "POST", "/mark-replied/:id", []fiber.Handler{apiKey}, commentHandler.HandleMarkReplied)
	apirouter.RegisterRouteWithMiddleware(v1, "/monitor/comment", "POST", "/mark-processed/:id", []fiber.Handler{apiKey}, commentHandler.HandleMarkProcessed)
	r.RegisterCRUDRoutes(v1, "/monitor/comment", commentHandler, apirouter.ReadOnlyConfig)

	// Thống kê theo ngày
	apirouter.RegisterRouteWithMiddleware(v1, "/monitor/stat", "GET", "/daily/:taskId", []fiber.Handler{apiKey}, statHandler.HandleFindDailyRange)
	r.RegisterCRUDRoutes(v1, "/monitor/stat", statHandler, apirouter.ReadOnlyConfig)

	return nil
}
