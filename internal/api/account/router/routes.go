// Package router đăng ký các route thuộc domain tài khoản nguồn (DyAccount).
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	accounthdl "douyin_monitor/internal/api/account/handler"
	"douyin_monitor/internal/api/middleware"
	apirouter "douyin_monitor/internal/api/router"
)

// Register đăng ký tất cả route tài khoản lên v1.
// API tài khoản là read-only với pipeline; riêng upsert-session dành cho
// subsystem xác thực bên ngoài ghi trạng thái đăng nhập.
func Register(v1 fiber.Router, r *apirouter.Router) error {
	accountHandler, err := accounthdl.NewDyAccountHandler()
	if err != nil {
		return fmt.Errorf("create account handler: %w", err)
	}

	apiKeyMiddleware := middleware.ApiKeyMiddleware()
	apirouter.RegisterRouteWithMiddleware(v1, "/monitor/account", "GET", "/find-by-account-id/:accountId", []fiber.Handler{apiKeyMiddleware}, accountHandler.HandleFindOneByAccountID)
	apirouter.RegisterRouteWithMiddleware(v1, "/monitor/account", "POST", "/upsert-session", []fiber.Handler{apiKeyMiddleware}, accountHandler.HandleUpsertSession)
	r.RegisterCRUDRoutes(v1, "/monitor/account", accountHandler, apirouter.ReadOnlyConfig)

	return nil
}
