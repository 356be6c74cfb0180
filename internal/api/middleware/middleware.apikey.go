package middleware

import (
	"crypto/subtle"
	"strings"

	"douyin_monitor/internal/common"
	"douyin_monitor/internal/global"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
)

// ApiKeyMiddleware xác thực request bằng API key tĩnh cấu hình trong env (API_KEY).
// Key được truyền qua header X-API-Key hoặc Authorization: Bearer <key>.
// Nếu API_KEY không được cấu hình thì bỏ qua xác thực (chế độ dev / mạng nội bộ).
func ApiKeyMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		expected := ""
		if global.MongoDB_ServerConfig != nil {
			expected = global.MongoDB_ServerConfig.ApiKey
		}
		if expected == "" {
			// Không cấu hình key thì cho qua
			return c.Next()
		}

		key := c.Get("X-API-Key")
		if key == "" {
			auth := c.Get("Authorization")
			if strings.HasPrefix(auth, "Bearer ") {
				key = strings.TrimPrefix(auth, "Bearer ")
			}
		}

		if key == "" || subtle.ConstantTimeCompare([]byte(key), []byte(expected)) != 1 {
			logrus.WithFields(logrus.Fields{
				"path":   c.Path(),
				"method": c.Method(),
				"ip":     c.IP(),
			}).Warn("🔒 [AUTH] Request bị từ chối: API key không hợp lệ")

			HandleErrorResponse(c, common.NewError(
				common.ErrCodeAuthToken,
				common.MsgUnauthorized,
				common.StatusUnauthorized,
				nil,
			))
			return nil
		}

		return c.Next()
	}
}
