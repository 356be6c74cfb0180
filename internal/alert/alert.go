package alert

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"douyin_monitor/config"
	monitormodels "douyin_monitor/internal/api/monitor/models"
)

// AlertService gửi cảnh báo vận hành ra các kênh đã cấu hình (Telegram,
// email). Kênh chưa cấu hình bị bỏ qua; không có kênh nào thì cảnh báo chỉ
// ghi log. Gửi cảnh báo là best-effort — lỗi gửi không bao giờ propagate
// ngược vào luồng giám sát.
type AlertService struct {
	telegram *TelegramChannel
	email    *EmailChannel
}

// NewAlertService dựng AlertService từ cấu hình. Danh sách chat id và email
// nhận phân cách bằng dấu phẩy.
func NewAlertService(cfg *config.Configuration) *AlertService {
	return &AlertService{
		telegram: NewTelegramChannel(cfg.TelegramBotToken, splitList(cfg.TelegramChatIDs)),
		email:    NewEmailChannel(cfg.SMTP_Host, cfg.SMTP_Port, cfg.SMTP_User, cfg.SMTP_Password, splitList(cfg.Alert_EmailTo)),
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// NotifyTaskError thông báo một task giám sát đã chuyển sang trạng thái error.
func (a *AlertService) NotifyTaskError(ctx context.Context, task *monitormodels.MonitorTask, lastError string) {
	subject := fmt.Sprintf("[douyin_monitor] Task '%s' đã chuyển sang trạng thái error", task.TaskName)
	body := fmt.Sprintf(
		"Task: %s\nTask ID: %s\nTài khoản: %s\nThời điểm: %s\nNguyên nhân: %s\n\nTask đã dừng giám sát, cần kiểm tra và start lại.",
		task.TaskName, task.ID.Hex(), task.AccountID,
		time.Now().Format(time.RFC3339), lastError)

	a.send(ctx, subject, body)
}

// NotifyLoginRequired thông báo tài khoản mất session, các task phụ thuộc
// không thu thập được cho tới khi đăng nhập lại.
func (a *AlertService) NotifyLoginRequired(ctx context.Context, accountID string) {
	subject := fmt.Sprintf("[douyin_monitor] Tài khoản %s cần đăng nhập lại", accountID)
	body := fmt.Sprintf(
		"Tài khoản: %s\nThời điểm: %s\n\nSession không còn hợp lệ, các task giám sát của tài khoản này sẽ lỗi cho tới khi đăng nhập lại.",
		accountID, time.Now().Format(time.RFC3339))

	a.send(ctx, subject, body)
}

func (a *AlertService) send(ctx context.Context, subject, body string) {
	log := logrus.WithField("subject", subject)
	log.Warn("🔔 [ALERT] " + subject)

	if a.telegram != nil {
		if err := a.telegram.Send(ctx, subject+"\n\n"+body); err != nil {
			log.WithField("error", err).Error("🔔 [ALERT] Kênh Telegram gửi lỗi")
		}
	}
	if a.email != nil {
		if err := a.email.Send(ctx, subject, body); err != nil {
			log.WithField("error", err).Error("🔔 [ALERT] Kênh email gửi lỗi")
		}
	}
}
