package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// TelegramChannel gửi cảnh báo qua Telegram Bot API (sendMessage).
type TelegramChannel struct {
	botToken string
	chatIDs  []string
	client   *http.Client
}

// NewTelegramChannel tạo kênh Telegram. Trả về nil khi chưa cấu hình bot
// token hoặc chat id — caller bỏ qua kênh nil.
func NewTelegramChannel(botToken string, chatIDs []string) *TelegramChannel {
	if botToken == "" || len(chatIDs) == 0 {
		return nil
	}
	return &TelegramChannel{
		botToken: botToken,
		chatIDs:  chatIDs,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Send gửi message tới toàn bộ chat IDs đã cấu hình. Gửi lỗi ở một chat
// không chặn các chat còn lại; trả về lỗi cuối cùng gặp phải.
func (t *TelegramChannel) Send(ctx context.Context, message string) error {
	var lastErr error
	for _, chatID := range t.chatIDs {
		if err := t.sendOne(ctx, chatID, message); err != nil {
			logrus.WithFields(logrus.Fields{
				"chatID": chatID,
				"error":  err,
			}).Error("📱 [TELEGRAM] Lỗi khi gửi cảnh báo Telegram")
			lastErr = err
		}
	}
	return lastErr
}

func (t *TelegramChannel) sendOne(ctx context.Context, chatID, message string) error {
	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", t.botToken)

	payload := map[string]interface{}{
		"chat_id": chatID,
		"text":    message,
	}
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("telegram API returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	logrus.WithField("chatID", chatID).Info("📱 [TELEGRAM] Gửi cảnh báo Telegram thành công")
	return nil
}
