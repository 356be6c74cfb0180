package alert

import (
	"context"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

// EmailChannel gửi cảnh báo qua SMTP.
type EmailChannel struct {
	host       string
	port       int
	username   string
	password   string
	recipients []string
}

// NewEmailChannel tạo kênh email. Trả về nil khi chưa cấu hình SMTP host
// hoặc danh sách người nhận — caller bỏ qua kênh nil.
func NewEmailChannel(host string, port int, username, password string, recipients []string) *EmailChannel {
	if host == "" || len(recipients) == 0 {
		return nil
	}
	return &EmailChannel{
		host:       host,
		port:       port,
		username:   username,
		password:   password,
		recipients: recipients,
	}
}

// Send gửi email cảnh báo tới toàn bộ người nhận trong một message.
func (e *EmailChannel) Send(_ context.Context, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", e.username)
	msg.SetHeader("To", e.recipients...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	dialer := gomail.NewDialer(e.host, e.port, e.username, e.password)
	if err := dialer.DialAndSend(msg); err != nil {
		logrus.WithFields(logrus.Fields{
			"host":  e.host,
			"error": err,
		}).Error("📧 [EMAIL] Lỗi khi gửi email cảnh báo")
		return err
	}

	logrus.WithField("recipients", len(e.recipients)).Info("📧 [EMAIL] Gửi email cảnh báo thành công")
	return nil
}
