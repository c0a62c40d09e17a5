package pkg

import (
	"context"
	"crypto/tls"
	"fmt"
	"html"

	"gopkg.in/gomail.v2"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string // 发件人邮箱
	Password string // 授权码/密码
	From     string // 显示的发件人，可与 Username 相同
}

// Enabled 未配置 host 时不发邮件
func (c SMTPConfig) Enabled() bool {
	return c.Host != ""
}

func SendEmail(cfg SMTPConfig, to, subject, htmlBody string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	d.TLSConfig = &tls.Config{ServerName: cfg.Host}
	return d.DialAndSend(m)
}

func WelcomeHTML(username string) string {
	return fmt.Sprintf(`<p>Hi <b>%s</b>,</p><p>Welcome to the community feed. Create a community or join one to start posting.</p>`, html.EscapeString(username))
}

// SMTPMailer 注册成功后的欢迎邮件
type SMTPMailer struct {
	cfg SMTPConfig
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) SendWelcome(ctx context.Context, to, username string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return SendEmail(m.cfg, to, "Welcome to the community feed", WelcomeHTML(username))
}
