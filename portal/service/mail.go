package service

import (
	"fmt"
	"net/smtp"
	"strings"

	"accesshub/internal/config"
	"accesshub/pkg/log"
)

// MailSender delivers the activation mail. Delivery is best-effort: the
// approval it follows has already committed, so a failure is reported to
// the operator, never propagated as the operation's failure.
type MailSender interface {
	SendActivationEmail(to, activationURL string) error
}

// NewMailSender picks SMTP when a host is configured, otherwise a
// log-only sender so local runs work without a mail relay.
func NewMailSender(cfg *config.SMTPConfig) MailSender {
	if cfg == nil || cfg.Host == "" {
		return &logSender{logger: log.NewLogger(log.Loglevel, "mail")}
	}
	return &SMTPSender{cfg: cfg, logger: log.NewLogger(log.Loglevel, "mail")}
}

type SMTPSender struct {
	cfg    *config.SMTPConfig
	logger *log.Logger
}

func (s *SMTPSender) SendActivationEmail(to, activationURL string) error {
	header := map[string]string{
		"From":         s.cfg.From,
		"To":           to,
		"Subject":      "【重要】サービスポータルへの本登録を完了してください",
		"MIME-Version": "1.0",
		"Content-Type": "text/html; charset=UTF-8",
	}

	var message strings.Builder
	for k, v := range header {
		message.WriteString(fmt.Sprintf("%s: %s\r\n", k, v))
	}
	message.WriteString("\r\n")
	message.WriteString(activationBody(activationURL))

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	if err := smtp.SendMail(addr, auth, s.cfg.From, []string{to}, []byte(message.String())); err != nil {
		s.logger.Errorf("send activation mail to %s failed: %v", to, err)
		return fmt.Errorf("send activation mail: %w", err)
	}
	s.logger.Infof("activation mail sent to %s", to)
	return nil
}

func activationBody(url string) string {
	var body strings.Builder
	body.WriteString("<!DOCTYPE html><html><body>")
	body.WriteString("<h2>サービスポータルへようこそ</h2>")
	body.WriteString("<p>ご利用申請が管理者によって承認（仮）されました。</p>")
	body.WriteString("<p>下記リンクをクリックして、本登録を完了させてください。</p>")
	body.WriteString(fmt.Sprintf(`<p><a href="%s">本登録を完了する</a></p>`, url))
	body.WriteString("<p>このリンクの有効期限は24時間です。</p>")
	body.WriteString("<p>心当たりがない場合は、このメールを無視してください。</p>")
	body.WriteString("</body></html>")
	return body.String()
}

// logSender writes the activation link to the log instead of sending.
type logSender struct {
	logger *log.Logger
}

func (s *logSender) SendActivationEmail(to, activationURL string) error {
	s.logger.Infof("mail delivery skipped (no SMTP host): to=%s url=%s", to, activationURL)
	return nil
}
