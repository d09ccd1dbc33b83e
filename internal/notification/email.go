package notification

import (
	"context"
	"fmt"
	"html"

	"erp-backend/internal/config"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Mailer sends the account mails the auth endpoints need.
type Mailer interface {
	Enabled() bool
	SendTemporaryPassword(ctx context.Context, to, name, password string) error
}

// NewMailer returns an SMTP mailer when SMTP is configured and a disabled one
// otherwise.
func NewMailer(cfg config.SMTPConfig) Mailer {
	if !cfg.Enabled() {
		return Noop{}
	}
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.From,
	}
}

type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func (m *SMTPMailer) Enabled() bool { return true }

func (m *SMTPMailer) SendTemporaryPassword(ctx context.Context, to, name, password string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "[ERP] 임시 비밀번호 안내")
	msg.SetBody("text/html", temporaryPasswordBody(name, password))

	if err := m.dialer.DialAndSend(msg); err != nil {
		zap.L().Error("임시 비밀번호 메일 발송 실패", zap.String("to", to), zap.Error(err))
		return fmt.Errorf("메일 발송 실패: %w", err)
	}
	zap.L().Info("임시 비밀번호 메일 발송", zap.String("to", to))
	return nil
}

// Noop is used when no SMTP server is configured.
type Noop struct{}

func (Noop) Enabled() bool { return false }

func (Noop) SendTemporaryPassword(context.Context, string, string, string) error { return nil }

func temporaryPasswordBody(name, password string) string {
	return fmt.Sprintf(`<p>%s 님, 안녕하세요.</p>
<p>임시 비밀번호는 <b>%s</b> 입니다.</p>
<p>로그인 후 반드시 비밀번호를 변경해주세요.</p>`, html.EscapeString(name), html.EscapeString(password))
}
