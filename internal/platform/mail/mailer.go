package mail

import (
	"context"
	"fmt"
	"net/smtp"

	"go.uber.org/fx"
	"go.uber.org/zap"

	cfgpkg "github.com/roadfile/compliance/pkg/config"
)

// Mailer delivers lifecycle and order emails. Send errors are for the
// caller's log only; no lifecycle job aborts on a failed email.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

func NewMailer(cfg *cfgpkg.Config, log *zap.SugaredLogger) Mailer {
	if cfg.SMTP.Host == "" {
		log.Warnw("smtp unconfigured, outbound mail will be logged only")
		return &logMailer{log: log}
	}
	return &smtpMailer{cfg: cfg.SMTP, log: log}
}

type smtpMailer struct {
	cfg cfgpkg.SMTPConfig
	log *zap.SugaredLogger
}

func (m *smtpMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	sender := m.cfg.Sender
	if sender == "" {
		sender = "no-reply@localhost"
	}

	var auth smtp.Auth
	if m.cfg.Username != "" && m.cfg.Password != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	msg := []byte(
		fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n", sender, to, subject) +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/html; charset=UTF-8\r\n\r\n" +
			htmlBody,
	)

	if err := smtp.SendMail(addr, auth, sender, []string{to}, msg); err != nil {
		m.log.Errorw("smtp send failed", "to", to, "subject", subject, "err", err)
		return err
	}
	m.log.Infow("email sent", "to", to, "subject", subject)
	return nil
}

// logMailer records the email instead of delivering it.
type logMailer struct {
	log *zap.SugaredLogger
}

func (m *logMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	m.log.Infow("email suppressed (smtp unconfigured)", "to", to, "subject", subject)
	return nil
}

var Module = fx.Options(
	fx.Provide(NewMailer),
)
