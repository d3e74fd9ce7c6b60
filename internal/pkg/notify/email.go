package notify

import (
	"fmt"
	"log/slog"
	"strings"

	"gopkg.in/gomail.v2"

	"taskdeck/internal/config"
)

// EmailNotifier delivers verification codes over SMTP. With no SMTP host
// configured it degrades to a logged no-op so local setups work without
// a mail server.
type EmailNotifier struct {
	cfg    config.SMTPConfig
	logger *slog.Logger
}

func NewEmailNotifier(cfg config.SMTPConfig, logger *slog.Logger) *EmailNotifier {
	return &EmailNotifier{cfg: cfg, logger: logger}
}

// SendVerificationCode mails the 6-digit verification code.
func (n *EmailNotifier) SendVerificationCode(toEmail, code string) error {
	if n.cfg.Host == "" || n.cfg.From == "" {
		n.logger.Warn("smtp not configured, skipping verification email", slog.String("to", toEmail))
		return nil
	}
	if strings.TrimSpace(toEmail) == "" {
		return fmt.Errorf("empty recipient")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.cfg.From)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "Verify your Taskdeck email")

	body := fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif;">
  <div style="max-width: 520px; margin: 0 auto; padding: 16px;">
    <h2>Email verification</h2>
    <p>Your verification code is:</p>
    <div style="font-size: 28px; font-weight: bold; letter-spacing: 3px;">%s</div>
    <p>The code expires in 10 minutes.</p>
  </div>
</body>
</html>`, code)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(n.cfg.Host, n.cfg.Port, n.cfg.User, n.cfg.Pass)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	n.logger.Info("verification email sent", slog.String("to", toEmail))
	return nil
}
