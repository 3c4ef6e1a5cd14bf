package sender

import (
	"context"
	"crypto/tls"
	"fmt"

	mail "github.com/go-mail/mail"
	"github.com/mattyapp/matty-api/internal/domain/repository"
	"github.com/mattyapp/matty-api/internal/observability/logger"
)

// SMTPSender entrega códigos de verificación por email.
type SMTPSender struct {
	Host               string
	Port               int
	From               string
	User               string
	Pass               string
	TLSMode            string // "auto" | "starttls" | "ssl" | "none"
	InsecureSkipVerify bool
}

// NewSMTPSender crea un SMTPSender con TLS en modo auto.
func NewSMTPSender(host string, port int, from, user, pass string) *SMTPSender {
	return &SMTPSender{
		Host:    host,
		Port:    port,
		From:    from,
		User:    user,
		Pass:    pass,
		TLSMode: "auto",
	}
}

// Send envía el código al destino del registro.
func (s *SMTPSender) Send(ctx context.Context, code *repository.VerificationCode) error {
	log := logger.From(ctx).With(
		logger.Component("sender.smtp"),
		logger.Destination(code.Destination),
	)

	subject := "Your verification code"
	text := fmt.Sprintf("Your verification code is %s. It expires at %s.",
		code.Code, code.ExpiresAt.Format("15:04 MST"))
	html := fmt.Sprintf("<p>Your verification code is <strong>%s</strong>.</p>", code.Code)

	m := mail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", code.Destination)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", text)
	m.AddAlternative("text/html", html)

	d := mail.NewDialer(s.Host, s.Port, s.User, s.Pass)
	d.TLSConfig = &tls.Config{
		ServerName:         s.Host,
		InsecureSkipVerify: s.InsecureSkipVerify, // solo dev
	}
	switch s.TLSMode {
	case "ssl":
		d.SSL = true
	case "none":
		d.TLSConfig = &tls.Config{InsecureSkipVerify: s.InsecureSkipVerify}
	default:
		// "auto"/"starttls": go-mail negocia STARTTLS si corresponde
	}

	if err := d.DialAndSend(m); err != nil {
		log.Error("smtp send failed", logger.Err(err))
		return fmt.Errorf("smtp send: %w", err)
	}
	log.Debug("verification email sent")
	return nil
}
