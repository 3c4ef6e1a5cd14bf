// Package sender implementa la entrega de códigos de verificación por
// email (SMTP) y SMS (SNS), más el dispatcher asíncrono que desacopla la
// entrega del camino de respuesta HTTP.
package sender

import (
	"context"
	"fmt"

	"github.com/mattyapp/matty-api/internal/domain/repository"
)

// Sender entrega un código de verificación a su destino.
type Sender interface {
	Send(ctx context.Context, code *repository.VerificationCode) error
}

// SenderFunc adapta una función a Sender.
type SenderFunc func(ctx context.Context, code *repository.VerificationCode) error

func (f SenderFunc) Send(ctx context.Context, code *repository.VerificationCode) error {
	return f(ctx, code)
}

// ChannelDelegate elige el sender según el canal del código.
type ChannelDelegate struct {
	Email Sender
	SMS   Sender
}

func (d ChannelDelegate) Send(ctx context.Context, code *repository.VerificationCode) error {
	switch code.Channel {
	case repository.ChannelEmail:
		return d.Email.Send(ctx, code)
	case repository.ChannelSMS:
		return d.SMS.Send(ctx, code)
	default:
		return fmt.Errorf("no sender for channel %q", code.Channel)
	}
}
