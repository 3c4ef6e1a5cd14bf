package sender

import (
	"context"

	"github.com/mattyapp/matty-api/internal/domain/repository"
	"github.com/mattyapp/matty-api/internal/observability/logger"
)

// LogSender escribe el código al log en vez de entregarlo. Para desarrollo
// local sin SMTP/SNS configurados.
type LogSender struct{}

func (LogSender) Send(ctx context.Context, code *repository.VerificationCode) error {
	logger.From(ctx).Info("sending verification code",
		logger.Component("sender.log"),
		logger.Destination(code.Destination),
		logger.String("channel", string(code.Channel)),
		logger.String("code", code.Code),
	)
	return nil
}
