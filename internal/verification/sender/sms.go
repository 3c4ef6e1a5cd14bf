package sender

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/mattyapp/matty-api/internal/domain/repository"
	"github.com/mattyapp/matty-api/internal/observability/logger"
)

// SNSSender entrega códigos de verificación por SMS usando AWS SNS.
type SNSSender struct {
	client *sns.Client
}

// NewSNSSender crea un SNSSender para la región dada.
func NewSNSSender(ctx context.Context, region string) (*SNSSender, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &SNSSender{client: sns.NewFromConfig(awsCfg)}, nil
}

// Send publica el código como SMS al teléfono del registro.
func (s *SNSSender) Send(ctx context.Context, code *repository.VerificationCode) error {
	message := fmt.Sprintf("Your verification code is %s", code.Code)
	_, err := s.client.Publish(ctx, &sns.PublishInput{
		PhoneNumber: &code.Destination,
		Message:     &message,
	})
	if err != nil {
		logger.From(ctx).Error("sns publish failed",
			logger.Component("sender.sns"),
			logger.Destination(code.Destination),
			logger.Err(err),
		)
		return fmt.Errorf("sns publish: %w", err)
	}
	return nil
}
