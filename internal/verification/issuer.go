package verification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mattyapp/matty-api/internal/domain/repository"
	"github.com/mattyapp/matty-api/internal/observability/logger"
	tokens "github.com/mattyapp/matty-api/internal/security/token"
)

// ErrActiveCodeExists indica que ya hay un código vigente sin consumir para
// el destino. El caller debe esperar a que expire o se consuma.
var ErrActiveCodeExists = errors.New("active verification code already exists")

// Anchos de código por propósito. El flujo de registro usa 6 dígitos; el de
// login, 4.
const (
	registrationCodeWidth = 6
	loginCodeWidth        = 4
)

// Issuer genera, controla unicidad y persiste códigos de verificación.
type Issuer struct {
	ttl   time.Duration
	codes repository.VerificationCodeRepository
}

// NewIssuer crea un Issuer con el TTL configurado.
func NewIssuer(ttl time.Duration, codes repository.VerificationCodeRepository) *Issuer {
	return &Issuer{ttl: ttl, codes: codes}
}

// IssueCode emite un código nuevo para el destino.
//
// El pre-chequeo "existe código activo" más el insert no son atómicos: dos
// emisiones concurrentes para el mismo destino pueden pasar ambas el
// chequeo. Es una garantía relajada deliberada — la aceptación sigue
// protegida por el id único y el consumo single-use, así que un doble
// código ocasional es tolerable.
func (i *Issuer) IssueCode(ctx context.Context, destination string, purpose repository.Purpose, channel repository.Channel) (*repository.VerificationCode, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("verification.issuer"),
		logger.Destination(destination),
	)

	active, err := i.codes.ActiveCodeExists(ctx, destination)
	if err != nil {
		return nil, fmt.Errorf("active code check: %w", err)
	}
	if active {
		log.Info("active verification code already exists")
		return nil, ErrActiveCodeExists
	}

	width := loginCodeWidth
	if purpose == repository.PurposeRegistration {
		width = registrationCodeWidth
	}
	value, err := tokens.RandomNumericCode(width)
	if err != nil {
		return nil, fmt.Errorf("generate code: %w", err)
	}

	code := &repository.VerificationCode{
		ID:          uuid.NewString(),
		Code:        value,
		Destination: destination,
		Channel:     channel,
		Purpose:     purpose,
		ExpiresAt:   time.Now().UTC().Add(i.ttl),
		Accepted:    false,
		CreatedAt:   time.Now().UTC(),
	}
	if err := i.codes.Insert(ctx, code); err != nil {
		return nil, fmt.Errorf("persist code: %w", err)
	}

	log.Debug("verification code issued",
		logger.CodeID(code.ID),
		logger.String("purpose", string(purpose)),
		logger.String("channel", string(channel)),
	)
	return code, nil
}
