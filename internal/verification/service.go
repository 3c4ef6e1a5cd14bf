package verification

import (
	"context"
	"time"

	"github.com/mattyapp/matty-api/internal/domain/repository"
	"github.com/mattyapp/matty-api/internal/observability/logger"
)

// Notifier entrega un código a su destino por el canal correspondiente.
// El despacho es best-effort y asíncrono: el core no espera el resultado y
// un fallo de entrega nunca afecta la respuesta.
type Notifier interface {
	Notify(code *repository.VerificationCode)
}

// Acceptance es el resultado de AcceptCode. Es un valor, no un error:
// "código inválido" es un desenlace de negocio frecuente y esperado.
// Cuando Accepted es false no se distingue la causa (no encontrado,
// canal/propósito equivocado, ya usado, código incorrecto o expirado)
// para no filtrar información enumerable.
type Acceptance struct {
	Accepted    bool
	Destination string
	Channel     repository.Channel
}

// NotAccepted es el resultado de rechazo, sin detalle de causa.
var NotAccepted = Acceptance{}

// Service orquesta la emisión (Issuer + Notifier) y la aceptación de
// códigos de verificación.
type Service struct {
	issuer   *Issuer
	codes    repository.VerificationCodeRepository
	notifier Notifier
}

// NewService crea un verification service.
func NewService(issuer *Issuer, codes repository.VerificationCodeRepository, notifier Notifier) *Service {
	return &Service{issuer: issuer, codes: codes, notifier: notifier}
}

// SendCode emite un código y lo despacha asíncronamente al destino.
// Si el despacho falla el código sigue siendo válido: la entrega es
// best-effort y el usuario puede reintentar por otro canal.
func (s *Service) SendCode(ctx context.Context, destination string, purpose repository.Purpose, channel repository.Channel) (*repository.VerificationCode, error) {
	code, err := s.issuer.IssueCode(ctx, destination, purpose, channel)
	if err != nil {
		return nil, err
	}
	s.notifier.Notify(code)
	return code, nil
}

// AcceptCode valida y consume un código.
//
// Busca por id (no por código+destino) y rechaza si: no existe, el canal no
// coincide, ya fue aceptado, el propósito no coincide, el valor del código
// no coincide, o expiró. Los chequeos son independientes; el orden solo
// afecta la verbosidad del log. La aceptación es consumo: un segundo
// intento con el mismo id retorna NotAccepted aunque el código sea correcto.
func (s *Service) AcceptCode(ctx context.Context, code, id string, purpose repository.Purpose, channel repository.Channel) (Acceptance, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("verification"),
		logger.Op("AcceptCode"),
		logger.CodeID(id),
	)

	record, err := s.codes.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			log.Debug("verification code not found")
			return NotAccepted, nil
		}
		return NotAccepted, err
	}

	if record.Channel != channel {
		log.Debug("verification channel mismatch")
		return NotAccepted, nil
	}
	if record.Accepted {
		log.Debug("verification code already used")
		return NotAccepted, nil
	}
	if record.Purpose != purpose {
		log.Debug("verification purpose mismatch")
		return NotAccepted, nil
	}
	if record.Code != code {
		log.Debug("verification code value mismatch")
		return NotAccepted, nil
	}
	if !record.ExpiresAt.After(time.Now().UTC()) {
		log.Debug("verification code has expired")
		return NotAccepted, nil
	}

	// Consumo condicional: si otra aceptación concurrente ganó la carrera,
	// el update no matchea y este intento se rechaza.
	ok, err := s.codes.Accept(ctx, record.ID)
	if err != nil {
		return NotAccepted, err
	}
	if !ok {
		log.Debug("verification code consumed concurrently")
		return NotAccepted, nil
	}

	log.Info("verification code accepted", logger.Destination(record.Destination))
	return Acceptance{
		Accepted:    true,
		Destination: record.Destination,
		Channel:     record.Channel,
	}, nil
}
