package repository

import (
	"context"
	"time"
)

// Channel es el transporte por el que se entrega un código de verificación.
type Channel string

const (
	ChannelEmail Channel = "EMAIL"
	ChannelSMS   Channel = "SMS"
)

// Purpose es el propósito con el que se emitió un código de verificación.
// Se fija al emitir y se re-verifica al aceptar.
type Purpose string

const (
	PurposeRegistration Purpose = "REGISTRATION"
	PurposeLogin        Purpose = "LOGIN"
)

// VerificationCode representa un código de verificación de un solo uso
// enviado a un destino (email o teléfono) para probar su control.
type VerificationCode struct {
	// ID es el handle opaco que recibe el caller. No es adivinable y es
	// distinto del código secreto.
	ID          string
	Code        string
	Destination string
	Channel     Channel
	Purpose     Purpose
	ExpiresAt   time.Time
	Accepted    bool
	CreatedAt   time.Time
}

// VerificationCodeRepository define operaciones sobre códigos de verificación.
//
// Los registros nunca se borran en el camino feliz: la aceptación voltea
// Accepted una sola vez y el registro queda para auditoría. Un job de
// limpieza puede eliminar filas expiradas/consumidas.
type VerificationCodeRepository interface {
	// Insert persiste un código nuevo.
	Insert(ctx context.Context, code *VerificationCode) error

	// FindByID busca un código por su handle.
	// Retorna ErrNotFound si no existe.
	FindByID(ctx context.Context, id string) (*VerificationCode, error)

	// Accept marca el código como aceptado, condicionado a que todavía no
	// lo esté (compare-and-set sobre Accepted=false). Retorna false si el
	// código no existe o ya estaba aceptado.
	Accept(ctx context.Context, id string) (bool, error)

	// ActiveCodeExists indica si hay un código sin aceptar y sin expirar
	// para el destino dado.
	ActiveCodeExists(ctx context.Context, destination string) (bool, error)

	// DeleteExpired elimina códigos expirados (cleanup job).
	// Retorna el número de filas eliminadas.
	DeleteExpired(ctx context.Context) (int, error)
}
