package token

import "errors"

// Errores del token service. Los tres primeros se traducen uniformemente a
// 401 en la capa HTTP; se mantienen separados para diagnóstico.
var (
	// ErrInvalidRefreshToken indica firma inválida o expiración vencida.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")

	// ErrUnknownRefreshToken indica que el token no está en el store:
	// nunca fue emitido, fue revocado, o ya fue consumido (replay).
	ErrUnknownRefreshToken = errors.New("unknown refresh token")

	// ErrUserNotFound indica que el dueño del token ya no existe.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidState indica una violación de contrato del caller (ej:
	// emitir tokens para un usuario sin persistir). No es retryable.
	ErrInvalidState = errors.New("invalid state")
)

// IsUnauthorized indica si el error debe traducirse a una respuesta 401.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrInvalidRefreshToken) ||
		errors.Is(err, ErrUnknownRefreshToken) ||
		errors.Is(err, ErrUserNotFound)
}
