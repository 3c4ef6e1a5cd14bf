package repository

import "context"

// RefreshTokenRepository define operaciones sobre refresh tokens emitidos.
//
// La existencia del registro es la única fuente de verdad para la validez
// de un refresh token: la firma es necesaria pero no suficiente. Eso
// habilita revocación server-side y el single-use en la rotación.
type RefreshTokenRepository interface {
	// Insert registra un refresh token recién emitido para el usuario.
	Insert(ctx context.Context, token, userID string) error

	// ExistsAndDelete consume el token: si existe lo elimina y retorna
	// true; si no existe retorna false. La operación es atómica por token:
	// bajo llamadas concurrentes con el mismo token exactamente una
	// observa presencia.
	ExistsAndDelete(ctx context.Context, token string) (bool, error)

	// DeleteAllForUser revoca todos los refresh tokens de un usuario.
	// Retorna el número de tokens eliminados.
	DeleteAllForUser(ctx context.Context, userID string) (int, error)
}
