package pg

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	tokens "github.com/mattyapp/matty-api/internal/security/token"
)

// RefreshTokens implementa repository.RefreshTokenRepository.
//
// Los tokens se guardan hasheados: un dump de la tabla no alcanza para
// fabricar un refresh válido.
type RefreshTokens struct{ pool *pgxpool.Pool }

func (s *Store) RefreshTokens() *RefreshTokens {
	return &RefreshTokens{pool: s.pool}
}

func (r *RefreshTokens) Insert(ctx context.Context, token, userID string) error {
	const q = `INSERT INTO refresh_token (token_hash, user_id, created_at) VALUES ($1, $2, now())`
	_, err := r.pool.Exec(ctx, q, tokens.SHA256Base64URL(token), userID)
	return err
}

// ExistsAndDelete consume el token en un solo statement: el DELETE reporta
// cuántas filas tocó, así que bajo concurrencia exactamente un caller
// observa true.
func (r *RefreshTokens) ExistsAndDelete(ctx context.Context, token string) (bool, error) {
	const q = `DELETE FROM refresh_token WHERE token_hash = $1`
	tag, err := r.pool.Exec(ctx, q, tokens.SHA256Base64URL(token))
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *RefreshTokens) DeleteAllForUser(ctx context.Context, userID string) (int, error) {
	const q = `DELETE FROM refresh_token WHERE user_id = $1`
	tag, err := r.pool.Exec(ctx, q, userID)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
