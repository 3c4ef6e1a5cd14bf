package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mattyapp/matty-api/internal/domain/repository"
)

// VerificationCodes implementa repository.VerificationCodeRepository.
type VerificationCodes struct{ pool *pgxpool.Pool }

func (s *Store) VerificationCodes() *VerificationCodes {
	return &VerificationCodes{pool: s.pool}
}

func (r *VerificationCodes) Insert(ctx context.Context, code *repository.VerificationCode) error {
	const q = `
INSERT INTO verification_code (id, code, destination, channel, purpose, expires_at, accepted, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.pool.Exec(ctx, q,
		code.ID, code.Code, code.Destination, string(code.Channel), string(code.Purpose),
		code.ExpiresAt, code.Accepted, code.CreatedAt)
	return err
}

func (r *VerificationCodes) FindByID(ctx context.Context, id string) (*repository.VerificationCode, error) {
	const q = `
SELECT id, code, destination, channel, purpose, expires_at, accepted, created_at
FROM verification_code
WHERE id = $1`
	row := r.pool.QueryRow(ctx, q, id)

	var vc repository.VerificationCode
	var channel, purpose string
	err := row.Scan(&vc.ID, &vc.Code, &vc.Destination, &channel, &purpose,
		&vc.ExpiresAt, &vc.Accepted, &vc.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	vc.Channel = repository.Channel(channel)
	vc.Purpose = repository.Purpose(purpose)
	return &vc, nil
}

// Accept es el punto de consumo: el predicado accepted = FALSE hace que bajo
// aceptaciones concurrentes exactamente un update matchee.
func (r *VerificationCodes) Accept(ctx context.Context, id string) (bool, error) {
	const q = `UPDATE verification_code SET accepted = TRUE WHERE id = $1 AND accepted = FALSE`
	tag, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *VerificationCodes) ActiveCodeExists(ctx context.Context, destination string) (bool, error) {
	const q = `
SELECT EXISTS (
  SELECT 1 FROM verification_code
  WHERE destination = $1 AND accepted = FALSE AND expires_at > now()
)`
	var exists bool
	if err := r.pool.QueryRow(ctx, q, destination).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *VerificationCodes) DeleteExpired(ctx context.Context) (int, error) {
	const q = `DELETE FROM verification_code WHERE expires_at < now()`
	tag, err := r.pool.Exec(ctx, q)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
