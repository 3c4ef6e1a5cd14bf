package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mattyapp/matty-api/internal/domain/repository"
)

// Users implementa repository.UserRepository.
type Users struct{ pool *pgxpool.Pool }

func (s *Store) Users() *Users {
	return &Users{pool: s.pool}
}

const userCols = `id, full_name, email, phone, interests, created_at`

func scanUser(row pgx.Row) (*repository.User, error) {
	var u repository.User
	err := row.Scan(&u.ID, &u.FullName, &u.Email, &u.Phone, &u.Interests, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *Users) FindByID(ctx context.Context, id string) (*repository.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userCols+` FROM app_user WHERE id = $1`, id))
}

func (r *Users) FindByEmail(ctx context.Context, email string) (*repository.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userCols+` FROM app_user WHERE LOWER(email) = LOWER($1)`, email))
}

func (r *Users) FindByPhone(ctx context.Context, phone string) (*repository.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userCols+` FROM app_user WHERE phone = $1`, phone))
}

func (r *Users) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM app_user WHERE LOWER(email) = LOWER($1))`, email).Scan(&exists)
	return exists, err
}

func (r *Users) ExistsByPhone(ctx context.Context, phone string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM app_user WHERE phone = $1)`, phone).Scan(&exists)
	return exists, err
}

func (r *Users) Insert(ctx context.Context, user *repository.User) (*repository.User, error) {
	const q = `
INSERT INTO app_user (id, full_name, email, phone, interests, created_at)
VALUES (gen_random_uuid(), $1, $2, $3, $4, now())
RETURNING ` + userCols
	row := r.pool.QueryRow(ctx, q, user.FullName, user.Email, user.Phone, user.Interests)
	out, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		// 23505: unique_violation (email o phone tomados)
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, repository.ErrConflict
		}
		return nil, err
	}
	return out, nil
}
