package pg

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mattyapp/matty-api/internal/domain/repository"
)

// Interests implementa repository.InterestRepository.
type Interests struct{ pool *pgxpool.Pool }

func (s *Store) Interests() *Interests {
	return &Interests{pool: s.pool}
}

func (r *Interests) List(ctx context.Context) ([]repository.Interest, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM interest ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []repository.Interest
	for rows.Next() {
		var it repository.Interest
		if err := rows.Scan(&it.ID, &it.Name); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *Interests) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM interest`).Scan(&n)
	return n, err
}

func (r *Interests) InsertAll(ctx context.Context, interests []repository.Interest) error {
	batch := &pgx.Batch{}
	for _, it := range interests {
		batch.Queue(`INSERT INTO interest (id, name) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`, it.ID, it.Name)
	}
	return r.pool.SendBatch(ctx, batch).Close()
}
