// Package store arma los repositorios concretos según la configuración.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mattyapp/matty-api/internal/config"
	"github.com/mattyapp/matty-api/internal/domain/repository"
	"github.com/mattyapp/matty-api/internal/observability/logger"
	"github.com/mattyapp/matty-api/internal/store/memory"
	"github.com/mattyapp/matty-api/internal/store/pg"
	"github.com/mattyapp/matty-api/internal/store/redisstore"
	"github.com/mattyapp/matty-api/migrations"
	"github.com/redis/go-redis/v9"
)

// Store expone los repositorios ya construidos para el driver configurado.
type Store struct {
	Codes     repository.VerificationCodeRepository
	Tokens    repository.RefreshTokenRepository
	Users     repository.UserRepository
	Interests repository.InterestRepository

	// Ping chequea la salud del driver (nil para memory).
	Ping func(ctx context.Context) error
	// PgPool expone el pool de postgres para metrics (nil para memory).
	PgPool func() *pgxpool.Pool

	closers []func()
}

// New construye los repositorios según cfg.Storage.Driver, con el override
// opcional de cfg.Tokens.Kind=redis para los refresh tokens.
func New(ctx context.Context, cfg *config.Config) (*Store, error) {
	st := &Store{}

	switch cfg.Storage.Driver {
	case "postgres":
		pgStore, err := pg.New(ctx, cfg.Storage.DSN, pg.Options{
			MaxConns:        cfg.Storage.Postgres.MaxConns,
			ConnMaxLifetime: cfg.Storage.Postgres.ConnMaxLifetime,
		})
		if err != nil {
			return nil, fmt.Errorf("pg store: %w", err)
		}
		if cfg.Flags.Migrate {
			if err := pgStore.Migrate(ctx, migrations.PostgresFS, migrations.PostgresDir); err != nil {
				pgStore.Close()
				return nil, fmt.Errorf("migrate: %w", err)
			}
		}
		st.Codes = pgStore.VerificationCodes()
		st.Tokens = pgStore.RefreshTokens()
		st.Users = pgStore.Users()
		st.Interests = pgStore.Interests()
		st.Ping = pgStore.Ping
		st.PgPool = pgStore.Pool
		st.closers = append(st.closers, pgStore.Close)

	case "memory":
		memStore := memory.New()
		st.Codes = memStore.VerificationCodes()
		st.Tokens = memStore.RefreshTokens()
		st.Users = memStore.Users()
		st.Interests = memStore.Interests()

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	if cfg.Tokens.Kind == "redis" {
		client := redis.NewClient(&redis.Options{
			Addr: cfg.Tokens.Redis.Addr,
			DB:   cfg.Tokens.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			logger.L().Warn("redis startup ping failed", logger.Component("store"), logger.Err(err))
		}
		refreshTTL, _ := time.ParseDuration(cfg.JWT.RefreshTTL)
		st.Tokens = redisstore.NewRefreshTokens(client, cfg.Tokens.Redis.Prefix, refreshTTL)
		st.closers = append(st.closers, func() { _ = client.Close() })
	}

	return st, nil
}

// Close libera los recursos de los drivers en orden inverso.
func (s *Store) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}
