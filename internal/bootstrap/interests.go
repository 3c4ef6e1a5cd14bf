// Package bootstrap corre inicializaciones de arranque: seed del catálogo
// de intereses y el job de limpieza de códigos expirados.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/mattyapp/matty-api/internal/domain/repository"
	"github.com/mattyapp/matty-api/internal/observability/logger"
)

// defaultInterests es el catálogo inicial. Solo se inserta si el catálogo
// está vacío; no pisa datos existentes.
var defaultInterests = []repository.Interest{
	{ID: "music", Name: "Music"},
	{ID: "sports", Name: "Sports"},
	{ID: "movies", Name: "Movies"},
	{ID: "travel", Name: "Travel"},
	{ID: "food", Name: "Food"},
	{ID: "books", Name: "Books"},
	{ID: "gaming", Name: "Gaming"},
	{ID: "art", Name: "Art"},
	{ID: "tech", Name: "Technology"},
	{ID: "fitness", Name: "Fitness"},
	{ID: "photography", Name: "Photography"},
	{ID: "outdoors", Name: "Outdoors"},
}

// SeedInterests inserta el catálogo por defecto si todavía no hay ninguno.
func SeedInterests(ctx context.Context, interests repository.InterestRepository) error {
	n, err := interests.Count(ctx)
	if err != nil {
		return fmt.Errorf("count interests: %w", err)
	}
	if n > 0 {
		return nil
	}
	if err := interests.InsertAll(ctx, defaultInterests); err != nil {
		return fmt.Errorf("seed interests: %w", err)
	}
	logger.L().Info("interest catalog seeded",
		logger.Component("bootstrap"),
		logger.Count(len(defaultInterests)),
	)
	return nil
}

// StartCodeGC lanza una goroutine que borra códigos de verificación
// expirados cada interval, hasta que el contexto se cancele.
func StartCodeGC(ctx context.Context, codes repository.VerificationCodeRepository, interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		log := logger.L().With(logger.Component("bootstrap.gc"))
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := codes.DeleteExpired(ctx)
				if err != nil {
					log.Warn("expired code cleanup failed", logger.Err(err))
					continue
				}
				if n > 0 {
					log.Debug("expired codes deleted", logger.Count(n))
				}
			}
		}
	}()
}
