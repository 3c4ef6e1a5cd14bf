// Package redisstore guarda refresh tokens en Redis con TTL nativo: los
// tokens vencidos desaparecen solos, sin job de limpieza.
package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/mattyapp/matty-api/internal/observability/logger"
	tokens "github.com/mattyapp/matty-api/internal/security/token"
	"github.com/redis/go-redis/v9"
)

// RefreshTokens implementa repository.RefreshTokenRepository.
type RefreshTokens struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRefreshTokens(client *redis.Client, prefix string, ttl time.Duration) *RefreshTokens {
	return &RefreshTokens{client: client, prefix: prefix, ttl: ttl}
}

func (r *RefreshTokens) key(token string) string {
	return r.prefix + tokens.SHA256Base64URL(token)
}

func (r *RefreshTokens) Insert(ctx context.Context, token, userID string) error {
	if err := r.client.Set(ctx, r.key(token), userID, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// ExistsAndDelete consume el token. DEL reporta cuántas keys borró, así que
// bajo concurrencia con el mismo token exactamente un caller observa 1.
func (r *RefreshTokens) ExistsAndDelete(ctx context.Context, token string) (bool, error) {
	n, err := r.client.Del(ctx, r.key(token)).Result()
	if err != nil {
		return false, fmt.Errorf("redis del: %w", err)
	}
	return n == 1, nil
}

func (r *RefreshTokens) DeleteAllForUser(ctx context.Context, userID string) (int, error) {
	deleted := 0
	iter := r.client.Scan(ctx, 0, r.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		owner, err := r.client.Get(ctx, key).Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return deleted, fmt.Errorf("redis get: %w", err)
		}
		if owner != userID {
			continue
		}
		n, err := r.client.Del(ctx, key).Result()
		if err != nil {
			return deleted, fmt.Errorf("redis del: %w", err)
		}
		deleted += int(n)
	}
	if err := iter.Err(); err != nil {
		return deleted, err
	}
	logger.From(ctx).Debug("refresh tokens revoked",
		logger.Component("store.redis"),
		logger.UserID(userID),
		logger.Count(deleted),
	)
	return deleted, nil
}
