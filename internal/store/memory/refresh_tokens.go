package memory

import (
	"context"
	"sync"

	tokens "github.com/mattyapp/matty-api/internal/security/token"
)

// RefreshTokens implementa repository.RefreshTokenRepository. El mutex hace
// atómico el exists-and-delete: bajo concurrencia con el mismo token,
// exactamente un caller observa presencia.
type RefreshTokens struct {
	mu     sync.Mutex
	byHash map[string]string // hash -> userID
}

func (r *RefreshTokens) Insert(ctx context.Context, token, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byHash[tokens.SHA256Base64URL(token)] = userID
	return nil
}

func (r *RefreshTokens) ExistsAndDelete(ctx context.Context, token string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	hash := tokens.SHA256Base64URL(token)
	if _, ok := r.byHash[hash]; !ok {
		return false, nil
	}
	delete(r.byHash, hash)
	return true, nil
}

func (r *RefreshTokens) DeleteAllForUser(ctx context.Context, userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	deleted := 0
	for hash, uid := range r.byHash {
		if uid == userID {
			delete(r.byHash, hash)
			deleted++
		}
	}
	return deleted, nil
}
