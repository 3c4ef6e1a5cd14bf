package memory

import (
	"context"
	"sync"
	"time"

	"github.com/mattyapp/matty-api/internal/domain/repository"
	gocache "github.com/patrickmn/go-cache"
)

// retención extra después de expirar, para que FindByID de un código recién
// expirado siga encontrando el registro y el rechazo sea por expiry y no
// por not-found
const expiredRetention = time.Hour

// VerificationCodes implementa repository.VerificationCodeRepository sobre
// go-cache. El TTL de cada entrada es la expiración del código más una
// retención corta; el janitor de go-cache hace la limpieza de fondo.
type VerificationCodes struct {
	mu    sync.Mutex
	items *gocache.Cache
}

func (r *VerificationCodes) Insert(ctx context.Context, code *repository.VerificationCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *code
	r.items.Set(code.ID, &cp, time.Until(code.ExpiresAt)+expiredRetention)
	return nil
}

func (r *VerificationCodes) FindByID(ctx context.Context, id string) (*repository.VerificationCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.items.Get(id)
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *(v.(*repository.VerificationCode))
	return &cp, nil
}

func (r *VerificationCodes) Accept(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.items.Get(id)
	if !ok {
		return false, nil
	}
	code := v.(*repository.VerificationCode)
	if code.Accepted {
		return false, nil
	}
	code.Accepted = true
	return true, nil
}

func (r *VerificationCodes) ActiveCodeExists(ctx context.Context, destination string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	for _, item := range r.items.Items() {
		code := item.Object.(*repository.VerificationCode)
		if code.Destination == destination && !code.Accepted && code.ExpiresAt.After(now) {
			return true, nil
		}
	}
	return false, nil
}

func (r *VerificationCodes) DeleteExpired(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	deleted := 0
	now := time.Now().UTC()
	for id, item := range r.items.Items() {
		code := item.Object.(*repository.VerificationCode)
		if !code.ExpiresAt.After(now) {
			r.items.Delete(id)
			deleted++
		}
	}
	return deleted, nil
}
