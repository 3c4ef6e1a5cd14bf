package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mattyapp/matty-api/internal/domain/repository"
)

type userRecord struct {
	user repository.User
}

// Users implementa repository.UserRepository.
type Users struct {
	mu   sync.Mutex
	byID map[string]*userRecord
}

func copyUser(u *repository.User) *repository.User {
	cp := *u
	cp.Interests = append([]string(nil), u.Interests...)
	return &cp
}

func (r *Users) FindByID(ctx context.Context, id string) (*repository.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyUser(&rec.user), nil
}

func (r *Users) FindByEmail(ctx context.Context, email string) (*repository.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if email == "" {
		return nil, repository.ErrNotFound
	}
	for _, rec := range r.byID {
		if strings.EqualFold(rec.user.Email, email) {
			return copyUser(&rec.user), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *Users) FindByPhone(ctx context.Context, phone string) (*repository.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if phone == "" {
		return nil, repository.ErrNotFound
	}
	for _, rec := range r.byID {
		if rec.user.Phone == phone {
			return copyUser(&rec.user), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *Users) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.existsByEmailLocked(email), nil
}

func (r *Users) ExistsByPhone(ctx context.Context, phone string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.existsByPhoneLocked(phone), nil
}

func (r *Users) existsByEmailLocked(email string) bool {
	if email == "" {
		return false
	}
	for _, rec := range r.byID {
		if strings.EqualFold(rec.user.Email, email) {
			return true
		}
	}
	return false
}

func (r *Users) existsByPhoneLocked(phone string) bool {
	if phone == "" {
		return false
	}
	for _, rec := range r.byID {
		if rec.user.Phone == phone {
			return true
		}
	}
	return false
}

func (r *Users) Insert(ctx context.Context, user *repository.User) (*repository.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.existsByEmailLocked(user.Email) || r.existsByPhoneLocked(user.Phone) {
		return nil, repository.ErrConflict
	}
	cp := copyUser(user)
	cp.ID = uuid.NewString()
	cp.CreatedAt = time.Now().UTC()
	r.byID[cp.ID] = &userRecord{user: *cp}
	return copyUser(cp), nil
}
