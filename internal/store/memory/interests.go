package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/mattyapp/matty-api/internal/domain/repository"
)

// Interests implementa repository.InterestRepository.
type Interests struct {
	mu    sync.Mutex
	items []repository.Interest
}

func (r *Interests) List(ctx context.Context) ([]repository.Interest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := append([]repository.Interest(nil), r.items...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *Interests) Count(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items), nil
}

func (r *Interests) InsertAll(ctx context.Context, interests []repository.Interest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[string]bool, len(r.items))
	for _, it := range r.items {
		seen[it.ID] = true
	}
	for _, it := range interests {
		if !seen[it.ID] {
			r.items = append(r.items, it)
			seen[it.ID] = true
		}
	}
	return nil
}
