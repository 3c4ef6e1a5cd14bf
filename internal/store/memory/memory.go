// Package memory implementa los repositorios del dominio en memoria.
// Pensado para desarrollo local y tests; no sobrevive reinicios.
package memory

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const codeCleanupInterval = time.Minute

// Store agrupa los repositorios en memoria. Cada repositorio maneja su
// propio lock; no comparten estado entre sí.
type Store struct {
	codes     *VerificationCodes
	tokens    *RefreshTokens
	users     *Users
	interests *Interests
}

func New() *Store {
	return &Store{
		codes: &VerificationCodes{
			items: gocache.New(gocache.NoExpiration, codeCleanupInterval),
		},
		tokens:    &RefreshTokens{byHash: map[string]string{}},
		users:     &Users{byID: map[string]*userRecord{}},
		interests: &Interests{},
	}
}

func (s *Store) VerificationCodes() *VerificationCodes { return s.codes }
func (s *Store) RefreshTokens() *RefreshTokens         { return s.tokens }
func (s *Store) Users() *Users                         { return s.users }
func (s *Store) Interests() *Interests                 { return s.interests }

// Close no hace nada; existe para simetría con los drivers reales.
func (s *Store) Close() {}
