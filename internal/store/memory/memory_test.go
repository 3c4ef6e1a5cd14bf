package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/mattyapp/matty-api/internal/domain/repository"
	"github.com/stretchr/testify/require"
)

func newCode(id, destination string) *repository.VerificationCode {
	return &repository.VerificationCode{
		ID:          id,
		Code:        "123456",
		Destination: destination,
		Channel:     repository.ChannelEmail,
		Purpose:     repository.PurposeRegistration,
		ExpiresAt:   time.Now().UTC().Add(10 * time.Minute),
		CreatedAt:   time.Now().UTC(),
	}
}

func TestVerificationCodesRoundTrip(t *testing.T) {
	codes := New().VerificationCodes()
	ctx := context.Background()

	require.NoError(t, codes.Insert(ctx, newCode("c1", "ana@example.com")))

	got, err := codes.FindByID(ctx, "c1")
	require.NoError(t, err)
	require.Equal(t, "123456", got.Code)
	require.False(t, got.Accepted)

	_, err = codes.FindByID(ctx, "nope")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestVerificationCodesFindReturnsCopy(t *testing.T) {
	codes := New().VerificationCodes()
	ctx := context.Background()

	require.NoError(t, codes.Insert(ctx, newCode("c1", "ana@example.com")))

	got, err := codes.FindByID(ctx, "c1")
	require.NoError(t, err)
	got.Accepted = true // mutar la copia no toca el store

	again, err := codes.FindByID(ctx, "c1")
	require.NoError(t, err)
	require.False(t, again.Accepted)
}

func TestVerificationCodesAcceptOnce(t *testing.T) {
	codes := New().VerificationCodes()
	ctx := context.Background()

	require.NoError(t, codes.Insert(ctx, newCode("c1", "ana@example.com")))

	ok, err := codes.Accept(ctx, "c1")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = codes.Accept(ctx, "c1")
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = codes.Accept(ctx, "missing")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestVerificationCodesAcceptConcurrent(t *testing.T) {
	codes := New().VerificationCodes()
	ctx := context.Background()

	require.NoError(t, codes.Insert(ctx, newCode("c1", "ana@example.com")))

	const attempts = 32
	var wg sync.WaitGroup
	wins := make(chan struct{}, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := codes.Accept(ctx, "c1"); ok {
				wins <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(wins)

	require.Len(t, wins, 1)
}

func TestActiveCodeExists(t *testing.T) {
	codes := New().VerificationCodes()
	ctx := context.Background()

	active, err := codes.ActiveCodeExists(ctx, "ana@example.com")
	require.NoError(t, err)
	require.False(t, active)

	require.NoError(t, codes.Insert(ctx, newCode("c1", "ana@example.com")))

	active, err = codes.ActiveCodeExists(ctx, "ana@example.com")
	require.NoError(t, err)
	require.True(t, active)

	// un código aceptado deja de contar como activo
	ok, err := codes.Accept(ctx, "c1")
	require.NoError(t, err)
	require.True(t, ok)

	active, err = codes.ActiveCodeExists(ctx, "ana@example.com")
	require.NoError(t, err)
	require.False(t, active)
}

func TestExpiredCodeStillFindable(t *testing.T) {
	codes := New().VerificationCodes()
	ctx := context.Background()

	expired := newCode("c1", "ana@example.com")
	expired.ExpiresAt = time.Now().UTC().Add(-time.Second)
	require.NoError(t, codes.Insert(ctx, expired))

	// no bloquea nuevas emisiones
	active, err := codes.ActiveCodeExists(ctx, "ana@example.com")
	require.NoError(t, err)
	require.False(t, active)

	// pero sigue visible por id dentro de la ventana de retención
	got, err := codes.FindByID(ctx, "c1")
	require.NoError(t, err)
	require.Equal(t, "c1", got.ID)
}

func TestDeleteExpired(t *testing.T) {
	codes := New().VerificationCodes()
	ctx := context.Background()

	expired := newCode("c1", "ana@example.com")
	expired.ExpiresAt = time.Now().UTC().Add(-time.Second)
	require.NoError(t, codes.Insert(ctx, expired))
	require.NoError(t, codes.Insert(ctx, newCode("c2", "otro@example.com")))

	n, err := codes.DeleteExpired(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	_, err = codes.FindByID(ctx, "c1")
	require.ErrorIs(t, err, repository.ErrNotFound)
	_, err = codes.FindByID(ctx, "c2")
	require.NoError(t, err)
}

func TestRefreshTokensExistsAndDelete(t *testing.T) {
	tokens := New().RefreshTokens()
	ctx := context.Background()

	require.NoError(t, tokens.Insert(ctx, "raw-token", "u1"))

	ok, err := tokens.ExistsAndDelete(ctx, "raw-token")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = tokens.ExistsAndDelete(ctx, "raw-token")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRefreshTokensConcurrentConsume(t *testing.T) {
	tokens := New().RefreshTokens()
	ctx := context.Background()

	require.NoError(t, tokens.Insert(ctx, "raw-token", "u1"))

	const attempts = 32
	var wg sync.WaitGroup
	wins := make(chan struct{}, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := tokens.ExistsAndDelete(ctx, "raw-token"); ok {
				wins <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(wins)

	require.Len(t, wins, 1)
}

func TestRefreshTokensDeleteAllForUser(t *testing.T) {
	tokens := New().RefreshTokens()
	ctx := context.Background()

	require.NoError(t, tokens.Insert(ctx, "t1", "u1"))
	require.NoError(t, tokens.Insert(ctx, "t2", "u1"))
	require.NoError(t, tokens.Insert(ctx, "t3", "u2"))

	n, err := tokens.DeleteAllForUser(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, 2, n)

	ok, err := tokens.ExistsAndDelete(ctx, "t3")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestUsersInsertAndFind(t *testing.T) {
	users := New().Users()
	ctx := context.Background()

	created, err := users.Insert(ctx, &repository.User{
		FullName:  "Ana García",
		Email:     "ana@example.com",
		Interests: []string{"music"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.False(t, created.CreatedAt.IsZero())

	byID, err := users.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "Ana García", byID.FullName)

	byEmail, err := users.FindByEmail(ctx, "ANA@example.com")
	require.NoError(t, err)
	require.Equal(t, created.ID, byEmail.ID)
}

func TestUsersInsertConflicts(t *testing.T) {
	users := New().Users()
	ctx := context.Background()

	_, err := users.Insert(ctx, &repository.User{FullName: "Ana", Email: "ana@example.com"})
	require.NoError(t, err)
	_, err = users.Insert(ctx, &repository.User{FullName: "Otra", Email: "ana@example.com"})
	require.ErrorIs(t, err, repository.ErrConflict)

	_, err = users.Insert(ctx, &repository.User{FullName: "Bruno", Phone: "+5491155551234"})
	require.NoError(t, err)
	_, err = users.Insert(ctx, &repository.User{FullName: "Otro", Phone: "+5491155551234"})
	require.ErrorIs(t, err, repository.ErrConflict)
}

func TestUsersEmptyDestinationsNeverMatch(t *testing.T) {
	users := New().Users()
	ctx := context.Background()

	// cuenta solo-email y cuenta solo-teléfono conviven
	_, err := users.Insert(ctx, &repository.User{FullName: "Ana", Email: "ana@example.com"})
	require.NoError(t, err)
	_, err = users.Insert(ctx, &repository.User{FullName: "Bruno", Phone: "+5491155551234"})
	require.NoError(t, err)

	exists, err := users.ExistsByEmail(ctx, "")
	require.NoError(t, err)
	require.False(t, exists)

	exists, err = users.ExistsByPhone(ctx, "")
	require.NoError(t, err)
	require.False(t, exists)

	_, err = users.FindByEmail(ctx, "")
	require.ErrorIs(t, err, repository.ErrNotFound)
	_, err = users.FindByPhone(ctx, "")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestInterestsInsertAllDedupes(t *testing.T) {
	interests := New().Interests()
	ctx := context.Background()

	seed := []repository.Interest{
		{ID: "music", Name: "Música"},
		{ID: "sports", Name: "Deportes"},
	}
	require.NoError(t, interests.InsertAll(ctx, seed))
	require.NoError(t, interests.InsertAll(ctx, seed)) // idempotente

	n, err := interests.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	list, err := interests.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "Deportes", list[0].Name) // orden por nombre
}
