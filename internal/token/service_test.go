package token

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/mattyapp/matty-api/internal/domain/repository"
	tokens "github.com/mattyapp/matty-api/internal/security/token"
	"github.com/stretchr/testify/require"
)

// fakeTokenStore implementa repository.RefreshTokenRepository en memoria.
type fakeTokenStore struct {
	mu     sync.Mutex
	byHash map[string]string
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{byHash: map[string]string{}}
}

func (f *fakeTokenStore) Insert(ctx context.Context, token, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byHash[tokens.SHA256Base64URL(token)] = userID
	return nil
}

func (f *fakeTokenStore) ExistsAndDelete(ctx context.Context, token string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	h := tokens.SHA256Base64URL(token)
	if _, ok := f.byHash[h]; !ok {
		return false, nil
	}
	delete(f.byHash, h)
	return true, nil
}

func (f *fakeTokenStore) DeleteAllForUser(ctx context.Context, userID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for h, uid := range f.byHash {
		if uid == userID {
			delete(f.byHash, h)
			n++
		}
	}
	return n, nil
}

func (f *fakeTokenStore) size() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byHash)
}

// fakeUsers implementa repository.UserRepository con un solo usuario.
type fakeUsers struct {
	user *repository.User
}

func (f *fakeUsers) FindByID(ctx context.Context, id string) (*repository.User, error) {
	if f.user != nil && f.user.ID == id {
		return f.user, nil
	}
	return nil, repository.ErrNotFound
}
func (f *fakeUsers) FindByEmail(ctx context.Context, email string) (*repository.User, error) {
	return nil, repository.ErrNotFound
}
func (f *fakeUsers) FindByPhone(ctx context.Context, phone string) (*repository.User, error) {
	return nil, repository.ErrNotFound
}
func (f *fakeUsers) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return false, nil
}
func (f *fakeUsers) ExistsByPhone(ctx context.Context, phone string) (bool, error) {
	return false, nil
}
func (f *fakeUsers) Insert(ctx context.Context, user *repository.User) (*repository.User, error) {
	return user, nil
}

func newTestService(store *fakeTokenStore, users *fakeUsers) *Service {
	return NewService(Deps{
		AccessTokens:   NewGenerator("access-secret", 10*time.Minute),
		RefreshTokens:  NewGenerator("refresh-secret", time.Hour),
		RefreshDecoder: NewDecoder("refresh-secret"),
		Store:          store,
		Users:          users,
	})
}

func testUser() *repository.User {
	return &repository.User{ID: "u1", FullName: "Ana García", Email: "ana@example.com"}
}

func TestEmitTokensPersistsRefresh(t *testing.T) {
	store := newFakeTokenStore()
	svc := newTestService(store, &fakeUsers{user: testUser()})

	pair, err := svc.EmitTokens(context.Background(), testUser())
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	require.NotEqual(t, pair.AccessToken, pair.RefreshToken)
	require.Equal(t, 1, store.size())

	// el access lleva los claims de display
	data, err := NewDecoder("access-secret").Decode(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "u1", data.Subject)
	require.Equal(t, "ana@example.com", data.Claims["email"])
	require.Equal(t, "Ana García", data.Claims["fullName"])

	// el refresh lleva solo el subject
	rdata, err := NewDecoder("refresh-secret").Decode(pair.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, "u1", rdata.Subject)
	require.Empty(t, rdata.Claims["email"])
}

func TestEmitTokensRequiresUserID(t *testing.T) {
	svc := newTestService(newFakeTokenStore(), &fakeUsers{})

	_, err := svc.EmitTokens(context.Background(), &repository.User{FullName: "sin id"})
	require.ErrorIs(t, err, ErrInvalidState)

	_, err = svc.EmitTokens(context.Background(), nil)
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestRefreshTokensRotates(t *testing.T) {
	store := newFakeTokenStore()
	svc := newTestService(store, &fakeUsers{user: testUser()})

	pair, err := svc.EmitTokens(context.Background(), testUser())
	require.NoError(t, err)

	next, err := svc.RefreshTokens(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	require.NotEmpty(t, next.AccessToken)
	require.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	// el viejo quedó consumido, el nuevo está en el store
	require.Equal(t, 1, store.size())
	ok, err := store.ExistsAndDelete(context.Background(), next.RefreshToken)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestEmitTokensDistinctPerSession(t *testing.T) {
	store := newFakeTokenStore()
	svc := newTestService(store, &fakeUsers{user: testUser()})

	// dos sesiones del mismo usuario en el mismo segundo: dos refresh
	// tokens distintos, dos entradas en el store
	first, err := svc.EmitTokens(context.Background(), testUser())
	require.NoError(t, err)
	second, err := svc.EmitTokens(context.Background(), testUser())
	require.NoError(t, err)

	require.NotEqual(t, first.RefreshToken, second.RefreshToken)
	require.Equal(t, 2, store.size())
}

func TestRefreshTokensSingleUse(t *testing.T) {
	store := newFakeTokenStore()
	svc := newTestService(store, &fakeUsers{user: testUser()})

	pair, err := svc.EmitTokens(context.Background(), testUser())
	require.NoError(t, err)

	_, err = svc.RefreshTokens(context.Background(), pair.RefreshToken)
	require.NoError(t, err)

	// replay del mismo token: consumido, nunca se reusa
	_, err = svc.RefreshTokens(context.Background(), pair.RefreshToken)
	require.ErrorIs(t, err, ErrUnknownRefreshToken)
	require.True(t, IsUnauthorized(err))
}

func TestRefreshTokensRejectsForeignSignature(t *testing.T) {
	svc := newTestService(newFakeTokenStore(), &fakeUsers{user: testUser()})

	// firmado con el secreto de access, no de refresh
	foreign, err := NewGenerator("access-secret", time.Hour).Generate("u1", nil)
	require.NoError(t, err)

	_, err = svc.RefreshTokens(context.Background(), foreign)
	require.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestRefreshTokensRejectsUnknown(t *testing.T) {
	svc := newTestService(newFakeTokenStore(), &fakeUsers{user: testUser()})

	// bien firmado pero nunca insertado (simula revocación)
	raw, err := NewGenerator("refresh-secret", time.Hour).Generate("u1", nil)
	require.NoError(t, err)

	_, err = svc.RefreshTokens(context.Background(), raw)
	require.ErrorIs(t, err, ErrUnknownRefreshToken)
}

func TestRefreshTokensUserGone(t *testing.T) {
	store := newFakeTokenStore()
	users := &fakeUsers{user: testUser()}
	svc := newTestService(store, users)

	pair, err := svc.EmitTokens(context.Background(), testUser())
	require.NoError(t, err)

	users.user = nil // la cuenta se borró después de emitir

	_, err = svc.RefreshTokens(context.Background(), pair.RefreshToken)
	require.ErrorIs(t, err, ErrUserNotFound)

	// el token igual quedó consumido: fail-closed
	_, err = svc.RefreshTokens(context.Background(), pair.RefreshToken)
	require.ErrorIs(t, err, ErrUnknownRefreshToken)
}

func TestRevokeAll(t *testing.T) {
	store := newFakeTokenStore()
	svc := newTestService(store, &fakeUsers{user: testUser()})

	_, err := svc.EmitTokens(context.Background(), testUser())
	require.NoError(t, err)
	_, err = svc.EmitTokens(context.Background(), testUser())
	require.NoError(t, err)

	n, err := svc.RevokeAll(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, 0, store.size())
}
