package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mattyapp/matty-api/internal/token"
	"github.com/stretchr/testify/require"
)

func identityCapture(captured *Identity, ok *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*captured, *ok = IdentityFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticateNoHeader(t *testing.T) {
	var id Identity
	var ok bool
	h := Authenticate(token.NewDecoder("secret"))(identityCapture(&id, &ok))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/me", nil))

	// sin header el request sigue, anónimo
	require.Equal(t, http.StatusOK, rec.Code)
	require.False(t, ok)
}

func TestAuthenticateInvalidToken(t *testing.T) {
	var id Identity
	var ok bool
	h := Authenticate(token.NewDecoder("secret"))(identityCapture(&id, &ok))

	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.False(t, ok)
}

func TestAuthenticateWrongSecret(t *testing.T) {
	raw, err := token.NewGenerator("other-secret", time.Minute).Generate("u1", nil)
	require.NoError(t, err)

	var id Identity
	var ok bool
	h := Authenticate(token.NewDecoder("secret"))(identityCapture(&id, &ok))

	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.False(t, ok)
}

func TestAuthenticateValidToken(t *testing.T) {
	raw, err := token.NewGenerator("secret", time.Minute).Generate("u1", map[string]string{
		"email":    "ana@example.com",
		"fullName": "Ana García",
	})
	require.NoError(t, err)

	var id Identity
	var ok bool
	h := Authenticate(token.NewDecoder("secret"))(identityCapture(&id, &ok))

	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, ok)
	require.Equal(t, "u1", id.UserID)
	require.Equal(t, "ana@example.com", id.Email)
	require.Equal(t, "Ana García", id.FullName)
	require.Equal(t, raw, id.Token)
}

func TestAuthenticateCaseInsensitiveScheme(t *testing.T) {
	raw, err := token.NewGenerator("secret", time.Minute).Generate("u1", nil)
	require.NoError(t, err)

	var id Identity
	var ok bool
	h := Authenticate(token.NewDecoder("secret"))(identityCapture(&id, &ok))

	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	req.Header.Set("Authorization", "bearer "+raw)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.True(t, ok)
	require.Equal(t, "u1", id.UserID)
}

func TestRequireUserAnonymous(t *testing.T) {
	h := RequireUser()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run for anonymous request")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/me", nil))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Header().Get("WWW-Authenticate"), "Bearer")
	require.JSONEq(t, `{"error":"UNAUTHORIZED"}`, rec.Body.String())
}

func TestRequireUserAuthenticated(t *testing.T) {
	called := false
	h := RequireUser()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	req = req.WithContext(withIdentity(req.Context(), Identity{UserID: "u1"}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.True(t, called)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestChainOrder(t *testing.T) {
	var order []string
	mk := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}), mk("a"), mk("b"))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, []string{"a", "b", "handler"}, order)
}
