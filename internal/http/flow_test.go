package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/mattyapp/matty-api/internal/domain/repository"
	"github.com/mattyapp/matty-api/internal/store/memory"
	"github.com/mattyapp/matty-api/internal/token"
	"github.com/mattyapp/matty-api/internal/verification"
	"github.com/stretchr/testify/require"
)

// captureNotifier guarda el último código despachado, para que el test pueda
// "recibir" el email/SMS.
type captureNotifier struct {
	mu   sync.Mutex
	last *repository.VerificationCode
}

func (n *captureNotifier) Notify(code *repository.VerificationCode) {
	n.mu.Lock()
	defer n.mu.Unlock()
	cp := *code
	n.last = &cp
}

func (n *captureNotifier) lastCode() *repository.VerificationCode {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.last
}

type testEnv struct {
	router   http.Handler
	notifier *captureNotifier
	store    *memory.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	st := memory.New()
	notifier := &captureNotifier{}

	issuer := verification.NewIssuer(10*time.Minute, st.VerificationCodes())
	verifSvc := verification.NewService(issuer, st.VerificationCodes(), notifier)

	tokenSvc := token.NewService(token.Deps{
		AccessTokens:   token.NewGenerator("access-secret", 10*time.Minute),
		RefreshTokens:  token.NewGenerator("refresh-secret", time.Hour),
		RefreshDecoder: token.NewDecoder("refresh-secret"),
		Store:          st.RefreshTokens(),
		Users:          st.Users(),
	})

	deps := &Deps{
		Verification:  verifSvc,
		Tokens:        tokenSvc,
		Users:         st.Users(),
		Interests:     st.Interests(),
		AccessDecoder: token.NewDecoder("access-secret"),
	}
	return &testEnv{
		router:   NewRouter(deps, RouterOptions{}),
		notifier: notifier,
		store:    st,
	}
}

func (e *testEnv) do(t *testing.T, method, target string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

// registerByEmail corre el flujo completo de registro y retorna la respuesta.
func registerByEmail(t *testing.T, env *testEnv, address, fullName string) authResponse {
	t.Helper()
	rec := env.do(t, http.MethodGet, "/v1/registration/email/code?address="+address, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	issued := decodeBody[codeIssuedResponse](t, rec)

	code := env.notifier.lastCode()
	require.NotNil(t, code)
	require.Equal(t, issued.CodeID, code.ID)

	rec = env.do(t, http.MethodPost, "/v1/registration/email", map[string]any{
		"code":      code.Code,
		"code_id":   code.ID,
		"full_name": fullName,
		"interests": []string{"music"},
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody[authResponse](t, rec)
}

func TestRegistrationFlow(t *testing.T) {
	env := newTestEnv(t)

	resp := registerByEmail(t, env, "ana@example.com", "Ana García")
	require.NotEmpty(t, resp.User.ID)
	require.Equal(t, "Ana García", resp.User.FullName)
	require.Equal(t, "ana@example.com", resp.User.Email)
	require.Equal(t, []string{"music"}, resp.User.Interests)
	require.NotEmpty(t, resp.Tokens.AccessToken)
	require.NotEmpty(t, resp.Tokens.RefreshToken)

	// el código notificado es de registro, 6 dígitos
	require.Len(t, env.notifier.lastCode().Code, 6)
}

func TestRegistrationCodeRejectsExistingUser(t *testing.T) {
	env := newTestEnv(t)
	registerByEmail(t, env, "ana@example.com", "Ana García")

	rec := env.do(t, http.MethodGet, "/v1/registration/email/code?address=ana@example.com", nil, nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, CodeUserExists, errorCode(t, rec))
}

func TestRegistrationCodeDuplicateActive(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/v1/registration/email/code?address=ana@example.com", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/v1/registration/email/code?address=ana@example.com", nil, nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, CodeVerificationCodeExists, errorCode(t, rec))
}

func TestRegistrationInvalidAddress(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/v1/registration/email/code?address=not-an-email", nil, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, CodeEmailInvalid, errorCode(t, rec))

	rec = env.do(t, http.MethodGet, "/v1/registration/phone/code?number=abc", nil, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, CodePhoneInvalid, errorCode(t, rec))
}

func TestRegistrationWrongCode(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/v1/registration/email/code?address=ana@example.com", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	issued := decodeBody[codeIssuedResponse](t, rec)

	rec = env.do(t, http.MethodPost, "/v1/registration/email", map[string]any{
		"code":      "000000",
		"code_id":   issued.CodeID,
		"full_name": "Ana",
	}, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, CodeVerificationCodeInvalid, errorCode(t, rec))
}

func TestPhoneRegistrationFlow(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/v1/registration/phone/code?number=%2B5491155551234", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	code := env.notifier.lastCode()
	rec = env.do(t, http.MethodPost, "/v1/registration/phone", map[string]any{
		"code":      code.Code,
		"code_id":   code.ID,
		"full_name": "Bruno",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	resp := decodeBody[authResponse](t, rec)
	require.Equal(t, "+5491155551234", resp.User.Phone)
	require.Empty(t, resp.User.Email)
}

func TestLoginFlow(t *testing.T) {
	env := newTestEnv(t)
	registerByEmail(t, env, "ana@example.com", "Ana García")

	rec := env.do(t, http.MethodGet, "/v1/login/email/code?address=ana@example.com", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	code := env.notifier.lastCode()
	require.Len(t, code.Code, 4) // los códigos de login son de 4 dígitos

	rec = env.do(t, http.MethodPost, "/v1/login/email", map[string]any{
		"code":    code.Code,
		"code_id": code.ID,
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decodeBody[authResponse](t, rec)
	require.Equal(t, "ana@example.com", resp.User.Email)
	require.NotEmpty(t, resp.Tokens.RefreshToken)
}

func TestLoginCodeUnknownDestination(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/v1/login/email/code?address=nadie@example.com", nil, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, CodeUserNotFound, errorCode(t, rec))
}

func TestLoginCodeWrongPurpose(t *testing.T) {
	env := newTestEnv(t)
	registerByEmail(t, env, "ana@example.com", "Ana García")

	// código emitido para login, presentado en el endpoint de registro
	rec := env.do(t, http.MethodGet, "/v1/login/email/code?address=ana@example.com", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	code := env.notifier.lastCode()

	rec = env.do(t, http.MethodPost, "/v1/registration/email", map[string]any{
		"code":      code.Code,
		"code_id":   code.ID,
		"full_name": "Impostora",
	}, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, CodeVerificationCodeInvalid, errorCode(t, rec))
}

func TestRefreshRotationAndReplay(t *testing.T) {
	env := newTestEnv(t)
	resp := registerByEmail(t, env, "ana@example.com", "Ana García")

	rec := env.do(t, http.MethodPost, "/v1/auth/refresh", map[string]any{
		"refresh_token": resp.Tokens.RefreshToken,
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	next := decodeBody[token.TokenPair](t, rec)
	require.NotEqual(t, resp.Tokens.RefreshToken, next.RefreshToken)

	// replay del token ya rotado
	rec = env.do(t, http.MethodPost, "/v1/auth/refresh", map[string]any{
		"refresh_token": resp.Tokens.RefreshToken,
	}, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, CodeInvalidRefreshToken, errorCode(t, rec))

	// el nuevo sigue siendo válido
	rec = env.do(t, http.MethodPost, "/v1/auth/refresh", map[string]any{
		"refresh_token": next.RefreshToken,
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRefreshRejectsGarbage(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/v1/auth/refresh", map[string]any{
		"refresh_token": "garbage",
	}, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, CodeInvalidRefreshToken, errorCode(t, rec))

	rec = env.do(t, http.MethodPost, "/v1/auth/refresh", map[string]any{}, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, CodeInvalidBody, errorCode(t, rec))
}

func TestMeEndpoint(t *testing.T) {
	env := newTestEnv(t)
	resp := registerByEmail(t, env, "ana@example.com", "Ana García")

	// sin token: 401
	rec := env.do(t, http.MethodGet, "/v1/me", nil, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// con access token: perfil propio
	rec = env.do(t, http.MethodGet, "/v1/me", nil, map[string]string{
		"Authorization": "Bearer " + resp.Tokens.AccessToken,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	me := decodeBody[userDTO](t, rec)
	require.Equal(t, resp.User.ID, me.ID)
	require.Equal(t, "ana@example.com", me.Email)

	// el refresh token no sirve como access token
	rec = env.do(t, http.MethodGet, "/v1/me", nil, map[string]string{
		"Authorization": "Bearer " + resp.Tokens.RefreshToken,
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestInterestsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.store.Interests().InsertAll(
		context.Background(),
		[]repository.Interest{{ID: "music", Name: "Música"}},
	))

	rec := env.do(t, http.MethodGet, "/v1/interests", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeBody[[]interestDTO](t, rec)
	require.Len(t, list, 1)
	require.Equal(t, "music", list[0].ID)
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/healthz", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/readyz", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}
