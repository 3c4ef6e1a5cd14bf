package middlewares

import (
	"net/http"
	"strings"

	"github.com/mattyapp/matty-api/internal/observability/logger"
	"github.com/mattyapp/matty-api/internal/token"
)

// =================================================================================
// AUTHENTICATION MIDDLEWARES
// =================================================================================

// Authenticate valida Authorization: Bearer <JWT> con el decoder de access
// tokens y puebla la identidad en el contexto. Nunca responde error: sin
// header, o con token inválido, el request sigue como anónimo. El 401 para
// rutas protegidas lo produce RequireUser.
func Authenticate(decoder *token.Decoder) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ah := strings.TrimSpace(r.Header.Get("Authorization"))
			if ah == "" || !strings.HasPrefix(strings.ToLower(ah), "bearer ") {
				next.ServeHTTP(w, r)
				return
			}
			raw := strings.TrimSpace(ah[len("Bearer "):])

			data, err := decoder.Decode(raw)
			if err != nil {
				// Token inválido o expirado: continuar anónimo.
				logger.From(r.Context()).Debug("bearer token rejected", logger.Err(err))
				next.ServeHTTP(w, r)
				return
			}

			ctx := withIdentity(r.Context(), Identity{
				UserID:   data.Subject,
				Email:    data.Claims["email"],
				FullName: data.Claims["fullName"],
				Token:    raw,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireUser verifica que haya un usuario autenticado en el contexto.
// Debe usarse después de Authenticate.
func RequireUser() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if GetUserID(r.Context()) == "" {
				w.Header().Set("WWW-Authenticate", `Bearer realm="api", error="invalid_token"`)
				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"UNAUTHORIZED"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
