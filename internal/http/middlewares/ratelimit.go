package middlewares

import (
	"net"
	"net/http"
	"strconv"

	"github.com/mattyapp/matty-api/internal/observability/logger"
	"github.com/mattyapp/matty-api/internal/rate"
)

// WithRateLimit limita requests con el limiter dado, usando keyFn para
// derivar la clave (típicamente IP o IP+destino). Si el limiter falla
// (ej: redis caído) el request pasa: preferimos degradar el límite antes
// que tirar el endpoint.
func WithRateLimit(limiter rate.Limiter, keyFn func(r *http.Request) string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil {
				next.ServeHTTP(w, r)
				return
			}
			res, err := limiter.Allow(r.Context(), keyFn(r))
			if err != nil {
				logger.From(r.Context()).Warn("rate limiter unavailable", logger.Err(err))
				next.ServeHTTP(w, r)
				return
			}
			if !res.Allowed {
				w.Header().Set("Retry-After", strconv.Itoa(int(res.RetryAfter.Seconds())))
				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":"RATE_LIMITED"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIPKey deriva la clave de rate limit de la IP del cliente.
func ClientIPKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
