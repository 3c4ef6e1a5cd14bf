package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/mattyapp/matty-api/internal/http/middlewares"
	"github.com/mattyapp/matty-api/internal/rate"
)

// RouterOptions agrupa piezas transversales del router.
type RouterOptions struct {
	// SendLimiter limita los endpoints que disparan envío de códigos.
	SendLimiter rate.Limiter
	// AcceptLimiter limita los endpoints que consumen códigos (anti brute-force).
	AcceptLimiter rate.Limiter
	// Metrics es el handler de /metrics (nil = no se expone).
	Metrics http.Handler
	// CORSAllowedOrigins habilita CORS para esos orígenes ("*" permite todos).
	CORSAllowedOrigins []string
}

// NewRouter arma el router chi con la cadena base de middlewares y todas
// las rutas del servicio.
func NewRouter(d *Deps, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(middlewares.WithRequestID())
	r.Use(middlewares.Authenticate(d.AccessDecoder))
	r.Use(middlewares.WithLogging())
	r.Use(WithMetrics)
	if len(opts.CORSAllowedOrigins) > 0 {
		r.Use(corsMiddleware(opts.CORSAllowedOrigins))
	}

	r.Get("/healthz", d.Healthz)
	r.Get("/readyz", d.Readyz)
	if opts.Metrics != nil {
		r.Handle("/metrics", opts.Metrics)
	}

	sendLimited := middlewares.WithRateLimit(opts.SendLimiter, middlewares.ClientIPKey)
	acceptLimited := middlewares.WithRateLimit(opts.AcceptLimiter, middlewares.ClientIPKey)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/registration", func(r chi.Router) {
			r.With(sendLimited).Get("/email/code", d.RegistrationEmailCode)
			r.With(sendLimited).Get("/phone/code", d.RegistrationPhoneCode)
			r.With(acceptLimited).Post("/email", d.RegisterEmail)
			r.With(acceptLimited).Post("/phone", d.RegisterPhone)
		})
		r.Route("/login", func(r chi.Router) {
			r.With(sendLimited).Get("/email/code", d.LoginEmailCode)
			r.With(sendLimited).Get("/phone/code", d.LoginPhoneCode)
			r.With(acceptLimited).Post("/email", d.LoginEmail)
			r.With(acceptLimited).Post("/phone", d.LoginPhone)
		})
		r.Post("/auth/refresh", d.Refresh)
		r.With(middlewares.RequireUser()).Get("/me", d.Me)
		r.Get("/interests", d.ListInterests)
	})

	return r
}

// corsMiddleware: CORS mínimo para los orígenes permitidos.
func corsMiddleware(allowed []string) func(http.Handler) http.Handler {
	allowAll := false
	set := map[string]bool{}
	for _, o := range allowed {
		if o == "*" {
			allowAll = true
		}
		set[strings.ToLower(o)] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && (allowAll || set[strings.ToLower(origin)]) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Vary", "Origin")
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Request-ID")
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
