package httpx

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/ariefcatur/go-storefront/internal/identity"
	"github.com/ariefcatur/go-storefront/internal/orders"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type RouterOptions struct {
	Timeout  time.Duration
	Verifier *identity.TokenVerifier
	Profiles identity.ProfileStore
	Log      *slog.Logger
}

// NewRouter returns the base mux: request ids, access logs, panics turned
// into 500s, a per-request timeout and optional bearer identity.
func NewRouter(o RouterOptions) *chi.Mux {
	if o.Timeout <= 0 {
		o.Timeout = 15 * time.Second
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(o.Timeout))
	r.Use(traceIDs)
	// chi rejects middleware registered after the first route.
	if o.Verifier != nil {
		r.Use(identity.Middleware(o.Verifier, o.Profiles, o.Log))
	}
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

// traceIDs hands the request id to anything that publishes events.
func traceIDs(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := orders.WithTraceID(r.Context(), middleware.GetReqID(r.Context()))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
