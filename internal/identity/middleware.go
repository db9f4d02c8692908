package identity

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
)

type ProfileStore interface {
	// Get returns (nil, nil) when the user has no profile row yet.
	Get(ctx context.Context, userID string) (*Profile, error)
}

// Middleware attaches the caller's Identity. A missing Authorization header
// means anonymous; a malformed or invalid token is rejected with 401.
func Middleware(v *TokenVerifier, profiles ProfileStore, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}
			scheme, token, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				unauthorized(w, "expected 'Bearer <token>'")
				return
			}
			claims, err := v.Verify(strings.TrimSpace(token))
			if err != nil {
				log.Debug("token rejected", "err", err)
				unauthorized(w, "invalid or expired token")
				return
			}

			id := Identity{UserID: claims.Subject}
			p, err := profiles.Get(r.Context(), claims.Subject)
			if err != nil {
				log.Error("load profile", "user_id", claims.Subject, "err", err)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "internal error"})
				return
			}
			id.Profile = p
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg, "redirect": "/login"})
}
