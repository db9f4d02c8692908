// Package session ties an identity to its cart for the span of one request.
package session

import (
	"context"
	"log/slog"

	"github.com/ariefcatur/go-storefront/internal/cart"
	"github.com/ariefcatur/go-storefront/internal/identity"
)

type Session struct {
	Identity identity.Identity
	Cart     *cart.Cart
}

// Close tears the cart down; reads still in flight are dropped.
func (s *Session) Close() { s.Cart.Close() }

type Manager struct {
	carts cart.Store
	log   *slog.Logger
}

func NewManager(carts cart.Store, log *slog.Logger) *Manager {
	return &Manager{carts: carts, log: log}
}

// Open builds the caller's cart and loads it. The session is returned even
// when the load fails so the caller can still close it.
func (m *Manager) Open(ctx context.Context, id identity.Identity) (*Session, error) {
	s := &Session{Identity: id, Cart: cart.New(m.carts, id.UserID, m.log)}
	if _, err := s.Cart.Fetch(ctx); err != nil {
		return s, err
	}
	return s, nil
}

type ctxKey struct{}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns nil outside a session-scoped route.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(ctxKey{}).(*Session)
	return s
}
