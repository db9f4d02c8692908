// Package identity resolves who is calling: a bearer token names the user
// and the profiles table says what they may do.
package identity

import (
	"context"
	"time"
)

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

type Profile struct {
	ID        string    `json:"id"`
	FullName  string    `json:"full_name"`
	Phone     string    `json:"phone"`
	AvatarURL string    `json:"avatar_url"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Identity is the caller of one request. The zero value is an anonymous
// visitor.
type Identity struct {
	UserID  string   `json:"user_id"`
	Profile *Profile `json:"profile,omitempty"`
}

func (i Identity) IsAuthenticated() bool { return i.UserID != "" }

func (i Identity) IsAdmin() bool {
	return i.Profile != nil && i.Profile.Role == RoleAdmin
}

type ctxKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the anonymous identity when none was attached.
func FromContext(ctx context.Context) Identity {
	id, _ := ctx.Value(ctxKey{}).(Identity)
	return id
}
