package identity

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyRoundTrip(t *testing.T) {
	v := NewTokenVerifier("s3cret", "storefront-auth")
	tok, err := v.Sign("user-123", time.Hour)
	require.NoError(t, err)

	claims, err := v.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.Subject)
}

func TestVerifyRejects(t *testing.T) {
	v := NewTokenVerifier("s3cret", "storefront-auth")

	expired, err := v.Sign("user-123", -time.Minute)
	require.NoError(t, err)
	other, err := NewTokenVerifier("other", "storefront-auth").Sign("user-123", time.Hour)
	require.NoError(t, err)
	wrongIssuer, err := NewTokenVerifier("s3cret", "someone-else").Sign("user-123", time.Hour)
	require.NoError(t, err)
	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    "storefront-auth",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	for name, tok := range map[string]string{
		"expired":      expired,
		"wrong key":    other,
		"wrong issuer": wrongIssuer,
		"no subject":   noSubject,
		"garbage":      "not-a-jwt",
	} {
		_, err := v.Verify(tok)
		assert.ErrorIs(t, err, ErrInvalidToken, name)
	}
}

func TestVerifyWithoutSecret(t *testing.T) {
	_, err := NewTokenVerifier("", "").Verify("x.y.z")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
