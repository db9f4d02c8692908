package validate

import (
	"testing"

	"github.com/ariefcatur/go-storefront/internal/apperr"
	"github.com/stretchr/testify/assert"
)

func TestPhone(t *testing.T) {
	for _, ok := range []string{"+91 9876 543210", "(022) 555-1234", "9876543210"} {
		assert.True(t, Phone(ok), ok)
	}
	for _, bad := range []string{"", "call me", "12-34-56-78-90-12"} {
		assert.False(t, Phone(bad), bad)
	}
}

func TestEmail(t *testing.T) {
	assert.True(t, Email("a@b.co"))
	assert.False(t, Email("a@b"))
	assert.False(t, Email("a b@c.io"))
}

type sample struct {
	Name  string `validate:"required,max=5"`
	Phone string `validate:"required,phone"`
	Email string `validate:"omitempty,storefront_email"`
}

func TestStruct(t *testing.T) {
	assert.NoError(t, Struct(sample{Name: "Asha", Phone: "9876543210"}))

	err := Struct(sample{Name: "Ashalata", Phone: "nope", Email: "x"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Contains(t, err.Error(), "name must be at most 5 characters")
	assert.Contains(t, err.Error(), "phone is not a valid phone number")
	assert.Contains(t, err.Error(), "email is not a valid email address")

	err = Struct(sample{})
	assert.Contains(t, err.Error(), "name is required")
}
