package identity

import (
	"strings"

	"github.com/ariefcatur/go-storefront/internal/validate"
)

const (
	minPasswordLen = 6
	maxPasswordLen = 72
)

func ValidateEmail(email string) bool { return validate.Email(email) }

func ValidatePhone(phone string) bool { return validate.Phone(phone) }

// ValidatePassword returns a user-facing message when the password is
// rejected.
func ValidatePassword(password string) (bool, string) {
	if len(password) < minPasswordLen {
		return false, "Password must be at least 6 characters long"
	}
	if len(password) > maxPasswordLen {
		return false, "Password must be less than 72 characters"
	}
	return true, ""
}

var authMessages = []struct{ match, message string }{
	{"Invalid login credentials", "Email or password is incorrect"},
	{"Email not confirmed", "Please verify your email address"},
	{"User already registered", "An account with this email already exists"},
	{"Password should be at least 6 characters", "Password must be at least 6 characters long"},
	{"Unable to validate email address: invalid format", "Please enter a valid email address"},
	{"Signup requires a valid password", "Please enter a valid password"},
	{"For security purposes, you can only request this after", "Too many requests. Please try again later"},
}

// AuthErrorMessage turns an auth provider error into something a customer
// can act on.
func AuthErrorMessage(providerErr string) string {
	for _, m := range authMessages {
		if strings.Contains(providerErr, m.match) {
			return m.message
		}
	}
	if providerErr == "" {
		return "An unexpected error occurred"
	}
	return providerErr
}
