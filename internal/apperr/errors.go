// Package apperr holds the error kinds shared by the storefront aggregates.
//
// Aggregates wrap one of the sentinels below so callers can branch with
// errors.Is without knowing which store produced the failure.
package apperr

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrValidation    = errors.New("validation failed")
	ErrPersistence   = errors.New("persistence failure")
	ErrConflict      = errors.New("conflict")
	ErrLoginRequired = errors.New("login required")
	ErrForbidden     = errors.New("forbidden")
)

// NotFound builds an ErrNotFound with the missing entity in the message.
func NotFound(entity, id string) error {
	return fmt.Errorf("%w: %s %s", ErrNotFound, entity, id)
}

// Validation builds an ErrValidation with a formatted reason.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Persistence wraps a store error. pgx.ErrNoRows becomes ErrNotFound; errors
// that already carry a kind are returned unchanged.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if Classified(err) {
		return err
	}
	return fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
}

// Classified reports whether err already carries one of the kinds above.
func Classified(err error) bool {
	for _, k := range []error{ErrNotFound, ErrValidation, ErrPersistence, ErrConflict, ErrLoginRequired, ErrForbidden} {
		if errors.Is(err, k) {
			return true
		}
	}
	return false
}
