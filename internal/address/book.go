// Package address keeps each customer's shipping addresses. At most one
// address per user is the default.
package address

import (
	"context"
	"log/slog"

	"github.com/ariefcatur/go-storefront/internal/validate"
	"github.com/google/uuid"
)

type Store interface {
	List(ctx context.Context, userID string) ([]Address, error)
	Get(ctx context.Context, userID, id string) (Address, error)
	Count(ctx context.Context, userID string) (int, error)
	// Create inserts a; when a.IsDefault it first clears the user's current
	// default in the same transaction.
	Create(ctx context.Context, a Address) (Address, error)
	Delete(ctx context.Context, userID, id string) error
	// SetDefault clears the current default then marks id, atomically.
	SetDefault(ctx context.Context, userID, id string) error
}

type Book struct {
	store Store
	log   *slog.Logger
}

func NewBook(store Store, log *slog.Logger) *Book {
	return &Book{store: store, log: log.With("component", "address")}
}

// List returns the default address first, then newest first.
func (b *Book) List(ctx context.Context, userID string) ([]Address, error) {
	return b.store.List(ctx, userID)
}

func (b *Book) Get(ctx context.Context, userID, id string) (Address, error) {
	return b.store.Get(ctx, userID, id)
}

// Add validates and stores a new address. A user's first address becomes
// the default.
func (b *Book) Add(ctx context.Context, userID string, in Input) (Address, error) {
	in = in.normalized()
	if err := validate.Struct(in); err != nil {
		return Address{}, err
	}

	isDefault := in.IsDefault
	if !isDefault {
		n, err := b.store.Count(ctx, userID)
		if err != nil {
			return Address{}, err
		}
		isDefault = n == 0
	}

	a, err := b.store.Create(ctx, Address{
		ID:         uuid.NewString(),
		UserID:     userID,
		Label:      in.Label,
		FullName:   in.FullName,
		Phone:      in.Phone,
		Street:     in.Street,
		City:       in.City,
		State:      in.State,
		PostalCode: in.PostalCode,
		Country:    in.Country,
		IsDefault:  isDefault,
	})
	if err != nil {
		b.log.Error("add address", "user_id", userID, "err", err)
		return Address{}, err
	}
	return a, nil
}

func (b *Book) Delete(ctx context.Context, userID, id string) error {
	if err := b.store.Delete(ctx, userID, id); err != nil {
		b.log.Error("delete address", "user_id", userID, "address_id", id, "err", err)
		return err
	}
	return nil
}

func (b *Book) SetDefault(ctx context.Context, userID, id string) error {
	if err := b.store.SetDefault(ctx, userID, id); err != nil {
		b.log.Error("set default address", "user_id", userID, "address_id", id, "err", err)
		return err
	}
	return nil
}
