// Package cart implements the per-user shopping cart.
//
// Every mutation writes to the store and then re-reads the whole cart, so the
// items held in memory always carry the product price and stock that were
// current at the last read.
package cart

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ariefcatur/go-storefront/internal/apperr"
	"github.com/shopspring/decimal"
)

type Store interface {
	List(ctx context.Context, userID string) ([]ItemWithProduct, error)
	// Insert adds a row, merging quantities if the user already has the product.
	Insert(ctx context.Context, userID, productID string, qty int) error
	SetQuantity(ctx context.Context, userID, itemID string, qty int) error
	Delete(ctx context.Context, userID, itemID string) error
	DeleteAll(ctx context.Context, userID string) error
}

type Cart struct {
	store  Store
	userID string
	log    *slog.Logger

	mu      sync.Mutex
	items   []ItemWithProduct
	loading bool
	gen     uint64
	closed  bool
}

// New returns an unloaded cart for userID. An empty userID is an anonymous
// visitor whose cart is always empty.
func New(store Store, userID string, log *slog.Logger) *Cart {
	return &Cart{
		store:   store,
		userID:  userID,
		log:     log.With("component", "cart", "user_id", userID),
		loading: true,
	}
}

func (c *Cart) UserID() string { return c.userID }

func (c *Cart) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Fetch re-reads the cart and replaces the in-memory items. A result that
// arrives after a newer Fetch started, or after Close, is dropped.
func (c *Cart) Fetch(ctx context.Context) ([]ItemWithProduct, error) {
	c.mu.Lock()
	if c.userID == "" {
		c.items = nil
		c.loading = false
		c.mu.Unlock()
		return []ItemWithProduct{}, nil
	}
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	items, err := c.store.List(ctx, c.userID)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	if err != nil {
		c.log.Error("fetch cart", "err", err)
		return nil, err
	}
	if c.closed || gen != c.gen {
		c.log.Debug("dropping stale cart read", "gen", gen)
		return c.snapshot(), nil
	}
	c.items = items
	return c.snapshot(), nil
}

// Add puts quantity units of productID in the cart. Anonymous visitors get
// apperr.ErrLoginRequired and nothing changes.
func (c *Cart) Add(ctx context.Context, productID string, quantity int) error {
	if c.userID == "" {
		return apperr.ErrLoginRequired
	}
	if quantity < 1 {
		quantity = 1
	}
	if existing, ok := c.find(productID); ok {
		return c.UpdateQuantity(ctx, existing.ID, existing.Quantity+quantity)
	}

	if err := c.store.Insert(ctx, c.userID, productID, quantity); err != nil {
		c.log.Error("add to cart", "product_id", productID, "err", err)
		return err
	}
	_, err := c.Fetch(ctx)
	return err
}

// UpdateQuantity sets an item's quantity. Zero or less removes the item.
// The quantity is not checked against stock; see ClampQuantity.
func (c *Cart) UpdateQuantity(ctx context.Context, itemID string, quantity int) error {
	if c.userID == "" {
		return apperr.ErrLoginRequired
	}
	if quantity <= 0 {
		return c.Remove(ctx, itemID)
	}
	if err := c.store.SetQuantity(ctx, c.userID, itemID, quantity); err != nil {
		c.log.Error("update quantity", "item_id", itemID, "err", err)
		return err
	}
	_, err := c.Fetch(ctx)
	return err
}

func (c *Cart) Remove(ctx context.Context, itemID string) error {
	if c.userID == "" {
		return apperr.ErrLoginRequired
	}
	if err := c.store.Delete(ctx, c.userID, itemID); err != nil {
		c.log.Error("remove from cart", "item_id", itemID, "err", err)
		return err
	}
	_, err := c.Fetch(ctx)
	return err
}

// Clear empties the cart. The in-memory items are reset without a re-read.
func (c *Cart) Clear(ctx context.Context) error {
	if c.userID == "" {
		return nil
	}
	if err := c.store.DeleteAll(ctx, c.userID); err != nil {
		c.log.Error("clear cart", "err", err)
		return err
	}
	c.mu.Lock()
	c.items = nil
	c.gen++
	c.mu.Unlock()
	return nil
}

// Close ends the cart's session. Reads still in flight are discarded.
func (c *Cart) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

func (c *Cart) Items() []ItemWithProduct {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

func (c *Cart) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, it := range c.items {
		n += it.Quantity
	}
	return n
}

func (c *Cart) Total() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := decimal.Zero
	for _, it := range c.items {
		total = total.Add(it.LineTotal())
	}
	return total
}

func (c *Cart) find(productID string) (ItemWithProduct, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, it := range c.items {
		if it.ProductID == productID {
			return it, true
		}
	}
	return ItemWithProduct{}, false
}

func (c *Cart) snapshot() []ItemWithProduct {
	out := make([]ItemWithProduct, len(c.items))
	copy(out, c.items)
	return out
}
