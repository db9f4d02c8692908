package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ariefcatur/go-storefront/internal/address"
	"github.com/ariefcatur/go-storefront/internal/apperr"
	"github.com/ariefcatur/go-storefront/internal/catalog"
	"github.com/ariefcatur/go-storefront/internal/postgres"
	"github.com/jackc/pgx/v5"
)

// Store persists orders. Create writes the order header and every line item
// in one transaction.
type Store interface {
	// ShippingAddress returns the user's address or a NotFound error.
	ShippingAddress(ctx context.Context, userID, addressID string) (address.Address, error)
	Create(ctx context.Context, o Order, items []OrderItem) (Order, error)
	ListByUser(ctx context.Context, userID string) ([]OrderWithItems, error)
	// GetByNumber and GetByID return (nil, nil) when nothing matches.
	GetByNumber(ctx context.Context, number string) (*OrderWithItems, error)
	GetByID(ctx context.Context, id string) (*OrderWithItems, error)
	// UpdateStatus only applies when the row still holds from.
	UpdateStatus(ctx context.Context, id string, from, to Status) (Order, error)
	UpdatePaymentStatus(ctx context.Context, id string, from, to PaymentStatus) (Order, error)
}

const orderColumns = `o.id, o.user_id, o.order_number, o.status, o.payment_status, o.subtotal, o.tax,
	o.shipping_cost, o.total, o.shipping_address_id, o.shipping_address_snapshot, o.payment_method,
	o.notes, o.created_at, o.updated_at`

type Repo struct{ DB postgres.DB }

type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func shippingAddress(ctx context.Context, q rowQuerier, userID, addressID string) (address.Address, error) {
	a, err := address.Scan(q.QueryRow(ctx, `SELECT `+address.Columns+` FROM addresses
	                                        WHERE id = $1 AND user_id = $2`, addressID, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return address.Address{}, apperr.NotFound("address", addressID)
	}
	return a, err
}

func (r *Repo) ShippingAddress(ctx context.Context, userID, addressID string) (address.Address, error) {
	a, err := shippingAddress(ctx, r.DB, userID, addressID)
	if err != nil {
		return address.Address{}, apperr.Persistence("orders.address", err)
	}
	return a, nil
}

// Create re-reads the address inside the transaction so the snapshot matches
// the row the order references.
func (r *Repo) Create(ctx context.Context, o Order, items []OrderItem) (Order, error) {
	err := postgres.InTx(ctx, r.DB, func(tx pgx.Tx) error {
		if o.ShippingAddressID == nil {
			return apperr.Validation("shipping address is required")
		}
		a, err := shippingAddress(ctx, tx, o.UserID, *o.ShippingAddressID)
		if err != nil {
			return err
		}
		o.ShippingAddress = a

		snapshot, err := json.Marshal(o.ShippingAddress)
		if err != nil {
			return err
		}

		err = tx.QueryRow(ctx, `
			INSERT INTO orders(id, user_id, order_number, status, payment_status, subtotal, tax, shipping_cost, total,
			                   shipping_address_id, shipping_address_snapshot, payment_method, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			RETURNING created_at, updated_at`,
			o.ID, o.UserID, o.OrderNumber, string(o.Status), string(o.PaymentStatus), o.Subtotal, o.Tax,
			o.ShippingCost, o.Total, o.ShippingAddressID, snapshot, o.PaymentMethod, o.Notes,
		).Scan(&o.CreatedAt, &o.UpdatedAt)
		if err != nil {
			return err
		}

		for _, it := range items {
			snap, err := json.Marshal(it.ProductSnapshot)
			if err != nil {
				return err
			}
			if _, err := tx.Exec(ctx, `
				INSERT INTO order_items(id, order_id, product_id, product_snapshot, quantity, price_at_purchase, subtotal)
				VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				it.ID, o.ID, it.ProductID, snap, it.Quantity, it.PriceAtPurchase, it.Subtotal,
			); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Order{}, apperr.Persistence("orders.create", err)
	}
	return o, nil
}

func scanOrder(row pgx.Row) (Order, error) {
	var (
		o               Order
		status, payment string
		snapshot        []byte
	)
	err := row.Scan(&o.ID, &o.UserID, &o.OrderNumber, &status, &payment, &o.Subtotal, &o.Tax,
		&o.ShippingCost, &o.Total, &o.ShippingAddressID, &snapshot, &o.PaymentMethod,
		&o.Notes, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return Order{}, err
	}
	o.Status, o.PaymentStatus = Status(status), PaymentStatus(payment)
	if len(snapshot) > 0 {
		if err := json.Unmarshal(snapshot, &o.ShippingAddress); err != nil {
			return Order{}, err
		}
	}
	return o, nil
}

// ListByUser returns the user's orders newest first, each with its items.
func (r *Repo) ListByUser(ctx context.Context, userID string) ([]OrderWithItems, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+orderColumns+` FROM orders o
	                              WHERE o.user_id = $1 ORDER BY o.created_at DESC`, userID)
	if err != nil {
		return nil, apperr.Persistence("orders.list", err)
	}
	defer rows.Close()

	out := []OrderWithItems{}
	ids := []string{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, apperr.Persistence("orders.list", err)
		}
		out = append(out, OrderWithItems{Order: o, Items: []OrderItem{}})
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Persistence("orders.list", err)
	}
	rows.Close()
	if len(ids) == 0 {
		return out, nil
	}

	items, err := r.items(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		if its, ok := items[out[i].ID]; ok {
			out[i].Items = its
		}
	}
	return out, nil
}

func (r *Repo) GetByNumber(ctx context.Context, number string) (*OrderWithItems, error) {
	return r.getOne(ctx, "orders.get_by_number", `o.order_number = $1`, number)
}

func (r *Repo) GetByID(ctx context.Context, id string) (*OrderWithItems, error) {
	return r.getOne(ctx, "orders.get_by_id", `o.id = $1`, id)
}

func (r *Repo) getOne(ctx context.Context, op, where string, arg string) (*OrderWithItems, error) {
	o, err := scanOrder(r.DB.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders o WHERE `+where, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Persistence(op, err)
	}
	items, err := r.items(ctx, []string{o.ID})
	if err != nil {
		return nil, err
	}
	ow := &OrderWithItems{Order: o, Items: items[o.ID]}
	if ow.Items == nil {
		ow.Items = []OrderItem{}
	}
	return ow, nil
}

// items loads line items for the given orders, each with its live product.
func (r *Repo) items(ctx context.Context, orderIDs []string) (map[string][]OrderItem, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT oi.id, oi.order_id, oi.product_id, oi.product_snapshot, oi.quantity, oi.price_at_purchase,
		       oi.subtotal, `+catalog.ProductColumns+`
		FROM order_items oi JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = ANY($1)
		ORDER BY oi.order_id, oi.id`, orderIDs)
	if err != nil {
		return nil, apperr.Persistence("orders.items", err)
	}
	defer rows.Close()

	out := map[string][]OrderItem{}
	for rows.Next() {
		var (
			it   OrderItem
			snap []byte
			ps   catalog.ProductScan
		)
		dest := append([]any{&it.ID, &it.OrderID, &it.ProductID, &snap, &it.Quantity, &it.PriceAtPurchase,
			&it.Subtotal}, ps.Targets()...)
		if err := rows.Scan(dest...); err != nil {
			return nil, apperr.Persistence("orders.items", err)
		}
		if len(snap) > 0 {
			if err := json.Unmarshal(snap, &it.ProductSnapshot); err != nil {
				return nil, apperr.Persistence("orders.items", err)
			}
		}
		p := ps.Product()
		it.Product = &p
		out[it.OrderID] = append(out[it.OrderID], it)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Persistence("orders.items", err)
	}
	return out, nil
}

func (r *Repo) UpdateStatus(ctx context.Context, id string, from, to Status) (Order, error) {
	o, err := scanOrder(r.DB.QueryRow(ctx, `
		UPDATE orders o SET status = $3, updated_at = now()
		WHERE o.id = $1 AND o.status = $2
		RETURNING `+orderColumns, id, string(from), string(to)))
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, conflictOrMissing(ctx, r.DB, id)
	}
	if err != nil {
		return Order{}, apperr.Persistence("orders.update_status", err)
	}
	return o, nil
}

func (r *Repo) UpdatePaymentStatus(ctx context.Context, id string, from, to PaymentStatus) (Order, error) {
	o, err := scanOrder(r.DB.QueryRow(ctx, `
		UPDATE orders o SET payment_status = $3, updated_at = now()
		WHERE o.id = $1 AND o.payment_status = $2
		RETURNING `+orderColumns, id, string(from), string(to)))
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, conflictOrMissing(ctx, r.DB, id)
	}
	if err != nil {
		return Order{}, apperr.Persistence("orders.update_payment_status", err)
	}
	return o, nil
}

// conflictOrMissing tells a lost race apart from an unknown order.
func conflictOrMissing(ctx context.Context, db postgres.DB, id string) error {
	var exists bool
	if err := db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, id).Scan(&exists); err != nil {
		return apperr.Persistence("orders.exists", err)
	}
	if !exists {
		return apperr.NotFound("order", id)
	}
	return fmt.Errorf("%w: order %s changed concurrently", apperr.ErrConflict, id)
}
