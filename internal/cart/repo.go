package cart

import (
	"context"

	"github.com/ariefcatur/go-storefront/internal/apperr"
	"github.com/ariefcatur/go-storefront/internal/catalog"
	"github.com/ariefcatur/go-storefront/internal/postgres"
	"github.com/google/uuid"
)

// Repo is the Postgres Store. Every statement is scoped to the owning user.
type Repo struct{ DB postgres.DB }

func (r *Repo) List(ctx context.Context, userID string) ([]ItemWithProduct, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT ci.id, ci.user_id, ci.product_id, ci.quantity, ci.created_at, ci.updated_at, `+catalog.ProductColumns+`
		FROM cart_items ci JOIN products p ON p.id = ci.product_id
		WHERE ci.user_id = $1
		ORDER BY ci.created_at, ci.id`, userID)
	if err != nil {
		return nil, apperr.Persistence("cart.list", err)
	}
	defer rows.Close()

	out := []ItemWithProduct{}
	for rows.Next() {
		var (
			it ItemWithProduct
			ps catalog.ProductScan
		)
		dest := append([]any{&it.ID, &it.UserID, &it.ProductID, &it.Quantity, &it.CreatedAt, &it.UpdatedAt}, ps.Targets()...)
		if err := rows.Scan(dest...); err != nil {
			return nil, apperr.Persistence("cart.list", err)
		}
		it.Product = ps.Product()
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Persistence("cart.list", err)
	}
	return out, nil
}

func (r *Repo) Insert(ctx context.Context, userID, productID string, qty int) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO cart_items(id, user_id, product_id, quantity)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = now()`,
		uuid.NewString(), userID, productID, qty)
	return apperr.Persistence("cart.insert", err)
}

func (r *Repo) SetQuantity(ctx context.Context, userID, itemID string, qty int) error {
	ct, err := r.DB.Exec(ctx, `UPDATE cart_items SET quantity = $3, updated_at = now()
	                           WHERE id = $1 AND user_id = $2`, itemID, userID, qty)
	if err != nil {
		return apperr.Persistence("cart.set_quantity", err)
	}
	if ct.RowsAffected() == 0 {
		return apperr.NotFound("cart item", itemID)
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, userID, itemID string) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM cart_items WHERE id = $1 AND user_id = $2`, itemID, userID)
	if err != nil {
		return apperr.Persistence("cart.delete", err)
	}
	if ct.RowsAffected() == 0 {
		return apperr.NotFound("cart item", itemID)
	}
	return nil
}

func (r *Repo) DeleteAll(ctx context.Context, userID string) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID)
	return apperr.Persistence("cart.delete_all", err)
}
