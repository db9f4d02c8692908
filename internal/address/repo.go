package address

import (
	"context"
	"errors"

	"github.com/ariefcatur/go-storefront/internal/apperr"
	"github.com/ariefcatur/go-storefront/internal/postgres"
	"github.com/jackc/pgx/v5"
)

// Columns lists address columns in the order Scan expects.
const Columns = `id, user_id, label, full_name, phone, street, city, state, postal_code, country,
	is_default, created_at, updated_at`

func Scan(row pgx.Row) (Address, error) {
	var a Address
	err := row.Scan(&a.ID, &a.UserID, &a.Label, &a.FullName, &a.Phone, &a.Street, &a.City, &a.State,
		&a.PostalCode, &a.Country, &a.IsDefault, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

type Repo struct{ DB postgres.DB }

func (r *Repo) List(ctx context.Context, userID string) ([]Address, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+Columns+` FROM addresses
	                              WHERE user_id = $1 ORDER BY is_default DESC, created_at DESC`, userID)
	if err != nil {
		return nil, apperr.Persistence("address.list", err)
	}
	defer rows.Close()

	out := []Address{}
	for rows.Next() {
		a, err := Scan(rows)
		if err != nil {
			return nil, apperr.Persistence("address.list", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Persistence("address.list", err)
	}
	return out, nil
}

func (r *Repo) Get(ctx context.Context, userID, id string) (Address, error) {
	a, err := Scan(r.DB.QueryRow(ctx, `SELECT `+Columns+` FROM addresses WHERE id = $1 AND user_id = $2`, id, userID))
	if err != nil {
		return Address{}, notFoundOr("address.get", id, err)
	}
	return a, nil
}

func (r *Repo) Count(ctx context.Context, userID string) (int, error) {
	var n int
	if err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM addresses WHERE user_id = $1`, userID).Scan(&n); err != nil {
		return 0, apperr.Persistence("address.count", err)
	}
	return n, nil
}

func (r *Repo) Create(ctx context.Context, a Address) (Address, error) {
	err := postgres.InTx(ctx, r.DB, func(tx pgx.Tx) error {
		if a.IsDefault {
			if _, err := tx.Exec(ctx, `UPDATE addresses SET is_default = false, updated_at = now()
			                           WHERE user_id = $1 AND is_default`, a.UserID); err != nil {
				return err
			}
		}
		return tx.QueryRow(ctx, `
			INSERT INTO addresses(id, user_id, label, full_name, phone, street, city, state, postal_code, country, is_default)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			RETURNING created_at, updated_at`,
			a.ID, a.UserID, a.Label, a.FullName, a.Phone, a.Street, a.City, a.State, a.PostalCode, a.Country, a.IsDefault,
		).Scan(&a.CreatedAt, &a.UpdatedAt)
	})
	if err != nil {
		return Address{}, apperr.Persistence("address.create", err)
	}
	return a, nil
}

func (r *Repo) Delete(ctx context.Context, userID, id string) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM addresses WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return apperr.Persistence("address.delete", err)
	}
	if ct.RowsAffected() == 0 {
		return apperr.NotFound("address", id)
	}
	return nil
}

// SetDefault runs clear-then-set in one transaction. Two statements are
// needed because the one-default index is checked row by row.
func (r *Repo) SetDefault(ctx context.Context, userID, id string) error {
	err := postgres.InTx(ctx, r.DB, func(tx pgx.Tx) error {
		var locked string
		if err := tx.QueryRow(ctx, `SELECT id FROM addresses WHERE id = $1 AND user_id = $2 FOR UPDATE`,
			id, userID).Scan(&locked); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `UPDATE addresses SET is_default = false, updated_at = now()
		                           WHERE user_id = $1 AND is_default AND id <> $2`, userID, id); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `UPDATE addresses SET is_default = true, updated_at = now()
		                        WHERE id = $1 AND user_id = $2`, id, userID)
		return err
	})
	if err != nil {
		return notFoundOr("address.set_default", id, err)
	}
	return nil
}

func notFoundOr(op, id string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound("address", id)
	}
	return apperr.Persistence(op, err)
}
