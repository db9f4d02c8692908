package catalog

import (
	"context"
	"errors"

	"github.com/ariefcatur/go-storefront/internal/apperr"
	"github.com/ariefcatur/go-storefront/internal/postgres"
	"github.com/jackc/pgx/v5"
)

// Reader serves the active catalog. Single-row lookups return (nil, nil)
// when nothing matches.
type Reader struct{ DB postgres.DB }

func (r *Reader) Products(ctx context.Context, f Filters) ([]ProductWithCategory, error) {
	sql, args := productQuery(f)
	rows, err := r.DB.Query(ctx, sql, args...)
	if err != nil {
		return nil, apperr.Persistence("catalog.products", err)
	}
	defer rows.Close()

	out := []ProductWithCategory{}
	for rows.Next() {
		var (
			ps ProductScan
			cs categoryScan
		)
		if err := rows.Scan(append(ps.Targets(), cs.targets()...)...); err != nil {
			return nil, apperr.Persistence("catalog.products", err)
		}
		out = append(out, ProductWithCategory{Product: ps.Product(), Category: cs.category()})
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Persistence("catalog.products", err)
	}
	return out, nil
}

func (r *Reader) FeaturedProducts(ctx context.Context) ([]ProductWithCategory, error) {
	return r.Products(ctx, Filters{Featured: true})
}

func (r *Reader) ProductBySlug(ctx context.Context, slug string) (*ProductWithCategory, error) {
	var (
		ps ProductScan
		cs categoryScan
	)
	err := r.DB.QueryRow(ctx, `SELECT `+ProductColumns+`, `+categoryJoinColumns+`
	                           FROM products p LEFT JOIN categories c ON c.id = p.category_id
	                           WHERE p.slug = $1 AND p.is_active = true`, slug).
		Scan(append(ps.Targets(), cs.targets()...)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Persistence("catalog.product_by_slug", err)
	}
	return &ProductWithCategory{Product: ps.Product(), Category: cs.category()}, nil
}

func (r *Reader) ProductByID(ctx context.Context, id string) (*Product, error) {
	var ps ProductScan
	err := r.DB.QueryRow(ctx, `SELECT `+ProductColumns+` FROM products p
	                           WHERE p.id = $1 AND p.is_active = true`, id).Scan(ps.Targets()...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Persistence("catalog.product_by_id", err)
	}
	p := ps.Product()
	return &p, nil
}

const categorySelect = `SELECT id, name, slug, COALESCE(description, ''), COALESCE(parent_id, ''), is_active
                        FROM categories`

func (r *Reader) Categories(ctx context.Context) ([]Category, error) {
	rows, err := r.DB.Query(ctx, categorySelect+` WHERE is_active = true ORDER BY name`)
	if err != nil {
		return nil, apperr.Persistence("catalog.categories", err)
	}
	defer rows.Close()

	out := []Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, apperr.Persistence("catalog.categories", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Persistence("catalog.categories", err)
	}
	return out, nil
}

func (r *Reader) CategoryBySlug(ctx context.Context, slug string) (*Category, error) {
	c, err := scanCategory(r.DB.QueryRow(ctx, categorySelect+` WHERE slug = $1 AND is_active = true`, slug))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Persistence("catalog.category_by_slug", err)
	}
	return &c, nil
}

func scanCategory(row pgx.Row) (Category, error) {
	var (
		c      Category
		parent string
	)
	if err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &parent, &c.IsActive); err != nil {
		return Category{}, err
	}
	if parent != "" {
		c.ParentID = &parent
	}
	return c, nil
}
