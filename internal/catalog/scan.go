package catalog

import "github.com/shopspring/decimal"

// ProductColumns selects a product aliased p in the order ProductScan expects.
const ProductColumns = `p.id, p.name, p.slug, COALESCE(p.description, ''), p.sku, p.price, p.compare_at_price,
	p.stock_quantity, p.category_id, p.images, p.specifications, p.is_active, p.is_featured,
	p.created_at, p.updated_at`

const categoryJoinColumns = `c.id, c.name, c.slug, c.description, c.parent_id, c.is_active`

// ProductScan holds scan targets for ProductColumns.
type ProductScan struct {
	p         Product
	compareAt decimal.NullDecimal
	images    []byte
	specs     []byte
}

func (s *ProductScan) Targets() []any {
	p := &s.p
	return []any{
		&p.ID, &p.Name, &p.Slug, &p.Description, &p.SKU, &p.Price, &s.compareAt,
		&p.StockQuantity, &p.CategoryID, &s.images, &s.specs, &p.IsActive, &p.IsFeatured,
		&p.CreatedAt, &p.UpdatedAt,
	}
}

func (s *ProductScan) Product() Product {
	p := s.p
	if s.compareAt.Valid {
		v := s.compareAt.Decimal
		p.CompareAtPrice = &v
	}
	p.Images = DecodeImages(s.images)
	p.Specifications = DecodeSpecifications(s.specs)
	return p
}

// categoryScan reads the LEFT JOINed category columns, all nullable.
type categoryScan struct {
	id, name, slug, description, parentID *string
	active                                *bool
}

func (s *categoryScan) targets() []any {
	return []any{&s.id, &s.name, &s.slug, &s.description, &s.parentID, &s.active}
}

func (s *categoryScan) category() *Category {
	if s.id == nil {
		return nil
	}
	c := &Category{ID: *s.id, ParentID: s.parentID}
	if s.name != nil {
		c.Name = *s.name
	}
	if s.slug != nil {
		c.Slug = *s.slug
	}
	if s.description != nil {
		c.Description = *s.description
	}
	if s.active != nil {
		c.IsActive = *s.active
	}
	return c
}
