package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/ports"
)

var _ ports.ProductRepository = (*Store)(nil)

const productColumns = `id, sku, name, slug, description, brand, price, stock_quantity,
	category_id, type, parent_id, active, created_at, updated_at`

type productRow struct {
	ID            string          `db:"id"`
	SKU           string          `db:"sku"`
	Name          string          `db:"name"`
	Slug          string          `db:"slug"`
	Description   string          `db:"description"`
	Brand         string          `db:"brand"`
	Price         decimal.Decimal `db:"price"`
	StockQuantity int             `db:"stock_quantity"`
	CategoryID    string          `db:"category_id"`
	Type          string          `db:"type"`
	ParentID      sql.NullString  `db:"parent_id"`
	Active        bool            `db:"active"`
	CreatedAt     timestamp       `db:"created_at"`
	UpdatedAt     timestamp       `db:"updated_at"`
}

func (r productRow) toEntity() entity.Product {
	return entity.Product{
		ID:            r.ID,
		SKU:           r.SKU,
		Name:          r.Name,
		Slug:          r.Slug,
		Description:   r.Description,
		Brand:         r.Brand,
		Price:         r.Price,
		StockQuantity: r.StockQuantity,
		CategoryID:    r.CategoryID,
		Type:          entity.ProductType(r.Type),
		ParentID:      r.ParentID.String,
		Active:        r.Active,
		CreatedAt:     r.CreatedAt.Time,
		UpdatedAt:     r.UpdatedAt.Time,
	}
}

func toProducts(rows []productRow) []entity.Product {
	out := make([]entity.Product, len(rows))
	for i, r := range rows {
		out[i] = r.toEntity()
	}
	return out
}

func (s *Store) CreateProduct(ctx context.Context, p *entity.Product) error {
	const q = `
		INSERT INTO products (` + productColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, q,
		p.ID, p.SKU, p.Name, p.Slug, p.Description, p.Brand, p.Price, p.StockQuantity,
		p.CategoryID, string(p.Type), nullableString(p.ParentID), boolToInt(p.Active),
		formatTime(p.CreatedAt), formatTime(p.UpdatedAt),
	)
	return translate(err, "create product "+p.SKU)
}

func (s *Store) UpdateProduct(ctx context.Context, p *entity.Product) error {
	const q = `
		UPDATE products
		SET    sku = ?, name = ?, slug = ?, description = ?, brand = ?, price = ?,
		       stock_quantity = ?, category_id = ?, type = ?, parent_id = ?, active = ?,
		       updated_at = ?
		WHERE  id = ?`

	res, err := s.db.ExecContext(ctx, q,
		p.SKU, p.Name, p.Slug, p.Description, p.Brand, p.Price, p.StockQuantity,
		p.CategoryID, string(p.Type), nullableString(p.ParentID), boolToInt(p.Active),
		formatTime(p.UpdatedAt), p.ID,
	)
	if err != nil {
		return translate(err, "update product "+p.ID)
	}
	return expectAffected(res, "product "+p.ID)
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return translate(err, "delete product "+id)
	}
	return expectAffected(res, "product "+id)
}

func (s *Store) GetProduct(ctx context.Context, id string) (*entity.Product, error) {
	var row productRow
	err := s.db.GetContext(ctx, &row, `SELECT `+productColumns+` FROM products WHERE id = ?`, id)
	if err != nil {
		return nil, translate(err, "product "+id)
	}
	p := row.toEntity()
	return &p, nil
}

func (s *Store) GetProductBySlug(ctx context.Context, slug string) (*entity.Product, error) {
	var row productRow
	err := s.db.GetContext(ctx, &row, `SELECT `+productColumns+` FROM products WHERE slug = ?`, slug)
	if err != nil {
		return nil, translate(err, "product "+slug)
	}
	p := row.toEntity()
	return &p, nil
}

func (s *Store) ListVariants(ctx context.Context, parentID string) ([]entity.Product, error) {
	var rows []productRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT `+productColumns+` FROM products WHERE parent_id = ? ORDER BY sku`, parentID)
	if err != nil {
		return nil, translate(err, "variants of "+parentID)
	}
	return toProducts(rows), nil
}

func (s *Store) ListProducts(ctx context.Context, f entity.ProductFilter) (entity.PageResult[entity.Product], error) {
	var where []string
	var args []any

	if f.CategoryID != "" {
		where = append(where, `(category_id = ? OR category_id IN (SELECT id FROM categories WHERE parent_id = ?))`)
		args = append(args, f.CategoryID, f.CategoryID)
	}
	if f.Brand != "" {
		where = append(where, `brand = ? COLLATE NOCASE`)
		args = append(args, f.Brand)
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		where = append(where, `(name LIKE ? OR sku LIKE ?)`)
		like := "%" + q + "%"
		args = append(args, like, like)
	}
	if f.MinPrice != nil {
		lo, _ := f.MinPrice.Float64()
		where = append(where, `CAST(price AS REAL) >= ?`)
		args = append(args, lo)
	}
	if f.MaxPrice != nil {
		hi, _ := f.MaxPrice.Float64()
		where = append(where, `CAST(price AS REAL) <= ?`)
		args = append(args, hi)
	}
	if f.Type != "" {
		where = append(where, `type = ?`)
		args = append(args, string(f.Type))
	}
	if f.ExcludeVariants {
		where = append(where, `type <> 'variant'`)
	}
	if f.Active != nil {
		where = append(where, `active = ?`)
		args = append(args, boolToInt(*f.Active))
	}
	if f.LowStock != nil {
		where = append(where, `stock_quantity <= ? AND type <> 'configurable'`)
		args = append(args, *f.LowStock)
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	page := f.Page.Normalize()
	result := entity.PageResult[entity.Product]{Page: page.Number, PerPage: page.PerPage}

	if err := s.db.GetContext(ctx, &result.Total, `SELECT COUNT(*) FROM products`+clause, args...); err != nil {
		return result, translate(err, "count products")
	}

	q := fmt.Sprintf(`SELECT %s FROM products%s ORDER BY %s LIMIT ? OFFSET ?`,
		productColumns, clause, productOrder(f.Sort))
	var rows []productRow
	if err := s.db.SelectContext(ctx, &rows, q, append(args, page.PerPage, page.Offset())...); err != nil {
		return result, translate(err, "list products")
	}
	result.Items = toProducts(rows)
	return result, nil
}

func productOrder(sort string) string {
	switch sort {
	case "price_asc":
		return "CAST(price AS REAL) ASC, id"
	case "price_desc":
		return "CAST(price AS REAL) DESC, id"
	case "name":
		return "name COLLATE NOCASE ASC, id"
	default:
		return "created_at DESC, id"
	}
}

func (s *Store) AdjustStock(ctx context.Context, productID string, delta int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE products SET stock_quantity = stock_quantity + ? WHERE id = ? AND stock_quantity + ? >= 0`,
		delta, productID, delta)
	if err != nil {
		return translate(err, "adjust stock "+productID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: adjust stock %s: %w", productID, err)
	}
	switch {
	case n > 0:
		return nil
	case delta >= 0:
		return fmt.Errorf("product %s: %w", productID, entity.ErrNotFound)
	default:
		return fmt.Errorf("adjust stock %s: %w", productID, entity.ErrInsufficientStock)
	}
}

func expectAffected(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: %s: %w", what, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, entity.ErrNotFound)
	}
	return nil
}
