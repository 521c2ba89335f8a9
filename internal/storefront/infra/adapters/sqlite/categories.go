package sqlite

import (
	"context"
	"database/sql"

	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/ports"
)

var _ ports.CategoryRepository = (*Store)(nil)

const categoryColumns = `id, name, slug, parent_id, active, sort_order, created_at, updated_at`

type categoryRow struct {
	ID        string         `db:"id"`
	Name      string         `db:"name"`
	Slug      string         `db:"slug"`
	ParentID  sql.NullString `db:"parent_id"`
	Active    bool           `db:"active"`
	SortOrder int            `db:"sort_order"`
	CreatedAt timestamp      `db:"created_at"`
	UpdatedAt timestamp      `db:"updated_at"`
}

func (r categoryRow) toEntity() entity.Category {
	return entity.Category{
		ID:        r.ID,
		Name:      r.Name,
		Slug:      r.Slug,
		ParentID:  r.ParentID.String,
		Active:    r.Active,
		SortOrder: r.SortOrder,
		CreatedAt: r.CreatedAt.Time,
		UpdatedAt: r.UpdatedAt.Time,
	}
}

func (s *Store) CreateCategory(ctx context.Context, c *entity.Category) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO categories (`+categoryColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Slug, nullableString(c.ParentID), boolToInt(c.Active), c.SortOrder,
		formatTime(c.CreatedAt), formatTime(c.UpdatedAt),
	)
	return translate(err, "create category "+c.Slug)
}

func (s *Store) UpdateCategory(ctx context.Context, c *entity.Category) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE categories
		SET    name = ?, slug = ?, parent_id = ?, active = ?, sort_order = ?, updated_at = ?
		WHERE  id = ?`,
		c.Name, c.Slug, nullableString(c.ParentID), boolToInt(c.Active), c.SortOrder,
		formatTime(c.UpdatedAt), c.ID,
	)
	if err != nil {
		return translate(err, "update category "+c.ID)
	}
	return expectAffected(res, "category "+c.ID)
}

func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return translate(err, "delete category "+id)
	}
	return expectAffected(res, "category "+id)
}

func (s *Store) GetCategory(ctx context.Context, id string) (*entity.Category, error) {
	var row categoryRow
	if err := s.db.GetContext(ctx, &row, `SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id); err != nil {
		return nil, translate(err, "category "+id)
	}
	c := row.toEntity()
	return &c, nil
}

func (s *Store) GetCategoryBySlug(ctx context.Context, slug string) (*entity.Category, error) {
	var row categoryRow
	if err := s.db.GetContext(ctx, &row, `SELECT `+categoryColumns+` FROM categories WHERE slug = ?`, slug); err != nil {
		return nil, translate(err, "category "+slug)
	}
	c := row.toEntity()
	return &c, nil
}

func (s *Store) ListCategories(ctx context.Context, activeOnly bool) ([]entity.Category, error) {
	q := `SELECT ` + categoryColumns + ` FROM categories`
	if activeOnly {
		q += ` WHERE active = 1`
	}
	q += ` ORDER BY sort_order, name`

	var rows []categoryRow
	if err := s.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, translate(err, "list categories")
	}
	out := make([]entity.Category, len(rows))
	for i, r := range rows {
		out[i] = r.toEntity()
	}
	return out, nil
}
