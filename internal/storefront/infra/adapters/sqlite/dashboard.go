package sqlite

import (
	"context"
	"time"

	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/domain/entity"
)

// OrdersBetween returns every order created in [from, to) with its items.
// Aggregation happens in the dashboard service so money stays in decimal.
func (s *Store) OrdersBetween(ctx context.Context, from, to time.Time) ([]entity.Order, error) {
	var rows []orderRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT `+orderColumns+` FROM orders WHERE created_at >= ? AND created_at < ? ORDER BY created_at`,
		formatTime(from), formatTime(to))
	if err != nil {
		return nil, translate(err, "orders between")
	}
	return s.hydrateOrders(ctx, rows)
}

func (s *Store) LowStock(ctx context.Context, threshold, limit int) ([]entity.Product, error) {
	var rows []productRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT `+productColumns+` FROM products
		WHERE  active = 1 AND type <> 'configurable' AND stock_quantity <= ?
		ORDER  BY stock_quantity, sku
		LIMIT  ?`, threshold, limit)
	if err != nil {
		return nil, translate(err, "low stock")
	}
	return toProducts(rows), nil
}
