package sqlite

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/ports"
)

var (
	_ ports.ReturnRepository    = (*Store)(nil)
	_ ports.DashboardRepository = (*Store)(nil)
)

const returnSelect = `
	SELECT r.id, r.order_id, o.number AS order_number, r.product_id, r.quantity, r.reason,
	       r.status, r.refund_amount, r.restock, r.created_at, r.updated_at
	FROM   returns r
	JOIN   orders o ON o.id = r.order_id`

type returnRow struct {
	ID           string          `db:"id"`
	OrderID      string          `db:"order_id"`
	OrderNumber  string          `db:"order_number"`
	ProductID    string          `db:"product_id"`
	Quantity     int             `db:"quantity"`
	Reason       string          `db:"reason"`
	Status       string          `db:"status"`
	RefundAmount decimal.Decimal `db:"refund_amount"`
	Restock      bool            `db:"restock"`
	CreatedAt    timestamp       `db:"created_at"`
	UpdatedAt    timestamp       `db:"updated_at"`
}

func (r returnRow) toEntity() entity.Return {
	return entity.Return{
		ID:           r.ID,
		OrderID:      r.OrderID,
		OrderNumber:  r.OrderNumber,
		ProductID:    r.ProductID,
		Quantity:     r.Quantity,
		Reason:       r.Reason,
		Status:       entity.ReturnStatus(r.Status),
		RefundAmount: r.RefundAmount,
		Restock:      r.Restock,
		CreatedAt:    r.CreatedAt.Time,
		UpdatedAt:    r.UpdatedAt.Time,
	}
}

func (s *Store) CreateReturn(ctx context.Context, r *entity.Return) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO returns (id, order_id, product_id, quantity, reason, status, refund_amount, restock, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.OrderID, r.ProductID, r.Quantity, r.Reason, string(r.Status), r.RefundAmount,
		boolToInt(r.Restock), formatTime(r.CreatedAt), formatTime(r.UpdatedAt))
	return translate(err, "create return")
}

func (s *Store) UpdateReturn(ctx context.Context, r *entity.Return) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE returns
		SET    quantity = ?, reason = ?, status = ?, refund_amount = ?, restock = ?, updated_at = ?
		WHERE  id = ?`,
		r.Quantity, r.Reason, string(r.Status), r.RefundAmount, boolToInt(r.Restock), formatTime(r.UpdatedAt), r.ID)
	if err != nil {
		return translate(err, "update return "+r.ID)
	}
	return expectAffected(res, "return "+r.ID)
}

func (s *Store) GetReturn(ctx context.Context, id string) (*entity.Return, error) {
	var row returnRow
	if err := s.db.GetContext(ctx, &row, returnSelect+` WHERE r.id = ?`, id); err != nil {
		return nil, translate(err, "return "+id)
	}
	r := row.toEntity()
	return &r, nil
}

func (s *Store) ListReturns(ctx context.Context, f entity.ReturnFilter) (entity.PageResult[entity.Return], error) {
	var where []string
	var args []any
	if f.OrderID != "" {
		where = append(where, `r.order_id = ?`)
		args = append(args, f.OrderID)
	}
	if f.Status != "" {
		where = append(where, `r.status = ?`)
		args = append(args, string(f.Status))
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	page := f.Page.Normalize()
	result := entity.PageResult[entity.Return]{Page: page.Number, PerPage: page.PerPage}
	if err := s.db.GetContext(ctx, &result.Total, `SELECT COUNT(*) FROM returns r`+clause, args...); err != nil {
		return result, translate(err, "count returns")
	}

	var rows []returnRow
	q := returnSelect + clause + ` ORDER BY r.created_at DESC, r.id LIMIT ? OFFSET ?`
	if err := s.db.SelectContext(ctx, &rows, q, append(args, page.PerPage, page.Offset())...); err != nil {
		return result, translate(err, "list returns")
	}
	result.Items = make([]entity.Return, len(rows))
	for i, r := range rows {
		result.Items[i] = r.toEntity()
	}
	return result, nil
}

func (s *Store) ReturnedQuantity(ctx context.Context, orderID, productID string) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n,
		`SELECT COALESCE(SUM(quantity), 0) FROM returns WHERE order_id = ? AND product_id = ? AND status <> 'rejected'`,
		orderID, productID)
	return n, translate(err, "returned quantity")
}

func (s *Store) RefundedQuantity(ctx context.Context, orderID string) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n,
		`SELECT COALESCE(SUM(quantity), 0) FROM returns WHERE order_id = ? AND status = 'refunded'`, orderID)
	return n, translate(err, "refunded quantity")
}

func (s *Store) CountReturns(ctx context.Context, status entity.ReturnStatus) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM returns WHERE status = ?`, string(status))
	return n, translate(err, "count returns")
}
