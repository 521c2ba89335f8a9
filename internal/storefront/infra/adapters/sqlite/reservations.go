package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/ports"
)

var (
	_ ports.ReservationRepository = (*Store)(nil)
	_ ports.PaymentRepository     = (*Store)(nil)
)

func (s *Store) Reserve(ctx context.Context, orderID string, items []entity.OrderItem) error {
	now := formatTime(time.Now())
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		for _, it := range items {
			res, err := tx.ExecContext(ctx,
				`UPDATE products SET stock_quantity = stock_quantity - ? WHERE id = ? AND stock_quantity >= ?`,
				it.Quantity, it.ProductID, it.Quantity)
			if err != nil {
				return translate(err, "reserve "+it.SKU)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("sqlite: reserve %s: %w", it.SKU, err)
			}
			if n == 0 {
				return fmt.Errorf("%s: %w", it.SKU, entity.ErrInsufficientStock)
			}
			_, err = tx.ExecContext(ctx, `
				INSERT INTO stock_reservations (order_id, product_id, quantity, created_at)
				VALUES (?, ?, ?, ?)
				ON CONFLICT (order_id, product_id) DO UPDATE SET quantity = quantity + excluded.quantity`,
				orderID, it.ProductID, it.Quantity, now)
			if err != nil {
				return translate(err, "record reservation "+it.SKU)
			}
		}
		return nil
	})
}

func (s *Store) Release(ctx context.Context, orderID string) (bool, error) {
	released := false
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		var held []struct {
			ProductID string `db:"product_id"`
			Quantity  int    `db:"quantity"`
		}
		if err := tx.SelectContext(ctx, &held,
			`SELECT product_id, quantity FROM stock_reservations WHERE order_id = ?`, orderID); err != nil {
			return translate(err, "reservations of "+orderID)
		}
		for _, h := range held {
			if _, err := tx.ExecContext(ctx,
				`UPDATE products SET stock_quantity = stock_quantity + ? WHERE id = ?`,
				h.Quantity, h.ProductID); err != nil {
				return translate(err, "restore stock "+h.ProductID)
			}
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM stock_reservations WHERE order_id = ?`, orderID); err != nil {
			return translate(err, "drop reservations of "+orderID)
		}
		released = len(held) > 0
		return nil
	})
	return released, err
}

type paymentRow struct {
	OrderID        string          `db:"order_id"`
	Method         string          `db:"method"`
	Amount         decimal.Decimal `db:"amount"`
	Status         string          `db:"status"`
	TransactionRef string          `db:"transaction_ref"`
	CreatedAt      timestamp       `db:"created_at"`
}

func (s *Store) SavePayment(ctx context.Context, p *entity.Payment) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO payments (order_id, method, amount, status, transaction_ref, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (order_id) DO UPDATE SET
			method = excluded.method, amount = excluded.amount,
			status = excluded.status, transaction_ref = excluded.transaction_ref`,
		p.OrderID, string(p.Method), p.Amount, string(p.Status), p.TransactionRef, formatTime(p.CreatedAt))
	return translate(err, "save payment for "+p.OrderID)
}

func (s *Store) GetPayment(ctx context.Context, orderID string) (*entity.Payment, error) {
	var row paymentRow
	err := s.db.GetContext(ctx, &row,
		`SELECT order_id, method, amount, status, transaction_ref, created_at FROM payments WHERE order_id = ?`, orderID)
	if err != nil {
		return nil, translate(err, "payment for "+orderID)
	}
	return &entity.Payment{
		OrderID:        row.OrderID,
		Method:         entity.PaymentMethod(row.Method),
		Amount:         row.Amount,
		Status:         entity.PaymentStatus(row.Status),
		TransactionRef: row.TransactionRef,
		CreatedAt:      row.CreatedAt.Time,
	}, nil
}
