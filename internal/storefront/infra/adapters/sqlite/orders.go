package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/ports"
)

var _ ports.OrderRepository = (*Store)(nil)

const orderColumns = `id, number, customer_id, session_id, email, status, payment_status,
	shipping_method, pickup_point_id, payment_method, shipping_address, billing_address,
	subtotal, shipping_total, vat_rate, tax_total, total_excl_tax, total_incl_tax,
	country_code, currency, idempotency_key, notes, created_at, updated_at`

type orderRow struct {
	ID              string          `db:"id"`
	Number          string          `db:"number"`
	CustomerID      sql.NullString  `db:"customer_id"`
	SessionID       sql.NullString  `db:"session_id"`
	Email           string          `db:"email"`
	Status          string          `db:"status"`
	PaymentStatus   string          `db:"payment_status"`
	ShippingMethod  string          `db:"shipping_method"`
	PickupPointID   string          `db:"pickup_point_id"`
	PaymentMethod   string          `db:"payment_method"`
	ShippingAddress string          `db:"shipping_address"`
	BillingAddress  string          `db:"billing_address"`
	Subtotal        decimal.Decimal `db:"subtotal"`
	ShippingTotal   decimal.Decimal `db:"shipping_total"`
	VATRate         decimal.Decimal `db:"vat_rate"`
	TaxTotal        decimal.Decimal `db:"tax_total"`
	TotalExclTax    decimal.Decimal `db:"total_excl_tax"`
	TotalInclTax    decimal.Decimal `db:"total_incl_tax"`
	CountryCode     string          `db:"country_code"`
	Currency        string          `db:"currency"`
	IdempotencyKey  sql.NullString  `db:"idempotency_key"`
	Notes           string          `db:"notes"`
	CreatedAt       timestamp       `db:"created_at"`
	UpdatedAt       timestamp       `db:"updated_at"`
}

type orderItemRow struct {
	OrderID   string          `db:"order_id"`
	ProductID string          `db:"product_id"`
	SKU       string          `db:"sku"`
	Name      string          `db:"name"`
	Quantity  int             `db:"quantity"`
	UnitPrice decimal.Decimal `db:"unit_price"`
}

func (r orderRow) toEntity() (entity.Order, error) {
	o := entity.Order{
		ID:             r.ID,
		Number:         r.Number,
		CustomerID:     r.CustomerID.String,
		SessionID:      r.SessionID.String,
		Email:          r.Email,
		Status:         entity.OrderStatus(r.Status),
		PaymentStatus:  entity.PaymentStatus(r.PaymentStatus),
		ShippingMethod: entity.ShippingMethod(r.ShippingMethod),
		PickupPointID:  r.PickupPointID,
		PaymentMethod:  entity.PaymentMethod(r.PaymentMethod),
		Totals: entity.Totals{
			Subtotal:     r.Subtotal,
			Shipping:     r.ShippingTotal,
			VATRate:      r.VATRate,
			Tax:          r.TaxTotal,
			TotalExclTax: r.TotalExclTax,
			TotalInclTax: r.TotalInclTax,
			CountryCode:  r.CountryCode,
			Currency:     r.Currency,
		},
		IdempotencyKey: r.IdempotencyKey.String,
		Notes:          r.Notes,
		CreatedAt:      r.CreatedAt.Time,
		UpdatedAt:      r.UpdatedAt.Time,
	}
	if err := json.Unmarshal([]byte(r.ShippingAddress), &o.ShippingAddress); err != nil {
		return o, fmt.Errorf("sqlite: order %s shipping address: %w", r.Number, err)
	}
	if err := json.Unmarshal([]byte(r.BillingAddress), &o.BillingAddress); err != nil {
		return o, fmt.Errorf("sqlite: order %s billing address: %w", r.Number, err)
	}
	return o, nil
}

func (s *Store) CreateOrder(ctx context.Context, o *entity.Order) error {
	shipping, err := json.Marshal(o.ShippingAddress)
	if err != nil {
		return fmt.Errorf("sqlite: encode shipping address: %w", err)
	}
	billing, err := json.Marshal(o.BillingAddress)
	if err != nil {
		return fmt.Errorf("sqlite: encode billing address: %w", err)
	}

	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO orders (`+orderColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			o.ID, o.Number, nullableString(o.CustomerID), nullableString(o.SessionID), o.Email,
			string(o.Status), string(o.PaymentStatus), string(o.ShippingMethod), o.PickupPointID,
			string(o.PaymentMethod), string(shipping), string(billing),
			o.Totals.Subtotal, o.Totals.Shipping, o.Totals.VATRate, o.Totals.Tax,
			o.Totals.TotalExclTax, o.Totals.TotalInclTax, o.Totals.CountryCode, o.Totals.Currency,
			nullableString(o.IdempotencyKey), o.Notes, formatTime(o.CreatedAt), formatTime(o.UpdatedAt),
		)
		if err != nil {
			return translate(err, "create order "+o.Number)
		}
		for _, it := range o.Items {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO order_items (order_id, product_id, sku, name, quantity, unit_price) VALUES (?, ?, ?, ?, ?, ?)`,
				o.ID, it.ProductID, it.SKU, it.Name, it.Quantity, it.UnitPrice)
			if err != nil {
				return translate(err, "create order item "+it.SKU)
			}
		}
		return nil
	})
}

func (s *Store) getOrderWhere(ctx context.Context, where string, arg any, what string) (*entity.Order, error) {
	var row orderRow
	if err := s.db.GetContext(ctx, &row, `SELECT `+orderColumns+` FROM orders WHERE `+where, arg); err != nil {
		return nil, translate(err, what)
	}
	orders, err := s.hydrateOrders(ctx, []orderRow{row})
	if err != nil {
		return nil, err
	}
	return &orders[0], nil
}

func (s *Store) GetOrder(ctx context.Context, id string) (*entity.Order, error) {
	return s.getOrderWhere(ctx, `id = ?`, id, "order "+id)
}

func (s *Store) GetOrderByNumber(ctx context.Context, number string) (*entity.Order, error) {
	return s.getOrderWhere(ctx, `number = ?`, number, "order "+number)
}

func (s *Store) GetOrderByIdempotencyKey(ctx context.Context, key string) (*entity.Order, error) {
	return s.getOrderWhere(ctx, `idempotency_key = ? AND status <> 'cancelled'`, key, "order for idempotency key")
}

// hydrateOrders decodes rows and attaches their items with a single query.
func (s *Store) hydrateOrders(ctx context.Context, rows []orderRow) ([]entity.Order, error) {
	out := make([]entity.Order, len(rows))
	if len(rows) == 0 {
		return out, nil
	}

	ids := make([]string, len(rows))
	index := make(map[string]int, len(rows))
	for i, r := range rows {
		o, err := r.toEntity()
		if err != nil {
			return nil, err
		}
		out[i] = o
		ids[i] = r.ID
		index[r.ID] = i
	}

	q, args, err := sqlx.In(`
		SELECT order_id, product_id, sku, name, quantity, unit_price
		FROM   order_items
		WHERE  order_id IN (?)
		ORDER  BY order_id, sku`, ids)
	if err != nil {
		return nil, fmt.Errorf("sqlite: order items query: %w", err)
	}
	var items []orderItemRow
	if err := s.db.SelectContext(ctx, &items, s.db.Rebind(q), args...); err != nil {
		return nil, translate(err, "order items")
	}
	for _, it := range items {
		i := index[it.OrderID]
		out[i].Items = append(out[i].Items, entity.OrderItem{
			ProductID: it.ProductID,
			SKU:       it.SKU,
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}
	return out, nil
}

func orderWhere(f entity.OrderFilter) (string, []any) {
	var where []string
	var args []any
	if f.CustomerID != "" {
		where = append(where, `customer_id = ?`)
		args = append(args, f.CustomerID)
	}
	if f.Status != "" {
		where = append(where, `status = ?`)
		args = append(args, string(f.Status))
	}
	if f.PaymentStatus != "" {
		where = append(where, `payment_status = ?`)
		args = append(args, string(f.PaymentStatus))
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		like := "%" + q + "%"
		where = append(where, `(number LIKE ? OR email LIKE ?)`)
		args = append(args, like, like)
	}
	if f.From != nil {
		where = append(where, `created_at >= ?`)
		args = append(args, formatTime(*f.From))
	}
	if f.To != nil {
		where = append(where, `created_at < ?`)
		args = append(args, formatTime(*f.To))
	}
	if len(where) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(where, " AND "), args
}

func (s *Store) ListOrders(ctx context.Context, f entity.OrderFilter) (entity.PageResult[entity.Order], error) {
	clause, args := orderWhere(f)
	page := f.Page.Normalize()
	result := entity.PageResult[entity.Order]{Page: page.Number, PerPage: page.PerPage}

	if err := s.db.GetContext(ctx, &result.Total, `SELECT COUNT(*) FROM orders`+clause, args...); err != nil {
		return result, translate(err, "count orders")
	}

	var rows []orderRow
	q := `SELECT ` + orderColumns + ` FROM orders` + clause + ` ORDER BY created_at DESC, id LIMIT ? OFFSET ?`
	if err := s.db.SelectContext(ctx, &rows, q, append(args, page.PerPage, page.Offset())...); err != nil {
		return result, translate(err, "list orders")
	}
	items, err := s.hydrateOrders(ctx, rows)
	if err != nil {
		return result, err
	}
	result.Items = items
	return result, nil
}

func (s *Store) UpdateOrderStatus(ctx context.Context, id string, status entity.OrderStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE orders SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), formatTime(time.Now()), id)
	if err != nil {
		return translate(err, "update order status "+id)
	}
	return expectAffected(res, "order "+id)
}

func (s *Store) UpdatePaymentStatus(ctx context.Context, id string, status entity.PaymentStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE orders SET payment_status = ?, updated_at = ? WHERE id = ?`,
		string(status), formatTime(time.Now()), id)
	if err != nil {
		return translate(err, "update payment status "+id)
	}
	return expectAffected(res, "order "+id)
}

func (s *Store) ListStalePending(ctx context.Context, method entity.PaymentMethod, before time.Time) ([]entity.Order, error) {
	var rows []orderRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT `+orderColumns+` FROM orders
		WHERE  payment_method = ? AND payment_status = 'pending'
		AND    status IN ('pending', 'processing') AND created_at < ?
		ORDER  BY created_at`,
		string(method), formatTime(before))
	if err != nil {
		return nil, translate(err, "stale pending orders")
	}
	return s.hydrateOrders(ctx, rows)
}

func (s *Store) CountOrdersForCustomer(ctx context.Context, customerID string) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM orders WHERE customer_id = ?`, customerID)
	return n, translate(err, "count orders of "+customerID)
}
