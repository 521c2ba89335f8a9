package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/ports"
)

var _ ports.CartRepository = (*Store)(nil)

const cartColumns = `id, customer_id, session_id, shipping_country_id, shipping_method, pickup_point_id, updated_at`

type cartRow struct {
	ID                string         `db:"id"`
	CustomerID        sql.NullString `db:"customer_id"`
	SessionID         sql.NullString `db:"session_id"`
	ShippingCountryID sql.NullInt64  `db:"shipping_country_id"`
	ShippingMethod    string         `db:"shipping_method"`
	PickupPointID     string         `db:"pickup_point_id"`
	UpdatedAt         timestamp      `db:"updated_at"`
}

type cartItemRow struct {
	ProductID string          `db:"product_id"`
	SKU       string          `db:"sku"`
	Name      string          `db:"name"`
	Quantity  int             `db:"quantity"`
	UnitPrice decimal.Decimal `db:"unit_price"`
}

// GetCart loads the actor's cart, creating an empty one on first use.
// Guest carts need the session to be registered through TouchSession first.
func (s *Store) GetCart(ctx context.Context, actor entity.Actor) (*entity.Cart, error) {
	var cart *entity.Cart
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		where, owner := `session_id = ?`, actor.SessionID
		if actor.Authenticated() {
			where, owner = `customer_id = ?`, actor.CustomerID
		}

		var row cartRow
		err := tx.GetContext(ctx, &row, `SELECT `+cartColumns+` FROM carts WHERE `+where, owner)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			row = cartRow{
				ID:             uuid.NewString(),
				ShippingMethod: string(entity.ShippingCourier),
				UpdatedAt:      timestamp{time.Now().UTC()},
			}
			if actor.Authenticated() {
				row.CustomerID = sql.NullString{String: actor.CustomerID, Valid: true}
			} else {
				row.SessionID = sql.NullString{String: actor.SessionID, Valid: true}
			}
			_, err = tx.ExecContext(ctx,
				`INSERT INTO carts (id, customer_id, session_id, shipping_method, updated_at) VALUES (?, ?, ?, ?, ?)`,
				row.ID, row.CustomerID, row.SessionID, row.ShippingMethod, row.UpdatedAt)
			if err != nil {
				return translate(err, "create cart")
			}
		case err != nil:
			return translate(err, "cart")
		}

		var items []cartItemRow
		err = tx.SelectContext(ctx, &items, `
			SELECT ci.product_id, p.sku, p.name, ci.quantity, ci.unit_price
			FROM   cart_items ci
			JOIN   products p ON p.id = ci.product_id
			WHERE  ci.cart_id = ?
			ORDER  BY ci.position`, row.ID)
		if err != nil {
			return translate(err, "cart items")
		}

		cart = &entity.Cart{
			ID:                row.ID,
			CustomerID:        row.CustomerID.String,
			SessionID:         row.SessionID.String,
			ShippingCountryID: row.ShippingCountryID.Int64,
			ShippingMethod:    entity.ShippingMethod(row.ShippingMethod),
			PickupPointID:     row.PickupPointID,
			UpdatedAt:         row.UpdatedAt.Time,
			Items:             make([]entity.CartItem, len(items)),
		}
		for i, it := range items {
			cart.Items[i] = entity.CartItem(it)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// SaveCart rewrites the cart header and its lines in one transaction.
func (s *Store) SaveCart(ctx context.Context, c *entity.Cart) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE carts
			SET    customer_id = ?, session_id = ?, shipping_country_id = ?, shipping_method = ?,
			       pickup_point_id = ?, updated_at = ?
			WHERE  id = ?`,
			nullableString(c.CustomerID), nullableString(c.SessionID), nullableInt(c.ShippingCountryID),
			string(c.ShippingMethod), c.PickupPointID, formatTime(c.UpdatedAt), c.ID)
		if err != nil {
			return translate(err, "save cart "+c.ID)
		}
		if err := expectAffected(res, "cart "+c.ID); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = ?`, c.ID); err != nil {
			return translate(err, "clear cart items")
		}
		for pos, it := range c.Items {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO cart_items (cart_id, product_id, quantity, unit_price, position) VALUES (?, ?, ?, ?, ?)`,
				c.ID, it.ProductID, it.Quantity, it.UnitPrice, pos)
			if err != nil {
				return translate(err, "save cart item "+it.ProductID)
			}
		}
		return nil
	})
}

func (s *Store) DeleteCart(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM carts WHERE id = ?`, id)
	return translate(err, "delete cart "+id)
}
