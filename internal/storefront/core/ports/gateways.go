package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/domain/entity"
)

// PaymentGateway authorises and refunds order payments.
type PaymentGateway interface {
	Charge(ctx context.Context, orderID string, method entity.PaymentMethod, amount decimal.Decimal) (*entity.Payment, error)
	Refund(ctx context.Context, orderID string) error
}

// Inventory holds stock for an order for as long as the order lives.
type Inventory interface {
	Reserve(ctx context.Context, orderID string, items []entity.OrderItem) error
	Release(ctx context.Context, orderID string) error
}

// OrderWriter is the slice of order persistence the checkout saga drives.
type OrderWriter interface {
	CreateOrder(ctx context.Context, o *entity.Order) error
	UpdateOrderStatus(ctx context.Context, id string, status entity.OrderStatus) error
	UpdatePaymentStatus(ctx context.Context, id string, status entity.PaymentStatus) error
}

// CartClearer empties a cart once its order is confirmed.
type CartClearer interface {
	DeleteCart(ctx context.Context, id string) error
}
