package coordinator

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/domain/entity"
)

type fakeOrders struct {
	created  []*entity.Order
	status   map[string]entity.OrderStatus
	payments map[string]entity.PaymentStatus
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{status: map[string]entity.OrderStatus{}, payments: map[string]entity.PaymentStatus{}}
}

func (f *fakeOrders) CreateOrder(_ context.Context, o *entity.Order) error {
	f.created = append(f.created, o)
	f.status[o.ID] = o.Status
	f.payments[o.ID] = o.PaymentStatus
	return nil
}

func (f *fakeOrders) UpdateOrderStatus(_ context.Context, id string, s entity.OrderStatus) error {
	f.status[id] = s
	return nil
}

func (f *fakeOrders) UpdatePaymentStatus(_ context.Context, id string, s entity.PaymentStatus) error {
	f.payments[id] = s
	return nil
}

type fakeInventory struct {
	err      error
	reserved map[string]bool
}

func (f *fakeInventory) Reserve(_ context.Context, orderID string, _ []entity.OrderItem) error {
	if f.err != nil {
		return f.err
	}
	f.reserved[orderID] = true
	return nil
}

func (f *fakeInventory) Release(_ context.Context, orderID string) error {
	delete(f.reserved, orderID)
	return nil
}

type fakeGateway struct {
	status   entity.PaymentStatus
	err      error
	refunded []string
}

func (f *fakeGateway) Charge(_ context.Context, orderID string, method entity.PaymentMethod, amount decimal.Decimal) (*entity.Payment, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &entity.Payment{OrderID: orderID, Method: method, Amount: amount, Status: f.status}, nil
}

func (f *fakeGateway) Refund(_ context.Context, orderID string) error {
	f.refunded = append(f.refunded, orderID)
	return nil
}

type fakeCarts struct{ deleted []string }

func (f *fakeCarts) DeleteCart(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func checkoutSteps(orders *fakeOrders, inv *fakeInventory, gw *fakeGateway, carts *fakeCarts, o *entity.Order) []Step {
	return []Step{
		NewCreateOrderStep(orders, o),
		NewInventoryStep(inv, o),
		NewPaymentStep(gw, orders, o),
		NewConfirmOrderStep(orders, carts, o, "cart-1"),
	}
}

func testOrder() *entity.Order {
	return &entity.Order{
		ID:            "o-1",
		Number:        "ORD-20260101-AAAAAA",
		PaymentMethod: entity.PaymentCard,
		PaymentStatus: entity.PaymentPending,
		Totals:        entity.Totals{TotalInclTax: decimal.NewFromInt(100)},
	}
}

func TestCheckoutSteps_Success(t *testing.T) {
	orders, inv := newFakeOrders(), &fakeInventory{reserved: map[string]bool{}}
	gw, carts := &fakeGateway{status: entity.PaymentPaid}, &fakeCarts{}
	o := testOrder()

	err := NewOrchestrator(&memoryLog{}, nil).Run(context.Background(), o.Number, "", checkoutSteps(orders, inv, gw, carts, o)...)
	require.NoError(t, err)

	assert.Equal(t, entity.StatusProcessing, orders.status[o.ID])
	assert.Equal(t, entity.PaymentPaid, orders.payments[o.ID])
	assert.True(t, inv.reserved[o.ID])
	assert.Equal(t, []string{"cart-1"}, carts.deleted)
}

func TestCheckoutSteps_DeclinedPaymentRollsBack(t *testing.T) {
	orders, inv := newFakeOrders(), &fakeInventory{reserved: map[string]bool{}}
	gw, carts := &fakeGateway{err: entity.ErrPaymentDeclined}, &fakeCarts{}
	o := testOrder()

	err := NewOrchestrator(&memoryLog{}, nil).Run(context.Background(), o.Number, "", checkoutSteps(orders, inv, gw, carts, o)...)
	require.ErrorIs(t, err, entity.ErrPaymentDeclined)

	assert.Equal(t, entity.StatusCancelled, orders.status[o.ID])
	assert.Equal(t, entity.PaymentFailed, orders.payments[o.ID])
	assert.Empty(t, inv.reserved)
	assert.Empty(t, gw.refunded)
	assert.Empty(t, carts.deleted)
}

func TestCheckoutSteps_OutOfStockCancelsOrder(t *testing.T) {
	orders := newFakeOrders()
	inv := &fakeInventory{reserved: map[string]bool{}, err: fmt.Errorf("SKU-1: %w", entity.ErrInsufficientStock)}
	gw, carts := &fakeGateway{status: entity.PaymentPaid}, &fakeCarts{}
	o := testOrder()

	err := NewOrchestrator(nil, nil).Run(context.Background(), o.Number, "", checkoutSteps(orders, inv, gw, carts, o)...)
	require.ErrorIs(t, err, entity.ErrInsufficientStock)
	assert.Equal(t, entity.StatusCancelled, o.Status)
	assert.Equal(t, entity.PaymentPending, orders.payments[o.ID])
}
