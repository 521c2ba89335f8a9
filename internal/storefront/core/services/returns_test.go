package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/domain/entity"
)

func amount(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestReturnService_Validation(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	p := e.product(t, "LAP-1", "100.00", 5)
	order := e.placeOrder(t, p, 2, entity.PaymentCard)

	tests := []struct {
		name  string
		in    ReturnInput
		field string
	}{
		{"unknown order", ReturnInput{OrderID: "missing", ProductID: p.ID, Quantity: 1}, "order_id"},
		{"product not in order", ReturnInput{OrderID: order.ID, ProductID: "other", Quantity: 1}, "product_id"},
		{"too many units", ReturnInput{OrderID: order.ID, ProductID: p.ID, Quantity: 3}, "quantity"},
		{"above absolute maximum", ReturnInput{OrderID: order.ID, ProductID: p.ID, Quantity: 1, RefundAmount: amount("100000.01")}, "refund_amount"},
		// one unit is 100.00 + 19% VAT
		{"above line total", ReturnInput{OrderID: order.ID, ProductID: p.ID, Quantity: 1, RefundAmount: amount("119.01")}, "refund_amount"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.returns.Create(ctx, tt.in)
			var verr *entity.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tt.field)
		})
	}
}

func TestReturnService_RefundWithRestock(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	p := e.product(t, "LAP-1", "100.00", 5)
	order := e.placeOrder(t, p, 2, entity.PaymentCard)
	require.Equal(t, 3, e.stock(t, p.ID))

	first, err := e.returns.Create(ctx, ReturnInput{
		OrderID: order.ID, ProductID: p.ID, Quantity: 1, Reason: "damaged",
		RefundAmount: amount("119.00"), Restock: true,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.ReturnRequested, first.Status)
	assert.Equal(t, order.Number, first.OrderNumber)

	_, err = e.returns.Update(ctx, first.ID, ReturnUpdate{Status: entity.ReturnRefunded})
	assert.ErrorIs(t, err, entity.ErrInvalidTransition)

	_, err = e.returns.Update(ctx, first.ID, ReturnUpdate{Status: entity.ReturnApproved})
	require.NoError(t, err)
	_, err = e.returns.Update(ctx, first.ID, ReturnUpdate{Status: entity.ReturnRefunded})
	require.NoError(t, err)
	assert.Equal(t, 4, e.stock(t, p.ID))

	stored, err := e.store.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentPaid, stored.PaymentStatus, "one of two units refunded")

	second, err := e.returns.Create(ctx, ReturnInput{OrderID: order.ID, ProductID: p.ID, Quantity: 1, RefundAmount: amount("50")})
	require.NoError(t, err)
	_, err = e.returns.Create(ctx, ReturnInput{OrderID: order.ID, ProductID: p.ID, Quantity: 1})
	var verr *entity.ValidationError
	require.ErrorAs(t, err, &verr, "every unit already has a return")

	restock := false
	_, err = e.returns.Update(ctx, second.ID, ReturnUpdate{Status: entity.ReturnApproved, Restock: &restock})
	require.NoError(t, err)
	_, err = e.returns.Update(ctx, second.ID, ReturnUpdate{Status: entity.ReturnRefunded})
	require.NoError(t, err)
	assert.Equal(t, 4, e.stock(t, p.ID))

	stored, err = e.store.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentRefunded, stored.PaymentStatus)
}

func TestReturnService_UpdateRefundAmount(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	p := e.product(t, "LAP-1", "100.00", 5)
	order := e.placeOrder(t, p, 1, entity.PaymentCard)

	r, err := e.returns.Create(ctx, ReturnInput{OrderID: order.ID, ProductID: p.ID, Quantity: 1})
	require.NoError(t, err)

	tooMuch := amount("200000")
	_, err = e.returns.Update(ctx, r.ID, ReturnUpdate{RefundAmount: &tooMuch})
	var verr *entity.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "refund_amount")

	ok := amount("80.5")
	got, err := e.returns.Update(ctx, r.ID, ReturnUpdate{RefundAmount: &ok})
	require.NoError(t, err)
	assert.Equal(t, "80.50", got.RefundAmount.StringFixed(2))

	_, err = e.returns.Update(ctx, r.ID, ReturnUpdate{Status: entity.ReturnRejected})
	require.NoError(t, err)
	_, err = e.returns.Update(ctx, r.ID, ReturnUpdate{RefundAmount: &ok})
	assert.ErrorIs(t, err, entity.ErrInvalidTransition)
}

func TestReturnService_RequestForCustomer(t *testing.T) {
	e := newTestEnv(t)
	order := e.placeOrder(t, e.product(t, "LAP-1", "100.00", 5), 1, entity.PaymentCard)

	_, err := e.returns.RequestForCustomer(context.Background(), "not-the-owner", order.Number, ReturnInput{ProductID: order.Items[0].ProductID, Quantity: 1})
	assert.ErrorIs(t, err, entity.ErrNotFound)
}
