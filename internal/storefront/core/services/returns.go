package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/ports"
)

type ReturnInput struct {
	OrderID      string
	ProductID    string
	Quantity     int
	Reason       string
	RefundAmount decimal.Decimal
	Restock      bool
}

type ReturnService struct {
	returns  ports.ReturnRepository
	orders   ports.OrderRepository
	products ports.ProductRepository
	now      func() time.Time
}

func NewReturnService(returns ports.ReturnRepository, orders ports.OrderRepository, products ports.ProductRepository) *ReturnService {
	return &ReturnService{returns: returns, orders: orders, products: products, now: time.Now}
}

// Create registers a return requested by the back office.
func (s *ReturnService) Create(ctx context.Context, in ReturnInput) (*entity.Return, error) {
	order, err := s.orders.GetOrder(ctx, in.OrderID)
	if err != nil {
		return nil, notFoundAsInvalid(err, "order_id", "The selected order is invalid.")
	}
	return s.create(ctx, order, in)
}

// RequestForCustomer registers a return on one of the customer's own orders.
func (s *ReturnService) RequestForCustomer(ctx context.Context, customerID, orderNumber string, in ReturnInput) (*entity.Return, error) {
	order, err := s.orders.GetOrderByNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	if order.CustomerID != customerID {
		return nil, fmt.Errorf("order %s: %w", orderNumber, entity.ErrNotFound)
	}
	in.OrderID = order.ID
	return s.create(ctx, order, in)
}

func (s *ReturnService) create(ctx context.Context, order *entity.Order, in ReturnInput) (*entity.Return, error) {
	if err := s.checkReturnable(ctx, order, in, ""); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	r := &entity.Return{
		ID:           uuid.NewString(),
		OrderID:      order.ID,
		OrderNumber:  order.Number,
		ProductID:    in.ProductID,
		Quantity:     in.Quantity,
		Reason:       in.Reason,
		Status:       entity.ReturnRequested,
		RefundAmount: in.RefundAmount.Round(2),
		Restock:      in.Restock,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.returns.CreateReturn(ctx, r); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "return requested", "return_id", r.ID, "order_number", order.Number, "quantity", r.Quantity)
	return r, nil
}

// checkReturnable validates a return against the order it belongs to.
// excludeID skips an existing return when re-validating it.
func (s *ReturnService) checkReturnable(ctx context.Context, order *entity.Order, in ReturnInput, excludeID string) error {
	if order.Status == entity.StatusCancelled {
		return entity.NewValidationError("order_id", "Cancelled orders cannot be returned.")
	}
	item, ok := order.Item(in.ProductID)
	if !ok {
		return entity.NewValidationError("product_id", "The product is not part of the order.")
	}

	returned, err := s.returns.ReturnedQuantity(ctx, order.ID, in.ProductID)
	if err != nil {
		return err
	}
	if excludeID != "" {
		existing, err := s.returns.GetReturn(ctx, excludeID)
		if err != nil {
			return err
		}
		if existing.Status != entity.ReturnRejected {
			returned -= existing.Quantity
		}
	}
	if left := item.Quantity - returned; in.Quantity > left {
		return entity.NewValidationError("quantity", fmt.Sprintf("Only %d units can still be returned.", max(left, 0)))
	}

	if in.RefundAmount.GreaterThan(entity.MaxRefundAmount) {
		return entity.NewValidationError("refund_amount", "The refund amount may not be greater than "+entity.MaxRefundAmount.StringFixed(2)+".")
	}
	if limit := LineTotalInclTax(item, in.Quantity, order.Totals.VATRate); in.RefundAmount.GreaterThan(limit) {
		return entity.NewValidationError("refund_amount", "The refund amount may not exceed "+limit.StringFixed(2)+" for this quantity.")
	}
	return nil
}

func (s *ReturnService) Get(ctx context.Context, id string) (*entity.Return, error) {
	return s.returns.GetReturn(ctx, id)
}

func (s *ReturnService) List(ctx context.Context, f entity.ReturnFilter) (entity.PageResult[entity.Return], error) {
	return s.returns.ListReturns(ctx, f)
}

type ReturnUpdate struct {
	Status       entity.ReturnStatus
	RefundAmount *decimal.Decimal
	Restock      *bool
}

// Update changes a return's refund terms and/or moves it to a new status.
// Refunding with restock puts the units back on sale; once every ordered
// unit is refunded the order's payment becomes refunded.
func (s *ReturnService) Update(ctx context.Context, id string, up ReturnUpdate) (*entity.Return, error) {
	r, err := s.returns.GetReturn(ctx, id)
	if err != nil {
		return nil, err
	}
	order, err := s.orders.GetOrder(ctx, r.OrderID)
	if err != nil {
		return nil, err
	}

	if up.RefundAmount != nil || up.Restock != nil {
		if r.Status == entity.ReturnRefunded || r.Status == entity.ReturnRejected {
			return nil, fmt.Errorf("return %s is %s: %w", r.ID, r.Status, entity.ErrInvalidTransition)
		}
		in := ReturnInput{OrderID: r.OrderID, ProductID: r.ProductID, Quantity: r.Quantity, RefundAmount: r.RefundAmount}
		if up.RefundAmount != nil {
			in.RefundAmount = *up.RefundAmount
		}
		if err := s.checkReturnable(ctx, order, in, r.ID); err != nil {
			return nil, err
		}
		r.RefundAmount = in.RefundAmount.Round(2)
		if up.Restock != nil {
			r.Restock = *up.Restock
		}
	}

	previous := r.Status
	if up.Status != "" && up.Status != r.Status {
		if !r.Status.CanTransition(up.Status) {
			return nil, fmt.Errorf("return %s from %s to %s: %w", r.ID, r.Status, up.Status, entity.ErrInvalidTransition)
		}
		r.Status = up.Status
	}

	r.UpdatedAt = s.now().UTC()
	if err := s.returns.UpdateReturn(ctx, r); err != nil {
		return nil, err
	}

	if r.Status == entity.ReturnRefunded && previous != entity.ReturnRefunded {
		if err := s.settleRefund(ctx, order, r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (s *ReturnService) settleRefund(ctx context.Context, order *entity.Order, r *entity.Return) error {
	if r.Restock {
		if err := s.products.AdjustStock(ctx, r.ProductID, r.Quantity); err != nil && !errors.Is(err, entity.ErrNotFound) {
			return err
		}
	}

	refunded, err := s.returns.RefundedQuantity(ctx, order.ID)
	if err != nil {
		return err
	}
	ordered := 0
	for _, it := range order.Items {
		ordered += it.Quantity
	}
	if refunded >= ordered && order.PaymentStatus != entity.PaymentRefunded {
		if err := s.orders.UpdatePaymentStatus(ctx, order.ID, entity.PaymentRefunded); err != nil {
			return err
		}
	}
	slog.InfoContext(ctx, "return refunded", "return_id", r.ID, "order_number", order.Number,
		"amount", r.RefundAmount.StringFixed(2), "restock", r.Restock)
	return nil
}
