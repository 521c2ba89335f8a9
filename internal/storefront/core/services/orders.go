package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jcmexdev/ecommerce-storefront/internal/coordinator/sagalog"
	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/ports"
)

type OrderService struct {
	orders    ports.OrderRepository
	inventory ports.Inventory
	payments  ports.PaymentGateway
	sagas     sagalog.Repository
}

// NewOrderService builds the order service. sagas may be nil, in which case
// orders carry no checkout trail.
func NewOrderService(orders ports.OrderRepository, inventory ports.Inventory, payments ports.PaymentGateway, sagas sagalog.Repository) *OrderService {
	return &OrderService{orders: orders, inventory: inventory, payments: payments, sagas: sagas}
}

func (s *OrderService) ListForCustomer(ctx context.Context, customerID string, page entity.Page) (entity.PageResult[entity.Order], error) {
	return s.orders.ListOrders(ctx, entity.OrderFilter{CustomerID: customerID, Page: page})
}

// GetForCustomer looks an order up by number; other customers' orders are
// reported as not found.
func (s *OrderService) GetForCustomer(ctx context.Context, customerID, number string) (*entity.Order, error) {
	o, err := s.orders.GetOrderByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if o.CustomerID != customerID {
		return nil, fmt.Errorf("order %s: %w", number, entity.ErrNotFound)
	}
	return o, nil
}

func (s *OrderService) List(ctx context.Context, f entity.OrderFilter) (entity.PageResult[entity.Order], error) {
	return s.orders.ListOrders(ctx, f)
}

func (s *OrderService) Get(ctx context.Context, id string) (*entity.Order, error) {
	return s.orders.GetOrder(ctx, id)
}

// SagaTrail returns the logged transitions of the checkout saga that placed
// the order, oldest first.
func (s *OrderService) SagaTrail(ctx context.Context, o *entity.Order) ([]sagalog.SagaLog, error) {
	if s.sagas == nil {
		return nil, nil
	}
	return s.sagas.History(ctx, o.Number)
}

// UpdateStatus moves an order along its lifecycle. Cancelling releases the
// held stock and reverses the payment.
func (s *OrderService) UpdateStatus(ctx context.Context, id string, next entity.OrderStatus) (*entity.Order, error) {
	o, err := s.orders.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if !o.Status.CanTransition(next) {
		return nil, fmt.Errorf("order %s from %s to %s: %w", o.Number, o.Status, next, entity.ErrInvalidTransition)
	}

	if next == entity.StatusCancelled {
		if err := s.inventory.Release(ctx, o.ID); err != nil {
			return nil, err
		}
		if err := s.payments.Refund(ctx, o.ID); err != nil {
			return nil, err
		}
		switch o.PaymentStatus {
		case entity.PaymentPaid:
			o.PaymentStatus = entity.PaymentRefunded
		case entity.PaymentPending:
			o.PaymentStatus = entity.PaymentFailed
		}
		if err := s.orders.UpdatePaymentStatus(ctx, o.ID, o.PaymentStatus); err != nil {
			return nil, err
		}
	}

	if err := s.orders.UpdateOrderStatus(ctx, o.ID, next); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "order status changed", "order_number", o.Number, "from", o.Status, "to", next)
	o.Status = next
	return o, nil
}

func (s *OrderService) UpdatePaymentStatus(ctx context.Context, id string, next entity.PaymentStatus) (*entity.Order, error) {
	o, err := s.orders.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.Status == entity.StatusCancelled && next == entity.PaymentPaid {
		return nil, fmt.Errorf("order %s is cancelled: %w", o.Number, entity.ErrInvalidTransition)
	}
	if err := s.orders.UpdatePaymentStatus(ctx, o.ID, next); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "payment status changed", "order_number", o.Number, "from", o.PaymentStatus, "to", next)
	o.PaymentStatus = next
	return o, nil
}

// BatchUpdate applies one field change to many orders. Each order succeeds
// or fails on its own; failures are reported per id.
func (s *OrderService) BatchUpdate(ctx context.Context, ids []string, field entity.BatchField, value string) (*entity.BatchResult, error) {
	switch field {
	case entity.BatchStatus:
		if !entity.OrderStatus(value).Valid() {
			return nil, entity.NewValidationError("value", "The selected value is invalid for status.")
		}
	case entity.BatchPaymentStatus:
		if !entity.PaymentStatus(value).Valid() {
			return nil, entity.NewValidationError("value", "The selected value is invalid for payment_status.")
		}
	default:
		return nil, entity.NewValidationError("type", "The selected type is invalid.")
	}

	result := &entity.BatchResult{}
	for _, id := range ids {
		var err error
		if field == entity.BatchStatus {
			_, err = s.UpdateStatus(ctx, id, entity.OrderStatus(value))
		} else {
			_, err = s.UpdatePaymentStatus(ctx, id, entity.PaymentStatus(value))
		}
		if err != nil {
			if !errors.Is(err, entity.ErrNotFound) && !errors.Is(err, entity.ErrInvalidTransition) {
				slog.ErrorContext(ctx, "batch order update failed", "order_id", id, "error", err)
			}
			result.Failed = append(result.Failed, entity.BatchFailure{ID: id, Error: err.Error()})
			continue
		}
		result.Updated++
	}
	return result, nil
}
