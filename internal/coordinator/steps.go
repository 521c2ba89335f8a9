package coordinator

import (
	"context"
	"errors"
	"fmt"

	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/ports"
)

// Step names double as the saga log's current_step values.
const (
	StepCreateOrder  = "Create_Order_Step"
	StepReserveStock = "Inventory_Reservation_Step"
	StepPayment      = "Payment_Charge_Step"
	StepConfirmOrder = "Confirm_Order_Step"
)

// --- CreateOrderStep ---

type CreateOrderStep struct {
	orders ports.OrderWriter
	order  *entity.Order
}

func NewCreateOrderStep(orders ports.OrderWriter, order *entity.Order) *CreateOrderStep {
	return &CreateOrderStep{orders: orders, order: order}
}

func (s *CreateOrderStep) Name() string { return StepCreateOrder }

func (s *CreateOrderStep) Execute(ctx context.Context) error {
	s.order.Status = entity.StatusPending
	if err := s.orders.CreateOrder(ctx, s.order); err != nil {
		return fmt.Errorf("create order %s: %w", s.order.Number, err)
	}
	return nil
}

// Compensate cancels the order, which also gives its idempotency key back.
func (s *CreateOrderStep) Compensate(ctx context.Context) error {
	if err := s.orders.UpdateOrderStatus(ctx, s.order.ID, entity.StatusCancelled); err != nil {
		return err
	}
	s.order.Status = entity.StatusCancelled
	return nil
}

// --- InventoryStep ---

type InventoryStep struct {
	inventory ports.Inventory
	order     *entity.Order
}

func NewInventoryStep(inventory ports.Inventory, order *entity.Order) *InventoryStep {
	return &InventoryStep{inventory: inventory, order: order}
}

func (s *InventoryStep) Name() string { return StepReserveStock }

func (s *InventoryStep) Execute(ctx context.Context) error {
	if err := s.inventory.Reserve(ctx, s.order.ID, s.order.Items); err != nil {
		return fmt.Errorf("reserve stock for %s: %w", s.order.Number, err)
	}
	return nil
}

func (s *InventoryStep) Compensate(ctx context.Context) error {
	return s.inventory.Release(ctx, s.order.ID)
}

// --- PaymentStep ---

type PaymentStep struct {
	gateway ports.PaymentGateway
	orders  ports.OrderWriter
	order   *entity.Order
}

func NewPaymentStep(gateway ports.PaymentGateway, orders ports.OrderWriter, order *entity.Order) *PaymentStep {
	return &PaymentStep{gateway: gateway, orders: orders, order: order}
}

func (s *PaymentStep) Name() string { return StepPayment }

// Execute charges the order total. A decline marks the payment failed before
// the error is returned, since a failed step is not compensated itself.
func (s *PaymentStep) Execute(ctx context.Context) error {
	payment, err := s.gateway.Charge(ctx, s.order.ID, s.order.PaymentMethod, s.order.Totals.TotalInclTax)
	if err != nil {
		if errors.Is(err, entity.ErrPaymentDeclined) {
			if uerr := s.orders.UpdatePaymentStatus(ctx, s.order.ID, entity.PaymentFailed); uerr == nil {
				s.order.PaymentStatus = entity.PaymentFailed
			}
		}
		return fmt.Errorf("charge order %s: %w", s.order.Number, err)
	}

	if payment.Status != s.order.PaymentStatus {
		if err := s.orders.UpdatePaymentStatus(ctx, s.order.ID, payment.Status); err != nil {
			return fmt.Errorf("record payment of %s: %w", s.order.Number, err)
		}
		s.order.PaymentStatus = payment.Status
	}
	return nil
}

func (s *PaymentStep) Compensate(ctx context.Context) error {
	if err := s.gateway.Refund(ctx, s.order.ID); err != nil {
		return err
	}
	next := entity.PaymentFailed
	if s.order.PaymentStatus == entity.PaymentPaid {
		next = entity.PaymentRefunded
	}
	if err := s.orders.UpdatePaymentStatus(ctx, s.order.ID, next); err != nil {
		return err
	}
	s.order.PaymentStatus = next
	return nil
}

// --- ConfirmOrderStep ---

type ConfirmOrderStep struct {
	orders ports.OrderWriter
	carts  ports.CartClearer
	order  *entity.Order
	cartID string
}

func NewConfirmOrderStep(orders ports.OrderWriter, carts ports.CartClearer, order *entity.Order, cartID string) *ConfirmOrderStep {
	return &ConfirmOrderStep{orders: orders, carts: carts, order: order, cartID: cartID}
}

func (s *ConfirmOrderStep) Name() string { return StepConfirmOrder }

func (s *ConfirmOrderStep) Execute(ctx context.Context) error {
	if err := s.orders.UpdateOrderStatus(ctx, s.order.ID, entity.StatusProcessing); err != nil {
		return fmt.Errorf("confirm order %s: %w", s.order.Number, err)
	}
	s.order.Status = entity.StatusProcessing
	if s.cartID != "" {
		if err := s.carts.DeleteCart(ctx, s.cartID); err != nil {
			return fmt.Errorf("clear cart after %s: %w", s.order.Number, err)
		}
	}
	return nil
}

// Compensate is a no-op: this is the last step, so nothing runs after it.
func (s *ConfirmOrderStep) Compensate(ctx context.Context) error {
	return nil
}
