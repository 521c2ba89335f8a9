package services

import (
	"context"
	"log/slog"

	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/ports"
)

var _ ports.Inventory = (*InventoryService)(nil)

// InventoryService holds stock for orders through the reservation table.
type InventoryService struct {
	reservations ports.ReservationRepository
}

func NewInventoryService(reservations ports.ReservationRepository) *InventoryService {
	return &InventoryService{reservations: reservations}
}

// Reserve holds stock for every item or fails with ErrInsufficientStock
// leaving stock untouched.
func (s *InventoryService) Reserve(ctx context.Context, orderID string, items []entity.OrderItem) error {
	slog.DebugContext(ctx, "reserving stock", "order_id", orderID, "lines", len(items))
	if err := s.reservations.Reserve(ctx, orderID, items); err != nil {
		slog.WarnContext(ctx, "stock reservation refused", "order_id", orderID, "error", err)
		return err
	}
	return nil
}

func (s *InventoryService) Release(ctx context.Context, orderID string) error {
	released, err := s.reservations.Release(ctx, orderID)
	if err != nil {
		return err
	}
	if !released {
		slog.WarnContext(ctx, "no reservation to release", "order_id", orderID)
		return nil
	}
	slog.InfoContext(ctx, "stock released", "order_id", orderID)
	return nil
}
