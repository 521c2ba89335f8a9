package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/ports"
)

// Housekeeping removes abandoned guest state and expires unpaid bank
// transfers.
type Housekeeping struct {
	sessions      ports.SessionRepository
	orders        ports.OrderRepository
	inventory     ports.Inventory
	sessionTTL    time.Duration
	paymentWindow time.Duration
	now           func() time.Time
}

func NewHousekeeping(sessions ports.SessionRepository, orders ports.OrderRepository, inventory ports.Inventory, sessionTTL, paymentWindow time.Duration) *Housekeeping {
	return &Housekeeping{
		sessions:      sessions,
		orders:        orders,
		inventory:     inventory,
		sessionTTL:    sessionTTL,
		paymentWindow: paymentWindow,
		now:           time.Now,
	}
}

// PurgeGuestSessions deletes sessions idle for longer than the session TTL
// together with their carts and saved addresses.
func (h *Housekeeping) PurgeGuestSessions(ctx context.Context) (int, error) {
	n, err := h.sessions.PurgeSessions(ctx, h.now().UTC().Add(-h.sessionTTL))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		slog.InfoContext(ctx, "guest sessions purged", "count", n)
	}
	return n, nil
}

// CancelStaleBankTransfers cancels orders whose bank transfer did not arrive
// within the payment window and releases their stock.
func (h *Housekeeping) CancelStaleBankTransfers(ctx context.Context) (int, error) {
	stale, err := h.orders.ListStalePending(ctx, entity.PaymentBankTransfer, h.now().UTC().Add(-h.paymentWindow))
	if err != nil {
		return 0, err
	}

	cancelled := 0
	for _, o := range stale {
		if err := h.inventory.Release(ctx, o.ID); err != nil {
			slog.ErrorContext(ctx, "release for stale order failed", "order_number", o.Number, "error", err)
			continue
		}
		if err := h.orders.UpdatePaymentStatus(ctx, o.ID, entity.PaymentFailed); err != nil {
			return cancelled, err
		}
		if err := h.orders.UpdateOrderStatus(ctx, o.ID, entity.StatusCancelled); err != nil {
			return cancelled, err
		}
		slog.InfoContext(ctx, "unpaid bank transfer cancelled", "order_number", o.Number)
		cancelled++
	}
	return cancelled, nil
}
