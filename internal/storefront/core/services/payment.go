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

var _ ports.PaymentGateway = (*PaymentService)(nil)

// PaymentService is the built-in payment provider. Cards are authorised up
// to cardLimit; cash on delivery and bank transfer stay pending until an
// admin marks them paid.
type PaymentService struct {
	payments  ports.PaymentRepository
	cardLimit decimal.Decimal
	now       func() time.Time
}

func NewPaymentService(payments ports.PaymentRepository, cardLimit decimal.Decimal) *PaymentService {
	return &PaymentService{payments: payments, cardLimit: cardLimit, now: time.Now}
}

func (s *PaymentService) Charge(ctx context.Context, orderID string, method entity.PaymentMethod, amount decimal.Decimal) (*entity.Payment, error) {
	p := &entity.Payment{
		OrderID:   orderID,
		Method:    method,
		Amount:    amount,
		Status:    entity.PaymentPending,
		CreatedAt: s.now().UTC(),
	}

	switch method {
	case entity.PaymentCard:
		if amount.GreaterThan(s.cardLimit) {
			p.Status = entity.PaymentFailed
			if err := s.payments.SavePayment(ctx, p); err != nil {
				return nil, err
			}
			slog.WarnContext(ctx, "card payment declined", "order_id", orderID,
				"amount", amount.StringFixed(2), "limit", s.cardLimit.StringFixed(2))
			return nil, fmt.Errorf("amount %s exceeds card limit: %w", amount.StringFixed(2), entity.ErrPaymentDeclined)
		}
		p.Status = entity.PaymentPaid
		p.TransactionRef = "TXN-" + uuid.NewString()
	case entity.PaymentCashOnDelivery, entity.PaymentBankTransfer:
	default:
		return nil, fmt.Errorf("payment method %q: %w", method, entity.ErrPaymentDeclined)
	}

	if err := s.payments.SavePayment(ctx, p); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "payment recorded", "order_id", orderID, "method", method, "status", p.Status)
	return p, nil
}

// Refund reverses a captured payment. Pending payments are voided instead.
// Orders without a payment are a no-op.
func (s *PaymentService) Refund(ctx context.Context, orderID string) error {
	p, err := s.payments.GetPayment(ctx, orderID)
	if errors.Is(err, entity.ErrNotFound) {
		slog.WarnContext(ctx, "no payment to refund", "order_id", orderID)
		return nil
	}
	if err != nil {
		return err
	}

	switch p.Status {
	case entity.PaymentPaid:
		p.Status = entity.PaymentRefunded
	case entity.PaymentPending:
		p.Status = entity.PaymentFailed
	default:
		return nil
	}
	if err := s.payments.SavePayment(ctx, p); err != nil {
		return err
	}
	slog.InfoContext(ctx, "payment reversed", "order_id", orderID, "status", p.Status, "amount", p.Amount.StringFixed(2))
	return nil
}
