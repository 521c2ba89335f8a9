package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaxRefundAmount is the absolute ceiling accepted for a single return's refund.
var MaxRefundAmount = decimal.NewFromInt(100000)

type ReturnStatus string

const (
	ReturnRequested ReturnStatus = "requested"
	ReturnApproved  ReturnStatus = "approved"
	ReturnRejected  ReturnStatus = "rejected"
	ReturnRefunded  ReturnStatus = "refunded"
)

var returnTransitions = map[ReturnStatus][]ReturnStatus{
	ReturnRequested: {ReturnApproved, ReturnRejected},
	ReturnApproved:  {ReturnRefunded, ReturnRejected},
}

// CanTransition reports whether a return in status s may move to next.
func (s ReturnStatus) CanTransition(next ReturnStatus) bool {
	for _, allowed := range returnTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Return struct {
	ID           string
	OrderID      string
	OrderNumber  string
	ProductID    string
	Quantity     int
	Reason       string
	Status       ReturnStatus
	RefundAmount decimal.Decimal
	Restock      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type ReturnFilter struct {
	OrderID string
	Status  ReturnStatus
	Page    Page
}
