package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID              string
	Number          string
	CustomerID      string
	SessionID       string
	Email           string
	Items           []OrderItem
	Status          OrderStatus
	PaymentStatus   PaymentStatus
	ShippingMethod  ShippingMethod
	PickupPointID   string
	PaymentMethod   PaymentMethod
	ShippingAddress AddressSnapshot
	BillingAddress  AddressSnapshot
	Totals          Totals
	IdempotencyKey  string
	Notes           string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type OrderItem struct {
	ProductID string
	SKU       string
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
}

func (i OrderItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Quantity returns how many units of productID the order holds.
func (o *Order) Quantity(productID string) int {
	n := 0
	for _, it := range o.Items {
		if it.ProductID == productID {
			n += it.Quantity
		}
	}
	return n
}

func (o *Order) Item(productID string) (OrderItem, bool) {
	for _, it := range o.Items {
		if it.ProductID == productID {
			return it, true
		}
	}
	return OrderItem{}, false
}

type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

var OrderStatuses = []OrderStatus{StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled}

func (s OrderStatus) Valid() bool {
	for _, v := range OrderStatuses {
		if v == s {
			return true
		}
	}
	return false
}

var orderTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
}

// CanTransition reports whether an order in status s may move to next.
// Delivered and cancelled orders are final.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

var PaymentStatuses = []PaymentStatus{PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded}

func (s PaymentStatus) Valid() bool {
	for _, v := range PaymentStatuses {
		if v == s {
			return true
		}
	}
	return false
}

type ShippingMethod string

const (
	ShippingCourier ShippingMethod = "courier"
	ShippingPickup  ShippingMethod = "pickup"
)

type PaymentMethod string

const (
	PaymentCard           PaymentMethod = "card"
	PaymentCashOnDelivery PaymentMethod = "cash_on_delivery"
	PaymentBankTransfer   PaymentMethod = "bank_transfer"
)

type OrderFilter struct {
	CustomerID    string
	Status        OrderStatus
	PaymentStatus PaymentStatus
	Query         string
	From          *time.Time
	To            *time.Time
	Page          Page
}

type Payment struct {
	OrderID        string
	Method         PaymentMethod
	Amount         decimal.Decimal
	Status         PaymentStatus
	TransactionRef string
	CreatedAt      time.Time
}

// BatchField names the order attribute an admin batch update rewrites.
type BatchField string

const (
	BatchStatus        BatchField = "status"
	BatchPaymentStatus BatchField = "payment_status"
)

type BatchFailure struct {
	ID    string
	Error string
}

type BatchResult struct {
	Updated int
	Failed  []BatchFailure
}
