package httpx

import (
	"github.com/shopspring/decimal"

	"github.com/jcmexdev/ecommerce-storefront/internal/pkg/validation"
	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/services"
)

func requestRules() []validation.Rule {
	orderStatuses := make([]string, len(entity.OrderStatuses))
	for i, s := range entity.OrderStatuses {
		orderStatuses[i] = string(s)
	}
	paymentStatuses := make([]string, len(entity.PaymentStatuses))
	for i, s := range entity.PaymentStatuses {
		paymentStatuses[i] = string(s)
	}
	return []validation.Rule{
		{Tag: "order_status", Message: "The selected {0} is invalid.", Fn: validation.OneOfStrings(orderStatuses...)},
		{Tag: "payment_status", Message: "The selected {0} is invalid.", Fn: validation.OneOfStrings(paymentStatuses...)},
		{Tag: "return_status", Message: "The selected {0} is invalid.", Fn: validation.OneOfStrings(
			string(entity.ReturnRequested), string(entity.ReturnApproved), string(entity.ReturnRejected), string(entity.ReturnRefunded))},
		{Tag: "product_type", Message: "The selected {0} is invalid.", Fn: validation.OneOfStrings(
			string(entity.ProductSimple), string(entity.ProductConfigurable), string(entity.ProductVariant))},
		{Tag: "shipping_method", Message: "The selected {0} is invalid.", Fn: validation.OneOfStrings(
			string(entity.ShippingCourier), string(entity.ShippingPickup))},
		{Tag: "payment_method", Message: "The selected {0} is invalid.", Fn: validation.OneOfStrings(
			string(entity.PaymentCard), string(entity.PaymentCashOnDelivery), string(entity.PaymentBankTransfer))},
		{Tag: "address_type", Message: "The selected {0} is invalid.", Fn: validation.OneOfStrings(
			string(entity.AddressShipping), string(entity.AddressBilling))},
		{Tag: "role", Message: "The selected {0} is invalid.", Fn: validation.OneOfStrings(
			string(entity.RoleAdmin), string(entity.RoleManager), string(entity.RoleEditor))},
	}
}

// --- catalog ---

type ProductRequest struct {
	SKU           string          `json:"sku" validate:"required,sku"`
	Name          string          `json:"name" validate:"required,max=255"`
	Slug          string          `json:"slug" validate:"required,slug,max=255"`
	Description   string          `json:"description" validate:"max=5000"`
	Brand         string          `json:"brand" validate:"max=100"`
	Price         decimal.Decimal `json:"price" validate:"gte=0,lte=1000000"`
	StockQuantity int             `json:"stock_quantity" validate:"gte=0"`
	CategoryID    string          `json:"category_id" validate:"required"`
	Type          string          `json:"type" validate:"required,product_type"`
	ParentID      string          `json:"parent_id" validate:"required_if=Type variant"`
	Active        bool            `json:"active"`
}

func (r ProductRequest) input() services.ProductInput {
	return services.ProductInput{
		SKU:           r.SKU,
		Name:          r.Name,
		Slug:          r.Slug,
		Description:   r.Description,
		Brand:         r.Brand,
		Price:         r.Price,
		StockQuantity: r.StockQuantity,
		CategoryID:    r.CategoryID,
		Type:          entity.ProductType(r.Type),
		ParentID:      r.ParentID,
		Active:        r.Active,
	}
}

type CategoryRequest struct {
	Name      string `json:"name" validate:"required,max=255"`
	Slug      string `json:"slug" validate:"required,slug,max=255"`
	ParentID  string `json:"parent_id"`
	Active    bool   `json:"active"`
	SortOrder int    `json:"sort_order" validate:"gte=0"`
}

func (r CategoryRequest) input() services.CategoryInput {
	return services.CategoryInput{Name: r.Name, Slug: r.Slug, ParentID: r.ParentID, Active: r.Active, SortOrder: r.SortOrder}
}

// --- cart ---

type CartItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1,max=999"`
}

type CartQuantityRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1,max=999"`
}

type CartVATRequest struct {
	CountryID int64 `json:"country_id" validate:"required,gt=0"`
}

type CartShippingRequest struct {
	ShippingMethod string `json:"shipping_method" validate:"required,shipping_method"`
	PickupPointID  string `json:"pickup_point_id" validate:"required_if=ShippingMethod pickup"`
}

// --- addresses & checkout ---

type AddressRequest struct {
	Type      string `json:"type" validate:"omitempty,address_type"`
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Company   string `json:"company" validate:"max=150"`
	Email     string `json:"email" validate:"omitempty,email,max=255"`
	Phone     string `json:"phone" validate:"required,max=30"`
	CountryID int64  `json:"country_id" validate:"required,gt=0"`
	StateID   int64  `json:"state_id" validate:"required,gt=0"`
	CityID    int64  `json:"city_id" validate:"required,gt=0"`
	Street    string `json:"street" validate:"required,max=255"`
	Zip       string `json:"zip" validate:"required,max=20"`
	IsDefault bool   `json:"is_default"`
}

func (r AddressRequest) input() services.AddressInput {
	typ := entity.AddressType(r.Type)
	if typ == "" {
		typ = entity.AddressShipping
	}
	return services.AddressInput{
		Type:      typ,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Company:   r.Company,
		Email:     r.Email,
		Phone:     r.Phone,
		CountryID: r.CountryID,
		StateID:   r.StateID,
		CityID:    r.CityID,
		Street:    r.Street,
		Zip:       r.Zip,
		IsDefault: r.IsDefault,
	}
}

// SessionAddressesRequest carries a guest's checkout addresses. With
// use_shipping_as_billing the billing form is dropped before validation.
type SessionAddressesRequest struct {
	Shipping             AddressRequest  `json:"shipping"`
	UseShippingAsBilling bool            `json:"use_shipping_as_billing"`
	Billing              *AddressRequest `json:"billing" validate:"required_if=UseShippingAsBilling false"`
}

type PlaceOrderRequest struct {
	// IdempotencyKey is taken from the X-Idempotency-Key header.
	IdempotencyKey       string `json:"idempotency_key" validate:"required,max=64"`
	ShippingAddressID    string `json:"shipping_address_id"`
	BillingAddressID     string `json:"billing_address_id"`
	UseShippingAsBilling bool   `json:"use_shipping_as_billing"`
	PaymentMethod        string `json:"payment_method" validate:"required,payment_method"`
	Notes                string `json:"notes" validate:"max=1000"`
}

// --- accounts ---

type RegisterRequest struct {
	Email                string `json:"email" validate:"required,email,max=255"`
	Password             string `json:"password" validate:"required,min=8,max=72"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
	FirstName            string `json:"first_name" validate:"required,max=100"`
	LastName             string `json:"last_name" validate:"required,max=100"`
	Phone                string `json:"phone" validate:"max=30"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type CustomerUpdateRequest struct {
	Email     string `json:"email" validate:"required,email,max=255"`
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Phone     string `json:"phone" validate:"max=30"`
	Active    bool   `json:"active"`
	Password  string `json:"password" validate:"omitempty,min=8,max=72"`
}

type UserRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Role     string `json:"role" validate:"required,role"`
	Active   bool   `json:"active"`
	Password string `json:"password" validate:"omitempty,min=8,max=72"`
}

func (r UserRequest) input() services.UserInput {
	return services.UserInput{Name: r.Name, Email: r.Email, Role: entity.Role(r.Role), Active: r.Active, Password: r.Password}
}

// --- orders & returns ---

type OrderStatusRequest struct {
	Status string `json:"status" validate:"required,order_status"`
}

type PaymentStatusRequest struct {
	PaymentStatus string `json:"payment_status" validate:"required,payment_status"`
}

// OrderBatchUpdateRequest applies one change to many orders. Only status and
// payment_status can be batch-updated.
type OrderBatchUpdateRequest struct {
	IDs   []string `json:"ids" validate:"required,min=1,max=100,dive,required"`
	Type  string   `json:"type" validate:"required,oneof=status payment_status"`
	Value string   `json:"value" validate:"required"`
}

type ReturnRequest struct {
	OrderID      string          `json:"order_id" validate:"required"`
	ProductID    string          `json:"product_id" validate:"required"`
	Quantity     int             `json:"quantity" validate:"required,min=1"`
	Reason       string          `json:"reason" validate:"required,max=1000"`
	RefundAmount decimal.Decimal `json:"refund_amount" validate:"gte=0,lte=100000"`
	Restock      bool            `json:"restock"`
}

// CustomerReturnRequest is a return a shopper files on their own order.
type CustomerReturnRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
	Reason    string `json:"reason" validate:"required,max=1000"`
}

type ReturnUpdateRequest struct {
	Status       string           `json:"status" validate:"omitempty,return_status"`
	RefundAmount *decimal.Decimal `json:"refund_amount" validate:"omitempty,gte=0,lte=100000"`
	Restock      *bool            `json:"restock"`
}
