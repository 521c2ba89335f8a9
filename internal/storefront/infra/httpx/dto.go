package httpx

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/ecommerce-storefront/internal/coordinator/sagalog"
	"github.com/jcmexdev/ecommerce-storefront/internal/pkg/config"
	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/services"
)

type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

type PageMeta struct {
	Total    int `json:"total"`
	Page     int `json:"page"`
	PerPage  int `json:"per_page"`
	LastPage int `json:"last_page"`
}

type PageResponse[T any] struct {
	Data []T      `json:"data"`
	Meta PageMeta `json:"meta"`
}

func mapPage[E, T any](p entity.PageResult[E], fn func(E) T) PageResponse[T] {
	out := PageResponse[T]{Data: make([]T, len(p.Items)), Meta: PageMeta{Total: p.Total, Page: p.Page, PerPage: p.PerPage}}
	for i, it := range p.Items {
		out.Data[i] = fn(it)
	}
	if p.PerPage > 0 {
		out.Meta.LastPage = max(1, (p.Total+p.PerPage-1)/p.PerPage)
	}
	return out
}

func mapSlice[E, T any](items []E, fn func(E) T) []T {
	out := make([]T, len(items))
	for i, it := range items {
		out[i] = fn(it)
	}
	return out
}

func money(d decimal.Decimal) string { return d.StringFixed(2) }

// --- catalog ---

type ProductResponse struct {
	ID            string            `json:"id"`
	SKU           string            `json:"sku"`
	Name          string            `json:"name"`
	Slug          string            `json:"slug"`
	Description   string            `json:"description,omitempty"`
	Brand         string            `json:"brand,omitempty"`
	Price         string            `json:"price"`
	StockQuantity int               `json:"stock_quantity"`
	InStock       bool              `json:"in_stock"`
	CategoryID    string            `json:"category_id"`
	Type          string            `json:"type"`
	ParentID      string            `json:"parent_id,omitempty"`
	Active        bool              `json:"active"`
	Variants      []ProductResponse `json:"variants,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

func mapProduct(p entity.Product) ProductResponse {
	return ProductResponse{
		ID:            p.ID,
		SKU:           p.SKU,
		Name:          p.Name,
		Slug:          p.Slug,
		Description:   p.Description,
		Brand:         p.Brand,
		Price:         money(p.Price),
		StockQuantity: p.StockQuantity,
		InStock:       p.StockQuantity > 0,
		CategoryID:    p.CategoryID,
		Type:          string(p.Type),
		ParentID:      p.ParentID,
		Active:        p.Active,
		Variants:      mapSlice(p.Variants, mapProduct),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

type CategoryResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	ParentID  string `json:"parent_id,omitempty"`
	Active    bool   `json:"active"`
	SortOrder int    `json:"sort_order"`
}

func mapCategory(c entity.Category) CategoryResponse {
	return CategoryResponse{ID: c.ID, Name: c.Name, Slug: c.Slug, ParentID: c.ParentID, Active: c.Active, SortOrder: c.SortOrder}
}

// --- geography ---

type PlaceResponse struct {
	ID   int64  `json:"id"`
	Code string `json:"code,omitempty"`
	Name string `json:"name"`
}

func mapCountry(c entity.Country) PlaceResponse {
	return PlaceResponse{ID: c.ID, Code: c.Code, Name: c.Name}
}
func mapState(s entity.State) PlaceResponse { return PlaceResponse{ID: s.ID, Name: s.Name} }
func mapCity(c entity.City) PlaceResponse   { return PlaceResponse{ID: c.ID, Name: c.Name} }

type PickupPointResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	CityID  int64  `json:"city_id"`
	Address string `json:"address"`
}

func mapPickupPoint(p config.PickupPoint) PickupPointResponse {
	return PickupPointResponse{ID: p.ID, Name: p.Name, CityID: p.CityID, Address: p.Address}
}

// --- cart ---

type TotalsResponse struct {
	Subtotal     string `json:"subtotal"`
	Shipping     string `json:"shipping"`
	VATRate      string `json:"vat_rate"`
	Tax          string `json:"tax"`
	TotalExclTax string `json:"total_excl_tax"`
	TotalInclTax string `json:"total_incl_tax"`
	CountryCode  string `json:"country_code,omitempty"`
	Currency     string `json:"currency"`
}

func mapTotals(t entity.Totals) TotalsResponse {
	return TotalsResponse{
		Subtotal:     money(t.Subtotal),
		Shipping:     money(t.Shipping),
		VATRate:      t.VATRate.String(),
		Tax:          money(t.Tax),
		TotalExclTax: money(t.TotalExclTax),
		TotalInclTax: money(t.TotalInclTax),
		CountryCode:  t.CountryCode,
		Currency:     t.Currency,
	}
}

type LineResponse struct {
	ProductID string `json:"product_id"`
	SKU       string `json:"sku"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	LineTotal string `json:"line_total"`
}

type CartResponse struct {
	ID                string         `json:"id"`
	Items             []LineResponse `json:"items"`
	ShippingCountryID int64          `json:"shipping_country_id,omitempty"`
	ShippingMethod    string         `json:"shipping_method"`
	PickupPointID     string         `json:"pickup_point_id,omitempty"`
	Totals            TotalsResponse `json:"totals"`
}

func mapCart(p *entity.PricedCart) CartResponse {
	c := p.Cart
	return CartResponse{
		ID: c.ID,
		Items: mapSlice(c.Items, func(it entity.CartItem) LineResponse {
			return LineResponse{
				ProductID: it.ProductID, SKU: it.SKU, Name: it.Name, Quantity: it.Quantity,
				UnitPrice: money(it.UnitPrice), LineTotal: money(it.LineTotal()),
			}
		}),
		ShippingCountryID: c.ShippingCountryID,
		ShippingMethod:    string(c.ShippingMethod),
		PickupPointID:     c.PickupPointID,
		Totals:            mapTotals(p.Totals),
	}
}

// --- addresses ---

type AddressResponse struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Company   string `json:"company,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone"`
	CountryID int64  `json:"country_id"`
	StateID   int64  `json:"state_id"`
	CityID    int64  `json:"city_id"`
	Street    string `json:"street"`
	Zip       string `json:"zip"`
	IsDefault bool   `json:"is_default"`
}

func mapAddress(a entity.Address) AddressResponse {
	return AddressResponse{
		ID: a.ID, Type: string(a.Type), FirstName: a.FirstName, LastName: a.LastName,
		Company: a.Company, Email: a.Email, Phone: a.Phone,
		CountryID: a.CountryID, StateID: a.StateID, CityID: a.CityID,
		Street: a.Street, Zip: a.Zip, IsDefault: a.IsDefault,
	}
}

type SessionAddressesResponse struct {
	Shipping *AddressResponse `json:"shipping"`
	Billing  *AddressResponse `json:"billing,omitempty"`
}

// --- orders ---

type OrderResponse struct {
	ID              string                 `json:"id"`
	Number          string                 `json:"number"`
	CustomerID      string                 `json:"customer_id,omitempty"`
	Email           string                 `json:"email"`
	Status          string                 `json:"status"`
	PaymentStatus   string                 `json:"payment_status"`
	PaymentMethod   string                 `json:"payment_method"`
	ShippingMethod  string                 `json:"shipping_method"`
	PickupPointID   string                 `json:"pickup_point_id,omitempty"`
	Items           []LineResponse         `json:"items"`
	ShippingAddress entity.AddressSnapshot `json:"shipping_address"`
	BillingAddress  entity.AddressSnapshot `json:"billing_address"`
	Totals          TotalsResponse         `json:"totals"`
	Notes           string                 `json:"notes,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

func mapOrder(o entity.Order) OrderResponse {
	return OrderResponse{
		ID:             o.ID,
		Number:         o.Number,
		CustomerID:     o.CustomerID,
		Email:          o.Email,
		Status:         string(o.Status),
		PaymentStatus:  string(o.PaymentStatus),
		PaymentMethod:  string(o.PaymentMethod),
		ShippingMethod: string(o.ShippingMethod),
		PickupPointID:  o.PickupPointID,
		Items: mapSlice(o.Items, func(it entity.OrderItem) LineResponse {
			return LineResponse{
				ProductID: it.ProductID, SKU: it.SKU, Name: it.Name, Quantity: it.Quantity,
				UnitPrice: money(it.UnitPrice), LineTotal: money(it.Subtotal()),
			}
		}),
		ShippingAddress: o.ShippingAddress,
		BillingAddress:  o.BillingAddress,
		Totals:          mapTotals(o.Totals),
		Notes:           o.Notes,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

// AdminOrderResponse is the back-office order detail: the order plus the
// checkout saga that placed it.
type AdminOrderResponse struct {
	OrderResponse
	Saga []SagaStepResponse `json:"saga"`
}

type SagaStepResponse struct {
	Status  string    `json:"status"`
	Step    string    `json:"step,omitempty"`
	Errors  []string  `json:"errors,omitempty"`
	TraceID string    `json:"trace_id,omitempty"`
	At      time.Time `json:"at"`
}

func mapSagaStep(l sagalog.SagaLog) SagaStepResponse {
	var errs []string
	// malformed rows still show their status
	_ = json.Unmarshal([]byte(l.ErrorMessages), &errs)
	return SagaStepResponse{
		Status:  string(l.Status),
		Step:    l.CurrentStep,
		Errors:  errs,
		TraceID: l.TraceID,
		At:      l.UpdatedAt,
	}
}

type BatchFailureResponse struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

type BatchResponse struct {
	Updated int                    `json:"updated"`
	Failed  []BatchFailureResponse `json:"failed"`
}

func mapBatch(b *entity.BatchResult) BatchResponse {
	return BatchResponse{
		Updated: b.Updated,
		Failed: mapSlice(b.Failed, func(f entity.BatchFailure) BatchFailureResponse {
			return BatchFailureResponse{ID: f.ID, Error: f.Error}
		}),
	}
}

// --- returns ---

type ReturnResponse struct {
	ID           string    `json:"id"`
	OrderID      string    `json:"order_id"`
	OrderNumber  string    `json:"order_number"`
	ProductID    string    `json:"product_id"`
	Quantity     int       `json:"quantity"`
	Reason       string    `json:"reason"`
	Status       string    `json:"status"`
	RefundAmount string    `json:"refund_amount"`
	Restock      bool      `json:"restock"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func mapReturn(r entity.Return) ReturnResponse {
	return ReturnResponse{
		ID: r.ID, OrderID: r.OrderID, OrderNumber: r.OrderNumber, ProductID: r.ProductID,
		Quantity: r.Quantity, Reason: r.Reason, Status: string(r.Status),
		RefundAmount: money(r.RefundAmount), Restock: r.Restock,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

// --- accounts ---

type CustomerResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Phone     string    `json:"phone,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

func mapCustomer(c entity.Customer) CustomerResponse {
	return CustomerResponse{
		ID: c.ID, Email: c.Email, FirstName: c.FirstName, LastName: c.LastName,
		Phone: c.Phone, Active: c.Active, CreatedAt: c.CreatedAt,
	}
}

type UserResponse struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Role        string     `json:"role"`
	Active      bool       `json:"active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func mapUser(u entity.User) UserResponse {
	return UserResponse{
		ID: u.ID, Name: u.Name, Email: u.Email, Role: string(u.Role),
		Active: u.Active, LastLoginAt: u.LastLoginAt, CreatedAt: u.CreatedAt,
	}
}

type TokenResponse struct {
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"expires_at"`
	Customer  *CustomerResponse `json:"customer,omitempty"`
	User      *UserResponse     `json:"user,omitempty"`
}

func tokenResponse(s *services.Session) TokenResponse {
	return TokenResponse{Token: s.Token, ExpiresAt: s.ExpiresAt}
}

// --- dashboard ---

type DailyRevenueResponse struct {
	Date    string `json:"date"`
	Orders  int    `json:"orders"`
	Revenue string `json:"revenue"`
}

type ProductSalesResponse struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Revenue   string `json:"revenue"`
}

type DashboardResponse struct {
	From              time.Time              `json:"from"`
	To                time.Time              `json:"to"`
	OrdersCount       int                    `json:"orders_count"`
	Revenue           string                 `json:"revenue"`
	AverageOrderValue string                 `json:"average_order_value"`
	NewCustomers      int                    `json:"new_customers"`
	PendingReturns    int                    `json:"pending_returns"`
	OrdersByStatus    map[string]int         `json:"orders_by_status"`
	RevenueByDay      []DailyRevenueResponse `json:"revenue_by_day"`
	TopProducts       []ProductSalesResponse `json:"top_products"`
	LowStock          []ProductResponse      `json:"low_stock"`
}

func mapDashboard(d *entity.Dashboard) DashboardResponse {
	byStatus := make(map[string]int, len(d.OrdersByStatus))
	for s, n := range d.OrdersByStatus {
		byStatus[string(s)] = n
	}
	return DashboardResponse{
		From:              d.From,
		To:                d.To,
		OrdersCount:       d.OrdersCount,
		Revenue:           money(d.Revenue),
		AverageOrderValue: money(d.AverageOrderValue),
		NewCustomers:      d.NewCustomers,
		PendingReturns:    d.PendingReturns,
		OrdersByStatus:    byStatus,
		RevenueByDay: mapSlice(d.RevenueByDay, func(r entity.DailyRevenue) DailyRevenueResponse {
			return DailyRevenueResponse{Date: r.Date, Orders: r.Orders, Revenue: money(r.Revenue)}
		}),
		TopProducts: mapSlice(d.TopProducts, func(p entity.ProductSales) ProductSalesResponse {
			return ProductSalesResponse{ProductID: p.ProductID, Name: p.Name, Quantity: p.Quantity, Revenue: money(p.Revenue)}
		}),
		LowStock: mapSlice(d.LowStock, mapProduct),
	}
}
