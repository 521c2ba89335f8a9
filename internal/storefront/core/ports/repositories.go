package ports

import (
	"context"
	"time"

	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/domain/entity"
)

type ProductRepository interface {
	CreateProduct(ctx context.Context, p *entity.Product) error
	UpdateProduct(ctx context.Context, p *entity.Product) error
	DeleteProduct(ctx context.Context, id string) error
	GetProduct(ctx context.Context, id string) (*entity.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*entity.Product, error)
	ListProducts(ctx context.Context, f entity.ProductFilter) (entity.PageResult[entity.Product], error)
	ListVariants(ctx context.Context, parentID string) ([]entity.Product, error)
	// AdjustStock adds delta to the stock of productID inside its own transaction.
	AdjustStock(ctx context.Context, productID string, delta int) error
}

type CategoryRepository interface {
	CreateCategory(ctx context.Context, c *entity.Category) error
	UpdateCategory(ctx context.Context, c *entity.Category) error
	DeleteCategory(ctx context.Context, id string) error
	GetCategory(ctx context.Context, id string) (*entity.Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*entity.Category, error)
	ListCategories(ctx context.Context, activeOnly bool) ([]entity.Category, error)
}

type GeoRepository interface {
	ListCountries(ctx context.Context) ([]entity.Country, error)
	ListStates(ctx context.Context, countryID int64) ([]entity.State, error)
	ListCities(ctx context.Context, stateID int64) ([]entity.City, error)
	GetCountry(ctx context.Context, id int64) (*entity.Country, error)
	GetState(ctx context.Context, id int64) (*entity.State, error)
	GetCity(ctx context.Context, id int64) (*entity.City, error)
}

type CustomerRepository interface {
	CreateCustomer(ctx context.Context, c *entity.Customer) error
	UpdateCustomer(ctx context.Context, c *entity.Customer) error
	DeleteCustomer(ctx context.Context, id string) error
	GetCustomer(ctx context.Context, id string) (*entity.Customer, error)
	GetCustomerByEmail(ctx context.Context, email string) (*entity.Customer, error)
	ListCustomers(ctx context.Context, f entity.CustomerFilter) (entity.PageResult[entity.Customer], error)
	CountCustomersCreated(ctx context.Context, from, to time.Time) (int, error)
}

type UserRepository interface {
	CreateUser(ctx context.Context, u *entity.User) error
	UpdateUser(ctx context.Context, u *entity.User) error
	DeleteUser(ctx context.Context, id string) error
	GetUser(ctx context.Context, id string) (*entity.User, error)
	GetUserByEmail(ctx context.Context, email string) (*entity.User, error)
	ListUsers(ctx context.Context) ([]entity.User, error)
	TouchLogin(ctx context.Context, id string, at time.Time) error
}

type AddressRepository interface {
	CreateAddress(ctx context.Context, a *entity.Address) error
	UpdateAddress(ctx context.Context, a *entity.Address) error
	DeleteAddress(ctx context.Context, id string) error
	GetAddress(ctx context.Context, id string) (*entity.Address, error)
	ListCustomerAddresses(ctx context.Context, customerID string) ([]entity.Address, error)
	// LatestSessionAddress returns the most recently saved guest address of the type.
	LatestSessionAddress(ctx context.Context, sessionID string, typ entity.AddressType) (*entity.Address, error)
}

type CartRepository interface {
	// GetCart returns the actor's cart, creating an empty one when none exists.
	GetCart(ctx context.Context, actor entity.Actor) (*entity.Cart, error)
	SaveCart(ctx context.Context, c *entity.Cart) error
	DeleteCart(ctx context.Context, id string) error
}

type SessionRepository interface {
	TouchSession(ctx context.Context, id string, at time.Time) error
	PurgeSessions(ctx context.Context, idleBefore time.Time) (int, error)
}

type OrderRepository interface {
	CreateOrder(ctx context.Context, o *entity.Order) error
	GetOrder(ctx context.Context, id string) (*entity.Order, error)
	GetOrderByNumber(ctx context.Context, number string) (*entity.Order, error)
	// GetOrderByIdempotencyKey only considers orders that still hold the key,
	// i.e. ones that were not cancelled.
	GetOrderByIdempotencyKey(ctx context.Context, key string) (*entity.Order, error)
	ListOrders(ctx context.Context, f entity.OrderFilter) (entity.PageResult[entity.Order], error)
	UpdateOrderStatus(ctx context.Context, id string, status entity.OrderStatus) error
	UpdatePaymentStatus(ctx context.Context, id string, status entity.PaymentStatus) error
	ListStalePending(ctx context.Context, method entity.PaymentMethod, before time.Time) ([]entity.Order, error)
	CountOrdersForCustomer(ctx context.Context, customerID string) (int, error)
}

type ReservationRepository interface {
	// Reserve decrements stock for every item or for none of them.
	Reserve(ctx context.Context, orderID string, items []entity.OrderItem) error
	// Release restores the stock held by orderID; it reports whether anything was held.
	Release(ctx context.Context, orderID string) (bool, error)
}

type PaymentRepository interface {
	SavePayment(ctx context.Context, p *entity.Payment) error
	GetPayment(ctx context.Context, orderID string) (*entity.Payment, error)
}

type ReturnRepository interface {
	CreateReturn(ctx context.Context, r *entity.Return) error
	UpdateReturn(ctx context.Context, r *entity.Return) error
	GetReturn(ctx context.Context, id string) (*entity.Return, error)
	ListReturns(ctx context.Context, f entity.ReturnFilter) (entity.PageResult[entity.Return], error)
	// ReturnedQuantity sums quantities of non-rejected returns for one order line.
	ReturnedQuantity(ctx context.Context, orderID, productID string) (int, error)
	RefundedQuantity(ctx context.Context, orderID string) (int, error)
}

type DashboardRepository interface {
	OrdersBetween(ctx context.Context, from, to time.Time) ([]entity.Order, error)
	CountReturns(ctx context.Context, status entity.ReturnStatus) (int, error)
	LowStock(ctx context.Context, threshold, limit int) ([]entity.Product, error)
}
