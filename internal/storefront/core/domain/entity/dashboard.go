package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

type Dashboard struct {
	From              time.Time
	To                time.Time
	OrdersCount       int
	Revenue           decimal.Decimal
	AverageOrderValue decimal.Decimal
	NewCustomers      int
	PendingReturns    int
	OrdersByStatus    map[OrderStatus]int
	RevenueByDay      []DailyRevenue
	TopProducts       []ProductSales
	LowStock          []Product
}

type DailyRevenue struct {
	Date    string
	Orders  int
	Revenue decimal.Decimal
}

type ProductSales struct {
	ProductID string
	Name      string
	Quantity  int
	Revenue   decimal.Decimal
}
