package services

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/ports"
)

const (
	defaultDashboardWindow = 30 * 24 * time.Hour
	topProductsLimit       = 5
	lowStockLimit          = 10
)

type DashboardService struct {
	repo              ports.DashboardRepository
	customers         ports.CustomerRepository
	lowStockThreshold int
	now               func() time.Time
}

func NewDashboardService(repo ports.DashboardRepository, customers ports.CustomerRepository, lowStockThreshold int) *DashboardService {
	return &DashboardService{repo: repo, customers: customers, lowStockThreshold: lowStockThreshold, now: time.Now}
}

// Summary aggregates activity in [from, to). Zero bounds default to the
// last 30 days. Cancelled orders count by status but not toward revenue.
func (s *DashboardService) Summary(ctx context.Context, from, to time.Time) (*entity.Dashboard, error) {
	if to.IsZero() {
		to = s.now().UTC()
	}
	if from.IsZero() {
		from = to.Add(-defaultDashboardWindow)
	}
	if !from.Before(to) {
		return nil, entity.NewValidationError("from", "The from date must be before the to date.")
	}

	orders, err := s.repo.OrdersBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}

	d := &entity.Dashboard{
		From:           from,
		To:             to,
		Revenue:        decimal.Zero,
		OrdersByStatus: make(map[entity.OrderStatus]int),
	}
	daily := map[string]*entity.DailyRevenue{}
	sales := map[string]*entity.ProductSales{}

	counted := 0
	for _, o := range orders {
		d.OrdersCount++
		d.OrdersByStatus[o.Status]++
		if o.Status == entity.StatusCancelled {
			continue
		}
		counted++
		d.Revenue = d.Revenue.Add(o.Totals.TotalInclTax)

		day := o.CreatedAt.UTC().Format("2006-01-02")
		dr, ok := daily[day]
		if !ok {
			dr = &entity.DailyRevenue{Date: day, Revenue: decimal.Zero}
			daily[day] = dr
		}
		dr.Orders++
		dr.Revenue = dr.Revenue.Add(o.Totals.TotalInclTax)

		for _, it := range o.Items {
			ps, ok := sales[it.ProductID]
			if !ok {
				ps = &entity.ProductSales{ProductID: it.ProductID, Name: it.Name, Revenue: decimal.Zero}
				sales[it.ProductID] = ps
			}
			ps.Quantity += it.Quantity
			ps.Revenue = ps.Revenue.Add(it.Subtotal())
		}
	}
	if counted > 0 {
		d.AverageOrderValue = d.Revenue.Div(decimal.NewFromInt(int64(counted))).Round(2)
	}

	for _, dr := range daily {
		d.RevenueByDay = append(d.RevenueByDay, *dr)
	}
	sort.Slice(d.RevenueByDay, func(i, j int) bool { return d.RevenueByDay[i].Date < d.RevenueByDay[j].Date })

	for _, ps := range sales {
		d.TopProducts = append(d.TopProducts, *ps)
	}
	sort.Slice(d.TopProducts, func(i, j int) bool {
		a, b := d.TopProducts[i], d.TopProducts[j]
		if a.Quantity != b.Quantity {
			return a.Quantity > b.Quantity
		}
		return a.ProductID < b.ProductID
	})
	if len(d.TopProducts) > topProductsLimit {
		d.TopProducts = d.TopProducts[:topProductsLimit]
	}

	if d.NewCustomers, err = s.customers.CountCustomersCreated(ctx, from, to); err != nil {
		return nil, err
	}
	if d.PendingReturns, err = s.repo.CountReturns(ctx, entity.ReturnRequested); err != nil {
		return nil, err
	}
	if d.LowStock, err = s.repo.LowStock(ctx, s.lowStockThreshold, lowStockLimit); err != nil {
		return nil, err
	}
	return d, nil
}
