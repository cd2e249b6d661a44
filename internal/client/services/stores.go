package services

import (
	"context"

	"github.com/villaresmetals/console/internal/client/cache"
	"github.com/villaresmetals/console/internal/client/client"
	"github.com/villaresmetals/console/internal/client/models"
	"github.com/villaresmetals/console/internal/logging"
)

// Stores bundles the four entity caches. A 401 on any of them expires the
// session.
type Stores struct {
	Customers *cache.Cache[models.Customer]
	Products  *cache.Cache[models.Product]
	Employees *cache.Cache[models.Employee]
	Orders    *cache.Orders
}

func NewStores(c client.Client, endpoints Endpoints, session *Session, logger logging.Logger) *Stores {
	if logger == nil {
		logger = logging.Nop()
	}
	opts := []cache.Option{cache.WithLogger(logger)}
	if session != nil {
		opts = append(opts, cache.OnUnauthorized(func(ctx context.Context) {
			if err := session.Expire(ctx); err != nil {
				logger.Error(ctx, "failed to expire session", "error", err)
			}
		}))
	}

	return &Stores{
		Customers: cache.New("customers", endpoints.Customers, c, models.CustomersV1, opts...),
		Products:  cache.New("products", endpoints.Products, c, models.ProductsV1, opts...),
		Employees: cache.New("employees", endpoints.Employees, c, models.EmployeesV1, opts...),
		Orders:    cache.NewOrders(endpoints.Orders, endpoints.OrdersSearch, c, opts...),
	}
}

// LoadAll loads every cache and returns the first error.
func (s *Stores) LoadAll(ctx context.Context) error {
	var first error
	for _, load := range []func(context.Context) error{
		s.Customers.Load, s.Products.Load, s.Employees.Load, s.Orders.Load,
	} {
		if err := load(ctx); err != nil && first == nil {
			first = err
		}
	}
	return first
}
