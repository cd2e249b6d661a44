package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/villaresmetals/console/internal/client/cache"
	"github.com/villaresmetals/console/internal/client/models"
	"github.com/villaresmetals/console/internal/client/search"
	"github.com/villaresmetals/console/internal/client/services"
)

// entityOps is the per-collection command surface shared by cobra and the
// shell.
type entityOps interface {
	Name() string
	Fields() []string
	list(ctx context.Context, a *App, query string) error
	get(ctx context.Context, a *App, id int) error
	add(ctx context.Context, a *App, fields map[string]string) error
	update(ctx context.Context, a *App, id int, fields map[string]string) error
	remove(ctx context.Context, a *App, id int) error
}

type entity[T search.Searchable] struct {
	name    string
	fields  []string
	cache   func(*services.Stores) *cache.Cache[T]
	headers []string
	row     func(T) []string
	// apply sets the given fields on v; unknown keys are an error.
	apply func(v T, fields map[string]string) (T, error)
}

func (e entity[T]) Name() string     { return e.name }
func (e entity[T]) Fields() []string { return e.fields }

func (e entity[T]) list(ctx context.Context, a *App, query string) error {
	c := e.cache(a.stores)
	if err := c.Load(ctx); err != nil {
		return err
	}
	return e.print(a.out, search.Text(c.Items(), query))
}

func (e entity[T]) print(w io.Writer, items []T) error {
	rows := make([][]string, 0, len(items))
	for _, it := range items {
		rows = append(rows, e.row(it))
	}
	return printTable(w, e.headers, rows)
}

func (e entity[T]) get(ctx context.Context, a *App, id int) error {
	v, err := e.cache(a.stores).Fetch(ctx, id)
	if err != nil {
		return err
	}
	return e.print(a.out, []T{v})
}

func (e entity[T]) add(ctx context.Context, a *App, fields map[string]string) error {
	var zero T
	v, err := e.apply(zero, fields)
	if err != nil {
		return usageError{err}
	}
	if err := e.cache(a.stores).Add(ctx, v); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Created %s\n", strings.TrimSuffix(e.name, "s"))
	return nil
}

// update merges fields into the current server record before sending it.
func (e entity[T]) update(ctx context.Context, a *App, id int, fields map[string]string) error {
	c := e.cache(a.stores)
	current, err := c.Fetch(ctx, id)
	if err != nil {
		return err
	}
	v, err := e.apply(current, fields)
	if err != nil {
		return usageError{err}
	}
	if err := c.Update(ctx, id, v); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Updated %s %d\n", strings.TrimSuffix(e.name, "s"), id)
	return nil
}

func (e entity[T]) remove(ctx context.Context, a *App, id int) error {
	if err := e.cache(a.stores).Remove(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted %s %d\n", strings.TrimSuffix(e.name, "s"), id)
	return nil
}

var customerEntity = entity[models.Customer]{
	name:    "customers",
	fields:  []string{"name", "cnpj", "phone", "email"},
	cache:   func(s *services.Stores) *cache.Cache[models.Customer] { return s.Customers },
	headers: []string{"ID", "NAME", "CNPJ", "PHONE", "EMAIL"},
	row: func(c models.Customer) []string {
		return []string{strconv.Itoa(c.ID), c.Name, c.CNPJ, c.Phone, c.Email}
	},
	apply: func(c models.Customer, f map[string]string) (models.Customer, error) {
		err := setFields(f, map[string]func(string) error{
			"name":  setString(&c.Name),
			"cnpj":  setString(&c.CNPJ),
			"phone": setString(&c.Phone),
			"email": setString(&c.Email),
		})
		return c, err
	},
}

var productEntity = entity[models.Product]{
	name:    "products",
	fields:  []string{"name", "input_weight", "output_weight"},
	cache:   func(s *services.Stores) *cache.Cache[models.Product] { return s.Products },
	headers: []string{"ID", "NAME", "INPUT WEIGHT", "OUTPUT WEIGHT"},
	row: func(p models.Product) []string {
		return []string{strconv.Itoa(p.ID), p.Name, p.InputWeight, p.OutputWeight}
	},
	apply: func(p models.Product, f map[string]string) (models.Product, error) {
		err := setFields(f, map[string]func(string) error{
			"name":          setString(&p.Name),
			"input_weight":  setString(&p.InputWeight),
			"output_weight": setString(&p.OutputWeight),
		})
		return p, err
	},
}

var employeeEntity = entity[models.Employee]{
	name:    "employees",
	fields:  []string{"username", "password"},
	cache:   func(s *services.Stores) *cache.Cache[models.Employee] { return s.Employees },
	headers: []string{"ID", "USERNAME"},
	row: func(e models.Employee) []string {
		return []string{strconv.Itoa(e.ID), e.Username}
	},
	apply: func(e models.Employee, f map[string]string) (models.Employee, error) {
		err := setFields(f, map[string]func(string) error{
			"username": setString(&e.Username),
			"password": setString(&e.Password),
		})
		return e, err
	},
}

var orderEntity = entity[models.Order]{
	name:    "orders",
	fields:  []string{"description", "customer", "delivery", "value", "paid", "status", "items"},
	cache:   func(s *services.Stores) *cache.Cache[models.Order] { return s.Orders.Cache },
	headers: []string{"ID", "CUSTOMER", "DESCRIPTION", "DELIVERY", "VALUE", "PAID", "STATUS", "ITEMS"},
	row: func(o models.Order) []string {
		customer := ""
		if o.Customer != nil {
			customer = o.Customer.Name
		}
		delivery := ""
		if !o.DeliveryDate.IsZero() {
			delivery = o.DeliveryDate.Format(models.DateLayout)
		}
		return []string{
			strconv.Itoa(o.ID), customer, o.Description, delivery,
			o.Value.StringFixed(2), strconv.FormatBool(o.Paid), string(o.Production),
			strconv.Itoa(len(o.Items)),
		}
	},
	apply: applyOrder,
}

func applyOrder(o models.Order, f map[string]string) (models.Order, error) {
	err := setFields(f, map[string]func(string) error{
		"description": setString(&o.Description),
		"customer": func(v string) error {
			if v == "" || v == "0" {
				o.Customer = nil
				return nil
			}
			id, err := strconv.Atoi(v)
			if err != nil || id < 0 {
				return fmt.Errorf("invalid customer id %q", v)
			}
			o.Customer = &models.Customer{ID: id}
			return nil
		},
		"delivery": func(v string) error {
			if v == "" {
				o.DeliveryDate = time.Time{}
				return nil
			}
			d, err := time.Parse(models.DateLayout, v)
			if err != nil {
				return fmt.Errorf("invalid delivery date %q, want YYYY-MM-DD", v)
			}
			o.DeliveryDate = d
			return nil
		},
		"value": func(v string) error {
			d, err := decimal.NewFromString(v)
			if err != nil {
				return fmt.Errorf("invalid value %q", v)
			}
			o.Value = d
			return nil
		},
		"paid": func(v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid paid flag %q", v)
			}
			o.Paid = b
			return nil
		},
		"status": func(v string) error {
			s, err := models.ParseProductionStatus(v)
			if err != nil {
				return err
			}
			o.Production = s
			return nil
		},
		"items": func(v string) error {
			items, err := parseItems(v)
			if err != nil {
				return err
			}
			o.Items = items
			return nil
		},
	})
	return o, err
}

// parseItems reads "productID:quantity" pairs separated by commas.
func parseItems(v string) ([]models.OrderItem, error) {
	items := []models.OrderItem{}
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		p, q, ok := strings.Cut(part, ":")
		id, err1 := strconv.Atoi(strings.TrimSpace(p))
		qty, err2 := strconv.Atoi(strings.TrimSpace(q))
		if !ok || err1 != nil || err2 != nil || id <= 0 || qty <= 0 {
			return nil, fmt.Errorf("invalid item %q, want productID:quantity", part)
		}
		items = append(items, models.OrderItem{Product: models.Product{ID: id}, Quantity: qty})
	}
	return items, nil
}

func setString(dst *string) func(string) error {
	return func(v string) error {
		*dst = v
		return nil
	}
}

// setFields runs the setter for every key in f, in key order.
func setFields(f map[string]string, setters map[string]func(string) error) error {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		set, ok := setters[strings.ToLower(k)]
		if !ok {
			return fmt.Errorf("unknown field %q", k)
		}
		if err := set(f[k]); err != nil {
			return err
		}
	}
	return nil
}

var entities = []entityOps{customerEntity, productEntity, employeeEntity, orderEntity}

func lookupEntity(name string) (entityOps, bool) {
	for _, e := range entities {
		if e.Name() == name || strings.TrimSuffix(e.Name(), "s") == name {
			return e, true
		}
	}
	return nil, false
}

// searchOrders runs the structured order search on the backend and prints
// the narrowed collection.
func (a *App) searchOrders(ctx context.Context, params map[string]string) error {
	f, err := search.ParseOrderFilters(params)
	if err != nil {
		return usageError{err}
	}
	if f.IsZero() {
		err = a.stores.Orders.Load(ctx)
	} else {
		err = a.stores.Orders.SearchAdvanced(ctx, f)
	}
	if err != nil {
		return err
	}
	return orderEntity.print(a.out, a.stores.Orders.Items())
}
