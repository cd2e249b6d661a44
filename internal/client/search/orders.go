package search

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/villaresmetals/console/internal/client/models"
)

// All is the enum sentinel meaning "do not filter on this field".
const All = "ALL"

// PaymentFilter selects orders by payment status.
type PaymentFilter string

const (
	PaymentAll    PaymentFilter = All
	PaymentPaid   PaymentFilter = "PAID"
	PaymentUnpaid PaymentFilter = "UNPAID"
)

// ProductionAll disables the production status filter.
const ProductionAll models.ProductionStatus = All

// Query parameter names understood by the orders search endpoint.
const (
	ParamID           = "idOS"
	ParamCustomerName = "nomeCliente"
	ParamCustomerCNPJ = "cnpjCliente"
	ParamDeliveryFrom = "dataEntregaInicio"
	ParamDeliveryTo   = "dataEntregaFim"
	ParamValueMin     = "valorMinimo"
	ParamValueMax     = "valorMaximo"
	ParamPayment      = "statusPagamento"
	ParamProduction   = "statusProducao"
	ParamDescription  = "descricao"
)

// OrderFilters is the structured order search. Every field has a sentinel
// that disables it: 0 for numbers, ALL (or empty) for enums, "" for text and
// the zero time for dates. Active fields are ANDed.
type OrderFilters struct {
	ID           int
	CustomerName string
	CustomerCNPJ string
	DeliveryFrom time.Time
	DeliveryTo   time.Time
	ValueMin     decimal.Decimal
	ValueMax     decimal.Decimal
	Payment      PaymentFilter
	Production   models.ProductionStatus
	Description  string
}

// NewOrderFilters returns filters with every field at its sentinel.
func NewOrderFilters() OrderFilters {
	return OrderFilters{Payment: PaymentAll, Production: ProductionAll}
}

// IsZero reports whether no field is active.
func (f OrderFilters) IsZero() bool {
	return len(f.Query()) == 0
}

// Query serializes the active fields, omitting every sentinel.
func (f OrderFilters) Query() url.Values {
	q := url.Values{}
	if f.ID != 0 {
		q.Set(ParamID, strconv.Itoa(f.ID))
	}
	if s := strings.TrimSpace(f.CustomerName); s != "" {
		q.Set(ParamCustomerName, s)
	}
	if s := strings.TrimSpace(f.CustomerCNPJ); s != "" {
		q.Set(ParamCustomerCNPJ, s)
	}
	if !f.DeliveryFrom.IsZero() {
		q.Set(ParamDeliveryFrom, f.DeliveryFrom.Format(models.DateLayout))
	}
	if !f.DeliveryTo.IsZero() {
		q.Set(ParamDeliveryTo, f.DeliveryTo.Format(models.DateLayout))
	}
	if !f.ValueMin.IsZero() {
		q.Set(ParamValueMin, f.ValueMin.String())
	}
	if !f.ValueMax.IsZero() {
		q.Set(ParamValueMax, f.ValueMax.String())
	}
	switch f.Payment {
	case PaymentPaid:
		q.Set(ParamPayment, "true")
	case PaymentUnpaid:
		q.Set(ParamPayment, "false")
	}
	if w := models.WireStatus(f.Production); w != "" {
		q.Set(ParamProduction, w)
	}
	if s := strings.TrimSpace(f.Description); s != "" {
		q.Set(ParamDescription, s)
	}
	return q
}

// Match applies the active fields to o: exact id, payment and production;
// case-insensitive substring on customer name, CNPJ and description;
// inclusive ranges on delivery date and value.
func (f OrderFilters) Match(o models.Order) bool {
	if f.ID != 0 && o.ID != f.ID {
		return false
	}
	if s := strings.TrimSpace(f.CustomerName); s != "" {
		if o.Customer == nil || !containsFold(o.Customer.Name, s) {
			return false
		}
	}
	if s := strings.TrimSpace(f.CustomerCNPJ); s != "" {
		if o.Customer == nil || !containsFold(o.Customer.CNPJ, s) {
			return false
		}
	}
	if !f.DeliveryFrom.IsZero() || !f.DeliveryTo.IsZero() {
		if o.DeliveryDate.IsZero() {
			return false
		}
		d := dateOnly(o.DeliveryDate)
		if !f.DeliveryFrom.IsZero() && d.Before(dateOnly(f.DeliveryFrom)) {
			return false
		}
		if !f.DeliveryTo.IsZero() && d.After(dateOnly(f.DeliveryTo)) {
			return false
		}
	}
	if !f.ValueMin.IsZero() && o.Value.LessThan(f.ValueMin) {
		return false
	}
	if !f.ValueMax.IsZero() && o.Value.GreaterThan(f.ValueMax) {
		return false
	}
	switch f.Payment {
	case PaymentPaid:
		if !o.Paid {
			return false
		}
	case PaymentUnpaid:
		if o.Paid {
			return false
		}
	}
	if f.Production.Valid() && o.Production != f.Production {
		return false
	}
	if s := strings.TrimSpace(f.Description); s != "" && !containsFold(o.Description, s) {
		return false
	}
	return true
}

// Filter returns the orders f matches, in input order.
func (f OrderFilters) Filter(orders []models.Order) []models.Order {
	out := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		if f.Match(o) {
			out = append(out, o)
		}
	}
	return out
}

// ParseOrderFilters builds filters from query-style pairs, accepting the
// backend parameter names. Unknown keys are an error. Values equal to ALL or
// empty leave the field at its sentinel.
func ParseOrderFilters(params map[string]string) (OrderFilters, error) {
	f := NewOrderFilters()
	for key, raw := range params {
		v := strings.TrimSpace(raw)
		if v == "" || strings.EqualFold(v, All) {
			continue
		}

		var err error
		switch key {
		case ParamID:
			f.ID, err = strconv.Atoi(v)
		case ParamCustomerName:
			f.CustomerName = v
		case ParamCustomerCNPJ:
			f.CustomerCNPJ = v
		case ParamDeliveryFrom:
			f.DeliveryFrom, err = time.Parse(models.DateLayout, v)
		case ParamDeliveryTo:
			f.DeliveryTo, err = time.Parse(models.DateLayout, v)
		case ParamValueMin:
			f.ValueMin, err = decimal.NewFromString(v)
		case ParamValueMax:
			f.ValueMax, err = decimal.NewFromString(v)
		case ParamPayment:
			f.Payment, err = parsePayment(v)
		case ParamProduction:
			f.Production, err = models.ParseProductionStatus(v)
		case ParamDescription:
			f.Description = v
		default:
			err = fmt.Errorf("unknown filter")
		}
		if err != nil {
			return OrderFilters{}, fmt.Errorf("filter %s=%q: %w", key, raw, err)
		}
	}
	return f, nil
}

func parsePayment(v string) (PaymentFilter, error) {
	switch strings.ToLower(v) {
	case "true", "paid":
		return PaymentPaid, nil
	case "false", "unpaid":
		return PaymentUnpaid, nil
	}
	return "", fmt.Errorf("expected true/false or PAID/UNPAID")
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
