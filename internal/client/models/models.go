// Package models defines the console's entity records and the wire schema
// adapters that translate them to and from the backend JSON.
package models

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar-date format used for delivery dates.
const DateLayout = "2006-01-02"

type Customer struct {
	ID    int
	Name  string
	CNPJ  string
	Phone string
	Email string
}

func (c Customer) SearchFields() []string {
	return []string{idString(c.ID), c.Name, c.CNPJ, c.Phone, c.Email}
}

// Product weights are free-form text as entered on the shop floor.
type Product struct {
	ID           int
	Name         string
	InputWeight  string
	OutputWeight string
}

func (p Product) SearchFields() []string {
	return []string{idString(p.ID), p.Name, p.InputWeight, p.OutputWeight}
}

// Employee is a console user. Password is only ever set on records being
// created; the backend never returns it in clear text.
type Employee struct {
	ID       int
	Username string
	Password string
}

func (e Employee) SearchFields() []string {
	return []string{idString(e.ID), e.Username}
}

// Order is a service order placed by a customer.
type Order struct {
	ID           int
	Description  string
	DeliveryDate time.Time
	ApprovedAt   time.Time
	Paid         bool
	Production   ProductionStatus
	Value        decimal.Decimal
	Customer     *Customer
	Items        []OrderItem
}

type OrderItem struct {
	Product  Product
	Quantity int
}

// SearchFields includes the customer's fields so a free-text search finds
// orders by customer name.
func (o Order) SearchFields() []string {
	fields := []string{
		idString(o.ID),
		o.Description,
		formatDate(o.DeliveryDate),
		formatDateTime(o.ApprovedAt),
		strconv.FormatBool(o.Paid),
		string(o.Production),
		WireStatus(o.Production),
		o.Value.String(),
	}
	if o.Customer != nil {
		fields = append(fields, o.Customer.SearchFields()...)
	}
	return fields
}

func idString(id int) string {
	if id == 0 {
		return ""
	}
	return strconv.Itoa(id)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateTimeLayout)
}
