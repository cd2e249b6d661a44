package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Wire schema v1: the field names the REST backend has used since the first
// release.
var (
	CustomersV1 Schema[Customer] = jsonSchema[Customer, customerV1]{
		name: "customer", toWire: customerToV1, fromWire: customerFromV1,
		id: func(c Customer) int { return c.ID },
	}
	ProductsV1 Schema[Product] = jsonSchema[Product, productV1]{
		name: "product", toWire: productToV1, fromWire: productFromV1,
		id: func(p Product) int { return p.ID },
	}
	EmployeesV1 Schema[Employee] = jsonSchema[Employee, employeeV1]{
		name: "employee", toWire: employeeToV1, fromWire: employeeFromV1,
		id: func(e Employee) int { return e.ID },
	}
	OrdersV1 Schema[Order] = jsonSchema[Order, orderV1]{
		name: "order", toWire: orderToV1, fromWire: orderFromV1,
		id: func(o Order) int { return o.ID },
	}
)

// DateTimeLayout is the local date-time format the backend emits for
// approval timestamps.
const DateTimeLayout = "2006-01-02T15:04:05"

var dateTimeLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	time.RFC3339Nano,
}

type customerV1 struct {
	ID    int    `json:"idCliente,omitempty"`
	Name  string `json:"nomeCliente"`
	CNPJ  string `json:"cnpjCliente"`
	Phone string `json:"telefoneCliente"`
	Email string `json:"emailCliente"`
}

func customerToV1(c Customer) customerV1 {
	return customerV1{ID: c.ID, Name: c.Name, CNPJ: c.CNPJ, Phone: c.Phone, Email: c.Email}
}

func customerFromV1(w customerV1) (Customer, error) {
	return Customer{ID: w.ID, Name: w.Name, CNPJ: w.CNPJ, Phone: w.Phone, Email: w.Email}, nil
}

type productV1 struct {
	ID           int    `json:"idProduto,omitempty"`
	Name         string `json:"nomeProduto"`
	InputWeight  string `json:"pesoEntrada"`
	OutputWeight string `json:"pesoSaida"`
}

func productToV1(p Product) productV1 {
	return productV1{ID: p.ID, Name: p.Name, InputWeight: p.InputWeight, OutputWeight: p.OutputWeight}
}

func productFromV1(w productV1) (Product, error) {
	return Product{ID: w.ID, Name: w.Name, InputWeight: w.InputWeight, OutputWeight: w.OutputWeight}, nil
}

type employeeV1 struct {
	ID       int    `json:"idFuncionario,omitempty"`
	Username string `json:"userFuncionario"`
	Password string `json:"senhaFuncionario,omitempty"`
}

func employeeToV1(e Employee) employeeV1 {
	return employeeV1{ID: e.ID, Username: e.Username, Password: e.Password}
}

func employeeFromV1(w employeeV1) (Employee, error) {
	return Employee{ID: w.ID, Username: w.Username, Password: w.Password}, nil
}

type orderItemV1 struct {
	Product  productV1 `json:"produto"`
	Quantity int       `json:"quantidade"`
}

type orderV1 struct {
	ID           int           `json:"idOS,omitempty"`
	Description  string        `json:"descricao"`
	DeliveryDate string        `json:"dataEntrega,omitempty"`
	ApprovedAt   string        `json:"dataAprovacao,omitempty"`
	Paid         bool          `json:"statusPagamento"`
	Production   string        `json:"statusProducao,omitempty"`
	Value        json.Number   `json:"valorServico"`
	Customer     *customerV1   `json:"cliente,omitempty"`
	Items        []orderItemV1 `json:"itensDoPedido"`
}

func orderToV1(o Order) orderV1 {
	w := orderV1{
		ID:           o.ID,
		Description:  o.Description,
		DeliveryDate: formatDate(o.DeliveryDate),
		Paid:         o.Paid,
		Production:   WireStatus(o.Production),
		Value:        json.Number(o.Value.String()),
		Items:        make([]orderItemV1, 0, len(o.Items)),
	}
	if !o.ApprovedAt.IsZero() {
		w.ApprovedAt = o.ApprovedAt.Format(DateTimeLayout)
	}
	if o.Customer != nil {
		c := customerToV1(*o.Customer)
		w.Customer = &c
	}
	for _, it := range o.Items {
		w.Items = append(w.Items, orderItemV1{Product: productToV1(it.Product), Quantity: it.Quantity})
	}
	return w
}

func orderFromV1(w orderV1) (Order, error) {
	o := Order{
		ID:          w.ID,
		Description: w.Description,
		Paid:        w.Paid,
	}

	var err error
	if w.DeliveryDate != "" {
		if o.DeliveryDate, err = time.Parse(DateLayout, w.DeliveryDate); err != nil {
			return o, fmt.Errorf("dataEntrega: %w", err)
		}
	}
	if w.ApprovedAt != "" {
		if o.ApprovedAt, err = parseDateTime(w.ApprovedAt); err != nil {
			return o, fmt.Errorf("dataAprovacao: %w", err)
		}
	}
	if w.Production != "" {
		if o.Production, err = ParseProductionStatus(w.Production); err != nil {
			return o, fmt.Errorf("statusProducao: %w", err)
		}
	}
	if w.Value != "" {
		if o.Value, err = decimal.NewFromString(w.Value.String()); err != nil {
			return o, fmt.Errorf("valorServico: %w", err)
		}
	}
	if w.Customer != nil {
		c, _ := customerFromV1(*w.Customer)
		o.Customer = &c
	}
	for _, it := range w.Items {
		p, _ := productFromV1(it.Product)
		o.Items = append(o.Items, OrderItem{Product: p, Quantity: it.Quantity})
	}
	return o, nil
}

func parseDateTime(s string) (time.Time, error) {
	var firstErr error
	for _, layout := range dateTimeLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}
