package store

import "github.com/villaresmetals/console/internal/client/models"

// Store is the backend's whole dataset.
type Store struct {
	Customers *Table[models.Customer]
	Products  *Table[models.Product]
	Employees *Table[models.Employee]
	Orders    *Table[models.Order]
}

func New() *Store {
	return &Store{
		Customers: NewTable(func(c *models.Customer, id int) { c.ID = id }),
		Products:  NewTable(func(p *models.Product, id int) { p.ID = id }),
		Employees: NewTable(func(e *models.Employee, id int) { e.ID = id }),
		Orders:    NewTable(func(o *models.Order, id int) { o.ID = id }),
	}
}
