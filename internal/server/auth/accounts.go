// Package auth implements the backend's employee accounts and the HTTP
// Basic authentication that guards every protected route.
package auth

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/villaresmetals/console/internal/client/models"
	"github.com/villaresmetals/console/internal/common"
	"github.com/villaresmetals/console/internal/server/store"
)

// Accounts stores employees with bcrypt-hashed passwords. Records handed
// out never carry the hash.
type Accounts struct {
	table *store.Table[models.Employee]
	cost  int
}

// NewAccounts uses bcrypt.DefaultCost when cost is not positive.
func NewAccounts(table *store.Table[models.Employee], cost int) *Accounts {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &Accounts{table: table, cost: cost}
}

// Register creates an account. The username must be unique.
func (a *Accounts) Register(username, password string) (models.Employee, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return models.Employee{}, fmt.Errorf("username and password required: %w", common.ErrInvalidRecord)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.cost)
	if err != nil {
		return models.Employee{}, fmt.Errorf("hash password: %w", err)
	}

	e, err := a.table.Insert(models.Employee{Username: username, Password: string(hash)}, func(existing []models.Employee) error {
		for _, x := range existing {
			if x.Username == username {
				return fmt.Errorf("username %q: %w", username, common.ErrAlreadyExists)
			}
		}
		return nil
	})
	if err != nil {
		return models.Employee{}, err
	}
	return redact(e), nil
}

// Update replaces account id. An empty password keeps the current one.
func (a *Accounts) Update(id int, e models.Employee) (models.Employee, error) {
	current, err := a.table.Get(id)
	if err != nil {
		return models.Employee{}, err
	}
	e.Username = strings.TrimSpace(e.Username)
	if e.Username == "" {
		return models.Employee{}, fmt.Errorf("username required: %w", common.ErrInvalidRecord)
	}
	if other, ok := a.table.Find(func(x models.Employee) bool { return x.Username == e.Username && x.ID != id }); ok {
		return models.Employee{}, fmt.Errorf("username %q taken by %d: %w", e.Username, other.ID, common.ErrAlreadyExists)
	}

	if e.Password == "" {
		e.Password = current.Password
	} else {
		hash, err := bcrypt.GenerateFromPassword([]byte(e.Password), a.cost)
		if err != nil {
			return models.Employee{}, fmt.Errorf("hash password: %w", err)
		}
		e.Password = string(hash)
	}

	updated, err := a.table.Update(id, e)
	if err != nil {
		return models.Employee{}, err
	}
	return redact(updated), nil
}

// Verify reports whether password matches the account's hash.
func (a *Accounts) Verify(username, password string) (models.Employee, bool) {
	e, ok := a.table.Find(func(x models.Employee) bool { return x.Username == username })
	if !ok {
		return models.Employee{}, false
	}
	if err := bcrypt.CompareHashAndPassword([]byte(e.Password), []byte(password)); err != nil {
		return models.Employee{}, false
	}
	return redact(e), true
}

func (a *Accounts) Lookup(username string) (models.Employee, bool) {
	e, ok := a.table.Find(func(x models.Employee) bool { return x.Username == username })
	return redact(e), ok
}

func (a *Accounts) Get(id int) (models.Employee, error) {
	e, err := a.table.Get(id)
	return redact(e), err
}

func (a *Accounts) List() []models.Employee {
	list := a.table.List()
	for i := range list {
		list[i] = redact(list[i])
	}
	return list
}

func (a *Accounts) Delete(id int) error {
	return a.table.Delete(id)
}

func redact(e models.Employee) models.Employee {
	e.Password = ""
	return e
}
