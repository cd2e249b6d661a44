// Package services contains the console's application services.
// This file defines the remote authentication operations the session state
// machine is built on: login verification, username lookup, account
// creation and a liveness probe.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/villaresmetals/console/internal/client/client"
	"github.com/villaresmetals/console/internal/client/models"
)

// Endpoints are the backend paths the console talks to.
type Endpoints struct {
	Customers     string
	Products      string
	Employees     string
	Orders        string
	OrdersSearch  string
	LoginCheck    string
	UsernameCheck string
}

// DefaultEndpoints returns the paths of the current backend.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Customers:     "/customers",
		Products:      "/products",
		Employees:     "/employees",
		Orders:        "/orders",
		OrdersSearch:  "/orders/search",
		LoginCheck:    "/employees",
		UsernameCheck: "/employees/username",
	}
}

// AuthService defines the remote authentication operations.
//
// Contract:
//   - VerifyLogin: GET a protected resource with the candidate token; nil
//     means the backend accepted it.
//   - UsernameTaken: ask the backend whether an account already uses the name.
//   - CreateAccount: POST a new employee record without credentials.
//   - Ping: check that the backend answers at all.
//
// All methods honor context cancellation and return client taxonomy errors.
type AuthService interface {
	VerifyLogin(ctx context.Context, token string) error
	UsernameTaken(ctx context.Context, username string) (bool, error)
	CreateAccount(ctx context.Context, username, password string) error
	Ping(ctx context.Context) error
}

type authService struct {
	client    client.Client
	endpoints Endpoints
}

// NewAuthService constructs an AuthService bound to the given API client.
func NewAuthService(c client.Client, endpoints Endpoints) AuthService {
	return &authService{client: c, endpoints: endpoints}
}

func (a *authService) VerifyLogin(ctx context.Context, token string) error {
	if token == "" {
		return fmt.Errorf("verify login: %w", client.ErrUnauthorized)
	}
	resp, err := a.client.Do(ctx, client.Request{
		Method:     http.MethodGet,
		Path:       a.endpoints.LoginCheck,
		Credential: token,
	}, nil)
	if err != nil {
		return err
	}
	return resp.Err()
}

// UsernameTaken treats a 200 carrying a record as taken; an empty 200 or a
// 404 means the name is free.
func (a *authService) UsernameTaken(ctx context.Context, username string) (bool, error) {
	resp, err := a.client.Do(ctx, client.Request{
		Method:    http.MethodGet,
		Path:      strings.TrimRight(a.endpoints.UsernameCheck, "/") + "/" + url.PathEscape(username),
		Anonymous: true,
	}, nil)
	if err != nil {
		return false, err
	}
	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if err := resp.Err(); err != nil {
		return false, err
	}
	body := bytes.TrimSpace(resp.Body)
	return len(body) > 0 && !bytes.Equal(body, []byte("null")), nil
}

func (a *authService) CreateAccount(ctx context.Context, username, password string) error {
	body, err := models.EmployeesV1.Encode(models.Employee{Username: username, Password: password})
	if err != nil {
		return err
	}
	resp, err := a.client.Do(ctx, client.Request{
		Method:    http.MethodPost,
		Path:      a.endpoints.Employees,
		Body:      json.RawMessage(body),
		Anonymous: true,
	}, nil)
	if err != nil {
		return err
	}
	return resp.Err()
}

// Ping succeeds when any HTTP response comes back, whatever its status.
func (a *authService) Ping(ctx context.Context) error {
	_, err := a.client.Do(ctx, client.Request{Method: http.MethodGet, Path: a.endpoints.LoginCheck, Anonymous: true}, nil)
	return err
}
