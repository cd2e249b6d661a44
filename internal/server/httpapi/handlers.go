package httpapi

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/villaresmetals/console/internal/client/models"
	"github.com/villaresmetals/console/internal/client/search"
	"github.com/villaresmetals/console/internal/common"
	"github.com/villaresmetals/console/internal/logging"
	"github.com/villaresmetals/console/internal/server/auth"
	"github.com/villaresmetals/console/internal/server/store"
)

const maxBodyBytes = 1 << 20

// Handler holds the dataset and the per-entity collection handlers.
type Handler struct {
	store    *store.Store
	accounts *auth.Accounts
	logger   logging.Logger
	now      func() time.Time

	customers *resource[models.Customer]
	products  *resource[models.Product]
	orders    *resource[models.Order]
}

func NewHandler(s *store.Store, accounts *auth.Accounts, logger logging.Logger) *Handler {
	h := &Handler{store: s, accounts: accounts, logger: logger, now: time.Now}

	h.customers = &resource[models.Customer]{
		name: "customer", table: s.Customers, schema: models.CustomersV1, logger: logger,
		prepare: func(c models.Customer, _ bool) (models.Customer, error) {
			if strings.TrimSpace(c.Name) == "" {
				return c, fmt.Errorf("nomeCliente required: %w", common.ErrInvalidRecord)
			}
			return c, nil
		},
	}
	h.products = &resource[models.Product]{
		name: "product", table: s.Products, schema: models.ProductsV1, logger: logger,
		prepare: func(p models.Product, _ bool) (models.Product, error) {
			if strings.TrimSpace(p.Name) == "" {
				return p, fmt.Errorf("nomeProduto required: %w", common.ErrInvalidRecord)
			}
			return p, nil
		},
	}
	h.orders = &resource[models.Order]{
		name: "order", table: s.Orders, schema: models.OrdersV1, logger: logger,
		prepare: h.prepareOrder,
		present: h.hydrateOrder,
	}
	return h
}

// prepareOrder validates references and stamps the approval time on new
// orders that lack one.
func (h *Handler) prepareOrder(o models.Order, creating bool) (models.Order, error) {
	if o.Customer != nil && o.Customer.ID != 0 {
		c, err := h.store.Customers.Get(o.Customer.ID)
		if err != nil {
			return o, fmt.Errorf("cliente %d: %w", o.Customer.ID, common.ErrInvalidRecord)
		}
		o.Customer = &c
	}
	for i, it := range o.Items {
		if it.Quantity <= 0 {
			return o, fmt.Errorf("itensDoPedido[%d]: quantidade must be positive: %w", i, common.ErrInvalidRecord)
		}
		p, err := h.store.Products.Get(it.Product.ID)
		if err != nil {
			return o, fmt.Errorf("itensDoPedido[%d]: produto %d: %w", i, it.Product.ID, common.ErrInvalidRecord)
		}
		o.Items[i].Product = p
	}
	if o.Value.IsNegative() {
		return o, fmt.Errorf("valorServico must not be negative: %w", common.ErrInvalidRecord)
	}
	if creating && o.ApprovedAt.IsZero() {
		o.ApprovedAt = h.now().Truncate(time.Second)
	}
	if o.Production == "" {
		o.Production = models.StatusQueued
	}
	return o, nil
}

// hydrateOrder refreshes referenced records so renamed customers and
// products show their current data.
func (h *Handler) hydrateOrder(o models.Order) models.Order {
	if o.Customer != nil {
		if c, err := h.store.Customers.Get(o.Customer.ID); err == nil {
			o.Customer = &c
		}
	}
	if len(o.Items) > 0 {
		items := make([]models.OrderItem, len(o.Items))
		for i, it := range o.Items {
			items[i] = it
			if p, err := h.store.Products.Get(it.Product.ID); err == nil {
				items[i].Product = p
			}
		}
		o.Items = items
	}
	return o
}

// SearchOrders filters orders by the search query parameters. An unknown
// production status is ignored rather than rejected.
func (h *Handler) SearchOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := make(map[string]string)
	for _, key := range []string{
		search.ParamID, search.ParamCustomerName, search.ParamCustomerCNPJ,
		search.ParamDeliveryFrom, search.ParamDeliveryTo, search.ParamValueMin,
		search.ParamValueMax, search.ParamPayment, search.ParamProduction,
		search.ParamDescription,
	} {
		if v := q.Get(key); v != "" {
			params[key] = v
		}
	}
	if v, ok := params[search.ParamProduction]; ok {
		if _, err := models.ParseProductionStatus(v); err != nil {
			delete(params, search.ParamProduction)
		}
	}

	f, err := search.ParseOrderFilters(params)
	if err != nil {
		writeError(w, r, h.logger, fmt.Errorf("%w: %w", common.ErrInvalidRecord, err))
		return
	}

	orders := h.store.Orders.List()
	for i := range orders {
		orders[i] = h.hydrateOrder(orders[i])
	}
	h.orders.writeList(w, r, f.Filter(orders))
}

func (h *Handler) RegisterEmployee(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r, h.logger)
	if !ok {
		return
	}
	e, err := models.EmployeesV1.Decode(body)
	if err != nil {
		writeError(w, r, h.logger, fmt.Errorf("%w: %w", common.ErrInvalidRecord, err))
		return
	}
	created, err := h.accounts.Register(e.Username, e.Password)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.logger.Info(r.Context(), "account created", "user", created.Username, "id", created.ID)
	writeRecord(w, r, h.logger, models.EmployeesV1, created)
}

// EmployeeByUsername answers 200 with the record when the name is taken and
// 404 when it is free.
func (h *Handler) EmployeeByUsername(w http.ResponseWriter, r *http.Request) {
	e, ok := h.accounts.Lookup(chi.URLParam(r, "username"))
	if !ok {
		writeError(w, r, h.logger, common.ErrNotFound)
		return
	}
	writeRecord(w, r, h.logger, models.EmployeesV1, e)
}

func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	writeList(w, r, h.logger, models.EmployeesV1, h.accounts.List())
}

func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, h.logger)
	if !ok {
		return
	}
	e, err := h.accounts.Get(id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeRecord(w, r, h.logger, models.EmployeesV1, e)
}

func (h *Handler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, h.logger)
	if !ok {
		return
	}
	body, ok := readBody(w, r, h.logger)
	if !ok {
		return
	}
	e, err := models.EmployeesV1.Decode(body)
	if err != nil {
		writeError(w, r, h.logger, fmt.Errorf("%w: %w", common.ErrInvalidRecord, err))
		return
	}
	updated, err := h.accounts.Update(id, e)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeRecord(w, r, h.logger, models.EmployeesV1, updated)
}

func (h *Handler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, h.logger)
	if !ok {
		return
	}
	if err := h.accounts.Delete(id); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// resource serves a plain collection backed by a store table.
type resource[T any] struct {
	name   string
	table  *store.Table[T]
	schema models.Schema[T]
	logger logging.Logger
	// prepare validates and completes a record before it is stored.
	prepare func(v T, creating bool) (T, error)
	// present adjusts a stored record before it is written out.
	present func(v T) T
}

func (res *resource[T]) list(w http.ResponseWriter, r *http.Request) {
	items := res.table.List()
	if res.present != nil {
		for i := range items {
			items[i] = res.present(items[i])
		}
	}
	res.writeList(w, r, items)
}

func (res *resource[T]) writeList(w http.ResponseWriter, r *http.Request, items []T) {
	writeList(w, r, res.logger, res.schema, items)
}

func (res *resource[T]) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, res.logger)
	if !ok {
		return
	}
	v, err := res.table.Get(id)
	if err != nil {
		writeError(w, r, res.logger, err)
		return
	}
	if res.present != nil {
		v = res.present(v)
	}
	writeRecord(w, r, res.logger, res.schema, v)
}

func (res *resource[T]) create(w http.ResponseWriter, r *http.Request) {
	v, ok := res.decode(w, r, true)
	if !ok {
		return
	}
	created := res.table.Create(v)
	res.logger.Info(r.Context(), res.name+" created", "id", res.schema.ID(created))
	writeRecord(w, r, res.logger, res.schema, created)
}

func (res *resource[T]) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, res.logger)
	if !ok {
		return
	}
	v, ok := res.decode(w, r, false)
	if !ok {
		return
	}
	updated, err := res.table.Update(id, v)
	if err != nil {
		writeError(w, r, res.logger, err)
		return
	}
	writeRecord(w, r, res.logger, res.schema, updated)
}

func (res *resource[T]) remove(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, res.logger)
	if !ok {
		return
	}
	if err := res.table.Delete(id); err != nil {
		writeError(w, r, res.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (res *resource[T]) decode(w http.ResponseWriter, r *http.Request, creating bool) (T, bool) {
	var zero T
	body, ok := readBody(w, r, res.logger)
	if !ok {
		return zero, false
	}
	v, err := res.schema.Decode(body)
	if err != nil {
		writeError(w, r, res.logger, fmt.Errorf("%w: %w", common.ErrInvalidRecord, err))
		return zero, false
	}
	if res.prepare != nil {
		if v, err = res.prepare(v, creating); err != nil {
			writeError(w, r, res.logger, err)
			return zero, false
		}
	}
	return v, true
}

func readBody(w http.ResponseWriter, r *http.Request, l logging.Logger) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, r, l, fmt.Errorf("read body: %w: %w", common.ErrInvalidRecord, err))
		return nil, false
	}
	if len(bytes.TrimSpace(body)) == 0 {
		writeError(w, r, l, fmt.Errorf("empty body: %w", common.ErrInvalidRecord))
		return nil, false
	}
	return body, true
}

func pathID(w http.ResponseWriter, r *http.Request, l logging.Logger) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		writeError(w, r, l, fmt.Errorf("invalid id %q: %w", chi.URLParam(r, "id"), common.ErrInvalidRecord))
		return 0, false
	}
	return id, true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, common.ErrInvalidRecord):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
