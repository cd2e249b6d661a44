package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/villaresmetals/console/internal/logging"
	"github.com/villaresmetals/console/internal/server/auth"
)

// RouterOptions tunes the middleware stack.
type RouterOptions struct {
	AllowedOrigins []string
	Realm          string
}

// NewRouter wires the routes. Account creation and the username lookup are
// open; everything else requires HTTP Basic.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	if opts.Realm == "" {
		opts.Realm = "console"
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(requestLogger(h.logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
	}))

	r.Post("/employees", h.RegisterEmployee)
	r.Get("/employees/username/{username}", h.EmployeeByUsername)

	r.Group(func(r chi.Router) {
		r.Use(auth.Basic(h.accounts, opts.Realm, h.logger))

		mountCollection(r, "/customers", h.customers)
		mountCollection(r, "/products", h.products)

		r.Get("/orders/search", h.SearchOrders)
		mountCollection(r, "/orders", h.orders)

		r.Get("/employees", h.ListEmployees)
		r.Get("/employees/{id}", h.GetEmployee)
		r.Put("/employees/{id}", h.UpdateEmployee)
		r.Delete("/employees/{id}", h.DeleteEmployee)
	})

	return r
}

type collection interface {
	list(w http.ResponseWriter, r *http.Request)
	get(w http.ResponseWriter, r *http.Request)
	create(w http.ResponseWriter, r *http.Request)
	update(w http.ResponseWriter, r *http.Request)
	remove(w http.ResponseWriter, r *http.Request)
}

func mountCollection(r chi.Router, path string, c collection) {
	r.Get(path, c.list)
	r.Post(path, c.create)
	r.Get(path+"/{id}", c.get)
	r.Put(path+"/{id}", c.update)
	r.Delete(path+"/{id}", c.remove)
}

func requestLogger(l logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			l.Debug(r.Context(), "request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
