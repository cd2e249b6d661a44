// Package server initializes and runs the development backend: it seeds the
// in-memory dataset, serves the REST API, and stops gracefully on signals.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"golang.org/x/crypto/bcrypt"

	"github.com/villaresmetals/console/internal/logging"
	"github.com/villaresmetals/console/internal/server/auth"
	"github.com/villaresmetals/console/internal/server/config"
	"github.com/villaresmetals/console/internal/server/httpapi"
	"github.com/villaresmetals/console/internal/server/store"
)

type App struct {
	config *config.Config
	logger logging.Logger
	router http.Handler
}

func NewApp(c *config.Config) (*App, error) {
	logger, err := logging.New(logging.Options{
		Backend: logging.BackendSlog,
		Level:   c.LogLevel,
		Format:  c.LogFormat,
	}, os.Stdout)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	st := store.New()
	accounts := auth.NewAccounts(st.Employees, bcrypt.DefaultCost)

	if c.SeedUsername != "" {
		if _, err := accounts.Register(c.SeedUsername, c.SeedPassword); err != nil {
			return nil, fmt.Errorf("seed account: %w", err)
		}
	}

	h := httpapi.NewHandler(st, accounts, logger)
	router := httpapi.NewRouter(h, httpapi.RouterOptions{AllowedOrigins: c.AllowedOrigins})

	return &App{config: c, logger: logger, router: router}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpapi.NewServer(app.config.Addr, app.router, app.logger, app.config.ShutdownTimeout)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled or a termination signal arrives.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "address", app.config.Addr)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()
}
