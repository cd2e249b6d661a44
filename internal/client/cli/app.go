package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/villaresmetals/console/internal/client/client"
	"github.com/villaresmetals/console/internal/client/config"
	"github.com/villaresmetals/console/internal/client/credentials"
	"github.com/villaresmetals/console/internal/client/services"
	"github.com/villaresmetals/console/internal/filex"
	"github.com/villaresmetals/console/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	registry *prometheus.Registry

	authService services.AuthService
	session     *services.Session
	stores      *services.Stores

	reader *bufio.Reader
	out    io.Writer

	mu   sync.Mutex
	mode Mode
}

// NewApp opens the session database under the data directory, restores the
// persisted session and builds the caches. Logs go to logOut.
func NewApp(ctx context.Context, c *config.Config, in io.Reader, out, logOut io.Writer) (*App, error) {
	logger, err := logging.New(c.Log.Options(), logOut)
	if err != nil {
		return nil, err
	}

	dbPath, err := filex.DataFile(c.DataDir, c.DBFile)
	if err != nil {
		return nil, err
	}
	db, err := client.InitDatabase(ctx, dbPath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	creds := credentials.NewStore(db)

	registry := prometheus.NewRegistry()
	metrics, err := client.NewMetrics(registry)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	apiClient, err := client.NewHTTPClient(c.BaseURL, creds,
		client.WithTimeout(c.HTTPTimeout),
		client.WithLogger(logger),
		client.WithMetrics(metrics),
	)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	endpoints := c.Endpoints.Services()
	as := services.NewAuthService(apiClient, endpoints)
	session := services.NewSession(as, creds, logger)
	if err := session.Restore(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	session.Subscribe(func(st services.State) {
		if st.Status == services.Anonymous && errors.Is(session.LastError(), client.ErrUnauthorized) {
			fmt.Fprintln(out, "Session expired. Log in again with 'console login'.")
		}
	})

	return &App{
		config:      c,
		logger:      logger,
		db:          db,
		registry:    registry,
		authService: as,
		session:     session,
		stores:      services.NewStores(apiClient, endpoints, session, logger),
		reader:      bufio.NewReader(in),
		out:         out,
	}, nil
}

func (a *App) Close() error {
	return a.db.Close()
}

func (a *App) isLoggedIn() bool {
	return a.session.State().Authenticated()
}

func (a *App) setMode(ctx context.Context, mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()
	if changed {
		a.logger.Info(ctx, "backend "+string(mode))
	}
}

func (a *App) getStatus() string {
	a.mu.Lock()
	mode := a.mode
	a.mu.Unlock()

	s := a.session.Identity()
	if mode != "" {
		if s != "" {
			s += " "
		}
		s += string(mode)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// StartOnlineStatusWatcher pings the backend every interval until ctx is
// done and records whether it answered.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	a.probe(ctx)
	for {
		select {
		case <-ticker.C:
			a.probe(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) probe(ctx context.Context) {
	pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := a.authService.Ping(pctx); err != nil {
		a.setMode(ctx, ModeOffline)
		return
	}
	a.setMode(ctx, ModeOnline)
}
