package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/villaresmetals/console/internal/client/services"
	"github.com/villaresmetals/console/internal/logging"
)

const envPrefix = "CONSOLE"

// Keys.
const (
	KeyBaseURL     = "base_url"
	KeyHTTPTimeout = "http_timeout"
	KeyDataDir     = "data_dir"
	KeyDBFile      = "db_file"
	KeyPingPeriod  = "ping_interval"
	KeyLogLevel    = "log.level"
	KeyLogBackend  = "log.backend"
	KeyLogFormat   = "log.format"
)

// Config holds runtime settings for the console.
type Config struct {
	BaseURL     string        `validate:"required,url"`
	HTTPTimeout time.Duration `validate:"gt=0"`
	DataDir     string        `validate:"required"`
	DBFile      string        `validate:"required"`
	// PingInterval paces the shell's backend reachability probe.
	PingInterval time.Duration `validate:"gt=0"`
	Log          LogConfig
	Endpoints    Endpoints
}

type LogConfig struct {
	Level   string `validate:"oneof=debug info warn error"`
	Backend string `validate:"oneof=slog zap"`
	Format  string `validate:"oneof=text json"`
}

// Options converts the section into logging.New options.
func (l LogConfig) Options() logging.Options {
	return logging.Options{Backend: l.Backend, Level: l.Level, Format: l.Format}
}

// Endpoints are the backend paths, relative to BaseURL.
type Endpoints struct {
	Customers     string `validate:"required,startswith=/"`
	Products      string `validate:"required,startswith=/"`
	Employees     string `validate:"required,startswith=/"`
	Orders        string `validate:"required,startswith=/"`
	OrdersSearch  string `validate:"required,startswith=/"`
	LoginCheck    string `validate:"required,startswith=/"`
	UsernameCheck string `validate:"required,startswith=/"`
}

func (e Endpoints) Services() services.Endpoints {
	return services.Endpoints{
		Customers:     e.Customers,
		Products:      e.Products,
		Employees:     e.Employees,
		Orders:        e.Orders,
		OrdersSearch:  e.OrdersSearch,
		LoginCheck:    e.LoginCheck,
		UsernameCheck: e.UsernameCheck,
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyBaseURL, "http://localhost:8080")
	v.SetDefault(KeyHTTPTimeout, 15*time.Second)
	v.SetDefault(KeyDataDir, ".console")
	v.SetDefault(KeyDBFile, "console.db")
	v.SetDefault(KeyPingPeriod, 10*time.Second)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogBackend, logging.BackendSlog)
	v.SetDefault(KeyLogFormat, "text")

	d := services.DefaultEndpoints()
	v.SetDefault("endpoints.customers", d.Customers)
	v.SetDefault("endpoints.products", d.Products)
	v.SetDefault("endpoints.employees", d.Employees)
	v.SetDefault("endpoints.orders", d.Orders)
	v.SetDefault("endpoints.orders_search", d.OrdersSearch)
	v.SetDefault("endpoints.login_check", d.LoginCheck)
	v.SetDefault("endpoints.username_check", d.UsernameCheck)
}

// Load builds a Config from defaults, the optional file named by the
// --config flag, CONSOLE_* environment variables and the flags in fs.
// fs may be nil.
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if fs != nil {
		if err := bindFlags(v, fs); err != nil {
			return nil, err
		}
		if f := fs.Lookup(FlagConfig); f != nil && f.Value.String() != "" {
			v.SetConfigFile(f.Value.String())
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		BaseURL:      strings.TrimSpace(v.GetString(KeyBaseURL)),
		HTTPTimeout:  v.GetDuration(KeyHTTPTimeout),
		DataDir:      v.GetString(KeyDataDir),
		DBFile:       v.GetString(KeyDBFile),
		PingInterval: v.GetDuration(KeyPingPeriod),
		Log: LogConfig{
			Level:   strings.ToLower(v.GetString(KeyLogLevel)),
			Backend: strings.ToLower(v.GetString(KeyLogBackend)),
			Format:  strings.ToLower(v.GetString(KeyLogFormat)),
		},
		Endpoints: Endpoints{
			Customers:     v.GetString("endpoints.customers"),
			Products:      v.GetString("endpoints.products"),
			Employees:     v.GetString("endpoints.employees"),
			Orders:        v.GetString("endpoints.orders"),
			OrdersSearch:  v.GetString("endpoints.orders_search"),
			LoginCheck:    v.GetString("endpoints.login_check"),
			UsernameCheck: v.GetString("endpoints.username_check"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = validator.New()

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Errorf("invalid config: %s fails %q (got %v)", fe.Namespace(), fe.Tag(), fe.Value())
	}
	return fmt.Errorf("invalid config: %w", err)
}
