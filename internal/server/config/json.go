package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/villaresmetals/console/internal/flagx"
)

// Duration accepts both a Go duration string ("5s") and integer
// nanoseconds in JSON.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch x := v.(type) {
	case float64:
		d.Duration = time.Duration(x)
	case string:
		parsed, err := time.ParseDuration(x)
		if err != nil {
			return err
		}
		d.Duration = parsed
	default:
		return fmt.Errorf("invalid duration %s", b)
	}
	return nil
}

// JsonConfig is the on-disk shape of Config. Absent fields leave the
// corresponding Config value untouched.
type JsonConfig struct {
	Addr            *string   `json:"addr"`
	AllowedOrigins  []string  `json:"allowed_origins"`
	SeedUsername    *string   `json:"seed_username"`
	SeedPassword    *string   `json:"seed_password"`
	ShutdownTimeout *Duration `json:"shutdown_timeout"`
	LogLevel        *string   `json:"log_level"`
	LogFormat       *string   `json:"log_format"`
}

// parseJson loads the file named by the -c or -config flag, if any, over
// config. An unreadable or malformed file panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigPath(os.Args[1:])

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setIf(&config.Addr, c.Addr)
	setIf(&config.SeedUsername, c.SeedUsername)
	setIf(&config.SeedPassword, c.SeedPassword)
	setIf(&config.LogLevel, c.LogLevel)
	setIf(&config.LogFormat, c.LogFormat)
	if c.AllowedOrigins != nil {
		config.AllowedOrigins = c.AllowedOrigins
	}
	if c.ShutdownTimeout != nil {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
