package config

import (
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Flag names.
const (
	FlagConfig     = "config"
	FlagBaseURL    = "base-url"
	FlagTimeout    = "timeout"
	FlagDataDir    = "data-dir"
	FlagLogLevel   = "log-level"
	FlagLogBackend = "log-backend"
	FlagLogFormat  = "log-format"
)

var flagKeys = map[string]string{
	FlagBaseURL:    KeyBaseURL,
	FlagTimeout:    KeyHTTPTimeout,
	FlagDataDir:    KeyDataDir,
	FlagLogLevel:   KeyLogLevel,
	FlagLogBackend: KeyLogBackend,
	FlagLogFormat:  KeyLogFormat,
}

// RegisterFlags adds the console's configuration flags to fs. Unset flags
// never override the file or the environment.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.StringP(FlagConfig, "c", "", "config file (json, yaml or toml)")
	fs.StringP(FlagBaseURL, "a", "", "backend base URL (default http://localhost:8080)")
	fs.Duration(FlagTimeout, 0, "HTTP timeout per request (default 15s)")
	fs.String(FlagDataDir, "", "directory holding the session database (default .console)")
	fs.String(FlagLogLevel, "", "log level: debug, info, warn, error")
	fs.String(FlagLogBackend, "", "log backend: slog or zap")
	fs.String(FlagLogFormat, "", "log format: text or json")
}

func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}
