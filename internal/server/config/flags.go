package config

import (
	"flag"
	"os"
	"strings"

	"github.com/villaresmetals/console/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string     bind address (e.g., ":8080")
//	-o string     comma-separated CORS origins
//	-u string     seed account username
//	-p string     seed account password
//	-t duration   shutdown timeout (e.g., "5s")
//	-l string     log level
//
// Only the flags above are parsed; os.Args is narrowed with flagx.Pick
// first so the -c config flag does not collide.
func parseFlags(config *Config) {
	args := flagx.Pick(os.Args[1:], "a", "o", "u", "p", "t", "l")

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.Addr, "a", config.Addr, "address and port to run server")
	origins := fs.String("o", strings.Join(config.AllowedOrigins, ","), "allowed CORS origins, comma-separated")
	fs.StringVar(&config.SeedUsername, "u", config.SeedUsername, "seed account username")
	fs.StringVar(&config.SeedPassword, "p", config.SeedPassword, "seed account password")
	fs.DurationVar(&config.ShutdownTimeout, "t", config.ShutdownTimeout, "graceful shutdown timeout")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AllowedOrigins = splitList(*origins)
}

func splitList(s string) []string {
	out := []string{}
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
