// Package config loads runtime configuration for the console.
//
// Sources & precedence (highest first)
//
//  1. Command-line flags registered with RegisterFlags.
//  2. Environment variables prefixed CONSOLE_ (dots become underscores,
//     e.g. CONSOLE_ENDPOINTS_ORDERS).
//  3. The optional config file given by --config (JSON, YAML or TOML by
//     extension).
//  4. Built-in defaults.
//
// # File schema
//
//	base_url: http://localhost:8080
//	http_timeout: 15s
//	data_dir: .console
//	db_file: console.db
//	ping_interval: 10s
//	log:
//	  level: info
//	  backend: slog
//	  format: text
//	endpoints:
//	  customers: /customers
//	  orders_search: /orders/search
//
// The loaded Config is validated before it is returned.
package config
