// Package cli provides the console's command-line front end.
//
// It wires configuration, the local session database, the backend client,
// the session state machine and the entity caches, then runs either one
// cobra command or an interactive shell.
//
// Commands:
//   - login, register, logout, whoami
//   - customers|products|employees|orders list [--find text]
//   - customers|products|employees|orders get|add|update|delete
//   - orders search key=value...
//   - shell
//
// Execute returns 0 on success, 1 when a command fails and 2 on a usage
// error.
package cli
