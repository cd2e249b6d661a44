package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context, username string, autoLogin bool) error
	Login(ctx context.Context, username string) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	List(ctx context.Context, entity, query string) error
	Search(ctx context.Context, args []string) error
	Stats() error
}

// runREPL reads commands from reader until EOF, "exit" or "quit" and
// dispatches them to a. Prompts asked by a command read from the same
// reader.
//
//	Not logged in:
//	  - help, register [user], login [user], whoami, stats, exit | quit
//
//	Logged in:
//	  - list <entity> [text]   list customers, products, employees or orders
//	  - search key=value...    structured order search
//	  - whoami, stats, logout, exit | quit
//
// Command errors are printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("console %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: (l)ist <entity> [text], search key=value..., whoami, stats, logout, exit")
			} else {
				printlnFn("Available commands: register [user], login [user], whoami, stats, exit")
			}

		case "register":
			report(a.Register(ctx, firstArg(args), true))

		case "login":
			report(a.Login(ctx, firstArg(args)))

		case "logout":
			report(a.Logout(ctx))

		case "whoami":
			report(a.WhoAmI(ctx))

		case "stats":
			report(a.Stats())

		case "l", "list":
			if len(args) == 0 {
				printlnFn("Usage: list <customers|products|employees|orders> [text]")
				continue
			}
			report(a.List(ctx, args[0], strings.Join(args[1:], " ")))

		case "search":
			report(a.Search(ctx, args))

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

func report(err error) {
	if err != nil {
		printlnFn("Error:", err)
	}
}

// Shell runs the interactive loop with a background reachability probe.
func (a *App) Shell(ctx context.Context) error {
	printlnFn("Welcome to the console (type 'help' for commands)")

	wctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go a.StartOnlineStatusWatcher(wctx, a.config.PingInterval)

	runREPL(ctx, a, a.getStatus, a.reader)
	return nil
}

// List loads the named collection and prints the records matching query.
func (a *App) List(ctx context.Context, entity, query string) error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}
	e, ok := lookupEntity(entity)
	if !ok {
		return fmt.Errorf("unknown entity %q", entity)
	}
	return e.list(ctx, a, query)
}

// Search runs the order search from key=value arguments.
func (a *App) Search(ctx context.Context, args []string) error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}
	params, err := ParsePairs(args)
	if err != nil {
		return usageError{err}
	}
	return a.searchOrders(ctx, params)
}
