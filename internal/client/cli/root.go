package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/villaresmetals/console/internal/client/config"
)

// Exit codes returned by Execute.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

var errNotLoggedIn = errors.New("not logged in; run 'console login' first")

// usageError marks a malformed invocation.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func usageArgs(fn cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := fn(cmd, args); err != nil {
			return usageError{err}
		}
		return nil
	}
}

// state carries the App from the root hook to the subcommands.
type state struct {
	app    *App
	in     io.Reader
	out    io.Writer
	errOut io.Writer
}

// Execute runs the console with args and returns the process exit code.
func Execute(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) int {
	root, st := newRootCmd(in, out, errOut)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if st.app != nil {
		_ = st.app.Close()
	}
	if err == nil {
		return ExitOK
	}

	fmt.Fprintln(errOut, "Error:", err)
	var ue usageError
	if errors.As(err, &ue) || strings.HasPrefix(err.Error(), "unknown command") {
		fmt.Fprintln(errOut, "Run 'console --help' for usage.")
		return ExitUsage
	}
	return ExitFailure
}

func newRootCmd(in io.Reader, out, errOut io.Writer) (*cobra.Command, *state) {
	st := &state{in: in, out: out, errOut: errOut}

	root := &cobra.Command{
		Use:   "console",
		Short: "Console for the workshop back office",
		Long: `Console manages customers, products, employees and service orders
against the back office REST API. The login is remembered between runs.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: st.init,
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error { return usageError{err} })
	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(st.loginCmd(), st.registerCmd(), st.logoutCmd(), st.whoamiCmd(), st.shellCmd())
	for _, e := range entities {
		root.AddCommand(st.entityCmd(e))
	}
	return root, st
}

func (st *state) init(cmd *cobra.Command, _ []string) error {
	if cmd.Name() == "help" {
		return nil
	}

	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	app, err := NewApp(cmd.Context(), cfg, st.in, st.out, st.errOut)
	if err != nil {
		return err
	}
	st.app = app
	return nil
}

func (st *state) requireLogin(cmd *cobra.Command, _ []string) error {
	if !st.app.isLoggedIn() {
		return errNotLoggedIn
	}
	return nil
}

func (st *state) loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login [username]",
		Short: "Log in and remember the credential",
		Args:  usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return st.app.Login(cmd.Context(), firstArg(args))
		},
	}
}

func (st *state) registerCmd() *cobra.Command {
	var autoLogin bool
	cmd := &cobra.Command{
		Use:   "register [username]",
		Short: "Create an employee account",
		Args:  usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return st.app.Register(cmd.Context(), firstArg(args), autoLogin)
		},
	}
	cmd.Flags().BoolVar(&autoLogin, "login", false, "log in with the new account")
	return cmd
}

func (st *state) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored credential",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return st.app.Logout(cmd.Context())
		},
	}
}

func (st *state) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Print the logged-in username",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return st.app.WhoAmI(cmd.Context())
		},
	}
}

func (st *state) shellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Start an interactive session",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return st.app.Shell(cmd.Context())
		},
	}
}

func (st *state) entityCmd(e entityOps) *cobra.Command {
	name := e.Name()
	singular := strings.TrimSuffix(name, "s")
	fields := strings.Join(e.Fields(), ", ")

	group := &cobra.Command{
		Use:     name,
		Aliases: []string{singular},
		Short:   "Manage " + name,
	}

	var find string
	list := &cobra.Command{
		Use:     "list",
		Short:   "List " + name,
		Args:    usageArgs(cobra.NoArgs),
		PreRunE: st.requireLogin,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.list(cmd.Context(), st.app, find)
		},
	}
	list.Flags().StringVar(&find, "find", "", "show only records containing this text")

	get := &cobra.Command{
		Use:     "get <id>",
		Short:   "Show one " + singular,
		Args:    usageArgs(cobra.ExactArgs(1)),
		PreRunE: st.requireLogin,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return e.get(cmd.Context(), st.app, id)
		},
	}

	add := &cobra.Command{
		Use:     "add key=value...",
		Short:   "Create a " + singular,
		Long:    "Create a " + singular + ". Fields: " + fields + ".",
		Args:    usageArgs(cobra.MinimumNArgs(1)),
		PreRunE: st.requireLogin,
		RunE: func(cmd *cobra.Command, args []string) error {
			pairs, err := ParsePairs(args)
			if err != nil {
				return usageError{err}
			}
			return e.add(cmd.Context(), st.app, pairs)
		},
	}

	update := &cobra.Command{
		Use:     "update <id> key=value...",
		Short:   "Change fields of a " + singular,
		Long:    "Change fields of a " + singular + ". Fields: " + fields + ".",
		Args:    usageArgs(cobra.MinimumNArgs(2)),
		PreRunE: st.requireLogin,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			pairs, err := ParsePairs(args[1:])
			if err != nil {
				return usageError{err}
			}
			return e.update(cmd.Context(), st.app, id, pairs)
		},
	}

	del := &cobra.Command{
		Use:     "delete <id>",
		Short:   "Delete a " + singular,
		Args:    usageArgs(cobra.ExactArgs(1)),
		PreRunE: st.requireLogin,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return e.remove(cmd.Context(), st.app, id)
		},
	}

	group.AddCommand(list, get, add, update, del)
	if name == orderEntity.Name() {
		group.AddCommand(st.searchCmd())
	}
	return group
}

func (st *state) searchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search [key=value...]",
		Short: "Search orders on the backend",
		Long: `Search orders on the backend. Keys: idOS, nomeCliente, cnpjCliente,
dataEntregaInicio, dataEntregaFim (YYYY-MM-DD), valorMinimo, valorMaximo,
statusPagamento (PAID|UNPAID), statusProducao (FILA|PRODUCAO|PRONTO),
descricao. ALL or an empty value leaves a filter off.`,
		PreRunE: st.requireLogin,
		RunE: func(cmd *cobra.Command, args []string) error {
			return st.app.Search(cmd.Context(), args)
		},
	}
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, usageError{fmt.Errorf("invalid id %q", s)}
	}
	return id, nil
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
