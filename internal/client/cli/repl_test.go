package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

type fakeExec struct {
	loggedIn bool

	calls []string
	err   error
}

func (f *fakeExec) record(call string) error {
	f.calls = append(f.calls, call)
	return f.err
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) Register(ctx context.Context, username string, autoLogin bool) error {
	return f.record(fmt.Sprintf("register %s %v", username, autoLogin))
}
func (f *fakeExec) Login(ctx context.Context, username string) error {
	f.loggedIn = true
	return f.record("login " + username)
}
func (f *fakeExec) Logout(ctx context.Context) error {
	f.loggedIn = false
	return f.record("logout")
}
func (f *fakeExec) WhoAmI(ctx context.Context) error { return f.record("whoami") }
func (f *fakeExec) List(ctx context.Context, entity, query string) error {
	return f.record("list " + entity + "|" + query)
}
func (f *fakeExec) Search(ctx context.Context, args []string) error {
	return f.record("search " + strings.Join(args, ","))
}
func (f *fakeExec) Stats() error { return f.record("stats") }

func capturePrints(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	origPrint := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, strings.TrimSpace(fmt.Sprintln(a...)))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = origPrint })
	return &lines
}

func TestRunREPL_LoginFlowAndCommands(t *testing.T) {
	capturePrints(t)

	input := strings.Join([]string{
		"help",
		"login joao",
		"help",
		"list customers acme ltda",
		"l orders",
		"search valorMinimo=100 statusProducao=ALL",
		"whoami",
		"stats",
		"register maria",
		"",
		"logout",
		"exit",
		"whoami",
	}, "\n")

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "status" }, rdr(input))

	want := []string{
		"login joao",
		"list customers|acme ltda",
		"list orders|",
		"search valorMinimo=100,statusProducao=ALL",
		"whoami",
		"stats",
		"register maria true",
		"logout",
	}
	if strings.Join(exec.calls, ";") != strings.Join(want, ";") {
		t.Fatalf("calls = %v, want %v", exec.calls, want)
	}
}

func TestRunREPL_UsageAndQuit(t *testing.T) {
	lines := capturePrints(t)

	exec := &fakeExec{loggedIn: true}
	runREPL(context.Background(), exec, func() string { return "s" }, rdr("list\nfoobar\nquit\n"))

	if len(exec.calls) != 0 {
		t.Fatalf("unexpected calls: %v", exec.calls)
	}
	joined := strings.Join(*lines, "\n")
	for _, want := range []string{"Usage: list", "Unknown command: foobar", "Bye!"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("output missing %q:\n%s", want, joined)
		}
	}
}

func TestRunREPL_ReportsErrorsAndStopsAtEOF(t *testing.T) {
	lines := capturePrints(t)

	exec := &fakeExec{loggedIn: true, err: errors.New("boom")}
	runREPL(context.Background(), exec, func() string { return "" }, rdr("whoami"))

	if len(exec.calls) != 1 {
		t.Fatalf("calls = %v", exec.calls)
	}
	if !strings.Contains(strings.Join(*lines, "\n"), "Error: boom") {
		t.Fatalf("error not reported: %v", *lines)
	}
}
