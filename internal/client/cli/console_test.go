package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/villaresmetals/console/internal/logging"
	"github.com/villaresmetals/console/internal/server/auth"
	"github.com/villaresmetals/console/internal/server/httpapi"
	"github.com/villaresmetals/console/internal/server/store"
)

// ---- helpers ----

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type harness struct {
	baseURL string
	dataDir string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	st := store.New()
	accounts := auth.NewAccounts(st.Employees, bcrypt.MinCost)
	srv := httptest.NewServer(httpapi.NewRouter(httpapi.NewHandler(st, accounts, logging.Nop()), httpapi.RouterOptions{}))
	t.Cleanup(srv.Close)
	return &harness{baseURL: srv.URL, dataDir: t.TempDir()}
}

func stubPassword(t *testing.T, pw string) {
	t.Helper()
	orig := getPassword
	getPassword = func(io.Writer) ([]byte, error) { return []byte(pw), nil }
	t.Cleanup(func() { getPassword = orig })
}

func (h *harness) runWithInput(t *testing.T, in string, args ...string) (int, string, string) {
	t.Helper()
	var out, errOut lockedBuffer
	full := append([]string{"--base-url", h.baseURL, "--data-dir", h.dataDir, "--log-level", "error"}, args...)
	code := Execute(context.Background(), full, strings.NewReader(in), &out, &errOut)
	return code, out.String(), errOut.String()
}

func (h *harness) run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	return h.runWithInput(t, "", args...)
}

func (h *harness) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	code, out, errOut := h.run(t, args...)
	require.Equal(t, ExitOK, code, "console %v\nstdout: %s\nstderr: %s", args, out, errOut)
	return out
}

// ---- tests ----

func TestExecute_UsageErrors(t *testing.T) {
	h := newHarness(t)

	cases := [][]string{
		{"frobnicate"},
		{"--no-such-flag", "whoami"},
		{"customers", "get"},
		{"logout", "extra"},
		{"orders", "update", "1"},
	}
	for _, args := range cases {
		code, _, errOut := h.run(t, args...)
		assert.Equal(t, ExitUsage, code, "%v", args)
		assert.Contains(t, errOut, "Run 'console --help'", "%v", args)
	}
}

func TestExecute_BadConfigFails(t *testing.T) {
	h := newHarness(t)
	code, _, errOut := h.run(t, "--log-backend", "logrus", "whoami")
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, errOut, "load config")
}

func TestExecute_RequiresLogin(t *testing.T) {
	h := newHarness(t)

	assert.Contains(t, h.mustRun(t, "whoami"), "Not logged in")

	code, _, errOut := h.run(t, "customers", "list")
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, errOut, "not logged in")
}

func TestExecute_LoginFlow(t *testing.T) {
	h := newHarness(t)

	stubPassword(t, "1234")
	out := h.mustRun(t, "register", "joao")
	assert.Contains(t, out, "Success!")
	assert.Contains(t, h.mustRun(t, "whoami"), "Not logged in")

	code, _, errOut := h.run(t, "register", "joao")
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, errOut, "already exists")

	stubPassword(t, "wrong")
	code, _, errOut = h.run(t, "login", "joao")
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, errOut, "invalid credentials")

	stubPassword(t, "1234")
	assert.Contains(t, h.mustRun(t, "login", "joao"), "Logged in as joao")
	assert.Equal(t, "joao\n", h.mustRun(t, "whoami"))

	assert.Contains(t, h.mustRun(t, "logout"), "Logged out")
	assert.Contains(t, h.mustRun(t, "whoami"), "Not logged in")
}

func TestExecute_ManageRecords(t *testing.T) {
	h := newHarness(t)
	stubPassword(t, "1234")
	h.mustRun(t, "register", "--login", "joao")

	assert.Contains(t, h.mustRun(t, "customers", "add", "name=ACME", "cnpj=11.222"), "Created customer")
	h.mustRun(t, "customer", "add", "name=Bolt Co")
	h.mustRun(t, "products", "add", "name=Chapa", "input_weight=10", "output_weight=9")

	out := h.mustRun(t, "customers", "list", "--find", "acme")
	assert.Contains(t, out, "ACME")
	assert.NotContains(t, out, "Bolt")

	h.mustRun(t, "orders", "add", "description=Corte", "value=150", "customer=1", "items=1:2", "status=PRONTO")
	h.mustRun(t, "orders", "add", "description=Furo", "value=50")

	out = h.mustRun(t, "orders", "search", "valorMinimo=100", "statusProducao=ALL", "descricao=")
	assert.Contains(t, out, "Corte")
	assert.Contains(t, out, "ACME")
	assert.NotContains(t, out, "Furo")

	assert.Contains(t, h.mustRun(t, "orders", "update", "2", "paid=true"), "Updated order 2")
	out = h.mustRun(t, "orders", "get", "2")
	assert.Contains(t, out, "Furo")
	assert.Contains(t, out, "true")

	out = h.mustRun(t, "orders", "search", "statusPagamento=UNPAID")
	assert.Contains(t, out, "Corte")
	assert.NotContains(t, out, "Furo")

	assert.Contains(t, h.mustRun(t, "products", "delete", "1"), "Deleted product 1")
	assert.Contains(t, h.mustRun(t, "products", "list"), "No records.")

	code, _, errOut := h.run(t, "orders", "add", "colour=red")
	assert.Equal(t, ExitUsage, code)
	assert.Contains(t, errOut, "unknown field")

	code, _, _ = h.run(t, "customers", "get", "abc")
	assert.Equal(t, ExitUsage, code)

	code, _, errOut = h.run(t, "customers", "get", "99")
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, errOut, "404")

	code, _, _ = h.run(t, "orders", "search", "color=red")
	assert.Equal(t, ExitUsage, code)
}

func TestExecute_RejectedCredentialEndsSession(t *testing.T) {
	h := newHarness(t)
	stubPassword(t, "1234")
	h.mustRun(t, "register", "--login", "joao")

	// the account disappears on the backend while the console still holds it
	assert.Contains(t, h.mustRun(t, "employees", "delete", "1"), "Deleted employee 1")

	code, out, _ := h.run(t, "customers", "list")
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, out, "Session expired")
	assert.Contains(t, h.mustRun(t, "whoami"), "Not logged in")
}

func TestExecute_SearchWithoutFiltersListsAllOrders(t *testing.T) {
	h := newHarness(t)
	stubPassword(t, "1234")
	h.mustRun(t, "register", "--login", "joao")
	h.mustRun(t, "orders", "add", "description=Corte", "value=150")
	h.mustRun(t, "orders", "add", "description=Furo", "value=50")

	out := h.mustRun(t, "orders", "search", "statusProducao=ALL", "nomeCliente=")
	assert.Contains(t, out, "Corte")
	assert.Contains(t, out, "Furo")
}

func TestExecute_Shell(t *testing.T) {
	h := newHarness(t)
	stubPassword(t, "1234")
	h.mustRun(t, "register", "joao")

	var shellOut []string
	origPrint := printlnFn
	printlnFn = func(a ...any) (int, error) {
		shellOut = append(shellOut, strings.TrimSpace(fmt.Sprintln(a...)))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = origPrint })

	code, out, errOut := h.runWithInput(t, "list customers\nlogin joao\nlist customers\nstats\nexit\n", "shell")
	require.Equal(t, ExitOK, code, errOut)

	joined := strings.Join(shellOut, "\n")
	assert.Contains(t, joined, "Error: not logged in")
	assert.Contains(t, joined, "Bye!")

	assert.Contains(t, out, "Logged in as joao")
	assert.Contains(t, out, "No records.")
	assert.Contains(t, out, "METHOD")
	assert.Contains(t, out, "success")
}
