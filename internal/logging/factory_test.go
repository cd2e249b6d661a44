package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_SlogJSON(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Options{Backend: BackendSlog, Level: "info", Format: "json"}, &buf)
	require.NoError(t, err)

	l.Debug(context.Background(), "hidden")
	l.Info(context.Background(), "shown", "k", "v")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1, "debug must be filtered at info level")

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "shown", rec["msg"])
	assert.Equal(t, "v", rec["k"])
}

func TestNew_ZapJSON(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Options{Backend: BackendZap, Level: "debug", Format: "json"}, &buf)
	require.NoError(t, err)

	l.With("entity", "orders").Debug(context.Background(), "fetch", "seq", 7)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec))
	assert.Equal(t, "fetch", rec["msg"])
	assert.Equal(t, "debug", rec["level"])
	assert.Equal(t, "orders", rec["entity"])
	assert.EqualValues(t, 7, rec["seq"])
}

func TestNew_ZapLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Options{Backend: BackendZap, Level: "error"}, &buf)
	require.NoError(t, err)

	l.Warn(context.Background(), "quiet")
	assert.Empty(t, buf.String())

	l.Error(context.Background(), "loud")
	assert.Contains(t, buf.String(), "loud")
}

func TestNew_UnknownBackend(t *testing.T) {
	_, err := New(Options{Backend: "logrus"}, &bytes.Buffer{})
	require.Error(t, err)
}

func TestNop_DoesNotPanic(t *testing.T) {
	l := Nop()
	ctx := context.TODO()
	l.Debug(ctx, "x")
	l.Info(ctx, "x")
	l.Warn(ctx, "x")
	l.Error(ctx, "x")
	l.With("a", 1).Info(ctx, "y")
}
