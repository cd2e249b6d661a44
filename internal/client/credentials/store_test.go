package credentials

import (
	"context"
	"database/sql"
	"encoding/base64"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/villaresmetals/console/internal/client/client"
)

func newStore(t *testing.T) (*Store, *sql.DB) {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "console.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewStore(db), db
}

func TestEncode_MatchesBrowserBtoa(t *testing.T) {
	// btoa("joao:1234")
	assert.Equal(t, "am9hbzoxMjM0", Encode("joao", "1234"))

	raw, err := base64.StdEncoding.DecodeString(Encode("ana", "p:ss"))
	require.NoError(t, err)
	assert.Equal(t, "ana:p:ss", string(raw))
}

func TestStore_SetGetClear(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	_, ok, err := s.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "fresh store holds no credential")

	require.NoError(t, s.Set(ctx, "joao", "1234"))
	tok, ok, err := s.Get(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "am9hbzoxMjM0", tok)

	require.NoError(t, s.Clear(ctx))
	require.NoError(t, s.Clear(ctx), "clear is idempotent")
	_, ok, err = s.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_ReadsThroughToStorage(t *testing.T) {
	s, db := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "joao", "1234"))

	// Another writer replaces the value behind the store's back.
	_, err := db.ExecContext(ctx, `UPDATE metadata SET value = ? WHERE key = 'authBasic'`, []byte("b3RoZXI6eA=="))
	require.NoError(t, err)

	tok, ok, err := s.Get(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "b3RoZXI6eA==", tok)
}

func TestStore_SessionWrittenAndClearedTogether(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveSession(ctx, Encode("joao", "1234"), "joao"))

	tok, ok, err := s.Get(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "am9hbzoxMjM0", tok)

	id, ok, err := s.Identity(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "joao", id)

	require.NoError(t, s.ClearSession(ctx))

	_, ok, _ = s.Get(ctx)
	assert.False(t, ok)
	_, ok, _ = s.Identity(ctx)
	assert.False(t, ok)
}

func TestStore_ClearKeepsIdentity(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveSession(ctx, "dG9rZW4=", "maria"))
	require.NoError(t, s.Clear(ctx))

	_, ok, _ := s.Get(ctx)
	assert.False(t, ok, "credential cleared")
	id, ok, err := s.Identity(ctx)
	require.NoError(t, err)
	assert.True(t, ok, "identity survives a bare Clear")
	assert.Equal(t, "maria", id)
}
