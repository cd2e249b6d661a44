package services

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/villaresmetals/console/internal/client/client"
	"github.com/villaresmetals/console/internal/client/credentials"
	"github.com/villaresmetals/console/internal/common"
)

// ---- helpers ----

func setupStore(t *testing.T) (*credentials.Store, *sql.DB) {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "console.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return credentials.NewStore(db), db
}

func countMeta(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM metadata`).Scan(&n))
	return n
}

func insertMeta(t *testing.T, db *sql.DB, k, v string) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO metadata(key,value) VALUES(?,?)`, k, []byte(v))
	require.NoError(t, err)
}

// ---- fake auth service ----

type fakeAuth struct {
	mu sync.Mutex

	ValidToken string
	VerifyErr  error
	Taken      bool
	TakenErr   error
	CreateErr  error
	PingErr    error

	// hooks run inside CreateAccount and VerifyLogin, while the session is loading
	OnCreate func()
	OnVerify func()

	Verified []string
	Created  []string
}

func (f *fakeAuth) VerifyLogin(ctx context.Context, token string) error {
	f.mu.Lock()
	f.Verified = append(f.Verified, token)
	f.mu.Unlock()
	if f.OnVerify != nil {
		f.OnVerify()
	}
	if f.VerifyErr != nil {
		return f.VerifyErr
	}
	if token != f.ValidToken {
		return &client.StatusError{Method: "GET", Path: "/employees", Code: 401}
	}
	return nil
}

func (f *fakeAuth) UsernameTaken(ctx context.Context, username string) (bool, error) {
	return f.Taken, f.TakenErr
}

func (f *fakeAuth) CreateAccount(ctx context.Context, username, password string) error {
	if f.CreateErr != nil {
		return f.CreateErr
	}
	f.mu.Lock()
	f.Created = append(f.Created, username)
	f.mu.Unlock()
	if f.OnCreate != nil {
		f.OnCreate()
	}
	f.ValidToken = credentials.Encode(username, password)
	return nil
}

func (f *fakeAuth) Ping(ctx context.Context) error { return f.PingErr }

// ---- restore ----

func TestRestore_EmptyStorageIsAnonymous(t *testing.T) {
	store, db := setupStore(t)
	s := NewSession(&fakeAuth{}, store, nil)

	require.NoError(t, s.Restore(context.Background()))

	assert.Equal(t, State{Status: Anonymous}, s.State())
	assert.Equal(t, 0, countMeta(t, db))
}

func TestRestore_CompleteSessionIsAuthenticated(t *testing.T) {
	store, db := setupStore(t)
	insertMeta(t, db, common.CredentialKey, "am9hbzoxMjM0")
	insertMeta(t, db, common.IdentityKey, "joao")

	s := NewSession(&fakeAuth{}, store, nil)
	require.NoError(t, s.Restore(context.Background()))

	assert.Equal(t, State{Status: Authenticated, Identity: "joao"}, s.State())
	assert.Equal(t, 2, countMeta(t, db))
}

func TestRestore_PartialSessionIsCleared(t *testing.T) {
	for _, key := range []string{common.CredentialKey, common.IdentityKey} {
		t.Run(key, func(t *testing.T) {
			store, db := setupStore(t)
			insertMeta(t, db, key, "leftover")

			s := NewSession(&fakeAuth{}, store, nil)
			require.NoError(t, s.Restore(context.Background()))

			assert.Equal(t, Anonymous, s.State().Status)
			assert.Equal(t, 0, countMeta(t, db), "neither key survives without the other")
		})
	}
}

// ---- login ----

func TestLogin_Success(t *testing.T) {
	store, _ := setupStore(t)
	auth := &fakeAuth{ValidToken: "am9hbzoxMjM0"}
	s := NewSession(auth, store, nil)
	ctx := context.Background()
	require.NoError(t, s.Restore(ctx))

	require.NoError(t, s.Login(ctx, "joao", "1234"))

	tok, ok, err := store.Get(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "am9hbzoxMjM0", tok)

	id, ok, err := store.Identity(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "joao", id)

	assert.Equal(t, State{Status: Authenticated, Identity: "joao"}, s.State())
	assert.NoError(t, s.LastError())
	assert.False(t, s.Loading())
}

func TestLogin_InvalidCredentials(t *testing.T) {
	store, db := setupStore(t)
	s := NewSession(&fakeAuth{ValidToken: "am9hbzoxMjM0"}, store, nil)
	ctx := context.Background()
	require.NoError(t, s.Restore(ctx))

	err := s.Login(ctx, "joao", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	assert.ErrorIs(t, err, client.ErrUnauthorized)

	assert.Equal(t, Anonymous, s.State().Status)
	assert.ErrorIs(t, s.LastError(), ErrInvalidCredentials)
	assert.Equal(t, "invalid credentials: GET /employees: 401 Unauthorized: unauthorized", s.LastError().Error())
	assert.Equal(t, 0, countMeta(t, db), "nothing is written on rejection")
}

func TestLogin_NetworkError(t *testing.T) {
	store, db := setupStore(t)
	s := NewSession(&fakeAuth{VerifyErr: fmt.Errorf("%w: refused", client.ErrNetwork)}, store, nil)

	err := s.Login(context.Background(), "joao", "1234")
	assert.ErrorIs(t, err, client.ErrNetwork)
	assert.Equal(t, client.KindNetwork, client.Kind(s.LastError()))
	assert.Equal(t, Anonymous, s.State().Status)
	assert.Equal(t, 0, countMeta(t, db))
}

func TestLogin_LoadingDuringVerification(t *testing.T) {
	store, _ := setupStore(t)
	auth := &fakeAuth{ValidToken: credentials.Encode("ana", "pw")}
	s := NewSession(auth, store, nil)

	var during bool
	auth.OnVerify = func() { during = s.Loading() }

	require.NoError(t, s.Login(context.Background(), "ana", "pw"))
	assert.True(t, during)
	assert.False(t, s.Loading())
}

// ---- register ----

func TestRegister_WithAutoLogin(t *testing.T) {
	store, _ := setupStore(t)
	auth := &fakeAuth{}
	s := NewSession(auth, store, nil)

	require.NoError(t, s.Register(context.Background(), "ana", "s3cr3t", true))

	assert.Equal(t, []string{"ana"}, auth.Created)
	assert.Equal(t, State{Status: Authenticated, Identity: "ana"}, s.State())
}

func TestRegister_AutoLoginIsOneLoadingSpan(t *testing.T) {
	store, _ := setupStore(t)
	auth := &fakeAuth{}
	s := NewSession(auth, store, nil)

	var pending []int
	record := func() {
		s.mu.Lock()
		pending = append(pending, s.pending)
		s.mu.Unlock()
	}
	auth.OnCreate = record
	auth.OnVerify = record

	require.NoError(t, s.Register(context.Background(), "ana", "s3cr3t", true))

	assert.Equal(t, []int{1, 1}, pending, "one begin covers both steps")
	assert.False(t, s.Loading())
}

func TestRegister_WithoutAutoLogin(t *testing.T) {
	store, db := setupStore(t)
	auth := &fakeAuth{}
	s := NewSession(auth, store, nil)

	require.NoError(t, s.Register(context.Background(), "ana", "s3cr3t", false))

	assert.Equal(t, Anonymous, s.State().Status)
	assert.Empty(t, auth.Verified)
	assert.Equal(t, 0, countMeta(t, db))
}

func TestRegister_UsernameTakenIsConflict(t *testing.T) {
	store, _ := setupStore(t)
	auth := &fakeAuth{Taken: true}
	s := NewSession(auth, store, nil)

	err := s.Register(context.Background(), "ana", "x", true)
	assert.ErrorIs(t, err, client.ErrConflict)
	assert.Equal(t, client.KindConflict, client.Kind(s.LastError()))
	assert.Empty(t, auth.Created, "nothing is posted for a taken name")
}

func TestRegister_ServerConflict(t *testing.T) {
	store, _ := setupStore(t)
	auth := &fakeAuth{CreateErr: &client.StatusError{Method: "POST", Path: "/employees", Code: 409}}
	s := NewSession(auth, store, nil)

	err := s.Register(context.Background(), "ana", "x", false)
	assert.ErrorIs(t, err, client.ErrConflict)
	assert.NotErrorIs(t, err, ErrRegistrationFailed)
}

func TestRegister_OtherFailures(t *testing.T) {
	store, _ := setupStore(t)
	for name, auth := range map[string]*fakeAuth{
		"validation": {CreateErr: &client.StatusError{Method: "POST", Path: "/employees", Code: 400}},
		"server":     {CreateErr: &client.StatusError{Method: "POST", Path: "/employees", Code: 500}},
		"lookup":     {TakenErr: fmt.Errorf("%w: refused", client.ErrNetwork)},
	} {
		t.Run(name, func(t *testing.T) {
			s := NewSession(auth, store, nil)
			err := s.Register(context.Background(), "ana", "x", true)
			assert.ErrorIs(t, err, ErrRegistrationFailed)
			assert.ErrorIs(t, s.LastError(), ErrRegistrationFailed)
			assert.Equal(t, Anonymous, s.State().Status)
		})
	}
}

// ---- logout / expire ----

func TestLogout_ClearsBothKeysAndIsIdempotent(t *testing.T) {
	store, db := setupStore(t)
	s := NewSession(&fakeAuth{ValidToken: credentials.Encode("joao", "1234")}, store, nil)
	ctx := context.Background()
	require.NoError(t, s.Login(ctx, "joao", "1234"))
	require.Equal(t, 2, countMeta(t, db))

	require.NoError(t, s.Logout(ctx))
	assert.Equal(t, State{Status: Anonymous}, s.State())
	assert.Equal(t, 0, countMeta(t, db))

	require.NoError(t, s.Logout(ctx))
	assert.Equal(t, Anonymous, s.State().Status)
}

func TestExpire(t *testing.T) {
	store, db := setupStore(t)
	s := NewSession(&fakeAuth{ValidToken: credentials.Encode("joao", "1234")}, store, nil)
	ctx := context.Background()
	require.NoError(t, s.Login(ctx, "joao", "1234"))

	require.NoError(t, s.Expire(ctx))
	assert.Equal(t, Anonymous, s.State().Status)
	assert.ErrorIs(t, s.LastError(), client.ErrUnauthorized)
	assert.Equal(t, 0, countMeta(t, db))
}

func TestSubscribe_NotifiedOnChangesOnly(t *testing.T) {
	store, _ := setupStore(t)
	s := NewSession(&fakeAuth{ValidToken: credentials.Encode("joao", "1234")}, store, nil)
	ctx := context.Background()

	var seen []State
	s.Subscribe(func(st State) { seen = append(seen, st) })

	require.NoError(t, s.Restore(ctx))
	require.NoError(t, s.Login(ctx, "joao", "1234"))
	require.NoError(t, s.Logout(ctx))
	require.NoError(t, s.Logout(ctx))

	assert.Equal(t, []State{
		{Status: Authenticated, Identity: "joao"},
		{Status: Anonymous},
	}, seen)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "anonymous", Anonymous.String())
	assert.Equal(t, "authenticated", Authenticated.String())
	assert.True(t, State{Status: Authenticated}.Authenticated())
}
