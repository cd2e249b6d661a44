package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/villaresmetals/console/internal/client/client"
	"github.com/villaresmetals/console/internal/client/credentials"
	"github.com/villaresmetals/console/internal/logging"
)

var (
	// ErrInvalidCredentials is a login rejected with 401.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrRegistrationFailed wraps any registration failure other than a
	// duplicate username.
	ErrRegistrationFailed = errors.New("registration failed")
)

// Status is the session's authentication state.
type Status int

const (
	Anonymous Status = iota
	Authenticated
)

func (s Status) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "anonymous"
}

// State is a session state. Identity is empty unless Authenticated.
type State struct {
	Status   Status
	Identity string
}

func (s State) Authenticated() bool {
	return s.Status == Authenticated
}

// SessionStore persists the credential and identity pair.
type SessionStore interface {
	Get(ctx context.Context) (string, bool, error)
	Identity(ctx context.Context) (string, bool, error)
	SaveSession(ctx context.Context, token, username string) error
	ClearSession(ctx context.Context) error
}

// Session is the authentication state machine. It is Anonymous until Restore
// finds a complete persisted session or Login succeeds. The credential and
// identity are always written and cleared together.
type Session struct {
	auth   AuthService
	store  SessionStore
	logger logging.Logger

	mu          sync.Mutex
	state       State
	pending     int
	lastErr     error
	subscribers []func(State)
}

func NewSession(auth AuthService, store SessionStore, logger logging.Logger) *Session {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Session{auth: auth, store: store, logger: logger}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Identity() string {
	return s.State().Identity
}

// Loading is true while Login or Register is in flight.
func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending > 0
}

func (s *Session) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Subscribe registers fn to be called after every state change.
func (s *Session) Subscribe(fn func(State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// Restore reads the persisted session. Both keys present means
// Authenticated; otherwise the session is Anonymous and any leftover key is
// cleared.
func (s *Session) Restore(ctx context.Context) error {
	_, hasToken, err := s.store.Get(ctx)
	if err != nil {
		return fmt.Errorf("read credential: %w", err)
	}
	identity, hasIdentity, err := s.store.Identity(ctx)
	if err != nil {
		return fmt.Errorf("read identity: %w", err)
	}

	if hasToken && hasIdentity {
		s.logger.Debug(ctx, "session restored", "user", identity)
		s.transition(State{Status: Authenticated, Identity: identity}, nil)
		return nil
	}

	if hasToken || hasIdentity {
		s.logger.Warn(ctx, "discarding partial session", "has_credential", hasToken, "has_identity", hasIdentity)
		if err := s.store.ClearSession(ctx); err != nil {
			return fmt.Errorf("clear partial session: %w", err)
		}
	}
	s.transition(State{Status: Anonymous}, nil)
	return nil
}

// Login verifies the pair against the backend and persists it on success.
// A rejected pair leaves storage untouched and returns ErrInvalidCredentials.
func (s *Session) Login(ctx context.Context, username, password string) error {
	s.begin()
	defer s.end()
	return s.login(ctx, username, password)
}

func (s *Session) login(ctx context.Context, username, password string) error {
	token := credentials.Encode(username, password)

	err := s.auth.VerifyLogin(ctx, token)
	switch {
	case err == nil:
	case client.Kind(err) == client.KindUnauthorized:
		return s.fail(ctx, "login", fmt.Errorf("%w: %w", ErrInvalidCredentials, err))
	default:
		return s.fail(ctx, "login", err)
	}

	if err := s.store.SaveSession(ctx, token, username); err != nil {
		return s.fail(ctx, "login", fmt.Errorf("save session: %w", err))
	}

	s.logger.Info(ctx, "logged in", "user", username)
	s.transition(State{Status: Authenticated, Identity: username}, nil)
	return nil
}

// Register creates an account. A taken username fails with client.ErrConflict
// before anything is posted. With autoLogin the new pair is logged in; the
// session stays loading across both steps.
func (s *Session) Register(ctx context.Context, username, password string, autoLogin bool) error {
	s.begin()
	defer s.end()

	if err := s.register(ctx, username, password); err != nil {
		return err
	}
	if autoLogin {
		return s.login(ctx, username, password)
	}
	return nil
}

func (s *Session) register(ctx context.Context, username, password string) error {
	taken, err := s.auth.UsernameTaken(ctx, username)
	if err != nil {
		return s.fail(ctx, "register", fmt.Errorf("%w: %w", ErrRegistrationFailed, err))
	}
	if taken {
		return s.fail(ctx, "register", fmt.Errorf("username %q: %w", username, client.ErrConflict))
	}

	err = s.auth.CreateAccount(ctx, username, password)
	switch {
	case err == nil:
	case client.Kind(err) == client.KindConflict:
		return s.fail(ctx, "register", fmt.Errorf("username %q: %w", username, err))
	default:
		return s.fail(ctx, "register", fmt.Errorf("%w: %w", ErrRegistrationFailed, err))
	}

	s.logger.Info(ctx, "account created", "user", username)
	s.setError(nil)
	return nil
}

// Logout clears the persisted session. Calling it while Anonymous is a no-op
// apart from re-clearing storage.
func (s *Session) Logout(ctx context.Context) error {
	if err := s.store.ClearSession(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	s.transition(State{Status: Anonymous}, nil)
	return nil
}

// Expire is Logout triggered by a 401 on an authenticated request; it leaves
// client.ErrUnauthorized as the last error.
func (s *Session) Expire(ctx context.Context) error {
	s.logger.Warn(ctx, "credential rejected, ending session", "user", s.Identity())
	if err := s.store.ClearSession(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	s.transition(State{Status: Anonymous}, client.ErrUnauthorized)
	return nil
}

func (s *Session) begin() {
	s.mu.Lock()
	s.pending++
	s.mu.Unlock()
}

func (s *Session) end() {
	s.mu.Lock()
	s.pending--
	s.mu.Unlock()
}

func (s *Session) fail(ctx context.Context, op string, err error) error {
	s.logger.Warn(ctx, op+" failed", "kind", client.Kind(err).String(), "error", err)
	s.setError(err)
	return err
}

func (s *Session) setError(err error) {
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
}

// transition sets the state and error, then notifies subscribers outside the
// lock if the state changed.
func (s *Session) transition(next State, lastErr error) {
	s.mu.Lock()
	changed := s.state != next
	s.state = next
	s.lastErr = lastErr
	subs := append([]func(State){}, s.subscribers...)
	s.mu.Unlock()

	if !changed {
		return
	}
	for _, fn := range subs {
		fn(next)
	}
}
