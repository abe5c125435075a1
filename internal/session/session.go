// Package session tracks the current authenticated identity and its
// bearer token, restoring both from the credential store at startup.
package session

import (
	"encoding/json"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/SergeyParamoshkin/blog/internal/credstore"
	"github.com/SergeyParamoshkin/blog/internal/model"
)

// Credential store keys. KeyUserInfo holds the serialized user
// summary, KeyToken the bearer token; absence of either means
// anonymous.
const (
	KeyToken    = "userToken"
	KeyUserInfo = "userInfo"
)

// State is the authentication lifecycle state.
type State uint8

const (
	StateAnonymous State = iota
	StateAuthenticating
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Option mutates session configuration.
type Option func(*Session)

// WithLogger injects a logger; the default discards everything.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(s *Session) {
		if logger != nil {
			s.log = logger
		}
	}
}

// WithClock overrides the time source used for token expiry checks.
func WithClock(clock func() time.Time) Option {
	return func(s *Session) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// Session is the process-wide identity holder. It is mutated only
// through Begin/SetCredentials/Fail/Logout, and every successful
// credential change is mirrored to the credential store.
type Session struct {
	store credstore.Store
	log   *zap.SugaredLogger
	clock func() time.Time

	state State
	user  model.User
}

func New(store credstore.Store, options ...Option) *Session {
	s := &Session{
		store: store,
		log:   zap.NewNop().Sugar(),
		clock: time.Now,
		state: StateAnonymous,
	}

	for _, option := range options {
		option(s)
	}

	return s
}

// Restore initializes the session from the credential store. A
// missing token or user summary, or a token whose expiry has passed,
// yields the anonymous state; an expired token is also scrubbed from
// the store.
func (s *Session) Restore() error {
	token, ok, err := s.store.Get(KeyToken)
	if err != nil {
		return err
	}
	if !ok || token == "" {
		return nil
	}

	info, ok, err := s.store.Get(KeyUserInfo)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	if tokenExpired(token, s.clock()) {
		s.log.Infow("stored token expired, starting anonymous")

		return s.clearStore()
	}

	var user model.User
	if err := json.Unmarshal([]byte(info), &user); err != nil {
		s.log.Warnw("stored user summary unreadable, starting anonymous", "error", err)

		return s.clearStore()
	}

	user.Token = token
	s.user = user
	s.state = StateAuthenticated

	s.log.Infow("session restored", "username", user.Username)

	return nil
}

// Begin marks a login or registration attempt in flight. Only an
// anonymous session can begin authenticating.
func (s *Session) Begin() {
	if s.state == StateAnonymous {
		s.state = StateAuthenticating
	}
}

// Fail ends a failed authentication attempt. An already-authenticated
// session is left untouched, so a failed profile update does not log
// the user out.
func (s *Session) Fail() {
	if s.state == StateAuthenticating {
		s.state = StateAnonymous
	}
}

// SetCredentials installs the authenticated user and persists both
// the token and the user summary to the credential store.
func (s *Session) SetCredentials(user model.User) error {
	s.state = StateAuthenticated
	s.user = user

	if err := s.store.Set(KeyToken, user.Token); err != nil {
		return err
	}

	summary := user
	summary.Token = ""
	info, err := json.Marshal(summary)
	if err != nil {
		return err
	}

	return s.store.Set(KeyUserInfo, string(info))
}

// Logout clears the session and removes the persisted credentials.
func (s *Session) Logout() error {
	s.state = StateAnonymous
	s.user = model.User{}

	return s.clearStore()
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	return s.state
}

// User returns the authenticated user, or false when anonymous.
func (s *Session) User() (model.User, bool) {
	if s.state != StateAuthenticated {
		return model.User{}, false
	}

	return s.user, true
}

// Token returns the bearer token, empty when anonymous.
func (s *Session) Token() string {
	if s.state != StateAuthenticated {
		return ""
	}

	return s.user.Token
}

func (s *Session) clearStore() error {
	if err := s.store.Remove(KeyToken); err != nil {
		return err
	}

	return s.store.Remove(KeyUserInfo)
}

// tokenExpired reads the exp claim without verifying the signature;
// the client has no key material, and an expired token is unusable
// either way. Tokens without an exp claim never expire client-side.
func tokenExpired(token string, now time.Time) bool {
	parser := gojwt.NewParser()

	parsed, _, err := parser.ParseUnverified(token, gojwt.MapClaims{})
	if err != nil {
		return true
	}

	expiry, err := parsed.Claims.GetExpirationTime()
	if err != nil || expiry == nil {
		return false
	}

	return expiry.Before(now)
}
