// Package session owns the client-side authentication state: the bearer
// credential and user snapshot persisted in the key-value store. It replaces
// ad hoc "is there a token?" storage reads with an explicit manager that
// components receive by injection and can subscribe to for state changes.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tuanpn1312/react-shop/pkg/kvstore"
)

// Storage keys for the credential and user snapshot.
const (
	tokenKey = "react_shop_token"
	userKey  = "react_shop_user"
)

// State is the authentication state the cart coordinator routes on.
type State int

const (
	Anonymous State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "anonymous"
}

// User is the profile snapshot stored at login.
type User struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// IsAdmin reports whether the user carries the admin role.
func (u User) IsAdmin() bool {
	return u.Role == "ROLE_ADMIN"
}

// Manager holds session state in the key-value store and notifies subscribers
// on every login/logout transition.
type Manager struct {
	kv     kvstore.Store
	logger *slog.Logger

	mu        sync.Mutex
	listeners map[int]func(State)
	nextID    int
}

// NewManager creates a session manager over the given store.
func NewManager(kv kvstore.Store, logger *slog.Logger) *Manager {
	return &Manager{
		kv:        kv,
		logger:    logger,
		listeners: make(map[int]func(State)),
	}
}

// Login stores the bearer credential and user snapshot, then notifies
// subscribers of the Authenticated state.
func (m *Manager) Login(ctx context.Context, token string, user User) error {
	if token == "" {
		return fmt.Errorf("login: empty token")
	}

	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}

	if err := m.kv.Set(ctx, tokenKey, token); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	if err := m.kv.Set(ctx, userKey, string(data)); err != nil {
		return fmt.Errorf("store user: %w", err)
	}

	m.logger.InfoContext(ctx, "session established",
		slog.String("username", user.Username),
	)
	m.notify(Authenticated)
	return nil
}

// Logout discards the credential and user snapshot and notifies subscribers
// of the Anonymous state.
func (m *Manager) Logout(ctx context.Context) error {
	if err := m.kv.Delete(ctx, tokenKey); err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	if err := m.kv.Delete(ctx, userKey); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	m.logger.InfoContext(ctx, "session cleared")
	m.notify(Anonymous)
	return nil
}

// Token returns the stored bearer credential. A token whose JWT expiry has
// passed is treated as absent: the backend would reject it anyway, so the
// cart routes to the local store instead of guaranteed 401s.
func (m *Manager) Token(ctx context.Context) (string, bool) {
	token, err := m.kv.Get(ctx, tokenKey)
	if err != nil || token == "" {
		return "", false
	}
	if tokenExpired(token) {
		m.logger.DebugContext(ctx, "stored token expired, treating session as anonymous")
		return "", false
	}
	return token, true
}

// State returns the current authentication state.
func (m *Manager) State(ctx context.Context) State {
	if _, ok := m.Token(ctx); ok {
		return Authenticated
	}
	return Anonymous
}

// IsAuthenticated reports whether a usable credential is present.
func (m *Manager) IsAuthenticated(ctx context.Context) bool {
	return m.State(ctx) == Authenticated
}

// CurrentUser returns the stored user snapshot. A corrupt snapshot is treated
// as absent.
func (m *Manager) CurrentUser(ctx context.Context) (User, bool) {
	data, err := m.kv.Get(ctx, userKey)
	if err != nil {
		return User{}, false
	}

	var user User
	if err := json.Unmarshal([]byte(data), &user); err != nil {
		m.logger.WarnContext(ctx, "corrupt user snapshot in storage",
			slog.String("error", err.Error()),
		)
		return User{}, false
	}
	return user, true
}

// Subscribe registers a listener invoked on every state transition. The
// returned function unsubscribes it.
func (m *Manager) Subscribe(fn func(State)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	m.listeners[id] = fn

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.listeners, id)
	}
}

func (m *Manager) notify(state State) {
	m.mu.Lock()
	fns := make([]func(State), 0, len(m.listeners))
	for _, fn := range m.listeners {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(state)
	}
}

// tokenExpired inspects the token's exp claim without verifying the
// signature; verification is the backend's job. Opaque (non-JWT) tokens or
// tokens without an exp claim are assumed live.
func tokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}
