// Package account is a typed client for authentication and user management.
// Login is credential exchange only; establishing the session and syncing the
// anonymous cart is the storefront facade's job.
package account

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	apperrors "github.com/tuanpn1312/react-shop/pkg/errors"
	"github.com/tuanpn1312/react-shop/pkg/httpclient"
	"github.com/tuanpn1312/react-shop/pkg/validator"
	"github.com/tuanpn1312/react-shop/session"
)

const bearerPrefix = "Bearer "

// Doer is the request surface this client needs.
type Doer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Client talks to the auth and user endpoints.
type Client struct {
	client  Doer
	baseURL string
	logger  *slog.Logger
}

// New creates an account client against the given backend base URL.
func New(client Doer, baseURL string, logger *slog.Logger) *Client {
	return &Client{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// Credentials is the login payload.
type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Registration is the sign-up payload.
type Registration struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginResult carries the authenticated user and the bearer token the backend
// issued.
type LoginResult struct {
	User  session.User
	Token string
}

// userPayload tolerates numeric IDs on the wire.
type userPayload struct {
	ID       json.Number `json:"id"`
	Username string      `json:"username"`
	Email    string      `json:"email"`
	Role     string      `json:"role"`
}

// Account is a user record as the backend returns it.
type Account struct {
	ID       string
	Username string
	Email    string
	Role     string
}

func (p userPayload) normalize() Account {
	return Account{
		ID:       p.ID.String(),
		Username: p.Username,
		Email:    p.Email,
		Role:     p.Role,
	}
}

// Login exchanges credentials for a user profile and bearer token. The token
// travels in the Authorization response header, not the body; a 2xx response
// without one is treated as a failure rather than an unusable half-login.
func (c *Client) Login(ctx context.Context, creds Credentials) (*LoginResult, error) {
	if err := validator.Validate(creds); err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}

	body, err := json.Marshal(creds)
	if err != nil {
		return nil, fmt.Errorf("marshal credentials: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/auth/login", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(ctx, req)
	if resp == nil {
		if err == nil {
			err = fmt.Errorf("no response")
		}
		return nil, httpclient.MapTransportError(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, httpclient.ParseResponseError(resp, "login")
	}
	defer func() { _ = resp.Body.Close() }()

	var user session.User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("decode login response: %w", err)
	}

	authHeader := resp.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return nil, apperrors.Unauthorized("login response carried no bearer token")
	}

	c.logger.InfoContext(ctx, "login succeeded",
		slog.String("username", user.Username),
	)
	return &LoginResult{
		User:  user,
		Token: strings.TrimPrefix(authHeader, bearerPrefix),
	}, nil
}

// Register creates a shopper account.
func (c *Client) Register(ctx context.Context, reg Registration) (*Account, error) {
	return c.register(ctx, "/api/users/register", reg)
}

// RegisterAdmin creates an admin account. The backend enforces who may call
// this.
func (c *Client) RegisterAdmin(ctx context.Context, reg Registration) (*Account, error) {
	return c.register(ctx, "/api/users/register-admin", reg)
}

func (c *Client) register(ctx context.Context, path string, reg Registration) (*Account, error) {
	if err := validator.Validate(reg); err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}

	var payload userPayload
	if err := c.send(ctx, http.MethodPost, path, reg, &payload); err != nil {
		return nil, err
	}

	account := payload.normalize()
	c.logger.InfoContext(ctx, "account registered",
		slog.String("username", reg.Username),
	)
	return &account, nil
}

// ListUsers returns all user accounts. Admin credential required by the
// backend.
func (c *Client) ListUsers(ctx context.Context) ([]Account, error) {
	var payloads []userPayload
	if err := c.send(ctx, http.MethodGet, "/api/users", nil, &payloads); err != nil {
		return nil, err
	}

	accounts := make([]Account, 0, len(payloads))
	for _, p := range payloads {
		accounts = append(accounts, p.normalize())
	}
	return accounts, nil
}

// GetUser returns one user account by ID.
func (c *Client) GetUser(ctx context.Context, id string) (*Account, error) {
	var payload userPayload
	if err := c.send(ctx, http.MethodGet, "/api/users/"+id, nil, &payload); err != nil {
		return nil, err
	}
	account := payload.normalize()
	return &account, nil
}

// DeleteUser deletes a user account. Admin credential required by the
// backend.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.send(ctx, http.MethodDelete, "/api/users/"+id, nil, nil)
}

func (c *Client) send(ctx context.Context, method, path string, in, out any) error {
	var reader io.Reader = http.NoBody
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal user payload: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create user request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(ctx, req)
	if resp == nil {
		if err == nil {
			err = fmt.Errorf("no response")
		}
		return httpclient.MapTransportError(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return httpclient.ParseResponseError(resp, "user")
	}
	defer func() { _ = resp.Body.Close() }()

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode user response: %w", err)
	}
	return nil
}
