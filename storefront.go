// Package storefront assembles the shopping client: session management, the
// dual-backend cart, and the typed catalog, order and account clients, all
// configured from the environment.
package storefront

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/tuanpn1312/react-shop/account"
	"github.com/tuanpn1312/react-shop/catalog"
	"github.com/tuanpn1312/react-shop/config"
	"github.com/tuanpn1312/react-shop/coordinator"
	"github.com/tuanpn1312/react-shop/localcart"
	"github.com/tuanpn1312/react-shop/orders"
	"github.com/tuanpn1312/react-shop/pkg/httpclient"
	"github.com/tuanpn1312/react-shop/pkg/kvstore"
	"github.com/tuanpn1312/react-shop/pkg/logger"
	"github.com/tuanpn1312/react-shop/remotecart"
	"github.com/tuanpn1312/react-shop/session"
)

// Client is the assembled storefront. Cart operations go through Cart, which
// routes between the anonymous local store and the account cart depending on
// session state.
type Client struct {
	Session *session.Manager
	Cart    *coordinator.Coordinator
	Catalog *catalog.Client
	Orders  *orders.Client
	Account *account.Client

	logger *slog.Logger
	redis  *redis.Client
}

// New builds a storefront client from configuration. With REDIS_ADDR set the
// anonymous cart and session persist in Redis and survive restarts; otherwise
// they live in process memory.
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	log := logger.New("storefront", cfg.LogLevel)

	var (
		kv          kvstore.Store
		redisClient *redis.Client
	)
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		kv = kvstore.NewRedis(redisClient)
	} else {
		kv = kvstore.NewMemory()
	}

	return build(cfg, kv, redisClient, log), nil
}

// NewWithStore builds a storefront client over a caller-provided key-value
// store. Used by tests and embedders that manage storage themselves.
func NewWithStore(cfg *config.Config, kv kvstore.Store, log *slog.Logger) *Client {
	if log == nil {
		log = logger.New("storefront", cfg.LogLevel)
	}
	return build(cfg, kv, nil, log)
}

func build(cfg *config.Config, kv kvstore.Store, redisClient *redis.Client, log *slog.Logger) *Client {
	sessions := session.NewManager(kv, log)

	base := httpclient.New(httpclient.Config{
		Timeout:    cfg.HTTPTimeout,
		MaxRetries: cfg.HTTPMaxRetries,
	})
	authed := base.WithTokenSource(sessions)

	cbCfg := httpclient.DefaultCircuitBreakerConfig("cart")
	cbCfg.MaxRequests = cfg.BreakerMaxRequests
	cbCfg.Interval = cfg.BreakerInterval
	cbCfg.Timeout = cfg.BreakerTimeout
	cartClient := httpclient.NewCircuitBreakerClient(authed, cbCfg, log)

	local := localcart.New(kv, log)
	remote := remotecart.New(cartClient, cfg.BackendBaseURL, log)

	return &Client{
		Session: sessions,
		Cart:    coordinator.New(sessions, local, remote, log),
		Catalog: catalog.New(authed, cfg.BackendBaseURL, log),
		Orders:  orders.New(authed, cfg.BackendBaseURL, log),
		Account: account.New(authed, cfg.BackendBaseURL, log),
		logger:  log,
		redis:   redisClient,
	}
}

// Login authenticates, establishes the session, and migrates the anonymous
// cart into the account exactly once. When the migration fails the session
// stays established and the anonymous cart stays intact; the returned error
// wraps ErrSyncFailed and the user can retry by logging in again.
func (c *Client) Login(ctx context.Context, creds account.Credentials) (session.User, error) {
	result, err := c.Account.Login(ctx, creds)
	if err != nil {
		return session.User{}, err
	}

	if err := c.Session.Login(ctx, result.Token, result.User); err != nil {
		return session.User{}, fmt.Errorf("establish session: %w", err)
	}

	if err := c.Cart.TriggerSync(ctx); err != nil {
		c.logger.WarnContext(ctx, "cart sync after login failed, anonymous cart preserved",
			slog.String("error", err.Error()),
		)
		return result.User, err
	}

	if _, err := c.Cart.Load(ctx); err != nil {
		// The login itself succeeded; a failed refresh only delays the cart.
		c.logger.WarnContext(ctx, "cart refresh after login failed",
			slog.String("error", err.Error()),
		)
	}
	return result.User, nil
}

// Logout discards the session. The coordinator observes the transition and
// resets its held cart.
func (c *Client) Logout(ctx context.Context) error {
	return c.Session.Logout(ctx)
}

// Close releases held resources.
func (c *Client) Close() error {
	c.Cart.Close()
	if c.redis != nil {
		return c.redis.Close()
	}
	return nil
}
