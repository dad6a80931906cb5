package storefront

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanpn1312/react-shop/account"
	"github.com/tuanpn1312/react-shop/config"
	"github.com/tuanpn1312/react-shop/domain"
	apperrors "github.com/tuanpn1312/react-shop/pkg/errors"
	"github.com/tuanpn1312/react-shop/pkg/kvstore"
)

// fakeShop is an in-memory rendition of the whole backend surface the
// storefront touches: login, the user cart, and a couple of products.
type fakeShop struct {
	mu        sync.Mutex
	cartItems []map[string]any
	nextLine  int
	cartFails bool
}

func (s *fakeShop) router() http.Handler {
	r := chi.NewRouter()

	r.Post("/api/auth/login", func(w http.ResponseWriter, req *http.Request) {
		var creds map[string]string
		_ = json.NewDecoder(req.Body).Decode(&creds)
		if creds["password"] != "secret" {
			http.Error(w, `{"message":"bad credentials"}`, http.StatusUnauthorized)
			return
		}
		w.Header().Set("Authorization", "Bearer tok-123")
		_, _ = w.Write([]byte(`{"username": "tuan", "email": "t@example.com", "role": "ROLE_USER"}`))
	})

	r.Get("/api/users/cart", func(w http.ResponseWriter, req *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.cartFails {
			http.Error(w, `{"message":"boom"}`, http.StatusInternalServerError)
			return
		}
		if req.Header.Get("Authorization") != "Bearer tok-123" {
			http.Error(w, `{"message":"no token"}`, http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"items": s.cartItems})
	})

	r.Post("/api/users/cart", func(w http.ResponseWriter, req *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.cartFails {
			http.Error(w, `{"message":"boom"}`, http.StatusInternalServerError)
			return
		}
		var payload struct {
			Items []map[string]any `json:"items"`
		}
		if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
			http.Error(w, `{"message":"bad payload"}`, http.StatusBadRequest)
			return
		}
		for _, item := range payload.Items {
			if id, _ := item["id"].(string); id == "" {
				s.nextLine++
				item["id"] = "line-" + strconv.Itoa(s.nextLine)
			}
		}
		s.cartItems = payload.Items
		w.WriteHeader(http.StatusOK)
	})

	r.Get("/api/products", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"id": 1, "nameProduct": "Ao thun", "price": 299000}]`))
	})

	return r
}

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		Environment:    "test",
		LogLevel:       "error",
		BackendBaseURL: baseURL,
		HTTPTimeout:    2 * time.Second,
		HTTPMaxRetries: 0,
		BreakerTimeout: time.Second,
	}
}

func newTestStorefront(t *testing.T) (*Client, *fakeShop) {
	t.Helper()
	shop := &fakeShop{}
	srv := httptest.NewServer(shop.router())
	t.Cleanup(srv.Close)

	client := NewWithStore(testConfig(srv.URL), kvstore.NewMemory(), nil)
	t.Cleanup(func() { _ = client.Close() })
	return client, shop
}

func widget() domain.Product {
	return domain.Product{ID: "prod-1", Name: "Widget", UnitPrice: 1990}
}

func TestLogin_MigratesAnonymousCart(t *testing.T) {
	client, shop := newTestStorefront(t)
	ctx := context.Background()

	// Shop anonymously first.
	_, err := client.Cart.AddItem(ctx, widget(), 2)
	require.NoError(t, err)
	require.Equal(t, 2, client.Cart.ItemCount())

	user, err := client.Login(ctx, account.Credentials{Username: "tuan", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "tuan", user.Username)
	assert.True(t, client.Session.IsAuthenticated(ctx))

	// The anonymous cart moved into the account and the held snapshot
	// follows the remote state.
	shop.mu.Lock()
	require.Len(t, shop.cartItems, 1)
	shop.mu.Unlock()
	assert.Equal(t, 2, client.Cart.ItemCount())

	cart, err := client.Cart.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, cart.ItemCount())
}

func TestLogin_BadCredentials(t *testing.T) {
	client, _ := newTestStorefront(t)
	ctx := context.Background()

	_, err := client.Login(ctx, account.Credentials{Username: "tuan", Password: "nope"})
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	assert.False(t, client.Session.IsAuthenticated(ctx))
}

func TestLogin_SyncFailureKeepsSessionAndLocalCart(t *testing.T) {
	client, shop := newTestStorefront(t)
	ctx := context.Background()

	_, err := client.Cart.AddItem(ctx, widget(), 2)
	require.NoError(t, err)

	shop.mu.Lock()
	shop.cartFails = true
	shop.mu.Unlock()

	_, err = client.Login(ctx, account.Credentials{Username: "tuan", Password: "secret"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrSyncFailed)

	// Session established, anonymous cart untouched: logging in again would
	// retry the migration.
	assert.True(t, client.Session.IsAuthenticated(ctx))

	require.NoError(t, client.Logout(ctx))
	local, err := client.Cart.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, local.ItemCount())
}

func TestLogout_ReturnsToAnonymousCart(t *testing.T) {
	client, _ := newTestStorefront(t)
	ctx := context.Background()

	_, err := client.Login(ctx, account.Credentials{Username: "tuan", Password: "secret"})
	require.NoError(t, err)

	_, err = client.Cart.AddItem(ctx, widget(), 1)
	require.NoError(t, err)

	require.NoError(t, client.Logout(ctx))
	assert.False(t, client.Session.IsAuthenticated(ctx))
	assert.Equal(t, 0, client.Cart.ItemCount())

	// Mutations now land in the local store again.
	cart, err := client.Cart.AddItem(ctx, widget(), 3)
	require.NoError(t, err)
	assert.Equal(t, 3, cart.ItemCount())
}

func TestCatalog_WiredThroughFacade(t *testing.T) {
	client, _ := newTestStorefront(t)

	products, err := client.Catalog.ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Ao thun", products[0].Name)
	assert.Equal(t, int64(299000), products[0].UnitPrice)
}

func TestRedisBackedCartSurvivesRebuild(t *testing.T) {
	shop := &fakeShop{}
	srv := httptest.NewServer(shop.router())
	t.Cleanup(srv.Close)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	kv := kvstore.NewRedis(rdb)

	ctx := context.Background()

	first := NewWithStore(testConfig(srv.URL), kv, nil)
	_, err := first.Cart.AddItem(ctx, widget(), 2)
	require.NoError(t, err)
	_ = first.Close()

	// A fresh client over the same Redis picks the anonymous cart back up.
	second := NewWithStore(testConfig(srv.URL), kv, nil)
	t.Cleanup(func() { _ = second.Close() })

	cart, err := second.Cart.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, cart.ItemCount())
}
