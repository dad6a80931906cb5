package catalog

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/tuanpn1312/react-shop/pkg/errors"
	"github.com/tuanpn1312/react-shop/pkg/httpclient"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(httpclient.New(httpclient.Config{Timeout: 2 * time.Second}), srv.URL, newTestLogger())
}

func TestListProducts_NormalizesBothDialects(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/products", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[
			{"id": 1, "nameProduct": "Ao thun", "price": 299000, "imageUrl": "https://img/1.jpg"},
			{"id": 2, "name": "Quan jeans", "priceProduct": 450000, "image": "https://img/2.jpg"}
		]`))
	})

	c := newTestClient(t, r)

	products, err := c.ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)

	assert.Equal(t, "1", products[0].ID)
	assert.Equal(t, "Ao thun", products[0].Name)
	assert.Equal(t, int64(299000), products[0].UnitPrice)
	assert.Equal(t, "https://img/1.jpg", products[0].ImageURL)

	assert.Equal(t, "Quan jeans", products[1].Name)
	assert.Equal(t, int64(450000), products[1].UnitPrice)
	assert.Equal(t, "https://img/2.jpg", products[1].ImageURL)
}

func TestListProducts_MissingPriceRejected(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/products", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"id": 3, "nameProduct": "No price"}]`))
	})

	c := newTestClient(t, r)

	_, err := c.ListProducts(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestGetProduct_NotFound(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/products/{id}", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message":"product does not exist"}`, http.StatusNotFound)
	})

	c := newTestClient(t, r)

	_, err := c.GetProduct(context.Background(), "999")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestGetProduct_ZeroPriceIsValid(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/products/{id}", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id": 7, "name": "Freebie", "price": 0}`))
	})

	c := newTestClient(t, r)

	product, err := c.GetProduct(context.Background(), "7")
	require.NoError(t, err)
	assert.Equal(t, int64(0), product.UnitPrice)
}

func TestListByCategory_UsesUnprefixedRoute(t *testing.T) {
	var gotPath string
	r := chi.NewRouter()
	r.Get("/products/category/{id}", func(w http.ResponseWriter, req *http.Request) {
		gotPath = req.URL.Path
		_, _ = w.Write([]byte(`[{"id": 1, "name": "Ao", "price": 100}]`))
	})

	c := newTestClient(t, r)

	products, err := c.ListByCategory(context.Background(), "5")
	require.NoError(t, err)
	assert.Len(t, products, 1)
	assert.Equal(t, "/products/category/5", gotPath)
}

func TestCreateProduct_ValidatesInput(t *testing.T) {
	c := New(httpclient.New(httpclient.Config{Timeout: time.Second}), "http://unused", newTestLogger())

	_, err := c.CreateProduct(context.Background(), ProductInput{Price: 100})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestCreateProduct_SendsPayloadAndDecodesResult(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/api/products", func(w http.ResponseWriter, req *http.Request) {
		var input map[string]any
		require.NoError(t, json.NewDecoder(req.Body).Decode(&input))
		assert.Equal(t, "Ao moi", input["nameProduct"])

		_, _ = w.Write([]byte(`{"id": 42, "nameProduct": "Ao moi", "price": 1000}`))
	})

	c := newTestClient(t, r)

	product, err := c.CreateProduct(context.Background(), ProductInput{Name: "Ao moi", Price: 1000})
	require.NoError(t, err)
	assert.Equal(t, "42", product.ID)
}

func TestDeleteProduct_ForbiddenForNonAdmin(t *testing.T) {
	r := chi.NewRouter()
	r.Delete("/api/products/{id}", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message":"admin only"}`, http.StatusForbidden)
	})

	c := newTestClient(t, r)

	err := c.DeleteProduct(context.Background(), "1")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestListCategories(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/categories", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"id": "1", "name": "Ao"}, {"id": "2", "name": "Quan"}]`))
	})

	c := newTestClient(t, r)

	categories, err := c.ListCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "Ao", categories[0].Name)
}

func TestCreateCategory_ConflictMapped(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/api/categories", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message":"category already exists"}`, http.StatusConflict)
	})

	c := newTestClient(t, r)

	_, err := c.CreateCategory(context.Background(), CategoryInput{Name: "Ao"})
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
}

func TestListProducts_TransportError(t *testing.T) {
	c := New(httpclient.New(httpclient.Config{Timeout: time.Second}), "http://127.0.0.1:1", newTestLogger())

	_, err := c.ListProducts(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrNetworkUnavailable)
}
