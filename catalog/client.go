// Package catalog is a typed client for the product and category endpoints.
// The backend returns product payloads in two dialects (legacy field names
// nameProduct/priceProduct next to name/price); this package normalizes both
// into domain.Product so nothing else in the codebase has to know.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/tuanpn1312/react-shop/domain"
	apperrors "github.com/tuanpn1312/react-shop/pkg/errors"
	"github.com/tuanpn1312/react-shop/pkg/httpclient"
	"github.com/tuanpn1312/react-shop/pkg/validator"
)

// Doer is the request surface this client needs.
type Doer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Client talks to the catalog endpoints.
type Client struct {
	client  Doer
	baseURL string
	logger  *slog.Logger
}

// New creates a catalog client against the given backend base URL.
func New(client Doer, baseURL string, logger *slog.Logger) *Client {
	return &Client{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// Category is a product grouping as the backend exposes it.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ProductInput is the admin-side payload for creating or updating a product.
type ProductInput struct {
	Name        string `json:"nameProduct" validate:"required"`
	Price       int64  `json:"price" validate:"gte=0"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
	CategoryID  string `json:"categoryId"`
	Stock       int    `json:"stock" validate:"gte=0"`
}

// CategoryInput is the admin-side payload for creating or updating a category.
type CategoryInput struct {
	Name string `json:"name" validate:"required"`
}

// categoryPayload tolerates numeric or string IDs on the wire.
type categoryPayload struct {
	ID   json.Number `json:"id"`
	Name string      `json:"name"`
}

func (p categoryPayload) normalize() Category {
	return Category{ID: p.ID.String(), Name: p.Name}
}

// productPayload accepts both backend dialects. IDs arrive as numbers or
// strings depending on the endpoint.
type productPayload struct {
	ID          json.Number `json:"id"`
	Name        string      `json:"name"`
	NameProduct string      `json:"nameProduct"`
	Price       *int64      `json:"price"`
	PriceLegacy *int64      `json:"priceProduct"`
	ImageURL    string      `json:"imageUrl"`
	Image       string      `json:"image"`
	Description string      `json:"description"`
}

// normalize folds the payload dialects into a domain.Product. A payload with
// no price in either field is rejected rather than silently priced at zero:
// a free product in a cart is a billing bug, not a default.
func (p productPayload) normalize() (domain.Product, error) {
	name := p.NameProduct
	if name == "" {
		name = p.Name
	}

	price := p.Price
	if price == nil {
		price = p.PriceLegacy
	}
	if price == nil {
		return domain.Product{}, apperrors.InvalidInput(
			fmt.Sprintf("product %s has no price in either payload dialect", p.ID.String()),
		)
	}

	image := p.ImageURL
	if image == "" {
		image = p.Image
	}

	return domain.Product{
		ID:        p.ID.String(),
		Name:      name,
		UnitPrice: *price,
		ImageURL:  image,
	}, nil
}

// ListProducts returns the full catalog.
func (c *Client) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var payloads []productPayload
	if err := c.get(ctx, "/api/products", "product", &payloads); err != nil {
		return nil, err
	}
	return normalizeAll(payloads)
}

// GetProduct returns one product by ID. Unknown IDs yield ErrNotFound.
func (c *Client) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	var payload productPayload
	if err := c.get(ctx, "/api/products/"+id, "product", &payload); err != nil {
		return nil, err
	}
	product, err := payload.normalize()
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// ListByCategory returns the products in one category. The backend serves
// this route without the /api prefix.
func (c *Client) ListByCategory(ctx context.Context, categoryID string) ([]domain.Product, error) {
	var payloads []productPayload
	if err := c.get(ctx, "/products/category/"+categoryID, "product", &payloads); err != nil {
		return nil, err
	}
	return normalizeAll(payloads)
}

// CreateProduct creates a product. Admin credential required by the backend.
func (c *Client) CreateProduct(ctx context.Context, input ProductInput) (*domain.Product, error) {
	if err := validator.Validate(input); err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}

	var payload productPayload
	if err := c.send(ctx, http.MethodPost, "/api/products", "product", input, &payload); err != nil {
		return nil, err
	}

	c.logger.InfoContext(ctx, "product created", slog.String("name", input.Name))
	product, err := payload.normalize()
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// UpdateProduct updates a product. Admin credential required by the backend.
func (c *Client) UpdateProduct(ctx context.Context, id string, input ProductInput) (*domain.Product, error) {
	if err := validator.Validate(input); err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}

	var payload productPayload
	if err := c.send(ctx, http.MethodPut, "/api/products/"+id, "product", input, &payload); err != nil {
		return nil, err
	}

	c.logger.InfoContext(ctx, "product updated", slog.String("product_id", id))
	product, err := payload.normalize()
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// DeleteProduct deletes a product. Admin credential required by the backend.
func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	if err := c.send(ctx, http.MethodDelete, "/api/products/"+id, "product", nil, nil); err != nil {
		return err
	}
	c.logger.InfoContext(ctx, "product deleted", slog.String("product_id", id))
	return nil
}

// ListCategories returns all categories.
func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	var payloads []categoryPayload
	if err := c.get(ctx, "/api/categories", "category", &payloads); err != nil {
		return nil, err
	}
	categories := make([]Category, 0, len(payloads))
	for _, p := range payloads {
		categories = append(categories, p.normalize())
	}
	return categories, nil
}

// GetCategory returns one category by ID.
func (c *Client) GetCategory(ctx context.Context, id string) (*Category, error) {
	var payload categoryPayload
	if err := c.get(ctx, "/api/categories/"+id, "category", &payload); err != nil {
		return nil, err
	}
	category := payload.normalize()
	return &category, nil
}

// CreateCategory creates a category. Admin credential required by the backend.
func (c *Client) CreateCategory(ctx context.Context, input CategoryInput) (*Category, error) {
	if err := validator.Validate(input); err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}

	var payload categoryPayload
	if err := c.send(ctx, http.MethodPost, "/api/categories", "category", input, &payload); err != nil {
		return nil, err
	}
	category := payload.normalize()
	return &category, nil
}

// UpdateCategory updates a category. Admin credential required by the backend.
func (c *Client) UpdateCategory(ctx context.Context, id string, input CategoryInput) (*Category, error) {
	if err := validator.Validate(input); err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}

	var payload categoryPayload
	if err := c.send(ctx, http.MethodPut, "/api/categories/"+id, "category", input, &payload); err != nil {
		return nil, err
	}
	category := payload.normalize()
	return &category, nil
}

// DeleteCategory deletes a category. Admin credential required by the backend.
func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	return c.send(ctx, http.MethodDelete, "/api/categories/"+id, "category", nil, nil)
}

// get issues a GET and decodes a 2xx response into out.
func (c *Client) get(ctx context.Context, path, resource string, out any) error {
	return c.send(ctx, http.MethodGet, path, resource, nil, out)
}

// send issues a request with an optional JSON body and decodes a 2xx response
// into out when out is non-nil.
func (c *Client) send(ctx context.Context, method, path, resource string, in, out any) error {
	var body *bytes.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal %s payload: %w", resource, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := newRequest(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create %s request: %w", resource, err)
	}

	resp, err := c.client.Do(ctx, req)
	if resp == nil {
		if err == nil {
			err = fmt.Errorf("no response")
		}
		return httpclient.MapTransportError(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return httpclient.ParseResponseError(resp, resource)
	}
	defer func() { _ = resp.Body.Close() }()

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", resource, err)
	}
	return nil
}

func newRequest(ctx context.Context, method, url string, body *bytes.Reader) (*http.Request, error) {
	if body == nil {
		return http.NewRequestWithContext(ctx, method, url, http.NoBody)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func normalizeAll(payloads []productPayload) ([]domain.Product, error) {
	products := make([]domain.Product, 0, len(payloads))
	for _, p := range payloads {
		product, err := p.normalize()
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, nil
}
