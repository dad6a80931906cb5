// Package orders is a typed client for the order endpoints. Orders can be
// placed by authenticated shoppers or by guests; a guest order simply carries
// no user ID.
package orders

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/tuanpn1312/react-shop/pkg/errors"
	"github.com/tuanpn1312/react-shop/pkg/httpclient"
	"github.com/tuanpn1312/react-shop/pkg/validator"
)

// Doer is the request surface this client needs.
type Doer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Client talks to the order endpoints.
type Client struct {
	client  Doer
	baseURL string
	logger  *slog.Logger
}

// New creates an orders client against the given backend base URL.
func New(client Doer, baseURL string, logger *slog.Logger) *Client {
	return &Client{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// Item is one product line on an order. Prices are not sent: the backend
// prices the order from its own catalog.
type Item struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gt=0"`
}

// Input is the payload for placing an order.
type Input struct {
	CustomerName    string `validate:"required"`
	ShippingAddress string `validate:"required"`
	UserID          string
	Items           []Item `validate:"required,min=1,dive"`
}

// Order is an order as the backend returns it.
type Order struct {
	ID              string
	CustomerName    string
	ShippingAddress string
	OrderDate       time.Time
	Status          string
	UserID          string
	Items           []Item
}

// orderRequest is the wire shape the backend accepts.
type orderRequest struct {
	CustomerName    string `json:"customerName"`
	ShippingAddress string `json:"shippingAddress"`
	OrderDate       string `json:"orderDate"`
	UserID          string `json:"userId,omitempty"`
	Items           []Item `json:"items"`
}

// orderPayload tolerates numeric IDs and string dates on the wire.
type orderPayload struct {
	ID              json.Number `json:"id"`
	CustomerName    string      `json:"customerName"`
	ShippingAddress string      `json:"shippingAddress"`
	OrderDate       string      `json:"orderDate"`
	Status          string      `json:"status"`
	UserID          json.Number `json:"userId"`
	Items           []Item      `json:"items"`
}

func (p orderPayload) normalize() Order {
	date, err := time.Parse(time.RFC3339, p.OrderDate)
	if err != nil {
		date = time.Time{}
	}
	return Order{
		ID:              p.ID.String(),
		CustomerName:    p.CustomerName,
		ShippingAddress: p.ShippingAddress,
		OrderDate:       date,
		Status:          p.Status,
		UserID:          p.UserID.String(),
		Items:           p.Items,
	}
}

// Create places an order. The customer name, shipping address and at least
// one item are required; the user ID is optional and absent for guests.
func (c *Client) Create(ctx context.Context, input Input) (*Order, error) {
	if err := validator.Validate(input); err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}

	req := orderRequest{
		CustomerName:    input.CustomerName,
		ShippingAddress: input.ShippingAddress,
		OrderDate:       time.Now().UTC().Format(time.RFC3339),
		UserID:          input.UserID,
		Items:           input.Items,
	}

	var payload orderPayload
	if err := c.send(ctx, http.MethodPost, "/api/orders", req, &payload); err != nil {
		return nil, err
	}

	order := payload.normalize()
	c.logger.InfoContext(ctx, "order placed",
		slog.String("order_id", order.ID),
		slog.Int("lines", len(input.Items)),
	)
	return &order, nil
}

// CreateGuest places an order with no user attached, regardless of what the
// input carries.
func (c *Client) CreateGuest(ctx context.Context, input Input) (*Order, error) {
	input.UserID = ""
	return c.Create(ctx, input)
}

// Get returns one order by ID. Unknown IDs yield ErrNotFound.
func (c *Client) Get(ctx context.Context, id string) (*Order, error) {
	var payload orderPayload
	if err := c.send(ctx, http.MethodGet, "/api/orders/"+id, nil, &payload); err != nil {
		return nil, err
	}
	order := payload.normalize()
	return &order, nil
}

// List returns all orders visible to the current credential.
func (c *Client) List(ctx context.Context) ([]Order, error) {
	var payloads []orderPayload
	if err := c.send(ctx, http.MethodGet, "/api/orders", nil, &payloads); err != nil {
		return nil, err
	}

	orders := make([]Order, 0, len(payloads))
	for _, p := range payloads {
		orders = append(orders, p.normalize())
	}
	return orders, nil
}

func (c *Client) send(ctx context.Context, method, path string, in, out any) error {
	var reader io.Reader = http.NoBody
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal order payload: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create order request: %w", err)
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
		return httpclient.ParseResponseError(resp, "order")
	}
	defer func() { _ = resp.Body.Close() }()

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode order response: %w", err)
	}
	return nil
}
