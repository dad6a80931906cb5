// Package remotecart reflects cart mutations to the backend for an
// authenticated shopper. The gateway holds no local cache: every operation
// round-trips the full cart representation, because the backend has no
// partial-update endpoint for line items, only "replace the whole item list".
//
// Contract: every mutating call concludes with a confirmatory fetch and
// returns its result, since the replace response is not trustworthy as the
// authoritative cart state. The fetch-modify-replace cycle is not atomic: two
// concurrent mutations (e.g. from two browser tabs) can interleave and lose
// an increment, last-write-wins. This is a documented limitation of the
// backend contract, not silently fixed here.
package remotecart

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/tuanpn1312/react-shop/domain"
	apperrors "github.com/tuanpn1312/react-shop/pkg/errors"
	"github.com/tuanpn1312/react-shop/pkg/httpclient"
)

const cartPath = "/api/users/cart"

// Doer executes HTTP requests. Satisfied by httpclient.Client and
// httpclient.CircuitBreakerClient.
type Doer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Gateway is the authenticated cart backend.
type Gateway struct {
	client  Doer
	baseURL string
	logger  *slog.Logger
}

// New creates a cart gateway against the given backend base URL. The bearer
// credential is attached by the underlying HTTP client.
func New(client Doer, baseURL string, logger *slog.Logger) *Gateway {
	return &Gateway{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// cartPayload is the wire representation of the remote cart.
type cartPayload struct {
	Items []itemPayload `json:"items"`
}

// itemPayload is one line on the wire. Line IDs are assigned by the backend;
// they are echoed back on replace so the backend can correlate lines.
type itemPayload struct {
	ID        string `json:"id,omitempty"`
	ProductID string `json:"productId"`
	Name      string `json:"name,omitempty"`
	Price     int64  `json:"price"`
	ImageURL  string `json:"imageUrl,omitempty"`
	Quantity  int    `json:"quantity"`
}

// Get fetches the authoritative cart for the current credential. Any
// transport error surfaces as CartUnavailable.
func (g *Gateway) Get(ctx context.Context) (*domain.Cart, error) {
	cart, err := g.fetch(ctx)
	if err != nil {
		if errors.Is(err, apperrors.ErrNetworkUnavailable) {
			return nil, apperrors.CartUnavailable(err)
		}
		return nil, err
	}
	return cart, nil
}

// Add merges the product into the remote cart using the same match-by-product
// rule as the local store, then replaces the whole item list.
func (g *Gateway) Add(ctx context.Context, product domain.Product, quantity int) (*domain.Cart, error) {
	if quantity <= 0 {
		return nil, apperrors.InvalidInput("quantity must be greater than 0")
	}
	if err := product.Validate(); err != nil {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid product snapshot: %v", err))
	}

	current, err := g.fetch(ctx)
	if err != nil {
		return nil, err
	}

	if idx := current.FindLineByProduct(product.ID); idx >= 0 {
		current.Items[idx].Quantity += quantity
	} else {
		current.Items = append(current.Items, domain.CartLine{
			Product:  product,
			Quantity: quantity,
		})
	}

	cart, err := g.replaceAndConfirm(ctx, current)
	if err != nil {
		return nil, err
	}

	g.logger.InfoContext(ctx, "item added to remote cart",
		slog.String("product_id", product.ID),
		slog.Int("quantity", quantity),
	)
	return cart, nil
}

// Remove filters the line out of the remote cart and replaces the item list.
// Removing an absent line replaces the list unchanged.
func (g *Gateway) Remove(ctx context.Context, lineID string) (*domain.Cart, error) {
	current, err := g.fetch(ctx)
	if err != nil {
		return nil, err
	}

	if idx := current.FindLine(lineID); idx >= 0 {
		current.Items = append(current.Items[:idx], current.Items[idx+1:]...)
	}

	cart, err := g.replaceAndConfirm(ctx, current)
	if err != nil {
		return nil, err
	}

	g.logger.InfoContext(ctx, "item removed from remote cart",
		slog.String("line_id", lineID),
	)
	return cart, nil
}

// Update sets the quantity of a line. A quantity of zero or less removes the
// line.
func (g *Gateway) Update(ctx context.Context, lineID string, quantity int) (*domain.Cart, error) {
	current, err := g.fetch(ctx)
	if err != nil {
		return nil, err
	}

	if idx := current.FindLine(lineID); idx >= 0 {
		if quantity <= 0 {
			current.Items = append(current.Items[:idx], current.Items[idx+1:]...)
		} else {
			current.Items[idx].Quantity = quantity
		}
	}

	cart, err := g.replaceAndConfirm(ctx, current)
	if err != nil {
		return nil, err
	}

	g.logger.InfoContext(ctx, "remote cart line updated",
		slog.String("line_id", lineID),
		slog.Int("quantity", quantity),
	)
	return cart, nil
}

// Clear replaces the remote cart with an empty item list.
func (g *Gateway) Clear(ctx context.Context) (*domain.Cart, error) {
	cart, err := g.replaceAndConfirm(ctx, domain.EmptyCart())
	if err != nil {
		return nil, err
	}

	g.logger.InfoContext(ctx, "remote cart cleared")
	return cart, nil
}

// fetch retrieves and decodes the remote cart, applying the uniform error
// mapping.
func (g *Gateway) fetch(ctx context.Context) (*domain.Cart, error) {
	resp, err := g.do(ctx, http.MethodGet, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	var payload cartPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, apperrors.UnknownCart(resp.StatusCode, fmt.Sprintf("malformed cart response: %v", err))
	}
	return payload.toDomain(), nil
}

// replaceAndConfirm posts the full item list, then fetches the authoritative
// state the backend actually stored.
func (g *Gateway) replaceAndConfirm(ctx context.Context, cart *domain.Cart) (*domain.Cart, error) {
	body, err := json.Marshal(fromDomain(cart))
	if err != nil {
		return nil, fmt.Errorf("marshal cart payload: %w", err)
	}

	resp, err := g.do(ctx, http.MethodPost, body)
	if err != nil {
		return nil, err
	}
	// The replace response is not adopted; drain and fetch instead.
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()

	return g.fetch(ctx)
}

// do executes one request against the cart endpoint and maps failures to
// domain errors: transport failures to NetworkUnavailable, non-2xx statuses
// per the uniform cart table.
func (g *Gateway) do(ctx context.Context, method string, body []byte) (*http.Response, error) {
	var reader io.Reader = http.NoBody
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+cartPath, reader)
	if err != nil {
		return nil, fmt.Errorf("create cart request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.client.Do(ctx, req)
	if resp == nil {
		if err == nil {
			err = errors.New("no response")
		}
		return nil, httpclient.MapTransportError(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, httpclient.MapCartResponseError(resp)
	}
	return resp, nil
}

func (p *cartPayload) toDomain() *domain.Cart {
	cart := domain.EmptyCart()
	for _, item := range p.Items {
		lineID := item.ID
		if lineID == "" {
			// Backends that key lines purely by product omit the line ID.
			lineID = item.ProductID
		}
		cart.Items = append(cart.Items, domain.CartLine{
			ID: lineID,
			Product: domain.Product{
				ID:        item.ProductID,
				Name:      item.Name,
				UnitPrice: item.Price,
				ImageURL:  item.ImageURL,
			},
			Quantity: item.Quantity,
		})
	}
	cart.Recalculate()
	return cart
}

func fromDomain(cart *domain.Cart) cartPayload {
	payload := cartPayload{Items: make([]itemPayload, 0, len(cart.Items))}
	for _, line := range cart.Items {
		payload.Items = append(payload.Items, itemPayload{
			ID:        line.ID,
			ProductID: line.Product.ID,
			Name:      line.Product.Name,
			Price:     line.Product.UnitPrice,
			ImageURL:  line.Product.ImageURL,
			Quantity:  line.Quantity,
		})
	}
	return payload
}
