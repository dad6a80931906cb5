// Package localcart maintains the anonymous shopper's cart entirely inside
// the key-value store, under a single fixed key. All quantity arithmetic and
// total computation for the anonymous path happens here.
package localcart

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/tuanpn1312/react-shop/domain"
	apperrors "github.com/tuanpn1312/react-shop/pkg/errors"
	"github.com/tuanpn1312/react-shop/pkg/kvstore"
)

const cartKey = "react_shop_cart"

// Store is the anonymous cart backend.
type Store struct {
	kv     kvstore.Store
	logger *slog.Logger
}

// New creates a local cart store over the given key-value store.
func New(kv kvstore.Store, logger *slog.Logger) *Store {
	return &Store{kv: kv, logger: logger}
}

// Get returns the stored cart. An absent or corrupt snapshot yields the empty
// cart rather than an error: a shopper who loses a malformed cart can keep
// shopping, a shopper who gets an error page cannot.
func (s *Store) Get(ctx context.Context) (*domain.Cart, error) {
	data, err := s.kv.Get(ctx, cartKey)
	if err != nil {
		if err != kvstore.ErrNotFound {
			s.logger.WarnContext(ctx, "failed to read local cart, treating as empty",
				slog.String("error", err.Error()),
			)
		}
		return domain.EmptyCart(), nil
	}

	var cart domain.Cart
	if err := json.Unmarshal([]byte(data), &cart); err != nil {
		s.logger.WarnContext(ctx, "corrupt local cart snapshot, treating as empty",
			slog.String("error", err.Error()),
		)
		return domain.EmptyCart(), nil
	}

	if cart.Items == nil {
		cart.Items = []domain.CartLine{}
	}
	return &cart, nil
}

// Add merges quantity into an existing line for the same product, or appends
// a new line with a freshly generated ID. Returns the updated cart.
func (s *Store) Add(ctx context.Context, product domain.Product, quantity int) (*domain.Cart, error) {
	if quantity <= 0 {
		return nil, apperrors.InvalidInput("quantity must be greater than 0")
	}
	if err := product.Validate(); err != nil {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid product snapshot: %v", err))
	}

	cart, _ := s.Get(ctx)

	if idx := cart.FindLineByProduct(product.ID); idx >= 0 {
		cart.Items[idx].Quantity += quantity
	} else {
		cart.Items = append(cart.Items, domain.CartLine{
			ID:       newLineID(cart),
			Product:  product,
			Quantity: quantity,
		})
	}

	cart.Recalculate()
	if err := s.persist(ctx, cart); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "item added to local cart",
		slog.String("product_id", product.ID),
		slog.Int("quantity", quantity),
	)
	return cart, nil
}

// Remove drops the line with the given ID. Removing an absent line is a
// no-op, not an error.
func (s *Store) Remove(ctx context.Context, lineID string) (*domain.Cart, error) {
	cart, _ := s.Get(ctx)

	if idx := cart.FindLine(lineID); idx >= 0 {
		cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
	}

	cart.Recalculate()
	if err := s.persist(ctx, cart); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "item removed from local cart",
		slog.String("line_id", lineID),
	)
	return cart, nil
}

// Update sets the quantity of the line with the given ID. A quantity of zero
// or less removes the line; the cart never stores a non-positive quantity.
func (s *Store) Update(ctx context.Context, lineID string, quantity int) (*domain.Cart, error) {
	cart, _ := s.Get(ctx)

	idx := cart.FindLine(lineID)
	if idx < 0 {
		return cart, nil
	}

	if quantity <= 0 {
		cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
	} else {
		cart.Items[idx].Quantity = quantity
	}

	cart.Recalculate()
	if err := s.persist(ctx, cart); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "local cart line updated",
		slog.String("line_id", lineID),
		slog.Int("quantity", quantity),
	)
	return cart, nil
}

// Clear deletes the stored snapshot entirely.
func (s *Store) Clear(ctx context.Context) (*domain.Cart, error) {
	if err := s.kv.Delete(ctx, cartKey); err != nil {
		return nil, fmt.Errorf("clear local cart: %w", err)
	}

	s.logger.InfoContext(ctx, "local cart cleared")
	return domain.EmptyCart(), nil
}

// Count returns the total quantity across all lines. Pure read.
func (s *Store) Count(ctx context.Context) int {
	cart, _ := s.Get(ctx)
	return cart.ItemCount()
}

// persist writes the cart snapshot. A failed write must not claim success, so
// the error propagates to the caller.
func (s *Store) persist(ctx context.Context, cart *domain.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("marshal local cart: %w", err)
	}
	if err := s.kv.Set(ctx, cartKey, string(data)); err != nil {
		return fmt.Errorf("save local cart: %w", err)
	}
	return nil
}

// newLineID generates a timestamp-based line ID unique within the cart.
func newLineID(cart *domain.Cart) string {
	id := time.Now().UnixNano()
	for {
		candidate := strconv.FormatInt(id, 10)
		if cart.FindLine(candidate) < 0 {
			return candidate
		}
		id++
	}
}
