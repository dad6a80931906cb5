// Package coordinator routes cart operations to the right backend for the
// current session: the local key-value store for anonymous shoppers, the
// remote gateway for authenticated ones. It also owns the held in-memory cart
// snapshot and the one-time login sync that migrates an anonymous cart into
// the shopper's account.
package coordinator

import (
	"context"
	"log/slog"
	"sync"

	"github.com/tuanpn1312/react-shop/domain"
	apperrors "github.com/tuanpn1312/react-shop/pkg/errors"
	"github.com/tuanpn1312/react-shop/session"
)

// Backend is the operation set both cart backends expose. Every call returns
// the full cart state after the operation.
type Backend interface {
	Get(ctx context.Context) (*domain.Cart, error)
	Add(ctx context.Context, product domain.Product, quantity int) (*domain.Cart, error)
	Remove(ctx context.Context, lineID string) (*domain.Cart, error)
	Update(ctx context.Context, lineID string, quantity int) (*domain.Cart, error)
	Clear(ctx context.Context) (*domain.Cart, error)
}

// Sessions is the slice of session.Manager the coordinator needs.
type Sessions interface {
	State(ctx context.Context) session.State
	Subscribe(fn func(session.State)) func()
}

// Coordinator is the single entry point for cart reads and mutations. Safe
// for concurrent use.
type Coordinator struct {
	sessions Sessions
	local    Backend
	remote   Backend
	logger   *slog.Logger

	mu         sync.Mutex
	cart       *domain.Cart
	generation uint64
	syncing    bool

	unsubscribe func()
}

// New creates a coordinator and subscribes it to session transitions. Every
// transition invalidates in-flight responses; logout additionally resets the
// held snapshot to empty.
func New(sessions Sessions, local, remote Backend, logger *slog.Logger) *Coordinator {
	c := &Coordinator{
		sessions: sessions,
		local:    local,
		remote:   remote,
		logger:   logger,
		cart:     domain.EmptyCart(),
	}
	c.unsubscribe = sessions.Subscribe(c.onSessionChange)
	return c
}

// Close detaches the coordinator from session notifications.
func (c *Coordinator) Close() {
	if c.unsubscribe != nil {
		c.unsubscribe()
	}
}

func (c *Coordinator) onSessionChange(state session.State) {
	c.mu.Lock()
	c.generation++
	if state == session.Anonymous {
		c.cart = domain.EmptyCart()
	}
	c.mu.Unlock()

	c.logger.Info("session transition observed",
		slog.String("state", state.String()),
	)
}

// Cart returns a copy of the held cart snapshot. Synchronous, never blocks on
// I/O.
func (c *Coordinator) Cart() *domain.Cart {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cart.Clone()
}

// ItemCount returns the total quantity across the held snapshot's lines.
func (c *Coordinator) ItemCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cart.ItemCount()
}

// Load fetches the cart from the backend for the current session state and
// adopts it as the held snapshot.
func (c *Coordinator) Load(ctx context.Context) (*domain.Cart, error) {
	gen := c.gen()
	backend, name := c.route(ctx)

	cart, err := backend.Get(ctx)
	recordOperation(name, "load", err)
	if err != nil {
		return nil, err
	}
	return c.adopt(ctx, gen, cart), nil
}

// AddItem adds the product to the cart of the current session state.
func (c *Coordinator) AddItem(ctx context.Context, product domain.Product, quantity int) (*domain.Cart, error) {
	gen := c.gen()
	backend, name := c.route(ctx)

	cart, err := backend.Add(ctx, product, quantity)
	recordOperation(name, "add", err)
	if err != nil {
		return nil, err
	}
	return c.adopt(ctx, gen, cart), nil
}

// RemoveItem removes the line from the cart of the current session state.
func (c *Coordinator) RemoveItem(ctx context.Context, lineID string) (*domain.Cart, error) {
	gen := c.gen()
	backend, name := c.route(ctx)

	cart, err := backend.Remove(ctx, lineID)
	recordOperation(name, "remove", err)
	if err != nil {
		return nil, err
	}
	return c.adopt(ctx, gen, cart), nil
}

// UpdateItem sets a line's quantity; zero or less removes the line.
func (c *Coordinator) UpdateItem(ctx context.Context, lineID string, quantity int) (*domain.Cart, error) {
	gen := c.gen()
	backend, name := c.route(ctx)

	cart, err := backend.Update(ctx, lineID, quantity)
	recordOperation(name, "update", err)
	if err != nil {
		return nil, err
	}
	return c.adopt(ctx, gen, cart), nil
}

// ClearCart empties the cart of the current session state.
func (c *Coordinator) ClearCart(ctx context.Context) (*domain.Cart, error) {
	gen := c.gen()
	backend, name := c.route(ctx)

	cart, err := backend.Clear(ctx)
	recordOperation(name, "clear", err)
	if err != nil {
		return nil, err
	}
	return c.adopt(ctx, gen, cart), nil
}

// TriggerSync migrates the anonymous cart into the shopper's account: replay
// every local line through the remote backend, then clear the local store and
// adopt the remote state. Any failure aborts without clearing the local store
// so nothing is lost; the caller gets SyncFailed wrapping the cause and may
// retry by logging in again.
//
// Single-flight: a call that finds a sync already running is a logged no-op.
func (c *Coordinator) TriggerSync(ctx context.Context) error {
	c.mu.Lock()
	if c.syncing {
		c.mu.Unlock()
		c.logger.InfoContext(ctx, "cart sync already in progress, skipping")
		return nil
	}
	c.syncing = true
	gen := c.generation
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.syncing = false
		c.mu.Unlock()
	}()

	localCart, err := c.local.Get(ctx)
	if err != nil {
		cartSyncs.WithLabelValues("error").Inc()
		return apperrors.SyncFailed(err)
	}
	if len(localCart.Items) == 0 {
		cartSyncs.WithLabelValues("noop").Inc()
		c.logger.InfoContext(ctx, "no anonymous cart to sync")
		return nil
	}

	// Sequential replay: the remote backend replaces its whole item list per
	// mutation, so concurrent adds would race each other.
	for _, line := range localCart.Items {
		if _, err := c.remote.Add(ctx, line.Product, line.Quantity); err != nil {
			cartSyncs.WithLabelValues("error").Inc()
			c.logger.ErrorContext(ctx, "cart sync aborted, local cart preserved",
				slog.String("product_id", line.Product.ID),
				slog.String("error", err.Error()),
			)
			return apperrors.SyncFailed(err)
		}
	}

	if _, err := c.local.Clear(ctx); err != nil {
		cartSyncs.WithLabelValues("error").Inc()
		return apperrors.SyncFailed(err)
	}

	remoteCart, err := c.remote.Get(ctx)
	if err != nil {
		cartSyncs.WithLabelValues("error").Inc()
		return apperrors.SyncFailed(err)
	}
	c.adopt(ctx, gen, remoteCart)

	cartSyncs.WithLabelValues("success").Inc()
	c.logger.InfoContext(ctx, "anonymous cart synced to account",
		slog.Int("lines", len(localCart.Items)),
	)
	return nil
}

// route picks the backend for the current session state, evaluated fresh per
// operation.
func (c *Coordinator) route(ctx context.Context) (Backend, string) {
	if c.sessions.State(ctx) == session.Authenticated {
		return c.remote, "remote"
	}
	return c.local, "local"
}

func (c *Coordinator) gen() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// adopt installs the backend's response as the held snapshot, unless the
// generation moved while the request was in flight: a session transition or
// an operation that completed in the meantime. Adoption advances the
// generation, so of two overlapping operations only the first to complete
// updates the snapshot. A stale response is still returned to its caller but
// never overwrites fresher held state.
func (c *Coordinator) adopt(ctx context.Context, gen uint64, cart *domain.Cart) *domain.Cart {
	c.mu.Lock()
	if gen == c.generation {
		c.generation++
		c.cart = cart.Clone()
		c.mu.Unlock()
		return cart
	}
	c.mu.Unlock()

	staleResponsesDiscarded.Inc()
	c.logger.WarnContext(ctx, "discarding cart response superseded by fresher state")
	return cart
}
