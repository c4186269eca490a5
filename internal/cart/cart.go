// Package cart holds the shopping cart container and its persistence
// collaborators. The cart is a name-to-quantity mapping: adding a product
// that is already present replaces its quantity, and the only other mutation
// is clearing the whole cart.
package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/treatly/backend-treats/internal/catalog"
	"github.com/treatly/backend-treats/internal/pricing"
)

// ErrInvalidInput is returned when the provided entry is malformed.
var ErrInvalidInput = errors.New("invalid input")

// Cart is a single shopper's cart. One mutex serializes writers per cart
// instance; callers sharing a cart across goroutines get that for free, but
// each cart still belongs to exactly one logical session.
type Cart struct {
	mu      sync.Mutex
	entries map[string]int
	store   Store
}

// New constructs an empty cart. The store is optional; when present every
// mutation is written through to it.
func New(store Store) *Cart {
	return &Cart{entries: make(map[string]int), store: store}
}

// Load replaces the in-memory entries with the store's current contents.
func (c *Cart) Load(ctx context.Context) error {
	if c.store == nil {
		return nil
	}
	entries, err := c.store.Get(ctx)
	if err != nil {
		return fmt.Errorf("load cart: %w", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if entries == nil {
		entries = make(map[string]int)
	}
	c.entries = entries
	return nil
}

// Add upserts an entry. The new quantity replaces any previous one; it does
// not accumulate. Negative quantities are rejected before they can reach the
// evaluator.
func (c *Cart) Add(ctx context.Context, name string, qty int) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: product name is required", ErrInvalidInput)
	}
	if qty < 0 {
		return fmt.Errorf("%w: quantity must not be negative, got %d", ErrInvalidInput, qty)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[name] = qty
	if c.store != nil {
		if err := c.store.Set(ctx, name, qty); err != nil {
			return fmt.Errorf("persist cart entry: %w", err)
		}
	}
	return nil
}

// Clear removes every entry from the cart and its store.
func (c *Cart) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]int)
	if c.store != nil {
		if err := c.store.Clear(ctx); err != nil {
			return fmt.Errorf("clear cart store: %w", err)
		}
	}
	return nil
}

// Entries returns a copy of the current mapping.
func (c *Cart) Entries() map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]int, len(c.entries))
	for name, qty := range c.entries {
		out[name] = qty
	}
	return out
}

// Total prices the cart against the catalog on the given date.
func (c *Cart) Total(items []catalog.Item, date time.Time) (decimal.Decimal, error) {
	return pricing.Total(c.Entries(), items, date)
}

// TTL hooks shared by the handler and stores.
const defaultTTL = 7 * 24 * time.Hour
