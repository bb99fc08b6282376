package tracking

import (
	"context"
	"errors"
	"fmt"

	"dulce-kart/internal/kvstore"
)

// LastOrderCache remembers the most recent order id of each user scope so
// tracking works after navigating away from the confirmation page.
type LastOrderCache struct {
	store kvstore.Store
}

// NewLastOrderCache creates a cache over store.
func NewLastOrderCache(store kvstore.Store) *LastOrderCache {
	return &LastOrderCache{store: store}
}

// Remember stores orderID as the last order of scope.
func (c *LastOrderCache) Remember(ctx context.Context, scope, orderID string) error {
	if err := c.store.Set(ctx, kvstore.LastOrderKey(scope), []byte(orderID)); err != nil {
		return fmt.Errorf("failed to remember last order: %w", err)
	}
	return nil
}

// Last returns the remembered order id of scope. ok is false when nothing
// has been recorded.
func (c *LastOrderCache) Last(ctx context.Context, scope string) (orderID string, ok bool, err error) {
	raw, err := c.store.Get(ctx, kvstore.LastOrderKey(scope))
	if errors.Is(err, kvstore.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read last order: %w", err)
	}
	if len(raw) == 0 {
		return "", false, nil
	}
	return string(raw), true, nil
}

// Forget drops the remembered order of scope.
func (c *LastOrderCache) Forget(ctx context.Context, scope string) error {
	return c.store.Delete(ctx, kvstore.LastOrderKey(scope))
}
