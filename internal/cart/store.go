// Package cart holds a browsing session's line items.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"dulce-kart/internal/kvstore"
	"dulce-kart/internal/model"

	"github.com/rs/zerolog"
)

// recordVersion is bumped whenever the record changes shape. Records with
// any other version are discarded on load.
const recordVersion = 1

type record struct {
	Version int              `json:"version"`
	Items   []model.LineItem `json:"items"`
}

// SubmitFunc places an order for a snapshot of the cart and returns the
// order id assigned by the order service.
type SubmitFunc func(ctx context.Context, snapshot []model.LineItem) (string, error)

// Store is the cart of one session. All methods are safe for concurrent use;
// mutations are serialised so each one is atomic from the caller's view.
type Store struct {
	mu      sync.Mutex
	key     string
	items   []model.LineItem
	storage kvstore.Store
	logger  zerolog.Logger
}

// Open loads the cart persisted under key, or starts an empty one.
// A record that cannot be decoded or carries another version is discarded.
func Open(ctx context.Context, storage kvstore.Store, key string, logger zerolog.Logger) (*Store, error) {
	s := &Store{
		key:     key,
		storage: storage,
		logger:  logger.With().Str("component", "cart").Str("cart_key", key).Logger(),
	}

	raw, err := storage.Get(ctx, key)
	if errors.Is(err, kvstore.ErrNotFound) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		s.logger.Warn().Err(err).Msg("discarding undecodable cart record")
		return s, nil
	}
	if rec.Version != recordVersion {
		s.logger.Warn().Int("version", rec.Version).Msg("discarding cart record with unsupported version")
		return s, nil
	}

	s.items = sanitise(rec.Items)
	return s, nil
}

// sanitise drops entries that would break the cart invariants: non-positive
// quantities and duplicate product ids (the first occurrence wins).
func sanitise(items []model.LineItem) []model.LineItem {
	out := make([]model.LineItem, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if item.ProductID == "" || item.Quantity < 1 {
			continue
		}
		if _, dup := seen[item.ProductID]; dup {
			continue
		}
		seen[item.ProductID] = struct{}{}
		out = append(out, item)
	}
	return out
}

// Add increments the quantity of product if it is already in the cart, or
// appends it with quantity 1.
func (s *Store) Add(ctx context.Context, product model.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(product.ID); i >= 0 {
		s.items[i].Quantity++
	} else {
		s.items = append(s.items, model.LineItem{
			ProductID: product.ID,
			Name:      product.Name,
			UnitPrice: product.Price,
			Quantity:  1,
			ImageURL:  product.ImageURL,
			Category:  product.Category,
		})
	}

	return s.persist(ctx)
}

// Decrement lowers the quantity of productID by one, removing the line when
// it reaches zero. Unknown ids are a no-op.
func (s *Store) Decrement(ctx context.Context, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(productID)
	if i < 0 {
		return nil
	}
	if s.items[i].Quantity > 1 {
		s.items[i].Quantity--
	} else {
		s.items = append(s.items[:i], s.items[i+1:]...)
	}

	return s.persist(ctx)
}

// Remove deletes the line for productID regardless of quantity. Unknown ids
// are a no-op.
func (s *Store) Remove(ctx context.Context, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(productID)
	if i < 0 {
		return nil
	}
	s.items = append(s.items[:i], s.items[i+1:]...)

	return s.persist(ctx)
}

// Clear empties the cart.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	return s.persist(ctx)
}

// Items returns a copy of the line items in insertion order.
func (s *Store) Items() []model.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshot()
}

// Summary is recomputed from the items on every call.
func (s *Store) Summary() model.CartSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	return model.Summarise(s.items)
}

// Checkout snapshots the items and hands them to submit. The cart is cleared
// only when submit succeeds; on failure it is left exactly as it was.
// An empty cart returns model.ErrEmptyCart without calling submit.
//
// The store stays locked for the duration of submit so no mutation can slip
// in between the snapshot and the clear.
func (s *Store) Checkout(ctx context.Context, submit SubmitFunc) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.items) == 0 {
		return "", model.ErrEmptyCart
	}

	orderID, err := submit(ctx, s.snapshot())
	if err != nil {
		return "", err
	}

	s.items = nil
	if err := s.persist(ctx); err != nil {
		// The order exists at this point; only the durable copy is stale.
		s.logger.Error().Err(err).Str("order_id", orderID).Msg("order placed but cart could not be cleared in storage")
	}

	return orderID, nil
}

func (s *Store) indexOf(productID string) int {
	for i, item := range s.items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

func (s *Store) snapshot() []model.LineItem {
	out := make([]model.LineItem, len(s.items))
	copy(out, s.items)
	return out
}

// persist writes the full item list. The in-memory state already reflects
// the mutation when this fails.
func (s *Store) persist(ctx context.Context) error {
	items := s.items
	if items == nil {
		items = []model.LineItem{}
	}
	raw, err := json.Marshal(record{Version: recordVersion, Items: items})
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	if err := s.storage.Set(ctx, s.key, raw); err != nil {
		s.logger.Error().Err(err).Msg("failed to persist cart")
		return fmt.Errorf("failed to persist cart: %w", err)
	}
	return nil
}
