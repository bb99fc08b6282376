package tracking

import (
	"context"
	"errors"
	"strings"

	"dulce-kart/internal/model"

	"github.com/rs/zerolog"
)

// OrderFetcher reads orders from the order service.
type OrderFetcher interface {
	GetOrder(ctx context.Context, orderID string) (*model.Order, error)
	GetUserOrders(ctx context.Context) ([]model.Order, error)
}

// View is an order together with its tracking projection.
type View struct {
	Order    *model.Order `json:"order"`
	Timeline Timeline     `json:"timeline"`
}

// Summary is one entry of the order history.
type Summary struct {
	Order model.Order `json:"order"`
	Badge Badge       `json:"badge"`
}

// Tracker answers tracking queries. It never changes an order.
type Tracker struct {
	fetcher OrderFetcher
	cache   *LastOrderCache
	logger  zerolog.Logger
}

// NewTracker creates a tracker.
func NewTracker(fetcher OrderFetcher, cache *LastOrderCache, logger zerolog.Logger) *Tracker {
	return &Tracker{
		fetcher: fetcher,
		cache:   cache,
		logger:  logger.With().Str("component", "tracking").Logger(),
	}
}

// Track fetches an order and builds its timeline. An empty orderID falls
// back to the last order remembered for scope.
func (t *Tracker) Track(ctx context.Context, orderID, scope string) (*View, error) {
	orderID = strings.TrimSpace(orderID)
	remembered := false
	if orderID == "" {
		last, ok, err := t.cache.Last(ctx, scope)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, model.ErrOrderNotFound
		}
		orderID = last
		remembered = true
	}

	order, err := t.fetcher.GetOrder(ctx, orderID)
	if err != nil {
		if remembered && errors.Is(err, model.ErrOrderNotFound) {
			if forgetErr := t.cache.Forget(ctx, scope); forgetErr != nil {
				t.logger.Warn().Err(forgetErr).Str("scope", scope).Msg("failed to drop stale last order")
			}
		}
		return nil, err
	}

	timeline := BuildTimeline(order.Status)
	if timeline.Fallback {
		t.logger.Warn().
			Str("order_id", orderID).
			Str("status", order.Status).
			Msg("unknown order status, rendering as pending")
	}

	return &View{Order: order, Timeline: timeline}, nil
}

// History lists the caller's orders with their badges.
func (t *Tracker) History(ctx context.Context) ([]Summary, error) {
	orders, err := t.fetcher.GetUserOrders(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]Summary, 0, len(orders))
	for _, o := range orders {
		out = append(out, Summary{Order: o, Badge: BadgeFor(o.Status)})
	}
	return out, nil
}
