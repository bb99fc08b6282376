package service

import (
	"context"
	"strings"

	"dulce-kart/internal/cart"
	"dulce-kart/internal/metrics"
	"dulce-kart/internal/model"
	"dulce-kart/internal/pricing"

	"github.com/rs/zerolog"
)

// QuotePreview carries the optional inputs of a cart price preview.
type QuotePreview struct {
	Zone       string
	CouponCode string
}

// CartView is the cart as shown to the shopper.
type CartView struct {
	Items   []model.LineItem  `json:"items"`
	Summary model.CartSummary `json:"summary"`
	Totals  model.OrderTotals `json:"totals"`

	// CouponRejected is set when a preview coupon was given but is unknown.
	CouponRejected bool `json:"couponRejected,omitempty"`

	// ZoneFallback is set when a preview zone is not in the fee table and
	// the default fee was charged.
	ZoneFallback bool `json:"zoneFallback,omitempty"`

	// Persisted is false when the last mutation could not be written to
	// durable storage. The change still holds for this instance.
	Persisted bool `json:"persisted"`
}

// cartService implements CartService.
type cartService struct {
	sessions *SessionRegistry
	products ProductService
	pricing  *pricing.Calculator
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(
	sessions *SessionRegistry,
	products ProductService,
	calculator *pricing.Calculator,
	m *metrics.Metrics,
	logger zerolog.Logger,
) CartService {
	return &cartService{
		sessions: sessions,
		products: products,
		pricing:  calculator,
		metrics:  m,
		logger:   logger.With().Str("service", "cart").Logger(),
	}
}

// Get returns the cart with a price preview.
func (s *cartService) Get(ctx context.Context, sessionID string, preview QuotePreview) (*CartView, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.view(sess.Cart, preview, nil), nil
}

// AddItem looks the product up in the catalog and adds one unit of it.
func (s *cartService) AddItem(ctx context.Context, sessionID, productID string) (*CartView, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		s.metrics.IncCartMutation("add", err)
		return nil, err
	}

	return s.mutate(ctx, sessionID, "add", func(c *cart.Store) error {
		return c.Add(ctx, *product)
	})
}

// Decrement removes one unit of productID.
func (s *cartService) Decrement(ctx context.Context, sessionID, productID string) (*CartView, error) {
	return s.mutate(ctx, sessionID, "decrement", func(c *cart.Store) error {
		return c.Decrement(ctx, strings.TrimSpace(productID))
	})
}

// RemoveItem drops the line of productID.
func (s *cartService) RemoveItem(ctx context.Context, sessionID, productID string) (*CartView, error) {
	return s.mutate(ctx, sessionID, "remove", func(c *cart.Store) error {
		return c.Remove(ctx, strings.TrimSpace(productID))
	})
}

// Clear empties the cart.
func (s *cartService) Clear(ctx context.Context, sessionID string) (*CartView, error) {
	return s.mutate(ctx, sessionID, "clear", func(c *cart.Store) error {
		return c.Clear(ctx)
	})
}

// mutate applies fn to the session cart. A storage failure does not fail
// the call; it is reported through CartView.Persisted.
func (s *cartService) mutate(ctx context.Context, sessionID, op string, fn func(*cart.Store) error) (*CartView, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		s.metrics.IncCartMutation(op, err)
		return nil, err
	}

	persistErr := fn(sess.Cart)
	s.metrics.IncCartMutation(op, persistErr)
	if persistErr != nil {
		s.logger.Warn().
			Err(persistErr).
			Str("session_id", sessionID).
			Str("operation", op).
			Msg("cart change kept in memory only")
	}

	return s.view(sess.Cart, QuotePreview{}, persistErr), nil
}

func (s *cartService) view(c *cart.Store, preview QuotePreview, persistErr error) *CartView {
	items := c.Items()
	v := &CartView{
		Items:   items,
		Summary: model.Summarise(items),
		Totals: s.pricing.CalcOrderTotal(items, pricing.Options{
			Zone:       preview.Zone,
			CouponCode: preview.CouponCode,
		}),
		Persisted: persistErr == nil,
	}
	if strings.TrimSpace(preview.CouponCode) != "" && !v.Totals.CouponApplied {
		v.CouponRejected = true
	}
	if strings.TrimSpace(preview.Zone) != "" && !s.pricing.KnownZone(preview.Zone) {
		v.ZoneFallback = true
	}
	return v
}
