package service

import (
	"context"
	"errors"

	"dulce-kart/internal/checkout"
	"dulce-kart/internal/metrics"
	"dulce-kart/internal/model"
	"dulce-kart/internal/orderclient"

	"github.com/rs/zerolog"
)

// checkoutService implements CheckoutService.
type checkoutService struct {
	sessions *SessionRegistry
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(sessions *SessionRegistry, m *metrics.Metrics, logger zerolog.Logger) CheckoutService {
	return &checkoutService{
		sessions: sessions,
		metrics:  m,
		logger:   logger.With().Str("service", "checkout").Logger(),
	}
}

// View returns the current checkout state.
func (s *checkoutService) View(ctx context.Context, sessionID string) (*checkout.View, error) {
	return s.do(ctx, sessionID, func(w *checkout.Workflow) error { return nil })
}

// SubmitIdentity submits the Identity stage.
func (s *checkoutService) SubmitIdentity(ctx context.Context, sessionID string, form checkout.IdentityForm) (*checkout.View, error) {
	return s.do(ctx, sessionID, func(w *checkout.Workflow) error {
		return w.SubmitIdentity(form)
	})
}

// SubmitDelivery submits the Delivery stage.
func (s *checkoutService) SubmitDelivery(ctx context.Context, sessionID string, form checkout.DeliveryForm) (*checkout.View, error) {
	return s.do(ctx, sessionID, func(w *checkout.Workflow) error {
		return w.SubmitDelivery(form)
	})
}

// Back moves one stage backwards.
func (s *checkoutService) Back(ctx context.Context, sessionID string) (*checkout.View, error) {
	return s.do(ctx, sessionID, func(w *checkout.Workflow) error {
		return w.Back()
	})
}

// AcceptTerms records the terms checkbox.
func (s *checkoutService) AcceptTerms(ctx context.Context, sessionID string, accepted bool) (*checkout.View, error) {
	return s.do(ctx, sessionID, func(w *checkout.Workflow) error {
		return w.AcceptTerms(accepted)
	})
}

// ApplyCoupon sets or clears the checkout coupon.
func (s *checkoutService) ApplyCoupon(ctx context.Context, sessionID, code string) (*checkout.View, error) {
	return s.do(ctx, sessionID, func(w *checkout.Workflow) error {
		_, err := w.ApplyCoupon(code)
		return err
	})
}

// Submit places the order with the order service.
func (s *checkoutService) Submit(ctx context.Context, sessionID string) (*checkout.View, error) {
	return s.do(ctx, sessionID, func(w *checkout.Workflow) error {
		orderID, err := w.Submit(ctx)
		if errors.Is(err, model.ErrInvalidTransition) {
			return err
		}
		s.metrics.IncCheckoutSubmission(err)
		if err != nil {
			s.logger.Warn().
				Err(err).
				Str("session_id", sessionID).
				Bool("retryable", orderclient.IsRetryable(err)).
				Msg("checkout submission failed")
			return err
		}
		s.logger.Info().Str("session_id", sessionID).Str("order_id", orderID).Msg("checkout completed")
		return nil
	})
}

// Reset starts a new checkout.
func (s *checkoutService) Reset(ctx context.Context, sessionID string) (*checkout.View, error) {
	return s.do(ctx, sessionID, func(w *checkout.Workflow) error {
		w.Reset()
		return nil
	})
}

func (s *checkoutService) do(ctx context.Context, sessionID string, fn func(*checkout.Workflow) error) (*checkout.View, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	actionErr := fn(sess.Checkout)
	view := sess.Checkout.View()
	return &view, actionErr
}
