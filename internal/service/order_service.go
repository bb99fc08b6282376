package service

import (
	"context"

	"dulce-kart/internal/metrics"
	"dulce-kart/internal/tracking"

	"github.com/rs/zerolog"
)

// orderService implements OrderService on top of the tracker.
type orderService struct {
	tracker *tracking.Tracker
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewOrderService creates a new order tracking service.
func NewOrderService(tracker *tracking.Tracker, m *metrics.Metrics, logger zerolog.Logger) OrderService {
	return &orderService{
		tracker: tracker,
		metrics: m,
		logger:  logger.With().Str("service", "order").Logger(),
	}
}

// Track returns the tracking view of an order.
func (s *orderService) Track(ctx context.Context, orderID, scope string) (*tracking.View, error) {
	view, err := s.tracker.Track(ctx, orderID, scope)
	s.metrics.IncTrackingFetch(err)
	if err != nil {
		s.logger.Debug().Err(err).Str("order_id", orderID).Str("scope", scope).Msg("order tracking failed")
		return nil, err
	}
	return view, nil
}

// History lists the caller's orders.
func (s *orderService) History(ctx context.Context) ([]tracking.Summary, error) {
	history, err := s.tracker.History(ctx)
	s.metrics.IncTrackingFetch(err)
	if err != nil {
		s.logger.Debug().Err(err).Msg("order history failed")
		return nil, err
	}
	return history, nil
}
