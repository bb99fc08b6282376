// Package metrics exposes the storefront's Prometheus collectors.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "dulcekart"

// Result label values.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Metrics records HTTP traffic and cart/checkout/tracking activity. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	httpRequests        *prometheus.CounterVec
	httpDuration        *prometheus.HistogramVec
	cartMutations       *prometheus.CounterVec
	checkoutSubmissions *prometheus.CounterVec
	trackingFetches     *prometheus.CounterVec
}

// New registers the collectors on reg. A nil registerer yields a Metrics
// that records nothing.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return &Metrics{}
	}
	m := &Metrics{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		cartMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_mutations_total",
			Help:      "Cart mutations by operation and result.",
		}, []string{"operation", "result"}),
		checkoutSubmissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_submissions_total",
			Help:      "Order submissions by result.",
		}, []string{"result"}),
		trackingFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tracking_fetches_total",
			Help:      "Order status fetches by result.",
		}, []string{"result"}),
	}
	reg.MustRegister(m.httpRequests, m.httpDuration, m.cartMutations, m.checkoutSubmissions, m.trackingFetches)
	return m
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(method, route string, status int, duration time.Duration) {
	if m == nil || m.httpRequests == nil {
		return
	}
	route = normalizeLabel(route)
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// IncCartMutation counts a cart operation.
func (m *Metrics) IncCartMutation(operation string, err error) {
	if m == nil || m.cartMutations == nil {
		return
	}
	m.cartMutations.WithLabelValues(normalizeLabel(operation), result(err)).Inc()
}

// IncCheckoutSubmission counts an order submission attempt.
func (m *Metrics) IncCheckoutSubmission(err error) {
	if m == nil || m.checkoutSubmissions == nil {
		return
	}
	m.checkoutSubmissions.WithLabelValues(result(err)).Inc()
}

// IncTrackingFetch counts an order status fetch.
func (m *Metrics) IncTrackingFetch(err error) {
	if m == nil || m.trackingFetches == nil {
		return
	}
	m.trackingFetches.WithLabelValues(result(err)).Inc()
}

func result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultOK
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
