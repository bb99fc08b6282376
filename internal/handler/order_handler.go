package handler

import (
	"net/http"
	"strings"

	"dulce-kart/internal/service"

	"github.com/rs/zerolog"
)

// OrderHandler handles order tracking HTTP requests.
type OrderHandler struct {
	service service.OrderService
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

// Track handles GET /api/orders/track. Without an id query parameter the
// caller's last placed order is shown.
func (h *OrderHandler) Track(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(r)
	if !ok {
		writeMissingSession(w, h.logger)
		return
	}

	orderID := strings.TrimSpace(r.URL.Query().Get("id"))
	view, err := h.service.Track(r.Context(), orderID, id.Scope())
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// History handles GET /api/orders.
func (h *OrderHandler) History(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.History(r.Context())
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}
