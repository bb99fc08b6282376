package handler

import (
	"context"
	"net/http"
	"strings"

	"dulce-kart/internal/model"
	"dulce-kart/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

type addItemRequest struct {
	ProductID string `json:"productId" validate:"required,max=100"`
}

// CartHandler handles cart HTTP requests.
type CartHandler struct {
	service service.CartService
	logger  zerolog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(service service.CartService, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		service: service,
		logger:  logger.With().Str("handler", "cart").Logger(),
	}
}

// Get handles GET /api/cart. Optional zone and coupon query parameters add
// a delivery fee and discount to the preview.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(r)
	if !ok {
		writeMissingSession(w, h.logger)
		return
	}

	view, err := h.service.Get(r.Context(), id.SessionID, service.QuotePreview{
		Zone:       r.URL.Query().Get("zone"),
		CouponCode: r.URL.Query().Get("coupon"),
	})
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// AddItem handles POST /api/cart/items.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(r)
	if !ok {
		writeMissingSession(w, h.logger)
		return
	}

	var req addItemRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}
	req.ProductID = strings.TrimSpace(req.ProductID)
	if err := validateRequest(&req); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	view, err := h.service.AddItem(r.Context(), id.SessionID, req.ProductID)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// Decrement handles POST /api/cart/items/{id}/decrement.
func (h *CartHandler) Decrement(w http.ResponseWriter, r *http.Request) {
	h.mutateItem(w, r, h.service.Decrement)
}

// Remove handles DELETE /api/cart/items/{id}.
func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	h.mutateItem(w, r, h.service.RemoveItem)
}

// Clear handles DELETE /api/cart.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(r)
	if !ok {
		writeMissingSession(w, h.logger)
		return
	}

	view, err := h.service.Clear(r.Context(), id.SessionID)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

type itemMutation func(ctx context.Context, sessionID, productID string) (*service.CartView, error)

func (h *CartHandler) mutateItem(w http.ResponseWriter, r *http.Request, fn itemMutation) {
	id, ok := identity(r)
	if !ok {
		writeMissingSession(w, h.logger)
		return
	}

	productID := strings.TrimSpace(chi.URLParam(r, "id"))
	if productID == "" {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidation, "product ID is required", h.logger)
		return
	}

	view, err := fn(r.Context(), id.SessionID, productID)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, view)
}
