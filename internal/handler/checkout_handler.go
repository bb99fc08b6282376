package handler

import (
	"context"
	"net/http"

	"dulce-kart/internal/checkout"
	"dulce-kart/internal/service"

	"github.com/rs/zerolog"
)

type termsRequest struct {
	Accepted bool `json:"accepted"`
}

type couponRequest struct {
	Code string `json:"code" validate:"max=40"`
}

// checkoutResponse pairs a rejected action with the state the wizard kept,
// so the client can redraw the form with its input and field errors.
type checkoutResponse struct {
	Error    string            `json:"error"`
	Message  string            `json:"message"`
	Fields   map[string]string `json:"fields,omitempty"`
	Checkout *checkout.View    `json:"checkout,omitempty"`
}

// CheckoutHandler handles the checkout wizard HTTP requests.
type CheckoutHandler struct {
	service service.CheckoutService
	logger  zerolog.Logger
}

// NewCheckoutHandler creates a new checkout handler.
func NewCheckoutHandler(service service.CheckoutService, logger zerolog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service: service,
		logger:  logger.With().Str("handler", "checkout").Logger(),
	}
}

// View handles GET /api/checkout.
func (h *CheckoutHandler) View(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, h.service.View)
}

// Identity handles POST /api/checkout/identity.
func (h *CheckoutHandler) Identity(w http.ResponseWriter, r *http.Request) {
	var form checkout.IdentityForm
	if err := decodeJSON(r, &form, false); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}
	h.run(w, r, func(ctx context.Context, sid string) (*checkout.View, error) {
		return h.service.SubmitIdentity(ctx, sid, form)
	})
}

// Delivery handles POST /api/checkout/delivery.
func (h *CheckoutHandler) Delivery(w http.ResponseWriter, r *http.Request) {
	var form checkout.DeliveryForm
	if err := decodeJSON(r, &form, false); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}
	h.run(w, r, func(ctx context.Context, sid string) (*checkout.View, error) {
		return h.service.SubmitDelivery(ctx, sid, form)
	})
}

// Back handles POST /api/checkout/back.
func (h *CheckoutHandler) Back(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, h.service.Back)
}

// Terms handles POST /api/checkout/terms.
func (h *CheckoutHandler) Terms(w http.ResponseWriter, r *http.Request) {
	var req termsRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}
	h.run(w, r, func(ctx context.Context, sid string) (*checkout.View, error) {
		return h.service.AcceptTerms(ctx, sid, req.Accepted)
	})
}

// Coupon handles POST /api/checkout/coupon. An empty code removes the
// applied coupon.
func (h *CheckoutHandler) Coupon(w http.ResponseWriter, r *http.Request) {
	var req couponRequest
	if err := decodeJSON(r, &req, true); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}
	if err := validateRequest(&req); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}
	h.run(w, r, func(ctx context.Context, sid string) (*checkout.View, error) {
		return h.service.ApplyCoupon(ctx, sid, req.Code)
	})
}

// Submit handles POST /api/checkout/submit.
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, h.service.Submit)
}

// Reset handles POST /api/checkout/reset.
func (h *CheckoutHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, h.service.Reset)
}

func (h *CheckoutHandler) run(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, sessionID string) (*checkout.View, error)) {
	id, ok := identity(r)
	if !ok {
		writeMissingSession(w, h.logger)
		return
	}

	view, err := fn(r.Context(), id.SessionID)
	if err == nil {
		writeJSON(w, http.StatusOK, view)
		return
	}
	if view == nil {
		writeDomainError(w, err, h.logger)
		return
	}

	status, body := errorResponse(err)
	h.logger.Warn().Err(err).
		Str("code", body.Error).
		Str("stage", view.Stage.String()).
		Int("status", status).
		Msg("checkout action rejected")
	writeJSON(w, status, checkoutResponse{
		Error:    body.Error,
		Message:  body.Message,
		Fields:   body.Fields,
		Checkout: view,
	})
}
