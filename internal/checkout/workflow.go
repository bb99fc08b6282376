// Package checkout implements the checkout wizard of a single session.
package checkout

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"dulce-kart/internal/cart"
	"dulce-kart/internal/coupon"
	"dulce-kart/internal/model"
	"dulce-kart/internal/pricing"
	"dulce-kart/internal/session"

	"github.com/rs/zerolog"
)

// OrderCreator places orders with the external order service.
type OrderCreator interface {
	CreateOrder(ctx context.Context, req *model.CreateOrderRequest) (*model.CreateOrderResponse, error)
}

// LastOrderRecorder remembers the most recent order of a user scope.
type LastOrderRecorder interface {
	Remember(ctx context.Context, scope, orderID string) error
}

// Deps are the collaborators shared by every workflow.
type Deps struct {
	Orders     OrderCreator
	Pricing    *pricing.Calculator
	LastOrders LastOrderRecorder
	Location   *time.Location
	Now        func() time.Time
	Logger     zerolog.Logger
}

// View is a read-only snapshot of a workflow.
type View struct {
	Stage         Stage             `json:"stage"`
	Identity      IdentityForm      `json:"identity"`
	Delivery      DeliveryForm      `json:"delivery"`
	TermsAccepted bool              `json:"termsAccepted"`
	CouponCode    string            `json:"couponCode,omitempty"`
	Errors        FieldErrors       `json:"errors,omitempty"`
	SubmitError   string            `json:"submitError,omitempty"`
	OrderID       string            `json:"orderId,omitempty"`
	Items         []model.LineItem  `json:"items"`
	Totals        model.OrderTotals `json:"totals"`
}

// Workflow drives one session through Identity, Delivery, Confirm and
// Success. Every method is safe for concurrent use.
type Workflow struct {
	mu sync.Mutex

	stage         Stage
	identity      IdentityForm
	delivery      DeliveryForm
	termsAccepted bool
	couponCode    string
	errors        FieldErrors
	submitErr     string
	orderID       string

	cart *cart.Store
	deps Deps
	log  zerolog.Logger
}

// New starts a workflow in the Identity stage over the given cart.
func New(c *cart.Store, deps Deps) *Workflow {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Location == nil {
		deps.Location = time.UTC
	}
	return &Workflow{
		stage: StageIdentity,
		cart:  c,
		deps:  deps,
		log:   deps.Logger.With().Str("component", "checkout").Logger(),
	}
}

// Stage returns the current stage.
func (w *Workflow) Stage() Stage {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stage
}

// SubmitIdentity stores the form and advances to Delivery when it is valid.
// The form is kept even when validation fails.
func (w *Workflow) SubmitIdentity(form IdentityForm) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stage != StageIdentity {
		return model.ErrInvalidTransition
	}

	w.identity = form.normalised()
	if errs := ValidateIdentity(w.identity); errs != nil {
		w.errors = errs
		return errs
	}

	w.errors = nil
	w.stage = next[StageIdentity]
	return nil
}

// SubmitDelivery stores the form and advances to Confirm when it is valid.
// An empty payment method defaults to transferencia.
func (w *Workflow) SubmitDelivery(form DeliveryForm) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stage != StageDelivery {
		return model.ErrInvalidTransition
	}

	form = form.normalised()
	if form.PaymentMethod == "" {
		form.PaymentMethod = model.PaymentMethodTransfer
	}
	w.delivery = form

	if errs := ValidateDelivery(form, w.deps.Now(), w.deps.Location); errs != nil {
		w.errors = errs
		return errs
	}

	w.errors = nil
	w.stage = next[StageDelivery]
	return nil
}

// Back moves one stage backwards without validating. It is a no-op in
// Identity and rejected once the order has been placed.
func (w *Workflow) Back() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stage.IsTerminal() {
		return model.ErrInvalidTransition
	}
	if prev, ok := previous[w.stage]; ok {
		w.stage = prev
		w.errors = nil
		w.submitErr = ""
	}
	return nil
}

// AcceptTerms records the terms checkbox.
func (w *Workflow) AcceptTerms(accepted bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stage != StageConfirm {
		return model.ErrInvalidTransition
	}
	w.termsAccepted = accepted
	if accepted {
		delete(w.errors, "terms")
	}
	return nil
}

// ApplyCoupon sets the coupon used for the quote. An empty code removes the
// coupon. An unknown code returns FieldErrors for "couponCode" and leaves
// no coupon applied; it never blocks progression.
func (w *Workflow) ApplyCoupon(code string) (model.OrderTotals, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stage.IsTerminal() {
		return model.OrderTotals{}, model.ErrInvalidTransition
	}

	code = coupon.NormaliseCode(code)
	w.couponCode = ""
	delete(w.errors, "couponCode")

	var err error
	switch {
	case code == "":
	case w.deps.Pricing.CouponValid(code):
		w.couponCode = code
	default:
		msg := "is not a valid coupon"
		if w.errors == nil {
			w.errors = FieldErrors{}
		}
		w.errors["couponCode"] = msg
		err = FieldErrors{"couponCode": msg}
	}

	return w.quote(w.cart.Items()), err
}

// Quote prices the current cart with the entered comuna and coupon.
func (w *Workflow) Quote() model.OrderTotals {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.quote(w.cart.Items())
}

// Submit places the order. The terms must be accepted and the cart must not
// be empty. On failure the workflow stays in Confirm so the user can retry;
// on success the cart is cleared and the order becomes the scope's last
// order.
func (w *Workflow) Submit(ctx context.Context) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stage != StageConfirm {
		return "", model.ErrInvalidTransition
	}
	if !w.termsAccepted {
		if w.errors == nil {
			w.errors = FieldErrors{}
		}
		w.errors["terms"] = "must be accepted"
		return "", model.ErrTermsNotAccepted
	}

	orderID, err := w.cart.Checkout(ctx, func(ctx context.Context, snapshot []model.LineItem) (string, error) {
		resp, err := w.deps.Orders.CreateOrder(ctx, w.orderRequest(snapshot))
		if err != nil {
			return "", err
		}
		return resp.OrderID, nil
	})
	if err != nil {
		w.submitErr = err.Error()
		w.log.Warn().Err(err).Msg("order submission failed")
		return "", err
	}

	w.stage = next[StageConfirm]
	w.orderID = orderID
	w.submitErr = ""
	w.errors = nil
	w.log.Info().Str("order_id", orderID).Msg("order placed")

	w.rememberOrder(ctx, orderID)
	return orderID, nil
}

// Reset starts a fresh checkout.
func (w *Workflow) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.stage = StageIdentity
	w.identity = IdentityForm{}
	w.delivery = DeliveryForm{}
	w.termsAccepted = false
	w.couponCode = ""
	w.errors = nil
	w.submitErr = ""
	w.orderID = ""
}

// View returns a snapshot of the workflow including a fresh quote.
func (w *Workflow) View() View {
	w.mu.Lock()
	defer w.mu.Unlock()

	items := w.cart.Items()
	v := View{
		Stage:         w.stage,
		Identity:      w.identity,
		Delivery:      w.delivery,
		TermsAccepted: w.termsAccepted,
		CouponCode:    w.couponCode,
		SubmitError:   w.submitErr,
		OrderID:       w.orderID,
		Items:         items,
		Totals:        w.quote(items),
	}
	if len(w.errors) > 0 {
		v.Errors = make(FieldErrors, len(w.errors))
		for k, msg := range w.errors {
			v.Errors[k] = msg
		}
	}
	return v
}

func (w *Workflow) quote(items []model.LineItem) model.OrderTotals {
	return w.deps.Pricing.CalcOrderTotal(items, pricing.Options{
		Zone:       w.deliveryZone(),
		CouponCode: w.couponCode,
	})
}

// deliveryZone is the comuna used for pricing. Before the Delivery stage is
// passed an empty comuna means no fee yet; afterwards the order is a real
// delivery and an empty comuna is charged as ZoneOther.
func (w *Workflow) deliveryZone() string {
	zone := strings.TrimSpace(w.delivery.Comuna)
	if zone == "" && (w.stage == StageConfirm || w.stage == StageSuccess) {
		return pricing.ZoneOther
	}
	return zone
}

func (w *Workflow) orderRequest(snapshot []model.LineItem) *model.CreateOrderRequest {
	req := &model.CreateOrderRequest{
		Items:         snapshot,
		Customer:      w.identity.Customer(),
		Delivery:      w.delivery.Delivery(),
		PaymentMethod: w.delivery.PaymentMethod,
		Totals:        w.quote(snapshot),
	}
	if w.couponCode != "" {
		code := w.couponCode
		req.CouponCode = &code
	}
	return req
}

func (w *Workflow) rememberOrder(ctx context.Context, orderID string) {
	if w.deps.LastOrders == nil {
		return
	}
	id, ok := session.FromContext(ctx)
	if !ok {
		w.log.Warn().Str("order_id", orderID).Msg("no session identity, last order not recorded")
		return
	}
	if err := w.deps.LastOrders.Remember(ctx, id.Scope(), orderID); err != nil {
		w.log.Error().Err(err).Str("order_id", orderID).Msg("failed to record last order")
	}
}

// IsFieldErrors reports whether err carries field-level validation errors
// and returns them.
func IsFieldErrors(err error) (FieldErrors, bool) {
	var fe FieldErrors
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}
