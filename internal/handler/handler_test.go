package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"dulce-kart/internal/checkout"
	"dulce-kart/internal/model"
	"dulce-kart/internal/service"
	"dulce-kart/internal/session"
	"dulce-kart/internal/tracking"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testSessionID = "7b0e1c9a-51a4-4d5e-9a43-0f4c1f3e2a10"

// MockCartService is a mock implementation of CartService.
type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) cartResult(args mock.Arguments) (*service.CartView, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CartView), args.Error(1)
}

func (m *MockCartService) Get(ctx context.Context, sessionID string, preview service.QuotePreview) (*service.CartView, error) {
	return m.cartResult(m.Called(ctx, sessionID, preview))
}

func (m *MockCartService) AddItem(ctx context.Context, sessionID, productID string) (*service.CartView, error) {
	return m.cartResult(m.Called(ctx, sessionID, productID))
}

func (m *MockCartService) Decrement(ctx context.Context, sessionID, productID string) (*service.CartView, error) {
	return m.cartResult(m.Called(ctx, sessionID, productID))
}

func (m *MockCartService) RemoveItem(ctx context.Context, sessionID, productID string) (*service.CartView, error) {
	return m.cartResult(m.Called(ctx, sessionID, productID))
}

func (m *MockCartService) Clear(ctx context.Context, sessionID string) (*service.CartView, error) {
	return m.cartResult(m.Called(ctx, sessionID))
}

// MockCheckoutService is a mock implementation of CheckoutService.
type MockCheckoutService struct {
	mock.Mock
}

func (m *MockCheckoutService) viewResult(args mock.Arguments) (*checkout.View, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*checkout.View), args.Error(1)
}

func (m *MockCheckoutService) View(ctx context.Context, sessionID string) (*checkout.View, error) {
	return m.viewResult(m.Called(ctx, sessionID))
}

func (m *MockCheckoutService) SubmitIdentity(ctx context.Context, sessionID string, form checkout.IdentityForm) (*checkout.View, error) {
	return m.viewResult(m.Called(ctx, sessionID, form))
}

func (m *MockCheckoutService) SubmitDelivery(ctx context.Context, sessionID string, form checkout.DeliveryForm) (*checkout.View, error) {
	return m.viewResult(m.Called(ctx, sessionID, form))
}

func (m *MockCheckoutService) Back(ctx context.Context, sessionID string) (*checkout.View, error) {
	return m.viewResult(m.Called(ctx, sessionID))
}

func (m *MockCheckoutService) AcceptTerms(ctx context.Context, sessionID string, accepted bool) (*checkout.View, error) {
	return m.viewResult(m.Called(ctx, sessionID, accepted))
}

func (m *MockCheckoutService) ApplyCoupon(ctx context.Context, sessionID, code string) (*checkout.View, error) {
	return m.viewResult(m.Called(ctx, sessionID, code))
}

func (m *MockCheckoutService) Submit(ctx context.Context, sessionID string) (*checkout.View, error) {
	return m.viewResult(m.Called(ctx, sessionID))
}

func (m *MockCheckoutService) Reset(ctx context.Context, sessionID string) (*checkout.View, error) {
	return m.viewResult(m.Called(ctx, sessionID))
}

// MockOrderService is a mock implementation of OrderService.
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) Track(ctx context.Context, orderID, scope string) (*tracking.View, error) {
	args := m.Called(ctx, orderID, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tracking.View), args.Error(1)
}

func (m *MockOrderService) History(ctx context.Context) ([]tracking.Summary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]tracking.Summary), args.Error(1)
}

// newRequest builds a request carrying a session identity, as the session
// middleware would.
func newRequest(method, target, body string, id session.Identity) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if id.SessionID != "" {
		req = req.WithContext(session.WithIdentity(req.Context(), id))
	}
	return req
}

func anonymous() session.Identity {
	return session.Identity{SessionID: testSessionID}
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) model.ErrorResponse {
	t.Helper()
	var body model.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestErrorResponse(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"invalid json", model.NewDomainError(model.ErrCodeInvalidJSON, "bad"), http.StatusBadRequest, model.ErrCodeInvalidJSON},
		{"field errors", checkout.FieldErrors{"email": "is invalid"}, http.StatusUnprocessableEntity, model.ErrCodeValidation},
		{"invalid coupon", model.ErrInvalidCoupon, http.StatusUnprocessableEntity, model.ErrCodeInvalidCoupon},
		{"terms", model.ErrTermsNotAccepted, http.StatusUnprocessableEntity, model.ErrCodeTermsNotAccepted},
		{"product not found", model.ErrProductNotFound, http.StatusNotFound, model.ErrCodeProductNotFound},
		{"wrapped order not found", fmt.Errorf("track: %w", model.ErrOrderNotFound), http.StatusNotFound, model.ErrCodeOrderNotFound},
		{"empty cart", model.ErrEmptyCart, http.StatusConflict, model.ErrCodeEmptyCart},
		{"transition", model.ErrInvalidTransition, http.StatusConflict, model.ErrCodeInvalidTransition},
		{"unauthorised", model.ErrUnauthorised, http.StatusUnauthorized, model.ErrCodeUnauthorised},
		{"forbidden", model.NewDomainError(model.ErrCodeForbidden, "no"), http.StatusForbidden, model.ErrCodeForbidden},
		{"order service", model.NewDomainError(model.ErrCodeOrderService, "500"), http.StatusBadGateway, model.ErrCodeOrderService},
		{"unreachable", model.ErrOrderServiceUnavailable, http.StatusServiceUnavailable, model.ErrCodeServiceUnavailable},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, model.ErrCodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := errorResponse(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, body.Error)
		})
	}
}

func TestErrorResponse_PlainErrorHidesDetails(t *testing.T) {
	_, body := errorResponse(errors.New("pq: password authentication failed"))
	assert.Equal(t, "internal server error", body.Message)
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	tests := []struct {
		name       string
		body       string
		allowEmpty bool
		wantErr    bool
	}{
		{"valid", `{"name":"x"}`, false, false},
		{"unknown field", `{"name":"x","extra":1}`, false, true},
		{"malformed", `{"name":`, false, true},
		{"empty rejected", ``, false, true},
		{"empty allowed", ``, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var dest payload
			err := decodeJSON(req, &dest, tt.allowEmpty)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, model.NewDomainError(model.ErrCodeInvalidJSON, ""))
				return
			}
			require.NoError(t, err)
		})
	}
}

// countingReader records how many bytes were read from it.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

func TestDecodeJSON_ReadsAtMostLimit(t *testing.T) {
	payload := `{"productId":"torta-tres-leches"}` + strings.Repeat(" ", 10*maxBodyBytes)
	body := &countingReader{r: strings.NewReader(payload)}
	req := httptest.NewRequest(http.MethodPost, "/api/cart/items", body)

	var dest addItemRequest
	require.NoError(t, decodeJSON(req, &dest, false))

	assert.Equal(t, "torta-tres-leches", dest.ProductID)
	assert.LessOrEqual(t, body.n, int64(maxBodyBytes))
}

func TestValidateRequest_SharesCheckoutValidator(t *testing.T) {
	type contact struct {
		Phone string `json:"phone" validate:"cl_mobile"`
	}

	fields, ok := checkout.IsFieldErrors(validateRequest(&contact{Phone: "123"}))
	require.True(t, ok)
	assert.Equal(t, "is invalid", fields["phone"])
	assert.NoError(t, validateRequest(&contact{Phone: "+56 9 1234 5678"}))
}

func TestValidateRequest(t *testing.T) {
	err := validateRequest(&addItemRequest{})
	fields, ok := checkout.IsFieldErrors(err)
	require.True(t, ok)
	assert.Equal(t, "is required", fields["productId"])

	err = validateRequest(&addItemRequest{ProductID: strings.Repeat("x", 101)})
	fields, ok = checkout.IsFieldErrors(err)
	require.True(t, ok)
	assert.Equal(t, "must be at most 100 characters", fields["productId"])

	assert.NoError(t, validateRequest(&addItemRequest{ProductID: "P001"}))
}
