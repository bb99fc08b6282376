package model

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON        = "INVALID_JSON"
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeInvalidCoupon      = "INVALID_COUPON"
	ErrCodeProductNotFound    = "PRODUCT_NOT_FOUND"
	ErrCodeOrderNotFound      = "ORDER_NOT_FOUND"
	ErrCodeEmptyCart          = "EMPTY_CART"
	ErrCodeInvalidTransition  = "INVALID_TRANSITION"
	ErrCodeTermsNotAccepted   = "TERMS_NOT_ACCEPTED"
	ErrCodeUnauthorised       = "UNAUTHORIZED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeOrderService       = "ORDER_SERVICE_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	ErrCodeInternalError      = "INTERNAL_ERROR"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is matches domain errors by code so wrapped copies compare equal.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrProductNotFound         = NewDomainError(ErrCodeProductNotFound, "Product not found")
	ErrOrderNotFound           = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrEmptyCart               = NewDomainError(ErrCodeEmptyCart, "Cart is empty")
	ErrInvalidCoupon           = NewDomainError(ErrCodeInvalidCoupon, "Coupon code is not valid")
	ErrInvalidTransition       = NewDomainError(ErrCodeInvalidTransition, "Action not allowed at the current checkout stage")
	ErrTermsNotAccepted        = NewDomainError(ErrCodeTermsNotAccepted, "Terms and conditions must be accepted")
	ErrUnauthorised            = NewDomainError(ErrCodeUnauthorised, "Session expired, please log in again")
	ErrOrderServiceUnavailable = NewDomainError(ErrCodeServiceUnavailable, "Could not reach the order service, please try again")
)
