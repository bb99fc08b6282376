package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"dulce-kart/internal/checkout"
	"dulce-kart/internal/model"
	"dulce-kart/internal/session"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// maxBodyBytes caps request bodies; every payload here is a small form.
const maxBodyBytes = 64 << 10

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are already sent; nothing useful left to tell the client.
		return
	}
}

// writeError writes an error response with the given status code, code and
// message.
func writeError(w http.ResponseWriter, status int, code, message string, logger zerolog.Logger) {
	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Str("code", code).Int("status", status).Msg(message)
	writeJSON(w, status, model.ErrorResponse{Error: code, Message: message})
}

// errorResponse converts err into its HTTP status and body.
func errorResponse(err error) (int, model.ErrorResponse) {
	if fieldErrs, ok := checkout.IsFieldErrors(err); ok {
		return http.StatusUnprocessableEntity, model.ErrorResponse{
			Error:   model.ErrCodeValidation,
			Message: "validation failed",
			Fields:  fieldErrs,
		}
	}

	var domainErr *model.DomainError
	if !errors.As(err, &domainErr) {
		return http.StatusInternalServerError, model.ErrorResponse{
			Error:   model.ErrCodeInternalError,
			Message: "internal server error",
		}
	}

	return statusForCode(domainErr.Code), model.ErrorResponse{
		Error:   domainErr.Code,
		Message: domainErr.Message,
	}
}

func statusForCode(code string) int {
	switch code {
	case model.ErrCodeInvalidJSON:
		return http.StatusBadRequest
	case model.ErrCodeValidation, model.ErrCodeInvalidCoupon, model.ErrCodeTermsNotAccepted:
		return http.StatusUnprocessableEntity
	case model.ErrCodeProductNotFound, model.ErrCodeOrderNotFound:
		return http.StatusNotFound
	case model.ErrCodeEmptyCart, model.ErrCodeInvalidTransition:
		return http.StatusConflict
	case model.ErrCodeUnauthorised:
		return http.StatusUnauthorized
	case model.ErrCodeForbidden:
		return http.StatusForbidden
	case model.ErrCodeOrderService:
		return http.StatusBadGateway
	case model.ErrCodeServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeDomainError maps err to a status code and writes it.
func writeDomainError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	status, body := errorResponse(err)
	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Err(err).Str("code", body.Error).Int("status", status).Msg("request failed")
	writeJSON(w, status, body)
}

// decodeJSON reads a JSON body into dest. An empty body is accepted when
// allowEmpty is set.
func decodeJSON(r *http.Request, dest any, allowEmpty bool) error {
	body := io.LimitReader(r.Body, maxBodyBytes)
	defer func() {
		_, _ = io.Copy(io.Discard, body)
	}()

	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		if !(allowEmpty && errors.Is(err, io.EOF)) {
			return model.NewDomainError(model.ErrCodeInvalidJSON, fmt.Sprintf("invalid request body: %v", err))
		}
	}
	return nil
}

// validateRequest checks the struct tags of a request body. Checkout forms
// are validated by the workflow instead.
func validateRequest(dest any) error {
	if err := checkout.Validator().Struct(dest); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			fields := checkout.FieldErrors{}
			for _, fe := range validationErrs {
				fields[fe.Field()] = validationMessage(fe)
			}
			return fields
		}
		return model.NewDomainError(model.ErrCodeValidation, err.Error())
	}
	return nil
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	}
	return "is invalid"
}

// identity returns the caller identity attached by the session middleware.
func identity(r *http.Request) (session.Identity, bool) {
	id, ok := session.FromContext(r.Context())
	if !ok || id.SessionID == "" {
		return session.Identity{}, false
	}
	return id, true
}

func writeMissingSession(w http.ResponseWriter, logger zerolog.Logger) {
	writeError(w, http.StatusBadRequest, model.ErrCodeValidation, "session identifier is required", logger)
}
