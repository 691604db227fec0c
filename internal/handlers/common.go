package handlers

import (
	"errors"
	"net/http"

	"sevagan-backend/internal/services"
	"sevagan-backend/internal/validation"

	"github.com/goccy/go-json"
)

// Error codes returned in ErrorResponse.Code
const (
	CodeNotAuthorized   = "NOT_AUTHORIZED"
	CodeNotFound        = "NOT_FOUND"
	CodeInvalidOtp      = "INVALID_OTP"
	CodeOtpExpired      = "OTP_EXPIRED"
	CodeNoOtpRequested  = "NO_OTP_REQUESTED"
	CodeTooManyAttempts = "TOO_MANY_ATTEMPTS"
	CodeValidation      = "VALIDATION_ERROR"
	CodeInternal        = "INTERNAL_ERROR"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error  string                  `json:"error"`
	Code   string                  `json:"code"`
	Fields []validation.FieldError `json:"fields,omitempty"`
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message, code string, statusCode int) {
	respondJSON(w, statusCode, ErrorResponse{Error: message, Code: code})
}

// respondJSON sends v as a JSON body
func respondJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

// decodeJSON reads the request body into v
func decodeJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// respondServiceError maps a service error to its HTTP status
func respondServiceError(w http.ResponseWriter, err error) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: verr.Error(), Code: CodeValidation, Fields: verr.Fields})
	case errors.Is(err, services.ErrNotAuthorized):
		respondError(w, "Not authorized", CodeNotAuthorized, http.StatusUnauthorized)
	case errors.Is(err, services.ErrNotFound):
		respondError(w, err.Error(), CodeNotFound, http.StatusNotFound)
	case errors.Is(err, services.ErrNoOtpRequested):
		respondError(w, "No OTP requested", CodeNoOtpRequested, http.StatusBadRequest)
	case errors.Is(err, services.ErrOtpExpired):
		respondError(w, "OTP expired", CodeOtpExpired, http.StatusBadRequest)
	case errors.Is(err, services.ErrInvalidOtp):
		respondError(w, "Invalid OTP", CodeInvalidOtp, http.StatusBadRequest)
	case errors.Is(err, services.ErrTooManyAttempts):
		respondError(w, "Too many attempts, request a new OTP", CodeTooManyAttempts, http.StatusTooManyRequests)
	default:
		respondError(w, "Internal server error", CodeInternal, http.StatusInternalServerError)
	}
}
