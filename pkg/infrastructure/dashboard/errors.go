package dashboard

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/felixgeelhaar/goalgenie/pkg/domain/goal"
	"github.com/felixgeelhaar/goalgenie/pkg/domain/planning"
)

// APIError is the error payload of every failed API call.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type apiErrorBody struct {
	Error APIError `json:"error"`
}

func writeJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(data)
}

func writeErr(w http.ResponseWriter, code int, errCode, message string, details any) {
	writeJSON(w, code, apiErrorBody{Error: APIError{Code: errCode, Message: message, Details: details}})
}

// writeDomainErr maps service errors onto status codes. Unexpected errors are
// logged and reported without their message.
func writeDomainErr(w http.ResponseWriter, logger *slog.Logger, err error) {
	var (
		verr     *goal.ValidationError
		conflict *planning.ConflictError
	)
	switch {
	case errors.As(err, &verr):
		writeErr(w, http.StatusBadRequest, "invalid_request", verr.Error(), verr.Fields)
	case errors.Is(err, goal.ErrInvalidRequest), errors.Is(err, planning.ErrInvalidKey):
		writeErr(w, http.StatusBadRequest, "invalid_request", err.Error(), nil)
	case errors.Is(err, goal.ErrNotFound):
		writeErr(w, http.StatusNotFound, "not_found", err.Error(), nil)
	case errors.Is(err, planning.ErrUnknownItem):
		writeErr(w, http.StatusNotFound, "unknown_item", err.Error(), nil)
	case errors.As(err, &conflict):
		writeErr(w, http.StatusConflict, "conflict", err.Error(), nil)
	default:
		logger.Error("request failed", "error", err)
		writeErr(w, http.StatusInternalServerError, "internal_error", "internal server error", nil)
	}
}

// statusFor returns the status writeDomainErr would use for err.
func statusFor(err error) int {
	var conflict *planning.ConflictError
	switch {
	case errors.Is(err, goal.ErrInvalidRequest), errors.Is(err, planning.ErrInvalidKey):
		return http.StatusBadRequest
	case errors.Is(err, goal.ErrNotFound), errors.Is(err, planning.ErrUnknownItem):
		return http.StatusNotFound
	case errors.As(err, &conflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
