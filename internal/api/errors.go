package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nerrad567/alphasign-core/internal/sign"
)

// Error represents a structured error response.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Common error codes.
const (
	ErrCodeBadRequest      = "bad_request"
	ErrCodeNotFound        = "not_found"
	ErrCodeUnauthorized    = "unauthorised"
	ErrCodeForbidden       = "forbidden"
	ErrCodeInternal        = "internal_error"
	ErrCodeSignUnreachable = "sign_unreachable"
	ErrCodeNoReply         = "no_reply"
	ErrCodeBadReply        = "bad_reply"
	ErrCodeUnavailable     = "unavailable"
)

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{
		Status:  status,
		Code:    code,
		Message: message,
	})
}

// writeBadRequest writes a 400 error response.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// writeUnauthorized writes a 401 error response.
func writeUnauthorized(w http.ResponseWriter, message string) {
	writeError(w, http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

// writeForbidden writes a 403 error response.
func writeForbidden(w http.ResponseWriter, message string) {
	writeError(w, http.StatusForbidden, ErrCodeForbidden, message)
}

// writeInternalError writes a 500 error response.
func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}

// writeSignError maps an error from building or sending a sign command
// to a response. Parameter problems are the caller's fault; everything
// else is reported as a failed send.
func writeSignError(w http.ResponseWriter, prefix string, err error) {
	switch {
	case errors.Is(err, sign.ErrEmptyMessage):
		writeBadRequest(w, "Missing 'msg' parameter")
	case errors.Is(err, sign.ErrInvalidParameter):
		writeBadRequest(w, prefix+": "+err.Error())
	case errors.Is(err, sign.ErrNoReply):
		writeError(w, http.StatusGatewayTimeout, ErrCodeNoReply, prefix+": "+err.Error())
	case errors.Is(err, sign.ErrBadReply):
		writeError(w, http.StatusBadGateway, ErrCodeBadReply, prefix+": "+err.Error())
	case errors.Is(err, sign.ErrSendFailed), errors.Is(err, sign.ErrClosed):
		writeError(w, http.StatusInternalServerError, ErrCodeSignUnreachable, prefix+": "+err.Error())
	default:
		writeInternalError(w, prefix+": "+err.Error())
	}
}
