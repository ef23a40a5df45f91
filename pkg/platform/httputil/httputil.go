// Package httputil centralizes JSON encoding and domain error translation for
// HTTP handlers. Handlers never build error bodies by hand.
package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	dErrors "onboard/pkg/domain-errors"
)

// errorBody is the wire shape for all error responses:
// {"error": kind, "error_description": message, "details": {...}}.
type errorBody struct {
	Error       string         `json:"error"`
	Description string         `json:"error_description,omitempty"`
	Details     map[string]any `json:"details,omitempty"`
}

// WriteJSON encodes v as JSON with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps a coded domain error onto an HTTP response. Internal errors
// omit the description so infrastructure detail never leaks to clients.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	body := errorBody{Error: string(code)}

	var e *dErrors.Error
	if code != dErrors.CodeInternal && errors.As(err, &e) {
		body.Description = e.Message
		body.Details = e.Details
	}

	WriteJSON(w, statusFor(code), body)
}

// DecodeAndPrepare decodes a JSON request body into T, writing a bad_request
// response and logging on failure. Returns ok=false when the handler should
// stop.
func DecodeAndPrepare[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) (T, bool) {
	var req T
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if logger != nil {
			logger.WarnContext(ctx, "malformed request body", "request_id", requestID, "error", err)
		}
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return req, false
	}
	return req, true
}

func statusFor(code dErrors.Code) int {
	switch code {
	case dErrors.CodeBadRequest, dErrors.CodeValidation, dErrors.CodeInvalidInput:
		return http.StatusBadRequest
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeConflict, dErrors.CodeEmailAlreadyExists, dErrors.CodeDocumentAlreadyExists:
		return http.StatusConflict
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeForbidden:
		return http.StatusForbidden
	case dErrors.CodeTimeout:
		return http.StatusGatewayTimeout
	case dErrors.CodeInvalidDocument,
		dErrors.CodeMissingRequiredFields,
		dErrors.CodeWeakPassword,
		dErrors.CodeVerificationFailed:
		return http.StatusUnprocessableEntity
	case dErrors.CodeEmailNotVerified, dErrors.CodePhoneNotVerified:
		return http.StatusPreconditionFailed
	default:
		return http.StatusInternalServerError
	}
}
