package httputil

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/goccy/go-json"

	apperrors "github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/pkg/errors"
	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/pkg/logger"
	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/pkg/validator"
)

// ErrorBody is the failure envelope shared by every catalog endpoint.
type ErrorBody struct {
	Success   bool              `json:"success"`
	Error     string            `json:"error"`
	Code      string            `json:"code"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"requestId,omitempty"`
}

// WriteJSON writes v as JSON with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if encoding fails.
	_ = json.NewEncoder(w).Encode(v)
}

// StatusClientClosedRequest is the non-standard status for requests the
// client abandoned before a response was ready.
const StatusClientClosedRequest = 499

// WriteError renders err as the failure envelope. Taxonomy errors keep their
// code and message; anything else becomes a generic 500 whose cause is only
// logged. The request-scoped logger is preferred over fallback.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	l := logger.FromContext(r.Context())
	if l == slog.Default() && fallback != nil {
		l = fallback
	}
	requestID := logger.CorrelationIDFromContext(r.Context())

	if errors.Is(err, context.Canceled) {
		l.DebugContext(r.Context(), "request canceled by client",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
		WriteJSON(w, StatusClientClosedRequest, ErrorBody{
			Error:     "request canceled",
			Code:      "CLIENT_CLOSED_REQUEST",
			RequestID: requestID,
		})
		return
	}

	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		WriteJSON(w, http.StatusBadRequest, ErrorBody{
			Error:     "request validation failed",
			Code:      "INVALID_FILTER",
			Fields:    valErr.Fields(),
			RequestID: requestID,
		})
		return
	}

	status := apperrors.HTTPStatus(err)

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		if errors.Is(err, apperrors.ErrNotFound) {
			appErr = &apperrors.AppError{Code: "NOT_FOUND", Message: "resource not found"}
		} else {
			appErr = apperrors.Internal(err)
		}
	}
	body := ErrorBody{
		Error:     appErr.Message,
		Code:      appErr.Code,
		RequestID: requestID,
	}

	if status >= http.StatusInternalServerError {
		l.ErrorContext(r.Context(), "request failed",
			slog.String("error", err.Error()),
			slog.String("code", body.Code),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
	}

	WriteJSON(w, status, body)
}
