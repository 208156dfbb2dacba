package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"fintrack/internal/apperr"
)

// maxBodySize caps JSON request bodies. Receipt uploads have their own limit.
const maxBodySize = 1 << 20

type errorBody struct {
	Code    apperr.Code `json:"code"`
	Message string      `json:"message"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

func respondJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.ErrorContext(ctx, "Response encoding failed", "error", err)
	}
}

// respondError renders a typed failure as a structured payload. Untyped
// errors are reported as INTERNAL without leaking their text.
func respondError(ctx context.Context, w http.ResponseWriter, err error) {
	status := apperr.HTTPStatus(err)
	message := "internal error"

	var e *apperr.Error
	if errors.As(err, &e) && e.Code != apperr.CodeInternal {
		message = e.Message
	}
	if status >= 500 {
		slog.ErrorContext(ctx, "Request failed", "error", err)
	}

	respondJSON(ctx, w, status, errorResponse{Error: errorBody{
		Code:    apperr.CodeOf(err),
		Message: message,
	}})
}

func respondUnauthorized(ctx context.Context, w http.ResponseWriter) {
	respondError(ctx, w, apperr.Unauthorized("authentication required"))
}

func decodeJSON(r *http.Request, v any) error {
	body := http.MaxBytesReader(nil, r.Body, maxBodySize)
	defer func() { _, _ = io.Copy(io.Discard, body) }()

	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return apperr.ValidationFrom(fmt.Errorf("invalid request body: %w", err))
	}
	return nil
}
