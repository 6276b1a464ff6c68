package web

// errors.go turns handler errors into JSON responses. The technical error is
// logged with the request ID; the client gets the message, action and code
// from core.MapError.

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/JonMunkholm/rawloader/internal/core"
	"github.com/JonMunkholm/rawloader/internal/loader"
	"github.com/go-chi/chi/v5/middleware"
)

var (
	errNoFile      = errors.New("no file provided")
	errFileTooBig  = errors.New("file too large")
	errRateLimited = errors.New("rate limit exceeded")
)

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// respondError logs err and writes its user-facing form with statusCode.
// Known client errors log at warn, everything else at error.
func respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	userMsg := core.MapError(err)

	// Unmapped errors reach clients as ERR000, so support needs them at
	// error level even on a 4xx.
	level := slog.LevelWarn
	if statusCode >= http.StatusInternalServerError || !core.IsUserFacing(err) {
		level = slog.LevelError
	}
	slog.Log(r.Context(), level, "request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
		"request_id", middleware.GetReqID(r.Context()),
	)

	writeJSON(w, statusCode, ErrorResponse{
		Error:   userMsg.Message,
		Message: userMsg.Message,
		Action:  userMsg.Action,
		Code:    userMsg.Code,
	})
}

// statusFor picks the HTTP status for an error returned by the loader.
func statusFor(err error) int {
	switch {
	case loader.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, core.ErrTooManyUploads):
		return http.StatusServiceUnavailable
	case errors.Is(err, loader.ErrValidationFailed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errNoFile):
		return http.StatusBadRequest
	case errors.Is(err, errFileTooBig):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
