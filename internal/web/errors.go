package web

// errors.go turns errors into responses. Every error is mapped with
// core.MapError, logged with the request ID, and written as JSON for API and
// HTMX-less clients or as an HTML fragment for HTMX requests.

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/JonMunkholm/packcat/internal/caniuse"
	"github.com/JonMunkholm/packcat/internal/core"
	"github.com/JonMunkholm/packcat/internal/fetch"
	"github.com/JonMunkholm/packcat/internal/logging"
	"github.com/JonMunkholm/packcat/internal/web/templates"
)

var (
	errRateLimited = errors.New("rate limit exceeded")
	errNoFile      = errors.New("no file provided")
	errBadID       = errors.New("invalid id")

	errBadRequestBody = errors.New("invalid request body")
)

// ErrorResponse is the JSON body of an API error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// statusFor picks the HTTP status for err.
func statusFor(err error) int {
	var statusErr *fetch.StatusError
	switch {
	case errors.Is(err, core.ErrImportNotFound), errors.Is(err, core.ErrPackNotFound),
		errors.Is(err, caniuse.ErrUnknownFeature):
		return http.StatusNotFound
	case errors.Is(err, core.ErrTooManyImports), errors.Is(err, core.ErrTooManyDownloads):
		return http.StatusServiceUnavailable
	case errors.Is(err, core.ErrEmptyFile), errors.Is(err, core.ErrInvalidCSV), errors.Is(err, core.ErrNoColumns),
		errors.Is(err, fetch.ErrUnsupportedURL), errors.Is(err, errNoFile), errors.Is(err, errBadID),
		errors.Is(err, errBadRequestBody):
		return http.StatusBadRequest
	case errors.Is(err, fetch.ErrHostNotAllowed):
		return http.StatusForbidden
	case errors.Is(err, fetch.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &statusErr), errors.Is(err, caniuse.ErrBadFeatureData):
		return http.StatusBadGateway
	}
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusInternalServerError
}

// respondError logs err and writes the mapped user message.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	userMsg := core.MapError(err)

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", userMsg.Code,
	)

	if isHTMX(r) {
		renderErrorPartial(w, r, userMsg, status)
		return
	}
	if wantsJSON(r) {
		respondErrorJSON(w, userMsg, status)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = templates.Layout("Error", templates.ErrorAlert(userMsg.Message, userMsg.Action, userMsg.Code)).Render(r.Context(), w)
}

func respondErrorJSON(w http.ResponseWriter, msg core.UserMessage, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

func renderErrorPartial(w http.ResponseWriter, r *http.Request, msg core.UserMessage, status int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = templates.ErrorAlert(msg.Message, msg.Action, msg.Code).Render(r.Context(), w)
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// wantsJSON reports whether the client prefers JSON. API routes default to it.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return true
	}
	return strings.HasPrefix(r.URL.Path, "/api/")
}
