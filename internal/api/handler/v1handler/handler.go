// Package v1handler implements the v1 HTTP API: URL and QR scan endpoints,
// error rendering and optional bearer authentication.
package v1handler

import (
	"context"
	"errors"
	"net/http"
	"phishguard/internal/classifier"
	"phishguard/internal/config"
	"phishguard/pkg/logger"
	"phishguard/pkg/serrors"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// DefaultMaxImageBytes is used when Options.MaxImageBytes is not positive.
const DefaultMaxImageBytes = 10 << 20

// Deps groups the collaborators of the v1 handlers.
type Deps struct {
	Classifier classifier.Classifier
}

// Options tune request handling.
type Options struct {
	// MaxImageBytes is the largest accepted QR upload.
	MaxImageBytes int64
}

// NewOptions constructs an Options value from the provided application config.
func NewOptions(cfg *config.Config) Options {
	return Options{MaxImageBytes: cfg.QR.MaxImageBytes}
}

// Handler serves the v1 scan endpoints.
type Handler struct {
	deps    Deps
	options Options
}

func New(deps Deps, options Options) *Handler {
	if options.MaxImageBytes <= 0 {
		options.MaxImageBytes = DefaultMaxImageBytes
	}

	return &Handler{deps: deps, options: options}
}

// Routes registers the scan endpoints on r. sec guards them when non-nil.
func (h *Handler) Routes(r chi.Router, sec *SecHandler) {
	r.Route("/scans", func(r chi.Router) {
		if sec != nil {
			r.Use(sec.Middleware(h))
		}
		r.Post("/url", h.ScanURL)
		r.Post("/qr", h.ScanQR)
	})
}

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Code    string
	Message string
}

// ErrorStatusCode pairs an ErrorResponse with its HTTP status.
type ErrorStatusCode struct {
	StatusCode int
	Response   ErrorResponse
}

var statusByKind = map[serrors.Kind]int{ //nolint: gochecknoglobals
	serrors.ErrBadRequest:   http.StatusBadRequest,
	serrors.ErrUnauthorized: http.StatusUnauthorized,
	serrors.ErrForbidden:    http.StatusForbidden,
	serrors.ErrNotFound:     http.StatusNotFound,
	serrors.ErrConflict:     http.StatusConflict,
	serrors.ErrRateLimited:  http.StatusTooManyRequests,
}

var defaultMessages = map[serrors.Kind]string{ //nolint: gochecknoglobals
	serrors.ErrBadRequest:   "bad request",
	serrors.ErrUnauthorized: "unauthorized",
	serrors.ErrForbidden:    "forbidden",
	serrors.ErrNotFound:     "resource not found",
	serrors.ErrConflict:     "conflict",
	serrors.ErrRateLimited:  "too many requests",
}

// NewError maps err to a status code and a client-safe body. Errors of an
// unmapped kind, or of no kind at all, are logged and reported as INTERNAL
// without leaking their text.
func (h *Handler) NewError(ctx context.Context, err error) *ErrorStatusCode {
	kind := serrors.KindOf(err)
	status, ok := statusByKind[kind]
	if !ok {
		logger.Error(ctx, "request failed", zap.Error(err))

		return &ErrorStatusCode{
			StatusCode: http.StatusInternalServerError,
			Response:   ErrorResponse{Code: serrors.ErrInternal.Error(), Message: "internal error"},
		}
	}

	msg := defaultMessages[kind]
	var se *serrors.Error
	if errors.As(err, &se) && se.Message() != "" {
		msg = se.Message()
	}
	logger.Debug(ctx, "request rejected", zap.Int("status", status), zap.Error(err))

	return &ErrorStatusCode{
		StatusCode: status,
		Response:   ErrorResponse{Code: kind.Error(), Message: msg},
	}
}

// WriteError renders err with NewError as a JSON error body.
func (h *Handler) WriteError(w http.ResponseWriter, r *http.Request, err error) {
	res := h.NewError(r.Context(), err)
	writeJSON(r.Context(), w, res.StatusCode, encodeError(res.Response))
}
