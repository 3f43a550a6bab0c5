// Package api configures and exposes the HTTP server, routes, metrics, docs
// and related middleware for the PhishGuard service.
package api

import (
	"context"
	_ "embed"
	"fmt"
	"net/http"
	"phishguard/internal/api/handler/v1handler"
	"phishguard/internal/config"
	"phishguard/pkg/controller"
	"phishguard/pkg/logger"
	"phishguard/pkg/serrors"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/swaggest/swgui/v5emb"
)

// v1Spec contains the embedded OpenAPI specification for version 1 of the API.
//
//go:embed specs/v1.yaml
var v1Spec []byte

// Options holds configuration for the HTTP server and its dependencies.
// It is typically created from a config.Config via NewOptions.
type Options struct {
	// SecHandlerOptions configures bearer authentication of the scan endpoints.
	SecHandlerOptions *v1handler.SecHandlerOptions
	// HandlerOptions tunes the v1 handlers.
	HandlerOptions v1handler.Options

	// Addr is the TCP address the server listens on, e.g. ":8080".
	Addr string
	// ReadTimeout is the maximum duration for reading the entire request, including the body.
	ReadTimeout time.Duration
	// ReadHeaderTimeout is the amount of time allowed to read request headers.
	ReadHeaderTimeout time.Duration
	// WriteTimeout is the maximum duration before timing out writes of the response.
	WriteTimeout time.Duration
	// IdleTimeout is the maximum amount of time to wait for the next request when keep-alives are enabled.
	IdleTimeout time.Duration
	// RequestTimeout is applied via http.TimeoutHandler to every request.
	RequestTimeout time.Duration
	// MaxHeaderBytes controls the maximum number of bytes the server
	// will read parsing the request header's keys and values, including the request line.
	MaxHeaderBytes int
	// MetricsPath is the HTTP path at which Prometheus metrics are served.
	MetricsPath string
}

// NewOptions constructs an Options value from the provided application configuration.
func NewOptions(cfg *config.Config) Options {
	return Options{
		SecHandlerOptions: v1handler.NewSecHandlerOptions(cfg),
		HandlerOptions:    v1handler.NewOptions(cfg),

		Addr:              cfg.HTTP.Addr,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
		RequestTimeout:    cfg.HTTP.RequestTimeout,
		MaxHeaderBytes:    cfg.HTTP.MaxHeaderBytes,
		MetricsPath:       cfg.HTTP.MetricsPath,
	}
}

// Deps are the collaborators the server needs.
type Deps struct {
	v1handler.Deps

	// Gatherer backs the metrics endpoint. Defaults to prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer
}

// NewHandler builds the router:
// - Prometheus metrics endpoint (MetricsPath) and /healthz
// - Embedded OpenAPI v1 spec and Swagger UI
// - v1 scan routes, behind bearer auth when a public key is configured
// - pprof endpoints for profiling
// It is wrapped with panic recovery, CORS and logging middlewares.
func NewHandler(ctx context.Context, deps Deps, opts Options) (http.Handler, error) {
	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	metricsPath := opts.MetricsPath
	if metricsPath == "" {
		metricsPath = "/metrics"
	}

	secHandler, err := v1handler.NewSecHandler(opts.SecHandlerOptions)
	if err != nil {
		return nil, fmt.Errorf("could not create sec handler: %w", err)
	}
	if !secHandler.Enabled() {
		logger.Warn(ctx, "JWT public key is not configured, scan endpoints are unauthenticated")
	}
	v1 := v1handler.New(deps.Deps, opts.HandlerOptions)

	r := chi.NewRouter()
	r.Use(controller.WithLogger, controller.WithRecover, controller.WithCORS)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		v1.WriteError(w, r, serrors.KindOnly(serrors.ErrNotFound))
	})

	// prometheus metrics server
	r.Method(http.MethodGet, metricsPath, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// v1 specs file
	r.Get("/specs/v1.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(v1Spec)
	})
	r.Route("/v1", func(r chi.Router) {
		// v1 api swagger playground
		r.Handle("/docs/*", v5emb.New(
			"PhishGuard",
			"/specs/v1.yaml",
			"/v1/docs/",
		))
		// v1 api
		v1.Routes(r, secHandler)
	})

	// pprof
	r.Mount("/debug/pprof", controller.Pprof())

	return r, nil
}

// NewServer wires up and returns a configured *http.Server using the provided
// Options. Server errors are logged through the context logger.
func NewServer(ctx context.Context, deps Deps, opts Options) (*http.Server, error) {
	handler, err := NewHandler(ctx, deps, opts)
	if err != nil {
		return nil, err
	}
	if opts.RequestTimeout > 0 {
		handler = http.TimeoutHandler(handler, opts.RequestTimeout,
			`{"code":"TIMEOUT","message":"request timed out"}`)
	}

	return &http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadTimeout:       opts.ReadTimeout,
		ReadHeaderTimeout: opts.ReadHeaderTimeout,
		WriteTimeout:      opts.WriteTimeout,
		IdleTimeout:       opts.IdleTimeout,
		MaxHeaderBytes:    opts.MaxHeaderBytes,
		ErrorLog:          logger.StdErrorLog(ctx),
	}, nil
}
