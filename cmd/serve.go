package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"phishguard/internal/api"
	"phishguard/internal/api/handler/v1handler"
	"phishguard/internal/classifier"
	"phishguard/internal/config"
	"phishguard/internal/normalizer"
	"phishguard/pkg/logger"
	"phishguard/pkg/metrics"
	"phishguard/pkg/qr"
	"phishguard/pkg/threatintel"
	"phishguard/pkg/threatintel/safebrowsing"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

// setupClassifier builds the scan pipeline: Safe Browsing client behind the
// in-process cache, QR-aware normalizer and the classifier on top. The
// returned function flushes the meter provider.
func setupClassifier(ctx context.Context, cfg *config.Config) (classifier.Classifier, func(ctx context.Context)) {
	mp, err := metrics.NewMeterProvider(prometheus.DefaultRegisterer)
	if err != nil {
		logger.Fatal(ctx, "could not create meter provider", zap.Error(err))
	}
	otel.SetMeterProvider(mp)
	meter := mp.Meter(metrics.MeterName)

	lookupMetrics, err := metrics.NewLookup(meter)
	if err != nil {
		logger.Fatal(ctx, "could not create lookup metrics", zap.Error(err))
	}
	verdictMetrics, err := metrics.NewVerdicts(meter)
	if err != nil {
		logger.Fatal(ctx, "could not create verdict metrics", zap.Error(err))
	}

	if cfg.SafeBrowsing.APIKey == "" {
		logger.Warn(ctx, "GSB_API_KEY is not set, every lookup will report a configuration error",
			zap.Bool("failClosed", cfg.SafeBrowsing.FailClosed))
	}

	client := threatintel.NewCached(
		safebrowsing.New(&http.Client{}, cfg.SafeBrowsing.APIKey, cfg.SafeBrowsing.Timeout),
		threatintel.NewMemoryCache(),
		threatintel.WithMetrics(lookupMetrics),
	)

	options := classifier.NewOptions(cfg)
	options.Verdicts = verdictMetrics

	cl := classifier.New(normalizer.New(qr.NewZXing(), cfg.QR.MaxImageBytes), client, options)

	return cl, func(ctx context.Context) {
		if err := mp.Shutdown(ctx); err != nil {
			logger.Warn(ctx, "could not shut down meter provider", zap.Error(err))
		}
	}
}

func setupServer(ctx context.Context, cfg *config.Config, cl classifier.Classifier) (func(ctx context.Context), error) {
	server, err := api.NewServer(ctx, api.Deps{
		Deps: v1handler.Deps{Classifier: cl},
	}, api.NewOptions(cfg))
	if err != nil {
		return nil, fmt.Errorf("could not create webserver: %w", err)
	}

	go func() {
		logger.Info(ctx, "starting webserver...", zap.String("addr", cfg.HTTP.Addr))
		if err := server.ListenAndServe(); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				logger.Error(ctx, "could not start webserver", zap.Error(err))
			}
		}
	}()

	return func(ctx context.Context) {
		logger.Info(ctx, "stopping webserver...")
		if err := server.Shutdown(ctx); err != nil {
			logger.Error(ctx, "could not stop webserver", zap.Error(err))
		}
	}, nil
}

func serveCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Starts the scan API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cl, stopMetrics := setupClassifier(ctx, cfg)

			stopWebserver, err := setupServer(ctx, cfg, cl)
			if err != nil {
				return err
			}

			// wait for interrupt
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GracefulShutdownTimeout)
			defer cancel()

			stopWebserver(shutdownCtx)
			stopMetrics(shutdownCtx)

			return nil
		},
	}

	return cmd
}
