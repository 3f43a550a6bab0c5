package classifier

import (
	"context"
	"phishguard/internal/config"
	"phishguard/internal/normalizer"
	"phishguard/pkg/domain"
	"phishguard/pkg/logger"
	"phishguard/pkg/metrics"
	"phishguard/pkg/serrors"
	"phishguard/pkg/threatintel"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "phishguard/internal/classifier"

// Options configure how lookup failures affect the verdict.
type Options struct {
	// FailClosed reports UNKNOWN instead of SAFE when the threat lookup could
	// not be completed. The default (false) keeps the fail-open behavior where
	// a failed lookup is indistinguishable from "no threats found" apart from
	// the attached notice.
	FailClosed bool
	// Verdicts, when set, counts every verdict by input kind and status.
	Verdicts *metrics.Verdicts
}

// NewOptions constructs an Options value from the provided application config.
func NewOptions(cfg *config.Config) Options {
	return Options{FailClosed: cfg.SafeBrowsing.FailClosed}
}

type classifier struct {
	options    Options
	normalizer normalizer.Normalizer
	client     threatintel.Client
	tracer     trace.Tracer
}

// Classify runs Received -> {Invalid | Querying -> {Safe | Unsafe}}. Unknown
// request kinds are treated as invalid input.
func (c *classifier) Classify(ctx context.Context, req domain.ScanRequest) domain.Verdict {
	ctx, span := c.tracer.Start(ctx, "Classify", trace.WithAttributes(
		attribute.String("scan.kind", string(req.Kind))))
	defer span.End()

	verdict := c.classify(ctx, req)

	span.SetAttributes(attribute.String("verdict.status", string(verdict.Status)))
	if c.options.Verdicts != nil {
		c.options.Verdicts.Record(ctx, string(req.Kind), string(verdict.Status))
	}

	return verdict
}

func (c *classifier) classify(ctx context.Context, req domain.ScanRequest) domain.Verdict {
	var (
		candidate domain.CandidateURL
		err       error
	)
	switch req.Kind {
	case domain.ScanKindText:
		candidate, err = c.normalizer.ValidateURL(req.Text)
	case domain.ScanKindImage:
		candidate, err = c.normalizer.ExtractURLFromImage(ctx, req.Image)
	default:
		err = serrors.With(serrors.ErrBadRequest, "unsupported scan kind %q", req.Kind)
	}
	if err != nil {
		logger.Debug(ctx, "scan input rejected", zap.String("kind", string(req.Kind)), zap.Error(err))

		return domain.Invalid(noticeOf(err))
	}

	ctx = logger.WithFields(ctx, zap.Stringer("url", candidate))

	res, err := c.lookup(ctx, candidate)
	if err != nil {
		notice := noticeOf(err)
		logger.Warn(ctx, "threat lookup failed",
			zap.String("code", notice.Code),
			zap.Bool("failClosed", c.options.FailClosed),
			zap.Error(err))

		if c.options.FailClosed {
			return domain.Unknown(candidate, notice)
		}

		return domain.Safe(candidate, notice)
	}

	if threats := res.ThreatTypes(); len(threats) > 0 {
		logger.Info(ctx, "threats found", zap.Strings("threats", threats))

		return domain.Unsafe(candidate, threats)
	}

	return domain.Safe(candidate)
}

func (c *classifier) lookup(ctx context.Context, candidate domain.CandidateURL) (domain.ThreatQueryResult, error) {
	ctx, span := c.tracer.Start(ctx, "Lookup")
	defer span.End()

	res, err := c.client.Lookup(ctx, candidate)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, serrors.MessageOf(err))

		return domain.ThreatQueryResult{}, err
	}
	span.SetAttributes(attribute.Int("threat.matches", len(res.Matches)))

	return res, nil
}

// noticeOf turns an error into a user-visible notice. The code is the
// semantic kind; errors without one are reported as INTERNAL.
func noticeOf(err error) domain.Notice {
	kind := serrors.KindOf(err)
	if kind == nil {
		kind = serrors.ErrInternal
	}

	return domain.Notice{Code: kind.Error(), Message: serrors.MessageOf(err)}
}

// New creates a Classifier composing n and client.
func New(n normalizer.Normalizer, client threatintel.Client, options Options) Classifier {
	return &classifier{
		options:    options,
		normalizer: n,
		client:     client,
		tracer:     otel.Tracer(tracerName),
	}
}
