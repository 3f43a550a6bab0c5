package classifier

import (
	"context"
	"phishguard/pkg/domain"
)

// Classifier reduces a raw scan request to a verdict. It never returns an
// error: every failure ends up either as an INVALID verdict or as a notice.
//
//go:generate mockgen -package mockclassifier -source=interface.go -destination=mock/mockclassifier.go *
type Classifier interface {
	Classify(ctx context.Context, req domain.ScanRequest) domain.Verdict
}
