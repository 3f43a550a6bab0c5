package normalizer

import (
	"context"
	"phishguard/pkg/domain"
)

// Normalizer turns raw user input into a CandidateURL. Every failure is
// reported as a BAD_REQUEST semantic error; nothing panics.
//
//go:generate mockgen -package mocknormalizer -source=interface.go -destination=mock/mocknormalizer.go *
type Normalizer interface {
	ValidateURL(raw string) (domain.CandidateURL, error)
	ExtractURLFromImage(ctx context.Context, image []byte) (domain.CandidateURL, error)
}
