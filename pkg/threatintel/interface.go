// Package threatintel defines the abstraction over URL reputation providers
// and an in-process caching layer in front of them.
package threatintel

import (
	"context"
	"phishguard/pkg/domain"
)

// Client is the abstraction for threat-intelligence providers. Implementations
// match a single URL against the provider's threat lists.
//
//go:generate mockgen -package mockthreatintel -source=interface.go -destination=mock/mockthreatintel.go *
type Client interface {
	// Lookup asks the provider about URL. On any failure it returns an empty
	// result together with a semantic error (see pkg/serrors); callers can
	// always use the result.
	Lookup(ctx context.Context, URL domain.CandidateURL) (domain.ThreatQueryResult, error)
}

// Cache stores lookup results keyed by the exact candidate URL string.
type Cache interface {
	// Get returns the cached result for URL, if any.
	Get(URL domain.CandidateURL) (domain.ThreatQueryResult, bool)
	// Set stores res for URL. Concurrent writers of the same key are
	// last-writer-wins.
	Set(URL domain.CandidateURL, res domain.ThreatQueryResult)
}
