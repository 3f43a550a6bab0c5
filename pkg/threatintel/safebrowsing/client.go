// Package safebrowsing provides a threatintel.Client implementation backed by
// the Google Safe Browsing v4 Lookup API.
package safebrowsing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"phishguard/pkg/domain"
	"phishguard/pkg/serrors"
	"phishguard/pkg/threatintel"
	"strings"
	"time"
)

const (
	// Endpoint is the threatMatches:find method of the v4 Lookup API.
	Endpoint = "https://safebrowsing.googleapis.com/v4/threatMatches:find"
	// ClientID identifies this application to the provider.
	ClientID = "PhishGuard"
	// ClientVersion is sent along with ClientID.
	ClientVersion = "1.0.0"
	// DefaultTimeout bounds a lookup when no timeout is configured.
	DefaultTimeout = 5 * time.Second

	platformAnyPlatform = "ANY_PLATFORM"
	threatEntryTypeURL  = "URL"
	// maxResponseBytes caps how much of a response body is read.
	maxResponseBytes = 1 << 20
)

// Client talks to the Safe Browsing REST API and fulfills the
// threatintel.Client interface. It is safe for concurrent use.
type Client struct {
	httpClient *http.Client  // httpClient performs HTTP requests to the API
	apiKey     string        // apiKey authenticates requests; never logged
	timeout    time.Duration // timeout bounds each lookup
}

// https://developers.google.com/safe-browsing/v4/reference/rest/v4/threatMatches/find
type findRequest struct {
	Client struct {
		ClientID      string `json:"clientId"`
		ClientVersion string `json:"clientVersion"`
	} `json:"client"`
	ThreatInfo struct {
		ThreatTypes      []domain.ThreatType `json:"threatTypes"`
		PlatformTypes    []string            `json:"platformTypes"`
		ThreatEntryTypes []string            `json:"threatEntryTypes"`
		ThreatEntries    []threatEntry       `json:"threatEntries"`
	} `json:"threatInfo"`
}

type threatEntry struct {
	URL string `json:"url"`
}

type findResponse struct {
	Matches []struct {
		ThreatType      string      `json:"threatType"`
		PlatformType    string      `json:"platformType"`
		ThreatEntryType string      `json:"threatEntryType"`
		Threat          threatEntry `json:"threat"`
		CacheDuration   string      `json:"cacheDuration"`
	} `json:"matches"`
}

// NewFindRequest builds the request body for a single URL lookup.
func NewFindRequest(URL domain.CandidateURL) ([]byte, error) {
	var req findRequest
	req.Client.ClientID = ClientID
	req.Client.ClientVersion = ClientVersion
	req.ThreatInfo.ThreatTypes = domain.LookupThreatTypes()
	req.ThreatInfo.PlatformTypes = []string{platformAnyPlatform}
	req.ThreatInfo.ThreatEntryTypes = []string{threatEntryTypeURL}
	req.ThreatInfo.ThreatEntries = []threatEntry{{URL: string(URL)}}

	b, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("could not marshal request: %w", err)
	}

	return b, nil
}

// ParseFindResponse decodes a threatMatches:find response body. An empty
// object means no matches. Matches without a threat type are reported as
// THREAT_TYPE_UNSPECIFIED.
func ParseFindResponse(body []byte) (domain.ThreatQueryResult, error) {
	var resp findResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.ThreatQueryResult{}, fmt.Errorf("could not decode response: %w", err)
	}

	out := domain.ThreatQueryResult{}
	for _, m := range resp.Matches {
		threatType := domain.ThreatType(m.ThreatType)
		if threatType == "" {
			threatType = domain.ThreatTypeUnspecified
		}
		out.Matches = append(out.Matches, domain.ThreatMatch{
			ThreatType:      threatType,
			PlatformType:    m.PlatformType,
			ThreatEntryType: m.ThreatEntryType,
			URL:             m.Threat.URL,
		})
	}

	return out, nil
}

// Lookup matches URL against the social engineering, malware and unwanted
// software lists on any platform. It returns an empty result plus:
//   - ErrMisconfigured, without any network call, when no API key is set;
//   - ErrTimeout when the lookup exceeds the configured timeout;
//   - ErrRateLimited on HTTP 429;
//   - ErrUnavailable on connection failures, other non-2xx responses and
//     undecodable bodies.
func (c *Client) Lookup(ctx context.Context, URL domain.CandidateURL) (domain.ThreatQueryResult, error) {
	if c.apiKey == "" {
		return domain.ThreatQueryResult{},
			serrors.With(serrors.ErrMisconfigured, "missing Safe Browsing API key (GSB_API_KEY)")
	}

	body, err := NewFindRequest(URL)
	if err != nil {
		return domain.ThreatQueryResult{}, serrors.Wrap(serrors.ErrInternal, err, "could not build lookup request")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx,
		http.MethodPost,
		Endpoint+"?"+url.Values{"key": {c.apiKey}}.Encode(),
		bytes.NewReader(body))
	if err != nil {
		return domain.ThreatQueryResult{}, serrors.Wrap(serrors.ErrInternal, redact(err), "could not create request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		err = redact(err)
		if isTimeout(err) {
			return domain.ThreatQueryResult{}, serrors.Wrap(serrors.ErrTimeout, err, "threat lookup timed out")
		}

		return domain.ThreatQueryResult{}, serrors.Wrap(serrors.ErrUnavailable, err, "could not reach threat provider")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		if isTimeout(err) {
			return domain.ThreatQueryResult{}, serrors.Wrap(serrors.ErrTimeout, err, "threat lookup timed out")
		}

		return domain.ThreatQueryResult{}, serrors.Wrap(serrors.ErrUnavailable, err, "could not read response body")
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return domain.ThreatQueryResult{},
			serrors.With(serrors.ErrRateLimited, "rate limited: %s", strings.TrimSpace(string(b)))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.ThreatQueryResult{},
			serrors.With(serrors.ErrUnavailable, "lookup failed with status %d: %s",
				resp.StatusCode, strings.TrimSpace(string(b)))
	}

	res, err := ParseFindResponse(b)
	if err != nil {
		return domain.ThreatQueryResult{}, serrors.Wrap(serrors.ErrUnavailable, err, "malformed provider response")
	}

	return res, nil
}

// redact strips the request URL from transport errors; it carries the API key.
func redact(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return fmt.Errorf("%s: %w", uerr.Op, uerr.Err)
	}

	return err
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var nerr net.Error

	return errors.As(err, &nerr) && nerr.Timeout()
}

// Ensure Client conforms to the threatintel.Client interface at compile time.
var _ threatintel.Client = (*Client)(nil)

// New constructs a Client that uses the provided http.Client and API key. A
// non-positive timeout falls back to DefaultTimeout. An empty key yields a
// client whose lookups report a configuration error.
func New(httpClient *http.Client, apiKey string, timeout time.Duration) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		httpClient: httpClient,
		apiKey:     apiKey,
		timeout:    timeout,
	}
}
