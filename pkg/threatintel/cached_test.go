package threatintel_test

import (
	"context"
	"io"
	"net/http"
	"phishguard/pkg/domain"
	"phishguard/pkg/metrics"
	"phishguard/pkg/serrors"
	"phishguard/pkg/threatintel"
	mockthreatintel "phishguard/pkg/threatintel/mock"
	"phishguard/pkg/threatintel/safebrowsing"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// rtFunc allows using a function as an http.RoundTripper.
type rtFunc func(*http.Request) (*http.Response, error)

func (f rtFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// countingTransport answers every request with body and counts round trips.
func countingTransport(calls *atomic.Int32, status int, body string) rtFunc {
	return func(r *http.Request) (*http.Response, error) {
		calls.Add(1)

		return &http.Response{StatusCode: status, Body: io.NopCloser(strings.NewReader(body))}, nil
	}
}

func TestCached_SecondLookupServedFromCache(t *testing.T) {
	var calls atomic.Int32
	sb := safebrowsing.New(&http.Client{
		Transport: countingTransport(&calls, http.StatusOK, `{"matches":[{"threatType":"MALWARE"}]}`),
	}, "test-key", time.Second)
	c := threatintel.NewCached(sb, threatintel.NewMemoryCache())

	first, err := c.Lookup(context.Background(), "https://evil.example")
	require.NoError(t, err)
	second, err := c.Lookup(context.Background(), "https://evil.example")
	require.NoError(t, err)

	require.Equal(t, int32(1), calls.Load())
	require.Equal(t, first, second)
	require.Equal(t, []string{"MALWARE"}, second.ThreatTypes())
}

func TestCached_KeysOnExactString(t *testing.T) {
	var calls atomic.Int32
	sb := safebrowsing.New(&http.Client{
		Transport: countingTransport(&calls, http.StatusOK, `{}`),
	}, "test-key", time.Second)
	cache := threatintel.NewMemoryCache()
	c := threatintel.NewCached(sb, cache)

	for _, u := range []domain.CandidateURL{"https://example.com", "https://example.com/", "https://EXAMPLE.com"} {
		_, err := c.Lookup(context.Background(), u)
		require.NoError(t, err)
	}
	_, err := c.Lookup(context.Background(), "https://example.com")
	require.NoError(t, err)

	require.Equal(t, int32(3), calls.Load())
	require.Equal(t, 3, cache.Len())
}

func TestCached_FailuresAreNotCached(t *testing.T) {
	var calls atomic.Int32
	sb := safebrowsing.New(&http.Client{
		Transport: countingTransport(&calls, http.StatusBadGateway, "bad gateway"),
	}, "test-key", time.Second)
	cache := threatintel.NewMemoryCache()
	c := threatintel.NewCached(sb, cache)

	for range 2 {
		res, err := c.Lookup(context.Background(), "https://example.com")
		require.ErrorIs(t, err, serrors.ErrUnavailable)
		require.True(t, res.Empty())
	}

	require.Equal(t, int32(2), calls.Load())
	require.Zero(t, cache.Len())
}

func TestCached_MissingKeyDoesNotTouchNetwork(t *testing.T) {
	var calls atomic.Int32
	sb := safebrowsing.New(&http.Client{
		Transport: countingTransport(&calls, http.StatusOK, `{}`),
	}, "", time.Second)
	c := threatintel.NewCached(sb, nil)

	res, err := c.Lookup(context.Background(), "https://example.com")
	require.ErrorIs(t, err, serrors.ErrMisconfigured)
	require.True(t, res.Empty())
	require.Zero(t, calls.Load())
}

func TestCached_ConcurrentLookupsCollapse(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mockthreatintel.NewMockClient(ctrl)

	release := make(chan struct{})
	client.EXPECT().Lookup(gomock.Any(), domain.CandidateURL("https://busy.example")).
		DoAndReturn(func(ctx context.Context, _ domain.CandidateURL) (domain.ThreatQueryResult, error) {
			<-release

			return domain.ThreatQueryResult{Matches: []domain.ThreatMatch{{ThreatType: domain.ThreatTypeMalware}}}, nil
		}).Times(1)

	c := threatintel.NewCached(client, threatintel.NewMemoryCache())

	const callers = 8
	var wg sync.WaitGroup
	results := make([]domain.ThreatQueryResult, callers)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := c.Lookup(context.Background(), "https://busy.example")
			if err != nil {
				t.Errorf("lookup %d: %v", i, err)
			}
			results[i] = res
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, res := range results {
		require.Equal(t, []string{"MALWARE"}, res.ThreatTypes())
	}
}

func TestCached_CancelledCallerDoesNotFailSharedLookup(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mockthreatintel.NewMockClient(ctrl)

	started := make(chan struct{})
	release := make(chan struct{})
	client.EXPECT().Lookup(gomock.Any(), domain.CandidateURL("https://shared.example")).
		DoAndReturn(func(ctx context.Context, _ domain.CandidateURL) (domain.ThreatQueryResult, error) {
			close(started)
			select {
			case <-ctx.Done():
				return domain.ThreatQueryResult{}, serrors.Wrap(serrors.ErrUnavailable, ctx.Err(), "could not reach threat provider")
			case <-release:
			}

			return domain.ThreatQueryResult{Matches: []domain.ThreatMatch{{ThreatType: domain.ThreatTypeMalware}}}, nil
		}).Times(1)

	c := threatintel.NewCached(client, threatintel.NewMemoryCache())

	first, cancelFirst := context.WithCancel(context.Background())
	defer cancelFirst()
	firstErr := make(chan error, 1)
	go func() {
		_, err := c.Lookup(first, "https://shared.example")
		firstErr <- err
	}()
	<-started

	type result struct {
		res domain.ThreatQueryResult
		err error
	}
	second := make(chan result, 1)
	go func() {
		res, err := c.Lookup(context.Background(), "https://shared.example")
		second <- result{res: res, err: err}
	}()

	time.Sleep(50 * time.Millisecond)
	cancelFirst()
	time.Sleep(20 * time.Millisecond)
	close(release)

	got := <-second
	require.NoError(t, got.err)
	require.Equal(t, []string{"MALWARE"}, got.res.ThreatTypes())
	require.NoError(t, <-firstErr)
}

func TestCached_HitInsideFlightCountedOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mockthreatintel.NewMockClient(ctrl)
	cache := mockthreatintel.NewMockCache(ctrl)

	// a concurrent flight fills the cache between the first Get and Do
	cached := domain.ThreatQueryResult{Matches: []domain.ThreatMatch{{ThreatType: domain.ThreatTypeMalware}}}
	cache.EXPECT().Get(domain.CandidateURL("https://late.example")).Return(domain.ThreatQueryResult{}, false)
	cache.EXPECT().Get(domain.CandidateURL("https://late.example")).Return(cached, true)

	reg := prometheus.NewRegistry()
	mp, err := metrics.NewMeterProvider(reg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	lookup, err := metrics.NewLookup(mp.Meter(metrics.MeterName))
	require.NoError(t, err)

	c := threatintel.NewCached(client, cache, threatintel.WithMetrics(lookup))
	res, err := c.Lookup(context.Background(), "https://late.example")
	require.NoError(t, err)
	require.Equal(t, cached, res)

	families, err := reg.Gather()
	require.NoError(t, err)
	var hits float64
	for _, f := range families {
		if !strings.HasPrefix(f.GetName(), "phishguard_threat_cache_hits") {
			continue
		}
		for _, m := range f.GetMetric() {
			hits += m.GetCounter().GetValue()
		}
	}
	require.InDelta(t, 1, hits, 0)
}

func TestCached_UsesInjectedCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mockthreatintel.NewMockClient(ctrl)
	cache := mockthreatintel.NewMockCache(ctrl)

	cached := domain.ThreatQueryResult{Matches: []domain.ThreatMatch{{ThreatType: domain.ThreatTypeSocialEngineering}}}
	cache.EXPECT().Get(domain.CandidateURL("https://hit.example")).Return(cached, true)
	// no client call expected on a hit

	c := threatintel.NewCached(client, cache)
	res, err := c.Lookup(context.Background(), "https://hit.example")
	require.NoError(t, err)
	require.Equal(t, cached, res)
}

func TestMemoryCache_LastWriterWins(t *testing.T) {
	cache := threatintel.NewMemoryCache()
	_, ok := cache.Get("https://a.example")
	require.False(t, ok)

	cache.Set("https://a.example", domain.ThreatQueryResult{})
	cache.Set("https://a.example", domain.ThreatQueryResult{Matches: []domain.ThreatMatch{{ThreatType: domain.ThreatTypeMalware}}})

	res, ok := cache.Get("https://a.example")
	require.True(t, ok)
	require.Equal(t, []string{"MALWARE"}, res.ThreatTypes())
	require.Equal(t, 1, cache.Len())
}
