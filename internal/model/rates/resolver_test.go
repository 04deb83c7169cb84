package rates

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kakeibo-dev/ledger/internal/entity/currency"
	"github.com/kakeibo-dev/ledger/internal/model/customerr"
)

type stubConfig struct{}

func (stubConfig) LocalCurrency() string { return "JPY" }
func (stubConfig) CacheTTLHours() int64  { return 24 }

type fakeCache struct {
	items map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{items: make(map[string][]byte)}
}

func (c *fakeCache) Get(key string) ([]byte, bool, error) {
	value, ok := c.items[key]
	return value, ok, nil
}

func (c *fakeCache) Set(key string, value []byte) error {
	c.items[key] = value
	return nil
}

type fakeProvider struct {
	histRate    float64
	histErr     error
	latestRate  float64
	latestErr   error
	histCalls   int
	latestCalls int
}

func (p *fakeProvider) HistoricalRate(_ context.Context, _, _ string) (float64, error) {
	p.histCalls++
	return p.histRate, p.histErr
}

func (p *fakeProvider) LatestRate(_ context.Context, _ string) (float64, error) {
	p.latestCalls++
	return p.latestRate, p.latestErr
}

func Test_OnLocalCurrency_ShouldReturnOneWithoutAnyLookup(t *testing.T) {
	primary := &fakeProvider{}
	resolver := NewResolver(stubConfig{}, newFakeCache(), primary, nil)

	rate, err := resolver.ResolveRate(context.Background(), "JPY", "2025-02-01")

	require.NoError(t, err)
	assert.Equal(t, 1.0, rate)
	assert.Zero(t, primary.histCalls)
	assert.Zero(t, primary.latestCalls)
}

func Test_OnHistoricalSuccess_ShouldCacheDatedRate(t *testing.T) {
	primary := &fakeProvider{histRate: 150.5}
	resolver := NewResolver(stubConfig{}, newFakeCache(), primary, nil)

	rate, err := resolver.ResolveRate(context.Background(), "USD", "2025-02-01")
	require.NoError(t, err)
	assert.Equal(t, 150.5, rate)

	rate, err = resolver.ResolveRate(context.Background(), "USD", "2025-02-01")
	require.NoError(t, err)
	assert.Equal(t, 150.5, rate)
	assert.Equal(t, 1, primary.histCalls)
}

func Test_OnPrimaryFailure_ShouldFallBackToSecondaryAndCache(t *testing.T) {
	primary := &fakeProvider{histErr: errors.New("boom"), latestErr: errors.New("boom")}
	secondary := &fakeProvider{latestRate: 150.5}
	resolver := NewResolver(stubConfig{}, newFakeCache(), primary, secondary)

	rate, err := resolver.ResolveRate(context.Background(), "USD", "2025-02-01")
	require.NoError(t, err)
	assert.Equal(t, 150.5, rate)

	// Second lookup for the same key is served from cache.
	rate, err = resolver.ResolveRate(context.Background(), "USD", "2025-02-01")
	require.NoError(t, err)
	assert.Equal(t, 150.5, rate)
	assert.Equal(t, 1, secondary.latestCalls)
}

func Test_OnAllProvidersFailing_ShouldReturnRateUnavailable(t *testing.T) {
	primary := &fakeProvider{histErr: errors.New("down"), latestErr: errors.New("down")}
	secondary := &fakeProvider{latestErr: errors.New("down too")}
	resolver := NewResolver(stubConfig{}, newFakeCache(), primary, secondary)

	_, err := resolver.ResolveRate(context.Background(), "USD", "2025-02-01")

	var rerr *customerr.RateUnavailableError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "USD", rerr.Currency)
}

func Test_OnInvalidProviderRate_ShouldFallBackInsteadOfCaching(t *testing.T) {
	primary := &fakeProvider{histRate: -1, latestRate: 151}
	resolver := NewResolver(stubConfig{}, newFakeCache(), primary, nil)

	rate, err := resolver.ResolveRate(context.Background(), "USD", "2025-02-01")

	require.NoError(t, err)
	assert.Equal(t, 151.0, rate)
}

func Test_OnStaleCacheEntry_ShouldFetchAgain(t *testing.T) {
	cache := newFakeCache()
	stale, err := json.Marshal(currency.NewRate(120, time.Now().Add(-48*time.Hour)))
	require.NoError(t, err)
	require.NoError(t, cache.Set("USD:2025-02-01", stale))

	primary := &fakeProvider{histRate: 150.5}
	resolver := NewResolver(stubConfig{}, cache, primary, nil)

	rate, err := resolver.ResolveRate(context.Background(), "USD", "2025-02-01")

	require.NoError(t, err)
	assert.Equal(t, 150.5, rate)
	assert.Equal(t, 1, primary.histCalls)
}

func Test_OnMalformedCurrencyCode_ShouldFailValidation(t *testing.T) {
	resolver := NewResolver(stubConfig{}, newFakeCache(), &fakeProvider{}, nil)

	_, err := resolver.ResolveRate(context.Background(), "usd1", "2025-02-01")

	var verr *customerr.ValidationError
	assert.ErrorAs(t, err, &verr)
}
