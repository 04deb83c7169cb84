package rates

import (
	"context"
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/kakeibo-dev/ledger/internal/entity/currency"
	"github.com/kakeibo-dev/ledger/internal/logger"
	"github.com/kakeibo-dev/ledger/internal/model/customerr"
)

const latestKey = "latest"

type rateCache interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
}

type provider interface {
	HistoricalRate(ctx context.Context, code, date string) (float64, error)
	LatestRate(ctx context.Context, code string) (float64, error)
}

type config interface {
	LocalCurrency() string
	CacheTTLHours() int64
}

// Resolver produces foreign->local conversion rates with a time-bounded
// cache and a provider fallback chain. It never fabricates a rate: when
// every provider fails the caller gets a RateUnavailableError.
type Resolver struct {
	cache     rateCache
	primary   provider
	secondary provider
	local     string
	ttl       time.Duration
	now       func() time.Time
}

// NewResolver wires the resolver. secondary may be nil when no fallback
// provider is configured.
func NewResolver(config config, cache rateCache, primary, secondary provider) *Resolver {
	return &Resolver{
		cache:     cache,
		primary:   primary,
		secondary: secondary,
		local:     config.LocalCurrency(),
		ttl:       time.Duration(config.CacheTTLHours()) * time.Hour,
		now:       time.Now,
	}
}

// ResolveRate returns the code->local rate effective on date (YYYY-MM-DD).
// The local currency is always 1 with no cache or network touch. A dated
// cache hit wins; a cached latest rate younger than the TTL is the next
// best; then the dated endpoint of the primary provider, then the latest
// endpoints of primary and secondary.
func (r *Resolver) ResolveRate(ctx context.Context, code, date string) (float64, error) {
	code = strings.ToUpper(code)
	if code == r.local {
		return 1, nil
	}
	if !currency.IsCode(code) {
		return 0, &customerr.ValidationError{Field: "currency", Reason: "must be a 3-letter ISO code"}
	}

	span, ctx := opentracing.StartSpanFromContext(ctx, "resolveRate")
	defer span.Finish()
	span.SetTag("currency", code)

	if rate, ok := r.cached(code + ":" + date); ok {
		return rate, nil
	}
	if rate, ok := r.cached(code + ":" + latestKey); ok {
		return rate, nil
	}

	rate, err := r.primary.HistoricalRate(ctx, code, date)
	if err == nil && validRate(rate) {
		r.store(code+":"+date, rate)
		return rate, nil
	}
	logger.Warn("historical rate lookup failed, falling back to latest",
		zap.String("currency", code), zap.String("date", date), zap.Error(err))

	var lastErr error
	if err != nil {
		lastErr = err
	} else {
		lastErr = errors.Errorf("provider returned invalid rate %v", rate)
	}

	for _, p := range []provider{r.primary, r.secondary} {
		if p == nil {
			continue
		}
		rate, err = p.LatestRate(ctx, code)
		if err != nil {
			lastErr = err
			continue
		}
		if !validRate(rate) {
			lastErr = errors.Errorf("provider returned invalid rate %v", rate)
			continue
		}
		r.store(code+":"+latestKey, rate)
		return rate, nil
	}

	return 0, &customerr.RateUnavailableError{Currency: code, Date: date, Err: lastErr}
}

// cached returns a cache entry younger than the TTL; older entries are
// treated as absent.
func (r *Resolver) cached(key string) (float64, bool) {
	raw, ok, err := r.cache.Get(key)
	if err != nil {
		logger.Warn("rate cache read failed", zap.String("key", key), zap.Error(err))
		return 0, false
	}
	if !ok {
		return 0, false
	}

	var entry currency.Rate
	if err = json.Unmarshal(raw, &entry); err != nil {
		logger.Warn("malformed rate cache entry", zap.String("key", key), zap.Error(err))
		return 0, false
	}
	if !entry.FreshAt(r.now(), r.ttl) || !validRate(entry.Value) {
		return 0, false
	}
	return entry.Value, true
}

func (r *Resolver) store(key string, rate float64) {
	raw, err := json.Marshal(currency.NewRate(rate, r.now()))
	if err != nil {
		return
	}
	if err = r.cache.Set(key, raw); err != nil {
		logger.Warn("rate cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func validRate(rate float64) bool {
	return rate > 0 && !math.IsNaN(rate) && !math.IsInf(rate, 0)
}
