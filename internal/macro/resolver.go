package macro

import (
	"context"
	"fmt"
	"time"

	"github.com/sony/gobreaker"

	"github.com/wonny/screener/internal/contracts"
	"github.com/wonny/screener/pkg/logger"
	"github.com/wonny/screener/pkg/redis"
)

// QuoteSource returns the last close of a market symbol (Yahoo client)
type QuoteSource interface {
	LastClose(ctx context.Context, symbol string) (float64, error)
}

// proxy maps a macro field to market symbols tried in order
type proxy struct {
	field   string
	symbols []string
	scale   float64
}

// ^TNX는 수익률×100으로 표시됨 → /100
var proxies = []proxy{
	{field: contracts.MacroTenYearYield, symbols: []string{"^TNX"}, scale: 0.01},
	{field: contracts.MacroUSDIndex, symbols: []string{"DX-Y.NYB", "^DXY"}, scale: 1},
	{field: contracts.MacroWTI, symbols: []string{"CL=F"}, scale: 1},
	{field: contracts.MacroGold, symbols: []string{"GC=F"}, scale: 1},
}

// Resolver resolves Soros macro inputs: override first, then live proxy, else absent
// ⭐ SSOT: 매크로 입력 결정은 여기서만
type Resolver struct {
	quotes  QuoteSource // nil이면 라이브 조회 안 함
	local   *QuoteCache
	cache   *redis.Cache
	ttl     time.Duration
	breaker *gobreaker.CircuitBreaker
	logger  *logger.Logger
}

// NewResolver creates a resolver. quotes and cache may be nil.
func NewResolver(quotes QuoteSource, cache *redis.Cache, ttl time.Duration, log *logger.Logger) *Resolver {
	if ttl <= 0 {
		ttl = redis.TTLMedium
	}

	st := gobreaker.Settings{Name: "macro-quotes"}
	st.Interval = 60 * time.Second
	st.Timeout = 60 * time.Second
	st.ReadyToTrip = func(counts gobreaker.Counts) bool {
		return counts.ConsecutiveFailures >= 3
	}

	return &Resolver{
		quotes:  quotes,
		local:   NewQuoteCache(ttl, log),
		cache:   cache,
		ttl:     ttl,
		breaker: gobreaker.NewCircuitBreaker(st),
		logger:  log.WithField("module", "macro"),
	}
}

// Resolve merges overrides with live proxies. With live off, the result
// depends only on the overrides.
func (r *Resolver) Resolve(ctx context.Context, overrides contracts.MacroInputs, live bool) contracts.MacroInputs {
	var out contracts.MacroInputs

	for _, p := range proxies {
		if v := overrides.Get(p.field); v != nil {
			out.Set(p.field, *v, contracts.MacroSourceOverride)
			continue
		}
		if !live || r.quotes == nil {
			continue
		}

		v, symbol, err := r.liveValue(ctx, p)
		if err != nil {
			r.logger.WithError(err).WithField("field", p.field).Warn("Macro proxy unavailable")
			continue
		}
		out.Set(p.field, v, contracts.MacroSourceLive)

		r.logger.WithFields(map[string]interface{}{
			"field":  p.field,
			"symbol": symbol,
			"value":  v,
		}).Debug("Resolved live macro input")
	}

	return out
}

// liveValue tries each proxy symbol in order
func (r *Resolver) liveValue(ctx context.Context, p proxy) (float64, string, error) {
	var lastErr error
	for _, symbol := range p.symbols {
		v, err := r.quote(ctx, symbol)
		if err != nil {
			lastErr = err
			continue
		}
		return v * p.scale, symbol, nil
	}
	return 0, "", fmt.Errorf("all proxies failed for %s: %w", p.field, lastErr)
}

// Cache returns the in-process quote cache
func (r *Resolver) Cache() *QuoteCache {
	return r.local
}

// quote returns a cached close or fetches it through the breaker.
// Lookup order: process cache → Redis → Yahoo
func (r *Resolver) quote(ctx context.Context, symbol string) (float64, error) {
	if v, ok := r.local.Fresh(symbol); ok {
		return v, nil
	}

	key := redis.QuoteKey(symbol)

	if r.cache != nil {
		var cached float64
		found, err := r.cache.Get(ctx, key, &cached)
		if err == nil && found {
			r.local.Update(Quote{Symbol: symbol, Value: cached, FetchedAt: time.Now()})
			return cached, nil
		}
	}

	res, err := r.breaker.Execute(func() (interface{}, error) {
		return r.quotes.LastClose(ctx, symbol)
	})
	if err != nil {
		return 0, fmt.Errorf("quote %s: %w", symbol, err)
	}
	v := res.(float64)
	r.local.Update(Quote{Symbol: symbol, Value: v, FetchedAt: time.Now()})

	if r.cache != nil {
		if err := r.cache.Set(ctx, key, v, r.ttl); err != nil {
			r.logger.WithError(err).WithField("symbol", symbol).Warn("Failed to cache quote")
		}
	}
	return v, nil
}
