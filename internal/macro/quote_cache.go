package macro

import (
	"sync"
	"time"

	"github.com/wonny/screener/pkg/logger"
)

// Quote is one cached market close
type Quote struct {
	Symbol    string    `json:"symbol"`
	Value     float64   `json:"value"`
	FetchedAt time.Time `json:"fetched_at"`
	IsStale   bool      `json:"is_stale"`
}

// QuoteCache is an in-process cache of macro proxy quotes.
// It sits in front of Redis so repeated runs in one process skip the network
// even when REDIS_ENABLED=false.
type QuoteCache struct {
	mu     sync.RWMutex
	quotes map[string]*Quote
	ttl    time.Duration
	now    func() time.Time
	logger *logger.Logger
}

// NewQuoteCache creates a new quote cache
func NewQuoteCache(ttl time.Duration, log *logger.Logger) *QuoteCache {
	return &QuoteCache{
		quotes: make(map[string]*Quote),
		ttl:    ttl,
		now:    time.Now,
		logger: log,
	}
}

// Update stores a quote. Older data than the cached entry is rejected.
func (c *QuoteCache) Update(q Quote) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.quotes[q.Symbol]; ok && q.FetchedAt.Before(existing.FetchedAt) {
		c.logger.WithFields(map[string]interface{}{
			"symbol":   q.Symbol,
			"new_time": q.FetchedAt,
			"old_time": existing.FetchedAt,
		}).Debug("Rejected older quote")
		return false
	}

	q.IsStale = c.now().Sub(q.FetchedAt) > c.ttl
	c.quotes[q.Symbol] = &q
	return true
}

// Get returns a copy of the cached quote with its staleness refreshed
func (c *QuoteCache) Get(symbol string) (Quote, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	q, ok := c.quotes[symbol]
	if !ok {
		return Quote{}, false
	}
	out := *q
	out.IsStale = c.now().Sub(q.FetchedAt) > c.ttl
	return out, true
}

// Fresh returns the cached value only while it is within the TTL
func (c *QuoteCache) Fresh(symbol string) (float64, bool) {
	q, ok := c.Get(symbol)
	if !ok || q.IsStale {
		return 0, false
	}
	return q.Value, true
}

// Len returns the number of cached quotes
func (c *QuoteCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.quotes)
}

// CleanStale removes expired quotes and returns how many were removed
func (c *QuoteCache) CleanStale() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	count := 0
	for symbol, q := range c.quotes {
		if now.Sub(q.FetchedAt) > c.ttl {
			delete(c.quotes, symbol)
			count++
		}
	}

	if count > 0 {
		c.logger.WithField("count", count).Debug("Cleaned stale quotes")
	}

	return count
}

// Stats returns cache statistics
func (c *QuoteCache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := CacheStats{TotalCount: len(c.quotes)}
	now := c.now()
	for _, q := range c.quotes {
		if now.Sub(q.FetchedAt) > c.ttl {
			stats.StaleCount++
		}
	}
	stats.FreshCount = stats.TotalCount - stats.StaleCount

	return stats
}

// CacheStats represents cache statistics
type CacheStats struct {
	TotalCount int `json:"total_count"`
	FreshCount int `json:"fresh_count"`
	StaleCount int `json:"stale_count"`
}
