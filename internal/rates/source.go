// Package rates supplies the exchange-rate table the derivation engine
// divides by: units of each currency per 1 unit of the reference currency.
package rates

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/apiclient"
	"fintrack/internal/domain"
	"fintrack/internal/normalize"
	"fintrack/pkg/cache"
	errs "fintrack/pkg/errors"
	"fintrack/pkg/logger"
)

const cacheKey = "rates:" + string(domain.ReferenceCurrency)

// Source resolves rates through three tiers: in-memory map, shared cache,
// then the HTTP endpoint. The endpoint returns either a bare list or a
// {"data": [...]} envelope depending on query parameters.
type Source struct {
	api    *apiclient.Client
	cache  cache.Store
	logger logger.Logger
	ttl    time.Duration

	mu        sync.RWMutex
	rates     map[domain.Currency]decimal.Decimal
	fetchedAt time.Time
}

// NewSource constructs a Source. store may be nil when no shared cache is
// configured; the in-memory tier still applies.
func NewSource(api *apiclient.Client, store cache.Store, log logger.Logger, ttl time.Duration) *Source {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &Source{
		api:    api,
		cache:  store,
		logger: log,
		ttl:    ttl,
	}
}

// Rates returns the current rate table. The returned map is the caller's
// to keep; mutations do not affect the cached copy.
func (s *Source) Rates(ctx context.Context) (map[domain.Currency]decimal.Decimal, error) {
	s.mu.RLock()
	if s.rates != nil && time.Since(s.fetchedAt) < s.ttl {
		fresh := copyRates(s.rates)
		s.mu.RUnlock()
		return fresh, nil
	}
	s.mu.RUnlock()

	if s.cache != nil {
		var records []domain.Rate
		if err := s.cache.Get(ctx, cacheKey, &records); err == nil && len(records) > 0 {
			table := buildTable(records)
			s.update(table)
			return copyRates(table), nil
		}
	}

	raw, err := s.api.Get(ctx, "/rates?base="+string(domain.ReferenceCurrency))
	if err != nil {
		return nil, err
	}

	records := normalize.Slice[domain.Rate](s.logger, raw)
	if len(records) == 0 {
		return nil, errs.ErrRateNotAvailable
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, records, s.ttl); err != nil {
			s.logger.Warn("Failed to cache rates", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	table := buildTable(records)
	s.update(table)
	return copyRates(table), nil
}

func (s *Source) update(table map[domain.Currency]decimal.Decimal) {
	s.mu.Lock()
	s.rates = table
	s.fetchedAt = time.Now()
	s.mu.Unlock()
}

func buildTable(records []domain.Rate) map[domain.Currency]decimal.Decimal {
	table := make(map[domain.Currency]decimal.Decimal, len(records))
	for _, r := range records {
		if r.Code == "" || !r.Rate.IsPositive() {
			continue
		}
		table[r.Code] = r.Rate
	}
	return table
}

func copyRates(table map[domain.Currency]decimal.Decimal) map[domain.Currency]decimal.Decimal {
	fresh := make(map[domain.Currency]decimal.Decimal, len(table))
	for k, v := range table {
		fresh[k] = v
	}
	return fresh
}
