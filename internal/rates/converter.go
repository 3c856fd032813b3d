// Package rates converts transaction amounts to the reference currency.
// Every conversion returns the versioned quote that produced it so
// assessments and report snapshots stay reproducible for audit.
package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/moneyex/compliance-service/internal/config"
	"github.com/moneyex/compliance-service/internal/domain"
	"github.com/moneyex/compliance-service/internal/pkg/logger"
)

// Source supplies a conversion rate into the reference currency
type Source interface {
	Quote(ctx context.Context, currency string) (*domain.RateQuote, error)
}

// StaticSource serves rates from the configured table. It is the dev
// fallback; production points Source at the external rate service.
type StaticSource struct {
	reference string
	version   string
	table     map[string]decimal.Decimal
	now       func() time.Time
}

// NewStaticSource builds a static source from configuration
func NewStaticSource(cfg *config.RatesConfig) *StaticSource {
	table := make(map[string]decimal.Decimal, len(cfg.StaticTable))
	for currency, rate := range cfg.StaticTable {
		table[strings.ToUpper(currency)] = decimal.NewFromFloat(rate)
	}
	return &StaticSource{
		reference: strings.ToUpper(cfg.ReferenceCurrency),
		version:   cfg.SourceVersion,
		table:     table,
		now:       time.Now,
	}
}

// Quote returns the static rate for a currency
func (s *StaticSource) Quote(_ context.Context, currency string) (*domain.RateQuote, error) {
	currency = strings.ToUpper(currency)
	rate, ok := s.table[currency]
	if !ok {
		return nil, fmt.Errorf("no rate for currency %s", currency)
	}
	return &domain.RateQuote{
		FromCurrency: currency,
		ToCurrency:   s.reference,
		Rate:         rate,
		Version:      s.version,
		RetrievedAt:  s.now(),
	}, nil
}

// CachedSource decorates a Source with a Redis cache so repeated
// conversions within the TTL reuse the same quote
type CachedSource struct {
	source Source
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

// NewCachedSource wraps a source with a Redis cache
func NewCachedSource(source Source, client *redis.Client, ttl time.Duration, log *logger.Logger) *CachedSource {
	return &CachedSource{
		source: source,
		client: client,
		ttl:    ttl,
		log:    log.Named("rate_cache"),
	}
}

func rateKey(currency string) string {
	return "rates:" + strings.ToUpper(currency)
}

// Quote serves from cache when possible, falling back to the source. A
// cache failure is only logged; the source still answers.
func (c *CachedSource) Quote(ctx context.Context, currency string) (*domain.RateQuote, error) {
	key := rateKey(currency)

	if cached, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var quote domain.RateQuote
		if err := json.Unmarshal(cached, &quote); err == nil {
			return &quote, nil
		}
	}

	quote, err := c.source.Quote(ctx, currency)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(quote); err == nil {
		if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			c.log.Warn("rate cache write failed", logger.ErrorField(err))
		}
	}

	return quote, nil
}

// Converter turns amounts into the reference currency using a Source
type Converter struct {
	source    Source
	reference string
}

// NewConverter creates a converter over a rate source
func NewConverter(source Source, cfg *config.RatesConfig) *Converter {
	return &Converter{
		source:    source,
		reference: strings.ToUpper(cfg.ReferenceCurrency),
	}
}

// ToReference converts an amount to the reference currency and returns
// the quote used. Amounts already in the reference currency pass
// through with a unit quote.
func (c *Converter) ToReference(ctx context.Context, amount decimal.Decimal, currency string) (decimal.Decimal, *domain.RateQuote, error) {
	currency = strings.ToUpper(currency)
	if currency == c.reference {
		return amount, &domain.RateQuote{
			FromCurrency: currency,
			ToCurrency:   c.reference,
			Rate:         decimal.NewFromInt(1),
			Version:      "identity",
			RetrievedAt:  time.Now(),
		}, nil
	}

	quote, err := c.source.Quote(ctx, currency)
	if err != nil {
		return decimal.Zero, nil, err
	}
	return amount.Mul(quote.Rate).Round(2), quote, nil
}
