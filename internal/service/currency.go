package service

import (
	"context"
	"math"
	"regexp"
	"sync"
	"time"

	"github.com/you/go-trip-discovery/internal/domain"
)

// RateFetcher fetches a fresh exchange rate for one currency code.
type RateFetcher interface {
	FetchRate(ctx context.Context, code string) (float64, error)
}

var currencyCodePattern = regexp.MustCompile(`^[A-Z]{3}$`)

// supportedCurrencies is the fixed whitelist of codes the converter accepts.
// The base currency itself must be a member.
var supportedCurrencies = map[string]struct{}{
	"PLN": {}, "EUR": {}, "USD": {}, "GBP": {}, "CHF": {},
	"CZK": {}, "SEK": {}, "NOK": {}, "DKK": {}, "HUF": {},
	"JPY": {}, "CAD": {}, "AUD": {},
}

// CurrencyConverter converts amounts between the base currency and any
// whitelisted foreign currency, caching fetched rates for a fixed TTL.
//
// Rounding is half-away-from-zero (math.Round): ToBase to whole units,
// FromBase to two decimals.
type CurrencyConverter struct {
	rates RateFetcher
	base  string
	ttl   time.Duration

	mu    sync.RWMutex
	cache map[string]domain.ExchangeRate

	now func() time.Time
}

func NewCurrencyConverter(rates RateFetcher, baseCurrency string, ttl time.Duration) *CurrencyConverter {
	return &CurrencyConverter{
		rates: rates,
		base:  baseCurrency,
		ttl:   ttl,
		cache: make(map[string]domain.ExchangeRate),
		now:   time.Now,
	}
}

// BaseCurrency returns the currency all offers are normalized to.
func (c *CurrencyConverter) BaseCurrency() string { return c.base }

// Rate returns units of base currency per one unit of code. The base
// currency is always 1.0 and never touches the network or the cache.
func (c *CurrencyConverter) Rate(ctx context.Context, code string) (float64, error) {
	if !currencyCodePattern.MatchString(code) {
		return 0, &domain.ValidationError{Field: "currency code", Reason: "must be 3 uppercase letters, got " + code}
	}
	if _, ok := supportedCurrencies[code]; !ok {
		return 0, &domain.ValidationError{Field: "currency code", Reason: code + " is not a supported currency"}
	}
	if code == c.base {
		return 1.0, nil
	}

	c.mu.RLock()
	if cached, ok := c.cache[code]; ok && c.now().Before(cached.ExpiresAt) {
		c.mu.RUnlock()
		return cached.Rate, nil
	}
	c.mu.RUnlock()

	rate, err := c.rates.FetchRate(ctx, code)
	if err != nil {
		return 0, err
	}

	// A rare concurrent double-fetch just overwrites with an equally fresh
	// rate, so no fetch lock is held here.
	c.mu.Lock()
	c.cache[code] = domain.ExchangeRate{
		CurrencyCode: code,
		Rate:         rate,
		FetchedAt:    c.now(),
		ExpiresAt:    c.now().Add(c.ttl),
	}
	c.mu.Unlock()
	return rate, nil
}

// ToBase converts amount from fromCode into whole units of base currency.
func (c *CurrencyConverter) ToBase(ctx context.Context, amount float64, fromCode string) (int, error) {
	if amount < 0 {
		return 0, &domain.ValidationError{Field: "amount", Reason: "must not be negative"}
	}
	if fromCode == c.base {
		return int(math.Round(amount)), nil
	}
	rate, err := c.Rate(ctx, fromCode)
	if err != nil {
		return 0, err
	}
	return int(math.Round(amount * rate)), nil
}

// FromBase converts amount of base currency into toCode, two decimals.
func (c *CurrencyConverter) FromBase(ctx context.Context, amount float64, toCode string) (float64, error) {
	if amount < 0 {
		return 0, &domain.ValidationError{Field: "amount", Reason: "must not be negative"}
	}
	if toCode == c.base {
		return round2(amount), nil
	}
	rate, err := c.Rate(ctx, toCode)
	if err != nil {
		return 0, err
	}
	return round2(amount / rate), nil
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
