package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/you/go-trip-discovery/internal/domain"
)

type fakeRates struct {
	rates map[string]float64
	err   error
	calls int32
}

func (f *fakeRates) FetchRate(ctx context.Context, code string) (float64, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.err != nil {
		return 0, f.err
	}
	return f.rates[code], nil
}

func newConverterForTest(rates *fakeRates) *CurrencyConverter {
	return NewCurrencyConverter(rates, "PLN", 24*time.Hour)
}

func TestBaseCurrencyNeverTouchesNetwork(t *testing.T) {
	rates := &fakeRates{}
	c := newConverterForTest(rates)
	ctx := context.Background()

	r, err := c.Rate(ctx, "PLN")
	require.NoError(t, err)
	require.Equal(t, 1.0, r)

	got, err := c.ToBase(ctx, 123.6, "PLN")
	require.NoError(t, err)
	require.Equal(t, 124, got)

	back, err := c.FromBase(ctx, 99.999, "PLN")
	require.NoError(t, err)
	require.Equal(t, 100.0, back)

	require.Equal(t, int32(0), atomic.LoadInt32(&rates.calls))
}

func TestRateValidation(t *testing.T) {
	c := newConverterForTest(&fakeRates{})
	ctx := context.Background()

	for _, code := range []string{"eur", "EU", "EURO", "12A", ""} {
		_, err := c.Rate(ctx, code)
		var ve *domain.ValidationError
		require.ErrorAs(t, err, &ve, "code %q", code)
	}

	// well-formed but outside the whitelist
	_, err := c.Rate(ctx, "ZWL")
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestNegativeAmountsRejected(t *testing.T) {
	c := newConverterForTest(&fakeRates{rates: map[string]float64{"EUR": 4.3}})
	ctx := context.Background()

	_, err := c.ToBase(ctx, -1, "EUR")
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)

	_, err = c.FromBase(ctx, -0.01, "EUR")
	require.ErrorAs(t, err, &ve)
}

func TestRateCachedPerWindow(t *testing.T) {
	rates := &fakeRates{rates: map[string]float64{"EUR": 4.3}}
	c := newConverterForTest(rates)

	base := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	now := base
	c.now = func() time.Time { return now }

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		r, err := c.Rate(ctx, "EUR")
		require.NoError(t, err)
		require.Equal(t, 4.3, r)
	}
	require.Equal(t, int32(1), atomic.LoadInt32(&rates.calls))

	// window expired: one more fetch
	now = base.Add(24*time.Hour + time.Second)
	_, err := c.Rate(ctx, "EUR")
	require.NoError(t, err)
	require.Equal(t, int32(2), atomic.LoadInt32(&rates.calls))
}

func TestHalfAwayFromZeroRounding(t *testing.T) {
	rates := &fakeRates{rates: map[string]float64{"EUR": 2.0}}
	c := newConverterForTest(rates)
	ctx := context.Background()

	// 100.25 EUR * 2.0 = 200.5 -> rounds away from zero to 201
	got, err := c.ToBase(ctx, 100.25, "EUR")
	require.NoError(t, err)
	require.Equal(t, 201, got)

	// 1 PLN / 2.0 = 0.5; 0.005 ties round up at the second decimal
	back, err := c.FromBase(ctx, 1.01, "EUR")
	require.NoError(t, err)
	require.Equal(t, 0.51, back)
}

func TestRoundTripWithinOneUnit(t *testing.T) {
	rates := &fakeRates{rates: map[string]float64{
		"EUR": 4.3215, "USD": 3.9876, "GBP": 5.0342, "CZK": 0.1761, "JPY": 0.0269,
	}}
	c := newConverterForTest(rates)
	ctx := context.Background()

	for code := range rates.rates {
		for _, amount := range []float64{0, 1, 17, 250, 999, 12345} {
			foreign, err := c.FromBase(ctx, amount, code)
			require.NoError(t, err)
			back, err := c.ToBase(ctx, foreign, code)
			require.NoError(t, err)
			if diff := float64(back) - amount; diff > 1 || diff < -1 {
				t.Fatalf("round trip %v %s drifted by %v units", amount, code, diff)
			}
		}
	}
}

func TestRateFetchErrorPropagates(t *testing.T) {
	rates := &fakeRates{err: &domain.NotFoundError{Resource: "currency", Key: "EUR"}}
	c := newConverterForTest(rates)

	_, err := c.Rate(context.Background(), "EUR")
	require.True(t, domain.IsNotFound(err))
}
