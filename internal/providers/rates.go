package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/you/go-trip-discovery/internal/config"
	"github.com/you/go-trip-discovery/internal/domain"
)

// RateClient fetches mid exchange rates from the table-A endpoint of the
// rate provider. A missing currency is a 404.
type RateClient struct {
	host   string
	path   string
	client *http.Client
}

func NewRateClient(cfg *config.Config) *RateClient {
	return &RateClient{
		host:   cfg.RatesURL,
		path:   "/api/exchangerates/rates/a/",
		client: defaultHTTPClient(),
	}
}

// FetchRate returns units of base currency per one unit of code.
func (c *RateClient) FetchRate(ctx context.Context, code string) (float64, error) {
	u := c.host + c.path + url.PathEscape(code) + "/?format=json"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if domain.IsTimeout(err) {
			return 0, &domain.TimeoutError{Op: "exchange rate fetch", Err: err}
		}
		return 0, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return 0, &domain.NotFoundError{Resource: "currency", Key: code}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return 0, &domain.ProviderError{Provider: "exchange-rate", Status: resp.StatusCode, Body: readBody(resp.Body)}
	}

	var payload struct {
		Code  string `json:"code"`
		Rates []struct {
			EffectiveDate string  `json:"effectiveDate"`
			Mid           float64 `json:"mid"`
		} `json:"rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, err
	}
	if len(payload.Rates) == 0 {
		return 0, &domain.NotFoundError{Resource: "currency", Key: code}
	}
	return payload.Rates[len(payload.Rates)-1].Mid, nil
}
