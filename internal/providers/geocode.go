package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/you/go-trip-discovery/internal/config"
	"github.com/you/go-trip-discovery/internal/domain"
)

// GeoClient resolves a free-text place name to coordinates. Every lookup is
// bounded by its own timeout so one slow call cannot stall a batch.
type GeoClient struct {
	host    string
	path    string
	client  *http.Client
	timeout time.Duration
}

func NewGeoClient(cfg *config.Config) *GeoClient {
	return &GeoClient{
		host:    cfg.GeocodeURL,
		path:    "/v1/search",
		client:  defaultHTTPClient(),
		timeout: cfg.GeoTimeout,
	}
}

// Lookup returns the best-match coordinates and country code for name.
func (c *GeoClient) Lookup(ctx context.Context, name string) (domain.Coordinates, string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := url.Values{}
	params.Set("name", name)
	params.Set("count", "1")
	params.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.host+c.path+"?"+params.Encode(), nil)
	if err != nil {
		return domain.Coordinates{}, "", err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if domain.IsTimeout(err) {
			return domain.Coordinates{}, "", &domain.TimeoutError{Op: "geocoding lookup", Err: err}
		}
		return domain.Coordinates{}, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.Coordinates{}, "", &domain.ProviderError{Provider: "geocoding", Status: resp.StatusCode, Body: readBody(resp.Body)}
	}

	var payload struct {
		Results []struct {
			Name        string  `json:"name"`
			Latitude    float64 `json:"latitude"`
			Longitude   float64 `json:"longitude"`
			CountryCode string  `json:"country_code"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.Coordinates{}, "", err
	}
	if len(payload.Results) == 0 {
		return domain.Coordinates{}, "", &domain.NotFoundError{Resource: "place", Key: name}
	}

	best := payload.Results[0]
	return domain.Coordinates{Lat: best.Latitude, Lon: best.Longitude}, best.CountryCode, nil
}
