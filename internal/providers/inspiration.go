package providers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/you/go-trip-discovery/internal/config"
	"github.com/you/go-trip-discovery/internal/domain"
)

// TokenSource is the slice of TokenClient the inspiration client needs.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
	Invalidate()
}

// InspirationQuery is one flight-inspiration lookup. MaxPrice is expressed in
// the provider's settlement currency.
type InspirationQuery struct {
	Origin        string
	DepartureDate string
	Duration      int
	MaxPrice      float64
	OneWay        bool
	ViewBy        string
}

// InspirationResult is one raw destination suggestion, price still in the
// provider's currency.
type InspirationResult struct {
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	DepartureDate string `json:"departureDate"`
	ReturnDate    string `json:"returnDate"`
	Price         struct {
		Total    string `json:"total"`
		Currency string `json:"currency"`
	} `json:"price"`
	Stops int `json:"stops"`
	Links struct {
		FlightOffers string `json:"flightOffers"`
		FlightDates  string `json:"flightDates"`
	} `json:"links"`
}

// InspirationClient calls the flight-inspiration search endpoint with a
// cached bearer token. A stale-token 401 is retried exactly once after
// invalidating the cache; 404 is a valid empty result, not an error.
type InspirationClient struct {
	host       string
	searchPath string
	client     *http.Client
	tokens     TokenSource
}

func NewInspirationClient(cfg *config.Config, tokens TokenSource) *InspirationClient {
	return &InspirationClient{
		host:       cfg.AmadeusURL,
		searchPath: "/v1/shopping/flight-destinations",
		client:     defaultHTTPClient(),
		tokens:     tokens,
	}
}

func (c *InspirationClient) Search(ctx context.Context, q InspirationQuery) ([]InspirationResult, error) {
	res, err := c.search(ctx, q)
	var pe *domain.ProviderError
	if errors.As(err, &pe) && pe.Status == http.StatusUnauthorized {
		c.tokens.Invalidate()
		return c.search(ctx, q)
	}
	return res, err
}

func (c *InspirationClient) search(ctx context.Context, q InspirationQuery) ([]InspirationResult, error) {
	tok, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("origin", q.Origin)
	if q.DepartureDate != "" {
		params.Set("departureDate", q.DepartureDate)
	}
	if q.Duration > 0 {
		params.Set("duration", strconv.Itoa(q.Duration))
	}
	if q.MaxPrice > 0 {
		params.Set("maxPrice", strconv.Itoa(int(q.MaxPrice)))
	}
	params.Set("oneWay", strconv.FormatBool(q.OneWay))
	if q.ViewBy != "" {
		params.Set("viewBy", q.ViewBy)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.host+c.searchPath+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+tok)

	resp, err := c.client.Do(req)
	if err != nil {
		if domain.IsTimeout(err) {
			return nil, &domain.TimeoutError{Op: "flight inspiration search", Err: err}
		}
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		// Zero matches for the constraints. Valid outcome.
		return []InspirationResult{}, nil
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, &domain.ProviderError{Provider: "flight-inspiration", Status: resp.StatusCode, Body: readBody(resp.Body)}
	}

	var payload struct {
		Data []InspirationResult `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	return payload.Data, nil
}
