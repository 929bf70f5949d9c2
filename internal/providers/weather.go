package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/you/go-trip-discovery/internal/config"
	"github.com/you/go-trip-discovery/internal/domain"
)

// DailyForecast is the per-day forecast series for one location. All slices
// are indexed by day, parallel to Dates.
type DailyForecast struct {
	Dates             []string
	TempMax           []float64
	TempMin           []float64
	TempMean          []float64
	PrecipProbability []float64
	WindSpeedMax      []float64
	UVIndexMax        []float64
	Sunrise           []string
	Sunset            []string
	WeatherCode       []int
}

// Days is the number of forecast days present in every series.
func (f *DailyForecast) Days() int { return len(f.Dates) }

// WeatherClient fetches a multi-day forecast by coordinates and date range.
type WeatherClient struct {
	host   string
	path   string
	client *http.Client
}

func NewWeatherClient(cfg *config.Config) *WeatherClient {
	return &WeatherClient{
		host:   cfg.WeatherURL,
		path:   "/v1/forecast",
		client: defaultHTTPClient(),
	}
}

func (c *WeatherClient) Forecast(ctx context.Context, lat, lon float64, startDate, endDate string) (*DailyForecast, error) {
	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(lat, 'f', 4, 64))
	params.Set("longitude", strconv.FormatFloat(lon, 'f', 4, 64))
	params.Set("daily", "temperature_2m_max,temperature_2m_min,temperature_2m_mean,precipitation_probability_max,wind_speed_10m_max,uv_index_max,sunrise,sunset,weather_code")
	params.Set("timezone", "auto")
	if startDate != "" {
		params.Set("start_date", startDate)
	}
	if endDate != "" {
		params.Set("end_date", endDate)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.host+c.path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if domain.IsTimeout(err) {
			return nil, &domain.TimeoutError{Op: "weather forecast fetch", Err: err}
		}
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &domain.ProviderError{Provider: "weather", Status: resp.StatusCode, Body: readBody(resp.Body)}
	}

	var payload struct {
		Daily struct {
			Time              []string  `json:"time"`
			TempMax           []float64 `json:"temperature_2m_max"`
			TempMin           []float64 `json:"temperature_2m_min"`
			TempMean          []float64 `json:"temperature_2m_mean"`
			PrecipProbability []float64 `json:"precipitation_probability_max"`
			WindSpeedMax      []float64 `json:"wind_speed_10m_max"`
			UVIndexMax        []float64 `json:"uv_index_max"`
			Sunrise           []string  `json:"sunrise"`
			Sunset            []string  `json:"sunset"`
			WeatherCode       []int     `json:"weather_code"`
		} `json:"daily"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	if len(payload.Daily.Time) == 0 {
		return nil, &domain.NotFoundError{Resource: "forecast", Key: params.Get("latitude") + "," + params.Get("longitude")}
	}

	return &DailyForecast{
		Dates:             payload.Daily.Time,
		TempMax:           payload.Daily.TempMax,
		TempMin:           payload.Daily.TempMin,
		TempMean:          payload.Daily.TempMean,
		PrecipProbability: payload.Daily.PrecipProbability,
		WindSpeedMax:      payload.Daily.WindSpeedMax,
		UVIndexMax:        payload.Daily.UVIndexMax,
		Sunrise:           payload.Daily.Sunrise,
		Sunset:            payload.Daily.Sunset,
		WeatherCode:       payload.Daily.WeatherCode,
	}, nil
}
