package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/you/go-trip-discovery/internal/domain"
	"github.com/you/go-trip-discovery/internal/providers"
)

// ForecastFetcher fetches a multi-day forecast for one coordinate pair.
type ForecastFetcher interface {
	Forecast(ctx context.Context, lat, lon float64, startDate, endDate string) (*providers.DailyForecast, error)
}

// LocationResolver is the slice of GeocodingResolver the enricher needs.
type LocationResolver interface {
	BatchResolve(ctx context.Context, iataCodes []string) map[string]domain.AirportLocation
}

// WeatherEnricher attaches a day-one forecast summary to each offer whose
// destination it can resolve and forecast. Enrichment is best-effort: any
// per-destination failure leaves the affected offers unmodified.
type WeatherEnricher struct {
	resolver  LocationResolver
	forecasts ForecastFetcher
	log       *slog.Logger
	now       func() time.Time
}

func NewWeatherEnricher(resolver LocationResolver, forecasts ForecastFetcher, log *slog.Logger) *WeatherEnricher {
	return &WeatherEnricher{resolver: resolver, forecasts: forecasts, log: log, now: time.Now}
}

type forecastTarget struct {
	code      string
	loc       domain.AirportLocation
	startDate string
	endDate   string
}

func (e *WeatherEnricher) Enrich(ctx context.Context, offers []domain.DestinationOffer) []domain.DestinationOffer {
	if len(offers) == 0 {
		return offers
	}

	// One lookup per distinct destination; each code borrows the date range
	// of the first offer that mentions it.
	dates := make(map[string][2]string)
	var codes []string
	for _, o := range offers {
		key := strings.ToUpper(strings.TrimSpace(o.DestinationCode))
		if _, ok := dates[key]; ok {
			continue
		}
		dates[key] = [2]string{o.DepartureDate, o.ReturnDate}
		codes = append(codes, key)
	}

	locations := e.resolver.BatchResolve(ctx, codes)

	var targets []forecastTarget
	for _, code := range codes {
		loc, ok := locations[code]
		if !ok {
			continue
		}
		d := dates[code]
		targets = append(targets, forecastTarget{code: code, loc: loc, startDate: d[0], endDate: d[1]})
	}

	results := gatherAll(ctx, targets, 0, func(ctx context.Context, t forecastTarget) (*providers.DailyForecast, error) {
		return e.forecasts.Forecast(ctx, t.loc.Coordinates.Lat, t.loc.Coordinates.Lon, t.startDate, t.endDate)
	})

	summaries := make(map[string]domain.WeatherSummary, len(results))
	for _, g := range results {
		if g.Err != nil {
			e.log.Warn("forecast skipped", "iata_code", g.In.code, "error", g.Err)
			continue
		}
		summaries[g.In.code] = e.summarize(g.In.code, g.Out)
	}

	enriched := make([]domain.DestinationOffer, len(offers))
	for i, o := range offers {
		enriched[i] = o
		if s, ok := summaries[strings.ToUpper(strings.TrimSpace(o.DestinationCode))]; ok {
			attached := s
			enriched[i].Weather = &attached
		}
	}

	e.log.Info("weather enrichment finished",
		"destinations", len(codes),
		"enriched", len(summaries),
		"ratio", float64(len(summaries))/float64(len(codes)))
	return enriched
}

// summarize condenses day one of a forecast into the offer attachment.
func (e *WeatherEnricher) summarize(code string, f *providers.DailyForecast) domain.WeatherSummary {
	s := domain.WeatherSummary{DestinationCode: code, FetchedAt: e.now()}
	if f.Days() == 0 {
		return s
	}
	switch {
	case len(f.TempMean) > 0:
		s.AvgTemperature = f.TempMean[0]
	case len(f.TempMax) > 0 && len(f.TempMin) > 0:
		s.AvgTemperature = (f.TempMax[0] + f.TempMin[0]) / 2
	}
	if len(f.WeatherCode) > 0 {
		s.Condition = conditionForCode(f.WeatherCode[0])
	}
	if len(f.WindSpeedMax) > 0 {
		wind := f.WindSpeedMax[0]
		s.WindSpeed = &wind
	}
	return s
}

// conditionForCode maps a WMO weather interpretation code to a short label.
func conditionForCode(code int) string {
	switch {
	case code == 0:
		return "clear"
	case code <= 3:
		return "partly cloudy"
	case code == 45 || code == 48:
		return "fog"
	case code >= 51 && code <= 57:
		return "drizzle"
	case code >= 61 && code <= 67:
		return "rain"
	case code >= 71 && code <= 77:
		return "snow"
	case code >= 80 && code <= 82:
		return "showers"
	case code == 85 || code == 86:
		return "snow showers"
	case code >= 95:
		return "thunderstorm"
	default:
		return "unknown"
	}
}
