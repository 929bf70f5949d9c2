package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/you/go-trip-discovery/internal/domain"
)

// SearchResult is one full discovery response.
type SearchResult struct {
	Recommendations []domain.DestinationOffer `json:"recommendations"`
	Explanation     string                    `json:"explanation"`
	ExecutionTimeMs int64                     `json:"execution_time_ms"`
	StagesInvoked   []string                  `json:"stages_invoked"`
}

// Searcher is the slice of FlexibleDateSearcher the orchestrator drives.
type Searcher interface {
	SearchSingleDate(ctx context.Context, p SearchParams) ([]domain.DestinationOffer, error)
	SearchFlexibleWindow(ctx context.Context, p SearchParams) ([]domain.DestinationOffer, error)
}

// Enricher is the slice of WeatherEnricher the orchestrator drives.
type Enricher interface {
	Enrich(ctx context.Context, offers []domain.DestinationOffer) []domain.DestinationOffer
}

// Trip duration is clamped to what the inspiration provider accepts.
const (
	minDurationDays = 1
	maxDurationDays = 15
)

// styleDurations is the default trip length per travel style when the
// request carries no return date.
var styleDurations = map[string]int{
	"culture":   4,
	"beach":     7,
	"adventure": 5,
	"nature":    5,
	"nightlife": 3,
}

const fallbackDurationDays = 5

// Orchestrator wires search, enrichment and ranking into one
// request/response cycle.
type Orchestrator struct {
	searcher     Searcher
	enricher     Enricher
	ranker       *DestinationRanker
	recent       *RecentSearches
	baseCurrency string
	log          *slog.Logger
	now          func() time.Time
}

func NewOrchestrator(searcher Searcher, enricher Enricher, ranker *DestinationRanker, recent *RecentSearches, baseCurrency string, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		searcher:     searcher,
		enricher:     enricher,
		ranker:       ranker,
		recent:       recent,
		baseCurrency: baseCurrency,
		log:          log,
		now:          time.Now,
	}
}

// Run executes the full pipeline. Provider or auth failures from the primary
// search are fatal for the request; enrichment failures never are.
func (o *Orchestrator) Run(ctx context.Context, req domain.SearchRequest) (*SearchResult, error) {
	start := o.now()
	var stages []string

	params := SearchParams{
		Origin:        strings.ToUpper(strings.TrimSpace(req.Origin)),
		Budget:        req.Budget,
		DepartureDate: req.DepartureDate,
		DurationDays:  tripDuration(req),
	}

	var (
		offers []domain.DestinationOffer
		err    error
	)
	if req.FlexibleDates {
		stages = append(stages, "flexible_search")
		offers, err = o.searcher.SearchFlexibleWindow(ctx, params)
	} else {
		stages = append(stages, "single_search")
		offers, err = o.searcher.SearchSingleDate(ctx, params)
	}
	if err != nil {
		return nil, err
	}
	if len(offers) == 0 {
		return nil, &domain.NoResultsError{Origin: params.Origin, Budget: req.Budget, TravelStyle: req.TravelStyle}
	}

	stages = append(stages, "weather_enrichment")
	offers = o.enricher.Enrich(ctx, offers)

	stages = append(stages, "ranking")
	ranked := o.ranker.Rank(offers, req)

	elapsed := o.now().Sub(start).Milliseconds()
	result := &SearchResult{
		Recommendations: ranked,
		Explanation:     o.explain(req, ranked),
		ExecutionTimeMs: elapsed,
		StagesInvoked:   stages,
	}

	if o.recent != nil {
		o.recent.Record(SearchSummary{
			At:             start,
			Origin:         params.Origin,
			Budget:         req.Budget,
			TravelStyle:    req.TravelStyle,
			Results:        len(ranked),
			TopDestination: ranked[0].DestinationCode,
			TopPrice:       ranked[0].Price,
		})
	}
	o.log.Info("discovery finished", "origin", params.Origin, "results", len(ranked), "elapsed_ms", elapsed)
	return result, nil
}

// tripDuration derives the trip length from explicit dates, clamped to the
// provider's limits, or from the travel style when dates are absent.
func tripDuration(req domain.SearchRequest) int {
	if req.DepartureDate != "" && req.ReturnDate != "" {
		dep, err1 := time.Parse("2006-01-02", req.DepartureDate)
		ret, err2 := time.Parse("2006-01-02", req.ReturnDate)
		if err1 == nil && err2 == nil {
			days := int(ret.Sub(dep).Hours() / 24)
			if days < minDurationDays {
				days = minDurationDays
			}
			if days > maxDurationDays {
				days = maxDurationDays
			}
			return days
		}
	}
	if d, ok := styleDurations[strings.ToLower(strings.TrimSpace(req.TravelStyle))]; ok {
		return d
	}
	return fallbackDurationDays
}

// explain builds the human-readable summary: the top pick with price,
// savings, weather and stops, then up to three alternatives.
func (o *Orchestrator) explain(req domain.SearchRequest, ranked []domain.DestinationOffer) string {
	if len(ranked) == 0 {
		return ""
	}
	top := ranked[0]

	var b strings.Builder
	fmt.Fprintf(&b, "Top pick: %s (%s) at %d %s", top.DestinationName, top.DestinationCode, top.Price, o.baseCurrency)
	if savings := req.Budget - top.Price; savings > 0 {
		fmt.Fprintf(&b, ", %d %s under your %d %s budget", savings, o.baseCurrency, req.Budget, o.baseCurrency)
	}
	if top.Weather != nil {
		fmt.Fprintf(&b, ", %.1f°C and %s on arrival", top.Weather.AvgTemperature, top.Weather.Condition)
	}
	if top.Stops == 0 {
		b.WriteString(", non-stop")
	} else {
		fmt.Fprintf(&b, ", %d stop(s)", top.Stops)
	}
	b.WriteString(".")

	if len(ranked) > 1 {
		b.WriteString(" Also consider:")
		for i, alt := range ranked[1:] {
			if i == 3 {
				break
			}
			if i > 0 {
				b.WriteString(";")
			}
			fmt.Fprintf(&b, " %s (%s) at %d %s", alt.DestinationName, alt.DestinationCode, alt.Price, o.baseCurrency)
		}
		b.WriteString(".")
	}
	return b.String()
}
