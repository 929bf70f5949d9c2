package service

import (
	"context"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/you/go-trip-discovery/internal/domain"
	"github.com/you/go-trip-discovery/internal/providers"
)

// InspirationSearcher is the slice of the inspiration client the searcher
// depends on. The client owns the single 401 retry.
type InspirationSearcher interface {
	Search(ctx context.Context, q providers.InspirationQuery) ([]providers.InspirationResult, error)
}

// Converter is the slice of CurrencyConverter the searcher depends on.
type Converter interface {
	ToBase(ctx context.Context, amount float64, fromCode string) (int, error)
	FromBase(ctx context.Context, amount float64, toCode string) (float64, error)
}

// SearchParams is one provider-facing search. Budget is in whole units of
// the base currency.
type SearchParams struct {
	Origin        string
	Budget        int
	DepartureDate string
	DurationDays  int
}

const weekBucket = 7 * 24 * time.Hour

// FlexibleDateSearcher queries the inspiration endpoint for one date or a
// ±flexDays window around it, normalizing all prices to the base currency.
type FlexibleDateSearcher struct {
	inspiration InspirationSearcher
	converter   Converter
	settlement  string
	flexDays    int
	maxOffers   int
	log         *slog.Logger
}

func NewFlexibleDateSearcher(inspiration InspirationSearcher, converter Converter, settlementCurrency string, flexDays, maxOffers int, log *slog.Logger) *FlexibleDateSearcher {
	return &FlexibleDateSearcher{
		inspiration: inspiration,
		converter:   converter,
		settlement:  settlementCurrency,
		flexDays:    flexDays,
		maxOffers:   maxOffers,
		log:         log,
	}
}

// SearchSingleDate runs one inspiration call. The budget is converted into
// the provider's settlement currency on the way out, every result price back
// into the base currency on the way in. An empty slice is a valid outcome.
func (s *FlexibleDateSearcher) SearchSingleDate(ctx context.Context, p SearchParams) ([]domain.DestinationOffer, error) {
	maxPrice, err := s.converter.FromBase(ctx, float64(p.Budget), s.settlement)
	if err != nil {
		return nil, err
	}

	results, err := s.inspiration.Search(ctx, providers.InspirationQuery{
		Origin:        p.Origin,
		DepartureDate: p.DepartureDate,
		Duration:      p.DurationDays,
		MaxPrice:      maxPrice,
		OneWay:        false,
		ViewBy:        "DESTINATION",
	})
	if err != nil {
		return nil, err
	}

	offers := make([]domain.DestinationOffer, 0, len(results))
	for _, r := range results {
		total, err := strconv.ParseFloat(r.Price.Total, 64)
		if err != nil {
			s.log.Warn("unparseable offer price dropped", "destination", r.Destination, "price", r.Price.Total)
			continue
		}
		currency := r.Price.Currency
		if currency == "" {
			currency = s.settlement
		}
		price, err := s.converter.ToBase(ctx, total, currency)
		if err != nil {
			s.log.Warn("offer price conversion failed, offer dropped", "destination", r.Destination, "currency", currency, "error", err)
			continue
		}
		code := strings.ToUpper(r.Destination)
		offers = append(offers, domain.DestinationOffer{
			ID:              uuid.NewString(),
			Origin:          strings.ToUpper(r.Origin),
			DestinationCode: code,
			DestinationName: PlaceName(code),
			Price:           price,
			DepartureDate:   r.DepartureDate,
			ReturnDate:      r.ReturnDate,
			DurationDays:    p.DurationDays,
			Stops:           r.Stops,
		})
	}
	return offers, nil
}

// SearchFlexibleWindow fans SearchSingleDate out over every date in
// [departure-flexDays, departure+flexDays], merges the survivors, collapses
// same-destination offers within the same 7-day bucket to the cheapest one,
// and returns the cheapest maxOffers overall.
func (s *FlexibleDateSearcher) SearchFlexibleWindow(ctx context.Context, p SearchParams) ([]domain.DestinationOffer, error) {
	anchor, err := time.Parse("2006-01-02", p.DepartureDate)
	if err != nil {
		return nil, &domain.ValidationError{Field: "departure date", Reason: "must be YYYY-MM-DD, got " + p.DepartureDate}
	}

	dates := make([]string, 0, 2*s.flexDays+1)
	for off := -s.flexDays; off <= s.flexDays; off++ {
		dates = append(dates, anchor.AddDate(0, 0, off).Format("2006-01-02"))
	}

	results := gatherAll(ctx, dates, 0, func(ctx context.Context, date string) ([]domain.DestinationOffer, error) {
		pp := p
		pp.DepartureDate = date
		return s.SearchSingleDate(ctx, pp)
	})

	var all []domain.DestinationOffer
	failed := 0
	for _, g := range results {
		if g.Err != nil {
			failed++
			s.log.Warn("sub-search skipped", "date", g.In, "error", g.Err)
			continue
		}
		all = append(all, g.Out...)
	}
	if failed == len(dates) {
		// Nothing survived; surface one real cause instead of a misleading
		// "no results".
		for _, g := range results {
			if g.Err != nil {
				return nil, g.Err
			}
		}
	}

	deduped := dedupeByWeekBucket(all)
	sort.SliceStable(deduped, func(i, j int) bool {
		if deduped[i].Price != deduped[j].Price {
			return deduped[i].Price < deduped[j].Price
		}
		if deduped[i].DepartureDate != deduped[j].DepartureDate {
			return deduped[i].DepartureDate < deduped[j].DepartureDate
		}
		return deduped[i].DestinationCode < deduped[j].DestinationCode
	})
	if len(deduped) > s.maxOffers {
		deduped = deduped[:s.maxOffers]
	}
	return deduped, nil
}

// dedupeByWeekBucket keeps, per destination and 7-day departure bucket, only
// the cheapest offer. Input order decides ties.
func dedupeByWeekBucket(offers []domain.DestinationOffer) []domain.DestinationOffer {
	type slot struct {
		index int
		price int
	}
	best := make(map[string]slot, len(offers))
	kept := make([]domain.DestinationOffer, 0, len(offers))
	for _, o := range offers {
		key := o.DestinationCode + "|" + strconv.FormatInt(weekBucketOf(o.DepartureDate), 10)
		if prev, ok := best[key]; ok {
			if o.Price < prev.price {
				kept[prev.index] = o
				best[key] = slot{index: prev.index, price: o.Price}
			}
			continue
		}
		best[key] = slot{index: len(kept), price: o.Price}
		kept = append(kept, o)
	}
	return kept
}

// weekBucketOf floors a date's epoch time into 7-day buckets. Unparseable
// dates all land in bucket zero and still dedupe per destination.
func weekBucketOf(date string) int64 {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return 0
	}
	return t.Unix() / int64(weekBucket/time.Second)
}
