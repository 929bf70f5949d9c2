package service

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/you/go-trip-discovery/internal/domain"
)

// GeoLookup resolves a free-text place name to coordinates and country code.
type GeoLookup interface {
	Lookup(ctx context.Context, name string) (domain.Coordinates, string, error)
}

var iataCodePattern = regexp.MustCompile(`^[A-Z]{3}$`)

// airportPlaces maps the IATA codes we commonly suggest to a geocodable
// place name. Unknown codes fall back to the raw code, which most geocoders
// still resolve for major airports.
var airportPlaces = map[string]string{
	"WAW": "Warsaw", "KRK": "Krakow", "GDN": "Gdansk",
	"BCN": "Barcelona", "MAD": "Madrid", "AGP": "Malaga", "PMI": "Palma de Mallorca",
	"LIS": "Lisbon", "OPO": "Porto",
	"ROM": "Rome", "FCO": "Rome", "MXP": "Milan", "VCE": "Venice", "FLR": "Florence", "NAP": "Naples",
	"PAR": "Paris", "CDG": "Paris", "NCE": "Nice",
	"LON": "London", "LHR": "London", "STN": "London", "EDI": "Edinburgh",
	"BER": "Berlin", "MUC": "Munich", "HAM": "Hamburg",
	"AMS": "Amsterdam", "BRU": "Brussels",
	"VIE": "Vienna", "ZRH": "Zurich", "GVA": "Geneva", "INN": "Innsbruck",
	"PRG": "Prague", "BUD": "Budapest", "LJU": "Ljubljana", "SPU": "Split", "DBV": "Dubrovnik",
	"ATH": "Athens", "SKG": "Thessaloniki",
	"CPH": "Copenhagen", "OSL": "Oslo", "TRF": "Sandefjord", "BGO": "Bergen",
	"STO": "Stockholm", "ARN": "Stockholm", "HEL": "Helsinki",
	"REK": "Reykjavik", "KEF": "Reykjavik",
	"DUB": "Dublin", "IST": "Istanbul",
}

// PlaceName returns a human-readable place name for an IATA code, falling
// back to the raw code.
func PlaceName(iataCode string) string {
	if name, ok := airportPlaces[strings.ToUpper(strings.TrimSpace(iataCode))]; ok {
		return name
	}
	return strings.ToUpper(strings.TrimSpace(iataCode))
}

// GeocodingResolver resolves IATA codes to airport locations with a
// process-lifetime TTL cache keyed by normalized uppercase code.
type GeocodingResolver struct {
	geo     GeoLookup
	ttl     time.Duration
	stagger time.Duration
	log     *slog.Logger

	mu    sync.RWMutex
	cache map[string]domain.AirportLocation

	now func() time.Time
}

func NewGeocodingResolver(geo GeoLookup, ttl, stagger time.Duration, log *slog.Logger) *GeocodingResolver {
	return &GeocodingResolver{
		geo:     geo,
		ttl:     ttl,
		stagger: stagger,
		log:     log,
		cache:   make(map[string]domain.AirportLocation),
		now:     time.Now,
	}
}

// Resolve returns the location for one IATA code, from cache when fresh.
func (r *GeocodingResolver) Resolve(ctx context.Context, iataCode string) (domain.AirportLocation, error) {
	key := strings.ToUpper(strings.TrimSpace(iataCode))
	if !iataCodePattern.MatchString(key) {
		return domain.AirportLocation{}, &domain.ValidationError{Field: "IATA code", Reason: "must be 3 letters, got " + iataCode}
	}

	r.mu.RLock()
	if loc, ok := r.cache[key]; ok && r.now().Before(loc.CachedUntil) {
		r.mu.RUnlock()
		return loc, nil
	}
	r.mu.RUnlock()

	coords, country, err := r.geo.Lookup(ctx, PlaceName(key))
	if err != nil {
		return domain.AirportLocation{}, err
	}

	loc := domain.AirportLocation{
		IATACode:    key,
		CityName:    PlaceName(key),
		CountryCode: country,
		Coordinates: coords,
		CachedUntil: r.now().Add(r.ttl),
	}
	r.mu.Lock()
	r.cache[key] = loc
	r.mu.Unlock()
	return loc, nil
}

// BatchResolve resolves many codes at once: deduplicates first, serves what
// it can from cache, then fans out the misses with a short launch stagger.
// Individual failures are logged and omitted; a missing map entry means
// "location unknown", never an error.
func (r *GeocodingResolver) BatchResolve(ctx context.Context, iataCodes []string) map[string]domain.AirportLocation {
	seen := make(map[string]struct{}, len(iataCodes))
	var distinct []string
	for _, code := range iataCodes {
		key := strings.ToUpper(strings.TrimSpace(code))
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		distinct = append(distinct, key)
	}

	out := make(map[string]domain.AirportLocation, len(distinct))
	var misses []string
	r.mu.RLock()
	for _, key := range distinct {
		if loc, ok := r.cache[key]; ok && r.now().Before(loc.CachedUntil) {
			out[key] = loc
		} else {
			misses = append(misses, key)
		}
	}
	r.mu.RUnlock()

	if len(misses) == 0 {
		return out
	}

	results := gatherAll(ctx, misses, r.stagger, func(ctx context.Context, code string) (domain.AirportLocation, error) {
		return r.Resolve(ctx, code)
	})
	for _, g := range results {
		if g.Err != nil {
			r.log.Warn("geocoding lookup skipped", "iata_code", g.In, "error", g.Err)
			continue
		}
		out[g.In] = g.Out
	}
	return out
}
