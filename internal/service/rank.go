package service

import (
	"sort"
	"strings"

	"github.com/you/go-trip-discovery/internal/domain"
)

// RankPolicy is the replaceable scoring table. The shipped weights mirror
// the product rules; nothing in the ranker depends on their exact values.
type RankPolicy struct {
	StyleMatch  int // destination fits the requested travel style
	BudgetHalf  int // price below 50% of budget
	BudgetTight int // price below 80% of budget (only when the 50% tier missed)
	Preferred   int // destination explicitly preferred by the traveler
	NonStop     int // zero-stop flight
	MaxResults  int
}

func DefaultRankPolicy() RankPolicy {
	return RankPolicy{
		StyleMatch:  10,
		BudgetHalf:  5,
		BudgetTight: 3,
		Preferred:   15,
		NonStop:     3,
		MaxResults:  10,
	}
}

// styleDestinations maps each travel style to the destinations it favors.
var styleDestinations = map[string][]string{
	"culture":   {"ROM", "FCO", "ATH", "PRG", "VIE", "FLR", "KRK", "IST"},
	"beach":     {"BCN", "PMI", "AGP", "LIS", "ATH", "SPU", "DBV", "NCE"},
	"adventure": {"INN", "GVA", "OSL", "REK", "KEF", "TRF", "BGO"},
	"nature":    {"REK", "KEF", "OSL", "ZRH", "LJU", "BGO", "HEL"},
	"nightlife": {"BER", "AMS", "MAD", "BUD", "PRG", "BCN"},
}

// DestinationRanker orders offers by a deterministic additive score.
type DestinationRanker struct {
	policy RankPolicy
}

func NewDestinationRanker(policy RankPolicy) *DestinationRanker {
	return &DestinationRanker{policy: policy}
}

// Score applies the policy table. The two budget tiers are mutually
// exclusive; only the higher one fires.
func (r *DestinationRanker) Score(offer domain.DestinationOffer, req domain.SearchRequest) int {
	score := 0
	if styleFavors(req.TravelStyle, offer.DestinationCode) {
		score += r.policy.StyleMatch
	}
	if req.Budget > 0 {
		price := float64(offer.Price)
		budget := float64(req.Budget)
		switch {
		case price < 0.5*budget:
			score += r.policy.BudgetHalf
		case price < 0.8*budget:
			score += r.policy.BudgetTight
		}
	}
	for _, pref := range req.PreferredDestinations {
		if strings.EqualFold(strings.TrimSpace(pref), offer.DestinationCode) {
			score += r.policy.Preferred
			break
		}
	}
	if offer.Stops == 0 {
		score += r.policy.NonStop
	}
	return score
}

// Rank scores every offer and stable-sorts descending, so equal scores keep
// their incoming (price-sorted) order. Truncated to MaxResults.
func (r *DestinationRanker) Rank(offers []domain.DestinationOffer, req domain.SearchRequest) []domain.DestinationOffer {
	ranked := make([]domain.DestinationOffer, len(offers))
	copy(ranked, offers)
	for i := range ranked {
		ranked[i].Score = r.Score(ranked[i], req)
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })
	if r.policy.MaxResults > 0 && len(ranked) > r.policy.MaxResults {
		ranked = ranked[:r.policy.MaxResults]
	}
	return ranked
}

func styleFavors(style, destinationCode string) bool {
	for _, code := range styleDestinations[strings.ToLower(strings.TrimSpace(style))] {
		if code == destinationCode {
			return true
		}
	}
	return false
}
