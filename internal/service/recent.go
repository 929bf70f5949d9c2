package service

import (
	"sync"
	"time"
)

// SearchSummary is one completed discovery run, kept in memory only.
type SearchSummary struct {
	At             time.Time `json:"at"`
	Origin         string    `json:"origin"`
	Budget         int       `json:"budget"`
	TravelStyle    string    `json:"travel_style"`
	Results        int       `json:"results"`
	TopDestination string    `json:"top_destination"`
	TopPrice       int       `json:"top_price"`
}

// RecentSearches is a bounded, newest-first log of search summaries. State
// is ephemeral; a restart clears it.
type RecentSearches struct {
	mu      sync.Mutex
	max     int
	entries []SearchSummary
}

func NewRecentSearches(max int) *RecentSearches {
	if max <= 0 {
		max = 50
	}
	return &RecentSearches{max: max}
}

func (r *RecentSearches) Record(s SearchSummary) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, s)
	if len(r.entries) > r.max {
		r.entries = r.entries[len(r.entries)-r.max:]
	}
}

// List returns a copy, newest first.
func (r *RecentSearches) List() []SearchSummary {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]SearchSummary, 0, len(r.entries))
	for i := len(r.entries) - 1; i >= 0; i-- {
		out = append(out, r.entries[i])
	}
	return out
}
