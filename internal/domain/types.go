package domain

import "time"

// Coordinates is a latitude/longitude pair in decimal degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// AirportLocation is a geocoded airport, keyed by its uppercase IATA code.
type AirportLocation struct {
	IATACode    string      `json:"iata_code"`
	CityName    string      `json:"city_name"`
	CountryCode string      `json:"country_code"`
	Coordinates Coordinates `json:"coordinates"`
	CachedUntil time.Time   `json:"-"`
}

// ExchangeRate is one cached quote: Rate is units of base currency per one
// foreign unit.
type ExchangeRate struct {
	CurrencyCode string
	Rate         float64
	FetchedAt    time.Time
	ExpiresAt    time.Time
}

// WeatherSummary is an optional forecast attachment derived from the first
// forecast day at the destination.
type WeatherSummary struct {
	DestinationCode string    `json:"destination_code"`
	AvgTemperature  float64   `json:"avg_temperature"`
	Condition       string    `json:"condition"`
	Humidity        *float64  `json:"humidity,omitempty"`
	WindSpeed       *float64  `json:"wind_speed,omitempty"`
	FetchedAt       time.Time `json:"fetched_at"`
}

// DestinationOffer is a single viable trip. Price is always expressed in
// whole units of the base currency once it leaves the searcher.
type DestinationOffer struct {
	ID              string          `json:"id"`
	Origin          string          `json:"origin"`
	DestinationCode string          `json:"destination_code"`
	DestinationName string          `json:"destination_name"`
	Price           int             `json:"price"`
	DepartureDate   string          `json:"departure_date"`
	ReturnDate      string          `json:"return_date,omitempty"`
	DurationDays    int             `json:"duration_days"`
	Stops           int             `json:"stops"`
	Weather         *WeatherSummary `json:"weather,omitempty"`
	Score           int             `json:"score"`
}

// SearchRequest is a validated discovery request. Upstream transport
// validation has already ensured budget > 0, well-formed dates and a known
// travel style before it reaches the orchestrator.
type SearchRequest struct {
	Origin                string   `json:"origin"`
	Budget                int      `json:"budget"`
	TravelStyle           string   `json:"travel_style"`
	PreferredDestinations []string `json:"preferred_destinations,omitempty"`
	DepartureDate         string   `json:"departure_date,omitempty"`
	ReturnDate            string   `json:"return_date,omitempty"`
	FlexibleDates         bool     `json:"flexible_dates"`
}
