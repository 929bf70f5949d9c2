package config

import (
	"log"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	JWTSecret   string
	JWTUser     string
	JWTPassword string

	SearchTimeout time.Duration
	GeoTimeout    time.Duration
	GeoStagger    time.Duration
	RateTTL       time.Duration
	LocationTTL   time.Duration

	BaseCurrency       string
	SettlementCurrency string
	FlexDays           int
	MaxWindowOffers    int
	MaxRecommendations int

	AmadeusURL          string
	AmadeusClientId     string
	AmadeusClientSecret string
	RatesURL            string
	GeocodeURL          string
	WeatherURL          string

	TLSCertFile string
	TLSKeyFile  string
}

func Load() *Config {
	v := viper.New()

	v.SetDefault("auth_user", "demo")
	v.SetDefault("auth_pass", "demo123")
	v.SetDefault("search_timeout", "15s")
	v.SetDefault("geo_timeout", "5s")
	v.SetDefault("geo_stagger", "25ms")
	v.SetDefault("rate_ttl", "24h")
	v.SetDefault("location_ttl", "24h")

	v.SetDefault("base_currency", "PLN")
	v.SetDefault("settlement_currency", "EUR")
	v.SetDefault("flex_days", 3)
	v.SetDefault("max_window_offers", 15)
	v.SetDefault("max_recommendations", 10)

	v.SetDefault("amadeus_url", "https://test.api.amadeus.com")
	v.SetDefault("rates_url", "https://api.nbp.pl")
	v.SetDefault("geocode_url", "https://geocoding-api.open-meteo.com")
	v.SetDefault("weather_url", "https://api.open-meteo.com")

	if path := os.Getenv("TRIPS_CONFIG"); path != "" {
		v.SetConfigFile(path)
	} else {
		// Fallback to conventional locations for local dev
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/trips") // add the container path
	}

	if err := v.ReadInConfig(); err != nil {
		log.Printf("no config file found, using defaults + env vars: %v", err)
	}

	v.AutomaticEnv()

	mustDur := func(key string) time.Duration {
		d, err := time.ParseDuration(v.GetString(key))
		if err != nil {
			log.Fatalf("bad %s: %v", key, err)
		}
		return d
	}

	return &Config{
		JWTSecret:   v.GetString("jwt_secret"),
		JWTUser:     v.GetString("auth_user"),
		JWTPassword: v.GetString("auth_pass"),

		SearchTimeout: mustDur("search_timeout"),
		GeoTimeout:    mustDur("geo_timeout"),
		GeoStagger:    mustDur("geo_stagger"),
		RateTTL:       mustDur("rate_ttl"),
		LocationTTL:   mustDur("location_ttl"),

		BaseCurrency:       v.GetString("base_currency"),
		SettlementCurrency: v.GetString("settlement_currency"),
		FlexDays:           v.GetInt("flex_days"),
		MaxWindowOffers:    v.GetInt("max_window_offers"),
		MaxRecommendations: v.GetInt("max_recommendations"),

		AmadeusURL:          v.GetString("amadeus_url"),
		AmadeusClientId:     v.GetString("amadeus_clientid"),
		AmadeusClientSecret: v.GetString("amadeus_clientsecret"),
		RatesURL:            v.GetString("rates_url"),
		GeocodeURL:          v.GetString("geocode_url"),
		WeatherURL:          v.GetString("weather_url"),

		TLSCertFile: os.Getenv("TLS_CERT_FILE"),
		TLSKeyFile:  os.Getenv("TLS_KEY_FILE"),
	}
}
