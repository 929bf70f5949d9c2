package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/you/go-trip-discovery/internal/auth"
	"github.com/you/go-trip-discovery/internal/config"
	"github.com/you/go-trip-discovery/internal/httpx"
	"github.com/you/go-trip-discovery/internal/logger"
	"github.com/you/go-trip-discovery/internal/providers"
	"github.com/you/go-trip-discovery/internal/service"
)

func main() {

	// Loading config
	cfg := config.Load()
	logg := logger.New()

	// External provider clients
	tokens := providers.NewTokenClient(cfg)
	inspiration := providers.NewInspirationClient(cfg, tokens)
	rates := providers.NewRateClient(cfg)
	geo := providers.NewGeoClient(cfg)
	weather := providers.NewWeatherClient(cfg)

	// Pipeline components
	converter := service.NewCurrencyConverter(rates, cfg.BaseCurrency, cfg.RateTTL)
	resolver := service.NewGeocodingResolver(geo, cfg.LocationTTL, cfg.GeoStagger, logg)
	enricher := service.NewWeatherEnricher(resolver, weather, logg)
	searcher := service.NewFlexibleDateSearcher(inspiration, converter, cfg.SettlementCurrency, cfg.FlexDays, cfg.MaxWindowOffers, logg)

	policy := service.DefaultRankPolicy()
	policy.MaxResults = cfg.MaxRecommendations
	ranker := service.NewDestinationRanker(policy)

	recent := service.NewRecentSearches(50)
	orc := service.NewOrchestrator(searcher, enricher, ranker, recent, cfg.BaseCurrency, logg)

	publicMux := http.NewServeMux()

	// Public: login to get JWT
	publicMux.HandleFunc("/auth/login", auth.LoginHandler(cfg))

	// Protected group with JWT
	protectedMux := http.NewServeMux()
	protectedMux.HandleFunc("/trips/search", httpx.SearchHandler(orc))
	protectedMux.HandleFunc("/trips/recent", httpx.RecentHandler(recent))
	protectedMux.HandleFunc("/sse/", httpx.SubscribeSSEHandler(orc)) // /sse/WAW?budget=2000&style=beach&date=2026-09-10
	protectedMux.HandleFunc("/ws/", httpx.SubscribeWSHandler(orc))

	// handler to control authenticated routes
	root := auth.JWTMiddleware(publicMux, protectedMux, cfg)

	// Creation of HTTP server
	srv := &http.Server{
		Addr:              ":8080",
		Handler:           root,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      0,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Running http server on a secondary thread
	go func() {
		log.Printf("\n➡️ Server listening on http://localhost%s\n", srv.Addr)
		if cfg.TLSCertFile != "" && cfg.TLSKeyFile != "" {
			log.Println("🔐 TLS enabled")
			log.Fatal(srv.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile))
		} else {
			log.Fatal(srv.ListenAndServe())
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
}
