package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/you/go-trip-discovery/internal/domain"
	"github.com/you/go-trip-discovery/internal/service"
)

var travelStyles = map[string]bool{
	"culture": true, "beach": true, "adventure": true, "nature": true, "nightlife": true,
}

// validateRequest enforces the contract the orchestrator relies on: positive
// budget, well-formed in-range dates, known travel style.
func validateRequest(req *domain.SearchRequest) error {
	req.Origin = strings.ToUpper(strings.TrimSpace(req.Origin))
	if len(req.Origin) != 3 {
		return fmt.Errorf("origin must be a 3-letter IATA code")
	}
	if req.Budget <= 0 {
		return fmt.Errorf("budget must be positive")
	}
	if !travelStyles[strings.ToLower(req.TravelStyle)] {
		return fmt.Errorf("unknown travel style %q", req.TravelStyle)
	}
	for _, d := range []string{req.DepartureDate, req.ReturnDate} {
		if d == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", d); err != nil {
			return fmt.Errorf("dates must be YYYY-MM-DD")
		}
	}
	if req.FlexibleDates && req.DepartureDate == "" {
		return fmt.Errorf("flexible search needs a departure date to expand around")
	}
	return nil
}

// writeError maps the error taxonomy onto HTTP statuses with user-facing
// messages: "nothing matched" and "provider is down" must read differently.
func writeError(w http.ResponseWriter, err error) {
	var (
		ve *domain.ValidationError
		nr *domain.NoResultsError
		ae *domain.AuthenticationError
		pe *domain.ProviderError
	)
	switch {
	case errors.As(err, &ve):
		http.Error(w, ve.Error(), http.StatusBadRequest)
	case errors.As(err, &nr):
		http.Error(w, nr.Error(), http.StatusNotFound)
	case errors.As(err, &ae), errors.As(err, &pe):
		http.Error(w, "the flight search provider is currently unavailable", http.StatusBadGateway)
	case domain.IsTimeout(err):
		http.Error(w, "the flight search provider took too long to respond", http.StatusGatewayTimeout)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func SearchHandler(orc *service.Orchestrator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req domain.SearchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if err := validateRequest(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		res, err := orc.Run(r.Context(), req)
		if err != nil {
			writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(res)
	}
}

func RecentHandler(recent *service.RecentSearches) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(recent.List())
	}
}

// watchRequest reads the discovery parameters shared by the SSE and WS
// subscription endpoints: /sse/{origin}?budget=&style=&date=&flexible=.
func watchRequest(r *http.Request, prefix string) (domain.SearchRequest, error) {
	origin := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, prefix), "/")
	q := r.URL.Query()
	budget, _ := strconv.Atoi(q.Get("budget"))
	req := domain.SearchRequest{
		Origin:        origin,
		Budget:        budget,
		TravelStyle:   q.Get("style"),
		DepartureDate: q.Get("date"),
		FlexibleDates: q.Get("flexible") == "true",
	}
	err := validateRequest(&req)
	return req, err
}

func SubscribeSSEHandler(orc *service.Orchestrator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := watchRequest(r, "/sse/")
		if err != nil {
			http.Error(w, "use /sse/{origin}?budget=&style=&date=[&flexible=true]: "+err.Error(), http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming unsupported", http.StatusInternalServerError)
			return
		}

		updateTick := time.NewTicker(60 * time.Second)
		defer updateTick.Stop()

		ctx := r.Context()
		for {
			select {
			case <-ctx.Done():
				log.Println("SSE client closed")
				return

			case <-updateTick.C:
				res, err := orc.Run(ctx, req)
				if err != nil {
					fmt.Fprintf(w, "event: error\ndata: %q\n\n", err.Error())
					flusher.Flush()
					return
				}
				payload, _ := json.Marshal(res)
				fmt.Fprintf(w, "event: update\ndata: %s\n\n", payload)
				flusher.Flush()
			}
		}
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // in prod, restrict origin
	},
}

func SubscribeWSHandler(orc *service.Orchestrator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := watchRequest(r, "/ws/")
		if err != nil {
			http.Error(w, "use /ws/{origin}?budget=&style=&date=[&flexible=true]: "+err.Error(), http.StatusBadRequest)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("upgrade error: %v", err)
			return
		}
		defer conn.Close()

		ticker := time.NewTicker(60 * time.Second)
		defer ticker.Stop()

		ctx := r.Context()
		for {
			res, err := orc.Run(ctx, req)
			if err != nil {
				_ = conn.WriteJSON(map[string]string{"error": err.Error()})
				return
			}
			if err := conn.WriteJSON(res); err != nil {
				log.Printf("write error: %v", err)
				return
			}

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				continue
			}
		}
	}
}
