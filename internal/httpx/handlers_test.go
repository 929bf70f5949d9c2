package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/you/go-trip-discovery/internal/domain"
)

func TestValidateRequest(t *testing.T) {
	valid := domain.SearchRequest{Origin: "waw", Budget: 2000, TravelStyle: "beach", DepartureDate: "2026-09-10"}
	req := valid
	require.NoError(t, validateRequest(&req))
	require.Equal(t, "WAW", req.Origin) // normalized

	cases := []struct {
		name   string
		mutate func(*domain.SearchRequest)
	}{
		{"bad origin", func(r *domain.SearchRequest) { r.Origin = "WARSAW" }},
		{"zero budget", func(r *domain.SearchRequest) { r.Budget = 0 }},
		{"negative budget", func(r *domain.SearchRequest) { r.Budget = -5 }},
		{"unknown style", func(r *domain.SearchRequest) { r.TravelStyle = "luxury" }},
		{"bad date", func(r *domain.SearchRequest) { r.DepartureDate = "10/09/2026" }},
		{"flexible without date", func(r *domain.SearchRequest) { r.FlexibleDates = true; r.DepartureDate = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := valid
			tc.mutate(&req)
			require.Error(t, validateRequest(&req))
		})
	}
}

func TestWriteErrorDistinguishesCauses(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{"validation", &domain.ValidationError{Field: "currency code", Reason: "bad"}, http.StatusBadRequest, "invalid currency code"},
		{"no results", &domain.NoResultsError{Origin: "WAW", Budget: 500, TravelStyle: "culture"}, http.StatusNotFound, "try a larger budget"},
		{"provider down", &domain.ProviderError{Provider: "flight-inspiration", Status: 502}, http.StatusBadGateway, "currently unavailable"},
		{"auth rejected", &domain.AuthenticationError{Status: 401}, http.StatusBadGateway, "currently unavailable"},
		{"timeout", &domain.TimeoutError{Op: "flight inspiration search"}, http.StatusGatewayTimeout, "took too long"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, tc.err)
			require.Equal(t, tc.wantStatus, rec.Code)
			require.Contains(t, rec.Body.String(), tc.wantBody)
		})
	}
}
