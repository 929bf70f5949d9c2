package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/you/go-trip-discovery/internal/config"
	"github.com/you/go-trip-discovery/internal/domain"
)

func newGeoClientForTest(t *testing.T, timeout time.Duration, handler http.HandlerFunc) *GeoClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewGeoClient(&config.Config{GeocodeURL: srv.URL, GeoTimeout: timeout})
}

func TestGeoLookupReturnsBestMatch(t *testing.T) {
	c := newGeoClientForTest(t, 5*time.Second, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Barcelona", r.URL.Query().Get("name"))
		fmt.Fprint(w, `{"results":[{"name":"Barcelona","latitude":41.38879,"longitude":2.15899,"country_code":"ES"}]}`)
	})

	coords, country, err := c.Lookup(context.Background(), "Barcelona")
	require.NoError(t, err)
	require.Equal(t, "ES", country)
	require.InDelta(t, 41.38879, coords.Lat, 1e-9)
	require.InDelta(t, 2.15899, coords.Lon, 1e-9)
}

func TestGeoLookupEmptyResultsIsNotFound(t *testing.T) {
	c := newGeoClientForTest(t, 5*time.Second, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results":[]}`)
	})

	_, _, err := c.Lookup(context.Background(), "Nowhereville")
	require.True(t, domain.IsNotFound(err), "expected NotFoundError, got %v", err)
}

func TestGeoLookupHonorsTimeout(t *testing.T) {
	c := newGeoClientForTest(t, 50*time.Millisecond, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		fmt.Fprint(w, `{"results":[]}`)
	})

	start := time.Now()
	_, _, err := c.Lookup(context.Background(), "Barcelona")
	require.Error(t, err)
	require.True(t, domain.IsTimeout(err), "expected timeout, got %v", err)
	if elapsed := time.Since(start); elapsed > 400*time.Millisecond {
		t.Fatalf("lookup did not respect its deadline, took %v", elapsed)
	}
}
