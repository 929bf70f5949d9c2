package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/you/go-trip-discovery/internal/config"
	"github.com/you/go-trip-discovery/internal/domain"
)

func newTokenClientForTest(t *testing.T, handler http.HandlerFunc) (*TokenClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	tc := NewTokenClient(&config.Config{
		AmadeusURL:          srv.URL,
		AmadeusClientId:     "id",
		AmadeusClientSecret: "secret",
	})
	return tc, srv
}

func TestTokenReusedUntilBufferConsumed(t *testing.T) {
	var calls int32
	tc, _ := newTokenClientForTest(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		fmt.Fprintf(w, `{"access_token":"tok-%d","expires_in":600}`, atomic.LoadInt32(&calls))
	})

	base := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	now := base
	var mu sync.Mutex
	tc.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	setNow := func(offset time.Duration) {
		mu.Lock()
		now = base.Add(offset)
		mu.Unlock()
	}

	ctx := context.Background()

	// t=0: first call fetches.
	tok, err := tc.Token(ctx)
	require.NoError(t, err)
	require.Equal(t, "tok-1", tok)

	// t=500s: still inside expires_in - 30s buffer, no refresh.
	setNow(500 * time.Second)
	tok, err = tc.Token(ctx)
	require.NoError(t, err)
	require.Equal(t, "tok-1", tok)
	require.Equal(t, int32(1), atomic.LoadInt32(&calls))

	// t=575s: buffer consumed (valid until 570s), exactly one refresh.
	setNow(575 * time.Second)
	tok, err = tc.Token(ctx)
	require.NoError(t, err)
	require.Equal(t, "tok-2", tok)
	require.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestTokenRefreshSingleFlight(t *testing.T) {
	var calls int32
	tc, _ := newTokenClientForTest(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		time.Sleep(50 * time.Millisecond) // widen the race window
		fmt.Fprint(w, `{"access_token":"tok","expires_in":600}`)
	})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tok, err := tc.Token(context.Background())
			require.NoError(t, err)
			require.Equal(t, "tok", tok)
		}()
	}
	wg.Wait()

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected a single refresh for concurrent callers, got %d", got)
	}
}

func TestTokenInvalidateForcesRefresh(t *testing.T) {
	var calls int32
	tc, _ := newTokenClientForTest(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		fmt.Fprint(w, `{"access_token":"tok","expires_in":600}`)
	})

	_, err := tc.Token(context.Background())
	require.NoError(t, err)
	tc.Invalidate()
	_, err = tc.Token(context.Background())
	require.NoError(t, err)
	require.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestTokenExchangeRejected(t *testing.T) {
	tc, _ := newTokenClientForTest(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_client"}`, http.StatusUnauthorized)
	})

	_, err := tc.Token(context.Background())
	require.Error(t, err)
	var ae *domain.AuthenticationError
	require.ErrorAs(t, err, &ae)
	require.Equal(t, http.StatusUnauthorized, ae.Status)
	require.Contains(t, ae.Body, "invalid_client")
}
