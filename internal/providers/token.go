package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/you/go-trip-discovery/internal/config"
	"github.com/you/go-trip-discovery/internal/domain"
)

// expiryBuffer is subtracted from the provider's expires_in so we never hand
// out a token that dies mid-request.
const expiryBuffer = 30 * time.Second

// TokenClient performs the client-credentials exchange and caches the bearer
// token until shortly before its expiry. Refresh is single-flight: concurrent
// callers racing past an expired token share one network call.
type TokenClient struct {
	host     string
	authPath string
	id       string
	secret   string
	client   *http.Client

	mu      sync.Mutex
	tok     string
	expires time.Time

	group singleflight.Group
	now   func() time.Time
}

func NewTokenClient(cfg *config.Config) *TokenClient {
	return &TokenClient{
		host:     cfg.AmadeusURL,
		authPath: "/v1/security/oauth2/token",
		id:       cfg.AmadeusClientId,
		secret:   cfg.AmadeusClientSecret,
		client:   defaultHTTPClient(),
		now:      time.Now,
	}
}

// Token returns a valid bearer token, refreshing it if the cached one has
// consumed its expiry buffer.
func (t *TokenClient) Token(ctx context.Context) (string, error) {
	t.mu.Lock()
	if t.tok != "" && t.now().Before(t.expires) {
		tok := t.tok
		t.mu.Unlock()
		return tok, nil
	}
	t.mu.Unlock()

	v, err, _ := t.group.Do("token", func() (any, error) {
		// Re-check under the flight: a caller queued behind the refresh
		// must not trigger a second one.
		t.mu.Lock()
		if t.tok != "" && t.now().Before(t.expires) {
			tok := t.tok
			t.mu.Unlock()
			return tok, nil
		}
		t.mu.Unlock()
		return t.refresh(ctx)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Invalidate drops the cached token so the next Token call refreshes.
func (t *TokenClient) Invalidate() {
	t.mu.Lock()
	t.tok = ""
	t.expires = time.Time{}
	t.mu.Unlock()
}

func (t *TokenClient) refresh(ctx context.Context) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", t.id)
	form.Set("client_secret", t.secret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.host+t.authPath, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &domain.AuthenticationError{Status: resp.StatusCode, Body: readBody(resp.Body)}
	}

	var tr struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", err
	}

	t.mu.Lock()
	t.tok = tr.AccessToken
	t.expires = t.now().Add(time.Duration(tr.ExpiresIn)*time.Second - expiryBuffer)
	t.mu.Unlock()
	return tr.AccessToken, nil
}
