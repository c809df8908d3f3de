package tidal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"

	"github.com/arcova/tidalbridge/internal/shared"
)

const (
	// tokenExpiryMargin is the minimum remaining validity before a cached
	// token is considered stale and re-exchanged.
	tokenExpiryMargin = 5 * time.Minute

	// defaultExpiresIn is assumed when the token endpoint omits expires_in.
	defaultExpiresIn = 86400 * time.Second
)

// TokenCache holds a single cached bearer token obtained through the OAuth2
// client-credentials grant and renews it when it is absent or close to
// expiry. The token and its expiry are swapped together as one
// [oauth2.Token] behind an atomic pointer, so concurrent readers never see a
// torn pair; two callers racing through a refresh both perform an exchange
// and the second overwrite is harmless.
//
// The cache lives only in process memory and is rebuilt on every start.
// Construct one per process and inject it into the HTTP client layer.
type TokenCache struct {
	cfg        shared.TidalConfig
	httpClient *http.Client
	logger     *log.Logger

	token atomic.Pointer[oauth2.Token]
}

// NewTokenCache creates a TokenCache for the configured token endpoint.
// A nil httpClient falls back to a client with a 10 second timeout.
func NewTokenCache(cfg shared.TidalConfig, httpClient *http.Client, logger *log.Logger) *TokenCache {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &TokenCache{cfg: cfg, httpClient: httpClient, logger: logger}
}

// GetAccessToken returns a valid access token, performing a
// client-credentials exchange only when the cached token is absent or within
// the expiry margin.
func (c *TokenCache) GetAccessToken(ctx context.Context) (string, error) {
	if tok := c.token.Load(); tok != nil && time.Now().Add(tokenExpiryMargin).Before(tok.Expiry) {
		c.logger.Debug("using cached access token")
		return tok.AccessToken, nil
	}

	c.logger.Info("fetching new access token")
	return c.exchange(ctx)
}

// Invalidate clears the cached token unconditionally. The HTTP layer calls
// this on a 401 so the next request forces a fresh exchange.
func (c *TokenCache) Invalidate() {
	c.logger.Info("invalidating cached access token")
	c.token.Store(nil)
}

// exchange performs the client-credentials grant: a form-encoded POST with
// HTTP Basic auth built from client_id:client_secret. Nothing is cached on
// failure.
func (c *TokenCache) exchange(ctx context.Context) (string, error) {
	form := url.Values{"grant_type": {"client_credentials"}}
	endpoint := strings.TrimRight(c.cfg.AuthBaseURL, "/") + c.cfg.TokenEndpoint

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("%w: failed to create token request: %v", shared.ErrAuthFailed, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.cfg.ClientID, c.cfg.ClientSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: token exchange request failed: %v", shared.ErrAuthFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: token endpoint returned status %d", shared.ErrAuthFailed, resp.StatusCode)
	}

	var body struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("%w: failed to decode token response: %v", shared.ErrAuthFailed, err)
	}
	if body.AccessToken == "" {
		return "", fmt.Errorf("%w: token response missing access_token", shared.ErrAuthFailed)
	}

	expiresIn := defaultExpiresIn
	if body.ExpiresIn > 0 {
		expiresIn = time.Duration(body.ExpiresIn) * time.Second
	}

	tok := &oauth2.Token{
		AccessToken: body.AccessToken,
		TokenType:   "Bearer",
		Expiry:      time.Now().Add(expiresIn),
	}
	c.token.Store(tok)

	c.logger.Info("obtained new access token", "expires_at", tok.Expiry.Format(time.RFC3339))
	return tok.AccessToken, nil
}
