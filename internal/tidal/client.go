package tidal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/arcova/tidalbridge/internal/shared"
)

const (
	countryCode = "DE"

	// Retry policy for 429 Too Many Requests on burst-limited endpoints.
	maxRetries        = 3
	initialBackoff    = 500 * time.Millisecond
	backoffMultiplier = 2.0

	// trackFetchRate paces the per-track lookups that hammer the burst limit
	// during a search; retries handle whatever still slips through.
	trackFetchRate = 5.0
)

// Client talks to the TIDAL catalog API. It injects bearer tokens from a
// [TokenCache], maps response statuses onto the shared error taxonomy and
// retries rate-limited calls with bounded exponential backoff.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     *TokenCache
	limiter    *rate.Limiter
	logger     *log.Logger
}

// Ensure interface compliance.
var _ Catalog = (*Client)(nil)

// NewClient creates a catalog client. A nil httpClient falls back to a
// client with a 30 second timeout.
func NewClient(cfg shared.TidalConfig, tokens *TokenCache, httpClient *http.Client, logger *log.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
		tokens:     tokens,
		limiter:    rate.NewLimiter(rate.Limit(trackFetchRate), 1),
		logger:     logger,
	}
}

// get performs one authorized GET against the API and decodes the JSON:API
// body into out. Non-2xx statuses map deterministically: 401 invalidates the
// token cache and yields ErrAuthFailed, 429 yields ErrRateLimited, 5xx
// yields ErrServiceUnavailable, anything else an *shared.APIError.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	token, err := c.tokens.GetAccessToken(ctx)
	if err != nil {
		return err
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/vnd.api+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.statusError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// getWithRetry wraps get in the bounded backoff loop for endpoints subject to
// burst limits. Only 429 responses are retried; the waits observe ctx so a
// cancelled run aborts the backoff early.
func (c *Client) getWithRetry(ctx context.Context, path string, query url.Values, out any) error {
	backoff := initialBackoff

	for attempt := 0; ; attempt++ {
		err := c.get(ctx, path, query, out)
		if err == nil || !errors.Is(err, shared.ErrRateLimited) || attempt >= maxRetries {
			return err
		}

		c.logger.Warn("rate limited, backing off",
			"path", path, "retry", attempt+1, "of", maxRetries, "backoff", backoff)

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
		backoff = time.Duration(float64(backoff) * backoffMultiplier)
	}
}

// statusError maps a non-2xx response onto the shared error taxonomy.
func (c *Client) statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		// The cached token is no longer accepted; force a fresh exchange on
		// the next call. This layer does not retry the request itself.
		c.tokens.Invalidate()
		return fmt.Errorf("%w: catalog API rejected token", shared.ErrAuthFailed)
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: status 429", shared.ErrRateLimited)
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: status %d", shared.ErrServiceUnavailable, resp.StatusCode)
	default:
		return &shared.APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}
}
