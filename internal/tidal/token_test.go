package tidal

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/arcova/tidalbridge/internal/shared"
)

func tokenConfig(srv *httptest.Server) shared.TidalConfig {
	return shared.TidalConfig{
		ClientID:      "client-id",
		ClientSecret:  "client-secret",
		AuthBaseURL:   srv.URL,
		TokenEndpoint: "/v1/oauth2/token",
	}
}

func tokenEndpoint(t *testing.T, exchanges *atomic.Int64, expiresIn int64) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		exchanges.Add(1)

		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "client-id" || pass != "client-secret" {
			t.Errorf("missing or wrong basic auth: %q %q", user, pass)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("failed to parse form: %v", err)
		}
		if got := r.PostForm.Get("grant_type"); got != "client_credentials" {
			t.Errorf("grant_type = %q, want client_credentials", got)
		}

		body := map[string]any{"access_token": "token-abc"}
		if expiresIn > 0 {
			body["expires_in"] = expiresIn
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(body)
	}
}

func TestTokenCache(t *testing.T) {
	t.Run("caches token across calls", func(t *testing.T) {
		var exchanges atomic.Int64
		srv := httptest.NewServer(tokenEndpoint(t, &exchanges, 3600))
		defer srv.Close()

		cache := NewTokenCache(tokenConfig(srv), srv.Client(), nil)

		for i := 0; i < 2; i++ {
			token, err := cache.GetAccessToken(context.Background())
			if err != nil {
				t.Fatalf("GetAccessToken failed: %v", err)
			}
			if token != "token-abc" {
				t.Errorf("token = %q, want token-abc", token)
			}
		}

		if got := exchanges.Load(); got != 1 {
			t.Errorf("exchanges = %d, want exactly 1 within validity window", got)
		}
	})

	t.Run("token near expiry is re-exchanged", func(t *testing.T) {
		var exchanges atomic.Int64
		// 60s validity is inside the 5 minute safety margin.
		srv := httptest.NewServer(tokenEndpoint(t, &exchanges, 60))
		defer srv.Close()

		cache := NewTokenCache(tokenConfig(srv), srv.Client(), nil)

		for i := 0; i < 2; i++ {
			if _, err := cache.GetAccessToken(context.Background()); err != nil {
				t.Fatalf("GetAccessToken failed: %v", err)
			}
		}

		if got := exchanges.Load(); got != 2 {
			t.Errorf("exchanges = %d, want 2 when token sits inside the margin", got)
		}
	})

	t.Run("invalidate forces new exchange", func(t *testing.T) {
		var exchanges atomic.Int64
		srv := httptest.NewServer(tokenEndpoint(t, &exchanges, 3600))
		defer srv.Close()

		cache := NewTokenCache(tokenConfig(srv), srv.Client(), nil)

		if _, err := cache.GetAccessToken(context.Background()); err != nil {
			t.Fatalf("GetAccessToken failed: %v", err)
		}
		cache.Invalidate()
		if _, err := cache.GetAccessToken(context.Background()); err != nil {
			t.Fatalf("GetAccessToken failed: %v", err)
		}

		if got := exchanges.Load(); got != 2 {
			t.Errorf("exchanges = %d, want 2 after invalidate", got)
		}
	})

	t.Run("missing expires_in uses default validity", func(t *testing.T) {
		var exchanges atomic.Int64
		srv := httptest.NewServer(tokenEndpoint(t, &exchanges, 0))
		defer srv.Close()

		cache := NewTokenCache(tokenConfig(srv), srv.Client(), nil)

		for i := 0; i < 2; i++ {
			if _, err := cache.GetAccessToken(context.Background()); err != nil {
				t.Fatalf("GetAccessToken failed: %v", err)
			}
		}

		if got := exchanges.Load(); got != 1 {
			t.Errorf("exchanges = %d, want 1 with the default 24h validity", got)
		}
	})

	t.Run("non-2xx response is AuthError and caches nothing", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer srv.Close()

		cache := NewTokenCache(tokenConfig(srv), srv.Client(), nil)

		_, err := cache.GetAccessToken(context.Background())
		if !errors.Is(err, shared.ErrAuthFailed) {
			t.Fatalf("expected ErrAuthFailed, got %v", err)
		}
		if cache.token.Load() != nil {
			t.Error("failed exchange must not cache a token")
		}
	})

	t.Run("missing access_token is AuthError", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"expires_in": 3600}`))
		}))
		defer srv.Close()

		cache := NewTokenCache(tokenConfig(srv), srv.Client(), nil)

		if _, err := cache.GetAccessToken(context.Background()); !errors.Is(err, shared.ErrAuthFailed) {
			t.Fatalf("expected ErrAuthFailed, got %v", err)
		}
	})
}
