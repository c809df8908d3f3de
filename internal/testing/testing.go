// package testing contains shared testing utilities
package testing

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"testing"

	"github.com/arcova/tidalbridge/internal/shared"
	"github.com/arcova/tidalbridge/internal/tidal"
)

// MockCatalog is a test double for [tidal.Catalog] with canned results.
type MockCatalog struct {
	Artists      []tidal.Artist
	AlbumsByID   map[string][]tidal.Album
	SearchCalls  int
	AlbumCalls   []string
	FailAlbumFor string // Artist ID whose album fetch returns nothing, simulating a degraded call
}

func (m *MockCatalog) SearchTracksAndExtractArtists(ctx context.Context, query string, trackLimit int) []tidal.Artist {
	m.SearchCalls++
	return m.Artists
}

func (m *MockCatalog) FetchAlbumsForArtist(ctx context.Context, artistID string) []tidal.Album {
	m.AlbumCalls = append(m.AlbumCalls, artistID)
	if artistID == m.FailAlbumFor {
		return nil
	}
	return m.AlbumsByID[artistID]
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// SequenceRoundTripper returns canned responses in order, repeating the last
// one once the sequence is exhausted. Useful for retry tests.
type SequenceRoundTripper struct {
	Responses []*http.Response
	Calls     int
}

func (s *SequenceRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	i := s.Calls
	s.Calls++
	if i >= len(s.Responses) {
		i = len(s.Responses) - 1
	}
	return s.Responses[i], nil
}

// RoundTripFunc adapts a function to http.RoundTripper.
type RoundTripFunc func(*http.Request) (*http.Response, error)

func (f RoundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

// FCloser simulates a failure when reading a response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

// NewTestDB opens an in-memory sqlite database with migrations applied.
// The database is closed automatically when the test finishes.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}
