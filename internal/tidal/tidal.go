// package tidal implements the client layer for the TIDAL catalog API:
// OAuth2 client-credentials token caching, rate-limit-aware request
// execution, and the two catalog operations the sync engine consumes.
package tidal

import "context"

// Artist is the wire-level artist record extracted from catalog responses.
type Artist struct {
	ID   string
	Name string
}

// Album is the wire-level album record. ReleaseDate is the raw attribute
// string; parsing into a calendar date happens at the domain boundary.
type Album struct {
	ID          string
	Title       string
	ReleaseDate string
}

// Catalog defines the operations the reconciliation engine needs from the
// external catalog.
//
// Both operations are deliberately best-effort: failures degrade to an empty
// result and are logged with a degraded marker instead of being returned,
// because a sync run must keep whatever data it could resolve. Callers that
// need to distinguish "empty page" from "systemic failure" watch the logs.
type Catalog interface {
	// SearchTracksAndExtractArtists searches tracks for the query, fetches
	// each returned track with its related artists included, and returns the
	// artists de-duplicated by id (first occurrence wins).
	SearchTracksAndExtractArtists(ctx context.Context, query string, trackLimit int) []Artist

	// FetchAlbumsForArtist returns the albums related to the given artist.
	// Albums without a title are dropped.
	FetchAlbumsForArtist(ctx context.Context, artistID string) []Album
}

// resource is a generic JSON:API resource object.
type resource struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Attributes map[string]any `json:"attributes"`
}

// stringAttr extracts a string attribute, tolerating missing or ill-typed values.
func (r resource) stringAttr(key string) string {
	if r.Attributes == nil {
		return ""
	}
	s, _ := r.Attributes[key].(string)
	return s
}

// searchResponse models /v2/searchResults and /v2/tracks replies. The data
// member is a single resource; the tracks and artists of interest arrive in
// the included array.
type searchResponse struct {
	Data     resource   `json:"data"`
	Included []resource `json:"included"`
}

// relationshipResponse models /v2/artists/{id}/relationships/albums replies,
// where data is an array of relationship identifiers and the full album
// resources arrive in included.
type relationshipResponse struct {
	Data     []resource `json:"data"`
	Included []resource `json:"included"`
	Meta     struct {
		Total int `json:"total"`
	} `json:"meta"`
}

// artistFromResource converts an included resource of type "artists".
// Returns false when the resource has no usable name.
func artistFromResource(r resource) (Artist, bool) {
	name := r.stringAttr("name")
	if name == "" {
		return Artist{}, false
	}
	return Artist{ID: r.ID, Name: name}, true
}

// albumFromResource converts an included resource of type "albums".
// Returns false when the resource has no parseable title.
func albumFromResource(r resource) (Album, bool) {
	title := r.stringAttr("title")
	if title == "" {
		return Album{}, false
	}
	return Album{ID: r.ID, Title: title, ReleaseDate: r.stringAttr("releaseDate")}, true
}
