package server

import (
	"net/http"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/arcova/tidalbridge/internal/repositories"
)

// searchResultResponse is the combined result body for GET /api/search.
type searchResultResponse struct {
	Artists []artistResponse `json:"artists"`
	Albums  []albumResponse  `json:"albums"`
}

// SearchHandler serves the dedicated library search endpoints.
type SearchHandler struct {
	artists *repositories.ArtistRepository
	albums  *repositories.AlbumRepository
	logger  *log.Logger
}

// NewSearchHandler creates a SearchHandler backed by the given repositories.
func NewSearchHandler(artists *repositories.ArtistRepository, albums *repositories.AlbumRepository, logger *log.Logger) *SearchHandler {
	return &SearchHandler{artists: artists, albums: albums, logger: logger}
}

// Routes returns the patterns this handler serves.
func (h *SearchHandler) Routes() []string {
	return []string{
		"GET /api/search",
		"GET /api/search/artists",
		"GET /api/search/albums",
	}
}

// ServeHTTP dispatches to the search operation matching the request path.
func (h *SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeError(w, r, http.StatusBadRequest, "Validation Failed", "invalid search", map[string]string{"q": "must not be blank"})
		return
	}

	switch {
	case strings.HasSuffix(r.URL.Path, "/artists"):
		h.searchArtists(w, r, q)
	case strings.HasSuffix(r.URL.Path, "/albums"):
		h.searchAlbums(w, r, q)
	default:
		h.searchAll(w, r, q)
	}
}

func (h *SearchHandler) searchArtists(w http.ResponseWriter, r *http.Request, q string) {
	artists, err := h.artists.SearchByName(q)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}

	out := make([]artistResponse, 0, len(artists))
	for _, a := range artists {
		out = append(out, newArtistResponse(a))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *SearchHandler) searchAlbums(w http.ResponseWriter, r *http.Request, q string) {
	albums, err := h.albums.SearchByTitle(q)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}

	out := make([]albumResponse, 0, len(albums))
	for _, a := range albums {
		out = append(out, newAlbumResponse(a))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *SearchHandler) searchAll(w http.ResponseWriter, r *http.Request, q string) {
	artists, err := h.artists.SearchByName(q)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	albums, err := h.albums.SearchByTitle(q)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}

	result := searchResultResponse{
		Artists: make([]artistResponse, 0, len(artists)),
		Albums:  make([]albumResponse, 0, len(albums)),
	}
	for _, a := range artists {
		result.Artists = append(result.Artists, newArtistResponse(a))
	}
	for _, a := range albums {
		result.Albums = append(result.Albums, newAlbumResponse(a))
	}
	writeJSON(w, http.StatusOK, result)
}
