package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/arcova/tidalbridge/internal/models"
	"github.com/arcova/tidalbridge/internal/repositories"
)

// artistPayload is the request body for artist create and update.
type artistPayload struct {
	TidalID string `json:"tidal_id"`
	Name    string `json:"name"`
}

// artistResponse is the wire representation of an artist.
type artistResponse struct {
	ID               string `json:"id"`
	TidalID          string `json:"tidal_id"`
	Name             string `json:"name"`
	ManuallyModified bool   `json:"manually_modified"`
	CreatedAt        string `json:"created_at"`
	UpdatedAt        string `json:"updated_at"`
}

func newArtistResponse(a *models.Artist) artistResponse {
	return artistResponse{
		ID:               a.ID,
		TidalID:          a.TidalID,
		Name:             a.Name,
		ManuallyModified: a.State.Flag(),
		CreatedAt:        a.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		UpdatedAt:        a.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

// ArtistHandler serves the artist CRUD and search endpoints.
//
// Every write through this handler marks the artist as manually owned, which
// exempts it from reconciliation overwrites from then on.
type ArtistHandler struct {
	artists *repositories.ArtistRepository
	albums  *repositories.AlbumRepository
	logger  *log.Logger
}

// NewArtistHandler creates an ArtistHandler backed by the given repositories.
func NewArtistHandler(artists *repositories.ArtistRepository, albums *repositories.AlbumRepository, logger *log.Logger) *ArtistHandler {
	return &ArtistHandler{artists: artists, albums: albums, logger: logger}
}

// Routes returns the patterns this handler serves.
func (h *ArtistHandler) Routes() []string {
	return []string{
		"GET /api/artists",
		"POST /api/artists",
		"GET /api/artists/{id}",
		"PUT /api/artists/{id}",
		"DELETE /api/artists/{id}",
		"GET /api/artists/{id}/albums",
	}
}

// ServeHTTP dispatches to the operation matching the request pattern.
func (h *ArtistHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	switch {
	case id == "" && r.Method == http.MethodGet:
		h.list(w, r)
	case id == "" && r.Method == http.MethodPost:
		h.create(w, r)
	case strings.HasSuffix(r.URL.Path, "/albums"):
		h.listAlbums(w, r, id)
	case r.Method == http.MethodGet:
		h.get(w, r, id)
	case r.Method == http.MethodPut:
		h.update(w, r, id)
	case r.Method == http.MethodDelete:
		h.delete(w, r, id)
	default:
		writeError(w, r, http.StatusMethodNotAllowed, "Method Not Allowed", "unsupported method", nil)
	}
}

func (h *ArtistHandler) list(w http.ResponseWriter, r *http.Request) {
	if q := r.URL.Query().Get("q"); q != "" {
		artists, err := h.artists.SearchByName(q)
		if err != nil {
			writeStoreError(w, r, err)
			return
		}
		h.respondList(w, artists)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	artists, err := h.artists.List(limit, offset)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	h.respondList(w, artists)
}

func (h *ArtistHandler) respondList(w http.ResponseWriter, artists []*models.Artist) {
	out := make([]artistResponse, 0, len(artists))
	for _, a := range artists {
		out = append(out, newArtistResponse(a))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *ArtistHandler) create(w http.ResponseWriter, r *http.Request) {
	var payload artistPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, r, http.StatusBadRequest, "Bad Request", "invalid JSON body", nil)
		return
	}

	if fieldErrors := validateArtistPayload(payload); len(fieldErrors) > 0 {
		writeError(w, r, http.StatusBadRequest, "Validation Failed", "invalid artist", fieldErrors)
		return
	}

	artist := &models.Artist{
		TidalID: payload.TidalID,
		Name:    payload.Name,
		State:   models.ManuallyOwned,
	}

	if err := h.artists.Create(artist); err != nil {
		writeStoreError(w, r, err)
		return
	}

	h.logger.Info("artist created manually", "artist", artist.Name, "tidalID", artist.TidalID)
	writeJSON(w, http.StatusCreated, newArtistResponse(artist))
}

func (h *ArtistHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	artist, err := h.artists.Get(id)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newArtistResponse(artist))
}

func (h *ArtistHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	var payload artistPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, r, http.StatusBadRequest, "Bad Request", "invalid JSON body", nil)
		return
	}

	if strings.TrimSpace(payload.Name) == "" {
		writeError(w, r, http.StatusBadRequest, "Validation Failed", "invalid artist", map[string]string{"name": "must not be blank"})
		return
	}

	artist, err := h.artists.Get(id)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}

	artist.Name = payload.Name
	artist.State = models.ManuallyOwned

	if err := h.artists.Update(artist); err != nil {
		writeStoreError(w, r, err)
		return
	}

	h.logger.Info("artist updated manually", "artist", artist.Name, "tidalID", artist.TidalID)
	writeJSON(w, http.StatusOK, newArtistResponse(artist))
}

func (h *ArtistHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.artists.Delete(id); err != nil {
		writeStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ArtistHandler) listAlbums(w http.ResponseWriter, r *http.Request, id string) {
	if _, err := h.artists.Get(id); err != nil {
		writeStoreError(w, r, err)
		return
	}

	albums, err := h.albums.ListByArtist(id)
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

func validateArtistPayload(payload artistPayload) map[string]string {
	fieldErrors := map[string]string{}
	if strings.TrimSpace(payload.TidalID) == "" {
		fieldErrors["tidal_id"] = "must not be blank"
	}
	if strings.TrimSpace(payload.Name) == "" {
		fieldErrors["name"] = "must not be blank"
	}
	return fieldErrors
}
