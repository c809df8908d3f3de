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

// albumPayload is the request body for album create and update.
type albumPayload struct {
	TidalID     string `json:"tidal_id"`
	Title       string `json:"title"`
	ReleaseDate string `json:"release_date"`
	ArtistID    string `json:"artist_id"`
}

// albumResponse is the wire representation of an album.
type albumResponse struct {
	ID               string `json:"id"`
	TidalID          string `json:"tidal_id"`
	Title            string `json:"title"`
	ReleaseDate      string `json:"release_date,omitempty"`
	ArtistID         string `json:"artist_id"`
	ArtistName       string `json:"artist_name"`
	ManuallyModified bool   `json:"manually_modified"`
	CreatedAt        string `json:"created_at"`
	UpdatedAt        string `json:"updated_at"`
}

func newAlbumResponse(a *models.Album) albumResponse {
	return albumResponse{
		ID:               a.ID,
		TidalID:          a.TidalID,
		Title:            a.Title,
		ReleaseDate:      a.ReleaseDate.String(),
		ArtistID:         a.ArtistID,
		ArtistName:       a.ArtistName,
		ManuallyModified: a.State.Flag(),
		CreatedAt:        a.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		UpdatedAt:        a.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

// AlbumHandler serves the album CRUD and search endpoints.
//
// Writes verify the owning artist exists and denormalize its current name
// onto the album; like artist writes, they mark the album manually owned.
type AlbumHandler struct {
	albums  *repositories.AlbumRepository
	artists *repositories.ArtistRepository
	logger  *log.Logger
}

// NewAlbumHandler creates an AlbumHandler backed by the given repositories.
func NewAlbumHandler(albums *repositories.AlbumRepository, artists *repositories.ArtistRepository, logger *log.Logger) *AlbumHandler {
	return &AlbumHandler{albums: albums, artists: artists, logger: logger}
}

// Routes returns the patterns this handler serves.
func (h *AlbumHandler) Routes() []string {
	return []string{
		"GET /api/albums",
		"POST /api/albums",
		"GET /api/albums/{id}",
		"PUT /api/albums/{id}",
		"DELETE /api/albums/{id}",
	}
}

// ServeHTTP dispatches to the operation matching the request pattern.
func (h *AlbumHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	switch {
	case id == "" && r.Method == http.MethodGet:
		h.list(w, r)
	case id == "" && r.Method == http.MethodPost:
		h.create(w, r)
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

func (h *AlbumHandler) list(w http.ResponseWriter, r *http.Request) {
	if q := r.URL.Query().Get("q"); q != "" {
		albums, err := h.albums.SearchByTitle(q)
		if err != nil {
			writeStoreError(w, r, err)
			return
		}
		h.respondList(w, albums)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	albums, err := h.albums.List(limit, offset)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	h.respondList(w, albums)
}

func (h *AlbumHandler) respondList(w http.ResponseWriter, albums []*models.Album) {
	out := make([]albumResponse, 0, len(albums))
	for _, a := range albums {
		out = append(out, newAlbumResponse(a))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *AlbumHandler) create(w http.ResponseWriter, r *http.Request) {
	var payload albumPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, r, http.StatusBadRequest, "Bad Request", "invalid JSON body", nil)
		return
	}

	if fieldErrors := validateAlbumPayload(payload); len(fieldErrors) > 0 {
		writeError(w, r, http.StatusBadRequest, "Validation Failed", "invalid album", fieldErrors)
		return
	}

	artist, err := h.artists.Get(payload.ArtistID)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}

	album := &models.Album{
		TidalID:     payload.TidalID,
		Title:       payload.Title,
		ReleaseDate: models.ParseReleaseDate(payload.ReleaseDate),
		ArtistID:    artist.ID,
		ArtistName:  artist.Name,
		State:       models.ManuallyOwned,
	}

	if err := h.albums.Create(album); err != nil {
		writeStoreError(w, r, err)
		return
	}

	h.logger.Info("album created manually", "album", album.Title, "tidalID", album.TidalID)
	writeJSON(w, http.StatusCreated, newAlbumResponse(album))
}

func (h *AlbumHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	album, err := h.albums.Get(id)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newAlbumResponse(album))
}

func (h *AlbumHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	var payload albumPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, r, http.StatusBadRequest, "Bad Request", "invalid JSON body", nil)
		return
	}

	if strings.TrimSpace(payload.Title) == "" {
		writeError(w, r, http.StatusBadRequest, "Validation Failed", "invalid album", map[string]string{"title": "must not be blank"})
		return
	}

	album, err := h.albums.Get(id)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}

	album.Title = payload.Title
	album.ReleaseDate = models.ParseReleaseDate(payload.ReleaseDate)
	album.State = models.ManuallyOwned

	if payload.ArtistID != "" && payload.ArtistID != album.ArtistID {
		artist, err := h.artists.Get(payload.ArtistID)
		if err != nil {
			writeStoreError(w, r, err)
			return
		}
		album.ArtistID = artist.ID
		album.ArtistName = artist.Name
	}

	if err := h.albums.Update(album); err != nil {
		writeStoreError(w, r, err)
		return
	}

	h.logger.Info("album updated manually", "album", album.Title, "tidalID", album.TidalID)
	writeJSON(w, http.StatusOK, newAlbumResponse(album))
}

func (h *AlbumHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.albums.Delete(id); err != nil {
		writeStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func validateAlbumPayload(payload albumPayload) map[string]string {
	fieldErrors := map[string]string{}
	if strings.TrimSpace(payload.TidalID) == "" {
		fieldErrors["tidal_id"] = "must not be blank"
	}
	if strings.TrimSpace(payload.Title) == "" {
		fieldErrors["title"] = "must not be blank"
	}
	if strings.TrimSpace(payload.ArtistID) == "" {
		fieldErrors["artist_id"] = "must not be blank"
	}
	return fieldErrors
}
