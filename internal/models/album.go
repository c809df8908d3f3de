package models

import (
	"fmt"
	"time"
)

// Album is a catalog album owned by exactly one artist. ArtistName is a
// snapshot of the owning artist's name taken at the album's last sync or
// manual write; it can drift if the artist is renamed afterwards and the
// reconciliation engine accepts that drift rather than correcting it.
type Album struct {
	ID          string      `json:"id"`
	TidalID     string      `json:"tidal_id"`
	Title       string      `json:"title"`
	ReleaseDate ReleaseDate `json:"release_date"`
	ArtistID    string      `json:"artist_id"`
	ArtistName  string      `json:"artist_name"`
	State       SyncState   `json:"state"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Validate checks the fields the schema marks NOT NULL.
func (a *Album) Validate() error {
	if a.TidalID == "" {
		return fmt.Errorf("album tidal id is required")
	}
	if a.Title == "" {
		return fmt.Errorf("album title is required")
	}
	if a.ArtistID == "" {
		return fmt.Errorf("album owning artist is required")
	}
	if a.ArtistName == "" {
		return fmt.Errorf("album artist name is required")
	}
	return nil
}
