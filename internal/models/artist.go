package models

import (
	"fmt"
	"time"
)

// Artist is a catalog artist. TidalID is the external identifier assigned by
// the catalog API and is the sole key external systems use for matching;
// ID is the local primary key.
type Artist struct {
	ID        string    `json:"id"`
	TidalID   string    `json:"tidal_id"`
	Name      string    `json:"name"`
	State     SyncState `json:"state"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Albums owned by this artist; populated only when explicitly loaded.
	Albums []Album `json:"albums,omitempty"`
}

// Validate checks the fields the schema marks NOT NULL.
func (a *Artist) Validate() error {
	if a.TidalID == "" {
		return fmt.Errorf("artist tidal id is required")
	}
	if a.Name == "" {
		return fmt.Errorf("artist name is required")
	}
	return nil
}
