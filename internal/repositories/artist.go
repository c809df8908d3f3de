package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/arcova/tidalbridge/internal/models"
	"github.com/arcova/tidalbridge/internal/shared"
)

// ArtistRepository implements models.Repository[*models.Artist].
//
// Lookups by tidal_id support the reconciliation engine, which matches
// external entities solely on that column.
type ArtistRepository struct {
	db *sql.DB
}

// NewArtistRepository creates a new ArtistRepository with the given database connection
func NewArtistRepository(db *sql.DB) *ArtistRepository {
	return &ArtistRepository{db: db}
}

// Create inserts a new artist into the database with a generated ID
func (r *ArtistRepository) Create(artist *models.Artist) error {
	if artist.ID == "" {
		artist.ID = shared.GenerateID()
	}

	now := time.Now()
	if artist.CreatedAt.IsZero() {
		artist.CreatedAt = now
	}
	artist.UpdatedAt = now

	if err := artist.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO artists (id, tidal_id, name, manually_modified, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		artist.ID,
		artist.TidalID,
		artist.Name,
		artist.State.Flag(),
		artist.CreatedAt,
		artist.UpdatedAt,
	)
	if err != nil {
		return wrapConstraint(err, "artist")
	}

	return nil
}

// Get retrieves an artist by ID
func (r *ArtistRepository) Get(id string) (*models.Artist, error) {
	query := `
		SELECT id, tidal_id, name, manually_modified, created_at, updated_at
		FROM artists
		WHERE id = ?
	`

	return r.scanOne(r.db.QueryRow(query, id))
}

// GetByTidalID retrieves an artist by its external catalog identifier
func (r *ArtistRepository) GetByTidalID(tidalID string) (*models.Artist, error) {
	query := `
		SELECT id, tidal_id, name, manually_modified, created_at, updated_at
		FROM artists
		WHERE tidal_id = ?
	`

	return r.scanOne(r.db.QueryRow(query, tidalID))
}

// ExistsByTidalID reports whether an artist with the given external identifier exists
func (r *ArtistRepository) ExistsByTidalID(tidalID string) (bool, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(1) FROM artists WHERE tidal_id = ?", tidalID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check artist existence: %w", err)
	}
	return count > 0, nil
}

// Update modifies an existing artist in the database
func (r *ArtistRepository) Update(artist *models.Artist) error {
	if err := artist.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	artist.UpdatedAt = now

	query := `
		UPDATE artists
		SET name = ?, manually_modified = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query,
		artist.Name,
		artist.State.Flag(),
		now,
		artist.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update artist: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("artist %s: %w", artist.ID, shared.ErrNotFound)
	}

	return nil
}

// Delete removes an artist by ID; the schema cascades the delete to its albums
func (r *ArtistRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM artists WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete artist: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("artist %s: %w", id, shared.ErrNotFound)
	}

	return nil
}

// List retrieves a page of artists ordered by name
func (r *ArtistRepository) List(limit, offset int) ([]*models.Artist, error) {
	limit, offset = normalizeLimit(limit, offset)

	query := `
		SELECT id, tidal_id, name, manually_modified, created_at, updated_at
		FROM artists
		ORDER BY name ASC
		LIMIT ? OFFSET ?
	`

	rows, err := r.db.Query(query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query artists: %w", err)
	}
	defer rows.Close()

	var artists []*models.Artist
	for rows.Next() {
		artist, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		artists = append(artists, artist)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return artists, nil
}

// SearchByName retrieves artists whose name contains the given fragment,
// case-insensitively, ordered by name
func (r *ArtistRepository) SearchByName(fragment string) ([]*models.Artist, error) {
	query := `
		SELECT id, tidal_id, name, manually_modified, created_at, updated_at
		FROM artists
		WHERE name LIKE ? COLLATE NOCASE
		ORDER BY name ASC
	`

	rows, err := r.db.Query(query, "%"+fragment+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to search artists: %w", err)
	}
	defer rows.Close()

	var artists []*models.Artist
	for rows.Next() {
		artist, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		artists = append(artists, artist)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return artists, nil
}

// Count returns the total number of stored artists
func (r *ArtistRepository) Count() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(1) FROM artists").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count artists: %w", err)
	}
	return count, nil
}

// scanOne scans a single row into a [models.Artist]
func (r *ArtistRepository) scanOne(row *sql.Row) (*models.Artist, error) {
	var (
		id               string
		tidalID          string
		name             string
		manuallyModified bool
		createdAt        time.Time
		updatedAt        time.Time
	)

	err := row.Scan(&id, &tidalID, &name, &manuallyModified, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("artist: %w", shared.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan artist: %w", err)
	}

	return &models.Artist{
		ID:        id,
		TidalID:   tidalID,
		Name:      name,
		State:     models.StateFromFlag(manuallyModified),
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}

// scanRow scans a row from [sql.Rows] into a [models.Artist]
func (r *ArtistRepository) scanRow(rows *sql.Rows) (*models.Artist, error) {
	var (
		id               string
		tidalID          string
		name             string
		manuallyModified bool
		createdAt        time.Time
		updatedAt        time.Time
	)

	err := rows.Scan(&id, &tidalID, &name, &manuallyModified, &createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to scan artist: %w", err)
	}

	return &models.Artist{
		ID:        id,
		TidalID:   tidalID,
		Name:      name,
		State:     models.StateFromFlag(manuallyModified),
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}
