package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/arcova/tidalbridge/internal/models"
	"github.com/arcova/tidalbridge/internal/shared"
)

// AlbumRepository implements models.Repository[*models.Album].
//
// Release dates are stored as 2006-01-02 strings with NULL for absent
// values; artist_name is denormalized alongside the artist_id foreign key.
type AlbumRepository struct {
	db *sql.DB
}

// NewAlbumRepository creates a new AlbumRepository with the given database connection
func NewAlbumRepository(db *sql.DB) *AlbumRepository {
	return &AlbumRepository{db: db}
}

// Create inserts a new album into the database with a generated ID
func (r *AlbumRepository) Create(album *models.Album) error {
	if album.ID == "" {
		album.ID = shared.GenerateID()
	}

	now := time.Now()
	if album.CreatedAt.IsZero() {
		album.CreatedAt = now
	}
	album.UpdatedAt = now

	if err := album.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO albums (id, tidal_id, title, release_date, artist_id, artist_name, manually_modified, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		album.ID,
		album.TidalID,
		album.Title,
		releaseDateParam(album.ReleaseDate),
		album.ArtistID,
		album.ArtistName,
		album.State.Flag(),
		album.CreatedAt,
		album.UpdatedAt,
	)
	if err != nil {
		return wrapConstraint(err, "album")
	}

	return nil
}

// Get retrieves an album by ID
func (r *AlbumRepository) Get(id string) (*models.Album, error) {
	query := `
		SELECT id, tidal_id, title, release_date, artist_id, artist_name, manually_modified, created_at, updated_at
		FROM albums
		WHERE id = ?
	`

	return r.scanOne(r.db.QueryRow(query, id))
}

// GetByTidalID retrieves an album by its external catalog identifier
func (r *AlbumRepository) GetByTidalID(tidalID string) (*models.Album, error) {
	query := `
		SELECT id, tidal_id, title, release_date, artist_id, artist_name, manually_modified, created_at, updated_at
		FROM albums
		WHERE tidal_id = ?
	`

	return r.scanOne(r.db.QueryRow(query, tidalID))
}

// ExistsByTidalID reports whether an album with the given external identifier exists
func (r *AlbumRepository) ExistsByTidalID(tidalID string) (bool, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(1) FROM albums WHERE tidal_id = ?", tidalID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check album existence: %w", err)
	}
	return count > 0, nil
}

// Update modifies an existing album in the database
func (r *AlbumRepository) Update(album *models.Album) error {
	if err := album.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	album.UpdatedAt = now

	query := `
		UPDATE albums
		SET title = ?, release_date = ?, artist_id = ?, artist_name = ?, manually_modified = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query,
		album.Title,
		releaseDateParam(album.ReleaseDate),
		album.ArtistID,
		album.ArtistName,
		album.State.Flag(),
		now,
		album.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update album: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("album %s: %w", album.ID, shared.ErrNotFound)
	}

	return nil
}

// Delete removes an album by ID
func (r *AlbumRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM albums WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete album: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("album %s: %w", id, shared.ErrNotFound)
	}

	return nil
}

// List retrieves a page of albums ordered by title
func (r *AlbumRepository) List(limit, offset int) ([]*models.Album, error) {
	limit, offset = normalizeLimit(limit, offset)

	query := `
		SELECT id, tidal_id, title, release_date, artist_id, artist_name, manually_modified, created_at, updated_at
		FROM albums
		ORDER BY title ASC
		LIMIT ? OFFSET ?
	`

	return r.queryMany(query, limit, offset)
}

// ListByArtist retrieves all albums owned by the given artist, ordered by title
func (r *AlbumRepository) ListByArtist(artistID string) ([]*models.Album, error) {
	query := `
		SELECT id, tidal_id, title, release_date, artist_id, artist_name, manually_modified, created_at, updated_at
		FROM albums
		WHERE artist_id = ?
		ORDER BY title ASC
	`

	return r.queryMany(query, artistID)
}

// SearchByTitle retrieves albums whose title contains the given fragment,
// case-insensitively, ordered by title
func (r *AlbumRepository) SearchByTitle(fragment string) ([]*models.Album, error) {
	query := `
		SELECT id, tidal_id, title, release_date, artist_id, artist_name, manually_modified, created_at, updated_at
		FROM albums
		WHERE title LIKE ? COLLATE NOCASE
		ORDER BY title ASC
	`

	return r.queryMany(query, "%"+fragment+"%")
}

// Count returns the total number of stored albums
func (r *AlbumRepository) Count() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(1) FROM albums").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count albums: %w", err)
	}
	return count, nil
}

func (r *AlbumRepository) queryMany(query string, args ...any) ([]*models.Album, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query albums: %w", err)
	}
	defer rows.Close()

	var albums []*models.Album
	for rows.Next() {
		album, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		albums = append(albums, album)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return albums, nil
}

// scanOne scans a single row into a [models.Album]
func (r *AlbumRepository) scanOne(row *sql.Row) (*models.Album, error) {
	var (
		id               string
		tidalID          string
		title            string
		releaseDate      sql.NullString
		artistID         string
		artistName       string
		manuallyModified bool
		createdAt        time.Time
		updatedAt        time.Time
	)

	err := row.Scan(&id, &tidalID, &title, &releaseDate, &artistID, &artistName, &manuallyModified, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("album: %w", shared.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan album: %w", err)
	}

	return &models.Album{
		ID:          id,
		TidalID:     tidalID,
		Title:       title,
		ReleaseDate: models.ParseReleaseDate(releaseDate.String),
		ArtistID:    artistID,
		ArtistName:  artistName,
		State:       models.StateFromFlag(manuallyModified),
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}, nil
}

// scanRow scans a row from [sql.Rows] into a [models.Album]
func (r *AlbumRepository) scanRow(rows *sql.Rows) (*models.Album, error) {
	var (
		id               string
		tidalID          string
		title            string
		releaseDate      sql.NullString
		artistID         string
		artistName       string
		manuallyModified bool
		createdAt        time.Time
		updatedAt        time.Time
	)

	err := rows.Scan(&id, &tidalID, &title, &releaseDate, &artistID, &artistName, &manuallyModified, &createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to scan album: %w", err)
	}

	return &models.Album{
		ID:          id,
		TidalID:     tidalID,
		Title:       title,
		ReleaseDate: models.ParseReleaseDate(releaseDate.String),
		ArtistID:    artistID,
		ArtistName:  artistName,
		State:       models.StateFromFlag(manuallyModified),
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}, nil
}

// releaseDateParam converts a release date to its nullable column value.
func releaseDateParam(d models.ReleaseDate) any {
	if !d.Valid() {
		return nil
	}
	return d.String()
}
