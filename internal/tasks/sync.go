package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/arcova/tidalbridge/internal/models"
	"github.com/arcova/tidalbridge/internal/shared"
	"github.com/arcova/tidalbridge/internal/tidal"
)

// ArtistStore is the persistence surface the engine needs for artists.
// Implemented by repositories.ArtistRepository.
type ArtistStore interface {
	GetByTidalID(tidalID string) (*models.Artist, error)
	Create(artist *models.Artist) error
	Update(artist *models.Artist) error
}

// AlbumStore is the persistence surface the engine needs for albums.
// Implemented by repositories.AlbumRepository.
type AlbumStore interface {
	GetByTidalID(tidalID string) (*models.Album, error)
	Create(album *models.Album) error
	Update(album *models.Album) error
}

// RunResult summarizes one reconciliation run.
type RunResult struct {
	Query          string // Effective search query after default fallback
	TrackLimit     int    // Effective track limit after default fallback
	ArtistsFound   int    // Unique artists extracted from the search
	ArtistsCreated int    // Artists inserted this run
	ArtistsUpdated int    // Sync-owned artists whose name was refreshed
	ArtistsSkipped int    // Manually owned artists left untouched
	ArtistsFailed  int    // Artists whose processing was contained after an error
	AlbumsCreated  int    // Albums inserted this run
	AlbumsUpdated  int    // Sync-owned albums refreshed
	AlbumsSkipped  int    // Manually owned albums left untouched
}

// Engine merges external catalog data into the local store.
//
// Entities whose manually_modified flag is set are never overwritten by a
// run; sync-owned entities are refreshed in place. Artists are processed
// sequentially, and a failure inside one artist's processing never aborts
// the run.
type Engine struct {
	catalog tidal.Catalog
	artists ArtistStore
	albums  AlbumStore
	cfg     shared.SyncConfig
	logger  *log.Logger
}

// NewEngine creates an Engine with the provided collaborators.
func NewEngine(catalog tidal.Catalog, artists ArtistStore, albums AlbumStore, cfg shared.SyncConfig, logger *log.Logger) *Engine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Engine{
		catalog: catalog,
		artists: artists,
		albums:  albums,
		cfg:     cfg,
		logger:  logger,
	}
}

// SyncArtistsAndAlbums executes one reconciliation run. Empty query and
// non-positive trackLimit fall back to the configured defaults; trigger
// boundaries validate caller-supplied values before reaching here.
func (e *Engine) SyncArtistsAndAlbums(ctx context.Context, query string, trackLimit int) (*RunResult, error) {
	if e.catalog == nil {
		return nil, fmt.Errorf("%w: catalog client not initialized", shared.ErrServiceUnavailable)
	}

	if query == "" {
		query = e.cfg.DefaultQuery
	}
	if trackLimit <= 0 {
		trackLimit = e.cfg.DefaultTrackLimit
	}

	result := &RunResult{Query: query, TrackLimit: trackLimit}

	e.logger.Info("starting catalog sync", "query", query, "trackLimit", trackLimit)

	candidates := e.catalog.SearchTracksAndExtractArtists(ctx, query, trackLimit)
	result.ArtistsFound = len(candidates)
	if len(candidates) == 0 {
		e.logger.Info("no artists found, nothing to sync", "query", query)
		return result, nil
	}

	for _, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			e.logger.Warn("sync run cancelled", "processed", result.ArtistsCreated+result.ArtistsUpdated+result.ArtistsSkipped)
			return result, err
		}

		if err := e.syncArtist(ctx, candidate, result); err != nil {
			result.ArtistsFailed++
			e.logger.Error("failed to sync artist, continuing", "artist", candidate.Name, "error", err)
		}
	}

	e.logger.Info("catalog sync finished",
		"artists", result.ArtistsFound,
		"artistsCreated", result.ArtistsCreated,
		"artistsUpdated", result.ArtistsUpdated,
		"artistsSkipped", result.ArtistsSkipped,
		"artistsFailed", result.ArtistsFailed,
		"albumsCreated", result.AlbumsCreated,
		"albumsUpdated", result.AlbumsUpdated,
		"albumsSkipped", result.AlbumsSkipped,
	)

	return result, nil
}

// syncArtist reconciles a single candidate artist and its albums.
func (e *Engine) syncArtist(ctx context.Context, candidate tidal.Artist, result *RunResult) error {
	artist, err := e.artists.GetByTidalID(candidate.ID)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		artist = &models.Artist{
			TidalID: candidate.ID,
			Name:    candidate.Name,
			State:   models.SyncManaged,
		}
		if err := e.artists.Create(artist); err != nil {
			return fmt.Errorf("create artist: %w", err)
		}
		result.ArtistsCreated++
		e.logger.Debug("created artist", "artist", artist.Name, "tidalID", artist.TidalID)
	case err != nil:
		return fmt.Errorf("look up artist: %w", err)
	case artist.State == models.ManuallyOwned:
		// Manual edits win; keep the stored name for album denormalization.
		result.ArtistsSkipped++
		e.logger.Debug("skipping manually owned artist", "artist", artist.Name, "tidalID", artist.TidalID)
	default:
		artist.Name = candidate.Name
		if err := e.artists.Update(artist); err != nil {
			return fmt.Errorf("update artist: %w", err)
		}
		result.ArtistsUpdated++
		e.logger.Debug("updated artist", "artist", artist.Name, "tidalID", artist.TidalID)
	}

	for _, external := range e.catalog.FetchAlbumsForArtist(ctx, candidate.ID) {
		if err := e.syncAlbum(external, artist, result); err != nil {
			return fmt.Errorf("sync album %q: %w", external.Title, err)
		}
	}

	return nil
}

// syncAlbum reconciles a single external album against the store, stamping
// the owning artist's current name onto the row.
func (e *Engine) syncAlbum(external tidal.Album, artist *models.Artist, result *RunResult) error {
	album, err := e.albums.GetByTidalID(external.ID)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		album = &models.Album{
			TidalID:     external.ID,
			Title:       external.Title,
			ReleaseDate: models.ParseReleaseDate(external.ReleaseDate),
			ArtistID:    artist.ID,
			ArtistName:  artist.Name,
			State:       models.SyncManaged,
		}
		if err := e.albums.Create(album); err != nil {
			return fmt.Errorf("create album: %w", err)
		}
		result.AlbumsCreated++
	case err != nil:
		return fmt.Errorf("look up album: %w", err)
	case album.State == models.ManuallyOwned:
		result.AlbumsSkipped++
	default:
		album.Title = external.Title
		album.ReleaseDate = models.ParseReleaseDate(external.ReleaseDate)
		album.ArtistID = artist.ID
		album.ArtistName = artist.Name
		if err := e.albums.Update(album); err != nil {
			return fmt.Errorf("update album: %w", err)
		}
		result.AlbumsUpdated++
	}

	return nil
}
