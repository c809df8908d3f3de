package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/arcova/tidalbridge/internal/models"
	"github.com/arcova/tidalbridge/internal/repositories"
	"github.com/arcova/tidalbridge/internal/shared"
	itesting "github.com/arcova/tidalbridge/internal/testing"
	"github.com/arcova/tidalbridge/internal/tidal"
)

var testSyncConfig = shared.SyncConfig{
	DefaultQuery:      "best rock songs",
	DefaultTrackLimit: 50,
}

func newTestEngine(t *testing.T, catalog tidal.Catalog) (*Engine, *repositories.ArtistRepository, *repositories.AlbumRepository) {
	t.Helper()
	db := itesting.NewTestDB(t)
	artists := repositories.NewArtistRepository(db)
	albums := repositories.NewAlbumRepository(db)
	return NewEngine(catalog, artists, albums, testSyncConfig, nil), artists, albums
}

// flakyArtistStore fails every operation for one tidal ID.
type flakyArtistStore struct {
	ArtistStore
	failFor string
}

func (s *flakyArtistStore) GetByTidalID(tidalID string) (*models.Artist, error) {
	if tidalID == s.failFor {
		return nil, errors.New("store unavailable")
	}
	return s.ArtistStore.GetByTidalID(tidalID)
}

func TestEngineSync(t *testing.T) {
	t.Run("creates new artist and album", func(t *testing.T) {
		catalog := &itesting.MockCatalog{
			Artists: []tidal.Artist{{ID: "artist-123", Name: "Metallica"}},
			AlbumsByID: map[string][]tidal.Album{
				"artist-123": {{ID: "album-456", Title: "Master of Puppets", ReleaseDate: "1986-03-03"}},
			},
		}
		engine, artists, albums := newTestEngine(t, catalog)

		result, err := engine.SyncArtistsAndAlbums(context.Background(), "", 0)
		if err != nil {
			t.Fatalf("sync failed: %v", err)
		}
		if result.ArtistsCreated != 1 || result.AlbumsCreated != 1 {
			t.Errorf("result = %+v, want 1 artist and 1 album created", result)
		}

		artist, err := artists.GetByTidalID("artist-123")
		if err != nil {
			t.Fatalf("artist not stored: %v", err)
		}
		if artist.State != models.SyncManaged {
			t.Errorf("artist state = %v, want SyncManaged", artist.State)
		}

		album, err := albums.GetByTidalID("album-456")
		if err != nil {
			t.Fatalf("album not stored: %v", err)
		}
		if album.Title != "Master of Puppets" {
			t.Errorf("title = %q", album.Title)
		}
		if album.ReleaseDate.String() != "1986-03-03" {
			t.Errorf("release date = %q", album.ReleaseDate.String())
		}
		if album.ArtistID != artist.ID {
			t.Error("album should reference the stored artist")
		}
		if album.ArtistName != "Metallica" {
			t.Errorf("denormalized artist name = %q", album.ArtistName)
		}
		if album.State != models.SyncManaged {
			t.Errorf("album state = %v, want SyncManaged", album.State)
		}
	})

	t.Run("defaults applied when query and limit absent", func(t *testing.T) {
		catalog := &itesting.MockCatalog{}
		engine, _, _ := newTestEngine(t, catalog)

		result, err := engine.SyncArtistsAndAlbums(context.Background(), "", 0)
		if err != nil {
			t.Fatalf("sync failed: %v", err)
		}
		if result.Query != "best rock songs" || result.TrackLimit != 50 {
			t.Errorf("effective parameters = %q/%d, want configured defaults", result.Query, result.TrackLimit)
		}
	})

	t.Run("manually owned artist is untouched", func(t *testing.T) {
		catalog := &itesting.MockCatalog{
			Artists: []tidal.Artist{{ID: "artist-123", Name: "Metallica"}},
		}
		engine, artists, _ := newTestEngine(t, catalog)

		seeded := &models.Artist{TidalID: "artist-123", Name: "Custom Name", State: models.ManuallyOwned}
		if err := artists.Create(seeded); err != nil {
			t.Fatalf("failed to seed artist: %v", err)
		}
		before, err := artists.GetByTidalID("artist-123")
		if err != nil {
			t.Fatalf("failed to read seeded artist: %v", err)
		}

		time.Sleep(5 * time.Millisecond)

		result, err := engine.SyncArtistsAndAlbums(context.Background(), "", 0)
		if err != nil {
			t.Fatalf("sync failed: %v", err)
		}
		if result.ArtistsSkipped != 1 {
			t.Errorf("skipped = %d, want 1", result.ArtistsSkipped)
		}

		after, err := artists.GetByTidalID("artist-123")
		if err != nil {
			t.Fatalf("failed to read artist: %v", err)
		}
		if after.Name != "Custom Name" {
			t.Errorf("name = %q, manual edit must survive sync", after.Name)
		}
		if !after.UpdatedAt.Equal(before.UpdatedAt) {
			t.Error("no write should occur for a manually owned artist")
		}
	})

	t.Run("albums denormalize the manually set artist name", func(t *testing.T) {
		catalog := &itesting.MockCatalog{
			Artists: []tidal.Artist{{ID: "artist-123", Name: "Metallica"}},
			AlbumsByID: map[string][]tidal.Album{
				"artist-123": {{ID: "album-456", Title: "Master of Puppets", ReleaseDate: "1986-03-03"}},
			},
		}
		engine, artists, albums := newTestEngine(t, catalog)

		seeded := &models.Artist{TidalID: "artist-123", Name: "Custom Name", State: models.ManuallyOwned}
		if err := artists.Create(seeded); err != nil {
			t.Fatalf("failed to seed artist: %v", err)
		}

		if _, err := engine.SyncArtistsAndAlbums(context.Background(), "", 0); err != nil {
			t.Fatalf("sync failed: %v", err)
		}

		album, err := albums.GetByTidalID("album-456")
		if err != nil {
			t.Fatalf("album not stored: %v", err)
		}
		if album.ArtistName != "Custom Name" {
			t.Errorf("artist name = %q, want the stored manual name", album.ArtistName)
		}
	})

	t.Run("manually owned album is skipped entirely", func(t *testing.T) {
		catalog := &itesting.MockCatalog{
			Artists: []tidal.Artist{{ID: "artist-123", Name: "Metallica"}},
			AlbumsByID: map[string][]tidal.Album{
				"artist-123": {{ID: "album-456", Title: "Fresh Title", ReleaseDate: "1990-01-01"}},
			},
		}
		engine, artists, albums := newTestEngine(t, catalog)

		artist := &models.Artist{TidalID: "artist-123", Name: "Metallica", State: models.SyncManaged}
		if err := artists.Create(artist); err != nil {
			t.Fatalf("failed to seed artist: %v", err)
		}
		seeded := &models.Album{
			TidalID:     "album-456",
			Title:       "My Edited Title",
			ReleaseDate: models.ParseReleaseDate("1986-03-03"),
			ArtistID:    artist.ID,
			ArtistName:  "Metallica",
			State:       models.ManuallyOwned,
		}
		if err := albums.Create(seeded); err != nil {
			t.Fatalf("failed to seed album: %v", err)
		}

		result, err := engine.SyncArtistsAndAlbums(context.Background(), "", 0)
		if err != nil {
			t.Fatalf("sync failed: %v", err)
		}
		if result.AlbumsSkipped != 1 {
			t.Errorf("albums skipped = %d, want 1", result.AlbumsSkipped)
		}

		after, err := albums.GetByTidalID("album-456")
		if err != nil {
			t.Fatalf("failed to read album: %v", err)
		}
		if after.Title != "My Edited Title" || after.ReleaseDate.String() != "1986-03-03" {
			t.Errorf("manual album was overwritten: %+v", after)
		}
	})

	t.Run("sync managed entities are refreshed", func(t *testing.T) {
		catalog := &itesting.MockCatalog{
			Artists: []tidal.Artist{{ID: "artist-123", Name: "Metallica"}},
			AlbumsByID: map[string][]tidal.Album{
				"artist-123": {{ID: "album-456", Title: "Master of Puppets (Remastered)", ReleaseDate: "2017-11-10"}},
			},
		}
		engine, artists, albums := newTestEngine(t, catalog)

		artist := &models.Artist{TidalID: "artist-123", Name: "metallica", State: models.SyncManaged}
		if err := artists.Create(artist); err != nil {
			t.Fatalf("failed to seed artist: %v", err)
		}
		seeded := &models.Album{
			TidalID:     "album-456",
			Title:       "Master of Puppets",
			ReleaseDate: models.ParseReleaseDate("1986-03-03"),
			ArtistID:    artist.ID,
			ArtistName:  "metallica",
			State:       models.SyncManaged,
		}
		if err := albums.Create(seeded); err != nil {
			t.Fatalf("failed to seed album: %v", err)
		}

		result, err := engine.SyncArtistsAndAlbums(context.Background(), "", 0)
		if err != nil {
			t.Fatalf("sync failed: %v", err)
		}
		if result.ArtistsUpdated != 1 || result.AlbumsUpdated != 1 {
			t.Errorf("result = %+v, want 1 artist and 1 album updated", result)
		}

		gotArtist, _ := artists.GetByTidalID("artist-123")
		if gotArtist.Name != "Metallica" {
			t.Errorf("artist name = %q", gotArtist.Name)
		}
		gotAlbum, _ := albums.GetByTidalID("album-456")
		if gotAlbum.Title != "Master of Puppets (Remastered)" {
			t.Errorf("album title = %q", gotAlbum.Title)
		}
		if gotAlbum.ArtistName != "Metallica" {
			t.Errorf("denormalized name = %q, want refreshed artist name", gotAlbum.ArtistName)
		}
	})

	t.Run("one failing artist does not abort the run", func(t *testing.T) {
		catalog := &itesting.MockCatalog{
			Artists: []tidal.Artist{
				{ID: "artist-bad", Name: "Broken"},
				{ID: "artist-123", Name: "Metallica"},
			},
			AlbumsByID: map[string][]tidal.Album{
				"artist-123": {{ID: "album-456", Title: "Master of Puppets", ReleaseDate: "1986-03-03"}},
			},
		}
		db := itesting.NewTestDB(t)
		artists := repositories.NewArtistRepository(db)
		albums := repositories.NewAlbumRepository(db)
		store := &flakyArtistStore{ArtistStore: artists, failFor: "artist-bad"}
		engine := NewEngine(catalog, store, albums, testSyncConfig, nil)

		result, err := engine.SyncArtistsAndAlbums(context.Background(), "", 0)
		if err != nil {
			t.Fatalf("sync failed: %v", err)
		}
		if result.ArtistsFailed != 1 {
			t.Errorf("failed = %d, want 1", result.ArtistsFailed)
		}
		if result.ArtistsCreated != 1 || result.AlbumsCreated != 1 {
			t.Errorf("result = %+v, the healthy artist should still be synced", result)
		}

		if _, err := artists.GetByTidalID("artist-123"); err != nil {
			t.Errorf("healthy artist missing: %v", err)
		}
	})

	t.Run("degraded album fetch still syncs the artist", func(t *testing.T) {
		catalog := &itesting.MockCatalog{
			Artists: []tidal.Artist{
				{ID: "artist-123", Name: "Metallica"},
				{ID: "artist-2", Name: "Queen"},
			},
			AlbumsByID: map[string][]tidal.Album{
				"artist-123": {{ID: "album-456", Title: "Master of Puppets", ReleaseDate: "1986-03-03"}},
				"artist-2":   {{ID: "album-789", Title: "A Night at the Opera", ReleaseDate: "1975-11-21"}},
			},
			FailAlbumFor: "artist-2",
		}
		engine, artists, albums := newTestEngine(t, catalog)

		result, err := engine.SyncArtistsAndAlbums(context.Background(), "", 0)
		if err != nil {
			t.Fatalf("sync failed: %v", err)
		}
		if result.ArtistsCreated != 2 {
			t.Errorf("artists created = %d, want 2", result.ArtistsCreated)
		}
		if result.AlbumsCreated != 1 {
			t.Errorf("albums created = %d, want 1 from the healthy artist only", result.AlbumsCreated)
		}

		if _, err := artists.GetByTidalID("artist-2"); err != nil {
			t.Errorf("artist with degraded album fetch missing: %v", err)
		}
		if _, err := albums.GetByTidalID("album-789"); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound for the degraded album, got %v", err)
		}
	})

	t.Run("two identical runs are idempotent", func(t *testing.T) {
		catalog := &itesting.MockCatalog{
			Artists: []tidal.Artist{{ID: "artist-123", Name: "Metallica"}},
			AlbumsByID: map[string][]tidal.Album{
				"artist-123": {{ID: "album-456", Title: "Master of Puppets", ReleaseDate: "1986-03-03"}},
			},
		}
		engine, artists, albums := newTestEngine(t, catalog)

		if _, err := engine.SyncArtistsAndAlbums(context.Background(), "", 0); err != nil {
			t.Fatalf("first run failed: %v", err)
		}
		firstArtist, _ := artists.GetByTidalID("artist-123")
		firstAlbum, _ := albums.GetByTidalID("album-456")

		second, err := engine.SyncArtistsAndAlbums(context.Background(), "", 0)
		if err != nil {
			t.Fatalf("second run failed: %v", err)
		}
		if second.ArtistsCreated != 0 || second.AlbumsCreated != 0 {
			t.Errorf("second run created entities: %+v", second)
		}

		secondArtist, _ := artists.GetByTidalID("artist-123")
		secondAlbum, _ := albums.GetByTidalID("album-456")

		if secondArtist.ID != firstArtist.ID || secondArtist.Name != firstArtist.Name || secondArtist.State != firstArtist.State {
			t.Errorf("artist changed between runs: %+v vs %+v", firstArtist, secondArtist)
		}
		if secondAlbum.ID != firstAlbum.ID || secondAlbum.Title != firstAlbum.Title ||
			!secondAlbum.ReleaseDate.Equal(firstAlbum.ReleaseDate) || secondAlbum.ArtistName != firstAlbum.ArtistName {
			t.Errorf("album changed between runs: %+v vs %+v", firstAlbum, secondAlbum)
		}
	})

	t.Run("empty search result is a quiet no-op", func(t *testing.T) {
		catalog := &itesting.MockCatalog{}
		engine, _, _ := newTestEngine(t, catalog)

		result, err := engine.SyncArtistsAndAlbums(context.Background(), "obscure query", 10)
		if err != nil {
			t.Fatalf("sync failed: %v", err)
		}
		if result.ArtistsFound != 0 {
			t.Errorf("found = %d, want 0", result.ArtistsFound)
		}
		if len(catalog.AlbumCalls) != 0 {
			t.Error("no album fetches expected for an empty search")
		}
	})

	t.Run("cancellation stops the run", func(t *testing.T) {
		catalog := &itesting.MockCatalog{
			Artists: []tidal.Artist{
				{ID: "artist-1", Name: "Queen"},
				{ID: "artist-2", Name: "Metallica"},
			},
		}
		engine, _, _ := newTestEngine(t, catalog)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if _, err := engine.SyncArtistsAndAlbums(ctx, "", 0); !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	})
}
