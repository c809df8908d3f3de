package tidal

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/arcova/tidalbridge/internal/shared"
)

// Dummy serves canned catalog data so the sync pipeline can run end to end
// without TIDAL credentials. Selected via the use_dummy config flag.
type Dummy struct {
	logger *log.Logger
}

// Ensure interface compliance.
var _ Catalog = (*Dummy)(nil)

// NewDummy creates the canned catalog.
func NewDummy(logger *log.Logger) *Dummy {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Dummy{logger: logger}
}

type dummyTrack struct {
	artistID   string
	artistName string
}

var dummyCharts = []dummyTrack{
	{"artist-2", "Queen"},
	{"artist-3", "Led Zeppelin"},
	{"artist-4", "Pink Floyd"},
	{"artist-1", "The Beatles"},
	{"artist-7", "AC/DC"},
	{"artist-8", "Metallica"},
	{"artist-9", "Nirvana"},
	{"artist-6", "David Bowie"},
	{"artist-10", "Radiohead"},
	{"artist-5", "The Rolling Stones"},
	{"artist-1", "The Beatles"},
	{"artist-7", "AC/DC"},
	{"artist-8", "Metallica"},
	{"artist-4", "Pink Floyd"},
	{"artist-3", "Led Zeppelin"},
}

var dummyAlbums = map[string][]Album{
	"artist-1": {
		{ID: "album-1-1", Title: "Abbey Road", ReleaseDate: "1969-09-26"},
		{ID: "album-1-2", Title: "Let It Be", ReleaseDate: "1970-05-08"},
		{ID: "album-1-3", Title: "Sgt. Pepper's Lonely Hearts Club Band", ReleaseDate: "1967-06-01"},
	},
	"artist-2": {
		{ID: "album-2-1", Title: "A Night at the Opera", ReleaseDate: "1975-11-21"},
		{ID: "album-2-2", Title: "The Game", ReleaseDate: "1980-06-30"},
		{ID: "album-2-3", Title: "News of the World", ReleaseDate: "1977-10-28"},
	},
	"artist-3": {
		{ID: "album-3-1", Title: "Led Zeppelin IV", ReleaseDate: "1971-11-08"},
		{ID: "album-3-2", Title: "Physical Graffiti", ReleaseDate: "1975-02-24"},
	},
	"artist-4": {
		{ID: "album-4-1", Title: "The Dark Side of the Moon", ReleaseDate: "1973-03-01"},
		{ID: "album-4-2", Title: "The Wall", ReleaseDate: "1979-11-30"},
	},
	"artist-8": {
		{ID: "album-8-1", Title: "Master of Puppets", ReleaseDate: "1986-03-03"},
		{ID: "album-8-2", Title: "Ride the Lightning", ReleaseDate: "1984-07-27"},
	},
}

// SearchTracksAndExtractArtists returns unique artists from the canned
// charts, roughly half as many artists as the requested track limit.
func (d *Dummy) SearchTracksAndExtractArtists(ctx context.Context, query string, trackLimit int) []Artist {
	d.logger.Info("dummy: searching tracks and extracting artists", "query", query, "limit", trackLimit)

	max := trackLimit / 2
	if max <= 0 {
		max = 1
	}

	var artists []Artist
	seen := make(map[string]struct{})
	for _, track := range dummyCharts {
		if _, dup := seen[track.artistID]; dup {
			continue
		}
		seen[track.artistID] = struct{}{}
		artists = append(artists, Artist{ID: track.artistID, Name: track.artistName})
		if len(artists) >= max {
			break
		}
	}

	d.logger.Info("dummy: extracted unique artists", "artists", len(artists))
	return artists
}

// FetchAlbumsForArtist returns the canned albums for known artists.
func (d *Dummy) FetchAlbumsForArtist(ctx context.Context, artistID string) []Album {
	albums := dummyAlbums[artistID]
	d.logger.Info("dummy: fetched albums for artist", "artist", artistID, "albums", len(albums))
	return albums
}
