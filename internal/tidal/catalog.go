package tidal

import (
	"context"
	"errors"
	"net/url"
	"strconv"

	"github.com/arcova/tidalbridge/internal/shared"
)

// SearchTracksAndExtractArtists resolves the artist set behind a track
// search. The search endpoint does not tie artist relationships to the query
// as a whole, so each returned track is fetched individually with
// include=artists; that per-track traversal is the burst-limited hot path
// and goes through the pacing limiter plus the retry loop.
//
// One failed track fetch is logged and skipped. A failed search degrades to
// an empty result; the degraded marker in the log is the only signal.
func (c *Client) SearchTracksAndExtractArtists(ctx context.Context, query string, trackLimit int) []Artist {
	c.logger.Info("searching tracks and extracting artists", "query", query, "limit", trackLimit)

	params := url.Values{
		"explicitFilter": {"INCLUDE"},
		"countryCode":    {countryCode},
		"include":        {"tracks"},
		"limit":          {strconv.Itoa(trackLimit)},
	}

	var searchResp searchResponse
	if err := c.get(ctx, "/v2/searchResults/"+url.PathEscape(query), params, &searchResp); err != nil {
		c.logger.Error("track search failed", "query", query, "degraded", true, "err", err)
		return nil
	}

	trackIDs := make([]string, 0, trackLimit)
	for _, res := range searchResp.Included {
		if res.Type != "tracks" {
			continue
		}
		trackIDs = append(trackIDs, res.ID)
		if len(trackIDs) >= trackLimit {
			break
		}
	}
	c.logger.Info("found tracks for query", "query", query, "tracks", len(trackIDs))

	var artists []Artist
	seen := make(map[string]struct{})

	for _, trackID := range trackIDs {
		if ctx.Err() != nil {
			c.logger.Warn("search cancelled, returning partial artist set",
				"resolved", len(artists), "degraded", true)
			break
		}

		trackResp, err := c.fetchTrackArtists(ctx, trackID)
		if err != nil {
			c.logger.Warn("failed to fetch artists for track, skipping",
				"track", trackID, "degraded", true, "err", err)
			continue
		}

		for _, res := range trackResp.Included {
			if res.Type != "artists" {
				continue
			}
			artist, ok := artistFromResource(res)
			if !ok {
				continue
			}
			// De-duplicate by id, first occurrence wins.
			if _, dup := seen[artist.ID]; dup {
				continue
			}
			seen[artist.ID] = struct{}{}
			artists = append(artists, artist)
		}
	}

	c.logger.Info("extracted unique artists", "artists", len(artists), "tracks", len(trackIDs))
	return artists
}

// fetchTrackArtists fetches one track with its related artists included.
func (c *Client) fetchTrackArtists(ctx context.Context, trackID string) (*searchResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{
		"countryCode": {countryCode},
		"include":     {"artists"},
	}

	var resp searchResponse
	if err := c.getWithRetry(ctx, "/v2/tracks/"+url.PathEscape(trackID), params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// FetchAlbumsForArtist returns the albums related to an artist in one call
// to the relationships endpoint with the album resources included. Albums
// lacking a title are dropped silently. Failures degrade to an empty list;
// auth failures are logged at error level so a systemic misconfiguration
// stands out from a benign empty page.
func (c *Client) FetchAlbumsForArtist(ctx context.Context, artistID string) []Album {
	c.logger.Info("fetching albums for artist", "artist", artistID)

	params := url.Values{
		"countryCode": {countryCode},
		"limit":       {"20"},
		"include":     {"albums"},
	}

	var resp relationshipResponse
	if err := c.get(ctx, "/v2/artists/"+url.PathEscape(artistID)+"/relationships/albums", params, &resp); err != nil {
		if errors.Is(err, shared.ErrAuthFailed) {
			c.logger.Error("album fetch failed authentication", "artist", artistID, "degraded", true, "err", err)
		} else {
			c.logger.Warn("album fetch failed", "artist", artistID, "degraded", true, "err", err)
		}
		return nil
	}

	var albums []Album
	for _, res := range resp.Included {
		if res.Type != "albums" {
			continue
		}
		if album, ok := albumFromResource(res); ok {
			albums = append(albums, album)
		}
	}

	c.logger.Info("fetched albums for artist", "artist", artistID, "albums", len(albums))
	return albums
}
