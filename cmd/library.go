package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/arcova/tidalbridge/internal/repositories"
)

// ListArtists prints stored artists as JSON, optionally filtered by name.
func (r *Runner) ListArtists(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	repo := repositories.NewArtistRepository(db)

	if q := cmd.String("search"); q != "" {
		artists, err := repo.SearchByName(q)
		if err != nil {
			return fmt.Errorf("failed to search artists: %w", err)
		}
		return r.writeJSON(artists, true)
	}

	artists, err := repo.List(cmd.Int("limit"), cmd.Int("offset"))
	if err != nil {
		return fmt.Errorf("failed to list artists: %w", err)
	}

	if len(artists) == 0 {
		return r.writePlainln("no artists stored; run 'tidalbridge sync' first")
	}

	return r.writeJSON(artists, true)
}

// ListAlbums prints stored albums as JSON, optionally filtered by title or artist.
func (r *Runner) ListAlbums(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	repo := repositories.NewAlbumRepository(db)

	if artistID := cmd.String("artist"); artistID != "" {
		albums, err := repo.ListByArtist(artistID)
		if err != nil {
			return fmt.Errorf("failed to list albums: %w", err)
		}
		return r.writeJSON(albums, true)
	}

	if q := cmd.String("search"); q != "" {
		albums, err := repo.SearchByTitle(q)
		if err != nil {
			return fmt.Errorf("failed to search albums: %w", err)
		}
		return r.writeJSON(albums, true)
	}

	albums, err := repo.List(cmd.Int("limit"), cmd.Int("offset"))
	if err != nil {
		return fmt.Errorf("failed to list albums: %w", err)
	}

	if len(albums) == 0 {
		return r.writePlainln("no albums stored; run 'tidalbridge sync' first")
	}

	return r.writeJSON(albums, true)
}

func artistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "artists",
		Usage: "Inspect stored artists",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List stored artists",
				Flags: append(libraryFlags(),
					&cli.StringFlag{
						Name:    "search",
						Aliases: []string{"s"},
						Usage:   "Filter by name fragment",
					},
				),
				Action: r.ListArtists,
			},
		},
	}
}

func albumsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "albums",
		Usage: "Inspect stored albums",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List stored albums",
				Flags: append(libraryFlags(),
					&cli.StringFlag{
						Name:    "search",
						Aliases: []string{"s"},
						Usage:   "Filter by title fragment",
					},
					&cli.StringFlag{
						Name:    "artist",
						Aliases: []string{"a"},
						Usage:   "List albums owned by the given artist ID",
					},
				),
				Action: r.ListAlbums,
			},
		},
	}
}

func libraryFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:  "limit",
			Usage: "Maximum number of rows",
		},
		&cli.IntFlag{
			Name:  "offset",
			Usage: "Number of rows to skip",
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
			Value:   "config.toml",
		},
	}
}
