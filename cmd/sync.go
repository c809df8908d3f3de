package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/arcova/tidalbridge/internal/repositories"
	"github.com/arcova/tidalbridge/internal/server"
	"github.com/arcova/tidalbridge/internal/shared"
	"github.com/arcova/tidalbridge/internal/tasks"
)

// RunSync performs one reconciliation run from the command line.
func (r *Runner) RunSync(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	if err := r.config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	query := cmd.String("query")
	trackLimit := cmd.Int("limit")
	if trackLimit < 0 {
		return fmt.Errorf("%w: limit must not be negative", shared.ErrInvalidInput)
	}
	if trackLimit > server.MaxTrackLimit {
		return fmt.Errorf("%w: limit must not exceed %d", shared.ErrInvalidInput, server.MaxTrackLimit)
	}

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	artists := repositories.NewArtistRepository(db)
	albums := repositories.NewAlbumRepository(db)
	engine := tasks.NewEngine(r.buildCatalog(), artists, albums, r.config.Sync, r.logger)

	result, err := engine.SyncArtistsAndAlbums(ctx, query, trackLimit)
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	return r.writeJSON(result, true)
}

func syncCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Run one catalog sync pass",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "query",
				Aliases: []string{"q"},
				Usage:   "Track search query (defaults to configured query)",
			},
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"l"},
				Usage:   "Track limit for the search (defaults to configured limit)",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.RunSync,
	}
}
