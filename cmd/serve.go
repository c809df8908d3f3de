package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/arcova/tidalbridge/internal/repositories"
	"github.com/arcova/tidalbridge/internal/server"
	"github.com/arcova/tidalbridge/internal/shared"
	"github.com/arcova/tidalbridge/internal/tasks"
)

// Serve runs the catalog API server with the sync scheduler alongside it.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	if err := r.config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
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

	catalog := r.buildCatalog()
	engine := tasks.NewEngine(catalog, artists, albums, r.config.Sync, r.logger)
	scheduler := tasks.NewScheduler(engine, r.config.Sync, r.logger)

	router := server.NewBasicRouter()
	router.Use(server.RecoveryMiddleware(r.logger), server.LoggingMiddleware(r.logger))
	router.Handler(server.NewArtistHandler(artists, albums, r.logger))
	router.Handler(server.NewAlbumHandler(albums, artists, r.logger))
	router.Handler(server.NewSearchHandler(artists, albums, r.logger))
	router.Handler(server.NewSyncHandler(engine, r.logger))

	srv := server.NewServer(r.config.Server, router, r.logger)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go scheduler.Start(ctx)

	return srv.ListenAndServe(ctx)
}

func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the catalog API server and sync scheduler",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Serve,
	}
}
