package tasks

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/arcova/tidalbridge/internal/shared"
)

// Scheduler drives automatic reconciliation runs: an optional run at
// startup and a recurring interval trigger. Run failures are logged and
// swallowed; an automatic trigger never takes the process down.
type Scheduler struct {
	engine *Engine
	cfg    shared.SyncConfig
	logger *log.Logger
}

// NewScheduler creates a Scheduler around the given engine.
func NewScheduler(engine *Engine, cfg shared.SyncConfig, logger *log.Logger) *Scheduler {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Scheduler{engine: engine, cfg: cfg, logger: logger}
}

// Start runs the configured triggers until ctx is cancelled. It blocks, so
// callers run it on its own goroutine alongside the HTTP server.
func (s *Scheduler) Start(ctx context.Context) {
	if s.cfg.OnStartup {
		// Let the HTTP server come up before the first run.
		select {
		case <-ctx.Done():
			return
		case <-time.After(2 * time.Second):
		}
		s.logger.Info("running startup sync")
		s.runOnce(ctx)
	}

	if !s.cfg.Scheduled {
		s.logger.Info("scheduled sync disabled")
		return
	}

	interval := time.Duration(s.cfg.IntervalMinutes) * time.Minute
	if interval <= 0 {
		interval = 24 * time.Hour
	}

	s.logger.Info("scheduled sync enabled", "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopping", "reason", ctx.Err())
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

// runOnce executes one run with the configured defaults, containing any
// failure so the next tick still fires.
func (s *Scheduler) runOnce(ctx context.Context) {
	result, err := s.engine.SyncArtistsAndAlbums(ctx, "", 0)
	if err != nil {
		s.logger.Error("scheduled sync run failed", "error", err)
		return
	}
	s.logger.Info("scheduled sync run complete",
		"artists", result.ArtistsFound,
		"created", result.ArtistsCreated+result.AlbumsCreated,
		"updated", result.ArtistsUpdated+result.AlbumsUpdated,
		"skipped", result.ArtistsSkipped+result.AlbumsSkipped,
	)
}
