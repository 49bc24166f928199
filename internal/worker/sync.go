package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/pong-stats-service/internal/config"
	"github.com/pong-stats-service/internal/postgres"
	"github.com/pong-stats-service/internal/redis"
)

// SyncWorker periodically rebuilds the Redis rating mirror from the score
// rows in PostgreSQL. The mirror only feeds realtime broadcasts, so a rebuild
// repairs any drift from missed writes or a Redis restart.
type SyncWorker struct {
	cache    *redis.Cache
	postgres *postgres.Repository
	config   *config.SyncConfig
	logger   *slog.Logger
	stopCh   chan struct{}
	doneCh   chan struct{}
	mu       sync.Mutex
	running  bool
}

// NewSyncWorker creates a new sync worker
func NewSyncWorker(
	cache *redis.Cache,
	pg *postgres.Repository,
	cfg *config.SyncConfig,
	logger *slog.Logger,
) *SyncWorker {
	return &SyncWorker{
		cache:    cache,
		postgres: pg,
		config:   cfg,
		logger:   logger,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background rebuild process
func (w *SyncWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	w.logger.Info("sync worker started", "interval", w.config.Interval)

	go w.run(ctx)
	return nil
}

// Stop stops the background rebuild process
func (w *SyncWorker) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()

	w.logger.Info("sync worker stopped")
	return nil
}

// run is the main worker loop
func (w *SyncWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			if err := w.RebuildMirror(ctx); err != nil {
				w.logger.Error("mirror rebuild failed", "error", err)
			}
		}
	}
}

// RebuildMirror replaces the rating mirror with the current score rows. Also
// used at startup so broadcasts are correct from the first connection.
func (w *SyncWorker) RebuildMirror(ctx context.Context) error {
	startTime := time.Now()

	ratings, err := w.postgres.GetAllRatings(ctx)
	if err != nil {
		return err
	}

	if err := w.cache.ReplaceAllRatings(ctx, ratings); err != nil {
		return err
	}

	w.logger.Info("mirror rebuild completed",
		"duration", time.Since(startTime),
		"player_count", len(ratings),
	)
	return nil
}

// IsRunning returns whether the worker is currently running
func (w *SyncWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// RunOnce runs a single rebuild cycle (useful for manual triggers)
func (w *SyncWorker) RunOnce(ctx context.Context) {
	if err := w.RebuildMirror(ctx); err != nil {
		w.logger.Error("mirror rebuild failed", "error", err)
	}
}
