package service

import (
	"context"
	"log/slog"

	"github.com/pong-stats-service/internal/config"
	"github.com/pong-stats-service/internal/domain"
)

// StatsService provides the business logic for the stats and tournament
// ledger: rating store, match history, tournament history, rival graph and
// the derived leaderboard.
type StatsService struct {
	store     Store
	directory Directory
	mirror    RatingMirror
	hub       Broadcaster
	cfg       *config.LeaderboardConfig
	logger    *slog.Logger
}

// NewStatsService creates a new stats service. mirror may be nil when no
// Redis is available; broadcasts are then skipped.
func NewStatsService(
	store Store,
	directory Directory,
	mirror RatingMirror,
	cfg *config.LeaderboardConfig,
	logger *slog.Logger,
) *StatsService {
	return &StatsService{
		store:     store,
		directory: directory,
		mirror:    mirror,
		cfg:       cfg,
		logger:    logger,
	}
}

// SetHub attaches the WebSocket hub for realtime broadcasts.
func (s *StatsService) SetHub(hub Broadcaster) {
	s.hub = hub
}

// mirrorRating updates the realtime mirror; mirror failures are logged, not
// surfaced, because PostgreSQL is the store of record.
func (s *StatsService) mirrorRating(ctx context.Context, playerID string, elo int) {
	if s.mirror == nil {
		return
	}
	if err := s.mirror.SetRating(ctx, playerID, elo); err != nil {
		s.logger.Warn("failed to mirror rating", "player_id", playerID, "error", err)
	}
}

// broadcastLeaderboard pushes the current top slice to connected clients.
// The slice size follows the configured default read limit.
func (s *StatsService) broadcastLeaderboard(ctx context.Context) {
	if s.hub == nil || s.mirror == nil {
		return
	}
	limit := s.cfg.DefaultLimit
	if limit <= 0 {
		limit = 10
	}
	entries, err := s.mirror.TopRatings(ctx, limit)
	if err != nil {
		s.logger.Warn("failed to read rating mirror for broadcast", "error", err)
		return
	}
	total, err := s.mirror.RatingCount(ctx)
	if err != nil {
		total = int64(len(entries))
	}
	s.hub.BroadcastLeaderboardUpdate(entries, total)
}

func (s *StatsService) broadcastRatingChange(ctx context.Context, change *domain.RatingChange) {
	if change == nil {
		return
	}
	s.mirrorRating(ctx, change.PlayerID, change.NewRating)
	if change.OpponentID != "" {
		s.mirrorRating(ctx, change.OpponentID, change.OpponentNew)
	}
	if s.hub != nil {
		s.hub.BroadcastRatingUpdate(*change)
	}
	s.broadcastLeaderboard(ctx)
}
