package service

import (
	"context"

	"github.com/pong-stats-service/internal/domain"
)

// ListRanked returns the full leaderboard, ranks computed from the current
// score rows at query time.
func (s *StatsService) ListRanked(ctx context.Context) ([]domain.RankedEntry, error) {
	return s.store.ListRanked(ctx)
}

// GetRanked returns one player's ranked entry. The argument may be a player
// id or a username; usernames are resolved through the identity directory.
func (s *StatsService) GetRanked(ctx context.Context, idOrUsername string) (*domain.RankedEntry, error) {
	if idOrUsername == "" {
		return nil, domain.NewValidationError("player id or username is required")
	}

	entry, err := s.store.GetRanked(ctx, idOrUsername)
	if err == nil {
		return entry, nil
	}
	if !domain.IsNotFoundError(err) || s.directory == nil {
		return nil, err
	}

	user, derr := s.directory.ResolveUser(ctx, idOrUsername)
	if derr != nil {
		return nil, err
	}
	return s.store.GetRanked(ctx, user.ID)
}
