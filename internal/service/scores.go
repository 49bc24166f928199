package service

import (
	"context"
	"fmt"

	"github.com/pong-stats-service/internal/domain"
)

// CreateScore inserts a player's first score row. An existing row is a
// conflict; callers must use ReplaceScore to change a rating.
func (s *StatsService) CreateScore(ctx context.Context, req domain.CreateScoreRequest) (*domain.Score, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	score, err := s.store.CreateScore(ctx, req.PlayerID, req.PlayerName, *req.EloScore)
	if err != nil {
		return nil, err
	}

	s.mirrorRating(ctx, score.PlayerID, score.EloScore)
	s.broadcastLeaderboard(ctx)
	return score, nil
}

// ReplaceScore creates or fully overwrites a player's score row.
func (s *StatsService) ReplaceScore(ctx context.Context, playerID string, req domain.ReplaceScoreRequest) (*domain.Score, error) {
	if playerID == "" {
		return nil, domain.NewValidationError("player_id is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	score, err := s.store.ReplaceScore(ctx, playerID, *req.EloScore, req.PlayerName)
	if err != nil {
		return nil, fmt.Errorf("replacing score: %w", err)
	}

	s.mirrorRating(ctx, score.PlayerID, score.EloScore)
	s.broadcastLeaderboard(ctx)
	return score, nil
}

// GetScore returns one player's score row.
func (s *StatsService) GetScore(ctx context.Context, playerID string) (*domain.Score, error) {
	return s.store.GetScore(ctx, playerID)
}

// ListScores returns every score row.
func (s *StatsService) ListScores(ctx context.Context) ([]domain.Score, error) {
	return s.store.ListScores(ctx)
}

// RatingHistory returns a player's Elo history, newest first.
func (s *StatsService) RatingHistory(ctx context.Context, playerID string) ([]domain.RatingEvent, error) {
	return s.store.ListRatingHistory(ctx, playerID)
}
