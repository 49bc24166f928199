package service

import (
	"context"
	"fmt"
	"time"

	"github.com/pong-stats-service/internal/domain"
)

// RecordMatch validates and appends one match for the calling player. For
// non-guest opponents the opponent id must reference a directory user and
// both ratings are adjusted.
func (s *StatsService) RecordMatch(ctx context.Context, caller domain.Principal, sub domain.MatchSubmission) (*domain.MatchAck, error) {
	if err := sub.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkOpponent(ctx, sub); err != nil {
		return nil, err
	}

	entry := sub.ToEntry(caller, time.Now())
	change, err := s.store.RecordMatch(ctx, entry)
	if err != nil {
		return nil, err
	}

	s.broadcastRatingChange(ctx, change)

	return &domain.MatchAck{
		PlayerName:   entry.PlayerName,
		OpponentName: entry.OpponentName,
		Result:       entry.Result,
		Message:      "Match added to history successfully",
	}, nil
}

// RecordMatchesBulk validates every submission up front and appends the
// batch as one atomic unit; one bad entry fails the whole batch before any
// row is written.
func (s *StatsService) RecordMatchesBulk(ctx context.Context, caller domain.Principal, batch domain.BatchMatchSubmission) (*domain.BulkInsertResult, error) {
	if len(batch.Matches) == 0 {
		return nil, domain.NewValidationError("matches (array) required")
	}

	now := time.Now()
	entries := make([]domain.MatchEntry, 0, len(batch.Matches))
	for i, sub := range batch.Matches {
		if err := sub.Validate(); err != nil {
			return nil, fmt.Errorf("%w (entry %d)", err, i)
		}
		if err := s.checkOpponent(ctx, sub); err != nil {
			return nil, err
		}
		entries = append(entries, sub.ToEntry(caller, now))
	}

	inserted, err := s.store.RecordMatchesBulk(ctx, entries)
	if err != nil {
		return nil, err
	}

	s.broadcastLeaderboard(ctx)
	return &domain.BulkInsertResult{Inserted: inserted}, nil
}

// checkOpponent enforces the referential check against the identity
// directory, which the guest flag suppresses. Directory outages are
// tolerated so match recording does not depend on gateway uptime.
func (s *StatsService) checkOpponent(ctx context.Context, sub domain.MatchSubmission) error {
	if sub.IsGuestOpponent || s.directory == nil {
		return nil
	}
	_, err := s.directory.ResolveUser(ctx, sub.OpponentID)
	if err == nil {
		return nil
	}
	if domain.IsNotFoundError(err) {
		return domain.NewValidationError("opponent_id does not reference a registered user")
	}
	s.logger.Warn("directory check skipped", "opponent_id", sub.OpponentID, "error", err)
	return nil
}

// ListMatches returns the full match ledger.
func (s *StatsService) ListMatches(ctx context.Context) ([]domain.MatchEntry, error) {
	return s.store.ListMatches(ctx)
}

// ListMatchesByPlayer returns the rows recorded by one player id.
func (s *StatsService) ListMatchesByPlayer(ctx context.Context, playerID string) ([]domain.MatchEntry, error) {
	return s.store.ListMatchesByPlayer(ctx, playerID)
}

// ListMatchesByUsername returns the rows recorded under one username.
func (s *StatsService) ListMatchesByUsername(ctx context.Context, username string) ([]domain.MatchEntry, error) {
	return s.store.ListMatchesByUsername(ctx, username)
}

// PlayerStats aggregates one player's ledger.
func (s *StatsService) PlayerStats(ctx context.Context, playerID string) (*domain.PlayerStats, error) {
	return s.store.PlayerStats(ctx, playerID)
}
