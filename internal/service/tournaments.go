package service

import (
	"context"
	"fmt"
	"time"

	"github.com/pong-stats-service/internal/domain"
)

// RecordTournamentMatch validates and appends one bracket row, echoing the
// stored row back.
func (s *StatsService) RecordTournamentMatch(ctx context.Context, sub domain.TournamentMatchSubmission) (*domain.TournamentMatch, error) {
	if err := sub.Validate(); err != nil {
		return nil, err
	}
	return s.store.RecordTournamentMatch(ctx, sub.ToMatch(time.Now()))
}

// RecordTournamentMatchesBulk validates every submission up front and
// appends the batch atomically.
func (s *StatsService) RecordTournamentMatchesBulk(ctx context.Context, batch domain.BatchTournamentSubmission) (*domain.BulkInsertResult, error) {
	if len(batch.Matches) == 0 {
		return nil, domain.NewValidationError("matches (array) required")
	}

	now := time.Now()
	matches := make([]domain.TournamentMatch, 0, len(batch.Matches))
	for i, sub := range batch.Matches {
		if err := sub.Validate(); err != nil {
			return nil, fmt.Errorf("%w (entry %d)", err, i)
		}
		matches = append(matches, sub.ToMatch(now))
	}

	inserted, err := s.store.RecordTournamentMatchesBulk(ctx, matches)
	if err != nil {
		return nil, err
	}
	return &domain.BulkInsertResult{Inserted: inserted}, nil
}

// ListTournamentMatches returns the full tournament ledger.
func (s *StatsService) ListTournamentMatches(ctx context.Context) ([]domain.TournamentMatch, error) {
	return s.store.ListTournamentMatches(ctx)
}

// ListTournamentMatchesByID returns one tournament's bracket rows; an
// unknown tournament yields an empty list.
func (s *StatsService) ListTournamentMatchesByID(ctx context.Context, tournamentID string) ([]domain.TournamentMatch, error) {
	return s.store.ListTournamentMatchesByID(ctx, tournamentID)
}
