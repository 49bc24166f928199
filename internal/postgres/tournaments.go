package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/pong-stats-service/internal/domain"
)

// RecordTournamentMatch appends one bracket row and returns it with the
// generated id and timestamp.
func (r *Repository) RecordTournamentMatch(ctx context.Context, match domain.TournamentMatch) (*domain.TournamentMatch, error) {
	query := `
		INSERT INTO tournament_history (
			tournament_id, stage_number, match_number, player_name, opponent_name, result, played_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, played_at
	`
	stored := match
	err := r.pool.QueryRow(ctx, query,
		match.TournamentID,
		match.StageNumber,
		match.MatchNumber,
		match.PlayerName,
		match.OpponentName,
		string(match.Result),
		match.PlayedAt,
	).Scan(&stored.ID, &stored.PlayedAt)
	if err != nil {
		return nil, fmt.Errorf("inserting tournament match: %w", err)
	}
	return &stored, nil
}

// RecordTournamentMatchesBulk appends all rows in one transaction; a failure
// partway leaves zero rows inserted.
func (r *Repository) RecordTournamentMatchesBulk(ctx context.Context, matches []domain.TournamentMatch) (int, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO tournament_history (
			tournament_id, stage_number, match_number, player_name, opponent_name, result, played_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	for i, match := range matches {
		_, err := tx.Exec(ctx, query,
			match.TournamentID,
			match.StageNumber,
			match.MatchNumber,
			match.PlayerName,
			match.OpponentName,
			string(match.Result),
			match.PlayedAt,
		)
		if err != nil {
			return 0, fmt.Errorf("inserting tournament match %d: %w", i, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("committing tournament batch: %w", err)
	}
	return len(matches), nil
}

const tournamentColumns = `
	id, tournament_id, stage_number, match_number, player_name, opponent_name, result, played_at
`

func scanTournamentMatches(rows pgx.Rows) ([]domain.TournamentMatch, error) {
	defer rows.Close()

	var matches []domain.TournamentMatch
	for rows.Next() {
		var match domain.TournamentMatch
		err := rows.Scan(
			&match.ID,
			&match.TournamentID,
			&match.StageNumber,
			&match.MatchNumber,
			&match.PlayerName,
			&match.OpponentName,
			&match.Result,
			&match.PlayedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning tournament match: %w", err)
		}
		matches = append(matches, match)
	}
	return matches, rows.Err()
}

// ListTournamentMatches retrieves every bracket row
func (r *Repository) ListTournamentMatches(ctx context.Context) ([]domain.TournamentMatch, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournament_history ORDER BY tournament_id, stage_number, match_number`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing tournament matches: %w", err)
	}
	return scanTournamentMatches(rows)
}

// ListTournamentMatchesByID retrieves the rows for one tournament. An unknown
// tournament yields an empty slice, not an error.
func (r *Repository) ListTournamentMatchesByID(ctx context.Context, tournamentID string) ([]domain.TournamentMatch, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournament_history WHERE tournament_id = $1 ORDER BY stage_number, match_number`
	rows, err := r.pool.Query(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("listing tournament matches by id: %w", err)
	}
	return scanTournamentMatches(rows)
}
