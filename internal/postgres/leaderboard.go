package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/pong-stats-service/internal/domain"
)

// rankedCTE ranks every score row. ROW_NUMBER with the player id as the
// secondary key makes the order a deterministic dense 1..N sequence, ties
// included.
const rankedCTE = `
	WITH ranked AS (
		SELECT
			s.player_id,
			s.player_name,
			s.elo_score,
			ROW_NUMBER() OVER (ORDER BY s.elo_score DESC, s.player_id ASC) AS rank,
			COALESCE(m.games_played, 0) AS games_played,
			COALESCE(m.games_won, 0) AS games_won,
			COALESCE(m.games_lost, 0) AS games_lost
		FROM scores s
		LEFT JOIN (
			SELECT
				player_id,
				COUNT(*) AS games_played,
				COUNT(*) FILTER (WHERE result = 'win') AS games_won,
				COUNT(*) FILTER (WHERE result = 'loss') AS games_lost
			FROM match_history
			GROUP BY player_id
		) m ON m.player_id = s.player_id
	)
`

// ListRanked derives the full leaderboard from the current score rows. The
// rank is recomputed per query; there is no cached ranking state.
func (r *Repository) ListRanked(ctx context.Context) ([]domain.RankedEntry, error) {
	query := rankedCTE + `
		SELECT player_id, player_name, elo_score, rank, games_played, games_won, games_lost
		FROM ranked
		ORDER BY rank
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing ranked players: %w", err)
	}
	defer rows.Close()

	var entries []domain.RankedEntry
	for rows.Next() {
		var entry domain.RankedEntry
		err := rows.Scan(
			&entry.PlayerID,
			&entry.PlayerName,
			&entry.EloScore,
			&entry.Rank,
			&entry.GamesPlayed,
			&entry.GamesWon,
			&entry.GamesLost,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning ranked entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// GetRanked returns one player's ranked row. A player without a score row is
// not found.
func (r *Repository) GetRanked(ctx context.Context, playerID string) (*domain.RankedEntry, error) {
	query := rankedCTE + `
		SELECT player_id, player_name, elo_score, rank, games_played, games_won, games_lost
		FROM ranked
		WHERE player_id = $1
	`
	var entry domain.RankedEntry
	err := r.pool.QueryRow(ctx, query, playerID).Scan(
		&entry.PlayerID,
		&entry.PlayerName,
		&entry.EloScore,
		&entry.Rank,
		&entry.GamesPlayed,
		&entry.GamesWon,
		&entry.GamesLost,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPlayerNotFound
		}
		return nil, fmt.Errorf("getting ranked player: %w", err)
	}
	return &entry, nil
}
