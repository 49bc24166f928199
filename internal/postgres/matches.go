package postgres

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pong-stats-service/internal/domain"
)

// RecordMatch appends one match row and, for non-guest opponents, applies the
// Elo adjustment to both players' ratings inside the same transaction. The
// returned change is nil for guest matches.
func (r *Repository) RecordMatch(ctx context.Context, entry domain.MatchEntry) (*domain.RatingChange, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	change, err := r.recordMatchTx(ctx, tx, entry)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing match: %w", err)
	}
	return change, nil
}

// RecordMatchesBulk appends all entries as one atomic unit. A failure on any
// entry leaves zero rows inserted. Returns the number of rows persisted.
func (r *Repository) RecordMatchesBulk(ctx context.Context, entries []domain.MatchEntry) (int, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for i, entry := range entries {
		if _, err := r.recordMatchTx(ctx, tx, entry); err != nil {
			return 0, fmt.Errorf("recording match %d: %w", i, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("committing match batch: %w", err)
	}
	return len(entries), nil
}

func (r *Repository) recordMatchTx(ctx context.Context, tx pgx.Tx, entry domain.MatchEntry) (*domain.RatingChange, error) {
	insert := `
		INSERT INTO match_history (
			player_id, player_username, player_name,
			opponent_id, opponent_username, opponent_name,
			player_score, opponent_score, duration, result,
			is_guest_opponent, played_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := tx.Exec(ctx, insert,
		entry.PlayerID,
		entry.PlayerUsername,
		entry.PlayerName,
		entry.OpponentID,
		entry.OpponentUsername,
		entry.OpponentName,
		entry.PlayerScore,
		entry.OpponentScore,
		entry.Duration,
		string(entry.Result),
		entry.IsGuestOpponent,
		entry.PlayedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting match: %w", err)
	}

	// Guest opponents have no rating row to adjust.
	if entry.IsGuestOpponent {
		return nil, nil
	}

	return r.adjustRatingsTx(ctx, tx, entry)
}

// adjustRatingsTx locks both players' score rows, applies the Elo formula and
// upserts the new ratings plus history rows. Missing rows start at the
// default rating.
func (r *Repository) adjustRatingsTx(ctx context.Context, tx pgx.Tx, entry domain.MatchEntry) (*domain.RatingChange, error) {
	lock := `SELECT player_id, elo_score FROM scores WHERE player_id = ANY($1) FOR UPDATE`
	rows, err := tx.Query(ctx, lock, []string{entry.PlayerID, entry.OpponentID})
	if err != nil {
		return nil, fmt.Errorf("locking score rows: %w", err)
	}

	ratings := map[string]int{
		entry.PlayerID:   domain.DefaultElo,
		entry.OpponentID: domain.DefaultElo,
	}
	for rows.Next() {
		var id string
		var elo int
		if err := rows.Scan(&id, &elo); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning locked score: %w", err)
		}
		ratings[id] = elo
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading locked scores: %w", err)
	}

	playerOld := ratings[entry.PlayerID]
	opponentOld := ratings[entry.OpponentID]
	playerNew, opponentNew := domain.AdjustRatings(playerOld, opponentOld, domain.OutcomeValue(entry.Result))

	updates := map[string]struct {
		name     string
		username string
		elo      int
	}{
		entry.PlayerID:   {entry.PlayerName, entry.PlayerUsername, playerNew},
		entry.OpponentID: {entry.OpponentName, entry.OpponentUsername, opponentNew},
	}

	// Upsert in a fixed id order so concurrent matches between the same pair
	// cannot deadlock.
	ids := []string{entry.PlayerID, entry.OpponentID}
	sort.Strings(ids)

	upsert := `
		INSERT INTO scores (player_id, player_name, elo_score, created_at, updated_at)
		VALUES ($1, COALESCE(NULLIF($2, ''), $1), $3, $4, $4)
		ON CONFLICT (player_id)
		DO UPDATE SET elo_score = $3, updated_at = $4
	`
	history := `
		INSERT INTO rating_history (player_id, player_username, elo_score, recorded_at)
		VALUES ($1, $2, $3, $4)
	`
	now := time.Now()
	for _, id := range ids {
		u := updates[id]
		if _, err := tx.Exec(ctx, upsert, id, u.name, u.elo, now); err != nil {
			return nil, fmt.Errorf("upserting rating: %w", err)
		}
		if _, err := tx.Exec(ctx, history, id, u.username, u.elo, entry.PlayedAt); err != nil {
			return nil, fmt.Errorf("inserting rating history: %w", err)
		}
	}

	return &domain.RatingChange{
		PlayerID:    entry.PlayerID,
		OldRating:   playerOld,
		NewRating:   playerNew,
		OpponentID:  entry.OpponentID,
		OpponentOld: opponentOld,
		OpponentNew: opponentNew,
	}, nil
}

const matchColumns = `
	id, player_id, COALESCE(player_username, ''), player_name,
	opponent_id, COALESCE(opponent_username, ''), opponent_name,
	player_score, opponent_score, duration, result, is_guest_opponent, played_at
`

func scanMatches(rows pgx.Rows) ([]domain.MatchEntry, error) {
	defer rows.Close()

	var entries []domain.MatchEntry
	for rows.Next() {
		var entry domain.MatchEntry
		err := rows.Scan(
			&entry.ID,
			&entry.PlayerID,
			&entry.PlayerUsername,
			&entry.PlayerName,
			&entry.OpponentID,
			&entry.OpponentUsername,
			&entry.OpponentName,
			&entry.PlayerScore,
			&entry.OpponentScore,
			&entry.Duration,
			&entry.Result,
			&entry.IsGuestOpponent,
			&entry.PlayedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning match: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// ListMatches retrieves every match history row
func (r *Repository) ListMatches(ctx context.Context) ([]domain.MatchEntry, error) {
	query := `SELECT ` + matchColumns + ` FROM match_history ORDER BY played_at DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing matches: %w", err)
	}
	return scanMatches(rows)
}

// ListMatchesByPlayer retrieves the rows whose player_id matches exactly
func (r *Repository) ListMatchesByPlayer(ctx context.Context, playerID string) ([]domain.MatchEntry, error) {
	query := `SELECT ` + matchColumns + ` FROM match_history WHERE player_id = $1 ORDER BY played_at DESC`
	rows, err := r.pool.Query(ctx, query, playerID)
	if err != nil {
		return nil, fmt.Errorf("listing matches by player: %w", err)
	}
	return scanMatches(rows)
}

// ListMatchesByUsername retrieves the rows whose player_username matches exactly
func (r *Repository) ListMatchesByUsername(ctx context.Context, username string) ([]domain.MatchEntry, error) {
	query := `SELECT ` + matchColumns + ` FROM match_history WHERE player_username = $1 ORDER BY played_at DESC`
	rows, err := r.pool.Query(ctx, query, username)
	if err != nil {
		return nil, fmt.Errorf("listing matches by username: %w", err)
	}
	return scanMatches(rows)
}

// PlayerStats derives a player's aggregate stats from the match ledger.
func (r *Repository) PlayerStats(ctx context.Context, playerID string) (*domain.PlayerStats, error) {
	query := `
		SELECT result FROM match_history
		WHERE player_id = $1
		ORDER BY played_at ASC, id ASC
	`
	rows, err := r.pool.Query(ctx, query, playerID)
	if err != nil {
		return nil, fmt.Errorf("querying player stats: %w", err)
	}
	defer rows.Close()

	stats := domain.PlayerStats{PlayerID: playerID}
	streak := 0
	for rows.Next() {
		var result domain.MatchResult
		if err := rows.Scan(&result); err != nil {
			return nil, fmt.Errorf("scanning result: %w", err)
		}
		stats.GamesPlayed++
		switch result {
		case domain.ResultWin:
			stats.GamesWon++
			streak++
			if streak > stats.LongestWinStreak {
				stats.LongestWinStreak = streak
			}
		case domain.ResultLoss:
			stats.GamesLost++
			streak = 0
		default:
			stats.GamesDrawn++
			streak = 0
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading player stats: %w", err)
	}
	stats.CurrentWinStreak = streak
	return &stats, nil
}
