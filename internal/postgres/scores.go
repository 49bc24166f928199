package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pong-stats-service/internal/domain"
)

// CreateScore inserts a new score row. A row already existing for the player
// is a conflict, never an implicit upsert.
func (r *Repository) CreateScore(ctx context.Context, playerID, playerName string, eloScore int) (*domain.Score, error) {
	query := `
		INSERT INTO scores (player_id, player_name, elo_score, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		RETURNING player_id, player_name, elo_score, created_at, updated_at
	`
	var score domain.Score
	err := r.pool.QueryRow(ctx, query, playerID, playerName, eloScore, time.Now()).Scan(
		&score.PlayerID,
		&score.PlayerName,
		&score.EloScore,
		&score.CreatedAt,
		&score.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrScoreExists
		}
		return nil, fmt.Errorf("creating score: %w", err)
	}
	return &score, nil
}

// ReplaceScore creates or fully overwrites the score row for a player. A
// missing prior row is not an error. An empty playerName keeps the stored
// name, falling back to the player id for a fresh row.
func (r *Repository) ReplaceScore(ctx context.Context, playerID string, eloScore int, playerName string) (*domain.Score, error) {
	query := `
		INSERT INTO scores (player_id, player_name, elo_score, created_at, updated_at)
		VALUES ($1, COALESCE(NULLIF($2, ''), $1), $3, $4, $4)
		ON CONFLICT (player_id)
		DO UPDATE SET
			elo_score = $3,
			player_name = COALESCE(NULLIF($2, ''), scores.player_name),
			updated_at = $4
		RETURNING player_id, player_name, elo_score, created_at, updated_at
	`
	var score domain.Score
	err := r.pool.QueryRow(ctx, query, playerID, playerName, eloScore, time.Now()).Scan(
		&score.PlayerID,
		&score.PlayerName,
		&score.EloScore,
		&score.CreatedAt,
		&score.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("replacing score: %w", err)
	}
	return &score, nil
}

// GetScore retrieves a player's score row
func (r *Repository) GetScore(ctx context.Context, playerID string) (*domain.Score, error) {
	query := `
		SELECT player_id, player_name, elo_score, created_at, updated_at
		FROM scores
		WHERE player_id = $1
	`
	var score domain.Score
	err := r.pool.QueryRow(ctx, query, playerID).Scan(
		&score.PlayerID,
		&score.PlayerName,
		&score.EloScore,
		&score.CreatedAt,
		&score.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPlayerNotFound
		}
		return nil, fmt.Errorf("getting score: %w", err)
	}
	return &score, nil
}

// ListScores retrieves all score rows
func (r *Repository) ListScores(ctx context.Context) ([]domain.Score, error) {
	query := `
		SELECT player_id, player_name, elo_score, created_at, updated_at
		FROM scores
		ORDER BY player_id
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing scores: %w", err)
	}
	defer rows.Close()

	var scores []domain.Score
	for rows.Next() {
		var score domain.Score
		err := rows.Scan(
			&score.PlayerID,
			&score.PlayerName,
			&score.EloScore,
			&score.CreatedAt,
			&score.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning score: %w", err)
		}
		scores = append(scores, score)
	}
	return scores, nil
}

// GetAllRatings returns every player's current rating, for mirror rebuilds.
func (r *Repository) GetAllRatings(ctx context.Context) (map[string]int64, error) {
	query := `SELECT player_id, elo_score FROM scores`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("getting all ratings: %w", err)
	}
	defer rows.Close()

	ratings := make(map[string]int64)
	for rows.Next() {
		var playerID string
		var elo int64
		if err := rows.Scan(&playerID, &elo); err != nil {
			return nil, fmt.Errorf("scanning rating: %w", err)
		}
		ratings[playerID] = elo
	}
	return ratings, nil
}

// ListRatingHistory retrieves a player's rating history, newest first
func (r *Repository) ListRatingHistory(ctx context.Context, playerID string) ([]domain.RatingEvent, error) {
	query := `
		SELECT id, player_id, COALESCE(player_username, ''), elo_score, recorded_at
		FROM rating_history
		WHERE player_id = $1
		ORDER BY recorded_at DESC
	`
	rows, err := r.pool.Query(ctx, query, playerID)
	if err != nil {
		return nil, fmt.Errorf("listing rating history: %w", err)
	}
	defer rows.Close()

	var events []domain.RatingEvent
	for rows.Next() {
		var event domain.RatingEvent
		err := rows.Scan(
			&event.ID,
			&event.PlayerID,
			&event.PlayerUsername,
			&event.EloScore,
			&event.RecordedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning rating event: %w", err)
		}
		events = append(events, event)
	}
	return events, nil
}
