package domain

import "time"

// Principal is the already-verified caller identity attached to every
// authenticated request. The stats core never resolves tokens itself.
type Principal struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// User is a directory record owned by the identity gateway. The stats core
// only reads it for display enrichment.
type User struct {
	ID        string  `json:"id"`
	Username  string  `json:"username"`
	AvatarURL *string `json:"avatar_url"`
}

// Score is a player's Elo rating row. At most one row exists per player.
type Score struct {
	PlayerID   string    `json:"player_id"`
	PlayerName string    `json:"player_name"`
	EloScore   int       `json:"elo_score"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// RatingEvent is one point of a player's Elo history.
type RatingEvent struct {
	ID             int64     `json:"id"`
	PlayerID       string    `json:"player_id"`
	PlayerUsername string    `json:"player_username,omitempty"`
	EloScore       int       `json:"elo_score"`
	RecordedAt     time.Time `json:"recorded_at"`
}

// PlayerStats aggregates a player's match ledger.
type PlayerStats struct {
	PlayerID         string `json:"player_id"`
	GamesPlayed      int    `json:"games_played"`
	GamesWon         int    `json:"games_won"`
	GamesLost        int    `json:"games_lost"`
	GamesDrawn       int    `json:"games_drawn"`
	CurrentWinStreak int    `json:"current_win_streak"`
	LongestWinStreak int    `json:"longest_win_streak"`
}

// RankedEntry is one row of the derived leaderboard. Rank is dense, 1-based,
// ordered by elo_score descending with player_id as the stable tie-breaker.
type RankedEntry struct {
	Rank        int64  `json:"rank"`
	PlayerID    string `json:"player_id"`
	PlayerName  string `json:"player_name"`
	EloScore    int    `json:"elo_score"`
	GamesPlayed int    `json:"games_played"`
	GamesWon    int    `json:"games_won"`
	GamesLost   int    `json:"games_lost"`
}

// RatingChange reports the Elo movement applied by one recorded match.
type RatingChange struct {
	PlayerID    string `json:"player_id"`
	OldRating   int    `json:"old_rating"`
	NewRating   int    `json:"new_rating"`
	OpponentID  string `json:"opponent_id,omitempty"`
	OpponentOld int    `json:"opponent_old,omitempty"`
	OpponentNew int    `json:"opponent_new,omitempty"`
}

// CreateScoreRequest is the insert-once score payload.
type CreateScoreRequest struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
	EloScore   *int   `json:"elo_score"`
}

// Validate checks required fields for score creation.
func (r *CreateScoreRequest) Validate() error {
	if r.PlayerID == "" {
		return NewValidationError("player_id is required")
	}
	if r.PlayerName == "" {
		return NewValidationError("player_name is required")
	}
	if r.EloScore == nil {
		return NewValidationError("elo_score is required")
	}
	return nil
}

// ReplaceScoreRequest is the full-replace score payload. PlayerName is
// optional; a missing name keeps the stored one.
type ReplaceScoreRequest struct {
	PlayerName string `json:"player_name,omitempty"`
	EloScore   *int   `json:"elo_score"`
}

// Validate checks required fields for score replacement.
func (r *ReplaceScoreRequest) Validate() error {
	if r.EloScore == nil {
		return NewValidationError("elo_score is required")
	}
	return nil
}
