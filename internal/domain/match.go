package domain

import (
	"regexp"
	"time"
)

// MatchResult is the recorded outcome from the reporting player's side.
type MatchResult string

const (
	ResultWin  MatchResult = "win"
	ResultLoss MatchResult = "loss"
	ResultDraw MatchResult = "draw"
)

// IsValid reports whether the result is one of the accepted outcomes.
func (r MatchResult) IsValid() bool {
	return r == ResultWin || r == ResultLoss || r == ResultDraw
}

var durationPattern = regexp.MustCompile(`^\d{2}:\d{2}:\d{2}$`)

// MatchEntry is one immutable row of the match history ledger.
type MatchEntry struct {
	ID               int64       `json:"id"`
	PlayerID         string      `json:"player_id"`
	PlayerUsername   string      `json:"player_username,omitempty"`
	PlayerName       string      `json:"player_name"`
	OpponentID       string      `json:"opponent_id"`
	OpponentUsername string      `json:"opponent_username,omitempty"`
	OpponentName     string      `json:"opponent_name"`
	PlayerScore      int         `json:"player_score"`
	OpponentScore    int         `json:"opponent_score"`
	Duration         string      `json:"duration"`
	Result           MatchResult `json:"result"`
	IsGuestOpponent  bool        `json:"is_guest_opponent"`
	PlayedAt         time.Time   `json:"played_at"`
}

// MatchSubmission is the payload for recording a single match. Score fields
// are pointers so an absent field is distinguishable from zero.
type MatchSubmission struct {
	PlayerName       string      `json:"player_name"`
	OpponentID       string      `json:"opponent_id"`
	OpponentUsername string      `json:"opponent_username,omitempty"`
	OpponentName     string      `json:"opponent_name"`
	PlayerScore      *int        `json:"player_score"`
	OpponentScore    *int        `json:"opponent_score"`
	Duration         string      `json:"duration"`
	Result           MatchResult `json:"result"`
	IsGuestOpponent  bool        `json:"is_guest_opponent"`
	PlayedAt         *time.Time  `json:"played_at,omitempty"`
}

// Validate checks the submission against the ledger's required-field rules.
// Scores and result are independently supplied and trusted; no cross-check
// between them is performed.
func (s *MatchSubmission) Validate() error {
	if s.PlayerScore == nil || s.OpponentScore == nil {
		return NewValidationError("player_score and opponent_score are required")
	}
	if *s.PlayerScore < 0 || *s.OpponentScore < 0 {
		return NewValidationError("scores must be non-negative")
	}
	if s.Duration == "" {
		return NewValidationError("duration is required")
	}
	if !durationPattern.MatchString(s.Duration) {
		return NewValidationError("duration must be formatted HH:MM:SS")
	}
	if s.OpponentID == "" {
		return NewValidationError("opponent_id is required")
	}
	if s.OpponentName == "" {
		return NewValidationError("opponent_name is required")
	}
	if !s.Result.IsValid() {
		return NewValidationError("result must be one of win, loss, draw")
	}
	return nil
}

// ToEntry builds the ledger row for the submitting principal. PlayedAt
// defaults to ingestion time when the submission carries none.
func (s *MatchSubmission) ToEntry(caller Principal, now time.Time) MatchEntry {
	playedAt := now
	if s.PlayedAt != nil {
		playedAt = *s.PlayedAt
	}
	playerName := s.PlayerName
	if playerName == "" {
		playerName = caller.Username
	}
	return MatchEntry{
		PlayerID:         caller.ID,
		PlayerUsername:   caller.Username,
		PlayerName:       playerName,
		OpponentID:       s.OpponentID,
		OpponentUsername: s.OpponentUsername,
		OpponentName:     s.OpponentName,
		PlayerScore:      *s.PlayerScore,
		OpponentScore:    *s.OpponentScore,
		Duration:         s.Duration,
		Result:           s.Result,
		IsGuestOpponent:  s.IsGuestOpponent,
		PlayedAt:         playedAt,
	}
}

// BatchMatchSubmission wraps the bulk recording payload.
type BatchMatchSubmission struct {
	Matches []MatchSubmission `json:"matches"`
}

// MatchAck is the acknowledgment returned after a successful single insert.
type MatchAck struct {
	PlayerName   string      `json:"player_name"`
	OpponentName string      `json:"opponent_name"`
	Result       MatchResult `json:"result"`
	Message      string      `json:"message"`
}

// BulkInsertResult reports how many rows a bulk insert persisted.
type BulkInsertResult struct {
	Inserted int `json:"inserted"`
}
