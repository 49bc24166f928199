package domain

import "time"

// TournamentMatch is one row of the tournament bracket ledger. The triple
// (tournament_id, stage_number, match_number) addresses a bracket slot but is
// not unique across resubmission; the ledger is a flat append log and does
// not validate bracket shape.
type TournamentMatch struct {
	ID           int64       `json:"id"`
	TournamentID string      `json:"tournament_id"`
	StageNumber  int         `json:"stage_number"`
	MatchNumber  int         `json:"match_number"`
	PlayerName   string      `json:"player_name"`
	OpponentName string      `json:"opponent_name"`
	Result       MatchResult `json:"result"`
	PlayedAt     time.Time   `json:"played_at"`
}

// TournamentMatchSubmission is the payload for recording a bracket match.
type TournamentMatchSubmission struct {
	TournamentID string      `json:"tournament_id"`
	StageNumber  *int        `json:"stage_number"`
	MatchNumber  *int        `json:"match_number"`
	PlayerName   string      `json:"player_name"`
	OpponentName string      `json:"opponent_name"`
	Result       MatchResult `json:"result"`
}

// Validate checks the required bracket addressing and participant fields.
func (s *TournamentMatchSubmission) Validate() error {
	if s.TournamentID == "" {
		return NewValidationError("tournament_id is required")
	}
	if s.StageNumber == nil || *s.StageNumber < 1 {
		return NewValidationError("stage_number is required and must be >= 1")
	}
	if s.MatchNumber == nil || *s.MatchNumber < 1 {
		return NewValidationError("match_number is required and must be >= 1")
	}
	if s.PlayerName == "" || s.OpponentName == "" {
		return NewValidationError("player_name and opponent_name are required")
	}
	if !s.Result.IsValid() {
		return NewValidationError("result must be one of win, loss, draw")
	}
	return nil
}

// ToMatch builds the ledger row from a validated submission.
func (s *TournamentMatchSubmission) ToMatch(now time.Time) TournamentMatch {
	return TournamentMatch{
		TournamentID: s.TournamentID,
		StageNumber:  *s.StageNumber,
		MatchNumber:  *s.MatchNumber,
		PlayerName:   s.PlayerName,
		OpponentName: s.OpponentName,
		Result:       s.Result,
		PlayedAt:     now,
	}
}

// BatchTournamentSubmission wraps the bulk recording payload.
type BatchTournamentSubmission struct {
	Matches []TournamentMatchSubmission `json:"matches"`
}
