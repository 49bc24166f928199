package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int {
	return &v
}

func validSubmission() MatchSubmission {
	return MatchSubmission{
		OpponentID:    "opp-1",
		OpponentName:  "Opponent",
		PlayerScore:   intPtr(10),
		OpponentScore: intPtr(7),
		Duration:      "00:05:30",
		Result:        ResultWin,
	}
}

func TestMatchSubmission_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*MatchSubmission)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(s *MatchSubmission) {},
		},
		{
			name:    "missing player score",
			mutate:  func(s *MatchSubmission) { s.PlayerScore = nil },
			wantErr: "player_score and opponent_score are required",
		},
		{
			name:    "missing opponent score",
			mutate:  func(s *MatchSubmission) { s.OpponentScore = nil },
			wantErr: "player_score and opponent_score are required",
		},
		{
			name:    "negative score",
			mutate:  func(s *MatchSubmission) { s.PlayerScore = intPtr(-1) },
			wantErr: "scores must be non-negative",
		},
		{
			name:   "zero scores allowed",
			mutate: func(s *MatchSubmission) { s.PlayerScore = intPtr(0); s.OpponentScore = intPtr(0) },
		},
		{
			name:    "missing duration",
			mutate:  func(s *MatchSubmission) { s.Duration = "" },
			wantErr: "duration is required",
		},
		{
			name:    "malformed duration",
			mutate:  func(s *MatchSubmission) { s.Duration = "5:30" },
			wantErr: "duration must be formatted HH:MM:SS",
		},
		{
			name:    "duration with trailing text",
			mutate:  func(s *MatchSubmission) { s.Duration = "00:05:30x" },
			wantErr: "duration must be formatted HH:MM:SS",
		},
		{
			name:    "missing opponent id",
			mutate:  func(s *MatchSubmission) { s.OpponentID = "" },
			wantErr: "opponent_id is required",
		},
		{
			name:    "missing opponent name",
			mutate:  func(s *MatchSubmission) { s.OpponentName = "" },
			wantErr: "opponent_name is required",
		},
		{
			name:    "unknown result",
			mutate:  func(s *MatchSubmission) { s.Result = "victory" },
			wantErr: "result must be one of win, loss, draw",
		},
		{
			name:   "draw result allowed",
			mutate: func(s *MatchSubmission) { s.Result = ResultDraw },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := validSubmission()
			tt.mutate(&sub)

			err := sub.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, IsValidationError(err))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMatchSubmission_ToEntry_Defaults(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	caller := Principal{ID: "p-1", Username: "alice"}

	sub := validSubmission()
	entry := sub.ToEntry(caller, now)

	assert.Equal(t, "p-1", entry.PlayerID)
	assert.Equal(t, "alice", entry.PlayerUsername)
	assert.Equal(t, "alice", entry.PlayerName, "display name falls back to the caller's username")
	assert.Equal(t, now, entry.PlayedAt)
	assert.Equal(t, 10, entry.PlayerScore)
	assert.Equal(t, 7, entry.OpponentScore)
}

func TestMatchSubmission_ToEntry_ExplicitFields(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	playedAt := now.Add(-2 * time.Hour)
	caller := Principal{ID: "p-1", Username: "alice"}

	sub := validSubmission()
	sub.PlayerName = "Alice The Great"
	sub.PlayedAt = &playedAt

	entry := sub.ToEntry(caller, now)

	assert.Equal(t, "Alice The Great", entry.PlayerName)
	assert.Equal(t, playedAt, entry.PlayedAt)
}
