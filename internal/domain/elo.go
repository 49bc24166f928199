package domain

import "math"

const (
	// DefaultElo is the rating assigned to a player with no score row.
	DefaultElo = 1000

	// EloKFactor bounds the maximum rating movement per match.
	EloKFactor = 30
)

// OutcomeValue maps a match result to the reporting player's Elo outcome.
func OutcomeValue(result MatchResult) float64 {
	switch result {
	case ResultWin:
		return 1
	case ResultLoss:
		return 0
	default:
		return 0.5
	}
}

// eloExpected is the expected outcome for a player rated `rating` against an
// opponent rated `opponent`.
func eloExpected(rating, opponent int) float64 {
	return 1 / (1 + math.Pow(10, float64(opponent-rating)/400))
}

// AdjustRatings applies one match outcome to both ratings and returns the
// new values. outcome is from the first player's perspective (1 win, 0 loss,
// 0.5 draw).
func AdjustRatings(player, opponent int, outcome float64) (int, int) {
	newPlayer := float64(player) + EloKFactor*(outcome-eloExpected(player, opponent))
	newOpponent := float64(opponent) + EloKFactor*((1-outcome)-eloExpected(opponent, player))
	return int(math.Round(newPlayer)), int(math.Round(newOpponent))
}
