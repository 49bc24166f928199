package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutcomeValue(t *testing.T) {
	assert.Equal(t, 1.0, OutcomeValue(ResultWin))
	assert.Equal(t, 0.0, OutcomeValue(ResultLoss))
	assert.Equal(t, 0.5, OutcomeValue(ResultDraw))
}

func TestAdjustRatings_EvenMatch(t *testing.T) {
	player, opponent := AdjustRatings(1000, 1000, 1)
	assert.Equal(t, 1015, player)
	assert.Equal(t, 985, opponent)
}

func TestAdjustRatings_DrawBetweenEquals(t *testing.T) {
	player, opponent := AdjustRatings(1000, 1000, 0.5)
	assert.Equal(t, 1000, player)
	assert.Equal(t, 1000, opponent)
}

func TestAdjustRatings_UnderdogWin(t *testing.T) {
	player, opponent := AdjustRatings(1000, 1200, 1)
	assert.Equal(t, 1023, player)
	assert.Equal(t, 1177, opponent)

	// The underdog gains more than an even-match winner would
	evenWinner, _ := AdjustRatings(1000, 1000, 1)
	assert.Greater(t, player-1000, evenWinner-1000)
}

func TestAdjustRatings_FavoriteLoss(t *testing.T) {
	player, opponent := AdjustRatings(1200, 1000, 0)
	assert.Equal(t, 1177, player)
	assert.Equal(t, 1023, opponent)
}

func TestAdjustRatings_BoundedByKFactor(t *testing.T) {
	player, opponent := AdjustRatings(400, 2400, 1)
	assert.LessOrEqual(t, player-400, EloKFactor)
	assert.LessOrEqual(t, 2400-opponent, EloKFactor)
	assert.Greater(t, player, 400)
	assert.Less(t, opponent, 2400)
}
