package kicktip

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnknownTeamReadsInitialRating(t *testing.T) {
	store := NewMemoryRatingStore(DefaultEngineConfig())
	assert.Equal(t, 1500.0, store.Rating("never-seen"))
}

func TestSetAndGetRating(t *testing.T) {
	store := NewMemoryRatingStore(DefaultEngineConfig())
	store.Set("100", "Arsenal", 1650.0)
	assert.Equal(t, 1650.0, store.Rating("100"))
	assert.Equal(t, 1, store.TrackedTeams())
}

func TestAverageRating(t *testing.T) {
	store := NewMemoryRatingStore(DefaultEngineConfig())
	assert.Equal(t, 1500.0, store.AverageRating(), "empty store reads as the initial rating")

	store.Set("1", "", 1600.0)
	store.Set("2", "", 1400.0)
	assert.InDelta(t, 1500.0, store.AverageRating(), 1e-9)
}

func TestUpdateRatingsEqualSidesWin(t *testing.T) {
	config := DefaultEngineConfig()

	// Between equals a win is worth exactly half the K factor
	home, away := UpdateRatings(1500, 1500, 2, 0, config)
	assert.Equal(t, 1516.0, home)
	assert.Equal(t, 1484.0, away)
}

func TestUpdateRatingsEqualSidesDraw(t *testing.T) {
	config := DefaultEngineConfig()

	home, away := UpdateRatings(1500, 1500, 1, 1, config)
	assert.Equal(t, 1500.0, home)
	assert.Equal(t, 1500.0, away)
}

func TestUpdateRatingsZeroSum(t *testing.T) {
	config := DefaultEngineConfig()

	cases := []struct {
		home, away           float64
		homeGoals, awayGoals int
	}{
		{1500, 1500, 3, 1},
		{1700, 1400, 0, 2},
		{1300, 1800, 1, 0},
		{1550, 1450, 2, 2},
	}

	for _, tc := range cases {
		newHome, newAway := UpdateRatings(tc.home, tc.away, tc.homeGoals, tc.awayGoals, config)
		assert.InDelta(t, tc.home+tc.away, newHome+newAway, 1e-9,
			"rating mass must be conserved")
	}
}

func TestUpdateRatingsUnderdogWinPaysMore(t *testing.T) {
	config := DefaultEngineConfig()

	evenGain, _ := UpdateRatings(1500, 1500, 1, 0, config)
	underdogGain, _ := UpdateRatings(1300, 1800, 1, 0, config)

	assert.Greater(t, underdogGain-1300, evenGain-1500)
}

func TestUpdateRatingsClampsDelta(t *testing.T) {
	config := DefaultEngineConfig()
	config.MaxRatingChange = 10.0

	home, away := UpdateRatings(1200, 2000, 4, 0, config)
	assert.Equal(t, 1210.0, home)
	assert.Equal(t, 1990.0, away)
}

func TestApplyResultMovesBothSides(t *testing.T) {
	store := NewMemoryRatingStore(DefaultEngineConfig())

	store.ApplyResult("home", "away", 2, 1)

	assert.Greater(t, store.Rating("home"), 1500.0)
	assert.Less(t, store.Rating("away"), 1500.0)
	assert.Equal(t, 2, store.TrackedTeams())
}
