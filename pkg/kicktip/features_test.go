package kicktip

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

// fakeStatsSource serves canned per-team data for resolver tests
type fakeStatsSource struct {
	recent map[string][]RecentMatch
	season map[string]*SeasonStats
}

func (f *fakeStatsSource) RecentMatches(ctx context.Context, teamID string, limit int) ([]RecentMatch, error) {
	if matches, ok := f.recent[teamID]; ok {
		return matches, nil
	}
	return nil, ErrNoData
}

func (f *fakeStatsSource) SeasonStats(ctx context.Context, teamID string, leagueID int, season string) (*SeasonStats, error) {
	if stats, ok := f.season[teamID]; ok {
		return stats, nil
	}
	return nil, ErrNoData
}

func newResolver(source StatsSource) *FeatureResolver {
	return NewFeatureResolver(source, DefaultEngineConfig())
}

func TestResolveFromRecentMatches(t *testing.T) {
	source := &fakeStatsSource{
		recent: map[string][]RecentMatch{
			"10": {
				{Outcome: OutcomeWin, GoalsFor: 3, YellowCards: 2, Corners: 6},
				{Outcome: OutcomeDraw, GoalsFor: 1, YellowCards: 1, Corners: 4},
				{Outcome: OutcomeLoss, GoalsFor: 0, YellowCards: 3, Corners: 2},
			},
		},
	}

	f := newResolver(source).Resolve(context.Background(), "10", 39)

	assert.Equal(t, TierRecentMatches, f.GoalsTier)
	assert.InDelta(t, 4.0/3.0, f.GoalsForAvg, 1e-9)
	assert.Equal(t, TierRecentMatches, f.CardsTier)
	assert.InDelta(t, 2.0, f.YellowCardsAvg, 1e-9)
	assert.Equal(t, "WDL", f.Form)
	assert.Equal(t, TierRecentMatches, f.FormTier)
	assert.True(t, f.Resolvable())
}

func TestResolveFallsBackToSeasonAggregate(t *testing.T) {
	source := &fakeStatsSource{
		season: map[string]*SeasonStats{
			"10": {GoalsForAvg: 1.8, YellowCardsAvg: 2.1, CornersAvg: 5.5, Form: "WWDWL"},
		},
	}

	f := newResolver(source).Resolve(context.Background(), "10", 39)

	assert.Equal(t, TierSeasonAggregate, f.GoalsTier)
	assert.Equal(t, 1.8, f.GoalsForAvg)
	assert.Equal(t, "WWDWL", f.Form)
	assert.Equal(t, TierSeasonAggregate, f.FormTier)
	assert.True(t, f.Resolvable())
}

func TestResolveFallsBackToLeagueDefaults(t *testing.T) {
	source := &fakeStatsSource{}

	f := newResolver(source).Resolve(context.Background(), "10", 39)

	profile, ok := LeagueDefaults(39)
	assert.True(t, ok)
	assert.Equal(t, TierLeagueDefault, f.CardsTier)
	assert.Equal(t, profile.YellowCardsAvg, f.YellowCardsAvg)
	assert.Equal(t, TierLeagueDefault, f.CornersTier)
	assert.Equal(t, profile.CornersAvg, f.CornersAvg)

	// Leagues carry no form or goal rate, so both drop to hard defaults
	assert.Equal(t, TierHardDefault, f.FormTier)
	assert.Empty(t, f.Form)
	assert.Equal(t, TierHardDefault, f.GoalsTier)
	assert.True(t, f.Resolvable())
}

func TestResolveHardDefaultsForUnknownLeague(t *testing.T) {
	source := &fakeStatsSource{}
	config := DefaultEngineConfig()

	f := NewFeatureResolver(source, config).Resolve(context.Background(), "10", 9999)

	assert.Equal(t, TierHardDefault, f.GoalsTier)
	assert.Equal(t, config.DefaultGoalsForAvg, f.GoalsForAvg)
	assert.Equal(t, config.DefaultYellowCardsAvg, f.YellowCardsAvg)
	assert.Equal(t, config.DefaultCornersAvg, f.CornersAvg)
	assert.False(t, f.Resolvable())
	assert.Equal(t, TierHardDefault, f.BestTier())
}

func TestResolveFieldsFallIndependently(t *testing.T) {
	// Recent matches report goals but never corners
	source := &fakeStatsSource{
		recent: map[string][]RecentMatch{
			"10": {
				{Outcome: OutcomeWin, GoalsFor: 2, YellowCards: 1, Corners: -1},
				{Outcome: OutcomeWin, GoalsFor: 1, YellowCards: 2, Corners: -1},
			},
		},
		season: map[string]*SeasonStats{
			"10": {GoalsForAvg: -1, YellowCardsAvg: -1, CornersAvg: 4.7},
		},
	}

	f := newResolver(source).Resolve(context.Background(), "10", 39)

	assert.Equal(t, TierRecentMatches, f.GoalsTier)
	assert.Equal(t, TierSeasonAggregate, f.CornersTier)
	assert.Equal(t, 4.7, f.CornersAvg)
}

func TestResolveIsIdempotent(t *testing.T) {
	source := &fakeStatsSource{
		recent: map[string][]RecentMatch{
			"10": {{Outcome: OutcomeWin, GoalsFor: 2, YellowCards: 1, Corners: 5}},
		},
	}
	resolver := newResolver(source)

	first := resolver.Resolve(context.Background(), "10", 39)
	second := resolver.Resolve(context.Background(), "10", 39)

	assert.Equal(t, first, second)
}

func TestResolveRespectsMatchLimit(t *testing.T) {
	config := DefaultEngineConfig()
	config.RecentMatchLimit = 2
	config.FormWindow = 2

	source := &fakeStatsSource{
		recent: map[string][]RecentMatch{
			"10": {
				{Outcome: OutcomeWin, GoalsFor: 4, YellowCards: 0, Corners: 8},
				{Outcome: OutcomeWin, GoalsFor: 2, YellowCards: 0, Corners: 8},
				{Outcome: OutcomeLoss, GoalsFor: 0, YellowCards: 5, Corners: 0},
			},
		},
	}

	f := NewFeatureResolver(source, config).Resolve(context.Background(), "10", 39)

	assert.Equal(t, "WW", f.Form)
	assert.InDelta(t, 3.0, f.GoalsForAvg, 1e-9)
}

func TestFormScore(t *testing.T) {
	config := DefaultEngineConfig()

	cases := []struct {
		form  string
		score float64
	}{
		{"", 1.5}, // neutral when no history
		{"WWWWW", 3.0},
		{"LLLLL", 0.0},
		{"DDDDD", 1.0},
		{"WWDLL", 7.0 / 5.0},
	}

	for _, tc := range cases {
		assert.InDelta(t, tc.score, FormScore(tc.form, config), 1e-9, "form %q", tc.form)
	}
}
