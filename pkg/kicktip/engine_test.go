package kicktip

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFixtureSource serves a canned fixture list and counts fetches
type fakeFixtureSource struct {
	fixtures map[string][]Fixture
	fetches  int
}

func (f *fakeFixtureSource) FixturesForDate(ctx context.Context, date string) ([]Fixture, error) {
	f.fetches++
	fixtures, ok := f.fixtures[date]
	if !ok || len(fixtures) == 0 {
		return nil, ErrNoFixtures
	}
	return fixtures, nil
}

func newTestEngine(t *testing.T, fixtures *fakeFixtureSource) *Engine {
	t.Helper()
	config := cacheTestConfig(t)
	config.TimeZone = "UTC"

	engine, err := NewEngine(config, fixtures, newCountingStatsSource(), NewMemoryRatingStore(config))
	require.NoError(t, err)
	engine.now = func() time.Time {
		return time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	}
	return engine
}

func dayFixtures() *fakeFixtureSource {
	return &fakeFixtureSource{fixtures: map[string][]Fixture{
		"2026-08-30": {
			batchFixture("1", "10", "11", 39, kickoffAt(15)),
			batchFixture("2", "12", "13", 140, kickoffAt(17)),
		},
	}}
}

func TestEngineEvaluatesFreshThenServesFromCache(t *testing.T) {
	source := dayFixtures()
	engine := newTestEngine(t, source)

	first, err := engine.EvaluateToday(context.Background())
	require.NoError(t, err)
	assert.Equal(t, CacheTierFresh, first.Provenance)
	assert.False(t, first.Cached())
	assert.Len(t, first.Batch.Records, 2)
	assert.Equal(t, 1, source.fetches)

	second, err := engine.EvaluateToday(context.Background())
	require.NoError(t, err)
	assert.Equal(t, CacheTierMemory, second.Provenance)
	assert.True(t, second.Cached())
	assert.Equal(t, 1, source.fetches, "a cache hit must not touch the upstream")
	assert.Equal(t, first.Batch.Records[0].FixtureID, second.Batch.Records[0].FixtureID)
}

func TestEngineNoFixturesDay(t *testing.T) {
	engine := newTestEngine(t, &fakeFixtureSource{})

	_, err := engine.EvaluateToday(context.Background())
	assert.ErrorIs(t, err, ErrNoFixtures)
}

func TestEngineRefreshBypassesCache(t *testing.T) {
	source := dayFixtures()
	engine := newTestEngine(t, source)

	_, err := engine.EvaluateToday(context.Background())
	require.NoError(t, err)

	result, err := engine.Refresh(context.Background(), engine.Today())
	require.NoError(t, err)
	assert.Equal(t, CacheTierFresh, result.Provenance)
	assert.Equal(t, 2, source.fetches)
}

func TestEngineInvalidateForcesFreshEvaluation(t *testing.T) {
	source := dayFixtures()
	engine := newTestEngine(t, source)

	_, err := engine.EvaluateToday(context.Background())
	require.NoError(t, err)

	engine.InvalidateCache(engine.Today())

	result, err := engine.EvaluateToday(context.Background())
	require.NoError(t, err)
	assert.Equal(t, CacheTierFresh, result.Provenance)
}

func TestEngineTodayUsesConfiguredZone(t *testing.T) {
	engine := newTestEngine(t, dayFixtures())
	assert.Equal(t, "2026-08-30", engine.Today())
}

func TestEngineStats(t *testing.T) {
	engine := newTestEngine(t, dayFixtures())

	_, err := engine.EvaluateToday(context.Background())
	require.NoError(t, err)

	stats := engine.Stats()
	assert.Equal(t, "2026-08-30", stats.Date)
	assert.True(t, stats.Cache[CacheTierMemory].Present)
	assert.Equal(t, 30, stats.CacheTTL)
}

func TestEngineApplyResultMovesRatings(t *testing.T) {
	config := cacheTestConfig(t)
	config.TimeZone = "UTC"
	ratings := NewMemoryRatingStore(config)

	engine, err := NewEngine(config, dayFixtures(), newCountingStatsSource(), ratings)
	require.NoError(t, err)

	engine.ApplyResult("10", "11", 3, 0)
	assert.Greater(t, ratings.Rating("10"), ratings.Rating("11"))
}
