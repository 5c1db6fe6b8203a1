package kicktip

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cacheTestConfig(t *testing.T) *EngineConfig {
	t.Helper()
	dir := t.TempDir()

	config := DefaultEngineConfig()
	config.AssetsPath = dir
	config.SnapshotPath = filepath.Join(dir, "predictions.json")
	config.DbPath = filepath.Join(dir, "kicktip.db")

	require.NoError(t, InitDatabase(config.DbPath))
	t.Cleanup(func() { CloseDatabase() })

	return config
}

func sampleRecords(date string) []*PredictionRecord {
	return []*PredictionRecord{
		{
			FixtureID: "f1", BatchDate: date,
			Kickoff:  time.Date(2026, 8, 30, 15, 0, 0, 0, time.UTC),
			LeagueID: 39, HomeName: "Arsenal", AwayName: "Chelsea",
			HomeWinProbability: 45.0, DrawProbability: 30.0, AwayWinProbability: 25.0,
			Over2p5Goals: 55.0, BothTeamsScore: 50.0, FirstHalfGoal: 60.0,
			RecommendedBet: "1X", ConfidenceLabel: ConfidenceMedium,
		},
		{
			FixtureID: "f2", BatchDate: date,
			Kickoff:  time.Date(2026, 8, 30, 17, 30, 0, 0, time.UTC),
			LeagueID: 140, HomeName: "Sevilla", AwayName: "Betis",
			HomeWinProbability: 60.0, DrawProbability: 25.0, AwayWinProbability: 15.0,
			Over2p5Goals: 48.0, BothTeamsScore: 42.0, FirstHalfGoal: 52.0,
			RecommendedBet: "1", ConfidenceLabel: ConfidenceHigh,
		},
	}
}

func TestCacheMissWhenEmpty(t *testing.T) {
	cache := NewResultCache(cacheTestConfig(t))

	_, _, ok := cache.Get("2026-08-30", time.Now())
	assert.False(t, ok)
}

func TestCacheServesFromMemory(t *testing.T) {
	cache := NewResultCache(cacheTestConfig(t))
	now := time.Now()

	cache.Put("2026-08-30", sampleRecords("2026-08-30"), now)

	batch, tier, ok := cache.Get("2026-08-30", now.Add(time.Minute))
	require.True(t, ok)
	assert.Equal(t, CacheTierMemory, tier)
	assert.Len(t, batch.Records, 2)
}

func TestCacheHydratesFromDisk(t *testing.T) {
	config := cacheTestConfig(t)
	now := time.Now()

	NewResultCache(config).Put("2026-08-30", sampleRecords("2026-08-30"), now)

	// A fresh cache instance simulates a process restart
	restarted := NewResultCache(config)
	batch, tier, ok := restarted.Get("2026-08-30", now.Add(time.Minute))
	require.True(t, ok)
	assert.Equal(t, CacheTierDisk, tier)
	assert.Len(t, batch.Records, 2)

	// The hit re-populated the in-process tier
	_, tier, ok = restarted.Get("2026-08-30", now.Add(2*time.Minute))
	require.True(t, ok)
	assert.Equal(t, CacheTierMemory, tier)
}

func TestCacheHydratesFromStore(t *testing.T) {
	config := cacheTestConfig(t)
	now := time.Now()

	NewResultCache(config).Put("2026-08-30", sampleRecords("2026-08-30"), now)

	// Snapshot gone, process restarted: only the database remains
	require.NoError(t, os.Remove(config.SnapshotPath))

	restarted := NewResultCache(config)
	batch, tier, ok := restarted.Get("2026-08-30", now.Add(time.Minute))
	require.True(t, ok)
	assert.Equal(t, CacheTierStore, tier)
	require.Len(t, batch.Records, 2)
	assert.Equal(t, "f1", batch.Records[0].FixtureID)

	// The hit rebuilt the snapshot
	_, err := os.Stat(config.SnapshotPath)
	assert.NoError(t, err)
}

func TestCacheRejectsWrongDate(t *testing.T) {
	config := cacheTestConfig(t)
	now := time.Now()

	cache := NewResultCache(config)
	cache.Put("2026-08-29", sampleRecords("2026-08-29"), now)

	_, _, ok := cache.Get("2026-08-30", now)
	assert.False(t, ok, "yesterday's batch must not serve today's request")
}

func TestCacheExpiresAfterTTL(t *testing.T) {
	config := cacheTestConfig(t)
	config.CacheTTLMinutes = 30
	now := time.Now()

	cache := NewResultCache(config)
	cache.Put("2026-08-30", sampleRecords("2026-08-30"), now)

	_, tier, ok := cache.Get("2026-08-30", now.Add(29*time.Minute))
	require.True(t, ok)
	assert.Equal(t, CacheTierMemory, tier)

	_, _, ok = cache.Get("2026-08-30", now.Add(31*time.Minute))
	assert.False(t, ok, "every tier honours the TTL")
}

func TestCacheInvalidateClearsAllTiers(t *testing.T) {
	config := cacheTestConfig(t)
	now := time.Now()

	cache := NewResultCache(config)
	cache.Put("2026-08-30", sampleRecords("2026-08-30"), now)
	cache.Invalidate("2026-08-30")

	_, _, ok := cache.Get("2026-08-30", now)
	assert.False(t, ok)

	_, err := os.Stat(config.SnapshotPath)
	assert.True(t, os.IsNotExist(err))

	count, err := CountWhere(&PredictionRecord{}, "batch_date = ?", "2026-08-30")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestCacheSurvivesCorruptSnapshot(t *testing.T) {
	config := cacheTestConfig(t)
	now := time.Now()

	NewResultCache(config).Put("2026-08-30", sampleRecords("2026-08-30"), now)
	require.NoError(t, os.WriteFile(config.SnapshotPath, []byte("{not json"), 0644))

	// The corrupt snapshot reads as a miss and the store answers instead
	restarted := NewResultCache(config)
	_, tier, ok := restarted.Get("2026-08-30", now.Add(time.Minute))
	require.True(t, ok)
	assert.Equal(t, CacheTierStore, tier)
}

func TestCacheState(t *testing.T) {
	config := cacheTestConfig(t)
	now := time.Now()

	cache := NewResultCache(config)
	state := cache.State(now)
	assert.False(t, state[CacheTierMemory].Present)

	cache.Put("2026-08-30", sampleRecords("2026-08-30"), now)
	state = cache.State(now)

	assert.True(t, state[CacheTierMemory].Present)
	assert.True(t, state[CacheTierMemory].Valid)
	assert.Equal(t, 2, state[CacheTierMemory].Records)
	assert.True(t, state[CacheTierDisk].Present)
	assert.True(t, state[CacheTierDisk].Valid)
	assert.True(t, state[CacheTierStore].Present)
	assert.True(t, state[CacheTierStore].Valid)
	assert.Equal(t, "2026-08-30", state[CacheTierStore].Date)
}

func TestCacheStateReportsExpiredTiersAsInvalid(t *testing.T) {
	config := cacheTestConfig(t)
	config.CacheTTLMinutes = 30
	now := time.Now()

	cache := NewResultCache(config)
	cache.Put("2026-08-30", sampleRecords("2026-08-30"), now)

	state := cache.State(now.Add(31 * time.Minute))

	assert.True(t, state[CacheTierMemory].Present, "the batch is still held")
	assert.False(t, state[CacheTierMemory].Valid, "but past the TTL it is no longer valid")
	assert.False(t, state[CacheTierDisk].Valid)
	assert.False(t, state[CacheTierStore].Valid)
}
