package kicktip

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	config := DefaultEngineConfig()
	assert.NoError(t, ValidateConfig(config))
	assert.Equal(t, 1500.0, config.InitialRating)
	assert.Equal(t, 32.0, config.KFactor)
	assert.InDelta(t, 0.3, config.OddsBlendWeight, 1e-9)
}

func TestValidateConfigRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*EngineConfig)
	}{
		{"blend weight above one", func(c *EngineConfig) { c.StatsBlendWeight = 1.5 }},
		{"negative k factor", func(c *EngineConfig) { c.KFactor = -1 }},
		{"draw floor above base", func(c *EngineConfig) { c.DrawFloor = 0.5 }},
		{"inverted clamp band", func(c *EngineConfig) { c.HomeMaxPct = 1.0 }},
		{"zero ttl", func(c *EngineConfig) { c.CacheTTLMinutes = 0 }},
		{"huge form window", func(c *EngineConfig) { c.FormWindow = 50 }},
		{"negative perturbation", func(c *EngineConfig) { c.PerturbationPct = -1 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			config := DefaultEngineConfig()
			tc.mutate(config)
			assert.Error(t, ValidateConfig(config))
		})
	}
}

func TestLoadConfigEnvironmentOverride(t *testing.T) {
	t.Setenv("KICKTIP_K_FACTOR", "24")
	t.Setenv("KICKTIP_CACHE_TTL_MINUTES", "45")

	config, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 24.0, config.KFactor)
	assert.Equal(t, 45, config.CacheTTLMinutes)

	// Untouched values keep their defaults
	assert.Equal(t, 1500.0, config.InitialRating)
}

func TestLoadConfigDerivesOddsWeight(t *testing.T) {
	t.Setenv("KICKTIP_STATS_BLEND_WEIGHT", "0.6")

	config, err := LoadConfig()
	require.NoError(t, err)
	assert.InDelta(t, 0.4, config.OddsBlendWeight, 1e-9)
}

func TestLoadConfigRejectsInvalidEnvironment(t *testing.T) {
	t.Setenv("KICKTIP_K_FACTOR", "-5")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestIsPriorityLeague(t *testing.T) {
	config := DefaultEngineConfig()
	assert.True(t, config.IsPriorityLeague(39))
	assert.False(t, config.IsPriorityLeague(999))
}

func TestCacheTTLSeconds(t *testing.T) {
	config := DefaultEngineConfig()
	config.CacheTTLMinutes = 2
	assert.Equal(t, 120, config.CacheTTLSeconds())
}
