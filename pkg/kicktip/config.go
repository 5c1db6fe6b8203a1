package kicktip

import "fmt"

// EngineConfig contains all configurable parameters that influence prediction outcomes
// This centralizes all magic numbers and constants for easy adjustment
type EngineConfig struct {
	// Paths and process settings
	AssetsPath   string `koanf:"assets_path"`   // base directory for engine assets
	SnapshotPath string `koanf:"snapshot_path"` // location of the on-disk batch snapshot
	DbPath       string `koanf:"db_path"`       // location of the sqlite database
	LogLevel     string `koanf:"log_level"`     // debug, info, warn, error

	// === RATING PARAMETERS ===

	InitialRating   float64 `koanf:"initial_rating"`    // rating assigned to unseen teams (default: 1500.0)
	KFactor         float64 `koanf:"k_factor"`          // Elo K-factor (default: 32.0)
	MaxRatingChange float64 `koanf:"max_rating_change"` // cap on a single rating adjustment (default: 50.0)

	// === BASE DISTRIBUTION PARAMETERS ===

	DrawBase  float64 `koanf:"draw_base"`  // draw mass at zero rating differential (default: 0.35)
	DrawFloor float64 `koanf:"draw_floor"` // minimum draw mass (default: 0.15)
	DrawSlope float64 `koanf:"draw_slope"` // rating-diff divisor in the draw curve (default: 1000.0)

	// === FORM PARAMETERS ===

	FormWindow        int     `koanf:"form_window"`         // results considered per team (default: 5)
	FormWinPoints     float64 `koanf:"form_win_points"`     // points for a win (default: 3.0)
	FormDrawPoints    float64 `koanf:"form_draw_points"`    // points for a draw (default: 1.0)
	FormLossPoints    float64 `koanf:"form_loss_points"`    // points for a loss (default: 0.0)
	NeutralFormScore  float64 `koanf:"neutral_form_score"`  // score assumed for empty form (default: 1.5)
	FormFactorDivisor float64 `koanf:"form_factor_divisor"` // divisor in the form shift (default: 6.0)
	FormFactorScale   float64 `koanf:"form_factor_scale"`   // scale in the form shift (default: 10.0)

	// === CLAMP BANDS (percentages) ===

	HomeMinPct float64 `koanf:"home_min_pct"` // default: 5.0
	HomeMaxPct float64 `koanf:"home_max_pct"` // default: 95.0
	DrawMinPct float64 `koanf:"draw_min_pct"` // default: 5.0
	DrawMaxPct float64 `koanf:"draw_max_pct"` // default: 50.0
	AwayMinPct float64 `koanf:"away_min_pct"` // default: 5.0
	AwayMaxPct float64 `koanf:"away_max_pct"` // default: 95.0

	// === ODDS BLENDING ===

	// Weight given to the statistics-derived distribution when market odds
	// are available; the odds-implied distribution gets the remainder
	StatsBlendWeight float64 `koanf:"stats_blend_weight"` // default: 0.7
	OddsBlendWeight  float64 `koanf:"odds_blend_weight"`  // recalculated as 1.0 - StatsBlendWeight

	// === SECONDARY MARKET BANDS (percentages) ===

	Over25MinPct    float64 `koanf:"over25_min_pct"`     // default: 20.0
	Over25MaxPct    float64 `koanf:"over25_max_pct"`     // default: 85.0
	BttsMinPct      float64 `koanf:"btts_min_pct"`       // default: 25.0
	BttsMaxPct      float64 `koanf:"btts_max_pct"`       // default: 80.0
	FirstHalfMinPct float64 `koanf:"first_half_min_pct"` // default: 30.0
	FirstHalfMaxPct float64 `koanf:"first_half_max_pct"` // default: 85.0
	PerturbationPct float64 `koanf:"perturbation_pct"`   // bound of the unmodeled-variance jitter (default: 3.0)

	// === HARD DEFAULT FEATURES ===

	// Used when no upstream data resolves at any other tier
	DefaultGoalsForAvg    float64 `koanf:"default_goals_for_avg"`    // default: 1.5
	DefaultYellowCardsAvg float64 `koanf:"default_yellow_cards_avg"` // default: 1.8
	DefaultCornersAvg     float64 `koanf:"default_corners_avg"`      // default: 4.2

	// === CLASSIFIER THRESHOLDS (percentages) ===

	VeryHighConfidenceGap float64 `koanf:"very_high_confidence_gap"` // default: 30.0
	HighConfidenceGap     float64 `koanf:"high_confidence_gap"`      // default: 20.0
	MediumConfidenceGap   float64 `koanf:"medium_confidence_gap"`    // default: 10.0

	HomeWinThreshold      float64 `koanf:"home_win_threshold"`      // outright home recommendation (default: 65.0)
	AwayWinThreshold      float64 `koanf:"away_win_threshold"`      // outright away recommendation (default: 60.0)
	DrawThreshold         float64 `koanf:"draw_threshold"`          // outright draw recommendation (default: 35.0)
	DoubleChanceThreshold float64 `koanf:"double_chance_threshold"` // combined double-chance threshold (default: 72.0)
	OverThreshold         float64 `koanf:"over_threshold"`          // over 2.5 recommendation (default: 65.0)
	UnderThreshold        float64 `koanf:"under_threshold"`         // under 2.5 recommendation (default: 35.0)
	BttsYesThreshold      float64 `koanf:"btts_yes_threshold"`      // both teams to score yes (default: 65.0)
	BttsNoThreshold       float64 `koanf:"btts_no_threshold"`       // both teams to score no (default: 35.0)
	MaxRecommendations    int     `koanf:"max_recommendations"`     // lines emitted per fixture (default: 3)

	// === RESULT CACHE ===

	CacheTTLMinutes int    `koanf:"cache_ttl_minutes"` // validity window of a batch (default: 30)
	TimeZone        string `koanf:"time_zone"`         // calendar-day boundary zone (default: "Europe/Sofia")

	// === UPSTREAM ACQUISITION ===

	UpstreamTimeoutSeconds int   `koanf:"upstream_timeout_seconds"` // per-call bound (default: 10)
	RecentMatchLimit       int   `koanf:"recent_match_limit"`       // recent-matches tier window (default: 5)
	PriorityLeagues        []int `koanf:"priority_leagues"`         // leagues sorted first on kickoff ties
	Season                 string `koanf:"season"`                  // current season label (default: "2025/2026")
}

// DefaultEngineConfig returns the default configuration with all standard values
func DefaultEngineConfig() *EngineConfig {
	assetsPath := ".kicktip/"
	config := &EngineConfig{

		AssetsPath:   assetsPath,
		SnapshotPath: assetsPath + "predictions.json",
		DbPath:       assetsPath + "kicktip.db",
		LogLevel:     "info",

		// === RATING PARAMETERS ===
		InitialRating:   1500.0,
		KFactor:         32.0,
		MaxRatingChange: 50.0,

		// === BASE DISTRIBUTION PARAMETERS ===
		DrawBase:  0.35,
		DrawFloor: 0.15,
		DrawSlope: 1000.0,

		// === FORM PARAMETERS ===
		FormWindow:        5,
		FormWinPoints:     3.0,
		FormDrawPoints:    1.0,
		FormLossPoints:    0.0,
		NeutralFormScore:  1.5,
		FormFactorDivisor: 6.0,
		FormFactorScale:   10.0,

		// === CLAMP BANDS ===
		HomeMinPct: 5.0,
		HomeMaxPct: 95.0,
		DrawMinPct: 5.0,
		DrawMaxPct: 50.0,
		AwayMinPct: 5.0,
		AwayMaxPct: 95.0,

		// === ODDS BLENDING ===
		StatsBlendWeight: 0.7,
		OddsBlendWeight:  0.3, // recalculated as 1.0 - StatsBlendWeight

		// === SECONDARY MARKET BANDS ===
		Over25MinPct:    20.0,
		Over25MaxPct:    85.0,
		BttsMinPct:      25.0,
		BttsMaxPct:      80.0,
		FirstHalfMinPct: 30.0,
		FirstHalfMaxPct: 85.0,
		PerturbationPct: 3.0,

		// === HARD DEFAULT FEATURES ===
		DefaultGoalsForAvg:    1.5,
		DefaultYellowCardsAvg: 1.8,
		DefaultCornersAvg:     4.2,

		// === CLASSIFIER THRESHOLDS ===
		VeryHighConfidenceGap: 30.0,
		HighConfidenceGap:     20.0,
		MediumConfidenceGap:   10.0,

		HomeWinThreshold:      65.0,
		AwayWinThreshold:      60.0,
		DrawThreshold:         35.0,
		DoubleChanceThreshold: 72.0,
		OverThreshold:         65.0,
		UnderThreshold:        35.0,
		BttsYesThreshold:      65.0,
		BttsNoThreshold:       35.0,
		MaxRecommendations:    3,

		// === RESULT CACHE ===
		CacheTTLMinutes: 30,
		TimeZone:        "Europe/Sofia",

		// === UPSTREAM ACQUISITION ===
		UpstreamTimeoutSeconds: 10,
		RecentMatchLimit:       5,
		PriorityLeagues:        []int{39, 140, 135, 78, 61},
		Season:                 "2025/2026",
	}

	// Ensure OddsBlendWeight is always calculated correctly
	config.OddsBlendWeight = 1.0 - config.StatsBlendWeight

	return config
}

// === CONFIGURATION VALIDATION ===

// ValidateConfig ensures all configuration values are within reasonable ranges
// A failure here is a ConfigurationError: fatal at startup, never retried
func ValidateConfig(config *EngineConfig) error {
	if config.StatsBlendWeight < 0.0 || config.StatsBlendWeight > 1.0 {
		return fmt.Errorf("StatsBlendWeight must be between 0.0 and 1.0, got: %f", config.StatsBlendWeight)
	}

	if config.KFactor <= 0 {
		return fmt.Errorf("KFactor must be positive, got: %f", config.KFactor)
	}

	if config.DrawFloor < 0 || config.DrawBase < config.DrawFloor {
		return fmt.Errorf("draw mass bounds invalid: base %f floor %f", config.DrawBase, config.DrawFloor)
	}

	if config.HomeMinPct < 0 || config.AwayMinPct < 0 || config.DrawMinPct < 0 {
		return fmt.Errorf("clamp band minimums must not be negative")
	}

	if config.HomeMaxPct <= config.HomeMinPct || config.AwayMaxPct <= config.AwayMinPct || config.DrawMaxPct <= config.DrawMinPct {
		return fmt.Errorf("clamp band maximums must exceed minimums")
	}

	if config.CacheTTLMinutes <= 0 {
		return fmt.Errorf("CacheTTLMinutes must be positive, got: %d", config.CacheTTLMinutes)
	}

	if config.FormWindow < 1 || config.FormWindow > 10 {
		return fmt.Errorf("FormWindow should be between 1 and 10, got: %d", config.FormWindow)
	}

	if config.RecentMatchLimit < 1 {
		return fmt.Errorf("RecentMatchLimit must be at least 1, got: %d", config.RecentMatchLimit)
	}

	if config.PerturbationPct < 0 || config.PerturbationPct > 10 {
		return fmt.Errorf("PerturbationPct should be between 0 and 10, got: %f", config.PerturbationPct)
	}

	return nil
}

// CacheTTLSeconds returns the cache validity window in seconds
func (c *EngineConfig) CacheTTLSeconds() int {
	return c.CacheTTLMinutes * 60
}

// IsPriorityLeague reports whether the given league sorts ahead on kickoff ties
func (c *EngineConfig) IsPriorityLeague(leagueID int) bool {
	for _, id := range c.PriorityLeagues {
		if id == leagueID {
			return true
		}
	}
	return false
}
