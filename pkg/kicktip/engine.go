package kicktip

import (
	"context"
	"fmt"
	"time"

	"github.com/svetlin-marinov/kicktip/internal/logger"
)

// Engine is the public face of the prediction pipeline. It owns the
// result cache and decides when a batch is served from cache and when
// it is evaluated fresh.
type Engine struct {
	config    *EngineConfig
	fixtures  FixtureSource
	evaluator *Evaluator
	cache     *ResultCache
	ratings   RatingStore
	location  *time.Location

	// now is swappable for tests
	now func() time.Time
}

// EvaluationResult is a batch plus where it came from
type EvaluationResult struct {
	Batch      *CacheEntry
	Provenance string // one of the cache tier names, or "fresh"
}

// Cached reports whether the batch was served from a cache tier rather
// than evaluated on this call
func (r *EvaluationResult) Cached() bool {
	return r.Provenance != CacheTierFresh
}

// NewEngine assembles the full pipeline
func NewEngine(config *EngineConfig, fixtures FixtureSource, stats StatsSource, ratings RatingStore) (*Engine, error) {
	location, err := time.LoadLocation(config.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid time zone %q: %w", config.TimeZone, err)
	}

	resolver := NewFeatureResolver(stats, config)
	model := NewProbabilityModel(config)
	classifier := NewClassifier(config)

	return &Engine{
		config:    config,
		fixtures:  fixtures,
		evaluator: NewEvaluator(resolver, model, classifier, ratings, config),
		cache:     NewResultCache(config),
		ratings:   ratings,
		location:  location,
		now:       time.Now,
	}, nil
}

// Today returns the current calendar day in the engine's time zone
func (e *Engine) Today() string {
	return e.now().In(e.location).Format("2006-01-02")
}

// EvaluateToday returns today's predictions, from cache when a valid
// batch exists and freshly evaluated otherwise
func (e *Engine) EvaluateToday(ctx context.Context) (*EvaluationResult, error) {
	return e.EvaluateDate(ctx, e.Today())
}

// EvaluateDate returns the predictions for the given day (YYYY-MM-DD)
func (e *Engine) EvaluateDate(ctx context.Context, date string) (*EvaluationResult, error) {
	now := e.now()

	if batch, tier, ok := e.cache.Get(date, now); ok {
		logger.Debug("Serving predictions from cache", date, tier)
		return &EvaluationResult{Batch: batch, Provenance: tier}, nil
	}

	logger.Info("Evaluating fresh batch", date)

	fixtures, err := e.fixtures.FixturesForDate(ctx, date)
	if err != nil {
		return nil, err
	}

	records, err := e.evaluator.EvaluateBatch(ctx, fixtures, date)
	if err != nil {
		return nil, err
	}

	batch := e.cache.Put(date, records, now)
	return &EvaluationResult{Batch: batch, Provenance: CacheTierFresh}, nil
}

// Refresh forces a fresh evaluation for the date, discarding any
// cached batch first
func (e *Engine) Refresh(ctx context.Context, date string) (*EvaluationResult, error) {
	e.cache.Invalidate(date)
	return e.EvaluateDate(ctx, date)
}

// InvalidateCache drops the batch for the given date from every tier
func (e *Engine) InvalidateCache(date string) {
	e.cache.Invalidate(date)
}

// CacheState reports the condition of each cache tier
func (e *Engine) CacheState() map[string]TierState {
	return e.cache.State(e.now())
}

// ApplyResult feeds a finished match back into the rating store
func (e *Engine) ApplyResult(homeID, awayID string, homeGoals, awayGoals int) {
	e.ratings.ApplyResult(homeID, awayID, homeGoals, awayGoals)
}

// EngineStats is a diagnostics snapshot
type EngineStats struct {
	Date          string               `json:"date"`
	TeamsRated    int                  `json:"teamsRated"`
	AverageRating float64              `json:"averageRating"`
	CacheTTL      int                  `json:"cacheTtlMinutes"`
	TimeZone      string               `json:"timeZone"`
	Cache         map[string]TierState `json:"cache"`
}

// Stats returns a snapshot of the engine's observable state
func (e *Engine) Stats() EngineStats {
	return EngineStats{
		Date:          e.Today(),
		TeamsRated:    e.ratings.TrackedTeams(),
		AverageRating: e.ratings.AverageRating(),
		CacheTTL:      e.config.CacheTTLMinutes,
		TimeZone:      e.config.TimeZone,
		Cache:         e.CacheState(),
	}
}
