package kicktip

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/svetlin-marinov/kicktip/internal/logger"
	"github.com/svetlin-marinov/kicktip/internal/metrics"
)

// Resolution tiers, best first. Each feature field records the tier
// that supplied its value.
const (
	TierRecentMatches   = "recent"
	TierSeasonAggregate = "season"
	TierLeagueDefault   = "league"
	TierHardDefault     = "default"
)

// StatsSource supplies upstream statistics for a single team.
// Implementations return ErrNoData when the upstream has nothing,
// which the resolver treats as a fallback trigger rather than a failure.
type StatsSource interface {
	RecentMatches(ctx context.Context, teamID string, limit int) ([]RecentMatch, error)
	SeasonStats(ctx context.Context, teamID string, leagueID int, season string) (*SeasonStats, error)
}

// TeamFeatureSet is the resolved statistical input for one side of a fixture
type TeamFeatureSet struct {
	TeamID         string  `json:"teamId"`
	GoalsForAvg    float64 `json:"goalsForAvg"`
	YellowCardsAvg float64 `json:"yellowCardsAvg"`
	CornersAvg     float64 `json:"cornersAvg"`
	Form           string  `json:"form"`

	// Per-field provenance
	GoalsTier   string `json:"goalsTier"`
	CardsTier   string `json:"cardsTier"`
	CornersTier string `json:"cornersTier"`
	FormTier    string `json:"formTier"`
}

// Resolvable reports whether any field resolved above the hard-default
// tier. When neither side of a fixture is resolvable, the model trusts
// market odds alone instead of blending.
func (f *TeamFeatureSet) Resolvable() bool {
	return f.GoalsTier != TierHardDefault || f.CardsTier != TierHardDefault ||
		f.CornersTier != TierHardDefault || f.FormTier != TierHardDefault
}

// BestTier returns the best tier any field resolved at, for provenance
// reporting on the prediction record
func (f *TeamFeatureSet) BestTier() string {
	for _, tier := range []string{TierRecentMatches, TierSeasonAggregate, TierLeagueDefault} {
		if f.GoalsTier == tier || f.CardsTier == tier || f.CornersTier == tier || f.FormTier == tier {
			return tier
		}
	}
	return TierHardDefault
}

// FeatureResolver turns upstream statistics into model-ready features,
// degrading tier by tier so that resolution itself never fails
type FeatureResolver struct {
	source StatsSource
	config *EngineConfig
}

// NewFeatureResolver creates a resolver backed by the given source
func NewFeatureResolver(source StatsSource, config *EngineConfig) *FeatureResolver {
	return &FeatureResolver{source: source, config: config}
}

// Resolve produces the features for one team. Each field falls back
// independently: a team with recent matches but no reported corners
// still gets its goals from tier one and corners from a lower tier.
func (r *FeatureResolver) Resolve(ctx context.Context, teamID string, leagueID int) *TeamFeatureSet {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.config.UpstreamTimeoutSeconds)*time.Second)
	defer cancel()

	f := &TeamFeatureSet{TeamID: teamID}

	recent := r.fetchRecent(ctx, teamID)
	season := r.fetchSeason(ctx, teamID, leagueID)
	league, hasLeague := LeagueDefaults(leagueID)

	// Goals scored per match. League profiles carry only discipline and
	// corner baselines, so goals skip the league tier entirely.
	if avg, ok := recentAverage(recent, func(m RecentMatch) float64 { return float64(m.GoalsFor) }); ok {
		f.GoalsForAvg, f.GoalsTier = avg, TierRecentMatches
	} else if season != nil && season.GoalsForAvg >= 0 {
		f.GoalsForAvg, f.GoalsTier = season.GoalsForAvg, TierSeasonAggregate
	} else {
		f.GoalsForAvg, f.GoalsTier = r.config.DefaultGoalsForAvg, TierHardDefault
	}

	// Yellow cards per match
	if avg, ok := recentAverage(recent, func(m RecentMatch) float64 { return float64(m.YellowCards) }); ok {
		f.YellowCardsAvg, f.CardsTier = avg, TierRecentMatches
	} else if season != nil && season.YellowCardsAvg >= 0 {
		f.YellowCardsAvg, f.CardsTier = season.YellowCardsAvg, TierSeasonAggregate
	} else if hasLeague {
		f.YellowCardsAvg, f.CardsTier = league.YellowCardsAvg, TierLeagueDefault
	} else {
		f.YellowCardsAvg, f.CardsTier = r.config.DefaultYellowCardsAvg, TierHardDefault
	}

	// Corners per match
	if avg, ok := recentAverage(recent, func(m RecentMatch) float64 { return float64(m.Corners) }); ok {
		f.CornersAvg, f.CornersTier = avg, TierRecentMatches
	} else if season != nil && season.CornersAvg >= 0 {
		f.CornersAvg, f.CornersTier = season.CornersAvg, TierSeasonAggregate
	} else if hasLeague {
		f.CornersAvg, f.CornersTier = league.CornersAvg, TierLeagueDefault
	} else {
		f.CornersAvg, f.CornersTier = r.config.DefaultCornersAvg, TierHardDefault
	}

	// Form string; leagues carry no form so tier three is skipped
	if form := formFromRecent(recent, r.config.FormWindow); form != "" {
		f.Form, f.FormTier = form, TierRecentMatches
	} else if season != nil && validForm(season.Form) {
		f.Form, f.FormTier = truncateForm(season.Form, r.config.FormWindow), TierSeasonAggregate
	} else {
		f.Form, f.FormTier = "", TierHardDefault
	}

	metrics.RecordFeatureResolution(f.GoalsTier)
	metrics.RecordFeatureResolution(f.CardsTier)
	metrics.RecordFeatureResolution(f.CornersTier)
	metrics.RecordFeatureResolution(f.FormTier)

	return f
}

func (r *FeatureResolver) fetchRecent(ctx context.Context, teamID string) []RecentMatch {
	matches, err := r.source.RecentMatches(ctx, teamID, r.config.RecentMatchLimit)
	if err != nil {
		if !errors.Is(err, ErrNoData) {
			logger.Warn("Recent matches unavailable", teamID, err)
		}
		return nil
	}
	if len(matches) > r.config.RecentMatchLimit {
		matches = matches[:r.config.RecentMatchLimit]
	}
	return matches
}

func (r *FeatureResolver) fetchSeason(ctx context.Context, teamID string, leagueID int) *SeasonStats {
	stats, err := r.source.SeasonStats(ctx, teamID, leagueID, r.config.Season)
	if err != nil {
		if !errors.Is(err, ErrNoData) {
			logger.Warn("Season statistics unavailable", teamID, err)
		}
		return nil
	}
	return stats
}

// recentAverage averages a field over recent matches, ignoring matches
// where the field is negative (not reported). ok is false when no match
// reported the field.
func recentAverage(matches []RecentMatch, extract func(RecentMatch) float64) (float64, bool) {
	var sum float64
	var n int
	for _, m := range matches {
		v := extract(m)
		if v < 0 {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// formFromRecent builds a form string, most recent match first
func formFromRecent(matches []RecentMatch, window int) string {
	var sb strings.Builder
	for i, m := range matches {
		if i >= window {
			break
		}
		switch m.Outcome {
		case OutcomeWin, OutcomeDraw, OutcomeLoss:
			sb.WriteByte(byte(m.Outcome))
		}
	}
	return sb.String()
}

// validForm reports whether a form string contains only known symbols
func validForm(form string) bool {
	if form == "" {
		return false
	}
	for i := 0; i < len(form); i++ {
		switch Outcome(form[i]) {
		case OutcomeWin, OutcomeDraw, OutcomeLoss:
		default:
			return false
		}
	}
	return true
}

func truncateForm(form string, window int) string {
	if len(form) > window {
		return form[:window]
	}
	return form
}

// FormScore converts a form string into the mean points per match.
// An empty form reads as the neutral score so that missing history
// never pushes the model either way.
func FormScore(form string, config *EngineConfig) float64 {
	if form == "" {
		return config.NeutralFormScore
	}
	var points float64
	var n int
	for i := 0; i < len(form); i++ {
		switch Outcome(form[i]) {
		case OutcomeWin:
			points += config.FormWinPoints
		case OutcomeDraw:
			points += config.FormDrawPoints
		case OutcomeLoss:
			points += config.FormLossPoints
		default:
			continue
		}
		n++
	}
	if n == 0 {
		return config.NeutralFormScore
	}
	return points / float64(n)
}
