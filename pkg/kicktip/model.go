package kicktip

import (
	"hash/fnv"
	"math"

	"github.com/svetlin-marinov/kicktip/internal/logger"
)

// ModelOutput is the raw numeric result of one fixture evaluation,
// before classification
type ModelOutput struct {
	Distribution        OutcomeDistribution
	OddsBlended         bool
	Over25              float64
	BothTeamsScore      float64
	FirstHalfGoal       float64
	ExpectedYellowCards float64
	ExpectedCorners     float64
}

// ProbabilityModel converts ratings, form and market odds into a
// three-way outcome distribution plus secondary market estimates
type ProbabilityModel struct {
	config *EngineConfig
}

// NewProbabilityModel creates a model bound to the given configuration
func NewProbabilityModel(config *EngineConfig) *ProbabilityModel {
	return &ProbabilityModel{config: config}
}

// Compute evaluates one fixture. The pipeline is
// base rating split, form adjustment, clamping, odds blending,
// then secondary markets. Every stage preserves the sum invariant.
func (m *ProbabilityModel) Compute(fixture *Fixture, home, away *TeamFeatureSet, homeRating, awayRating float64) (*ModelOutput, error) {
	dist := m.baseSplit(homeRating, awayRating)
	dist = m.applyForm(dist, home.Form, away.Form)
	dist = m.clamp(dist).normalized()

	blended := false
	if implied, ok := distributionFromOdds(fixture.Odds); ok {
		if home.Resolvable() || away.Resolvable() {
			dist = m.blend(dist, implied)
			blended = true
		} else {
			// No statistical signal at all; the market is the only
			// information we have, so use it unweighted
			logger.Debug("No resolvable features, trusting market odds", fixture.ID)
			dist = implied
		}
	}

	dist = dist.rounded()
	if err := dist.Validate(); err != nil {
		return nil, err
	}

	out := &ModelOutput{Distribution: dist, OddsBlended: blended}
	m.secondaryMarkets(out, fixture, home, away)
	return out, nil
}

// baseSplit derives the initial distribution from the rating gap alone
func (m *ProbabilityModel) baseSplit(homeRating, awayRating float64) OutcomeDistribution {
	diff := homeRating - awayRating

	homeShare := 1.0 / (1.0 + math.Pow(10, -diff/400.0))
	awayShare := 1.0 - homeShare

	// Draw mass shrinks as the sides grow apart
	draw := m.config.DrawBase - math.Abs(diff)/m.config.DrawSlope
	if draw < m.config.DrawFloor {
		draw = m.config.DrawFloor
	}

	total := 1.0 + draw
	return OutcomeDistribution{
		Home: homeShare / total * 100.0,
		Draw: draw / total * 100.0,
		Away: awayShare / total * 100.0,
	}
}

// applyForm shifts mass between home and away according to recent form.
// Draw mass is untouched; the shift is symmetric so the sum holds.
func (m *ProbabilityModel) applyForm(d OutcomeDistribution, homeForm, awayForm string) OutcomeDistribution {
	homeScore := FormScore(homeForm, m.config)
	awayScore := FormScore(awayForm, m.config)

	shift := (homeScore - awayScore) / m.config.FormFactorDivisor * m.config.FormFactorScale
	d.Home += shift
	d.Away -= shift
	return d
}

// clamp bounds each component to its configured band
func (m *ProbabilityModel) clamp(d OutcomeDistribution) OutcomeDistribution {
	d.Home = clampPct(d.Home, m.config.HomeMinPct, m.config.HomeMaxPct)
	d.Draw = clampPct(d.Draw, m.config.DrawMinPct, m.config.DrawMaxPct)
	d.Away = clampPct(d.Away, m.config.AwayMinPct, m.config.AwayMaxPct)
	return d
}

// blend mixes the statistical distribution with the odds-implied one
func (m *ProbabilityModel) blend(stats, implied OutcomeDistribution) OutcomeDistribution {
	w := m.config.StatsBlendWeight
	mixed := OutcomeDistribution{
		Home: stats.Home*w + implied.Home*(1.0-w),
		Draw: stats.Draw*w + implied.Draw*(1.0-w),
		Away: stats.Away*w + implied.Away*(1.0-w),
	}
	return mixed.normalized()
}

// secondaryMarkets estimates the goals-derived markets. Each estimate
// gets a small deterministic perturbation, seeded per fixture, standing
// in for variance the goals averages cannot capture.
func (m *ProbabilityModel) secondaryMarkets(out *ModelOutput, fixture *Fixture, home, away *TeamFeatureSet) {
	totalGoals := home.GoalsForAvg + away.GoalsForAvg
	lowSide := math.Min(home.GoalsForAvg, away.GoalsForAvg)

	over25 := totalGoals / 2.5 * 50.0
	btts := lowSide * 40.0
	firstHalf := totalGoals * 19.0

	jitter := perturbation(fixture.ID, m.config.PerturbationPct)

	out.Over25 = clampPct(over25+jitter, m.config.Over25MinPct, m.config.Over25MaxPct)
	out.BothTeamsScore = clampPct(btts+jitter, m.config.BttsMinPct, m.config.BttsMaxPct)
	out.FirstHalfGoal = clampPct(firstHalf+jitter, m.config.FirstHalfMinPct, m.config.FirstHalfMaxPct)

	out.Over25 = roundPct(out.Over25)
	out.BothTeamsScore = roundPct(out.BothTeamsScore)
	out.FirstHalfGoal = roundPct(out.FirstHalfGoal)

	// Per-team expectations, reported as the average of the two sides
	out.ExpectedYellowCards = roundPct((home.YellowCardsAvg + away.YellowCardsAvg) / 2.0)
	out.ExpectedCorners = roundPct((home.CornersAvg + away.CornersAvg) / 2.0)
}

// perturbation maps a fixture ID onto a stable value in [-bound, bound].
// Re-evaluating the same fixture always yields the same jitter.
func perturbation(fixtureID string, bound float64) float64 {
	if bound <= 0 {
		return 0
	}
	h := fnv.New32a()
	h.Write([]byte(fixtureID))
	unit := float64(h.Sum32()%10000)/9999.0*2.0 - 1.0
	return unit * bound
}

func clampPct(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func roundPct(v float64) float64 {
	return math.Round(v*10) / 10
}
