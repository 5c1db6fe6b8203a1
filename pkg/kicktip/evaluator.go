package kicktip

import (
	"context"
	"fmt"
	"sort"

	"github.com/svetlin-marinov/kicktip/internal/logger"
	"github.com/svetlin-marinov/kicktip/internal/metrics"
)

// Evaluator orchestrates a batch of fixture evaluations
type Evaluator struct {
	resolver   *FeatureResolver
	model      *ProbabilityModel
	classifier *Classifier
	ratings    RatingStore
	config     *EngineConfig
}

// NewEvaluator wires the pipeline stages together
func NewEvaluator(resolver *FeatureResolver, model *ProbabilityModel, classifier *Classifier, ratings RatingStore, config *EngineConfig) *Evaluator {
	return &Evaluator{
		resolver:   resolver,
		model:      model,
		classifier: classifier,
		ratings:    ratings,
		config:     config,
	}
}

// EvaluateBatch evaluates every fixture and returns the records that
// succeeded, in deterministic order. A fixture that fails is logged and
// skipped; the batch only fails when not a single fixture survives.
func (e *Evaluator) EvaluateBatch(ctx context.Context, fixtures []Fixture, batchDate string) ([]*PredictionRecord, error) {
	if len(fixtures) == 0 {
		return nil, ErrNoFixtures
	}

	ordered := make([]Fixture, len(fixtures))
	copy(ordered, fixtures)
	e.sortFixtures(ordered)

	// Teams playing twice in a batch resolve once
	featureMemo := make(map[string]*TeamFeatureSet)
	resolve := func(teamID string, leagueID int) *TeamFeatureSet {
		if f, ok := featureMemo[teamID]; ok {
			return f
		}
		f := e.resolver.Resolve(ctx, teamID, leagueID)
		featureMemo[teamID] = f
		return f
	}

	records := make([]*PredictionRecord, 0, len(ordered))
	for i := range ordered {
		fixture := &ordered[i]

		if err := ctx.Err(); err != nil {
			return records, fmt.Errorf("batch evaluation interrupted: %w", err)
		}

		record, err := e.evaluateOne(fixture, resolve(fixture.HomeID, fixture.LeagueID), resolve(fixture.AwayID, fixture.LeagueID), batchDate)
		if err != nil {
			logger.Warn("Skipping fixture", fixture.ID, fixture.HomeName, fixture.AwayName, err)
			metrics.RecordFixtureSkipped()
			continue
		}

		records = append(records, record)
		metrics.RecordFixtureEvaluated()
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("all %d fixtures failed evaluation: %w", len(ordered), ErrNoFixtures)
	}

	logger.Info("Batch evaluated", len(records), "of", len(ordered), "fixtures")
	return records, nil
}

// evaluateOne runs the full pipeline for a single fixture
func (e *Evaluator) evaluateOne(fixture *Fixture, home, away *TeamFeatureSet, batchDate string) (*PredictionRecord, error) {
	if fixture.ID == "" || fixture.HomeID == "" || fixture.AwayID == "" {
		return nil, fmt.Errorf("fixture missing identifiers: id=%q home=%q away=%q", fixture.ID, fixture.HomeID, fixture.AwayID)
	}

	homeRating := e.ratings.Rating(fixture.HomeID)
	awayRating := e.ratings.Rating(fixture.AwayID)

	out, err := e.model.Compute(fixture, home, away, homeRating, awayRating)
	if err != nil {
		return nil, err
	}

	verdict := e.classifier.Classify(out)
	odds := out.Distribution.ImpliedOdds()

	return &PredictionRecord{
		FixtureID:  fixture.ID,
		BatchDate:  batchDate,
		Kickoff:    fixture.Kickoff,
		LeagueID:   fixture.LeagueID,
		LeagueName: fixture.LeagueName,
		HomeName:   fixture.HomeName,
		AwayName:   fixture.AwayName,

		HomeWinProbability: out.Distribution.Home,
		DrawProbability:    out.Distribution.Draw,
		AwayWinProbability: out.Distribution.Away,

		DerivedHomeOdds: odds.Home,
		DerivedDrawOdds: odds.Draw,
		DerivedAwayOdds: odds.Away,

		Over2p5Goals:   out.Over25,
		BothTeamsScore: out.BothTeamsScore,
		FirstHalfGoal:  out.FirstHalfGoal,

		ExpectedYellowCards: out.ExpectedYellowCards,
		ExpectedCorners:     out.ExpectedCorners,

		HomeForm:        home.Form,
		AwayForm:        away.Form,
		HomeFeatureTier: home.BestTier(),
		AwayFeatureTier: away.BestTier(),
		OddsBlended:     out.OddsBlended,

		RecommendedBet:  verdict.RecommendedBet(),
		ConfidenceLabel: verdict.Confidence,
	}, nil
}

// sortFixtures orders a batch by kickoff time, with priority leagues
// winning ties and the fixture ID as the final tiebreaker so the order
// is stable across runs
func (e *Evaluator) sortFixtures(fixtures []Fixture) {
	sort.SliceStable(fixtures, func(i, j int) bool {
		a, b := fixtures[i], fixtures[j]
		if !a.Kickoff.Equal(b.Kickoff) {
			return a.Kickoff.Before(b.Kickoff)
		}
		ap, bp := e.config.IsPriorityLeague(a.LeagueID), e.config.IsPriorityLeague(b.LeagueID)
		if ap != bp {
			return ap
		}
		return a.ID < b.ID
	})
}
