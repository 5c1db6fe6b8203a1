package kicktip

import (
	"fmt"
	"time"
)

// Outcome is a single result symbol in a team's form string
type Outcome byte

const (
	OutcomeWin  Outcome = 'W'
	OutcomeDraw Outcome = 'D'
	OutcomeLoss Outcome = 'L'
)

// ConfidenceLabel grades how decisive a prediction is
type ConfidenceLabel string

const (
	ConfidenceLow      ConfidenceLabel = "LOW"
	ConfidenceMedium   ConfidenceLabel = "MEDIUM"
	ConfidenceHigh     ConfidenceLabel = "HIGH"
	ConfidenceVeryHigh ConfidenceLabel = "VERY_HIGH"
)

// MarketOdds holds decimal bookmaker odds for the three-way market
// Zero or negative values mean the price is absent
type MarketOdds struct {
	Home float64 `json:"home"`
	Draw float64 `json:"draw"`
	Away float64 `json:"away"`
}

// Present reports whether all three prices are usable
func (o *MarketOdds) Present() bool {
	return o != nil && o.Home > 0 && o.Draw > 0 && o.Away > 0
}

// Fixture is an upcoming match as supplied by the acquisition layer
// Read-only to the engine
type Fixture struct {
	ID         string      `json:"id"`
	Kickoff    time.Time   `json:"kickoff"`
	LeagueID   int         `json:"leagueId"`
	LeagueName string      `json:"leagueName"`
	HomeID     string      `json:"homeId"`
	HomeName   string      `json:"homeName"`
	AwayID     string      `json:"awayId"`
	AwayName   string      `json:"awayName"`
	Odds       *MarketOdds `json:"odds,omitempty"`
}

// RecentMatch is one completed match from a team's perspective,
// as reported by the recent-matches upstream endpoint
type RecentMatch struct {
	Outcome      Outcome `json:"outcome"`
	GoalsFor     int     `json:"goalsFor"`
	GoalsAgainst int     `json:"goalsAgainst"`
	YellowCards  int     `json:"yellowCards"`
	Corners      int     `json:"corners"`
}

// SeasonStats is the season-to-date aggregate reported by the upstream
// statistics endpoint; negative values mean the field was not reported
type SeasonStats struct {
	GoalsForAvg    float64 `json:"goalsForAvg"`
	YellowCardsAvg float64 `json:"yellowCardsAvg"`
	CornersAvg     float64 `json:"cornersAvg"`
	Form           string  `json:"form"`
}

// Recommendation is a single betting suggestion with its rationale
type Recommendation struct {
	Market    string `json:"market"`
	Rationale string `json:"rationale"`
}

// PredictionRecord is the immutable output of evaluating one fixture
// It is the unit stored by the result cache and the predictions table
type PredictionRecord struct {
	FixtureID  string    `json:"fixtureId" column:"fixture_id" dbtype:"TEXT NOT NULL" primary:"true" index:"true"`
	BatchDate  string    `json:"batchDate" column:"batch_date" dbtype:"TEXT NOT NULL" primary:"true" index:"true"`
	Kickoff    time.Time `json:"kickoff" column:"kickoff" dbtype:"DATETIME"`
	LeagueID   int       `json:"leagueId" column:"league_id" dbtype:"INTEGER DEFAULT -1"`
	LeagueName string    `json:"leagueName" column:"league_name" dbtype:"TEXT"`
	HomeName   string    `json:"homeName" column:"home_name" dbtype:"TEXT NOT NULL"`
	AwayName   string    `json:"awayName" column:"away_name" dbtype:"TEXT NOT NULL"`

	// Three-way outcome distribution (percentages summing to ~100)
	HomeWinProbability float64 `json:"homeWinProbability" column:"home_win_probability" dbtype:"REAL DEFAULT -1.0"`
	DrawProbability    float64 `json:"drawProbability" column:"draw_probability" dbtype:"REAL DEFAULT -1.0"`
	AwayWinProbability float64 `json:"awayWinProbability" column:"away_win_probability" dbtype:"REAL DEFAULT -1.0"`

	// Bookmaker-style odds derived from the final distribution
	DerivedHomeOdds float64 `json:"derivedHomeOdds" column:"derived_home_odds" dbtype:"REAL DEFAULT -1.0"`
	DerivedDrawOdds float64 `json:"derivedDrawOdds" column:"derived_draw_odds" dbtype:"REAL DEFAULT -1.0"`
	DerivedAwayOdds float64 `json:"derivedAwayOdds" column:"derived_away_odds" dbtype:"REAL DEFAULT -1.0"`

	// Secondary markets (percentages)
	Over2p5Goals   float64 `json:"over2p5Goals" column:"over2p5_goals" dbtype:"REAL DEFAULT -1.0"`
	BothTeamsScore float64 `json:"bothTeamsScore" column:"both_teams_score" dbtype:"REAL DEFAULT -1.0"`
	FirstHalfGoal  float64 `json:"firstHalfGoal" column:"first_half_goal" dbtype:"REAL DEFAULT -1.0"`

	// Expected per-team match statistics
	ExpectedYellowCards float64 `json:"expectedYellowCards" column:"expected_yellow_cards" dbtype:"REAL DEFAULT 1.8"`
	ExpectedCorners     float64 `json:"expectedCorners" column:"expected_corners" dbtype:"REAL DEFAULT 4.2"`

	// Feature provenance
	HomeForm        string `json:"homeForm" column:"home_form" dbtype:"TEXT"`
	AwayForm        string `json:"awayForm" column:"away_form" dbtype:"TEXT"`
	HomeFeatureTier string `json:"homeFeatureTier" column:"home_feature_tier" dbtype:"TEXT"`
	AwayFeatureTier string `json:"awayFeatureTier" column:"away_feature_tier" dbtype:"TEXT"`
	OddsBlended     bool   `json:"oddsBlended" column:"odds_blended" dbtype:"INTEGER DEFAULT 0"`

	// Classification
	RecommendedBet  string          `json:"recommendedBet" column:"recommended_bet" dbtype:"TEXT"`
	ConfidenceLabel ConfidenceLabel `json:"confidenceLabel" column:"confidence_label" dbtype:"TEXT"`

	CreatedAt time.Time `json:"createdAt" column:"created_at" dbtype:"DATETIME DEFAULT CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updatedAt" column:"updated_at" dbtype:"DATETIME DEFAULT CURRENT_TIMESTAMP"`
}

// Compile-time check to ensure PredictionRecord implements Persistable
var _ Persistable = (*PredictionRecord)(nil)

// GetPrimaryKey returns the compound primary key as a map
func (p *PredictionRecord) GetPrimaryKey() map[string]interface{} {
	return map[string]any{
		"fixture_id": p.FixtureID,
		"batch_date": p.BatchDate,
	}
}

// SetPrimaryKey sets the compound primary key from a map
func (p *PredictionRecord) SetPrimaryKey(pk map[string]interface{}) error {
	id, ok := pk["fixture_id"].(string)
	if !ok {
		return fmt.Errorf("primary key 'fixture_id' must be a string")
	}
	date, ok := pk["batch_date"].(string)
	if !ok {
		return fmt.Errorf("primary key 'batch_date' must be a string")
	}
	p.FixtureID = id
	p.BatchDate = date
	return nil
}

// GetTableName returns the table name for prediction records
func (p *PredictionRecord) GetTableName() string {
	return "predictions"
}

// BeforeSave is called before saving the record
func (p *PredictionRecord) BeforeSave() error {
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	return nil
}

// AfterSave is called after saving the record
func (p *PredictionRecord) AfterSave() error { return nil }

// BeforeDelete is called before deleting the record
func (p *PredictionRecord) BeforeDelete() error { return nil }

// AfterDelete is called after deleting the record
func (p *PredictionRecord) AfterDelete() error { return nil }

// Distribution returns the record's three-way distribution
func (p *PredictionRecord) Distribution() OutcomeDistribution {
	return OutcomeDistribution{
		Home: p.HomeWinProbability,
		Draw: p.DrawProbability,
		Away: p.AwayWinProbability,
	}
}
