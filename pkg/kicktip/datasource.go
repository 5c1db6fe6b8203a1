package kicktip

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/svetlin-marinov/kicktip/internal/logger"
	"github.com/svetlin-marinov/kicktip/pkg/transport"
)

// FixtureSource supplies the day's fixtures to the engine
type FixtureSource interface {
	FixturesForDate(ctx context.Context, date string) ([]Fixture, error)
}

// APIDataSource acquires fixtures and team statistics from the upstream
// football data API, and fills in missing odds by scraping the upstream
// odds pages. It implements both FixtureSource and StatsSource.
type APIDataSource struct {
	baseURL string
	oddsURL string
	apiKey  string
	config  *EngineConfig
}

// NewAPIDataSource creates a data source for the given API endpoints
func NewAPIDataSource(baseURL, oddsURL, apiKey string, config *EngineConfig) *APIDataSource {
	return &APIDataSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		oddsURL: strings.TrimRight(oddsURL, "/"),
		apiKey:  apiKey,
		config:  config,
	}
}

var _ FixtureSource = (*APIDataSource)(nil)
var _ StatsSource = (*APIDataSource)(nil)

// Upstream wire types. Only the fields the engine reads are declared.
type apiFixtureResponse struct {
	Response []struct {
		Fixture struct {
			ID   int    `json:"id"`
			Date string `json:"date"`
		} `json:"fixture"`
		League struct {
			ID   int    `json:"id"`
			Name string `json:"name"`
		} `json:"league"`
		Teams struct {
			Home struct {
				ID   int    `json:"id"`
				Name string `json:"name"`
			} `json:"home"`
			Away struct {
				ID   int    `json:"id"`
				Name string `json:"name"`
			} `json:"away"`
		} `json:"teams"`
		Odds *struct {
			Home string `json:"home"`
			Draw string `json:"draw"`
			Away string `json:"away"`
		} `json:"odds,omitempty"`
	} `json:"response"`
}

// Numeric statistics decode through pointers so a field the upstream
// omits is distinguishable from a real zero. A nil pointer maps to the
// -1 "not reported" sentinel the resolver falls through on.
type apiRecentResponse struct {
	Response []struct {
		Outcome      string `json:"outcome"`
		GoalsFor     *int   `json:"goalsFor"`
		GoalsAgainst *int   `json:"goalsAgainst"`
		YellowCards  *int   `json:"yellowCards"`
		Corners      *int   `json:"corners"`
	} `json:"response"`
}

type apiSeasonResponse struct {
	Response *struct {
		GoalsForAvg    *float64 `json:"goalsForAvg"`
		YellowCardsAvg *float64 `json:"yellowCardsAvg"`
		CornersAvg     *float64 `json:"cornersAvg"`
		Form           string   `json:"form"`
	} `json:"response"`
}

func intOrUnreported(v *int) int {
	if v == nil {
		return -1
	}
	return *v
}

func floatOrUnreported(v *float64) float64 {
	if v == nil {
		return -1.0
	}
	return *v
}

// FixturesForDate fetches all fixtures kicking off on the given
// calendar day (YYYY-MM-DD). Fixtures missing market odds are topped up
// from the odds pages where possible.
func (s *APIDataSource) FixturesForDate(ctx context.Context, date string) ([]Fixture, error) {
	url := fmt.Sprintf("%s/fixtures?date=%s", s.baseURL, date)

	var payload apiFixtureResponse
	if err := transport.GetJSON(ctx, url, s.headers(), &payload); err != nil {
		return nil, fmt.Errorf("failed to fetch fixtures for %s: %w", date, err)
	}

	if len(payload.Response) == 0 {
		return nil, ErrNoFixtures
	}

	fixtures := make([]Fixture, 0, len(payload.Response))
	for _, item := range payload.Response {
		kickoff, err := time.Parse(time.RFC3339, item.Fixture.Date)
		if err != nil {
			logger.Warn("Fixture has unparseable kickoff, skipping", item.Fixture.ID, item.Fixture.Date)
			continue
		}

		fixture := Fixture{
			ID:         strconv.Itoa(item.Fixture.ID),
			Kickoff:    kickoff,
			LeagueID:   item.League.ID,
			LeagueName: item.League.Name,
			HomeID:     strconv.Itoa(item.Teams.Home.ID),
			HomeName:   item.Teams.Home.Name,
			AwayID:     strconv.Itoa(item.Teams.Away.ID),
			AwayName:   item.Teams.Away.Name,
		}

		if item.Odds != nil {
			fixture.Odds = parseOddsStrings(item.Odds.Home, item.Odds.Draw, item.Odds.Away)
		}
		if fixture.Odds == nil && s.oddsURL != "" {
			fixture.Odds = s.scrapeOdds(ctx, fixture.ID)
		}

		fixtures = append(fixtures, fixture)
	}

	if len(fixtures) == 0 {
		return nil, ErrNoFixtures
	}

	logger.Info("Fetched fixtures", date, len(fixtures))
	return fixtures, nil
}

// RecentMatches fetches the team's last completed matches, newest first
func (s *APIDataSource) RecentMatches(ctx context.Context, teamID string, limit int) ([]RecentMatch, error) {
	url := fmt.Sprintf("%s/teams/%s/matches?status=finished&limit=%d", s.baseURL, teamID, limit)

	var payload apiRecentResponse
	if err := transport.GetJSON(ctx, url, s.headers(), &payload); err != nil {
		return nil, fmt.Errorf("failed to fetch recent matches for team %s: %w", teamID, err)
	}

	if len(payload.Response) == 0 {
		return nil, ErrNoData
	}

	matches := make([]RecentMatch, 0, len(payload.Response))
	for _, item := range payload.Response {
		if item.Outcome == "" {
			continue
		}
		matches = append(matches, RecentMatch{
			Outcome:      Outcome(item.Outcome[0]),
			GoalsFor:     intOrUnreported(item.GoalsFor),
			GoalsAgainst: intOrUnreported(item.GoalsAgainst),
			YellowCards:  intOrUnreported(item.YellowCards),
			Corners:      intOrUnreported(item.Corners),
		})
	}

	if len(matches) == 0 {
		return nil, ErrNoData
	}
	return matches, nil
}

// SeasonStats fetches the team's season-to-date aggregate
func (s *APIDataSource) SeasonStats(ctx context.Context, teamID string, leagueID int, season string) (*SeasonStats, error) {
	url := fmt.Sprintf("%s/teams/%s/statistics?league=%d&season=%s", s.baseURL, teamID, leagueID, season)

	var payload apiSeasonResponse
	if err := transport.GetJSON(ctx, url, s.headers(), &payload); err != nil {
		return nil, fmt.Errorf("failed to fetch season statistics for team %s: %w", teamID, err)
	}

	if payload.Response == nil {
		return nil, ErrNoData
	}

	return &SeasonStats{
		GoalsForAvg:    floatOrUnreported(payload.Response.GoalsForAvg),
		YellowCardsAvg: floatOrUnreported(payload.Response.YellowCardsAvg),
		CornersAvg:     floatOrUnreported(payload.Response.CornersAvg),
		Form:           payload.Response.Form,
	}, nil
}

// scrapeOdds pulls the three-way prices off the fixture's odds page.
// Any failure just means the fixture proceeds without odds.
func (s *APIDataSource) scrapeOdds(ctx context.Context, fixtureID string) *MarketOdds {
	url := fmt.Sprintf("%s/match/%s", s.oddsURL, fixtureID)

	html, err := transport.GetHtml(ctx, url)
	if err != nil {
		logger.Debug("Odds page unavailable", fixtureID, err)
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		logger.Debug("Odds page unparseable", fixtureID, err)
		return nil
	}

	var prices []float64
	doc.Find(".odds-row .odds-value, td.odd").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		text := strings.TrimSpace(sel.Text())
		if v, err := strconv.ParseFloat(text, 64); err == nil && v > 1.0 {
			prices = append(prices, v)
		}
		return len(prices) < 3
	})

	if len(prices) < 3 {
		logger.Debug("Odds page had no full three-way market", fixtureID)
		return nil
	}

	return &MarketOdds{Home: prices[0], Draw: prices[1], Away: prices[2]}
}

func (s *APIDataSource) headers() map[string]string {
	headers := map[string]string{"Accept": "application/json"}
	if s.apiKey != "" {
		headers["X-API-Key"] = s.apiKey
	}
	return headers
}

func parseOddsStrings(home, draw, away string) *MarketOdds {
	h, err1 := strconv.ParseFloat(strings.TrimSpace(home), 64)
	d, err2 := strconv.ParseFloat(strings.TrimSpace(draw), 64)
	a, err3 := strconv.ParseFloat(strings.TrimSpace(away), 64)
	if err1 != nil || err2 != nil || err3 != nil {
		return nil
	}
	odds := &MarketOdds{Home: h, Draw: d, Away: a}
	if !odds.Present() {
		return nil
	}
	return odds
}
