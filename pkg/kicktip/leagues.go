package kicktip

// LeagueProfile holds per-league discipline and corner baselines used
// as a fallback when a team has no recent matches and no season
// aggregate. Goal rates are too team-specific to default per league.
type LeagueProfile struct {
	Name           string
	YellowCardsAvg float64
	CornersAvg     float64
}

// leagueProfiles maps upstream league IDs to their typical statistical
// profile. Values are long-run per-team averages, not per-match totals.
var leagueProfiles = map[int]LeagueProfile{
	39:  {Name: "Premier League", YellowCardsAvg: 1.7, CornersAvg: 5.1},
	140: {Name: "La Liga", YellowCardsAvg: 2.4, CornersAvg: 4.6},
	135: {Name: "Serie A", YellowCardsAvg: 2.2, CornersAvg: 4.8},
	78:  {Name: "Bundesliga", YellowCardsAvg: 1.8, CornersAvg: 4.9},
	61:  {Name: "Ligue 1", YellowCardsAvg: 2.0, CornersAvg: 4.5},
	88:  {Name: "Eredivisie", YellowCardsAvg: 1.9, CornersAvg: 5.0},
	94:  {Name: "Primeira Liga", YellowCardsAvg: 2.3, CornersAvg: 4.4},
	172: {Name: "First League", YellowCardsAvg: 2.1, CornersAvg: 4.2},
	2:   {Name: "Champions League", YellowCardsAvg: 1.9, CornersAvg: 4.9},
	3:   {Name: "Europa League", YellowCardsAvg: 2.0, CornersAvg: 4.7},
}

// LeagueDefaults returns the fallback profile for the given league,
// or ok=false when the league is not in the table
func LeagueDefaults(leagueID int) (LeagueProfile, bool) {
	p, ok := leagueProfiles[leagueID]
	return p, ok
}
