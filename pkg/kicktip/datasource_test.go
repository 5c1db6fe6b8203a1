package kicktip

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func statsServer(t *testing.T, seasonBody, matchesBody string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/teams/10/statistics", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(seasonBody))
	})
	mux.HandleFunc("/teams/10/matches", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(matchesBody))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestSeasonStatsAbsentFieldsReadAsUnreported(t *testing.T) {
	server := statsServer(t,
		`{"response":{"goalsForAvg":1.8,"form":"WWDLW"}}`,
		`{"response":[]}`)
	source := NewAPIDataSource(server.URL, "", "", DefaultEngineConfig())

	stats, err := source.SeasonStats(context.Background(), "10", 39, "2025/2026")
	require.NoError(t, err)

	assert.Equal(t, 1.8, stats.GoalsForAvg)
	assert.Equal(t, "WWDLW", stats.Form)
	assert.Equal(t, -1.0, stats.YellowCardsAvg, "an omitted field must not read as zero")
	assert.Equal(t, -1.0, stats.CornersAvg)
}

func TestSeasonStatsZeroIsAReportedValue(t *testing.T) {
	server := statsServer(t,
		`{"response":{"goalsForAvg":0.0,"yellowCardsAvg":0.0,"cornersAvg":3.2,"form":"LLLLL"}}`,
		`{"response":[]}`)
	source := NewAPIDataSource(server.URL, "", "", DefaultEngineConfig())

	stats, err := source.SeasonStats(context.Background(), "10", 39, "2025/2026")
	require.NoError(t, err)

	assert.Equal(t, 0.0, stats.GoalsForAvg)
	assert.Equal(t, 0.0, stats.YellowCardsAvg)
	assert.Equal(t, 3.2, stats.CornersAvg)
}

func TestRecentMatchesAbsentFieldsReadAsUnreported(t *testing.T) {
	server := statsServer(t,
		`{"response":null}`,
		`{"response":[{"outcome":"W","goalsFor":2,"goalsAgainst":0,"yellowCards":1}]}`)
	source := NewAPIDataSource(server.URL, "", "", DefaultEngineConfig())

	matches, err := source.RecentMatches(context.Background(), "10", 5)
	require.NoError(t, err)
	require.Len(t, matches, 1)

	assert.Equal(t, 2, matches[0].GoalsFor)
	assert.Equal(t, 1, matches[0].YellowCards)
	assert.Equal(t, -1, matches[0].Corners)
}

func TestResolverFallsThroughOnAbsentSeasonFields(t *testing.T) {
	// Season blob reports goals and form only; corners and cards must
	// fall to the league-default tier, not resolve as zero
	server := statsServer(t,
		`{"response":{"goalsForAvg":1.8,"form":"WWDLW"}}`,
		`{"response":[]}`)
	source := NewAPIDataSource(server.URL, "", "", DefaultEngineConfig())

	f := newResolver(source).Resolve(context.Background(), "10", 39)

	profile, ok := LeagueDefaults(39)
	require.True(t, ok)

	assert.Equal(t, TierSeasonAggregate, f.GoalsTier)
	assert.Equal(t, 1.8, f.GoalsForAvg)
	assert.Equal(t, TierLeagueDefault, f.CardsTier)
	assert.Equal(t, profile.YellowCardsAvg, f.YellowCardsAvg)
	assert.Equal(t, TierLeagueDefault, f.CornersTier)
	assert.Equal(t, profile.CornersAvg, f.CornersAvg)
}

func TestParseOddsStrings(t *testing.T) {
	odds := parseOddsStrings("2.10", "3.40", "3.75")
	require.NotNil(t, odds)
	assert.Equal(t, 2.10, odds.Home)

	assert.Nil(t, parseOddsStrings("", "3.40", "3.75"))
	assert.Nil(t, parseOddsStrings("0.0", "3.40", "3.75"))
}
