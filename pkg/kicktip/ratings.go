package kicktip

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/svetlin-marinov/kicktip/internal/logger"
)

// TeamRating is a single team's Elo strength estimate
type TeamRating struct {
	TeamID    string    `json:"teamId" column:"team_id" dbtype:"TEXT NOT NULL" primary:"true" index:"true"`
	TeamName  string    `json:"teamName" column:"team_name" dbtype:"TEXT"`
	Rating    float64   `json:"rating" column:"rating" dbtype:"REAL DEFAULT 1500.0"`
	Matches   int       `json:"matches" column:"matches" dbtype:"INTEGER DEFAULT 0"`
	UpdatedAt time.Time `json:"updatedAt" column:"updated_at" dbtype:"DATETIME DEFAULT CURRENT_TIMESTAMP"`
}

var _ Persistable = (*TeamRating)(nil)

// GetTableName returns the table name for team ratings
func (t *TeamRating) GetTableName() string {
	return "team_ratings"
}

// GetPrimaryKey returns the primary key as a map
func (t *TeamRating) GetPrimaryKey() map[string]interface{} {
	return map[string]any{"team_id": t.TeamID}
}

// SetPrimaryKey sets the primary key from a map
func (t *TeamRating) SetPrimaryKey(pk map[string]interface{}) error {
	id, ok := pk["team_id"].(string)
	if !ok {
		return fmt.Errorf("primary key 'team_id' must be a string")
	}
	t.TeamID = id
	return nil
}

// BeforeSave is called before saving the rating
func (t *TeamRating) BeforeSave() error {
	t.UpdatedAt = time.Now()
	return nil
}

// AfterSave is called after saving the rating
func (t *TeamRating) AfterSave() error { return nil }

// BeforeDelete is called before deleting the rating
func (t *TeamRating) BeforeDelete() error { return nil }

// AfterDelete is called after deleting the rating
func (t *TeamRating) AfterDelete() error { return nil }

// RatingStore answers strength queries for teams.
// Unknown teams always read as the configured initial rating, so a
// rating read never fails and never distinguishes "new team" from
// "average team".
type RatingStore interface {
	Rating(teamID string) float64
	Set(teamID, teamName string, rating float64)
	ApplyResult(homeID, awayID string, homeGoals, awayGoals int)
	TrackedTeams() int
	AverageRating() float64
}

// MemoryRatingStore keeps ratings in memory and optionally writes
// through to the team_ratings table
type MemoryRatingStore struct {
	mu           sync.RWMutex
	ratings      map[string]*TeamRating
	config       *EngineConfig
	writeThrough bool
}

// NewMemoryRatingStore creates an empty in-memory rating store
func NewMemoryRatingStore(config *EngineConfig) *MemoryRatingStore {
	return &MemoryRatingStore{
		ratings: make(map[string]*TeamRating),
		config:  config,
	}
}

// NewPersistentRatingStore creates a rating store hydrated from the
// team_ratings table that writes every change back to it
func NewPersistentRatingStore(config *EngineConfig) (*MemoryRatingStore, error) {
	s := NewMemoryRatingStore(config)
	s.writeThrough = true

	rows, err := FindWhere(&TeamRating{}, "1=1 ORDER BY team_id")
	if err != nil {
		return nil, fmt.Errorf("failed to hydrate ratings: %w", err)
	}
	for _, row := range rows {
		if r, ok := row.(*TeamRating); ok {
			s.ratings[r.TeamID] = r
		}
	}
	logger.Info("Rating store hydrated", len(s.ratings))
	return s, nil
}

// Rating returns the team's rating, or the initial rating for unseen teams
func (s *MemoryRatingStore) Rating(teamID string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if r, ok := s.ratings[teamID]; ok {
		return r.Rating
	}
	return s.config.InitialRating
}

// Set overwrites the team's rating
func (s *MemoryRatingStore) Set(teamID, teamName string, rating float64) {
	s.mu.Lock()
	r, ok := s.ratings[teamID]
	if !ok {
		r = &TeamRating{TeamID: teamID, TeamName: teamName, Rating: s.config.InitialRating}
		s.ratings[teamID] = r
	}
	r.Rating = rating
	if teamName != "" {
		r.TeamName = teamName
	}
	s.mu.Unlock()

	if s.writeThrough {
		if err := Save(r); err != nil {
			logger.Warn("Failed to persist rating", teamID, err)
		}
	}
}

// ApplyResult adjusts both teams' ratings for a finished match
func (s *MemoryRatingStore) ApplyResult(homeID, awayID string, homeGoals, awayGoals int) {
	s.mu.Lock()

	home := s.ensureLocked(homeID)
	away := s.ensureLocked(awayID)

	newHome, newAway := UpdateRatings(home.Rating, away.Rating, homeGoals, awayGoals, s.config)
	home.Rating = newHome
	away.Rating = newAway
	home.Matches++
	away.Matches++

	s.mu.Unlock()

	if s.writeThrough {
		if err := Save(home); err != nil {
			logger.Warn("Failed to persist rating", homeID, err)
		}
		if err := Save(away); err != nil {
			logger.Warn("Failed to persist rating", awayID, err)
		}
	}
}

func (s *MemoryRatingStore) ensureLocked(teamID string) *TeamRating {
	r, ok := s.ratings[teamID]
	if !ok {
		r = &TeamRating{TeamID: teamID, Rating: s.config.InitialRating}
		s.ratings[teamID] = r
	}
	return r
}

// TrackedTeams returns the number of teams the store has seen
func (s *MemoryRatingStore) TrackedTeams() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ratings)
}

// AverageRating returns the mean rating across tracked teams, or the
// initial rating when the store is empty
func (s *MemoryRatingStore) AverageRating() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.ratings) == 0 {
		return s.config.InitialRating
	}
	var sum float64
	for _, r := range s.ratings {
		sum += r.Rating
	}
	return sum / float64(len(s.ratings))
}

// UpdateRatings computes the post-match Elo ratings for a home/away pair.
// The adjustment is symmetric: what one side gains the other loses, and
// a single match can never move a rating by more than MaxRatingChange.
func UpdateRatings(homeRating, awayRating float64, homeGoals, awayGoals int, config *EngineConfig) (float64, float64) {
	expectedHome := 1.0 / (1.0 + math.Pow(10, (awayRating-homeRating)/400.0))

	var actual float64
	switch {
	case homeGoals > awayGoals:
		actual = 1.0
	case homeGoals == awayGoals:
		actual = 0.5
	default:
		actual = 0.0
	}

	delta := config.KFactor * (actual - expectedHome)
	if delta > config.MaxRatingChange {
		delta = config.MaxRatingChange
	} else if delta < -config.MaxRatingChange {
		delta = -config.MaxRatingChange
	}

	return homeRating + delta, awayRating - delta
}
