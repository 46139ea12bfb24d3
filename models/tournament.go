package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// TournamentStatus mirrors the tournament_status ENUM in the database.
type TournamentStatus string

const (
	TournamentDraft      TournamentStatus = "draft"
	TournamentInProgress TournamentStatus = "in_progress"
	TournamentCompleted  TournamentStatus = "completed"
)

type TournamentType string

const (
	TypeSingleElimination TournamentType = "single_elimination"
	TypeFFAGroupStage     TournamentType = "ffa_group_stage"
	TypeSwiss             TournamentType = "swiss"
)

type SeedingType string

const (
	SeedingRandom SeedingType = "random"
	SeedingManual SeedingType = "manual"
)

type ParticipantType string

const (
	ParticipantIndividual ParticipantType = "individual"
	ParticipantTeam       ParticipantType = "team"
)

// PlacementPoints is one row of the organizer-configured award table.
type PlacementPoints struct {
	Placement int `json:"placement"`
	Points    int `json:"points"`
}

// PlacementPointConfig is stored as JSONB on the tournaments table.
type PlacementPointConfig []PlacementPoints

func (c PlacementPointConfig) Value() (driver.Value, error) {
	if c == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c)
}

func (c *PlacementPointConfig) Scan(src interface{}) error {
	if src == nil {
		*c = nil
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("placement point config: unsupported scan type %T", src)
	}
	return json.Unmarshal(b, c)
}

// PointsFor returns the configured points for a placement, or 0 if unconfigured.
func (c PlacementPointConfig) PointsFor(placement int) int {
	for _, pp := range c {
		if pp.Placement == placement {
			return pp.Points
		}
	}
	return 0
}

// RoundBestOf holds per-round best-of overrides, stored as JSONB.
type RoundBestOf map[int]int

func (r RoundBestOf) Value() (driver.Value, error) {
	if r == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(r)
}

func (r *RoundBestOf) Scan(src interface{}) error {
	if src == nil {
		*r = nil
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("round best-of: unsupported scan type %T", src)
	}
	return json.Unmarshal(b, r)
}

// Tournament is one bracket, group stage or Swiss event inside an Event.
type Tournament struct {
	ID                   int                  `json:"id" db:"id"`
	EventID              int                  `json:"event_id" db:"event_id"`
	Name                 string               `json:"name" db:"name"`
	Type                 TournamentType       `json:"type" db:"type"`
	Status               TournamentStatus     `json:"status" db:"status"`
	SeedingType          SeedingType          `json:"seeding_type" db:"seeding_type"`
	ParticipantType      ParticipantType      `json:"participant_type" db:"participant_type"`
	BestOf               int                  `json:"best_of" db:"best_of"`
	RoundBestOf          RoundBestOf          `json:"round_best_of,omitempty" db:"round_best_of"`
	TotalRounds          *int                 `json:"total_rounds,omitempty" db:"total_rounds"`
	CurrentRound         int                  `json:"current_round" db:"current_round"`
	GroupSize            *int                 `json:"group_size,omitempty" db:"group_size"`
	AdvanceCount         *int                 `json:"advance_count,omitempty" db:"advance_count"`
	PlacementPointConfig PlacementPointConfig `json:"placement_point_config,omitempty" db:"placement_point_config"`
	GameTypeID           *int                 `json:"game_type_id,omitempty" db:"game_type_id"`
	CreatedAt            time.Time            `json:"created_at" db:"created_at"`

	// Optional linked data, populated by the service layer.
	Participants []TournamentParticipant `json:"participants,omitempty" db:"-"`
	Matches      []BracketMatch          `json:"matches,omitempty" db:"-"`
	Groups       []FFAGroup              `json:"groups,omitempty" db:"-"`
}

// BestOfForRound resolves the per-round override, falling back to the default.
func (t *Tournament) BestOfForRound(round int) int {
	if bo, ok := t.RoundBestOf[round]; ok && bo > 0 {
		return bo
	}
	if t.BestOf > 0 {
		return t.BestOf
	}
	return 1
}

// WinsNeeded is the series threshold for a round: a side wins the match when
// its game wins reach the majority of the round's best-of.
func (t *Tournament) WinsNeeded(round int) int {
	bo := t.BestOfForRound(round)
	return bo/2 + 1
}
