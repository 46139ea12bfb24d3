package models

import "time"

// PointEntry is one placement-point award feeding the event leaderboard.
// Entries for a tournament are created and deleted as a unit: they exist in
// full once the tournament completes and not at all otherwise. AwardBatchID
// groups the entries written by a single award application.
type PointEntry struct {
	ID            int       `json:"id" db:"id"`
	EventID       int       `json:"event_id" db:"event_id"`
	TournamentID  *int      `json:"tournament_id,omitempty" db:"tournament_id"`
	ParticipantID int       `json:"participant_id" db:"participant_id"`
	TeamID        *int      `json:"team_id,omitempty" db:"team_id"`
	UserID        *int      `json:"user_id,omitempty" db:"user_id"`
	Points        int       `json:"points" db:"points"`
	Placement     int       `json:"placement" db:"placement"`
	AwardBatchID  string    `json:"award_batch_id" db:"award_batch_id"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// LeaderboardRow is the aggregated event standing of one team.
type LeaderboardRow struct {
	TeamID   int    `json:"team_id" db:"team_id"`
	TeamName string `json:"team_name" db:"team_name"`
	Points   int    `json:"points" db:"points"`
	Awards   int    `json:"awards" db:"awards"`
}
