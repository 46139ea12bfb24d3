package models

import "time"

// Event is a league: a container for teams, tournaments and the point
// leaderboard they feed.
type Event struct {
	ID          int       `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description,omitempty" db:"description"`
	OwnerID     int       `json:"owner_id" db:"owner_id"`
	LogoKey     *string   `json:"-" db:"logo_key"`
	LogoURL     *string   `json:"logo_url,omitempty" db:"-"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`

	Teams []Team `json:"teams,omitempty" db:"-"`
}

// Team is a scoring unit inside an event.
type Team struct {
	ID        int       `json:"id" db:"id"`
	EventID   int       `json:"event_id" db:"event_id"`
	Name      string    `json:"name" db:"name"`
	LogoKey   *string   `json:"-" db:"logo_key"`
	LogoURL   *string   `json:"logo_url,omitempty" db:"-"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
