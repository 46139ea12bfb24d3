package models

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// EntrantKind discriminates the tagged Entrant variant.
type EntrantKind string

const (
	EntrantTeam        EntrantKind = "team"
	EntrantUser        EntrantKind = "user"
	EntrantPlaceholder EntrantKind = "placeholder"
	EntrantPartnership EntrantKind = "partnership"
)

// Entrant identifies who is playing: a team, a single user, a named
// placeholder, or a partnership of two or more users. Exactly the fields of
// the tagged kind are set; everything else stays nil.
type Entrant struct {
	Kind          EntrantKind `json:"kind"`
	TeamID        *int        `json:"team_id,omitempty"`
	UserID        *int        `json:"user_id,omitempty"`
	PlaceholderID *int        `json:"placeholder_id,omitempty"`
	MemberIDs     []int       `json:"member_ids,omitempty"`
}

func TeamEntrant(teamID int) Entrant {
	return Entrant{Kind: EntrantTeam, TeamID: &teamID}
}

func UserEntrant(userID int) Entrant {
	return Entrant{Kind: EntrantUser, UserID: &userID}
}

func PlaceholderEntrant(placeholderID int) Entrant {
	return Entrant{Kind: EntrantPlaceholder, PlaceholderID: &placeholderID}
}

func PartnershipEntrant(memberIDs []int) Entrant {
	return Entrant{Kind: EntrantPartnership, MemberIDs: memberIDs}
}

// Validate checks the variant invariant and that the kind is permitted for
// the tournament's participant type.
func (e Entrant) Validate(pt ParticipantType) error {
	switch e.Kind {
	case EntrantTeam:
		if e.TeamID == nil || e.UserID != nil || e.PlaceholderID != nil || len(e.MemberIDs) > 0 {
			return errors.New("team entrant must carry exactly a team id")
		}
		if pt != ParticipantTeam {
			return fmt.Errorf("team entrant not allowed in %s tournament", pt)
		}
	case EntrantUser:
		if e.UserID == nil || e.TeamID != nil || e.PlaceholderID != nil || len(e.MemberIDs) > 0 {
			return errors.New("user entrant must carry exactly a user id")
		}
		if pt != ParticipantIndividual {
			return fmt.Errorf("user entrant not allowed in %s tournament", pt)
		}
	case EntrantPlaceholder:
		if e.PlaceholderID == nil || e.TeamID != nil || e.UserID != nil || len(e.MemberIDs) > 0 {
			return errors.New("placeholder entrant must carry exactly a placeholder id")
		}
	case EntrantPartnership:
		if len(e.MemberIDs) < 2 || e.TeamID != nil || e.UserID != nil || e.PlaceholderID != nil {
			return errors.New("partnership entrant must carry at least two member ids")
		}
		if pt != ParticipantIndividual {
			return fmt.Errorf("partnership entrant not allowed in %s tournament", pt)
		}
		seen := make(map[int]bool, len(e.MemberIDs))
		for _, id := range e.MemberIDs {
			if seen[id] {
				return fmt.Errorf("duplicate partnership member %d", id)
			}
			seen[id] = true
		}
	default:
		return fmt.Errorf("unknown entrant kind %q", e.Kind)
	}
	return nil
}

// Key is a canonical identity string used to reject duplicate registrations.
func (e Entrant) Key() string {
	switch e.Kind {
	case EntrantTeam:
		return fmt.Sprintf("team:%d", deref(e.TeamID))
	case EntrantUser:
		return fmt.Sprintf("user:%d", deref(e.UserID))
	case EntrantPlaceholder:
		return fmt.Sprintf("placeholder:%d", deref(e.PlaceholderID))
	case EntrantPartnership:
		ids := make([]int, len(e.MemberIDs))
		copy(ids, e.MemberIDs)
		sort.Ints(ids)
		parts := make([]string, len(ids))
		for i, id := range ids {
			parts[i] = fmt.Sprintf("%d", id)
		}
		return "partnership:" + strings.Join(parts, ",")
	}
	return "unknown"
}

func deref(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

// TournamentParticipant is one registered entrant of a tournament.
type TournamentParticipant struct {
	ID             int       `json:"id" db:"id"`
	TournamentID   int       `json:"tournament_id" db:"tournament_id"`
	Seed           *int      `json:"seed,omitempty" db:"seed"`
	Entrant        Entrant   `json:"entrant" db:"-"`
	FinalPlacement *int      `json:"final_placement,omitempty" db:"final_placement"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`

	// Display name resolved by the service layer from the linked team/users.
	DisplayName string `json:"display_name,omitempty" db:"-"`
}
