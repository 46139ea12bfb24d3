package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// GameResult is one recorded game inside a best-of series. A drawn game is
// logged with WinnerSlot 0 so its scores can be taken back on undo.
type GameResult struct {
	WinnerSlot        int `json:"winner_slot"` // 1 or 2; 0 for a draw
	Participant1Score int `json:"participant1_score"`
	Participant2Score int `json:"participant2_score"`
}

// GameLog is the ordered series history of a match, stored as JSONB. The
// last entry is the game an undo reverses.
type GameLog []GameResult

func (l GameLog) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l)
}

func (l *GameLog) Scan(src interface{}) error {
	if src == nil {
		*l = nil
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("game log: unsupported scan type %T", src)
	}
	return json.Unmarshal(b, l)
}

// BracketMatch is one slot in the bracket arena, addressed by (round,
// position). Participant slots stay nil until the previous round resolves.
// Swiss rounds persist the same rows, with position local to the round.
type BracketMatch struct {
	ID                int       `json:"id" db:"id"`
	TournamentID      int       `json:"tournament_id" db:"tournament_id"`
	Round             int       `json:"round" db:"round"`
	Position          int       `json:"position" db:"position"`
	Participant1ID    *int      `json:"participant1_id,omitempty" db:"participant1_id"`
	Participant2ID    *int      `json:"participant2_id,omitempty" db:"participant2_id"`
	Participant1Score int       `json:"participant1_score" db:"participant1_score"`
	Participant2Score int       `json:"participant2_score" db:"participant2_score"`
	Participant1Wins  int       `json:"participant1_wins" db:"participant1_wins"`
	Participant2Wins  int       `json:"participant2_wins" db:"participant2_wins"`
	WinnerID          *int      `json:"winner_id,omitempty" db:"winner_id"`
	IsDraw            bool      `json:"is_draw" db:"is_draw"`
	IsBye             bool      `json:"is_bye" db:"is_bye"`
	IsForfeit         bool      `json:"is_forfeit" db:"is_forfeit"`
	Games             GameLog   `json:"games,omitempty" db:"games"`
	EventMatchID      *int      `json:"event_match_id,omitempty" db:"event_match_id"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
}

// Decided reports whether the match outcome is settled.
func (m *BracketMatch) Decided() bool {
	return m.WinnerID != nil || m.IsDraw
}

// Played reports whether any game has been recorded, or the match was
// settled without games (bye, forfeit, draw).
func (m *BracketMatch) Played() bool {
	return len(m.Games) > 0 || m.Decided()
}

// LoserID returns the non-winning participant of a decided head-to-head
// match, or nil for byes, draws and undecided matches.
func (m *BracketMatch) LoserID() *int {
	if m.WinnerID == nil || m.IsBye {
		return nil
	}
	if m.Participant1ID != nil && *m.Participant1ID == *m.WinnerID {
		return m.Participant2ID
	}
	return m.Participant1ID
}

// SlotOf returns 1 or 2 for the slot the participant occupies, or 0.
func (m *BracketMatch) SlotOf(participantID int) int {
	if m.Participant1ID != nil && *m.Participant1ID == participantID {
		return 1
	}
	if m.Participant2ID != nil && *m.Participant2ID == participantID {
		return 2
	}
	return 0
}

// FFAGroup is one free-for-all group of an ffa_group_stage round. The result
// is an ordered placement list of participant ids, best first; the top
// AdvanceCount proceed to the next round. A final round has AdvanceCount 0.
type FFAGroup struct {
	ID             int       `json:"id" db:"id"`
	TournamentID   int       `json:"tournament_id" db:"tournament_id"`
	Round          int       `json:"round" db:"round"`
	Position       int       `json:"position" db:"position"`
	ParticipantIDs []int     `json:"participant_ids" db:"-"`
	Placements     []int     `json:"placements,omitempty" db:"-"`
	AdvanceCount   int       `json:"advance_count" db:"advance_count"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// Decided reports whether the group's placements are recorded.
func (g *FFAGroup) Decided() bool {
	return len(g.Placements) > 0
}
