package brackets

import (
	"fmt"

	"github.com/openleague/league-system/models"
)

type arenaKey struct {
	round    int
	position int
}

// Arena indexes a tournament's match rows by (round, position) so winner
// propagation is an explicit lookup-and-write instead of pointer chasing.
// Mutating operations report every touched match so the caller can persist
// the whole set in one transaction.
type Arena struct {
	byKey       map[arenaKey]*models.BracketMatch
	totalRounds int
}

func NewArena(matches []*models.BracketMatch) *Arena {
	a := &Arena{byKey: make(map[arenaKey]*models.BracketMatch, len(matches))}
	for _, m := range matches {
		a.byKey[arenaKey{m.Round, m.Position}] = m
		if m.Round > a.totalRounds {
			a.totalRounds = m.Round
		}
	}
	return a
}

func (a *Arena) Match(round, position int) *models.BracketMatch {
	return a.byKey[arenaKey{round, position}]
}

func (a *Arena) TotalRounds() int {
	return a.totalRounds
}

// Next returns the match the winner of m advances into, or nil for the final.
func (a *Arena) Next(m *models.BracketMatch) *models.BracketMatch {
	return a.Match(m.Round+1, (m.Position+1)/2)
}

// winner of position p lands in slot 1 when p is odd, slot 2 when even.
func nextSlot(position int) int {
	if position%2 == 1 {
		return 1
	}
	return 2
}

func (a *Arena) propagateWinner(m *models.BracketMatch) *models.BracketMatch {
	next := a.Next(m)
	if next == nil {
		return nil
	}
	if nextSlot(m.Position) == 1 {
		next.Participant1ID = m.WinnerID
	} else {
		next.Participant2ID = m.WinnerID
	}
	return next
}

func (a *Arena) retractWinner(m *models.BracketMatch) *models.BracketMatch {
	next := a.Next(m)
	if next == nil {
		return nil
	}
	if nextSlot(m.Position) == 1 {
		next.Participant1ID = nil
	} else {
		next.Participant2ID = nil
	}
	return next
}

// ApplyGame records one game of the series. When a side reaches winsNeeded
// the match is decided and the winner is written into its next-round slot.
// Returns every match touched, and whether the series was decided.
func (a *Arena) ApplyGame(m *models.BracketMatch, game models.GameResult, winsNeeded int) ([]*models.BracketMatch, bool, error) {
	if m.Decided() {
		return nil, false, ErrMatchAlreadyDecided
	}
	if m.Participant1ID == nil || m.Participant2ID == nil {
		return nil, false, ErrMatchMissingParticipants
	}
	if game.WinnerSlot != 1 && game.WinnerSlot != 2 {
		return nil, false, fmt.Errorf("%w: winner slot must be 1 or 2", ErrInvalidOutcome)
	}

	m.Games = append(m.Games, game)
	m.Participant1Score += game.Participant1Score
	m.Participant2Score += game.Participant2Score
	if game.WinnerSlot == 1 {
		m.Participant1Wins++
	} else {
		m.Participant2Wins++
	}

	changed := []*models.BracketMatch{m}
	decided := false
	if m.Participant1Wins >= winsNeeded {
		m.WinnerID = m.Participant1ID
		decided = true
	} else if m.Participant2Wins >= winsNeeded {
		m.WinnerID = m.Participant2ID
		decided = true
	}
	if decided {
		if next := a.propagateWinner(m); next != nil {
			changed = append(changed, next)
		}
	}
	return changed, decided, nil
}

// RecordDraw settles a match as drawn without a winner. Only Swiss rounds
// use this; there is no propagation.
func (a *Arena) RecordDraw(m *models.BracketMatch, p1Score, p2Score int) error {
	if m.Decided() {
		return ErrMatchAlreadyDecided
	}
	if m.Participant1ID == nil || m.Participant2ID == nil {
		return ErrMatchMissingParticipants
	}
	m.IsDraw = true
	m.Games = append(m.Games, models.GameResult{
		Participant1Score: p1Score,
		Participant2Score: p2Score,
	})
	m.Participant1Score += p1Score
	m.Participant2Score += p2Score
	return nil
}

// Forfeit settles the match against the given slot. The remaining side
// advances exactly as a normal winner would.
func (a *Arena) Forfeit(m *models.BracketMatch, forfeitingSlot int) ([]*models.BracketMatch, error) {
	if m.Decided() {
		return nil, ErrMatchAlreadyDecided
	}
	if forfeitingSlot != 1 && forfeitingSlot != 2 {
		return nil, fmt.Errorf("%w: forfeiting slot must be 1 or 2", ErrInvalidOutcome)
	}
	var winner *int
	if forfeitingSlot == 1 {
		winner = m.Participant2ID
	} else {
		winner = m.Participant1ID
	}
	if winner == nil {
		return nil, ErrMatchMissingParticipants
	}
	m.IsForfeit = true
	m.WinnerID = winner

	changed := []*models.BracketMatch{m}
	if next := a.propagateWinner(m); next != nil {
		changed = append(changed, next)
	}
	return changed, nil
}

// UndoLastResult reverses the most recently recorded game of the series. If
// that game had decided the match, the winner is also retracted from the
// next-round slot. The undo is refused when the downstream match has itself
// been played, since that would leave the bracket contradictory. Draws and
// forfeits are reversed as a whole.
func (a *Arena) UndoLastResult(m *models.BracketMatch) ([]*models.BracketMatch, error) {
	if m.IsBye {
		return nil, fmt.Errorf("%w: byes carry no recorded result", ErrNothingToUndo)
	}
	if m.IsDraw {
		m.IsDraw = false
		if n := len(m.Games); n > 0 {
			last := m.Games[n-1]
			m.Games = m.Games[:n-1]
			m.Participant1Score -= last.Participant1Score
			m.Participant2Score -= last.Participant2Score
		}
		return []*models.BracketMatch{m}, nil
	}

	changed := []*models.BracketMatch{m}
	if m.WinnerID != nil {
		if next := a.Next(m); next != nil && next.Played() {
			return nil, fmt.Errorf("%w: match R%dP%d", ErrDownstreamPlayed, next.Round, next.Position)
		}
		if next := a.retractWinner(m); next != nil {
			changed = append(changed, next)
		}
		m.WinnerID = nil
	}

	if m.IsForfeit {
		m.IsForfeit = false
		return changed, nil
	}

	if len(m.Games) == 0 {
		return nil, ErrNothingToUndo
	}
	last := m.Games[len(m.Games)-1]
	m.Games = m.Games[:len(m.Games)-1]
	m.Participant1Score -= last.Participant1Score
	m.Participant2Score -= last.Participant2Score
	if last.WinnerSlot == 1 {
		m.Participant1Wins--
	} else {
		m.Participant2Wins--
	}
	return changed, nil
}

// Champion returns the winner of the final, or nil while undecided.
func (a *Arena) Champion() *int {
	final := a.Match(a.totalRounds, 1)
	if final == nil {
		return nil
	}
	return final.WinnerID
}

// Complete reports whether the final has been decided.
func (a *Arena) Complete() bool {
	return a.Champion() != nil
}

// Placements derives final placements once the bracket is complete: the
// champion places 1st, the final's loser 2nd, and a participant eliminated
// in round r places 2^(R-r)+1: both semifinal losers share 3rd, all
// quarterfinal losers share 5th, and so on. Bye matches place nobody.
func (a *Arena) Placements() map[int]int {
	placements := make(map[int]int)
	champion := a.Champion()
	if champion == nil {
		return placements
	}
	placements[*champion] = 1
	for _, m := range a.byKey {
		if m.IsBye || m.WinnerID == nil {
			continue
		}
		if loser := m.LoserID(); loser != nil {
			placements[*loser] = 1<<uint(a.totalRounds-m.Round) + 1
		}
	}
	return placements
}
