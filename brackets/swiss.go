package brackets

import (
	"context"
	"fmt"
	"sort"

	"github.com/openleague/league-system/models"
)

// Swiss scoring convention: win 1, draw 0.5, bye 1, loss 0.
const (
	swissWinPoints  = 1.0
	swissDrawPoints = 0.5
	swissByePoints  = 1.0
)

// ComputeStandings derives the Swiss table from scratch out of the full match
// history. The Buchholz tiebreak is the plain variant: the sum of all
// opponents' final points, byes contributing no opponent. Output order
// follows the participant input order, so identical ordered input yields
// identical output.
func ComputeStandings(participants []*models.TournamentParticipant, history []*models.BracketMatch) []*models.SwissStanding {
	standings := make([]*models.SwissStanding, 0, len(participants))
	byID := make(map[int]*models.SwissStanding, len(participants))
	opponents := make(map[int][]int, len(participants))

	for _, p := range participants {
		s := &models.SwissStanding{ParticipantID: p.ID, Name: p.DisplayName}
		standings = append(standings, s)
		byID[p.ID] = s
	}

	for _, m := range history {
		if m.IsBye {
			if m.Participant1ID != nil {
				if s, ok := byID[*m.Participant1ID]; ok {
					s.Points += swissByePoints
					s.Byes++
				}
			}
			continue
		}
		if m.Participant1ID == nil || m.Participant2ID == nil || !m.Decided() {
			continue
		}
		p1, p2 := *m.Participant1ID, *m.Participant2ID
		opponents[p1] = append(opponents[p1], p2)
		opponents[p2] = append(opponents[p2], p1)

		s1, ok1 := byID[p1]
		s2, ok2 := byID[p2]
		if !ok1 || !ok2 {
			continue
		}
		switch {
		case m.IsDraw:
			s1.Points += swissDrawPoints
			s2.Points += swissDrawPoints
			s1.Draws++
			s2.Draws++
		case *m.WinnerID == p1:
			s1.Points += swissWinPoints
			s1.Wins++
			s2.Losses++
		default:
			s2.Points += swissWinPoints
			s2.Wins++
			s1.Losses++
		}
	}

	for id, opps := range opponents {
		s, ok := byID[id]
		if !ok {
			continue
		}
		for _, opp := range opps {
			if o, ok := byID[opp]; ok {
				s.Buchholz += o.Points
			}
		}
	}

	return standings
}

// Rank sorts standings by points, then Buchholz, keeping the original
// (registration) order between full ties. The sort is stable by
// construction, which makes the ranking reproducible.
func Rank(standings []*models.SwissStanding) []*models.SwissStanding {
	sort.SliceStable(standings, func(i, j int) bool {
		if standings[i].Points != standings[j].Points {
			return standings[i].Points > standings[j].Points
		}
		return standings[i].Buchholz > standings[j].Buchholz
	})
	return standings
}

func pairKey(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}

// playedPairs collects every head-to-head pairing already in the history.
func playedPairs(history []*models.BracketMatch) map[[2]int]bool {
	played := make(map[[2]int]bool)
	for _, m := range history {
		if m.IsBye || m.Participant1ID == nil || m.Participant2ID == nil {
			continue
		}
		played[pairKey(*m.Participant1ID, *m.Participant2ID)] = true
	}
	return played
}

// byeRecipients collects everyone who already received a bye.
func byeRecipients(history []*models.BracketMatch) map[int]bool {
	byes := make(map[int]bool)
	for _, m := range history {
		if m.IsBye && m.Participant1ID != nil {
			byes[*m.Participant1ID] = true
		}
	}
	return byes
}

// pairAvoidingRematch pairs the pool in ranked order via backtracking: the
// top unpaired participant takes the nearest-ranked opponent they have not
// met, recursing over the remainder.
func pairAvoidingRematch(pool []int, played map[[2]int]bool) ([][2]int, bool) {
	if len(pool) == 0 {
		return nil, true
	}
	a := pool[0]
	rest := pool[1:]
	for i, b := range rest {
		if played[pairKey(a, b)] {
			continue
		}
		remaining := make([]int, 0, len(rest)-1)
		remaining = append(remaining, rest[:i]...)
		remaining = append(remaining, rest[i+1:]...)
		if tail, ok := pairAvoidingRematch(remaining, played); ok {
			return append([][2]int{{a, b}}, tail...), true
		}
	}
	return nil, false
}

// PairNextRound pairs the given round from the ranked standings: adjacent
// score bands pair together, previously played pairs are refused, and with
// an odd field the lowest-ranked participant without a previous bye gets the
// round's single bye. When no rematch-free pairing exists the round fails
// with ErrUnsatisfiablePairing unless allowRematch is set, in which case the
// ranking is paired top-down ignoring history.
func PairNextRound(ranked []*models.SwissStanding, history []*models.BracketMatch, tournamentID, round int, allowRematch bool) ([]*models.BracketMatch, error) {
	if len(ranked) < 2 {
		return nil, fmt.Errorf("%w: have %d", ErrNotEnoughParticipants, len(ranked))
	}

	played := playedPairs(history)
	byes := byeRecipients(history)

	pool := make([]int, 0, len(ranked))
	for _, s := range ranked {
		pool = append(pool, s.ParticipantID)
	}

	var byeID *int
	if len(pool)%2 == 1 {
		idx := len(pool) - 1
		for i := len(pool) - 1; i >= 0; i-- {
			if !byes[pool[i]] {
				idx = i
				break
			}
		}
		id := pool[idx]
		byeID = &id
		pool = append(pool[:idx], pool[idx+1:]...)
	}

	pairs, ok := pairAvoidingRematch(pool, played)
	if !ok {
		if !allowRematch {
			return nil, fmt.Errorf("%w: round %d", ErrUnsatisfiablePairing, round)
		}
		pairs = pairs[:0]
		for i := 0; i+1 < len(pool); i += 2 {
			pairs = append(pairs, [2]int{pool[i], pool[i+1]})
		}
	}

	matches := make([]*models.BracketMatch, 0, len(pairs)+1)
	for i, pair := range pairs {
		p1, p2 := pair[0], pair[1]
		matches = append(matches, &models.BracketMatch{
			TournamentID:   tournamentID,
			Round:          round,
			Position:       i + 1,
			Participant1ID: &p1,
			Participant2ID: &p2,
		})
	}
	if byeID != nil {
		matches = append(matches, &models.BracketMatch{
			TournamentID:   tournamentID,
			Round:          round,
			Position:       len(pairs) + 1,
			Participant1ID: byeID,
			IsBye:          true,
			WinnerID:       byeID,
		})
	}
	return matches, nil
}

// SwissGenerator produces round one of a Swiss tournament. Later rounds come
// from PairNextRound once the previous round's history exists.
type SwissGenerator struct{}

func NewSwissGenerator() Generator {
	return &SwissGenerator{}
}

func (g *SwissGenerator) Name() string {
	return "Swiss"
}

func (g *SwissGenerator) Generate(ctx context.Context, params GenerateParams) ([]*models.BracketMatch, error) {
	ranked := Rank(ComputeStandings(params.Participants, nil))
	return PairNextRound(ranked, nil, params.Tournament.ID, 1, false)
}
