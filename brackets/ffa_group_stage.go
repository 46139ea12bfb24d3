package brackets

import (
	"fmt"

	"github.com/openleague/league-system/models"
)

// GenerateGroups partitions participants, in the given order, into groups of
// groupSize for one free-for-all round. The last group may run short. A
// round with advanceCount 0 is a final: nobody advances and the recorded
// placements become the tournament result.
func GenerateGroups(tournamentID, round int, participantIDs []int, groupSize, advanceCount int) ([]*models.FFAGroup, error) {
	if len(participantIDs) < 2 {
		return nil, fmt.Errorf("%w: have %d", ErrNotEnoughParticipants, len(participantIDs))
	}
	if groupSize < 2 {
		return nil, fmt.Errorf("%w: group size %d", ErrInvalidGroupConfig, groupSize)
	}
	if advanceCount < 0 || advanceCount >= groupSize {
		return nil, fmt.Errorf("%w: advance count %d for group size %d", ErrInvalidGroupConfig, advanceCount, groupSize)
	}

	groups := make([]*models.FFAGroup, 0, (len(participantIDs)+groupSize-1)/groupSize)
	for start := 0; start < len(participantIDs); start += groupSize {
		end := start + groupSize
		if end > len(participantIDs) {
			end = len(participantIDs)
		}
		members := make([]int, end-start)
		copy(members, participantIDs[start:end])
		groups = append(groups, &models.FFAGroup{
			TournamentID:   tournamentID,
			Round:          round,
			Position:       len(groups) + 1,
			ParticipantIDs: members,
			AdvanceCount:   advanceCount,
		})
	}
	return groups, nil
}

// RecordGroupPlacements settles a group with an ordered finish list. The
// list must be a permutation of the group's participants, best first.
func RecordGroupPlacements(g *models.FFAGroup, placements []int) error {
	if g.Decided() {
		return ErrGroupAlreadyDecided
	}
	if len(placements) != len(g.ParticipantIDs) {
		return fmt.Errorf("%w: got %d placements for %d participants", ErrInvalidPlacements, len(placements), len(g.ParticipantIDs))
	}
	members := make(map[int]bool, len(g.ParticipantIDs))
	for _, id := range g.ParticipantIDs {
		members[id] = true
	}
	seen := make(map[int]bool, len(placements))
	for _, id := range placements {
		if !members[id] {
			return fmt.Errorf("%w: participant %d is not in the group", ErrInvalidPlacements, id)
		}
		if seen[id] {
			return fmt.Errorf("%w: participant %d placed twice", ErrInvalidPlacements, id)
		}
		seen[id] = true
	}
	g.Placements = append([]int(nil), placements...)
	return nil
}

// Advancers returns, in finish order, everyone who proceeds out of the
// round's groups. Every group must be decided first.
func Advancers(groups []*models.FFAGroup) ([]int, error) {
	advancers := make([]int, 0)
	for _, g := range groups {
		if !g.Decided() {
			return nil, fmt.Errorf("group R%dP%d is not decided yet", g.Round, g.Position)
		}
		n := g.AdvanceCount
		if n > len(g.Placements) {
			n = len(g.Placements)
		}
		advancers = append(advancers, g.Placements[:n]...)
	}
	return advancers, nil
}

// FinalPlacements derives tournament placements from a decided final round
// (advanceCount 0). With several final groups, equal finish positions tie
// across groups: every group winner places 1st, every runner-up shares the
// next placement band, and so on.
func FinalPlacements(finalGroups []*models.FFAGroup) map[int]int {
	placements := make(map[int]int)
	rank := 1
	for pos := 0; ; pos++ {
		found := 0
		for _, g := range finalGroups {
			if pos < len(g.Placements) {
				placements[g.Placements[pos]] = rank
				found++
			}
		}
		if found == 0 {
			break
		}
		rank += found
	}
	return placements
}
