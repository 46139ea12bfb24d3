package brackets

import (
	"context"
	"fmt"
	"math/bits"
	"math/rand"
	"sort"
	"time"

	"github.com/openleague/league-system/models"
)

type SingleEliminationGenerator struct{}

func NewSingleEliminationGenerator() Generator {
	return &SingleEliminationGenerator{}
}

func (g *SingleEliminationGenerator) Name() string {
	return "SingleElimination"
}

// bracketSize rounds up to the next power of two.
func bracketSize(n int) int {
	if n <= 1 {
		return n
	}
	return 1 << bits.Len(uint(n-1))
}

func totalRoundsFor(size int) int {
	return bits.Len(uint(size)) - 1
}

// seedSlots returns the bracket slot order for the given size, built by the
// standard complement expansion: 1 meets size, 2 meets size-1, and so on,
// recursively, so the top seeds cannot meet before the late rounds. Values
// are zero-based seed indexes; indexes >= the participant count are byes.
func seedSlots(size int) []int {
	slots := []int{0}
	for len(slots) < size {
		doubled := len(slots) * 2
		next := make([]int, 0, doubled)
		for _, s := range slots {
			next = append(next, s, doubled-1-s)
		}
		slots = next
	}
	return slots
}

// orderParticipants returns participants in seed order. Random seeding
// shuffles a copy; manual seeding sorts by the assigned seed numbers and
// rejects missing or colliding seeds.
func orderParticipants(params GenerateParams) ([]*models.TournamentParticipant, error) {
	src := params.Participants
	ordered := make([]*models.TournamentParticipant, len(src))
	copy(ordered, src)

	if params.Tournament.SeedingType == models.SeedingManual {
		seen := make(map[int]int, len(ordered))
		for _, p := range ordered {
			if p.Seed == nil {
				return nil, fmt.Errorf("%w: participant %d", ErrMissingSeed, p.ID)
			}
			if prev, ok := seen[*p.Seed]; ok {
				return nil, fmt.Errorf("%w: seed %d assigned to participants %d and %d", ErrSeedCollision, *p.Seed, prev, p.ID)
			}
			seen[*p.Seed] = p.ID
		}
		sort.SliceStable(ordered, func(i, j int) bool {
			return *ordered[i].Seed < *ordered[j].Seed
		})
		return ordered, nil
	}

	rng := params.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	rng.Shuffle(len(ordered), func(i, j int) {
		ordered[i], ordered[j] = ordered[j], ordered[i]
	})
	return ordered, nil
}

// Generate builds every round of a single-elimination bracket as an arena of
// (round, position) rows. Matches short a participant become byes: they are
// decided on the spot and their participant is propagated into round two, so
// a bye never enters the result-recording flow.
func (g *SingleEliminationGenerator) Generate(ctx context.Context, params GenerateParams) ([]*models.BracketMatch, error) {
	n := len(params.Participants)
	if n < 2 {
		return nil, fmt.Errorf("%w: have %d", ErrNotEnoughParticipants, n)
	}

	ordered, err := orderParticipants(params)
	if err != nil {
		return nil, err
	}

	size := bracketSize(n)
	rounds := totalRoundsFor(size)
	slots := seedSlots(size)
	tournamentID := params.Tournament.ID

	matches := make([]*models.BracketMatch, 0, size-1)
	for r := 1; r <= rounds; r++ {
		matchesInRound := size >> uint(r)
		for p := 1; p <= matchesInRound; p++ {
			matches = append(matches, &models.BracketMatch{
				TournamentID: tournamentID,
				Round:        r,
				Position:     p,
			})
		}
	}
	arena := NewArena(matches)

	for p := 1; p <= size/2; p++ {
		m := arena.Match(1, p)
		i1, i2 := slots[2*p-2], slots[2*p-1]
		if i1 < n {
			id := ordered[i1].ID
			m.Participant1ID = &id
		}
		if i2 < n {
			id := ordered[i2].ID
			m.Participant2ID = &id
		}

		switch {
		case m.Participant1ID != nil && m.Participant2ID != nil:
			// playable round-1 match
		case m.Participant1ID != nil:
			m.IsBye = true
			m.WinnerID = m.Participant1ID
			arena.propagateWinner(m)
		case m.Participant2ID != nil:
			// keep the lone participant in slot 1 for byes
			m.Participant1ID, m.Participant2ID = m.Participant2ID, nil
			m.IsBye = true
			m.WinnerID = m.Participant1ID
			arena.propagateWinner(m)
		default:
			return nil, fmt.Errorf("bracket slotting produced an empty round-1 match at position %d", p)
		}
	}

	return matches, nil
}
