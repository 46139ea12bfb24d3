package brackets

import (
	"context"
	"math/rand"
	"testing"

	"github.com/openleague/league-system/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testParticipants(n int, seeded bool) []*models.TournamentParticipant {
	participants := make([]*models.TournamentParticipant, n)
	for i := 0; i < n; i++ {
		p := &models.TournamentParticipant{
			ID:      i + 1,
			Entrant: models.UserEntrant(100 + i),
		}
		if seeded {
			seed := i + 1
			p.Seed = &seed
		}
		participants[i] = p
	}
	return participants
}

func manualTournament(id int) *models.Tournament {
	return &models.Tournament{
		ID:              id,
		Type:            models.TypeSingleElimination,
		SeedingType:     models.SeedingManual,
		ParticipantType: models.ParticipantIndividual,
		BestOf:          1,
	}
}

func TestSeedSlots(t *testing.T) {
	testCases := []struct {
		name     string
		size     int
		expected []int
	}{
		{name: "size 2", size: 2, expected: []int{0, 1}},
		{name: "size 4", size: 4, expected: []int{0, 3, 1, 2}},
		{name: "size 8", size: 8, expected: []int{0, 7, 3, 4, 1, 6, 2, 5}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, seedSlots(tc.size))
		})
	}
}

func TestBracketSize(t *testing.T) {
	assert.Equal(t, 2, bracketSize(2))
	assert.Equal(t, 4, bracketSize(3))
	assert.Equal(t, 8, bracketSize(5))
	assert.Equal(t, 8, bracketSize(8))
	assert.Equal(t, 16, bracketSize(9))
}

func TestGenerateEightParticipants(t *testing.T) {
	gen := NewSingleEliminationGenerator()
	matches, err := gen.Generate(context.Background(), GenerateParams{
		Tournament:   manualTournament(1),
		Participants: testParticipants(8, true),
	})
	require.NoError(t, err)
	require.Len(t, matches, 7)

	arena := NewArena(matches)
	assert.Equal(t, 3, arena.TotalRounds())

	// top seed meets the bottom seed in round one
	m := arena.Match(1, 1)
	require.NotNil(t, m.Participant1ID)
	require.NotNil(t, m.Participant2ID)
	assert.Equal(t, 1, *m.Participant1ID)
	assert.Equal(t, 8, *m.Participant2ID)

	// later rounds start empty
	for p := 1; p <= 2; p++ {
		next := arena.Match(2, p)
		assert.Nil(t, next.Participant1ID)
		assert.Nil(t, next.Participant2ID)
	}
	final := arena.Match(3, 1)
	require.NotNil(t, final)
	assert.False(t, arena.Complete())
}

func TestGenerateWithByes(t *testing.T) {
	gen := NewSingleEliminationGenerator()
	matches, err := gen.Generate(context.Background(), GenerateParams{
		Tournament:   manualTournament(1),
		Participants: testParticipants(5, true),
	})
	require.NoError(t, err)
	require.Len(t, matches, 7) // bracket of 8

	arena := NewArena(matches)
	byes := 0
	for p := 1; p <= 4; p++ {
		m := arena.Match(1, p)
		if m.IsBye {
			byes++
			require.NotNil(t, m.WinnerID, "bye must be decided on generation")
			assert.NotNil(t, m.Participant1ID)
			assert.Nil(t, m.Participant2ID)

			// bye recipient already waits in round two
			next := arena.Next(m)
			require.NotNil(t, next)
			slot := next.SlotOf(*m.WinnerID)
			assert.NotZero(t, slot, "bye winner must occupy a round-2 slot")
		}
	}
	assert.Equal(t, 3, byes)
}

func TestGenerateManualSeedingErrors(t *testing.T) {
	gen := NewSingleEliminationGenerator()

	t.Run("missing seed", func(t *testing.T) {
		participants := testParticipants(4, true)
		participants[2].Seed = nil
		_, err := gen.Generate(context.Background(), GenerateParams{
			Tournament:   manualTournament(1),
			Participants: participants,
		})
		assert.ErrorIs(t, err, ErrMissingSeed)
	})

	t.Run("seed collision", func(t *testing.T) {
		participants := testParticipants(4, true)
		*participants[3].Seed = 1
		_, err := gen.Generate(context.Background(), GenerateParams{
			Tournament:   manualTournament(1),
			Participants: participants,
		})
		assert.ErrorIs(t, err, ErrSeedCollision)
	})

	t.Run("not enough participants", func(t *testing.T) {
		_, err := gen.Generate(context.Background(), GenerateParams{
			Tournament:   manualTournament(1),
			Participants: testParticipants(1, true),
		})
		assert.ErrorIs(t, err, ErrNotEnoughParticipants)
	})
}

func TestGenerateRandomSeedingIsReproducible(t *testing.T) {
	gen := NewSingleEliminationGenerator()
	tournament := manualTournament(1)
	tournament.SeedingType = models.SeedingRandom

	first, err := gen.Generate(context.Background(), GenerateParams{
		Tournament:   tournament,
		Participants: testParticipants(8, false),
		Rand:         rand.New(rand.NewSource(42)),
	})
	require.NoError(t, err)

	second, err := gen.Generate(context.Background(), GenerateParams{
		Tournament:   tournament,
		Participants: testParticipants(8, false),
		Rand:         rand.New(rand.NewSource(42)),
	})
	require.NoError(t, err)

	for i := range first {
		assert.Equal(t, first[i].Participant1ID, second[i].Participant1ID)
		assert.Equal(t, first[i].Participant2ID, second[i].Participant2ID)
	}
}
