package brackets

import (
	"context"
	"testing"

	"github.com/openleague/league-system/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decidedMatch(round, position, winnerID, loserID int) *models.BracketMatch {
	return &models.BracketMatch{
		TournamentID:   1,
		Round:          round,
		Position:       position,
		Participant1ID: &winnerID,
		Participant2ID: &loserID,
		WinnerID:       &winnerID,
	}
}

func drawnMatch(round, position, p1, p2 int) *models.BracketMatch {
	return &models.BracketMatch{
		TournamentID:   1,
		Round:          round,
		Position:       position,
		Participant1ID: &p1,
		Participant2ID: &p2,
		IsDraw:         true,
	}
}

func byeMatch(round, position, participantID int) *models.BracketMatch {
	return &models.BracketMatch{
		TournamentID:   1,
		Round:          round,
		Position:       position,
		Participant1ID: &participantID,
		IsBye:          true,
		WinnerID:       &participantID,
	}
}

func TestComputeStandings(t *testing.T) {
	participants := testParticipants(4, false)
	history := []*models.BracketMatch{
		decidedMatch(1, 1, 1, 2),
		drawnMatch(1, 2, 3, 4),
		decidedMatch(2, 1, 1, 3),
		decidedMatch(2, 2, 4, 2),
	}

	standings := ComputeStandings(participants, history)
	require.Len(t, standings, 4)

	byID := make(map[int]*models.SwissStanding)
	for _, s := range standings {
		byID[s.ParticipantID] = s
	}

	assert.Equal(t, 2.0, byID[1].Points)
	assert.Equal(t, 2, byID[1].Wins)
	assert.Equal(t, 0.0, byID[2].Points)
	assert.Equal(t, 2, byID[2].Losses)
	assert.Equal(t, 0.5, byID[3].Points)
	assert.Equal(t, 1, byID[3].Draws)
	assert.Equal(t, 1.5, byID[4].Points)

	// Buchholz: sum of opponents' final points
	assert.Equal(t, 0.0+0.5, byID[1].Buchholz)  // played 2 and 3
	assert.Equal(t, 2.0+1.5, byID[2].Buchholz)  // played 1 and 4
	assert.Equal(t, 1.5+2.0, byID[3].Buchholz)  // played 4 and 1
	assert.Equal(t, 0.5+0.0, byID[4].Buchholz)  // played 3 and 2
}

func TestComputeStandingsByes(t *testing.T) {
	participants := testParticipants(3, false)
	history := []*models.BracketMatch{
		decidedMatch(1, 1, 1, 2),
		byeMatch(1, 2, 3),
	}

	standings := ComputeStandings(participants, history)
	byID := make(map[int]*models.SwissStanding)
	for _, s := range standings {
		byID[s.ParticipantID] = s
	}

	assert.Equal(t, 1.0, byID[3].Points, "bye scores a full point")
	assert.Equal(t, 1, byID[3].Byes)
	assert.Equal(t, 0.0, byID[3].Buchholz, "bye contributes no opponent")
}

func TestRankIsDeterministic(t *testing.T) {
	make4 := func() []*models.SwissStanding {
		return []*models.SwissStanding{
			{ParticipantID: 1, Points: 1, Buchholz: 2},
			{ParticipantID: 2, Points: 2, Buchholz: 1},
			{ParticipantID: 3, Points: 1, Buchholz: 2},
			{ParticipantID: 4, Points: 1, Buchholz: 3},
		}
	}

	ranked := Rank(make4())
	ids := []int{ranked[0].ParticipantID, ranked[1].ParticipantID, ranked[2].ParticipantID, ranked[3].ParticipantID}
	// points first, then buchholz, registration order breaking the full tie
	assert.Equal(t, []int{2, 4, 1, 3}, ids)

	again := Rank(make4())
	for i := range ranked {
		assert.Equal(t, ranked[i].ParticipantID, again[i].ParticipantID)
	}
}

func TestPairNextRoundAvoidsRematches(t *testing.T) {
	// after round one 1 beat 3 and 2 beat 4: top pairing 1v2, bottom 3v4
	history := []*models.BracketMatch{
		decidedMatch(1, 1, 1, 3),
		decidedMatch(1, 2, 2, 4),
	}
	participants := testParticipants(4, false)
	ranked := Rank(ComputeStandings(participants, history))

	matches, err := PairNextRound(ranked, history, 1, 2, false)
	require.NoError(t, err)
	require.Len(t, matches, 2)

	for _, m := range matches {
		pair := pairKey(*m.Participant1ID, *m.Participant2ID)
		assert.NotEqual(t, pairKey(1, 3), pair)
		assert.NotEqual(t, pairKey(2, 4), pair)
		assert.Equal(t, 2, m.Round)
	}
}

func TestPairNextRoundAssignsSingleBye(t *testing.T) {
	history := []*models.BracketMatch{
		decidedMatch(1, 1, 1, 2),
		decidedMatch(1, 2, 3, 4),
		byeMatch(1, 3, 5),
	}
	participants := testParticipants(5, false)
	ranked := Rank(ComputeStandings(participants, history))

	matches, err := PairNextRound(ranked, history, 1, 2, false)
	require.NoError(t, err)
	require.Len(t, matches, 3)

	var byes []*models.BracketMatch
	for _, m := range matches {
		if m.IsBye {
			byes = append(byes, m)
		}
	}
	require.Len(t, byes, 1, "odd field gets exactly one bye")
	assert.NotEqual(t, 5, *byes[0].Participant1ID, "participant 5 already had a bye")
	require.NotNil(t, byes[0].WinnerID)
}

func TestPairNextRoundUnsatisfiable(t *testing.T) {
	// two participants who already met: no rematch-free pairing exists
	history := []*models.BracketMatch{
		decidedMatch(1, 1, 1, 2),
	}
	participants := testParticipants(2, false)
	ranked := Rank(ComputeStandings(participants, history))

	_, err := PairNextRound(ranked, history, 1, 2, false)
	assert.ErrorIs(t, err, ErrUnsatisfiablePairing)

	matches, err := PairNextRound(ranked, history, 1, 2, true)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.False(t, matches[0].IsBye)
}

func TestPairNextRoundTooFewParticipants(t *testing.T) {
	_, err := PairNextRound(nil, nil, 1, 2, false)
	assert.ErrorIs(t, err, ErrNotEnoughParticipants)
}

func TestSwissGeneratorFirstRound(t *testing.T) {
	gen := NewSwissGenerator()
	tournament := &models.Tournament{ID: 1, Type: models.TypeSwiss}

	t.Run("even field", func(t *testing.T) {
		matches, err := gen.Generate(context.Background(), GenerateParams{
			Tournament:   tournament,
			Participants: testParticipants(6, false),
		})
		require.NoError(t, err)
		require.Len(t, matches, 3)
		for _, m := range matches {
			assert.Equal(t, 1, m.Round)
			assert.False(t, m.IsBye)
		}
	})

	t.Run("odd field gets a bye", func(t *testing.T) {
		matches, err := gen.Generate(context.Background(), GenerateParams{
			Tournament:   tournament,
			Participants: testParticipants(5, false),
		})
		require.NoError(t, err)
		require.Len(t, matches, 3)
		assert.True(t, matches[2].IsBye)
	})
}
