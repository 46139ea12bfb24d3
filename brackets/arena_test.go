package brackets

import (
	"context"
	"testing"

	"github.com/openleague/league-system/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateBracket(t *testing.T, n int) (*Arena, []*models.BracketMatch) {
	t.Helper()
	gen := NewSingleEliminationGenerator()
	matches, err := gen.Generate(context.Background(), GenerateParams{
		Tournament:   manualTournament(1),
		Participants: testParticipants(n, true),
	})
	require.NoError(t, err)
	return NewArena(matches), matches
}

func winGame(slot int) models.GameResult {
	score1, score2 := 1, 0
	if slot == 2 {
		score1, score2 = 0, 1
	}
	return models.GameResult{WinnerSlot: slot, Participant1Score: score1, Participant2Score: score2}
}

func TestApplyGameSingleGameSeries(t *testing.T) {
	arena, _ := generateBracket(t, 4)
	m := arena.Match(1, 1) // seed 1 vs seed 4

	changed, decided, err := arena.ApplyGame(m, winGame(1), 1)
	require.NoError(t, err)
	assert.True(t, decided)
	require.Len(t, changed, 2, "decided match and its next-round slot change")

	require.NotNil(t, m.WinnerID)
	assert.Equal(t, *m.Participant1ID, *m.WinnerID)

	final := arena.Match(2, 1)
	require.NotNil(t, final.Participant1ID, "winner of position 1 lands in slot 1")
	assert.Equal(t, *m.WinnerID, *final.Participant1ID)
}

func TestApplyGameBestOfThree(t *testing.T) {
	arena, _ := generateBracket(t, 4)
	m := arena.Match(1, 1)
	winsNeeded := 2

	_, decided, err := arena.ApplyGame(m, winGame(1), winsNeeded)
	require.NoError(t, err)
	assert.False(t, decided)
	assert.Nil(t, m.WinnerID)

	_, decided, err = arena.ApplyGame(m, winGame(2), winsNeeded)
	require.NoError(t, err)
	assert.False(t, decided)

	_, decided, err = arena.ApplyGame(m, winGame(1), winsNeeded)
	require.NoError(t, err)
	assert.True(t, decided)
	assert.Equal(t, 2, m.Participant1Wins)
	assert.Equal(t, 1, m.Participant2Wins)
	require.Len(t, m.Games, 3)
}

func TestApplyGameErrors(t *testing.T) {
	arena, _ := generateBracket(t, 4)
	m := arena.Match(1, 1)

	t.Run("invalid winner slot", func(t *testing.T) {
		_, _, err := arena.ApplyGame(m, models.GameResult{WinnerSlot: 3}, 1)
		assert.ErrorIs(t, err, ErrInvalidOutcome)
	})

	t.Run("already decided", func(t *testing.T) {
		_, _, err := arena.ApplyGame(m, winGame(1), 1)
		require.NoError(t, err)
		_, _, err = arena.ApplyGame(m, winGame(1), 1)
		assert.ErrorIs(t, err, ErrMatchAlreadyDecided)
	})

	t.Run("missing participants", func(t *testing.T) {
		final := arena.Match(2, 1)
		_, _, err := arena.ApplyGame(final, winGame(1), 1)
		assert.ErrorIs(t, err, ErrMatchMissingParticipants)
	})
}

func TestUndoLastResultIsLeftInverse(t *testing.T) {
	arena, _ := generateBracket(t, 4)
	m := arena.Match(1, 1)

	before := *m
	_, _, err := arena.ApplyGame(m, winGame(1), 1)
	require.NoError(t, err)

	changed, err := arena.UndoLastResult(m)
	require.NoError(t, err)
	require.Len(t, changed, 2)

	assert.Nil(t, m.WinnerID)
	assert.Equal(t, before.Participant1Wins, m.Participant1Wins)
	assert.Equal(t, before.Participant1Score, m.Participant1Score)
	assert.Empty(t, m.Games)

	next := arena.Match(2, 1)
	assert.Nil(t, next.Participant1ID, "winner must be retracted from the next round")
}

func TestUndoPartialSeries(t *testing.T) {
	arena, _ := generateBracket(t, 4)
	m := arena.Match(1, 1)

	_, _, err := arena.ApplyGame(m, winGame(1), 2)
	require.NoError(t, err)
	_, _, err = arena.ApplyGame(m, winGame(2), 2)
	require.NoError(t, err)

	changed, err := arena.UndoLastResult(m)
	require.NoError(t, err)
	require.Len(t, changed, 1, "undecided match undo touches only itself")
	assert.Equal(t, 1, m.Participant1Wins)
	assert.Equal(t, 0, m.Participant2Wins)
	require.Len(t, m.Games, 1)
}

func TestUndoDrawIsLeftInverse(t *testing.T) {
	p1, p2 := 1, 2
	m := &models.BracketMatch{Round: 1, Position: 1, Participant1ID: &p1, Participant2ID: &p2}
	arena := NewArena([]*models.BracketMatch{m})

	require.NoError(t, arena.RecordDraw(m, 3, 3))
	require.True(t, m.IsDraw)
	require.Equal(t, 3, m.Participant1Score)

	changed, err := arena.UndoLastResult(m)
	require.NoError(t, err)
	require.Len(t, changed, 1)
	assert.False(t, m.IsDraw)
	assert.Zero(t, m.Participant1Score, "undo must restore the pre-draw score")
	assert.Zero(t, m.Participant2Score)
	assert.Empty(t, m.Games)

	// re-recording after undo must not accumulate scores
	require.NoError(t, arena.RecordDraw(m, 3, 3))
	assert.Equal(t, 3, m.Participant1Score)
	assert.Equal(t, 3, m.Participant2Score)
}

func TestUndoRefusedWhenDownstreamPlayed(t *testing.T) {
	arena, _ := generateBracket(t, 4)
	m1 := arena.Match(1, 1)
	m2 := arena.Match(1, 2)

	_, _, err := arena.ApplyGame(m1, winGame(1), 1)
	require.NoError(t, err)
	_, _, err = arena.ApplyGame(m2, winGame(1), 1)
	require.NoError(t, err)

	final := arena.Match(2, 1)
	_, _, err = arena.ApplyGame(final, winGame(1), 1)
	require.NoError(t, err)

	_, err = arena.UndoLastResult(m1)
	assert.ErrorIs(t, err, ErrDownstreamPlayed)

	// undoing the final first unblocks the semifinal
	_, err = arena.UndoLastResult(final)
	require.NoError(t, err)
	_, err = arena.UndoLastResult(m1)
	assert.NoError(t, err)
}

func TestUndoNothingRecorded(t *testing.T) {
	arena, _ := generateBracket(t, 4)
	_, err := arena.UndoLastResult(arena.Match(1, 1))
	assert.ErrorIs(t, err, ErrNothingToUndo)
}

func TestUndoByeRefused(t *testing.T) {
	arena, _ := generateBracket(t, 5)
	var bye *models.BracketMatch
	for p := 1; p <= 4; p++ {
		if m := arena.Match(1, p); m.IsBye {
			bye = m
			break
		}
	}
	require.NotNil(t, bye)
	_, err := arena.UndoLastResult(bye)
	assert.ErrorIs(t, err, ErrNothingToUndo)
}

func TestForfeit(t *testing.T) {
	arena, _ := generateBracket(t, 4)
	m := arena.Match(1, 1)

	changed, err := arena.Forfeit(m, 1)
	require.NoError(t, err)
	require.Len(t, changed, 2)
	assert.True(t, m.IsForfeit)
	require.NotNil(t, m.WinnerID)
	assert.Equal(t, *m.Participant2ID, *m.WinnerID)

	// forfeits undo as a whole
	_, err = arena.UndoLastResult(m)
	require.NoError(t, err)
	assert.False(t, m.IsForfeit)
	assert.Nil(t, m.WinnerID)
}

func TestChampionAndPlacements(t *testing.T) {
	arena, _ := generateBracket(t, 4)

	// seed 1 beats seed 4, seed 2 beats seed 3, seed 1 wins the final
	m1, m2 := arena.Match(1, 1), arena.Match(1, 2)
	_, _, err := arena.ApplyGame(m1, winGame(1), 1)
	require.NoError(t, err)
	_, _, err = arena.ApplyGame(m2, winGame(1), 1)
	require.NoError(t, err)

	final := arena.Match(2, 1)
	require.NotNil(t, final.Participant1ID)
	require.NotNil(t, final.Participant2ID)
	_, _, err = arena.ApplyGame(final, winGame(1), 1)
	require.NoError(t, err)

	require.True(t, arena.Complete())
	champion := arena.Champion()
	require.NotNil(t, champion)

	placements := arena.Placements()
	assert.Equal(t, 1, placements[*champion])
	assert.Equal(t, 2, placements[*final.LoserID()])
	// both semifinal losers share third
	assert.Equal(t, 3, placements[*m1.LoserID()])
	assert.Equal(t, 3, placements[*m2.LoserID()])
}

func TestPlacementsEmptyUntilComplete(t *testing.T) {
	arena, _ := generateBracket(t, 4)
	assert.Empty(t, arena.Placements())
	assert.Nil(t, arena.Champion())
}
