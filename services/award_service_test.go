package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/openleague/league-system/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAwardFixture() (AwardService, *fakePointEntryRepo) {
	repo := newFakePointEntryRepo()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewAwardService(repo, logger), repo
}

func awardTournament(id int) *models.Tournament {
	return &models.Tournament{
		ID:      id,
		EventID: 1,
		PlacementPointConfig: models.PlacementPointConfig{
			{Placement: 1, Points: 100},
			{Placement: 2, Points: 60},
		},
	}
}

func teamParticipants(ids ...int) []*models.TournamentParticipant {
	out := make([]*models.TournamentParticipant, len(ids))
	for i, id := range ids {
		out[i] = &models.TournamentParticipant{
			ID:           id,
			TournamentID: 1,
			Entrant:      models.TeamEntrant(10 + id),
		}
	}
	return out
}

func TestApplyAwards(t *testing.T) {
	service, repo := newAwardFixture()
	ctx := context.Background()
	tournament := awardTournament(1)
	participants := teamParticipants(1, 2, 3)

	entries, err := service.ApplyAwards(ctx, nil, tournament, participants, map[int]int{1: 1, 2: 2, 3: 3})
	require.NoError(t, err)
	require.Len(t, entries, 2, "third place earns nothing in this config")

	batch := entries[0].AwardBatchID
	require.NotEmpty(t, batch)
	for _, e := range entries {
		assert.Equal(t, batch, e.AwardBatchID)
		assert.Equal(t, 1, e.EventID)
		require.NotNil(t, e.TournamentID)
		assert.Equal(t, 1, *e.TournamentID)
		require.NotNil(t, e.TeamID)
	}
	assert.Equal(t, 100, entries[0].Points)
	assert.Equal(t, 60, entries[1].Points)

	stored, err := repo.ListByTournament(ctx, nil, 1)
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestApplyAwardsWithoutConfig(t *testing.T) {
	service, repo := newAwardFixture()
	tournament := &models.Tournament{ID: 1, EventID: 1}

	entries, err := service.ApplyAwards(context.Background(), nil, tournament, teamParticipants(1), map[int]int{1: 1})
	require.NoError(t, err)
	assert.Nil(t, entries)
	assert.Empty(t, repo.entries)
}

func TestRevertAwardsIsIdempotent(t *testing.T) {
	service, _ := newAwardFixture()
	ctx := context.Background()
	tournament := awardTournament(1)

	_, err := service.ApplyAwards(ctx, nil, tournament, teamParticipants(1, 2), map[int]int{1: 1, 2: 2})
	require.NoError(t, err)

	removed, err := service.RevertAwards(ctx, nil, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	removed, err = service.RevertAwards(ctx, nil, 1)
	require.NoError(t, err)
	assert.Zero(t, removed, "second revert removes nothing")
}

func TestApplyThenRevertThenReplay(t *testing.T) {
	service, repo := newAwardFixture()
	ctx := context.Background()
	tournament := awardTournament(1)
	participants := teamParticipants(1, 2)
	placements := map[int]int{1: 1, 2: 2}

	first, err := service.ApplyAwards(ctx, nil, tournament, participants, placements)
	require.NoError(t, err)
	_, err = service.RevertAwards(ctx, nil, 1)
	require.NoError(t, err)

	second, err := service.ApplyAwards(ctx, nil, tournament, participants, placements)
	require.NoError(t, err)
	require.Len(t, second, len(first))
	assert.NotEqual(t, first[0].AwardBatchID, second[0].AwardBatchID, "replay writes a fresh batch")

	stored, err := repo.ListByTournament(ctx, nil, 1)
	require.NoError(t, err)
	assert.Len(t, stored, len(second), "no duplicates after revert and replay")
}
