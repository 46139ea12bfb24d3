package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntrantValidate(t *testing.T) {
	testCases := []struct {
		name            string
		entrant         Entrant
		participantType ParticipantType
		wantErr         bool
	}{
		{"team in team tournament", TeamEntrant(1), ParticipantTeam, false},
		{"team in individual tournament", TeamEntrant(1), ParticipantIndividual, true},
		{"user in individual tournament", UserEntrant(1), ParticipantIndividual, false},
		{"user in team tournament", UserEntrant(1), ParticipantTeam, true},
		{"placeholder anywhere", PlaceholderEntrant(1), ParticipantTeam, false},
		{"partnership of two", PartnershipEntrant([]int{1, 2}), ParticipantIndividual, false},
		{"partnership of one", PartnershipEntrant([]int{1}), ParticipantIndividual, true},
		{"partnership with duplicate member", PartnershipEntrant([]int{1, 1}), ParticipantIndividual, true},
		{"unknown kind", Entrant{Kind: "robot"}, ParticipantIndividual, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.entrant.Validate(tc.participantType)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEntrantValidateRejectsMixedVariants(t *testing.T) {
	teamID, userID := 1, 2
	e := Entrant{Kind: EntrantTeam, TeamID: &teamID, UserID: &userID}
	assert.Error(t, e.Validate(ParticipantTeam))
}

func TestEntrantKey(t *testing.T) {
	assert.Equal(t, "team:5", TeamEntrant(5).Key())
	assert.Equal(t, "user:7", UserEntrant(7).Key())

	// member order must not matter
	a := PartnershipEntrant([]int{3, 1, 2})
	b := PartnershipEntrant([]int{2, 3, 1})
	assert.Equal(t, a.Key(), b.Key())
	assert.NotEqual(t, a.Key(), PartnershipEntrant([]int{1, 2}).Key())
}

func TestPlacementPointConfig(t *testing.T) {
	cfg := PlacementPointConfig{
		{Placement: 1, Points: 100},
		{Placement: 3, Points: 30},
	}
	assert.Equal(t, 100, cfg.PointsFor(1))
	assert.Equal(t, 0, cfg.PointsFor(2))
	assert.Equal(t, 30, cfg.PointsFor(3))
}

func TestBestOfForRound(t *testing.T) {
	tournament := &Tournament{
		BestOf:      3,
		RoundBestOf: RoundBestOf{3: 5},
	}
	assert.Equal(t, 3, tournament.BestOfForRound(1))
	assert.Equal(t, 5, tournament.BestOfForRound(3))
	assert.Equal(t, 2, tournament.WinsNeeded(1))
	assert.Equal(t, 3, tournament.WinsNeeded(3))
}

func TestMatchHelpers(t *testing.T) {
	p1, p2 := 1, 2
	m := &BracketMatch{Participant1ID: &p1, Participant2ID: &p2}

	assert.False(t, m.Decided())
	assert.False(t, m.Played())
	assert.Nil(t, m.LoserID())
	assert.Equal(t, 1, m.SlotOf(1))
	assert.Equal(t, 2, m.SlotOf(2))
	assert.Equal(t, 0, m.SlotOf(9))

	m.WinnerID = &p1
	require.True(t, m.Decided())
	require.NotNil(t, m.LoserID())
	assert.Equal(t, 2, *m.LoserID())
}
