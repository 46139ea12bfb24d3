package services

import (
	"context"
	"testing"

	"github.com/openleague/league-system/models"
	"github.com/openleague/league-system/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTeamRepo struct {
	teams map[int]models.Team
}

func newFakeTeamRepo() *fakeTeamRepo {
	return &fakeTeamRepo{teams: make(map[int]models.Team)}
}

func (r *fakeTeamRepo) Create(ctx context.Context, team *models.Team) error {
	team.ID = len(r.teams) + 1
	r.teams[team.ID] = *team
	return nil
}

func (r *fakeTeamRepo) GetByID(ctx context.Context, id int) (*models.Team, error) {
	team, ok := r.teams[id]
	if !ok {
		return nil, repositories.ErrTeamNotFound
	}
	copied := team
	return &copied, nil
}

func (r *fakeTeamRepo) ListByEvent(ctx context.Context, eventID int) ([]models.Team, error) {
	out := make([]models.Team, 0)
	for _, team := range r.teams {
		if team.EventID == eventID {
			out = append(out, team)
		}
	}
	return out, nil
}

func (r *fakeTeamRepo) UpdateLogoKey(ctx context.Context, teamID int, logoKey *string) error {
	team, ok := r.teams[teamID]
	if !ok {
		return repositories.ErrTeamNotFound
	}
	team.LogoKey = logoKey
	r.teams[teamID] = team
	return nil
}

func (r *fakeTeamRepo) Delete(ctx context.Context, id int) error {
	delete(r.teams, id)
	return nil
}

func TestResolveDisplayNames(t *testing.T) {
	ctx := context.Background()
	teams := newFakeTeamRepo()
	users := newFakeUserRepo()

	team := &models.Team{EventID: 1, Name: "Night Owls"}
	require.NoError(t, teams.Create(ctx, team))
	user := &models.User{FirstName: "Ada", LastName: "Nowak", Email: "ada@example.com"}
	require.NoError(t, users.Create(ctx, user))

	view := NewViewService(nil, nil, nil, nil, nil, teams, users).(*viewService)

	participants := []*models.TournamentParticipant{
		{ID: 1, Entrant: models.TeamEntrant(team.ID)},
		{ID: 2, Entrant: models.UserEntrant(user.ID)},
		{ID: 3, Entrant: models.PlaceholderEntrant(7)},
		// rows with a dangling reference must not panic the read path
		{ID: 4, Entrant: models.Entrant{Kind: models.EntrantTeam}},
		{ID: 5, Entrant: models.Entrant{Kind: models.EntrantUser}},
		{ID: 6, Entrant: models.Entrant{Kind: models.EntrantPlaceholder}},
	}

	require.NoError(t, view.resolveDisplayNames(ctx, participants))

	assert.Equal(t, "Night Owls", participants[0].DisplayName)
	assert.Equal(t, "Ada Nowak", participants[1].DisplayName)
	assert.Equal(t, "TBD #7", participants[2].DisplayName)
	assert.Equal(t, "Entrant #4", participants[3].DisplayName)
	assert.Equal(t, "Entrant #5", participants[4].DisplayName)
	assert.Equal(t, "Entrant #6", participants[5].DisplayName)
}
