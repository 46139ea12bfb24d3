package services

import (
	"context"
	"fmt"

	"github.com/openleague/league-system/brackets"
	"github.com/openleague/league-system/models"
	"github.com/openleague/league-system/repositories"
	"golang.org/x/sync/errgroup"
)

// ViewService assembles read-side projections: the full tournament view with
// its participants, matches and groups, plus the live Swiss table.
type ViewService interface {
	TournamentView(ctx context.Context, tournamentID int) (*models.Tournament, error)
	SwissStandings(ctx context.Context, tournamentID int) ([]*models.SwissStanding, error)
	Leaderboard(ctx context.Context, eventID int) ([]models.LeaderboardRow, error)
}

type viewService struct {
	tournamentRepo  repositories.TournamentRepository
	participantRepo repositories.ParticipantRepository
	matchRepo       repositories.MatchRepository
	groupRepo       repositories.FFAGroupRepository
	pointEntryRepo  repositories.PointEntryRepository
	teamRepo        repositories.TeamRepository
	userRepo        repositories.UserRepository
}

func NewViewService(
	tournamentRepo repositories.TournamentRepository,
	participantRepo repositories.ParticipantRepository,
	matchRepo repositories.MatchRepository,
	groupRepo repositories.FFAGroupRepository,
	pointEntryRepo repositories.PointEntryRepository,
	teamRepo repositories.TeamRepository,
	userRepo repositories.UserRepository,
) ViewService {
	return &viewService{
		tournamentRepo:  tournamentRepo,
		participantRepo: participantRepo,
		matchRepo:       matchRepo,
		groupRepo:       groupRepo,
		pointEntryRepo:  pointEntryRepo,
		teamRepo:        teamRepo,
		userRepo:        userRepo,
	}
}

// TournamentView loads the tournament and its linked rows concurrently.
func (s *viewService) TournamentView(ctx context.Context, tournamentID int) (*models.Tournament, error) {
	t, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID)
	if err != nil {
		return nil, err
	}

	var (
		participants []*models.TournamentParticipant
		matches      []*models.BracketMatch
		groups       []*models.FFAGroup
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var loadErr error
		participants, loadErr = s.participantRepo.ListByTournament(gctx, nil, tournamentID)
		return loadErr
	})
	g.Go(func() error {
		var loadErr error
		matches, loadErr = s.matchRepo.ListByTournament(gctx, nil, tournamentID)
		return loadErr
	})
	if t.Type == models.TypeFFAGroupStage {
		g.Go(func() error {
			var loadErr error
			groups, loadErr = s.groupRepo.ListByTournament(gctx, nil, tournamentID)
			return loadErr
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := s.resolveDisplayNames(ctx, participants); err != nil {
		return nil, err
	}

	t.Participants = make([]models.TournamentParticipant, len(participants))
	for i, p := range participants {
		t.Participants[i] = *p
	}
	t.Matches = make([]models.BracketMatch, len(matches))
	for i, m := range matches {
		t.Matches[i] = *m
	}
	t.Groups = make([]models.FFAGroup, len(groups))
	for i, gr := range groups {
		t.Groups[i] = *gr
	}
	return t, nil
}

// resolveDisplayNames fills participant display names from the linked team
// or user rows. Placeholders and partnerships fall back to generic labels, as
// does any row whose entrant reference is missing; a read endpoint must not
// fail over one malformed row.
func (s *viewService) resolveDisplayNames(ctx context.Context, participants []*models.TournamentParticipant) error {
	for _, p := range participants {
		switch p.Entrant.Kind {
		case models.EntrantTeam:
			if p.Entrant.TeamID == nil {
				p.DisplayName = fmt.Sprintf("Entrant #%d", p.ID)
				continue
			}
			team, err := s.teamRepo.GetByID(ctx, *p.Entrant.TeamID)
			if err != nil {
				return err
			}
			p.DisplayName = team.Name
		case models.EntrantUser:
			if p.Entrant.UserID == nil {
				p.DisplayName = fmt.Sprintf("Entrant #%d", p.ID)
				continue
			}
			user, err := s.userRepo.GetByID(ctx, *p.Entrant.UserID)
			if err != nil {
				return err
			}
			if user.Nickname != nil && *user.Nickname != "" {
				p.DisplayName = *user.Nickname
			} else {
				p.DisplayName = user.FirstName + " " + user.LastName
			}
		case models.EntrantPlaceholder:
			if p.Entrant.PlaceholderID == nil {
				p.DisplayName = fmt.Sprintf("Entrant #%d", p.ID)
				continue
			}
			p.DisplayName = fmt.Sprintf("TBD #%d", *p.Entrant.PlaceholderID)
		case models.EntrantPartnership:
			names := ""
			for i, memberID := range p.Entrant.MemberIDs {
				user, err := s.userRepo.GetByID(ctx, memberID)
				if err != nil {
					return err
				}
				if i > 0 {
					names += " / "
				}
				if user.Nickname != nil && *user.Nickname != "" {
					names += *user.Nickname
				} else {
					names += user.FirstName + " " + user.LastName
				}
			}
			p.DisplayName = names
		}
	}
	return nil
}

// SwissStandings computes the ranked table for an in-progress or completed
// Swiss tournament.
func (s *viewService) SwissStandings(ctx context.Context, tournamentID int) ([]*models.SwissStanding, error) {
	t, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID)
	if err != nil {
		return nil, err
	}
	if t.Type != models.TypeSwiss {
		return nil, fmt.Errorf("%w: standings only exist for swiss tournaments", ErrValidation)
	}

	var (
		participants []*models.TournamentParticipant
		matches      []*models.BracketMatch
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var loadErr error
		participants, loadErr = s.participantRepo.ListByTournament(gctx, nil, tournamentID)
		return loadErr
	})
	g.Go(func() error {
		var loadErr error
		matches, loadErr = s.matchRepo.ListByTournament(gctx, nil, tournamentID)
		return loadErr
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := s.resolveDisplayNames(ctx, participants); err != nil {
		return nil, err
	}

	return brackets.Rank(brackets.ComputeStandings(participants, matches)), nil
}

func (s *viewService) Leaderboard(ctx context.Context, eventID int) ([]models.LeaderboardRow, error) {
	return s.pointEntryRepo.LeaderboardByEvent(ctx, nil, eventID)
}
