package services

import (
	"context"
	"fmt"
	"log/slog"
	"math/bits"
	"math/rand"

	"github.com/openleague/league-system/brackets"
	"github.com/openleague/league-system/models"
	"github.com/openleague/league-system/repositories"
)

// TournamentService owns the tournament lifecycle. Every mutating operation
// runs inside one transaction and takes the tournament's row lock first, so
// concurrent requests against the same tournament serialize instead of
// interleaving.
type TournamentService interface {
	Create(ctx context.Context, t *models.Tournament) error
	Get(ctx context.Context, id int) (*models.Tournament, error)
	ListByEvent(ctx context.Context, eventID int) ([]models.Tournament, error)
	Delete(ctx context.Context, id int) error

	AddParticipant(ctx context.Context, tournamentID int, entrant models.Entrant, seed *int) (*models.TournamentParticipant, error)
	RemoveParticipant(ctx context.Context, tournamentID, participantID int) error
	SetSeeds(ctx context.Context, tournamentID int, seeds map[int]int) error

	Start(ctx context.Context, tournamentID int) error
	RecordMatchResult(ctx context.Context, tournamentID, matchID int, game models.GameResult) error
	RecordDraw(ctx context.Context, tournamentID, matchID, p1Score, p2Score int) error
	ForfeitMatch(ctx context.Context, tournamentID, matchID, forfeitingSlot int) error
	UndoMatchResult(ctx context.Context, tournamentID, matchID int) error
	RecordGroupResult(ctx context.Context, tournamentID, groupID int, placements []int) error
	AdvanceRound(ctx context.Context, tournamentID int, allowRematch bool) error
	Reopen(ctx context.Context, tournamentID int) error
}

type tournamentService struct {
	tx              repositories.TxRunner
	tournamentRepo  repositories.TournamentRepository
	participantRepo repositories.ParticipantRepository
	matchRepo       repositories.MatchRepository
	groupRepo       repositories.FFAGroupRepository
	awards          AwardService
	hub             *brackets.Hub
	logger          *slog.Logger

	// rng seeds random bracket orderings; nil lets the generator seed itself.
	rng *rand.Rand
}

func NewTournamentService(
	tx repositories.TxRunner,
	tournamentRepo repositories.TournamentRepository,
	participantRepo repositories.ParticipantRepository,
	matchRepo repositories.MatchRepository,
	groupRepo repositories.FFAGroupRepository,
	awards AwardService,
	hub *brackets.Hub,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		tx:              tx,
		tournamentRepo:  tournamentRepo,
		participantRepo: participantRepo,
		matchRepo:       matchRepo,
		groupRepo:       groupRepo,
		awards:          awards,
		hub:             hub,
		logger:          logger,
	}
}

func (s *tournamentService) broadcast(tournamentID int, eventType string, payload interface{}) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastToRoom(roomID(tournamentID), brackets.RoomMessage{
		Type:    eventType,
		Payload: payload,
		RoomID:  roomID(tournamentID),
	})
}

func (s *tournamentService) Create(ctx context.Context, t *models.Tournament) error {
	if err := validateTournamentConfig(t); err != nil {
		return err
	}
	t.Status = models.TournamentDraft
	t.CurrentRound = 0

	return s.tx.InTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.tournamentRepo.Create(ctx, exec, t)
	})
}

func validateTournamentConfig(t *models.Tournament) error {
	if t.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	switch t.Type {
	case models.TypeSingleElimination, models.TypeSwiss:
	case models.TypeFFAGroupStage:
		if t.GroupSize == nil || *t.GroupSize < 2 {
			return fmt.Errorf("%w: ffa group stage requires a group size of at least 2", ErrValidation)
		}
		if t.AdvanceCount == nil || *t.AdvanceCount < 0 || *t.AdvanceCount >= *t.GroupSize {
			return fmt.Errorf("%w: advance count must be between 0 and group size - 1", ErrValidation)
		}
	default:
		return fmt.Errorf("%w: unknown tournament type %q", ErrValidation, t.Type)
	}
	switch t.SeedingType {
	case models.SeedingRandom, models.SeedingManual:
	case "":
		t.SeedingType = models.SeedingRandom
	default:
		return fmt.Errorf("%w: unknown seeding type %q", ErrValidation, t.SeedingType)
	}
	switch t.ParticipantType {
	case models.ParticipantIndividual, models.ParticipantTeam:
	default:
		return fmt.Errorf("%w: unknown participant type %q", ErrValidation, t.ParticipantType)
	}
	if t.BestOf <= 0 {
		t.BestOf = 1
	}
	if t.BestOf%2 == 0 {
		return fmt.Errorf("%w: best-of must be odd, got %d", ErrValidation, t.BestOf)
	}
	for round, bo := range t.RoundBestOf {
		if round < 1 || bo <= 0 || bo%2 == 0 {
			return fmt.Errorf("%w: round %d best-of override %d is invalid", ErrValidation, round, bo)
		}
	}
	seen := make(map[int]bool, len(t.PlacementPointConfig))
	for _, pp := range t.PlacementPointConfig {
		if pp.Placement < 1 {
			return fmt.Errorf("%w: placement %d in point config", ErrValidation, pp.Placement)
		}
		if seen[pp.Placement] {
			return fmt.Errorf("%w: placement %d configured twice", ErrValidation, pp.Placement)
		}
		seen[pp.Placement] = true
	}
	return nil
}

func (s *tournamentService) Get(ctx context.Context, id int) (*models.Tournament, error) {
	return s.tournamentRepo.GetByID(ctx, nil, id)
}

func (s *tournamentService) ListByEvent(ctx context.Context, eventID int) ([]models.Tournament, error) {
	return s.tournamentRepo.ListByEvent(ctx, nil, eventID)
}

func (s *tournamentService) Delete(ctx context.Context, id int) error {
	return s.tx.InTx(ctx, func(exec repositories.SQLExecutor) error {
		if _, err := s.tournamentRepo.GetByIDForUpdate(ctx, exec, id); err != nil {
			return err
		}
		if _, err := s.awards.RevertAwards(ctx, exec, id); err != nil {
			return err
		}
		if err := s.matchRepo.DeleteByTournament(ctx, exec, id); err != nil {
			return err
		}
		if err := s.groupRepo.DeleteByTournament(ctx, exec, id); err != nil {
			return err
		}
		if err := s.participantRepo.DeleteByTournament(ctx, exec, id); err != nil {
			return err
		}
		return s.tournamentRepo.Delete(ctx, exec, id)
	})
}

func (s *tournamentService) AddParticipant(ctx context.Context, tournamentID int, entrant models.Entrant, seed *int) (*models.TournamentParticipant, error) {
	var created *models.TournamentParticipant
	err := s.tx.InTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.tournamentRepo.GetByIDForUpdate(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		if t.Status != models.TournamentDraft {
			return fmt.Errorf("%w: participants can only change in draft", ErrNotEditable)
		}
		if err := entrant.Validate(t.ParticipantType); err != nil {
			return fmt.Errorf("%w: %v", ErrValidation, err)
		}

		existing, err := s.participantRepo.ListByTournament(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		key := entrant.Key()
		for _, p := range existing {
			if p.Entrant.Key() == key {
				return ErrDuplicateEntrant
			}
			if seed != nil && p.Seed != nil && *p.Seed == *seed {
				return repositories.ErrParticipantSeedConflict
			}
		}

		created = &models.TournamentParticipant{
			TournamentID: tournamentID,
			Seed:         seed,
			Entrant:      entrant,
		}
		return s.participantRepo.Create(ctx, exec, created)
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *tournamentService) RemoveParticipant(ctx context.Context, tournamentID, participantID int) error {
	return s.tx.InTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.tournamentRepo.GetByIDForUpdate(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		if t.Status != models.TournamentDraft {
			return fmt.Errorf("%w: participants can only change in draft", ErrNotEditable)
		}
		p, err := s.participantRepo.GetByID(ctx, exec, participantID)
		if err != nil {
			return err
		}
		if p.TournamentID != tournamentID {
			return repositories.ErrParticipantNotFound
		}
		return s.participantRepo.Delete(ctx, exec, participantID)
	})
}

// SetSeeds assigns manual seed numbers in one shot. The mapping must be a
// bijection onto 1..N over the given participants, checked before any row is
// touched.
func (s *tournamentService) SetSeeds(ctx context.Context, tournamentID int, seeds map[int]int) error {
	return s.tx.InTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.tournamentRepo.GetByIDForUpdate(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		if t.Status != models.TournamentDraft {
			return fmt.Errorf("%w: seeds can only change in draft", ErrNotEditable)
		}

		participants, err := s.participantRepo.ListByTournament(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		byID := make(map[int]bool, len(participants))
		for _, p := range participants {
			byID[p.ID] = true
		}
		used := make(map[int]int, len(seeds))
		for participantID, seed := range seeds {
			if !byID[participantID] {
				return fmt.Errorf("%w: participant %d is not in tournament %d", ErrValidation, participantID, tournamentID)
			}
			if seed < 1 || seed > len(participants) {
				return fmt.Errorf("%w: seed %d out of range 1..%d", ErrValidation, seed, len(participants))
			}
			if prev, ok := used[seed]; ok {
				return fmt.Errorf("%w: seed %d assigned to participants %d and %d", ErrValidation, seed, prev, participantID)
			}
			used[seed] = participantID
		}

		// Clear first so reshuffles cannot trip the unique seed constraint.
		for participantID := range seeds {
			if err := s.participantRepo.UpdateSeed(ctx, exec, participantID, nil); err != nil {
				return err
			}
		}
		for participantID, seed := range seeds {
			if err := s.participantRepo.UpdateSeed(ctx, exec, participantID, intPtr(seed)); err != nil {
				return err
			}
		}
		return nil
	})
}

// defaultSwissRounds is ceil(log2(n)), the smallest round count that can
// separate an undefeated winner.
func defaultSwissRounds(n int) int {
	if n <= 1 {
		return 1
	}
	return bits.Len(uint(n - 1))
}

// Start moves a draft tournament into play: the bracket, first Swiss round
// or first group round is generated and persisted atomically with the status
// flip.
func (s *tournamentService) Start(ctx context.Context, tournamentID int) error {
	err := s.tx.InTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.tournamentRepo.GetByIDForUpdate(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		if !canTransition(t.Status, models.TournamentInProgress) || t.Status != models.TournamentDraft {
			return fmt.Errorf("%w: cannot start from %s", ErrInvalidTransition, t.Status)
		}

		participants, err := s.participantRepo.ListByTournament(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		if len(participants) < 2 {
			return fmt.Errorf("%w: have %d", brackets.ErrNotEnoughParticipants, len(participants))
		}

		var totalRounds *int
		switch t.Type {
		case models.TypeSingleElimination:
			gen := brackets.NewSingleEliminationGenerator()
			matches, genErr := gen.Generate(ctx, brackets.GenerateParams{
				Tournament:   t,
				Participants: participants,
				Rand:         s.rng,
			})
			if genErr != nil {
				return genErr
			}
			if err := s.matchRepo.CreateBatch(ctx, exec, matches); err != nil {
				return err
			}
			totalRounds = intPtr(brackets.NewArena(matches).TotalRounds())

		case models.TypeSwiss:
			gen := brackets.NewSwissGenerator()
			matches, genErr := gen.Generate(ctx, brackets.GenerateParams{
				Tournament:   t,
				Participants: participants,
			})
			if genErr != nil {
				return genErr
			}
			if err := s.matchRepo.CreateBatch(ctx, exec, matches); err != nil {
				return err
			}
			if t.TotalRounds != nil && *t.TotalRounds > 0 {
				totalRounds = t.TotalRounds
			} else {
				totalRounds = intPtr(defaultSwissRounds(len(participants)))
			}

		case models.TypeFFAGroupStage:
			ids := make([]int, len(participants))
			for i, p := range participants {
				ids[i] = p.ID
			}
			groups, genErr := brackets.GenerateGroups(tournamentID, 1, ids, *t.GroupSize, *t.AdvanceCount)
			if genErr != nil {
				return genErr
			}
			if err := s.groupRepo.CreateBatch(ctx, exec, groups); err != nil {
				return err
			}
			// Group stages run until a round with nobody advancing, so the
			// round count is open-ended.

		default:
			return fmt.Errorf("%w: unknown tournament type %q", ErrValidation, t.Type)
		}

		if err := s.tournamentRepo.UpdateProgress(ctx, exec, tournamentID, 1, totalRounds); err != nil {
			return err
		}
		return s.tournamentRepo.UpdateStatus(ctx, exec, tournamentID, models.TournamentInProgress)
	})
	if err != nil {
		return err
	}
	s.logger.Info("tournament started", slog.Int("tournament_id", tournamentID))
	s.broadcast(tournamentID, brackets.EventBracketUpdated, map[string]int{"tournament_id": tournamentID})
	return nil
}

func (s *tournamentService) loadMatch(ctx context.Context, exec repositories.SQLExecutor, tournamentID, matchID int) (*models.BracketMatch, []*models.BracketMatch, error) {
	matches, err := s.matchRepo.ListByTournament(ctx, exec, tournamentID)
	if err != nil {
		return nil, nil, err
	}
	for _, m := range matches {
		if m.ID == matchID {
			return m, matches, nil
		}
	}
	return nil, nil, repositories.ErrMatchNotFound
}

func (s *tournamentService) persistMatches(ctx context.Context, exec repositories.SQLExecutor, changed []*models.BracketMatch) error {
	for _, m := range changed {
		if err := s.matchRepo.Update(ctx, exec, m); err != nil {
			return err
		}
	}
	return nil
}

// RecordMatchResult appends one game to the match's series. When the series
// reaches its win threshold the winner advances, and when that settles the
// last open match of the tournament the completion flow runs in the same
// transaction.
func (s *tournamentService) RecordMatchResult(ctx context.Context, tournamentID, matchID int, game models.GameResult) error {
	var completed, swiss bool
	err := s.tx.InTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.tournamentRepo.GetByIDForUpdate(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		if err := requireInProgress(t, "recording results"); err != nil {
			return err
		}
		swiss = t.Type == models.TypeSwiss

		m, matches, err := s.loadMatch(ctx, exec, tournamentID, matchID)
		if err != nil {
			return err
		}
		arena := brackets.NewArena(matches)
		changed, _, err := arena.ApplyGame(m, game, t.WinsNeeded(m.Round))
		if err != nil {
			return err
		}
		if err := s.persistMatches(ctx, exec, changed); err != nil {
			return err
		}

		completed, err = s.maybeComplete(ctx, exec, t, matches)
		return err
	})
	if err != nil {
		return err
	}
	s.broadcast(tournamentID, brackets.EventMatchUpdated, map[string]int{"match_id": matchID})
	if swiss {
		s.broadcast(tournamentID, brackets.EventStandingsUpdated, map[string]int{"tournament_id": tournamentID})
	}
	if completed {
		s.broadcast(tournamentID, brackets.EventTournamentCompleted, map[string]int{"tournament_id": tournamentID})
	}
	return nil
}

// RecordDraw settles a Swiss match as drawn. Elimination brackets refuse
// draws since someone has to advance.
func (s *tournamentService) RecordDraw(ctx context.Context, tournamentID, matchID, p1Score, p2Score int) error {
	var completed bool
	err := s.tx.InTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.tournamentRepo.GetByIDForUpdate(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		if err := requireInProgress(t, "recording results"); err != nil {
			return err
		}
		if t.Type != models.TypeSwiss {
			return fmt.Errorf("%w: draws only exist in swiss tournaments", ErrValidation)
		}

		m, matches, err := s.loadMatch(ctx, exec, tournamentID, matchID)
		if err != nil {
			return err
		}
		arena := brackets.NewArena(matches)
		if err := arena.RecordDraw(m, p1Score, p2Score); err != nil {
			return err
		}
		if err := s.matchRepo.Update(ctx, exec, m); err != nil {
			return err
		}

		completed, err = s.maybeComplete(ctx, exec, t, matches)
		return err
	})
	if err != nil {
		return err
	}
	s.broadcast(tournamentID, brackets.EventMatchUpdated, map[string]int{"match_id": matchID})
	s.broadcast(tournamentID, brackets.EventStandingsUpdated, map[string]int{"tournament_id": tournamentID})
	if completed {
		s.broadcast(tournamentID, brackets.EventTournamentCompleted, map[string]int{"tournament_id": tournamentID})
	}
	return nil
}

func (s *tournamentService) ForfeitMatch(ctx context.Context, tournamentID, matchID, forfeitingSlot int) error {
	var completed, swiss bool
	err := s.tx.InTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.tournamentRepo.GetByIDForUpdate(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		if err := requireInProgress(t, "recording results"); err != nil {
			return err
		}
		swiss = t.Type == models.TypeSwiss

		m, matches, err := s.loadMatch(ctx, exec, tournamentID, matchID)
		if err != nil {
			return err
		}
		arena := brackets.NewArena(matches)
		changed, err := arena.Forfeit(m, forfeitingSlot)
		if err != nil {
			return err
		}
		if err := s.persistMatches(ctx, exec, changed); err != nil {
			return err
		}

		completed, err = s.maybeComplete(ctx, exec, t, matches)
		return err
	})
	if err != nil {
		return err
	}
	s.broadcast(tournamentID, brackets.EventMatchUpdated, map[string]int{"match_id": matchID})
	if swiss {
		s.broadcast(tournamentID, brackets.EventStandingsUpdated, map[string]int{"tournament_id": tournamentID})
	}
	if completed {
		s.broadcast(tournamentID, brackets.EventTournamentCompleted, map[string]int{"tournament_id": tournamentID})
	}
	return nil
}

// UndoMatchResult reverses the most recent game of a match, retracting the
// winner from the next round when necessary. A completed tournament must be
// reopened first.
func (s *tournamentService) UndoMatchResult(ctx context.Context, tournamentID, matchID int) error {
	var swiss bool
	err := s.tx.InTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.tournamentRepo.GetByIDForUpdate(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		if err := requireInProgress(t, "undo"); err != nil {
			return err
		}
		swiss = t.Type == models.TypeSwiss

		m, matches, err := s.loadMatch(ctx, exec, tournamentID, matchID)
		if err != nil {
			return err
		}
		arena := brackets.NewArena(matches)
		changed, err := arena.UndoLastResult(m)
		if err != nil {
			return err
		}
		return s.persistMatches(ctx, exec, changed)
	})
	if err != nil {
		return err
	}
	s.broadcast(tournamentID, brackets.EventMatchUpdated, map[string]int{"match_id": matchID})
	if swiss {
		s.broadcast(tournamentID, brackets.EventStandingsUpdated, map[string]int{"tournament_id": tournamentID})
	}
	return nil
}

// RecordGroupResult settles one free-for-all group with an ordered finish
// list. When the final round's last group settles, completion runs.
func (s *tournamentService) RecordGroupResult(ctx context.Context, tournamentID, groupID int, placements []int) error {
	var completed bool
	err := s.tx.InTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.tournamentRepo.GetByIDForUpdate(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		if err := requireInProgress(t, "recording results"); err != nil {
			return err
		}

		g, err := s.groupRepo.GetByID(ctx, exec, groupID)
		if err != nil {
			return err
		}
		if g.TournamentID != tournamentID {
			return repositories.ErrGroupNotFound
		}
		if err := brackets.RecordGroupPlacements(g, placements); err != nil {
			return err
		}
		if err := s.groupRepo.UpdatePlacements(ctx, exec, groupID, g.Placements); err != nil {
			return err
		}

		completed, err = s.maybeCompleteGroups(ctx, exec, t)
		return err
	})
	if err != nil {
		return err
	}
	s.broadcast(tournamentID, brackets.EventMatchUpdated, map[string]int{"group_id": groupID})
	if completed {
		s.broadcast(tournamentID, brackets.EventTournamentCompleted, map[string]int{"tournament_id": tournamentID})
	}
	return nil
}

// AdvanceRound generates the next round once the current one is fully
// decided: Swiss pairs the standings, a group stage regroups the advancers.
// Elimination brackets advance through winner propagation instead.
func (s *tournamentService) AdvanceRound(ctx context.Context, tournamentID int, allowRematch bool) error {
	var swiss bool
	err := s.tx.InTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.tournamentRepo.GetByIDForUpdate(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		if err := requireInProgress(t, "advancing rounds"); err != nil {
			return err
		}
		swiss = t.Type == models.TypeSwiss

		switch t.Type {
		case models.TypeSwiss:
			return s.advanceSwissRound(ctx, exec, t, allowRematch)
		case models.TypeFFAGroupStage:
			return s.advanceGroupRound(ctx, exec, t)
		default:
			return fmt.Errorf("%w: %s brackets advance by winner propagation", ErrValidation, t.Type)
		}
	})
	if err != nil {
		return err
	}
	s.broadcast(tournamentID, brackets.EventBracketUpdated, map[string]int{"tournament_id": tournamentID})
	if swiss {
		s.broadcast(tournamentID, brackets.EventStandingsUpdated, map[string]int{"tournament_id": tournamentID})
	}
	return nil
}

func (s *tournamentService) advanceSwissRound(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament, allowRematch bool) error {
	if t.TotalRounds != nil && t.CurrentRound >= *t.TotalRounds {
		return ErrTournamentOver
	}
	matches, err := s.matchRepo.ListByTournament(ctx, exec, t.ID)
	if err != nil {
		return err
	}
	for _, m := range matches {
		if m.Round == t.CurrentRound && !m.Decided() {
			return fmt.Errorf("%w: match R%dP%d is open", ErrRoundNotFinished, m.Round, m.Position)
		}
	}

	participants, err := s.participantRepo.ListByTournament(ctx, exec, t.ID)
	if err != nil {
		return err
	}
	ranked := brackets.Rank(brackets.ComputeStandings(participants, matches))
	next, err := brackets.PairNextRound(ranked, matches, t.ID, t.CurrentRound+1, allowRematch)
	if err != nil {
		return err
	}
	if err := s.matchRepo.CreateBatch(ctx, exec, next); err != nil {
		return err
	}
	return s.tournamentRepo.UpdateProgress(ctx, exec, t.ID, t.CurrentRound+1, t.TotalRounds)
}

func (s *tournamentService) advanceGroupRound(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament) error {
	groups, err := s.groupRepo.ListByTournament(ctx, exec, t.ID)
	if err != nil {
		return err
	}
	current := groupsOfRound(groups, t.CurrentRound)
	if len(current) == 0 {
		return fmt.Errorf("%w: round %d has no groups", ErrValidation, t.CurrentRound)
	}
	for _, g := range current {
		if !g.Decided() {
			return fmt.Errorf("%w: group R%dP%d is open", ErrRoundNotFinished, g.Round, g.Position)
		}
	}
	if current[0].AdvanceCount == 0 {
		return ErrTournamentOver
	}

	advancers, err := brackets.Advancers(current)
	if err != nil {
		return err
	}
	if len(advancers) < 2 {
		return fmt.Errorf("%w: only %d participants advance", ErrValidation, len(advancers))
	}

	// The last round everyone fits into a single group is the final: nobody
	// advances out of it, its placements are the result.
	groupSize := *t.GroupSize
	advanceCount := *t.AdvanceCount
	if len(advancers) <= groupSize {
		groupSize = len(advancers)
		advanceCount = 0
	}
	next, err := brackets.GenerateGroups(t.ID, t.CurrentRound+1, advancers, groupSize, advanceCount)
	if err != nil {
		return err
	}
	if err := s.groupRepo.CreateBatch(ctx, exec, next); err != nil {
		return err
	}
	return s.tournamentRepo.UpdateProgress(ctx, exec, t.ID, t.CurrentRound+1, t.TotalRounds)
}

func groupsOfRound(groups []*models.FFAGroup, round int) []*models.FFAGroup {
	out := make([]*models.FFAGroup, 0, len(groups))
	for _, g := range groups {
		if g.Round == round {
			out = append(out, g)
		}
	}
	return out
}

// maybeComplete checks whether match play has finished the tournament and,
// if so, runs the completion flow: final placements, placement awards and
// the status flip, all inside the caller's transaction.
func (s *tournamentService) maybeComplete(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament, matches []*models.BracketMatch) (bool, error) {
	var placements map[int]int

	switch t.Type {
	case models.TypeSingleElimination:
		arena := brackets.NewArena(matches)
		if !arena.Complete() {
			return false, nil
		}
		placements = arena.Placements()

	case models.TypeSwiss:
		if t.TotalRounds == nil || t.CurrentRound < *t.TotalRounds {
			return false, nil
		}
		for _, m := range matches {
			if m.Round == t.CurrentRound && !m.Decided() {
				return false, nil
			}
		}
		participants, err := s.participantRepo.ListByTournament(ctx, exec, t.ID)
		if err != nil {
			return false, err
		}
		ranked := brackets.Rank(brackets.ComputeStandings(participants, matches))
		placements = swissPlacements(ranked)

	default:
		return false, nil
	}

	if err := s.complete(ctx, exec, t, placements); err != nil {
		return false, err
	}
	return true, nil
}

func (s *tournamentService) maybeCompleteGroups(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament) (bool, error) {
	groups, err := s.groupRepo.ListByTournament(ctx, exec, t.ID)
	if err != nil {
		return false, err
	}
	current := groupsOfRound(groups, t.CurrentRound)
	if len(current) == 0 || current[0].AdvanceCount != 0 {
		return false, nil
	}
	for _, g := range current {
		if !g.Decided() {
			return false, nil
		}
	}
	if err := s.complete(ctx, exec, t, brackets.FinalPlacements(current)); err != nil {
		return false, err
	}
	return true, nil
}

// swissPlacements turns a ranked table into placements, full ties on points
// and Buchholz sharing a placement.
func swissPlacements(ranked []*models.SwissStanding) map[int]int {
	placements := make(map[int]int, len(ranked))
	for i, s := range ranked {
		place := i + 1
		if i > 0 && s.Points == ranked[i-1].Points && s.Buchholz == ranked[i-1].Buchholz {
			place = placements[ranked[i-1].ParticipantID]
		}
		placements[s.ParticipantID] = place
	}
	return placements
}

func (s *tournamentService) complete(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament, placements map[int]int) error {
	if !canTransition(t.Status, models.TournamentCompleted) {
		return fmt.Errorf("%w: cannot complete from %s", ErrInvalidTransition, t.Status)
	}
	participants, err := s.participantRepo.ListByTournament(ctx, exec, t.ID)
	if err != nil {
		return err
	}
	for _, p := range participants {
		placement, ok := placements[p.ID]
		if !ok {
			continue
		}
		if err := s.participantRepo.UpdateFinalPlacement(ctx, exec, p.ID, intPtr(placement)); err != nil {
			return err
		}
	}
	if _, err := s.awards.ApplyAwards(ctx, exec, t, participants, placements); err != nil {
		return err
	}
	if err := s.tournamentRepo.UpdateStatus(ctx, exec, t.ID, models.TournamentCompleted); err != nil {
		return err
	}
	t.Status = models.TournamentCompleted
	s.logger.Info("tournament completed", slog.Int("tournament_id", t.ID))
	return nil
}

// Reopen moves a completed tournament back to in progress so results can be
// corrected. Placement awards and recorded final placements are reverted;
// the bracket itself stays decided until individual results are undone.
func (s *tournamentService) Reopen(ctx context.Context, tournamentID int) error {
	err := s.tx.InTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.tournamentRepo.GetByIDForUpdate(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		if t.Status != models.TournamentCompleted || !canTransition(t.Status, models.TournamentInProgress) {
			return fmt.Errorf("%w: cannot reopen from %s", ErrInvalidTransition, t.Status)
		}
		if _, err := s.awards.RevertAwards(ctx, exec, tournamentID); err != nil {
			return err
		}
		participants, err := s.participantRepo.ListByTournament(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		for _, p := range participants {
			if p.FinalPlacement == nil {
				continue
			}
			if err := s.participantRepo.UpdateFinalPlacement(ctx, exec, p.ID, nil); err != nil {
				return err
			}
		}
		return s.tournamentRepo.UpdateStatus(ctx, exec, tournamentID, models.TournamentInProgress)
	})
	if err != nil {
		return err
	}
	s.logger.Info("tournament reopened", slog.Int("tournament_id", tournamentID))
	s.broadcast(tournamentID, brackets.EventBracketUpdated, map[string]int{"tournament_id": tournamentID})
	return nil
}
