package services

import (
	"context"
	"sort"

	"github.com/openleague/league-system/models"
	"github.com/openleague/league-system/repositories"
)

// passthroughTxRunner runs the unit of work without a real transaction; the
// fakes below are the shared state it would protect.
type passthroughTxRunner struct{}

func (passthroughTxRunner) InTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	return fn(nil)
}

type fakeTournamentRepo struct {
	nextID      int
	tournaments map[int]models.Tournament
}

func newFakeTournamentRepo() *fakeTournamentRepo {
	return &fakeTournamentRepo{tournaments: make(map[int]models.Tournament)}
}

func (r *fakeTournamentRepo) Create(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament) error {
	r.nextID++
	t.ID = r.nextID
	r.tournaments[t.ID] = *t
	return nil
}

func (r *fakeTournamentRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Tournament, error) {
	t, ok := r.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	copied := t
	return &copied, nil
}

func (r *fakeTournamentRepo) GetByIDForUpdate(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Tournament, error) {
	return r.GetByID(ctx, exec, id)
}

func (r *fakeTournamentRepo) ListByEvent(ctx context.Context, exec repositories.SQLExecutor, eventID int) ([]models.Tournament, error) {
	out := make([]models.Tournament, 0)
	for _, t := range r.tournaments {
		if t.EventID == eventID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeTournamentRepo) Update(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament) error {
	if _, ok := r.tournaments[t.ID]; !ok {
		return repositories.ErrTournamentNotFound
	}
	r.tournaments[t.ID] = *t
	return nil
}

func (r *fakeTournamentRepo) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, id int, status models.TournamentStatus) error {
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.Status = status
	r.tournaments[id] = t
	return nil
}

func (r *fakeTournamentRepo) UpdateProgress(ctx context.Context, exec repositories.SQLExecutor, id int, currentRound int, totalRounds *int) error {
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.CurrentRound = currentRound
	t.TotalRounds = totalRounds
	r.tournaments[id] = t
	return nil
}

func (r *fakeTournamentRepo) Delete(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	if _, ok := r.tournaments[id]; !ok {
		return repositories.ErrTournamentNotFound
	}
	delete(r.tournaments, id)
	return nil
}

type fakeParticipantRepo struct {
	nextID       int
	participants map[int]models.TournamentParticipant
}

func newFakeParticipantRepo() *fakeParticipantRepo {
	return &fakeParticipantRepo{participants: make(map[int]models.TournamentParticipant)}
}

func (r *fakeParticipantRepo) Create(ctx context.Context, exec repositories.SQLExecutor, p *models.TournamentParticipant) error {
	r.nextID++
	p.ID = r.nextID
	r.participants[p.ID] = *p
	return nil
}

func (r *fakeParticipantRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.TournamentParticipant, error) {
	p, ok := r.participants[id]
	if !ok {
		return nil, repositories.ErrParticipantNotFound
	}
	copied := p
	return &copied, nil
}

func (r *fakeParticipantRepo) ListByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) ([]*models.TournamentParticipant, error) {
	out := make([]*models.TournamentParticipant, 0)
	for _, p := range r.participants {
		if p.TournamentID == tournamentID {
			copied := p
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		si, sj := out[i].Seed, out[j].Seed
		switch {
		case si != nil && sj != nil && *si != *sj:
			return *si < *sj
		case si != nil && sj == nil:
			return true
		case si == nil && sj != nil:
			return false
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *fakeParticipantRepo) UpdateSeed(ctx context.Context, exec repositories.SQLExecutor, id int, seed *int) error {
	p, ok := r.participants[id]
	if !ok {
		return repositories.ErrParticipantNotFound
	}
	p.Seed = seed
	r.participants[id] = p
	return nil
}

func (r *fakeParticipantRepo) UpdateFinalPlacement(ctx context.Context, exec repositories.SQLExecutor, id int, placement *int) error {
	p, ok := r.participants[id]
	if !ok {
		return repositories.ErrParticipantNotFound
	}
	p.FinalPlacement = placement
	r.participants[id] = p
	return nil
}

func (r *fakeParticipantRepo) Delete(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	if _, ok := r.participants[id]; !ok {
		return repositories.ErrParticipantNotFound
	}
	delete(r.participants, id)
	return nil
}

func (r *fakeParticipantRepo) DeleteByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) error {
	for id, p := range r.participants {
		if p.TournamentID == tournamentID {
			delete(r.participants, id)
		}
	}
	return nil
}

type fakeMatchRepo struct {
	nextID  int
	matches map[int]models.BracketMatch
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{matches: make(map[int]models.BracketMatch)}
}

func (r *fakeMatchRepo) CreateBatch(ctx context.Context, exec repositories.SQLExecutor, matches []*models.BracketMatch) error {
	for _, m := range matches {
		r.nextID++
		m.ID = r.nextID
		r.matches[m.ID] = *m
	}
	return nil
}

func (r *fakeMatchRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.BracketMatch, error) {
	m, ok := r.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	copied := m
	return &copied, nil
}

func (r *fakeMatchRepo) ListByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) ([]*models.BracketMatch, error) {
	out := make([]*models.BracketMatch, 0)
	for _, m := range r.matches {
		if m.TournamentID == tournamentID {
			copied := m
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Round != out[j].Round {
			return out[i].Round < out[j].Round
		}
		return out[i].Position < out[j].Position
	})
	return out, nil
}

func (r *fakeMatchRepo) Update(ctx context.Context, exec repositories.SQLExecutor, m *models.BracketMatch) error {
	if _, ok := r.matches[m.ID]; !ok {
		return repositories.ErrMatchNotFound
	}
	r.matches[m.ID] = *m
	return nil
}

func (r *fakeMatchRepo) DeleteByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) error {
	for id, m := range r.matches {
		if m.TournamentID == tournamentID {
			delete(r.matches, id)
		}
	}
	return nil
}

type fakeGroupRepo struct {
	nextID int
	groups map[int]models.FFAGroup
}

func newFakeGroupRepo() *fakeGroupRepo {
	return &fakeGroupRepo{groups: make(map[int]models.FFAGroup)}
}

func (r *fakeGroupRepo) CreateBatch(ctx context.Context, exec repositories.SQLExecutor, groups []*models.FFAGroup) error {
	for _, g := range groups {
		r.nextID++
		g.ID = r.nextID
		r.groups[g.ID] = *g
	}
	return nil
}

func (r *fakeGroupRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.FFAGroup, error) {
	g, ok := r.groups[id]
	if !ok {
		return nil, repositories.ErrGroupNotFound
	}
	copied := g
	return &copied, nil
}

func (r *fakeGroupRepo) ListByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) ([]*models.FFAGroup, error) {
	out := make([]*models.FFAGroup, 0)
	for _, g := range r.groups {
		if g.TournamentID == tournamentID {
			copied := g
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Round != out[j].Round {
			return out[i].Round < out[j].Round
		}
		return out[i].Position < out[j].Position
	})
	return out, nil
}

func (r *fakeGroupRepo) UpdatePlacements(ctx context.Context, exec repositories.SQLExecutor, id int, placements []int) error {
	g, ok := r.groups[id]
	if !ok {
		return repositories.ErrGroupNotFound
	}
	g.Placements = append([]int(nil), placements...)
	r.groups[id] = g
	return nil
}

func (r *fakeGroupRepo) DeleteByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) error {
	for id, g := range r.groups {
		if g.TournamentID == tournamentID {
			delete(r.groups, id)
		}
	}
	return nil
}

type fakePointEntryRepo struct {
	nextID  int
	entries []models.PointEntry
}

func newFakePointEntryRepo() *fakePointEntryRepo {
	return &fakePointEntryRepo{}
}

func (r *fakePointEntryRepo) CreateBatch(ctx context.Context, exec repositories.SQLExecutor, entries []*models.PointEntry) error {
	for _, e := range entries {
		r.nextID++
		e.ID = r.nextID
		r.entries = append(r.entries, *e)
	}
	return nil
}

func (r *fakePointEntryRepo) ListByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) ([]*models.PointEntry, error) {
	out := make([]*models.PointEntry, 0)
	for i := range r.entries {
		if r.entries[i].TournamentID != nil && *r.entries[i].TournamentID == tournamentID {
			copied := r.entries[i]
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakePointEntryRepo) DeleteByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) (int64, error) {
	kept := r.entries[:0]
	var removed int64
	for _, e := range r.entries {
		if e.TournamentID != nil && *e.TournamentID == tournamentID {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	r.entries = kept
	return removed, nil
}

func (r *fakePointEntryRepo) LeaderboardByEvent(ctx context.Context, exec repositories.SQLExecutor, eventID int) ([]models.LeaderboardRow, error) {
	totals := make(map[int]*models.LeaderboardRow)
	for _, e := range r.entries {
		if e.EventID != eventID || e.TeamID == nil {
			continue
		}
		row, ok := totals[*e.TeamID]
		if !ok {
			row = &models.LeaderboardRow{TeamID: *e.TeamID}
			totals[*e.TeamID] = row
		}
		row.Points += e.Points
		row.Awards++
	}
	out := make([]models.LeaderboardRow, 0, len(totals))
	for _, row := range totals {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Points > out[j].Points })
	return out, nil
}
