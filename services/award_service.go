package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/openleague/league-system/models"
	"github.com/openleague/league-system/repositories"
)

// AwardService turns final placements into event leaderboard point entries
// and reverses them when a tournament is reopened or deleted. Entries for a
// tournament live and die as one unit: apply writes the full set under a
// single batch id, revert removes whatever is there and reports the count,
// so reverting twice is a harmless no-op.
type AwardService interface {
	ApplyAwards(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament, participants []*models.TournamentParticipant, placements map[int]int) ([]*models.PointEntry, error)
	RevertAwards(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) (int64, error)
}

type awardService struct {
	pointEntryRepo repositories.PointEntryRepository
	logger         *slog.Logger
}

func NewAwardService(pointEntryRepo repositories.PointEntryRepository, logger *slog.Logger) AwardService {
	return &awardService{pointEntryRepo: pointEntryRepo, logger: logger}
}

func (s *awardService) ApplyAwards(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament, participants []*models.TournamentParticipant, placements map[int]int) ([]*models.PointEntry, error) {
	if len(t.PlacementPointConfig) == 0 || len(placements) == 0 {
		return nil, nil
	}

	byID := make(map[int]*models.TournamentParticipant, len(participants))
	for _, p := range participants {
		byID[p.ID] = p
	}

	batchID := uuid.NewString()
	entries := make([]*models.PointEntry, 0, len(placements))
	for _, p := range participants {
		placement, ok := placements[p.ID]
		if !ok {
			continue
		}
		points := t.PlacementPointConfig.PointsFor(placement)
		if points == 0 {
			continue
		}
		entries = append(entries, &models.PointEntry{
			EventID:       t.EventID,
			TournamentID:  &t.ID,
			ParticipantID: p.ID,
			TeamID:        p.Entrant.TeamID,
			UserID:        p.Entrant.UserID,
			Points:        points,
			Placement:     placement,
			AwardBatchID:  batchID,
		})
	}
	if len(entries) == 0 {
		return nil, nil
	}

	if err := s.pointEntryRepo.CreateBatch(ctx, exec, entries); err != nil {
		return nil, fmt.Errorf("failed to apply placement awards: %w", err)
	}
	s.logger.Info("placement awards applied",
		slog.Int("tournament_id", t.ID),
		slog.String("batch_id", batchID),
		slog.Int("entries", len(entries)),
	)
	return entries, nil
}

func (s *awardService) RevertAwards(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) (int64, error) {
	removed, err := s.pointEntryRepo.DeleteByTournament(ctx, exec, tournamentID)
	if err != nil {
		return 0, fmt.Errorf("failed to revert placement awards: %w", err)
	}
	if removed > 0 {
		s.logger.Info("placement awards reverted",
			slog.Int("tournament_id", tournamentID),
			slog.Int64("entries", removed),
		)
	}
	return removed, nil
}
