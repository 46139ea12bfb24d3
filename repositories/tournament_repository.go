package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/openleague/league-system/models"
)

var (
	ErrTournamentNotFound     = errors.New("tournament not found")
	ErrTournamentNameConflict = errors.New("tournament name conflict within the event")
	ErrTournamentInvalidEvent = errors.New("invalid event reference")
)

type TournamentRepository interface {
	Create(ctx context.Context, exec SQLExecutor, t *models.Tournament) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error)
	// GetByIDForUpdate locks the tournament row for the lifetime of the
	// surrounding transaction; it is the per-tournament critical section.
	GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error)
	ListByEvent(ctx context.Context, exec SQLExecutor, eventID int) ([]models.Tournament, error)
	Update(ctx context.Context, exec SQLExecutor, t *models.Tournament) error
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus) error
	UpdateProgress(ctx context.Context, exec SQLExecutor, id int, currentRound int, totalRounds *int) error
	Delete(ctx context.Context, exec SQLExecutor, id int) error
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const tournamentColumns = `
	id, event_id, name, type, status, seeding_type, participant_type,
	best_of, round_best_of, total_rounds, current_round,
	group_size, advance_count, placement_point_config, game_type_id, created_at`

func scanTournament(row *sql.Row) (*models.Tournament, error) {
	t := &models.Tournament{}
	err := row.Scan(
		&t.ID, &t.EventID, &t.Name, &t.Type, &t.Status, &t.SeedingType, &t.ParticipantType,
		&t.BestOf, &t.RoundBestOf, &t.TotalRounds, &t.CurrentRound,
		&t.GroupSize, &t.AdvanceCount, &t.PlacementPointConfig, &t.GameTypeID, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *postgresTournamentRepository) Create(ctx context.Context, exec SQLExecutor, t *models.Tournament) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO tournaments (
			event_id, name, type, status, seeding_type, participant_type,
			best_of, round_best_of, total_rounds, current_round,
			group_size, advance_count, placement_point_config, game_type_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		t.EventID, t.Name, t.Type, t.Status, t.SeedingType, t.ParticipantType,
		t.BestOf, t.RoundBestOf, t.TotalRounds, t.CurrentRound,
		t.GroupSize, t.AdvanceCount, t.PlacementPointConfig, t.GameTypeID,
	).Scan(&t.ID, &t.CreatedAt)

	return r.handleError(err)
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error) {
	executor := r.getExecutor(exec)
	query := `SELECT` + tournamentColumns + ` FROM tournaments WHERE id = $1`
	return scanTournament(executor.QueryRowContext(ctx, query, id))
}

func (r *postgresTournamentRepository) GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error) {
	executor := r.getExecutor(exec)
	query := `SELECT` + tournamentColumns + ` FROM tournaments WHERE id = $1 FOR UPDATE`
	return scanTournament(executor.QueryRowContext(ctx, query, id))
}

func (r *postgresTournamentRepository) ListByEvent(ctx context.Context, exec SQLExecutor, eventID int) ([]models.Tournament, error) {
	executor := r.getExecutor(exec)
	query := `SELECT` + tournamentColumns + ` FROM tournaments WHERE event_id = $1 ORDER BY created_at DESC`

	rows, err := executor.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tournaments := make([]models.Tournament, 0)
	for rows.Next() {
		var t models.Tournament
		if scanErr := rows.Scan(
			&t.ID, &t.EventID, &t.Name, &t.Type, &t.Status, &t.SeedingType, &t.ParticipantType,
			&t.BestOf, &t.RoundBestOf, &t.TotalRounds, &t.CurrentRound,
			&t.GroupSize, &t.AdvanceCount, &t.PlacementPointConfig, &t.GameTypeID, &t.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		tournaments = append(tournaments, t)
	}
	return tournaments, rows.Err()
}

func (r *postgresTournamentRepository) Update(ctx context.Context, exec SQLExecutor, t *models.Tournament) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE tournaments SET
			name = $1, type = $2, status = $3, seeding_type = $4, participant_type = $5,
			best_of = $6, round_best_of = $7, total_rounds = $8, current_round = $9,
			group_size = $10, advance_count = $11, placement_point_config = $12, game_type_id = $13
		WHERE id = $14`

	result, err := executor.ExecContext(ctx, query,
		t.Name, t.Type, t.Status, t.SeedingType, t.ParticipantType,
		t.BestOf, t.RoundBestOf, t.TotalRounds, t.CurrentRound,
		t.GroupSize, t.AdvanceCount, t.PlacementPointConfig, t.GameTypeID,
		t.ID,
	)
	if err != nil {
		return r.handleError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `UPDATE tournaments SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return r.handleError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) UpdateProgress(ctx context.Context, exec SQLExecutor, id int, currentRound int, totalRounds *int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE tournaments SET current_round = $1, total_rounds = $2 WHERE id = $3`,
		currentRound, totalRounds, id,
	)
	if err != nil {
		return r.handleError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `DELETE FROM tournaments WHERE id = $1`, id)
	if err != nil {
		return r.handleError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) handleError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505": // unique_violation
			return ErrTournamentNameConflict
		case "23503": // foreign_key_violation
			return ErrTournamentInvalidEvent
		}
	}
	return fmt.Errorf("tournament repository: %w", err)
}
