package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/openleague/league-system/models"
)

type PointEntryRepository interface {
	CreateBatch(ctx context.Context, exec SQLExecutor, entries []*models.PointEntry) error
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.PointEntry, error)
	// DeleteByTournament removes every award of the tournament and returns
	// how many rows went away; deleting zero rows is not an error, which is
	// what makes award reversal an idempotent no-op.
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (int64, error)
	LeaderboardByEvent(ctx context.Context, exec SQLExecutor, eventID int) ([]models.LeaderboardRow, error)
}

type postgresPointEntryRepository struct {
	db *sql.DB
}

func NewPostgresPointEntryRepository(db *sql.DB) PointEntryRepository {
	return &postgresPointEntryRepository{db: db}
}

func (r *postgresPointEntryRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresPointEntryRepository) CreateBatch(ctx context.Context, exec SQLExecutor, entries []*models.PointEntry) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO point_entries (
			event_id, tournament_id, participant_id, team_id, user_id,
			points, placement, award_batch_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`

	for _, e := range entries {
		err := executor.QueryRowContext(ctx, query,
			e.EventID, e.TournamentID, e.ParticipantID, e.TeamID, e.UserID,
			e.Points, e.Placement, e.AwardBatchID,
		).Scan(&e.ID, &e.CreatedAt)
		if err != nil {
			return fmt.Errorf("point entry repository: %w", err)
		}
	}
	return nil
}

func (r *postgresPointEntryRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.PointEntry, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, event_id, tournament_id, participant_id, team_id, user_id,
		       points, placement, award_batch_id, created_at
		FROM point_entries
		WHERE tournament_id = $1
		ORDER BY placement, id`

	rows, err := executor.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]*models.PointEntry, 0)
	for rows.Next() {
		e := &models.PointEntry{}
		if scanErr := rows.Scan(
			&e.ID, &e.EventID, &e.TournamentID, &e.ParticipantID, &e.TeamID, &e.UserID,
			&e.Points, &e.Placement, &e.AwardBatchID, &e.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *postgresPointEntryRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (int64, error) {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`DELETE FROM point_entries WHERE tournament_id = $1`, tournamentID)
	if err != nil {
		return 0, fmt.Errorf("point entry repository: %w", err)
	}
	return result.RowsAffected()
}

func (r *postgresPointEntryRepository) LeaderboardByEvent(ctx context.Context, exec SQLExecutor, eventID int) ([]models.LeaderboardRow, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT t.id, t.name, COALESCE(SUM(pe.points), 0) AS points, COUNT(pe.id) AS awards
		FROM teams t
		LEFT JOIN point_entries pe ON pe.team_id = t.id
		WHERE t.event_id = $1
		GROUP BY t.id, t.name
		ORDER BY points DESC, t.name`

	rows, err := executor.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	board := make([]models.LeaderboardRow, 0)
	for rows.Next() {
		var row models.LeaderboardRow
		if scanErr := rows.Scan(&row.TeamID, &row.TeamName, &row.Points, &row.Awards); scanErr != nil {
			return nil, scanErr
		}
		board = append(board, row)
	}
	return board, rows.Err()
}
