package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/openleague/league-system/models"
)

var ErrGroupNotFound = errors.New("ffa group not found")

type FFAGroupRepository interface {
	CreateBatch(ctx context.Context, exec SQLExecutor, groups []*models.FFAGroup) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.FFAGroup, error)
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.FFAGroup, error)
	UpdatePlacements(ctx context.Context, exec SQLExecutor, id int, placements []int) error
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error
}

type postgresFFAGroupRepository struct {
	db *sql.DB
}

func NewPostgresFFAGroupRepository(db *sql.DB) FFAGroupRepository {
	return &postgresFFAGroupRepository{db: db}
}

func (r *postgresFFAGroupRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func intsToArray(ids []int) pq.Int64Array {
	arr := make(pq.Int64Array, len(ids))
	for i, id := range ids {
		arr[i] = int64(id)
	}
	return arr
}

func arrayToInts(arr pq.Int64Array) []int {
	if len(arr) == 0 {
		return nil
	}
	ids := make([]int, len(arr))
	for i, id := range arr {
		ids[i] = int(id)
	}
	return ids
}

func (r *postgresFFAGroupRepository) CreateBatch(ctx context.Context, exec SQLExecutor, groups []*models.FFAGroup) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO ffa_groups (tournament_id, round, position, participant_ids, placements, advance_count)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	for _, g := range groups {
		err := executor.QueryRowContext(ctx, query,
			g.TournamentID, g.Round, g.Position,
			intsToArray(g.ParticipantIDs), intsToArray(g.Placements), g.AdvanceCount,
		).Scan(&g.ID, &g.CreatedAt)
		if err != nil {
			return fmt.Errorf("ffa group repository: insert R%dP%d: %w", g.Round, g.Position, err)
		}
	}
	return nil
}

func scanGroup(scan func(dest ...interface{}) error) (*models.FFAGroup, error) {
	g := &models.FFAGroup{}
	var participantIDs, placements pq.Int64Array
	err := scan(
		&g.ID, &g.TournamentID, &g.Round, &g.Position,
		&participantIDs, &placements, &g.AdvanceCount, &g.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	g.ParticipantIDs = arrayToInts(participantIDs)
	g.Placements = arrayToInts(placements)
	return g, nil
}

const groupColumns = `
	id, tournament_id, round, position, participant_ids, placements, advance_count, created_at`

func (r *postgresFFAGroupRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.FFAGroup, error) {
	executor := r.getExecutor(exec)
	query := `SELECT` + groupColumns + ` FROM ffa_groups WHERE id = $1`
	row := executor.QueryRowContext(ctx, query, id)
	g, err := scanGroup(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	return g, nil
}

func (r *postgresFFAGroupRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.FFAGroup, error) {
	executor := r.getExecutor(exec)
	query := `SELECT` + groupColumns + `
		FROM ffa_groups
		WHERE tournament_id = $1
		ORDER BY round, position`

	rows, err := executor.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	groups := make([]*models.FFAGroup, 0)
	for rows.Next() {
		g, scanErr := scanGroup(rows.Scan)
		if scanErr != nil {
			return nil, scanErr
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func (r *postgresFFAGroupRepository) UpdatePlacements(ctx context.Context, exec SQLExecutor, id int, placements []int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE ffa_groups SET placements = $1 WHERE id = $2`, intsToArray(placements), id)
	if err != nil {
		return fmt.Errorf("ffa group repository: %w", err)
	}
	return checkAffectedRows(result, ErrGroupNotFound)
}

func (r *postgresFFAGroupRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx,
		`DELETE FROM ffa_groups WHERE tournament_id = $1`, tournamentID)
	if err != nil {
		return fmt.Errorf("ffa group repository: %w", err)
	}
	return nil
}
