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
	ErrParticipantNotFound     = errors.New("tournament participant not found")
	ErrParticipantConflict     = errors.New("entrant is already registered for this tournament")
	ErrParticipantSeedConflict = errors.New("seed is already taken in this tournament")
)

type ParticipantRepository interface {
	Create(ctx context.Context, exec SQLExecutor, p *models.TournamentParticipant) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.TournamentParticipant, error)
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.TournamentParticipant, error)
	UpdateSeed(ctx context.Context, exec SQLExecutor, id int, seed *int) error
	UpdateFinalPlacement(ctx context.Context, exec SQLExecutor, id int, placement *int) error
	Delete(ctx context.Context, exec SQLExecutor, id int) error
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error
}

type postgresParticipantRepository struct {
	db *sql.DB
}

func NewPostgresParticipantRepository(db *sql.DB) ParticipantRepository {
	return &postgresParticipantRepository{db: db}
}

func (r *postgresParticipantRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

// The tagged entrant variant is flattened into one kind column plus the
// per-kind reference columns; member_ids is a Postgres int array.
func (r *postgresParticipantRepository) Create(ctx context.Context, exec SQLExecutor, p *models.TournamentParticipant) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO tournament_participants (
			tournament_id, seed, entrant_kind, team_id, user_id, placeholder_id, member_ids
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		p.TournamentID, p.Seed, p.Entrant.Kind,
		p.Entrant.TeamID, p.Entrant.UserID, p.Entrant.PlaceholderID,
		pq.Array(p.Entrant.MemberIDs),
	).Scan(&p.ID, &p.CreatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			if pqErr.Constraint == "tournament_participants_seed_key" {
				return ErrParticipantSeedConflict
			}
			return ErrParticipantConflict
		}
		return fmt.Errorf("participant repository: %w", err)
	}
	return nil
}

func scanParticipant(scan func(dest ...interface{}) error) (*models.TournamentParticipant, error) {
	p := &models.TournamentParticipant{}
	var memberIDs pq.Int64Array
	err := scan(
		&p.ID, &p.TournamentID, &p.Seed,
		&p.Entrant.Kind, &p.Entrant.TeamID, &p.Entrant.UserID, &p.Entrant.PlaceholderID, &memberIDs,
		&p.FinalPlacement, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(memberIDs) > 0 {
		p.Entrant.MemberIDs = make([]int, len(memberIDs))
		for i, id := range memberIDs {
			p.Entrant.MemberIDs[i] = int(id)
		}
	}
	return p, nil
}

const participantColumns = `
	id, tournament_id, seed,
	entrant_kind, team_id, user_id, placeholder_id, member_ids,
	final_placement, created_at`

func (r *postgresParticipantRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.TournamentParticipant, error) {
	executor := r.getExecutor(exec)
	query := `SELECT` + participantColumns + ` FROM tournament_participants WHERE id = $1`
	row := executor.QueryRowContext(ctx, query, id)
	p, err := scanParticipant(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrParticipantNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *postgresParticipantRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.TournamentParticipant, error) {
	executor := r.getExecutor(exec)
	query := `SELECT` + participantColumns + `
		FROM tournament_participants
		WHERE tournament_id = $1
		ORDER BY seed NULLS LAST, id`

	rows, err := executor.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	participants := make([]*models.TournamentParticipant, 0)
	for rows.Next() {
		p, scanErr := scanParticipant(rows.Scan)
		if scanErr != nil {
			return nil, scanErr
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

func (r *postgresParticipantRepository) UpdateSeed(ctx context.Context, exec SQLExecutor, id int, seed *int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE tournament_participants SET seed = $1 WHERE id = $2`, seed, id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrParticipantSeedConflict
		}
		return fmt.Errorf("participant repository: %w", err)
	}
	return checkAffectedRows(result, ErrParticipantNotFound)
}

func (r *postgresParticipantRepository) UpdateFinalPlacement(ctx context.Context, exec SQLExecutor, id int, placement *int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE tournament_participants SET final_placement = $1 WHERE id = $2`, placement, id)
	if err != nil {
		return fmt.Errorf("participant repository: %w", err)
	}
	return checkAffectedRows(result, ErrParticipantNotFound)
}

func (r *postgresParticipantRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`DELETE FROM tournament_participants WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("participant repository: %w", err)
	}
	return checkAffectedRows(result, ErrParticipantNotFound)
}

func (r *postgresParticipantRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx,
		`DELETE FROM tournament_participants WHERE tournament_id = $1`, tournamentID)
	if err != nil {
		return fmt.Errorf("participant repository: %w", err)
	}
	return nil
}
