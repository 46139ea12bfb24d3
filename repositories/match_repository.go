package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/openleague/league-system/models"
)

var ErrMatchNotFound = errors.New("bracket match not found")

type MatchRepository interface {
	CreateBatch(ctx context.Context, exec SQLExecutor, matches []*models.BracketMatch) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.BracketMatch, error)
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.BracketMatch, error)
	Update(ctx context.Context, exec SQLExecutor, m *models.BracketMatch) error
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const matchColumns = `
	id, tournament_id, round, position,
	participant1_id, participant2_id,
	participant1_score, participant2_score,
	participant1_wins, participant2_wins,
	winner_id, is_draw, is_bye, is_forfeit,
	games, event_match_id, created_at`

func (r *postgresMatchRepository) CreateBatch(ctx context.Context, exec SQLExecutor, matches []*models.BracketMatch) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO bracket_matches (
			tournament_id, round, position,
			participant1_id, participant2_id,
			participant1_score, participant2_score,
			participant1_wins, participant2_wins,
			winner_id, is_draw, is_bye, is_forfeit, games
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at`

	for _, m := range matches {
		err := executor.QueryRowContext(ctx, query,
			m.TournamentID, m.Round, m.Position,
			m.Participant1ID, m.Participant2ID,
			m.Participant1Score, m.Participant2Score,
			m.Participant1Wins, m.Participant2Wins,
			m.WinnerID, m.IsDraw, m.IsBye, m.IsForfeit, m.Games,
		).Scan(&m.ID, &m.CreatedAt)
		if err != nil {
			return fmt.Errorf("match repository: insert R%dP%d: %w", m.Round, m.Position, err)
		}
	}
	return nil
}

func scanMatch(scan func(dest ...interface{}) error) (*models.BracketMatch, error) {
	m := &models.BracketMatch{}
	err := scan(
		&m.ID, &m.TournamentID, &m.Round, &m.Position,
		&m.Participant1ID, &m.Participant2ID,
		&m.Participant1Score, &m.Participant2Score,
		&m.Participant1Wins, &m.Participant2Wins,
		&m.WinnerID, &m.IsDraw, &m.IsBye, &m.IsForfeit,
		&m.Games, &m.EventMatchID, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.BracketMatch, error) {
	executor := r.getExecutor(exec)
	query := `SELECT` + matchColumns + ` FROM bracket_matches WHERE id = $1`
	row := executor.QueryRowContext(ctx, query, id)
	m, err := scanMatch(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return m, nil
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.BracketMatch, error) {
	executor := r.getExecutor(exec)
	query := `SELECT` + matchColumns + `
		FROM bracket_matches
		WHERE tournament_id = $1
		ORDER BY round, position`

	rows, err := executor.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]*models.BracketMatch, 0)
	for rows.Next() {
		m, scanErr := scanMatch(rows.Scan)
		if scanErr != nil {
			return nil, scanErr
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (r *postgresMatchRepository) Update(ctx context.Context, exec SQLExecutor, m *models.BracketMatch) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE bracket_matches SET
			participant1_id = $1, participant2_id = $2,
			participant1_score = $3, participant2_score = $4,
			participant1_wins = $5, participant2_wins = $6,
			winner_id = $7, is_draw = $8, is_forfeit = $9,
			games = $10, event_match_id = $11
		WHERE id = $12`

	result, err := executor.ExecContext(ctx, query,
		m.Participant1ID, m.Participant2ID,
		m.Participant1Score, m.Participant2Score,
		m.Participant1Wins, m.Participant2Wins,
		m.WinnerID, m.IsDraw, m.IsForfeit,
		m.Games, m.EventMatchID,
		m.ID,
	)
	if err != nil {
		return fmt.Errorf("match repository: %w", err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx,
		`DELETE FROM bracket_matches WHERE tournament_id = $1`, tournamentID)
	if err != nil {
		return fmt.Errorf("match repository: %w", err)
	}
	return nil
}
