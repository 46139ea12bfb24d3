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
	ErrEventNotFound     = errors.New("event not found")
	ErrEventNameConflict = errors.New("event name is already in use")
)

type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, id int) (*models.Event, error)
	List(ctx context.Context, limit, offset int) ([]models.Event, error)
	UpdateLogoKey(ctx context.Context, eventID int, logoKey *string) error
	Delete(ctx context.Context, id int) error
}

type postgresEventRepository struct {
	db *sql.DB
}

func NewPostgresEventRepository(db *sql.DB) EventRepository {
	return &postgresEventRepository{db: db}
}

func (r *postgresEventRepository) Create(ctx context.Context, event *models.Event) error {
	query := `
		INSERT INTO events (name, description, owner_id, logo_key)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		event.Name, event.Description, event.OwnerID, event.LogoKey,
	).Scan(&event.ID, &event.CreatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrEventNameConflict
		}
		return fmt.Errorf("event repository: %w", err)
	}
	return nil
}

func (r *postgresEventRepository) GetByID(ctx context.Context, id int) (*models.Event, error) {
	query := `
		SELECT id, name, description, owner_id, logo_key, created_at
		FROM events WHERE id = $1`

	e := &models.Event{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&e.ID, &e.Name, &e.Description, &e.OwnerID, &e.LogoKey, &e.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *postgresEventRepository) List(ctx context.Context, limit, offset int) ([]models.Event, error) {
	query := `
		SELECT id, name, description, owner_id, logo_key, created_at
		FROM events
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]models.Event, 0)
	for rows.Next() {
		var e models.Event
		if scanErr := rows.Scan(&e.ID, &e.Name, &e.Description, &e.OwnerID, &e.LogoKey, &e.CreatedAt); scanErr != nil {
			return nil, scanErr
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *postgresEventRepository) UpdateLogoKey(ctx context.Context, eventID int, logoKey *string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE events SET logo_key = $1 WHERE id = $2`, logoKey, eventID)
	if err != nil {
		return fmt.Errorf("event repository: %w", err)
	}
	return checkAffectedRows(result, ErrEventNotFound)
}

func (r *postgresEventRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("event repository: %w", err)
	}
	return checkAffectedRows(result, ErrEventNotFound)
}
