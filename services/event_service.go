package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"

	"github.com/google/uuid"
	"github.com/openleague/league-system/models"
	"github.com/openleague/league-system/repositories"
	"github.com/openleague/league-system/storage"
)

// EventService manages leagues and their teams, including logo uploads to
// object storage. Logo keys are stored on the row; public URLs are resolved
// on read.
type EventService interface {
	CreateEvent(ctx context.Context, event *models.Event) error
	GetEvent(ctx context.Context, id int) (*models.Event, error)
	ListEvents(ctx context.Context, limit, offset int) ([]models.Event, error)
	DeleteEvent(ctx context.Context, requesterID int, requesterRole models.UserRole, id int) error
	UploadEventLogo(ctx context.Context, eventID int, contentType, filename string, body io.Reader) (string, error)

	CreateTeam(ctx context.Context, team *models.Team) error
	ListTeams(ctx context.Context, eventID int) ([]models.Team, error)
	DeleteTeam(ctx context.Context, id int) error
	UploadTeamLogo(ctx context.Context, teamID int, contentType, filename string, body io.Reader) (string, error)
}

type eventService struct {
	eventRepo repositories.EventRepository
	teamRepo  repositories.TeamRepository
	uploader  storage.FileUploader
	logger    *slog.Logger
}

func NewEventService(eventRepo repositories.EventRepository, teamRepo repositories.TeamRepository, uploader storage.FileUploader, logger *slog.Logger) EventService {
	return &eventService{eventRepo: eventRepo, teamRepo: teamRepo, uploader: uploader, logger: logger}
}

func (s *eventService) CreateEvent(ctx context.Context, event *models.Event) error {
	if event.Name == "" {
		return fmt.Errorf("%w: event name is required", ErrValidation)
	}
	return s.eventRepo.Create(ctx, event)
}

func (s *eventService) GetEvent(ctx context.Context, id int) (*models.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.resolveEventLogo(event)

	teams, err := s.teamRepo.ListByEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	for i := range teams {
		s.resolveTeamLogo(&teams[i])
	}
	event.Teams = teams
	return event, nil
}

func (s *eventService) ListEvents(ctx context.Context, limit, offset int) ([]models.Event, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	events, err := s.eventRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	for i := range events {
		s.resolveEventLogo(&events[i])
	}
	return events, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, requesterID int, requesterRole models.UserRole, id int) error {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if event.OwnerID != requesterID && requesterRole != models.RoleAdmin {
		return ErrForbidden
	}
	return s.eventRepo.Delete(ctx, id)
}

func logoKey(prefix, filename string) string {
	ext := path.Ext(filename)
	return fmt.Sprintf("%s/%s%s", prefix, uuid.NewString(), ext)
}

func (s *eventService) UploadEventLogo(ctx context.Context, eventID int, contentType, filename string, body io.Reader) (string, error) {
	if s.uploader == nil {
		return "", fmt.Errorf("%w: file storage is not configured", ErrValidation)
	}
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return "", err
	}

	key := logoKey(fmt.Sprintf("events/%d", eventID), filename)
	result, err := s.uploader.Upload(ctx, key, contentType, body)
	if err != nil {
		return "", fmt.Errorf("failed to upload event logo: %w", err)
	}
	if err := s.eventRepo.UpdateLogoKey(ctx, eventID, &result.Key); err != nil {
		return "", err
	}
	if event.LogoKey != nil {
		if delErr := s.uploader.Delete(ctx, *event.LogoKey); delErr != nil {
			s.logger.Warn("failed to delete previous event logo",
				slog.Int("event_id", eventID), slog.Any("error", delErr))
		}
	}
	return result.Location, nil
}

func (s *eventService) CreateTeam(ctx context.Context, team *models.Team) error {
	if team.Name == "" {
		return fmt.Errorf("%w: team name is required", ErrValidation)
	}
	if _, err := s.eventRepo.GetByID(ctx, team.EventID); err != nil {
		return err
	}
	return s.teamRepo.Create(ctx, team)
}

func (s *eventService) ListTeams(ctx context.Context, eventID int) ([]models.Team, error) {
	teams, err := s.teamRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	for i := range teams {
		s.resolveTeamLogo(&teams[i])
	}
	return teams, nil
}

func (s *eventService) DeleteTeam(ctx context.Context, id int) error {
	return s.teamRepo.Delete(ctx, id)
}

func (s *eventService) UploadTeamLogo(ctx context.Context, teamID int, contentType, filename string, body io.Reader) (string, error) {
	if s.uploader == nil {
		return "", fmt.Errorf("%w: file storage is not configured", ErrValidation)
	}
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return "", err
	}

	key := logoKey(fmt.Sprintf("teams/%d", teamID), filename)
	result, err := s.uploader.Upload(ctx, key, contentType, body)
	if err != nil {
		return "", fmt.Errorf("failed to upload team logo: %w", err)
	}
	if err := s.teamRepo.UpdateLogoKey(ctx, teamID, &result.Key); err != nil {
		return "", err
	}
	if team.LogoKey != nil {
		if delErr := s.uploader.Delete(ctx, *team.LogoKey); delErr != nil {
			s.logger.Warn("failed to delete previous team logo",
				slog.Int("team_id", teamID), slog.Any("error", delErr))
		}
	}
	return result.Location, nil
}

func (s *eventService) resolveEventLogo(event *models.Event) {
	if s.uploader == nil || event.LogoKey == nil {
		return
	}
	url := s.uploader.GetPublicURL(*event.LogoKey)
	if url != "" {
		event.LogoURL = &url
	}
}

func (s *eventService) resolveTeamLogo(team *models.Team) {
	if s.uploader == nil || team.LogoKey == nil {
		return
	}
	url := s.uploader.GetPublicURL(*team.LogoKey)
	if url != "" {
		team.LogoURL = &url
	}
}
