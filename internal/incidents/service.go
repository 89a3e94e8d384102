package incidents

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/povarna/pet-poison-map/internal/models"
	"github.com/povarna/pet-poison-map/internal/storage"
	"github.com/rs/zerolog"
)

var ErrInvalidCoordinates = errors.New("invalid coordinates")

// Moderator returns the cleaned text to persist or a rejection error.
type Moderator interface {
	Moderate(ctx context.Context, field models.Field, text string, policyName string) (string, error)
}

// DemoIncidents are served while the store is empty so a fresh map is not
// blank.
var DemoIncidents = []models.Incident{
	{IncidentID: "test-1", Lat: 31.2304, Lng: 121.4737, Title: "测试点位（上海）"},
	{IncidentID: "test-2", Lat: 39.9042, Lng: 116.4074, Title: "测试点位（北京）"},
}

type Service struct {
	store     storage.IncidentStore
	moderator Moderator
	demo      bool
	now       func() time.Time
	logger    *zerolog.Logger
}

func NewService(store storage.IncidentStore, moderator Moderator, demo bool, logger *zerolog.Logger) *Service {
	return &Service{
		store:     store,
		moderator: moderator,
		demo:      demo,
		now:       time.Now,
		logger:    logger,
	}
}

func (s *Service) List(ctx context.Context) ([]models.Incident, error) {
	items, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list incidents: %w", err)
	}

	if len(items) == 0 && s.demo {
		return append([]models.Incident(nil), DemoIncidents...), nil
	}

	return items, nil
}

// Get returns a stored incident, or a demo incident when demo mode is on.
func (s *Service) Get(ctx context.Context, incidentID string) (models.Incident, error) {
	incident, err := s.store.Get(ctx, incidentID)
	if err == nil {
		return incident, nil
	}

	if errors.Is(err, storage.ErrNotFound) && s.demo {
		for _, demo := range DemoIncidents {
			if demo.IncidentID == incidentID {
				return demo, nil
			}
		}
	}

	return models.Incident{}, fmt.Errorf("get incident %s: %w", incidentID, err)
}

// Create moderates the title and stores the incident with the cleaned title.
func (s *Service) Create(ctx context.Context, lng, lat float64, title string, user *models.User) (models.Incident, error) {
	if lng < -180 || lng > 180 || lat < -90 || lat > 90 {
		return models.Incident{}, fmt.Errorf("%w: lng=%v lat=%v", ErrInvalidCoordinates, lng, lat)
	}

	cleaned, err := s.moderator.Moderate(ctx, models.FieldTitle, title, string(models.FieldTitle))
	if err != nil {
		return models.Incident{}, err
	}

	incident := models.Incident{
		IncidentID: uuid.NewString(),
		Lng:        lng,
		Lat:        lat,
		Title:      cleaned,
		CreatedAt:  s.now().UTC(),
	}
	if user != nil {
		incident.UserSub = user.Sub
	}

	if err := s.store.Put(ctx, incident); err != nil {
		return models.Incident{}, fmt.Errorf("store incident: %w", err)
	}

	s.logger.Info().
		Str("incidentID", incident.IncidentID).
		Str("userSub", incident.UserSub).
		Msg("incident created")

	return incident, nil
}
