package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/povarna/pet-poison-map/internal/models"
	"github.com/povarna/pet-poison-map/internal/storage"
)

type IncidentStore struct {
	mu        sync.RWMutex
	incidents map[string]models.Incident
}

func NewIncidentStore() *IncidentStore {
	return &IncidentStore{
		incidents: make(map[string]models.Incident),
	}
}

func (s *IncidentStore) List(ctx context.Context) ([]models.Incident, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]models.Incident, 0, len(s.incidents))
	for _, incident := range s.incidents {
		items = append(items, incident)
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].IncidentID < items[j].IncidentID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})

	return items, nil
}

func (s *IncidentStore) Get(ctx context.Context, incidentID string) (models.Incident, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	incident, ok := s.incidents[incidentID]
	if !ok {
		return models.Incident{}, storage.ErrNotFound
	}
	return incident, nil
}

func (s *IncidentStore) Put(ctx context.Context, incident models.Incident) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.incidents[incident.IncidentID] = incident
	return nil
}

// CommentStore keeps comments per incident.
type CommentStore struct {
	mu         sync.RWMutex
	byIncident map[string][]models.Comment
}

func NewCommentStore() *CommentStore {
	return &CommentStore{
		byIncident: make(map[string][]models.Comment),
	}
}

func (s *CommentStore) ListByIncident(ctx context.Context, incidentID string) ([]models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := append([]models.Comment{}, s.byIncident[incidentID]...)
	sort.Slice(items, func(i, j int) bool {
		return items[i].SortKey < items[j].SortKey
	})

	return items, nil
}

func (s *CommentStore) Put(ctx context.Context, comment models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.byIncident[comment.IncidentID] = append(s.byIncident[comment.IncidentID], comment)
	return nil
}
