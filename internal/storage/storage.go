package storage

import (
	"context"
	"errors"

	"github.com/povarna/pet-poison-map/internal/models"
)

var ErrNotFound = errors.New("not found")

type IncidentStore interface {
	List(ctx context.Context) ([]models.Incident, error)
	Get(ctx context.Context, incidentID string) (models.Incident, error)
	Put(ctx context.Context, incident models.Incident) error
}

// CommentStore returns comments of an incident ordered by sort key, oldest
// first.
type CommentStore interface {
	ListByIncident(ctx context.Context, incidentID string) ([]models.Comment, error)
	Put(ctx context.Context, comment models.Comment) error
}

// Stores groups the providers selected at startup.
type Stores struct {
	Incidents IncidentStore
	Comments  CommentStore
	close     func()
}

func NewStores(incidents IncidentStore, comments CommentStore, closeFn func()) *Stores {
	return &Stores{
		Incidents: incidents,
		Comments:  comments,
		close:     closeFn,
	}
}

func (s *Stores) Close() {
	if s.close != nil {
		s.close()
	}
}
