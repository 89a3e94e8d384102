package comments

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/povarna/pet-poison-map/internal/models"
	"github.com/povarna/pet-poison-map/internal/storage"
	"github.com/rs/zerolog"
)

type Moderator interface {
	Moderate(ctx context.Context, field models.Field, text string, policyName string) (string, error)
}

// IncidentGetter resolves the incident a comment is attached to.
type IncidentGetter interface {
	Get(ctx context.Context, incidentID string) (models.Incident, error)
}

type Service struct {
	store     storage.CommentStore
	incidents IncidentGetter
	moderator Moderator
	now       func() time.Time
	logger    *zerolog.Logger
}

func NewService(store storage.CommentStore, incidents IncidentGetter, moderator Moderator, logger *zerolog.Logger) *Service {
	return &Service{
		store:     store,
		incidents: incidents,
		moderator: moderator,
		now:       time.Now,
		logger:    logger,
	}
}

// List returns the comments of an incident, oldest first.
func (s *Service) List(ctx context.Context, incidentID string) ([]models.Comment, error) {
	items, err := s.store.ListByIncident(ctx, incidentID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	if items == nil {
		items = []models.Comment{}
	}
	return items, nil
}

func (s *Service) Create(ctx context.Context, incidentID string, content string, user *models.User) (models.Comment, error) {
	if _, err := s.incidents.Get(ctx, incidentID); err != nil {
		return models.Comment{}, err
	}

	cleaned, err := s.moderator.Moderate(ctx, models.FieldComment, content, string(models.FieldComment))
	if err != nil {
		return models.Comment{}, err
	}

	createdAt := s.now().UTC()
	commentID := newCommentID()

	comment := models.Comment{
		CommentID:  commentID,
		IncidentID: incidentID,
		SortKey:    models.CommentSortKey(createdAt, commentID),
		Content:    cleaned,
		CreatedAt:  createdAt,
	}
	if user != nil {
		comment.UserSub = user.Sub
		comment.Nickname = user.Nickname
		comment.Avatar = user.Avatar
	}

	if err := s.store.Put(ctx, comment); err != nil {
		return models.Comment{}, fmt.Errorf("store comment: %w", err)
	}

	s.logger.Info().
		Str("commentID", commentID).
		Str("incidentID", incidentID).
		Msg("comment created")

	return comment, nil
}

// newCommentID returns "c-" and the first 12 hex digits of a random uuid.
func newCommentID() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "c-" + hex[:12]
}
