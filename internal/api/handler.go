package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/emicklei/go-restful/v3"
	"github.com/povarna/pet-poison-map/internal/api/middleware"
	"github.com/povarna/pet-poison-map/internal/auth"
	"github.com/povarna/pet-poison-map/internal/executor"
	"github.com/povarna/pet-poison-map/internal/incidents"
	"github.com/povarna/pet-poison-map/internal/models"
	"github.com/povarna/pet-poison-map/internal/storage"
	"github.com/rs/zerolog"
)

type IncidentService interface {
	List(ctx context.Context) ([]models.Incident, error)
	Create(ctx context.Context, lng, lat float64, title string, user *models.User) (models.Incident, error)
}

type CommentService interface {
	List(ctx context.Context, incidentID string) ([]models.Comment, error)
	Create(ctx context.Context, incidentID string, content string, user *models.User) (models.Comment, error)
}

type ModerationService interface {
	Execute(ctx context.Context, req models.ModerationRequest) models.ModerationResult
}

type AuthService interface {
	DouyinCallback(ctx context.Context, code string) (models.AuthCallbackResponse, error)
}

type Handler struct {
	incidents  IncidentService
	comments   CommentService
	moderation ModerationService
	auth       AuthService
	logger     *zerolog.Logger
}

func NewHandler(
	incidents IncidentService,
	comments CommentService,
	moderation ModerationService,
	authService AuthService,
	logger *zerolog.Logger,
) *Handler {
	return &Handler{
		incidents:  incidents,
		comments:   comments,
		moderation: moderation,
		auth:       authService,
		logger:     logger,
	}
}

// Health handler GET /health and /api/v1/health
func (h *Handler) Health(req *restful.Request, resp *restful.Response) {
	_ = resp.WriteHeaderAndEntity(http.StatusOK, HealthResponse{
		OK:      true,
		Status:  "ok",
		Version: Version,
	})
}

// GET /api/v1/incidents
func (h *Handler) ListIncidents(req *restful.Request, resp *restful.Response) {
	items, err := h.incidents.List(req.Request.Context())
	if err != nil {
		h.writeError(resp, err)
		return
	}

	_ = resp.WriteHeaderAndEntity(http.StatusOK, items)
}

// POST /api/v1/incidents
// Body: IncidentCreateRequest
// Returns: IncidentCreateResponse
func (h *Handler) CreateIncident(req *restful.Request, resp *restful.Response) {
	var body models.IncidentCreateRequest
	if err := readEntity(req, &body); err != nil {
		h.logger.Error().Err(err).Msg("Failed to parse request body")
		h.writeError(resp, err)
		return
	}

	user, _ := auth.UserFromRequest(req)

	incident, err := h.incidents.Create(req.Request.Context(), body.Lng, body.Lat, body.Title, user)
	if err != nil {
		h.writeError(resp, err)
		return
	}

	_ = resp.WriteHeaderAndEntity(http.StatusOK, models.IncidentCreateResponse{Incident: incident})
}

// GET /api/v1/comments?incident_id=
func (h *Handler) ListComments(req *restful.Request, resp *restful.Response) {
	incidentID := req.QueryParameter("incident_id")
	if incidentID == "" {
		middleware.HandleError(resp, errors.New("incident_id is required"), http.StatusBadRequest)
		return
	}

	items, err := h.comments.List(req.Request.Context(), incidentID)
	if err != nil {
		h.writeError(resp, err)
		return
	}

	_ = resp.WriteHeaderAndEntity(http.StatusOK, models.CommentListResponse{
		IncidentID: incidentID,
		Items:      items,
	})
}

// POST /api/v1/comments
// Body: CommentCreateRequest
// Returns: CommentCreateResponse
func (h *Handler) CreateComment(req *restful.Request, resp *restful.Response) {
	var body models.CommentCreateRequest
	if err := readEntity(req, &body); err != nil {
		h.logger.Error().Err(err).Msg("Failed to parse request body")
		h.writeError(resp, err)
		return
	}
	if body.IncidentID == "" {
		middleware.HandleError(resp, errors.New("incident_id is required"), http.StatusBadRequest)
		return
	}

	user, _ := auth.UserFromRequest(req)

	comment, err := h.comments.Create(req.Request.Context(), body.IncidentID, body.Content, user)
	if err != nil {
		h.writeError(resp, err)
		return
	}

	_ = resp.WriteHeaderAndEntity(http.StatusOK, models.CommentCreateResponse{
		OK:        true,
		CommentID: comment.CommentID,
	})
}

// POST /api/v1/moderation/validate
// Body: ValidateTextRequest
// Returns: ModerationResult, whatever the verdict
func (h *Handler) ValidateText(req *restful.Request, resp *restful.Response) {
	var body models.ValidateTextRequest
	if err := readEntity(req, &body); err != nil {
		h.writeError(resp, err)
		return
	}

	field := models.FieldComment
	if body.Policy == string(models.FieldTitle) {
		field = models.FieldTitle
	}

	result := h.moderation.Execute(req.Request.Context(), models.ModerationRequest{
		Field:  field,
		Text:   body.Text,
		Policy: body.Policy,
	})

	_ = resp.WriteHeaderAndEntity(http.StatusOK, result)
}

// POST /api/v1/auth/douyin/callback
// Body: AuthCallbackRequest
// Returns: AuthCallbackResponse
func (h *Handler) DouyinCallback(req *restful.Request, resp *restful.Response) {
	var body models.AuthCallbackRequest
	if err := readEntity(req, &body); err != nil {
		h.writeError(resp, err)
		return
	}

	out, err := h.auth.DouyinCallback(req.Request.Context(), body.Code)
	if err != nil {
		h.writeError(resp, err)
		return
	}

	_ = resp.WriteHeaderAndEntity(http.StatusOK, out)
}

func readEntity(req *restful.Request, entity any) error {
	if err := req.ReadEntity(entity); err != nil {
		if errors.Is(err, io.EOF) {
			return middleware.ErrEmptyBody
		}
		return err
	}
	return nil
}

// writeError maps service errors onto HTTP responses.
func (h *Handler) writeError(resp *restful.Response, err error) {
	var rejection *executor.RejectionError
	var tooLarge *http.MaxBytesError

	switch {
	case errors.As(err, &rejection):
		middleware.HandleRejection(resp, string(rejection.Field), string(rejection.Reason))
	case errors.As(err, &tooLarge):
		middleware.HandleError(resp, err, http.StatusRequestEntityTooLarge)
	case errors.Is(err, storage.ErrNotFound):
		middleware.HandleError(resp, err, http.StatusNotFound)
	case errors.Is(err, middleware.ErrEmptyBody),
		errors.Is(err, incidents.ErrInvalidCoordinates),
		errors.Is(err, auth.ErrMissingCode),
		errors.Is(err, auth.ErrExchangeFailed),
		errors.Is(err, auth.ErrDouyinConfigMissing):
		middleware.HandleError(resp, err, http.StatusBadRequest)
	case isDecodeError(err):
		middleware.HandleError(resp, err, http.StatusBadRequest)
	default:
		h.logger.Error().Err(err).Msg("Request failed")
		middleware.HandleError(resp, err, http.StatusInternalServerError)
	}
}

func isDecodeError(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr) || errors.Is(err, io.ErrUnexpectedEOF)
}
