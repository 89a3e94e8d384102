package api

import (
	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	"github.com/emicklei/go-restful/v3"
	"github.com/povarna/pet-poison-map/internal/api/middleware"
	"github.com/povarna/pet-poison-map/internal/auth"
	"github.com/povarna/pet-poison-map/internal/models"
)

// RegisterRoutes serves the API under /api/v1 and, for the map frontend,
// at the root without a prefix.
func RegisterRoutes(container *restful.Container, handler *Handler, tokens *auth.TokenIssuer) {
	root := new(restful.WebService)
	root.
		Path("/").
		Consumes(restful.MIME_JSON).
		Produces(restful.MIME_JSON)
	addRoutes(root, handler, tokens)
	container.Add(root)

	ws := new(restful.WebService)
	ws.
		Path("/api/v1").
		Consumes(restful.MIME_JSON).
		Produces(restful.MIME_JSON)
	addRoutes(ws, handler, tokens)
	container.Add(ws)
}

func addRoutes(ws *restful.WebService, handler *Handler, tokens *auth.TokenIssuer) {
	// Health endpoint
	ws.
		Route(ws.GET("health").
			To(handler.Health).
			Doc("Health check").
			Metadata(restfulspec.KeyOpenAPITags, []string{"health"}).
			Writes(HealthResponse{}).
			Returns(200, "OK", HealthResponse{}))

	ws.
		Route(ws.GET("/incidents").
			To(handler.ListIncidents).
			Doc("List incidents").
			Metadata(restfulspec.KeyOpenAPITags, []string{"incidents"}).
			Writes([]models.Incident{}).
			Returns(200, "OK", []models.Incident{}).
			Returns(500, "Internal Server Error", middleware.ErrorResponse{}))

	ws.
		Route(ws.POST("/incidents").
			Filter(auth.BearerFilter(tokens)).
			To(handler.CreateIncident).
			Doc("Report an incident").
			Metadata(restfulspec.KeyOpenAPITags, []string{"incidents"}).
			Param(ws.HeaderParameter("Authorization", "Bearer app token").DataType("string")).
			Reads(models.IncidentCreateRequest{}).
			Writes(models.IncidentCreateResponse{}).
			Returns(200, "OK", models.IncidentCreateResponse{}).
			Returns(400, "Rejected or Bad Request", middleware.RejectionResponse{}).
			Returns(401, "Unauthorized", middleware.ErrorResponse{}).
			Returns(500, "Internal Server Error", middleware.ErrorResponse{}))

	ws.
		Route(ws.GET("/comments").
			To(handler.ListComments).
			Doc("List comments of an incident, oldest first").
			Metadata(restfulspec.KeyOpenAPITags, []string{"comments"}).
			Param(ws.QueryParameter("incident_id", "Incident identifier").DataType("string").Required(true)).
			Writes(models.CommentListResponse{}).
			Returns(200, "OK", models.CommentListResponse{}).
			Returns(400, "Bad Request", middleware.ErrorResponse{}).
			Returns(500, "Internal Server Error", middleware.ErrorResponse{}))

	ws.
		Route(ws.POST("/comments").
			Filter(auth.BearerFilter(tokens)).
			To(handler.CreateComment).
			Doc("Comment on an incident").
			Metadata(restfulspec.KeyOpenAPITags, []string{"comments"}).
			Param(ws.HeaderParameter("Authorization", "Bearer app token").DataType("string")).
			Reads(models.CommentCreateRequest{}).
			Writes(models.CommentCreateResponse{}).
			Returns(200, "OK", models.CommentCreateResponse{}).
			Returns(400, "Rejected or Bad Request", middleware.RejectionResponse{}).
			Returns(401, "Unauthorized", middleware.ErrorResponse{}).
			Returns(404, "Incident Not Found", middleware.ErrorResponse{}).
			Returns(500, "Internal Server Error", middleware.ErrorResponse{}))

	ws.
		Route(ws.POST("/moderation/validate").
			To(handler.ValidateText).
			Doc("Check text against a policy without storing it").
			Metadata(restfulspec.KeyOpenAPITags, []string{"moderation"}).
			Reads(models.ValidateTextRequest{}).
			Writes(models.ModerationResult{}).
			Returns(200, "OK", models.ModerationResult{}).
			Returns(400, "Bad Request", middleware.ErrorResponse{}))

	ws.
		Route(ws.POST("/auth/douyin/callback").
			To(handler.DouyinCallback).
			Doc("Exchange a Douyin authorization code for an app token").
			Metadata(restfulspec.KeyOpenAPITags, []string{"auth"}).
			Reads(models.AuthCallbackRequest{}).
			Writes(models.AuthCallbackResponse{}).
			Returns(200, "OK", models.AuthCallbackResponse{}).
			Returns(400, "Bad Request", middleware.ErrorResponse{}).
			Returns(500, "Internal Server Error", middleware.ErrorResponse{}))
}
