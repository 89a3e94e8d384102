package api

import (
	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	"github.com/emicklei/go-restful/v3"
	"github.com/go-openapi/spec"
)

const OpenAPIPath = "/api/v1/openapi.json"

func enrichSwaggerObject(swo *spec.Swagger) {
	swo.Info = &spec.Info{
		InfoProps: spec.InfoProps{
			Title:       "Pet Poison Map API",
			Description: "Hazard reports and comments with text moderation",
			Version:     Version,
		},
	}
	swo.Tags = []spec.Tag{
		{TagProps: spec.TagProps{Name: "health", Description: "Health checks"}},
		{TagProps: spec.TagProps{Name: "incidents", Description: "Hazard reports on the map"}},
		{TagProps: spec.TagProps{Name: "comments", Description: "Comments on incidents"}},
		{TagProps: spec.TagProps{Name: "moderation", Description: "Text safety checks"}},
		{TagProps: spec.TagProps{Name: "auth", Description: "Douyin login"}},
	}
}

// RegisterOpenAPI serves the document for every web service already added.
func RegisterOpenAPI(container *restful.Container) {
	config := restfulspec.Config{
		WebServices:                   container.RegisteredWebServices(),
		APIPath:                       OpenAPIPath,
		PostBuildSwaggerObjectHandler: enrichSwaggerObject,
	}

	container.Add(restfulspec.NewOpenAPIService(config))
}
