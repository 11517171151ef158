package api

import (
	"net/http"

	"github.com/JaimeStill/grader/pkg/openapi"
	"github.com/JaimeStill/grader/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	runtime *Runtime,
	spec []byte,
) {
	images := newImageHandler(runtime.Storage, runtime.Auth, runtime.Logger)

	routes.Register(
		mux,
		domain.Grading.Handler().Routes(),
		domain.Records.Handler().Routes(),
		domain.Analytics.Handler().Routes(),
		images.routes(),
		routes.Group{
			Routes: []routes.Route{
				{Method: "GET", Pattern: "/openapi.json", Handler: openapi.ServeSpec(spec)},
			},
		},
	)
}
