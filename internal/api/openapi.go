package api

import (
	"net/http"
	"strings"

	"github.com/JaimeStill/lectern/internal/auth"
	"github.com/JaimeStill/lectern/internal/config"
	"github.com/JaimeStill/lectern/internal/sermons"
	"github.com/JaimeStill/lectern/pkg/openapi"
	"github.com/JaimeStill/lectern/pkg/routes"
)

var bearerSecurity = []map[string][]string{{"bearer": {}}}

func buildSpec(cfg *config.Config, groups []routes.Group) (http.HandlerFunc, error) {
	spec := openapi.NewSpec(cfg.API.OpenAPI.Title, cfg.Version)
	spec.SetDescription(cfg.API.OpenAPI.Description)
	spec.AddServer(cfg.API.BasePath)

	spec.Components.AddSchemas(sermons.Schemas())
	spec.Components.AddSchemas(auth.Schemas())
	spec.Components.AddSchemas(assetSchemas())

	routes.Walk(groups, func(path string, group routes.Group, route routes.Route) {
		if route.OpenAPI == nil {
			return
		}

		op := *route.OpenAPI
		if len(op.Tags) == 0 {
			op.Tags = group.Tags
		}
		if route.Protected {
			op.Security = bearerSecurity
		}

		spec.AddOperation(specPath(path), route.Method, &op)
	})

	data, err := openapi.MarshalJSON(spec)
	if err != nil {
		return nil, err
	}
	return openapi.ServeSpec(data), nil
}

// specPath converts a ServeMux pattern into an OpenAPI path template.
func specPath(pattern string) string {
	return strings.ReplaceAll(pattern, "...}", "}")
}
