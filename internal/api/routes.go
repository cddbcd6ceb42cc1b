package api

import (
	"net/http"

	"github.com/JaimeStill/lectern/internal/auth"
	"github.com/JaimeStill/lectern/internal/config"
	"github.com/JaimeStill/lectern/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
	runtime *Runtime,
) []routes.Group {
	groups := []routes.Group{
		auth.NewHandler(domain.Gate, runtime.Logger, cfg.Auth.LoginRateLimit).Routes(),
		domain.Sermons.Handler(runtime.MaxUploadSize).Routes(),
		newAssetHandler(runtime.Storage, runtime.Logger, runtime.MaxListSize).routes(),
	}

	routes.Register(mux, auth.Require(domain.Gate, runtime.Logger), groups...)
	return groups
}
