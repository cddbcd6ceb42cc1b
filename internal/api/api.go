// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"fmt"
	"net/http"

	"github.com/JaimeStill/lectern/internal/config"
	"github.com/JaimeStill/lectern/internal/infrastructure"
	"github.com/JaimeStill/lectern/pkg/middleware"
	"github.com/JaimeStill/lectern/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)

	domain, err := NewDomain(cfg, runtime)
	if err != nil {
		return nil, err
	}

	mux, err := NewMux(cfg, runtime, domain)
	if err != nil {
		return nil, err
	}

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.Trace("lectern.api"))
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Logger))

	return m, nil
}

// NewMux registers every domain route group plus the generated OpenAPI
// document on a fresh ServeMux. Paths are relative to the module prefix.
func NewMux(cfg *config.Config, runtime *Runtime, domain *Domain) (*http.ServeMux, error) {
	mux := http.NewServeMux()

	groups := registerRoutes(mux, domain, cfg, runtime)

	spec, err := buildSpec(cfg, groups)
	if err != nil {
		return nil, fmt.Errorf("build openapi spec: %w", err)
	}
	mux.HandleFunc("GET /openapi.json", spec)

	return mux, nil
}
