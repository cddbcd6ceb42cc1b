package api

import (
	"fmt"

	"github.com/JaimeStill/lectern/internal/audio"
	"github.com/JaimeStill/lectern/internal/auth"
	"github.com/JaimeStill/lectern/internal/config"
	"github.com/JaimeStill/lectern/internal/sermons"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Gate    auth.Gate
	Sermons sermons.System
}

// NewDomain creates all domain systems from the API runtime.
// When an OIDC issuer is configured its discovery document is fetched here,
// so construction fails fast on an unreachable issuer.
func NewDomain(cfg *config.Config, runtime *Runtime) (*Domain, error) {
	var external auth.TokenVerifier
	if cfg.Auth.OIDCEnabled() {
		v, err := auth.NewOIDCVerifier(
			runtime.Lifecycle.Context(),
			cfg.Auth.OIDCIssuer,
			cfg.Auth.OIDCClientID,
		)
		if err != nil {
			return nil, fmt.Errorf("oidc verifier: %w", err)
		}
		external = v
	}

	gate := auth.New(
		&cfg.Auth,
		auth.StaticCredentials{
			Username: cfg.Auth.Username,
			Password: cfg.Auth.Password,
		},
		external,
		runtime.Logger,
	)

	pipeline := audio.New(
		runtime.Storage,
		runtime.MaxUploadSize,
		runtime.Logger,
	)

	sermonsSystem := sermons.New(
		sermons.NewStore(runtime.Database.Connection()),
		pipeline,
		runtime.Logger,
		runtime.Pagination,
	)

	return &Domain{
		Gate:    gate,
		Sermons: sermonsSystem,
	}, nil
}
