package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/JaimeStill/lectern/pkg/handlers"
	"github.com/JaimeStill/lectern/pkg/middleware"
	"github.com/JaimeStill/lectern/pkg/openapi"
	"github.com/JaimeStill/lectern/pkg/routes"
)

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Handler provides the login endpoint.
type Handler struct {
	gate   Gate
	logger *slog.Logger
	login  http.HandlerFunc
}

// NewHandler creates a Handler whose login endpoint allows rateLimit
// attempts per client per minute. A rateLimit of zero disables throttling.
func NewHandler(gate Gate, logger *slog.Logger, rateLimit int) *Handler {
	h := &Handler{
		gate:   gate,
		logger: logger.With("handler", "auth"),
	}

	h.login = h.Login
	if rateLimit > 0 {
		h.login = middleware.RateLimit(rateLimit, time.Minute)(http.HandlerFunc(h.Login)).ServeHTTP
	}
	return h
}

// Routes returns the route group definition for auth endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/auth",
		Tags:   []string{"Auth"},
		Routes: []routes.Route{
			{
				Method:  "POST",
				Pattern: "/login",
				Handler: h.login,
				OpenAPI: &openapi.Operation{
					Summary:     "Exchange the admin credential pair for a bearer token",
					RequestBody: openapi.RequestBodyJSON("LoginRequest", true),
					Responses: map[int]*openapi.Response{
						200: openapi.ResponseJSON("Signed token", "Token"),
						400: openapi.ResponseRef("BadRequest"),
						401: openapi.ResponseRef("Unauthorized"),
						429: openapi.ResponseRef("TooManyRequests"),
					},
				},
			},
		},
	}
}

// Schemas returns the OpenAPI component schemas for auth payloads.
func Schemas() map[string]*openapi.Schema {
	return map[string]*openapi.Schema{
		"LoginRequest": {
			Type:     "object",
			Required: []string{"username", "password"},
			Properties: map[string]*openapi.Schema{
				"username": {Type: "string"},
				"password": {Type: "string", Format: "password"},
			},
		},
		"Token": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"token":     {Type: "string", Description: "Signed bearer token"},
				"expiresAt": {Type: "string", Format: "date-time"},
			},
		},
	}
}

// Login validates the credential pair and responds with a signed token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrMissingCredentials)
		return
	}

	token, err := h.gate.IssueToken(strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, token)
}
