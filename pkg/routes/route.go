package routes

import (
	"net/http"

	"github.com/JaimeStill/lectern/pkg/openapi"
)

// Route binds an HTTP method and pattern to a handler.
// Protected routes are wrapped with the Guard passed to Register.
type Route struct {
	Method    string
	Pattern   string
	Handler   http.HandlerFunc
	Protected bool
	OpenAPI   *openapi.Operation
}
