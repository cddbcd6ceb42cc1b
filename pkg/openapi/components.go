package openapi

import "maps"

// NewComponents creates Components with shared schemas, error responses,
// and the bearer security scheme.
func NewComponents() *Components {
	return &Components{
		Schemas: map[string]*Schema{
			"Pagination": {
				Type: "object",
				Properties: map[string]*Schema{
					"total":      {Type: "integer", Description: "Total matching records"},
					"page":       {Type: "integer", Description: "Page number (1-indexed)", Example: 1},
					"limit":      {Type: "integer", Description: "Records per page", Example: 6},
					"totalPages": {Type: "integer", Description: "ceil(total / limit); 0 when empty"},
				},
			},
			"Error": {
				Type: "object",
				Properties: map[string]*Schema{
					"error": {Type: "string", Description: "Error message"},
				},
			},
		},
		Responses: map[string]*Response{
			"BadRequest":         errorResponse("Invalid request"),
			"Unauthorized":       errorResponse("Missing, malformed, or expired credential"),
			"NotFound":           errorResponse("Resource not found"),
			"PayloadTooLarge":    errorResponse("Upload exceeds the configured size ceiling"),
			"BadGateway":         errorResponse("Asset store rejected the operation"),
			"ServiceUnavailable": errorResponse("Asset or record store unavailable"),
			"TooManyRequests":    errorResponse("Rate limit exceeded"),
		},
		SecuritySchemes: map[string]*SecurityScheme{
			"bearer": {Type: "http", Scheme: "bearer", BearerFormat: "JWT"},
		},
	}
}

// AddSchemas merges the given schemas into the component schemas.
func (c *Components) AddSchemas(schemas map[string]*Schema) {
	maps.Copy(c.Schemas, schemas)
}

func errorResponse(description string) *Response {
	return &Response{
		Description: description,
		Content: map[string]*MediaType{
			"application/json": {Schema: SchemaRef("Error")},
		},
	}
}
