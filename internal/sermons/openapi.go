package sermons

import "github.com/JaimeStill/lectern/pkg/openapi"

var bearer = []map[string][]string{{"bearer": {}}}

var listOp = &openapi.Operation{
	Summary: "List sermons, newest first",
	Parameters: []*openapi.Parameter{
		openapi.IntQueryParam("page", "Page number (1-indexed)", 1, 1),
		openapi.IntQueryParam("limit", "Records per page, capped by api.pagination.max_page_size", 6, 1),
		openapi.QueryParam("search", "string", "Case-insensitive match on title or description", false),
	},
	Responses: map[int]*openapi.Response{
		200: openapi.ResponseJSON("Sermon page", "CatalogResponse"),
		503: openapi.ResponseRef("ServiceUnavailable"),
	},
}

var findOp = &openapi.Operation{
	Summary:    "Find a sermon by id",
	Parameters: []*openapi.Parameter{openapi.PathParam("id", "Sermon id")},
	Responses: map[int]*openapi.Response{
		200: openapi.ResponseJSON("Sermon", "SermonResponse"),
		404: openapi.ResponseRef("NotFound"),
	},
}

var createOp = &openapi.Operation{
	Summary:     "Create a sermon with its audio",
	RequestBody: openapi.RequestBodyMultipart(formSchema([]string{"title", "description", "audio"}), true),
	Security:    bearer,
	Responses: map[int]*openapi.Response{
		201: openapi.ResponseJSON("Created sermon", "SermonResponse"),
		400: openapi.ResponseRef("BadRequest"),
		401: openapi.ResponseRef("Unauthorized"),
		413: openapi.ResponseRef("PayloadTooLarge"),
		502: openapi.ResponseRef("BadGateway"),
		503: openapi.ResponseRef("ServiceUnavailable"),
	},
}

var updateOp = &openapi.Operation{
	Summary:     "Edit a sermon; audio is replaced in place when supplied",
	Parameters:  []*openapi.Parameter{openapi.PathParam("id", "Sermon id")},
	RequestBody: openapi.RequestBodyMultipart(formSchema(nil), true),
	Security:    bearer,
	Responses: map[int]*openapi.Response{
		200: openapi.ResponseJSON("Updated sermon", "SermonResponse"),
		400: openapi.ResponseRef("BadRequest"),
		401: openapi.ResponseRef("Unauthorized"),
		404: openapi.ResponseRef("NotFound"),
		413: openapi.ResponseRef("PayloadTooLarge"),
		502: openapi.ResponseRef("BadGateway"),
		503: openapi.ResponseRef("ServiceUnavailable"),
	},
}

var deleteOp = &openapi.Operation{
	Summary:     "Delete a sermon and its audio",
	Description: "The record is kept when its audio is already absent from the asset store.",
	Parameters:  []*openapi.Parameter{openapi.PathParam("id", "Sermon id")},
	Security:    bearer,
	Responses: map[int]*openapi.Response{
		200: {Description: "Deleted"},
		401: openapi.ResponseRef("Unauthorized"),
		404: openapi.ResponseRef("NotFound"),
		502: openapi.ResponseRef("BadGateway"),
		503: openapi.ResponseRef("ServiceUnavailable"),
	},
}

func formSchema(required []string) *openapi.Schema {
	return &openapi.Schema{
		Type:     "object",
		Required: required,
		Properties: map[string]*openapi.Schema{
			"title":       {Type: "string"},
			"description": {Type: "string"},
			"audio":       {Type: "string", Format: "binary"},
		},
	}
}

// Schemas returns the OpenAPI component schemas for sermon payloads.
func Schemas() map[string]*openapi.Schema {
	return map[string]*openapi.Schema{
		"Sermon": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":          {Type: "string", Format: "uuid"},
				"title":       {Type: "string"},
				"description": {Type: "string"},
				"assetUrl":    {Type: "string", Format: "uri"},
				"assetId":     {Type: "string"},
			},
		},
		"SermonResponse": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"data": openapi.SchemaRef("Sermon"),
			},
		},
		"CatalogResponse": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"data": {
					Type: "object",
					Properties: map[string]*openapi.Schema{
						"sermons":    {Type: "array", Items: openapi.SchemaRef("Sermon")},
						"pagination": openapi.SchemaRef("Pagination"),
					},
				},
			},
		},
	}
}
