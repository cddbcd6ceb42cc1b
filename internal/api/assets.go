package api

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/JaimeStill/lectern/pkg/handlers"
	"github.com/JaimeStill/lectern/pkg/openapi"
	"github.com/JaimeStill/lectern/pkg/routes"
	"github.com/JaimeStill/lectern/pkg/storage"
)

type assetHandler struct {
	store       storage.System
	logger      *slog.Logger
	maxListSize int32
}

func newAssetHandler(
	store storage.System,
	logger *slog.Logger,
	maxListSize int32,
) *assetHandler {
	return &assetHandler{
		store:       store,
		logger:      logger.With("handler", "assets"),
		maxListSize: maxListSize,
	}
}

func (h *assetHandler) routes() routes.Group {
	return routes.Group{
		Prefix: "/assets",
		Tags:   []string{"Assets"},
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.list, Protected: true, OpenAPI: listAssetsOp},
			{Method: "GET", Pattern: "/{key...}", Handler: h.stream, OpenAPI: streamAssetOp},
		},
	}
}

func (h *assetHandler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	maxResults, err := storage.ParseMaxResults(q.Get("max_results"), h.maxListSize)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	result, err := h.store.List(r.Context(), q.Get("prefix"), q.Get("marker"), maxResults)
	if err != nil {
		handlers.RespondError(w, h.logger, storage.MapHTTPStatus(err), err)
		return
	}

	handlers.RespondData(w, http.StatusOK, result)
}

func (h *assetHandler) stream(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	blob, err := h.store.Download(r.Context(), key)
	if err != nil {
		handlers.RespondError(w, h.logger, storage.MapHTTPStatus(err), err)
		return
	}
	defer blob.Body.Close()

	if blob.ContentType != "" {
		w.Header().Set("Content-Type", blob.ContentType)
	}
	if blob.CacheControl != "" {
		w.Header().Set("Cache-Control", blob.CacheControl)
	}
	if blob.ContentLength > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(blob.ContentLength, 10))
	}
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, blob.Body); err != nil {
		h.logger.Warn("asset stream interrupted", "key", key, "error", err)
	}
}

var listAssetsOp = &openapi.Operation{
	Summary:     "List stored assets",
	Description: "Read-only listing for reconciling orphaned assets.",
	Parameters: []*openapi.Parameter{
		openapi.QueryParam("prefix", "string", "Key prefix filter", false),
		openapi.QueryParam("marker", "string", "Continuation marker from a previous page", false),
		openapi.QueryParam("max_results", "integer", "Page size, capped by storage.max_list_size", false),
	},
	Responses: map[int]*openapi.Response{
		200: openapi.ResponseJSON("Asset page", "AssetList"),
		400: openapi.ResponseRef("BadRequest"),
		401: openapi.ResponseRef("Unauthorized"),
		503: openapi.ResponseRef("ServiceUnavailable"),
	},
}

var streamAssetOp = &openapi.Operation{
	Summary: "Stream a stored asset",
	Parameters: []*openapi.Parameter{
		openapi.KeyParam("key", "Asset key, e.g. sermons/<uuid>"),
	},
	Responses: map[int]*openapi.Response{
		200: {Description: "Asset bytes"},
		404: openapi.ResponseRef("NotFound"),
		503: openapi.ResponseRef("ServiceUnavailable"),
	},
}

func assetSchemas() map[string]*openapi.Schema {
	return map[string]*openapi.Schema{
		"AssetMeta": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"key":          {Type: "string"},
				"contentType":  {Type: "string"},
				"size":         {Type: "integer"},
				"lastModified": {Type: "string", Format: "date-time"},
			},
		},
		"AssetList": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"blobs":      {Type: "array", Items: openapi.SchemaRef("AssetMeta")},
				"nextMarker": {Type: "string"},
			},
		},
	}
}
