package pagination

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

// PageRequest represents a client request for a page of data with an optional search term.
type PageRequest struct {
	Page   int     `json:"page"`
	Limit  int     `json:"limit"`
	Search *string `json:"search,omitempty"`
}

// Normalize adjusts the request to ensure valid pagination values based on the config.
func (r *PageRequest) Normalize(cfg Config) {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.Limit < 1 {
		r.Limit = cfg.DefaultPageSize
	}
	if r.Limit > cfg.MaxPageSize {
		r.Limit = cfg.MaxPageSize
	}
}

// Offset calculates the number of records to skip based on page and limit.
// It saturates at math.MaxInt instead of overflowing for very large pages.
func (r *PageRequest) Offset() int {
	if r.Page <= 1 || r.Limit <= 0 {
		return 0
	}
	if r.Page-1 > math.MaxInt/r.Limit {
		return math.MaxInt
	}
	return (r.Page - 1) * r.Limit
}

// PageRequestFromQuery parses pagination parameters from URL query values.
// Supported parameters: page, limit, search. Unparseable values fall back to defaults.
func PageRequestFromQuery(values url.Values, cfg Config) PageRequest {
	page, _ := strconv.Atoi(values.Get("page"))
	limit, _ := strconv.Atoi(values.Get("limit"))

	var search *string
	if s := strings.TrimSpace(values.Get("search")); s != "" {
		search = &s
	}

	req := PageRequest{
		Page:   page,
		Limit:  limit,
		Search: search,
	}

	req.Normalize(cfg)
	return req
}

// Meta is the pagination metadata returned alongside a page of items.
type Meta struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// PageResult holds a page of data along with pagination metadata.
type PageResult[T any] struct {
	Items []T `json:"items"`
	Meta
}

// TotalPages returns ceil(total / limit). An empty set has zero pages.
func TotalPages(total, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	pages := total / limit
	if total%limit != 0 {
		pages++
	}
	return pages
}

// NewPageResult creates a PageResult with calculated total pages.
func NewPageResult[T any](items []T, total, page, limit int) PageResult[T] {
	if items == nil {
		items = []T{}
	}

	return PageResult[T]{
		Items: items,
		Meta: Meta{
			Total:      total,
			Page:       page,
			Limit:      limit,
			TotalPages: TotalPages(total, limit),
		},
	}
}
