package api

import "github.com/artpar/pokedex/internal/core/domain"

// =============================================================================
// Response Types
// =============================================================================

// ListResponse is the response for the paginated catalog listing.
type ListResponse struct {
	Success    bool               `json:"success"`
	Data       []domain.Pokemon   `json:"data"`
	Pagination PaginationResponse `json:"pagination"`
	Filters    FiltersResponse    `json:"filters"`
}

// PaginationResponse describes the page returned by a listing.
type PaginationResponse struct {
	Total         int  `json:"total"`
	Page          int  `json:"page"`
	Limit         int  `json:"limit"`
	TotalPages    int  `json:"totalPages"`
	HasNext       bool `json:"hasNext"`
	HasPrev       bool `json:"hasPrev"`
	CapturedCount int  `json:"capturedCount"`
}

// FiltersResponse echoes the filters applied to a listing.
// Type and Search are null when the parameter was not supplied.
type FiltersResponse struct {
	Sort     string  `json:"sort"`
	Type     *string `json:"type"`
	Search   *string `json:"search"`
	Captured bool    `json:"captured"`
}

// TypesResponse is the response for the distinct type listing.
type TypesResponse struct {
	Success bool     `json:"success"`
	Types   []string `json:"types"`
}

// CaptureResponse is the response for capture and release actions.
type CaptureResponse struct {
	Success  bool   `json:"success"`
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Captured bool   `json:"captured"`
	Message  string `json:"message"`
}

// ErrorResponse is the response for errors.
// MaxPage is only set when the requested page is past the last page.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	MaxPage int    `json:"maxPage,omitempty"`
}

// HealthResponse is the response for the health endpoint.
type HealthResponse struct {
	Status string `json:"status"`
}

// ReadyResponse is the response for the readiness endpoint.
type ReadyResponse struct {
	Status     string `json:"status"`
	Generation string `json:"generation,omitempty"`
	Records    int    `json:"records"`
	Captured   int    `json:"captured"`
}
