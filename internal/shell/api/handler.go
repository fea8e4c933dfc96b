// Package api provides HTTP handlers for the Pokedex API.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/artpar/pokedex/internal/core/query"
	"github.com/artpar/pokedex/internal/core/validation"
	"github.com/artpar/pokedex/internal/shell/catalog"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// =============================================================================
// Dependencies
// =============================================================================

// Catalog supplies the current record snapshot. *catalog.Cache satisfies it.
type Catalog interface {
	Snapshot(ctx context.Context) catalog.Snapshot
}

// Captures tracks captured record ids. *capture.Store satisfies it.
type Captures interface {
	Capture(id int) bool
	Release(id int) bool
	IsCaptured(id int) bool
	Count() int
}

// =============================================================================
// Handler
// =============================================================================

// Handler provides HTTP handlers for the API.
type Handler struct {
	catalog  Catalog
	captures Captures
	images   query.ImageTemplate
	logger   *slog.Logger
}

// NewHandler creates a new API handler. A zero images template falls back to
// query.DefaultImageTemplate.
func NewHandler(c Catalog, captures Captures, images query.ImageTemplate, l *slog.Logger) *Handler {
	if l == nil {
		l = slog.Default()
	}
	if images.BaseURL == "" {
		images = query.DefaultImageTemplate()
	}
	return &Handler{
		catalog:  c,
		captures: captures,
		images:   images,
		logger:   l,
	}
}

// Routes returns the router with all routes configured.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(recoveryMiddleware(h.logger))
	r.Use(h.jsonContentType)

	r.Route("/api/pokemon", func(r chi.Router) {
		r.Get("/", h.handleListPokemon)
		r.Get("/types", h.handleListTypes)
		r.Post("/{id}/capture", h.handleCapture)
		r.Post("/{id}/release", h.handleRelease)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		h.writeError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	return r
}

// =============================================================================
// Middleware
// =============================================================================

// jsonContentType sets Content-Type header to application/json.
func (h *Handler) jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// =============================================================================
// Catalog Handlers
// =============================================================================

func (h *Handler) handleListPokemon(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := intParam(q.Get("limit"), validation.DefaultLimit)
	if verr := validation.ValidateLimit(limit); verr != nil {
		h.writeValidationError(w, verr)
		return
	}

	params := query.Params{
		Type:         q.Get("type"),
		Search:       q.Get("search"),
		Sort:         query.ParseSortOrder(q.Get("sort")),
		Page:         intParam(q.Get("page"), validation.DefaultPage),
		Limit:        limit,
		CapturedOnly: boolParam(q.Get("captured")),
	}

	records := h.catalog.Snapshot(r.Context()).Records
	page := query.Run(records, params, h.captures)

	if verr := validation.ValidatePage(page.Page, page.TotalPages, page.Limit); verr != nil {
		h.writeValidationError(w, verr)
		return
	}

	h.writeJSON(w, http.StatusOK, ListResponse{
		Success: true,
		Data:    query.Enrich(page.Data, h.captures, h.images),
		Pagination: PaginationResponse{
			Total:         page.Total,
			Page:          page.Page,
			Limit:         page.Limit,
			TotalPages:    page.TotalPages,
			HasNext:       page.HasNext,
			HasPrev:       page.HasPrev,
			CapturedCount: h.captures.Count(),
		},
		Filters: FiltersResponse{
			Sort:     string(params.Sort),
			Type:     optionalParam(r, "type"),
			Search:   optionalParam(r, "search"),
			Captured: params.CapturedOnly,
		},
	})
}

func (h *Handler) handleListTypes(w http.ResponseWriter, r *http.Request) {
	records := h.catalog.Snapshot(r.Context()).Records
	h.writeJSON(w, http.StatusOK, TypesResponse{
		Success: true,
		Types:   query.Types(records),
	})
}

// =============================================================================
// Capture Handlers
// =============================================================================

func (h *Handler) handleCapture(w http.ResponseWriter, r *http.Request) {
	id, name, ok := h.resolveRecord(w, r)
	if !ok {
		return
	}

	// Capture reports false when the id was already in the set, so two
	// concurrent requests cannot both succeed.
	if allowed, reason := validation.CanCapture(!h.captures.Capture(id)); !allowed {
		h.writeError(w, http.StatusConflict, reason)
		return
	}

	h.logger.Info("pokemon captured", "id", id, "name", name)

	h.writeJSON(w, http.StatusOK, CaptureResponse{
		Success:  true,
		ID:       id,
		Name:     name,
		Captured: true,
		Message:  fmt.Sprintf("%s captured successfully!", name),
	})
}

func (h *Handler) handleRelease(w http.ResponseWriter, r *http.Request) {
	id, name, ok := h.resolveRecord(w, r)
	if !ok {
		return
	}

	if h.captures.Release(id) {
		h.logger.Info("pokemon released", "id", id, "name", name)
	}

	h.writeJSON(w, http.StatusOK, CaptureResponse{
		Success:  true,
		ID:       id,
		Name:     name,
		Captured: false,
		Message:  fmt.Sprintf("%s released successfully!", name),
	})
}

// resolveRecord looks up the record named by the {id} path parameter and
// writes a 404 if there is none.
func (h *Handler) resolveRecord(w http.ResponseWriter, r *http.Request) (int, string, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil {
		h.writeError(w, http.StatusNotFound, fmt.Sprintf("Pokemon with ID %s not found", raw))
		return 0, "", false
	}

	records := h.catalog.Snapshot(r.Context()).Records
	rec, found := query.FindByID(records, id)
	if !found {
		h.writeError(w, http.StatusNotFound, fmt.Sprintf("Pokemon with ID %d not found", id))
		return 0, "", false
	}
	return rec.ID, rec.Name, true
}

// =============================================================================
// Helpers
// =============================================================================

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode JSON", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, ErrorResponse{
		Success: false,
		Error:   message,
	})
}

func (h *Handler) writeValidationError(w http.ResponseWriter, verr *validation.ValidationError) {
	h.writeJSON(w, http.StatusBadRequest, ErrorResponse{
		Success: false,
		Error:   verr.Message,
		MaxPage: verr.MaxPage,
	})
}

// intParam parses an integer query value, returning def when it is missing
// or malformed.
func intParam(raw string, def int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

// boolParam parses a boolean query value; anything unparsable is false.
func boolParam(raw string) bool {
	b, err := strconv.ParseBool(raw)
	return err == nil && b
}

// optionalParam returns a pointer to the query value, or nil when the
// parameter was not supplied at all.
func optionalParam(r *http.Request, name string) *string {
	q := r.URL.Query()
	if !q.Has(name) {
		return nil
	}
	v := q.Get(name)
	return &v
}
