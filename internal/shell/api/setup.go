package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/artpar/pokedex/internal/core/query"
	"github.com/artpar/pokedex/internal/shell/api/openapi"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// =============================================================================
// API Setup
// =============================================================================

// APIConfig holds configuration for the API setup.
type APIConfig struct {
	Catalog  Catalog
	Captures Captures
	Images   query.ImageTemplate
	Logger   *slog.Logger
}

// SetupAPI creates the complete router: operational endpoints at the top
// level and the catalog API mounted under /api.
// Returns an http.Handler that can be used as the server's main handler.
func SetupAPI(cfg APIConfig) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	router := mux.NewRouter()

	router.Use(requestIDMiddleware)
	router.Use(recoveryMiddleware(cfg.Logger))

	// Operational endpoints
	router.HandleFunc("/health", healthHandler).Methods("GET")
	router.HandleFunc("/ready", readyHandler(cfg.Catalog, cfg.Captures)).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	router.HandleFunc("/openapi.json", newOpenAPIGenerator().Handler()).Methods("GET")

	// Catalog API
	handler := NewHandler(cfg.Catalog, cfg.Captures, cfg.Images, cfg.Logger)
	router.PathPrefix("/api").Handler(handler.Routes())

	return router
}

// newOpenAPIGenerator registers every catalog endpoint for documentation.
func newOpenAPIGenerator() *openapi.Generator {
	gen := openapi.NewGenerator(
		openapi.WithTitle("Pokedex API"),
		openapi.WithVersion("1.0.0"),
		openapi.WithDescription("Paginated creature catalog with capture tracking"),
	)

	gen.RegisterEndpoint(openapi.EndpointInfo{
		Method:      http.MethodGet,
		Path:        "/api/pokemon",
		OperationID: "listPokemon",
		Summary:     "List catalog records",
		Tag:         "Pokemon",
		Query: []openapi.ParamInfo{
			{Name: "page", Type: "integer", Default: 1, Description: "1-based page number"},
			{Name: "limit", Type: "integer", Default: 10, Enum: []any{5, 10, 20}},
			{Name: "sort", Type: "string", Default: "asc", Enum: []any{"asc", "desc"}, Description: "Order by number"},
			{Name: "type", Type: "string", Description: "Keep records with this primary or secondary type"},
			{Name: "search", Type: "string", Description: "Case-insensitive name substring"},
			{Name: "captured", Type: "boolean", Default: false, Description: "Keep captured records only"},
		},
		Response: ListResponse{},
		Errors:   []int{http.StatusBadRequest},
	})
	gen.RegisterEndpoint(openapi.EndpointInfo{
		Method:      http.MethodGet,
		Path:        "/api/pokemon/types",
		OperationID: "listPokemonTypes",
		Summary:     "List distinct types",
		Tag:         "Pokemon",
		Response:    TypesResponse{},
	})
	gen.RegisterEndpoint(openapi.EndpointInfo{
		Method:      http.MethodPost,
		Path:        "/api/pokemon/{id}/capture",
		OperationID: "capturePokemon",
		Summary:     "Mark a record as captured",
		Tag:         "Capture",
		Response:    CaptureResponse{},
		Errors:      []int{http.StatusNotFound, http.StatusConflict},
	})
	gen.RegisterEndpoint(openapi.EndpointInfo{
		Method:      http.MethodPost,
		Path:        "/api/pokemon/{id}/release",
		OperationID: "releasePokemon",
		Summary:     "Clear a record's captured flag",
		Tag:         "Capture",
		Response:    CaptureResponse{},
		Errors:      []int{http.StatusNotFound},
	})

	return gen
}

// =============================================================================
// Middleware
// =============================================================================

// requestIDMiddleware propagates or generates a request ID on responses.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = "req_" + uuid.NewString()
		}
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r)
	})
}

// recoveryMiddleware recovers from panics and returns a 500 error.
func recoveryMiddleware(logger *slog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic recovered", "error", err, "path", r.URL.Path)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(ErrorResponse{
						Success: false,
						Error:   "An unexpected error occurred",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// =============================================================================
// Health Handlers
// =============================================================================

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(HealthResponse{Status: "healthy"})
}

// readyHandler reports ready once a catalog generation has loaded. The check
// itself goes through the cache, so it also triggers a pending reload.
func readyHandler(c Catalog, captures Captures) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		snap := c.Snapshot(r.Context())
		resp := ReadyResponse{
			Status:     "ready",
			Generation: snap.Generation,
			Records:    len(snap.Records),
			Captured:   captures.Count(),
		}
		if snap.Generation == "" {
			resp.Status = "not_ready"
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(resp)
	}
}
