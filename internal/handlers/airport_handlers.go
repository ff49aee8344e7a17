package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"airport-data/internal/models"
	"airport-data/internal/services"
	"airport-data/pkg/logging"
	"airport-data/pkg/metrics"
)

// MaxSearchLimit caps the limit query parameter of the search endpoint
const MaxSearchLimit = 100

// HealthChecker is implemented by optional backing stores
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// AirportHandler handles airport lookup API endpoints
type AirportHandler struct {
	lookup  *services.LookupService
	stats   *services.StatisticsService
	store   HealthChecker // nil unless the table comes from the database
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewAirportHandler creates a new airport handler. store may be nil.
func NewAirportHandler(
	lookup *services.LookupService,
	stats *services.StatisticsService,
	store HealthChecker,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
) *AirportHandler {
	return &AirportHandler{
		lookup:  lookup,
		stats:   stats,
		store:   store,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// SearchResponse is returned by the search endpoint
type SearchResponse struct {
	Data  []models.ExpandedAirport `json:"data"`
	Query string                   `json:"query"`
	Limit int                      `json:"limit"`
	Count int                      `json:"count"`
}

// MetaResponse is returned by the meta endpoint
type MetaResponse struct {
	Available bool             `json:"available"`
	Meta      models.TableMeta `json:"meta"`
}

// HealthResponse is returned by the health endpoint
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Airports  int    `json:"airports"`
	Database  string `json:"database,omitempty"`
}

// GetAirport handles GET /api/airports/{icao}
func (h *AirportHandler) GetAirport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	const endpoint = "/api/airports/{icao}"

	if !h.lookup.IsAvailable() {
		h.metrics.RecordAPIError("table_unavailable", endpoint)
		h.sendError(w, r, endpoint, "airport table is not loaded", http.StatusServiceUnavailable)
		return
	}

	icao := mux.Vars(r)["icao"]
	airport, ok := h.lookup.AirportByICAO(icao)
	if !ok {
		h.logger.Debug(ctx, "[API_AIRPORT_NOT_FOUND] Airport not in table", logging.Fields{
			"icao": icao,
		})
		h.sendError(w, r, endpoint, "airport not found: "+icao, http.StatusNotFound)
		return
	}

	h.metrics.RecordAPIRequest(endpoint, r.Method, "200")
	h.sendJSON(w, airport, http.StatusOK)
}

// SearchAirports handles GET /api/airports?q=&limit=
func (h *AirportHandler) SearchAirports(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/api/airports"

	query := r.URL.Query().Get("q")
	limit := services.DefaultSearchLimit

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		l, err := strconv.Atoi(limitStr)
		if err != nil || l < 1 {
			h.metrics.RecordAPIError("bad_request", endpoint)
			h.sendError(w, r, endpoint, "invalid limit, expected a positive integer", http.StatusBadRequest)
			return
		}
		limit = l
	}
	if limit > MaxSearchLimit {
		limit = MaxSearchLimit
	}

	results := h.lookup.SearchAirports(query, limit)

	h.metrics.RecordAPIRequest(endpoint, r.Method, "200")
	h.sendJSON(w, SearchResponse{
		Data:  results,
		Query: query,
		Limit: limit,
		Count: len(results),
	}, http.StatusOK)
}

// GetMeta handles GET /api/meta
func (h *AirportHandler) GetMeta(w http.ResponseWriter, r *http.Request) {
	h.metrics.RecordAPIRequest("/api/meta", r.Method, "200")
	h.sendJSON(w, MetaResponse{
		Available: h.lookup.IsAvailable(),
		Meta:      h.lookup.Meta(),
	}, http.StatusOK)
}

// GetStatistics handles GET /api/stats
func (h *AirportHandler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	h.metrics.RecordAPIRequest("/api/stats", r.Method, "200")
	h.sendJSON(w, h.stats.Calculate(r.Context()), http.StatusOK)
}

// HealthCheck handles GET /health. The service is degraded when no table
// is loaded or the backing database cannot be reached.
func (h *AirportHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Airports:  h.lookup.Count(),
	}
	code := http.StatusOK

	if !h.lookup.IsAvailable() {
		resp.Status = "degraded"
		code = http.StatusServiceUnavailable
	}
	if h.store != nil {
		resp.Database = "ok"
		if err := h.store.HealthCheck(ctx); err != nil {
			h.logger.Warn(ctx, "[HEALTH_CHECK_DB] Database unreachable", logging.Fields{
				"error": err.Error(),
			})
			resp.Database = "unreachable"
			resp.Status = "degraded"
			code = http.StatusServiceUnavailable
		}
	}

	h.logger.Debug(ctx, "[HEALTH_CHECK] Health check requested", logging.Fields{
		"status": resp.Status,
	})
	h.sendJSON(w, resp, code)
}

// sendJSON sends a JSON response
func (h *AirportHandler) sendJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// sendError sends an error response
func (h *AirportHandler) sendError(w http.ResponseWriter, r *http.Request, endpoint, message string, statusCode int) {
	h.metrics.RecordAPIRequest(endpoint, r.Method, strconv.Itoa(statusCode))

	response := ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	}

	h.sendJSON(w, response, statusCode)
}

// instrument tags each request with an id and records its latency under
// the matched route template.
func (h *AirportHandler) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)
		r = r.WithContext(logging.WithRequestID(r.Context(), requestID))

		next.ServeHTTP(w, r)

		endpoint := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tmpl, err := route.GetPathTemplate(); err == nil {
				endpoint = tmpl
			}
		}
		h.metrics.APIRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	})
}

// RegisterRoutes registers all airport API routes
func (h *AirportHandler) RegisterRoutes(router *mux.Router) {
	router.Use(h.instrument)
	router.HandleFunc("/api/airports", h.SearchAirports).Methods("GET")
	router.HandleFunc("/api/airports/{icao}", h.GetAirport).Methods("GET")
	router.HandleFunc("/api/meta", h.GetMeta).Methods("GET")
	router.HandleFunc("/api/stats", h.GetStatistics).Methods("GET")
	router.HandleFunc("/health", h.HealthCheck).Methods("GET")
	router.HandleFunc("/api/docs/openapi.json", OpenAPISpec).Methods("GET")
	router.HandleFunc("/docs", SwaggerUI).Methods("GET")
}
