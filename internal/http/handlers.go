// Package http exposes the service's API: district lookups, the
// best-districts ranking, travel recommendations, and health.
package http

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/tareqmahmud/travel-advisor/internal/district"
	"github.com/tareqmahmud/travel-advisor/internal/observability"
	"github.com/tareqmahmud/travel-advisor/internal/ranking"
	"github.com/tareqmahmud/travel-advisor/internal/recommend"
	"github.com/tareqmahmud/travel-advisor/internal/upstream"
	"github.com/tareqmahmud/travel-advisor/internal/validation"
)

// HealthConfig holds the thresholds and probes for the health handler.
type HealthConfig struct {
	DegradedWindow   time.Duration
	DegradedErrorPct int
	Tracker          *upstream.Tracker
	// CachePing, when set, checks cache reachability (redis/memcached backends).
	CachePing func() error
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	directory    *district.Directory
	ranker       *ranking.Ranker
	recommender  *recommend.Recommender
	healthConfig *HealthConfig
	timezone     *time.Location
	logger       *zap.Logger
}

// NewHandler returns a new Handler. timezone is the service timezone used to
// evaluate the travel-date window.
func NewHandler(
	directory *district.Directory,
	ranker *ranking.Ranker,
	recommender *recommend.Recommender,
	healthConfig *HealthConfig,
	timezone *time.Location,
	logger *zap.Logger,
) *Handler {
	if timezone == nil {
		timezone = time.UTC
	}
	return &Handler{
		directory:    directory,
		ranker:       ranker,
		recommender:  recommender,
		healthConfig: healthConfig,
		timezone:     timezone,
		logger:       logger,
	}
}

// ListDistricts handles GET /api/v1/districts. An empty directory is reported
// as 404: the provider may be temporarily unavailable, but there is nothing
// to serve either way.
func (h *Handler) ListDistricts(w http.ResponseWriter, r *http.Request) {
	districts := h.directory.All(r.Context())
	if len(districts) == 0 {
		writeError(w, r, http.StatusNotFound, "NO_DISTRICTS", "No districts found")
		return
	}
	writeJSON(w, http.StatusOK, districts)
}

// GetDistrict handles GET /api/v1/districts/{name}.
func (h *Handler) GetDistrict(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(mux.Vars(r)["name"])
	if name == "" {
		writeError(w, r, http.StatusBadRequest, "INVALID_NAME", "district name is required")
		return
	}

	d, ok := h.directory.ByName(r.Context(), name)
	if !ok {
		writeError(w, r, http.StatusNotFound, "DISTRICT_NOT_FOUND", "District '"+name+"' not found")
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// GetBestDistricts handles GET /api/v1/best-districts.
func (h *Handler) GetBestDistricts(w http.ResponseWriter, r *http.Request) {
	limit, err := validation.ParseLimit(r.URL.Query().Get("limit"), ranking.DefaultLimit, ranking.MinLimit, ranking.MaxLimit)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_LIMIT", err.Error())
		return
	}

	entries := h.ranker.BestDistricts(r.Context(), limit)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(entries),
		"results": entries,
	})
}

// GetRecommendation handles GET /api/v1/recommend. Input validation happens
// here, before any core logic; the engines trust the travel date window has
// been enforced.
func (h *Handler) GetRecommendation(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	lat, err := validation.ParseLatitude(query.Get("current_lat"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_COORDINATES", err.Error())
		return
	}
	lon, err := validation.ParseLongitude(query.Get("current_lon"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_COORDINATES", err.Error())
		return
	}
	destination, err := validation.ValidateDestinationName(query.Get("destination_name"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_DESTINATION", err.Error())
		return
	}
	travelDate, err := validation.ParseTravelDate(query.Get("travel_date"), time.Now(), h.timezone)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_TRAVEL_DATE", err.Error())
		return
	}

	result := h.recommender.Recommend(r.Context(), lat, lon, destination, travelDate)
	writeJSON(w, http.StatusOK, result)
}

// GetHealth handles GET /health. The service is degraded when the provider
// error rate breaches the configured threshold or the cache backend is
// unreachable.
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	statusCode := http.StatusOK
	checks := map[string]string{"providers": "healthy"}

	if hc := h.healthConfig; hc != nil {
		if hc.Tracker != nil && hc.DegradedWindow > 0 && hc.DegradedErrorPct > 0 {
			errors, total := hc.Tracker.ErrorRate(hc.DegradedWindow)
			if total > 0 {
				pct := float64(errors) * 100 / float64(total)
				if pct >= float64(hc.DegradedErrorPct) {
					status = "degraded"
					statusCode = http.StatusServiceUnavailable
					checks["providers"] = "unhealthy"
				}
			}
		}
		if hc.CachePing != nil {
			if hc.CachePing() == nil {
				checks["cache"] = "healthy"
			} else {
				checks["cache"] = "unhealthy"
				status = "degraded"
				statusCode = http.StatusServiceUnavailable
			}
		}
	}

	writeJSON(w, statusCode, map[string]interface{}{
		"status":    status,
		"service":   "travel-advisor",
		"checks":    checks,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// writeJSON writes a JSON response with the specified HTTP status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes an error response in the standard envelope with code,
// message, and requestId when available in the request context.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	if logger := observability.LoggerFromContext(r.Context()); logger != nil {
		logger.Debug("request rejected", zap.Int("status", status), zap.String("code", code), zap.String("message", message))
	}
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]string{
			"code":      code,
			"message":   message,
			"requestId": correlationID(r.Context()),
		},
	})
}
