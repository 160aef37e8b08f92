package rest

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"
)

type HealthStatus string

const (
	HealthHealthy   HealthStatus = "healthy"
	HealthUnhealthy HealthStatus = "unhealthy"
)

type HealthResponse struct {
	Status     HealthStatus          `json:"status"`
	Version    string                `json:"version,omitempty"`
	CheckedAt  time.Time             `json:"checked_at"`
	Components map[string]CheckEntry `json:"components"`
}

type CheckEntry struct {
	Status     HealthStatus   `json:"status"`
	Message    string         `json:"message,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
	CheckedAt  time.Time      `json:"checked_at"`
	DurationMs int64          `json:"duration_ms"`
}

// HealthHandler reports liveness and database readiness. Configuration gaps that only
// fail individual flows are surfaced as details, not as an unhealthy status.
type HealthHandler struct {
	db       *sql.DB
	driver   string
	version  string
	features map[string]bool
}

func NewHealthHandler(db *sql.DB, driver, version string, features map[string]bool) *HealthHandler {
	return &HealthHandler{db: db, driver: driver, version: version, features: features}
}

func (h *HealthHandler) pingHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

func (h *HealthHandler) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	start := time.Now()
	err := h.db.PingContext(ctx)

	db := CheckEntry{
		Status:     HealthHealthy,
		CheckedAt:  time.Now(),
		DurationMs: time.Since(start).Milliseconds(),
	}
	if err != nil {
		db.Status = HealthUnhealthy
		db.Message = err.Error()
	}

	configured := make(map[string]any, len(h.features))
	for name, ok := range h.features {
		configured[name] = ok
	}

	resp := HealthResponse{
		Status:    db.Status,
		Version:   h.version,
		CheckedAt: time.Now(),
		Components: map[string]CheckEntry{
			h.driver: db,
			"integrations": {
				Status:    HealthHealthy,
				Details:   configured,
				CheckedAt: time.Now(),
			},
		},
	}

	statusCode := http.StatusOK
	if db.Status == HealthUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}
	writeJSON(w, statusCode, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
