package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/centralelevate/elevate/internal/api/middleware"
	"github.com/centralelevate/elevate/internal/api/response"
)

// Pinger checks connectivity to a backing service.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles the GET /health endpoint.
type HealthHandler struct {
	db      Pinger
	cache   Pinger
	version string
}

// NewHealthHandler creates a new HealthHandler. cache may be nil when no
// snapshot cache is configured.
func NewHealthHandler(db, cache Pinger, version string) *HealthHandler {
	return &HealthHandler{
		db:      db,
		cache:   cache,
		version: version,
	}
}

type dependencyStatus struct {
	Connected bool    `json:"connected"`
	Error     *string `json:"error,omitempty"`
}

type healthData struct {
	Status   string            `json:"status"`
	Version  string            `json:"version"`
	Database dependencyStatus  `json:"database"`
	Cache    *dependencyStatus `json:"cache,omitempty"`
}

// ServeHTTP handles the health check request. A failing dependency degrades
// the status but the endpoint still answers 200.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	data := healthData{
		Status:   "healthy",
		Version:  h.version,
		Database: check(ctx, h.db),
	}
	if !data.Database.Connected {
		data.Status = "degraded"
	}

	if h.cache != nil {
		cs := check(ctx, h.cache)
		data.Cache = &cs
		if !cs.Connected {
			data.Status = "degraded"
		}
	}

	response.Success(w, http.StatusOK, data, requestID)
}

func check(ctx context.Context, p Pinger) dependencyStatus {
	if p == nil {
		msg := "not configured"
		return dependencyStatus{Error: &msg}
	}
	if err := p.Ping(ctx); err != nil {
		msg := err.Error()
		return dependencyStatus{Error: &msg}
	}
	return dependencyStatus{Connected: true}
}
