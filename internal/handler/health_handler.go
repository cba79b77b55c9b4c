package handler

import (
	"net/http"
	"time"

	"festboard/pkg/database"
	"festboard/pkg/redis"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	db    *database.PostgresDB
	redis *redis.Client
}

func NewHealthHandler(db *database.PostgresDB, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{db: db, redis: redisClient}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Service   string            `json:"service"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// Check handles GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Service:   "festboard",
		Checks:    make(map[string]string),
	}
	status := http.StatusOK

	if h.db != nil {
		if err := h.db.Health(r.Context()); err != nil {
			response.Status = "degraded"
			response.Checks["postgres"] = err.Error()
			status = http.StatusServiceUnavailable
		} else {
			response.Checks["postgres"] = "ok"
		}
	}
	if h.redis != nil {
		if err := h.redis.Health(r.Context()); err != nil {
			response.Status = "degraded"
			response.Checks["redis"] = err.Error()
			status = http.StatusServiceUnavailable
		} else {
			response.Checks["redis"] = "ok"
		}
	}

	respondJSON(w, status, response)
}
