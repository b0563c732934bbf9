package handler

import (
	"context"
	"net/http"
	"time"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type healthResponse struct {
	Status string `json:"status"`
	Mongo  string `json:"mongo"`
	Redis  string `json:"redis"`
}

type HealthHandler struct {
	mongo Pinger
	redis Pinger
	// redisEnabled=false => "disabled" y no se hace ping
	redisEnabled bool
}

func NewHealthHandler(mongo, redis Pinger, redisEnabled bool) *HealthHandler {
	return &HealthHandler{mongo: mongo, redis: redis, redisEnabled: redisEnabled}
}

// @Summary Healthcheck
// @Description 503 si Mongo no responde. Redis caído solo degrada el cache.
// @Tags health
// @Produce json
// @Success 200 {object} healthResponse
// @Failure 503 {object} healthResponse
// @Router /health [get]
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	res := healthResponse{Status: "ok", Mongo: "up", Redis: "disabled"}
	status := http.StatusOK

	if h.mongo == nil || h.mongo.Ping(ctx) != nil {
		res.Mongo = "down"
		res.Status = "unavailable"
		status = http.StatusServiceUnavailable
	}

	if h.redisEnabled && h.redis != nil {
		res.Redis = "up"
		if err := h.redis.Ping(ctx); err != nil {
			res.Redis = "down"
			if status == http.StatusOK {
				res.Status = "degraded"
			}
		}
	}

	writeJSON(w, status, res)
}
