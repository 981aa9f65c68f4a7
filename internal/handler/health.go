package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"citypulse/internal/db"
)

type HealthHandler struct {
	DB *db.DB

	started time.Time
}

func (h *HealthHandler) Register(r *gin.Engine) {
	h.started = time.Now().UTC()
	r.GET("/healthz", h.health)
	r.GET("/readyz", h.ready)
}

// @Summary Liveness check
// @Tags health
// @Success 200 {object} apiResponse
// @Router /healthz [get]
func (h *HealthHandler) health(c *gin.Context) {
	Ok(c, gin.H{
		"status": "ok",
		"uptime": time.Since(h.started).Round(time.Second).String(),
	}, nil)
}

// @Summary Readiness check, fails when the database is unreachable
// @Tags health
// @Success 200 {object} apiResponse
// @Router /readyz [get]
func (h *HealthHandler) ready(c *gin.Context) {
	if err := db.Ping(c.Request.Context(), h.DB); err != nil {
		Error(c, http.StatusServiceUnavailable, "database unreachable", nil)
		return
	}
	Ok(c, gin.H{"status": "ready"}, nil)
}
