package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// HealthHandler reports service liveness and database reachability.
type HealthHandler struct {
	pool *pgxpool.Pool
}

// NewHealthHandler creates a health handler.
func NewHealthHandler(pool *pgxpool.Pool) *HealthHandler {
	return &HealthHandler{pool: pool}
}

// Health returns 200 when the service and its database are reachable, 503
// otherwise.
func (h *HealthHandler) Health(c *gin.Context) {
	status := gin.H{"status": "ok"}

	if h.pool != nil {
		if err := h.pool.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "degraded",
				"database": "unreachable",
			})
			return
		}
		status["database"] = "ok"
	}

	c.JSON(http.StatusOK, status)
}
