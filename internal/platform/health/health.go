// Package health exposes the liveness endpoint.
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Handler reports service and database status.
type Handler struct {
	db      *gorm.DB
	service string
}

// NewHandler creates a health handler for the named service.
func NewHandler(db *gorm.DB, service string) *Handler {
	return &Handler{db: db, service: service}
}

// Register mounts GET /health.
func (h *Handler) Register(r *gin.Engine) {
	r.GET("/health", h.Check)
}

// Check pings the database with a short timeout.
func (h *Handler) Check(c *gin.Context) {
	if err := h.ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"service":  h.service,
			"status":   "degraded",
			"database": "down",
			"error":    err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"service":  h.service,
		"status":   "ok",
		"database": "up",
		"time":     time.Now().UTC(),
	})
}

func (h *Handler) ping(ctx context.Context) error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx)
}
