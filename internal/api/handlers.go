// Package api exposes the worker's operational HTTP surface: health,
// readiness, and Prometheus metrics. The worker itself is queue driven
// and takes no work over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/crc-worker/internal/logging"
	"github.com/jonesrussell/crc-worker/internal/search"
)

// readyCheckTimeout bounds each dependency probe during a readiness check.
const readyCheckTimeout = 5 * time.Second

// Handler handles the worker's operational HTTP endpoints.
type Handler struct {
	name    string
	version string
	db      *sqlx.DB
	search  *search.Client
	logger  logging.Logger
}

// NewHandler creates a new API handler.
func NewHandler(name, version string, db *sqlx.DB, searchClient *search.Client, logger logging.Logger) *Handler {
	return &Handler{
		name:    name,
		version: version,
		db:      db,
		search:  searchClient,
		logger:  logger,
	}
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": h.name,
		"version": h.version,
	})
}

// ReadyCheck handles GET /ready. It probes the database and the search
// index; the worker cannot make progress without either.
func (h *Handler) ReadyCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readyCheckTimeout)
	defer cancel()

	checks := gin.H{
		"postgresql":    "ok",
		"elasticsearch": "ok",
	}
	ready := true

	if err := h.db.PingContext(ctx); err != nil {
		h.logger.Warn("Readiness check: database unreachable", logging.Error(err))
		checks["postgresql"] = err.Error()
		ready = false
	}

	if err := h.search.Ping(ctx); err != nil {
		h.logger.Warn("Readiness check: search index unreachable", logging.Error(err))
		checks["elasticsearch"] = err.Error()
		ready = false
	}

	status := http.StatusOK
	state := "ready"
	if !ready {
		status = http.StatusServiceUnavailable
		state = "not ready"
	}

	c.JSON(status, gin.H{
		"status": state,
		"checks": checks,
	})
}
