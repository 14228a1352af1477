package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/dm-report/internal/response"
)

const healthTimeout = 2 * time.Second

// Pinger is any dependency that can report its own reachability.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PingerFunc adapts a plain function to Pinger.
type PingerFunc func(ctx context.Context) error

// PingContext calls f.
func (f PingerFunc) PingContext(ctx context.Context) error { return f(ctx) }

// HealthHandler reports process and dependency health.
type HealthHandler struct {
	store     Pinger
	cache     Pinger
	startTime time.Time
	log       zerolog.Logger
}

// NewHealthHandler creates a new HealthHandler. cache may be nil.
func NewHealthHandler(store, cache Pinger, log zerolog.Logger) *HealthHandler {
	return &HealthHandler{
		store:     store,
		cache:     cache,
		startTime: time.Now(),
		log:       log.With().Str("component", "health_handler").Logger(),
	}
}

// Health pings the store and the cache.
// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	status, code := "ok", http.StatusOK
	checks := gin.H{"database": "ok"}

	if err := h.store.PingContext(ctx); err != nil {
		h.log.Error().Err(err).Msg("Database ping failed")
		checks["database"] = "unavailable"
		status, code = "unavailable", http.StatusServiceUnavailable
	}
	if h.cache != nil {
		checks["cache"] = "ok"
		if err := h.cache.PingContext(ctx); err != nil {
			// Reports still work without the cache.
			h.log.Warn().Err(err).Msg("Cache ping failed")
			checks["cache"] = "unavailable"
			if code == http.StatusOK {
				status = "degraded"
			}
		}
	}

	response.Success(c, code, gin.H{
		"status": status,
		"checks": checks,
		"uptime": time.Since(h.startTime).Round(time.Second).String(),
	})
}
