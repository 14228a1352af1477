package router

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/dm-report/internal/config"
	"github.com/stemsi/dm-report/internal/handler"
	"github.com/stemsi/dm-report/internal/middleware"
	"github.com/stemsi/dm-report/internal/response"
)

// exportPath serves xlsx workbooks, which are already zip-compressed.
const exportPath = "/dashboard/export"

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Record *handler.RecordHandler
	Report *handler.ReportHandler
	Export *handler.ExportHandler
	Health *handler.HealthHandler
}

// SetupRouter configures all Gin routes with appropriate middlewares.
// ctx bounds background work owned by middlewares (rate limiter sweeps).
func SetupRouter(ctx context.Context, handlers *Handlers, cfg *config.Config, log zerolog.Logger) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "Content-Disposition"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.RequestLogger(log))

	// Apply brotli middleware globally, except for binary downloads.
	router.Use(middleware.BrotliWithConfig(middleware.BrotliConfig{
		Quality:   middleware.DefaultBrotliConfig.Quality,
		MinLength: middleware.DefaultBrotliConfig.MinLength,
		Skipper:   middleware.SkipPaths(exportPath),
	}))

	// Health check.
	router.GET("/health", handlers.Health.Health)

	// ─── 1. Reports (read only) ────────────────────────────────────────
	views := router.Group("/")
	views.Use(middleware.NoStore())
	{
		views.GET("/", handlers.Report.Home)
		views.GET("/trend", handlers.Report.Trend)
		views.GET("/regional", handlers.Report.Regional)
	}

	// ─── 2. Records ────────────────────────────────────────────────────
	// Writes are limited per IP (WRITE_RATE_LIMIT requests per minute).
	writeLimiter := middleware.NewRateLimiter(ctx, cfg.WriteRateLimit, time.Minute)

	records := router.Group("/")
	records.Use(middleware.NoStore())
	{
		records.GET("/dashboard", handlers.Record.Dashboard)
		records.GET(exportPath, handlers.Export.ExportRecords)

		records.GET("/create", handlers.Record.CreateForm)
		records.POST("/create", writeLimiter.Middleware(), handlers.Record.Create)

		records.GET("/edit/:id", handlers.Record.EditForm)
		records.POST("/edit/:id", writeLimiter.Middleware(), handlers.Record.Update)

		records.POST("/delete/:id", writeLimiter.Middleware(), handlers.Record.Delete)
	}

	return router
}
