package api

import (
	"time"

	"github.com/a-thread/elysia-sub000/api/handler"
	"github.com/a-thread/elysia-sub000/api/middleware"
	"github.com/a-thread/elysia-sub000/cache"
	"github.com/a-thread/elysia-sub000/config"
	"github.com/a-thread/elysia-sub000/export"
	"github.com/a-thread/elysia-sub000/scraper"
	"github.com/gin-gonic/gin"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if enabled) → RateLimit
//
// The health endpoint sits outside auth so monitoring probes always work.
func NewRouter(sc *scraper.Scraper, ex *export.Exporter, cfg *config.Config, cc *cache.Cache, batches *handler.BatchStore, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	v1 := r.Group("/api/v1")

	v1.GET("/health", handler.Health(sc, cc, startTime))

	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	recipes := protected.Group("/recipes")
	recipes.POST("/scrape", handler.Scrape(sc, cc, cfg.Scraper.Timeout))
	recipes.POST("/export", handler.Export(ex))
	recipes.POST("/batch", handler.PostBatch(sc, batches, cfg.Batch, cfg.Scraper.Timeout))
	recipes.GET("/batch/:id", handler.GetBatch(batches))

	return r
}
