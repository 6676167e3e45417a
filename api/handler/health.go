package handler

import (
	"net/http"
	"time"

	"github.com/a-thread/elysia-sub000/cache"
	"github.com/a-thread/elysia-sub000/models"
	"github.com/a-thread/elysia-sub000/scraper"
	"github.com/gin-gonic/gin"
)

// Version is reported by the health endpoint.
const Version = "0.1.0"

// Health returns a handler for GET /api/v1/health.
func Health(sc *scraper.Scraper, cc *cache.Cache, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		entries := 0
		if cc != nil {
			entries = cc.Len()
		}
		c.JSON(http.StatusOK, models.HealthResponse{
			Status:        "healthy",
			Uptime:        time.Since(startTime).Round(time.Second).String(),
			Version:       Version,
			Fetcher:       sc.FetcherName(),
			CachedEntries: entries,
		})
	}
}
