package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/a-thread/elysia-sub000/cache"
	"github.com/a-thread/elysia-sub000/models"
	"github.com/a-thread/elysia-sub000/scraper"
	"github.com/gin-gonic/gin"
)

// Scrape returns a handler for POST /api/v1/recipes/scrape.
//
// Flow:
//  1. Parse & validate request.
//  2. Serve from cache when max_age is set and a fresh entry exists.
//  3. Scraper.Scrape under the configured timeout.
//  4. Store in cache (when max_age is set) and respond.
func Scrape(sc *scraper.Scraper, cc *cache.Cache, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		totalStart := time.Now()

		var req models.ScrapeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ScrapeResponse{
				Success: false,
				URL:     req.URL,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}

		useCache := cc != nil && req.MaxAge > 0
		cacheKey := cache.Key(req.URL)
		if useCache {
			if cached, hit := cc.Get(cacheKey, req.MaxAge); hit {
				c.JSON(http.StatusOK, models.ScrapeResponse{
					Success:     true,
					URL:         req.URL,
					Recipe:      cached,
					CacheStatus: "hit",
					Timing:      models.TimingInfo{TotalMs: time.Since(totalStart).Milliseconds()},
				})
				return
			}
		}

		resp := scrapeOne(c.Request.Context(), sc, req.URL, timeout)
		if !resp.Success {
			c.JSON(statusForCode(resp.Error.Code), resp)
			return
		}

		if useCache {
			cc.Set(cacheKey, resp.Recipe)
			resp.CacheStatus = "miss"
		}
		c.JSON(http.StatusOK, resp)
	}
}

// scrapeOne runs a single scrape bounded by timeout and wraps the outcome
// in a ScrapeResponse. A failed scrape carries no recipe.
func scrapeOne(ctx context.Context, sc *scraper.Scraper, targetURL string, timeout time.Duration) *models.ScrapeResponse {
	start := time.Now()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	recipe, err := sc.Scrape(ctx, targetURL)
	timing := models.TimingInfo{TotalMs: time.Since(start).Milliseconds()}
	if err != nil {
		return &models.ScrapeResponse{
			Success: false,
			URL:     targetURL,
			Error:   toScrapeError(err).ToDetail(),
			Timing:  timing,
		}
	}
	return &models.ScrapeResponse{
		Success: true,
		URL:     targetURL,
		Recipe:  recipe,
		Timing:  timing,
	}
}

// toScrapeError returns err as a *ScrapeError, wrapping foreign errors as
// INTERNAL_ERROR.
func toScrapeError(err error) *models.ScrapeError {
	var se *models.ScrapeError
	if errors.As(err, &se) {
		return se
	}
	return models.NewScrapeError(models.ErrCodeInternal, err.Error(), err)
}

// respondError maps an error to the correct HTTP status code and writes
// a structured JSON error response.
func respondError(c *gin.Context, err error) {
	se := toScrapeError(err)
	c.JSON(statusForCode(se.Code), gin.H{
		"success": false,
		"error":   se.ToDetail(),
	})
}

// statusForCode translates error codes to HTTP status codes.
func statusForCode(code string) int {
	switch code {
	case models.ErrCodeTimeout:
		return http.StatusGatewayTimeout // 504
	case models.ErrCodeFetch:
		return http.StatusBadGateway // 502
	case models.ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	case models.ErrCodeNotFound:
		return http.StatusNotFound // 404
	default:
		return http.StatusInternalServerError // 500
	}
}
