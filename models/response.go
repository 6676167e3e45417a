package models

// ScrapeResponse is the response for POST /api/v1/recipes/scrape.
type ScrapeResponse struct {
	// Success indicates whether the scrape completed without errors.
	Success bool `json:"success"`

	// URL echoes the requested page. Always set, also on failure, so that
	// batch results can be matched back to their inputs.
	URL string `json:"url"`

	// Recipe is the scraped recipe. It is absent whenever Success is false:
	// a failed scrape never yields a partial record.
	Recipe *ScrapedRecipe `json:"recipe,omitempty"`

	// Timing provides the end-to-end duration.
	Timing TimingInfo `json:"timing"`

	// CacheStatus indicates whether the response was served from cache.
	// Values: "hit", "miss", or empty (caching not requested).
	CacheStatus string `json:"cache_status,omitempty"`

	// Error is populated only when Success is false.
	Error *ErrorDetail `json:"error,omitempty"`
}

// ExportResponse is the response for POST /api/v1/recipes/export.
type ExportResponse struct {
	Success bool         `json:"success"`
	Format  string       `json:"format,omitempty"`
	Content string       `json:"content,omitempty"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

// TimingInfo breaks down the time spent on a request.
type TimingInfo struct {
	// TotalMs is the end-to-end duration in milliseconds.
	TotalMs int64 `json:"total_ms"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status        string `json:"status"`
	Uptime        string `json:"uptime"`
	Version       string `json:"version"`
	Fetcher       string `json:"fetcher"`
	CachedEntries int    `json:"cached_entries"`
}
