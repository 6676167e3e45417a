package models

// ScrapeRequest is the payload for POST /api/v1/recipes/scrape.
type ScrapeRequest struct {
	// URL is the recipe page to scrape. Required.
	URL string `json:"url" binding:"required,url"`

	// MaxAge enables the response cache: a cached recipe younger than
	// MaxAge milliseconds is returned without fetching. 0 disables caching.
	MaxAge int `json:"max_age,omitempty" binding:"omitempty,min=0"`
}

// ExportRequest is the payload for POST /api/v1/recipes/export.
type ExportRequest struct {
	// Recipe is the recipe to render. Required.
	Recipe *ScrapedRecipe `json:"recipe" binding:"required"`

	// Format is the output format.
	// Allowed: "markdown" (default), "html".
	Format string `json:"format,omitempty" binding:"omitempty,oneof=markdown html"`
}

// Defaults applies default values to unset fields.
func (r *ExportRequest) Defaults() {
	if r.Format == "" {
		r.Format = "markdown"
	}
}
