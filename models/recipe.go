package models

// ScrapedRecipe is the structured result of a single scrape. It is produced
// fresh on every call and carries no identity beyond that call.
type ScrapedRecipe struct {
	// Title is the best-effort recipe name. Never empty: unresolved titles
	// fall back to DefaultTitle.
	Title string `json:"title"`

	// Description is the HTML-stripped summary, or "" when none was found.
	Description string `json:"description"`

	// ImageURL is the first matching image candidate, nil when absent.
	ImageURL *string `json:"image_url,omitempty"`

	// PrepTimeMinutes and CookTimeMinutes default to 0 when absent.
	PrepTimeMinutes int `json:"prep_time_minutes"`
	CookTimeMinutes int `json:"cook_time_minutes"`

	// Servings defaults to 0 when absent.
	Servings int `json:"servings"`

	// Ingredients and Steps preserve source document order.
	Ingredients []RecipeLine `json:"ingredients"`
	Steps       []RecipeLine `json:"steps"`

	// SourceURL is the page URL exactly as requested.
	SourceURL string `json:"source_url"`
}

// RecipeLine is one ingredient or step line.
type RecipeLine struct {
	ID string `json:"id"`

	Text string `json:"text"`

	// SortNumber is 1-based and contiguous across the sequence.
	SortNumber int `json:"sort_number"`

	Active bool `json:"active"`
}

// DefaultTitle is used when no title strategy matches.
const DefaultTitle = "Untitled Recipe"
