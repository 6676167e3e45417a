package parser

import "github.com/a-thread/elysia-sub000/models"

// extracted holds the raw field values before assembly.
type extracted struct {
	title       string
	description string
	image       *string
	prepTime    int
	cookTime    int
	servings    int
	ingredients []string
	steps       []string
}

// assemble packages extracted fields into a ScrapedRecipe, numbering lines
// from 1 in document order.
func assemble(f extracted, sourceURL string, newID func() string) *models.ScrapedRecipe {
	return &models.ScrapedRecipe{
		Title:           f.title,
		Description:     f.description,
		ImageURL:        f.image,
		PrepTimeMinutes: f.prepTime,
		CookTimeMinutes: f.cookTime,
		Servings:        f.servings,
		Ingredients:     toLines(f.ingredients, newID),
		Steps:           toLines(f.steps, newID),
		SourceURL:       sourceURL,
	}
}

func toLines(texts []string, newID func() string) []models.RecipeLine {
	lines := make([]models.RecipeLine, 0, len(texts))
	for i, text := range texts {
		lines = append(lines, models.RecipeLine{
			ID:         newID(),
			Text:       text,
			SortNumber: i + 1,
			Active:     true,
		})
	}
	return lines
}
