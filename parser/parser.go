// Package parser extracts structured recipe fields from arbitrary recipe
// page HTML.
//
// Every field is resolved by a cascade: an ordered list of selector
// strategies tried until one yields a value. Extraction never fails; a field
// nothing matches falls back to its default ("Untitled Recipe", "", 0, nil or
// an empty list).
package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"github.com/a-thread/elysia-sub000/models"
)

type options struct {
	newID func() string
}

// Option customizes Parse.
type Option func(*options)

// WithIDGenerator replaces the random UUID generator used for line ids.
func WithIDGenerator(fn func() string) Option {
	return func(o *options) {
		o.newID = fn
	}
}

// Parse extracts a ScrapedRecipe from rawHTML. sourceURL is carried into the
// result unchanged.
func Parse(rawHTML string, sourceURL string, opts ...Option) (*models.ScrapedRecipe, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeParse, "failed to parse recipe page", err)
	}
	return ParseDocument(doc, sourceURL, opts...), nil
}

// ParseDocument is Parse over an already parsed document.
func ParseDocument(doc *goquery.Document, sourceURL string, opts ...Option) *models.ScrapedRecipe {
	o := options{newID: uuid.NewString}
	for _, opt := range opts {
		opt(&o)
	}

	return assemble(extracted{
		title:       Title(doc),
		description: Description(doc),
		image:       Image(doc),
		prepTime:    PrepTime(doc),
		cookTime:    CookTime(doc),
		servings:    Servings(doc),
		ingredients: Ingredients(doc),
		steps:       Steps(doc),
	}, sourceURL, o.newID)
}
