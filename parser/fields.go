package parser

import (
	"math"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"

	"github.com/a-thread/elysia-sub000/models"
)

// Strategy tables, highest priority first. Recipe sites share no markup
// standard, so each field tries several conventions and the first hit wins.
var (
	titleStrategies = []strategy[string]{
		firstText(cascadia.MustCompile(".recipe-title")),
		firstText(cascadia.MustCompile("h1")),
		firstText(cascadia.MustCompile("h2")),
	}

	imageStrategies = []strategy[string]{
		firstAttr(cascadia.MustCompile(`meta[property="og:image"]`), "content"),
		firstAttr(cascadia.MustCompile(`meta[name="og:image"]`), "content"),
		firstAttr(cascadia.MustCompile(`meta[name="twitter:image"]`), "content"),
		firstAttr(cascadia.MustCompile(`meta[property="twitter:image"]`), "content"),
		firstAttr(cascadia.MustCompile(`meta[name="thumbnail"]`), "content"),
		firstAttr(cascadia.MustCompile(`[itemprop="image"]`), "content", "src"),
		firstAttr(cascadia.MustCompile(`img[class*="recipe-image"]`), "src"),
		firstAttr(cascadia.MustCompile(`img[class*="recipe-img"]`), "src"),
		firstAttr(cascadia.MustCompile(`img[class*="wp-post-image"]`), "src"),
		firstAttr(cascadia.MustCompile(`img[class*="featured"]`), "src"),
		firstAttr(cascadia.MustCompile("img[src]"), "src"),
	}

	descriptionStrategies = []strategy[string]{
		cleaned(firstAttr(cascadia.MustCompile(`meta[name="description"]`), "content")),
		cleaned(firstAttr(cascadia.MustCompile(`meta[property="og:description"]`), "content")),
		cleaned(firstAttr(cascadia.MustCompile(`meta[name="twitter:description"]`), "content")),
		cleaned(firstHTML(cascadia.MustCompile(`[class*="recipe-summary"]`))),
	}

	ingredientStrategies = []strategy[[]string]{
		listItems(cascadia.MustCompile(`ul[class*="ingredients"] li`), NormalizeIngredient),
		listItems(cascadia.MustCompile(`ol[class*="ingredients"] li`), NormalizeIngredient),
		listItems(cascadia.MustCompile(`div[class*="ingredients"] li`), NormalizeIngredient),
	}

	stepStrategies = []strategy[[]string]{
		listItems(cascadia.MustCompile(`ol[class*="instructions"] li`), NormalizeStep),
		listItems(cascadia.MustCompile(`ul[class*="instructions"] li`), NormalizeStep),
		listItems(cascadia.MustCompile(`div[class*="instructions"] li`), NormalizeStep),
		listItems(cascadia.MustCompile(`ol[class*="preparation"] li`), NormalizeStep),
		listItems(cascadia.MustCompile(`ul[class*="preparation"] li`), NormalizeStep),
		listItems(cascadia.MustCompile(`div[class*="preparation"] li`), NormalizeStep),
	}

	prepTimeStrategies = []strategy[int]{
		firstInt(cascadia.MustCompile(`[class*="prep_time"]`), toMinutes),
		firstInt(cascadia.MustCompile(`[class*="prep-time"]`), toMinutes),
	}

	cookTimeStrategies = []strategy[int]{
		firstInt(cascadia.MustCompile(`[class*="cook_time"]`), toMinutes),
		firstInt(cascadia.MustCompile(`[class*="cook-time"]`), toMinutes),
	}

	servingsStrategies = []strategy[int]{
		firstInt(cascadia.MustCompile(`[class*="servings"]`), nil),
		firstInt(cascadia.MustCompile(`[class*="yield"]`), nil),
	}
)

// Title returns the recipe title, or models.DefaultTitle.
func Title(doc *goquery.Document) string {
	if t, ok := cascade(doc, titleStrategies); ok {
		return t
	}
	return models.DefaultTitle
}

// Image returns the recipe image URL, or nil.
func Image(doc *goquery.Document) *string {
	if src, ok := cascade(doc, imageStrategies); ok {
		return &src
	}
	return nil
}

// Description returns the HTML-stripped recipe description, or "".
func Description(doc *goquery.Document) string {
	d, _ := cascade(doc, descriptionStrategies)
	return d
}

// Ingredients returns the normalized ingredient lines in document order.
func Ingredients(doc *goquery.Document) []string {
	lines, _ := cascade(doc, ingredientStrategies)
	return lines
}

// Steps returns the normalized step lines in document order.
func Steps(doc *goquery.Document) []string {
	lines, _ := cascade(doc, stepStrategies)
	return lines
}

// PrepTime returns the preparation time in minutes, or 0.
func PrepTime(doc *goquery.Document) int {
	n, _ := cascade(doc, prepTimeStrategies)
	return n
}

// CookTime returns the cooking time in minutes, or 0.
func CookTime(doc *goquery.Document) int {
	n, _ := cascade(doc, cookTimeStrategies)
	return n
}

// Servings returns the number of servings, or 0.
func Servings(doc *goquery.Document) int {
	n, _ := cascade(doc, servingsStrategies)
	return n
}

// toMinutes treats n as hours when the label mentions them. Hour counts
// whose minute value overflows int are rejected.
func toMinutes(text string, n int) (int, bool) {
	if strings.Contains(strings.ToLower(text), "hour") {
		if n > math.MaxInt/60 {
			return 0, false
		}
		return n * 60, true
	}
	return n, true
}

var newlineRe = regexp.MustCompile(`[\r\n]+`)

// cleaned strips tags and collapses newlines in a text strategy's result.
func cleaned(s strategy[string]) strategy[string] {
	return func(doc *goquery.Document) (string, bool) {
		v, ok := s(doc)
		if !ok {
			return "", false
		}
		v = strings.TrimSpace(newlineRe.ReplaceAllString(stripAndDecode(v), " "))
		return v, v != ""
	}
}

// firstHTML yields the inner HTML of the first element matching sel.
func firstHTML(sel cascadia.Selector) strategy[string] {
	return func(doc *goquery.Document) (string, bool) {
		s := doc.FindMatcher(sel).First()
		if s.Length() == 0 {
			return "", false
		}
		h, err := s.Html()
		if err != nil {
			return "", false
		}
		return h, strings.TrimSpace(h) != ""
	}
}
