package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// strategy extracts one field from a document. ok=false means the strategy
// found nothing and the next one in the cascade should be tried.
type strategy[T any] func(doc *goquery.Document) (value T, ok bool)

// cascade evaluates strategies in priority order and returns the first
// present value.
func cascade[T any](doc *goquery.Document, strategies []strategy[T]) (T, bool) {
	for _, s := range strategies {
		if v, ok := s(doc); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

var (
	spaceRe = regexp.MustCompile(`\s+`)
	intRe   = regexp.MustCompile(`\d+`)
)

// norm trims s and collapses internal whitespace runs to one space.
func norm(s string) string {
	return spaceRe.ReplaceAllString(strings.TrimSpace(s), " ")
}

// firstText matches the first element for sel and yields its normalized text.
func firstText(sel cascadia.Selector) strategy[string] {
	return func(doc *goquery.Document) (string, bool) {
		t := norm(doc.FindMatcher(sel).First().Text())
		return t, t != ""
	}
}

// firstAttr yields the first non-empty value among attrs on elements
// matching sel, in document order.
func firstAttr(sel cascadia.Selector, attrs ...string) strategy[string] {
	return func(doc *goquery.Document) (string, bool) {
		var found string
		doc.FindMatcher(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			for _, a := range attrs {
				if v := strings.TrimSpace(s.AttrOr(a, "")); v != "" {
					found = v
					return false
				}
			}
			return true
		})
		return found, found != ""
	}
}

// listItems yields the normalized inner HTML of every element matching sel,
// dropping items that normalize to nothing.
func listItems(sel cascadia.Selector, normalize func(string) string) strategy[[]string] {
	return func(doc *goquery.Document) ([]string, bool) {
		var items []string
		doc.FindMatcher(sel).Each(func(_ int, s *goquery.Selection) {
			raw, err := s.Html()
			if err != nil {
				return
			}
			if text := normalize(raw); text != "" {
				items = append(items, text)
			}
		})
		return items, len(items) > 0
	}
}

// firstInt yields the first integer in the text of the first element
// matching sel whose text contains a digit. scale, if non-nil, adjusts the
// value based on the element text; an element it rejects counts as no match.
func firstInt(sel cascadia.Selector, scale func(text string, n int) (int, bool)) strategy[int] {
	return func(doc *goquery.Document) (int, bool) {
		var (
			value int
			found bool
		)
		doc.FindMatcher(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			text := s.Text()
			digits := intRe.FindString(text)
			if digits == "" {
				return true
			}
			n, err := strconv.Atoi(digits)
			if err != nil {
				return true
			}
			if scale != nil {
				var ok bool
				if n, ok = scale(text, n); !ok {
					return true
				}
			}
			value, found = n, true
			return false
		})
		return value, found
	}
}
