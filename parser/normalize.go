package parser

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

// fractionDecimals maps each supported vulgar fraction glyph to the decimal
// string it is rewritten to in ingredient text.
var fractionDecimals = map[rune]string{
	'½': "0.5",
	'⅓': "0.333",
	'⅔': "0.667",
	'¼': "0.25",
	'¾': "0.75",
	'⅕': "0.2",
	'⅖': "0.4",
	'⅗': "0.6",
	'⅘': "0.8",
}

var fractionReplacer = newFractionReplacer()

func newFractionReplacer() *strings.Replacer {
	pairs := make([]string, 0, 2*len(fractionDecimals))
	for glyph, decimal := range fractionDecimals {
		pairs = append(pairs, string(glyph), decimal)
	}
	return strings.NewReplacer(pairs...)
}

// StripTags returns the text content of an HTML fragment with tags dropped
// and the bodies of raw-text elements such as script and title skipped.
// Text is written as it appears in the source, entities included, so
// escaped markup never turns into tags and a second pass is a no-op.
// Callers decode with html.UnescapeString.
func StripTags(fragment string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(fragment))
	var buf strings.Builder
	skipDepth := 0

	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return buf.String()
		case html.StartTagToken:
			if isRawTextTag(tokenizer) {
				skipDepth++
			}
		case html.EndTagToken:
			if isRawTextTag(tokenizer) && skipDepth > 0 {
				skipDepth--
			}
		case html.TextToken:
			if skipDepth == 0 {
				buf.Write(tokenizer.Raw())
			}
		}
	}
}

func isRawTextTag(tokenizer *html.Tokenizer) bool {
	tn, _ := tokenizer.TagName()
	switch string(tn) {
	case "script", "style", "noscript", "title", "textarea", "xmp", "iframe", "noembed", "noframes", "plaintext":
		return true
	}
	return false
}

// NormalizeIngredient canonicalizes one ingredient line. It strips tags,
// drops every character that is not a letter, digit, fraction glyph,
// period or whitespace, rewrites fraction glyphs as decimals and trims.
// Units and symbols outside that set are lost.
func NormalizeIngredient(raw string) string {
	kept := strings.Map(func(r rune) rune {
		if keepIngredientRune(r) {
			return r
		}
		return -1
	}, stripAndDecode(raw))
	return strings.TrimSpace(fractionReplacer.Replace(kept))
}

func keepIngredientRune(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) || r == '.' {
		return true
	}
	_, ok := fractionDecimals[r]
	return ok
}

// NormalizeStep canonicalizes one instruction line: tags stripped, trimmed.
func NormalizeStep(raw string) string {
	return strings.TrimSpace(stripAndDecode(raw))
}

// stripAndDecode is StripTags followed by entity decoding.
func stripAndDecode(fragment string) string {
	return html.UnescapeString(StripTags(fragment))
}
