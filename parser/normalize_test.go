package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeIngredient_Fractions(t *testing.T) {
	tests := []struct {
		glyph string
		want  string
	}{
		{"½", "0.5"},
		{"⅓", "0.333"},
		{"⅔", "0.667"},
		{"¼", "0.25"},
		{"¾", "0.75"},
		{"⅕", "0.2"},
		{"⅖", "0.4"},
		{"⅗", "0.6"},
		{"⅘", "0.8"},
	}
	for _, tt := range tests {
		got := NormalizeIngredient(tt.glyph)
		assert.Equal(t, tt.want, got, "glyph %s", tt.glyph)
		assert.Contains(t, NormalizeIngredient(tt.glyph+" cup sugar"), tt.want)
	}
}

func TestNormalizeIngredient(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "2 cups flour", "2 cups flour"},
		{"tags stripped", "<b>3</b> <a href=\"/eggs\">eggs</a>", "3 eggs"},
		{"symbols dropped", "1 ½ cups (240ml) flour, sifted!", "1 0.5 cups 240ml flour sifted"},
		{"entity decoded then dropped", "2 cups &amp; more", "2 cups  more"},
		{"period kept", "1.5 tsp. salt", "1.5 tsp. salt"},
		{"surrounding space trimmed", "  \n 1 egg \t", "1 egg"},
		{"non-ascii letters kept", "200g crème fraîche", "200g crème fraîche"},
		{"glyph inside number", "1½ cups", "10.5 cups"},
		{"only symbols", "— * —", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeIngredient(tt.in))
		})
	}
}

func TestNormalizeStep(t *testing.T) {
	assert.Equal(t, "Whisk the dry ingredients.", NormalizeStep(" Whisk the <strong>dry</strong> ingredients. "))
	// No fraction handling and no symbol filtering in steps.
	assert.Equal(t, "Add ½ cup (120ml) milk!", NormalizeStep("Add ½ cup (120ml) milk!"))
	// Entities are decoded after stripping, so escaped markup stays text.
	assert.Equal(t, "Wrap it in <b>bold</b> foil", NormalizeStep("<p>Wrap it in &lt;b&gt;bold&lt;/b&gt; foil</p>"))
	assert.Equal(t, "Fish & chips", NormalizeStep("Fish &amp; chips"))
}

func TestStripTags(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"plain text", "plain text"},
		{"<p>Hello <em>world</em></p>", "Hello world"},
		{"a<br/>b", "ab"},
		{"x<script>alert('hi')</script>y", "xy"},
		{"<style>p{color:red}</style>text", "text"},
		{"Fish &amp; chips", "Fish &amp; chips"},
		{"Use the &lt;b&gt; tag", "Use the &lt;b&gt; tag"},
		{"<!-- note -->kept", "kept"},
		{"<title><b>x</b></title>kept", "kept"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StripTags(tt.in), "input %q", tt.in)
	}
}

func TestStripTags_Idempotent(t *testing.T) {
	inputs := []string{
		"2 cups flour",
		"Preheat the oven to 200 degrees.",
		"<li><b>1</b> onion, diced</li>",
		"<div><p>Mix</p>\n<p>then bake</p></div>",
		"Fish &amp; chips",
		"Use the &lt;b&gt; tag",
		"<p>Wrap it in &lt;b&gt;bold&lt;/b&gt; foil</p>",
		"<title><b>x</b></title>kept",
		"<textarea><i>note</i></textarea>Stir",
	}
	for _, in := range inputs {
		once := StripTags(in)
		assert.Equal(t, once, StripTags(once), "input %q", in)
	}

	// Already-stripped text passes through both normalizers unchanged.
	for _, plain := range []string{"2 cups flour", "1.5 tsp salt", "  3 eggs  "} {
		assert.Equal(t, strings.TrimSpace(plain), NormalizeIngredient(plain))
		assert.Equal(t, strings.TrimSpace(plain), NormalizeStep(plain))
	}
}
