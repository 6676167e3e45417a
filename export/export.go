// Package export renders scraped recipes as shareable documents.
package export

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"

	"github.com/a-thread/elysia-sub000/models"
)

// Supported export formats.
const (
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
)

var recipeTemplate = template.Must(template.New("recipe").Funcs(template.FuncMap{
	"active": activeLines,
	"deref":  func(s *string) string { return *s },
}).Parse(`<article>
<h1>{{.Title}}</h1>
{{- with .ImageURL}}
<p><img src="{{deref .}}" alt="{{$.Title}}"></p>
{{- end}}
{{- with .Description}}
<p>{{.}}</p>
{{- end}}
{{- if or .PrepTimeMinutes .CookTimeMinutes .Servings}}
<table>
<tr><th>Prep</th><th>Cook</th><th>Servings</th></tr>
<tr><td>{{.PrepTimeMinutes}} min</td><td>{{.CookTimeMinutes}} min</td><td>{{.Servings}}</td></tr>
</table>
{{- end}}
{{- with active .Ingredients}}
<h2>Ingredients</h2>
<ul>
{{- range .}}
<li>{{.Text}}</li>
{{- end}}
</ul>
{{- end}}
{{- with active .Steps}}
<h2>Steps</h2>
<ol>
{{- range .}}
<li>{{.Text}}</li>
{{- end}}
</ol>
{{- end}}
{{- with .SourceURL}}
<p>Source: <a href="{{.}}">{{.}}</a></p>
{{- end}}
</article>
`))

// Exporter renders recipes. The converter is created once and reused across
// all requests (goroutine-safe).
type Exporter struct {
	mdConverter *converter.Converter
}

// NewExporter initialises the Exporter with a pre-configured Markdown converter.
func NewExporter() *Exporter {
	return &Exporter{
		mdConverter: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(
					table.WithCellPaddingBehavior(table.CellPaddingBehaviorMinimal),
				),
			),
		),
	}
}

// Render renders recipe in the given format. Inactive lines are left out.
func (e *Exporter) Render(recipe *models.ScrapedRecipe, format string) (string, error) {
	if recipe == nil {
		return "", models.NewScrapeError(models.ErrCodeInvalidInput, "recipe is required", nil)
	}

	var buf bytes.Buffer
	if err := recipeTemplate.Execute(&buf, recipe); err != nil {
		return "", models.NewScrapeError(models.ErrCodeExport, "failed to render recipe", err)
	}

	switch format {
	case FormatHTML:
		return buf.String(), nil
	case FormatMarkdown, "":
		md, err := e.mdConverter.ConvertString(buf.String(), converter.WithDomain(recipe.SourceURL))
		if err != nil {
			return "", models.NewScrapeError(models.ErrCodeExport, "markdown conversion failed", err)
		}
		return strings.TrimSpace(md) + "\n", nil
	default:
		return "", models.NewScrapeError(
			models.ErrCodeInvalidInput,
			fmt.Sprintf("unsupported export format %q", format),
			nil,
		)
	}
}

func activeLines(lines []models.RecipeLine) []models.RecipeLine {
	out := make([]models.RecipeLine, 0, len(lines))
	for _, l := range lines {
		if l.Active {
			out = append(out, l)
		}
	}
	return out
}
