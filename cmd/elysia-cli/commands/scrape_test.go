package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/a-thread/elysia-sub000/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<html><body>
<h1>Toast</h1>
<ul class="ingredients"><li>1 slice bread</li><li>½ tbsp butter</li></ul>
<ol class="instructions"><li>Toast the bread.</li><li>Butter it.</li></ol>
</body></html>`

func newProxy(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(page))
	}))
	t.Cleanup(srv.Close)
	return srv.URL + "/?"
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stdout)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), err
}

func TestScrape_JSON(t *testing.T) {
	out, err := execute(t, "scrape", "https://example.com/toast", "--proxy", newProxy(t))
	require.NoError(t, err)

	var recipe models.ScrapedRecipe
	require.NoError(t, json.Unmarshal([]byte(out), &recipe))
	assert.Equal(t, "Toast", recipe.Title)
	assert.Equal(t, "https://example.com/toast", recipe.SourceURL)
	require.Len(t, recipe.Ingredients, 2)
	assert.Equal(t, "0.5 tbsp butter", recipe.Ingredients[1].Text)
	assert.Equal(t, 2, recipe.Steps[1].SortNumber)
}

func TestScrape_MarkdownToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "toast.md")
	out, err := execute(t, "scrape", "https://example.com/toast",
		"--proxy", newProxy(t), "--format", "markdown", "--out", path)
	require.NoError(t, err)
	assert.Contains(t, out, "OK -> "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Toast")
	assert.Contains(t, string(data), "2. Butter it.")
}

func TestScrape_Errors(t *testing.T) {
	_, err := execute(t, "scrape")
	assert.Error(t, err)

	_, err = execute(t, "scrape", "https://example.com/toast", "--format", "pdf")
	assert.ErrorContains(t, err, "unsupported format")

	_, err = execute(t, "scrape", "ftp://example.com/toast", "--proxy", newProxy(t))
	var scrapeErr *models.ScrapeError
	require.ErrorAs(t, err, &scrapeErr)
	assert.Equal(t, models.ErrCodeInvalidInput, scrapeErr.Code)
}
