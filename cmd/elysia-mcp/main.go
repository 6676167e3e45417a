package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/a-thread/elysia-sub000/models"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func main() {
	apiURL := os.Getenv("ELYSIA_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	apiKey := os.Getenv("ELYSIA_API_KEY")
	if apiKey == "" {
		fmt.Fprintln(os.Stderr, "ELYSIA_API_KEY is required")
		os.Exit(1)
	}

	client := newAPIClient(apiURL, apiKey, 120*time.Second)

	if err := server.ServeStdio(newServer(client)); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func newServer(client *apiClient) *server.MCPServer {
	s := server.NewMCPServer(
		"elysia",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	s.AddTool(mcp.NewTool("scrape_recipe",
		mcp.WithDescription("Scrape a recipe web page and return its title, description, timings, servings, ingredients and steps."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL of the recipe page"),
		),
		mcp.WithNumber("max_age",
			mcp.Description("Serve a cached result younger than this many milliseconds (0 disables caching)"),
		),
	), handleScrapeRecipe(client))

	s.AddTool(mcp.NewTool("export_recipe",
		mcp.WithDescription("Scrape a recipe web page and render it as a shareable Markdown or HTML document."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL of the recipe page"),
		),
		mcp.WithString("format",
			mcp.Description("Output format: 'markdown' (default) or 'html'"),
			mcp.Enum("markdown", "html"),
		),
	), handleExportRecipe(client))

	s.AddTool(mcp.NewTool("import_recipes",
		mcp.WithDescription("Scrape several recipe pages in parallel and summarise each result."),
		mcp.WithArray("urls",
			mcp.Required(),
			mcp.Description("List of recipe URLs"),
		),
	), handleImportRecipes(client))

	return s
}

func handleScrapeRecipe(client *apiClient) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		resp, err := client.Scrape(ctx, url, request.GetInt("max_age", 0))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if !resp.Success {
			return mcp.NewToolResultError(describeError(resp.Error, "scrape failed")), nil
		}
		return mcp.NewToolResultText(formatRecipe(resp.Recipe)), nil
	}
}

func handleExportRecipe(client *apiClient) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		scraped, err := client.Scrape(ctx, url, 0)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if !scraped.Success {
			return mcp.NewToolResultError(describeError(scraped.Error, "scrape failed")), nil
		}

		exported, err := client.Export(ctx, scraped.Recipe, request.GetString("format", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if !exported.Success {
			return mcp.NewToolResultError(describeError(exported.Error, "export failed")), nil
		}
		return mcp.NewToolResultText(exported.Content), nil
	}
}

func handleImportRecipes(client *apiClient) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		urls, err := request.RequireStringSlice("urls")
		if err != nil {
			return mcp.NewToolResultError("urls is required and must be an array of strings"), nil
		}

		created, err := client.Batch(ctx, urls)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if created.ID == "" {
			return mcp.NewToolResultError(describeError(created.Error, "batch job creation failed")), nil
		}

		status, err := client.WaitBatch(ctx, created.ID, 2*time.Second)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("polling batch job failed: %v", err)), nil
		}
		return mcp.NewToolResultText(formatBatch(status)), nil
	}
}

func describeError(detail *models.ErrorDetail, fallback string) string {
	if detail == nil {
		return fallback
	}
	return fmt.Sprintf("[%s] %s", detail.Code, detail.Message)
}

// formatRecipe renders a recipe as plain text for tool output.
func formatRecipe(r *models.ScrapedRecipe) string {
	if r == nil {
		return ""
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Title: %s\nSource: %s\n", r.Title, r.SourceURL)
	if r.ImageURL != nil {
		fmt.Fprintf(&sb, "Image: %s\n", *r.ImageURL)
	}
	if r.Description != "" {
		fmt.Fprintf(&sb, "Description: %s\n", r.Description)
	}
	fmt.Fprintf(&sb, "Prep: %d min, Cook: %d min, Servings: %d\n",
		r.PrepTimeMinutes, r.CookTimeMinutes, r.Servings)

	sb.WriteString("\nIngredients:\n")
	for _, l := range r.Ingredients {
		fmt.Fprintf(&sb, "- %s\n", l.Text)
	}
	sb.WriteString("\nSteps:\n")
	for _, l := range r.Steps {
		fmt.Fprintf(&sb, "%d. %s\n", l.SortNumber, l.Text)
	}
	return sb.String()
}

func formatBatch(status *models.BatchStatusResponse) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Batch %s: %s (%d/%d done)\n\n", status.ID, status.Status, status.Completed, status.Total)
	for i, r := range status.Results {
		switch {
		case r == nil:
			fmt.Fprintf(&sb, "--- [%d] missing result ---\n\n", i+1)
		case r.Success && r.Recipe != nil:
			fmt.Fprintf(&sb, "--- [%d] %s ---\n%s\n", i+1, r.URL, formatRecipe(r.Recipe))
		default:
			fmt.Fprintf(&sb, "--- [%d] FAILED %s: %s ---\n\n", i+1, r.URL, describeError(r.Error, "unknown error"))
		}
	}
	return sb.String()
}
