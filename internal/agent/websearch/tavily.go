// Package websearch implements the live web search gateway on the Tavily
// REST API, used as the fallback source when knowledge-base retrieval is
// judged insufficient.
package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/askpy/server/internal/core"
	errx "github.com/askpy/server/internal/core/error"
	logx "github.com/askpy/server/pkg/logger"
)

// NoResultsMarker is returned when the provider has no results for a query.
// Callers treat it as valid, empty context, not as a failure.
const NoResultsMarker = "No results found."

// Config holds the Tavily connection settings.
type Config struct {
	APIKey     string `envconfig:"TAVILY_API_KEY" required:"true"`
	Endpoint   string `envconfig:"TAVILY_ENDPOINT" default:"https://api.tavily.com/search"`
	MaxResults int    `envconfig:"TAVILY_MAX_RESULTS" default:"3"`
}

// tavilyRequest represents a request to the Tavily search API.
type tavilyRequest struct {
	APIKey     string `json:"api_key"`
	Query      string `json:"query"`
	Topic      string `json:"topic,omitempty"`
	MaxResults int    `json:"max_results,omitempty"`
}

// tavilyResult represents a single search result.
type tavilyResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// tavilyResponse represents the response from the Tavily search API.
type tavilyResponse struct {
	Query   string         `json:"query"`
	Results []tavilyResult `json:"results"`
}

// Gateway performs live web searches and renders the results as a single
// text blob suitable for prompt context.
type Gateway struct {
	cfg        Config
	httpClient *http.Client
	policy     core.CallPolicy
}

func NewGateway(cfg Config, policy core.CallPolicy) *Gateway {
	timeout := policy.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Gateway{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		policy:     policy,
	}
}

// Search returns up to MaxResults results formatted as title/content/source
// blocks separated by blank lines, or NoResultsMarker when the provider
// returns none.
func (g *Gateway) Search(ctx context.Context, query string) (string, error) {
	var parsed tavilyResponse
	err := core.Retry(ctx, g.policy, func(ctx context.Context) error {
		return g.search(ctx, query, &parsed)
	})
	if err != nil {
		return "", err
	}

	if len(parsed.Results) == 0 {
		logx.Debug().Str("query", query).Msg("web search returned no results")
		return NoResultsMarker, nil
	}

	formatted := make([]string, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		formatted = append(formatted, fmt.Sprintf("Title: %s\nContent: %s\nSource: %s", r.Title, r.Content, r.URL))
	}
	return strings.Join(formatted, "\n\n"), nil
}

func (g *Gateway) search(ctx context.Context, query string, out *tavilyResponse) error {
	body, err := json.Marshal(tavilyRequest{
		APIKey:     g.cfg.APIKey,
		Query:      query,
		Topic:      "general",
		MaxResults: g.cfg.MaxResults,
	})
	if err != nil {
		return fmt.Errorf("marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return errx.WrapCollaborator("web search", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return errx.WrapCollaborator("web search",
			fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet))))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errx.WrapCollaborator("web search", fmt.Errorf("decode response: %w", err))
	}
	return nil
}
