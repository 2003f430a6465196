package tavily

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	defaultBaseURL    = "https://api.tavily.com"
	defaultTimeout    = 30 * time.Second
	defaultMaxResults = 5

	// Tavily's free tier allows 1000 searches per month. The counter is
	// informational only; searches are never blocked.
	freeTierLimit  = 1000
	quotaWarnRatio = 0.9
)

// Search depths recognized by the Tavily API. Basic costs one credit,
// advanced costs two.
const (
	DepthBasic    = "basic"
	DepthAdvanced = "advanced"
)

// ticketDomains are preferred sources for ticket and timing searches:
// official tourism portals and major travel sites.
var ticketDomains = []string{
	"incredibleindia.org",
	"tourism.gov.in",
	"tripadvisor.com",
	"makemytrip.com",
}

// Config controls search behavior for a Client.
type Config struct {
	APIKey      string
	BaseURL     string // defaults to the public Tavily endpoint
	MaxResults  int    // defaults to 5
	SearchDepth string // DepthBasic or DepthAdvanced, defaults to basic
}

// Client communicates with the Tavily search API over HTTP. It owns the
// search-usage counter shared by every strategy that routes through it.
type Client struct {
	apiKey      string
	baseURL     string
	maxResults  int
	searchDepth string
	httpClient  *http.Client

	mu          sync.Mutex
	searchCount int
}

// NewClient creates a Tavily client. A missing API key is a configuration
// error and fails fast here rather than on the first search.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New(
			"Tavily API key not set. Set TEMPLED_TAVILY_API_KEY or run " +
				"`templed config set tavily.api_key <key>`; get a free key at https://tavily.com/")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	depth := cfg.SearchDepth
	if depth == "" {
		depth = DepthBasic
	}
	return &Client{
		apiKey:      cfg.APIKey,
		baseURL:     strings.TrimRight(baseURL, "/"),
		maxResults:  maxResults,
		searchDepth: depth,
		httpClient:  &http.Client{Timeout: defaultTimeout},
	}, nil
}

// searchRequest is the JSON body for POST /search.
type searchRequest struct {
	APIKey            string   `json:"api_key"`
	Query             string   `json:"query"`
	MaxResults        int      `json:"max_results"`
	IncludeDomains    []string `json:"include_domains,omitempty"`
	SearchDepth       string   `json:"search_depth"`
	IncludeAnswer     bool     `json:"include_answer"`
	IncludeRawContent bool     `json:"include_raw_content"`
}

// SearchResult is a single ranked result returned by Tavily.
type SearchResult struct {
	Title   string  `json:"title"`
	Content string  `json:"content"`
	URL     string  `json:"url"`
	Score   float64 `json:"score"`
}

// SearchResponse holds the AI-generated answer and ranked results for a query.
type SearchResponse struct {
	Query   string         `json:"query"`
	Answer  string         `json:"answer"`
	Results []SearchResult `json:"results"`
}

// Search performs a generic information search with the client's configured
// result count and depth.
func (c *Client) Search(ctx context.Context, query string) (*SearchResponse, error) {
	return c.search(ctx, query, nil)
}

// SearchTickets searches for ticket prices and visiting hours, preferring
// official tourism and travel domains.
func (c *Client) SearchTickets(ctx context.Context, templeName string) (*SearchResponse, error) {
	query := templeName + " ticket price entry fee timings opening hours"
	return c.search(ctx, query, ticketDomains)
}

// SearchLocation searches for a temple's location and directions.
func (c *Client) SearchLocation(ctx context.Context, templeName string) (*SearchResponse, error) {
	query := templeName + " location address how to reach directions"
	return c.search(ctx, query, nil)
}

func (c *Client) search(ctx context.Context, query string, includeDomains []string) (*SearchResponse, error) {
	// The counter covers attempts, not successes: a failed call still spends
	// the request against the quota.
	c.mu.Lock()
	c.searchCount++
	used := c.searchCount
	c.mu.Unlock()

	if float64(used) >= float64(freeTierLimit)*quotaWarnRatio {
		slog.Warn("approaching Tavily free-tier limit", "used", used, "limit", freeTierLimit)
	}

	body, err := json.Marshal(searchRequest{
		APIKey:            c.apiKey,
		Query:             query,
		MaxResults:        c.maxResults,
		IncludeDomains:    includeDomains,
		SearchDepth:       c.searchDepth,
		IncludeAnswer:     true,
		IncludeRawContent: false,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("search: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var result SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding search response: %w", err)
	}
	result.Query = query
	return &result, nil
}

// UsageStats reports search-quota consumption.
type UsageStats struct {
	SearchesUsed  int     `json:"searches_used"`
	FreeTierLimit int     `json:"free_tier_limit"`
	Remaining     int     `json:"remaining"`
	PercentUsed   float64 `json:"percentage_used"`
}

// UsageStats returns the current quota counters.
func (c *Client) UsageStats() UsageStats {
	c.mu.Lock()
	used := c.searchCount
	c.mu.Unlock()

	return UsageStats{
		SearchesUsed:  used,
		FreeTierLimit: freeTierLimit,
		Remaining:     freeTierLimit - used,
		PercentUsed:   float64(used) / float64(freeTierLimit) * 100,
	}
}
