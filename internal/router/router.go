// Package router decides, per query, whether to answer from the fine-tuned
// model ("frozen knowledge"), the live search provider ("live knowledge"),
// or both, and merges the results with provenance metadata.
package router

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/karpagadevi/templed/internal/tavily"
)

// Source tags identifying where a Result's text came from.
const (
	SourceSearch           = "tavily_search"
	SourceModel            = "model"
	SourceModelPlaceholder = "model_placeholder"
	SourceHybrid           = "hybrid"
	SourceError            = "error"
)

const placeholderResponse = "The fine-tuned model is not loaded yet. " +
	"This would normally provide historical and cultural information about the temple."

// Result is the outcome of one strategy execution. Provider failures are
// folded into a success=false Result rather than propagated as errors.
type Result struct {
	Response   string   `json:"response"`
	Source     string   `json:"source"`
	Strategy   Strategy `json:"strategy"`
	Success    bool     `json:"success"`
	TempleName string   `json:"temple_name,omitempty"`
}

// SearchProvider is the live-knowledge collaborator. *tavily.Client
// implements it.
type SearchProvider interface {
	Search(ctx context.Context, query string) (*tavily.SearchResponse, error)
	SearchTickets(ctx context.Context, templeName string) (*tavily.SearchResponse, error)
	SearchLocation(ctx context.Context, templeName string) (*tavily.SearchResponse, error)
	UsageStats() tavily.UsageStats
}

// ModelProvider is the frozen-knowledge collaborator.
type ModelProvider interface {
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// Router dispatches classified queries to the appropriate provider(s).
type Router struct {
	search SearchProvider
	model  ModelProvider // nil when the fine-tuned model is not attached
}

// New creates a Router. A nil model provider is valid: model-strategy queries
// then return a placeholder result instead of failing the request.
func New(search SearchProvider, model ModelProvider) *Router {
	return &Router{search: search, model: model}
}

// GenerateResponse classifies the query and executes the selected strategy.
func (r *Router) GenerateResponse(ctx context.Context, query string) Result {
	return r.Execute(ctx, Classify(query), query)
}

// Execute runs the given strategy against the query. The strategy is fixed
// for the whole execution; it is never re-derived mid-request. A strategy
// value outside the three known cases is unreachable through Classify and
// yields a defensive failure result.
func (r *Router) Execute(ctx context.Context, strategy Strategy, query string) Result {
	temple, _ := ExtractTempleName(query)

	slog.Debug("executing strategy",
		"strategy", strategy.String(),
		"temple", temple,
	)

	switch strategy {
	case StrategySearch:
		return r.searchResponse(ctx, query, temple)
	case StrategyModel:
		return r.modelResponse(ctx, query, temple)
	case StrategyHybrid:
		return r.hybridResponse(ctx, query, temple)
	}

	return Result{
		Response:   "I'm not sure how to answer that.",
		Source:     SourceError,
		Strategy:   strategy,
		Success:    false,
		TempleName: temple,
	}
}

// Keyword subsets steering the search path toward a specialized sub-query.
var (
	ticketTerms   = []string{"ticket", "price", "fee", "timing", "hours"}
	locationTerms = []string{"location", "reach", "directions", "address"}
)

func (r *Router) searchResponse(ctx context.Context, query, temple string) Result {
	// Specialized searches take the temple name when one was identified,
	// falling back to the raw query.
	subject := temple
	if subject == "" {
		subject = query
	}

	q := strings.ToLower(query)
	var (
		resp *tavily.SearchResponse
		err  error
	)
	switch {
	case containsAny(q, ticketTerms):
		resp, err = r.search.SearchTickets(ctx, subject)
	case containsAny(q, locationTerms):
		resp, err = r.search.SearchLocation(ctx, subject)
	default:
		resp, err = r.search.Search(ctx, query)
	}

	if err != nil {
		slog.Warn("search failed", "error", err)
		return Result{
			Response:   fmt.Sprintf("Sorry, I couldn't find current information. Error: %v", err),
			Source:     SourceError,
			Strategy:   StrategySearch,
			Success:    false,
			TempleName: temple,
		}
	}

	return Result{
		Response:   tavily.FormatResults(resp),
		Source:     SourceSearch,
		Strategy:   StrategySearch,
		Success:    true,
		TempleName: temple,
	}
}

func (r *Router) modelResponse(ctx context.Context, query, temple string) Result {
	if r.model == nil {
		return Result{
			Response:   placeholderResponse,
			Source:     SourceModelPlaceholder,
			Strategy:   StrategyModel,
			Success:    false,
			TempleName: temple,
		}
	}

	text, err := r.model.Generate(ctx, query, 0)
	if err != nil {
		slog.Warn("model generation failed", "error", err)
		return Result{
			Response:   fmt.Sprintf("Sorry, the temple expert model could not answer. Error: %v", err),
			Source:     SourceError,
			Strategy:   StrategyModel,
			Success:    false,
			TempleName: temple,
		}
	}

	return Result{
		Response:   text,
		Source:     SourceModel,
		Strategy:   StrategyModel,
		Success:    true,
		TempleName: temple,
	}
}

// hybridResponse always runs both halves regardless of which keywords
// triggered hybrid, and succeeds if either half did: one source failing
// degrades the answer instead of losing it.
func (r *Router) hybridResponse(ctx context.Context, query, temple string) Result {
	modelRes := r.modelResponse(ctx, query, temple)
	searchRes := r.searchResponse(ctx, query, temple)

	var sb strings.Builder
	sb.WriteString("**Historical Information:**\n")
	sb.WriteString(modelRes.Response)
	sb.WriteString("\n\n**Current Information:**\n")
	sb.WriteString(searchRes.Response)

	return Result{
		Response:   sb.String(),
		Source:     SourceHybrid,
		Strategy:   StrategyHybrid,
		Success:    modelRes.Success || searchRes.Success,
		TempleName: temple,
	}
}

// Stats reports delegated provider state: search-quota counters and whether
// the fine-tuned model is attached.
type Stats struct {
	TavilyUsage tavily.UsageStats `json:"tavily_usage"`
	ModelLoaded bool              `json:"model_loaded"`
}

// Stats returns current provider statistics.
func (r *Router) Stats() Stats {
	return Stats{
		TavilyUsage: r.search.UsageStats(),
		ModelLoaded: r.model != nil,
	}
}
