// Package agent wraps the query router in an explicit four-phase decision
// cycle — think, act, observe, respond — adding a human-readable strategy
// justification, confidence and quality scores, and a bounded rolling
// conversation history.
package agent

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/karpagadevi/templed/internal/router"
)

const (
	defaultHistorySize = 10
	defaultHistoryView = 5
)

// Executor runs a retrieval strategy and reports provider statistics.
// *router.Router implements it.
type Executor interface {
	Execute(ctx context.Context, strategy router.Strategy, query string) router.Result
	Stats() router.Stats
}

// Agent executes the reasoning cycle. The mutex serializes the cycle and
// guards the history buffer and verbosity flag: the core processes one query
// at a time, but the HTTP and MCP surfaces may call in concurrently.
type Agent struct {
	exec Executor

	mu      sync.Mutex
	verbose bool
	history *historyBuffer
}

// New creates an Agent. historySize <= 0 selects the default capacity of 10.
// verbose enables reasoning-trace log output for every call; individual
// calls can override it via TraceMode.
func New(exec Executor, historySize int, verbose bool) *Agent {
	if historySize <= 0 {
		historySize = defaultHistorySize
	}
	return &Agent{
		exec:    exec,
		verbose: verbose,
		history: newHistoryBuffer(historySize),
	}
}

// Respond runs the full cycle for one query and appends the interaction to
// the conversation history. The trace override applies to this call only;
// the configured verbosity is restored on every exit path, including panics
// in a provider.
func (a *Agent) Respond(ctx context.Context, query string, trace TraceMode) Response {
	a.mu.Lock()
	defer a.mu.Unlock()

	prev := a.verbose
	switch trace {
	case TraceOn:
		a.verbose = true
	case TraceOff:
		a.verbose = false
	}
	defer func() { a.verbose = prev }()

	thought := a.think(query)
	result := a.act(ctx, thought)
	obs := a.observe(result)

	resp := Response{
		Response:   result.Response,
		Source:     result.Source,
		Strategy:   thought.Strategy,
		TempleName: thought.TempleName,
		Confidence: thought.Confidence,
		Quality:    obs.QualityScore,
		Reasoning:  thought.Reasoning,
		Success:    obs.Success,
	}

	a.history.Append(Entry{
		ID:         uuid.New().String(),
		Timestamp:  time.Now().UTC(),
		Query:      query,
		Response:   resp.Response,
		Strategy:   resp.Strategy,
		TempleName: resp.TempleName,
	})

	if a.verbose {
		slog.Info("respond", "strategy", resp.Strategy.String(), "quality", resp.Quality, "success", resp.Success)
	}

	return resp
}

// think classifies the query, extracts a candidate temple name, and scores
// confidence in the chosen strategy.
func (a *Agent) think(query string) Thought {
	strategy := router.Classify(query)
	temple, _ := router.ExtractTempleName(query)

	thought := Thought{
		Query:      query,
		TempleName: temple,
		Strategy:   strategy,
		Reasoning:  explainStrategy(query, strategy),
		Confidence: assessConfidence(query, strategy),
	}

	if a.verbose {
		slog.Info("think",
			"reasoning", thought.Reasoning,
			"strategy", strategy.String(),
			"temple", temple,
			"confidence", thought.Confidence,
		)
	}

	return thought
}

// act executes the strategy selected during think against the original query
// text. The router re-derives the temple name internally with the same
// extraction procedure, so both phases agree.
func (a *Agent) act(ctx context.Context, thought Thought) router.Result {
	if a.verbose {
		slog.Info("act", "strategy", thought.Strategy.String())
	}
	return a.exec.Execute(ctx, thought.Strategy, thought.Query)
}

// observe scores the quality and completeness of the result.
func (a *Agent) observe(result router.Result) Observation {
	obs := Observation{
		Success:      result.Success,
		QualityScore: assessQuality(result),
		IsComplete:   checkCompleteness(result),
		Result:       result,
	}

	if a.verbose {
		slog.Info("observe", "quality", obs.QualityScore, "complete", obs.IsComplete)
	}

	return obs
}

// History returns the lastN most recent entries in insertion order.
// lastN <= 0 selects the default view of 5.
func (a *Agent) History(lastN int) []Entry {
	if lastN <= 0 {
		lastN = defaultHistoryView
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.history.Last(lastN)
}

// ClearHistory empties the conversation history immediately.
func (a *Agent) ClearHistory() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.history.Clear()
}

// Stats aggregates the current history: a count per strategy and the
// distinct temples discussed, plus delegated provider statistics.
type Stats struct {
	TotalQueries     int            `json:"total_queries"`
	StrategiesUsed   map[string]int `json:"strategies_used"`
	TemplesDiscussed []string       `json:"temples_discussed"`
	Router           router.Stats   `json:"router"`
}

// Stats returns aggregate statistics over the retained history.
func (a *Agent) Stats() Stats {
	a.mu.Lock()
	entries := a.history.All()
	a.mu.Unlock()

	strategies := make(map[string]int)
	templeSet := make(map[string]struct{})
	for _, e := range entries {
		strategies[e.Strategy.String()]++
		if e.TempleName != "" {
			templeSet[e.TempleName] = struct{}{}
		}
	}

	temples := make([]string, 0, len(templeSet))
	for name := range templeSet {
		temples = append(temples, name)
	}
	sort.Strings(temples)

	return Stats{
		TotalQueries:     len(entries),
		StrategiesUsed:   strategies,
		TemplesDiscussed: temples,
		Router:           a.exec.Stats(),
	}
}

// explainStrategy builds the human-readable justification for the chosen
// strategy, mirroring the classification keyword groups.
func explainStrategy(query string, strategy router.Strategy) string {
	q := strings.ToLower(query)

	switch strategy {
	case router.StrategySearch:
		switch {
		case containsAny(q, "ticket", "price", "fee"):
			return "query asks about pricing -> need real-time info -> use search"
		case containsAny(q, "timing", "hours", "open"):
			return "query asks about timings -> need current info -> use search"
		case containsAny(q, "location", "reach", "directions"):
			return "query asks about location/directions -> use search"
		default:
			return "query needs real-time information -> use search"
		}
	case router.StrategyModel:
		switch {
		case containsAny(q, "history", "built"):
			return "query asks about history -> use fine-tuned model knowledge"
		case containsAny(q, "architecture", "deity"):
			return "query asks about cultural/architectural details -> use model"
		default:
			return "query about temple facts -> use model knowledge"
		}
	default:
		return "query needs both historical context and current info -> use hybrid approach"
	}
}

// Curated keyword subsets that make a search or model classification
// high-confidence.
var (
	highConfidenceSearch = []string{"ticket", "price", "timing", "hours", "location"}
	highConfidenceModel  = []string{"history", "built", "architecture", "deity", "significance"}
)

// assessConfidence scores confidence in the strategy selection: 0.95 for a
// search or model choice backed by a high-confidence keyword, 0.85 for
// hybrid, 0.70 otherwise.
func assessConfidence(query string, strategy router.Strategy) float64 {
	q := strings.ToLower(query)

	switch {
	case strategy == router.StrategySearch && containsAny(q, highConfidenceSearch...):
		return 0.95
	case strategy == router.StrategyModel && containsAny(q, highConfidenceModel...):
		return 0.95
	case strategy == router.StrategyHybrid:
		return 0.85
	default:
		return 0.70
	}
}

// assessQuality scores a result on a 1-10 scale. Failed results score a flat
// 2; successful ones start at 5 and gain points for substantial content and
// source citations, losing them for error or placeholder markers.
func assessQuality(result router.Result) int {
	if !result.Success {
		return 2
	}

	resp := result.Response
	lower := strings.ToLower(resp)

	score := 5
	if len(resp) > 50 {
		score += 2
	}
	if strings.Contains(resp, "Source:") || strings.Contains(resp, "http") {
		score += 2
	}
	if !strings.Contains(lower, "error") {
		score++
	}
	if strings.Contains(lower, "placeholder") {
		score -= 3
	}

	return clamp(score, 1, 10)
}

// checkCompleteness reports whether the result plausibly answers the query:
// substantial content with no error or placeholder markers.
func checkCompleteness(result router.Result) bool {
	if !result.Success {
		return false
	}
	lower := strings.ToLower(result.Response)
	return len(result.Response) > 30 &&
		!strings.Contains(lower, "error") &&
		!strings.Contains(lower, "placeholder")
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func containsAny(lowered string, keywords ...string) bool {
	for _, kw := range keywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}
