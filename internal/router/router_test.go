package router

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/karpagadevi/templed/internal/tavily"
)

// mockSearch records which search method was invoked and with what subject.
type mockSearch struct {
	calls    []string
	subjects []string
	resp     *tavily.SearchResponse
	err      error
	usage    tavily.UsageStats
}

func (m *mockSearch) Search(ctx context.Context, query string) (*tavily.SearchResponse, error) {
	m.calls = append(m.calls, "search")
	m.subjects = append(m.subjects, query)
	return m.resp, m.err
}

func (m *mockSearch) SearchTickets(ctx context.Context, templeName string) (*tavily.SearchResponse, error) {
	m.calls = append(m.calls, "tickets")
	m.subjects = append(m.subjects, templeName)
	return m.resp, m.err
}

func (m *mockSearch) SearchLocation(ctx context.Context, templeName string) (*tavily.SearchResponse, error) {
	m.calls = append(m.calls, "location")
	m.subjects = append(m.subjects, templeName)
	return m.resp, m.err
}

func (m *mockSearch) UsageStats() tavily.UsageStats { return m.usage }

type mockModel struct {
	text string
	err  error
}

func (m *mockModel) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	return m.text, m.err
}

func okSearchResponse() *tavily.SearchResponse {
	return &tavily.SearchResponse{
		Answer: "Entry is free, special darshan costs 50 INR.",
		Results: []tavily.SearchResult{
			{Title: "Meenakshi Temple timings", Content: "Open 5am-10pm.", URL: "https://example.org/t", Score: 0.97},
		},
	}
}

func TestSearchResponseSubQuerySelection(t *testing.T) {
	tests := []struct {
		name        string
		query       string
		wantCall    string
		wantSubject string
	}{
		{
			name:        "ticket terms route to ticket search with temple name",
			query:       "What is the ticket price for Meenakshi Temple?",
			wantCall:    "tickets",
			wantSubject: "Meenakshi Temple",
		},
		{
			name:        "location terms route to location search",
			query:       "How to reach Meenakshi Temple?",
			wantCall:    "location",
			wantSubject: "Meenakshi Temple",
		},
		{
			name:        "other search queries use the generic search with raw query",
			query:       "latest news about Kumbh Mela",
			wantCall:    "search",
			wantSubject: "latest news about Kumbh Mela",
		},
		{
			name:        "no temple name falls back to the raw query",
			query:       "ticket price for the big shore shrine",
			wantCall:    "tickets",
			wantSubject: "ticket price for the big shore shrine",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			search := &mockSearch{resp: okSearchResponse()}
			r := New(search, nil)

			res := r.Execute(context.Background(), StrategySearch, tt.query)

			if !res.Success {
				t.Fatalf("expected success, got %+v", res)
			}
			if res.Source != SourceSearch {
				t.Errorf("source = %q, want %q", res.Source, SourceSearch)
			}
			if len(search.calls) != 1 || search.calls[0] != tt.wantCall {
				t.Errorf("calls = %v, want [%s]", search.calls, tt.wantCall)
			}
			if search.subjects[0] != tt.wantSubject {
				t.Errorf("subject = %q, want %q", search.subjects[0], tt.wantSubject)
			}
		})
	}
}

func TestSearchResponseFailure(t *testing.T) {
	search := &mockSearch{err: errors.New("quota exhausted")}
	r := New(search, nil)

	res := r.Execute(context.Background(), StrategySearch, "Meenakshi Temple timings")

	if res.Success {
		t.Fatal("expected failure result")
	}
	if res.Source != SourceError {
		t.Errorf("source = %q, want %q", res.Source, SourceError)
	}
	if !strings.Contains(res.Response, "couldn't find current information") {
		t.Errorf("response missing apology: %q", res.Response)
	}
	if !strings.Contains(res.Response, "quota exhausted") {
		t.Errorf("response missing underlying error: %q", res.Response)
	}
}

func TestModelResponsePlaceholderWhenNotLoaded(t *testing.T) {
	r := New(&mockSearch{}, nil)

	res := r.Execute(context.Background(), StrategyModel, "history of Meenakshi Temple")

	if res.Success {
		t.Fatal("placeholder result must not count as success")
	}
	if res.Source != SourceModelPlaceholder {
		t.Errorf("source = %q, want %q", res.Source, SourceModelPlaceholder)
	}
	if !strings.Contains(res.Response, "not loaded") {
		t.Errorf("unexpected placeholder text: %q", res.Response)
	}
	if res.TempleName != "Meenakshi Temple" {
		t.Errorf("temple name = %q, want %q", res.TempleName, "Meenakshi Temple")
	}
}

func TestModelResponse(t *testing.T) {
	model := &mockModel{text: "The temple was built in the 12th century."}
	r := New(&mockSearch{}, model)

	res := r.Execute(context.Background(), StrategyModel, "history of Meenakshi Temple")

	if !res.Success {
		t.Fatalf("expected success, got %+v", res)
	}
	if res.Source != SourceModel {
		t.Errorf("source = %q, want %q", res.Source, SourceModel)
	}
	if res.Response != model.text {
		t.Errorf("response = %q, want %q", res.Response, model.text)
	}
}

func TestModelResponseGenerationFailure(t *testing.T) {
	model := &mockModel{err: errors.New("connection refused")}
	r := New(&mockSearch{}, model)

	res := r.Execute(context.Background(), StrategyModel, "history of Meenakshi Temple")

	if res.Success {
		t.Fatal("expected failure result")
	}
	if res.Source != SourceError {
		t.Errorf("source = %q, want %q", res.Source, SourceError)
	}
	if !strings.Contains(res.Response, "connection refused") {
		t.Errorf("response missing underlying error: %q", res.Response)
	}
}

func TestHybridResponseCombinesBothSources(t *testing.T) {
	search := &mockSearch{resp: okSearchResponse()}
	model := &mockModel{text: "Built by the Nayak dynasty."}
	r := New(search, model)

	res := r.Execute(context.Background(), StrategyHybrid, "history and ticket price of Meenakshi Temple")

	if !res.Success {
		t.Fatalf("expected success, got %+v", res)
	}
	if res.Source != SourceHybrid {
		t.Errorf("source = %q, want %q", res.Source, SourceHybrid)
	}
	if !strings.Contains(res.Response, "**Historical Information:**") ||
		!strings.Contains(res.Response, "**Current Information:**") {
		t.Errorf("missing section headers: %q", res.Response)
	}
	if !strings.Contains(res.Response, model.text) {
		t.Errorf("missing model half: %q", res.Response)
	}
	if !strings.Contains(res.Response, "darshan costs 50 INR") {
		t.Errorf("missing search half: %q", res.Response)
	}
}

func TestHybridResponsePartialFailureStillSucceeds(t *testing.T) {
	search := &mockSearch{err: errors.New("timeout")}
	model := &mockModel{text: "Built by the Nayak dynasty."}
	r := New(search, model)

	res := r.Execute(context.Background(), StrategyHybrid, "history and ticket price of Meenakshi Temple")

	if !res.Success {
		t.Fatal("one successful half must make the hybrid result a success")
	}
	if !strings.Contains(res.Response, model.text) {
		t.Errorf("missing surviving model half: %q", res.Response)
	}
	if !strings.Contains(res.Response, "timeout") {
		t.Errorf("failed half should surface its error text: %q", res.Response)
	}
}

func TestHybridResponseBothHalvesFail(t *testing.T) {
	search := &mockSearch{err: errors.New("timeout")}
	r := New(search, nil)

	res := r.Execute(context.Background(), StrategyHybrid, "history and ticket price of Meenakshi Temple")

	if res.Success {
		t.Fatal("both halves failed, result must not be a success")
	}
	if res.Source != SourceHybrid {
		t.Errorf("source = %q, want %q", res.Source, SourceHybrid)
	}
}

func TestExecuteUnknownStrategy(t *testing.T) {
	r := New(&mockSearch{}, nil)

	res := r.Execute(context.Background(), Strategy(99), "anything")

	if res.Success {
		t.Fatal("unknown strategy must fail")
	}
	if res.Source != SourceError {
		t.Errorf("source = %q, want %q", res.Source, SourceError)
	}
}

func TestGenerateResponseClassifies(t *testing.T) {
	search := &mockSearch{resp: okSearchResponse()}
	r := New(search, &mockModel{text: "answer"})

	res := r.GenerateResponse(context.Background(), "Meenakshi Temple opening hours")

	if res.Strategy != StrategySearch {
		t.Errorf("strategy = %s, want %s", res.Strategy, StrategySearch)
	}
	if len(search.calls) != 1 {
		t.Errorf("expected exactly one search call, got %v", search.calls)
	}
}

func TestStats(t *testing.T) {
	usage := tavily.UsageStats{SearchesUsed: 42, FreeTierLimit: 1000, Remaining: 958, PercentUsed: 4.2}

	withModel := New(&mockSearch{usage: usage}, &mockModel{})
	if got := withModel.Stats(); !got.ModelLoaded || got.TavilyUsage != usage {
		t.Errorf("Stats() = %+v", got)
	}

	withoutModel := New(&mockSearch{usage: usage}, nil)
	if got := withoutModel.Stats(); got.ModelLoaded {
		t.Errorf("ModelLoaded = true for nil model")
	}
}
