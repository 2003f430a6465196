package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/karpagadevi/templed/internal/agent"
	"github.com/karpagadevi/templed/internal/router"
)

// stubResponder records calls and returns canned data.
type stubResponder struct {
	lastQuery string
	lastTrace agent.TraceMode
	historyN  int
	cleared   bool
	entries   []agent.Entry
}

func (s *stubResponder) Respond(ctx context.Context, query string, trace agent.TraceMode) agent.Response {
	s.lastQuery = query
	s.lastTrace = trace
	return agent.Response{
		Response:   "Entry is free.",
		Source:     router.SourceSearch,
		Strategy:   router.StrategySearch,
		TempleName: "Meenakshi Temple",
		Confidence: 0.95,
		Quality:    8,
		Reasoning:  "query asks about pricing -> need real-time info -> use search",
		Success:    true,
	}
}

func (s *stubResponder) History(lastN int) []agent.Entry {
	s.historyN = lastN
	return s.entries
}

func (s *stubResponder) ClearHistory() { s.cleared = true }

func (s *stubResponder) Stats() agent.Stats {
	return agent.Stats{
		TotalQueries:     2,
		StrategiesUsed:   map[string]int{"search": 2},
		TemplesDiscussed: []string{"Meenakshi Temple"},
	}
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(NewHandler(&stubResponder{}))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestAsk(t *testing.T) {
	stub := &stubResponder{}
	srv := httptest.NewServer(NewHandler(stub))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/v1/ask", "application/json",
		strings.NewReader(`{"query":"ticket price for Meenakshi Temple"}`))
	if err != nil {
		t.Fatalf("POST /v1/ask: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var got agent.Response
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if got.Response != "Entry is free." || got.Strategy != router.StrategySearch {
		t.Errorf("response = %+v", got)
	}
	if stub.lastQuery != "ticket price for Meenakshi Temple" {
		t.Errorf("query passed through = %q", stub.lastQuery)
	}
	if stub.lastTrace != agent.TraceDefault {
		t.Errorf("trace = %v, want TraceDefault when show_reasoning omitted", stub.lastTrace)
	}
}

func TestAskShowReasoningMapsToTrace(t *testing.T) {
	tests := []struct {
		name string
		body string
		want agent.TraceMode
	}{
		{"omitted is default", `{"query":"q"}`, agent.TraceDefault},
		{"true is on", `{"query":"q","show_reasoning":true}`, agent.TraceOn},
		{"false is off", `{"query":"q","show_reasoning":false}`, agent.TraceOff},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubResponder{}
			srv := httptest.NewServer(NewHandler(stub))
			defer srv.Close()

			resp, err := http.Post(srv.URL+"/v1/ask", "application/json", strings.NewReader(tt.body))
			if err != nil {
				t.Fatalf("POST: %v", err)
			}
			resp.Body.Close()

			if stub.lastTrace != tt.want {
				t.Errorf("trace = %v, want %v", stub.lastTrace, tt.want)
			}
		})
	}
}

func TestAskRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty query", `{"query":""}`},
		{"missing query", `{}`},
		{"malformed json", `{"query"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(NewHandler(&stubResponder{}))
			defer srv.Close()

			resp, err := http.Post(srv.URL+"/v1/ask", "application/json", strings.NewReader(tt.body))
			if err != nil {
				t.Fatalf("POST: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
			var body struct {
				Error struct {
					Message string `json:"message"`
					Type    string `json:"type"`
				} `json:"error"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatalf("decoding error body: %v", err)
			}
			if body.Error.Type != "invalid_request_error" {
				t.Errorf("error type = %q", body.Error.Type)
			}
		})
	}
}

func TestHistory(t *testing.T) {
	stub := &stubResponder{
		entries: []agent.Entry{
			{ID: "1", Timestamp: time.Now().UTC(), Query: "q1", Response: "r1", Strategy: router.StrategySearch},
		},
	}
	srv := httptest.NewServer(NewHandler(stub))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/v1/history?last=3")
	if err != nil {
		t.Fatalf("GET /v1/history: %v", err)
	}
	defer resp.Body.Close()

	if stub.historyN != 3 {
		t.Errorf("lastN = %d, want 3", stub.historyN)
	}

	var body struct {
		Entries []agent.Entry `json:"entries"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if len(body.Entries) != 1 || body.Entries[0].Query != "q1" {
		t.Errorf("entries = %+v", body.Entries)
	}
}

func TestHistoryEmptyIsArray(t *testing.T) {
	srv := httptest.NewServer(NewHandler(&stubResponder{}))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/v1/history")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	var raw map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if string(raw["entries"]) != "[]" {
		t.Errorf("entries = %s, want []", raw["entries"])
	}
}

func TestHistoryInvalidLast(t *testing.T) {
	srv := httptest.NewServer(NewHandler(&stubResponder{}))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/v1/history?last=abc")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestClearHistory(t *testing.T) {
	stub := &stubResponder{}
	srv := httptest.NewServer(NewHandler(stub))
	defer srv.Close()

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/v1/history", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE /v1/history: %v", err)
	}
	defer resp.Body.Close()

	if !stub.cleared {
		t.Error("ClearHistory not invoked")
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if body["status"] != "cleared" {
		t.Errorf("body = %v", body)
	}
}

func TestStatsEndpoint(t *testing.T) {
	srv := httptest.NewServer(NewHandler(&stubResponder{}))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/v1/stats")
	if err != nil {
		t.Fatalf("GET /v1/stats: %v", err)
	}
	defer resp.Body.Close()

	var stats agent.Stats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if stats.TotalQueries != 2 || stats.StrategiesUsed["search"] != 2 {
		t.Errorf("stats = %+v", stats)
	}
}
