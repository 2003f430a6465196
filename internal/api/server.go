// Package api exposes the reasoning agent over HTTP (chi) and MCP.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/karpagadevi/templed/internal/agent"
)

const maxRequestBodySize = 1 << 20 // 1MB

// Responder is the agent surface consumed by the HTTP and MCP handlers.
// *agent.Agent implements it.
type Responder interface {
	Respond(ctx context.Context, query string, trace agent.TraceMode) agent.Response
	History(lastN int) []agent.Entry
	ClearHistory()
	Stats() agent.Stats
}

// NewHandler returns the templed REST API handler.
func NewHandler(a Responder) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", handleHealth)
	r.Post("/v1/ask", handleAsk(a))
	r.Get("/v1/history", handleHistory(a))
	r.Delete("/v1/history", handleClearHistory(a))
	r.Get("/v1/stats", handleStats(a))

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

type askRequest struct {
	Query string `json:"query"`
	// ShowReasoning overrides the agent's configured trace verbosity for
	// this request only. Omitted means "use the default".
	ShowReasoning *bool `json:"show_reasoning,omitempty"`
}

func handleAsk(a Responder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req askRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if req.Query == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "query is required")
			return
		}

		trace := agent.TraceDefault
		if req.ShowReasoning != nil {
			if *req.ShowReasoning {
				trace = agent.TraceOn
			} else {
				trace = agent.TraceOff
			}
		}

		resp := a.Respond(r.Context(), req.Query, trace)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}
}

func handleHistory(a Responder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lastN := 0
		if raw := r.URL.Query().Get("last"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid last parameter: %v", err)
				return
			}
			lastN = n
		}

		entries := a.History(lastN)
		if entries == nil {
			entries = []agent.Entry{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"entries": entries})
	}
}

func handleClearHistory(a Responder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a.ClearHistory()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"cleared"}`))
	}
}

func handleStats(a Responder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(a.Stats())
	}
}

func httpError(w http.ResponseWriter, status int, errType, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{
			"message": fmt.Sprintf(format, args...),
			"type":    errType,
		},
	})
}
