package agent

import (
	"time"

	"github.com/karpagadevi/templed/internal/router"
)

// Thought is the output of the think phase. It lives only for the duration
// of one Respond call.
type Thought struct {
	Query      string
	TempleName string
	Strategy   router.Strategy
	Reasoning  string
	Confidence float64
}

// Observation is the output of the observe phase: a quality and completeness
// assessment of one strategy execution.
type Observation struct {
	Success      bool
	QualityScore int
	IsComplete   bool
	Result       router.Result
}

// Response is the final answer assembled by Respond, with full provenance
// metadata.
type Response struct {
	Response   string          `json:"response"`
	Source     string          `json:"source"`
	Strategy   router.Strategy `json:"strategy"`
	TempleName string          `json:"temple_name,omitempty"`
	Confidence float64         `json:"confidence"`
	Quality    int             `json:"quality"`
	Reasoning  string          `json:"reasoning"`
	Success    bool            `json:"success"`
}

// Entry is one persisted conversation record in the bounded history.
type Entry struct {
	ID         string          `json:"id"`
	Timestamp  time.Time       `json:"timestamp"`
	Query      string          `json:"query"`
	Response   string          `json:"response"`
	Strategy   router.Strategy `json:"strategy"`
	TempleName string          `json:"temple_name,omitempty"`
}

// TraceMode is a per-call override of the agent's reasoning-trace verbosity.
type TraceMode int

const (
	// TraceDefault uses the agent's configured verbosity.
	TraceDefault TraceMode = iota
	// TraceOn forces trace output for this call.
	TraceOn
	// TraceOff suppresses trace output for this call.
	TraceOff
)
