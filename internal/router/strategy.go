package router

import (
	"encoding/json"
	"strings"
)

// Strategy is the retrieval path chosen for a query: live search, the
// fine-tuned model, or both.
type Strategy int

const (
	// StrategySearch answers from the live web-search provider only.
	StrategySearch Strategy = iota
	// StrategyModel answers from the fine-tuned model only.
	StrategyModel
	// StrategyHybrid combines both knowledge sources for one query.
	StrategyHybrid
)

func (s Strategy) String() string {
	switch s {
	case StrategySearch:
		return "search"
	case StrategyModel:
		return "model"
	case StrategyHybrid:
		return "hybrid"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the strategy as its string name.
func (s Strategy) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a strategy from its string name.
func (s *Strategy) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	switch name {
	case "search":
		*s = StrategySearch
	case "model":
		*s = StrategyModel
	default:
		*s = StrategyHybrid
	}
	return nil
}

// searchKeywords indicate the query needs live information: pricing, timing,
// location/contact, and recency terms. Matched by substring against the
// lower-cased query. The sets and their evaluation order are fixed;
// classification must stay deterministic and reproducible.
var searchKeywords = []string{
	"ticket", "price", "cost", "fee", "entry",
	"timing", "time", "open", "close", "hours",
	"how to reach", "directions", "location", "address",
	"contact", "phone", "website",
	"current", "now", "today", "latest",
}

// modelKeywords indicate historical or cultural queries answerable from the
// fine-tuned model's frozen knowledge.
var modelKeywords = []string{
	"history", "built", "architecture", "deity",
	"significance", "legend", "story", "mythology",
	"festival", "ritual", "tradition", "culture",
}

// Classify maps a free-text query to a retrieval strategy. Both keyword sets
// are tested jointly: both matching means hybrid, one matching selects that
// side, and when neither matches the query defaults to the model if it names
// a temple ("temple" substring, any case) and to hybrid otherwise.
//
// Pure function of the query text: the same input always yields the same
// strategy.
func Classify(query string) Strategy {
	q := strings.ToLower(query)

	hasSearch := containsAny(q, searchKeywords)
	hasModel := containsAny(q, modelKeywords)

	switch {
	case hasSearch && hasModel:
		return StrategyHybrid
	case hasSearch:
		return StrategySearch
	case hasModel:
		return StrategyModel
	case strings.Contains(q, "temple"):
		// A temple is named but the intent is unclear: frozen knowledge is
		// the cheaper default.
		return StrategyModel
	default:
		return StrategyHybrid
	}
}

func containsAny(lowered string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}
