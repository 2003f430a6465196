package router

import (
	"regexp"
	"strings"
)

// templeNamePattern matches one or more capitalized words immediately
// preceding the literal word "Temple", preserving their original casing.
var templeNamePattern = regexp.MustCompile(`([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)\s+Temple`)

// templeAliases maps known lower-cased name fragments to canonical temple
// names. First match wins.
var templeAliases = []struct {
	fragment string
	name     string
}{
	{"meenakshi", "Meenakshi Temple"},
	{"brihadisvara", "Brihadisvara Temple"},
	{"brihadeeswarar", "Brihadisvara Temple"},
	{"tirumala", "Tirumala Venkateswara Temple"},
	{"tirupati", "Tirumala Venkateswara Temple"},
}

// ExtractTempleName pulls a candidate temple name from the query: first the
// capitalized-words-before-"Temple" pattern, then the fixed alias list. This
// is a best-effort heuristic, not a knowledge-base lookup; unrecognized
// names silently return ok=false.
func ExtractTempleName(query string) (string, bool) {
	if m := templeNamePattern.FindStringSubmatch(query); m != nil {
		return m[1] + " Temple", true
	}

	q := strings.ToLower(query)
	for _, alias := range templeAliases {
		if strings.Contains(q, alias.fragment) {
			return alias.name, true
		}
	}

	return "", false
}
