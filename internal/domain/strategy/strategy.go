// Package strategy names the retrieval strategies a question can be routed to.
package strategy

import "strings"

// Strategy is the retrieval path chosen for a question.
type Strategy string

// Strategies.
const (
	Structured Strategy = "structured"
	Semantic   Strategy = "semantic"
	Hybrid     Strategy = "hybrid"
)

// FromLabel maps a free-form classifier reply to a strategy. "semantic" is
// checked before "hybrid"; anything else is structured.
func FromLabel(label string) Strategy {
	l := strings.ToLower(strings.TrimSpace(label))
	switch {
	case strings.Contains(l, string(Semantic)):
		return Semantic
	case strings.Contains(l, string(Hybrid)):
		return Hybrid
	default:
		return Structured
	}
}
