package askdb

import (
	"encoding/json"
	"time"
)

// Strategy values reported on answers.
const (
	StrategyStructured = "structured"
	StrategySemantic   = "semantic"
	StrategyHybrid     = "hybrid"
)

// Answer is the reply to one question.
type Answer struct {
	ID       string
	Question string
	Text     string
	Strategy string
	// Data is the retrieved result as JSON, e.g. {"count":12}.
	Data json.RawMessage
}

// HistoryEntry is one answered question.
type HistoryEntry struct {
	ID       string
	Question string
	Answer   string
	Strategy string
	AskedAt  time.Time
}

// IndexSummary reports a knowledge base build.
type IndexSummary struct {
	Total   int
	Indexed int
	Failed  int
	Stored  int64
}

// HealthStatus represents the aggregated system health.
type HealthStatus struct {
	Status string            // "ok", "degraded", "error"
	Checks map[string]string // component -> "ok"/"error"
}
