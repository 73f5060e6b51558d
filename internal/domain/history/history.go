// Package history defines conversation history entries.
package history

import (
	"time"

	"github.com/google/uuid"

	"github.com/kailas-cloud/askdb/internal/domain/strategy"
)

// Entry is one answered question.
type Entry struct {
	ID       uuid.UUID         `json:"id"`
	Question string            `json:"user"`
	Answer   string            `json:"agent"`
	Strategy strategy.Strategy `json:"strategy"`
	AskedAt  time.Time         `json:"asked_at"`
}

// NewEntry creates an entry with a fresh random ID.
func NewEntry(question, answer string, s strategy.Strategy, at time.Time) Entry {
	return Entry{
		ID:       uuid.New(),
		Question: question,
		Answer:   answer,
		Strategy: s,
		AskedAt:  at.UTC(),
	}
}
