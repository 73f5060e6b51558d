// Package history persists conversation history as a capped list in the key-value store.
package history

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/askdb/internal/domain/history"
)

// store is the consumer interface for list access (ISP).
type store interface {
	RPushTrim(ctx context.Context, key string, value []byte, maxLen int) error
	LRange(ctx context.Context, key string, start, stop int64) ([][]byte, error)
}

// Repo implements usecase/history.Store on a single list key.
type Repo struct {
	store      store
	key        string
	maxEntries int
}

// New creates a history repository. maxEntries <= 0 keeps every entry.
func New(s store, keyPrefix string, maxEntries int) *Repo {
	return &Repo{store: s, key: keyPrefix + "history", maxEntries: maxEntries}
}

// Append stores e as the newest entry, trimming the oldest past maxEntries.
func (r *Repo) Append(ctx context.Context, e history.Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal history entry: %w", err)
	}
	if err := r.store.RPushTrim(ctx, r.key, data, r.maxEntries); err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

// List returns the newest limit entries, oldest first. limit <= 0 returns all.
func (r *Repo) List(ctx context.Context, limit int) ([]history.Entry, error) {
	start := int64(0)
	if limit > 0 {
		start = int64(-limit)
	}
	items, err := r.store.LRange(ctx, r.key, start, -1)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}

	out := make([]history.Entry, 0, len(items))
	for i, raw := range items {
		var e history.Entry
		if err := json.Unmarshal(raw, &e); err != nil {
			return nil, fmt.Errorf("unmarshal history entry %d: %w", i, err)
		}
		out = append(out, e)
	}
	return out, nil
}
