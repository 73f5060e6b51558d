// Package history records the conversation between the user and the assistant.
package history

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/askdb/internal/domain/history"
	"github.com/kailas-cloud/askdb/internal/domain/strategy"
)

// DefaultListLimit bounds Recent when no limit is given.
const DefaultListLimit = 50

// Service appends and lists history entries.
type Service struct {
	store  Store
	now    func() time.Time
	logger *zap.Logger
}

// New creates a history service over store.
func New(store Store, logger *zap.Logger) *Service {
	return &Service{store: store, now: time.Now, logger: logger}
}

// Record stores one answered question and returns the entry.
func (s *Service) Record(ctx context.Context, question, answer string, st strategy.Strategy) (history.Entry, error) {
	e := history.NewEntry(question, answer, st, s.now())
	if err := s.store.Append(ctx, e); err != nil {
		return history.Entry{}, fmt.Errorf("append history: %w", err)
	}
	s.logger.Debug("History entry recorded", zap.String("id", e.ID.String()), zap.String("strategy", string(st)))
	return e, nil
}

// Recent returns the newest entries, oldest first. limit <= 0 uses DefaultListLimit.
func (s *Service) Recent(ctx context.Context, limit int) ([]history.Entry, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	entries, err := s.store.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return entries, nil
}
