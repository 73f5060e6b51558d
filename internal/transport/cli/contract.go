package cli

import (
	"context"
	"io"

	"github.com/kailas-cloud/askdb/internal/domain/history"
	"github.com/kailas-cloud/askdb/internal/usecase/knowledge"
	"github.com/kailas-cloud/askdb/internal/usecase/orchestrator"
)

// Asker answers one question.
type Asker interface {
	Ask(ctx context.Context, question string) (orchestrator.Answer, error)
}

// HistoryReader lists recent conversation turns.
type HistoryReader interface {
	Recent(ctx context.Context, limit int) ([]history.Entry, error)
}

// Seeder loads users from a JSON array.
type Seeder interface {
	Seed(ctx context.Context, r io.Reader) (int, error)
}

// Indexer rebuilds the semantic knowledge base.
type Indexer interface {
	Build(ctx context.Context) (knowledge.Summary, error)
}

// Server runs the HTTP API until ctx is done.
type Server interface {
	Serve(ctx context.Context) error
}
