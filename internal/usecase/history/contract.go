package history

import (
	"context"

	"github.com/kailas-cloud/askdb/internal/domain/history"
)

// Store persists answered questions in arrival order.
type Store interface {
	Append(ctx context.Context, e history.Entry) error
	// List returns at most limit of the newest entries, oldest first. limit <= 0 returns all.
	List(ctx context.Context, limit int) ([]history.Entry, error)
}
