package knowledge

import (
	"context"

	"github.com/kailas-cloud/askdb/internal/domain/user"
	"github.com/kailas-cloud/askdb/internal/domain/vector"
)

// UserLister reads every user to index.
type UserLister interface {
	ListUsers(ctx context.Context) ([]user.User, error)
}

// EmbeddingWriter stores one document vector per user, replacing any previous one.
type EmbeddingWriter interface {
	UpsertEmbedding(ctx context.Context, rec vector.Record) error
	Count(ctx context.Context) (int64, error)
}
