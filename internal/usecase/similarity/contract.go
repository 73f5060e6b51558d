package similarity

import (
	"context"

	"github.com/kailas-cloud/askdb/internal/domain/vector"
)

// RecordLister returns every stored embedding record for a full scan.
type RecordLister interface {
	ListEmbeddings(ctx context.Context) ([]vector.Record, error)
}
