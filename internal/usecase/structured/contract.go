package structured

import (
	"context"

	"github.com/kailas-cloud/askdb/internal/domain/plan"
	"github.com/kailas-cloud/askdb/internal/domain/result"
)

// Store is the tabular store contract. Every method honours p.Where; the rest of
// the plan is read as documented per method.
type Store interface {
	// Rows applies projection, order, limit and offset.
	Rows(ctx context.Context, p plan.Plan) ([]result.Row, error)
	// Count ignores projection, order, limit and offset.
	Count(ctx context.Context, p plan.Plan) (int64, error)
	// Distinct returns unique values of p.Special.Field in ascending value order,
	// descending only when p.OrderBy names that field with Desc. Other orderings are ignored.
	Distinct(ctx context.Context, p plan.Plan) ([]any, error)
	// GroupCount buckets by the raw value of p.Special.Field, sorted by count in
	// p.Special.GroupDesc order with ties by value ascending, truncated to p.Special.GroupLimit.
	GroupCount(ctx context.Context, p plan.Plan) ([]result.Bucket, error)
	// Aggregate returns the scalar p.Special.AggregateOp over p.Special.Field, nil on no rows.
	Aggregate(ctx context.Context, p plan.Plan) (any, error)
	// Values returns the raw p.Special.Field value of every matching row.
	Values(ctx context.Context, p plan.Plan) ([]any, error)
}
