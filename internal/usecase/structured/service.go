// Package structured executes compiled plans against the tabular store.
package structured

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/askdb/internal/domain"
	"github.com/kailas-cloud/askdb/internal/domain/plan"
	"github.com/kailas-cloud/askdb/internal/domain/result"
)

// Service dispatches plans to the store by action.
type Service struct {
	store  Store
	logger *zap.Logger
}

// New creates a structured executor.
func New(store Store, logger *zap.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Execute runs p and wraps the outcome in the matching result variant.
// Store failures are reported as domain.ErrExecution.
func (s *Service) Execute(ctx context.Context, p plan.Plan) (result.Result, error) {
	s.logger.Debug("Executing plan",
		zap.String("table", p.Table),
		zap.String("action", string(p.Special.Action)),
		zap.String("field", p.Special.Field),
		zap.Bool("generic", p.IsGeneric()),
	)

	switch p.Special.Action {
	case plan.ActionRows:
		rows, err := s.store.Rows(ctx, p)
		if err != nil {
			return result.Result{}, execErr("list", err)
		}
		return result.Rows(rows), nil

	case plan.ActionFirst:
		p.Limit = 1
		rows, err := s.store.Rows(ctx, p)
		if err != nil {
			return result.Result{}, execErr("single", err)
		}
		if len(rows) == 0 {
			return result.Single(nil), nil
		}
		return result.Single(rows[0]), nil

	case plan.ActionCount:
		n, err := s.store.Count(ctx, p)
		if err != nil {
			return result.Result{}, execErr("count", err)
		}
		return result.Count(n), nil

	case plan.ActionDistinct:
		values, err := s.store.Distinct(ctx, p)
		if err != nil {
			return result.Result{}, execErr("distinct", err)
		}
		return result.Distinct(p.Special.Field, values), nil

	case plan.ActionGroup:
		return s.group(ctx, p)

	case plan.ActionAggregate:
		v, err := s.store.Aggregate(ctx, p)
		if err != nil {
			return result.Result{}, execErr("aggregate", err)
		}
		return result.Aggregate(p.Special.AggregateOp, p.Special.Field, v), nil

	default:
		return result.Result{}, fmt.Errorf("unsupported plan action %q: %w", p.Special.Action, domain.ErrCompilation)
	}
}

func (s *Service) group(ctx context.Context, p plan.Plan) (result.Result, error) {
	if !p.IsGeneric() {
		buckets, err := s.store.GroupCount(ctx, p)
		if err != nil {
			return result.Result{}, execErr("group", err)
		}
		return result.Groups(p.Special.Field, buckets), nil
	}

	values, err := s.store.Values(ctx, p)
	if err != nil {
		return result.Result{}, execErr("generic group", err)
	}
	buckets := genericBuckets(p.Special.Grouping, values, p.Special.GroupDesc, p.Special.GroupLimit)

	s.logger.Debug("Generic grouping",
		zap.String("field", p.Special.Field),
		zap.String("grouping", string(p.Special.Grouping)),
		zap.Int("raw_values", len(values)),
		zap.Int("buckets", len(buckets)),
	)
	return result.Groups(p.Special.Field, buckets), nil
}

func execErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrExecution, err)
}
