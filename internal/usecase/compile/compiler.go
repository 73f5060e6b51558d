// Package compile turns validated intents into store-agnostic plans.
package compile

import (
	"fmt"

	"github.com/kailas-cloud/askdb/internal/domain"
	"github.com/kailas-cloud/askdb/internal/domain/intent"
	"github.com/kailas-cloud/askdb/internal/domain/plan"
	"github.com/kailas-cloud/askdb/internal/domain/schema"
)

// DefaultGroupLimit caps group buckets when the intent gives no limit.
const DefaultGroupLimit = 10

// Compiler is pure and safe for concurrent use.
type Compiler struct {
	groupLimit int
}

// New creates a Compiler. groupLimit <= 0 selects DefaultGroupLimit.
func New(groupLimit int) *Compiler {
	if groupLimit <= 0 {
		groupLimit = DefaultGroupLimit
	}
	return &Compiler{groupLimit: groupLimit}
}

// Compile maps a validated intent to a plan.
func (c *Compiler) Compile(in intent.Intent) (plan.Plan, error) {
	p := plan.Plan{
		Table:      in.Entity.Table(),
		Where:      c.where(in),
		Projection: in.Projection,
		Limit:      in.Limit,
		Offset:     in.Offset,
	}
	if in.SortField != "" {
		p.OrderBy = &plan.Order{Field: in.SortField, Desc: in.SortDirection == intent.Desc}
	}

	special, err := c.special(in)
	if err != nil {
		return plan.Plan{}, err
	}
	p.Special = special
	return p, nil
}

func (c *Compiler) special(in intent.Intent) (plan.Special, error) {
	switch in.Action {
	case intent.List:
		return plan.Special{Action: plan.ActionRows}, nil
	case intent.Single:
		return plan.Special{Action: plan.ActionFirst}, nil
	case intent.Count:
		return plan.Special{Action: plan.ActionCount}, nil
	case intent.Distinct:
		if in.DistinctField == "" {
			return plan.Special{}, missing("distinctField", in.Action)
		}
		return plan.Special{Action: plan.ActionDistinct, Field: in.DistinctField}, nil
	case intent.Group:
		if in.GroupByField == "" {
			return plan.Special{}, missing("groupByField", in.Action)
		}
		limit := in.Limit
		if limit <= 0 {
			limit = c.groupLimit
		}
		s := plan.Special{
			Action:     plan.ActionGroup,
			Field:      in.GroupByField,
			GroupDesc:  in.SortDirection != intent.Asc,
			GroupLimit: limit,
		}
		if in.GroupByGeneric {
			if f, ok := in.Entity.Field(in.GroupByField); ok {
				s.Grouping = f.Grouping
			}
		}
		return s, nil
	case intent.Aggregate:
		if in.AggregateField == "" || in.AggregateOp == "" {
			return plan.Special{}, missing("aggregateField/aggregateOp", in.Action)
		}
		return plan.Special{
			Action:      plan.ActionAggregate,
			Field:       in.AggregateField,
			AggregateOp: string(in.AggregateOp),
		}, nil
	default:
		return plan.Special{}, fmt.Errorf("unsupported action %q: %w", in.Action, domain.ErrCompilation)
	}
}

func missing(field string, action intent.Action) error {
	return fmt.Errorf("%s is required for %s: %w", field, action, domain.ErrCompilation)
}

// where builds AND(filters...) and OR(orFilters...), joined by a top-level AND
// when both are present.
func (c *Compiler) where(in intent.Intent) plan.Predicate {
	and := c.terms(in.Entity, in.Filters)
	or := c.terms(in.Entity, in.OrFilters)

	switch {
	case len(and) == 0 && len(or) == 0:
		return nil
	case len(or) == 0:
		return plan.And{Terms: and}
	case len(and) == 0:
		return plan.Or{Terms: or}
	default:
		return plan.And{Terms: []plan.Predicate{plan.And{Terms: and}, plan.Or{Terms: or}}}
	}
}

func (c *Compiler) terms(entity schema.Entity, conds []intent.Condition) []plan.Predicate {
	if len(conds) == 0 {
		return nil
	}
	out := make([]plan.Predicate, len(conds))
	for i, cond := range conds {
		f, _ := entity.Field(cond.Field)
		out[i] = condition(f, cond)
	}
	return out
}

// condition applies the free-text policy: eq and unknown operators become
// substring matches on text fields and exact matches elsewhere.
func condition(f schema.Field, cond intent.Condition) plan.Compare {
	cmp := plan.Compare{Field: cond.Field, Value: cond.Value}
	switch cond.Op {
	case intent.Eq:
		cmp.Op = plan.Eq
		if f.IsText() {
			cmp.Op = plan.Contains
		}
	case intent.Neq:
		cmp.Op = plan.Neq
	case intent.Contains:
		cmp.Op = plan.Contains
	case intent.StartsWith:
		cmp.Op = plan.StartsWith
	case intent.EndsWith:
		cmp.Op = plan.EndsWith
	case intent.Gt:
		cmp.Op = plan.Gt
	case intent.Gte:
		cmp.Op = plan.Gte
	case intent.Lt:
		cmp.Op = plan.Lt
	case intent.Lte:
		cmp.Op = plan.Lte
	case intent.In:
		cmp.Op = plan.In
	case intent.NotIn:
		cmp.Op = plan.NotIn
	case intent.IsNull:
		cmp.Op, cmp.Value = plan.IsNull, nil
	case intent.IsNotNull:
		cmp.Op, cmp.Value = plan.IsNotNull, nil
	default:
		cmp.Op = plan.Eq
		if f.IsText() {
			cmp.Op = plan.Contains
		}
	}
	return cmp
}
