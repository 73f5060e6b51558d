// Package plan holds the store-agnostic operation plan compiled from an intent.
package plan

import "github.com/kailas-cloud/askdb/internal/domain/schema"

// Op is a predicate comparison after compilation. Free-text equality has
// already been rewritten to Contains at this point.
type Op string

// Predicate comparisons.
const (
	Eq         Op = "eq"
	Neq        Op = "neq"
	Contains   Op = "contains"
	StartsWith Op = "startsWith"
	EndsWith   Op = "endsWith"
	Gt         Op = "gt"
	Gte        Op = "gte"
	Lt         Op = "lt"
	Lte        Op = "lte"
	In         Op = "in"
	NotIn      Op = "notIn"
	IsNull     Op = "isNull"
	IsNotNull  Op = "isNotNull"
)

// Predicate is a node of the where tree: And, Or or Compare.
type Predicate interface {
	predicate()
}

// And matches when every term matches. An empty And matches everything.
type And struct {
	Terms []Predicate
}

// Or matches when any term matches. An empty Or matches nothing.
type Or struct {
	Terms []Predicate
}

// Compare tests a single field. Value is nil for null tests and a []any for In/NotIn.
type Compare struct {
	Field string
	Op    Op
	Value any
}

func (And) predicate()     {}
func (Or) predicate()      {}
func (Compare) predicate() {}

// Order is a single sort key.
type Order struct {
	Field string
	Desc  bool
}

// Action is the closed set of executor dispatch targets.
type Action string

// Executor actions.
const (
	ActionRows      Action = "rows"
	ActionFirst     Action = "first"
	ActionCount     Action = "count"
	ActionDistinct  Action = "distinct"
	ActionGroup     Action = "group"
	ActionAggregate Action = "aggregate"
)

// Special carries the action-specific part of a plan.
type Special struct {
	Action Action
	// Field is the distinct, group or aggregate field.
	Field string
	// Grouping selects the canonicalization table for generic grouping;
	// GroupingNone means group by raw value.
	Grouping schema.Grouping
	// GroupDesc orders buckets by descending count.
	GroupDesc bool
	// GroupLimit caps the number of buckets returned.
	GroupLimit int
	// AggregateOp is one of count, avg, sum, min, max.
	AggregateOp string
}

// Plan is a compiled, ready-to-execute query.
type Plan struct {
	Table string
	// Where is nil when the intent had no filters.
	Where      Predicate
	Projection []string
	OrderBy    *Order
	// Limit and Offset are zero when unset.
	Limit   int
	Offset  int
	Special Special
}

// IsGeneric reports whether the plan groups by canonicalized values.
func (p Plan) IsGeneric() bool {
	return p.Special.Action == ActionGroup && p.Special.Grouping != schema.GroupingNone
}
