// Package intent defines the query intent produced by the NL-to-intent translator.
package intent

import (
	"strings"

	"github.com/kailas-cloud/askdb/internal/domain/schema"
)

// Action is the kind of answer an intent asks for.
type Action string

// Supported actions.
const (
	List      Action = "list"
	Single    Action = "single"
	Count     Action = "count"
	Distinct  Action = "distinct"
	Group     Action = "group"
	Aggregate Action = "aggregate"
)

var actionAliases = map[string]Action{
	"list":      List,
	"findmany":  List,
	"single":    Single,
	"findfirst": Single,
	"count":     Count,
	"distinct":  Distinct,
	"group":     Group,
	"groupby":   Group,
	"aggregate": Aggregate,
}

// ParseAction maps a wire action name to an Action. Translator vocabulary
// (findMany, findFirst, groupBy) is accepted alongside the canonical names.
func ParseAction(s string) (Action, bool) {
	a, ok := actionAliases[strings.ToLower(strings.TrimSpace(s))]
	return a, ok
}

// Operator is a filter comparison.
type Operator string

// Filter operators.
const (
	Eq         Operator = "eq"
	Neq        Operator = "neq"
	Contains   Operator = "contains"
	StartsWith Operator = "startsWith"
	EndsWith   Operator = "endsWith"
	Gt         Operator = "gt"
	Gte        Operator = "gte"
	Lt         Operator = "lt"
	Lte        Operator = "lte"
	In         Operator = "in"
	NotIn      Operator = "notIn"
	IsNull     Operator = "isNull"
	IsNotNull  Operator = "isNotNull"
)

// IsKnown reports whether op belongs to the supported operator set.
func (op Operator) IsKnown() bool {
	switch op {
	case Eq, Neq, Contains, StartsWith, EndsWith, Gt, Gte, Lt, Lte, In, NotIn, IsNull, IsNotNull:
		return true
	}
	return false
}

// IsNullTest reports whether op only inspects null-ness.
func (op Operator) IsNullTest() bool { return op == IsNull || op == IsNotNull }

// IsList reports whether op takes a list value.
func (op Operator) IsList() bool { return op == In || op == NotIn }

// AggregateOp is an aggregation function.
type AggregateOp string

// Aggregation functions.
const (
	AggCount AggregateOp = "count"
	AggAvg   AggregateOp = "avg"
	AggSum   AggregateOp = "sum"
	AggMin   AggregateOp = "min"
	AggMax   AggregateOp = "max"
)

// IsValid checks if the aggregation function is supported.
func (a AggregateOp) IsValid() bool {
	return a == AggCount || a == AggAvg || a == AggSum || a == AggMin || a == AggMax
}

// Direction is a sort direction.
type Direction string

// Sort directions.
const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Condition is one validated filter. Value is a decoded JSON scalar, or a
// []any for list operators, or nil.
type Condition struct {
	Field string
	Op    Operator
	Value any
}

// Intent is a validated query intent, safe to compile.
type Intent struct {
	Entity         schema.Entity
	Action         Action
	Filters        []Condition
	OrFilters      []Condition
	Projection     []string
	DistinctField  string
	GroupByField   string
	GroupByGeneric bool
	AggregateField string
	AggregateOp    AggregateOp
	SortField      string
	// SortDirection is empty when the translator did not specify one.
	SortDirection Direction
	// Limit and Offset are zero when unset.
	Limit  int
	Offset int
}

// RawCondition is a filter as emitted by the translator.
type RawCondition struct {
	Field string `json:"field"`
	Op    string `json:"op"`
	Value any    `json:"value"`
}

// Raw is the untrusted wire form of an intent.
type Raw struct {
	Entity         string         `json:"entity"`
	Action         string         `json:"action"`
	Filters        []RawCondition `json:"filters,omitempty"`
	OrFilters      []RawCondition `json:"orFilters,omitempty"`
	Select         []string       `json:"select,omitempty"`
	DistinctField  string         `json:"distinctField,omitempty"`
	GroupByField   string         `json:"groupByField,omitempty"`
	GroupByGeneric bool           `json:"groupByGeneric,omitempty"`
	AggregateField string         `json:"aggregateField,omitempty"`
	AggregateOp    string         `json:"aggregateOp,omitempty"`
	SortBy         string         `json:"sortBy,omitempty"`
	SortOrder      string         `json:"sortOrder,omitempty"`
	Limit          *int           `json:"limit,omitempty"`
	Skip           *int           `json:"skip,omitempty"`
}
