package intent

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/askdb/internal/domain"
	"github.com/kailas-cloud/askdb/internal/domain/schema"
)

// Validate checks a raw intent against the entity schema and returns the
// validated form. It fails on the first problem found.
//
// Operators outside the known set are accepted when their field and value are
// well-formed; the compiler maps them to the free-text fallback.
func Validate(raw Raw) (Intent, error) {
	entity, ok := schema.Lookup(raw.Entity)
	if !ok {
		return Intent{}, domain.NewUnsupportedEntityError(raw.Entity)
	}

	action, ok := ParseAction(raw.Action)
	if !ok {
		return Intent{}, domain.NewValidationError("action", fmt.Sprintf("unknown action %q", raw.Action))
	}

	v := validator{entity: entity}
	in := Intent{
		Entity:         entity,
		Action:         action,
		GroupByGeneric: raw.GroupByGeneric,
	}

	var err error
	if in.Filters, err = v.conditions("filters", raw.Filters); err != nil {
		return Intent{}, err
	}
	if in.OrFilters, err = v.conditions("orFilters", raw.OrFilters); err != nil {
		return Intent{}, err
	}
	for i, name := range raw.Select {
		if err := v.field(fmt.Sprintf("select[%d]", i), name); err != nil {
			return Intent{}, err
		}
	}
	in.Projection = dedupe(raw.Select)

	if raw.SortBy != "" {
		if err := v.field("sortBy", raw.SortBy); err != nil {
			return Intent{}, err
		}
		in.SortField = raw.SortBy
	}
	if raw.SortOrder != "" {
		dir := Direction(strings.ToLower(raw.SortOrder))
		if dir != Asc && dir != Desc {
			return Intent{}, domain.NewValidationError("sortOrder", fmt.Sprintf("must be asc or desc, got %q", raw.SortOrder))
		}
		in.SortDirection = dir
	}

	if raw.Limit != nil {
		if *raw.Limit < 0 {
			return Intent{}, domain.NewValidationError("limit", "must not be negative")
		}
		in.Limit = *raw.Limit
	}
	if raw.Skip != nil {
		if *raw.Skip < 0 {
			return Intent{}, domain.NewValidationError("skip", "must not be negative")
		}
		in.Offset = *raw.Skip
	}

	if err := v.actionFields(action, raw, &in); err != nil {
		return Intent{}, err
	}
	return in, nil
}

type validator struct {
	entity schema.Entity
}

func (v validator) field(path, name string) error {
	if name == "" {
		return domain.NewValidationError(path, "field is required")
	}
	if _, ok := v.entity.Field(name); !ok {
		return domain.NewValidationError(path, fmt.Sprintf("unknown field %q", name))
	}
	return nil
}

// actionFields enforces the fields each action depends on.
func (v validator) actionFields(action Action, raw Raw, in *Intent) error {
	switch action {
	case Distinct:
		if err := v.field("distinctField", raw.DistinctField); err != nil {
			return err
		}
		in.DistinctField = raw.DistinctField
	case Group:
		if err := v.field("groupByField", raw.GroupByField); err != nil {
			return err
		}
		in.GroupByField = raw.GroupByField
	case Aggregate:
		if err := v.field("aggregateField", raw.AggregateField); err != nil {
			return err
		}
		op := AggregateOp(strings.ToLower(raw.AggregateOp))
		if !op.IsValid() {
			return domain.NewValidationError("aggregateOp", fmt.Sprintf("unknown aggregate operation %q", raw.AggregateOp))
		}
		f, _ := v.entity.Field(raw.AggregateField)
		if (op == AggSum || op == AggAvg) && !f.IsNumeric() {
			return domain.NewValidationError("aggregateField", fmt.Sprintf("%s requires a numeric field, %q is %s", op, f.Name, f.Kind))
		}
		in.AggregateField = raw.AggregateField
		in.AggregateOp = op
	}
	return nil
}

func (v validator) conditions(group string, raws []RawCondition) ([]Condition, error) {
	if len(raws) == 0 {
		return nil, nil
	}
	out := make([]Condition, 0, len(raws))
	for i, rc := range raws {
		path := fmt.Sprintf("%s[%d]", group, i)
		if err := v.field(path+".field", rc.Field); err != nil {
			return nil, err
		}
		op := Operator(rc.Op)
		if err := checkValue(path+".value", op, rc.Value); err != nil {
			return nil, err
		}
		value := rc.Value
		if op.IsNullTest() {
			value = nil
		}
		out = append(out, Condition{Field: rc.Field, Op: op, Value: value})
	}
	return out, nil
}

func checkValue(path string, op Operator, value any) error {
	switch {
	case op.IsNullTest():
		return nil
	case op.IsList():
		list, ok := value.([]any)
		if !ok {
			return domain.NewValidationError(path, fmt.Sprintf("%s requires a list value", op))
		}
		for i, item := range list {
			if !isScalar(item) {
				return domain.NewValidationError(fmt.Sprintf("%s[%d]", path, i), "list items must be strings, numbers or booleans")
			}
		}
		return nil
	default:
		if value == nil {
			return domain.NewValidationError(path, fmt.Sprintf("%s requires a value", op))
		}
		if !isScalar(value) {
			return domain.NewValidationError(path, fmt.Sprintf("%s requires a scalar value", op))
		}
		return nil
	}
}

func isScalar(v any) bool {
	switch v.(type) {
	case string, float64, bool, int, int64:
		return true
	}
	return false
}

func dedupe(names []string) []string {
	if len(names) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
