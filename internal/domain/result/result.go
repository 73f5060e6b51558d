// Package result defines the retrieval payload handed to answer synthesis.
package result

import (
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/askdb/internal/domain/vector"
)

// Kind tags the variant held by a Result.
type Kind string

// Result variants.
const (
	KindRows       Kind = "rows"
	KindRow        Kind = "row"
	KindCount      Kind = "count"
	KindDistinct   Kind = "distinct"
	KindGroups     Kind = "groups"
	KindAggregate  Kind = "aggregate"
	KindSimilarity Kind = "similarity"
	KindHybrid     Kind = "hybrid"
)

// Row is one projected record keyed by field name.
type Row map[string]any

// Bucket is one group with its member count. Value is nil for the null bucket.
type Bucket struct {
	Value any
	Count int64
}

// Result is a tagged union over the retrieval outcomes. The zero value is invalid;
// use the constructors.
type Result struct {
	kind       Kind
	rows       []Row
	row        Row
	count      int64
	field      string
	values     []any
	buckets    []Bucket
	op         string
	scalar     any
	matches    []vector.Match
	structured *Result
}

// Rows wraps a list of records.
func Rows(rows []Row) Result {
	if rows == nil {
		rows = []Row{}
	}
	return Result{kind: KindRows, rows: rows}
}

// Single wraps at most one record. A nil row means nothing matched.
func Single(row Row) Result { return Result{kind: KindRow, row: row} }

// Count wraps a record count.
func Count(n int64) Result { return Result{kind: KindCount, count: n} }

// Distinct wraps the deduplicated values of field.
func Distinct(field string, values []any) Result {
	if values == nil {
		values = []any{}
	}
	return Result{kind: KindDistinct, field: field, values: values}
}

// Groups wraps per-bucket counts of field, already sorted and truncated.
func Groups(field string, buckets []Bucket) Result {
	if buckets == nil {
		buckets = []Bucket{}
	}
	return Result{kind: KindGroups, field: field, buckets: buckets}
}

// Aggregate wraps a scalar aggregation. value is nil when no rows matched.
func Aggregate(op, field string, value any) Result {
	return Result{kind: KindAggregate, op: op, field: field, scalar: value}
}

// Similarity wraps ranked similarity matches.
func Similarity(matches []vector.Match) Result {
	if matches == nil {
		matches = []vector.Match{}
	}
	return Result{kind: KindSimilarity, matches: matches}
}

// Hybrid joins a structured result with similarity matches.
func Hybrid(structured Result, semantic []vector.Match) Result {
	if semantic == nil {
		semantic = []vector.Match{}
	}
	return Result{kind: KindHybrid, structured: &structured, matches: semantic}
}

// Kind returns the variant tag.
func (r Result) Kind() Kind { return r.kind }

// RowsValue returns the records of a rows result.
func (r Result) RowsValue() []Row { return r.rows }

// RowValue returns the record of a single-row result, nil when empty.
func (r Result) RowValue() Row { return r.row }

// CountValue returns the count of a count result.
func (r Result) CountValue() int64 { return r.count }

// Field returns the distinct, group or aggregate field.
func (r Result) Field() string { return r.field }

// Values returns the values of a distinct result.
func (r Result) Values() []any { return r.values }

// Buckets returns the buckets of a groups result.
func (r Result) Buckets() []Bucket { return r.buckets }

// Operation returns the aggregation function of an aggregate result.
func (r Result) Operation() string { return r.op }

// Scalar returns the value of an aggregate result.
func (r Result) Scalar() any { return r.scalar }

// Matches returns the similarity matches of a similarity or hybrid result.
func (r Result) Matches() []vector.Match { return r.matches }

// Structured returns the structured half of a hybrid result.
func (r Result) Structured() (Result, bool) {
	if r.structured == nil {
		return Result{}, false
	}
	return *r.structured, true
}

// MarshalJSON renders the payload shape the answer synthesizer is prompted with.
func (r Result) MarshalJSON() ([]byte, error) {
	switch r.kind {
	case KindRows:
		return json.Marshal(r.rows)
	case KindRow:
		return json.Marshal(r.row)
	case KindCount:
		return json.Marshal(map[string]int64{"count": r.count})
	case KindDistinct:
		return json.Marshal(struct {
			Field  string `json:"field"`
			Values []any  `json:"values"`
			Total  int    `json:"total"`
		}{r.field, r.values, len(r.values)})
	case KindGroups:
		out := make([]map[string]any, len(r.buckets))
		for i, b := range r.buckets {
			out[i] = map[string]any{r.field: b.Value, "count": b.Count}
		}
		return json.Marshal(out)
	case KindAggregate:
		return json.Marshal(struct {
			Operation string `json:"operation"`
			Field     string `json:"field"`
			Result    any    `json:"result"`
		}{r.op, r.field, r.scalar})
	case KindSimilarity:
		return json.Marshal(r.matches)
	case KindHybrid:
		return json.Marshal(struct {
			Structured Result         `json:"structured"`
			Semantic   []vector.Match `json:"semantic"`
		}{*r.structured, r.matches})
	default:
		return nil, fmt.Errorf("marshal result: unknown kind %q", r.kind)
	}
}
