package structured

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/kailas-cloud/askdb/internal/domain/plan"
	"github.com/kailas-cloud/askdb/internal/domain/result"
)

// memStore is an in-memory Store used to exercise the executor without SQL.
type memStore struct {
	rows []result.Row
	err  error

	valuesCalls int
	groupCalls  int
}

func (m *memStore) filter(p plan.Plan) []result.Row {
	var out []result.Row
	for _, r := range m.rows {
		if p.Where == nil || eval(p.Where, r) {
			out = append(out, r)
		}
	}
	return out
}

func (m *memStore) Rows(_ context.Context, p plan.Plan) ([]result.Row, error) {
	if m.err != nil {
		return nil, m.err
	}
	rows := m.filter(p)
	if p.Offset > 0 {
		if p.Offset >= len(rows) {
			rows = nil
		} else {
			rows = rows[p.Offset:]
		}
	}
	if p.Limit > 0 && len(rows) > p.Limit {
		rows = rows[:p.Limit]
	}
	return rows, nil
}

func (m *memStore) Count(_ context.Context, p plan.Plan) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	return int64(len(m.filter(p))), nil
}

func (m *memStore) Distinct(_ context.Context, p plan.Plan) ([]any, error) {
	if m.err != nil {
		return nil, m.err
	}
	seen := map[any]bool{}
	var out []any
	for _, r := range m.filter(p) {
		v := r[p.Special.Field]
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out, nil
}

func (m *memStore) GroupCount(_ context.Context, p plan.Plan) ([]result.Bucket, error) {
	m.groupCalls++
	if m.err != nil {
		return nil, m.err
	}
	counts := map[string]int64{}
	for _, r := range m.filter(p) {
		counts[fmt.Sprint(r[p.Special.Field])]++
	}
	var out []result.Bucket
	for k, n := range counts {
		out = append(out, result.Bucket{Value: k, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out, nil
}

func (m *memStore) Aggregate(_ context.Context, p plan.Plan) (any, error) {
	if m.err != nil {
		return nil, m.err
	}
	rows := m.filter(p)
	if len(rows) == 0 {
		return nil, nil
	}
	return int64(len(rows)), nil
}

func (m *memStore) Values(_ context.Context, p plan.Plan) ([]any, error) {
	m.valuesCalls++
	if m.err != nil {
		return nil, m.err
	}
	var out []any
	for _, r := range m.filter(p) {
		out = append(out, r[p.Special.Field])
	}
	return out, nil
}

func eval(pred plan.Predicate, row result.Row) bool {
	switch n := pred.(type) {
	case plan.And:
		for _, t := range n.Terms {
			if !eval(t, row) {
				return false
			}
		}
		return true
	case plan.Or:
		for _, t := range n.Terms {
			if eval(t, row) {
				return true
			}
		}
		return false
	case plan.Compare:
		v, present := row[n.Field]
		isNull := !present || v == nil
		switch n.Op {
		case plan.IsNull:
			return isNull
		case plan.IsNotNull:
			return !isNull
		}
		if isNull {
			return false
		}
		s, want := strings.ToLower(fmt.Sprint(v)), strings.ToLower(fmt.Sprint(n.Value))
		switch n.Op {
		case plan.Eq:
			return s == want
		case plan.Neq:
			return s != want
		case plan.Contains:
			return strings.Contains(s, want)
		case plan.StartsWith:
			return strings.HasPrefix(s, want)
		case plan.EndsWith:
			return strings.HasSuffix(s, want)
		}
	}
	return false
}

func usersIn(country string, n int) []result.Row {
	rows := make([]result.Row, n)
	for i := range rows {
		rows[i] = result.Row{"id": int64(i + 1), "country": country}
	}
	return rows
}
