package structured

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/askdb/internal/domain"
	"github.com/kailas-cloud/askdb/internal/domain/intent"
	"github.com/kailas-cloud/askdb/internal/domain/plan"
	"github.com/kailas-cloud/askdb/internal/domain/result"
	"github.com/kailas-cloud/askdb/internal/domain/schema"
	"github.com/kailas-cloud/askdb/internal/usecase/compile"
)

func compileRaw(t *testing.T, raw intent.Raw) plan.Plan {
	t.Helper()
	in, err := intent.Validate(raw)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	p, err := compile.New(0).Compile(in)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	return p
}

func TestExecute_CountIndia(t *testing.T) {
	rows := append(usersIn("India", 12), usersIn("Germany", 5)...)
	svc := New(&memStore{rows: rows}, zap.NewNop())

	p := compileRaw(t, intent.Raw{
		Entity:  "Users",
		Action:  "count",
		Filters: []intent.RawCondition{{Field: "country", Op: "eq", Value: "India"}},
	})
	res, err := svc.Execute(context.Background(), p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Kind() != result.KindCount || res.CountValue() != 12 {
		t.Errorf("expected count 12, got %s/%d", res.Kind(), res.CountValue())
	}
}

func TestExecute_GenericDeviceGrouping(t *testing.T) {
	rows := []result.Row{
		{"id": int64(1), "device": "Android 10"},
		{"id": int64(2), "device": "Android 12"},
		{"id": int64(3), "device": "iOS 16"},
	}
	store := &memStore{rows: rows}
	svc := New(store, zap.NewNop())

	p := compileRaw(t, intent.Raw{Entity: "Users", Action: "group", GroupByField: "device", GroupByGeneric: true})
	res, err := svc.Execute(context.Background(), p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []result.Bucket{{Value: "Android", Count: 2}, {Value: "iOS", Count: 1}}
	got := res.Buckets()
	if len(got) != len(want) {
		t.Fatalf("buckets = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("bucket[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
	if store.valuesCalls != 1 || store.groupCalls != 0 {
		t.Errorf("generic grouping must fetch raw values, got values=%d group=%d", store.valuesCalls, store.groupCalls)
	}
}

func TestExecute_GenericGroupingConservesTotal(t *testing.T) {
	devices := []any{
		"Android 9", "iPhone 14", "iPad Air", "Windows Phone", "Nokia feature phone",
		"Proprietary OS", "KaiOS", "android 13", nil, "BlackBerry", "iOS 17", "BlackBerry",
	}
	rows := make([]result.Row, len(devices))
	for i, d := range devices {
		rows[i] = result.Row{"id": int64(i), "device": d, "country": "Brazil"}
	}
	svc := New(&memStore{rows: rows}, zap.NewNop())

	p := compileRaw(t, intent.Raw{
		Entity: "Users", Action: "group", GroupByField: "device", GroupByGeneric: true,
		Filters: []intent.RawCondition{{Field: "country", Op: "eq", Value: "brazil"}},
		Limit:   intPtr(100),
	})
	res, err := svc.Execute(context.Background(), p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var total int64
	for _, b := range res.Buckets() {
		total += b.Count
	}
	if total != int64(len(devices)) {
		t.Errorf("bucket counts sum to %d, want %d", total, len(devices))
	}
}

func TestExecute_StandardGroupUsesStore(t *testing.T) {
	store := &memStore{rows: usersIn("India", 3)}
	svc := New(store, zap.NewNop())

	p := compileRaw(t, intent.Raw{Entity: "Users", Action: "groupBy", GroupByField: "country"})
	res, err := svc.Execute(context.Background(), p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.groupCalls != 1 || store.valuesCalls != 0 {
		t.Errorf("expected store grouping, got values=%d group=%d", store.valuesCalls, store.groupCalls)
	}
	if len(res.Buckets()) != 1 || res.Buckets()[0].Count != 3 {
		t.Errorf("unexpected buckets %+v", res.Buckets())
	}
}

func TestExecute_AndFiltersHoldForEveryRow(t *testing.T) {
	rows := []result.Row{
		{"id": int64(1), "country": "India", "gender": "Female", "car": "Toyota Corolla"},
		{"id": int64(2), "country": "India", "gender": "Male", "car": "Honda Civic"},
		{"id": int64(3), "country": "Indonesia", "gender": "Female", "car": nil},
		{"id": int64(4), "country": "France", "gender": "Female", "car": "Toyota Yaris"},
	}
	svc := New(&memStore{rows: rows}, zap.NewNop())

	filters := []intent.RawCondition{
		{Field: "country", Op: "startsWith", Value: "Ind"},
		{Field: "gender", Op: "eq", Value: "female"},
	}
	p := compileRaw(t, intent.Raw{Entity: "Users", Action: "list", Filters: filters})
	res, err := svc.Execute(context.Background(), p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.RowsValue()) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(res.RowsValue()))
	}
	for _, r := range res.RowsValue() {
		if !eval(p.Where, r) {
			t.Errorf("row %v violates the filters", r)
		}
	}
}

func TestExecute_NullTestIgnoresValue(t *testing.T) {
	rows := []result.Row{
		{"id": int64(1), "car": nil},
		{"id": int64(2), "car": "Ford Focus"},
	}
	svc := New(&memStore{rows: rows}, zap.NewNop())

	for _, value := range []any{true, false, "Ford", nil} {
		p := compileRaw(t, intent.Raw{
			Entity: "Users", Action: "count",
			Filters: []intent.RawCondition{{Field: "car", Op: "isNull", Value: value}},
		})
		res, err := svc.Execute(context.Background(), p)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.CountValue() != 1 {
			t.Errorf("value %v: count = %d, want 1", value, res.CountValue())
		}
	}
}

func TestExecute_SingleAndEmpty(t *testing.T) {
	svc := New(&memStore{rows: usersIn("Peru", 4)}, zap.NewNop())

	p := compileRaw(t, intent.Raw{Entity: "Users", Action: "findFirst"})
	res, err := svc.Execute(context.Background(), p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Kind() != result.KindRow || res.RowValue()["id"] != int64(1) {
		t.Errorf("unexpected single row %+v", res.RowValue())
	}

	p = compileRaw(t, intent.Raw{
		Entity: "Users", Action: "findFirst",
		Filters: []intent.RawCondition{{Field: "country", Op: "eq", Value: "Chile"}},
	})
	res, _ = svc.Execute(context.Background(), p)
	if res.RowValue() != nil {
		t.Errorf("expected empty single result, got %+v", res.RowValue())
	}
}

func TestExecute_DistinctAndAggregate(t *testing.T) {
	rows := append(usersIn("Japan", 2), usersIn("Kenya", 1)...)
	svc := New(&memStore{rows: rows}, zap.NewNop())

	res, err := svc.Execute(context.Background(), compileRaw(t, intent.Raw{Entity: "Users", Action: "distinct", DistinctField: "country"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Field() != "country" || len(res.Values()) != 2 {
		t.Errorf("unexpected distinct result %v", res.Values())
	}

	res, err = svc.Execute(context.Background(), compileRaw(t, intent.Raw{
		Entity: "Users", Action: "aggregate", AggregateField: "id", AggregateOp: "count",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Operation() != "count" || res.Scalar() != int64(3) {
		t.Errorf("unexpected aggregate %s=%v", res.Operation(), res.Scalar())
	}
}

func TestExecute_StoreErrorIsExecutionError(t *testing.T) {
	storeErr := errors.New("disk I/O error")
	svc := New(&memStore{err: storeErr}, zap.NewNop())

	actions := []intent.Raw{
		{Entity: "Users", Action: "list"},
		{Entity: "Users", Action: "single"},
		{Entity: "Users", Action: "count"},
		{Entity: "Users", Action: "distinct", DistinctField: "car"},
		{Entity: "Users", Action: "group", GroupByField: "car"},
		{Entity: "Users", Action: "group", GroupByField: "car", GroupByGeneric: true},
		{Entity: "Users", Action: "aggregate", AggregateField: "id", AggregateOp: "max"},
	}
	for _, raw := range actions {
		_, err := svc.Execute(context.Background(), compileRaw(t, raw))
		if !errors.Is(err, domain.ErrExecution) {
			t.Errorf("%s: expected ErrExecution, got %v", raw.Action, err)
		}
		if !errors.Is(err, storeErr) {
			t.Errorf("%s: expected store error in chain, got %v", raw.Action, err)
		}
	}
}

func TestExecute_UnknownPlanAction(t *testing.T) {
	svc := New(&memStore{}, zap.NewNop())
	_, err := svc.Execute(context.Background(), plan.Plan{Table: schema.Users.Table(), Special: plan.Special{Action: "merge"}})
	if !errors.Is(err, domain.ErrCompilation) {
		t.Fatalf("expected ErrCompilation, got %v", err)
	}
}

func intPtr(v int) *int { return &v }
