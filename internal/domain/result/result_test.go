package result

import (
	"encoding/json"
	"testing"

	"github.com/kailas-cloud/askdb/internal/domain/vector"
)

func mustJSON(t *testing.T, r Result) string {
	t.Helper()
	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(data)
}

func TestMarshal_Shapes(t *testing.T) {
	tests := []struct {
		name string
		r    Result
		want string
	}{
		{"count", Count(12), `{"count":12}`},
		{"empty rows", Rows(nil), `[]`},
		{"rows", Rows([]Row{{"id": 1, "country": "India"}}), `[{"country":"India","id":1}]`},
		{"single empty", Single(nil), `null`},
		{"single", Single(Row{"id": 7}), `{"id":7}`},
		{
			"distinct",
			Distinct("language", []any{"Hindi", "Tamil"}),
			`{"field":"language","values":["Hindi","Tamil"],"total":2}`,
		},
		{
			"groups",
			Groups("device", []Bucket{{Value: "Android", Count: 2}, {Value: "iOS", Count: 1}}),
			`[{"count":2,"device":"Android"},{"count":1,"device":"iOS"}]`,
		},
		{
			"null bucket",
			Groups("car", []Bucket{{Value: nil, Count: 3}}),
			`[{"car":null,"count":3}]`,
		},
		{"aggregate", Aggregate("max", "id", int64(1000)), `{"operation":"max","field":"id","result":1000}`},
		{"aggregate no rows", Aggregate("avg", "id", nil), `{"operation":"avg","field":"id","result":null}`},
		{
			"similarity",
			Similarity([]vector.Match{{SubjectID: 4, Content: "doc", Score: 0.812}}),
			`[{"user_id":4,"content":"doc","similarity":0.812}]`,
		},
		{"empty similarity", Similarity(nil), `[]`},
		{
			"hybrid",
			Hybrid(Count(3), nil),
			`{"structured":{"count":3},"semantic":[]}`,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := mustJSON(t, tc.r); got != tc.want {
				t.Errorf("got  %s\nwant %s", got, tc.want)
			}
		})
	}
}

func TestMarshal_ZeroValueFails(t *testing.T) {
	if _, err := json.Marshal(Result{}); err == nil {
		t.Fatal("expected error for zero-value result")
	}
}

func TestHybrid_Accessors(t *testing.T) {
	matches := []vector.Match{{SubjectID: 1, Score: 0.5}}
	h := Hybrid(Groups("car", []Bucket{{Value: "Toyota", Count: 4}}), matches)

	if h.Kind() != KindHybrid {
		t.Fatalf("unexpected kind %q", h.Kind())
	}
	s, ok := h.Structured()
	if !ok || s.Kind() != KindGroups || s.Buckets()[0].Count != 4 {
		t.Errorf("unexpected structured half: %+v", s)
	}
	if len(h.Matches()) != 1 {
		t.Errorf("expected 1 semantic match, got %d", len(h.Matches()))
	}
	if _, ok := Count(1).Structured(); ok {
		t.Error("non-hybrid result must not expose a structured half")
	}
}
