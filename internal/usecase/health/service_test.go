package health

import (
	"context"
	"errors"
	"testing"
)

// --- Mocks ---

type mockDBPinger struct {
	err error
}

func (m *mockDBPinger) Ping(_ context.Context) error { return m.err }

type mockChecker struct {
	err error
}

func (m *mockChecker) HealthCheck(_ context.Context) error { return m.err }

// --- Tests ---

func TestCheck(t *testing.T) {
	boom := errors.New("conn refused")
	tests := []struct {
		name   string
		db     error
		cache  error
		llm    error
		status Status
	}{
		{"all healthy", nil, nil, nil, Healthy},
		{"cache down", nil, boom, nil, Degraded},
		{"llm down", nil, nil, boom, Degraded},
		{"database down", boom, nil, nil, Unhealthy},
		{"everything down", boom, boom, boom, Unhealthy},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := New(&mockDBPinger{err: tc.db}, &mockChecker{err: tc.cache}, &mockChecker{err: tc.llm})
			r := svc.Check(context.Background())

			if r.Status != tc.status {
				t.Errorf("expected %q, got %q", tc.status, r.Status)
			}
			for name, err := range map[string]error{ComponentDatabase: tc.db, ComponentCache: tc.cache, ComponentLLM: tc.llm} {
				want := CheckOK
				if err != nil {
					want = CheckError
				}
				if r.Checks[name] != want {
					t.Errorf("expected %s %q, got %q", name, want, r.Checks[name])
				}
			}
		})
	}
}

func TestCheck_OptionalComponents(t *testing.T) {
	svc := New(&mockDBPinger{}, nil, nil)
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if _, ok := r.Checks[ComponentCache]; ok {
		t.Error("cache check should be absent")
	}
	if _, ok := r.Checks[ComponentLLM]; ok {
		t.Error("llm check should be absent")
	}
}
