package history

import (
	"context"
	"testing"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	rpushTrimFn func(ctx context.Context, key string, value []byte, maxLen int) error
	lrangeFn    func(ctx context.Context, key string, start, stop int64) ([][]byte, error)
}

func (m *mockStore) RPushTrim(ctx context.Context, key string, value []byte, maxLen int) error {
	if m.rpushTrimFn != nil {
		return m.rpushTrimFn(ctx, key, value, maxLen)
	}
	return nil
}

func (m *mockStore) LRange(ctx context.Context, key string, start, stop int64) ([][]byte, error) {
	if m.lrangeFn != nil {
		return m.lrangeFn(ctx, key, start, stop)
	}
	return [][]byte{}, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, "askdb:", 100), ms
}
