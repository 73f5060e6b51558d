package askdb

import (
	"context"
	"io"

	"github.com/kailas-cloud/askdb/internal/domain/history"
	healthuc "github.com/kailas-cloud/askdb/internal/usecase/health"
	"github.com/kailas-cloud/askdb/internal/usecase/knowledge"
	"github.com/kailas-cloud/askdb/internal/usecase/orchestrator"
)

// --- use case mocks ---

type mockAskUC struct {
	fn func(ctx context.Context, question string) (orchestrator.Answer, error)
}

func (m *mockAskUC) Ask(ctx context.Context, question string) (orchestrator.Answer, error) {
	return m.fn(ctx, question)
}

type mockHistoryUC struct {
	fn func(ctx context.Context, limit int) ([]history.Entry, error)
}

func (m *mockHistoryUC) Recent(ctx context.Context, limit int) ([]history.Entry, error) {
	return m.fn(ctx, limit)
}

type mockSeedUC struct {
	fn func(ctx context.Context, r io.Reader) (int, error)
}

func (m *mockSeedUC) Seed(ctx context.Context, r io.Reader) (int, error) {
	return m.fn(ctx, r)
}

type mockIndexUC struct {
	fn func(ctx context.Context) (knowledge.Summary, error)
}

func (m *mockIndexUC) Build(ctx context.Context) (knowledge.Summary, error) {
	return m.fn(ctx)
}

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(context.Context) healthuc.Report {
	return m.report
}

// --- public backend mocks ---

type mockEmbedder struct {
	fn func(ctx context.Context, text string) (EmbeddingResult, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	return m.fn(ctx, text)
}

type mockBatchEmbedder struct {
	mockEmbedder
	batchFn func(ctx context.Context, texts []string) (BatchEmbeddingResult, error)
}

func (m *mockBatchEmbedder) BatchEmbed(ctx context.Context, texts []string) (BatchEmbeddingResult, error) {
	return m.batchFn(ctx, texts)
}

type mockCompleter struct {
	fn func(ctx context.Context, req CompletionRequest) (string, error)
}

func (m *mockCompleter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	return m.fn(ctx, req)
}
