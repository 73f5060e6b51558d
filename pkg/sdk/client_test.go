package askdb

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kailas-cloud/askdb/internal/domain"
	openaiTransport "github.com/kailas-cloud/askdb/internal/transport/openai"
)

func TestNew_NoModelBackend(t *testing.T) {
	_, err := New(context.Background(), WithDatabase(filepath.Join(t.TempDir(), "askdb.db")))
	if err == nil || !strings.Contains(err.Error(), "model backend required") {
		t.Fatalf("expected model backend error, got %v", err)
	}
}

func TestModels_CustomTakesPrecedence(t *testing.T) {
	cfg := &clientConfig{
		baseURL:   "http://localhost:11434/v1",
		completer: &mockCompleter{},
	}
	completer, embedder, err := models(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := completer.(*completerAdapter); !ok {
		t.Errorf("completer = %T, want custom adapter", completer)
	}
	if _, ok := embedder.(*openaiTransport.Embedder); !ok {
		t.Errorf("embedder = %T, want OpenAI embedder", embedder)
	}
}

func TestModels_PartialCustom(t *testing.T) {
	if _, _, err := models(&clientConfig{completer: &mockCompleter{}}); err == nil {
		t.Fatal("expected error when no embedder is available")
	}
}

func TestEmbedderAdapter(t *testing.T) {
	called := false
	mock := &mockEmbedder{
		fn: func(_ context.Context, text string) (EmbeddingResult, error) {
			called = true
			return EmbeddingResult{
				Embedding:    []float32{1, 2, 3},
				PromptTokens: 5,
				TotalTokens:  10,
			}, nil
		},
	}

	adapter := &embedderAdapter{inner: mock}
	result, err := adapter.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Error("inner embedder was not called")
	}
	if len(result.Embedding) != 3 || result.TotalTokens != 10 {
		t.Errorf("unexpected result %+v", result)
	}
}

func TestEmbedderAdapter_Error(t *testing.T) {
	mock := &mockEmbedder{
		fn: func(_ context.Context, _ string) (EmbeddingResult, error) {
			return EmbeddingResult{}, errors.New("provider down")
		},
	}

	_, err := (&embedderAdapter{inner: mock}).Embed(context.Background(), "hello")
	if !errors.Is(err, ErrExternalService) {
		t.Fatalf("expected ErrExternalService, got %v", err)
	}
}

func TestEmbedderAdapter_BatchFallback(t *testing.T) {
	calls := 0
	mock := &mockEmbedder{
		fn: func(_ context.Context, text string) (EmbeddingResult, error) {
			calls++
			return EmbeddingResult{Embedding: []float32{float32(len(text))}, TotalTokens: 1}, nil
		},
	}

	res, err := (&embedderAdapter{inner: mock}).BatchEmbed(context.Background(), []string{"a", "bb"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 || len(res.Embeddings) != 2 || res.Embeddings[1][0] != 2 || res.TotalTokens != 2 {
		t.Errorf("unexpected fallback result %+v after %d calls", res, calls)
	}
}

func TestEmbedderAdapter_NativeBatch(t *testing.T) {
	mock := &mockBatchEmbedder{
		batchFn: func(_ context.Context, texts []string) (BatchEmbeddingResult, error) {
			out := make([][]float32, len(texts))
			for i := range texts {
				out[i] = []float32{1}
			}
			return BatchEmbeddingResult{Embeddings: out, TotalTokens: 7}, nil
		},
	}

	res, err := (&embedderAdapter{inner: mock}).BatchEmbed(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Embeddings) != 3 || res.TotalTokens != 7 {
		t.Errorf("unexpected batch result %+v", res)
	}
}

func TestCompleterAdapter(t *testing.T) {
	var got CompletionRequest
	mock := &mockCompleter{
		fn: func(_ context.Context, req CompletionRequest) (string, error) {
			got = req
			return "structured", nil
		},
	}

	res, err := (&completerAdapter{inner: mock}).Complete(context.Background(), domain.CompletionRequest{
		Purpose: "translate", System: "sys", Prompt: "p", JSON: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Text != "structured" {
		t.Errorf("Text = %q", res.Text)
	}
	if got != (CompletionRequest{Purpose: "translate", System: "sys", Prompt: "p", JSON: true}) {
		t.Errorf("request not forwarded: %+v", got)
	}

	mock.fn = func(context.Context, CompletionRequest) (string, error) { return "", errors.New("timeout") }
	if _, err := (&completerAdapter{inner: mock}).Complete(context.Background(), domain.CompletionRequest{}); !errors.Is(err, ErrExternalService) {
		t.Errorf("expected ErrExternalService, got %v", err)
	}
}

func TestClientOptions(t *testing.T) {
	cfg := &clientConfig{}
	reg := prometheus.NewRegistry()
	logger := slog.Default()

	opts := []Option{
		WithDatabase("/tmp/x.db"),
		WithRedis("localhost:6379", "secret"),
		WithOpenAI("http://localhost:11434/v1", "key"),
		WithModels("llama3", "nomic-embed-text"),
		WithRetrieval(3, 0.7),
		WithGroupLimit(4),
		WithHistoryLimit(50),
		WithLogger(logger),
		WithPrometheus(reg),
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.dbPath != "/tmp/x.db" {
		t.Errorf("dbPath = %q", cfg.dbPath)
	}
	if len(cfg.redisAddrs) != 1 || cfg.redisPassword != "secret" {
		t.Errorf("redis = %v/%q", cfg.redisAddrs, cfg.redisPassword)
	}
	if cfg.chatModel != "llama3" || cfg.embeddingModel != "nomic-embed-text" {
		t.Errorf("models = %q/%q", cfg.chatModel, cfg.embeddingModel)
	}
	if cfg.topK != 3 || cfg.minSimilarity != 0.7 || cfg.groupLimit != 4 || cfg.historyLimit != 50 {
		t.Errorf("retrieval = %+v", cfg)
	}
	if cfg.logger != logger || cfg.metricsReg != reg {
		t.Error("logger or registry not set")
	}
}

func TestObserver_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs, err := newObserver(nil, reg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	start := time.Now()
	obs.observe("ask", start, nil)
	obs.observe("ask", start, domain.NewStageError(domain.StageTranslate, domain.ErrTranslationParse))

	if got := testutil.ToFloat64(obs.metrics.operations.WithLabelValues("ask", "ok", "")); got != 1 {
		t.Errorf("ok count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(obs.metrics.operations.WithLabelValues("ask", "error", "translate")); got != 1 {
		t.Errorf("translate failures = %v, want 1", got)
	}
}

func TestObserver_ReusesRegisteredMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := newObserver(nil, reg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := newObserver(nil, reg)
	if err != nil {
		t.Fatalf("second registration: %v", err)
	}
	if first.metrics.operations != second.metrics.operations {
		t.Error("expected the registered collector to be reused")
	}
}

func TestObserver_Nil(t *testing.T) {
	var obs *observer
	obs.observe("ask", time.Now(), errors.New("ignored"))
}
