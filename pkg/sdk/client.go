package askdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	dbRedis "github.com/kailas-cloud/askdb/internal/db/redis"
	"github.com/kailas-cloud/askdb/internal/db/sqlite"
	"github.com/kailas-cloud/askdb/internal/domain"
	"github.com/kailas-cloud/askdb/internal/domain/history"
	"github.com/kailas-cloud/askdb/internal/repository/embcache"
	embeddingsrepo "github.com/kailas-cloud/askdb/internal/repository/embeddings"
	usersrepo "github.com/kailas-cloud/askdb/internal/repository/users"
	openaiTransport "github.com/kailas-cloud/askdb/internal/transport/openai"
	"github.com/kailas-cloud/askdb/internal/usecase/classify"
	"github.com/kailas-cloud/askdb/internal/usecase/compile"
	"github.com/kailas-cloud/askdb/internal/usecase/dataset"
	healthuc "github.com/kailas-cloud/askdb/internal/usecase/health"
	historyuc "github.com/kailas-cloud/askdb/internal/usecase/history"
	"github.com/kailas-cloud/askdb/internal/usecase/knowledge"
	"github.com/kailas-cloud/askdb/internal/usecase/orchestrator"
	"github.com/kailas-cloud/askdb/internal/usecase/similarity"
	"github.com/kailas-cloud/askdb/internal/usecase/structured"
	"github.com/kailas-cloud/askdb/internal/usecase/synthesize"
	"github.com/kailas-cloud/askdb/internal/usecase/translate"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultDatabase         = "askdb.db"
	defaultChatModel        = "gpt-4o-mini"
	defaultEmbeddingModel   = "text-embedding-3-small"
)

// Internal interfaces, swapped for mocks in tests.
type askUseCase interface {
	Ask(ctx context.Context, question string) (orchestrator.Answer, error)
}

type historyUseCase interface {
	Recent(ctx context.Context, limit int) ([]history.Entry, error)
}

type seedUseCase interface {
	Seed(ctx context.Context, r io.Reader) (int, error)
}

type indexUseCase interface {
	Build(ctx context.Context) (knowledge.Summary, error)
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// Client is the askdb SDK entry point. Questions are answered one at a time.
type Client struct {
	closers    []func()
	askSvc     askUseCase
	historySvc historyUseCase
	seedSvc    seedUseCase
	indexSvc   indexUseCase
	healthSvc  healthUseCase
	obs        *observer
}

// New opens the database, connects the optional cache and wires the pipeline.
// The provided context is used for the initial readiness checks.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		dbPath:         defaultDatabase,
		chatModel:      defaultChatModel,
		embeddingModel: defaultEmbeddingModel,
		topK:           similarity.DefaultTopK,
		minSimilarity:  similarity.DefaultMinSimilarity,
		groupLimit:     compile.DefaultGroupLimit,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	completer, embedder, err := models(cfg)
	if err != nil {
		return nil, err
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	store, err := sqlite.Open(sqlite.Config{Path: cfg.dbPath})
	if err != nil {
		return nil, fmt.Errorf("askdb: open database: %w", err)
	}
	closers := []func(){func() { _ = store.Close() }}
	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		closeAll(closers)
		return nil, fmt.Errorf("askdb: database not ready: %w", err)
	}

	// Pass nil interface (not typed nil pointer) when the cache is off.
	var cacheChecker healthuc.Checker
	if len(cfg.redisAddrs) > 0 {
		cache, err := dbRedis.NewStore(dbRedis.Config{Addrs: cfg.redisAddrs, Password: cfg.redisPassword})
		if err != nil {
			closeAll(closers)
			return nil, fmt.Errorf("askdb: create redis store: %w", err)
		}
		closers = append(closers, cache.Close)
		if err := cache.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
			closeAll(closers)
			return nil, fmt.Errorf("askdb: redis not ready: %w", err)
		}
		embedder = embcache.New(embedder, cache, embcache.Options{
			KeyPrefix: "askdb:",
			Model:     cfg.embeddingModel,
			TTL:       cfg.cacheTTL,
		}, nil, zap.NewNop())
		cacheChecker = cache
	}

	c := wireClient(store, completer, embedder, cacheChecker, cfg)
	c.closers = closers
	c.obs = obs
	return c, nil
}

// models resolves the chat and embedding backends: custom ones first, then OpenAI.
func models(cfg *clientConfig) (domain.Completer, domain.Embedder, error) {
	var completer domain.Completer
	var embedder domain.Embedder
	if cfg.completer != nil {
		completer = &completerAdapter{inner: cfg.completer}
	}
	if cfg.embedder != nil {
		embedder = &embedderAdapter{inner: cfg.embedder}
	}
	if cfg.baseURL != "" || cfg.apiKey != "" {
		base := openaiTransport.Config{
			APIKey:   cfg.apiKey,
			BaseURL:  cfg.baseURL,
			Provider: "openai",
			Logger:   zap.NewNop(),
		}
		if completer == nil {
			chat := base
			chat.Model = cfg.chatModel
			completer = openaiTransport.NewCompleter(&chat)
		}
		if embedder == nil {
			emb := base
			emb.Model = cfg.embeddingModel
			embedder = openaiTransport.NewEmbedder(&emb)
		}
	}
	if completer == nil || embedder == nil {
		return nil, nil, errors.New("askdb: model backend required (use WithOpenAI, or WithCompleter and WithEmbedder)")
	}
	return completer, embedder, nil
}

func wireClient(
	store *sqlite.Store,
	completer domain.Completer,
	embedder domain.Embedder,
	cache healthuc.Checker,
	cfg *clientConfig,
) *Client {
	logger := zap.NewNop()
	users := usersrepo.New(store.DB())
	embeddings := embeddingsrepo.New(store.DB())
	historySvc := historyuc.New(historyuc.NewMemoryStore(cfg.historyLimit), logger)

	retriever := similarity.New(embeddings, embedder, logger).WithOptions(similarity.Options{
		TopK:          cfg.topK,
		MinSimilarity: cfg.minSimilarity,
	})
	askSvc := orchestrator.New(orchestrator.Deps{
		Classifier:  classify.New(completer, logger),
		Translator:  translate.New(completer, logger),
		Compiler:    compile.New(cfg.groupLimit),
		Executor:    structured.New(users, logger),
		Retriever:   retriever,
		Synthesizer: synthesize.New(completer, logger),
		History:     historySvc,
	}, logger)

	var llm healthuc.Checker
	if hc, ok := completer.(domain.HealthChecker); ok {
		llm = hc
	}

	return &Client{
		askSvc:     askSvc,
		historySvc: historySvc,
		seedSvc:    dataset.New(users, logger),
		indexSvc:   knowledge.New(users, embeddings, embedder, knowledge.DefaultBatchSize, logger),
		healthSvc:  healthuc.New(store, cache, llm),
	}
}

func closeAll(closers []func()) {
	for i := len(closers) - 1; i >= 0; i-- {
		closers[i]()
	}
}

// Close releases the database and cache connections.
func (c *Client) Close() {
	closeAll(c.closers)
	c.closers = nil
}

// Ask answers question. On failure StageOf(err) names the step that failed.
func (c *Client) Ask(ctx context.Context, question string) (ans Answer, err error) {
	start := time.Now()
	defer func() { c.obs.observe("ask", start, err, "strategy", ans.Strategy) }()

	a, err := c.askSvc.Ask(ctx, question)
	if err != nil {
		return Answer{}, fmt.Errorf("ask: %w", err)
	}
	data, err := json.Marshal(a.Result)
	if err != nil {
		return Answer{}, fmt.Errorf("encode result: %w", err)
	}
	return Answer{
		ID:       a.ID.String(),
		Question: a.Question,
		Text:     a.Text,
		Strategy: string(a.Strategy),
		Data:     data,
	}, nil
}

// History returns up to limit of the newest answered questions, oldest first.
func (c *Client) History(ctx context.Context, limit int) (_ []HistoryEntry, err error) {
	start := time.Now()
	defer func() { c.obs.observe("history", start, err) }()

	entries, err := c.historySvc.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	out := make([]HistoryEntry, len(entries))
	for i, e := range entries {
		out[i] = HistoryEntry{
			ID:       e.ID.String(),
			Question: e.Question,
			Answer:   e.Answer,
			Strategy: string(e.Strategy),
			AskedAt:  e.AskedAt,
		}
	}
	return out, nil
}

// Seed loads a JSON array of users, replacing users with the same id.
func (c *Client) Seed(ctx context.Context, r io.Reader) (n int, err error) {
	start := time.Now()
	defer func() { c.obs.observe("seed", start, err, "users", n) }()

	n, err = c.seedSvc.Seed(ctx, r)
	if err != nil {
		return 0, fmt.Errorf("seed: %w", err)
	}
	return n, nil
}

// Index rebuilds the semantic knowledge base from the users table.
func (c *Client) Index(ctx context.Context) (_ IndexSummary, err error) {
	start := time.Now()
	defer func() { c.obs.observe("index", start, err) }()

	sum, err := c.indexSvc.Build(ctx)
	if err != nil {
		return IndexSummary{}, fmt.Errorf("index: %w", err)
	}
	return IndexSummary{Total: sum.Total, Indexed: sum.Indexed, Failed: sum.Failed, Stored: sum.Stored}, nil
}

// Health checks the health of all system components.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.healthSvc.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthStatus{
		Status: string(report.Status),
		Checks: checks,
	}
}
