package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/askdb/internal/config"
	dbRedis "github.com/kailas-cloud/askdb/internal/db/redis"
	"github.com/kailas-cloud/askdb/internal/db/sqlite"
	"github.com/kailas-cloud/askdb/internal/domain"
	logpkg "github.com/kailas-cloud/askdb/internal/logger"
	"github.com/kailas-cloud/askdb/internal/metrics"
	"github.com/kailas-cloud/askdb/internal/repository/embcache"
	embeddingsrepo "github.com/kailas-cloud/askdb/internal/repository/embeddings"
	historyrepo "github.com/kailas-cloud/askdb/internal/repository/history"
	usersrepo "github.com/kailas-cloud/askdb/internal/repository/users"
	chiTransport "github.com/kailas-cloud/askdb/internal/transport/chi"
	"github.com/kailas-cloud/askdb/internal/transport/cli"
	openaiTransport "github.com/kailas-cloud/askdb/internal/transport/openai"
	"github.com/kailas-cloud/askdb/internal/usecase/classify"
	"github.com/kailas-cloud/askdb/internal/usecase/compile"
	"github.com/kailas-cloud/askdb/internal/usecase/dataset"
	embeddinguc "github.com/kailas-cloud/askdb/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/askdb/internal/usecase/health"
	historyuc "github.com/kailas-cloud/askdb/internal/usecase/history"
	"github.com/kailas-cloud/askdb/internal/usecase/knowledge"
	"github.com/kailas-cloud/askdb/internal/usecase/orchestrator"
	"github.com/kailas-cloud/askdb/internal/usecase/similarity"
	"github.com/kailas-cloud/askdb/internal/usecase/structured"
	"github.com/kailas-cloud/askdb/internal/usecase/synthesize"
	"github.com/kailas-cloud/askdb/internal/usecase/translate"
	"github.com/kailas-cloud/askdb/internal/version"
)

// bootstrap is the composition root. It loads config for ENV, opens the
// stores and wires every service the CLI commands use.
func bootstrap(ctx context.Context, command string) (*cli.Services, func(), error) {
	env := config.GetEnv()
	cfg, err := config.Load(env)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	// Commands other than serve log warnings only.
	logEnv, level := env, cfg.Logging.Level
	if command != "serve" {
		logEnv, level = "cli", ""
	}
	logger, err := logpkg.NewLogger(logEnv, level)
	if err != nil {
		return nil, nil, fmt.Errorf("create logger: %w", err)
	}

	var closers []func()
	release := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
		_ = logger.Sync()
	}
	fail := func(err error) (*cli.Services, func(), error) {
		release()
		return nil, nil, err
	}

	logger.Info("Starting askdb",
		zap.String("build", version.String()),
		zap.String("env", env),
		zap.String("command", command),
		zap.String("database", cfg.Database.Path),
		zap.Bool("cache", cfg.Cache.Enabled),
		zap.String("history_backend", cfg.History.Backend),
	)

	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterLLMMetrics()
	metrics.RegisterHTTPMetrics()

	sqlStore, err := sqlite.Open(sqlite.Config{Path: cfg.Database.Path})
	if err != nil {
		return fail(fmt.Errorf("open database: %w", err))
	}
	closers = append(closers, func() { _ = sqlStore.Close() })
	if err := sqlStore.WaitForReady(ctx, seconds(cfg.Database.ReadinessTimeout)); err != nil {
		return fail(fmt.Errorf("database not ready: %w", err))
	}

	var cache *dbRedis.Store
	if cfg.Cache.Enabled {
		cache, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Password: cfg.Cache.Password,
		})
		if err != nil {
			return fail(fmt.Errorf("create cache store: %w", err))
		}
		closers = append(closers, cache.Close)
		if err := cache.WaitForReady(ctx, seconds(cfg.Cache.ReadinessTimeout)); err != nil {
			return fail(fmt.Errorf("cache not ready: %w", err))
		}
		logger.Info("Connected to cache", zap.Strings("addrs", cfg.Cache.Addrs))
	}

	completer := openaiTransport.NewCompleter(&openaiTransport.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.ChatModel,
		Temperature: cfg.LLM.Temperature,
		Provider:    cfg.LLM.Provider,
		Logger:      logger,
	})
	embedder := buildEmbedder(cfg, cache, logger)

	users := usersrepo.New(sqlStore.DB())
	embeddings := embeddingsrepo.New(sqlStore.DB())

	// Pass a nil interface, not a typed nil pointer, when the cache is off.
	var historyStore historyuc.Store = historyuc.NewMemoryStore(cfg.History.MaxEntries)
	var cacheChecker healthuc.Checker
	if cache != nil {
		cacheChecker = cache
		if cfg.History.Backend == config.HistoryRedis {
			historyStore = historyrepo.New(cache, cfg.Cache.KeyPrefix, cfg.History.MaxEntries)
		}
	}
	historySvc := historyuc.New(historyStore, logger)

	retriever := similarity.New(embeddings, withInstruction(embedder, cfg.LLM.QueryInstruction), logger).WithOptions(similarity.Options{
		TopK:          cfg.Retrieval.TopK,
		MinSimilarity: cfg.Retrieval.MinSimilarity,
	})
	asker := orchestrator.New(orchestrator.Deps{
		Classifier:  classify.New(completer, logger),
		Translator:  translate.New(completer, logger),
		Compiler:    compile.New(cfg.Retrieval.GroupLimit),
		Executor:    structured.New(users, logger),
		Retriever:   retriever,
		Synthesizer: synthesize.New(completer, logger),
		History:     historySvc,
	}, logger)

	healthSvc := healthuc.New(sqlStore, cacheChecker, completer)
	server := chiTransport.NewServer(asker, historySvc, healthSvc, logger)
	handler := chiTransport.NewRouter(server, chiTransport.RouterConfig{
		APIKeys:        cfg.Auth.APIKeys,
		RequestTimeout: seconds(cfg.HTTP.RequestTimeoutSec),
	}, logger)

	docEmbedder := withInstruction(embedder, cfg.LLM.DocumentInstruction)
	indexer := knowledge.New(users, embeddings, docEmbedder, cfg.Retrieval.IndexBatch, logger)

	return &cli.Services{
		Asker:   asker,
		History: historySvc,
		Seeder:  dataset.New(users, logger),
		Indexer: indexer,
		Server:  newHTTPServer(cfg.HTTP, handler, logger),
	}, release, nil
}

// buildEmbedder assembles the decorator chain: OpenAI -> Cached -> Instrumented.
func buildEmbedder(cfg config.Config, cache *dbRedis.Store, logger *zap.Logger) domain.Embedder {
	base := openaiTransport.NewEmbedder(&openaiTransport.Config{
		APIKey:     cfg.LLM.APIKey,
		BaseURL:    cfg.LLM.BaseURL,
		Model:      cfg.LLM.EmbeddingModel,
		Dimensions: cfg.LLM.Dimensions,
		Provider:   cfg.LLM.Provider,
		Logger:     logger,
	})

	var embedder domain.Embedder = base
	if cache != nil {
		embedder = embcache.New(base, cache, embcache.Options{
			KeyPrefix: cfg.Cache.KeyPrefix,
			Model:     cfg.LLM.EmbeddingModel,
			TTL:       seconds(cfg.Cache.EmbeddingTTLSeconds),
		}, metrics.EmbeddingCacheTotal, logger)
	}

	return embeddinguc.NewInstrumentedEmbedder(
		embedder, cfg.LLM.Provider, cfg.LLM.EmbeddingModel, cfg.LLM.MaxBatchSize, logger,
	)
}

func withInstruction(e domain.Embedder, instruction string) domain.Embedder {
	if instruction == "" {
		return e
	}
	return domain.NewInstructionEmbedder(e, instruction)
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
