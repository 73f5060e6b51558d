package askdb

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	dbPath string

	redisAddrs    []string
	redisPassword string
	cacheTTL      time.Duration

	baseURL        string
	apiKey         string
	chatModel      string
	embeddingModel string

	completer Completer
	embedder  Embedder

	topK          int
	minSimilarity float64
	groupLimit    int
	historyLimit  int

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithDatabase sets the SQLite database file. Default: askdb.db.
func WithDatabase(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.dbPath = path
	})
}

// WithRedis enables the embedding cache on a Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.redisAddrs = []string{addr}
		c.redisPassword = password
	})
}

// WithCacheTTL sets how long cached embeddings live. Zero keeps them until evicted.
func WithCacheTTL(ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheTTL = ttl
	})
}

// WithOpenAI uses an OpenAI-compatible endpoint for both completions and embeddings.
func WithOpenAI(baseURL, apiKey string) Option {
	return optionFunc(func(c *clientConfig) {
		c.baseURL = baseURL
		c.apiKey = apiKey
	})
}

// WithModels overrides the chat and embedding model names.
// Defaults: gpt-4o-mini, text-embedding-3-small.
func WithModels(chat, embedding string) Option {
	return optionFunc(func(c *clientConfig) {
		c.chatModel = chat
		c.embeddingModel = embedding
	})
}

// WithCompleter sets a custom chat model. It takes precedence over WithOpenAI.
func WithCompleter(cm Completer) Option {
	return optionFunc(func(c *clientConfig) {
		c.completer = cm
	})
}

// WithEmbedder sets a custom embedding provider. It takes precedence over WithOpenAI.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithRetrieval bounds semantic retrieval. Defaults: topK=5, minSimilarity=0.4.
func WithRetrieval(topK int, minSimilarity float64) Option {
	return optionFunc(func(c *clientConfig) {
		c.topK = topK
		c.minSimilarity = minSimilarity
	})
}

// WithGroupLimit caps the number of buckets of group questions. Default: 10.
func WithGroupLimit(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.groupLimit = n
	})
}

// WithHistoryLimit caps the in-memory conversation history. Zero keeps everything.
func WithHistoryLimit(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.historyLimit = n
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
