// Package similarity ranks stored knowledge-base documents against a question.
package similarity

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/askdb/internal/domain"
	"github.com/kailas-cloud/askdb/internal/domain/vector"
)

// Defaults for Options.
const (
	DefaultTopK          = 5
	DefaultMinSimilarity = 0.4
)

// Options bound a retrieval.
type Options struct {
	TopK          int
	MinSimilarity float64
}

// DefaultOptions returns topK=5, minSimilarity=0.4.
func DefaultOptions() Options {
	return Options{TopK: DefaultTopK, MinSimilarity: DefaultMinSimilarity}
}

// Service is a read-only full-scan retriever.
type Service struct {
	records  RecordLister
	embedder domain.Embedder
	opts     Options
	logger   *zap.Logger
}

// New creates a retriever with DefaultOptions.
func New(records RecordLister, embedder domain.Embedder, logger *zap.Logger) *Service {
	return &Service{
		records:  records,
		embedder: embedder,
		opts:     DefaultOptions(),
		logger:   logger,
	}
}

// WithOptions overrides the options used by Retrieve. TopK <= 0 keeps the default.
func (s *Service) WithOptions(opts Options) *Service {
	if opts.TopK <= 0 {
		opts.TopK = DefaultTopK
	}
	s.opts = opts
	return s
}

// Retrieve ranks records against query with the configured options.
func (s *Service) Retrieve(ctx context.Context, query string) ([]vector.Match, error) {
	return s.RetrieveWithOptions(ctx, query, s.opts)
}

// RetrieveWithOptions lower-cases and trims query, embeds it, scores every stored
// record by cosine similarity rounded to three decimals, drops scores below
// opts.MinSimilarity and returns at most opts.TopK matches, best first. Equal
// scores keep scan order.
func (s *Service) RetrieveWithOptions(ctx context.Context, query string, opts Options) ([]vector.Match, error) {
	normalized := strings.ToLower(strings.TrimSpace(query))

	emb, err := s.embedder.Embed(ctx, normalized)
	if err != nil {
		if !errors.Is(err, domain.ErrExternalService) {
			err = fmt.Errorf("%w: %w", domain.ErrExternalService, err)
		}
		return nil, fmt.Errorf("embed query: %w", err)
	}

	start := time.Now()
	records, err := s.records.ListEmbeddings(ctx)
	if err != nil {
		return nil, fmt.Errorf("list embeddings: %w: %w", domain.ErrExecution, err)
	}

	matches := make([]vector.Match, 0, len(records))
	for _, r := range records {
		score := vector.Round3(vector.Cosine(emb.Embedding, r.Vector))
		if score < opts.MinSimilarity {
			continue
		}
		matches = append(matches, vector.Match{SubjectID: r.SubjectID, Content: r.Content, Score: score})
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })

	found := len(matches)
	if opts.TopK > 0 && len(matches) > opts.TopK {
		matches = matches[:opts.TopK]
	}

	s.logger.Debug("Similarity scan completed",
		zap.String("query", normalized),
		zap.Int("records", len(records)),
		zap.Int("above_threshold", found),
		zap.Float64("min_similarity", opts.MinSimilarity),
		zap.Duration("scan", time.Since(start)),
	)
	return matches, nil
}
