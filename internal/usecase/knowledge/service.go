// Package knowledge builds the similarity knowledge base from the users table.
package knowledge

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/askdb/internal/domain"
	"github.com/kailas-cloud/askdb/internal/domain/user"
	"github.com/kailas-cloud/askdb/internal/domain/vector"
	"github.com/kailas-cloud/askdb/internal/metrics"
)

// DefaultBatchSize is the number of documents embedded per provider call.
const DefaultBatchSize = 32

// Summary reports the outcome of a build.
type Summary struct {
	Total   int
	Indexed int
	Failed  int
	Stored  int64 // documents in the knowledge base after the build
}

// Service renders, embeds and stores one document per user.
type Service struct {
	users     UserLister
	writer    EmbeddingWriter
	embedder  domain.Embedder
	batchSize int
	logger    *zap.Logger
}

// New creates a knowledge-base builder. batchSize <= 0 uses DefaultBatchSize.
func New(users UserLister, writer EmbeddingWriter, embedder domain.Embedder, batchSize int, logger *zap.Logger) *Service {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Service{users: users, writer: writer, embedder: embedder, batchSize: batchSize, logger: logger}
}

// Build indexes every user. A user whose document cannot be embedded or stored
// is logged and skipped; only failing to list users aborts the build.
func (s *Service) Build(ctx context.Context) (Summary, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("list users: %w", err)
	}

	start := time.Now()
	sum := Summary{Total: len(users)}
	for offset := 0; offset < len(users); offset += s.batchSize {
		if err := ctx.Err(); err != nil {
			return sum, fmt.Errorf("build interrupted: %w", err)
		}
		batch := users[offset:min(offset+s.batchSize, len(users))]
		indexed := s.indexBatch(ctx, batch)
		sum.Indexed += indexed
		sum.Failed += len(batch) - indexed
	}

	stored, err := s.writer.Count(ctx)
	if err != nil {
		return sum, fmt.Errorf("count embeddings: %w", err)
	}
	sum.Stored = stored

	s.logger.Info("Knowledge base build complete",
		zap.Int("total", sum.Total),
		zap.Int("indexed", sum.Indexed),
		zap.Int("failed", sum.Failed),
		zap.Int64("stored", sum.Stored),
		zap.Duration("duration", time.Since(start)),
	)
	return sum, nil
}

func (s *Service) indexBatch(ctx context.Context, batch []user.User) int {
	docs := make([]string, len(batch))
	for i, u := range batch {
		docs[i] = Document(u)
	}

	vectors := s.embedBatch(ctx, docs)

	indexed := 0
	for i, u := range batch {
		log := s.logger.With(zap.Int64("user_id", u.ID))
		vec := vectors[i]
		if len(vec) == 0 {
			var err error
			if vec, err = s.embedOne(ctx, docs[i]); err != nil {
				metrics.KnowledgeDocumentsTotal.WithLabelValues("failed").Inc()
				log.Warn("Skipping user: embedding failed", zap.Error(err))
				continue
			}
		}
		rec := vector.Record{SubjectID: u.ID, Content: docs[i], Vector: vec}
		if err := s.writer.UpsertEmbedding(ctx, rec); err != nil {
			metrics.KnowledgeDocumentsTotal.WithLabelValues("failed").Inc()
			log.Warn("Skipping user: store failed", zap.Error(err))
			continue
		}
		metrics.KnowledgeDocumentsTotal.WithLabelValues("indexed").Inc()
		indexed++
	}
	return indexed
}

// embedBatch returns one vector per doc, nil where the batch call could not
// provide one. Callers retry nil entries individually.
func (s *Service) embedBatch(ctx context.Context, docs []string) [][]float32 {
	out := make([][]float32, len(docs))
	be, ok := s.embedder.(domain.BatchEmbedder)
	if !ok || len(docs) < 2 {
		return out
	}
	res, err := be.BatchEmbed(ctx, docs)
	if err != nil || len(res.Embeddings) != len(docs) {
		s.logger.Warn("Batch embedding failed, retrying documents one by one",
			zap.Int("batch_size", len(docs)), zap.Error(err))
		return out
	}
	copy(out, res.Embeddings)
	return out
}

func (s *Service) embedOne(ctx context.Context, doc string) ([]float32, error) {
	res, err := s.embedder.Embed(ctx, doc)
	if err != nil {
		return nil, err
	}
	if len(res.Embedding) == 0 {
		return nil, fmt.Errorf("%w: empty vector", domain.ErrEmbeddingProviderError)
	}
	return res.Embedding, nil
}
