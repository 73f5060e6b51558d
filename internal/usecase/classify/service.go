// Package classify routes a question to a retrieval strategy.
package classify

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/askdb/internal/domain"
	"github.com/kailas-cloud/askdb/internal/domain/strategy"
)

// Purpose labels classifier completions.
const Purpose = "classify"

const classifierPrompt = `You are a query classifier. Analyze the user's question and determine the best approach.

Return ONLY one of these values:
- "structured" - for exact filters, counts, aggregations, rankings (e.g., "how many users from India", "top 5 car brands", "users who joined in 2025")
- "semantic" - for similarity or context queries (e.g., "find users similar to John", "users interested in technology", "people like software engineers")
- "hybrid" - when both approaches would help (e.g., "find Android users who might like gaming", "software engineers from Asia")

User question: "%s"

Response (one word only):`

// Service asks the model which strategy fits a question.
type Service struct {
	llm    domain.Completer
	logger *zap.Logger
}

// New creates a classifier.
func New(llm domain.Completer, logger *zap.Logger) *Service {
	return &Service{llm: llm, logger: logger}
}

// Classify returns the strategy for question. Replies that name no strategy
// map to structured.
func (s *Service) Classify(ctx context.Context, question string) (strategy.Strategy, error) {
	res, err := s.llm.Complete(ctx, domain.CompletionRequest{
		Purpose: Purpose,
		Prompt:  fmt.Sprintf(classifierPrompt, question),
	})
	if err != nil {
		return "", fmt.Errorf("complete: %w", err)
	}

	st := strategy.FromLabel(res.Text)
	s.logger.Debug("Question classified",
		zap.String("label", strings.TrimSpace(res.Text)),
		zap.String("strategy", string(st)),
	)
	return st, nil
}
