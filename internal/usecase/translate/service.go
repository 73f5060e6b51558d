// Package translate turns a natural-language question into a validated query intent.
package translate

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/askdb/internal/domain"
	"github.com/kailas-cloud/askdb/internal/domain/intent"
	"github.com/kailas-cloud/askdb/internal/domain/schema"
	"github.com/kailas-cloud/askdb/internal/metrics"
)

// Purpose labels translator completions.
const Purpose = "translate"

// Service asks the model for an intent and validates it.
type Service struct {
	llm    domain.Completer
	entity schema.Entity
	logger *zap.Logger
}

// New creates a translator for the Users entity.
func New(llm domain.Completer, logger *zap.Logger) *Service {
	return &Service{llm: llm, entity: schema.Users, logger: logger}
}

// Translate returns the validated intent for question. Model failures surface
// as ErrExternalService, undecodable replies as ErrTranslationParse and
// rejected intents as ErrValidation or ErrUnsupportedEntity.
func (s *Service) Translate(ctx context.Context, question string) (intent.Intent, error) {
	res, err := s.llm.Complete(ctx, domain.CompletionRequest{
		Purpose: Purpose,
		System:  plannerSystem,
		Prompt:  plannerPrompt(s.entity, question),
		JSON:    true,
	})
	if err != nil {
		return intent.Intent{}, fmt.Errorf("complete: %w", err)
	}

	raw, err := Parse(res.Text)
	if err != nil {
		s.logger.Warn("Undecodable intent payload", zap.String("payload", res.Text), zap.Error(err))
		return intent.Intent{}, err
	}

	in, err := intent.Validate(raw)
	if err != nil {
		return intent.Intent{}, fmt.Errorf("validate intent: %w", err)
	}

	s.reportFallbacks(in)
	s.logger.Debug("Intent translated",
		zap.String("action", string(in.Action)),
		zap.Int("filters", len(in.Filters)),
		zap.Int("or_filters", len(in.OrFilters)),
	)
	return in, nil
}

// Parse cleans a model reply and decodes it into a raw intent.
func Parse(payload string) (intent.Raw, error) {
	var raw intent.Raw
	if err := json.Unmarshal([]byte(Clean(payload)), &raw); err != nil {
		return intent.Raw{}, fmt.Errorf("%w: %w", domain.ErrTranslationParse, err)
	}
	return raw, nil
}

func (s *Service) reportFallbacks(in intent.Intent) {
	for _, group := range [][]intent.Condition{in.Filters, in.OrFilters} {
		for _, c := range group {
			if c.Op.IsKnown() {
				continue
			}
			metrics.OperatorFallbackTotal.WithLabelValues(string(c.Op)).Inc()
			s.logger.Warn("Unknown filter operator, using free-text fallback",
				zap.String("field", c.Field),
				zap.String("op", string(c.Op)),
			)
		}
	}
}
