// Package synthesize phrases a retrieval result as a conversational answer.
package synthesize

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/askdb/internal/domain"
	"github.com/kailas-cloud/askdb/internal/domain/result"
)

// Purpose labels synthesis completions.
const Purpose = "synthesize"

const answerSystem = "You are a friendly, human-like data assistant."

const answerTemplate = `You are given:
- A user's natural language question
- The result of that question in JSON

Your task:
- Answer the user's question using ONLY the provided result.
- Do NOT invent or assume any information.
- Do NOT mention SQL, queries, databases, or tables unless the user explicitly asked about them.

Empty result rules:
- If the result is empty, do NOT say generic lines like "No matching records were found." or "No data found."
- Respond in a natural, contextual way using words from the user's question.
  - Question: "How many users are from India?" Answer: "I couldn't find any users from India."
  - Question: "List female users from France" Answer: "I couldn't find any female users from France."

Aggregate result rules:
- If the result contains a count or aggregate value, state it plainly, e.g. "There are 12 users from Germany."

Row result rules:
- If the result contains rows, summarize the key information briefly and clearly.

Style and tone:
- Sound natural and conversational, clear and direct.
- Do NOT say "Based on the result you provided" or "According to the data".
- Keep it short unless more detail is genuinely useful.
- Do not add extra explanations or disclaimers.

User question:
%s

Result data:
%s`

// Service turns {question, result} into answer text.
type Service struct {
	llm    domain.Completer
	logger *zap.Logger
}

// New creates a synthesizer.
func New(llm domain.Completer, logger *zap.Logger) *Service {
	return &Service{llm: llm, logger: logger}
}

// Synthesize serializes res and asks the model for an answer grounded in it.
func (s *Service) Synthesize(ctx context.Context, question string, res result.Result) (string, error) {
	payload, err := json.Marshal(res)
	if err != nil {
		return "", fmt.Errorf("encode result: %w", err)
	}

	out, err := s.llm.Complete(ctx, domain.CompletionRequest{
		Purpose: Purpose,
		System:  answerSystem,
		Prompt:  fmt.Sprintf(answerTemplate, question, payload),
	})
	if err != nil {
		return "", fmt.Errorf("complete: %w", err)
	}

	s.logger.Debug("Answer synthesized",
		zap.String("kind", string(res.Kind())),
		zap.Int("payload_bytes", len(payload)),
	)
	return strings.TrimSpace(out.Text), nil
}
