package domain

import (
	"context"
	"sync/atomic"
)

type usageKey struct{}

// Usage collects model token usage for one question. The transport puts a
// pointer into the context before asking; adapters add to it as they call the
// provider. Safe for concurrent use by the hybrid branches.
type Usage struct {
	promptTokens     atomic.Int64
	completionTokens atomic.Int64
	embeddingTokens  atomic.Int64
	calls            atomic.Int64
}

// UsageTotals is a snapshot of Usage.
type UsageTotals struct {
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
	EmbeddingTokens  int64 `json:"embedding_tokens"`
	Calls            int64 `json:"calls"`
}

// NewContextWithUsage returns a context carrying a fresh usage collector.
func NewContextWithUsage(ctx context.Context) (context.Context, *Usage) {
	u := &Usage{}
	return context.WithValue(ctx, usageKey{}, u), u
}

// UsageFromContext extracts the usage collector from context. Returns nil if not set.
func UsageFromContext(ctx context.Context) *Usage {
	u, _ := ctx.Value(usageKey{}).(*Usage)
	return u
}

// AddCompletion records one chat completion. A nil receiver is a no-op.
func (u *Usage) AddCompletion(prompt, completion int) {
	if u == nil {
		return
	}
	u.promptTokens.Add(int64(prompt))
	u.completionTokens.Add(int64(completion))
	u.calls.Add(1)
}

// AddEmbedding records one embedding call, including cache hits with zero tokens.
func (u *Usage) AddEmbedding(tokens int) {
	if u == nil {
		return
	}
	u.embeddingTokens.Add(int64(tokens))
	u.calls.Add(1)
}

// Totals returns the current counts.
func (u *Usage) Totals() UsageTotals {
	if u == nil {
		return UsageTotals{}
	}
	return UsageTotals{
		PromptTokens:     u.promptTokens.Load(),
		CompletionTokens: u.completionTokens.Load(),
		EmbeddingTokens:  u.embeddingTokens.Load(),
		Calls:            u.calls.Load(),
	}
}
