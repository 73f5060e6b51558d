package domain

import "context"

// Completer sends a single prompt to a language model and returns its text reply.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (CompletionResult, error)
}

// CompletionRequest is one prompt/response exchange with the model.
type CompletionRequest struct {
	// Purpose labels the call in metrics and logs (classify, translate, synthesize).
	Purpose string
	System  string
	Prompt  string
	// JSON asks the provider for a JSON object response when supported.
	JSON bool
}

// CompletionResult carries the model reply and token usage.
type CompletionResult struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
}
