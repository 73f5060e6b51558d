package orchestrator

import (
	"context"

	"github.com/kailas-cloud/askdb/internal/domain/history"
	"github.com/kailas-cloud/askdb/internal/domain/intent"
	"github.com/kailas-cloud/askdb/internal/domain/plan"
	"github.com/kailas-cloud/askdb/internal/domain/result"
	"github.com/kailas-cloud/askdb/internal/domain/strategy"
	"github.com/kailas-cloud/askdb/internal/domain/vector"
)

// Classifier picks the retrieval strategy for a question.
type Classifier interface {
	Classify(ctx context.Context, question string) (strategy.Strategy, error)
}

// Translator turns a question into a validated intent.
type Translator interface {
	Translate(ctx context.Context, question string) (intent.Intent, error)
}

// Compiler lowers an intent into a store-agnostic plan.
type Compiler interface {
	Compile(in intent.Intent) (plan.Plan, error)
}

// Executor runs a plan against the tabular store.
type Executor interface {
	Execute(ctx context.Context, p plan.Plan) (result.Result, error)
}

// Retriever ranks knowledge-base documents against a question.
type Retriever interface {
	Retrieve(ctx context.Context, query string) ([]vector.Match, error)
}

// Synthesizer phrases a result as an answer.
type Synthesizer interface {
	Synthesize(ctx context.Context, question string, res result.Result) (string, error)
}

// History records answered questions.
type History interface {
	Record(ctx context.Context, question, answer string, st strategy.Strategy) (history.Entry, error)
}
