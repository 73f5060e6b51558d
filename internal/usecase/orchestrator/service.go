// Package orchestrator answers a question end to end: classify, retrieve, synthesize, record.
package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/askdb/internal/domain"
	"github.com/kailas-cloud/askdb/internal/domain/history"
	"github.com/kailas-cloud/askdb/internal/domain/intent"
	"github.com/kailas-cloud/askdb/internal/domain/result"
	"github.com/kailas-cloud/askdb/internal/domain/strategy"
	"github.com/kailas-cloud/askdb/internal/domain/vector"
	logpkg "github.com/kailas-cloud/askdb/internal/logger"
	"github.com/kailas-cloud/askdb/internal/metrics"
)

// Answer is the outcome of one question.
type Answer struct {
	ID       uuid.UUID
	Question string
	Text     string
	Strategy strategy.Strategy
	Result   result.Result
}

// Deps are the collaborators of the orchestrator.
type Deps struct {
	Classifier  Classifier
	Translator  Translator
	Compiler    Compiler
	Executor    Executor
	Retriever   Retriever
	Synthesizer Synthesizer
	History     History
}

// Service runs questions one at a time.
type Service struct {
	deps   Deps
	mu     sync.Mutex
	logger *zap.Logger
}

// New creates an orchestrator.
func New(deps Deps, logger *zap.Logger) *Service {
	return &Service{deps: deps, logger: logger}
}

// Ask answers question. A failure is returned as a *domain.StageError naming
// the stage that failed; no partial answer is produced and nothing is recorded.
func (s *Service) Ask(ctx context.Context, question string) (Answer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, log := logpkg.WithFields(ctx, s.logger, zap.String("question", question))

	st, err := timed(domain.StageClassify, func() (strategy.Strategy, error) {
		return s.deps.Classifier.Classify(ctx, question)
	})
	if err != nil {
		return s.fail(log, "", err)
	}
	log = log.With(zap.String("strategy", string(st)))
	log.Info("Question classified")

	res, err := s.retrieve(ctx, st, question)
	if err != nil {
		return s.fail(log, st, err)
	}

	text, err := timed(domain.StageSynthesize, func() (string, error) {
		return s.deps.Synthesizer.Synthesize(ctx, question, res)
	})
	if err != nil {
		return s.fail(log, st, err)
	}

	entry, err := timed(domain.StageHistory, func() (history.Entry, error) {
		return s.deps.History.Record(ctx, question, text, st)
	})
	if err != nil {
		return s.fail(log, st, err)
	}

	metrics.QuestionsTotal.WithLabelValues(string(st), "ok").Inc()
	log.Info("Question answered", zap.String("result", string(res.Kind())))
	return Answer{ID: entry.ID, Question: question, Text: text, Strategy: st, Result: res}, nil
}

func (s *Service) retrieve(ctx context.Context, st strategy.Strategy, question string) (result.Result, error) {
	switch st {
	case strategy.Semantic:
		matches, err := s.semantic(ctx, question)
		if err != nil {
			return result.Result{}, err
		}
		return result.Similarity(matches), nil
	case strategy.Hybrid:
		return s.hybrid(ctx, question)
	default:
		return s.structured(ctx, question)
	}
}

// hybrid runs both retrievals concurrently and waits for both; the first
// failure cancels the other and is returned.
func (s *Service) hybrid(ctx context.Context, question string) (result.Result, error) {
	var (
		structured result.Result
		matches    []vector.Match
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		structured, err = s.structured(gctx, question)
		return err
	})
	g.Go(func() error {
		var err error
		matches, err = s.semantic(gctx, question)
		return err
	})
	if err := g.Wait(); err != nil {
		return result.Result{}, err
	}
	return result.Hybrid(structured, matches), nil
}

func (s *Service) structured(ctx context.Context, question string) (result.Result, error) {
	in, err := timed(domain.StageTranslate, func() (intent.Intent, error) {
		return s.deps.Translator.Translate(ctx, question)
	})
	if err != nil {
		return result.Result{}, err
	}

	return timed(domain.StageExecute, func() (result.Result, error) {
		p, err := s.deps.Compiler.Compile(in)
		if err != nil {
			return result.Result{}, err
		}
		return s.deps.Executor.Execute(ctx, p)
	})
}

func (s *Service) semantic(ctx context.Context, question string) ([]vector.Match, error) {
	return timed(domain.StageRetrieve, func() ([]vector.Match, error) {
		return s.deps.Retriever.Retrieve(ctx, question)
	})
}

func (s *Service) fail(log *zap.Logger, st strategy.Strategy, err error) (Answer, error) {
	label := string(st)
	if label == "" {
		label = "unknown"
	}
	metrics.QuestionsTotal.WithLabelValues(label, "error").Inc()
	stage, _ := domain.StageOf(err)
	log.Error("Question failed", zap.String("stage", string(stage)), zap.Error(err))
	return Answer{}, err
}

// timed runs fn as stage, records its duration and tags any error with stage.
func timed[T any](stage domain.Stage, fn func() (T, error)) (T, error) {
	start := time.Now()
	v, err := fn()
	metrics.StageDuration.WithLabelValues(string(stage)).Observe(time.Since(start).Seconds())
	if err != nil {
		var zero T
		return zero, domain.NewStageError(stage, err)
	}
	return v, nil
}
