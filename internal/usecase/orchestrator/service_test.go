package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/askdb/internal/domain"
	"github.com/kailas-cloud/askdb/internal/domain/history"
	"github.com/kailas-cloud/askdb/internal/domain/intent"
	"github.com/kailas-cloud/askdb/internal/domain/plan"
	"github.com/kailas-cloud/askdb/internal/domain/result"
	"github.com/kailas-cloud/askdb/internal/domain/schema"
	"github.com/kailas-cloud/askdb/internal/domain/strategy"
	"github.com/kailas-cloud/askdb/internal/domain/vector"
	logpkg "github.com/kailas-cloud/askdb/internal/logger"
	"github.com/kailas-cloud/askdb/internal/usecase/compile"
)

// --- Mocks ---

type mockClassifier struct {
	st    strategy.Strategy
	err   error
	delay time.Duration
	live  atomic.Int32
	peak  atomic.Int32
}

func (m *mockClassifier) Classify(context.Context, string) (strategy.Strategy, error) {
	n := m.live.Add(1)
	defer m.live.Add(-1)
	for {
		p := m.peak.Load()
		if n <= p || m.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(m.delay)
	return m.st, m.err
}

type mockTranslator struct {
	in    intent.Intent
	err   error
	calls atomic.Int32
}

func (m *mockTranslator) Translate(context.Context, string) (intent.Intent, error) {
	m.calls.Add(1)
	return m.in, m.err
}

type mockExecutor struct {
	res  result.Result
	err  error
	plan plan.Plan
}

func (m *mockExecutor) Execute(_ context.Context, p plan.Plan) (result.Result, error) {
	m.plan = p
	return m.res, m.err
}

type mockRetriever struct {
	matches []vector.Match
	err     error
	delay   time.Duration
	calls   atomic.Int32
}

func (m *mockRetriever) Retrieve(ctx context.Context, _ string) ([]vector.Match, error) {
	m.calls.Add(1)
	select {
	case <-time.After(m.delay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return m.matches, m.err
}

type mockSynthesizer struct {
	err   error
	calls atomic.Int32
	got   result.Result
}

func (m *mockSynthesizer) Synthesize(_ context.Context, question string, res result.Result) (string, error) {
	m.calls.Add(1)
	m.got = res
	if m.err != nil {
		return "", m.err
	}
	return "answer to " + question, nil
}

type mockHistory struct {
	mu      sync.Mutex
	err     error
	entries []history.Entry
}

func (m *mockHistory) Record(_ context.Context, q, a string, st strategy.Strategy) (history.Entry, error) {
	if m.err != nil {
		return history.Entry{}, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e := history.NewEntry(q, a, st, time.Now())
	m.entries = append(m.entries, e)
	return e, nil
}

type fixture struct {
	classifier *mockClassifier
	translator *mockTranslator
	executor   *mockExecutor
	retriever  *mockRetriever
	synth      *mockSynthesizer
	history    *mockHistory
}

func newFixture(st strategy.Strategy) *fixture {
	return &fixture{
		classifier: &mockClassifier{st: st},
		translator: &mockTranslator{in: intent.Intent{
			Entity:  schema.Users,
			Action:  intent.Count,
			Filters: []intent.Condition{{Field: "country", Op: intent.Eq, Value: "India"}},
		}},
		executor:  &mockExecutor{res: result.Count(12)},
		retriever: &mockRetriever{matches: []vector.Match{{SubjectID: 3, Content: "doc", Score: 0.81}}},
		synth:     &mockSynthesizer{},
		history:   &mockHistory{},
	}
}

func (f *fixture) service() *Service {
	return New(Deps{
		Classifier:  f.classifier,
		Translator:  f.translator,
		Compiler:    compile.New(0),
		Executor:    f.executor,
		Retriever:   f.retriever,
		Synthesizer: f.synth,
		History:     f.history,
	}, zap.NewNop())
}

func assertStage(t *testing.T, err error, stage domain.Stage, kind error) {
	t.Helper()
	got, ok := domain.StageOf(err)
	if !ok || got != stage {
		t.Errorf("expected stage %q, got %q (err %v)", stage, got, err)
	}
	if kind != nil && !errors.Is(err, kind) {
		t.Errorf("expected %v in chain, got %v", kind, err)
	}
}

// --- Tests ---

func TestAsk_Structured(t *testing.T) {
	f := newFixture(strategy.Structured)

	ans, err := f.service().Ask(context.Background(), "How many users are from India?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ans.Strategy != strategy.Structured || ans.Result.Kind() != result.KindCount || ans.Result.CountValue() != 12 {
		t.Errorf("unexpected answer %+v", ans)
	}
	if ans.Text != "answer to How many users are from India?" {
		t.Errorf("unexpected text %q", ans.Text)
	}
	if f.executor.plan.Special.Action != plan.ActionCount {
		t.Errorf("executor got plan %+v", f.executor.plan)
	}
	if f.retriever.calls.Load() != 0 {
		t.Error("structured strategy must not run the retriever")
	}
	if len(f.history.entries) != 1 || f.history.entries[0].ID != ans.ID {
		t.Errorf("expected one history entry matching the answer, got %+v", f.history.entries)
	}
}

func TestAsk_Semantic(t *testing.T) {
	f := newFixture(strategy.Semantic)

	ans, err := f.service().Ask(context.Background(), "people like software engineers")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ans.Result.Kind() != result.KindSimilarity || len(ans.Result.Matches()) != 1 {
		t.Errorf("unexpected result %+v", ans.Result)
	}
	if f.translator.calls.Load() != 0 {
		t.Error("semantic strategy must not translate")
	}
}

func TestAsk_HybridJoinsBoth(t *testing.T) {
	f := newFixture(strategy.Hybrid)
	f.retriever.delay = 30 * time.Millisecond

	ans, err := f.service().Ask(context.Background(), "software engineers from Asia")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ans.Result.Kind() != result.KindHybrid {
		t.Fatalf("expected hybrid result, got %q", ans.Result.Kind())
	}
	structured, ok := ans.Result.Structured()
	if !ok || structured.CountValue() != 12 {
		t.Errorf("structured half missing: %+v", structured)
	}
	if len(ans.Result.Matches()) != 1 {
		t.Errorf("semantic half missing: %+v", ans.Result.Matches())
	}
	if f.synth.got.Kind() != result.KindHybrid {
		t.Errorf("synthesizer got %q", f.synth.got.Kind())
	}
}

func TestAsk_HybridStructuredFailure(t *testing.T) {
	f := newFixture(strategy.Hybrid)
	f.executor.err = fmt.Errorf("count: %w: no such table", domain.ErrExecution)
	f.retriever.delay = time.Second

	start := time.Now()
	_, err := f.service().Ask(context.Background(), "software engineers from Asia")

	assertStage(t, err, domain.StageExecute, domain.ErrExecution)
	if f.synth.calls.Load() != 0 {
		t.Error("synthesis must not run after a failed retrieval")
	}
	if len(f.history.entries) != 0 {
		t.Error("nothing must be recorded after a failure")
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Error("failure should cancel the sibling retrieval")
	}
}

func TestAsk_StageErrors(t *testing.T) {
	tests := []struct {
		name   string
		st     strategy.Strategy
		mutate func(f *fixture)
		stage  domain.Stage
		kind   error
	}{
		{"classify", strategy.Structured, func(f *fixture) { f.classifier.err = domain.ErrCompletionProviderError }, domain.StageClassify, domain.ErrExternalService},
		{"translate", strategy.Structured, func(f *fixture) { f.translator.err = domain.ErrTranslationParse }, domain.StageTranslate, domain.ErrTranslationParse},
		{"compile", strategy.Structured, func(f *fixture) {
			f.translator.in = intent.Intent{Entity: schema.Users, Action: intent.Distinct}
		}, domain.StageExecute, domain.ErrCompilation},
		{"retrieve", strategy.Semantic, func(f *fixture) { f.retriever.err = domain.ErrEmbeddingProviderError }, domain.StageRetrieve, domain.ErrExternalService},
		{"synthesize", strategy.Semantic, func(f *fixture) { f.synth.err = domain.ErrCompletionProviderError }, domain.StageSynthesize, domain.ErrExternalService},
		{"history", strategy.Structured, func(f *fixture) { f.history.err = errors.New("redis down") }, domain.StageHistory, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(tc.st)
			tc.mutate(f)

			ans, err := f.service().Ask(context.Background(), "q")
			if err == nil {
				t.Fatal("expected error")
			}
			assertStage(t, err, tc.stage, tc.kind)
			if ans.Text != "" {
				t.Error("no partial answer must be returned")
			}
		})
	}
}

func TestAsk_NextQuestionAfterFailure(t *testing.T) {
	f := newFixture(strategy.Structured)
	svc := f.service()

	f.translator.err = domain.ErrTranslationParse
	if _, err := svc.Ask(context.Background(), "first"); err == nil {
		t.Fatal("expected first question to fail")
	}
	f.translator.err = nil
	if _, err := svc.Ask(context.Background(), "second"); err != nil {
		t.Fatalf("second question should succeed, got %v", err)
	}
}

func TestAsk_OneQuestionAtATime(t *testing.T) {
	f := newFixture(strategy.Semantic)
	f.classifier.delay = 5 * time.Millisecond
	svc := f.service()

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.Ask(context.Background(), fmt.Sprintf("q%d", i))
		}()
	}
	wg.Wait()

	if peak := f.classifier.peak.Load(); peak != 1 {
		t.Errorf("expected questions to run one at a time, saw %d in flight", peak)
	}
	if len(f.history.entries) != 8 {
		t.Errorf("expected 8 history entries, got %d", len(f.history.entries))
	}
}

func TestAsk_LogsThroughRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	ctx := logpkg.ContextWithLogger(context.Background(), zap.New(core).With(zap.String("request_id", "req-7")))

	if _, err := newFixture(strategy.Structured).service().Ask(ctx, "How many users are from India?"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	answered := logs.FilterMessage("Question answered").All()
	if len(answered) != 1 {
		t.Fatalf("expected one answered entry, got %d", logs.Len())
	}
	fields := answered[0].ContextMap()
	if fields["request_id"] != "req-7" || fields["strategy"] != "structured" {
		t.Errorf("unexpected fields %v", fields)
	}
}
