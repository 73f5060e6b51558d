package chi

import (
	"context"

	"github.com/kailas-cloud/askdb/internal/domain/history"
	healthuc "github.com/kailas-cloud/askdb/internal/usecase/health"
	"github.com/kailas-cloud/askdb/internal/usecase/orchestrator"
)

// Asker answers questions.
type Asker interface {
	Ask(ctx context.Context, question string) (orchestrator.Answer, error)
}

// HistoryReader lists recent conversation entries.
type HistoryReader interface {
	Recent(ctx context.Context, limit int) ([]history.Entry, error)
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}
