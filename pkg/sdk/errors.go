package askdb

import "github.com/kailas-cloud/askdb/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrValidation        = domain.ErrValidation
	ErrCompilation       = domain.ErrCompilation
	ErrUnsupportedEntity = domain.ErrUnsupportedEntity
	ErrExecution         = domain.ErrExecution
	ErrTranslationParse  = domain.ErrTranslationParse
	ErrExternalService   = domain.ErrExternalService
)

// StageOf reports which step of answering failed: classify, translate,
// execute, retrieve, synthesize or history.
func StageOf(err error) (string, bool) {
	stage, ok := domain.StageOf(err)
	return string(stage), ok
}
