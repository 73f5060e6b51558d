package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation signals a structurally invalid query intent.
	ErrValidation = errors.New("validation failed")
	// ErrCompilation signals an intent that cannot be compiled into a plan.
	ErrCompilation = errors.New("compilation failed")
	// ErrUnsupportedEntity signals an intent addressing an unknown entity.
	ErrUnsupportedEntity = errors.New("unsupported entity")
	// ErrExecution signals a failed or malformed store call.
	ErrExecution = errors.New("execution failed")
	// ErrTranslationParse signals an intent payload that is not valid JSON after cleaning.
	ErrTranslationParse = errors.New("translation parse failed")
	// ErrExternalService signals an unreachable or failing language-model or embedding service.
	ErrExternalService = errors.New("external service error")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = fmt.Errorf("embedding provider error: %w", ErrExternalService)
	// ErrCompletionProviderError signals a chat completion provider failure.
	ErrCompletionProviderError = fmt.Errorf("completion provider error: %w", ErrExternalService)
)

// ValidationError carries the offending field and reason of a rejected intent.
type ValidationError struct {
	Field  string
	Reason string
	kind   error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", e.kind.Error(), e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", e.kind.Error(), e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.kind }

// NewValidationError creates a validation error for field.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason, kind: ErrValidation}
}

// NewUnsupportedEntityError creates a validation error for an unknown entity name.
func NewUnsupportedEntityError(entity string) error {
	return &ValidationError{Field: "entity", Reason: fmt.Sprintf("%q is not supported", entity), kind: ErrUnsupportedEntity}
}

// Stage names a step of question orchestration.
type Stage string

// Orchestration stages.
const (
	StageClassify   Stage = "classify"
	StageTranslate  Stage = "translate"
	StageExecute    Stage = "execute"
	StageRetrieve   Stage = "retrieve"
	StageSynthesize Stage = "synthesize"
	StageHistory    Stage = "history"
)

// StageError tags an orchestration failure with the stage that produced it.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string { return string(e.Stage) + ": " + e.Err.Error() }
func (e *StageError) Unwrap() error { return e.Err }

// NewStageError wraps err with stage.
func NewStageError(stage Stage, err error) error {
	return &StageError{Stage: stage, Err: err}
}

// StageOf returns the stage of the first StageError in err's chain.
func StageOf(err error) (Stage, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return "", false
}
