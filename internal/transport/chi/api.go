package chi

import (
	"time"

	"github.com/kailas-cloud/askdb/internal/domain"
	"github.com/kailas-cloud/askdb/internal/domain/result"
)

// ErrorCode is a machine-readable error code of ErrorResponse.
type ErrorCode string

// Error codes.
const (
	ErrorCodeBadRequest        ErrorCode = "bad_request"
	ErrorCodeUnauthorized      ErrorCode = "unauthorized"
	ErrorCodeValidationFailed  ErrorCode = "validation_failed"
	ErrorCodeUnsupportedEntity ErrorCode = "unsupported_entity"
	ErrorCodeTranslationFailed ErrorCode = "translation_failed"
	ErrorCodeCompilationFailed ErrorCode = "compilation_failed"
	ErrorCodeExecutionFailed   ErrorCode = "execution_failed"
	ErrorCodeProviderError     ErrorCode = "provider_error"
	ErrorCodeTimeout           ErrorCode = "timeout"
	ErrorCodeInternalError     ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	// Stage names the orchestration step that failed, when known.
	Stage string `json:"stage,omitempty"`
}

// AskRequest is the body of POST /v1/ask.
type AskRequest struct {
	Question string `json:"question"`
}

// AskResponse is the answer to one question.
type AskResponse struct {
	ID       string             `json:"id"`
	Question string             `json:"question"`
	Answer   string             `json:"answer"`
	Strategy string             `json:"strategy"`
	Result   result.Result      `json:"result"`
	Usage    domain.UsageTotals `json:"usage"`
}

// HistoryItem is one entry of GET /v1/history.
type HistoryItem struct {
	ID       string    `json:"id"`
	User     string    `json:"user"`
	Agent    string    `json:"agent"`
	Strategy string    `json:"strategy"`
	AskedAt  time.Time `json:"asked_at"`
}

// HistoryResponse lists entries oldest first.
type HistoryResponse struct {
	Items []HistoryItem `json:"items"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
