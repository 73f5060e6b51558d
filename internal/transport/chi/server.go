// Package chi serves the question-answering HTTP API.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/askdb/internal/domain"
	healthuc "github.com/kailas-cloud/askdb/internal/usecase/health"
)

// MaxQuestionLength bounds the question accepted by POST /v1/ask.
const MaxQuestionLength = 2000

// maxHistoryLimit caps GET /v1/history?limit.
const maxHistoryLimit = 500

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, stage string) bool

// Server holds the HTTP handlers.
type Server struct {
	asker         Asker
	history       HistoryReader
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(asker Asker, history HistoryReader, health HealthChecker, logger *zap.Logger) *Server {
	s := &Server{
		asker:   asker,
		history: history,
		health:  health,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrUnsupportedEntity, http.StatusBadRequest, ErrorCodeUnsupportedEntity),
		sentinelHandler(domain.ErrValidation, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(domain.ErrTranslationParse, http.StatusBadRequest, ErrorCodeTranslationFailed),
		sentinelHandler(domain.ErrCompilation, http.StatusBadRequest, ErrorCodeCompilationFailed),
		sentinelHandler(domain.ErrExternalService, http.StatusBadGateway, ErrorCodeProviderError),
		sentinelHandler(context.DeadlineExceeded, http.StatusGatewayTimeout, ErrorCodeTimeout),
		sentinelHandler(domain.ErrExecution, http.StatusInternalServerError, ErrorCodeExecutionFailed),
	}
	return s
}

// Ask handles POST /v1/ask.
func (s *Server) Ask(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	question := strings.TrimSpace(req.Question)
	if question == "" {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "question is required")
		return
	}
	if len(question) > MaxQuestionLength {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "question is too long")
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	answer, err := s.asker.Ask(ctx, question)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, AskResponse{
		ID:       answer.ID.String(),
		Question: answer.Question,
		Answer:   answer.Text,
		Strategy: string(answer.Strategy),
		Result:   answer.Result,
		Usage:    usage.Totals(),
	})
}

// ListHistory handles GET /v1/history.
func (s *Server) ListHistory(w http.ResponseWriter, r *http.Request) {
	var limit int
	if err := runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &limit); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "invalid limit")
		return
	}
	if limit < 0 || limit > maxHistoryLimit {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "limit must be between 0 and 500")
		return
	}

	entries, err := s.history.Recent(r.Context(), limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]HistoryItem, len(entries))
	for i, e := range entries {
		items[i] = HistoryItem{
			ID:       e.ID.String(),
			User:     e.Question,
			Agent:    e.Answer,
			Strategy: string(e.Strategy),
			AskedAt:  e.AskedAt,
		}
	}
	writeJSON(w, http.StatusOK, HistoryResponse{Items: items})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, HealthResponse{Status: string(report.Status), Checks: checks})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, stage string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeJSON(w, status, ErrorResponse{Code: code, Message: safeDomainMessage(err, sentinel), Stage: stage})
		return true
	}
}

// safeDomainMessage returns a client-facing message without exposing internals.
// Validation errors name the offending field; everything else reports the sentinel only.
func safeDomainMessage(err, sentinel error) string {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return ve.Error()
	}
	return sentinel.Error()
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	var stage string
	if st, ok := domain.StageOf(err); ok {
		stage = string(st)
	}
	s.logger.Warn("domain error", zap.String("stage", stage), zap.Error(err))
	for _, h := range s.errorHandlers {
		if h(w, err, stage) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Code:    ErrorCodeInternalError,
		Message: "internal error",
		Stage:   stage,
	})
}
