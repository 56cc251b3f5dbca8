package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/jobmatch/internal/domain"
	"github.com/kailas-cloud/jobmatch/internal/domain/candidate"
	"github.com/kailas-cloud/jobmatch/internal/logger"
	healthuc "github.com/kailas-cloud/jobmatch/internal/usecase/health"
	recommenduc "github.com/kailas-cloud/jobmatch/internal/usecase/recommend"
)

// maxRequestBody bounds the recommendation request body.
const maxRequestBody = 4 << 20

type recommender interface {
	Recommend(ctx context.Context, profile candidate.Profile, topK, minLocal int) (*recommenduc.Recommendation, error)
}

type healthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Limits bounds the top_k a caller may request.
type Limits struct {
	DefaultTopK int
	MaxTopK     int
}

// Server serves the recommendation API.
type Server struct {
	recommend     recommender
	health        healthChecker
	limits        Limits
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(recommend recommender, health healthChecker, limits Limits, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		recommend: recommend,
		health:    health,
		limits:    limits,
		logger:    log,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidTopK, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(domain.ErrNoProfileSignal, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(domain.ErrInvalidProfile, http.StatusBadRequest, ErrorCodeValidationFailed),
	}
	return s
}

// Routes registers the API on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/recommendations", s.CreateRecommendation)
	})
}

// CreateRecommendation handles POST /api/v1/recommendations.
func (s *Server) CreateRecommendation(w http.ResponseWriter, r *http.Request) {
	var req RecommendationRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	topK := s.limits.DefaultTopK
	if req.TopK != nil {
		topK = *req.TopK
	}
	if s.limits.MaxTopK > 0 && topK > s.limits.MaxTopK {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed,
			fmt.Sprintf("top_k must be at most %d", s.limits.MaxTopK))
		return
	}
	minLocal := 0
	if req.MinimumLocalCount != nil {
		if *req.MinimumLocalCount < 0 {
			writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "minimum_local_count must not be negative")
			return
		}
		minLocal = *req.MinimumLocalCount
	}

	profile, err := req.Profile.ToDomain()
	if err != nil {
		s.handleDomainError(r.Context(), w, err)
		return
	}

	rec, err := s.recommend.Recommend(r.Context(), profile, topK, minLocal)
	if err != nil {
		s.handleDomainError(r.Context(), w, err)
		return
	}

	setEmbeddingHeaders(w, rec)
	writeJSON(w, http.StatusOK, NewRecommendationResponse(rec))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func setEmbeddingHeaders(w http.ResponseWriter, rec *recommenduc.Recommendation) {
	if rec.EmbeddingCalls > 0 {
		w.Header().Set("X-Embedding-Tokens", strconv.Itoa(rec.EmbeddingTokens))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns the error text for known sentinels without exposing internals.
// Validation errors carry caller input only, so their full text is returned.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidTopK,
		domain.ErrNoProfileSignal,
		domain.ErrInvalidProfile,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return err.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(ctx context.Context, w http.ResponseWriter, err error) {
	log := logger.FromContextOr(ctx, s.logger)
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			log.Warn("domain error", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternal, "internal error")
}
