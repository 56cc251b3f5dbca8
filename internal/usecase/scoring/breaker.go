package scoring

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/jobmatch/internal/domain"
)

// BreakerSettings configures the circuit around the rerank capability.
type BreakerSettings struct {
	MaxRequests  uint32        // probes allowed while half-open
	Interval     time.Duration // closed-state counter reset period; zero never resets
	Timeout      time.Duration // how long the circuit stays open
	MinRequests  uint32
	FailureRatio float64
}

// DefaultBreakerSettings trips after half of at least 5 calls failed and probes again after 30s.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		MaxRequests:  1,
		Interval:     time.Minute,
		Timeout:      30 * time.Second,
		MinRequests:  5,
		FailureRatio: 0.5,
	}
}

// GuardedReranker wraps a Reranker with a circuit breaker.
// While the circuit is open calls fail fast with ErrRerankUnavailable.
type GuardedReranker struct {
	inner domain.Reranker
	cb    *gobreaker.CircuitBreaker[map[string]float64]
}

// NewGuardedReranker creates a breaker-protected reranker named after provider.
func NewGuardedReranker(inner domain.Reranker, provider string, s BreakerSettings, logger *zap.Logger) *GuardedReranker {
	if logger == nil {
		logger = zap.NewNop()
	}
	settings := gobreaker.Settings{
		Name:        "rerank-" + provider,
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests == 0 {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= s.MinRequests && ratio >= s.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Rerank circuit state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}
	return &GuardedReranker{
		inner: inner,
		cb:    gobreaker.NewCircuitBreaker[map[string]float64](settings),
	}
}

// Rerank forwards to the wrapped reranker unless the circuit is open.
func (g *GuardedReranker) Rerank(
	ctx context.Context, profileSummary string, items []domain.RerankItem,
) (map[string]float64, error) {
	scores, err := g.cb.Execute(func() (map[string]float64, error) {
		return g.inner.Rerank(ctx, profileSummary, items)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %w", domain.ErrRerankUnavailable, err)
	}
	return scores, err
}

// State returns the breaker state name: closed, half-open or open.
func (g *GuardedReranker) State() string {
	return g.cb.State().String()
}

// HealthCheck reports the wrapped capability's health, or unavailability while open.
func (g *GuardedReranker) HealthCheck(ctx context.Context) error {
	if g.cb.State() == gobreaker.StateOpen {
		return fmt.Errorf("%w: circuit open", domain.ErrRerankUnavailable)
	}
	if hc, ok := g.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}

func isCircuitOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
