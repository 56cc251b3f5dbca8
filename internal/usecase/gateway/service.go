// Package gateway fans a job query out to the configured external providers and
// merges what comes back. Provider failures are absorbed; Fetch never fails.
package gateway

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/kailas-cloud/jobmatch/internal/domain"
	"github.com/kailas-cloud/jobmatch/internal/domain/job"
	"github.com/kailas-cloud/jobmatch/internal/logger"
	"github.com/kailas-cloud/jobmatch/internal/metrics"
)

// Defaults applied when a Source leaves them zero.
const (
	DefaultTimeout  = 10 * time.Second
	DefaultCooldown = 60 * time.Second
)

// Source binds a provider to its call policy.
type Source struct {
	Provider Provider
	Timeout  time.Duration
	Cooldown time.Duration
	// RequestsPerMinute paces calls client-side; zero disables pacing.
	RequestsPerMinute int
}

// Outcome records what happened to one provider during a fetch.
type Outcome struct {
	Provider string
	Status   string // one of the metrics.Provider* outcomes
	Postings int
}

// Report summarises a fetch in configured provider order.
type Report struct {
	Outcomes []Outcome
}

type source struct {
	provider Provider
	timeout  time.Duration
	cooldown time.Duration
	limiter  *rate.Limiter
}

// Service is the External Source Gateway.
type Service struct {
	sources    []source
	cooldowns  *CooldownRegistry
	concurrent bool
	logger     *zap.Logger
}

// New creates a gateway over sources in priority order. concurrent=false dispatches one provider
// at a time and stops once enough postings were collected.
func New(sources []Source, cooldowns *CooldownRegistry, concurrent bool, log *zap.Logger) *Service {
	if cooldowns == nil {
		cooldowns = NewCooldownRegistry(nil)
	}
	if log == nil {
		log = zap.NewNop()
	}
	out := make([]source, 0, len(sources))
	for _, src := range sources {
		s := source{provider: src.Provider, timeout: src.Timeout, cooldown: src.Cooldown}
		if s.timeout <= 0 {
			s.timeout = DefaultTimeout
		}
		if s.cooldown <= 0 {
			s.cooldown = DefaultCooldown
		}
		if src.RequestsPerMinute > 0 {
			s.limiter = rate.NewLimiter(rate.Limit(float64(src.RequestsPerMinute)/60), 1)
		}
		out = append(out, s)
	}
	return &Service{sources: out, cooldowns: cooldowns, concurrent: concurrent, logger: log}
}

// Providers returns the configured provider names in order.
func (s *Service) Providers() []string {
	names := make([]string, len(s.sources))
	for i, src := range s.sources {
		names[i] = src.provider.Name()
	}
	return names
}

type call struct {
	postings []job.Posting
	status   string
}

// Fetch asks providers for postings matching q and returns at most q.Limit of them,
// accumulated in configured provider order. An empty result is not an error.
func (s *Service) Fetch(ctx context.Context, q job.SearchQuery) ([]job.Posting, Report) {
	report := Report{Outcomes: make([]Outcome, 0, len(s.sources))}
	if q.Limit <= 0 || len(s.sources) == 0 {
		return nil, report
	}

	log := logger.FromContextOr(ctx, s.logger)
	calls := make([]call, len(s.sources))

	if s.concurrent {
		var g errgroup.Group
		for i := range s.sources {
			if status, ok := s.admit(&s.sources[i], log); !ok {
				calls[i].status = status
				continue
			}
			g.Go(func() error {
				calls[i] = s.invoke(ctx, &s.sources[i], q, log)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		collected := 0
		for i := range s.sources {
			if collected >= q.Limit || ctx.Err() != nil {
				break
			}
			if status, ok := s.admit(&s.sources[i], log); !ok {
				calls[i].status = status
				continue
			}
			calls[i] = s.invoke(ctx, &s.sources[i], q, log)
			collected += len(calls[i].postings)
		}
	}

	var out []job.Posting
	for i, c := range calls {
		if c.status == "" {
			continue
		}
		used := 0
		for _, p := range c.postings {
			if len(out) >= q.Limit {
				break
			}
			out = append(out, p)
			used++
		}
		report.Outcomes = append(report.Outcomes, Outcome{
			Provider: s.sources[i].provider.Name(),
			Status:   c.status,
			Postings: used,
		})
	}
	return out, report
}

// admit applies the pre-call policy: credentials, cooldown, pacing.
func (s *Service) admit(src *source, log *zap.Logger) (string, bool) {
	name := src.provider.Name()
	status := ""
	switch {
	case !src.provider.HasCredentials():
		log.Info("Job provider skipped: missing credentials", zap.String("provider", name))
		status = metrics.ProviderSkippedCredentials
	default:
		if until, cooling := s.cooldowns.Active(name); cooling {
			log.Debug("Job provider skipped: cooling down",
				zap.String("provider", name), zap.Time("until", until))
			status = metrics.ProviderSkippedCooldown
		} else if src.limiter != nil && !src.limiter.Allow() {
			log.Debug("Job provider skipped: request pacing", zap.String("provider", name))
			status = metrics.ProviderSkippedPacing
		}
	}
	if status != "" {
		metrics.ProviderRequestsTotal.WithLabelValues(name, status).Inc()
		return status, false
	}
	return "", true
}

// invoke calls one provider under its own timeout and classifies the result.
func (s *Service) invoke(ctx context.Context, src *source, q job.SearchQuery, log *zap.Logger) call {
	name := src.provider.Name()
	callCtx, cancel := context.WithTimeout(ctx, src.timeout)
	defer cancel()

	start := time.Now()
	postings, err := src.provider.Search(callCtx, q)
	metrics.ProviderRequestDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())

	status := metrics.ProviderOK
	if err != nil {
		postings = nil
		status = s.classify(callCtx, name, src, err, log)
	} else {
		metrics.ProviderPostingsTotal.WithLabelValues(name).Add(float64(len(postings)))
		log.Debug("Job provider returned postings",
			zap.String("provider", name), zap.Int("postings", len(postings)))
	}
	metrics.ProviderRequestsTotal.WithLabelValues(name, status).Inc()
	return call{postings: postings, status: status}
}

func (s *Service) classify(callCtx context.Context, name string, src *source, err error, log *zap.Logger) string {
	var throttled *domain.ThrottledError
	switch {
	case errors.As(err, &throttled) || errors.Is(err, domain.ErrProviderThrottled):
		wait := src.cooldown
		if throttled != nil && throttled.RetryAfter > 0 {
			wait = throttled.RetryAfter
		}
		until := s.cooldowns.Trip(name, wait)
		log.Warn("Job provider throttled, cooling down",
			zap.String("provider", name), zap.Time("until", until), zap.Error(err))
		return metrics.ProviderThrottled
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded):
		log.Warn("Job provider timed out",
			zap.String("provider", name), zap.Duration("timeout", src.timeout), zap.Error(err))
		return metrics.ProviderTimeout
	default:
		log.Warn("Job provider failed", zap.String("provider", name), zap.Error(err))
		return metrics.ProviderError
	}
}
