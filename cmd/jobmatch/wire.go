package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/jobmatch/internal/config"
	dbRedis "github.com/kailas-cloud/jobmatch/internal/db/redis"
	"github.com/kailas-cloud/jobmatch/internal/domain"
	logpkg "github.com/kailas-cloud/jobmatch/internal/logger"
	"github.com/kailas-cloud/jobmatch/internal/metrics"
	"github.com/kailas-cloud/jobmatch/internal/repository/embcache"
	"github.com/kailas-cloud/jobmatch/internal/repository/jobindex"
	geminiTransport "github.com/kailas-cloud/jobmatch/internal/transport/gemini"
	"github.com/kailas-cloud/jobmatch/internal/transport/jobboard"
	openaiTransport "github.com/kailas-cloud/jobmatch/internal/transport/openai"
	aggregateuc "github.com/kailas-cloud/jobmatch/internal/usecase/aggregate"
	embeddinguc "github.com/kailas-cloud/jobmatch/internal/usecase/embedding"
	gatewayuc "github.com/kailas-cloud/jobmatch/internal/usecase/gateway"
	healthuc "github.com/kailas-cloud/jobmatch/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/jobmatch/internal/usecase/ingest"
	recommenduc "github.com/kailas-cloud/jobmatch/internal/usecase/recommend"
	scoringuc "github.com/kailas-cloud/jobmatch/internal/usecase/scoring"
)

// app is the composition root shared by all subcommands.
type app struct {
	env       string
	cfg       config.Config
	logger    *zap.Logger
	store     *dbRedis.Store
	index     *jobindex.Repo
	embedder  domain.Embedder
	gateway   *gatewayuc.Service
	recommend *recommenduc.Service
	ingest    *ingestuc.Service
	health    *healthuc.Service
}

func loadConfig() (string, config.Config, error) {
	env := flagEnv
	if env == "" {
		env = config.GetEnv()
	}
	var (
		cfg config.Config
		err error
	)
	if flagConfig != "" {
		cfg, err = config.LoadFile(flagConfig)
	} else {
		cfg, err = config.Load(env)
	}
	if err != nil {
		return "", config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return env, cfg, nil
}

// newApp loads configuration, connects to the store and builds every service.
func newApp(ctx context.Context) (*app, error) {
	env, cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		DB:       cfg.Database.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("create database store: %w", err)
	}
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Warn("Database not ready, local index unavailable", zap.Error(err))
	} else {
		logger.Info("Connected to database", zap.Strings("addrs", cfg.Database.Addrs))
	}

	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterSourcingMetrics()

	a := &app{env: env, cfg: cfg, logger: logger, store: store}
	a.index = jobindex.New(store, cfg.Embedding.Dimensions).
		WithHNSW(cfg.Index.HNSWM, cfg.Index.HNSWEFConstruct)
	a.embedder = buildEmbedder(&cfg.Embedding, store, logger)

	reranker, rerankHealth, err := buildReranker(ctx, &cfg.Reranker, logger)
	if err != nil {
		store.Close()
		return nil, err
	}

	a.gateway = gatewayuc.New(
		buildSources(&cfg.Providers),
		gatewayuc.NewCooldownRegistry(nil),
		cfg.Providers.Dispatch == config.DispatchConcurrent,
		logger,
	)
	logger.Info("Job providers configured", zap.Strings("providers", a.gateway.Providers()))

	collector := aggregateuc.New(a.index, a.gateway,
		cfg.Recommend.LocalPoolSize, cfg.Recommend.ExternalMaxResults, logger)
	scorer := scoringuc.New(
		scoringuc.Weights{Vector: cfg.Recommend.Weights.Vector, Skills: cfg.Recommend.Weights.Skills},
		a.embedder,
		reranker,
		scoringuc.RerankOptions{
			Provider: cfg.Reranker.Provider,
			Weight:   cfg.Reranker.Weight,
			TopM:     cfg.Reranker.TopM,
			Timeout:  time.Duration(cfg.Reranker.TimeoutSec) * time.Second,
		},
		logger,
	)
	a.recommend = recommenduc.New(a.embedder, collector, scorer, recommenduc.Config{
		MinimumLocalCount: cfg.Recommend.MinimumLocalCount,
		ResumeWeight:      cfg.Embedding.ResumeWeight,
		InterviewWeight:   cfg.Embedding.InterviewWeight,
	}, logger)
	a.ingest = ingestuc.New(a.index, a.embedder, cfg.Index.IngestBatchSize, logger)

	embedHealth, _ := a.embedder.(healthuc.Checker)
	a.health = healthuc.New(store, embedHealth, rerankHealth, logger)

	return a, nil
}

func (a *app) Close() {
	a.store.Close()
	_ = a.logger.Sync()
}

// buildEmbedder assembles the decorator chain: provider -> cached -> instrumented.
func buildEmbedder(cfg *config.EmbeddingConfig, store *dbRedis.Store, logger *zap.Logger) domain.Embedder {
	var embedder domain.Embedder
	switch cfg.Provider {
	case config.EmbeddingHash:
		embedder = embeddinguc.NewHashingEmbedder(cfg.Dimensions)
	default:
		base := openaiTransport.NewEmbedder(&openaiTransport.Config{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
			Provider:   cfg.Provider,
			Logger:     logger,
		})
		embedder = base
		if cfg.CacheTTLSec >= 0 {
			embedder = embcache.New(base, store, embcache.Options{
				Namespace:  cfg.Model,
				TTL:        time.Duration(cfg.CacheTTLSec) * time.Second,
				Dimensions: cfg.Dimensions,
			}, metrics.EmbeddingCacheTotal, logger)
		}
	}

	logger.Info("Embedder created",
		zap.String("provider", cfg.Provider),
		zap.String("model", cfg.Model),
		zap.Int("dimensions", cfg.Dimensions),
	)
	return embeddinguc.NewInstrumentedEmbedder(embedder, cfg.Provider, cfg.Model, logger)
}

// buildReranker wraps the configured provider in a circuit breaker.
// Both results are untyped nils when no provider is configured.
func buildReranker(
	ctx context.Context, cfg *config.RerankerConfig, logger *zap.Logger,
) (domain.Reranker, healthuc.Checker, error) {
	var inner domain.Reranker
	switch cfg.Provider {
	case config.RerankerNone:
		return nil, nil, nil
	case config.RerankerOpenAI:
		inner = openaiTransport.NewReranker(&openaiTransport.Config{
			APIKey:   cfg.APIKey,
			BaseURL:  cfg.BaseURL,
			Model:    cfg.Model,
			Provider: cfg.Provider,
			Logger:   logger,
		})
	case config.RerankerGemini:
		r, err := geminiTransport.NewReranker(ctx, &geminiTransport.Config{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Logger:  logger,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("create gemini reranker: %w", err)
		}
		inner = r
	default:
		return nil, nil, fmt.Errorf("unknown reranker provider %q", cfg.Provider)
	}

	b := cfg.Breaker
	guarded := scoringuc.NewGuardedReranker(inner, cfg.Provider, scoringuc.BreakerSettings{
		MaxRequests:  b.MaxRequests,
		Interval:     time.Duration(b.IntervalSec) * time.Second,
		Timeout:      time.Duration(b.TimeoutSec) * time.Second,
		MinRequests:  b.MinRequests,
		FailureRatio: b.FailureRatio,
	}, logger)
	logger.Info("Reranker created", zap.String("provider", cfg.Provider), zap.String("model", cfg.Model))
	return guarded, guarded, nil
}

// buildSources lists enabled job providers in configured priority order.
func buildSources(cfg *config.ProvidersConfig) []gatewayuc.Source {
	sources := make([]gatewayuc.Source, 0, len(cfg.Order))
	for _, name := range cfg.Order {
		var (
			provider gatewayuc.Provider
			policy   config.SourceConfig
		)
		switch name {
		case config.ProviderAdzuna:
			provider = jobboard.NewAdzuna(jobboard.AdzunaConfig{
				AppID:   cfg.Adzuna.AppID,
				AppKey:  cfg.Adzuna.AppKey,
				Country: cfg.Adzuna.Country,
				BaseURL: cfg.Adzuna.BaseURL,
			}, nil)
			policy = cfg.Adzuna.SourceConfig
		case config.ProviderSerpAPI:
			provider = jobboard.NewSerpAPI(jobboard.SerpAPIConfig{
				APIKey:  cfg.SerpAPI.APIKey,
				BaseURL: cfg.SerpAPI.BaseURL,
			}, nil)
			policy = cfg.SerpAPI.SourceConfig
		case config.ProviderRemotive:
			provider = jobboard.NewRemotive(jobboard.RemotiveConfig{BaseURL: cfg.Remotive.BaseURL}, nil)
			policy = cfg.Remotive.SourceConfig
		default:
			continue
		}
		if policy.Disabled {
			continue
		}
		sources = append(sources, gatewayuc.Source{
			Provider:          provider,
			Timeout:           time.Duration(policy.TimeoutSec) * time.Second,
			Cooldown:          time.Duration(policy.CooldownSec) * time.Second,
			RequestsPerMinute: policy.RequestsPerMinute,
		})
	}
	return sources
}
