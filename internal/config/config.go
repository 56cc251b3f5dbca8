package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Embedding providers.
const (
	EmbeddingOpenAI = "openai"
	EmbeddingHash   = "hash"
)

// Reranker providers. An empty provider disables the language-model adjustment.
const (
	RerankerNone   = ""
	RerankerOpenAI = "openai"
	RerankerGemini = "gemini"
)

// Gateway dispatch modes.
const (
	DispatchConcurrent = "concurrent"
	DispatchSequential = "sequential"
)

// Job provider names.
const (
	ProviderAdzuna   = "adzuna"
	ProviderSerpAPI  = "serpapi"
	ProviderRemotive = "remotive"
)

// MaxRerankTopM caps how many postings are offered to the language model.
const MaxRerankTopM = 20

// Config holds the jobmatch configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Auth      AuthConfig      `yaml:"auth"`
	Database  DatabaseConfig  `yaml:"database"`
	Index     IndexConfig     `yaml:"index"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Reranker  RerankerConfig  `yaml:"reranker"`
	Providers ProvidersConfig `yaml:"providers"`
	Recommend RecommendConfig `yaml:"recommend"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds vector store connection settings. Redis 8+ and Valkey with valkey-search both work.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// IndexConfig holds HNSW settings for the local job index.
type IndexConfig struct {
	HNSWM           int `yaml:"hnsw_m"`
	HNSWEFConstruct int `yaml:"hnsw_ef_construction"`
	IngestBatchSize int `yaml:"ingest_batch_size"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider        string  `yaml:"provider"` // openai, hash (default: openai)
	APIKey          string  `yaml:"api_key"`
	BaseURL         string  `yaml:"base_url"`
	Model           string  `yaml:"model"`
	Dimensions      int     `yaml:"dimensions"`
	CacheTTLSec     int     `yaml:"cache_ttl_sec"` // <0 disables the cache
	ResumeWeight    float64 `yaml:"resume_weight"`
	InterviewWeight float64 `yaml:"interview_weight"`
}

// RerankerConfig holds language-model rerank settings.
type RerankerConfig struct {
	Provider   string        `yaml:"provider"` // "", openai, gemini
	APIKey     string        `yaml:"api_key"`
	BaseURL    string        `yaml:"base_url"`
	Model      string        `yaml:"model"`
	Weight     float64       `yaml:"weight"`
	TopM       int           `yaml:"top_m"`
	TimeoutSec int           `yaml:"timeout_sec"`
	Breaker    BreakerConfig `yaml:"circuit_breaker"`
}

// BreakerConfig holds circuit breaker settings for the reranker.
type BreakerConfig struct {
	MaxRequests  uint32  `yaml:"max_requests"`
	IntervalSec  int     `yaml:"interval_sec"`
	TimeoutSec   int     `yaml:"timeout_sec"`
	MinRequests  uint32  `yaml:"min_requests"`
	FailureRatio float64 `yaml:"failure_ratio"`
}

// SourceConfig holds per-provider call policy.
type SourceConfig struct {
	Disabled          bool `yaml:"disabled"`
	TimeoutSec        int  `yaml:"timeout_sec"`
	CooldownSec       int  `yaml:"cooldown_sec"`
	RequestsPerMinute int  `yaml:"requests_per_minute"` // 0 disables pacing
}

// AdzunaConfig holds Adzuna credentials.
type AdzunaConfig struct {
	SourceConfig `yaml:",inline"`
	AppID        string `yaml:"app_id"`
	AppKey       string `yaml:"app_key"`
	Country      string `yaml:"country"`
	BaseURL      string `yaml:"base_url"`
}

// SerpAPIConfig holds SerpAPI credentials.
type SerpAPIConfig struct {
	SourceConfig `yaml:",inline"`
	APIKey       string `yaml:"api_key"`
	BaseURL      string `yaml:"base_url"`
}

// RemotiveConfig holds Remotive settings. Remotive needs no credentials.
type RemotiveConfig struct {
	SourceConfig `yaml:",inline"`
	BaseURL      string `yaml:"base_url"`
}

// ProvidersConfig holds external job providers in priority order.
type ProvidersConfig struct {
	Dispatch string         `yaml:"dispatch"` // concurrent (default), sequential
	Order    []string       `yaml:"order"`
	Adzuna   AdzunaConfig   `yaml:"adzuna"`
	SerpAPI  SerpAPIConfig  `yaml:"serpapi"`
	Remotive RemotiveConfig `yaml:"remotive"`
}

// RecommendConfig holds orchestration and scoring settings.
type RecommendConfig struct {
	MinimumLocalCount  int           `yaml:"minimum_local_count"`
	LocalPoolSize      int           `yaml:"local_pool_size"`
	ExternalMaxResults int           `yaml:"external_max_results"`
	DefaultTopK        int           `yaml:"default_top_k"`
	MaxTopK            int           `yaml:"max_top_k"`
	Weights            WeightsConfig `yaml:"weights"`
}

// WeightsConfig holds heuristic score weights.
type WeightsConfig struct {
	Vector float64 `yaml:"vector"`
	Skills float64 `yaml:"skills"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Index.HNSWM <= 0 {
		c.Index.HNSWM = 16
	}
	if c.Index.HNSWEFConstruct <= 0 {
		c.Index.HNSWEFConstruct = 200
	}
	if c.Index.IngestBatchSize <= 0 {
		c.Index.IngestBatchSize = 50
	}
	c.applyEmbeddingDefaults()
	c.applyRerankerDefaults()
	c.applyProviderDefaults()
	c.applyRecommendDefaults()
}

func (c *Config) applyEmbeddingDefaults() {
	e := &c.Embedding
	if e.Provider == "" {
		e.Provider = EmbeddingOpenAI
	}
	if e.Model == "" {
		e.Model = "text-embedding-3-small"
	}
	if e.Dimensions <= 0 {
		e.Dimensions = 1536
	}
	if e.CacheTTLSec == 0 {
		e.CacheTTLSec = 7 * 24 * 3600
	}
	if e.ResumeWeight <= 0 && e.InterviewWeight <= 0 {
		e.ResumeWeight, e.InterviewWeight = 0.7, 0.3
	}
}

func (c *Config) applyRerankerDefaults() {
	r := &c.Reranker
	if r.Weight == 0 {
		r.Weight = 0.3
	}
	if r.TopM <= 0 {
		r.TopM = 10
	}
	if r.TimeoutSec <= 0 {
		r.TimeoutSec = 8
	}
	if r.Model == "" {
		switch r.Provider {
		case RerankerOpenAI:
			r.Model = "gpt-4o-mini"
		case RerankerGemini:
			r.Model = "gemini-2.0-flash"
		}
	}
	b := &r.Breaker
	if b.MaxRequests == 0 {
		b.MaxRequests = 1
	}
	if b.IntervalSec <= 0 {
		b.IntervalSec = 60
	}
	if b.TimeoutSec <= 0 {
		b.TimeoutSec = 30
	}
	if b.MinRequests == 0 {
		b.MinRequests = 5
	}
	if b.FailureRatio <= 0 {
		b.FailureRatio = 0.5
	}
}

func (c *Config) applyProviderDefaults() {
	p := &c.Providers
	if p.Dispatch == "" {
		p.Dispatch = DispatchConcurrent
	}
	if len(p.Order) == 0 {
		p.Order = []string{ProviderAdzuna, ProviderSerpAPI, ProviderRemotive}
	}
	if p.Adzuna.Country == "" {
		p.Adzuna.Country = "us"
	}
	applySourceDefaults(&p.Adzuna.SourceConfig, 10)
	applySourceDefaults(&p.SerpAPI.SourceConfig, 15)
	applySourceDefaults(&p.Remotive.SourceConfig, 10)
}

func applySourceDefaults(s *SourceConfig, timeoutSec int) {
	if s.TimeoutSec <= 0 {
		s.TimeoutSec = timeoutSec
	}
	if s.CooldownSec <= 0 {
		s.CooldownSec = 60
	}
}

func (c *Config) applyRecommendDefaults() {
	r := &c.Recommend
	if r.MinimumLocalCount <= 0 {
		r.MinimumLocalCount = 5
	}
	if r.LocalPoolSize <= 0 {
		r.LocalPoolSize = 20
	}
	if r.ExternalMaxResults <= 0 {
		r.ExternalMaxResults = 20
	}
	if r.DefaultTopK <= 0 {
		r.DefaultTopK = 10
	}
	if r.MaxTopK <= 0 {
		r.MaxTopK = 50
	}
	if r.Weights.Vector <= 0 && r.Weights.Skills <= 0 {
		r.Weights.Vector, r.Weights.Skills = 0.6, 0.4
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	if err := c.validateEmbedding(); err != nil {
		return err
	}
	if err := c.validateReranker(); err != nil {
		return err
	}
	if err := c.validateProviders(); err != nil {
		return err
	}
	if c.Recommend.Weights.Vector < 0 || c.Recommend.Weights.Skills < 0 {
		return fmt.Errorf("recommend.weights must not be negative")
	}
	if c.Recommend.DefaultTopK > c.Recommend.MaxTopK {
		return fmt.Errorf("recommend.default_top_k (%d) exceeds recommend.max_top_k (%d)",
			c.Recommend.DefaultTopK, c.Recommend.MaxTopK)
	}
	return nil
}

func (c *Config) validateEmbedding() error {
	switch c.Embedding.Provider {
	case EmbeddingOpenAI:
		if c.Embedding.APIKey == "" {
			return fmt.Errorf("embedding.api_key is required for provider %q", EmbeddingOpenAI)
		}
	case EmbeddingHash:
	default:
		return fmt.Errorf("embedding.provider must be %q or %q, got %q",
			EmbeddingOpenAI, EmbeddingHash, c.Embedding.Provider)
	}
	if c.Embedding.ResumeWeight < 0 || c.Embedding.InterviewWeight < 0 {
		return fmt.Errorf("embedding blend weights must not be negative")
	}
	return nil
}

func (c *Config) validateReranker() error {
	r := c.Reranker
	switch r.Provider {
	case RerankerNone:
		return nil
	case RerankerOpenAI, RerankerGemini:
	default:
		return fmt.Errorf("reranker.provider must be empty, %q or %q, got %q",
			RerankerOpenAI, RerankerGemini, r.Provider)
	}
	if r.APIKey == "" {
		return fmt.Errorf("reranker.api_key is required for provider %q", r.Provider)
	}
	if r.Weight < 0 || r.Weight > 1 {
		return fmt.Errorf("reranker.weight must be within [0,1], got %v", r.Weight)
	}
	if r.TopM > MaxRerankTopM {
		return fmt.Errorf("reranker.top_m must be at most %d, got %d", MaxRerankTopM, r.TopM)
	}
	if r.Breaker.FailureRatio > 1 {
		return fmt.Errorf("reranker.circuit_breaker.failure_ratio must be within (0,1], got %v",
			r.Breaker.FailureRatio)
	}
	return nil
}

func (c *Config) validateProviders() error {
	switch c.Providers.Dispatch {
	case DispatchConcurrent, DispatchSequential:
	default:
		return fmt.Errorf("providers.dispatch must be %q or %q, got %q",
			DispatchConcurrent, DispatchSequential, c.Providers.Dispatch)
	}
	seen := make(map[string]bool, len(c.Providers.Order))
	for _, name := range c.Providers.Order {
		switch name {
		case ProviderAdzuna, ProviderSerpAPI, ProviderRemotive:
		default:
			return fmt.Errorf("providers.order: unknown provider %q", name)
		}
		if seen[name] {
			return fmt.Errorf("providers.order: %q listed twice", name)
		}
		seen[name] = true
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
