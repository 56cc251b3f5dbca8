package main

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/jobmatch/internal/config"
	"github.com/kailas-cloud/jobmatch/internal/domain/job"
)

func TestBuildSources_OrderAndDisabled(t *testing.T) {
	cfg := config.Config{}
	cfg.ApplyDefaults()
	cfg.Providers.Order = []string{config.ProviderRemotive, config.ProviderSerpAPI, config.ProviderAdzuna}
	cfg.Providers.SerpAPI.Disabled = true
	cfg.Providers.Remotive.RequestsPerMinute = 2

	sources := buildSources(&cfg.Providers)
	if len(sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(sources))
	}
	if sources[0].Provider.Name() != config.ProviderRemotive || sources[1].Provider.Name() != config.ProviderAdzuna {
		t.Errorf("unexpected order: %s, %s", sources[0].Provider.Name(), sources[1].Provider.Name())
	}
	if sources[0].RequestsPerMinute != 2 {
		t.Errorf("expected pacing to carry over, got %d", sources[0].RequestsPerMinute)
	}
	if sources[1].Timeout.Seconds() != 10 || sources[1].Cooldown.Seconds() != 60 {
		t.Errorf("unexpected adzuna policy %+v", sources[1])
	}
}

func TestBuildReranker_None(t *testing.T) {
	r, h, err := buildReranker(context.Background(), &config.RerankerConfig{}, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if r != nil || h != nil {
		t.Error("expected absent reranker")
	}
}

func TestBuildReranker_OpenAI(t *testing.T) {
	cfg := config.Config{Reranker: config.RerankerConfig{Provider: config.RerankerOpenAI, APIKey: "k"}}
	cfg.ApplyDefaults()

	r, h, err := buildReranker(context.Background(), &cfg.Reranker, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if r == nil || h == nil {
		t.Fatal("expected guarded reranker")
	}
}

func TestNewPostingView(t *testing.T) {
	p, err := job.New(job.Fields{
		ID:        "j1",
		Source:    job.SourceLocal,
		Title:     "Go Engineer",
		Company:   "Acme",
		Embedding: []float32{1, 0, 0},
	})
	if err != nil {
		t.Fatalf("job.New: %v", err)
	}

	v := newPostingView(&p)
	if v.ID != "j1" || v.Source != "local" || v.Dimensions != 3 {
		t.Errorf("unexpected view: %+v", v)
	}
	if v.RequiredSkills == nil {
		t.Error("required_skills must render as an array")
	}
}
