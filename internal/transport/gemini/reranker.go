// Package gemini adapts Google Gemini to the rerank capability.
package gemini

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/kailas-cloud/jobmatch/internal/domain"
	"github.com/kailas-cloud/jobmatch/internal/transport/rerank"
)

// Config holds the Gemini reranker settings.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string // overrides the Gemini API endpoint; used by tests and proxies
	Logger  *zap.Logger
}

// Reranker scores postings with a Gemini model constrained to a JSON schema.
type Reranker struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

// NewReranker creates a Gemini reranker.
func NewReranker(ctx context.Context, cfg *Config) (*Reranker, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Reranker{client: client, model: cfg.Model, logger: cfg.Logger}, nil
}

// Rerank implements domain.Reranker.
func (r *Reranker) Rerank(
	ctx context.Context, profileSummary string, items []domain.RerankItem,
) (map[string]float64, error) {
	if len(items) == 0 {
		return map[string]float64{}, nil
	}

	resp, err := r.client.Models.GenerateContent(ctx, r.model,
		genai.Text(rerank.BuildPrompt(profileSummary, items)), scoresConfig())
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w: %w", domain.ErrRerankUnavailable, err)
	}

	text := responseText(resp)
	if text == "" {
		return nil, fmt.Errorf("empty gemini response: %w", domain.ErrMalformedRerank)
	}

	if resp.UsageMetadata != nil {
		r.logger.Debug("Rerank completed",
			zap.String("model", r.model),
			zap.Int("items", len(items)),
			zap.Int32("total_tokens", resp.UsageMetadata.TotalTokenCount),
		)
	}

	scores, err := rerank.ParseScores(text, items)
	if err != nil {
		return nil, fmt.Errorf("parse rerank: %w", err)
	}
	return scores, nil
}

// HealthCheck fetches the configured model's metadata.
func (r *Reranker) HealthCheck(ctx context.Context) error {
	if _, err := r.client.Models.Get(ctx, r.model, &genai.GetModelConfig{}); err != nil {
		return fmt.Errorf("get model %s: %w", r.model, err)
	}
	return nil
}

func scoresConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(rerank.SystemInstruction, genai.RoleUser),
		Temperature:       genai.Ptr[float32](0),
		ResponseMIMEType:  "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"scores": {
					Type: genai.TypeArray,
					Items: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"id":    {Type: genai.TypeString},
							"score": {Type: genai.TypeNumber},
						},
						Required: []string{"id", "score"},
					},
				},
			},
			Required: []string{"scores"},
		},
	}
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var out string
	for _, c := range resp.Candidates {
		if c == nil || c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if p != nil && p.Text != "" && !p.Thought {
				out += p.Text
			}
		}
	}
	return out
}
