package openai

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/jobmatch/internal/domain"
	"github.com/kailas-cloud/jobmatch/internal/transport/rerank"
)

// Reranker scores postings with a chat-completion model in JSON mode.
type Reranker struct {
	client *openai.Client
	model  string
	user   string
	logger *zap.Logger
}

// NewReranker creates an OpenAI-compatible reranker.
func NewReranker(cfg *Config) *Reranker {
	return &Reranker{
		client: newClient(cfg),
		model:  cfg.Model,
		user:   cfg.User,
		logger: cfg.Logger,
	}
}

// Rerank implements domain.Reranker.
func (r *Reranker) Rerank(
	ctx context.Context, profileSummary string, items []domain.RerankItem,
) (map[string]float64, error) {
	if len(items) == 0 {
		return map[string]float64{}, nil
	}

	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: r.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: rerank.SystemInstruction},
			{Role: openai.ChatMessageRoleUser, Content: rerank.BuildPrompt(profileSummary, items)},
		},
		Temperature:    0,
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
		User:           r.user,
	})
	if err != nil {
		return nil, parseAPIError("rerank", err, domain.ErrRerankUnavailable)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in rerank response: %w", domain.ErrMalformedRerank)
	}

	r.logger.Debug("Rerank completed",
		zap.String("model", r.model),
		zap.Int("items", len(items)),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
	)

	scores, err := rerank.ParseScores(resp.Choices[0].Message.Content, items)
	if err != nil {
		return nil, fmt.Errorf("parse rerank: %w", err)
	}
	return scores, nil
}

// HealthCheck verifies API availability via ListModels.
func (r *Reranker) HealthCheck(ctx context.Context) error {
	if _, err := r.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}
