package services

import (
	"context"
	"fmt"
	"log/slog"

	openai "github.com/sashabaranov/go-openai"

	"github.com/jwebster45206/book-engine/pkg/session"
)

// OpenAIGenerator implements session.Generator using the OpenAI chat
// completions API, or any compatible endpoint via baseURL.
type OpenAIGenerator struct {
	client    *openai.Client
	modelName string
	logger    *slog.Logger
}

// Ensure OpenAIGenerator implements the Generator interface
var _ session.Generator = (*OpenAIGenerator)(nil)

// NewOpenAIGenerator creates an OpenAI-backed generator. baseURL may be empty
// to use the official API.
func NewOpenAIGenerator(apiKey string, modelName string, baseURL string, logger *slog.Logger) *OpenAIGenerator {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}

	return &OpenAIGenerator{
		client:    openai.NewClientWithConfig(config),
		modelName: modelName,
		logger:    logger,
	}
}

// GenerateConsequence narrates one turn via chat completion.
func (o *OpenAIGenerator) GenerateConsequence(ctx context.Context, req session.GenerateRequest) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.modelName,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: narratorSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(req)},
		},
		Temperature: 0.7,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from model %s", o.modelName)
	}

	o.logger.Debug("OpenAI narration complete",
		"model", resp.Model,
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens)

	return resp.Choices[0].Message.Content, nil
}
