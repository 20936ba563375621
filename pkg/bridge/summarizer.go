package bridge

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/atlascommand/voice-bridge/internal/httpc"
)

// Summarization request parameters.
const (
	summaryTemperature = 0.4
	summaryMaxTokens   = 800
)

// MinSummaryTranscript is the trimmed transcript length below which no
// summary request is made.
const MinSummaryTranscript = 40

// Summarizer produces post-call summaries via a chat-completion endpoint.
type Summarizer struct {
	client       *openai.Client
	model        string
	systemPrompt string
}

// NewSummarizer creates a summarizer. baseURL overrides the endpoint when
// non-empty, for self-hosted or proxied deployments.
func NewSummarizer(apiKey, baseURL, model, systemPrompt string) *Summarizer {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	cfg.HTTPClient = httpc.NewClient(30 * time.Second)

	return &Summarizer{
		client:       openai.NewClientWithConfig(cfg),
		model:        model,
		systemPrompt: systemPrompt,
	}
}

// Summarize requests a summary of the transcript. An empty completion is
// treated as an error so the caller can fall back to a null summary.
func (s *Summarizer) Summarize(ctx context.Context, transcript string) (string, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.model,
		Temperature: summaryTemperature,
		MaxTokens:   summaryMaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: s.systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: "Transcript of the call:\n\n" + transcript},
		},
	})
	if err != nil {
		return "", fmt.Errorf("bridge: summary request: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("bridge: summary response had no content")
	}
	return resp.Choices[0].Message.Content, nil
}
