package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Options configure the OpenAI-compatible summarizer endpoint.
type Options struct {
	BaseURL     string
	Model       string
	APIKeyEnv   string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
	Retries     int
}

// Client talks to any OpenAI-compatible chat completion endpoint,
// including a local LMStudio instance.
type Client struct {
	api    *openai.Client
	opts   Options
	logger *zap.Logger
}

// NewClient creates a summarizer over the configured endpoint. Local
// endpoints that ignore authentication work with an unset key.
func NewClient(opts Options, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Retries <= 0 {
		opts.Retries = 3
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 256
	}
	if opts.Temperature <= 0 {
		opts.Temperature = 0.3
	}

	apiKey := ""
	if opts.APIKeyEnv != "" {
		apiKey = os.Getenv(opts.APIKeyEnv)
	}
	if apiKey == "" {
		apiKey = "not-needed"
	}

	cfg := openai.DefaultConfig(apiKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}
	if opts.Timeout > 0 {
		cfg.HTTPClient = &http.Client{Timeout: opts.Timeout}
	}

	return &Client{
		api:    openai.NewClientWithConfig(cfg),
		opts:   opts,
		logger: logger,
	}
}

// ModelName returns the configured model identifier.
func (c *Client) ModelName() string {
	return c.opts.Model
}

// Summarize condenses text under the default system prompt.
func (c *Client) Summarize(ctx context.Context, text, role string) (string, error) {
	return c.SummarizeWithSystem(ctx, text, role, SystemPrompt)
}

// SummarizeWithSystem condenses text under an explicit system prompt,
// retrying with exponential backoff. An empty response after sanitizing
// counts as a failure.
func (c *Client) SummarizeWithSystem(ctx context.Context, text, role, system string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.opts.Model,
		Temperature: c.opts.Temperature,
		MaxTokens:   c.opts.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: BuildPrompt(role, text)},
		},
	}

	var lastErr error
	backoff := time.Second
	for attempt := 1; attempt <= c.opts.Retries; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		resp, err := c.api.CreateChatCompletion(ctx, req)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			lastErr = err
			c.logger.Warn("llm request failed",
				zap.Int("attempt", attempt), zap.Error(err))
			continue
		}
		if len(resp.Choices) == 0 {
			lastErr = errors.New("no choices in response")
			continue
		}

		out := Sanitize(resp.Choices[0].Message.Content)
		if out == "" {
			lastErr = errors.New("empty response after sanitizing")
			continue
		}
		return out, nil
	}

	return "", fmt.Errorf("llm request failed after %d attempts: %w", c.opts.Retries, lastErr)
}
