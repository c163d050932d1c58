package gpt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sashabaranov/go-openai"

	"zapdesk/internal/config"
	"zapdesk/internal/lib/sl"
)

// ErrUnavailable marks a completion that failed because the upstream LLM
// could not be reached or refused the request. Callers treat it as a soft
// failure and move on.
var ErrUnavailable = errors.New("llm unavailable")

type Client struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	log     *slog.Logger
}

func NewClient(conf *config.Config, logger *slog.Logger) *Client {
	return &Client{
		client:  openai.NewClient(conf.OpenAI.ApiKey),
		model:   conf.OpenAI.Model,
		timeout: time.Duration(conf.OpenAI.TimeoutSeconds) * time.Second,
		log:     logger.With(sl.Module("gpt")),
	}
}

// Complete sends one system+user exchange and returns the raw assistant
// text. Every call carries its own timeout so a stuck upstream cannot
// wedge a pipeline run.
func (c *Client) Complete(ctx context.Context, systemMsg, userMsg string, maxTokens int) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemMsg},
			{Role: openai.ChatMessageRoleUser, Content: userMsg},
		},
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		c.log.With(
			slog.String("model", c.model),
			slog.Duration("elapsed", time.Since(start)),
			sl.Err(err),
		).Error("chat completion")
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty choices", ErrUnavailable)
	}

	c.log.With(
		slog.String("model", c.model),
		slog.Int("prompt_tokens", resp.Usage.PromptTokens),
		slog.Int("completion_tokens", resp.Usage.CompletionTokens),
		slog.Duration("elapsed", time.Since(start)),
	).Debug("chat completion")

	return resp.Choices[0].Message.Content, nil
}
