package llm

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultAnthropicModel = "claude-sonnet-4-5-20250929"

type AnthropicClient struct {
	client anthropic.Client
	model  string
}

// NewAnthropicClient builds a Messages API client. The SDK retries
// 429/5xx responses itself, maxAttempts-1 times.
func NewAnthropicClient(apiKey, model, baseURL string, maxAttempts int, httpClient *http.Client) *AnthropicClient {
	if model == "" {
		model = defaultAnthropicModel
	}
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(maxAttempts - 1),
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &AnthropicClient{
		client: anthropic.NewClient(opts...),
		model:  model,
	}
}

func (c *AnthropicClient) Provider() string { return "anthropic" }

func (c *AnthropicClient) Model() string { return c.model }

func (c *AnthropicClient) Complete(ctx context.Context, req Request) (Response, error) {
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   int64(req.MaxTokens),
		Temperature: anthropic.Float(req.Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	})
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return Response{}, &StatusError{Provider: c.Provider(), StatusCode: apiErr.StatusCode, Message: truncate(apiErr.RawJSON(), 300)}
		}
		return Response{}, fmt.Errorf("Anthropic API error: %w", err)
	}
	usage := Usage{
		InputTokens:  message.Usage.InputTokens,
		OutputTokens: message.Usage.OutputTokens,
	}

	for _, block := range message.Content {
		if block.Type == "text" {
			log.Printf("llm anthropic response size=%d tokens_in=%d tokens_out=%d", len(block.Text), usage.InputTokens, usage.OutputTokens)
			return Response{Text: block.Text, Usage: usage}, nil
		}
	}
	return Response{Usage: usage}, ErrNoText
}
