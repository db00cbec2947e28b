package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

const (
	defaultOpenAIModel   = "gpt-4o-mini"
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultGroqModel     = "llama-3.3-70b-versatile"
	defaultGroqBaseURL   = "https://api.groq.com/openai/v1"
	initialRetryBackoff  = 500 * time.Millisecond
)

// OpenAIClient talks to any OpenAI-compatible chat completions endpoint
// (OpenAI itself, Groq).
type OpenAIClient struct {
	provider    string
	apiKey      string
	model       string
	baseURL     string
	maxAttempts int
	backoff     time.Duration
	httpClient  *http.Client
}

type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int64 `json:"prompt_tokens"`
		CompletionTokens int64 `json:"completion_tokens"`
		TotalTokens      int64 `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func NewOpenAIClient(apiKey, model, baseURL string, maxAttempts int, httpClient *http.Client) *OpenAIClient {
	return newOpenAICompatible("openai", apiKey, model, baseURL, defaultOpenAIModel, defaultOpenAIBaseURL, maxAttempts, httpClient)
}

func NewGroqClient(apiKey, model, baseURL string, maxAttempts int, httpClient *http.Client) *OpenAIClient {
	return newOpenAICompatible("groq", apiKey, model, baseURL, defaultGroqModel, defaultGroqBaseURL, maxAttempts, httpClient)
}

func newOpenAICompatible(provider, apiKey, model, baseURL, fallbackModel, fallbackURL string, maxAttempts int, httpClient *http.Client) *OpenAIClient {
	if strings.TrimSpace(model) == "" {
		model = fallbackModel
	}
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = fallbackURL
	}
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &OpenAIClient{
		provider:    provider,
		apiKey:      apiKey,
		model:       model,
		baseURL:     baseURL,
		maxAttempts: maxAttempts,
		backoff:     initialRetryBackoff,
		httpClient:  httpClient,
	}
}

func (c *OpenAIClient) Provider() string { return c.provider }

func (c *OpenAIClient) Model() string { return c.model }

// Complete retries transport failures, 429 and 5xx with doubling backoff.
func (c *OpenAIClient) Complete(ctx context.Context, req Request) (Response, error) {
	backoff := c.backoff
	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		resp, retry, err := c.completeOnce(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !retry || attempt == c.maxAttempts {
			break
		}
		log.Printf("llm %s retry attempt=%d/%d wait=%s err=%v", c.provider, attempt, c.maxAttempts, backoff, err)
		select {
		case <-ctx.Done():
			return Response{}, fmt.Errorf("%s API error: %w", c.provider, ctx.Err())
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return Response{}, lastErr
}

func (c *OpenAIClient) completeOnce(ctx context.Context, req Request) (Response, bool, error) {
	reqBody := openAIRequest{
		Model: c.model,
		Messages: []openAIMessage{
			{Role: "user", Content: req.Prompt},
		},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return Response{}, false, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return Response{}, false, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		retry := ctx.Err() == nil
		return Response{}, retry, fmt.Errorf("%s API error: %w", c.provider, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, true, fmt.Errorf("reading response: %w", err)
	}

	var decoded openAIResponse
	decodeErr := json.Unmarshal(respBody, &decoded)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(string(respBody))
		if decodeErr == nil && decoded.Error != nil {
			msg = decoded.Error.Message
		}
		statusErr := &StatusError{Provider: c.provider, StatusCode: resp.StatusCode, Message: truncate(msg, 300)}
		return Response{}, statusErr.Retryable(), statusErr
	}
	if decodeErr != nil {
		return Response{}, false, fmt.Errorf("parsing %s response: %w", c.provider, decodeErr)
	}
	if decoded.Error != nil {
		return Response{}, false, fmt.Errorf("%s API error: %s", c.provider, decoded.Error.Message)
	}
	if len(decoded.Choices) == 0 {
		return Response{}, false, fmt.Errorf("no choices in %s response: %w", c.provider, ErrNoText)
	}

	usage := Usage{}
	if decoded.Usage != nil {
		usage.InputTokens = decoded.Usage.PromptTokens
		usage.OutputTokens = decoded.Usage.CompletionTokens
	}
	content := decoded.Choices[0].Message.Content
	log.Printf("llm %s response size=%d tokens_in=%d tokens_out=%d", c.provider, len(content), usage.InputTokens, usage.OutputTokens)
	return Response{Text: content, Usage: usage}, false, nil
}

// IsStatus reports whether err carries the given HTTP status code.
func IsStatus(err error, code int) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == code
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + fmt.Sprintf("... [truncated, total_length=%d]", len(s))
}
