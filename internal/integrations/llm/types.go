package llm

import (
	"context"
	"errors"
	"fmt"
)

// ErrDisabled is returned by NewClient when no model provider is configured.
var ErrDisabled = errors.New("llm client disabled")

// ErrNoText means the provider answered without any text content.
var ErrNoText = errors.New("no text content in model response")

// Client sends one prompt to a hosted model and returns its raw text.
type Client interface {
	Complete(ctx context.Context, req Request) (Response, error)
	Provider() string
	Model() string
}

type Request struct {
	Prompt      string
	MaxTokens   int
	Temperature float64
}

type Response struct {
	Text  string
	Usage Usage
}

type Usage struct {
	InputTokens  int64
	OutputTokens int64
}

func (u Usage) TotalTokens() int64 {
	return u.InputTokens + u.OutputTokens
}

func (u *Usage) Add(other Usage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
}

// StatusError is a non-2xx answer from an HTTP model endpoint.
type StatusError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s API error: status %d: %s", e.Provider, e.StatusCode, e.Message)
}

// Retryable reports whether the same request may succeed later.
func (e *StatusError) Retryable() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}
