package llm

import (
	"fmt"
	"net/http"

	"feedbackbot/internal/config"
)

// NewClient returns the client for cfg.LLMProvider, or ErrDisabled for "none".
func NewClient(cfg config.Config, httpClient *http.Client) (Client, error) {
	switch cfg.LLMProvider {
	case config.ProviderAnthropic:
		return NewAnthropicClient(cfg.AnthropicAPIKey, cfg.LLMModel, cfg.LLMBaseURL, cfg.LLMMaxAttempts, httpClient), nil
	case config.ProviderOpenAI:
		return NewOpenAIClient(cfg.OpenAIAPIKey, cfg.LLMModel, cfg.LLMBaseURL, cfg.LLMMaxAttempts, httpClient), nil
	case config.ProviderGroq:
		return NewGroqClient(cfg.GroqAPIKey, cfg.LLMModel, cfg.LLMBaseURL, cfg.LLMMaxAttempts, httpClient), nil
	case config.ProviderNone, "":
		return nil, ErrDisabled
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLMProvider)
	}
}
