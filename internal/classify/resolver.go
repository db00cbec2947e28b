// Package classify reconciles a hosted model's opinion with the keyword scorer
// into one ClassificationRecord per feedback item.
package classify

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"feedbackbot/internal/config"
	"feedbackbot/internal/domain"
	"feedbackbot/internal/integrations/llm"
	"feedbackbot/internal/textnorm"
	"feedbackbot/internal/themes"
)

var (
	errEmptyInput   = errors.New("empty feedback after normalization")
	errEmptyOpinion = errors.New("model JSON has no theme, sentiment or highlight")
)

type Options struct {
	// MinOverrideScore is the keyword count at which the keyword winner
	// replaces a missing or differing model theme.
	MinOverrideScore int
	Temperature      float64
	MaxTokens        int
	// Timeout bounds each model call, retries included. Zero means no bound.
	Timeout time.Duration

	Concurrency       int
	RequestsPerSecond float64
}

func DefaultOptions() Options {
	return Options{
		MinOverrideScore:  1,
		Temperature:       0.15,
		MaxTokens:         256,
		Timeout:           30 * time.Second,
		Concurrency:       4,
		RequestsPerSecond: 5,
	}
}

func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		MinOverrideScore:  cfg.KeywordOverrideMinScore,
		Temperature:       cfg.LLMTemperature,
		MaxTokens:         cfg.LLMMaxTokens,
		Timeout:           cfg.LLMTimeout(),
		Concurrency:       cfg.LLMConcurrency,
		RequestsPerSecond: cfg.LLMRequestsPerSecond,
	}
}

// Resolver is safe for concurrent use. A nil client runs keyword-only.
type Resolver struct {
	vocab      *themes.Vocabulary
	client     llm.Client
	opts       Options
	themeNames []string
}

type modelOutcome struct {
	Text  string
	Usage llm.Usage
	Err   error
}

type extractOutcome struct {
	Opinion llm.Opinion
	Err     error
}

func NewResolver(vocab *themes.Vocabulary, client llm.Client, opts Options) *Resolver {
	if vocab == nil {
		vocab = themes.DefaultVocabulary()
	}
	if opts.MinOverrideScore < 1 {
		opts.MinOverrideScore = 1
	}
	if opts.MaxTokens < 1 {
		opts.MaxTokens = DefaultOptions().MaxTokens
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &Resolver{
		vocab:      vocab,
		client:     client,
		opts:       opts,
		themeNames: vocab.DisplayNames(),
	}
}

func (r *Resolver) Vocabulary() *themes.Vocabulary { return r.vocab }

// ModelEnabled reports whether a model client is attached.
func (r *Resolver) ModelEnabled() bool { return r.client != nil }

// Classify never fails: model and extraction errors degrade to the keyword
// signal, and fields nothing could fill are set to domain.NotAvailable.
func (r *Resolver) Classify(ctx context.Context, raw string) domain.ClassificationRecord {
	record, _ := r.classify(ctx, raw)
	return record
}

func (r *Resolver) classify(ctx context.Context, raw string) (domain.ClassificationRecord, llm.Usage) {
	started := time.Now()
	text := textnorm.Normalize(raw)

	model := r.callModel(ctx, text)
	if model.Err != nil && !errors.Is(model.Err, llm.ErrDisabled) && !errors.Is(model.Err, errEmptyInput) {
		reason := failureReason(model.Err)
		modelFailures.WithLabelValues(r.providerName(), reason).Inc()
		log.Printf("classify model call failed provider=%s reason=%s item=%q err=%v", r.providerName(), reason, preview(text), model.Err)
	}

	extracted := r.extract(model)
	if extracted.Err != nil {
		extractionFailures.Inc()
		log.Printf("classify unusable model output item=%q output=%q err=%v", preview(text), preview(model.Text), extracted.Err)
	}

	opinion := extracted.Opinion
	modelTheme := r.vocab.NormalizeThemeName(opinion.Theme)
	score := r.vocab.Score(text)

	theme := modelTheme
	override := score.BestScore >= r.opts.MinOverrideScore &&
		(modelTheme == "" || !themes.SameTheme(modelTheme, score.Display))
	if override {
		theme = score.Display
		keywordOverrides.Inc()
	}
	if theme == "" && text != "" && !score.Matched() {
		log.Printf("classify no theme signal item=%q", preview(text))
	}

	diag := &domain.Diagnostics{
		RawInput:             raw,
		RawModelOutput:       model.Text,
		ModelTheme:           opinion.Theme,
		NormalizedModelTheme: modelTheme,
		KeywordTheme:         score.Display,
		KeywordScore:         score.BestScore,
		KeywordScores:        map[string]int(score.Scores),
		KeywordOverride:      override,
		ModelError:           errString(model.Err),
		ExtractionError:      errString(extracted.Err),
		InputTokens:          model.Usage.InputTokens,
		OutputTokens:         model.Usage.OutputTokens,
	}
	if r.client != nil {
		diag.Provider = r.client.Provider()
		diag.Model = r.client.Model()
	}

	record := domain.ClassificationRecord{
		Input:       text,
		Theme:       domain.OrNotAvailable(theme),
		Sentiment:   domain.OrNotAvailable(opinion.Sentiment),
		Highlight:   domain.OrNotAvailable(opinion.Highlight),
		Diagnostics: diag,
	}
	itemsClassified.WithLabelValues(record.Theme).Inc()
	classifyDuration.Observe(time.Since(started).Seconds())
	return record, model.Usage
}

func (r *Resolver) callModel(ctx context.Context, text string) modelOutcome {
	if r.client == nil {
		return modelOutcome{Err: llm.ErrDisabled}
	}
	if text == "" {
		return modelOutcome{Err: errEmptyInput}
	}

	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
	}

	resp, err := r.client.Complete(ctx, llm.Request{
		Prompt:      llm.BuildClassificationPrompt(text, r.themeNames),
		MaxTokens:   r.opts.MaxTokens,
		Temperature: r.opts.Temperature,
	})
	modelTokens.WithLabelValues(r.client.Provider(), "input").Add(float64(resp.Usage.InputTokens))
	modelTokens.WithLabelValues(r.client.Provider(), "output").Add(float64(resp.Usage.OutputTokens))
	if err != nil {
		return modelOutcome{Usage: resp.Usage, Err: err}
	}
	if strings.TrimSpace(resp.Text) == "" {
		return modelOutcome{Usage: resp.Usage, Err: llm.ErrNoText}
	}
	return modelOutcome{Text: resp.Text, Usage: resp.Usage}
}

// extract only runs on a successful model call; a failed call yields an
// empty opinion with no extraction error of its own.
func (r *Resolver) extract(model modelOutcome) extractOutcome {
	if model.Err != nil {
		return extractOutcome{}
	}
	opinion, err := llm.ParseOpinion(model.Text)
	if err != nil {
		return extractOutcome{Err: err}
	}
	if opinion.Empty() {
		return extractOutcome{Err: errEmptyOpinion}
	}
	return extractOutcome{Opinion: opinion}
}

func (r *Resolver) providerName() string {
	if r.client == nil {
		return config.ProviderNone
	}
	return r.client.Provider()
}

// failureReason buckets a model error for the failure counter.
func failureReason(err error) string {
	var statusErr *llm.StatusError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, llm.ErrNoText):
		return "empty_response"
	case llm.IsStatus(err, http.StatusTooManyRequests):
		return "rate_limited"
	case llm.IsStatus(err, http.StatusUnauthorized), llm.IsStatus(err, http.StatusForbidden):
		return "auth"
	case errors.As(err, &statusErr):
		if statusErr.StatusCode >= 500 {
			return "server_error"
		}
		return "client_error"
	default:
		return "transport"
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func preview(s string) string {
	const max = 80
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
