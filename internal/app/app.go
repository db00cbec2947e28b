package app

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/sirupsen/logrus"
	"github.com/slack-go/slack"

	"feedbackbot/internal/classify"
	"feedbackbot/internal/config"
	"feedbackbot/internal/httpx"
	"feedbackbot/internal/integrations/llm"
	slackbot "feedbackbot/internal/integrations/slack"
	"feedbackbot/internal/retention"
	"feedbackbot/internal/server"
	"feedbackbot/internal/storage/sqlite"
	"feedbackbot/internal/themes"
)

// Vocabulary returns the configured theme vocabulary, or the built-in one
// when no file is set.
func Vocabulary(cfg config.Config) (*themes.Vocabulary, error) {
	if cfg.ThemeVocabularyPath == "" {
		return themes.DefaultVocabulary(), nil
	}
	vocab, err := themes.LoadVocabulary(cfg.ThemeVocabularyPath)
	if err != nil {
		return nil, fmt.Errorf("theme vocabulary %s: %w", cfg.ThemeVocabularyPath, err)
	}
	log.Printf("Theme vocabulary loaded from %s themes=%d", cfg.ThemeVocabularyPath, len(vocab.IDs()))
	return vocab, nil
}

// NewResolver builds the vocabulary and model client described by cfg.
// Provider "none" yields a keyword-only resolver.
func NewResolver(cfg config.Config) (*classify.Resolver, error) {
	vocab, err := Vocabulary(cfg)
	if err != nil {
		return nil, err
	}

	client, err := llm.NewClient(cfg, httpx.ExternalHTTPClient())
	if errors.Is(err, llm.ErrDisabled) {
		log.Println("Model client disabled, classifying on keywords only")
		client = nil
	} else if err != nil {
		return nil, fmt.Errorf("llm client: %w", err)
	}

	return classify.NewResolver(vocab, client, classify.OptionsFromConfig(cfg)), nil
}

// Serve runs the HTTP API, the purge scheduler and, when configured, the
// Slack bot until ctx is done.
func Serve(ctx context.Context, cfg config.Config) error {
	appliedHTTPTimeout := httpx.ConfigureExternalHTTPClient(cfg.ExternalHTTPTimeoutSeconds)
	log.Printf(
		"Config loaded. Provider=%s Model=%s Temperature=%.2f MaxTokens=%d Timeout=%s MaxAttempts=%d Concurrency=%d RPS=%.1f OverrideMinScore=%d Slack=%t ExternalHTTPTimeout=%s",
		cfg.LLMProvider,
		cfg.LLMModel,
		cfg.LLMTemperature,
		cfg.LLMMaxTokens,
		cfg.LLMTimeout(),
		cfg.LLMMaxAttempts,
		cfg.LLMConcurrency,
		cfg.LLMRequestsPerSecond,
		cfg.KeywordOverrideMinScore,
		cfg.SlackConfigured(),
		appliedHTTPTimeout,
	)

	resolver, err := NewResolver(cfg)
	if err != nil {
		return err
	}

	db, err := sqlite.InitDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	log.Printf("Database initialized at %s", cfg.DBPath)
	defer db.Close()

	retention.StartPurgeScheduler(ctx, cfg, db)

	if cfg.SlackConfigured() {
		api := slack.New(
			cfg.SlackBotToken,
			slack.OptionAppLevelToken(cfg.SlackAppToken),
		)
		go func() {
			if err := slackbot.StartSlackBot(ctx, cfg, resolver, api); err != nil && ctx.Err() == nil {
				log.Printf("Slack bot error: %v", err)
			}
		}()
	} else {
		log.Println("Slack bot disabled (slack_bot_token/slack_app_token not set)")
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	log.Println("Starting Feedback Bot...")
	return server.New(resolver, db, logger).AllowOrigins(cfg.CORSAllowedOrigins...).Run(ctx, cfg.HTTPAddr)
}
