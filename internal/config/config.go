package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

const defaultExternalHTTPTimeout = 90 * time.Second
const defaultExternalHTTPTimeoutSeconds = int(defaultExternalHTTPTimeout / time.Second)

const (
	defaultLLMTemperature       = 0.15
	defaultLLMRequestsPerSecond = 5
)

const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderGroq      = "groq"
	ProviderNone      = "none"
)

type Config struct {
	LLMProvider          string  `yaml:"llm_provider"`
	LLMModel             string  `yaml:"llm_model"`
	LLMBaseURL           string  `yaml:"llm_base_url"`
	LLMTemperature       float64 `yaml:"llm_temperature"`
	LLMMaxTokens         int     `yaml:"llm_max_tokens"`
	LLMTimeoutSeconds    int     `yaml:"llm_timeout_seconds"`
	LLMMaxAttempts       int     `yaml:"llm_max_attempts"`
	LLMConcurrency       int     `yaml:"llm_concurrency"`
	LLMRequestsPerSecond float64 `yaml:"llm_requests_per_second"`
	AnthropicAPIKey      string  `yaml:"anthropic_api_key"`
	OpenAIAPIKey         string  `yaml:"openai_api_key"`
	GroqAPIKey           string  `yaml:"groq_api_key"`

	ThemeVocabularyPath     string `yaml:"theme_vocabulary_path"`
	KeywordOverrideMinScore int    `yaml:"keyword_override_min_score"`

	HTTPAddr                   string   `yaml:"http_addr"`
	CORSAllowedOrigins         []string `yaml:"cors_allowed_origins"`
	DBPath                     string   `yaml:"db_path"`
	DownloadRetentionHours     int      `yaml:"download_retention_hours"`
	PurgeSchedule              string   `yaml:"purge_schedule"`
	ExternalHTTPTimeoutSeconds int      `yaml:"external_http_timeout_seconds"`
	Timezone                   string   `yaml:"timezone"`

	SlackBotToken string `yaml:"slack_bot_token"`
	SlackAppToken string `yaml:"slack_app_token"`

	Location *time.Location `yaml:"-"` // computed from Timezone, not from YAML
}

// Overrides come from the command line. They win over the file and the
// environment and are applied before defaults and validation.
type Overrides struct {
	Path     string
	Provider string
}

func LoadConfig() Config {
	return LoadConfigWith(Overrides{})
}

func LoadConfigWith(o Overrides) Config {
	// Zero is a valid temperature and rate; their defaults go in before the
	// file and environment are read.
	cfg := Config{
		LLMTemperature:       defaultLLMTemperature,
		LLMRequestsPerSecond: defaultLLMRequestsPerSecond,
	}

	configPath := "config.yaml"
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		configPath = envPath
	}
	if o.Path != "" {
		configPath = o.Path
	}
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			log.Fatalf("Error parsing %s: %v", configPath, err)
		}
		log.Printf("Loaded config from %s", configPath)
	}

	envOverride(&cfg.LLMProvider, "LLM_PROVIDER")
	envOverride(&cfg.LLMModel, "LLM_MODEL")
	envOverride(&cfg.LLMBaseURL, "LLM_BASE_URL")
	envOverrideFloat(&cfg.LLMTemperature, "LLM_TEMPERATURE")
	envOverrideInt(&cfg.LLMMaxTokens, "LLM_MAX_TOKENS")
	envOverrideInt(&cfg.LLMTimeoutSeconds, "LLM_TIMEOUT_SECONDS")
	envOverrideInt(&cfg.LLMMaxAttempts, "LLM_MAX_ATTEMPTS")
	envOverrideInt(&cfg.LLMConcurrency, "LLM_CONCURRENCY")
	envOverrideFloat(&cfg.LLMRequestsPerSecond, "LLM_REQUESTS_PER_SECOND")
	envOverride(&cfg.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	envOverride(&cfg.OpenAIAPIKey, "OPENAI_API_KEY")
	envOverride(&cfg.GroqAPIKey, "GROQ_API_KEY")
	envOverride(&cfg.ThemeVocabularyPath, "THEME_VOCABULARY_PATH")
	envOverrideInt(&cfg.KeywordOverrideMinScore, "KEYWORD_OVERRIDE_MIN_SCORE")
	envOverride(&cfg.HTTPAddr, "HTTP_ADDR")
	envOverrideList(&cfg.CORSAllowedOrigins, "CORS_ALLOWED_ORIGINS")
	envOverride(&cfg.DBPath, "DB_PATH")
	envOverrideInt(&cfg.DownloadRetentionHours, "DOWNLOAD_RETENTION_HOURS")
	envOverrideAllowEmpty(&cfg.PurgeSchedule, "PURGE_SCHEDULE")
	envOverrideInt(&cfg.ExternalHTTPTimeoutSeconds, "EXTERNAL_HTTP_TIMEOUT_SECONDS")
	envOverride(&cfg.Timezone, "TIMEZONE")
	envOverride(&cfg.SlackBotToken, "SLACK_BOT_TOKEN")
	envOverride(&cfg.SlackAppToken, "SLACK_APP_TOKEN")

	if o.Provider != "" {
		cfg.LLMProvider = o.Provider
	}

	cfg.LLMProvider = strings.ToLower(strings.TrimSpace(cfg.LLMProvider))
	if cfg.LLMProvider == "" {
		cfg.LLMProvider = ProviderGroq
	}
	if cfg.LLMMaxTokens == 0 {
		cfg.LLMMaxTokens = 256
	}
	if cfg.LLMTimeoutSeconds == 0 {
		cfg.LLMTimeoutSeconds = 30
	}
	if cfg.LLMMaxAttempts == 0 {
		cfg.LLMMaxAttempts = 3
	}
	if cfg.LLMConcurrency == 0 {
		cfg.LLMConcurrency = 4
	}
	if cfg.KeywordOverrideMinScore == 0 {
		cfg.KeywordOverrideMinScore = 1
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "./feedbackbot.db"
	}
	if cfg.DownloadRetentionHours == 0 {
		cfg.DownloadRetentionHours = 24
	}
	if _, set := os.LookupEnv("PURGE_SCHEDULE"); !set && cfg.PurgeSchedule == "" {
		cfg.PurgeSchedule = "0 * * * *"
	}
	if cfg.ExternalHTTPTimeoutSeconds == 0 {
		cfg.ExternalHTTPTimeoutSeconds = defaultExternalHTTPTimeoutSeconds
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "Local"
	}

	switch cfg.LLMProvider {
	case ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			log.Fatalf("anthropic_api_key is required when llm_provider=anthropic")
		}
	case ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			log.Fatalf("openai_api_key is required when llm_provider=openai")
		}
	case ProviderGroq:
		if cfg.GroqAPIKey == "" {
			log.Fatalf("groq_api_key is required when llm_provider=groq (set GROQ_API_KEY, or llm_provider=none for keyword-only mode)")
		}
	case ProviderNone:
		log.Printf("WARNING: llm_provider=none, classification runs on keywords only. Sentiment and highlight will be N/A.")
	default:
		log.Fatalf("llm_provider must be 'anthropic', 'openai', 'groq' or 'none', got '%s'", cfg.LLMProvider)
	}

	if (cfg.SlackBotToken == "") != (cfg.SlackAppToken == "") {
		log.Fatalf("Partial Slack config: slack_bot_token and slack_app_token are required together")
	}

	if strings.EqualFold(cfg.Timezone, "Local") {
		cfg.Location = time.Local
	} else {
		loc, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			log.Fatalf("invalid timezone '%s': %v", cfg.Timezone, err)
		}
		cfg.Location = loc
	}

	if cfg.LLMTemperature < 0 || cfg.LLMTemperature > 2 {
		log.Fatalf("invalid llm_temperature '%f': must be between 0 and 2", cfg.LLMTemperature)
	}
	if cfg.LLMMaxTokens < 16 {
		log.Fatalf("invalid llm_max_tokens '%d': must be >= 16", cfg.LLMMaxTokens)
	}
	if cfg.LLMTimeoutSeconds < 1 {
		log.Fatalf("invalid llm_timeout_seconds '%d': must be >= 1", cfg.LLMTimeoutSeconds)
	}
	if cfg.LLMMaxAttempts < 1 {
		log.Fatalf("invalid llm_max_attempts '%d': must be >= 1", cfg.LLMMaxAttempts)
	}
	if cfg.LLMConcurrency < 1 {
		log.Fatalf("invalid llm_concurrency '%d': must be >= 1", cfg.LLMConcurrency)
	}
	if cfg.LLMRequestsPerSecond < 0 {
		log.Fatalf("invalid llm_requests_per_second '%f': must be >= 0", cfg.LLMRequestsPerSecond)
	}
	if cfg.KeywordOverrideMinScore < 1 {
		log.Fatalf("invalid keyword_override_min_score '%d': must be >= 1", cfg.KeywordOverrideMinScore)
	}
	if cfg.DownloadRetentionHours < 1 {
		log.Fatalf("invalid download_retention_hours '%d': must be >= 1", cfg.DownloadRetentionHours)
	}
	if cfg.ExternalHTTPTimeoutSeconds < 5 {
		log.Fatalf("invalid external_http_timeout_seconds '%d': must be >= 5", cfg.ExternalHTTPTimeoutSeconds)
	}
	if strings.TrimSpace(cfg.PurgeSchedule) != "" {
		if _, err := cron.ParseStandard(cfg.PurgeSchedule); err != nil {
			log.Fatalf("invalid purge_schedule '%s': %v", cfg.PurgeSchedule, err)
		}
	}
	if cfg.ThemeVocabularyPath != "" {
		if _, err := os.Stat(cfg.ThemeVocabularyPath); err != nil {
			log.Fatalf("invalid theme_vocabulary_path '%s': %v", cfg.ThemeVocabularyPath, err)
		}
	}

	return cfg
}

func envOverride(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

func envOverrideAllowEmpty(field *string, envKey string) {
	if val, ok := os.LookupEnv(envKey); ok {
		*field = val
	}
}

func envOverrideList(field *[]string, envKey string) {
	val := os.Getenv(envKey)
	if val == "" {
		return
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	*field = out
}

func envOverrideInt(field *int, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			log.Fatalf("invalid %s '%s': %v", envKey, val, err)
		}
		*field = parsed
	}
}

func envOverrideFloat(field *float64, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.ParseFloat(val, 64)
		if err != nil {
			log.Fatalf("invalid %s '%s': %v", envKey, val, err)
		}
		*field = parsed
	}
}

// APIKey returns the credential for the configured provider.
func (c Config) APIKey() string {
	switch c.LLMProvider {
	case ProviderAnthropic:
		return c.AnthropicAPIKey
	case ProviderOpenAI:
		return c.OpenAIAPIKey
	case ProviderGroq:
		return c.GroqAPIKey
	default:
		return ""
	}
}

func (c Config) SlackConfigured() bool {
	return c.SlackBotToken != "" && c.SlackAppToken != ""
}

func (c Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLMTimeoutSeconds) * time.Second
}

func (c Config) DownloadRetention() time.Duration {
	return time.Duration(c.DownloadRetentionHours) * time.Hour
}
