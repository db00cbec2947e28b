package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func setMinimalValidConfigEnv(t *testing.T) {
	t.Helper()
	t.Setenv("LLM_PROVIDER", "groq")
	t.Setenv("GROQ_API_KEY", "gsk-test")
	t.Setenv("TIMEZONE", "UTC")
}

func TestLoadConfigFromEnvWithDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing-config.yaml"))
	setMinimalValidConfigEnv(t)

	cfg := LoadConfig()

	if cfg.LLMProvider != ProviderGroq {
		t.Fatalf("unexpected provider: %q", cfg.LLMProvider)
	}
	if cfg.APIKey() != "gsk-test" {
		t.Fatalf("unexpected api key: %q", cfg.APIKey())
	}
	if cfg.LLMTemperature != 0.15 {
		t.Fatalf("unexpected temperature default: %f", cfg.LLMTemperature)
	}
	if cfg.LLMMaxTokens != 256 {
		t.Fatalf("unexpected max tokens default: %d", cfg.LLMMaxTokens)
	}
	if cfg.LLMMaxAttempts != 3 {
		t.Fatalf("unexpected max attempts default: %d", cfg.LLMMaxAttempts)
	}
	if cfg.KeywordOverrideMinScore != 1 {
		t.Fatalf("unexpected keyword override default: %d", cfg.KeywordOverrideMinScore)
	}
	if cfg.DBPath != "./feedbackbot.db" {
		t.Fatalf("unexpected db path default: %q", cfg.DBPath)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("unexpected http addr default: %q", cfg.HTTPAddr)
	}
	if cfg.PurgeSchedule != "0 * * * *" {
		t.Fatalf("unexpected purge schedule default: %q", cfg.PurgeSchedule)
	}
	if cfg.DownloadRetention() != 24*time.Hour {
		t.Fatalf("unexpected retention default: %s", cfg.DownloadRetention())
	}
	if cfg.LLMTimeout() != 30*time.Second {
		t.Fatalf("unexpected llm timeout default: %s", cfg.LLMTimeout())
	}
	if cfg.ExternalHTTPTimeoutSeconds != defaultExternalHTTPTimeoutSeconds {
		t.Fatalf("unexpected external HTTP timeout default: %d", cfg.ExternalHTTPTimeoutSeconds)
	}
	if cfg.Location == nil || cfg.Location.String() != "UTC" {
		t.Fatalf("unexpected location: %v", cfg.Location)
	}
	if cfg.SlackConfigured() {
		t.Fatal("slack should not be configured without tokens")
	}
}

func TestLoadConfigYAMLAndEnvOverride(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	content := `
llm_provider: "anthropic"
anthropic_api_key: "yaml-anthropic"
llm_model: "claude-test"
llm_concurrency: 2
keyword_override_min_score: 2
db_path: "/tmp/yaml.db"
http_addr: ":9000"
slack_bot_token: "xoxb-yaml"
slack_app_token: "xapp-yaml"
timezone: "UTC"
`
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("CONFIG_PATH", cfgPath)
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("DB_PATH", "/tmp/env.db")
	t.Setenv("LLM_REQUESTS_PER_SECOND", "2.5")
	t.Setenv("PURGE_SCHEDULE", "")

	cfg := LoadConfig()

	if cfg.LLMProvider != ProviderOpenAI {
		t.Fatalf("expected provider from env override, got %q", cfg.LLMProvider)
	}
	if cfg.APIKey() != "sk-env" {
		t.Fatalf("expected openai key from env override")
	}
	if cfg.LLMModel != "claude-test" {
		t.Fatalf("expected model from yaml, got %q", cfg.LLMModel)
	}
	if cfg.DBPath != "/tmp/env.db" {
		t.Fatalf("expected db path from env override, got %q", cfg.DBPath)
	}
	if cfg.HTTPAddr != ":9000" {
		t.Fatalf("expected http addr from yaml, got %q", cfg.HTTPAddr)
	}
	if cfg.LLMConcurrency != 2 || cfg.KeywordOverrideMinScore != 2 {
		t.Fatalf("expected yaml ints, got concurrency=%d override=%d", cfg.LLMConcurrency, cfg.KeywordOverrideMinScore)
	}
	if cfg.LLMRequestsPerSecond != 2.5 {
		t.Fatalf("expected rate from env, got %f", cfg.LLMRequestsPerSecond)
	}
	if cfg.PurgeSchedule != "" {
		t.Fatalf("expected empty PURGE_SCHEDULE to disable purging, got %q", cfg.PurgeSchedule)
	}
	if !cfg.SlackConfigured() {
		t.Fatal("expected slack to be configured from yaml")
	}
}

func TestLoadConfigNoneProviderNeedsNoKey(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing-config.yaml"))
	t.Setenv("LLM_PROVIDER", "NONE")
	t.Setenv("TIMEZONE", "UTC")

	cfg := LoadConfig()
	if cfg.LLMProvider != ProviderNone {
		t.Fatalf("expected provider none, got %q", cfg.LLMProvider)
	}
	if cfg.APIKey() != "" {
		t.Fatalf("expected no api key for provider none")
	}
}

func TestLoadConfigKeepsZeroTemperatureAndRate(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	content := `
llm_provider: "none"
llm_temperature: 0
llm_requests_per_second: 0
timezone: "UTC"
`
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_PATH", cfgPath)
	t.Setenv("LLM_PROVIDER", "")
	t.Setenv("LLM_TEMPERATURE", "")
	t.Setenv("LLM_REQUESTS_PER_SECOND", "")

	cfg := LoadConfig()
	if cfg.LLMTemperature != 0 {
		t.Fatalf("expected temperature 0 from yaml, got %f", cfg.LLMTemperature)
	}
	if cfg.LLMRequestsPerSecond != 0 {
		t.Fatalf("expected unpaced rate 0 from yaml, got %f", cfg.LLMRequestsPerSecond)
	}

	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing-config.yaml"))
	t.Setenv("LLM_PROVIDER", "none")
	t.Setenv("LLM_TEMPERATURE", "0")
	if cfg := LoadConfig(); cfg.LLMTemperature != 0 || cfg.LLMRequestsPerSecond != defaultLLMRequestsPerSecond {
		t.Fatalf("expected env temperature 0 and default rate, got %f / %f", cfg.LLMTemperature, cfg.LLMRequestsPerSecond)
	}
}

func TestLoadConfigWithOverrides(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "alt.yaml")
	if err := os.WriteFile(cfgPath, []byte("http_addr: \":9100\"\ntimezone: \"UTC\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_PATH", filepath.Join(dir, "missing-config.yaml"))
	t.Setenv("LLM_PROVIDER", "anthropic")
	t.Setenv("ANTHROPIC_API_KEY", "")

	cfg := LoadConfigWith(Overrides{Path: cfgPath, Provider: ProviderNone})
	if cfg.LLMProvider != ProviderNone {
		t.Fatalf("expected provider override, got %q", cfg.LLMProvider)
	}
	if cfg.HTTPAddr != ":9100" {
		t.Fatalf("expected config from override path, got %q", cfg.HTTPAddr)
	}
	if got := os.Getenv("LLM_PROVIDER"); got != "anthropic" {
		t.Fatalf("overrides must not touch the environment, LLM_PROVIDER=%q", got)
	}
}

func TestEnvOverrideHelpers(t *testing.T) {
	s := "initial"
	t.Setenv("FB_TEST_STR", "value")
	envOverride(&s, "FB_TEST_STR")
	if s != "value" {
		t.Fatalf("envOverride failed, got %q", s)
	}

	i := 1
	t.Setenv("FB_TEST_INT", "42")
	envOverrideInt(&i, "FB_TEST_INT")
	if i != 42 {
		t.Fatalf("envOverrideInt failed, got %d", i)
	}

	f := 0.1
	t.Setenv("FB_TEST_FLOAT", "0.75")
	envOverrideFloat(&f, "FB_TEST_FLOAT")
	if f != 0.75 {
		t.Fatalf("envOverrideFloat failed, got %f", f)
	}

	origins := []string{"*"}
	t.Setenv("FB_TEST_LIST", " https://a.example , ,https://b.example")
	envOverrideList(&origins, "FB_TEST_LIST")
	if len(origins) != 2 || origins[0] != "https://a.example" || origins[1] != "https://b.example" {
		t.Fatalf("envOverrideList failed, got %v", origins)
	}

	e := "keep"
	t.Setenv("FB_TEST_EMPTY", "")
	envOverrideAllowEmpty(&e, "FB_TEST_EMPTY")
	if e != "" {
		t.Fatalf("envOverrideAllowEmpty should allow clearing, got %q", e)
	}
}
