package config

import (
	"log/slog"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	APIPort  string
	LogLevel string

	OllamaURL    string
	ModelEnglish string
	ModelChinese string

	TokenBudgetEnglish int
	TokenBudgetChinese int

	MinTextChars        int
	MaxUploadMB         int
	DefaultMaxSentences int
	DefaultKeywords     int

	APIRateLimitRPS    float64
	APIRateLimitBurst  int
	BackpressureWaitMS int

	ModelRateLimitRPS   float64
	ModelRateLimitBurst int
	BreakerEnabled      bool
}

// Load reads the environment and, when CONFIG_FILE points at a YAML
// file, overlays any keys set there on top of the env values.
func Load() Config {
	cfg := Config{
		APIPort:  mustEnv("API_PORT", "8080"),
		LogLevel: mustEnv("LOG_LEVEL", "info"),

		OllamaURL:    mustEnv("OLLAMA_URL", "http://localhost:11434"),
		ModelEnglish: mustEnv("OLLAMA_MODEL_EN", "llama3.1:8b"),
		ModelChinese: mustEnv("OLLAMA_MODEL_ZH", "qwen2.5:7b"),

		TokenBudgetEnglish: mustEnvInt("TOKEN_BUDGET_EN", 1024),
		TokenBudgetChinese: mustEnvInt("TOKEN_BUDGET_ZH", 800),

		MinTextChars:        mustEnvInt("MIN_TEXT_CHARS", 50),
		MaxUploadMB:         mustEnvInt("MAX_UPLOAD_MB", 10),
		DefaultMaxSentences: mustEnvInt("DEFAULT_MAX_SENTENCES", 5),
		DefaultKeywords:     mustEnvInt("DEFAULT_KEYWORDS", 15),

		APIRateLimitRPS:    mustEnvFloat("API_RATE_LIMIT_RPS", 10),
		APIRateLimitBurst:  mustEnvInt("API_RATE_LIMIT_BURST", 20),
		BackpressureWaitMS: mustEnvInt("BACKPRESSURE_WAIT_MS", 100),

		ModelRateLimitRPS:   mustEnvFloat("MODEL_RATE_LIMIT_RPS", 2),
		ModelRateLimitBurst: mustEnvInt("MODEL_RATE_LIMIT_BURST", 4),
		BreakerEnabled:      mustEnvBool("BREAKER_ENABLED", true),
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		applyFile(&cfg, path)
	}
	return cfg
}

// fileOverlay mirrors Config with pointer fields so that absent keys
// leave the env values untouched.
type fileOverlay struct {
	APIPort  *string `yaml:"api_port"`
	LogLevel *string `yaml:"log_level"`

	OllamaURL    *string `yaml:"ollama_url"`
	ModelEnglish *string `yaml:"model_english"`
	ModelChinese *string `yaml:"model_chinese"`

	TokenBudgetEnglish *int `yaml:"token_budget_english"`
	TokenBudgetChinese *int `yaml:"token_budget_chinese"`

	MinTextChars        *int `yaml:"min_text_chars"`
	MaxUploadMB         *int `yaml:"max_upload_mb"`
	DefaultMaxSentences *int `yaml:"default_max_sentences"`
	DefaultKeywords     *int `yaml:"default_keywords"`

	APIRateLimitRPS    *float64 `yaml:"api_rate_limit_rps"`
	APIRateLimitBurst  *int     `yaml:"api_rate_limit_burst"`
	BackpressureWaitMS *int     `yaml:"backpressure_wait_ms"`

	ModelRateLimitRPS   *float64 `yaml:"model_rate_limit_rps"`
	ModelRateLimitBurst *int     `yaml:"model_rate_limit_burst"`
	BreakerEnabled      *bool    `yaml:"breaker_enabled"`
}

func applyFile(cfg *Config, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("config file unreadable, using env values", "path", path, "error", err)
		return
	}
	var overlay fileOverlay
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		slog.Warn("config file invalid, using env values", "path", path, "error", err)
		return
	}

	setString(&cfg.APIPort, overlay.APIPort)
	setString(&cfg.LogLevel, overlay.LogLevel)
	setString(&cfg.OllamaURL, overlay.OllamaURL)
	setString(&cfg.ModelEnglish, overlay.ModelEnglish)
	setString(&cfg.ModelChinese, overlay.ModelChinese)
	setInt(&cfg.TokenBudgetEnglish, overlay.TokenBudgetEnglish)
	setInt(&cfg.TokenBudgetChinese, overlay.TokenBudgetChinese)
	setInt(&cfg.MinTextChars, overlay.MinTextChars)
	setInt(&cfg.MaxUploadMB, overlay.MaxUploadMB)
	setInt(&cfg.DefaultMaxSentences, overlay.DefaultMaxSentences)
	setInt(&cfg.DefaultKeywords, overlay.DefaultKeywords)
	setFloat(&cfg.APIRateLimitRPS, overlay.APIRateLimitRPS)
	setInt(&cfg.APIRateLimitBurst, overlay.APIRateLimitBurst)
	setInt(&cfg.BackpressureWaitMS, overlay.BackpressureWaitMS)
	setFloat(&cfg.ModelRateLimitRPS, overlay.ModelRateLimitRPS)
	setInt(&cfg.ModelRateLimitBurst, overlay.ModelRateLimitBurst)
	setBool(&cfg.BreakerEnabled, overlay.BreakerEnabled)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func mustEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}
