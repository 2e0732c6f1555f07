package llm

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the reasoning client.
type Config struct {
	Enabled       bool    `yaml:"enabled"`
	LogCalls      bool    `yaml:"log_calls"`
	BaseURL       string  `yaml:"base_url"`
	APIKey        string  `yaml:"api_key"`
	Model         string  `yaml:"model"`
	Temperature   float64 `yaml:"temperature"`
	MaxTokens     int     `yaml:"max_tokens"`
	TimeoutMs     int     `yaml:"timeout_ms"`
	MaxAttempts   int     `yaml:"max_attempts"`
	BackoffUnitMs int     `yaml:"backoff_unit_ms"`
}

// DefaultConfig returns a Config pointed at the xAI endpoint. The reasoning
// service can be slow on long schedules, so each attempt gets three minutes.
func DefaultConfig() Config {
	return Config{
		Enabled:       true,
		LogCalls:      true,
		BaseURL:       "https://api.x.ai/v1",
		Model:         "grok-4",
		Temperature:   0.7,
		MaxTokens:     4096,
		TimeoutMs:     180000,
		MaxAttempts:   3,
		BackoffUnitMs: 1000,
	}
}

// LoadConfig applies environment overrides on top of cfg. Unset or
// malformed values leave the existing setting untouched.
func LoadConfig(cfg Config) Config {
	if v := os.Getenv("PLANBOT_LLM_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Enabled = b
		}
	}
	if v := os.Getenv("PLANBOT_LLM_LOG_CALLS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.LogCalls = b
		}
	}
	if v := os.Getenv("PLANBOT_LLM_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("XAI_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("PLANBOT_LLM_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("PLANBOT_LLM_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("PLANBOT_LLM_TEMPERATURE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 && f <= 2 {
			cfg.Temperature = f
		}
	}
	applyPositiveIntEnv(&cfg.MaxTokens, "PLANBOT_LLM_MAX_TOKENS")
	applyPositiveIntEnv(&cfg.TimeoutMs, "PLANBOT_LLM_TIMEOUT_MS")
	applyPositiveIntEnv(&cfg.MaxAttempts, "PLANBOT_LLM_MAX_ATTEMPTS")
	applyPositiveIntEnv(&cfg.BackoffUnitMs, "PLANBOT_LLM_BACKOFF_UNIT_MS")
	return cfg
}

// Timeout is the per-attempt deadline.
func (c Config) Timeout() time.Duration {
	if c.TimeoutMs <= 0 {
		return 180 * time.Second
	}
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// Attempts is the total attempt budget, never less than one.
func (c Config) Attempts() int {
	if c.MaxAttempts < 1 {
		return 1
	}
	return c.MaxAttempts
}

// BackoffUnit is the time unit the 2^attempt backoff is measured in.
func (c Config) BackoffUnit() time.Duration {
	if c.BackoffUnitMs <= 0 {
		return time.Second
	}
	return time.Duration(c.BackoffUnitMs) * time.Millisecond
}

func applyPositiveIntEnv(dst *int, envName string) {
	v := os.Getenv(envName)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return
	}
	*dst = n
}
