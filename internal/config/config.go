// Package config loads planbot settings from defaults, an optional YAML
// file and PLANBOT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/lipohub/tg-planner-bot/internal/llm"
)

const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

type Config struct {
	App     AppConfig     `yaml:"app"`
	HTTP    HTTPConfig    `yaml:"http"`
	LLM     llm.Config    `yaml:"llm"`
	Storage StorageConfig `yaml:"storage"`
	Render  RenderConfig  `yaml:"render"`
}

type AppConfig struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	// Timezone is the IANA zone plans are interpreted in.
	Timezone string `yaml:"timezone"`
}

type HTTPConfig struct {
	Port int `yaml:"port"`
}

type StorageConfig struct {
	DBPath    string `yaml:"db_path"`
	ChartsDir string `yaml:"charts_dir"`
}

type RenderConfig struct {
	Workers int `yaml:"workers"`
	Width   int `yaml:"width"`
	Height  int `yaml:"height"`
}

// Default returns the built-in settings. Data lives under ~/.planbot when
// the home directory is known, otherwise under ./data.
func Default() Config {
	base := "data"
	if home, err := os.UserHomeDir(); err == nil {
		base = filepath.Join(home, ".planbot")
	}
	return Config{
		App: AppConfig{
			LogLevel:  "info",
			LogFormat: LogFormatText,
			Timezone:  "Europe/Moscow",
		},
		HTTP: HTTPConfig{Port: 8080},
		LLM:  llm.DefaultConfig(),
		Storage: StorageConfig{
			DBPath:    filepath.Join(base, "planbot.db"),
			ChartsDir: filepath.Join(base, "graphs"),
		},
		Render: RenderConfig{Workers: 2, Width: 1600, Height: 1000},
	}
}

// Load reads path over the defaults when path is non-empty, applies
// environment overrides and validates the result. ${VAR} references in the
// file are expanded first.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	cfg = applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg Config) Config {
	if v := os.Getenv("PLANBOT_LOG_LEVEL"); v != "" {
		cfg.App.LogLevel = v
	}
	if v := os.Getenv("PLANBOT_LOG_FORMAT"); v != "" {
		cfg.App.LogFormat = v
	}
	if v := os.Getenv("PLANBOT_TIMEZONE"); v != "" {
		cfg.App.Timezone = v
	}
	if v := os.Getenv("PLANBOT_DB"); v != "" {
		cfg.Storage.DBPath = v
	}
	if v := os.Getenv("PLANBOT_CHARTS_DIR"); v != "" {
		cfg.Storage.ChartsDir = v
	}
	applyIntEnv(&cfg.HTTP.Port, "PLANBOT_HTTP_PORT")
	applyIntEnv(&cfg.Render.Workers, "PLANBOT_RENDER_WORKERS")
	cfg.LLM = llm.LoadConfig(cfg.LLM)
	return cfg
}

func applyIntEnv(dst *int, name string) {
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	if err := c.HTTP.Validate(); err != nil {
		return fmt.Errorf("http: %w", err)
	}
	if err := c.Storage.Validate(); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.Render.Validate(); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return validateLLM(&c.LLM)
}

func (c *AppConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.LogLevel, validation.Required, validation.By(func(any) error {
			_, err := parseLevel(c.LogLevel)
			return err
		})),
		validation.Field(&c.LogFormat, validation.Required, validation.In(LogFormatText, LogFormatJSON)),
		validation.Field(&c.Timezone, validation.Required, validation.By(func(any) error {
			_, err := time.LoadLocation(c.Timezone)
			return err
		})),
	)
}

func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// Address returns the listen address for the HTTP server.
func (c HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *StorageConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.DBPath, validation.Required),
		validation.Field(&c.ChartsDir, validation.Required),
	)
}

func (c *RenderConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Workers, validation.Min(0), validation.Max(64)),
		validation.Field(&c.Width, validation.Required, validation.Min(320), validation.Max(4096)),
		validation.Field(&c.Height, validation.Required, validation.Min(200), validation.Max(4096)),
	)
}

func validateLLM(c *llm.Config) error {
	if !c.Enabled {
		return nil
	}
	err := validation.ValidateStruct(c,
		validation.Field(&c.BaseURL, validation.Required),
		validation.Field(&c.Model, validation.Required),
		validation.Field(&c.Temperature, validation.Min(0.0), validation.Max(2.0)),
		validation.Field(&c.MaxAttempts, validation.Min(1)),
	)
	if err != nil {
		return fmt.Errorf("llm: %w", err)
	}
	return nil
}

// Location resolves App.Timezone; Validate guarantees it loads.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Level returns the configured slog level.
func (c Config) Level() slog.Level {
	lvl, err := parseLevel(c.App.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return lvl
}

func parseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, errors.New("unknown log level")
	}
	return lvl, nil
}
