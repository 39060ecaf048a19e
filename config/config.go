package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/hupe1980/duet/dialogue"
)

// Provider names accepted for the completion backend.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderMock      = "mock"
)

// Config describes a full experiment: backend selection, conversation
// shape, batching and output handling.
type Config struct {
	Provider    string `yaml:"provider"`
	Model       string `yaml:"model"`
	MaxTurns    int    `yaml:"max_turns"`
	MaxTokens   int    `yaml:"max_tokens"`
	SystemA     string `yaml:"system_a"`
	SystemB     string `yaml:"system_b"`
	SeedMessage string `yaml:"seed_message"`
	Runs        int    `yaml:"runs"`
	Parallelism int    `yaml:"parallelism"`
	OutputDir   string `yaml:"output_dir"`
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"`
}

// Default returns the reference experiment configuration.
func Default() *Config {
	dc := dialogue.DefaultConfig()

	return &Config{
		Provider:    ProviderAnthropic,
		Model:       dc.Model,
		MaxTurns:    dc.MaxTurns,
		MaxTokens:   dc.MaxTokensPerResponse,
		SystemA:     dc.SystemA,
		SystemB:     dc.SystemB,
		SeedMessage: dc.SeedMessage,
		Runs:        1,
		Parallelism: 1,
		OutputDir:   "./experiments",
		LogLevel:    "info",
		LogFormat:   "text",
	}
}

// Load reads a YAML experiment file. Fields missing from the file keep
// their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault loads config from path, or returns the default when the
// path is empty or the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}

	return Load(path)
}

// Save writes the configuration as YAML, creating parent directories.
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config dir: %w", err)
		}
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// ApplyEnv overrides fields from DUET_* environment variables.
func (c *Config) ApplyEnv() {
	c.Provider = getEnv("DUET_PROVIDER", c.Provider)
	c.Model = getEnv("DUET_MODEL", c.Model)
	c.MaxTurns = getEnvInt("DUET_MAX_TURNS", c.MaxTurns)
	c.OutputDir = getEnv("DUET_OUTPUT_DIR", c.OutputDir)
	c.LogLevel = getEnv("DUET_LOG_LEVEL", c.LogLevel)
}

// Validate checks the configuration before an experiment starts.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Provider, validation.Required, validation.In(ProviderAnthropic, ProviderOpenAI, ProviderMock)),
		validation.Field(&c.Model, validation.Required),
		validation.Field(&c.MaxTurns, validation.Required, validation.Min(1)),
		validation.Field(&c.MaxTokens, validation.Required, validation.Min(1)),
		validation.Field(&c.SeedMessage, validation.Required),
		validation.Field(&c.Runs, validation.Required, validation.Min(1)),
		validation.Field(&c.Parallelism, validation.Required, validation.Min(1)),
	)
}

// Dialogue projects the conversation-relevant fields.
func (c *Config) Dialogue() dialogue.Config {
	return dialogue.Config{
		Model:                c.Model,
		MaxTurns:             c.MaxTurns,
		MaxTokensPerResponse: c.MaxTokens,
		SystemA:              c.SystemA,
		SystemB:              c.SystemB,
		SeedMessage:          c.SeedMessage,
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
