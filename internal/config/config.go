package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"slices"
	"strconv"

	"github.com/petasbytes/sandbox-agent/tools"
	"gopkg.in/yaml.v3"
)

const (
	DefaultMaxTokens     = 1024
	DefaultMaxToolRounds = 10
	DefaultSystemPrompt  = "You are a helpful AI assistant. Be concise and clear in your responses."
	DefaultPersistPath   = ".agent/conversation.json"
	DefaultTelemetryDir  = ".agent"
)

// Config is the complete agent configuration.
type Config struct {
	// Model is the Anthropic model ID. Empty selects the provider default.
	Model        string `yaml:"model"`
	MaxTokens    int64  `yaml:"max_tokens"`
	SystemPrompt string `yaml:"system_prompt"`

	// SandboxRoot bounds every tool path. Empty means the working directory.
	SandboxRoot               string `yaml:"sandbox_root"`
	MaxToolRounds             int    `yaml:"max_tool_rounds"`
	ParallelTools             bool   `yaml:"parallel_tools"`
	TerminateOnRecursionLimit bool   `yaml:"terminate_on_recursion_limit"`
	TokenBudget               int    `yaml:"token_budget"`

	PersistPath  string   `yaml:"persist_path"`
	EnabledTools []string `yaml:"enabled_tools"`

	Telemetry TelemetryConfig `yaml:"telemetry"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// TelemetryConfig controls the JSONL event stream.
type TelemetryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig holds the prometheus endpoint address. Empty disables it.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		MaxTokens:     DefaultMaxTokens,
		SystemPrompt:  DefaultSystemPrompt,
		MaxToolRounds: DefaultMaxToolRounds,
		PersistPath:   DefaultPersistPath,
		Telemetry:     TelemetryConfig{Dir: DefaultTelemetryDir},
		Logging:       LoggingConfig{Level: "info", Format: "text"},
	}
}

// Load reads path over the defaults, applies AGT_* overrides and validates
// the result. An empty path or a missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("reading config file: %w", err)
		default:
			if err := yaml.Unmarshal([]byte(expandEnvVars(string(data))), cfg); err != nil {
				return nil, fmt.Errorf("parsing config file: %w", err)
			}
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, fmt.Errorf("environment overrides: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

var envRef = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	return envRef.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(envRef.FindStringSubmatch(match)[1])
	})
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("AGT_SANDBOX_ROOT"); v != "" {
		cfg.SandboxRoot = v
	}
	if v := os.Getenv("AGT_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("AGT_MAX_TOOL_ROUNDS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid AGT_MAX_TOOL_ROUNDS %q: %w", v, err)
		}
		cfg.MaxToolRounds = n
	}
	if v := os.Getenv("AGT_TOKEN_BUDGET"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid AGT_TOKEN_BUDGET %q: %w", v, err)
		}
		cfg.TokenBudget = n
	}
	if os.Getenv("AGT_OBSERVE_JSON") == "1" {
		cfg.Telemetry.Enabled = true
	}
	return nil
}

// Validate returns the first invalid setting it finds.
func (c *Config) Validate() error {
	if c.MaxToolRounds <= 0 {
		return fmt.Errorf("max_tool_rounds must be positive, got %d", c.MaxToolRounds)
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("max_tokens must be positive, got %d", c.MaxTokens)
	}
	if c.TokenBudget < 0 {
		return fmt.Errorf("token_budget must not be negative, got %d", c.TokenBudget)
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging.format %q is not one of text, json", c.Logging.Format)
	}
	known := tools.BuiltinNames()
	for _, name := range c.EnabledTools {
		if !slices.Contains(known, name) {
			return fmt.Errorf("enabled_tools: unknown tool %q", name)
		}
	}
	return nil
}
