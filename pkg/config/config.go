// Package config provides configuration loading and validation for the
// assistant service. Configuration comes from an optional YAML file with
// environment variable overrides for secrets and the listen port.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Default model candidates, tried in order when no preferred model is given.
//
//nolint:gochecknoglobals // package default, copied into each Config
var defaultModels = []string{
	"openrouter/horizon-beta",
	"openrouter/anthropic/claude-3.5-sonnet",
	"openrouter/meta-llama/llama-3.1-8b-instruct",
}

// Commands that run_command may execute. A command line is allowed when it
// contains at least one of these tokens.
//
//nolint:gochecknoglobals // package default, copied into each Config
var defaultAllowedCommands = []string{
	"python", "pip", "npm", "node", "git", "ls", "cat", "head", "tail",
}

// CircuitBreakerConfig controls the orchestrator's circuit breaker.
type CircuitBreakerConfig struct {
	FailureThreshold int           `yaml:"failure_threshold"`
	RecoveryTimeout  time.Duration `yaml:"recovery_timeout"`
}

// OpenRouterConfig configures the hosted model backend.
type OpenRouterConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"-"` // only ever read from OPENROUTER_API_KEY
}

// OllamaConfig configures the local model backend.
type OllamaConfig struct {
	Host string `yaml:"host"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Config is the full service configuration.
type Config struct {
	Models          []string             `yaml:"models"`
	RequestInterval time.Duration        `yaml:"request_interval"`
	CircuitBreaker  CircuitBreakerConfig `yaml:"circuit_breaker"`
	AllowedCommands []string             `yaml:"allowed_commands"`
	CommandTimeout  time.Duration        `yaml:"command_timeout"`
	WorkspaceDir    string               `yaml:"workspace_dir"`
	BackupDir       string               `yaml:"backup_dir"`
	ChatsDir        string               `yaml:"chats_dir"`
	LogsDir         string               `yaml:"logs_dir"`
	OpenRouter      OpenRouterConfig     `yaml:"openrouter"`
	Ollama          OllamaConfig         `yaml:"ollama"`
	Server          ServerConfig         `yaml:"server"`
}

// Default returns the built-in configuration, matching the historical
// service defaults.
func Default() *Config {
	return &Config{
		Models:          append([]string{}, defaultModels...),
		RequestInterval: 16 * time.Second,
		CircuitBreaker: CircuitBreakerConfig{
			FailureThreshold: 5,
			RecoveryTimeout:  60 * time.Second,
		},
		AllowedCommands: append([]string{}, defaultAllowedCommands...),
		CommandTimeout:  30 * time.Second,
		WorkspaceDir:    "workspace",
		BackupDir:       "backups",
		ChatsDir:        "chats",
		LogsDir:         "logs",
		OpenRouter: OpenRouterConfig{
			BaseURL: "https://openrouter.ai/api/v1",
		},
		Ollama: OllamaConfig{
			Host: "http://localhost:11434",
		},
		Server: ServerConfig{
			Addr: ":5051",
		},
	}
}

// Load reads configuration from path (when it exists) on top of the defaults,
// then applies environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// fall through to env overrides
		case err != nil:
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.OpenRouter.APIKey = os.Getenv("OPENROUTER_API_KEY")
	if port := os.Getenv("PORT"); port != "" {
		if n, err := strconv.Atoi(port); err == nil {
			c.Server.Addr = fmt.Sprintf(":%d", n)
		}
	}
	if host := os.Getenv("OLLAMA_HOST"); host != "" {
		c.Ollama.Host = host
	}
}

// Validate checks structural invariants. API key presence is checked at
// orchestrator construction, since all-local model lists need none.
func (c *Config) Validate() error {
	if len(c.Models) == 0 {
		return fmt.Errorf("at least one model must be configured")
	}
	if c.RequestInterval <= 0 {
		return fmt.Errorf("request_interval must be positive")
	}
	if c.CircuitBreaker.FailureThreshold <= 0 {
		return fmt.Errorf("circuit_breaker.failure_threshold must be positive")
	}
	if c.CircuitBreaker.RecoveryTimeout <= 0 {
		return fmt.Errorf("circuit_breaker.recovery_timeout must be positive")
	}
	if c.CommandTimeout <= 0 {
		return fmt.Errorf("command_timeout must be positive")
	}
	if len(c.AllowedCommands) == 0 {
		return fmt.Errorf("allowed_commands must not be empty")
	}
	return nil
}
