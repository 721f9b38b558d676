package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	LLM      LLMConfig                `yaml:"llm"`
	Security SecurityConfig           `yaml:"security"`
	Logging  LoggingConfig            `yaml:"logging"`
	Gateways map[string]GatewayConfig `yaml:"gateways"`
	Prompts  PromptsConfig            `yaml:"prompts"`
}

type LLMConfig struct {
	Provider    string  `yaml:"provider"`
	Endpoint    string  `yaml:"endpoint"`
	Model       string  `yaml:"model"`
	APIKey      string  `yaml:"api_key"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
	JSONMode    bool    `yaml:"json_mode"`
	// Timeout is the planning budget in seconds.
	Timeout int `yaml:"timeout"`
}

type SecurityConfig struct {
	// MaxExecutionTime is the per-step budget in seconds. Zero disables it.
	MaxExecutionTime  int      `yaml:"max_execution_time"`
	AllowedOperations []string `yaml:"allowed_operations"`
	SandboxEnabled    bool     `yaml:"sandbox_enabled"`
	AuditDB           string   `yaml:"audit_db"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

type GatewayConfig struct {
	Token   string `yaml:"token"`
	Enabled bool   `yaml:"enabled"`
}

type PromptsConfig struct {
	Dir string `yaml:"dir"`
}

// Default mirrors the stock config.yaml: a local Ollama model and every
// built-in operation allowed with the sandbox on.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:    "ollama",
			Endpoint:    "http://localhost:11434",
			Model:       "mistral:7b-instruct",
			Temperature: 0.1,
			MaxTokens:   1024,
			Timeout:     60,
		},
		Security: SecurityConfig{
			MaxExecutionTime: 30,
			AllowedOperations: []string{
				"add", "subtract", "multiply", "divide",
				"sqrt", "power", "mean", "median",
			},
			SandboxEnabled: true,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "logs/agent.log",
		},
		Prompts: PromptsConfig{
			Dir: "prompts",
		},
	}
}

// LoadConfig reads a YAML file over the defaults. Environment variables
// written as ${NAME} are expanded first. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}

	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.LLM.Timeout < 0 {
		return fmt.Errorf("llm.timeout must not be negative")
	}
	if c.Security.MaxExecutionTime < 0 {
		return fmt.Errorf("security.max_execution_time must not be negative")
	}
	if c.Security.SandboxEnabled && len(c.Security.AllowedOperations) == 0 {
		return fmt.Errorf("security.sandbox_enabled is set but allowed_operations is empty")
	}
	return nil
}

func (c *Config) PlanningTimeout() time.Duration {
	return time.Duration(c.LLM.Timeout) * time.Second
}

func (c *Config) StepTimeout() time.Duration {
	return time.Duration(c.Security.MaxExecutionTime) * time.Second
}

// GetTelegramConfig returns telegram config if enabled
func (c *Config) GetTelegramConfig() (GatewayConfig, bool) {
	tg, ok := c.Gateways["telegram"]
	if ok && tg.Enabled && tg.Token != "" {
		return tg, true
	}
	return GatewayConfig{}, false
}
