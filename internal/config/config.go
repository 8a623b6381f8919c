package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/samsaffron/quicker-llm/internal/session"
)

type Config struct {
	API     APIConfig      `mapstructure:"api"`
	Agent   AgentConfig    `mapstructure:"agent"`
	Tools   ToolsConfig    `mapstructure:"tools"`
	Bridge  BridgeConfig   `mapstructure:"bridge"`
	Session session.Config `mapstructure:"session"`
}

// APIConfig configures the chat completion endpoint.
type APIConfig struct {
	BaseURL     string  `mapstructure:"base_url"`
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	Temperature float64 `mapstructure:"temperature"`
}

// AgentConfig tunes the conversation loop.
type AgentConfig struct {
	MaxHistory   int `mapstructure:"max_history"`    // messages sent per request
	MaxToolDepth int `mapstructure:"max_tool_depth"` // tool round-trips per user message
	// SystemPrompts are extra texts appended to every system message.
	SystemPrompts []string `mapstructure:"system_prompts"`
}

// ToolsConfig holds the side-effect toggles. Both default to off; nothing
// runs on the host until the user opts in.
type ToolsConfig struct {
	Commands bool `mapstructure:"commands"`
	Actions  bool `mapstructure:"actions"`
}

// BridgeConfig configures the host automation bridge.
type BridgeConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

func Load() (*Config, error) {
	configPath, err := GetConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config dir: %w", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configPath)
	viper.AddConfigPath(".")

	viper.SetDefault("api.base_url", "https://api.openai.com/v1/chat/completions")
	viper.SetDefault("api.model", "gpt-4o-mini")
	viper.SetDefault("api.temperature", 0.7)
	viper.SetDefault("agent.max_history", 30)
	viper.SetDefault("agent.max_tool_depth", 10)
	viper.SetDefault("tools.commands", false)
	viper.SetDefault("tools.actions", false)
	viper.SetDefault("bridge.base_url", "http://127.0.0.1:9920")
	viper.SetDefault("session.enabled", true)

	// Read config file (optional - won't error if missing)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.API.APIKey = expandEnv(cfg.API.APIKey)
	if cfg.API.APIKey == "" {
		cfg.API.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	cfg.API.BaseURL = expandEnv(cfg.API.BaseURL)
	cfg.Bridge.BaseURL = expandEnv(cfg.Bridge.BaseURL)

	return &cfg, nil
}

// ApplyOverrides applies command-line overrides to the config.
func (c *Config) ApplyOverrides(model string, commands, actions *bool) {
	if model != "" {
		c.API.Model = model
	}
	if commands != nil {
		c.Tools.Commands = *commands
	}
	if actions != nil {
		c.Tools.Actions = *actions
	}
}

// expandEnv expands ${VAR} or $VAR in a string
func expandEnv(s string) string {
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		varName := s[2 : len(s)-1]
		return os.Getenv(varName)
	}
	if strings.HasPrefix(s, "$") {
		return os.Getenv(s[1:])
	}
	return s
}

// GetConfigDir returns the XDG config directory for quicker-llm.
// Uses $XDG_CONFIG_HOME if set, otherwise ~/.config
func GetConfigDir() (string, error) {
	if xdgHome := os.Getenv("XDG_CONFIG_HOME"); xdgHome != "" {
		return filepath.Join(xdgHome, "quicker-llm"), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "quicker-llm"), nil
}

// GetConfigPath returns the path where the config file should be located
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.yaml"), nil
}

// Exists returns true if a config file exists
func Exists() bool {
	path, err := GetConfigPath()
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// Save writes the config to disk
func Save(cfg *Config) error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	content := fmt.Sprintf(`api:
  base_url: %s
  # api_key: set here, or use ${OPENAI_API_KEY} / the env var directly
  model: %s
  temperature: %g

agent:
  max_history: %d
  max_tool_depth: %d
  # system_prompts:
  #   - Answer in English.

tools:
  commands: %t
  actions: %t

bridge:
  base_url: %s

session:
  enabled: %t
`, cfg.API.BaseURL, cfg.API.Model, cfg.API.Temperature,
		cfg.Agent.MaxHistory, cfg.Agent.MaxToolDepth,
		cfg.Tools.Commands, cfg.Tools.Actions,
		cfg.Bridge.BaseURL, cfg.Session.Enabled)

	return os.WriteFile(path, []byte(content), 0600)
}
