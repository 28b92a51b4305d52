// Package config handles configuration loading for taskloom.
// It supports XDG config paths, project-level overrides, and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all configuration for taskloom.
type Config struct {
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Inbox     InboxConfig     `mapstructure:"inbox"`
	Extract   ExtractConfig   `mapstructure:"extract"`
	Debug     bool            `mapstructure:"debug"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	APIKey    string `mapstructure:"api_key"`
	Model     string `mapstructure:"model"`
	MaxTokens int    `mapstructure:"max_tokens"`
}

// StorageConfig holds on-disk state locations.
type StorageConfig struct {
	// DataDir is the base directory for all persisted state.
	DataDir string `mapstructure:"data_dir"`
	// ConfirmationsFile overrides the confirmation snapshot path.
	// Empty means DataDir/confirmations.json.
	ConfirmationsFile string `mapstructure:"confirmations_file"`
	// EpisodicDB overrides the episodic memory path.
	// Empty means DataDir/episodic.db.
	EpisodicDB string `mapstructure:"episodic_db"`
}

// InboxConfig holds the watched-directory settings.
type InboxConfig struct {
	Dir string `mapstructure:"dir"`
}

// ExtractConfig holds rule-based extraction settings.
type ExtractConfig struct {
	// RulesFile points at a YAML file overriding the built-in rules.
	RulesFile string `mapstructure:"rules_file"`
}

// ConfirmationsPath returns the effective confirmation snapshot path.
func (c *Config) ConfirmationsPath() string {
	if c.Storage.ConfirmationsFile != "" {
		return c.Storage.ConfirmationsFile
	}
	return filepath.Join(c.Storage.DataDir, "confirmations.json")
}

// EpisodicPath returns the effective episodic database path.
func (c *Config) EpisodicPath() string {
	if c.Storage.EpisodicDB != "" {
		return c.Storage.EpisodicDB
	}
	return filepath.Join(c.Storage.DataDir, "episodic.db")
}

// Load loads configuration from XDG paths, project overrides, and environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (TASKLOOM_*, ANTHROPIC_API_KEY)
// 2. Project config (.taskloom.yaml in current directory or parent)
// 3. User config (~/.config/taskloom/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(getUserConfigDir())

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	if projectConfig := findProjectConfig(); projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	v.SetEnvPrefix("TASKLOOM")
	v.AutomaticEnv()
	v.BindEnv("anthropic.api_key", "ANTHROPIC_API_KEY")
	v.BindEnv("storage.data_dir", "TASKLOOM_DATA_DIR")
	v.BindEnv("inbox.dir", "TASKLOOM_INBOX_DIR")
	v.BindEnv("debug", "TASKLOOM_DEBUG")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = os.ExpandEnv(cfg.Anthropic.APIKey)

	return cfg, nil
}

// LoadFromPath loads configuration from a specific file (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = os.ExpandEnv(cfg.Anthropic.APIKey)

	return cfg, nil
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.model", "")
	v.SetDefault("anthropic.max_tokens", 4096)

	v.SetDefault("storage.data_dir", defaultDataDir())
	v.SetDefault("storage.confirmations_file", "")
	v.SetDefault("storage.episodic_db", "")

	v.SetDefault("inbox.dir", "inbox")
	v.SetDefault("extract.rules_file", "")
	v.SetDefault("debug", false)
}

func defaultDataDir() string {
	if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
		return filepath.Join(xdgData, "taskloom")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".taskloom-data")
	}
	return filepath.Join(home, ".local", "share", "taskloom")
}

func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "taskloom")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "taskloom")
	}
	return filepath.Join(home, ".config", "taskloom")
}

// findProjectConfig searches for .taskloom.yaml in the current directory and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ".taskloom.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Anthropic: AnthropicConfig{
			MaxTokens: 4096,
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Inbox: InboxConfig{
			Dir: "inbox",
		},
	}
}
