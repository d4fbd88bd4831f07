// Package config handles configuration and API key management for tigos.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tigosprojects/tigos/internal/history"
	"github.com/tigosprojects/tigos/internal/models"
)

// HomeEnv overrides the configuration directory
const HomeEnv = "TIGOS_HOME"

// MarkdownConfig is the markdown: section of config.yaml.
type MarkdownConfig struct {
	Style            string `yaml:"style"`              // "dark", "light", or path to JSON theme
	EnableEmoji      bool   `yaml:"enable_emoji"`       // Convert :emoji: to unicode
	PreserveNewLines bool   `yaml:"preserve_newlines"`  // Preserve original line breaks
	TableWrap        bool   `yaml:"table_wrap"`         // Enable word wrap in table cells
	InlineTableLinks bool   `yaml:"inline_table_links"` // Render links inline in tables
}

// EndpointsConfig holds the provider base URLs
type EndpointsConfig struct {
	Text  string `yaml:"text"`
	Image string `yaml:"image"`
}

// DefaultsConfig holds the initial selections for a session
type DefaultsConfig struct {
	ChatModel  string `yaml:"chat_model"`
	ImageModel string `yaml:"image_model"`
	Resolution string `yaml:"resolution"`
	Voice      string `yaml:"voice"`
	NoLogo     bool   `yaml:"nologo"`
}

// Config mirrors config.yaml. Missing keys keep their DefaultConfig values.
type Config struct {
	// DataDir holds the four JSON collections. Empty means <config dir>/data.
	DataDir      string            `yaml:"data_dir,omitempty"`
	Files        history.FileNames `yaml:"files"`
	Endpoints    EndpointsConfig   `yaml:"endpoints"`
	APIKeyHeader string            `yaml:"api_key_header"`
	Defaults     DefaultsConfig    `yaml:"defaults"`
	// RequestTimeoutSeconds bounds each provider call; 0 waits indefinitely.
	RequestTimeoutSeconds int            `yaml:"request_timeout_seconds"`
	Verbose               bool           `yaml:"verbose"`
	CopyToClipboard       bool           `yaml:"copy_to_clipboard"`
	DownloadDir           string         `yaml:"download_dir,omitempty"`
	Markdown              MarkdownConfig `yaml:"markdown"`
}

func DefaultMarkdownConfig() MarkdownConfig {
	return MarkdownConfig{
		Style:            "dark",
		EnableEmoji:      true,
		PreserveNewLines: true,
		TableWrap:        true,
		InlineTableLinks: false,
	}
}

func DefaultConfig() Config {
	return Config{
		Files: history.DefaultFileNames(),
		Endpoints: EndpointsConfig{
			Text:  models.EndpointText,
			Image: models.EndpointImage,
		},
		APIKeyHeader: models.DefaultKeyHeader,
		Defaults: DefaultsConfig{
			ChatModel:  string(models.DefaultChatModel),
			ImageModel: string(models.DefaultImageModel),
			Resolution: models.DefaultResolution.String(),
			Voice:      string(models.DefaultVoice),
		},
		Markdown: DefaultMarkdownConfig(),
	}
}

// RequestTimeout returns the per-request deadline, zero for none
func (c Config) RequestTimeout() time.Duration {
	if c.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// Validate checks the default selections against the provider menus
func (c Config) Validate() error {
	if _, err := models.ParseChatModel(c.Defaults.ChatModel); err != nil {
		return err
	}
	if _, err := models.ParseImageModel(c.Defaults.ImageModel); err != nil {
		return err
	}
	if _, err := models.ParseResolution(c.Defaults.Resolution); err != nil {
		return err
	}
	if _, err := models.ParseVoice(c.Defaults.Voice); err != nil {
		return err
	}
	if c.RequestTimeoutSeconds < 0 {
		return fmt.Errorf("request_timeout_seconds must not be negative")
	}
	return nil
}

// GetConfigDir is TIGOS_HOME when set, otherwise ~/.tigos.
func GetConfigDir() (string, error) {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return dir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(home, ".tigos"), nil
}

// EnsureConfigDir is GetConfigDir, created with 0700 if missing.
func EnsureConfigDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.yaml"), nil
}

// GetDataDir returns the directory holding the JSON collections
func GetDataDir(cfg Config) (string, error) {
	if cfg.DataDir != "" {
		return cfg.DataDir, nil
	}
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "data"), nil
}

// GetLogDir returns the directory for session log files
func GetLogDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "logs"), nil
}

// GetDownloadDir resolves where generated images and audio land.
func GetDownloadDir(cfg Config) (string, error) {
	dir := cfg.DownloadDir
	if dir == "" {
		configDir, err := GetConfigDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(configDir, "downloads")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create download directory: %w", err)
	}

	return dir, nil
}

// LoadConfig loads the configuration from disk. Keys absent from the file
// keep their default values.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	configPath, err := GetConfigPath()
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return DefaultConfig(), fmt.Errorf("invalid config file %s: %w", configPath, err)
	}

	return cfg, nil
}

// SaveConfig writes cfg as YAML with 0600 permissions.
func SaveConfig(cfg Config) error {
	configDir, err := EnsureConfigDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(configDir, "config.yaml")

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
