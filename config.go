package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"aether/internal/canvas"
	"aether/internal/expand"
)

const (
	configDirName  = ".aether"
	configFileName = "config.yaml"
)

type AIConfig struct {
	APIKey      string        `yaml:"api_key"`
	BaseURL     string        `yaml:"base_url"`
	Model       string        `yaml:"model" validate:"required"`
	Temperature float32       `yaml:"temperature" validate:"gte=0,lte=2"`
	Timeout     time.Duration `yaml:"timeout" validate:"gt=0"`
}

type Config struct {
	DataDir  string   `yaml:"data_dir" validate:"required"`
	Theme    string   `yaml:"theme" validate:"oneof=light dark"`
	LogFile  string   `yaml:"log_file" validate:"required"`
	LogLevel string   `yaml:"log_level" validate:"oneof=debug info warn error"`
	AI       AIConfig `yaml:"ai"`
}

func defaultConfig(home string) *Config {
	base := filepath.Join(home, configDirName)
	return &Config{
		DataDir:  filepath.Join(base, "data"),
		Theme:    string(canvas.ThemeLight),
		LogFile:  filepath.Join(base, "aether.log"),
		LogLevel: "info",
		AI: AIConfig{
			Model:       expand.DefaultModel,
			Temperature: 0.7,
			Timeout:     60 * time.Second,
		},
	}
}

func defaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: home directory: %w", err)
	}
	return filepath.Join(home, configDirName, configFileName), nil
}

// loadConfig reads the YAML config at path, or at ~/.aether/config.yaml when
// path is empty. A missing file is created with the defaults. Environment
// variables override the file for the AI settings.
func loadConfig(path string) (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("config: home directory: %w", err)
	}
	if path == "" {
		if path, err = defaultConfigPath(); err != nil {
			return nil, err
		}
	}
	path = expandHome(path, home)

	cfg := defaultConfig(home)
	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := writeConfig(path, cfg); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	cfg.DataDir = expandHome(cfg.DataDir, home)
	cfg.LogFile = expandHome(cfg.LogFile, home)
	cfg.applyEnv()

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

func writeConfig(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("config: create %s: %w", filepath.Dir(path), err)
	}
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	// The file may end up holding an API key.
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.AI.APIKey = v
	} else if v := os.Getenv("API_KEY"); v != "" && c.AI.APIKey == "" {
		c.AI.APIKey = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		c.AI.BaseURL = v
	}
	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		c.AI.Model = v
	}
}

func (c *Config) expandConfig() expand.Config {
	return expand.Config{
		APIKey:      c.AI.APIKey,
		BaseURL:     c.AI.BaseURL,
		Model:       c.AI.Model,
		Temperature: c.AI.Temperature,
	}
}

func expandHome(path, home string) string {
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}
