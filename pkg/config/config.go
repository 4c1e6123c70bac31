package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config defines runtime settings for kernelnav.
type Config struct {
	Gateway struct {
		Address      string   `yaml:"address"`
		AllowedAddrs []string `yaml:"allowed_addrs"`
	} `yaml:"gateway"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Kernels struct {
		// ExtraPaths are additional Jupyter data dirs to search, highest
		// precedence.
		ExtraPaths []string `yaml:"extra_paths"`
		// CondaRoot overrides conda installation detection.
		CondaRoot string `yaml:"conda_root"`
		Watch     bool   `yaml:"watch"`
	} `yaml:"kernels"`
}

// LoadConfig loads configuration from a YAML file and environment
// overrides. An empty path applies defaults and environment only.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	cfg.Gateway.Address = "127.0.0.1:8899"
	cfg.Log.Level = "info"
	cfg.Log.Format = "json"
	cfg.Kernels.Watch = true

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if addr := os.Getenv("KERNELNAV_ADDR"); addr != "" {
		cfg.Gateway.Address = addr
	}
	if level := os.Getenv("KERNELNAV_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if format := os.Getenv("KERNELNAV_LOG_FORMAT"); format != "" {
		cfg.Log.Format = format
	}
	if paths := os.Getenv("KERNELNAV_KERNEL_PATHS"); paths != "" {
		cfg.Kernels.ExtraPaths = append(cfg.Kernels.ExtraPaths, filepath.SplitList(paths)...)
	}
	if root := os.Getenv("KERNELNAV_CONDA_ROOT"); root != "" {
		cfg.Kernels.CondaRoot = root
	}

	return cfg, nil
}

// DefaultConfigPath returns the config file location, honoring
// KERNELNAV_CONFIG. The default file is optional; callers should pass
// an empty path to LoadConfig when it does not exist.
func DefaultConfigPath() string {
	if path := os.Getenv("KERNELNAV_CONFIG"); path != "" {
		return path
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".kernelnav", "config.yaml")
}
