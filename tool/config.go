package tool

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/muingY/gif-compressor-backend/types"
)

var ConfigPath = "config.yaml" // be aware that it can be changed, default to ./config.yaml

func DefaultConfig() types.AppConfig {
	return types.AppConfig{
		Host:             "127.0.0.1",
		Port:             8080,
		Protocol:         "http",
		GifFolder:        "./gifs",
		MaxUploadSize:    10_000_000,
		MaxFileCount:     10,
		AllowedMimeTypes: []string{"image/gif"},
		CompressSuffix:   "-compressed",
		SessionTTL:       2 * 60 * 60, // 2h
		CleanupInterval:  5 * 60,      // 5min
		CompressWorkers:  4,
		RateLimitPerSec:  2,
		RateLimitBurst:   5,
		NotifyWebsocket:  true,
	}
}

// LoadConfig reads path (config.yaml by default). A missing file is created with defaults.
func LoadConfig(path string) (types.AppConfig, error) {
	if path == "" {
		path = ConfigPath
	}
	ConfigPath = path

	cfg := DefaultConfig()

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			if writeErr := writeConfig(path, cfg); writeErr != nil {
				return cfg, fmt.Errorf("config file not found, and failed to generate default config: %v", writeErr)
			}
			DefaultLogger.Infof("Created new config file: %s", path)
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file: %v", err)
	}
	if info.IsDir() {
		return cfg, fmt.Errorf("config file path is a directory: %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %v", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %v", err)
	}
	if err := ValidateConfig(&cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// ValidateConfig rejects values the pipeline cannot run with and fills optional zero values.
func ValidateConfig(cfg *types.AppConfig) error {
	defaults := DefaultConfig()
	if cfg.GifFolder == "" {
		cfg.GifFolder = defaults.GifFolder
	}
	if cfg.CompressSuffix == "" {
		cfg.CompressSuffix = defaults.CompressSuffix
	}
	if len(cfg.AllowedMimeTypes) == 0 {
		cfg.AllowedMimeTypes = defaults.AllowedMimeTypes
	}
	if cfg.Protocol == "" {
		cfg.Protocol = defaults.Protocol
	}
	if cfg.CompressWorkers <= 0 {
		cfg.CompressWorkers = 1
	}
	switch {
	case cfg.Port <= 0 || cfg.Port > 65535:
		return fmt.Errorf("invalid port: %d", cfg.Port)
	case cfg.Protocol != "http" && cfg.Protocol != "https":
		return fmt.Errorf("invalid protocol: %q", cfg.Protocol)
	case cfg.MaxUploadSize <= 0:
		return fmt.Errorf("maxUploadSize must be > 0")
	case cfg.MaxFileCount <= 0:
		return fmt.Errorf("maxFileCount must be > 0")
	case cfg.SessionTTL <= 0:
		return fmt.Errorf("sessionTTL must be > 0")
	case cfg.CleanupInterval <= 0:
		return fmt.Errorf("cleanupInterval must be > 0")
	}
	return nil
}

func writeConfig(path string, cfg types.AppConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// SaveConfig writes cfg back to the loaded config path.
func SaveConfig(cfg types.AppConfig) error {
	if err := writeConfig(ConfigPath, cfg); err != nil {
		return fmt.Errorf("failed to write config file: %v", err)
	}
	return nil
}

// SessionTTL returns cfg.SessionTTL as a duration.
func SessionTTL(cfg *types.AppConfig) time.Duration {
	return time.Duration(cfg.SessionTTL) * time.Second
}

// CleanupInterval returns cfg.CleanupInterval as a duration.
func CleanupInterval(cfg *types.AppConfig) time.Duration {
	return time.Duration(cfg.CleanupInterval) * time.Second
}
