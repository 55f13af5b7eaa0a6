// Package config loads the homestock configuration file. Every field maps to
// an environment variable consulted by the storage and blob factories, so the
// file is a convenience layer over the same knobs.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Config captures the fields homestock reads at startup.
type Config struct {
	Actor         string `toml:"actor"`
	StorageDriver string `toml:"storage_driver"`
	SQLitePath    string `toml:"sqlite_path"`
	PostgresDSN   string `toml:"postgres_dsn"`
	BlobDriver    string `toml:"blob_driver"`
	BlobRoot      string `toml:"blob_root"`
	S3Bucket      string `toml:"s3_bucket"`
}

const defaultConfigPath = "~/.config/homestock/config.toml"

// Load locates and parses the config file. A missing file yields the zero
// config without error; every field has a working default downstream.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}
	raw, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := toml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	cfg.SQLitePath = mustExpand(cfg.SQLitePath)
	cfg.BlobRoot = mustExpand(cfg.BlobRoot)
	return cfg, nil
}

// Apply exports the configured values into the environment variables the
// storage and blob factories read. Empty fields are left alone so explicit
// environment settings win.
func (c Config) Apply() {
	setIfNotEmpty("HOMESTOCK_STORAGE_DRIVER", c.StorageDriver)
	setIfNotEmpty("HOMESTOCK_SQLITE_PATH", c.SQLitePath)
	setIfNotEmpty("HOMESTOCK_POSTGRES_DSN", c.PostgresDSN)
	setIfNotEmpty("HOMESTOCK_BLOB_DRIVER", c.BlobDriver)
	setIfNotEmpty("HOMESTOCK_BLOB_FS_ROOT", c.BlobRoot)
	setIfNotEmpty("HOMESTOCK_BLOB_S3_BUCKET", c.S3Bucket)
}

func setIfNotEmpty(key, value string) {
	if value != "" && os.Getenv(key) == "" {
		_ = os.Setenv(key, value)
	}
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	if strings.TrimSpace(path) == "" {
		return path
	}
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
