// Package config loads deskfs configuration from defaults, an optional TOML
// file and DESKFS_* environment variables, in that order of precedence.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is the prefix of every environment variable read by Load.
const EnvPrefix = "DESKFS"

// Config holds all application configuration. Environment keys are derived
// from field names, e.g. DESKFS_LOG_LEVEL or DESKFS_MOUNT_ALLOW_OTHER.
type Config struct {
	Log      LogConfig      `toml:"log"`
	Seed     SeedConfig     `toml:"seed"`
	Terminal TerminalConfig `toml:"terminal"`
	Mount    MountConfig    `toml:"mount"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `toml:"level"`
}

// SeedConfig selects the snapshot the filesystem is seeded from. An empty
// path means the built-in desktop tree.
type SeedConfig struct {
	Path string `toml:"path"`
}

// TerminalConfig holds prompt settings.
type TerminalConfig struct {
	User  string `toml:"user"`
	Host  string `toml:"host"`
	Color bool   `toml:"color"`
}

// MountConfig holds FUSE mount configuration.
type MountConfig struct {
	Point       string `toml:"point"`
	AllowOther  bool   `toml:"allow_other" split_words:"true"`
	UID         uint32 `toml:"uid"`
	GID         uint32 `toml:"gid"`
	MetricsAddr string `toml:"metrics_addr" split_words:"true"`
}

// Default returns default configuration. Mount ownership defaults to the
// current process, overridable with PUID/PGID.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level: "warn",
		},
		Terminal: TerminalConfig{
			User:  "user",
			Host:  "portfolio-os",
			Color: true,
		},
		Mount: MountConfig{
			UID: envID("PUID", os.Getuid()),
			GID: envID("PGID", os.Getgid()),
		},
	}
}

// Load builds the configuration. path may be empty to skip the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from environment: %w", err)
	}

	return cfg, nil
}

func envID(key string, fallback int) uint32 {
	if v := os.Getenv(key); v != "" {
		if id, err := strconv.ParseUint(v, 10, 32); err == nil {
			return uint32(id)
		}
	}
	if fallback < 0 {
		return 0
	}
	return uint32(fallback)
}
