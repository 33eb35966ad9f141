// Package config loads pandora's optional TOML configuration file and
// resolves the environment variables the parsing core honors.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// Environment variables read by the parsing core.
const (
	EnvChunkMB       = "PANDORA_CHUNK_MB"
	EnvEnablePinning = "PANDORA_ENABLE_PINNING"
)

// DefaultChunkMB is the chunk / streaming segment size used when
// PANDORA_CHUNK_MB is unset or not an integer.
const DefaultChunkMB = 64

// ParseConfig supplies defaults for the parse command. CLI flags override
// the file; the environment variables override both.
type ParseConfig struct {
	ChunkMB int    `toml:"chunkMB"`
	Workers int    `toml:"workers"`
	Mmap    bool   `toml:"mmap"`
	Format  string `toml:"format"`
	Pinning bool   `toml:"pinning"`
}

// GenerateConfig supplies defaults for the generate command.
type GenerateConfig struct {
	SizeMB int    `toml:"sizeMB"`
	Format string `toml:"format"`
}

type Config struct {
	Parse    *ParseConfig    `toml:"parse"`
	Generate *GenerateConfig `toml:"generate"`
}

// Load reads and decodes a TOML config file.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if _, err := toml.Decode(string(raw), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if cfg.Parse != nil && cfg.Parse.Format != "" {
		switch cfg.Parse.Format {
		case "auto", "plain", "json", "logfmt", "csv":
		default:
			return nil, fmt.Errorf("invalid format %q in config", cfg.Parse.Format)
		}
	}

	return &cfg, nil
}

// ChunkBytes resolves the chunk size in bytes from PANDORA_CHUNK_MB,
// clamped to a minimum of 1 MiB. An unset or unparseable variable falls back
// to the default.
func ChunkBytes() int {
	mb := DefaultChunkMB
	if v := os.Getenv(EnvChunkMB); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			mb = parsed
			if mb < 1 {
				mb = 1
			}
		}
	}
	return mb * 1024 * 1024
}

// PinningEnabled reports whether PANDORA_ENABLE_PINNING requests worker
// thread pinning ("1" or "true", case-insensitive).
func PinningEnabled() bool {
	v := os.Getenv(EnvEnablePinning)
	return v == "1" || strings.EqualFold(v, "true")
}
