package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/dgallion1/headfix/internal/heading"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port string `yaml:"port,omitempty"`

	// Auth, disabled when empty
	APIKey string `yaml:"api_key,omitempty"`

	// Upload limits
	MaxUploadBytes int64 `yaml:"max_upload_bytes,omitempty"`

	// Heading correction defaults
	Delta               int    `yaml:"delta,omitempty"`
	RelocateOrphans     bool   `yaml:"relocate_orphans,omitempty"`
	AssignIDs           bool   `yaml:"assign_ids,omitempty"`
	IDPrefix            string `yaml:"id_prefix,omitempty"`
	PreserveExistingIDs bool   `yaml:"preserve_existing_ids,omitempty"`

	LogLevel string `yaml:"log_level,omitempty"`
}

const defaultMaxUploadBytes = 10 << 20

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		Port:           "8090",
		MaxUploadBytes: defaultMaxUploadBytes,
		IDPrefix:       heading.DefaultIDPrefix,
		LogLevel:       "info",
	}
}

// Load reads the YAML file named by HEADFIX_CONFIG, if any, then applies
// environment overrides.
func Load() (Config, error) {
	cfg := Defaults()
	if path := os.Getenv("HEADFIX_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return cfg, err
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

// LoadFile is Load with an explicit config file path. An empty path
// behaves like Load.
func LoadFile(path string) (Config, error) {
	if path == "" {
		return Load()
	}
	cfg := Defaults()
	if err := cfg.loadFile(path); err != nil {
		return cfg, err
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Port = envOr("PORT", c.Port)
	c.APIKey = envOr("HEADFIX_API_KEY", c.APIKey)
	c.MaxUploadBytes = envInt64("MAX_UPLOAD_BYTES", c.MaxUploadBytes)

	c.Delta = envInt("HEADING_DELTA", c.Delta)
	c.RelocateOrphans = envBool("RELOCATE_ORPHANS", c.RelocateOrphans)
	c.AssignIDs = envBool("ASSIGN_IDS", c.AssignIDs)
	c.IDPrefix = envOr("ID_PREFIX", c.IDPrefix)
	c.PreserveExistingIDs = envBool("PRESERVE_EXISTING_IDS", c.PreserveExistingIDs)

	c.LogLevel = envOr("LOG_LEVEL", c.LogLevel)

	if c.MaxUploadBytes == 0 {
		c.MaxUploadBytes = defaultMaxUploadBytes
	}
	if c.IDPrefix == "" {
		c.IDPrefix = heading.DefaultIDPrefix
	}
}

func (c Config) Validate() error {
	if c.Delta < 0 {
		return fmt.Errorf("HEADING_DELTA must not be negative, got %d", c.Delta)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", c.MaxUploadBytes)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// HeadingOptions returns the correction defaults.
func (c Config) HeadingOptions() heading.Options {
	return heading.Options{
		Delta:               c.Delta,
		RelocateOrphans:     c.RelocateOrphans,
		AssignIDs:           c.AssignIDs,
		IDPrefix:            c.IDPrefix,
		PreserveExistingIDs: c.PreserveExistingIDs,
	}
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
