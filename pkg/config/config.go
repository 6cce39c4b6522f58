package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/renameio/v2"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/sambigeara/healthperm/pkg/grantfile"
	"github.com/sambigeara/healthperm/pkg/observability/logging"
	"github.com/sambigeara/healthperm/pkg/perm"
)

const (
	configFileName = "config.yaml"
	catalogName    = "catalog.yaml"
	directoryPerm  = 0o700
	configFilePerm = 0o600

	DefaultLogLevel     = logging.DefaultLevel
	DefaultFetchTimeout = 10 * time.Second
)

type Config struct {
	Catalog      string        `yaml:"catalog,omitempty"`
	GrantsFile   string        `yaml:"grantsFile,omitempty"`
	LogLevel     string        `yaml:"logLevel,omitempty"`
	FetchTimeout time.Duration `yaml:"fetchTimeout,omitempty"`
	// RefreshInterval re-reads the catalog periodically in the interactive
	// screen. Zero disables it.
	RefreshInterval time.Duration `yaml:"refreshInterval,omitempty"`
	// SharedGroup is the system group given access to the state directory.
	// Empty means perm.DefaultGroup; "none" keeps everything private.
	SharedGroup string `yaml:"sharedGroup,omitempty"`
}

const noSharedGroup = "none"

// SharingGroup returns the group name to pass to perm.UseGroup.
func (c *Config) SharingGroup() string {
	switch strings.TrimSpace(c.SharedGroup) {
	case "":
		return perm.DefaultGroup
	case noSharedGroup:
		return ""
	default:
		return strings.TrimSpace(c.SharedGroup)
	}
}

// Load reads config.yaml from dir. A missing or blank file yields defaults.
// Relative paths are resolved against dir.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, configFileName)
	raw, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := &Config{}
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("unmarshal config: %w", err)
		}
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	cfg.applyDefaults(dir)
	return cfg, nil
}

// Init writes config.yaml with the default settings unless dir already has
// one. It reports whether a file was written.
func Init(dir string) (bool, error) {
	_, err := os.Stat(filepath.Join(dir, configFileName))
	switch {
	case err == nil:
		return false, nil
	case !errors.Is(err, os.ErrNotExist):
		return false, fmt.Errorf("stat config: %w", err)
	}

	if err := Save(dir, &Config{LogLevel: DefaultLogLevel, FetchTimeout: DefaultFetchTimeout}); err != nil {
		return false, err
	}
	return true, nil
}

func Save(dir string, cfg *Config) error {
	if cfg == nil {
		cfg = &Config{}
	}
	if err := cfg.validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(dir, directoryPerm); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	encoded, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	path := filepath.Join(dir, configFileName)
	if err := renameio.WriteFile(path, encoded, configFilePerm); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := perm.SetGroupReadable(path); err != nil {
		return fmt.Errorf("set config permissions: %w", err)
	}
	return nil
}

func (c *Config) validate() error {
	if c.FetchTimeout < 0 {
		return errors.New("fetchTimeout must be >= 0")
	}
	if c.RefreshInterval < 0 {
		return errors.New("refreshInterval must be >= 0")
	}
	if c.LogLevel != "" {
		if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
			return fmt.Errorf("logLevel: %w", err)
		}
	}
	return nil
}

func (c *Config) applyDefaults(dir string) {
	c.Catalog = resolve(dir, c.Catalog, catalogName)
	c.GrantsFile = resolve(dir, c.GrantsFile, grantfile.FileName)
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.FetchTimeout == 0 {
		c.FetchTimeout = DefaultFetchTimeout
	}
}

func resolve(dir, path, fallback string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		path = fallback
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}
