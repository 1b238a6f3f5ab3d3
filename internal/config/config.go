package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dyluth/hunt/internal/progress"
	"github.com/dyluth/hunt/pkg/stages"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultPath is where the CLI looks for configuration.
	DefaultPath = "hunt.yml"

	// DefaultDataDir holds the participant's durable client-side state.
	DefaultDataDir = "~/.hunt"

	// StateFileName is the KV file inside the data directory.
	StateFileName = "state.json"

	DriverRedis  = "redis"
	DriverSQLite = "sqlite"

	FormatConsole = "console"
	FormatJSON    = "json"
)

// HuntConfig represents the top-level hunt.yml configuration
type HuntConfig struct {
	Version string         `yaml:"version"`
	Storage StorageConfig  `yaml:"storage"`
	Logging LoggingConfig  `yaml:"logging"`
	Stages  []stages.Stage `yaml:"stages,omitempty"` // Optional registry override
}

// StorageConfig selects and locates the progress backend
type StorageConfig struct {
	Mode     string       `yaml:"mode"`     // auto, local or remote
	DataDir  string       `yaml:"data_dir"` // Durable client-side state
	Hostname string       `yaml:"hostname"` // Environment signal for auto mode; defaults to os.Hostname()
	Remote   RemoteConfig `yaml:"remote"`
}

// RemoteConfig holds connection details for the networked record store
type RemoteConfig struct {
	Driver     string `yaml:"driver"` // redis or sqlite
	RedisURL   string `yaml:"redis_url,omitempty"`
	Namespace  string `yaml:"namespace"`
	SQLitePath string `yaml:"sqlite_path,omitempty"`
}

// LoggingConfig controls the zap logger
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn or error
	Format string `yaml:"format"` // console or json
}

// Default returns a validated configuration with no file behind it.
func Default() *HuntConfig {
	cfg := &HuntConfig{Version: "1.0"}
	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("default configuration is invalid: %v", err))
	}
	return cfg
}

// Validate performs strict validation on the configuration and fills in
// defaults for omitted fields.
func (c *HuntConfig) Validate() error {
	if c.Version != "1.0" {
		return fmt.Errorf("unsupported version: %s (expected: 1.0)", c.Version)
	}

	if err := c.Storage.Validate(); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return err
	}

	if len(c.Stages) > 0 {
		if _, err := stages.New(c.Stages); err != nil {
			return fmt.Errorf("stages: %w", err)
		}
	}

	return nil
}

// Validate checks the storage section and applies defaults
func (s *StorageConfig) Validate() error {
	if s.Mode == "" {
		s.Mode = string(progress.ModeAuto)
	}
	switch progress.Mode(s.Mode) {
	case progress.ModeAuto, progress.ModeLocal, progress.ModeRemote:
	default:
		return fmt.Errorf("storage.mode must be 'auto', 'local' or 'remote', got '%s'", s.Mode)
	}

	if s.DataDir == "" {
		s.DataDir = DefaultDataDir
	}

	if s.Remote.Driver == "" {
		s.Remote.Driver = DriverRedis
	}
	if s.Remote.Namespace == "" {
		s.Remote.Namespace = "default"
	}
	switch s.Remote.Driver {
	case DriverRedis, DriverSQLite:
	default:
		return fmt.Errorf("storage.remote.driver must be 'redis' or 'sqlite', got '%s'", s.Remote.Driver)
	}

	if progress.Mode(s.Mode) == progress.ModeRemote && !s.RemoteConfigured() {
		if s.Remote.Driver == DriverRedis {
			return fmt.Errorf("storage.mode is 'remote' but storage.remote.redis_url is empty")
		}
		return fmt.Errorf("storage.mode is 'remote' but storage.remote.sqlite_path is empty")
	}

	return nil
}

// RemoteConfigured reports whether the selected driver has connection details
func (s *StorageConfig) RemoteConfigured() bool {
	switch s.Remote.Driver {
	case DriverSQLite:
		return s.Remote.SQLitePath != ""
	default:
		return s.Remote.RedisURL != ""
	}
}

// Validate checks the logging section and applies defaults
func (l *LoggingConfig) Validate() error {
	if l.Level == "" {
		l.Level = "info"
	}
	switch strings.ToLower(l.Level) {
	case "debug", "info", "warn", "error":
		l.Level = strings.ToLower(l.Level)
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got '%s'", l.Level)
	}

	if l.Format == "" {
		l.Format = FormatConsole
	}
	if l.Format != FormatConsole && l.Format != FormatJSON {
		return fmt.Errorf("logging.format must be 'console' or 'json', got '%s'", l.Format)
	}

	return nil
}

// RemoteConfigured reports whether the networked record store can be reached
func (c *HuntConfig) RemoteConfigured() bool {
	return c.Storage.RemoteConfigured()
}

// Registry builds the stage registry, falling back to the built-in hunt.
func (c *HuntConfig) Registry() (*stages.Registry, error) {
	if len(c.Stages) == 0 {
		return stages.Default(), nil
	}
	return stages.New(c.Stages)
}

// Environment is the backend-selection signal derived from this config.
func (c *HuntConfig) Environment() progress.Environment {
	host := c.Storage.Hostname
	if host == "" {
		host, _ = os.Hostname()
	}
	return progress.Environment{
		Mode:             progress.Mode(c.Storage.Mode),
		Hostname:         host,
		RemoteConfigured: c.RemoteConfigured(),
	}
}

// DataDir returns the data directory with a leading ~ expanded.
func (c *HuntConfig) DataDir() (string, error) {
	dir := c.Storage.DataDir
	if dir == "~" || strings.HasPrefix(dir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve home directory: %w", err)
		}
		dir = filepath.Join(home, strings.TrimPrefix(dir, "~"))
	}
	return dir, nil
}

// StatePath is the location of the durable KV file.
func (c *HuntConfig) StatePath() (string, error) {
	dir, err := c.DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, StateFileName), nil
}

// ApplyEnv overrides fields from HUNT_* variables looked up with getenv.
// It does not validate, so callers can layer further overrides before
// calling Validate. Pass os.Getenv in production.
func (c *HuntConfig) ApplyEnv(getenv func(string) string) {
	overrides := []struct {
		name   string
		target *string
	}{
		{"HUNT_STORAGE_MODE", &c.Storage.Mode},
		{"HUNT_DATA_DIR", &c.Storage.DataDir},
		{"HUNT_REDIS_URL", &c.Storage.Remote.RedisURL},
		{"HUNT_SQLITE_PATH", &c.Storage.Remote.SQLitePath},
		{"HUNT_NAMESPACE", &c.Storage.Remote.Namespace},
		{"HUNT_LOG_LEVEL", &c.Logging.Level},
	}
	for _, o := range overrides {
		if v := getenv(o.name); v != "" {
			*o.target = v
		}
	}

	// A SQLite path with no explicit Redis URL implies the sqlite driver.
	if getenv("HUNT_SQLITE_PATH") != "" && getenv("HUNT_REDIS_URL") == "" {
		c.Storage.Remote.Driver = DriverSQLite
	}
}

// Load reads and validates hunt.yml from the specified path
func Load(path string) (*HuntConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config HuntConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// LoadOrDefault is Load, except that a missing file yields Default().
func LoadOrDefault(path string) (*HuntConfig, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}
