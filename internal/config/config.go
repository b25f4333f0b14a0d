// Package config loads the watchful configuration file.
//
// Resolution order: the --config flag, then $WATCHFUL_CONFIG, then
// ~/.watchful/config.yaml. A missing default file is not an error: every
// field has a default. An explicitly named file must exist.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/example/watchful/internal/core/upload"
)

// EnvConfig names the environment variable holding the config path.
const EnvConfig = "WATCHFUL_CONFIG"

// Config represents the watchful configuration.
type Config struct {
	// DataDir holds the database and, by default, the blob store.
	DataDir string `yaml:"data_dir"`

	Database     DatabaseConfig     `yaml:"database"`
	Log          LogConfig          `yaml:"log"`
	Session      SessionConfig      `yaml:"session"`
	Backend      BackendConfig      `yaml:"backend"`
	Worker       WorkerConfig       `yaml:"worker"`
	Connectivity ConnectivityConfig `yaml:"connectivity"`
	Sensor       SensorConfig       `yaml:"sensor"`
	BlobStore    BlobStoreConfig    `yaml:"blob_store"`
	Status       StatusConfig       `yaml:"status"`
}

// DatabaseConfig locates the sqlite database.
type DatabaseConfig struct {
	// Path defaults to <data_dir>/watchful.db.
	Path string `yaml:"path"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// SessionConfig is the authenticated session of this device.
type SessionConfig struct {
	// Roles are the raw role names of the signed-in user, e.g. "guardian"
	// or "child". Empty means no session.
	Roles []string `yaml:"roles"`

	// Token is the backend bearer token.
	Token string `yaml:"token"`
}

// BackendConfig locates the safety backend.
type BackendConfig struct {
	// BaseURL is the API root. Empty leaves the device offline: remote
	// reads fall back to cached values and backend sync is skipped.
	BaseURL string `yaml:"base_url"`
	Timeout string `yaml:"timeout"`
}

// WorkerConfig tunes the retry worker.
type WorkerConfig struct {
	IntervalMinutes int    `yaml:"interval_minutes"`
	ItemDelay       string `yaml:"item_delay"`
	// UploadWhen selects the upload policy: wifi, unmetered or any.
	UploadWhen string `yaml:"upload_when"`
}

// ConnectivityConfig selects how network state is observed.
type ConnectivityConfig struct {
	// Kind is the network the device is on when online: wifi, cellular,
	// ethernet, or none.
	Kind string `yaml:"kind"`

	// ProbeURL, when set, is probed to detect whether the device is online.
	// Without it the device is assumed to be on Kind permanently.
	ProbeURL      string `yaml:"probe_url"`
	ProbeInterval string `yaml:"probe_interval"`
}

// SensorConfig launches the motion sensing process.
type SensorConfig struct {
	// Command empty runs the pipeline in dry mode.
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
}

// BlobStoreConfig locates the evidence blob store.
type BlobStoreConfig struct {
	// Root defaults to <data_dir>/blobs.
	Root string `yaml:"root"`
}

// StatusConfig configures the local status API.
type StatusConfig struct {
	// Listen is the address of the status API. Empty disables it.
	Listen string `yaml:"listen"`
}

// Default returns the default configuration.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		DataDir: filepath.Join(homeDir, ".watchful"),
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Backend: BackendConfig{
			Timeout: "15s",
		},
		Worker: WorkerConfig{
			IntervalMinutes: 15,
			ItemDelay:       "2s",
			UploadWhen:      "wifi",
		},
		Connectivity: ConnectivityConfig{
			Kind:          "wifi",
			ProbeInterval: "30s",
		},
		Status: StatusConfig{
			Listen: "127.0.0.1:7787",
		},
	}
}

// DefaultPath returns ~/.watchful/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".watchful", "config.yaml"), nil
}

// Load resolves the config path and loads it. explicit is the --config
// flag value and may be empty.
func Load(explicit string) (*Config, error) {
	if explicit != "" {
		return LoadFile(explicit)
	}
	if path := os.Getenv(EnvConfig); path != "" {
		return LoadFile(path)
	}

	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	cfg, err := LoadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg = Default()
		cfg.expand()
		return cfg, cfg.Validate()
	}
	return cfg, err
}

// LoadFile loads configuration from a specific file path, on top of the
// defaults, and validates it.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	cfg.expand()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// SaveConfig writes cfg to path as YAML.
func SaveConfig(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// The file may hold a bearer token.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Validate checks every field that has a closed set of values.
func (c *Config) Validate() error {
	var problems []string

	if c.DataDir == "" {
		problems = append(problems, "data_dir is required")
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("log.level %q is not one of debug, info, warn, error", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		problems = append(problems, fmt.Sprintf("log.format %q is not one of text, json", c.Log.Format))
	}
	if c.Backend.BaseURL != "" && !strings.HasPrefix(c.Backend.BaseURL, "https://") && !strings.HasPrefix(c.Backend.BaseURL, "http://") {
		problems = append(problems, fmt.Sprintf("backend.base_url %q must be http or https", c.Backend.BaseURL))
	}
	if c.Worker.IntervalMinutes < 1 {
		problems = append(problems, "worker.interval_minutes must be at least 1")
	}
	if _, err := upload.ParsePredicate(c.Worker.UploadWhen); err != nil {
		problems = append(problems, "worker.upload_when: "+err.Error())
	}
	switch strings.ToLower(c.Connectivity.Kind) {
	case "none", "wifi", "cellular", "ethernet":
	default:
		problems = append(problems, fmt.Sprintf("connectivity.kind %q is not one of none, wifi, cellular, ethernet", c.Connectivity.Kind))
	}

	for name, value := range map[string]string{
		"backend.timeout":             c.Backend.Timeout,
		"worker.item_delay":           c.Worker.ItemDelay,
		"connectivity.probe_interval": c.Connectivity.ProbeInterval,
	} {
		if value == "" {
			continue
		}
		if d, err := time.ParseDuration(value); err != nil || d < 0 {
			problems = append(problems, fmt.Sprintf("%s %q is not a valid duration", name, value))
		}
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// DatabasePath returns the sqlite database path.
func (c *Config) DatabasePath() string {
	if c.Database.Path != "" {
		return c.Database.Path
	}
	return filepath.Join(c.DataDir, "watchful.db")
}

// BlobRoot returns the blob store directory.
func (c *Config) BlobRoot() string {
	if c.BlobStore.Root != "" {
		return c.BlobStore.Root
	}
	return filepath.Join(c.DataDir, "blobs")
}

// RetryInterval returns the worker schedule period.
func (c *Config) RetryInterval() time.Duration {
	return time.Duration(c.Worker.IntervalMinutes) * time.Minute
}

// ItemDelay returns the pause between uploads within one drain.
func (c *Config) ItemDelay() time.Duration {
	return parseDuration(c.Worker.ItemDelay, 2*time.Second)
}

// BackendTimeout returns the per-request backend timeout.
func (c *Config) BackendTimeout() time.Duration {
	return parseDuration(c.Backend.Timeout, 15*time.Second)
}

// ProbeInterval returns the connectivity probe period.
func (c *Config) ProbeInterval() time.Duration {
	return parseDuration(c.Connectivity.ProbeInterval, 30*time.Second)
}

// UploadPolicy returns the configured upload predicate.
func (c *Config) UploadPolicy() upload.Predicate {
	predicate, err := upload.ParsePredicate(c.Worker.UploadWhen)
	if err != nil {
		return upload.WifiOnly
	}
	return predicate
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d < 0 {
		return fallback
	}
	return d
}

// expand replaces a leading ~ in path fields with the home directory.
func (c *Config) expand() {
	for _, field := range []*string{&c.DataDir, &c.Database.Path, &c.BlobStore.Root, &c.Sensor.Command} {
		*field = expandHome(*field)
	}
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
