package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration written in YAML as a Go duration string
// ("50ms", "1s").
type Duration time.Duration

// UnmarshalYAML accepts duration strings and plain integers (milliseconds).
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: duration must be a scalar", value.Line)
	}
	s := strings.TrimSpace(value.Value)
	if s == "" {
		*d = 0
		return nil
	}
	if parsed, err := time.ParseDuration(s); err == nil {
		*d = Duration(parsed)
		return nil
	}
	var ms int64
	if err := value.Decode(&ms); err != nil {
		return fmt.Errorf("line %d: invalid duration %q", value.Line, s)
	}
	*d = Duration(time.Duration(ms) * time.Millisecond)
	return nil
}

// MarshalYAML writes the duration string form.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// MoveConfig controls the request+verify protocol of window moves.
type MoveConfig struct {
	// Verify re-reads the window's Space after a move request.
	// Default: true
	Verify *bool `yaml:"verify"`
	// VerifyAttempts is how many verification reads are made before a move
	// is reported unconfirmed.
	VerifyAttempts int `yaml:"verify_attempts"`
	// VerifyInterval is the wait before each verification read.
	VerifyInterval Duration `yaml:"verify_interval"`
}

// GetVerify returns whether verification is on (default true).
func (m MoveConfig) GetVerify() bool {
	if m.Verify == nil {
		return true
	}
	return *m.Verify
}

// JournalConfig configures the move journal.
type JournalConfig struct {
	Enabled bool `yaml:"enabled,omitempty"`
	// Level filters entries: debug, info, warn, error
	Level string `yaml:"level,omitempty"`
	// File is the journal path (default: ~/.local/share/dashspace/moves.log)
	File      string `yaml:"file,omitempty"`
	MaxSizeMB int    `yaml:"max_size_mb,omitempty"`
	MaxFiles  int    `yaml:"max_files,omitempty"`
}

// PermissionsConfig configures accessibility permission polling.
type PermissionsConfig struct {
	PollInterval Duration `yaml:"poll_interval"`
}

// Config is the effective dashspace configuration.
type Config struct {
	// Backend selects the window server integration: auto, darwin, x11, none
	Backend string `yaml:"backend"`
	// LogLevel is the diagnostic log level: debug, info, warn, warning, error
	LogLevel    string            `yaml:"log_level"`
	Move        MoveConfig        `yaml:"move"`
	Journal     JournalConfig     `yaml:"journal"`
	Permissions PermissionsConfig `yaml:"permissions"`
}

const (
	DefaultVerifyAttempts = 5
	DefaultVerifyInterval = Duration(50 * time.Millisecond)
	DefaultPollInterval   = Duration(time.Second)
)

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	verify := true
	return &Config{
		Backend:  "auto",
		LogLevel: "info",
		Move: MoveConfig{
			Verify:         &verify,
			VerifyAttempts: DefaultVerifyAttempts,
			VerifyInterval: DefaultVerifyInterval,
		},
		Permissions: PermissionsConfig{
			PollInterval: DefaultPollInterval,
		},
	}
}

// GetJournalConfig returns the journal configuration with defaults applied
// and a leading "~/" expanded.
func (c *Config) GetJournalConfig() JournalConfig {
	if c == nil {
		return JournalConfig{}
	}
	cfg := c.Journal
	if cfg.File == "" {
		cfg.File = filepath.Join(homeDir(), ".local", "share", "dashspace", "moves.log")
	} else {
		cfg.File = expandHome(cfg.File)
	}
	if cfg.MaxSizeMB == 0 {
		cfg.MaxSizeMB = 5
	}
	if cfg.MaxFiles == 0 {
		cfg.MaxFiles = 3
	}
	if cfg.Level == "" {
		cfg.Level = "info"
	}
	return cfg
}

// Validate performs strict validation of the effective configuration.
func (c *Config) Validate() error {
	switch c.Backend {
	case "auto", "darwin", "x11", "none":
	default:
		return &ValidationError{Path: "backend", Err: fmt.Errorf("backend must be one of: auto, darwin, x11, none")}
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warn, warning, error")}
	}
	if c.Move.VerifyAttempts < 1 {
		return &ValidationError{Path: "move.verify_attempts", Err: fmt.Errorf("verify_attempts must be >= 1")}
	}
	if c.Move.VerifyInterval < 0 {
		return &ValidationError{Path: "move.verify_interval", Err: fmt.Errorf("verify_interval must be >= 0")}
	}
	if c.Move.VerifyInterval.Std() > 10*time.Second {
		return &ValidationError{Path: "move.verify_interval", Err: fmt.Errorf("verify_interval must be <= 10s")}
	}
	if c.Journal.MaxSizeMB < 0 {
		return &ValidationError{Path: "journal.max_size_mb", Err: fmt.Errorf("max_size_mb must be >= 0")}
	}
	if c.Journal.MaxFiles < 0 {
		return &ValidationError{Path: "journal.max_files", Err: fmt.Errorf("max_files must be >= 0")}
	}
	switch c.Journal.Level {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return &ValidationError{Path: "journal.level", Err: fmt.Errorf("level must be one of: debug, info, warn, error")}
	}
	if c.Permissions.PollInterval <= 0 {
		return &ValidationError{Path: "permissions.poll_interval", Err: fmt.Errorf("poll_interval must be > 0")}
	}
	return nil
}

// ValidationError reports an invalid configuration value, with the file
// position of the value when it came from a file.
type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = os.Getenv("HOME")
	}
	if home == "" {
		// Last resort fallback - use current directory
		home = "."
	}
	return home
}

func expandHome(path string) string {
	if path == "~" {
		return homeDir()
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir(), path[2:])
	}
	return path
}
