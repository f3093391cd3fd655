// Package journal records window move requests and their verification
// outcomes to a rotating plain-text log.
package journal

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// LogLevel defines the logging verbosity.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

// Action is the kind of move event being recorded.
type Action string

const (
	ActionMoveRequest     Action = "MOVE-REQUEST"
	ActionMoveConfirmed   Action = "MOVE-CONFIRMED"
	ActionMoveUnconfirmed Action = "MOVE-UNCONFIRMED"
	ActionMoveSkipped     Action = "MOVE-SKIPPED"
	ActionMoveNoop        Action = "MOVE-NOOP"
)

func actionLevel(action Action) LogLevel {
	switch action {
	case ActionMoveRequest, ActionMoveNoop:
		return LevelDebug
	case ActionMoveUnconfirmed:
		return LevelWarn
	default:
		return LevelInfo
	}
}

// Config holds configuration for the journal.
type Config struct {
	Enabled   bool
	Level     LogLevel
	FilePath  string
	MaxSizeMB int
	MaxFiles  int
}

// Journal appends move events to a file, rotating it when it grows past
// MaxSizeMB. A nil or disabled Journal drops every entry.
type Journal struct {
	mu          sync.Mutex
	file        *os.File
	config      Config
	currentSize int64
	now         func() time.Time
}

// Open creates the journal file (and its directory) when cfg is enabled.
func Open(cfg Config) (*Journal, error) {
	if !cfg.Enabled {
		return &Journal{config: cfg, now: time.Now}, nil
	}

	dir := filepath.Dir(cfg.FilePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory %s: %w", dir, err)
	}

	f, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal %s: %w", cfg.FilePath, err)
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to stat journal: %w", err)
	}

	return &Journal{
		file:        f,
		config:      cfg,
		currentSize: stat.Size(),
		now:         time.Now,
	}, nil
}

// Record writes one entry for window. Details are written in key order.
func (j *Journal) Record(action Action, window uint32, details map[string]interface{}) {
	if j == nil || !j.config.Enabled {
		return
	}
	if actionLevel(action) < j.config.Level {
		return
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	if j.file == nil {
		return
	}

	maxBytes := int64(j.config.MaxSizeMB) * 1024 * 1024
	if maxBytes > 0 && j.currentSize >= maxBytes {
		if err := j.rotate(); err != nil {
			fmt.Fprintf(os.Stderr, "journal rotation failed: %v\n", err)
		}
		if j.file == nil {
			return
		}
	}

	var sb strings.Builder
	sb.WriteString(j.now().Format("2006-01-02 15:04:05"))
	sb.WriteString(" [")
	sb.WriteString(string(action))
	sb.WriteString("]")
	sb.WriteString(fmt.Sprintf(" window=%d", window))

	if len(details) > 0 {
		keys := make([]string, 0, len(details))
		for k := range details {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			switch val := details[k].(type) {
			case string:
				sb.WriteString(fmt.Sprintf(" %s=%q", k, val))
			default:
				sb.WriteString(fmt.Sprintf(" %s=%v", k, val))
			}
		}
	}
	sb.WriteString("\n")

	n, err := j.file.WriteString(sb.String())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to write journal entry: %v\n", err)
		return
	}
	j.currentSize += int64(n)
}

// Close closes the journal file.
func (j *Journal) Close() error {
	if j == nil {
		return nil
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	if j.file == nil {
		return nil
	}
	err := j.file.Close()
	j.file = nil
	return err
}

// rotate shifts moves.log -> moves.log.1 -> moves.log.2 ..., keeping at most
// MaxFiles rotated files.
func (j *Journal) rotate() error {
	if j.file != nil {
		j.file.Close()
		j.file = nil
	}

	basePath := j.config.FilePath
	for i := j.config.MaxFiles; i >= 1; i-- {
		oldPath := fmt.Sprintf("%s.%d", basePath, i)
		if i == j.config.MaxFiles {
			os.Remove(oldPath)
		} else {
			os.Rename(oldPath, fmt.Sprintf("%s.%d", basePath, i+1))
		}
	}

	if j.config.MaxFiles > 0 {
		if err := os.Rename(basePath, basePath+".1"); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to rotate journal: %w", err)
		}
	} else if err := os.Remove(basePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to truncate journal: %w", err)
	}

	f, err := os.OpenFile(basePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open new journal: %w", err)
	}

	j.file = f
	j.currentSize = 0
	return nil
}

// ParseLogLevel converts a string to LogLevel. Unknown values mean info.
func ParseLogLevel(s string) LogLevel {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}
