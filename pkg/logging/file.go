package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// Format represents the log output format
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// FileLoggerConfig holds configuration for file logging
type FileLoggerConfig struct {
	// Path is the log file path
	Path string
	// Format is json or text
	Format Format
	// Level is the minimum level written
	Level Level
	// MaxSize is the size in bytes that triggers rotation (0 = no rotation)
	MaxSize int64
}

// FileLogger writes structured entries to a file, rotating the file to a
// .old sibling when it exceeds MaxSize.
type FileLogger struct {
	config FileLoggerConfig
	fields Fields

	mu   sync.Mutex
	file *os.File
	size int64
}

// NewFileLogger opens (or creates) the log file in append mode.
func NewFileLogger(config FileLoggerConfig) (*FileLogger, error) {
	if err := os.MkdirAll(filepath.Dir(config.Path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(config.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat log file: %w", err)
	}

	return &FileLogger{
		config: config,
		file:   file,
		size:   info.Size(),
	}, nil
}

func (l *FileLogger) Debug(ctx context.Context, msg string, fields Fields) {
	l.log(DebugLevel, msg, nil, fields)
}

func (l *FileLogger) Info(ctx context.Context, msg string, fields Fields) {
	l.log(InfoLevel, msg, nil, fields)
}

func (l *FileLogger) Warn(ctx context.Context, msg string, fields Fields) {
	l.log(WarnLevel, msg, nil, fields)
}

func (l *FileLogger) Error(ctx context.Context, msg string, err error, fields Fields) {
	l.log(ErrorLevel, msg, err, fields)
}

// WithFields returns a logger sharing the same file but attaching fields
// to every entry.
func (l *FileLogger) WithFields(fields Fields) Logger {
	merged := make(Fields, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &derivedLogger{parent: l, fields: merged}
}

// Close flushes and closes the backing file.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

func levelName(level Level) string {
	switch level {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	default:
		return "ERROR"
	}
}

func (l *FileLogger) log(level Level, msg string, err error, fields Fields) {
	if level < l.config.Level {
		return
	}

	merged := make(Fields, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}

	var line []byte
	now := time.Now()
	if l.config.Format == FormatJSON {
		entry := map[string]interface{}{
			"time":    now.Format(time.RFC3339),
			"level":   levelName(level),
			"message": msg,
		}
		if err != nil {
			entry["error"] = err.Error()
		}
		for k, v := range merged {
			entry[k] = v
		}
		data, marshalErr := json.Marshal(entry)
		if marshalErr != nil {
			return
		}
		line = append(data, '\n')
	} else {
		text := fmt.Sprintf("%s [%s] %s", now.Format("2006-01-02 15:04:05"), levelName(level), msg)
		if err != nil {
			text += " error=" + err.Error()
		}
		keys := make([]string, 0, len(merged))
		for k := range merged {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			text += fmt.Sprintf(" %s=%v", k, merged[k])
		}
		line = []byte(text + "\n")
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return
	}

	if l.config.MaxSize > 0 && l.size+int64(len(line)) > l.config.MaxSize {
		l.rotate()
	}

	n, writeErr := l.file.Write(line)
	if writeErr == nil {
		l.size += int64(n)
	}
}

// rotate renames the current file to .old and reopens. Called with mu held.
func (l *FileLogger) rotate() {
	l.file.Close()
	os.Rename(l.config.Path, l.config.Path+".old")
	file, err := os.OpenFile(l.config.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		l.file = nil
		return
	}
	l.file = file
	l.size = 0
}

// derivedLogger delegates to the parent file with extra fields attached
type derivedLogger struct {
	parent *FileLogger
	fields Fields
}

func (d *derivedLogger) log(level Level, msg string, err error, fields Fields) {
	merged := make(Fields, len(d.fields)+len(fields))
	for k, v := range d.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	d.parent.log(level, msg, err, merged)
}

func (d *derivedLogger) Debug(ctx context.Context, msg string, fields Fields) {
	d.log(DebugLevel, msg, nil, fields)
}

func (d *derivedLogger) Info(ctx context.Context, msg string, fields Fields) {
	d.log(InfoLevel, msg, nil, fields)
}

func (d *derivedLogger) Warn(ctx context.Context, msg string, fields Fields) {
	d.log(WarnLevel, msg, nil, fields)
}

func (d *derivedLogger) Error(ctx context.Context, msg string, err error, fields Fields) {
	d.log(ErrorLevel, msg, err, fields)
}

func (d *derivedLogger) WithFields(fields Fields) Logger {
	merged := make(Fields, len(d.fields)+len(fields))
	for k, v := range d.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &derivedLogger{parent: d.parent, fields: merged}
}

func (d *derivedLogger) Close() error {
	return d.parent.Close()
}
