package logging

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newFileLogger(t *testing.T, format Format, level Level) (*FileLogger, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ops.log")
	logger, err := NewFileLogger(FileLoggerConfig{
		Path:   path,
		Format: format,
		Level:  level,
	})
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	return logger, path
}

func TestFileLoggerJSONEntries(t *testing.T) {
	logger, path := newFileLogger(t, FormatJSON, InfoLevel)
	ctx := context.Background()

	logger.Info(ctx, "scan started", Fields{"total": 42})
	logger.Error(ctx, "copy failed", errors.New("permission denied"), Fields{"file": "a.pdf"})
	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}

	var first map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("line 0 is not JSON: %v", err)
	}
	if first["message"] != "scan started" {
		t.Errorf("message = %v", first["message"])
	}
	if first["total"] != float64(42) {
		t.Errorf("total = %v", first["total"])
	}

	var second map[string]interface{}
	if err := json.Unmarshal([]byte(lines[1]), &second); err != nil {
		t.Fatalf("line 1 is not JSON: %v", err)
	}
	if second["level"] != "ERROR" {
		t.Errorf("level = %v", second["level"])
	}
	if second["error"] != "permission denied" {
		t.Errorf("error = %v", second["error"])
	}
}

func TestFileLoggerLevelFilter(t *testing.T) {
	logger, path := newFileLogger(t, FormatText, WarnLevel)
	ctx := context.Background()

	logger.Debug(ctx, "dropped", nil)
	logger.Info(ctx, "dropped too", nil)
	logger.Warn(ctx, "kept", nil)
	logger.Close()

	data, _ := os.ReadFile(path)
	out := string(data)
	if strings.Contains(out, "dropped") {
		t.Error("entries below the configured level must be filtered")
	}
	if !strings.Contains(out, "kept") {
		t.Error("warn entry missing")
	}
}

func TestFileLoggerWithFields(t *testing.T) {
	logger, path := newFileLogger(t, FormatJSON, DebugLevel)
	ctx := context.Background()

	opLogger := logger.WithFields(Fields{"operation_id": "op-1"})
	opLogger.Info(ctx, "item done", Fields{"file": "b.pdf"})
	logger.Close()

	data, _ := os.ReadFile(path)
	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(strings.TrimSpace(string(data))), &entry); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if entry["operation_id"] != "op-1" {
		t.Errorf("operation_id = %v", entry["operation_id"])
	}
	if entry["file"] != "b.pdf" {
		t.Errorf("file = %v", entry["file"])
	}
}

func TestFileLoggerRotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ops.log")
	logger, err := NewFileLogger(FileLoggerConfig{
		Path:    path,
		Format:  FormatText,
		Level:   DebugLevel,
		MaxSize: 256,
	})
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}

	ctx := context.Background()
	for i := 0; i < 50; i++ {
		logger.Info(ctx, "padding entry to force a rotation", Fields{"i": i})
	}
	logger.Close()

	if _, err := os.Stat(path + ".old"); err != nil {
		t.Errorf("expected rotated file: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("current log missing: %v", err)
	}
	if info.Size() > 512 {
		t.Errorf("current log size %d suggests rotation never happened", info.Size())
	}
}
