package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestTeeLogger(t *testing.T) {
	var console, file bytes.Buffer
	logger := NewTeeLogger(NewJSONLogger(&console, InfoLevel), NewJSONLogger(&file, DebugLevel))

	logger.Debug("comparing clusters")
	logger.Info("compared all clusters")

	consoleLines := strings.Split(strings.TrimSpace(console.String()), "\n")
	fileLines := strings.Split(strings.TrimSpace(file.String()), "\n")

	if len(consoleLines) != 1 {
		t.Errorf("console got %d lines, want 1", len(consoleLines))
	}
	if len(fileLines) != 2 {
		t.Errorf("file got %d lines, want 2", len(fileLines))
	}
	if logger.GetLevel() != DebugLevel {
		t.Errorf("GetLevel() = %v, want DEBUG", logger.GetLevel())
	}

	child := logger.With(Component("matcher"))
	child.Info("matched")
	if !strings.Contains(console.String(), `"component":"matcher"`) {
		t.Error("child fields missing from console output")
	}
}

func TestTeeLogger_SetLevelOnlyPrimary(t *testing.T) {
	var console, file bytes.Buffer
	logger := NewTeeLogger(NewJSONLogger(&console, InfoLevel), NewJSONLogger(&file, DebugLevel))

	logger.SetLevel(ErrorLevel)
	logger.Warn("snapshot has no communities")

	if console.Len() != 0 {
		t.Errorf("console got %q, want nothing below ERROR", console.String())
	}
	if !strings.Contains(file.String(), "snapshot has no communities") {
		t.Error("file logger must keep its own level")
	}
}
