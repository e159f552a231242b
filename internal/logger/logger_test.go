package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/julianstephens/habitual/internal/constants"
)

func TestInit(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "data")

	if err := Init(Config{DataDir: dataDir}); err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}

	logDir := filepath.Join(dataDir, constants.LogDirName)
	if _, err := os.Stat(logDir); os.IsNotExist(err) {
		t.Errorf("Log directory was not created: %s", logDir)
	}
	if Logger == nil {
		t.Fatal("Logger is nil after initialization")
	}

	Info("habit marked", "habit", "Water", "progress", 3)
	Warn("backup skipped")
	Debug("hidden debug entry")

	data, err := os.ReadFile(filepath.Join(logDir, constants.LogFileName))
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "habit marked") {
		t.Errorf("log file missing info entry: %q", string(data))
	}
	if strings.Contains(string(data), "hidden debug entry") {
		t.Error("debug entries should be filtered in normal mode")
	}
}

func TestInitDebugMode(t *testing.T) {
	if err := Init(Config{Debug: true, DataDir: t.TempDir()}); err != nil {
		t.Fatalf("Failed to initialize logger in debug mode: %v", err)
	}
	if Logger == nil {
		t.Fatal("Logger is nil after initialization")
	}

	Debug("Test debug message in debug mode")
}

func TestLogFunctionsWithoutInit(t *testing.T) {
	Logger = nil

	// These should not panic when Logger is nil
	Debug("Test debug message")
	Info("Test info message")
	Warn("Test warning message")
	Error("Test error message")
}
