package cli

import (
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	t.Run("defaults validate", func(t *testing.T) {
		t.Setenv("DATA_BACKEND", "memory")
		t.Setenv("LOG_LEVEL", "info")
		cfg, err := LoadConfig()
		if err != nil {
			t.Fatalf("LoadConfig: %v", err)
		}
		if cfg.DataBackend != "memory" {
			t.Fatalf("DataBackend = %q", cfg.DataBackend)
		}
	})

	t.Run("invalid values are reported", func(t *testing.T) {
		t.Setenv("DATA_BACKEND", "postgres")
		_, err := LoadConfig()
		if err == nil || !strings.Contains(err.Error(), "invalid data backend") {
			t.Fatalf("expected data backend error, got %v", err)
		}
	})
}

func TestSetupLogger(t *testing.T) {
	logger := SetupLogger("debug", "worker")
	if logger.Component() != "worker" {
		t.Fatalf("Component = %q", logger.Component())
	}
	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("expected debug level to be enabled")
	}
}
