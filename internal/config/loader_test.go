package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/voxmate/voxmate/internal/config"
)

func TestValidate_InvalidLogLevel(t *testing.T) {
	t.Parallel()
	yaml := `
server:
  log_level: bananas
engine:
  path: /usr/bin/stockfish
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for invalid log level, got nil")
	}
	if !strings.Contains(err.Error(), "log_level") {
		t.Errorf("error should mention log_level, got: %v", err)
	}
}

func TestValidate_EnginePathRequired(t *testing.T) {
	t.Parallel()
	yaml := `
server:
  log_level: info
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for missing engine path, got nil")
	}
	if !strings.Contains(err.Error(), "engine.path") {
		t.Errorf("error should mention engine.path, got: %v", err)
	}
}

func TestValidate_NegativeEloAndMoveTime(t *testing.T) {
	t.Parallel()
	yaml := `
engine:
  path: /usr/bin/stockfish
  elo: -200
  move_time_ms: -5
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "engine.elo") {
		t.Errorf("error should mention engine.elo, got: %v", err)
	}
	if !strings.Contains(err.Error(), "engine.move_time_ms") {
		t.Errorf("error should mention engine.move_time_ms, got: %v", err)
	}
}

func TestValidate_TLSRequiresBothFiles(t *testing.T) {
	t.Parallel()
	yaml := `
server:
  tls:
    cert_file: /etc/voxmate/tls.crt
engine:
  path: /usr/bin/stockfish
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for partial TLS config, got nil")
	}
	if !strings.Contains(err.Error(), "cert_file and key_file") {
		t.Errorf("error should mention cert_file and key_file, got: %v", err)
	}
}

func TestValidate_JoinsAllErrors(t *testing.T) {
	t.Parallel()
	yaml := `
server:
  log_level: loud
engine:
  elo: -1
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	for _, want := range []string{"log_level", "engine.path", "engine.elo"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("joined error should mention %s, got: %v", want, err)
		}
	}
}

func TestValidate_MissingProvidersAreNotFatal(t *testing.T) {
	t.Parallel()
	yaml := `
engine:
  path: /usr/bin/stockfish
`
	cfg, err := config.LoadFromReader(strings.NewReader(yaml))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Providers.STT.Name != "" {
		t.Errorf("stt name should be empty, got %q", cfg.Providers.STT.Name)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}

func TestLoad_FromDisk(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Engine.Path != "/usr/bin/stockfish" {
		t.Errorf("engine.path: got %q", cfg.Engine.Path)
	}
}
