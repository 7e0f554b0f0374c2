package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "settings.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BaseURL != defaultBaseURL {
		t.Errorf("BaseURL: got %q, want %q", cfg.BaseURL, defaultBaseURL)
	}
	if cfg.Gateway.Host != "127.0.0.1" {
		t.Errorf("Gateway.Host: got %q", cfg.Gateway.Host)
	}
	if cfg.Events.BufferSize != 1024 {
		t.Errorf("Events.BufferSize: got %d, want 1024", cfg.Events.BufferSize)
	}
}

func TestLoadParsesHuJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.json")
	contents := `{
		// ARK credentials
		"apiKey": "sk-test",
		"baseURL": "http://localhost:9999/api/v3",
		"gateway": { "port": 12345 }, // trailing comma next
	}`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIKey != "sk-test" {
		t.Errorf("APIKey: got %q", cfg.APIKey)
	}
	if cfg.BaseURL != "http://localhost:9999/api/v3" {
		t.Errorf("BaseURL: got %q", cfg.BaseURL)
	}
	if cfg.Gateway.Port != 12345 {
		t.Errorf("Gateway.Port: got %d", cfg.Gateway.Port)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.json")
	if err := os.WriteFile(path, []byte(`{"apiKey":"from-file"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("ARK_API_KEY", "from-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIKey != "from-env" {
		t.Errorf("APIKey: got %q, want env override", cfg.APIKey)
	}
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.json")
	if err := os.WriteFile(path, []byte(`{"apiKey": }`), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed settings, got nil")
	}
}

func TestDataDirEnvOverride(t *testing.T) {
	t.Setenv("SEEDCANVAS_DATA", "/tmp/seedcanvas-test")
	if got := DataDir(); got != "/tmp/seedcanvas-test" {
		t.Errorf("DataDir: got %q", got)
	}
}

func TestPaths(t *testing.T) {
	if got := SocketPath("/data"); got != filepath.Join("/data", "mcp.sock") {
		t.Errorf("SocketPath: got %q", got)
	}
	if got := DatabasePath("/data"); got != filepath.Join("/data", "seedcanvas.db") {
		t.Errorf("DatabasePath: got %q", got)
	}
	if got := ProjectsDir("/data"); got != filepath.Join("/data", "projects") {
		t.Errorf("ProjectsDir: got %q", got)
	}
}
