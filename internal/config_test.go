package internal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	pkgconfig "github.com/starford/kyuubi/pkg/config"
)

func TestDefaultConfig_Valid(t *testing.T) {
	if err := NewDefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
}

func TestLoadConfig_OverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "app:\n  log_level: debug\nstorage:\n  driver: sqlite\n  sqlite_path: /tmp/k.db\n  debounce: 1s\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(path, cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Storage.Driver != "sqlite" || cfg.Storage.Debounce != time.Second {
		t.Errorf("storage = %+v", cfg.Storage)
	}
	if cfg.App.HTTP.Port != 8080 || cfg.Document.ID != "kyuubi-content" {
		t.Errorf("defaults lost: %+v %+v", cfg.App, cfg.Document)
	}
	if cfg.App.LogLevel.String() != "DEBUG" {
		t.Errorf("log level = %v", cfg.App.LogLevel)
	}
}

func TestDocumentConfig_RejectsPathID(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Document.ID = "../etc/passwd"
	if err := cfg.Validate(); err == nil {
		t.Fatal("path-like document id should fail validation")
	}
}

func TestStorageConfig_UnknownDriver(t *testing.T) {
	cfg := StorageConfig{Driver: "s3"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("unknown driver should fail validation")
	}
}

func TestStorageConfig_FileDriverNeedsDir(t *testing.T) {
	cfg := StorageConfig{Driver: "file"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("file driver without dir should fail validation")
	}
}

func TestStorageConfig_WatchNeedsFileDriver(t *testing.T) {
	cfg := StorageConfig{Driver: "memory", Watch: true}
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "watch") {
		t.Fatalf("err = %v, want watch error", err)
	}
}

func TestRenderConfig_UnknownExtension(t *testing.T) {
	cfg := RenderConfig{Extensions: []string{"gfm", "mermaid"}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("unknown extension should fail validation")
	}
}

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}
