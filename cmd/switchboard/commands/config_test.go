package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/florianilch/switchboard/internal/app"
)

func noEnv() []string {
	return nil
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig("", nil, noEnv)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Service != app.DefaultConfigService {
		t.Fatalf("expected default service, got %q", cfg.Service)
	}
	if cfg.Storage.Type != app.StorageTypeFile {
		t.Fatalf("expected file storage default, got %q", cfg.Storage.Type)
	}
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	environ := func() []string {
		return []string{
			"SWITCHBOARD_SERVICE=gmail",
			"SWITCHBOARD_STORAGE__TYPE=memory",
			"SWITCHBOARD_LOG_FORMAT=json",
			"UNRELATED=ignored",
		}
	}

	cfg, err := loadConfig("", nil, environ)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Service != "gmail" {
		t.Fatalf("expected service from env, got %q", cfg.Service)
	}
	if cfg.Storage.Type != app.StorageTypeMemory {
		t.Fatalf("expected memory storage from env, got %q", cfg.Storage.Type)
	}
	if cfg.LogFormat != app.LogFormatJSON {
		t.Fatalf("expected json log format from env, got %q", cfg.LogFormat)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `service = "calendar"

[storage]
type = "sqlite"
sqlite = "/tmp/accounts.db"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := loadConfig(path, nil, noEnv)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Service != "calendar" {
		t.Fatalf("expected service from file, got %q", cfg.Service)
	}
	if cfg.Storage.Type != app.StorageTypeSQLite || cfg.Storage.SQLite != "/tmp/accounts.db" {
		t.Fatalf("expected sqlite storage from file, got %+v", cfg.Storage)
	}
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`service = "calendar"`), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	environ := func() []string {
		return []string{"SWITCHBOARD_SERVICE=gmail"}
	}

	cfg, err := loadConfig(path, nil, environ)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Service != "gmail" {
		t.Fatalf("expected env to override file, got %q", cfg.Service)
	}
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	environ := func() []string {
		return []string{"SWITCHBOARD_STORAGE__TYPE=redis"}
	}

	if _, err := loadConfig("", nil, environ); err == nil {
		t.Fatal("expected error for unknown storage type")
	}
}
