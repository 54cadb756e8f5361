package app

import (
	"path/filepath"
	"testing"
)

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	if err := cfg.ApplyDefaults(); err != nil {
		t.Fatalf("apply defaults: %v", err)
	}

	if cfg.LogFormat != LogFormatText {
		t.Fatalf("expected text log format, got %q", cfg.LogFormat)
	}
	if cfg.Service != DefaultConfigService {
		t.Fatalf("expected default service, got %q", cfg.Service)
	}
	if cfg.Storage.Type != StorageTypeFile {
		t.Fatalf("expected file storage, got %q", cfg.Storage.Type)
	}
	if cfg.Storage.File == "" {
		t.Fatal("expected derived file path")
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestApplyDefaultsKeyringNamespace(t *testing.T) {
	cfg := &Config{Storage: StorageConfig{Type: StorageTypeKeyring}}
	if err := cfg.ApplyDefaults(); err != nil {
		t.Fatalf("apply defaults: %v", err)
	}
	if cfg.Storage.Keyring != DefaultConfigKeyringNamespace {
		t.Fatalf("expected default keyring namespace, got %q", cfg.Storage.Keyring)
	}
}

func TestValidateRejectsUnknownStorage(t *testing.T) {
	cfg := &Config{
		LogFormat: LogFormatText,
		Service:   "gmail",
		Storage:   StorageConfig{Type: "redis"},
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for unknown storage type")
	}
}

func TestValidateRejectsMissingService(t *testing.T) {
	cfg := &Config{
		LogFormat: LogFormatText,
		Storage:   StorageConfig{Type: StorageTypeMemory},
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for missing service")
	}
}

func TestStorageConfigNewStore(t *testing.T) {
	tests := []struct {
		name    string
		cfg     StorageConfig
		wantErr bool
	}{
		{
			name: "memory",
			cfg:  StorageConfig{Type: StorageTypeMemory},
		},
		{
			name: "file",
			cfg:  StorageConfig{Type: StorageTypeFile, File: filepath.Join(t.TempDir(), "accounts.json")},
		},
		{
			name:    "file without path",
			cfg:     StorageConfig{Type: StorageTypeFile},
			wantErr: true,
		},
		{
			name:    "unknown type",
			cfg:     StorageConfig{Type: "redis"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := tt.cfg.NewStore()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if store == nil {
				t.Fatal("expected store")
			}
		})
	}
}
