package app

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"

	"github.com/florianilch/switchboard/internal/kvstore"
)

// LogFormat represents the logging output format.
type LogFormat string

const (
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
)

// StorageType represents the different backends supported for the account store.
type StorageType string

const (
	StorageTypeMemory  StorageType = "memory"
	StorageTypeFile    StorageType = "file"
	StorageTypeKeyring StorageType = "keyring"
	StorageTypeSQLite  StorageType = "sqlite"
)

// Default configuration values
const (
	DefaultConfigLogFormat        = LogFormatText
	DefaultConfigStorage          = StorageTypeFile
	DefaultConfigService          = "anthropic"
	DefaultConfigKeyringNamespace = "switchboard"
)

// StorageConfig describes how to construct the key-value store backing the
// account directory.
type StorageConfig struct {
	Type StorageType `json:"type" validate:"required,oneof=memory file keyring sqlite"`

	// Backend-specific settings (mutually exclusive based on Type)
	File    string `json:"file,omitempty"`    // For file storage: path to the JSON document
	SQLite  string `json:"sqlite,omitempty"`  // For sqlite storage: database path or DSN
	Keyring string `json:"keyring,omitempty"` // For keyring storage: keyring service namespace
}

// NewStore creates a key-value store from the storage configuration.
func (s *StorageConfig) NewStore() (kvstore.Store, error) {
	switch s.Type {
	case StorageTypeMemory:
		return kvstore.NewMemoryStore(), nil
	case StorageTypeFile:
		return kvstore.NewFileStore(s.File)
	case StorageTypeKeyring:
		return kvstore.NewKeyringStore(s.Keyring)
	case StorageTypeSQLite:
		return kvstore.NewSQLiteStore(s.SQLite)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", s.Type)
	}
}

// Config holds the application's configuration.
type Config struct {
	// LogLevel for logging output (defaults to Info if unset).
	LogLevel  slog.Level `json:"log_level"`
	LogFormat LogFormat  `json:"log_format" validate:"oneof=text json"`

	// Service scopes directory operations when no --service flag is given.
	Service string `json:"service" validate:"required"`

	Storage StorageConfig `json:"storage"`
}

// Default creates a new Config with default values applied.
func Default() (*Config, error) {
	cfg := &Config{}
	if err := cfg.ApplyDefaults(); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}
	return cfg, nil
}

// ApplyDefaults fills unset config fields with sensible defaults.
func (c *Config) ApplyDefaults() error {
	if c.LogFormat == "" {
		c.LogFormat = DefaultConfigLogFormat
	}
	if c.Service == "" {
		c.Service = DefaultConfigService
	}
	if c.Storage.Type == "" {
		c.Storage.Type = DefaultConfigStorage
	}

	// Dynamic defaults based on storage type
	switch c.Storage.Type {
	case StorageTypeFile:
		if c.Storage.File == "" {
			configDir, err := os.UserConfigDir()
			if err != nil {
				return fmt.Errorf("storage.file required (auto-detect failed: %w)", err)
			}
			c.Storage.File = filepath.Join(configDir, "switchboard", "accounts.json")
		}
	case StorageTypeSQLite:
		if c.Storage.SQLite == "" {
			configDir, err := os.UserConfigDir()
			if err != nil {
				return fmt.Errorf("storage.sqlite required (auto-detect failed: %w)", err)
			}
			c.Storage.SQLite = filepath.Join(configDir, "switchboard", "accounts.db")
		}
	case StorageTypeKeyring:
		if c.Storage.Keyring == "" {
			c.Storage.Keyring = DefaultConfigKeyringNamespace
		}
	case StorageTypeMemory:
		// Nothing to derive
	}

	return nil
}

// Validate validates the configuration using struct tags and enum values.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	switch c.Storage.Type {
	case StorageTypeFile:
		if c.Storage.File == "" {
			return errors.New("file path required for file storage")
		}
	case StorageTypeSQLite:
		if c.Storage.SQLite == "" {
			return errors.New("sqlite path required for sqlite storage")
		}
	case StorageTypeKeyring:
		if c.Storage.Keyring == "" {
			return errors.New("keyring namespace required for keyring storage")
		}
	case StorageTypeMemory:
		// Nothing to check
	}

	return nil
}
