package kvstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// record is the single-table schema backing SQLiteStore.
type record struct {
	Key   string `gorm:"primaryKey;column:key"`
	Value string `gorm:"column:value"`
}

// TableName sets the table name for record.
func (record) TableName() string {
	return "records"
}

// SQLiteStore keeps entries in an embedded SQLite database. This is the
// backend for deployments where several processes share one store; SQLite's
// own locking provides the per-key atomicity the Store contract promises.
type SQLiteStore struct {
	db *gorm.DB
}

// Compile-time checks to ensure SQLiteStore implements Store and Enumerable
var (
	_ Store      = (*SQLiteStore)(nil)
	_ Enumerable = (*SQLiteStore)(nil)
)

// NewSQLiteStore opens (creating if needed) the database at the given DSN and
// migrates the records table. Plain file paths work as DSNs.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("sqlite dsn cannot be empty")
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening sqlite store: %w", err)
	}
	if err := db.AutoMigrate(&record{}); err != nil {
		return nil, fmt.Errorf("migrating sqlite store: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Get returns the value stored under key, or ErrNotFound.
func (s *SQLiteStore) Get(ctx context.Context, key string) (string, error) {
	var r record
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return "", err
	}
	return r.Value, nil
}

// Set stores value under key, overwriting any existing row.
func (s *SQLiteStore) Set(ctx context.Context, key, value string) error {
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&record{Key: key, Value: value}).Error
}

// Delete removes the row for key, if any.
func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Where("key = ?", key).Delete(&record{}).Error
}

// Keys returns every key currently present, in no particular order.
func (s *SQLiteStore) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	if err := s.db.WithContext(ctx).Model(&record{}).Pluck("key", &keys).Error; err != nil {
		return nil, err
	}
	return keys, nil
}
