package db

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/balkashynov/todo/internal/models"
)

// DB is a SQLite-backed storage.Storage holding one row per durable record
type DB struct {
	conn *gorm.DB
}

// Options tweak how the database is opened
type Options struct {
	Verbose bool // log SQL through gorm's logger
}

// Open sets up the database connection and runs migrations.
// path may be ":memory:" for a throwaway database.
func Open(path string, opts Options) (*DB, error) {
	if path != ":memory:" {
		// Ensure the directory exists
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	logLevel := logger.Silent // Quiet by default
	if opts.Verbose {
		logLevel = logger.Info
	}

	conn, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql handle: %w", err)
	}
	// SQLite works best with a single writer, and :memory: is per-connection.
	sqlDB.SetMaxOpenConns(1)

	d := &DB{conn: conn}
	if err := d.runMigrations(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return d, nil
}

// DefaultPath returns the path to the SQLite database file
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".todo", "todo.db"), nil
}

// runMigrations creates/updates the database schema
func (d *DB) runMigrations() error {
	return d.conn.AutoMigrate(&models.Record{})
}

// Get returns the value stored under key
func (d *DB) Get(key string) (string, bool, error) {
	var rec models.Record
	err := d.conn.Where("name = ?", key).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %q: %w", key, err)
	}
	return rec.Value, true, nil
}

// Set replaces the value stored under key
func (d *DB) Set(key, value string) error {
	rec := models.Record{
		Name:      key,
		Value:     value,
		UpdatedAt: time.Now(),
	}
	err := d.conn.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("failed to write %q: %w", key, err)
	}
	return nil
}

// Close closes the database connection
func (d *DB) Close() error {
	sqlDB, err := d.conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
