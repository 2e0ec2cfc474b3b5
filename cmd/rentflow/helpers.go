package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/hollyburn/rentflow/internal/config"
	"github.com/hollyburn/rentflow/internal/service"
	"github.com/hollyburn/rentflow/internal/storage"
)

// initStorage initializes the storage service with proper path expansion.
func initStorage(ctx context.Context) (service.Storage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = config.DefaultDatabasePath()
	}
	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// currentOwner returns the owner scope for this invocation.
func currentOwner() string {
	owner := viper.GetString("owner")
	if owner == "" {
		owner = "default"
	}
	return owner
}

// parseDateFlag parses a YYYY-MM-DD flag value, defaulting to today when
// empty.
func parseDateFlag(value string) (time.Time, error) {
	if value == "" {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", value)
	}
	return parsed, nil
}
