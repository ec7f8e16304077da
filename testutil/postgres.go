// Package testutil starts a throwaway Postgres for package tests.
package testutil

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"competition-system/database"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
)

const image = "postgres:16-alpine"

// StartPostgres runs a Postgres container, applies the schema and returns the handle with
// a function that tears everything down.
func StartPostgres(ctx context.Context) (db *gorm.DB, terminate func(), err error) {
	// Some Docker provider lookups panic instead of returning an error.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("docker unavailable: %v", r)
		}
	}()

	container, err := postgres.Run(ctx, image,
		postgres.WithDatabase("competitions_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		if container != nil {
			_ = container.Terminate(ctx)
		}
		return nil, nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, nil, fmt.Errorf("failed to get connection string: %w", err)
	}

	db, err = database.Open(ctx, dsn, database.Options{MaxOpenConns: 10})
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, nil, err
	}
	if err := database.Migrate(ctx, db); err != nil {
		_ = database.Close(db)
		_ = container.Terminate(ctx)
		return nil, nil, err
	}

	terminate = func() {
		_ = database.Close(db)
		if err := container.Terminate(context.Background()); err != nil {
			slog.Warn("Failed to terminate postgres container", "error", err)
		}
	}
	return db, terminate, nil
}

// RunWithDatabase is meant for TestMain. It points *db at a fresh database for the run,
// or leaves it nil when Docker is unavailable so DB skips the tests that need it.
func RunWithDatabase(m *testing.M, db **gorm.DB) int {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	started, terminate, err := StartPostgres(ctx)
	cancel()
	if err != nil {
		slog.Warn("Skipping database tests", "error", err)
		return m.Run()
	}
	defer terminate()

	*db = started
	return m.Run()
}

// DB returns db emptied of all rows, or skips t when no database is running.
func DB(t *testing.T, db *gorm.DB) *gorm.DB {
	t.Helper()
	if db == nil {
		t.Skip("postgres container not available")
	}
	stmt := fmt.Sprintf("TRUNCATE %s RESTART IDENTITY CASCADE", strings.Join(database.Tables, ", "))
	if err := db.Exec(stmt).Error; err != nil {
		t.Fatalf("failed to truncate tables: %v", err)
	}
	return db
}
