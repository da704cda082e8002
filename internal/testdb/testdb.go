// Package testdb provides a shared test database helper for fast,
// realistic testing against an in-memory SQLite database.
package testdb

import (
	"context"
	"testing"

	"github.com/qabank/qabank/infrastructure/persistence"
	"github.com/qabank/qabank/internal/database"
)

// New creates an in-memory SQLite database with migrations applied, the
// seeded aggregate set included. The database closes when the test finishes.
func New(t *testing.T) database.Database {
	t.Helper()
	ctx := context.Background()
	db, err := database.NewDatabase(ctx, "sqlite:///:memory:")
	if err != nil {
		t.Fatalf("testdb.New: open database: %v", err)
	}
	// Every sqlite :memory: connection is its own database, so the pool
	// must stay at one connection.
	if err := db.ConfigurePool(1, 1, 0); err != nil {
		t.Fatalf("testdb.New: configure pool: %v", err)
	}
	if err := persistence.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		t.Fatalf("testdb.New: migrate: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// NewPlain creates an in-memory SQLite database without running migrations.
// Useful for tests that manage their own schema.
func NewPlain(t *testing.T) database.Database {
	t.Helper()
	ctx := context.Background()
	db, err := database.NewDatabase(ctx, "sqlite:///:memory:")
	if err != nil {
		t.Fatalf("testdb.NewPlain: open database: %v", err)
	}
	if err := db.ConfigurePool(1, 1, 0); err != nil {
		t.Fatalf("testdb.NewPlain: configure pool: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}
