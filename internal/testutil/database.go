// Package testutil provides shared fixtures for budget tests: throwaway stores
// and a fluent builder for seeding categories, income, spending and allocations.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/sats-budget/internal/storage"
)

// SetupTestDB creates a migrated in-memory SQLite store that is closed when the test ends.
//
// Example:
//
//	store := testutil.SetupTestDB(t)
//	testutil.NewBudget(t, store).Income("2025-06-01", 100_000)
func SetupTestDB(t *testing.T) *storage.SQLiteStorage {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		_ = store.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return store
}
