// Package testdb provides throwaway in-memory databases for tests.
package testdb

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/willemschots/newsroom/internal/db"
	"github.com/willemschots/newsroom/internal/migrate"
	"github.com/willemschots/newsroom/migrations"
)

// RunWhile opens an in-memory database with all migrations applied and
// closes it when the test finishes. Tests that exercise both a read and a
// write handle should pass the same returned handle twice, a second open
// would get its own empty in-memory database.
func RunWhile(t *testing.T, write bool) *sql.DB {
	t.Helper()

	testDB := RunUnmigratedWhile(t, write)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := migrate.RunFS(ctx, testDB, migrations.FS, migrate.Metadata{}); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return testDB
}

// RunUnmigratedWhile is RunWhile without the migrations, for tests that
// exercise the migration machinery itself.
func RunUnmigratedWhile(t *testing.T, write bool) *sql.DB {
	t.Helper()

	testDB, err := db.OpenSQLite(":memory:", write)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	t.Cleanup(func() {
		if err := testDB.Close(); err != nil {
			t.Errorf("failed to close database: %v", err)
		}
	})

	return testDB
}
