// Package migrate applies plain SQL migration files to a database and keeps
// a ledger table of everything that was applied before.
package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"
)

var (
	// ErrNoTable indicates the ledger table does not exist yet.
	ErrNoTable = errors.New("migrations table does not exist")

	// ErrMigrationsMismatch indicates the migration files on disk no longer
	// line up with the ledger. This happens when files were removed or
	// renamed after they ran. There is no safe way to recover from this
	// automatically.
	ErrMigrationsMismatch = errors.New("migrations mismatch")
)

// Migration is a single applied migration as recorded in the ledger.
type Migration struct {
	// Sequence numbers migrations in the order they ran, starting at 0.
	Sequence int
	Filename string
	Metadata Metadata
}

// Metadata records who ran a migration and when. It is stored alongside
// each ledger entry to help reconstruct what happened after the fact.
type Metadata struct {
	AppVersion string
	Timestamp  time.Time
}

// MigrationError wraps the cause of a failed migration with the sequence
// and filename of the file that failed.
type MigrationError struct {
	Sequence int
	Filename string
	Err      error
}

func (m MigrationError) Error() string {
	return fmt.Sprintf("migration [%d] %q failed: %v", m.Sequence, m.Filename, m.Err)
}

func (m MigrationError) Unwrap() error {
	return m.Err
}

// RunFS applies all pending .sql files in the root of fileSys, in filename
// order, inside a single transaction. Files that appear in the ledger are
// verified against it and skipped. It returns the migrations applied by
// this call, an empty slice when the database was already up to date.
func RunFS(ctx context.Context, db *sql.DB, fileSys fs.FS, meta Metadata) ([]Migration, error) {
	files, err := readMigrationFiles(fileSys)
	if err != nil {
		return nil, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	applied, err := applyPending(ctx, tx, files, meta)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return nil, errors.Join(err, rbErr)
		}
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return applied, nil
}

const createLedgerQuery = `CREATE TABLE IF NOT EXISTS migrations (
	sequence    INTEGER PRIMARY KEY,
	filename    TEXT NOT NULL,
	app_version TEXT NOT NULL,
	timestamp   TIMESTAMP NOT NULL
)`

func applyPending(ctx context.Context, tx *sql.Tx, files []migrationFile, meta Metadata) ([]Migration, error) {
	if _, err := tx.ExecContext(ctx, createLedgerQuery); err != nil {
		return nil, fmt.Errorf("failed to create migrations table: %w", err)
	}

	ledger, err := scanLedger(tx.QueryContext(ctx, selectLedgerQuery))
	if err != nil {
		return nil, err
	}

	if err := verifyLedger(ledger, files); err != nil {
		return nil, err
	}

	applied := make([]Migration, 0, len(files)-len(ledger))
	for seq := len(ledger); seq < len(files); seq++ {
		f := files[seq]

		if _, err := tx.ExecContext(ctx, f.content); err != nil {
			return nil, MigrationError{
				Sequence: seq,
				Filename: f.name,
				Err:      err,
			}
		}

		const insert = `INSERT INTO migrations (sequence, filename, app_version, timestamp) VALUES (?, ?, ?, ?)`
		_, err := tx.ExecContext(ctx, insert, seq, f.name, meta.AppVersion, meta.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("failed to record migration %q: %w", f.name, err)
		}

		applied = append(applied, Migration{
			Sequence: seq,
			Filename: f.name,
			Metadata: meta,
		})
	}

	return applied, nil
}

// verifyLedger checks that every ledger entry still corresponds to a file
// with the same name at the same position.
func verifyLedger(ledger []Migration, files []migrationFile) error {
	if len(ledger) > len(files) {
		return fmt.Errorf(
			"ledger has %d migrations but only %d files remain: %w",
			len(ledger), len(files), ErrMigrationsMismatch,
		)
	}

	for i, entry := range ledger {
		if entry.Sequence != i {
			return fmt.Errorf(
				"ledger entry %d has sequence %d: %w",
				i, entry.Sequence, ErrMigrationsMismatch,
			)
		}
		if entry.Filename != files[i].name {
			return fmt.Errorf(
				"migration %d ran as %q but the file is now %q: %w",
				i, entry.Filename, files[i].name, ErrMigrationsMismatch,
			)
		}
	}

	return nil
}

const selectLedgerQuery = `SELECT sequence, filename, app_version, timestamp FROM migrations ORDER BY sequence`

// QueryMigrations returns all ledger entries in the order they were applied.
// It returns ErrNoTable if no migrations have ever run against this database.
func QueryMigrations(ctx context.Context, db *sql.DB) ([]Migration, error) {
	return scanLedger(db.QueryContext(ctx, selectLedgerQuery))
}

func scanLedger(rows *sql.Rows, err error) ([]Migration, error) {
	if err != nil {
		// The sqlite driver has no sentinel error for this, matching on the
		// message is the best we can do.
		if strings.Contains(err.Error(), "no such table") {
			return nil, ErrNoTable
		}
		return nil, fmt.Errorf("failed to query migrations: %w", err)
	}
	defer rows.Close()

	ledger := make([]Migration, 0)
	for rows.Next() {
		var m Migration
		err := rows.Scan(&m.Sequence, &m.Filename, &m.Metadata.AppVersion, &m.Metadata.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("failed to scan migration: %w", err)
		}
		ledger = append(ledger, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate over migrations: %w", err)
	}

	return ledger, nil
}

type migrationFile struct {
	name    string
	content string
}

func readMigrationFiles(fileSys fs.FS) ([]migrationFile, error) {
	entries, err := fs.ReadDir(fileSys, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	files := make([]migrationFile, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		content, err := fs.ReadFile(fileSys, entry.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read migration %q: %w", entry.Name(), err)
		}

		files = append(files, migrationFile{
			name:    entry.Name(),
			content: string(content),
		})
	}

	// fs.ReadDir already sorts by filename, but the run order is too
	// important to leave to an implementation detail.
	sort.Slice(files, func(i, j int) bool {
		return files[i].name < files[j].name
	})

	return files, nil
}
