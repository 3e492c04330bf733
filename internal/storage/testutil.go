package storage

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

// NewTestDB creates a fully configured in-memory SQLite database for testing.
//
// The database includes:
//   - Foreign key constraints enabled (CRITICAL for cascade deletes)
//   - Full schema created (all tables and indexes)
//   - A single pooled connection, so every query sees the same database
//   - Automatic cleanup registered with t.Cleanup()
//
// This is the standard test database helper - use it for most tests.
//
// Example:
//
//	func TestSomething(t *testing.T) {
//	    db := storage.NewTestDB(t)
//	    // ... test code ...
//	    // No need to close - t.Cleanup() handles it
//	}
func NewTestDB(t testing.TB) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	// Each pooled connection to :memory: is a separate database
	db.SetMaxOpenConns(1)

	// Enable foreign key constraints (required for cascade deletes)
	// SQLite disables foreign keys by default for backward compatibility
	_, err = db.Exec("PRAGMA foreign_keys = ON")
	require.NoError(t, err)

	// Create full schema (tables, indexes, metadata)
	err = CreateSchema(db)
	require.NoError(t, err)

	return db
}

// NewTestDBFile creates a file-based SQLite database in t.TempDir().
//
// Use this when you need to test:
//   - Several pooled connections against one database
//   - Writers sharing a connection they do not own
//
// The database includes:
//   - Foreign key constraints enabled
//   - Full schema created
//   - File located in t.TempDir() (auto-cleaned up)
//   - Automatic connection cleanup registered with t.Cleanup()
//
// Example:
//
//	func TestSharedConnection(t *testing.T) {
//	    db := storage.NewTestDBFile(t)
//	    w := storage.NewWriterWithDB(db)
//	    // Write data, close w, keep querying db
//	}
func NewTestDBFile(t testing.TB) *sql.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	// Enable foreign key constraints
	_, err = db.Exec("PRAGMA foreign_keys = ON")
	require.NoError(t, err)

	// Create full schema
	err = CreateSchema(db)
	require.NoError(t, err)

	return db
}

// NewTestDBMinimal creates an in-memory SQLite database without schema.
//
// Use this when you need to:
//   - Test schema creation itself (CreateSchema, GetSchemaVersion)
//   - Have full control over database structure
//
// The database includes:
//   - Foreign key constraints enabled
//   - NO schema created (empty database)
//   - Automatic cleanup registered with t.Cleanup()
//
// Example:
//
//	func TestSchemaCreation(t *testing.T) {
//	    db := storage.NewTestDBMinimal(t)
//	    // Now test CreateSchema()
//	    err := storage.CreateSchema(db)
//	    require.NoError(t, err)
//	}
func NewTestDBMinimal(t testing.TB) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	db.SetMaxOpenConns(1)

	// Enable foreign key constraints
	_, err = db.Exec("PRAGMA foreign_keys = ON")
	require.NoError(t, err)

	// Do NOT create schema - caller is responsible

	return db
}
