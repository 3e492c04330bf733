package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// SchemaVersion is recorded in schema_metadata when the schema is created.
const SchemaVersion = "1.0"

// CreateSchema creates all tables and indexes for extraction runs.
// Uses transactions for atomicity - all schema creation succeeds or fails together.
// Tables are created only if missing, so calling it on an existing database
// is harmless.
//
// Must be called with SQLite PRAGMA foreign_keys = ON.
func CreateSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin schema transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	// Enable foreign keys (must be set for each connection)
	if _, err := tx.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Create all tables in dependency order
	tables := []struct {
		name string
		ddl  string
	}{
		{"schema_metadata", createSchemaMetadataTable},
		{"runs", createRunsTable},
		{"files", createFilesTable},
		{"objects", createObjectsTable},
		{"object_bases", createObjectBasesTable},
		{"functions", createFunctionsTable},
		{"function_parameters", createFunctionParametersTable},
		{"variables", createVariablesTable},
	}

	for _, table := range tables {
		if _, err := tx.Exec(table.ddl); err != nil {
			return fmt.Errorf("failed to create %s table: %w", table.name, err)
		}
	}

	for i, idx := range indexes {
		if _, err := tx.Exec(idx); err != nil {
			return fmt.Errorf("failed to create index %d: %w", i+1, err)
		}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.Exec(
		`INSERT OR IGNORE INTO schema_metadata (key, value, updated_at) VALUES ('schema_version', ?, ?)`,
		SchemaVersion, now,
	); err != nil {
		return fmt.Errorf("failed to bootstrap schema_metadata: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schema transaction: %w", err)
	}
	return nil
}

// GetSchemaVersion retrieves the schema version from schema_metadata.
// Returns "0" if the table doesn't exist (new database).
func GetSchemaVersion(db *sql.DB) (string, error) {
	var exists int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_metadata'`).Scan(&exists)
	if err != nil {
		return "", fmt.Errorf("failed to check schema_metadata: %w", err)
	}
	if exists == 0 {
		return "0", nil
	}

	var version string
	err = db.QueryRow(`SELECT value FROM schema_metadata WHERE key = 'schema_version'`).Scan(&version)
	if err == sql.ErrNoRows {
		return "0", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}

const createSchemaMetadataTable = `
CREATE TABLE IF NOT EXISTS schema_metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TEXT NOT NULL
)
`

const createRunsTable = `
CREATE TABLE IF NOT EXISTS runs (
    run_id TEXT PRIMARY KEY,                     -- UUID
    created_at TEXT NOT NULL,                    -- RFC3339
    file_count INTEGER NOT NULL DEFAULT 0,
    object_count INTEGER NOT NULL DEFAULT 0,
    duration_ms INTEGER NOT NULL DEFAULT 0
)
`

const createFilesTable = `
CREATE TABLE IF NOT EXISTS files (
    file_id TEXT PRIMARY KEY,                    -- UUID
    run_id TEXT NOT NULL,
    file_no INTEGER NOT NULL,                    -- Caller-assigned file number
    file_path TEXT NOT NULL,
    language TEXT NOT NULL,
    dialect TEXT NOT NULL,                       -- indentation, brace, unknown
    line_count INTEGER NOT NULL DEFAULT 0,
    token_count INTEGER NOT NULL DEFAULT 0,
    FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
)
`

const createObjectsTable = `
CREATE TABLE IF NOT EXISTS objects (
    object_id TEXT PRIMARY KEY,                  -- UUID
    run_id TEXT NOT NULL,
    parent_object_id TEXT,                       -- Enclosing object for nested declarations
    name TEXT NOT NULL,
    keyword TEXT NOT NULL,                       -- class, struct, trait, ...
    type_params TEXT NOT NULL DEFAULT '',
    is_public INTEGER NOT NULL DEFAULT 0,        -- Boolean
    file_path TEXT NOT NULL,
    start_line INTEGER NOT NULL,
    end_line INTEGER NOT NULL,
    FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE,
    FOREIGN KEY (parent_object_id) REFERENCES objects(object_id) ON DELETE CASCADE
)
`

const createObjectBasesTable = `
CREATE TABLE IF NOT EXISTS object_bases (
    object_id TEXT NOT NULL,
    position INTEGER NOT NULL,                   -- 0-indexed order in the declaration
    base_name TEXT NOT NULL,                     -- Weak reference by name
    PRIMARY KEY (object_id, position),
    FOREIGN KEY (object_id) REFERENCES objects(object_id) ON DELETE CASCADE
)
`

const createFunctionsTable = `
CREATE TABLE IF NOT EXISTS functions (
    function_id TEXT PRIMARY KEY,                -- UUID
    object_id TEXT NOT NULL,                     -- Owning object
    parent_function_id TEXT,                     -- Enclosing function for nested definitions
    name TEXT NOT NULL,
    return_type TEXT NOT NULL DEFAULT '',        -- Empty means unspecified
    is_public INTEGER NOT NULL DEFAULT 0,        -- Boolean
    file_path TEXT NOT NULL,
    start_line INTEGER NOT NULL,
    end_line INTEGER NOT NULL,
    param_count INTEGER NOT NULL DEFAULT 0,      -- Denormalized count
    FOREIGN KEY (object_id) REFERENCES objects(object_id) ON DELETE CASCADE,
    FOREIGN KEY (parent_function_id) REFERENCES functions(function_id) ON DELETE CASCADE
)
`

const createFunctionParametersTable = `
CREATE TABLE IF NOT EXISTS function_parameters (
    param_id TEXT PRIMARY KEY,                   -- UUID
    function_id TEXT NOT NULL,
    position INTEGER NOT NULL,                   -- 0-indexed
    name TEXT NOT NULL,                          -- Empty for unnamed parameters
    param_type TEXT NOT NULL DEFAULT '',
    default_value TEXT NOT NULL DEFAULT '',
    FOREIGN KEY (function_id) REFERENCES functions(function_id) ON DELETE CASCADE
)
`

const createVariablesTable = `
CREATE TABLE IF NOT EXISTS variables (
    variable_id TEXT PRIMARY KEY,                -- UUID
    object_id TEXT NOT NULL,                     -- Object whose Variables map holds it
    name TEXT NOT NULL,
    var_type TEXT NOT NULL DEFAULT '',
    value TEXT NOT NULL DEFAULT '',
    is_public INTEGER NOT NULL DEFAULT 0,        -- Boolean
    is_receiver INTEGER NOT NULL DEFAULT 0,      -- Boolean: declared via self/this
    file_path TEXT NOT NULL,
    line INTEGER NOT NULL,
    FOREIGN KEY (object_id) REFERENCES objects(object_id) ON DELETE CASCADE
)
`

var indexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_files_run ON files(run_id)`,
	`CREATE INDEX IF NOT EXISTS idx_objects_run ON objects(run_id)`,
	`CREATE INDEX IF NOT EXISTS idx_objects_name ON objects(run_id, name)`,
	`CREATE INDEX IF NOT EXISTS idx_objects_parent ON objects(parent_object_id)`,
	`CREATE INDEX IF NOT EXISTS idx_object_bases_name ON object_bases(base_name)`,
	`CREATE INDEX IF NOT EXISTS idx_functions_object ON functions(object_id)`,
	`CREATE INDEX IF NOT EXISTS idx_function_parameters_function ON function_parameters(function_id)`,
	`CREATE INDEX IF NOT EXISTS idx_variables_object ON variables(object_id)`,
}
