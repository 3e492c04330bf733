package storage

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/mvp-joe/polyast/internal/ast"
	"github.com/mvp-joe/polyast/internal/extractor"
)

// Open opens (or creates) the SQLite database at dbPath and ensures the
// schema exists. The caller owns the returned connection.
func Open(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// PRAGMA foreign_keys is per connection, so keep to one
	db.SetMaxOpenConns(1)

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := CreateSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Writer stores extraction runs in SQLite.
type Writer struct {
	db     *sql.DB
	ownsDB bool // true if we opened the connection, false if shared
}

// NewWriter opens dbPath, creating the schema if needed. Close releases the
// connection.
func NewWriter(dbPath string) (*Writer, error) {
	db, err := Open(dbPath)
	if err != nil {
		return nil, err
	}
	return &Writer{db: db, ownsDB: true}, nil
}

// NewWriterWithDB creates a Writer using an existing database connection.
// The caller is responsible for managing the database lifecycle (schema, foreign keys, close).
func NewWriterWithDB(db *sql.DB) *Writer {
	return &Writer{db: db, ownsDB: false}
}

// Close closes the database connection if owned by this writer.
func (w *Writer) Close() error {
	if !w.ownsDB {
		// Shared connection - caller owns it
		return nil
	}
	if w.db != nil {
		return w.db.Close()
	}
	return nil
}

// WriteRun stores one extraction result in a single transaction and returns
// the new run ID. Earlier runs are left untouched; use DeleteRun to prune.
//
// Nested objects are stored with parent_object_id set. Functions nested in
// function bodies keep parent_function_id and belong to the same object.
func (w *Writer) WriteRun(ctx context.Context, result *extractor.Result) (string, error) {
	if result == nil {
		return "", fmt.Errorf("result cannot be nil")
	}

	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	runID := uuid.New().String()
	var durationMS int64
	if result.Stats != nil {
		durationMS = result.Stats.Duration.Milliseconds()
	}

	_, err = sq.Insert("runs").
		Columns("run_id", "created_at", "file_count", "object_count", "duration_ms").
		Values(runID, time.Now().UTC().Format(time.RFC3339), len(result.Files), len(result.Objects), durationMS).
		RunWith(tx).
		ExecContext(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}

	for _, f := range result.Files {
		_, err := sq.Insert("files").
			Columns("file_id", "run_id", "file_no", "file_path", "language", "dialect", "line_count", "token_count").
			Values(uuid.New().String(), runID, f.No, f.Path, f.Language, f.Dialect.String(), len(f.LineNumbers()), f.TokenCount()).
			RunWith(tx).
			ExecContext(ctx)
		if err != nil {
			return "", fmt.Errorf("failed to insert file %s: %w", f.Path, err)
		}
	}

	rw := &runWriter{ctx: ctx, tx: tx, runID: runID}
	for _, o := range result.Objects {
		if err := rw.object(o, nil); err != nil {
			return "", err
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}
	return runID, nil
}

// DeleteRun removes a run and everything stored under it.
func (w *Writer) DeleteRun(ctx context.Context, runID string) error {
	res, err := sq.Delete("runs").
		Where(sq.Eq{"run_id": runID}).
		RunWith(w.db).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("run %s: %w", runID, ErrRunNotFound)
	}
	return nil
}

// runWriter carries the transaction through one recursive object walk.
type runWriter struct {
	ctx   context.Context
	tx    *sql.Tx
	runID string
}

func (rw *runWriter) object(o *ast.Object, parentID *string) error {
	id := uuid.New().String()
	_, err := sq.Insert("objects").
		Columns("object_id", "run_id", "parent_object_id", "name", "keyword", "type_params",
			"is_public", "file_path", "start_line", "end_line").
		Values(id, rw.runID, parentID, o.Name, o.Keyword, o.TypeParams,
			boolToInt(o.Public), o.File, o.StartLine, o.EndLine).
		RunWith(rw.tx).
		ExecContext(rw.ctx)
	if err != nil {
		return fmt.Errorf("failed to insert object %s: %w", o.Name, err)
	}

	for i, base := range o.Bases {
		_, err := sq.Insert("object_bases").
			Columns("object_id", "position", "base_name").
			Values(id, i, base).
			RunWith(rw.tx).
			ExecContext(rw.ctx)
		if err != nil {
			return fmt.Errorf("failed to insert base %s of %s: %w", base, o.Name, err)
		}
	}

	// Sorted for stable row order
	names := make([]string, 0, len(o.Variables))
	for name := range o.Variables {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := rw.variable(id, o.Variables[name]); err != nil {
			return err
		}
	}

	return rw.body(id, nil, o.Body)
}

func (rw *runWriter) body(objectID string, parentFn *string, nodes []ast.Node) error {
	for _, n := range nodes {
		switch n.Kind {
		case ast.ObjectNode:
			if err := rw.object(n.Object, &objectID); err != nil {
				return err
			}
		case ast.FunctionNode:
			if err := rw.function(objectID, parentFn, n.Function); err != nil {
				return err
			}
		}
	}
	return nil
}

func (rw *runWriter) function(objectID string, parentFn *string, fn *ast.Function) error {
	id := uuid.New().String()
	_, err := sq.Insert("functions").
		Columns("function_id", "object_id", "parent_function_id", "name", "return_type",
			"is_public", "file_path", "start_line", "end_line", "param_count").
		Values(id, objectID, parentFn, fn.Name, fn.ReturnType,
			boolToInt(fn.Public), fn.File, fn.Line, fn.EndLine, len(fn.Params)).
		RunWith(rw.tx).
		ExecContext(rw.ctx)
	if err != nil {
		return fmt.Errorf("failed to insert function %s: %w", fn.Name, err)
	}

	for i, p := range fn.Params {
		_, err := sq.Insert("function_parameters").
			Columns("param_id", "function_id", "position", "name", "param_type", "default_value").
			Values(uuid.New().String(), id, i, p.Name, p.Type, p.Default).
			RunWith(rw.tx).
			ExecContext(rw.ctx)
		if err != nil {
			return fmt.Errorf("failed to insert parameter %d of %s: %w", i, fn.Name, err)
		}
	}

	return rw.body(objectID, &id, fn.Body)
}

func (rw *runWriter) variable(objectID string, v *ast.Variable) error {
	_, err := sq.Insert("variables").
		Columns("variable_id", "object_id", "name", "var_type", "value",
			"is_public", "is_receiver", "file_path", "line").
		Values(uuid.New().String(), objectID, v.Name, v.TypeText(), v.ValueText(),
			boolToInt(v.Public), boolToInt(v.Receiver), v.File, v.Line).
		RunWith(rw.tx).
		ExecContext(rw.ctx)
	if err != nil {
		return fmt.Errorf("failed to insert variable %s: %w", v.Name, err)
	}
	return nil
}

// boolToInt converts bool to SQLite integer (0 or 1).
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
