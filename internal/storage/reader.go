package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// ErrRunNotFound is returned when a run ID has no stored run.
var ErrRunNotFound = errors.New("run not found")

// Reader queries stored extraction runs.
type Reader struct {
	db *sql.DB
}

// NewReaderWithDB creates a Reader over an existing connection.
func NewReaderWithDB(db *sql.DB) *Reader {
	return &Reader{db: db}
}

// Runs lists stored runs, newest first.
func (r *Reader) Runs(ctx context.Context) ([]*Run, error) {
	rows, err := sq.Select("run_id", "created_at", "file_count", "object_count", "duration_ms").
		From("runs").
		OrderBy("created_at DESC", "rowid DESC").
		RunWith(r.db).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		var run Run
		var createdAt string
		if err := rows.Scan(&run.ID, &createdAt, &run.FileCount, &run.ObjectCount, &run.DurationMS); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		runs = append(runs, &run)
	}
	return runs, rows.Err()
}

// LatestRun returns the ID of the most recently stored run.
func (r *Reader) LatestRun(ctx context.Context) (string, error) {
	runs, err := r.Runs(ctx)
	if err != nil {
		return "", err
	}
	if len(runs) == 0 {
		return "", ErrRunNotFound
	}
	return runs[0].ID, nil
}

// Counts returns the number of rows stored for runID.
func (r *Reader) Counts(ctx context.Context, runID string) (*Counts, error) {
	var exists int
	err := sq.Select("COUNT(*)").From("runs").Where(sq.Eq{"run_id": runID}).
		RunWith(r.db).QueryRowContext(ctx).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to look up run: %w", err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("run %s: %w", runID, ErrRunNotFound)
	}

	inRun := sq.Expr("object_id IN (SELECT object_id FROM objects WHERE run_id = ?)", runID)
	fnInRun := sq.Expr(`function_id IN (SELECT function_id FROM functions
		WHERE object_id IN (SELECT object_id FROM objects WHERE run_id = ?))`, runID)

	counts := &Counts{}
	queries := []struct {
		dest  *int
		query sq.SelectBuilder
	}{
		{&counts.Files, sq.Select("COUNT(*)").From("files").Where(sq.Eq{"run_id": runID})},
		{&counts.Objects, sq.Select("COUNT(*)").From("objects").Where(sq.Eq{"run_id": runID})},
		{&counts.Bases, sq.Select("COUNT(*)").From("object_bases").Where(inRun)},
		{&counts.Functions, sq.Select("COUNT(*)").From("functions").Where(inRun)},
		{&counts.Parameters, sq.Select("COUNT(*)").From("function_parameters").Where(fnInRun)},
		{&counts.Variables, sq.Select("COUNT(*)").From("variables").Where(inRun)},
	}
	for _, q := range queries {
		if err := q.query.RunWith(r.db).QueryRowContext(ctx).Scan(q.dest); err != nil {
			return nil, fmt.Errorf("failed to count rows: %w", err)
		}
	}
	return counts, nil
}

// ObjectsByName returns every object in runID with the given name, with
// bases and variables populated.
func (r *Reader) ObjectsByName(ctx context.Context, runID, name string) ([]*Object, error) {
	rows, err := sq.Select("object_id", "run_id", "parent_object_id", "name", "keyword", "type_params",
		"is_public", "file_path", "start_line", "end_line").
		From("objects").
		Where(sq.Eq{"run_id": runID, "name": name}).
		OrderBy("file_path", "start_line").
		RunWith(r.db).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query objects: %w", err)
	}
	defer rows.Close()

	var objects []*Object
	for rows.Next() {
		var o Object
		var parent sql.NullString
		var isPublic int
		if err := rows.Scan(&o.ID, &o.RunID, &parent, &o.Name, &o.Keyword, &o.TypeParams,
			&isPublic, &o.FilePath, &o.StartLine, &o.EndLine); err != nil {
			return nil, fmt.Errorf("failed to scan object: %w", err)
		}
		if parent.Valid {
			o.ParentObjectID = &parent.String
		}
		o.IsPublic = isPublic == 1
		objects = append(objects, &o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, o := range objects {
		if o.Bases, err = r.bases(ctx, o.ID); err != nil {
			return nil, err
		}
		if o.Variables, err = r.variables(ctx, o.ID); err != nil {
			return nil, err
		}
	}
	return objects, nil
}

func (r *Reader) bases(ctx context.Context, objectID string) ([]string, error) {
	rows, err := sq.Select("base_name").
		From("object_bases").
		Where(sq.Eq{"object_id": objectID}).
		OrderBy("position").
		RunWith(r.db).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query bases: %w", err)
	}
	defer rows.Close()

	var bases []string
	for rows.Next() {
		var b string
		if err := rows.Scan(&b); err != nil {
			return nil, fmt.Errorf("failed to scan base: %w", err)
		}
		bases = append(bases, b)
	}
	return bases, rows.Err()
}

func (r *Reader) variables(ctx context.Context, objectID string) ([]*Variable, error) {
	rows, err := sq.Select("variable_id", "object_id", "name", "var_type", "value",
		"is_public", "is_receiver", "file_path", "line").
		From("variables").
		Where(sq.Eq{"object_id": objectID}).
		OrderBy("name").
		RunWith(r.db).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query variables: %w", err)
	}
	defer rows.Close()

	var vars []*Variable
	for rows.Next() {
		var v Variable
		var isPublic, isReceiver int
		if err := rows.Scan(&v.ID, &v.ObjectID, &v.Name, &v.VarType, &v.Value,
			&isPublic, &isReceiver, &v.FilePath, &v.Line); err != nil {
			return nil, fmt.Errorf("failed to scan variable: %w", err)
		}
		v.IsPublic = isPublic == 1
		v.IsReceiver = isReceiver == 1
		vars = append(vars, &v)
	}
	return vars, rows.Err()
}

// FunctionNames returns the names of functions stored under objectID,
// ordered by start line. Nested functions are included.
func (r *Reader) FunctionNames(ctx context.Context, objectID string) ([]string, error) {
	rows, err := sq.Select("name").
		From("functions").
		Where(sq.Eq{"object_id": objectID}).
		OrderBy("start_line", "name").
		RunWith(r.db).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query functions: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to scan function: %w", err)
		}
		names = append(names, n)
	}
	return names, rows.Err()
}
