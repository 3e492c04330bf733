package storage

import "time"

// Domain models that mirror SQL tables in schema.go.
// These are lightweight data transfer structs, NOT ORM models.

// Run represents one stored extraction run.
// Maps to the runs table.
type Run struct {
	ID          string    // run_id: UUID
	CreatedAt   time.Time // created_at: RFC3339
	FileCount   int       // file_count: files that passed the path filter
	ObjectCount int       // object_count: top-level objects
	DurationMS  int64     // duration_ms: extraction time
}

// Object represents a stored object declaration.
// Maps to the objects table + joined data from object_bases and variables.
type Object struct {
	ID             string      // object_id: UUID
	RunID          string      // run_id: FK to runs
	ParentObjectID *string     // parent_object_id: FK to objects (nullable)
	Name           string      // name: declared name
	Keyword        string      // keyword: class, struct, trait, ...
	TypeParams     string      // type_params: generic parameter text
	IsPublic       bool        // is_public: visibility modifier present
	FilePath       string      // file_path: as given in the input
	StartLine      int         // start_line: header line
	EndLine        int         // end_line: last line of the body
	Bases          []string    // Joined: object_bases ordered by position
	Variables      []*Variable // Joined: variables ordered by name
}

// Variable represents a member variable.
// Maps to the variables table.
type Variable struct {
	ID         string // variable_id: UUID
	ObjectID   string // object_id: FK to objects
	Name       string // name: member name
	VarType    string // var_type: declared type text
	Value      string // value: initializer text
	IsPublic   bool   // is_public: visibility modifier present
	IsReceiver bool   // is_receiver: declared via self/this
	FilePath   string // file_path: as given in the input
	Line       int    // line: declaration line
}

// Counts summarizes the rows stored for one run.
type Counts struct {
	Files      int
	Objects    int
	Bases      int
	Functions  int
	Parameters int
	Variables  int
}
