// Package search provides full-text lookup over extracted objects,
// functions and variables using an in-memory bleve index.
package search

import (
	"context"
	"fmt"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/mvp-joe/polyast/internal/ast"
	"github.com/mvp-joe/polyast/internal/extractor"
)

const (
	// DefaultLimit is used when Options.Limit is unset.
	DefaultLimit = 20
	// MaxLimit caps Options.Limit.
	MaxLimit = 100
)

// Options narrows a search. The zero value searches every kind and file.
type Options struct {
	Kind  string // "object", "function" or "variable"
	File  string // wildcard pattern over file paths, e.g. "src/*.rs"
	Limit int
}

// Hit is one ranked search result.
type Hit struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Kind      string  `json:"kind"`
	Parent    string  `json:"parent,omitempty"`
	File      string  `json:"file"`
	Line      int     `json:"line"`
	Signature string  `json:"signature"`
	Score     float64 `json:"score"`
}

// Index is an in-memory symbol index. Safe for concurrent use.
type Index struct {
	index bleve.Index
	mu    sync.RWMutex // Protects index during rebuilds
}

// New builds an index over objects and everything nested in them.
func New(ctx context.Context, objects []*ast.Object) (*Index, error) {
	index, err := bleve.NewMemOnly(buildMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create bleve index: %w", err)
	}
	if err := indexObjects(ctx, index, objects); err != nil {
		index.Close()
		return nil, fmt.Errorf("failed to index objects: %w", err)
	}
	return &Index{index: index}, nil
}

// buildMapping creates the index mapping for symbol documents.
func buildMapping() *mapping.IndexMappingImpl {
	indexMapping := bleve.NewIndexMapping()

	// Name, type and signature are the primary search targets
	textField := func() *mapping.FieldMapping {
		m := bleve.NewTextFieldMapping()
		m.Analyzer = "standard"
		m.Store = true
		m.Index = true
		return m
	}

	// Kind and file are filterable, keyword analyzer for exact and
	// wildcard matching over the whole value
	keywordField := func() *mapping.FieldMapping {
		m := bleve.NewTextFieldMapping()
		m.Analyzer = "keyword"
		m.Store = true
		m.Index = true
		return m
	}

	lineMapping := bleve.NewNumericFieldMapping()
	lineMapping.Store = true
	lineMapping.Index = false

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("name", textField())
	docMapping.AddFieldMappingsAt("kind", keywordField())
	docMapping.AddFieldMappingsAt("parent", textField())
	docMapping.AddFieldMappingsAt("file", keywordField())
	docMapping.AddFieldMappingsAt("type", textField())
	docMapping.AddFieldMappingsAt("signature", textField())
	docMapping.AddFieldMappingsAt("line", lineMapping)

	indexMapping.DefaultMapping = docMapping
	return indexMapping
}

type document struct {
	id  string
	doc map[string]interface{}
}

// documents flattens the tree into one document per construct.
func documents(objects []*ast.Object) []document {
	var docs []document
	add := func(kind, name, parent, file string, line int, typ, sig string) {
		docs = append(docs, document{
			id: fmt.Sprintf("%s:%d:%s:%d", file, line, name, len(docs)),
			doc: map[string]interface{}{
				"name":      name,
				"kind":      kind,
				"parent":    parent,
				"file":      file,
				"line":      line,
				"type":      typ,
				"signature": sig,
			},
		})
	}

	extractor.Walk(objects, func(n ast.Node) {
		switch n.Kind {
		case ast.ObjectNode:
			o := n.Object
			add(n.Kind.String(), o.Name, o.Enclosing, o.File, o.StartLine, "", o.Signature())
		case ast.FunctionNode:
			f := n.Function
			add(n.Kind.String(), f.Name, f.Parent, f.File, f.Line, f.ReturnType, f.Signature())
		case ast.VariableNode:
			v := n.Variable
			add(n.Kind.String(), v.Name, v.Parent, v.File, v.Line, v.TypeText(), v.Signature())
		}
	})
	return docs
}

// indexObjects adds documents to the bleve index in batches.
func indexObjects(ctx context.Context, index bleve.Index, objects []*ast.Object) error {
	const batchSize = 1000

	batch := index.NewBatch()
	for i, d := range documents(objects) {
		// Check cancellation periodically
		if i%batchSize == 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
		}

		if err := batch.Index(d.id, d.doc); err != nil {
			return fmt.Errorf("failed to add %s to batch: %w", d.id, err)
		}
		if batch.Size() >= batchSize {
			if err := index.Batch(batch); err != nil {
				return fmt.Errorf("failed to execute batch: %w", err)
			}
			batch = index.NewBatch()
		}
	}

	if batch.Size() > 0 {
		if err := index.Batch(batch); err != nil {
			return fmt.Errorf("failed to execute final batch: %w", err)
		}
	}
	return nil
}

// Rebuild replaces the indexed documents with objects.
func (i *Index) Rebuild(ctx context.Context, objects []*ast.Object) error {
	index, err := bleve.NewMemOnly(buildMapping())
	if err != nil {
		return fmt.Errorf("failed to create bleve index: %w", err)
	}
	if err := indexObjects(ctx, index, objects); err != nil {
		index.Close()
		return fmt.Errorf("failed to index objects: %w", err)
	}

	i.mu.Lock()
	old := i.index
	i.index = index
	i.mu.Unlock()
	return old.Close()
}

// Count returns the number of indexed documents.
func (i *Index) Count() (uint64, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.index.DocCount()
}

// Search runs a bleve query-string query (`area`, `name:Point`,
// `type:i32 kind:variable`, ...) and returns hits ranked by score.
// Options may be nil.
func (i *Index) Search(ctx context.Context, queryStr string, opts *Options) ([]*Hit, error) {
	if opts == nil {
		opts = &Options{}
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	limit = min(limit, MaxLimit)

	queries := []query.Query{bleve.NewQueryStringQuery(queryStr)}
	if opts.Kind != "" {
		kindQuery := bleve.NewTermQuery(opts.Kind)
		kindQuery.SetField("kind")
		queries = append(queries, kindQuery)
	}
	if opts.File != "" {
		fileQuery := bleve.NewWildcardQuery(opts.File)
		fileQuery.SetField("file")
		queries = append(queries, fileQuery)
	}

	var finalQuery query.Query = queries[0]
	if len(queries) > 1 {
		finalQuery = bleve.NewConjunctionQuery(queries...)
	}

	req := bleve.NewSearchRequestOptions(finalQuery, limit, 0, false)
	req.Fields = []string{"name", "kind", "parent", "file", "line", "signature"}

	i.mu.RLock()
	res, err := i.index.SearchInContext(ctx, req)
	i.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("bleve search failed: %w", err)
	}

	hits := make([]*Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		hit := &Hit{ID: h.ID, Score: h.Score}
		hit.Name, _ = h.Fields["name"].(string)
		hit.Kind, _ = h.Fields["kind"].(string)
		hit.Parent, _ = h.Fields["parent"].(string)
		hit.File, _ = h.Fields["file"].(string)
		hit.Signature, _ = h.Fields["signature"].(string)
		// Numeric fields come back as float64
		if line, ok := h.Fields["line"].(float64); ok {
			hit.Line = int(line)
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// Close releases the index.
func (i *Index) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.index != nil {
		return i.index.Close()
	}
	return nil
}
