// Package extractor runs the full extraction pipeline over decoded source
// files: path filtering, tokenization and parsing.
package extractor

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/mvp-joe/polyast/internal/ast"
	"github.com/mvp-joe/polyast/internal/lexer"
	"github.com/mvp-joe/polyast/internal/parser"
	"github.com/mvp-joe/polyast/internal/source"
)

// Config holds pipeline settings.
type Config struct {
	Dialects      map[string]string // language tag → dialect name; empty uses defaults
	TabWidth      int               // columns per leading tab; 0 treats tabs as whitespace
	Include       []string          // path globs to keep; empty keeps everything
	Exclude       []string          // path globs to drop
	CacheCapacity int               // line cache entries; 0 disables the cache
}

// Stats summarizes one run.
type Stats struct {
	FilesTotal   int
	FilesSkipped int
	Lines        int
	Tokens       int
	Candidates   int
	Objects      int
	Functions    int
	Variables    int
	CacheHits    int64
	CacheMisses  int64
	Duration     time.Duration
}

// Result is the output of one run.
type Result struct {
	Objects []*ast.Object
	Files   []*lexer.File
	Stats   *Stats
}

// Extractor turns source files into object ASTs.
type Extractor struct {
	dialects source.Dialects
	filter   *source.Filter
	lexer    *lexer.Lexer
	cache    *lexer.LineCache
	log      zerolog.Logger
	progress Progress
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(e *Extractor) { e.log = log }
}

// WithProgress sets the progress reporter.
func WithProgress(p Progress) Option {
	return func(e *Extractor) { e.progress = p }
}

// New creates an extractor from cfg.
func New(cfg Config, opts ...Option) (*Extractor, error) {
	dialects, err := source.NewDialects(cfg.Dialects)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve dialects: %w", err)
	}
	filter, err := source.NewFilter(cfg.Include, cfg.Exclude)
	if err != nil {
		return nil, fmt.Errorf("failed to compile path filters: %w", err)
	}

	e := &Extractor{
		dialects: dialects,
		filter:   filter,
		log:      zerolog.Nop(),
		progress: NoOpProgress{},
	}
	for _, opt := range opts {
		opt(e)
	}

	lexOpts := []lexer.Option{lexer.WithTabWidth(cfg.TabWidth)}
	if cfg.CacheCapacity > 0 {
		e.cache, err = lexer.NewLineCache(cfg.CacheCapacity)
		if err != nil {
			return nil, err
		}
		lexOpts = append(lexOpts, lexer.WithCache(e.cache))
	}
	e.lexer = lexer.New(lexOpts...)
	return e, nil
}

// Run extracts objects from files. Cancellation is checked between files.
func (e *Extractor) Run(ctx context.Context, files []*source.File) (*Result, error) {
	start := time.Now()
	stats := &Stats{FilesTotal: len(files)}

	kept := e.filter.Apply(files)
	stats.FilesSkipped = len(files) - len(kept)
	e.progress.OnFilterComplete(len(kept), stats.FilesSkipped)
	e.log.Debug().
		Int("kept", len(kept)).
		Int("skipped", stats.FilesSkipped).
		Msg("filtered input files")

	e.progress.OnTokenizeStart(len(kept))
	tokenized, err := e.lexer.TokenizeAll(ctx, kept, e.dialects, func(f *lexer.File) {
		stats.Lines += len(f.LineNumbers())
		stats.Tokens += f.TokenCount()
		if f.Dialect == source.Unknown {
			e.log.Warn().Str("file", f.Path).Str("language", f.Language).Msg("no dialect for language")
		}
		e.progress.OnFileTokenized(f.Path)
	})
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("extraction cancelled: %w", err)
	}

	p := parser.New(tokenized,
		parser.WithLogger(e.log),
		parser.WithProgress(e.progress.OnCandidateParsed),
	)
	stats.Candidates = len(p.Candidates())
	e.progress.OnParseStart(stats.Candidates)

	objects, err := p.Parse()
	if err != nil {
		return nil, fmt.Errorf("failed to parse: %w", err)
	}

	stats.Objects = len(objects)
	Walk(objects, func(n ast.Node) {
		switch n.Kind {
		case ast.FunctionNode:
			stats.Functions++
		case ast.VariableNode:
			stats.Variables++
		}
	})
	if e.cache != nil {
		stats.CacheHits, stats.CacheMisses = e.cache.Stats()
	}
	stats.Duration = time.Since(start)

	e.log.Info().
		Int("files", len(tokenized)).
		Int("objects", stats.Objects).
		Int("functions", stats.Functions).
		Int("variables", stats.Variables).
		Dur("took", stats.Duration).
		Msg("extraction complete")
	e.progress.OnComplete(stats)

	return &Result{Objects: objects, Files: tokenized, Stats: stats}, nil
}

// Close releases the line cache.
func (e *Extractor) Close() {
	if e.cache != nil {
		e.cache.Close()
	}
}

// Walk visits every node reachable from objects, depth first. Object nodes
// for the top-level objects are visited too.
func Walk(objects []*ast.Object, fn func(ast.Node)) {
	for _, o := range objects {
		walk(ast.ObjectOf(o), fn)
	}
}

func walk(n ast.Node, fn func(ast.Node)) {
	fn(n)
	switch n.Kind {
	case ast.ObjectNode:
		for _, child := range n.Object.Body {
			walk(child, fn)
		}
	case ast.FunctionNode:
		for _, child := range n.Function.Body {
			walk(child, fn)
		}
	}
}
