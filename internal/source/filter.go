package source

import (
	"fmt"
	"path/filepath"

	"github.com/gobwas/glob"
)

// compiledPattern holds both the pattern string and compiled glob
type compiledPattern struct {
	pattern string
	glob    glob.Glob
}

// Filter selects input files by path using include and exclude globs.
// An empty include list admits every path.
type Filter struct {
	include []compiledPattern
	exclude []compiledPattern
}

// NewFilter compiles include and exclude patterns ('/' is the separator).
func NewFilter(include, exclude []string) (*Filter, error) {
	f := &Filter{}
	for _, pattern := range include {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid include pattern %q: %w", pattern, err)
		}
		f.include = append(f.include, compiledPattern{pattern: pattern, glob: g})
	}
	for _, pattern := range exclude {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}
		f.exclude = append(f.exclude, compiledPattern{pattern: pattern, glob: g})
	}
	return f, nil
}

// Match reports whether path passes the filter.
func (f *Filter) Match(path string) bool {
	path = filepath.ToSlash(path)
	for _, p := range f.exclude {
		if p.glob.Match(path) {
			return false
		}
	}
	if len(f.include) == 0 {
		return true
	}
	for _, p := range f.include {
		if p.glob.Match(path) {
			return true
		}
	}
	return false
}

// Apply returns the files whose paths pass the filter, preserving order.
func (f *Filter) Apply(files []*File) []*File {
	kept := make([]*File, 0, len(files))
	for _, file := range files {
		if f.Match(file.Path) {
			kept = append(kept, file)
		}
	}
	return kept
}
