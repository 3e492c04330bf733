// Package hierarchy builds the inheritance graph of extracted objects.
//
// Vertices are object names. Edges run from a base to the object that
// declares it. Bases that name no extracted object are kept as external
// vertices so lookups through library types still work.
package hierarchy

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dominikbraun/graph"

	"github.com/mvp-joe/polyast/internal/ast"
	"github.com/mvp-joe/polyast/internal/extractor"
)

var (
	// ErrCycle indicates an object that inherits from itself, directly or
	// through other objects.
	ErrCycle = errors.New("inheritance cycle")

	// ErrUnknownObject indicates a name with no vertex in the hierarchy.
	ErrUnknownObject = errors.New("unknown object")
)

// Node is one vertex of the hierarchy.
type Node struct {
	Name     string
	Keyword  string // empty for external bases
	File     string
	Line     int
	External bool
	Decls    int // number of extracted declarations merged into this vertex
}

// Hierarchy is an immutable inheritance graph.
type Hierarchy struct {
	graph   graph.Graph[string, *Node]
	bases   map[string][]string // derived -> bases, declaration order
	derived map[string][]string // base -> derived, first-seen order
}

// Build creates the hierarchy for objects and every object nested in them.
// Declarations sharing a name (a struct and its impl blocks, for instance)
// merge into one vertex whose bases are the union of theirs.
func Build(objects []*ast.Object) (*Hierarchy, error) {
	h := &Hierarchy{
		graph:   graph.New(func(n *Node) string { return n.Name }, graph.Directed(), graph.PreventCycles()),
		bases:   make(map[string][]string),
		derived: make(map[string][]string),
	}

	var all []*ast.Object
	extractor.Walk(objects, func(n ast.Node) {
		if n.Kind == ast.ObjectNode {
			all = append(all, n.Object)
		}
	})

	nodes := make(map[string]*Node)
	for _, o := range all {
		if n, ok := nodes[o.Name]; ok {
			n.Decls++
			if n.Keyword == "impl" && o.Keyword != "impl" {
				n.Keyword, n.File, n.Line = o.Keyword, o.File, o.StartLine
			}
			continue
		}
		n := &Node{Name: o.Name, Keyword: o.Keyword, File: o.File, Line: o.StartLine, Decls: 1}
		nodes[o.Name] = n
		if err := h.graph.AddVertex(n); err != nil {
			return nil, fmt.Errorf("failed to add object %s: %w", o.Name, err)
		}
	}

	for _, o := range all {
		for _, base := range o.Bases {
			if err := h.addEdge(nodes, base, o.Name); err != nil {
				return nil, err
			}
		}
	}
	return h, nil
}

func (h *Hierarchy) addEdge(nodes map[string]*Node, base, derived string) error {
	if base == derived {
		return fmt.Errorf("%s inherits from itself: %w", derived, ErrCycle)
	}
	if _, ok := nodes[base]; !ok {
		n := &Node{Name: base, External: true}
		nodes[base] = n
		if err := h.graph.AddVertex(n); err != nil {
			return fmt.Errorf("failed to add external base %s: %w", base, err)
		}
	}

	err := h.graph.AddEdge(base, derived)
	switch {
	case errors.Is(err, graph.ErrEdgeAlreadyExists):
		return nil
	case errors.Is(err, graph.ErrEdgeCreatesCycle):
		return fmt.Errorf("%s -> %s: %w", base, derived, ErrCycle)
	case err != nil:
		return fmt.Errorf("failed to add edge %s -> %s: %w", base, derived, err)
	}

	h.bases[derived] = append(h.bases[derived], base)
	h.derived[base] = append(h.derived[base], derived)
	return nil
}

// Node returns the vertex for name.
func (h *Hierarchy) Node(name string) (*Node, error) {
	n, err := h.graph.Vertex(name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, ErrUnknownObject)
	}
	return n, nil
}

// Len returns the number of vertices, external bases included.
func (h *Hierarchy) Len() int {
	n, _ := h.graph.Order()
	return n
}

// Bases returns the direct bases of name in declaration order.
func (h *Hierarchy) Bases(name string) []string { return h.bases[name] }

// Derived returns the objects that list name as a direct base.
func (h *Hierarchy) Derived(name string) []string { return h.derived[name] }

// Ancestors returns every transitive base of name, nearest first.
func (h *Hierarchy) Ancestors(name string) ([]string, error) {
	if _, err := h.Node(name); err != nil {
		return nil, err
	}
	return walk(name, h.bases), nil
}

// Descendants returns every object that transitively derives from name,
// nearest first.
func (h *Hierarchy) Descendants(name string) ([]string, error) {
	if _, err := h.Node(name); err != nil {
		return nil, err
	}
	return walk(name, h.derived), nil
}

// walk does a breadth-first traversal over next, excluding start.
func walk(start string, next map[string][]string) []string {
	var out []string
	seen := map[string]bool{start: true}
	queue := []string{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, n := range next[cur] {
			if seen[n] {
				continue
			}
			seen[n] = true
			out = append(out, n)
			queue = append(queue, n)
		}
	}
	return out
}

// TopologicalOrder lists every vertex so that bases come before the objects
// deriving from them. Ties break alphabetically.
func (h *Hierarchy) TopologicalOrder() ([]string, error) {
	order, err := graph.StableTopologicalSort(h.graph, func(a, b string) bool { return a < b })
	if err != nil {
		return nil, fmt.Errorf("failed to sort hierarchy: %w", err)
	}
	return order, nil
}

// Roots returns the vertices with no bases, sorted by name.
func (h *Hierarchy) Roots() []string {
	adj, err := h.graph.AdjacencyMap()
	if err != nil {
		return nil
	}
	var roots []string
	for name := range adj {
		if len(h.bases[name]) == 0 {
			roots = append(roots, name)
		}
	}
	sort.Strings(roots)
	return roots
}

// Write prints the hierarchy as an indented tree, one root per block:
//
//	Shape (external)
//	  Point  struct p.rs:1
//	    Point3  struct p.rs:9
//
// An object with several bases appears under each of them.
func (h *Hierarchy) Write(w io.Writer) error {
	for _, root := range h.Roots() {
		if err := h.writeNode(w, root, 0); err != nil {
			return err
		}
	}
	return nil
}

func (h *Hierarchy) writeNode(w io.Writer, name string, depth int) error {
	n, err := h.Node(name)
	if err != nil {
		return err
	}
	line := strings.Repeat("  ", depth) + n.Name
	if n.External {
		line += " (external)"
	} else {
		line += fmt.Sprintf("  %s %s:%d", n.Keyword, n.File, n.Line)
	}
	if _, err := fmt.Fprintln(w, line); err != nil {
		return err
	}
	for _, child := range h.derived[name] {
		if err := h.writeNode(w, child, depth+1); err != nil {
			return err
		}
	}
	return nil
}
