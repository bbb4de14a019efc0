// Package ast defines the minimal structural AST that everything
// downstream of the parser adapter consumes. The adapter is the only
// place the core depends on an external parser (tree-sitter); every
// other pass — validator, IR builder, expression transpiler — walks
// *Node values through this package alone, so a future parser swap only
// touches internal/parseradapter.
//
// The tagged-variant shape is the same idea as esbuild's js_ast.E/S
// marker-interface dispatch, flattened into one open-ended struct since
// this AST's node kinds come from an external grammar rather than a
// fixed Go type per production.
package ast

// Node is a single AST node: a type tag, byte offsets into the original
// source, the node's own text (for leaves such as identifiers and
// literals), and type-specific children reachable by name.
//
// Type-specific children mirror the node-type fields a JS AST exposes
// (body, declarations, expression, arguments, ...): Fields holds
// single-valued children (e.g. "test", "consequent", "object",
// "property") under their own name, and ordered many-valued children
// (e.g. "body", "declarations", "arguments", "params", "elements",
// "properties") under name+"[]" as a "__list__" holder node, read back
// through Children. List is that holder's element slice.
type Node struct {
	Type   string
	Start  int
	End    int
	Text   string
	Fields map[string]*Node
	List   []*Node
}

// Field looks up a single-valued child by name, returning nil if absent.
func (n *Node) Field(name string) *Node {
	if n == nil || n.Fields == nil {
		return nil
	}
	return n.Fields[name]
}

// Children returns a named many-valued child list, or nil if absent.
func (n *Node) Children(name string) []*Node {
	if n == nil || n.Fields == nil {
		return nil
	}
	if holder, ok := n.Fields[name+"[]"]; ok && holder != nil {
		return holder.List
	}
	return nil
}

// Is reports whether the node is non-nil and has the given type tag.
func (n *Node) Is(t string) bool { return n != nil && n.Type == t }

// New constructs a leaf node.
func New(t string, start, end int, text string) *Node {
	return &Node{Type: t, Start: start, End: end, Text: text}
}

// WithField attaches a single-valued named child and returns n for
// chaining during adapter construction.
func (n *Node) WithField(name string, child *Node) *Node {
	if n.Fields == nil {
		n.Fields = map[string]*Node{}
	}
	n.Fields[name] = child
	return n
}

// WithList attaches a many-valued named child list.
func (n *Node) WithList(name string, children []*Node) *Node {
	if n.Fields == nil {
		n.Fields = map[string]*Node{}
	}
	n.Fields[name+"[]"] = &Node{Type: "__list__", List: children}
	return n
}

// Walk invokes visit for n and recursively for every Fields and List
// child, depth-first, Fields before List, in map order of Fields sorted
// by key for determinism is not guaranteed by Go maps — callers that
// need deterministic traversal order should use List-based structure or
// sort Fields keys themselves. Walk is intended for diagnostics-only
// scans (e.g. "does this subtree reference document anywhere") where
// order doesn't matter.
func Walk(n *Node, visit func(*Node)) {
	if n == nil {
		return
	}
	visit(n)
	for _, child := range n.Fields {
		if child != nil && child.Type != "__list__" {
			Walk(child, visit)
		}
	}
	for _, child := range n.List {
		Walk(child, visit)
	}
	for _, holder := range n.Fields {
		if holder != nil && holder.Type == "__list__" {
			for _, child := range holder.List {
				Walk(child, visit)
			}
		}
	}
}
