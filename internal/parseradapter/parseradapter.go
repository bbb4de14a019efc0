// Package parseradapter is the only place the core depends on an
// external parser. It wraps github.com/smacker/go-tree-sitter: the
// outer component file is parsed with the svelte grammar to locate the
// <script>/<style> regions (tree-sitter-svelte reliably names these
// "script_element"/"style_element" across grammar versions), and the
// <script> region's contents are re-parsed with the typescript grammar
// to get an expression-level AST. The markup fragment between them —
// the {#if}/{#each}/directive mini-language, which is bespoke to this
// component format and not uniform across grammar versions — is
// hand-parsed in markup.go instead, re-parsing each embedded expression
// with the typescript grammar the same way the <script> body is parsed.
//
// Grounded on other_examples' svelte-parser.go.go for the two-grammar
// tree-sitter setup, and on the pack's hand-rolled template/markup
// parsers for the markup mini-parser.
package parseradapter

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/svelte"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/aryamurray/roku-svelte/internal/ast"
	"github.com/aryamurray/roku-svelte/internal/logger"
)

// File is the parsed result for one component source file: the instance
// script's top-level statement list, the markup fragment's top-level
// element list, and an optional style tree (nil if there is no <style>
// block).
type File struct {
	Script *ast.Node  // Type "program", Fields["body[]"] = top-level statements
	Markup []*Element // top-level markup children
	Style  *ast.Node  // Type "style_element" raw text, nil if absent
}

// Parse consumes raw source text and a nominal filename and returns
// either a File or a single fatal PARSE_ERROR diagnostic carrying the
// underlying parser's reported location.
func Parse(source []byte, filename string) (*File, *logger.Msg) {
	parser := sitter.NewParser()
	parser.SetLanguage(svelte.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, parseErrorMsg(filename, string(source), 0, fmt.Sprintf("svelte grammar: %v", err))
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		loc := firstErrorLoc(root)
		return nil, parseErrorMsg(filename, string(source), loc, "malformed component source")
	}

	var scriptNode, styleNode *sitter.Node
	walkTopLevel(root, func(n *sitter.Node) {
		switch n.Type() {
		case "script_element":
			scriptNode = n
		case "style_element":
			styleNode = n
		}
	})

	file := &File{}

	if scriptNode != nil {
		raw := rawTextChild(scriptNode, source)
		if raw != nil {
			tsParser := sitter.NewParser()
			tsParser.SetLanguage(typescript.GetLanguage())
			tsTree, err := tsParser.ParseCtx(context.Background(), nil, raw.Content(source))
			if err != nil {
				return nil, parseErrorMsg(filename, string(source), int(raw.StartByte()), fmt.Sprintf("script: %v", err))
			}
			defer tsTree.Close()
			base := int(raw.StartByte())
			file.Script = convert(tsTree.RootNode(), source[base:base+len(raw.Content(source))], base)
		} else {
			file.Script = &ast.Node{Type: "program"}
		}
	} else {
		file.Script = &ast.Node{Type: "program"}
	}

	var skip [][2]int
	if scriptNode != nil {
		skip = append(skip, [2]int{int(scriptNode.StartByte()), int(scriptNode.EndByte())})
	}
	if styleNode != nil {
		skip = append(skip, [2]int{int(styleNode.StartByte()), int(styleNode.EndByte())})
	}
	file.Markup = parseMarkup(source, skip)

	if styleNode != nil {
		raw := rawTextChild(styleNode, source)
		text := ""
		start, end := int(styleNode.StartByte()), int(styleNode.EndByte())
		if raw != nil {
			text = raw.Content(source)
			start, end = int(raw.StartByte()), int(raw.EndByte())
		}
		file.Style = ast.New("style_element", start, end, text)
	}

	return file, nil
}

func parseErrorMsg(filename, source string, offset int, message string) *logger.Msg {
	loc := logger.Resolve(filename, source, offset)
	return &logger.Msg{
		Code:    logger.CodeParseError,
		Message: message,
		Fatal:   true,
		Loc:     &loc,
	}
}

func firstErrorLoc(n *sitter.Node) int {
	if n.IsError() || n.IsMissing() {
		return int(n.StartByte())
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if loc := firstErrorLoc(n.Child(i)); loc >= 0 {
			if n.Child(i).HasError() {
				return loc
			}
		}
	}
	return int(n.StartByte())
}

func walkTopLevel(n *sitter.Node, visit func(*sitter.Node)) {
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		visit(child)
	}
}

func rawTextChild(n *sitter.Node, source []byte) *sitter.Node {
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child.Type() == "raw_text" {
			return child
		}
	}
	return nil
}

// knownFields are the tree-sitter-typescript/javascript grammar field
// names the builder and transpiler rely on by name.
var knownFields = []string{
	"object", "property", "index", "function", "left", "right",
	"operator", "condition", "consequence", "alternative", "name", "value",
	"argument", "key", "source", "tag", "body", "parameter", "handler",
	"optional_chain",
}

// listFieldByNodeType names the semantic list a node type's own named
// children represent (declarations of a `let`/`const` statement, the
// properties of an object literal, and so on), so downstream code reads
// n.Children("declarations") rather than a generic "body"/"children".
// Node types not listed here only get the generic names.
var listFieldByNodeType = map[string]string{
	"program":              "body",
	"statement_block":      "body",
	"lexical_declaration":  "declarations",
	"variable_declaration": "declarations",
	"object":               "properties",
	"object_pattern":       "properties",
	"array":                "elements",
	"array_pattern":        "elements",
}

// wrapperFieldFlatten names, for node types whose grammar nests a
// list-valued child behind its own wrapper node (call_expression's
// "arguments" node, a function's "parameters" node), the field name to
// read the wrapper from and the flattened list name the result carries
// it under directly — so n.Children("arguments") works on the call
// node itself rather than requiring callers to go through
// n.Field("arguments") first.
var wrapperFieldFlatten = map[string][2]string{
	"call_expression":     {"arguments", "arguments"},
	"new_expression":      {"arguments", "arguments"},
	"arrow_function":      {"parameters", "params"},
	"function_declaration": {"parameters", "params"},
	"function_expression":  {"parameters", "params"},
	"function":             {"parameters", "params"},
	"method_definition":    {"parameters", "params"},
}

// singleChildFieldByNodeType names the synthetic field the sole
// meaningful child of a wrapper-only node type is exposed under, for
// grammar productions where that child carries no field name of its
// own (an expression_statement's expression).
var singleChildFieldByNodeType = map[string]string{
	"expression_statement": "expression",
}

// convert turns a tree-sitter node into our minimal structural ast.Node,
// offsetting byte ranges by base (the start of the slice the tree was
// parsed from, so offsets remain relative to the whole component file).
func convert(n *sitter.Node, source []byte, base int) *ast.Node {
	if n == nil {
		return nil
	}
	result := &ast.Node{
		Type:  n.Type(),
		Start: base + int(n.StartByte()),
		End:   base + int(n.EndByte()),
	}
	// Every node keeps its own raw source slice, not just leaves: the
	// grammar leaves keywords like "let"/"const" as anonymous tokens with
	// no named field, so the builder tells them apart with a prefix check
	// against Text rather than needing a dedicated Fields entry per
	// keyword.
	result.Text = n.Content(source)
	if n.ChildCount() == 0 {
		return result
	}
	for _, name := range knownFields {
		if child := n.ChildByFieldName(name); child != nil {
			result.WithField(name, convert(child, source, base))
		}
	}

	if fieldName, ok := singleChildFieldByNodeType[n.Type()]; ok && n.NamedChildCount() > 0 {
		result.WithField(fieldName, convert(n.NamedChild(0), source, base))
	}

	if wrap, ok := wrapperFieldFlatten[n.Type()]; ok {
		fieldName, listName := wrap[0], wrap[1]
		if wrapper := n.ChildByFieldName(fieldName); wrapper != nil {
			var flat []*ast.Node
			for i := 0; i < int(wrapper.NamedChildCount()); i++ {
				flat = append(flat, convert(wrapper.NamedChild(i), source, base))
			}
			result.WithList(listName, flat)
		}
	}

	var list []*ast.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		list = append(list, convert(n.NamedChild(i), source, base))
	}
	if list != nil {
		result.WithList("children", list)
		listName := listFieldByNodeType[n.Type()]
		if listName == "" {
			listName = "body"
		}
		result.WithList(listName, list)
	}
	return result
}

