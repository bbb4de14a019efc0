// Package validator runs the flat list of independent rejection rules
// against a parsed file before the IR builder ever sees it. Each rule
// is a pure function over the AST and source text; rules never mutate
// the tree and never depend on another rule's result, so adding one
// never changes another's output.
//
// The flat-rule-table shape (each rule a standalone function, the
// driver just calls all of them and concatenates diagnostics) is
// grounded on esbuild's internal/js_parser lowering-checks style and
// internal/compat's feature-table pattern of looking a construct up in
// a fixed set rather than hand-coding a chain of if-statements.
package validator

import (
	"strings"

	"github.com/aryamurray/roku-svelte/internal/ast"
	"github.com/aryamurray/roku-svelte/internal/logger"
	"github.com/aryamurray/roku-svelte/internal/parseradapter"
)

// Validate runs every rule and returns the combined diagnostics. The
// caller must stop before building the IR if log.HasFatal().
func Validate(file *parseradapter.File, source, filename string) *logger.Log {
	log := logger.NewLog()
	ctx := &ruleContext{file: file, source: source, filename: filename, log: log}

	ctx.noAsync()
	ctx.noFetch()
	ctx.noTimers()
	ctx.noDOM()
	ctx.noAwaitBlock()
	ctx.noGestures()
	ctx.unknownImport()
	ctx.noInlineHandlers()
	ctx.noWorkers()
	ctx.styleBlockWarning()

	return log
}

type ruleContext struct {
	file     *parseradapter.File
	source   string
	filename string
	log      *logger.Log
}

func (r *ruleContext) diag(n *ast.Node, code logger.Code, message string) {
	var loc *logger.Loc
	if n != nil {
		l := logger.Resolve(r.filename, r.source, n.Start)
		loc = &l
	}
	r.log.Add(logger.Msg{Code: code, Message: message, Fatal: code.IsFatal(), Loc: loc})
}

// noAsync allows the one async shape the builder knows how to lower
// (§4.3.9: a top-level named async function, split at its await
// sites) and rejects every other async function.
func (r *ruleContext) noAsync() {
	for _, stmt := range r.file.Script.Children("body") {
		if stmt.Type == "function_declaration" && strings.HasPrefix(strings.TrimSpace(stmt.Text), "async") {
			continue
		}
		ast.Walk(stmt, func(n *ast.Node) {
			switch n.Type {
			case "arrow_function", "function_expression", "method_definition":
				if strings.HasPrefix(strings.TrimSpace(n.Text), "async") {
					r.diag(n, logger.CodeNoAsync, "async functions are only supported as top-level named function declarations")
				}
			}
		})
	}
}

// noFetch rejects `fetch(...)` everywhere except two places it skips
// whole: the initializer of a top-level declaration when that
// initializer is a call (§4.3.1's network-primitive state; a fetch
// nested in another call's arguments there is not reported either), and
// the body of a top-level async function, whether or not the fetch in
// it is awaited.
func (r *ruleContext) noFetch() {
	for _, stmt := range r.file.Script.Children("body") {
		switch stmt.Type {
		case "lexical_declaration":
			for _, decl := range stmt.Children("declarations") {
				v := decl.Field("value")
				if v != nil && v.Type == "call_expression" {
					continue // the fetch(...) itself, if any, is the allowed initializer
				}
				if v != nil {
					r.rejectBareFetch(v)
				}
			}
		case "function_declaration":
			if strings.HasPrefix(strings.TrimSpace(stmt.Text), "async") {
				continue // await-adjacent fetch calls are legal inside the async lowering path
			}
			r.rejectBareFetch(stmt.Field("body"))
		default:
			r.rejectBareFetch(stmt)
		}
	}
}

func (r *ruleContext) rejectBareFetch(n *ast.Node) {
	ast.Walk(n, func(child *ast.Node) {
		if child.Type == "call_expression" {
			if fn := child.Field("function"); fn != nil && fn.Type == "identifier" && fn.Text == "fetch" {
				r.diag(child, logger.CodeNoFetch, "fetch() is only allowed as a top-level state initializer or inside an async handler")
			}
		}
	})
}

var timerNames = map[string]bool{"requestAnimationFrame": true, "cancelAnimationFrame": true}

func (r *ruleContext) noTimers() {
	ast.Walk(r.file.Script, func(n *ast.Node) {
		if n.Type != "call_expression" {
			return
		}
		fn := n.Field("function")
		if fn != nil && fn.Type == "identifier" && timerNames[fn.Text] {
			r.diag(n, logger.CodeNoTimers, "\""+fn.Text+"\" is not supported")
		}
	})
}

func (r *ruleContext) noDOM() {
	ast.Walk(r.file.Script, func(n *ast.Node) {
		if n.Type == "identifier" && n.Text == "document" {
			r.diag(n, logger.CodeNoDOM, "\"document\" is not available on this target")
			return
		}
		if n.Type == "member_expression" {
			obj := n.Field("object")
			prop := n.Field("property")
			if obj != nil && obj.Type == "identifier" && obj.Text == "window" && prop != nil && prop.Text == "document" {
				r.diag(n, logger.CodeNoDOM, "\"window.document\" is not available on this target")
			}
		}
	})
}

func (r *ruleContext) noAwaitBlock() {
	if strings.Contains(r.source, "{#await") {
		r.diag(nil, logger.CodeNoAwaitBlock, "{#await} blocks are not supported")
	}
}

var gestureEventNames = map[string]bool{
	"mousedown": true, "mouseup": true, "mousemove": true, "click": true,
	"touchstart": true, "touchend": true, "touchmove": true,
	"pointerdown": true, "pointerup": true, "pointermove": true,
}

func (r *ruleContext) noGestures() {
	r.walkElements(r.file.Markup, func(el *parseradapter.Element) {
		for _, attr := range el.Attributes {
			if !strings.HasPrefix(attr.Name, "on:") {
				continue
			}
			eventType := strings.TrimPrefix(attr.Name, "on:")
			if gestureEventNames[eventType] {
				r.diag(nil, logger.CodeNoGestures, "pointer/mouse/touch event \""+eventType+"\" is not supported")
			}
		}
	})
}

func (r *ruleContext) noInlineHandlers() {
	r.walkElements(r.file.Markup, func(el *parseradapter.Element) {
		for _, attr := range el.Attributes {
			if !strings.HasPrefix(attr.Name, "on:") || attr.DynamicExpr == nil {
				continue
			}
			switch attr.DynamicExpr.Type {
			case "arrow_function", "function_expression":
				r.diag(attr.DynamicExpr, logger.CodeInlineHandler, "inline handler functions are not supported; declare a named function instead")
			}
		}
	})
}

func (r *ruleContext) walkElements(elements []*parseradapter.Element, visit func(*parseradapter.Element)) {
	for _, el := range elements {
		switch el.Kind {
		case "element":
			visit(el)
			r.walkElements(el.Children, visit)
		case "if_block":
			for _, b := range el.IfBranches {
				r.walkElements(b.Children, visit)
			}
		case "each_block":
			r.walkElements(el.EachChildren, visit)
		}
	}
}

var importSpecifierAllowed = func(spec string) bool {
	spec = strings.Trim(spec, `"'`)
	return strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../") ||
		strings.HasPrefix(spec, "/") || strings.HasPrefix(spec, "$") ||
		spec == "svelte" || strings.HasPrefix(spec, "svelte/")
}

func (r *ruleContext) unknownImport() {
	for _, stmt := range r.file.Script.Children("body") {
		if stmt.Type != "import_statement" {
			continue
		}
		src := stmt.Field("source")
		if src == nil {
			continue
		}
		if !importSpecifierAllowed(src.Text) {
			r.diag(src, logger.CodeUnknownImport, "unresolvable import specifier "+src.Text)
		}
	}
}

var workerIdentifiers = map[string]bool{
	"Worker": true, "SharedWorker": true, "ServiceWorker": true,
	"importScripts": true, "postMessage": true,
}

func (r *ruleContext) noWorkers() {
	ast.Walk(r.file.Script, func(n *ast.Node) {
		if n.Type == "identifier" && workerIdentifiers[n.Text] {
			r.diag(n, logger.CodeNoWorkers, "\""+n.Text+"\" is not available on this target")
		}
	})
}

func (r *ruleContext) styleBlockWarning() {
	if r.file.Style != nil && strings.TrimSpace(r.file.Style.Text) != "" {
		r.diag(r.file.Style, logger.CodeUnsupportedStyleBlock, "<style> blocks are discarded; use the style attribute instead")
	}
}
