// Package transpile lowers the restricted JS-like expression grammar
// to the BASIC-dialect target language (TL), dispatching every
// host-library/browser-API construct into one of seven strategies (see
// strategy.go). It is invoked from within the IR builder and shares a
// mutable per-file context with it.
//
// Dispatch-by-node-kind mirrors esbuild's js_printer.printExpr switch;
// the capability-table idea (a static map keyed by a small tuple,
// looked up before falling back to a default) mirrors internal/compat's
// JSFeature tables.
package transpile

import (
	"fmt"

	"github.com/aryamurray/roku-svelte/internal/ast"
	"github.com/aryamurray/roku-svelte/internal/irc"
	"github.com/aryamurray/roku-svelte/internal/logger"
)

// StateVar is the subset of state-variable information the transpiler
// needs to resolve identifiers and infer receiver types.
type StateVar struct {
	Name string
	Type irc.StateType
}

// Context is threaded by mutable reference through one compile of one
// file's expressions. Counters are per-file and reset at compile entry,
// matching the concurrency model's "no shared mutable state survives a
// call" rule.
type Context struct {
	Filename string
	Source   string

	State map[string]StateVar

	// Locals counts non-state identifiers currently in scope (a
	// for-each iteration variable, a caught error variable) so
	// transpileIdentifier can tell a legitimate local apart from a
	// typo'd/undeclared state reference. Reference-counted rather than
	// a plain set so nested scopes that reuse a name (an outer catch
	// var shadowed by an inner one) unwind correctly.
	Locals map[string]int

	// SingleExpressionOnly forbids preambles; set when transpiling a
	// template interpolation or an each-block item-field expression,
	// where the target emits a single TL expression with no statements
	// around it.
	SingleExpressionOnly bool

	tempCounter     int
	chainDepth      int
	callbackCounter int

	Log *logger.Log

	StdlibUsed bool
	Polyfills  map[string]bool

	ExtractedCallbacks *[]irc.Handler

	// LowerCallback lowers an extracted function body (timer callback,
	// lifecycle hook, async continuation) into a full Handler. It is
	// supplied by the IR builder, which owns statement lowering — the
	// transpiler only identifies extraction sites and delegates back,
	// avoiding an import cycle between transpile and builder.
	LowerCallback func(name string, body *ast.Node) irc.Handler
}

func NewContext(log *logger.Log, filename, source string, extracted *[]irc.Handler) *Context {
	return &Context{
		Filename:           filename,
		Source:             source,
		State:              map[string]StateVar{},
		Locals:             map[string]int{},
		Log:                log,
		Polyfills:          map[string]bool{},
		ExtractedCallbacks: extracted,
	}
}

// PushLocal brings a non-state identifier into scope for the duration
// of lowering one construct (a for-each body, a catch block).
func (c *Context) PushLocal(name string) {
	if name == "" {
		return
	}
	c.Locals[name]++
}

// PopLocal reverses a matching PushLocal once the construct's body has
// been lowered.
func (c *Context) PopLocal(name string) {
	if name == "" {
		return
	}
	c.Locals[name]--
	if c.Locals[name] <= 0 {
		delete(c.Locals, name)
	}
}

func (c *Context) nextTemp() string {
	c.tempCounter++
	return fmt.Sprintf("__tmp_%d", c.tempCounter)
}

func (c *Context) nextCallbackName(prefix string) string {
	c.callbackCounter++
	return fmt.Sprintf("%s_%d", prefix, c.callbackCounter)
}

func (c *Context) requirePolyfill(key string) {
	c.Polyfills[key] = true
}

func (c *Context) diag(n *ast.Node, code logger.Code, message string) {
	var loc *logger.Loc
	if n != nil {
		l := logger.Resolve(c.Filename, c.Source, n.Start)
		loc = &l
	}
	c.Log.Add(logger.Msg{Code: code, Message: message, Fatal: code.IsFatal(), Loc: loc})
}

// Result is the transpiler's output for one expression.
type Result struct {
	Code         string
	Dependencies []string
	Preamble     []string
}

var invalid = Result{Code: "invalid"}

func (r Result) isInvalid() bool { return r.Code == "invalid" && r.Dependencies == nil && r.Preamble == nil }

func dedupDeps(deps []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, d := range deps {
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	return out
}
