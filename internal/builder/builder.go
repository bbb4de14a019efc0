// Package builder performs the single AST walk that produces the
// compiler's intermediate representation (internal/irc). It owns the
// per-file context the spec describes: diagnostics, the state-variable
// table, the each-block context stack, node/each-item id counters, the
// style context stack, and the polyfill/callback counters shared with
// internal/transpile.
//
// The walk-with-mutable-context shape is grounded on esbuild's
// internal/js_parser, which threads a single *parser through every
// AST-to-AST pass rather than returning new trees at each stage.
package builder

import (
	"fmt"

	"github.com/aryamurray/roku-svelte/internal/ast"
	"github.com/aryamurray/roku-svelte/internal/config"
	"github.com/aryamurray/roku-svelte/internal/cssinline"
	"github.com/aryamurray/roku-svelte/internal/irc"
	"github.com/aryamurray/roku-svelte/internal/logger"
	"github.com/aryamurray/roku-svelte/internal/parseradapter"
	"github.com/aryamurray/roku-svelte/internal/transpile"
)

// styleFrame is one entry of the style-context stack: the unit
// resolution context in effect for the node currently being walked.
type styleFrame struct {
	width, height, fontPx int
}

// eachFrame is present on the context's each-stack iff the walk is
// currently inside an item component's fragment.
type eachFrame struct {
	alias        string
	indexName    string
	item         *irc.ItemComponent
	outerRefSeen bool
}

// Context is the per-file builder state. One Context is created per
// Build call and discarded afterward; nothing here survives a call.
type Context struct {
	Filename string
	Source   string
	Options  config.Options

	Log *logger.Log

	Component *irc.Component

	State map[string]transpile.StateVar

	nodeCounter  int
	eachCounter  int
	ifCounter    int
	fieldsByFetch map[string]map[string]bool

	styleStack []styleFrame
	eachStack  []*eachFrame

	// pendingAutofocus holds the node an `autofocus` attribute was seen on
	// until its id is finalized (an explicit `id` attribute can appear
	// before or after `autofocus` in source order).
	pendingAutofocus *irc.Node

	tctx *transpile.Context
}

// Build runs script extraction, the markup walk, and the final
// back-fill passes (fetch field-schema inference) and returns the
// compiled Component. Callers must check Log.HasFatal() before relying
// on the result.
func Build(file *parseradapter.File, filename, source string, opts config.Options) (*irc.Component, *logger.Log) {
	log := logger.NewLog()
	comp := &irc.Component{
		Name:    componentNameFromFilename(filename),
		Extends: irc.ExtendsGroup,
	}
	if opts.IsEntry {
		comp.Extends = irc.ExtendsScene
	}

	var extracted []irc.Handler
	ctx := &Context{
		Filename:      filename,
		Source:        source,
		Options:       opts,
		Log:           log,
		Component:     comp,
		State:         map[string]transpile.StateVar{},
		fieldsByFetch: map[string]map[string]bool{},
		styleStack:    []styleFrame{{width: opts.ResolutionOrDefault().Width, height: opts.ResolutionOrDefault().Height}},
	}
	ctx.tctx = transpile.NewContext(log, filename, source, &extracted)
	ctx.tctx.LowerCallback = func(name string, body *ast.Node) irc.Handler {
		return ctx.lowerFunctionBody(name, body)
	}

	ctx.extractScript(file.Script)
	ctx.walkChildren(file.Markup, &comp.Children, nil)

	comp.ExtractedCallbacks = extracted
	comp.RequiresRuntime = comp.RequiresRuntime || ctx.tctx.StdlibUsed
	comp.RequiresStdlib = ctx.tctx.StdlibUsed
	for k := range ctx.tctx.Polyfills {
		comp.RequirePolyfill(k)
	}

	ctx.backfillFetchSchemas()
	ctx.checkHandlerRefs()

	return comp, log
}

func componentNameFromFilename(filename string) string {
	base := filename
	for i := len(base) - 1; i >= 0; i-- {
		if base[i] == '/' || base[i] == '\\' {
			base = base[i+1:]
			break
		}
	}
	for i := len(base) - 1; i >= 0; i-- {
		if base[i] == '.' {
			return base[:i]
		}
	}
	return base
}

func (c *Context) nextNodeID(prefix string) string {
	c.nodeCounter++
	return fmt.Sprintf("%s_%d", prefix, c.nodeCounter)
}

func (c *Context) diag(n *ast.Node, code logger.Code, message string) {
	var loc *logger.Loc
	if n != nil {
		l := logger.Resolve(c.Filename, c.Source, n.Start)
		loc = &l
	}
	c.Log.Add(logger.Msg{Code: code, Message: message, Fatal: code.IsFatal(), Loc: loc})
}

func (c *Context) currentStyleFrame() styleFrame {
	return c.styleStack[len(c.styleStack)-1]
}

func (c *Context) pushStyleFrame(f styleFrame) { c.styleStack = append(c.styleStack, f) }
func (c *Context) popStyleFrame()              { c.styleStack = c.styleStack[:len(c.styleStack)-1] }

func (c *Context) inEachContext() *eachFrame {
	if len(c.eachStack) == 0 {
		return nil
	}
	return c.eachStack[len(c.eachStack)-1]
}

func (c *Context) cssContext() cssinline.Context {
	f := c.currentStyleFrame()
	res := c.Options.ResolutionOrDefault()
	return cssinline.Context{
		CanvasWidth:  res.Width,
		CanvasHeight: res.Height,
		ParentWidth:  f.width,
		ParentHeight: f.height,
		ParentFontPx: f.fontPx,
	}
}
