// Package logger implements the diagnostic model shared by every pass of
// the compiler: a closed code enum, source locations derived from byte
// offsets, and the external-facing formatter described in the "Diagnostic
// format" section of the compile contract.
//
// The shape (Msg/Loc/sortableMsgs, line scanning from a byte
// offset, one shared *Log threaded through every pass) is adapted from
// esbuild's internal/logger package.
package logger

import (
	"fmt"
	"sort"
	"strings"
)

// Code is the closed diagnostic taxonomy. Every diagnostic the compiler
// can ever emit has exactly one Code; callers may use it to filter or to
// look up a stable identifier independent of the message text.
type Code string

const (
	// Parse
	CodeParseError Code = "PARSE_ERROR"

	// Validation (fatal)
	CodeNoAsync               Code = "NO_ASYNC"
	CodeNoFetch               Code = "NO_FETCH"
	CodeNoTimers              Code = "NO_TIMERS"
	CodeNoDOM                 Code = "NO_DOM"
	CodeNoAwaitBlock          Code = "NO_AWAIT_BLOCK"
	CodeNoGestures            Code = "NO_GESTURES"
	CodeNoWorkers             Code = "NO_WORKERS"
	CodeUnknownImport         Code = "UNKNOWN_IMPORT"
	CodeUnsupportedExpression Code = "UNSUPPORTED_EXPRESSION"
	CodeInlineHandler         Code = "INLINE_HANDLER"
	CodeFunctionalInTemplate  Code = "FUNCTIONAL_IN_TEMPLATE"

	// Structural (fatal)
	CodeUnsupportedStateInit    Code = "UNSUPPORTED_STATE_INIT"
	CodeUnsupportedArrayInit    Code = "UNSUPPORTED_ARRAY_INIT"
	CodeUnsupportedHandlerBody  Code = "UNSUPPORTED_HANDLER_BODY"
	CodeUnknownHandler          Code = "UNKNOWN_HANDLER"
	CodeUnknownStateRef         Code = "UNKNOWN_STATE_REF"
	CodeEachOutsideList         Code = "EACH_OUTSIDE_LIST"
	CodeEachWithIndex           Code = "EACH_WITH_INDEX"
	CodeEachWithKey             Code = "EACH_WITH_KEY"
	CodeEachNested              Code = "EACH_NESTED"
	CodeEachNoArrayState        Code = "EACH_NO_ARRAY_STATE"
	CodeEachOuterStateRef       Code = "EACH_OUTER_STATE_REF"
	CodeUnsupportedBind         Code = "UNSUPPORTED_BIND"
	CodeUnsupportedStdlibMethod Code = "UNSUPPORTED_STDLIB_METHOD"
	CodeUnsupportedAssetFormat  Code = "UNSUPPORTED_ASSET_FORMAT"

	// Warnings
	CodeUnknownElement        Code = "UNKNOWN_ELEMENT"
	CodeUnsupportedStyleBlock Code = "UNSUPPORTED_STYLE_BLOCK"
	CodeUnsupportedCSS        Code = "UNSUPPORTED_CSS"
	CodeUnsupportedCSSHint    Code = "UNSUPPORTED_CSS_HINT"
	CodeCSSContextMismatch    Code = "CSS_CONTEXT_MISMATCH"
	CodeSVGRasterizeNoSize    Code = "SVG_RASTERIZE_NO_SIZE"
	CodeUnsupportedAssetType  Code = "UNSUPPORTED_ASSET_TYPE"
)

// fatalCodes are the codes that always zero the pipeline's output. All
// other codes are non-fatal warnings by construction.
var fatalCodes = map[Code]bool{
	CodeParseError:              true,
	CodeNoAsync:                 true,
	CodeNoFetch:                 true,
	CodeNoTimers:                true,
	CodeNoDOM:                   true,
	CodeNoAwaitBlock:            true,
	CodeNoGestures:              true,
	CodeNoWorkers:               true,
	CodeUnknownImport:           true,
	CodeUnsupportedExpression:   true,
	CodeInlineHandler:           true,
	CodeFunctionalInTemplate:    true,
	CodeUnsupportedStateInit:    true,
	CodeUnsupportedArrayInit:    true,
	CodeUnsupportedHandlerBody:  true,
	CodeUnknownHandler:          true,
	CodeUnknownStateRef:         true,
	CodeEachOutsideList:         true,
	CodeEachWithIndex:           true,
	CodeEachWithKey:             true,
	CodeEachNested:              true,
	CodeEachNoArrayState:        true,
	CodeEachOuterStateRef:       true,
	CodeUnsupportedBind:         true,
	CodeUnsupportedStdlibMethod: true,
	CodeUnsupportedAssetFormat:  true,
}

// IsFatal reports whether a diagnostic of this code is always fatal.
func (c Code) IsFatal() bool { return fatalCodes[c] }

// Loc is a 1-based line / 0-based column source location, resolved from a
// byte offset by scanning newlines in the source text.
type Loc struct {
	File     string
	Line     int
	Column   int
	LineText string
}

// Resolve scans source for newlines to turn a byte offset into a Loc. It
// is the only place a byte offset becomes a human location; callers keep
// offsets everywhere else so this remains cheap to call lazily.
func Resolve(file, source string, offset int) Loc {
	if offset < 0 {
		offset = 0
	}
	if offset > len(source) {
		offset = len(source)
	}
	line := 1
	lineStart := 0
	for i := 0; i < offset; i++ {
		if source[i] == '\n' {
			line++
			lineStart = i + 1
		}
	}
	lineEnd := len(source)
	for i := lineStart; i < len(source); i++ {
		if source[i] == '\n' {
			lineEnd = i
			break
		}
	}
	return Loc{
		File:     file,
		Line:     line,
		Column:   offset - lineStart,
		LineText: source[lineStart:lineEnd],
	}
}

// Msg is a single diagnostic. Fatal is derived from Code but stored
// explicitly so a future rule can downgrade or upgrade a code's severity
// (e.g. "fatal unless a lowering pass handles it", see no-async) without
// widening the Code enum.
type Msg struct {
	Code    Code
	Message string
	Hint    string
	DocsURL string
	Fatal   bool
	Loc     *Loc
}

func (m Msg) isWarning() bool { return !m.Fatal }

// Log accumulates diagnostics for a single compile call. It is never
// shared across calls and carries no concurrency primitives: the core is
// single-threaded and synchronous per compile (see the concurrency
// model), so a plain slice is sufficient.
type Log struct {
	msgs []Msg
}

func NewLog() *Log { return &Log{} }

func (l *Log) Add(m Msg) { l.msgs = append(l.msgs, m) }

func (l *Log) AddError(code Code, loc *Loc, message string) {
	l.Add(Msg{Code: code, Message: message, Fatal: code.IsFatal(), Loc: loc})
}

func (l *Log) AddErrorHint(code Code, loc *Loc, message, hint string) {
	l.Add(Msg{Code: code, Message: message, Hint: hint, Fatal: code.IsFatal(), Loc: loc})
}

func (l *Log) AddWarning(code Code, loc *Loc, message string) {
	l.Add(Msg{Code: code, Message: message, Fatal: false, Loc: loc})
}

func (l *Log) AddWarningHint(code Code, loc *Loc, message, hint string) {
	l.Add(Msg{Code: code, Message: message, Hint: hint, Fatal: false, Loc: loc})
}

func (l *Log) HasFatal() bool {
	for _, m := range l.msgs {
		if m.Fatal {
			return true
		}
	}
	return false
}

// Msgs returns all accumulated diagnostics in a deterministic order:
// multiple passes push diagnostics whose relative arrival order isn't
// meaningful to callers, so we sort by location for a stable external
// contract (mirrors esbuild's SortableMsgs).
func (l *Log) Msgs() []Msg {
	out := make([]Msg, len(l.msgs))
	copy(out, l.msgs)
	sort.Stable(sortableMsgs(out))
	return out
}

func (l *Log) Errors() []Msg {
	var out []Msg
	for _, m := range l.Msgs() {
		if !m.isWarning() {
			out = append(out, m)
		}
	}
	return out
}

func (l *Log) Warnings() []Msg {
	var out []Msg
	for _, m := range l.Msgs() {
		if m.isWarning() {
			out = append(out, m)
		}
	}
	return out
}

type sortableMsgs []Msg

func (a sortableMsgs) Len() int      { return len(a) }
func (a sortableMsgs) Swap(i, j int) { a[i], a[j] = a[j], a[i] }
func (a sortableMsgs) Less(i, j int) bool {
	li, lj := a[i].Loc, a[j].Loc
	if li == nil || lj == nil {
		return li == nil && lj != nil
	}
	if li.Line != lj.Line {
		return li.Line < lj.Line
	}
	if li.Column != lj.Column {
		return li.Column < lj.Column
	}
	return a[i].Message < a[j].Message
}

// Format renders a single diagnostic in the external formatter's shape:
//
//	error[CODE]: message
//	 --> file:line:column
//	 NNN | source line
//	     |      ^
//	hint: ...
func Format(m Msg) string {
	var b strings.Builder
	kind := "error"
	if m.isWarning() {
		kind = "warning"
	}
	fmt.Fprintf(&b, "%s[%s]: %s\n", kind, m.Code, m.Message)
	if m.Loc != nil {
		fmt.Fprintf(&b, " --> %s:%d:%d\n", m.Loc.File, m.Loc.Line, m.Loc.Column)
		lineNum := fmt.Sprintf("%d", m.Loc.Line)
		fmt.Fprintf(&b, " %s | %s\n", lineNum, m.Loc.LineText)
		pad := strings.Repeat(" ", len(lineNum))
		caret := strings.Repeat(" ", m.Loc.Column) + "^"
		fmt.Fprintf(&b, " %s | %s\n", pad, caret)
	}
	if m.Hint != "" {
		fmt.Fprintf(&b, "hint: %s\n", m.Hint)
	}
	return b.String()
}
