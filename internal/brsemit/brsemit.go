// Package brsemit produces the procedural TL (BrightScript-dialect)
// module for one compiled component. Ordering within the emitted file
// is a contract (§4.6): version comment, init(), m_update(), one
// function per handler, fetch observers, extracted callbacks,
// onKeyEvent, onDestroy_handler, then (for item components) init plus
// onItemContentChanged.
//
// Grounded on esbuild's internal/js_printer line-buffer-with-indent
// style: one strings.Builder walked top to bottom, no intermediate
// statement-tree object, the same shape as the XML emitter in
// internal/xmlemit.
package brsemit

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aryamurray/roku-svelte/internal/irc"
)

const versionComment = "' generated by roku-svelte compiler\n"

// Emit renders the component's full .brs module.
func Emit(comp *irc.Component) string {
	e := &emitter{comp: comp}
	e.b.WriteString(versionComment)
	e.emitInit()
	e.emitUpdate()
	for _, h := range comp.Handlers {
		e.emitFunction(h.Name, h)
	}
	e.emitFetchObservers()
	for _, h := range comp.ExtractedCallbacks {
		e.emitFunction(h.Name, h)
	}
	e.emitOnKeyEvent()
	if comp.OnDestroyHandler != nil {
		e.emitFunction("onDestroy_handler", *comp.OnDestroyHandler)
	}
	return e.b.String()
}

// EmitItemComponent renders an {#each} body's sibling .brs module: its
// own init() plus onItemContentChanged. schema is the driving array
// state's item field types (irc.ArrayItemField), used to generate
// toBrightScriptValue's type-directed formatting.
func EmitItemComponent(item *irc.ItemComponent, schema []irc.ArrayItemField) string {
	e := &emitter{}
	e.b.WriteString(versionComment)
	e.b.WriteString("sub init()\n")
	seen := map[string]bool{}
	for _, fb := range item.FieldBindings {
		if seen[fb.NodeID] {
			continue
		}
		seen[fb.NodeID] = true
		fmt.Fprintf(&e.b, "  m.%s = m.top.findNode(\"%s\")\n", sanitizeIdent(fb.NodeID), fb.NodeID)
	}
	e.b.WriteString("end sub\n\n")

	e.b.WriteString("sub onItemContentChanged()\n")
	e.b.WriteString("  content = m.top.itemContent\n")
	e.b.WriteString("  if content = invalid then return\n")
	for _, fb := range item.FieldBindings {
		target := fmt.Sprintf("m.%s.%s", sanitizeIdent(fb.NodeID), fb.Property)
		fmt.Fprintf(&e.b, "  %s = %s\n", target, itemFieldValue(fb))
	}
	e.b.WriteString("end sub\n\n")

	e.b.WriteString(toBrightScriptValueFunc(schema))
	return e.b.String()
}

// itemFieldValue renders the right-hand side of one field-binding
// assignment in onItemContentChanged: a single typed field read through
// toBrightScriptValue, or a concatenation of static/dynamic text parts
// for a label bound to more than just a bare alias.field reference.
func itemFieldValue(fb irc.ItemFieldBinding) string {
	if len(fb.TextParts) == 0 {
		return fmt.Sprintf("toBrightScriptValue(\"%s\", content.%s)", fb.Field, fb.Field)
	}
	var parts []string
	for _, tp := range fb.TextParts {
		if tp.Static {
			parts = append(parts, brsStringLiteral(tp.Text))
		} else {
			parts = append(parts, fmt.Sprintf("Str(toBrightScriptValue(\"%s\", content.%s)).Trim()", tp.Expr, tp.Expr))
		}
	}
	return strings.Join(parts, " + ")
}

type emitter struct {
	comp *irc.Component
	b    strings.Builder
}

func (e *emitter) emitInit() {
	e.b.WriteString("sub init()\n")
	e.b.WriteString("  m.state = {}\n")
	e.b.WriteString("  m.state.dirty = {}\n")
	for _, s := range e.comp.State {
		fmt.Fprintf(&e.b, "  m.state.%s = %s\n", s.Name, stateInitLiteral(s))
		fmt.Fprintf(&e.b, "  m.state.dirty.%s = true\n", s.Name)
	}
	e.b.WriteString("\n")

	for _, id := range e.boundNodeIDs() {
		fmt.Fprintf(&e.b, "  m.%s = m.top.findNode(\"%s\")\n", sanitizeIdent(id), id)
	}
	e.b.WriteString("\n")

	for _, s := range e.comp.State {
		if s.FetchCall == nil {
			continue
		}
		fmt.Fprintf(&e.b, "  m.fetchTask_%s = m.top.createChild(\"roSGNode\", \"Task\")\n", s.Name)
		fmt.Fprintf(&e.b, "  m.fetchTask_%s.observeField(\"response\", \"on_%s_loaded\")\n", s.Name, s.Name)
		opts := s.FetchCall.OptionsSrc
		if opts == "" {
			opts = "{}"
		}
		fmt.Fprintf(&e.b, "  fetch(m.fetchTask_%s, %s, %s)\n", s.Name, s.FetchCall.URL, opts)
	}
	e.b.WriteString("\n")

	if e.comp.AutofocusNodeID != "" {
		fmt.Fprintf(&e.b, "  m.%s.setFocus(true)\n", sanitizeIdent(e.comp.AutofocusNodeID))
	}

	if e.comp.OnMountHandler != nil {
		e.b.WriteString("\n")
		for _, line := range e.statementLines(e.comp.OnMountHandler.Statements, "  ") {
			e.b.WriteString(line)
		}
	}

	e.b.WriteString("\n  m_update()\n")
	e.b.WriteString("end sub\n\n")
}

// boundNodeIDs returns every node id referenced by a binding or event,
// in stable declaration order, deduplicated.
func (e *emitter) boundNodeIDs() []string {
	seen := map[string]bool{}
	var out []string
	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	for _, b := range e.comp.Bindings {
		add(b.NodeID)
	}
	for _, ev := range e.comp.Events {
		add(ev.NodeID)
	}
	if e.comp.AutofocusNodeID != "" {
		add(e.comp.AutofocusNodeID)
	}
	return out
}

func (e *emitter) emitUpdate() {
	e.b.WriteString("sub m_update()\n")
	for _, b := range e.comp.Bindings {
		deps := b.Dependencies
		if len(deps) == 0 && b.StateVar != "" {
			deps = []string{b.StateVar}
		}
		cond := dirtyCondition(deps)
		fmt.Fprintf(&e.b, "  if %s then\n", cond)
		if b.ContentItemComponent != "" {
			e.emitContentRebuild(b)
		} else {
			expr := renderExpression(b)
			fmt.Fprintf(&e.b, "    m.%s.%s = %s\n", sanitizeIdent(b.NodeID), b.Property, expr)
		}
		e.b.WriteString("  end if\n")
	}
	e.b.WriteString("\n  m.state.dirty = {}\n")
	e.b.WriteString("end sub\n\n")
}

// emitContentRebuild renders an {#each} list's content binding: rebuild
// a fresh roSGNode array, one per current item, and assign it wholesale
// (BrightScript node "content" fields are replaced, not mutated in
// place, when the driving array changes shape).
func (e *emitter) emitContentRebuild(b irc.Binding) {
	id := sanitizeIdent(b.NodeID)
	fmt.Fprintf(&e.b, "    %s_items = CreateObject(\"roSGNode\", \"ContentNode\")\n", id)
	fmt.Fprintf(&e.b, "    for each %s_entry in m.state.%s\n", id, b.StateVar)
	fmt.Fprintf(&e.b, "      %s_child = %s_items.createChild(\"ContentNode\")\n", id, id)
	fmt.Fprintf(&e.b, "      %s_child.addFields(%s_entry)\n", id, id)
	e.b.WriteString("    end for\n")
	fmt.Fprintf(&e.b, "    m.%s.content = %s_items\n", id, id)
}

func dirtyCondition(deps []string) string {
	if len(deps) == 0 {
		return "true"
	}
	parts := make([]string, len(deps))
	for i, d := range deps {
		parts[i] = "m.state.dirty." + d
	}
	return strings.Join(parts, " or ")
}

// renderExpression builds the value assigned by one binding: from
// textParts for interpolated strings, from a direct state reference for
// simple bindings, or from the pre-transpiled brsExpression.
func renderExpression(b irc.Binding) string {
	if len(b.TextParts) > 0 {
		var parts []string
		for _, tp := range b.TextParts {
			if tp.Static {
				parts = append(parts, brsStringLiteral(tp.Text))
			} else {
				parts = append(parts, "Str("+tp.Expr+").Trim()")
			}
		}
		return strings.Join(parts, " + ")
	}
	if b.BrsExpression != "" {
		return b.BrsExpression
	}
	if b.StateVar != "" {
		return "m.state." + b.StateVar
	}
	return "invalid"
}

// statementLines renders a lowered handler body to indented TL source
// lines, each including its own trailing newline and leading indent, so
// callers can just WriteString them in order.
func (e *emitter) statementLines(stmts []irc.Stmt, indent string) []string {
	var out []string
	for _, s := range stmts {
		out = append(out, e.statementLine(s, indent)...)
	}
	return out
}

func (e *emitter) statementLine(s irc.Stmt, indent string) []string {
	var out []string
	emitPreamble := func() {
		for _, p := range s.Preamble {
			out = append(out, indent+p+"\n")
		}
	}

	switch s.Kind {
	case irc.StmtIncrement:
		out = append(out, fmt.Sprintf("%sm.state.%s = m.state.%s + 1\n", indent, s.Target, s.Target))
		out = append(out, fmt.Sprintf("%sm.state.dirty.%s = true\n", indent, s.Target))
	case irc.StmtDecrement:
		out = append(out, fmt.Sprintf("%sm.state.%s = m.state.%s - 1\n", indent, s.Target, s.Target))
		out = append(out, fmt.Sprintf("%sm.state.dirty.%s = true\n", indent, s.Target))
	case irc.StmtAssignLit:
		out = append(out, fmt.Sprintf("%sm.state.%s = %s\n", indent, s.Target, s.Literal))
		out = append(out, fmt.Sprintf("%sm.state.dirty.%s = true\n", indent, s.Target))
	case irc.StmtAssignNeg:
		out = append(out, fmt.Sprintf("%sm.state.%s = -m.state.%s\n", indent, s.Target, s.Target))
		out = append(out, fmt.Sprintf("%sm.state.dirty.%s = true\n", indent, s.Target))
	case irc.StmtAssignAdd:
		emitPreamble()
		out = append(out, fmt.Sprintf("%sm.state.%s = m.state.%s + %s\n", indent, s.Target, s.Target, s.Expr))
		out = append(out, fmt.Sprintf("%sm.state.dirty.%s = true\n", indent, s.Target))
	case irc.StmtAssignSub:
		emitPreamble()
		out = append(out, fmt.Sprintf("%sm.state.%s = m.state.%s - %s\n", indent, s.Target, s.Target, s.Expr))
		out = append(out, fmt.Sprintf("%sm.state.dirty.%s = true\n", indent, s.Target))
	case irc.StmtAssignExpr:
		emitPreamble()
		out = append(out, fmt.Sprintf("%sm.state.%s = %s\n", indent, s.Target, s.Expr))
		out = append(out, fmt.Sprintf("%sm.state.dirty.%s = true\n", indent, s.Target))
	case irc.StmtExprStmt:
		emitPreamble()
		out = append(out, fmt.Sprintf("%s%s\n", indent, s.Expr))
	case irc.StmtReturn:
		emitPreamble()
		if s.Expr == "" {
			out = append(out, indent+"return\n")
		} else {
			out = append(out, fmt.Sprintf("%sreturn %s\n", indent, s.Expr))
		}
	case irc.StmtVarDecl:
		emitPreamble()
		out = append(out, fmt.Sprintf("%s%s = %s\n", indent, s.VarName, s.VarInit))
	case irc.StmtIf:
		emitPreamble()
		out = append(out, fmt.Sprintf("%sif %s then\n", indent, s.Cond))
		out = append(out, e.statementLines(s.Then, indent+"  ")...)
		if len(s.Else) > 0 {
			out = append(out, indent+"else\n")
			out = append(out, e.statementLines(s.Else, indent+"  ")...)
		}
		out = append(out, indent+"end if\n")
	case irc.StmtWhile:
		emitPreamble()
		out = append(out, fmt.Sprintf("%swhile %s\n", indent, s.Cond))
		out = append(out, e.statementLines(s.Then, indent+"  ")...)
		out = append(out, indent+"end while\n")
	case irc.StmtForEach:
		emitPreamble()
		out = append(out, fmt.Sprintf("%sfor each %s in %s\n", indent, s.IterVar, s.IterExpr))
		out = append(out, e.statementLines(s.Then, indent+"  ")...)
		out = append(out, indent+"end for\n")
	case irc.StmtTryCatch:
		out = append(out, indent+"try\n")
		out = append(out, e.statementLines(s.Then, indent+"  ")...)
		catchVar := s.CatchVar
		if catchVar == "" {
			catchVar = "e"
		}
		out = append(out, fmt.Sprintf("%scatch %s\n", indent, catchVar))
		out = append(out, e.statementLines(s.Catch, indent+"  ")...)
		out = append(out, indent+"end try\n")
	}
	return out
}

func (e *emitter) emitFunction(name string, h irc.Handler) {
	fmt.Fprintf(&e.b, "sub %s()\n", name)
	for _, line := range e.statementLines(h.Statements, "  ") {
		e.b.WriteString(line)
	}
	if len(h.MutatedVariables) > 0 {
		e.b.WriteString("  m_update()\n")
	}
	e.b.WriteString("end sub\n\n")

	for _, cont := range h.Continuations {
		e.emitFunction(cont.Name, cont.Handler)
	}
}

func (e *emitter) emitFetchObservers() {
	for _, s := range e.comp.State {
		if s.FetchCall == nil {
			continue
		}
		fmt.Fprintf(&e.b, "sub on_%s_loaded()\n", s.Name)
		fmt.Fprintf(&e.b, "  response = m.fetchTask_%s.response\n", s.Name)
		e.b.WriteString("  if response = invalid then return\n")
		fmt.Fprintf(&e.b, "  parsed = ParseJson(response)\n")
		e.b.WriteString("  if parsed = invalid then return\n")
		fmt.Fprintf(&e.b, "  m.state.%s = parsed\n", s.Name)
		fmt.Fprintf(&e.b, "  m.state.dirty.%s = true\n", s.Name)
		e.b.WriteString("  m_update()\n")
		e.b.WriteString("end sub\n\n")
	}
}

func (e *emitter) emitOnKeyEvent() {
	if len(e.comp.Events) == 0 {
		return
	}
	e.b.WriteString("function onKeyEvent(key as string, press as boolean) as boolean\n")
	e.b.WriteString("  if press and key = \"OK\" then\n")
	e.b.WriteString("    focused = m.top.focusedChild\n")
	first := true
	for _, ev := range e.comp.Events {
		if ev.EventType != "select" {
			continue
		}
		cond := "else if"
		if first {
			cond = "if"
			first = false
		}
		fmt.Fprintf(&e.b, "    %s focused = m.%s then\n", cond, sanitizeIdent(ev.NodeID))
		fmt.Fprintf(&e.b, "      %s()\n", ev.HandlerName)
		fmt.Fprintf(&e.b, "      return true\n")
	}
	e.b.WriteString("    end if\n")
	e.b.WriteString("  end if\n")
	e.b.WriteString("  return false\n")
	e.b.WriteString("end function\n\n")
}

func stateInitLiteral(s irc.State) string {
	if s.FetchCall != nil {
		return "[]"
	}
	switch s.Type {
	case irc.TypeArray:
		if len(s.ArrayItems) == 0 {
			return "[]"
		}
		var items []string
		for _, item := range s.ArrayItems {
			items = append(items, objectLiteral(item, s.ArrayItemFields))
		}
		return "[" + strings.Join(items, ", ") + "]"
	case irc.TypeObject:
		return objectLiteral(s.ObjectFields, nil)
	default:
		if s.InitialValue == "" {
			return "invalid"
		}
		return s.InitialValue
	}
}

func objectLiteral(fields map[string]string, schema []irc.ArrayItemField) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var parts []string
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, fields[k]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func brsStringLiteral(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// sanitizeIdent maps a scene-graph node id (which may contain
// characters invalid in a BrightScript bare-word field access) to the
// identifier used for the cached m.{id} reference.
func sanitizeIdent(id string) string {
	var b strings.Builder
	for _, r := range id {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

// toBrightScriptValueFunc generates the type-directed formatter per
// §4.6: numeric and boolean fields pass through unquoted, string fields
// are returned as-is (the node property setter handles string coercion;
// the quoting/escaping the spec describes applies to the generated TL
// source itself, not to this runtime helper).
func toBrightScriptValueFunc(schema []irc.ArrayItemField) string {
	var b strings.Builder
	b.WriteString("function toBrightScriptValue(fieldName as string, rawValue as dynamic) as dynamic\n")
	b.WriteString("  if rawValue = invalid then return invalid\n")
	for _, f := range schema {
		switch f.Type {
		case irc.TypeNumber:
			fmt.Fprintf(&b, "  if fieldName = \"%s\" then return Val(rawValue.ToStr())\n", f.Name)
		case irc.TypeBoolean:
			fmt.Fprintf(&b, "  if fieldName = \"%s\" then return rawValue = true\n", f.Name)
		}
	}
	b.WriteString("  return rawValue\n")
	b.WriteString("end function\n")
	return b.String()
}
