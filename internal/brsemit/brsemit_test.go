package brsemit

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aryamurray/roku-svelte/internal/irc"
)

func TestEmitOrderingContract(t *testing.T) {
	comp := &irc.Component{
		Name:    "Widget",
		State:   []irc.State{{Name: "count", Type: irc.TypeNumber, InitialValue: "0"}},
		Handlers: []irc.Handler{
			{Name: "increment", Statements: []irc.Stmt{{Kind: irc.StmtIncrement, Target: "count"}}, MutatedVariables: []string{"count"}},
		},
		ExtractedCallbacks: []irc.Handler{{Name: "cb_0", Statements: []irc.Stmt{{Kind: irc.StmtReturn}}}},
		Events:             []irc.Event{{NodeID: "label_0", EventType: "select", HandlerName: "increment"}},
		OnDestroyHandler:   &irc.Handler{Name: "onDestroy_handler"},
	}

	out := Emit(comp)

	order := []string{
		"sub init()",
		"sub m_update()",
		"sub increment()",
		"sub cb_0()",
		"function onKeyEvent(",
		"sub onDestroy_handler()",
	}
	last := 0
	for _, marker := range order {
		idx := indexFrom(out, marker, last)
		assert.GreaterOrEqualf(t, idx, last, "expected %q after position %d", marker, last)
		last = idx
	}
}

func indexFrom(s, substr string, from int) int {
	for i := from; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}
	return -1
}

func TestIncrementStatementSetsDirtyAndUpdates(t *testing.T) {
	comp := &irc.Component{
		Name:     "Widget",
		State:    []irc.State{{Name: "count", Type: irc.TypeNumber, InitialValue: "0"}},
		Handlers: []irc.Handler{{Name: "increment", Statements: []irc.Stmt{{Kind: irc.StmtIncrement, Target: "count"}}, MutatedVariables: []string{"count"}}},
	}
	out := Emit(comp)
	assert.Contains(t, out, "m.state.count = 0")
	assert.Contains(t, out, "m.state.dirty.count = true")
	assert.Contains(t, out, "sub increment()")
	assert.Contains(t, out, "m.state.count = m.state.count + 1")
}

func TestBindingDirtyConditionUsesDependencies(t *testing.T) {
	comp := &irc.Component{
		Name:  "Widget",
		State: []irc.State{{Name: "mode", Type: irc.TypeNumber, InitialValue: "0"}},
		Bindings: []irc.Binding{
			{NodeID: "if_0_0", Property: "visible", BrsExpression: "m.state.mode = 0", Dependencies: []string{"mode"}},
		},
	}
	out := Emit(comp)
	assert.Contains(t, out, "if m.state.dirty.mode then")
	assert.Contains(t, out, "m.if_0_0.visible = m.state.mode = 0")
}

func TestContentRebuildBindingEmitsPerItemLoop(t *testing.T) {
	comp := &irc.Component{
		Name:  "Browse",
		State: []irc.State{{Name: "movies", Type: irc.TypeArray, FetchCall: &irc.FetchCall{URL: `"/api/movies"`}}},
		Bindings: []irc.Binding{
			{NodeID: "list_0", Property: "content", StateVar: "movies", Dependencies: []string{"movies"}, ContentItemComponent: "Browse_Item0"},
		},
	}
	out := Emit(comp)
	assert.Contains(t, out, "for each list_0_entry in m.state.movies")
	assert.Contains(t, out, "m.list_0.content = list_0_items")
}

func TestFetchObserverParsesAndMarksDirty(t *testing.T) {
	comp := &irc.Component{
		Name:  "Browse",
		State: []irc.State{{Name: "movies", Type: irc.TypeArray, FetchCall: &irc.FetchCall{URL: `"/api/movies"`}}},
	}
	out := Emit(comp)
	assert.Contains(t, out, `m.fetchTask_movies = m.top.createChild("roSGNode", "Task")`)
	assert.Contains(t, out, `fetch(m.fetchTask_movies, "/api/movies", {})`)
	assert.Contains(t, out, "sub on_movies_loaded()")
	assert.Contains(t, out, "m.state.movies = parsed")
	assert.Contains(t, out, "m.state.dirty.movies = true")
}

func TestOnKeyEventDispatchesOnlyForSelectEvents(t *testing.T) {
	comp := &irc.Component{
		Name: "Widget",
		Events: []irc.Event{
			{NodeID: "label_1", EventType: "focus", HandlerName: "onFocus"},
			{NodeID: "label_0", EventType: "select", HandlerName: "increment"},
		},
		Handlers: []irc.Handler{{Name: "increment"}, {Name: "onFocus"}},
	}
	out := Emit(comp)
	assert.Contains(t, out, "function onKeyEvent(key as string, press as boolean) as boolean")
	assert.Contains(t, out, "if focused = m.label_0 then")
	assert.NotContains(t, out, "else if focused = m.label_0 then")
	assert.Contains(t, out, "increment()")
	assert.NotContains(t, out, "onFocus()")
}

func TestNoEventsOmitsOnKeyEvent(t *testing.T) {
	comp := &irc.Component{Name: "Widget"}
	out := Emit(comp)
	assert.NotContains(t, out, "onKeyEvent")
}

func TestEmitItemComponentGeneratesTypeDirectedFormatter(t *testing.T) {
	item := &irc.ItemComponent{
		Name: "Browse_Item0",
		FieldBindings: []irc.ItemFieldBinding{
			{NodeID: "text_0", Property: "text", TextParts: []irc.TextPart{{Expr: "title"}}},
		},
	}
	schema := []irc.ArrayItemField{
		{Name: "title", Type: irc.TypeString},
		{Name: "rating", Type: irc.TypeNumber},
		{Name: "watched", Type: irc.TypeBoolean},
	}
	out := EmitItemComponent(item, schema)
	assert.Contains(t, out, "sub init()")
	assert.Contains(t, out, `m.text_0 = m.top.findNode("text_0")`)
	assert.Contains(t, out, "sub onItemContentChanged()")
	assert.Contains(t, out, `if fieldName = "rating" then return Val(rawValue.ToStr())`)
	assert.Contains(t, out, `if fieldName = "watched" then return rawValue = true`)
}

func TestSanitizeIdentReplacesNonWordRunes(t *testing.T) {
	assert.Equal(t, "label_0_x", sanitizeIdent("label-0.x"))
}

func TestBrsStringLiteralDoublesInternalQuotes(t *testing.T) {
	assert.Equal(t, `"say ""hi"""`, brsStringLiteral(`say "hi"`))
}
