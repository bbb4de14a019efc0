package xmlemit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aryamurray/roku-svelte/internal/irc"
)

func TestEmitProducesDeclarationAndComponentRoot(t *testing.T) {
	comp := &irc.Component{Name: "Widget", Extends: irc.ExtendsScene}
	out := Emit(comp, nil)
	assert.Contains(t, out, `<?xml version="1.0" encoding="utf-8" ?>`)
	assert.Contains(t, out, `<component name="Widget" extends="Scene">`)
	assert.Contains(t, out, "<children>")
	assert.Contains(t, out, "</component>")
}

func TestEmitWritesScriptRefsInOrder(t *testing.T) {
	comp := &irc.Component{Name: "Widget", Extends: irc.ExtendsGroup}
	out := Emit(comp, []ScriptRef{
		{URI: "pkg:/components/Widget.brs"},
		{URI: "pkg:/source/runtime/runtime.brs"},
	})
	first := indexOf(out, `uri="pkg:/components/Widget.brs"`)
	second := indexOf(out, `uri="pkg:/source/runtime/runtime.brs"`)
	assert.GreaterOrEqual(t, first, 0)
	assert.Greater(t, second, first)
}

func TestWriteNodeSelfClosesLeaves(t *testing.T) {
	comp := &irc.Component{
		Name:    "Widget",
		Extends: irc.ExtendsGroup,
		Children: []*irc.Node{
			{ID: "rect_0", Type: irc.KindRectangle, Focusable: true},
		},
	}
	out := Emit(comp, nil)
	assert.Contains(t, out, `<Rectangle id="rect_0" focusable="true" />`)
}

func TestDynamicPropertiesAreOmitted(t *testing.T) {
	comp := &irc.Component{
		Name:    "Widget",
		Extends: irc.ExtendsGroup,
		Children: []*irc.Node{
			{
				ID:   "label_0",
				Type: irc.KindLabel,
				Properties: []irc.Property{
					{Name: "color", Value: "0xFF0000FF"},
					{Name: "text", Dynamic: true},
				},
			},
		},
	}
	out := Emit(comp, nil)
	assert.Contains(t, out, `color="0xFF0000FF"`)
	assert.NotContains(t, out, `text="`)
}

func TestSpecialCharactersAreEscaped(t *testing.T) {
	comp := &irc.Component{
		Name:    "Widget",
		Extends: irc.ExtendsGroup,
		Children: []*irc.Node{
			{ID: "label_0", Type: irc.KindLabel, TextContent: `A & B <C> "D"`},
		},
	}
	out := Emit(comp, nil)
	assert.Contains(t, out, `text="A &amp; B &lt;C&gt; &quot;D&quot;"`)
}

func TestNestedChildrenRenderRecursively(t *testing.T) {
	comp := &irc.Component{
		Name:    "Widget",
		Extends: irc.ExtendsGroup,
		Children: []*irc.Node{
			{
				ID:   "group_0",
				Type: irc.KindGroup,
				Children: []*irc.Node{
					{ID: "rect_0", Type: irc.KindRectangle},
				},
			},
		},
	}
	out := Emit(comp, nil)
	assert.Contains(t, out, `<Group id="group_0">`)
	assert.Contains(t, out, `<Rectangle id="rect_0" />`)
	assert.Contains(t, out, `</Group>`)
}

func TestEmitItemComponentIncludesInterfaceAndSizedRoot(t *testing.T) {
	item := &irc.ItemComponent{
		Name:      "Browse_Item0",
		ItemSizeW: 1920,
		ItemSizeH: 100,
		Children: []*irc.Node{
			{ID: "text_0", Type: irc.KindLabel},
		},
	}
	out := EmitItemComponent(item, nil)
	assert.Contains(t, out, `<component name="Browse_Item0" extends="Group">`)
	assert.Contains(t, out, `<field id="itemContent" type="assocarray" onChange="onItemContentChanged" />`)
	assert.Contains(t, out, `<Group id="itemRoot" width="1920" height="100">`)
	assert.Contains(t, out, `<Label id="text_0" />`)
}

func TestFlexStylesAttributesAreSortedByKey(t *testing.T) {
	comp := &irc.Component{
		Name:    "Widget",
		Extends: irc.ExtendsGroup,
		Children: []*irc.Node{
			{
				ID:   "group_0",
				Type: irc.KindGroup,
				FlexStyles: map[string]string{
					"gap":            "8px",
					"flex-direction": "row",
					"display":        "flex",
				},
			},
		},
	}
	var first string
	for i := 0; i < 10; i++ {
		out := Emit(comp, nil)
		displayAt := indexOf(out, `display="flex"`)
		flexDirAt := indexOf(out, `flex-direction="row"`)
		gapAt := indexOf(out, `gap="8px"`)
		require.GreaterOrEqual(t, displayAt, 0)
		require.GreaterOrEqual(t, flexDirAt, 0)
		require.GreaterOrEqual(t, gapAt, 0)
		require.Less(t, displayAt, flexDirAt)
		require.Less(t, flexDirAt, gapAt)
		if i == 0 {
			first = out
		} else {
			assert.Equal(t, first, out)
		}
	}
}

func indexOf(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}
	return -1
}
