package cssinline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayNoneSetsVisibleFalse(t *testing.T) {
	res := Parse("display: none;", Context{}, NodeContext{})
	assert.Equal(t, "false", res.Properties["visible"])
}

func TestColorOnlyOnLabel(t *testing.T) {
	res := Parse("color: red;", Context{}, NodeContext{IsLabel: false})
	assert.Empty(t, res.Properties["color"])
	if assert.Len(t, res.Warnings, 1) {
		assert.Equal(t, "CSS_CONTEXT_MISMATCH", res.Warnings[0].Code)
	}

	res2 := Parse("color: red;", Context{}, NodeContext{IsLabel: true})
	assert.Equal(t, "0xFF0000FF", res2.Properties["color"])
}

func TestHexColorForms(t *testing.T) {
	assert.Equal(t, "0xFF0000FF", resolveColor("#f00"))
	assert.Equal(t, "0x112233FF", resolveColor("#112233"))
	assert.Equal(t, "0x11223344", resolveColor("#11223344"))
}

func TestRemAndVhResolution(t *testing.T) {
	ctx := Context{CanvasHeight: 1080}
	px, ok := resolveLength("2rem", ctx, false)
	assert.True(t, ok)
	assert.Equal(t, float64(32), px)

	px2, ok2 := resolveLength("10vh", ctx, false)
	assert.True(t, ok2)
	assert.Equal(t, float64(108), px2)

	_, ok3 := resolveLength("auto", ctx, false)
	assert.False(t, ok3)
}

func TestUnsupportedCSSHint(t *testing.T) {
	res := Parse("margin: 4px;", Context{}, NodeContext{})
	if assert.Len(t, res.Warnings, 1) {
		assert.Equal(t, "UNSUPPORTED_CSS_HINT", res.Warnings[0].Code)
		assert.NotEmpty(t, res.Warnings[0].Hint)
	}
}

func TestFlexStylesCollected(t *testing.T) {
	res := Parse("display:flex; flex-direction: row; gap: 8px;", Context{}, NodeContext{})
	assert.Equal(t, "flex", res.FlexStyles["display"])
	assert.Equal(t, "row", res.FlexStyles["flex-direction"])
	assert.Equal(t, "8px", res.FlexStyles["gap"])
}
