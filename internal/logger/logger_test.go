package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveLocation(t *testing.T) {
	src := "line one\nline two\nline three"
	loc := Resolve("test.svelte", src, 14)
	require.Equal(t, 2, loc.Line)
	assert.Equal(t, 5, loc.Column)
	assert.Equal(t, "line two", loc.LineText)
}

func TestFatalClassification(t *testing.T) {
	assert.True(t, CodeParseError.IsFatal())
	assert.True(t, CodeUnknownHandler.IsFatal())
	assert.False(t, CodeUnknownElement.IsFatal())
	assert.False(t, CodeUnsupportedCSS.IsFatal())
}

func TestLogOrderingAndFatal(t *testing.T) {
	log := NewLog()
	log.AddWarning(CodeUnknownElement, &Loc{Line: 3}, "unknown tag <div>")
	log.AddError(CodeUnknownHandler, &Loc{Line: 1}, "handler not found")
	require.True(t, log.HasFatal())

	msgs := log.Msgs()
	require.Len(t, msgs, 2)
	assert.Equal(t, 1, msgs[0].Loc.Line)
	assert.Equal(t, 3, msgs[1].Loc.Line)

	errs := log.Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, CodeUnknownHandler, errs[0].Code)

	warns := log.Warnings()
	require.Len(t, warns, 1)
	assert.Equal(t, CodeUnknownElement, warns[0].Code)
}

func TestFormatIncludesHint(t *testing.T) {
	msg := Msg{
		Code:    CodeUnsupportedCSSHint,
		Message: "margin is not supported",
		Hint:    "use padding on the parent instead",
		Fatal:   false,
		Loc:     &Loc{File: "a.svelte", Line: 4, Column: 2, LineText: "  margin: 4px;"},
	}
	out := Format(msg)
	assert.Contains(t, out, "warning[UNSUPPORTED_CSS_HINT]")
	assert.Contains(t, out, "--> a.svelte:4:2")
	assert.Contains(t, out, "hint: use padding on the parent instead")
}
