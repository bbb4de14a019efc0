package transpile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aryamurray/roku-svelte/internal/ast"
	"github.com/aryamurray/roku-svelte/internal/irc"
	"github.com/aryamurray/roku-svelte/internal/logger"
)

func newTestContext() *Context {
	var extracted []irc.Handler
	ctx := NewContext(logger.NewLog(), "test.svelte", "", &extracted)
	ctx.LowerCallback = func(name string, body *ast.Node) irc.Handler {
		return irc.Handler{Name: name}
	}
	return ctx
}

func ident(name string) *ast.Node { return ast.New("identifier", 0, 0, name) }
func num(text string) *ast.Node   { return ast.New("number", 0, 0, text) }

func TestIdentifierResolvesStateVariable(t *testing.T) {
	ctx := newTestContext()
	ctx.State["count"] = StateVar{Name: "count", Type: irc.TypeNumber}
	r := Transpile(ident("count"), ctx)
	require.False(t, r.isInvalid())
	assert.Equal(t, "m.state.count", r.Code)
	assert.Equal(t, []string{"count"}, r.Dependencies)
}

func TestBinaryStrictEqualityMapsToSingleEquals(t *testing.T) {
	ctx := newTestContext()
	ctx.State["mode"] = StateVar{Name: "mode", Type: irc.TypeNumber}
	n := &ast.Node{Type: "binary_expression"}
	n.WithField("left", ident("mode"))
	n.WithField("operator", ast.New("operator", 0, 0, "==="))
	n.WithField("right", num("0"))
	r := Transpile(n, ctx)
	require.False(t, r.isInvalid())
	assert.Equal(t, "m.state.mode = 0", r.Code)
}

func TestTypeofWindowConstantFolds(t *testing.T) {
	ctx := newTestContext()
	typeofExpr := &ast.Node{Type: "unary_expression"}
	typeofExpr.WithField("operator", ast.New("operator", 0, 0, "typeof"))
	typeofExpr.WithField("argument", ident("window"))

	n := &ast.Node{Type: "binary_expression"}
	n.WithField("left", typeofExpr)
	n.WithField("operator", ast.New("operator", 0, 0, "==="))
	strLit := ast.New("string", 0, 0, `"object"`)
	n.WithField("right", strLit)

	r := Transpile(n, ctx)
	require.False(t, r.isInvalid())
	assert.Equal(t, "true", r.Code)
	assert.Empty(t, ctx.Polyfills)
}

func TestStringIncludesInlinesAsInstr(t *testing.T) {
	ctx := newTestContext()
	ctx.State["name"] = StateVar{Name: "name", Type: irc.TypeString}
	call := &ast.Node{Type: "call_expression"}
	member := &ast.Node{Type: "member_expression"}
	member.WithField("object", ident("name"))
	member.WithField("property", ast.New("property_identifier", 0, 0, "includes"))
	call.WithField("function", member)
	arg := ast.New("string", 0, 0, `"x"`)
	call.WithList("arguments", []*ast.Node{arg})

	r := Transpile(call, ctx)
	require.False(t, r.isInvalid())
	assert.Contains(t, r.Code, "Instr(1, m.state.name, \"x\") > 0")
}

func TestHigherOrderInsideTemplateIsFatal(t *testing.T) {
	ctx := newTestContext()
	ctx.SingleExpressionOnly = true
	ctx.State["items"] = StateVar{Name: "items", Type: irc.TypeArray}

	call := &ast.Node{Type: "call_expression"}
	member := &ast.Node{Type: "member_expression"}
	member.WithField("object", ident("items"))
	member.WithField("property", ast.New("property_identifier", 0, 0, "map"))
	call.WithField("function", member)

	arrow := &ast.Node{Type: "arrow_function"}
	arrow.WithList("params", []*ast.Node{ident("x")})
	arrow.WithField("body", ident("x"))
	call.WithList("arguments", []*ast.Node{arrow})

	r := Transpile(call, ctx)
	assert.True(t, r.isInvalid())
	require.Len(t, ctx.Log.Msgs(), 1)
	assert.Equal(t, logger.CodeFunctionalInTemplate, ctx.Log.Msgs()[0].Code)
}

func TestOptionalMemberAccessGuardsWithTempVar(t *testing.T) {
	ctx := newTestContext()
	ctx.State["profile"] = StateVar{Name: "profile", Type: irc.TypeObject}

	n := &ast.Node{Type: "member_expression"}
	n.WithField("object", ident("profile"))
	n.WithField("property", ast.New("property_identifier", 0, 0, "name"))
	n.WithList("body", []*ast.Node{ast.New("optional_chain", 0, 0, "?.")})

	r := Transpile(n, ctx)
	require.False(t, r.isInvalid())
	assert.Equal(t, "__tmp_1", r.Code)
	require.Len(t, r.Preamble, 4)
	assert.Equal(t, "__tmp_1 = invalid", r.Preamble[0])
	assert.Equal(t, "if m.state.profile <> invalid then", r.Preamble[1])
	assert.Equal(t, "    __tmp_1 = m.state.profile.name", r.Preamble[2])
	assert.Equal(t, "end if", r.Preamble[3])
	assert.Equal(t, []string{"profile"}, r.Dependencies)
}

func TestOptionalChainingInsideTemplateIsFatal(t *testing.T) {
	ctx := newTestContext()
	ctx.SingleExpressionOnly = true
	ctx.State["profile"] = StateVar{Name: "profile", Type: irc.TypeObject}

	n := &ast.Node{Type: "member_expression"}
	n.WithField("object", ident("profile"))
	n.WithField("property", ast.New("property_identifier", 0, 0, "name"))
	n.WithList("body", []*ast.Node{ast.New("optional_chain", 0, 0, "?.")})

	r := Transpile(n, ctx)
	assert.True(t, r.isInvalid())
	require.Len(t, ctx.Log.Msgs(), 1)
	assert.Equal(t, logger.CodeUnsupportedExpression, ctx.Log.Msgs()[0].Code)
}

func TestOptionalCallUsesFunctionFieldAsReceiver(t *testing.T) {
	ctx := newTestContext()
	ctx.State["onReady"] = StateVar{Name: "onReady", Type: irc.TypeString}

	n := &ast.Node{Type: "call_expression"}
	n.WithField("function", ident("onReady"))
	n.WithField("optional_chain", ast.New("optional_chain", 0, 0, "?."))
	n.WithList("arguments", nil)

	r := Transpile(n, ctx)
	require.False(t, r.isInvalid())
	assert.Contains(t, r.Preamble[2], "m.state.onReady()")
}

func TestUnknownStateReferenceIsDiagnosed(t *testing.T) {
	ctx := newTestContext()
	r := Transpile(ident("typo"), ctx)
	assert.True(t, r.isInvalid())
	require.Len(t, ctx.Log.Msgs(), 1)
	assert.Equal(t, logger.CodeUnknownStateRef, ctx.Log.Msgs()[0].Code)
}

func TestLocalIdentifierIsNotDiagnosed(t *testing.T) {
	ctx := newTestContext()
	ctx.PushLocal("item")
	r := Transpile(ident("item"), ctx)
	assert.False(t, r.isInvalid())
	assert.Equal(t, "item", r.Code)
	assert.Empty(t, ctx.Log.Msgs())
}

func TestChainDepthLimitFails(t *testing.T) {
	ctx := newTestContext()
	ctx.State["items"] = StateVar{Name: "items", Type: irc.TypeArray}
	ctx.chainDepth = maxChainDepth

	call := &ast.Node{Type: "call_expression"}
	member := &ast.Node{Type: "member_expression"}
	member.WithField("object", ident("items"))
	member.WithField("property", ast.New("property_identifier", 0, 0, "map"))
	call.WithField("function", member)
	arrow := &ast.Node{Type: "arrow_function"}
	arrow.WithList("params", []*ast.Node{ident("x")})
	arrow.WithField("body", ident("x"))
	call.WithList("arguments", []*ast.Node{arrow})

	r := Transpile(call, ctx)
	assert.True(t, r.isInvalid())
	require.Len(t, ctx.Log.Msgs(), 1)
	assert.Equal(t, logger.CodeUnsupportedHandlerBody, ctx.Log.Msgs()[0].Code)
}
