package builder

import (
	"strings"

	"github.com/aryamurray/roku-svelte/internal/ast"
	"github.com/aryamurray/roku-svelte/internal/irc"
	"github.com/aryamurray/roku-svelte/internal/logger"
	"github.com/aryamurray/roku-svelte/internal/transpile"
)

// extractScript walks the instance script's top-level declarations per
// §4.3.1: const declarations are recorded for identifier resolution only
// (no state variable), let declarations become typed state variables (or
// a fatal diagnostic for an unsupported initializer shape), and
// top-level function declarations become handlers.
func (c *Context) extractScript(program *ast.Node) {
	for _, stmt := range program.Children("body") {
		switch stmt.Type {
		case "lexical_declaration":
			c.extractLexicalDeclaration(stmt)
		case "function_declaration":
			c.extractFunctionDeclaration(stmt)
		case "expression_statement":
			c.extractTopLevelCall(stmt)
		}
	}
}

func (c *Context) extractLexicalDeclaration(stmt *ast.Node) {
	isConst := strings.HasPrefix(strings.TrimSpace(stmt.Text), "const")
	for _, decl := range stmt.Children("declarations") {
		name := decl.Field("name")
		value := decl.Field("value")
		if name == nil {
			continue
		}
		if isConst {
			c.tctx.PushLocal(name.Text)
			continue
		}
		c.declareState(name.Text, value)
	}
}

func (c *Context) declareState(name string, value *ast.Node) {
	state := irc.State{Name: name}

	switch {
	case value == nil:
		state.Type = irc.TypeNumber
		state.InitialValue = "0"
	case value.Type == "number":
		state.Type = irc.TypeNumber
		state.InitialValue = value.Text
	case value.Type == "string":
		state.Type = irc.TypeString
		state.InitialValue = value.Text
	case value.Type == "true" || value.Type == "false":
		state.Type = irc.TypeBoolean
		state.InitialValue = value.Text
	case value.Type == "unary_expression" && value.Field("operator").Text == "-" && value.Field("argument").Is("number"):
		state.Type = irc.TypeNumber
		state.InitialValue = "-" + value.Field("argument").Text
	case value.Type == "array":
		c.declareArrayState(&state, value)
	case value.Type == "object":
		c.declareObjectState(&state, value)
	case value.Type == "call_expression" && isFetchCall(value):
		c.declareFetchState(&state, value)
	default:
		c.diag(value, logger.CodeUnsupportedStateInit, "unsupported state initializer for \""+name+"\"")
		return
	}

	c.Component.State = append(c.Component.State, state)
	c.State[name] = transpile.StateVar{Name: name, Type: state.Type}
}

func (c *Context) declareArrayState(state *irc.State, value *ast.Node) {
	state.Type = irc.TypeArray
	elements := value.Children("elements")
	var firstKeys []string
	for i, el := range elements {
		if el.Type != "object" {
			c.diag(value, logger.CodeUnsupportedArrayInit, "array state initializer must contain only object literals")
			return
		}
		item := map[string]string{}
		for _, prop := range el.Children("properties") {
			key := propertyKeyName(prop)
			val := prop.Field("value")
			if key == "" || val == nil || !isLiteralNode(val) {
				c.diag(value, logger.CodeUnsupportedArrayInit, "array item properties must be literal values")
				return
			}
			item[key] = val.Text
			if i == 0 {
				firstKeys = append(firstKeys, key)
			}
		}
		state.ArrayItems = append(state.ArrayItems, item)
	}
	for _, k := range firstKeys {
		state.ArrayItemFields = append(state.ArrayItemFields, irc.ArrayItemField{Name: k, Type: irc.TypeString})
	}
}

func (c *Context) declareObjectState(state *irc.State, value *ast.Node) {
	state.Type = irc.TypeObject
	state.ObjectFields = map[string]string{}
	for _, prop := range value.Children("properties") {
		key := propertyKeyName(prop)
		val := prop.Field("value")
		if key == "" || val == nil || !isLiteralNode(val) {
			c.diag(value, logger.CodeUnsupportedStateInit, "object state initializer must contain only literal values")
			return
		}
		state.ObjectFields[key] = val.Text
	}
}

func (c *Context) declareFetchState(state *irc.State, call *ast.Node) {
	state.Type = irc.TypeArray
	args := call.Children("arguments")
	fc := &irc.FetchCall{}
	if len(args) > 0 {
		urlArg := args[0]
		fc.URL = urlArg.Text
		fc.URLIsLiteral = urlArg.Type == "string"
	}
	if len(args) > 1 {
		fc.OptionsSrc = args[1].Text
	}
	state.FetchCall = fc
	c.Component.RequiresRuntime = true
}

func isFetchCall(call *ast.Node) bool {
	fn := call.Field("function")
	return fn != nil && fn.Type == "identifier" && fn.Text == "fetch"
}

func propertyKeyName(prop *ast.Node) string {
	if prop == nil {
		return ""
	}
	if k := prop.Field("key"); k != nil {
		return strings.Trim(k.Text, `"'`)
	}
	return ""
}

func isLiteralNode(n *ast.Node) bool {
	switch n.Type {
	case "number", "string", "true", "false":
		return true
	case "unary_expression":
		return n.Field("operator").Text == "-" && n.Field("argument").Is("number")
	}
	return false
}

func (c *Context) extractFunctionDeclaration(stmt *ast.Node) {
	name := stmt.Field("name")
	if name == nil {
		return
	}
	params := stmt.Children("params")
	for _, p := range params {
		c.tctx.PushLocal(p.Text)
	}
	var h irc.Handler
	if strings.HasPrefix(strings.TrimSpace(stmt.Text), "async") {
		h = c.lowerAsyncFunctionBody(name.Text, stmt.Field("body"))
		c.Component.AsyncHandlers = append(c.Component.AsyncHandlers, name.Text)
	} else {
		h = c.lowerFunctionBody(name.Text, stmt.Field("body"))
	}
	for _, p := range params {
		c.tctx.PopLocal(p.Text)
	}
	c.Component.Handlers = append(c.Component.Handlers, h)
}

// extractTopLevelCall recognizes onMount(...)/onDestroy(...) per §4.3.7.
func (c *Context) extractTopLevelCall(stmt *ast.Node) {
	expr := stmt.Field("expression")
	if expr == nil || expr.Type != "call_expression" {
		return
	}
	fn := expr.Field("function")
	if fn == nil || fn.Type != "identifier" {
		return
	}
	args := expr.Children("arguments")
	if len(args) == 0 {
		return
	}
	cb := args[0]
	var body *ast.Node
	switch cb.Type {
	case "arrow_function", "function_expression", "function":
		body = cb.Field("body")
	default:
		return
	}
	switch fn.Text {
	case "onMount":
		h := c.lowerFunctionBody("onMount", body)
		c.Component.OnMountHandler = &h
	case "onDestroy":
		h := c.lowerFunctionBody("onDestroy", body)
		c.Component.OnDestroyHandler = &h
	}
}
