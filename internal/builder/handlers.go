package builder

import (
	"strings"

	"github.com/aryamurray/roku-svelte/internal/ast"
	"github.com/aryamurray/roku-svelte/internal/irc"
	"github.com/aryamurray/roku-svelte/internal/logger"
	"github.com/aryamurray/roku-svelte/internal/transpile"
)

// lowerFunctionBody lowers one function body (a named top-level
// declaration, an onMount/onDestroy callback, or an extracted
// timer/async callback) into a Handler per §4.3.6. It is the function
// bound to transpile.Context.LowerCallback.
func (c *Context) lowerFunctionBody(name string, body *ast.Node) irc.Handler {
	h := irc.Handler{Name: name}
	mutated := map[string]bool{}
	if body == nil {
		return h
	}
	if body.Type == "statement_block" {
		for _, stmt := range body.Children("body") {
			h.Statements = append(h.Statements, c.lowerStatement(stmt, mutated)...)
		}
	} else {
		// Arrow function with an implicit-return expression body.
		h.Statements = append(h.Statements, c.lowerStatement(body, mutated)...)
	}
	for m := range mutated {
		h.MutatedVariables = append(h.MutatedVariables, m)
	}
	return h
}

func (c *Context) markMutated(mutated map[string]bool, name string) {
	if name == "" {
		return
	}
	if _, ok := c.State[name]; ok {
		mutated[name] = true
	}
}

// lowerStatement maps one AST statement to the closed set of Stmt
// variants; a shape not directly recognized falls through to the
// transpiler as an expr-statement or assign-expr, and anything the
// transpiler also rejects is a fatal UNSUPPORTED_HANDLER_BODY.
func (c *Context) lowerStatement(n *ast.Node, mutated map[string]bool) []irc.Stmt {
	if n == nil {
		return nil
	}
	switch n.Type {
	case "expression_statement":
		expr := n.Field("expression")
		if expr == nil {
			return nil
		}
		return c.lowerExpressionStatement(expr, mutated)

	case "lexical_declaration":
		var out []irc.Stmt
		for _, decl := range n.Children("declarations") {
			name := decl.Field("name")
			value := decl.Field("value")
			if name == nil {
				continue
			}
			r := c.transpileExpr(value)
			out = append(out, preambleStmts(r)...)
			out = append(out, irc.Stmt{Kind: irc.StmtVarDecl, VarName: name.Text, VarInit: r.Code})
		}
		return out

	case "if_statement":
		cond := c.transpileExpr(n.Field("condition"))
		stmt := irc.Stmt{Kind: irc.StmtIf, Cond: cond.Code}
		stmt.Then = c.lowerBlock(n.Field("consequence"), mutated)
		if alt := n.Field("alternative"); alt != nil {
			inner := alt
			if inner.Type == "else_clause" && len(inner.Children("body")) > 0 {
				inner = inner.Children("body")[0]
			}
			if inner.Type == "if_statement" {
				stmt.Else = c.lowerStatement(inner, mutated)
			} else {
				stmt.Else = c.lowerBlock(inner, mutated)
			}
		}
		return append(preambleStmts(cond), stmt)

	case "for_in_statement":
		return c.lowerForEach(n, mutated)

	case "while_statement":
		cond := c.transpileExpr(n.Field("condition"))
		stmt := irc.Stmt{Kind: irc.StmtWhile, Cond: cond.Code}
		stmt.Then = c.lowerBlock(n.Field("body"), mutated)
		return append(preambleStmts(cond), stmt)

	case "return_statement":
		arg := n.Field("argument")
		if arg == nil {
			return []irc.Stmt{{Kind: irc.StmtReturn}}
		}
		r := c.transpileExpr(arg)
		return append(preambleStmts(r), irc.Stmt{Kind: irc.StmtReturn, Expr: r.Code})

	case "try_statement":
		stmt := irc.Stmt{Kind: irc.StmtTryCatch}
		stmt.Then = c.lowerBlock(n.Field("body"), mutated)
		if handlerNode := n.Field("handler"); handlerNode != nil {
			if param := handlerNode.Field("parameter"); param != nil {
				stmt.CatchVar = param.Text
			}
			c.tctx.PushLocal(stmt.CatchVar)
			stmt.Catch = c.lowerBlock(handlerNode.Field("body"), mutated)
			c.tctx.PopLocal(stmt.CatchVar)
		}
		return []irc.Stmt{stmt}

	default:
		c.diag(n, logger.CodeUnsupportedHandlerBody, "unsupported statement shape \""+n.Type+"\"")
		return nil
	}
}

func (c *Context) lowerBlock(n *ast.Node, mutated map[string]bool) []irc.Stmt {
	if n == nil {
		return nil
	}
	if n.Type == "statement_block" {
		var out []irc.Stmt
		for _, stmt := range n.Children("body") {
			out = append(out, c.lowerStatement(stmt, mutated)...)
		}
		return out
	}
	return c.lowerStatement(n, mutated)
}

func (c *Context) lowerExpressionStatement(expr *ast.Node, mutated map[string]bool) []irc.Stmt {
	switch expr.Type {
	case "update_expression":
		target := expr.Field("argument")
		if target == nil || target.Type != "identifier" {
			break
		}
		c.markMutated(mutated, target.Text)
		kind := irc.StmtIncrement
		if strings.Contains(expr.Text, "--") {
			kind = irc.StmtDecrement
		}
		return []irc.Stmt{{Kind: kind, Target: target.Text}}

	case "assignment_expression":
		left := expr.Field("left")
		right := expr.Field("right")
		op := expr.Field("operator")
		if left == nil || left.Type != "identifier" {
			break
		}
		c.markMutated(mutated, left.Text)
		opText := "="
		if op != nil {
			opText = op.Text
		}
		switch opText {
		case "=":
			if isLiteralNode(right) {
				return []irc.Stmt{{Kind: irc.StmtAssignLit, Target: left.Text, Literal: right.Text}}
			}
			r := c.transpileExpr(right)
			return append(preambleStmts(r), irc.Stmt{Kind: irc.StmtAssignExpr, Target: left.Text, Expr: r.Code})
		case "+=":
			r := c.transpileExpr(right)
			return append(preambleStmts(r), irc.Stmt{Kind: irc.StmtAssignAdd, Target: left.Text, Expr: r.Code})
		case "-=":
			r := c.transpileExpr(right)
			return append(preambleStmts(r), irc.Stmt{Kind: irc.StmtAssignSub, Target: left.Text, Expr: r.Code})
		}
	}

	r := c.transpileExpr(expr)
	if r.Code == "" || r.Code == "invalid" {
		c.diag(expr, logger.CodeUnsupportedHandlerBody, "unsupported statement shape \""+expr.Type+"\"")
		return nil
	}
	return append(preambleStmts(r), irc.Stmt{Kind: irc.StmtExprStmt, Expr: r.Code})
}

func (c *Context) lowerForEach(n *ast.Node, mutated map[string]bool) []irc.Stmt {
	left := n.Field("left")
	right := n.Field("right")
	if left == nil || right == nil {
		c.diag(n, logger.CodeUnsupportedHandlerBody, "unsupported for loop shape")
		return nil
	}
	r := c.transpileExpr(right)
	stmt := irc.Stmt{Kind: irc.StmtForEach, IterVar: left.Text, IterExpr: r.Code}
	c.tctx.PushLocal(left.Text)
	stmt.Then = c.lowerBlock(n.Field("body"), mutated)
	c.tctx.PopLocal(left.Text)
	return append(preambleStmts(r), stmt)
}

func (c *Context) transpileExpr(n *ast.Node) transpile.Result {
	if n == nil {
		return transpile.Result{}
	}
	return transpile.Transpile(n, c.tctx)
}

// transpileTemplateExpr transpiles an expression appearing directly in
// markup (a mustache, an attribute value, an {#if}/{#each} header) with
// SingleExpressionOnly set, so nothing may produce a multi-statement
// preamble: ternaries and nullish-coalescing lower to single helper
// calls, array spreads and optional chaining raise
// UNSUPPORTED_EXPRESSION, and higher-order array methods raise
// FUNCTIONAL_IN_TEMPLATE, unlike the same expression appearing inside a
// handler body.
func (c *Context) transpileTemplateExpr(n *ast.Node) transpile.Result {
	if n == nil {
		return transpile.Result{}
	}
	prev := c.tctx.SingleExpressionOnly
	c.tctx.SingleExpressionOnly = true
	defer func() { c.tctx.SingleExpressionOnly = prev }()
	return transpile.Transpile(n, c.tctx)
}

func preambleStmts(r transpile.Result) []irc.Stmt {
	var out []irc.Stmt
	for _, p := range r.Preamble {
		out = append(out, irc.Stmt{Kind: irc.StmtExprStmt, Expr: p})
	}
	return out
}
