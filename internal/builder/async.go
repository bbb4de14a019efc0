package builder

import (
	"fmt"
	"strings"

	"github.com/aryamurray/roku-svelte/internal/ast"
	"github.com/aryamurray/roku-svelte/internal/irc"
)

// lowerAsyncFunctionBody lowers a top-level `async function` per
// §4.3.9: split at each `await` site into a chain of continuations
// rather than one flat handler body. A body with no top-level await at
// all lowers exactly like an ordinary handler.
func (c *Context) lowerAsyncFunctionBody(name string, body *ast.Node) irc.Handler {
	if body == nil || body.Type != "statement_block" {
		return c.lowerFunctionBody(name, body)
	}
	mutated := map[string]bool{}
	stmts, conts := c.lowerAsyncStatements(name, 0, body.Children("body"), mutated)
	h := irc.Handler{Name: name, Statements: stmts, Continuations: conts}
	for m := range mutated {
		h.MutatedVariables = append(h.MutatedVariables, m)
	}
	return h
}

// lowerAsyncStatements lowers stmts up to and including the first
// top-level await site, then recurses on the remainder inside a new
// continuation. contIndex numbers continuations `{fnName}__cont_{n}`
// across the whole chain, so nested awaits keep counting up rather
// than restarting at each level.
func (c *Context) lowerAsyncStatements(fnName string, contIndex int, stmts []*ast.Node, mutated map[string]bool) ([]irc.Stmt, []irc.AsyncContinuation) {
	for i, stmt := range stmts {
		awaited, resultVar := detectTopLevelAwait(stmt)
		if awaited == nil {
			continue
		}

		var out []irc.Stmt
		for _, s := range stmts[:i] {
			out = append(out, c.lowerStatement(s, mutated)...)
		}

		contIndex++
		contName := fmt.Sprintf("%s__cont_%d", fnName, contIndex)
		trigger, kind := c.lowerAwaitTrigger(contName, awaited)
		out = append(out, trigger...)

		var contStmts []irc.Stmt
		if resultVar != "" {
			contStmts = append(contStmts, awaitResultBinding(contName, kind, resultVar))
			c.tctx.PushLocal(resultVar)
		}
		contMutated := map[string]bool{}
		restStmts, nestedConts := c.lowerAsyncStatements(fnName, contIndex, stmts[i+1:], contMutated)
		contStmts = append(contStmts, restStmts...)
		if resultVar != "" {
			c.tctx.PopLocal(resultVar)
		}

		contHandler := irc.Handler{Name: contName, Statements: contStmts, Continuations: nestedConts}
		for m := range contMutated {
			contHandler.MutatedVariables = append(contHandler.MutatedVariables, m)
		}
		cont := irc.AsyncContinuation{Name: contName, AwaitType: kind, ResultField: resultVar, Handler: contHandler}
		return out, []irc.AsyncContinuation{cont}
	}

	var out []irc.Stmt
	for _, s := range stmts {
		out = append(out, c.lowerStatement(s, mutated)...)
	}
	return out, nil
}

// detectTopLevelAwait recognizes the two statement shapes §4.3.9 splits
// on: `const r = await g(...)` (returns the call and "r") and a bare
// `await g(...)` expression statement (returns the call and "").
// Anything else returns a nil call, meaning this statement has no
// top-level await and should be lowered normally.
func detectTopLevelAwait(stmt *ast.Node) (*ast.Node, string) {
	switch stmt.Type {
	case "lexical_declaration":
		decls := stmt.Children("declarations")
		if len(decls) != 1 {
			return nil, ""
		}
		value := decls[0].Field("value")
		if value == nil || value.Type != "await_expression" {
			return nil, ""
		}
		name := decls[0].Field("name")
		call := awaitedCall(value)
		if name == nil || call == nil {
			return nil, ""
		}
		return call, name.Text
	case "expression_statement":
		expr := stmt.Field("expression")
		if expr == nil || expr.Type != "await_expression" {
			return nil, ""
		}
		call := awaitedCall(expr)
		if call == nil {
			return nil, ""
		}
		return call, ""
	}
	return nil, ""
}

// awaitedCall extracts the call expression an await_expression wraps.
// The grammar's await_expression production carries no named field for
// its operand, so the operand only survives conversion as the node's
// generic "body" child list (parseradapter.convert's default fallback
// for any node type absent from its own list-field table).
func awaitedCall(n *ast.Node) *ast.Node {
	children := n.Children("body")
	if len(children) != 1 {
		return nil
	}
	return children[0]
}

// lowerAwaitTrigger emits the TL statements that kick off the awaited
// call and returns which kind of continuation it produces. A `fetch(…)`
// call reuses the fetchTask_* shape declareFetchState already
// establishes for `let`-initializer fetches (internal/builder/script.go),
// just scoped to this continuation's own `m.{contName}_task` field
// instead of a state variable's. Anything else is modeled as a generic
// task-based adapter: the called function's name and transpiled
// arguments are handed to a task component an external runtime
// collaborator supplies, the same "the core only declares, an external
// collaborator performs the work" split RequiresRuntime already implies
// for fetch.
func (c *Context) lowerAwaitTrigger(contName string, call *ast.Node) ([]irc.Stmt, irc.AwaitKind) {
	c.Component.RequiresRuntime = true

	if isFetchCall(call) {
		args := call.Children("arguments")
		url, opts := "invalid", "{}"
		var out []irc.Stmt
		if len(args) > 0 {
			r := c.transpileExpr(args[0])
			out = append(out, preambleStmts(r)...)
			url = r.Code
		}
		if len(args) > 1 {
			r := c.transpileExpr(args[1])
			out = append(out, preambleStmts(r)...)
			opts = r.Code
		}
		out = append(out,
			raw("m.%s_task = m.top.createChild(\"roSGNode\", \"Task\")", contName),
			raw("m.%s_task.observeField(\"response\", \"%s\")", contName, contName),
			raw("fetch(m.%s_task, %s, %s)", contName, url, opts),
		)
		return out, irc.AwaitFetch
	}

	fn := call.Field("function")
	fnName := ""
	if fn != nil {
		fnName = fn.Text
	}
	var out []irc.Stmt
	var argCodes []string
	for _, a := range call.Children("arguments") {
		r := c.transpileExpr(a)
		out = append(out, preambleStmts(r)...)
		argCodes = append(argCodes, r.Code)
	}
	out = append(out,
		raw("m.%s_task = m.top.createChild(\"roSGNode\", \"AsyncCallTask\")", contName),
		raw("m.%s_task.observeField(\"result\", \"%s\")", contName, contName),
		raw("m.%s_task.fnName = \"%s\"", contName, fnName),
		raw("m.%s_task.fnArgs = [%s]", contName, strings.Join(argCodes, ", ")),
		raw("m.%s_task.control = \"RUN\"", contName),
	)
	return out, irc.AwaitPromise
}

// awaitResultBinding builds the continuation's first statement: reading
// the resolved value back out of the triggering task node into the
// local variable the source bound it to.
func awaitResultBinding(contName string, kind irc.AwaitKind, resultVar string) irc.Stmt {
	if kind == irc.AwaitFetch {
		return irc.Stmt{Kind: irc.StmtVarDecl, VarName: resultVar, VarInit: fmt.Sprintf("ParseJson(m.%s_task.response)", contName)}
	}
	return irc.Stmt{Kind: irc.StmtVarDecl, VarName: resultVar, VarInit: fmt.Sprintf("m.%s_task.result", contName)}
}

func raw(format string, args ...interface{}) irc.Stmt {
	return irc.Stmt{Kind: irc.StmtExprStmt, Expr: fmt.Sprintf(format, args...)}
}
