package transpile

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aryamurray/roku-svelte/internal/ast"
	"github.com/aryamurray/roku-svelte/internal/logger"
)

const maxChainDepth = 4

// Transpile dispatches on the AST expression node's kind and returns
// the lowered TL code, its state-variable dependencies, and any
// preamble statements that must run before Code is evaluated.
func Transpile(n *ast.Node, ctx *Context) Result {
	if n == nil {
		return invalid
	}
	switch n.Type {
	case "identifier", "shorthand_property_identifier", "property_identifier":
		return transpileIdentifier(n, ctx)
	case "number":
		return Result{Code: n.Text}
	case "string":
		return Result{Code: escapeStringLiteral(unquote(n.Text))}
	case "true":
		return Result{Code: "true"}
	case "false":
		return Result{Code: "false"}
	case "null":
		ctx.diag(n, logger.CodeUnsupportedExpression, "null has no TL equivalent")
		return invalid
	case "undefined":
		return Result{Code: "invalid"}
	case "parenthesized_expression":
		if body := n.Children("body"); len(body) == 1 {
			inner := Transpile(body[0], ctx)
			return Result{Code: "(" + inner.Code + ")", Dependencies: inner.Dependencies, Preamble: inner.Preamble}
		}
		return invalid
	case "member_expression":
		if hasOptionalChain(n) {
			return transpileOptionalChain(n, ctx, "member")
		}
		return transpileMember(n, ctx)
	case "subscript_expression":
		if hasOptionalChain(n) {
			return transpileOptionalChain(n, ctx, "subscript")
		}
		return transpileSubscript(n, ctx)
	case "call_expression":
		if hasOptionalChain(n) {
			return transpileOptionalChain(n, ctx, "call")
		}
		return transpileCall(n, ctx)
	case "binary_expression":
		return transpileBinary(n, ctx)
	case "unary_expression":
		return transpileUnary(n, ctx)
	case "ternary_expression":
		return transpileTernary(n, ctx)
	case "template_string":
		return transpileTemplate(n, ctx)
	case "array":
		return transpileArrayLiteral(n, ctx)
	case "object":
		return transpileObjectLiteral(n, ctx)
	case "new_expression":
		return transpileNew(n, ctx)
	case "await_expression":
		ctx.diag(n, logger.CodeUnsupportedExpression, "await is only supported at the top level of an async handler")
		return invalid
	default:
		ctx.diag(n, logger.CodeUnsupportedExpression, fmt.Sprintf("unsupported expression form %q", n.Type))
		return invalid
	}
}

func transpileIdentifier(n *ast.Node, ctx *Context) Result {
	if sv, ok := ctx.State[n.Text]; ok {
		return Result{Code: "m.state." + sv.Name, Dependencies: []string{sv.Name}}
	}
	if ctx.Locals[n.Text] > 0 {
		return Result{Code: n.Text}
	}
	ctx.diag(n, logger.CodeUnknownStateRef, "unknown state reference \""+n.Text+"\"")
	return invalid
}

func unquote(s string) string {
	if len(s) >= 2 {
		return s[1 : len(s)-1]
	}
	return s
}

func escapeStringLiteral(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// inferType infers a receiver's type for the purposes of strategy-table
// dispatch: a known state variable's declared type, the literal form of
// array/string/template-literal expressions, a hardcoded mapping for
// known call-return types, and otherwise a descent into the base of a
// member-access chain.
func inferType(n *ast.Node, ctx *Context) ReceiverCategory {
	if n == nil {
		return ""
	}
	switch n.Type {
	case "array":
		return CatArray
	case "string", "template_string":
		return CatString
	case "identifier":
		if sv, ok := ctx.State[n.Text]; ok {
			switch sv.Type {
			case "array":
				return CatArray
			case "string":
				return CatString
			}
		}
		return ""
	case "member_expression":
		obj := n.Field("object")
		if obj != nil && obj.Type == "identifier" {
			switch obj.Text {
			case "Math":
				return CatMath
			case "JSON":
				return CatJSON
			case "console":
				return CatConsole
			case "Object":
				return CatObject
			case "localStorage":
				return CatLocalStorage
			case "sessionStorage":
				return CatSessionStorage
			}
		}
		return inferType(obj, ctx)
	case "call_expression":
		// known call-return types: Array.from/Object.keys-family return arrays
		fn := n.Field("function")
		if fn != nil && fn.Type == "member_expression" {
			prop := fn.Field("property")
			if prop != nil {
				switch prop.Text {
				case "keys", "values", "entries", "map", "filter", "slice", "split", "concat":
					return CatArray
				}
			}
		}
		return ""
	}
	return ""
}

func transpileMember(n *ast.Node, ctx *Context) Result {
	obj := n.Field("object")
	prop := n.Field("property")
	if prop == nil {
		ctx.diag(n, logger.CodeUnsupportedExpression, "member access missing property")
		return invalid
	}

	if prop.Text == "length" {
		recv := Transpile(obj, ctx)
		if recv.isInvalid() {
			return invalid
		}
		cat := inferType(obj, ctx)
		switch cat {
		case CatArray:
			return Result{Code: recv.Code + ".Count()", Dependencies: recv.Dependencies, Preamble: recv.Preamble}
		case CatString:
			return Result{Code: "Len(" + recv.Code + ")", Dependencies: recv.Dependencies, Preamble: recv.Preamble}
		default:
			ctx.StdlibUsed = true
			return Result{Code: "SvelteRoku_length(" + recv.Code + ")", Dependencies: recv.Dependencies, Preamble: recv.Preamble}
		}
	}

	if obj != nil && obj.Type == "identifier" {
		key := obj.Text + "." + prop.Text
		if entry, ok := globalConstantTable[key]; ok {
			return applyGlobalEntry(entry, ctx)
		}
		if obj.Text == "window" && prop.Text == "location" {
			ctx.diag(n, logger.CodeNoDOM, "window.location members beyond href are not supported")
			return invalid
		}
	}
	if obj != nil && obj.Type == "member_expression" {
		innerObj := obj.Field("object")
		innerProp := obj.Field("property")
		if innerObj != nil && innerObj.Type == "identifier" && innerObj.Text == "window" &&
			innerProp != nil && innerProp.Text == "location" {
			key := "window.location." + prop.Text
			if entry, ok := globalConstantTable[key]; ok {
				return applyGlobalEntry(entry, ctx)
			}
		}
	}

	// Map/Set .size when inferType reports a Map or Set receiver,
	// otherwise a plain field read. inferType returns neither category,
	// so .size always reaches the plain field read.
	if prop.Text == "size" {
		cat := inferType(obj, ctx)
		if cat == CatMap || cat == CatSet {
			recv := Transpile(obj, ctx)
			entry, _ := lookupMethod(cat, "size")
			ctx.requirePolyfill(entry.PolyfillKey)
			return Result{Code: entry.Native + "(" + recv.Code + ")", Dependencies: recv.Dependencies, Preamble: recv.Preamble}
		}
	}

	recv := Transpile(obj, ctx)
	if recv.isInvalid() {
		return invalid
	}
	return Result{Code: recv.Code + "." + prop.Text, Dependencies: recv.Dependencies, Preamble: recv.Preamble}
}

func applyGlobalEntry(entry StrategyEntry, ctx *Context) Result {
	switch entry.Strategy {
	case StrategyConstant:
		return Result{Code: entry.ConstantCode}
	case StrategyRuntimeHelper:
		ctx.StdlibUsed = true
		return Result{Code: entry.Native + "()"}
	case StrategyPolyfill:
		ctx.requirePolyfill(entry.PolyfillKey)
		return Result{Code: entry.Native + "()"}
	}
	return invalid
}

// hasOptionalChain reports whether a member/subscript/call node carries
// a `?.` per §4.4. call_expression and subscript_expression expose it
// as the "optional_chain" field; member_expression's grammar production
// only aliases the `?.` token in place of `.` with no field of its own,
// so it instead shows up as a plain named child alongside object/property.
func hasOptionalChain(n *ast.Node) bool {
	if n == nil {
		return false
	}
	if n.Field("optional_chain") != nil {
		return true
	}
	for _, child := range n.Children("body") {
		if child != nil && child.Type == "optional_chain" {
			return true
		}
	}
	return false
}

// transpileOptionalChain lowers `a?.b`, `a?.[b]`, and `a?.()` to the
// multi-line guarded assignment §4.4 requires: a temp-var initialized
// to invalid, assigned only if the receiver isn't invalid. Grounded on
// transpileNullish's existing temp-var + guarded-if shape in this file.
func transpileOptionalChain(n *ast.Node, ctx *Context, kind string) Result {
	if ctx.SingleExpressionOnly {
		ctx.diag(n, logger.CodeUnsupportedExpression, "optional chaining requires multi-line expansion")
		return invalid
	}

	obj := n.Field("object")
	if kind == "call" {
		obj = n.Field("function")
	}
	recv := Transpile(obj, ctx)
	if recv.isInvalid() {
		return invalid
	}

	deps := append([]string{}, recv.Dependencies...)
	preamble := append([]string{}, recv.Preamble...)
	var accessCode string

	switch kind {
	case "member":
		prop := n.Field("property")
		if prop == nil {
			ctx.diag(n, logger.CodeUnsupportedExpression, "optional member access missing property")
			return invalid
		}
		accessCode = recv.Code + "." + prop.Text
	case "subscript":
		idx := Transpile(n.Field("index"), ctx)
		if idx.isInvalid() {
			return invalid
		}
		deps = append(deps, idx.Dependencies...)
		preamble = append(preamble, idx.Preamble...)
		accessCode = recv.Code + "[" + idx.Code + "]"
	case "call":
		args := n.Children("arguments")
		argResults := transpileArgs(args, ctx)
		if argResults == nil && len(args) > 0 {
			return invalid
		}
		codes := make([]string, len(argResults))
		for i, r := range argResults {
			codes[i] = r.Code
			deps = append(deps, r.Dependencies...)
			preamble = append(preamble, r.Preamble...)
		}
		accessCode = recv.Code + "(" + strings.Join(codes, ", ") + ")"
	}

	temp := ctx.nextTemp()
	preamble = append(preamble, temp+" = invalid")
	preamble = append(preamble, "if "+recv.Code+" <> invalid then")
	preamble = append(preamble, "    "+temp+" = "+accessCode)
	preamble = append(preamble, "end if")
	return Result{Code: temp, Dependencies: dedupDeps(deps), Preamble: preamble}
}

func transpileSubscript(n *ast.Node, ctx *Context) Result {
	obj := n.Field("object")
	idx := n.Field("index")
	recv := Transpile(obj, ctx)
	index := Transpile(idx, ctx)
	if recv.isInvalid() || index.isInvalid() {
		return invalid
	}
	return Result{
		Code:         recv.Code + "[" + index.Code + "]",
		Dependencies: dedupDeps(append(recv.Dependencies, index.Dependencies...)),
		Preamble:     append(recv.Preamble, index.Preamble...),
	}
}

var higherOrderArrayMethods = map[string]bool{
	"map": true, "filter": true, "reduce": true, "find": true, "findIndex": true,
	"some": true, "every": true, "forEach": true, "flatMap": true,
}

var timerNames = map[string]bool{
	"setTimeout": true, "setInterval": true, "clearTimeout": true, "clearInterval": true,
}

func transpileCall(n *ast.Node, ctx *Context) Result {
	fn := n.Field("function")
	args := n.Children("arguments")

	if fn != nil && fn.Type == "identifier" && timerNames[fn.Text] {
		return transpileTimerCall(n, fn.Text, args, ctx)
	}

	if fn != nil && fn.Type == "member_expression" {
		prop := fn.Field("property")
		obj := fn.Field("object")
		if prop != nil && higherOrderArrayMethods[prop.Text] {
			return transpileHigherOrder(n, obj, prop.Text, args, ctx)
		}
		if cat := inferType(obj, ctx); cat != "" {
			if entry, ok := lookupMethod(cat, prop.Text); ok {
				return applyMethodEntry(n, entry, obj, args, ctx)
			}
		}
		// fall through: try both Array and String tables if inferType was empty
		if entry, ok := lookupMethod(CatArray, prop.Text); ok {
			if _, okStr := lookupMethod(CatString, prop.Text); !okStr {
				return applyMethodEntry(n, entry, obj, args, ctx)
			}
		}
		if entry, ok := lookupMethod(CatString, prop.Text); ok {
			return applyMethodEntry(n, entry, obj, args, ctx)
		}
		ctx.diag(n, logger.CodeUnsupportedStdlibMethod, fmt.Sprintf("unsupported method .%s()", prop.Text))
		return invalid
	}

	if fn != nil && fn.Type == "identifier" {
		argResults := transpileArgs(args, ctx)
		if argResults == nil && len(args) > 0 {
			return invalid
		}
		codes := make([]string, len(argResults))
		var deps []string
		var preamble []string
		for i, r := range argResults {
			codes[i] = r.Code
			deps = append(deps, r.Dependencies...)
			preamble = append(preamble, r.Preamble...)
		}
		return Result{Code: fn.Text + "(" + strings.Join(codes, ", ") + ")", Dependencies: dedupDeps(deps), Preamble: preamble}
	}

	ctx.diag(n, logger.CodeUnsupportedExpression, "unsupported call target")
	return invalid
}

func transpileArgs(args []*ast.Node, ctx *Context) []Result {
	out := make([]Result, 0, len(args))
	for _, a := range args {
		r := Transpile(a, ctx)
		if r.isInvalid() {
			return nil
		}
		out = append(out, r)
	}
	return out
}

func applyMethodEntry(n *ast.Node, entry StrategyEntry, obj *ast.Node, args []*ast.Node, ctx *Context) Result {
	recv := Transpile(obj, ctx)
	if recv.isInvalid() {
		return invalid
	}
	argResults := transpileArgs(args, ctx)
	if argResults == nil && len(args) > 0 {
		return invalid
	}
	argCodes := make([]string, len(argResults))
	deps := append([]string{}, recv.Dependencies...)
	preamble := append([]string{}, recv.Preamble...)
	for i, r := range argResults {
		argCodes[i] = r.Code
		deps = append(deps, r.Dependencies...)
		preamble = append(preamble, r.Preamble...)
	}

	switch entry.Strategy {
	case StrategyRename:
		return Result{Code: recv.Code + "." + entry.Native + "(" + strings.Join(argCodes, ", ") + ")", Dependencies: dedupDeps(deps), Preamble: preamble}
	case StrategyFunctionWrap:
		if strings.HasPrefix(entry.Native, ".") {
			return Result{Code: recv.Code + entry.Native, Dependencies: dedupDeps(deps), Preamble: preamble}
		}
		return Result{Code: entry.Native + "(" + recv.Code + ")", Dependencies: dedupDeps(deps), Preamble: preamble}
	case StrategyInline:
		code := entry.InlineFn(recv.Code, argCodes)
		if code == "invalid" {
			ctx.diag(n, logger.CodeUnsupportedStdlibMethod, "inline lowering argument mismatch")
			return invalid
		}
		return Result{Code: code, Dependencies: dedupDeps(deps), Preamble: preamble}
	case StrategyRuntimeHelper:
		ctx.StdlibUsed = true
		allArgs := append([]string{recv.Code}, argCodes...)
		return Result{Code: entry.Native + "(" + strings.Join(allArgs, ", ") + ")", Dependencies: dedupDeps(deps), Preamble: preamble}
	case StrategyOperator:
		if len(argCodes) != 1 {
			return invalid
		}
		return Result{Code: recv.Code + " " + entry.Native + " " + argCodes[0], Dependencies: dedupDeps(deps), Preamble: preamble}
	case StrategyConstant:
		return Result{Code: entry.ConstantCode}
	case StrategyPolyfill:
		ctx.requirePolyfill(entry.PolyfillKey)
		allArgs := append([]string{recv.Code}, argCodes...)
		return Result{Code: entry.Native + "(" + strings.Join(allArgs, ", ") + ")", Dependencies: dedupDeps(deps), Preamble: preamble}
	}
	return invalid
}

// transpileHigherOrder expands map/filter/reduce/find/findIndex/some/
// every/forEach/flatMap into a multi-line loop over a fresh temp-var
// accumulator.
func transpileHigherOrder(n *ast.Node, recvNode *ast.Node, method string, args []*ast.Node, ctx *Context) Result {
	if ctx.SingleExpressionOnly {
		ctx.diag(n, logger.CodeFunctionalInTemplate, fmt.Sprintf("%s() cannot appear inside a template interpolation", method))
		return invalid
	}
	if ctx.chainDepth >= maxChainDepth {
		ctx.diag(n, logger.CodeUnsupportedHandlerBody, "chain too deep")
		return invalid
	}
	if len(args) == 0 || args[0].Type != "arrow_function" {
		ctx.diag(n, logger.CodeUnsupportedHandlerBody, fmt.Sprintf("%s() requires an arrow-function callback", method))
		return invalid
	}
	callback := args[0]
	body := callback.Field("body")
	if body == nil || isBlockBody(body) {
		ctx.diag(n, logger.CodeUnsupportedHandlerBody, fmt.Sprintf("%s() callback must have an expression body", method))
		return invalid
	}

	ctx.chainDepth++
	defer func() { ctx.chainDepth-- }()

	recv := Transpile(recvNode, ctx)
	if recv.isInvalid() {
		return invalid
	}

	params := callback.Children("params")
	itemName := "item"
	if len(params) > 0 {
		itemName = params[0].Text
	}
	indexName := ""
	if len(params) > 1 {
		indexName = params[1].Text
	}

	savedState := map[string]StateVar{}
	for k, v := range ctx.State {
		savedState[k] = v
	}
	delete(ctx.State, itemName)
	ctx.PushLocal(itemName)
	ctx.PushLocal(indexName)
	bodyResult := Transpile(body, ctx)
	ctx.PopLocal(indexName)
	ctx.PopLocal(itemName)
	ctx.State = savedState
	if bodyResult.isInvalid() {
		return invalid
	}

	temp := ctx.nextTemp()
	var preamble []string
	preamble = append(preamble, recv.Preamble...)

	switch method {
	case "reduce":
		accumParam := itemName
		initExpr := ""
		if len(args) > 1 {
			r := Transpile(args[1], ctx)
			initExpr = r.Code
			preamble = append(preamble, r.Preamble...)
		}
		preamble = append(preamble, temp+" = "+initExpr)
		substituted := strings.ReplaceAll(bodyResult.Code, accumParam, temp)
		preamble = append(preamble, "for each "+itemName+" in "+recv.Code)
		preamble = append(preamble, "    "+temp+" = "+substituted)
		preamble = append(preamble, "end for")
	case "forEach":
		preamble = append(preamble, "for each "+itemName+" in "+recv.Code)
		preamble = append(preamble, "    "+bodyResult.Code)
		preamble = append(preamble, "end for")
	case "some", "every", "find", "findIndex":
		preamble = append(preamble, temp+" = invalid")
		loopIdx := indexName
		if loopIdx == "" {
			loopIdx = "__i"
		}
		preamble = append(preamble, temp+"_found = false")
		preamble = append(preamble, "for "+loopIdx+" = 0 to "+recv.Code+".Count() - 1")
		preamble = append(preamble, "    "+itemName+" = "+recv.Code+"["+loopIdx+"]")
		preamble = append(preamble, "    if "+bodyResult.Code+" then")
		switch method {
		case "find":
			preamble = append(preamble, "        "+temp+" = "+itemName)
		case "findIndex":
			preamble = append(preamble, "        "+temp+" = "+loopIdx)
		default:
			preamble = append(preamble, "        "+temp+" = true")
		}
		preamble = append(preamble, "        "+temp+"_found = true")
		preamble = append(preamble, "        exit for")
		preamble = append(preamble, "    end if")
		preamble = append(preamble, "end for")
		if method == "some" {
			preamble = append(preamble, "if not "+temp+"_found then "+temp+" = false")
		} else if method == "every" {
			preamble = append(preamble, temp+" = "+temp+"_found or ("+recv.Code+".Count() = 0)")
		}
	default: // map, filter, flatMap
		preamble = append(preamble, temp+" = []")
		preamble = append(preamble, "for each "+itemName+" in "+recv.Code)
		switch method {
		case "filter":
			preamble = append(preamble, "    if "+bodyResult.Code+" then "+temp+".Push("+itemName+")")
		case "flatMap":
			preamble = append(preamble, "    "+temp+".Append("+bodyResult.Code+")")
		default:
			preamble = append(preamble, "    "+temp+".Push("+bodyResult.Code+")")
		}
		preamble = append(preamble, "end for")
	}

	return Result{
		Code:         temp,
		Dependencies: dedupDeps(append(recv.Dependencies, bodyResult.Dependencies...)),
		Preamble:     preamble,
	}
}

func isBlockBody(n *ast.Node) bool { return n.Type == "statement_block" }

// transpileTimerCall handles setTimeout/setInterval/clearTimeout/
// clearInterval, extracting an inline anonymous callback into a
// synthetic handler when needed.
func transpileTimerCall(n *ast.Node, fnName string, args []*ast.Node, ctx *Context) Result {
	if len(args) == 0 {
		return invalid
	}
	polyfillNative := map[string]string{
		"setTimeout":     "Timers_setTimeout",
		"setInterval":    "Timers_setInterval",
		"clearTimeout":   "Timers_clearTimeout",
		"clearInterval":  "Timers_clearInterval",
	}[fnName]
	ctx.requirePolyfill("Timers")

	if fnName == "clearTimeout" || fnName == "clearInterval" {
		argResults := transpileArgs(args, ctx)
		if argResults == nil {
			return invalid
		}
		return Result{Code: polyfillNative + "(" + argResults[0].Code + ")", Dependencies: argResults[0].Dependencies, Preamble: argResults[0].Preamble}
	}

	cb := args[0]
	var handlerNameExpr string
	var preamble []string
	var deps []string

	switch cb.Type {
	case "identifier":
		handlerNameExpr = escapeStringLiteral(cb.Text)
	case "arrow_function", "function_expression":
		if hasNestedTimerCall(cb) {
			ctx.diag(n, logger.CodeUnsupportedHandlerBody, "nested timer calls inside a callback are not supported")
			return invalid
		}
		name := ctx.nextCallbackName("__timer_cb")
		handler := ctx.LowerCallback(name, cb.Field("body"))
		*ctx.ExtractedCallbacks = append(*ctx.ExtractedCallbacks, handler)
		handlerNameExpr = escapeStringLiteral(name)
	default:
		ctx.diag(n, logger.CodeUnsupportedExpression, "timer callback must be a named function, identifier, or inline function")
		return invalid
	}

	var delay Result
	if len(args) > 1 {
		delay = Transpile(args[1], ctx)
		preamble = append(preamble, delay.Preamble...)
		deps = append(deps, delay.Dependencies...)
	} else {
		delay = Result{Code: "0"}
	}

	return Result{
		Code:         polyfillNative + "(m.top, " + handlerNameExpr + ", " + delay.Code + ")",
		Dependencies: dedupDeps(deps),
		Preamble:     preamble,
	}
}

func hasNestedTimerCall(n *ast.Node) bool {
	found := false
	ast.Walk(n, func(child *ast.Node) {
		if child.Type == "call_expression" {
			fn := child.Field("function")
			if fn != nil && fn.Type == "identifier" && timerNames[fn.Text] {
				found = true
			}
		}
	})
	return found
}

func transpileBinary(n *ast.Node, ctx *Context) Result {
	left := n.Field("left")
	right := n.Field("right")
	opNode := n.Field("operator")
	op := ""
	if opNode != nil {
		op = opNode.Text
	}
	if op == "" {
		ctx.diag(n, logger.CodeUnsupportedExpression, "binary expression missing operator")
		return invalid
	}

	if op == "??" {
		return transpileNullish(n, left, right, ctx)
	}

	l := Transpile(left, ctx)
	r := Transpile(right, ctx)
	if l.isInvalid() || r.isInvalid() {
		return invalid
	}

	tlOp, ok := binaryOperatorTable[op]
	if !ok {
		ctx.diag(n, logger.CodeUnsupportedExpression, fmt.Sprintf("unsupported operator %q", op))
		return invalid
	}

	// typeof constant-fold: `typeof window === "object"` style comparisons
	// fold when both sides are compile-time constants.
	if folded, ok := foldConstantComparison(left, right, op); ok {
		return Result{Code: folded}
	}

	return Result{
		Code:         l.Code + " " + tlOp + " " + r.Code,
		Dependencies: dedupDeps(append(l.Dependencies, r.Dependencies...)),
		Preamble:     append(l.Preamble, r.Preamble...),
	}
}

func foldConstantComparison(left, right *ast.Node, op string) (string, bool) {
	lc, lok := constFoldTypeof(left)
	rc, rok := constFoldString(right)
	if lok && rok {
		eq := lc == rc
		if op == "!==" || op == "!=" {
			eq = !eq
		}
		if eq {
			return "true", true
		}
		return "false", true
	}
	return "", false
}

func constFoldTypeof(n *ast.Node) (string, bool) {
	if n == nil || n.Type != "unary_expression" {
		return "", false
	}
	op := n.Field("operator")
	arg := n.Field("argument")
	if op == nil || op.Text != "typeof" || arg == nil {
		return "", false
	}
	known := map[string]string{
		"window": "object", "document": "object", "navigator": "object",
		"console": "object", "Math": "object", "JSON": "object",
	}
	if arg.Type == "identifier" {
		if v, ok := known[arg.Text]; ok {
			return v, true
		}
	}
	return "", false
}

func constFoldString(n *ast.Node) (string, bool) {
	if n != nil && n.Type == "string" {
		return unquote(n.Text), true
	}
	return "", false
}

func transpileNullish(n, left, right *ast.Node, ctx *Context) Result {
	l := Transpile(left, ctx)
	r := Transpile(right, ctx)
	if l.isInvalid() || r.isInvalid() {
		return invalid
	}
	if ctx.SingleExpressionOnly {
		ctx.StdlibUsed = true
		return Result{
			Code:         "SvelteRoku_nullish(" + l.Code + ", " + r.Code + ")",
			Dependencies: dedupDeps(append(l.Dependencies, r.Dependencies...)),
		}
	}
	temp := ctx.nextTemp()
	preamble := append([]string{}, l.Preamble...)
	preamble = append(preamble, temp+" = "+l.Code)
	preamble = append(preamble, "if "+temp+" = invalid then")
	preamble = append(preamble, "    "+temp+" = "+r.Code)
	preamble = append(preamble, "end if")
	return Result{Code: temp, Dependencies: dedupDeps(append(l.Dependencies, r.Dependencies...)), Preamble: preamble}
}

func transpileUnary(n *ast.Node, ctx *Context) Result {
	opNode := n.Field("operator")
	arg := n.Field("argument")
	op := ""
	if opNode != nil {
		op = opNode.Text
	}
	switch op {
	case "!":
		r := Transpile(arg, ctx)
		if r.isInvalid() {
			return invalid
		}
		return Result{Code: "not (" + r.Code + ")", Dependencies: r.Dependencies, Preamble: r.Preamble}
	case "-", "+":
		if arg != nil && arg.Type == "number" {
			return Result{Code: op + arg.Text}
		}
		r := Transpile(arg, ctx)
		if r.isInvalid() {
			return invalid
		}
		return Result{Code: op + r.Code, Dependencies: r.Dependencies, Preamble: r.Preamble}
	case "typeof":
		if v, ok := constFoldTypeof(n); ok {
			return Result{Code: escapeStringLiteral(v)}
		}
		r := Transpile(arg, ctx)
		if r.isInvalid() {
			return invalid
		}
		ctx.StdlibUsed = true
		return Result{Code: "type(" + r.Code + ")", Dependencies: r.Dependencies, Preamble: r.Preamble}
	}
	ctx.diag(n, logger.CodeUnsupportedExpression, fmt.Sprintf("unsupported unary operator %q", op))
	return invalid
}

func transpileTernary(n *ast.Node, ctx *Context) Result {
	cond := Transpile(n.Field("condition"), ctx)
	cons := Transpile(n.Field("consequence"), ctx)
	alt := Transpile(n.Field("alternative"), ctx)
	if cond.isInvalid() || cons.isInvalid() || alt.isInvalid() {
		return invalid
	}
	ctx.StdlibUsed = true
	deps := dedupDeps(append(append(cond.Dependencies, cons.Dependencies...), alt.Dependencies...))
	preamble := append(append(cond.Preamble, cons.Preamble...), alt.Preamble...)
	return Result{
		Code:         "SvelteRoku_iif(" + cond.Code + ", " + cons.Code + ", " + alt.Code + ")",
		Dependencies: deps,
		Preamble:     preamble,
	}
}

func transpileTemplate(n *ast.Node, ctx *Context) Result {
	var parts []string
	var deps []string
	var preamble []string
	for _, child := range n.Children("body") {
		switch child.Type {
		case "string_fragment":
			parts = append(parts, escapeStringLiteral(child.Text))
		case "template_substitution":
			sub := child.Children("body")
			if len(sub) != 1 {
				ctx.diag(n, logger.CodeUnsupportedExpression, "template substitution must contain one expression")
				return invalid
			}
			r := Transpile(sub[0], ctx)
			if r.isInvalid() {
				return invalid
			}
			parts = append(parts, "Str("+r.Code+").Trim()")
			deps = append(deps, r.Dependencies...)
			preamble = append(preamble, r.Preamble...)
		}
	}
	if len(parts) == 0 {
		return Result{Code: `""`}
	}
	return Result{Code: strings.Join(parts, " + "), Dependencies: dedupDeps(deps), Preamble: preamble}
}

func transpileArrayLiteral(n *ast.Node, ctx *Context) Result {
	var elems []string
	var deps []string
	var preamble []string
	for _, el := range n.Children("elements") {
		if el.Type == "spread_element" {
			if ctx.SingleExpressionOnly {
				ctx.diag(n, logger.CodeUnsupportedExpression, "array spread requires multi-line expansion")
				return invalid
			}
			inner := Transpile(el.Children("body")[0], ctx)
			if inner.isInvalid() {
				return invalid
			}
			temp := ctx.nextTemp()
			preamble = append(preamble, inner.Preamble...)
			preamble = append(preamble, temp+" = []")
			preamble = append(preamble, temp+".Append("+inner.Code+")")
			for _, rest := range n.Children("elements") {
				if rest == el {
					continue
				}
				r := Transpile(rest, ctx)
				if r.isInvalid() {
					return invalid
				}
				preamble = append(preamble, r.Preamble...)
				preamble = append(preamble, temp+".Push("+r.Code+")")
				deps = append(deps, r.Dependencies...)
			}
			return Result{Code: temp, Dependencies: dedupDeps(append(deps, inner.Dependencies...)), Preamble: preamble}
		}
		r := Transpile(el, ctx)
		if r.isInvalid() {
			return invalid
		}
		elems = append(elems, r.Code)
		deps = append(deps, r.Dependencies...)
		preamble = append(preamble, r.Preamble...)
	}
	return Result{Code: "[" + strings.Join(elems, ", ") + "]", Dependencies: dedupDeps(deps), Preamble: preamble}
}

func transpileObjectLiteral(n *ast.Node, ctx *Context) Result {
	var pairs []string
	var deps []string
	var preamble []string
	for _, pair := range n.Children("properties") {
		if pair.Type != "pair" {
			continue
		}
		key := pair.Field("key")
		val := pair.Field("value")
		keyText := key.Text
		if key.Type == "string" {
			keyText = unquote(key.Text)
		}
		r := Transpile(val, ctx)
		if r.isInvalid() {
			return invalid
		}
		pairs = append(pairs, keyText+": "+r.Code)
		deps = append(deps, r.Dependencies...)
		preamble = append(preamble, r.Preamble...)
	}
	return Result{Code: "{" + strings.Join(pairs, ", ") + "}", Dependencies: dedupDeps(deps), Preamble: preamble}
}

func transpileNew(n *ast.Node, ctx *Context) Result {
	callee := n.Field("function")
	args := n.Children("arguments")
	if callee == nil || callee.Type != "identifier" {
		ctx.diag(n, logger.CodeUnsupportedExpression, "unsupported constructor")
		return invalid
	}
	entry, ok := constructorTable[callee.Text]
	if !ok {
		ctx.diag(n, logger.CodeUnsupportedExpression, fmt.Sprintf("unsupported constructor %q", callee.Text))
		return invalid
	}
	ctx.requirePolyfill(entry.Key)
	argResults := transpileArgs(args, ctx)
	if argResults == nil && len(args) > 0 {
		return invalid
	}
	codes := make([]string, len(argResults))
	var deps []string
	var preamble []string
	for i, r := range argResults {
		codes[i] = r.Code
		deps = append(deps, r.Dependencies...)
		preamble = append(preamble, r.Preamble...)
	}
	fn := entry.Fn
	if callee.Text == "Date" && len(args) == 0 {
		fn = "DatePolyfill_now"
	}
	return Result{Code: fn + "(" + strings.Join(codes, ", ") + ")", Dependencies: dedupDeps(deps), Preamble: preamble}
}

var _ = strconv.Itoa
