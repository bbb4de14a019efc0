package transpile

// Strategy is one of the seven deterministic lowering recipes applied to
// a host-library or browser-API construct.
type Strategy int

const (
	StrategyRename Strategy = iota
	StrategyFunctionWrap
	StrategyInline
	StrategyRuntimeHelper
	StrategyOperator
	StrategyConstant
	StrategyPolyfill
)

// ReceiverCategory groups methods by the kind of thing they're called
// on, so the same method name (e.g. "get", "has", "delete") can resolve
// differently depending on inferred receiver type.
type ReceiverCategory string

const (
	CatMath           ReceiverCategory = "Math"
	CatJSON           ReceiverCategory = "JSON"
	CatConsole        ReceiverCategory = "console"
	CatObject         ReceiverCategory = "Object"
	CatArray          ReceiverCategory = "Array"
	CatString         ReceiverCategory = "String"
	CatDate           ReceiverCategory = "Date"
	CatMap            ReceiverCategory = "Map"
	CatSet            ReceiverCategory = "Set"
	CatLocalStorage   ReceiverCategory = "localStorage"
	CatSessionStorage ReceiverCategory = "sessionStorage"
)

// StrategyEntry is one row of the strategy table: how a given
// (category, method) pair lowers.
type StrategyEntry struct {
	Strategy     Strategy
	Native       string // native name for rename/function-wrap/runtime-helper/polyfill
	PolyfillKey  string // required polyfill module key, for StrategyPolyfill
	InlineFn     func(recv string, args []string) string
	ConstantCode string // for StrategyConstant with no special-cased logic
}

// methodTable is the compiler's knowledge of the target dialect: a
// static map from (receiver-category, method-name) to a StrategyEntry.
// This belongs in code as a constant per the design notes.
var methodTable = map[ReceiverCategory]map[string]StrategyEntry{
	CatMath: {
		"floor":   {Strategy: StrategyRename, Native: "Fix"},
		"ceil":    {Strategy: StrategyRuntimeHelper, Native: "SvelteRoku_ceil"},
		"round":   {Strategy: StrategyRename, Native: "Cint"},
		"abs":     {Strategy: StrategyRename, Native: "Abs"},
		"sqrt":    {Strategy: StrategyRename, Native: "Sqr"},
		"pow":     {Strategy: StrategyOperator, Native: "^"},
		"max":     {Strategy: StrategyRuntimeHelper, Native: "SvelteRoku_max"},
		"min":     {Strategy: StrategyRuntimeHelper, Native: "SvelteRoku_min"},
		"random":  {Strategy: StrategyConstant, ConstantCode: "Rnd(0)"},
		"trunc":   {Strategy: StrategyRename, Native: "Fix"},
		"sign":    {Strategy: StrategyRuntimeHelper, Native: "SvelteRoku_sign"},
	},
	CatJSON: {
		"stringify": {Strategy: StrategyRuntimeHelper, Native: "FormatJSON"},
		"parse":     {Strategy: StrategyRuntimeHelper, Native: "ParseJSON"},
	},
	CatConsole: {
		"log":   {Strategy: StrategyRename, Native: "print"},
		"error": {Strategy: StrategyRename, Native: "print"},
		"warn":  {Strategy: StrategyRename, Native: "print"},
		"debug": {Strategy: StrategyConstant, ConstantCode: ""},
		"info":  {Strategy: StrategyRename, Native: "print"},
	},
	CatObject: {
		"keys":    {Strategy: StrategyRuntimeHelper, Native: "SvelteRoku_objectKeys"},
		"values":  {Strategy: StrategyRuntimeHelper, Native: "SvelteRoku_objectValues"},
		"entries": {Strategy: StrategyRuntimeHelper, Native: "SvelteRoku_objectEntries"},
		"assign":  {Strategy: StrategyRuntimeHelper, Native: "SvelteRoku_objectAssign"},
		"freeze":  {Strategy: StrategyConstant},
	},
	CatArray: {
		"length":   {Strategy: StrategyFunctionWrap, Native: ".Count()"},
		"push":     {Strategy: StrategyRename, Native: "Push"},
		"pop":      {Strategy: StrategyRename, Native: "Pop"},
		"shift":    {Strategy: StrategyRename, Native: "Shift"},
		"unshift":  {Strategy: StrategyRename, Native: "Unshift"},
		"slice":    {Strategy: StrategyRuntimeHelper, Native: "SvelteRoku_arraySlice"},
		"includes": {Strategy: StrategyInline, InlineFn: inlineArrayIncludes},
		"indexOf":  {Strategy: StrategyRuntimeHelper, Native: "SvelteRoku_indexOf"},
		"join":     {Strategy: StrategyRuntimeHelper, Native: "SvelteRoku_join"},
		"concat":   {Strategy: StrategyRuntimeHelper, Native: "SvelteRoku_concat"},
		"reverse":  {Strategy: StrategyRename, Native: "Reverse"},
		"sort":     {Strategy: StrategyRuntimeHelper, Native: "SvelteRoku_sort"},
		"splice":   {Strategy: StrategyRuntimeHelper, Native: "SvelteRoku_splice"},
		"flat":     {Strategy: StrategyRuntimeHelper, Native: "SvelteRoku_flat"},
	},
	CatString: {
		"length":      {Strategy: StrategyFunctionWrap, Native: "Len"},
		"toUpperCase": {Strategy: StrategyRename, Native: "UCase"},
		"toLowerCase": {Strategy: StrategyRename, Native: "LCase"},
		"trim":        {Strategy: StrategyFunctionWrap, Native: "Trim"},
		"includes":    {Strategy: StrategyInline, InlineFn: inlineStringIncludes},
		"indexOf":     {Strategy: StrategyInline, InlineFn: inlineStringIndexOf},
		"slice":       {Strategy: StrategyRuntimeHelper, Native: "SvelteRoku_strSlice"},
		"split":       {Strategy: StrategyRuntimeHelper, Native: "SvelteRoku_split"},
		"replace":     {Strategy: StrategyRuntimeHelper, Native: "SvelteRoku_replace"},
		"charAt":      {Strategy: StrategyInline, InlineFn: inlineCharAt},
		"startsWith":  {Strategy: StrategyInline, InlineFn: inlineStartsWith},
		"padStart":    {Strategy: StrategyRuntimeHelper, Native: "SvelteRoku_padStart"},
	},
	CatDate: {
		"getTime":    {Strategy: StrategyRename, Native: "GetTimeZoneOffset"},
		"getFullYear": {Strategy: StrategyRename, Native: "GetYear"},
		"toISOString": {Strategy: StrategyPolyfill, Native: "DatePolyfill_toISOString", PolyfillKey: "DatePolyfill"},
	},
	CatMap: {
		"get":    {Strategy: StrategyPolyfill, Native: "SvelteRoku_mapGet", PolyfillKey: "Collections"},
		"set":    {Strategy: StrategyPolyfill, Native: "SvelteRoku_mapSet", PolyfillKey: "Collections"},
		"has":    {Strategy: StrategyPolyfill, Native: "SvelteRoku_mapHas", PolyfillKey: "Collections"},
		"delete": {Strategy: StrategyPolyfill, Native: "SvelteRoku_mapDelete", PolyfillKey: "Collections"},
		"size":   {Strategy: StrategyPolyfill, Native: "SvelteRoku_mapSize", PolyfillKey: "Collections"},
	},
	CatSet: {
		"add":    {Strategy: StrategyPolyfill, Native: "SvelteRoku_setAdd", PolyfillKey: "Collections"},
		"has":    {Strategy: StrategyPolyfill, Native: "SvelteRoku_setHas", PolyfillKey: "Collections"},
		"delete": {Strategy: StrategyPolyfill, Native: "SvelteRoku_setDelete", PolyfillKey: "Collections"},
		"size":   {Strategy: StrategyPolyfill, Native: "SvelteRoku_setSize", PolyfillKey: "Collections"},
	},
	CatLocalStorage: {
		"getItem":    {Strategy: StrategyPolyfill, Native: "Storage_getItem", PolyfillKey: "Storage"},
		"setItem":    {Strategy: StrategyPolyfill, Native: "Storage_setItem", PolyfillKey: "Storage"},
		"removeItem": {Strategy: StrategyPolyfill, Native: "Storage_removeItem", PolyfillKey: "Storage"},
	},
	CatSessionStorage: {
		"getItem":    {Strategy: StrategyPolyfill, Native: "Storage_getItem", PolyfillKey: "Storage"},
		"setItem":    {Strategy: StrategyPolyfill, Native: "Storage_setItem", PolyfillKey: "Storage"},
		"removeItem": {Strategy: StrategyPolyfill, Native: "Storage_removeItem", PolyfillKey: "Storage"},
	},
}

func inlineArrayIncludes(recv string, args []string) string {
	if len(args) != 1 {
		return "invalid"
	}
	return "SvelteRoku_arrayIncludes(" + recv + ", " + args[0] + ")"
}

func inlineStringIncludes(recv string, args []string) string {
	if len(args) != 1 {
		return "invalid"
	}
	return "Instr(1, " + recv + ", " + args[0] + ") > 0"
}

func inlineStringIndexOf(recv string, args []string) string {
	if len(args) != 1 {
		return "invalid"
	}
	return "Instr(1, " + recv + ", " + args[0] + ") - 1"
}

func inlineCharAt(recv string, args []string) string {
	if len(args) != 1 {
		return "invalid"
	}
	return "Mid(" + recv + ", (" + args[0] + ") + 1, 1)"
}

func inlineStartsWith(recv string, args []string) string {
	if len(args) != 1 {
		return "invalid"
	}
	return "Left(" + recv + ", Len(" + args[0] + ")) = " + args[0]
}

// lookupMethod resolves (category, method) to a StrategyEntry.
func lookupMethod(cat ReceiverCategory, method string) (StrategyEntry, bool) {
	m, ok := methodTable[cat]
	if !ok {
		return StrategyEntry{}, false
	}
	e, ok := m[method]
	return e, ok
}

// globalConstantTable covers Math/window/navigator member access that
// resolves to a constant or a runtime-helper call rather than a method
// call.
var globalConstantTable = map[string]StrategyEntry{
	"Math.PI":               {Strategy: StrategyConstant, ConstantCode: "3.14159265358979"},
	"Math.E":                {Strategy: StrategyConstant, ConstantCode: "2.71828182845905"},
	"window.innerWidth":     {Strategy: StrategyRuntimeHelper, Native: "SvelteRoku_screenWidth"},
	"window.innerHeight":    {Strategy: StrategyRuntimeHelper, Native: "SvelteRoku_screenHeight"},
	"window.location.href":  {Strategy: StrategyConstant, ConstantCode: `""`},
	"navigator.userAgent":   {Strategy: StrategyConstant, ConstantCode: `"Roku"`},
	"navigator.onLine":      {Strategy: StrategyConstant, ConstantCode: "true"},
}

// constructorTable maps `new X(...)` host class names to a polyfill
// function name and the polyfill module key it requires. Arity variants
// (e.g. Date()) dispatch further in expr.go.
var constructorTable = map[string]struct {
	Fn  string
	Key string
}{
	"Date":             {Fn: "DatePolyfill_new", Key: "DatePolyfill"},
	"URL":              {Fn: "URLPolyfill_new", Key: "URLPolyfill"},
	"URLSearchParams":  {Fn: "URLPolyfill_newSearchParams", Key: "URLPolyfill"},
	"EventTarget":      {Fn: "EventTarget_new", Key: "EventTarget"},
	"AbortController":  {Fn: "FetchAPI_newAbortController", Key: "FetchAPI"},
	"Headers":          {Fn: "FetchAPI_newHeaders", Key: "FetchAPI"},
	"Request":          {Fn: "FetchAPI_newRequest", Key: "FetchAPI"},
	"Response":         {Fn: "FetchAPI_newResponse", Key: "FetchAPI"},
	"Map":              {Fn: "SvelteRoku_newMap", Key: "Collections"},
	"Set":              {Fn: "SvelteRoku_newSet", Key: "Collections"},
}

// binaryOperatorTable maps JS binary/logical operator tokens to their TL
// equivalents.
var binaryOperatorTable = map[string]string{
	"===": "=",
	"==":  "=",
	"!==": "<>",
	"!=":  "<>",
	"&&":  "and",
	"||":  "or",
	"%":   "MOD",
	"**":  "^",
	"<":   "<",
	">":   ">",
	"<=":  "<=",
	">=":  ">=",
	"+":   "+",
	"-":   "-",
	"*":   "*",
	"/":   "/",
}
