// Package irc holds the compiler's intermediate representation: the
// compiled shape of one component, independent of both the source AST
// and the emitted artifacts. Plain structs with public slice fields, the
// same style as esbuild's js_ast.go rather than a builder-pattern API —
// the IR builder owns construction and mutates these directly.
package irc

// NodeKind is the closed set of target scene-graph node kinds a markup
// element can lower to.
type NodeKind string

const (
	KindRectangle      NodeKind = "Rectangle"
	KindLabel          NodeKind = "Label"
	KindPoster         NodeKind = "Poster"
	KindScrollingGroup NodeKind = "ScrollingGroup"
	KindMarkupList     NodeKind = "MarkupList"
	KindMarkupGrid     NodeKind = "MarkupGrid"
	KindTextEditBox    NodeKind = "TextEditBox"
	KindVideo          NodeKind = "Video"
	KindBusySpinner    NodeKind = "BusySpinner"
	KindGroup          NodeKind = "Group"
)

// StateType is the closed set of reactive state variable types.
type StateType string

const (
	TypeNumber  StateType = "number"
	TypeString  StateType = "string"
	TypeBoolean StateType = "boolean"
	TypeArray   StateType = "array"
	TypeObject  StateType = "object"
)

// Extends selects the root node's base scene-graph type.
type Extends string

const (
	ExtendsScene Extends = "Scene"
	ExtendsGroup Extends = "Group"
)

// Property is a single static or dynamic attribute on an IR node.
// Dynamic properties carry no static Value; their value is supplied by
// the update pump at runtime via a Binding that targets the same
// NodeID/Name pair.
type Property struct {
	Name    string
	Value   string
	Dynamic bool
}

// Node is one element of the UI tree lowered from markup.
type Node struct {
	ID         string
	Type       NodeKind
	Properties []Property
	Children   []*Node
	TextContent string
	Focusable  bool
	FlexStyles map[string]string
}

// FetchCall records an async I/O primitive feeding an array state
// variable.
type FetchCall struct {
	URL          string
	URLIsLiteral bool
	OptionsSrc   string // source text of the request-options argument, if any
}

// ArrayItemField describes one field of an array-of-objects state
// variable's schema.
type ArrayItemField struct {
	Name string
	Type StateType
}

// State is one reactive state variable extracted from the instance
// script's top-level `let` declarations (or a fetch call).
type State struct {
	Name            string
	Type            StateType
	InitialValue    string
	ArrayItemFields []ArrayItemField
	ArrayItems      []map[string]string
	ObjectFields    map[string]string
	FetchCall       *FetchCall
	DerivedFrom     string
}

// StmtKind is the closed sum of handler statement shapes.
type StmtKind string

const (
	StmtIncrement   StmtKind = "increment"
	StmtDecrement   StmtKind = "decrement"
	StmtAssignLit   StmtKind = "assign-literal"
	StmtAssignNeg   StmtKind = "assign-negate"
	StmtAssignAdd   StmtKind = "assign-add"
	StmtAssignSub   StmtKind = "assign-sub"
	StmtAssignExpr  StmtKind = "assign-expr"
	StmtExprStmt    StmtKind = "expr-statement"
	StmtIf          StmtKind = "if"
	StmtForEach     StmtKind = "for-each"
	StmtWhile       StmtKind = "while"
	StmtReturn      StmtKind = "return"
	StmtVarDecl     StmtKind = "var-decl"
	StmtTryCatch    StmtKind = "try-catch"
)

// Stmt is one lowered handler statement. Only the fields relevant to
// Kind are populated; this mirrors the closed-sum-of-variants shape the
// spec calls for without introducing per-variant Go types, since the TL
// emitter dispatches on Kind exactly once per statement.
type Stmt struct {
	Kind     StmtKind
	Target   string   // state variable mutated, for increment/decrement/assign-*
	Literal  string   // literal text, for assign-literal
	Expr     string   // transpiled TL expression, for assign-expr/expr-statement/return
	Preamble []string // TL statements that must run before Expr is evaluated
	Cond     string   // transpiled condition, for if/while
	Then     []Stmt   // branch body, for if/while/for-each/try
	Else     []Stmt   // else branch, for if
	IterVar  string   // loop variable name, for for-each
	IterExpr string   // iterated TL expression, for for-each
	VarName  string   // declared variable name, for var-decl
	VarInit  string   // initializer expression, for var-decl
	Catch    []Stmt   // catch body, for try-catch
	CatchVar string   // bound error variable name, for try-catch
}

// Handler is one extracted function: a top-level declaration, an
// onMount/onDestroy body, an async continuation, or an extracted
// timer/inline callback. All of these share this one shape at
// emission time.
type Handler struct {
	Name             string
	Statements       []Stmt
	MutatedVariables []string
	Continuations    []AsyncContinuation
}

// AwaitKind distinguishes what an async continuation resumes from.
type AwaitKind string

const (
	AwaitFetch   AwaitKind = "fetch"
	AwaitPromise AwaitKind = "promise"
)

// AsyncContinuation is one suffix of an async function split at an
// await site.
type AsyncContinuation struct {
	Name        string
	AwaitType   AwaitKind
	ResultField string
	Handler     Handler
}

// TextPart is one segment of a string-interpolation binding.
type TextPart struct {
	Static  bool
	Text    string // literal text, if Static
	Expr    string // transpiled TL expression, if !Static
}

// Binding ties a node's property to the state it reacts to.
type Binding struct {
	NodeID        string
	Property      string
	StateVar      string
	Dependencies  []string
	TextParts     []TextPart
	BrsExpression string

	// ContentItemComponent is set for an {#each} list's content binding,
	// alongside NodeID, Property ("content"), StateVar and Dependencies;
	// TextParts and BrsExpression stay empty. Rather than a single render
	// expression, m_update() rebuilds the list's content-node tree from
	// the current array state, one ContentNode child per item carrying
	// that item's fields.
	ContentItemComponent string
}

// Event is a single `on:<type>` directive; the emitted onKeyEvent
// dispatches only EventType "select".
type Event struct {
	NodeID      string
	EventType   string
	HandlerName string
}

// EachBlock is one `{#each}` construct.
type EachBlock struct {
	ArrayVar          string
	ItemAlias         string
	ItemComponentName string
	ListNodeID        string
	IndexName         string
}

// ItemFieldBinding ties an item component's child node/property to a
// field of the driving array state's item schema.
type ItemFieldBinding struct {
	NodeID   string
	Property string
	Field    string
	TextParts []TextPart
}

// ItemComponent is the sibling artifact emitted for an `{#each}` body.
type ItemComponent struct {
	Name          string
	Children      []*Node
	FieldBindings []ItemFieldBinding
	ItemSizeW     int
	ItemSizeH     int
}

// AssetTransform is the closed set of asset handling strategies.
type AssetTransform string

const (
	TransformNone      AssetTransform = ""
	TransformCopy      AssetTransform = "copy"
	TransformRasterize AssetTransform = "rasterize"
)

// Asset is one recorded asset reference; the core only declares these,
// copying/rasterization is an external collaborator's job.
type Asset struct {
	SourcePath       string
	DestPath         string
	PkgPath          string
	Transform        AssetTransform
	RasterizeWidth   int
	RasterizeHeight  int
}

// TwoWayBinding records a `bind:value` directive on an edit-box node.
type TwoWayBinding struct {
	NodeID   string
	StateVar string
}

// Component is the root of one compiled file.
type Component struct {
	Name    string
	Extends Extends

	Children []*Node

	State               []State
	Handlers            []Handler
	Bindings            []Binding
	Events              []Event
	EachBlocks          []EachBlock
	ItemComponents      []ItemComponent
	Assets              []Asset
	ExtractedCallbacks  []Handler
	RequiredPolyfills   map[string]bool
	RequiresRuntime     bool
	RequiresStdlib      bool
	AutofocusNodeID     string
	OnMountHandler      *Handler
	OnDestroyHandler    *Handler
	TwoWayBindings      []TwoWayBinding
	AsyncHandlers       []string
}

// StateByName looks up a declared state variable, or nil.
func (c *Component) StateByName(name string) *State {
	for i := range c.State {
		if c.State[i].Name == name {
			return &c.State[i]
		}
	}
	return nil
}

// HandlerByName looks up a declared handler (including extracted
// callbacks), or nil.
func (c *Component) HandlerByName(name string) *Handler {
	for i := range c.Handlers {
		if c.Handlers[i].Name == name {
			return &c.Handlers[i]
		}
	}
	for i := range c.ExtractedCallbacks {
		if c.ExtractedCallbacks[i].Name == name {
			return &c.ExtractedCallbacks[i]
		}
	}
	return nil
}

// RequirePolyfill records that the given polyfill module key is needed
// by emitted code.
func (c *Component) RequirePolyfill(key string) {
	if c.RequiredPolyfills == nil {
		c.RequiredPolyfills = map[string]bool{}
	}
	c.RequiredPolyfills[key] = true
}

// AllNodeIDs walks the node tree and returns every id present.
func (c *Component) AllNodeIDs() map[string]bool {
	ids := map[string]bool{}
	var walk func([]*Node)
	walk = func(nodes []*Node) {
		for _, n := range nodes {
			ids[n.ID] = true
			walk(n.Children)
		}
	}
	walk(c.Children)
	return ids
}
