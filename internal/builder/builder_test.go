package builder

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aryamurray/roku-svelte/internal/config"
	"github.com/aryamurray/roku-svelte/internal/irc"
	"github.com/aryamurray/roku-svelte/internal/parseradapter"
)

func build(t *testing.T, src, filename string, opts config.Options) *irc.Component {
	t.Helper()
	file, perr := parseradapter.Parse([]byte(src), filename)
	require.Nil(t, perr, "%v", perr)
	comp, log := Build(file, filename, src, opts)
	require.False(t, log.HasFatal(), "%v", log.Msgs())
	return comp
}

func TestComponentNameDerivesFromFilenameStem(t *testing.T) {
	comp := build(t, `<script></script><text>hi</text>`, "Counter.component", config.Options{})
	assert.Equal(t, "Counter", comp.Name)
}

func TestEntryOptionSelectsSceneBase(t *testing.T) {
	comp := build(t, `<script></script><text>hi</text>`, "Main.component", config.Options{IsEntry: true})
	assert.Equal(t, irc.ExtendsScene, comp.Extends)
}

func TestNonEntryDefaultsToGroupBase(t *testing.T) {
	comp := build(t, `<script></script><text>hi</text>`, "Widget.component", config.Options{})
	assert.Equal(t, irc.ExtendsGroup, comp.Extends)
}

func TestLetDeclarationBecomesState(t *testing.T) {
	comp := build(t, `<script>
let count = 0;
</script>
<text>{count}</text>
`, "Counter.component", config.Options{})
	require.Len(t, comp.State, 1)
	assert.Equal(t, "count", comp.State[0].Name)
	assert.Equal(t, irc.TypeNumber, comp.State[0].Type)
	assert.Equal(t, "0", comp.State[0].InitialValue)
}

func TestTopLevelFunctionBecomesHandler(t *testing.T) {
	comp := build(t, `<script>
let count = 0;
function increment() {
  count++;
}
</script>
<text on:select={increment}>{count}</text>
`, "Counter.component", config.Options{})
	require.Len(t, comp.Handlers, 1)
	assert.Equal(t, "increment", comp.Handlers[0].Name)
	require.Len(t, comp.Events, 1)
	assert.Equal(t, "increment", comp.Events[0].HandlerName)
	assert.Equal(t, "select", comp.Events[0].EventType)
}

func TestIfBlockProducesOneGroupPerBranchWithAccumulatedDependencies(t *testing.T) {
	comp := build(t, `<script>
let mode = 0;
</script>
{#if mode===0}<text>Off</text>{:else if mode===1}<text>Low</text>{:else}<text>High</text>{/if}
`, "Mode.component", config.Options{})
	require.Len(t, comp.Children, 3)
	assert.Equal(t, "if_0_0", comp.Children[0].ID)
	assert.Equal(t, "if_0_1", comp.Children[1].ID)
	assert.Equal(t, "if_0_2", comp.Children[2].ID)

	require.Len(t, comp.Bindings, 3)
	for _, b := range comp.Bindings {
		assert.Equal(t, "visible", b.Property)
		assert.Contains(t, b.Dependencies, "mode")
	}
}

func TestEachBlockOverArrayStateProducesItemComponent(t *testing.T) {
	comp := build(t, `<script>
let movies = fetch("/api/movies");
</script>
<list itemSize="[1920, 100]">{#each movies as m}<text>{m.title}</text>{/each}</list>
`, "Browse.component", config.Options{})
	require.Len(t, comp.ItemComponents, 1)
	assert.Equal(t, "Browse_Item0", comp.ItemComponents[0].Name)
	assert.Equal(t, 1920, comp.ItemComponents[0].ItemSizeW)
	assert.Equal(t, 100, comp.ItemComponents[0].ItemSizeH)

	require.Len(t, comp.EachBlocks, 1)
	assert.Equal(t, "movies", comp.EachBlocks[0].ArrayVar)
	assert.Equal(t, "Browse_Item0", comp.EachBlocks[0].ItemComponentName)

	var contentBinding *irc.Binding
	for i := range comp.Bindings {
		if comp.Bindings[i].ContentItemComponent != "" {
			contentBinding = &comp.Bindings[i]
		}
	}
	require.NotNil(t, contentBinding)
	assert.Equal(t, "Browse_Item0", contentBinding.ContentItemComponent)
	assert.Equal(t, "movies", contentBinding.StateVar)
}

func TestEachOverNonArrayIdentifierIsFatal(t *testing.T) {
	file, perr := parseradapter.Parse([]byte(`<script>
let count = 0;
</script>
<list>{#each count as c}<text>{c}</text>{/each}</list>
`), "Bad.component")
	require.Nil(t, perr)
	_, log := Build(file, "Bad.component", "", config.Options{})
	assert.True(t, log.HasFatal())
}

func TestUnknownElementProducesWarningAndIsDropped(t *testing.T) {
	file, perr := parseradapter.Parse([]byte(`<script></script><div>hi</div>`), "Unknown.component")
	require.Nil(t, perr)
	comp, log := Build(file, "Unknown.component", "", config.Options{})
	require.False(t, log.HasFatal(), "%v", log.Msgs())
	assert.Empty(t, comp.Children)
	require.NotEmpty(t, log.Msgs())
	assert.Equal(t, "UNKNOWN_ELEMENT", string(log.Msgs()[0].Code))
}

func TestFetchLetInitializerProducesArrayStateWithFetchCall(t *testing.T) {
	comp := build(t, `<script>
let movies = fetch("/api/movies");
</script>
<list itemSize="[1920, 100]">{#each movies as m}<text>{m.title}</text>{/each}</list>
`, "Browse.component", config.Options{})
	require.Len(t, comp.State, 1)
	assert.Equal(t, irc.TypeArray, comp.State[0].Type)
	require.NotNil(t, comp.State[0].FetchCall)
	assert.Equal(t, `"/api/movies"`, comp.State[0].FetchCall.URL)
	assert.True(t, comp.RequiresRuntime)
}

func TestFetchSchemaBackfillCapturesTextInterpolatedField(t *testing.T) {
	comp := build(t, `<script>
let movies = fetch("/api/movies");
</script>
<list itemSize="[1920, 100]">{#each movies as m}<text>{m.title}</text>{/each}</list>
`, "Browse.component", config.Options{})
	require.Len(t, comp.State, 1)
	var names []string
	for _, f := range comp.State[0].ArrayItemFields {
		names = append(names, f.Name)
	}
	assert.Contains(t, names, "title")
}

func TestAsyncFunctionWithFetchAwaitProducesOneContinuation(t *testing.T) {
	comp := build(t, `<script>
let status = "idle";
async function load() {
  status = "loading";
  const r = await fetch("/api/profile");
  status = r.name;
}
</script>
<text on:select={load}>{status}</text>
`, "Profile.component", config.Options{})

	require.Len(t, comp.Handlers, 1)
	h := comp.Handlers[0]
	assert.Equal(t, "load", h.Name)
	assert.Contains(t, h.MutatedVariables, "status")

	require.Len(t, h.Continuations, 1)
	cont := h.Continuations[0]
	assert.Equal(t, "load__cont_1", cont.Name)
	assert.Equal(t, irc.AwaitFetch, cont.AwaitType)
	assert.Equal(t, "r", cont.ResultField)
	assert.Contains(t, cont.Handler.MutatedVariables, "status")
	assert.Contains(t, comp.AsyncHandlers, "load")
	assert.True(t, comp.RequiresRuntime)

	var sawTrigger bool
	for _, s := range h.Statements {
		if s.Kind == irc.StmtExprStmt && strings.Contains(s.Expr, "observeField(\"response\", \"load__cont_1\")") {
			sawTrigger = true
		}
	}
	assert.True(t, sawTrigger, "expected fetch-task trigger statement in handler body: %+v", h.Statements)

	require.NotEmpty(t, cont.Handler.Statements)
	assert.Equal(t, irc.StmtVarDecl, cont.Handler.Statements[0].Kind)
	assert.Equal(t, "r", cont.Handler.Statements[0].VarName)
	assert.Contains(t, cont.Handler.Statements[0].VarInit, "load__cont_1_task.response")
}

func TestAsyncFunctionWithChainedAwaitsProducesNestedContinuations(t *testing.T) {
	comp := build(t, `<script>
async function run() {
  const a = await fetch("/api/a");
  const b = await loadMore(a);
  finish(b);
}
function finish(x) {
}
function loadMore(x) {
  return x;
}
</script>
<text on:select={run}>hi</text>
`, "Chain.component", config.Options{})

	require.Len(t, comp.Handlers, 3)
	runHandler := comp.HandlerByName("run")
	require.NotNil(t, runHandler)
	require.Len(t, runHandler.Continuations, 1)
	first := runHandler.Continuations[0]
	assert.Equal(t, "run__cont_1", first.Name)
	assert.Equal(t, irc.AwaitFetch, first.AwaitType)

	require.Len(t, first.Handler.Continuations, 1)
	second := first.Handler.Continuations[0]
	assert.Equal(t, "run__cont_2", second.Name)
	assert.Equal(t, irc.AwaitPromise, second.AwaitType)
	assert.Equal(t, "b", second.ResultField)

	var sawFnName bool
	for _, s := range first.Handler.Statements {
		if s.Kind == irc.StmtExprStmt && strings.Contains(s.Expr, "fnName = \"loadMore\"") {
			sawFnName = true
		}
	}
	assert.True(t, sawFnName, "expected generic async adapter trigger referencing loadMore: %+v", first.Handler.Statements)
}
