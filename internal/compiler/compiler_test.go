package compiler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aryamurray/roku-svelte/internal/config"
)

// These mirror the "Concrete scenarios (literal fixtures)" table: each
// checks the one or two properties the fixture calls out, not a full
// golden byte comparison (the emitter's exact spacing is not part of
// the contract, only the facts the fixture names).

func TestCounterFixture(t *testing.T) {
	src := `<script>
let count = 0;
function increment() {
  count++;
}
</script>
<text on:select={increment} focusable>{count}</text>
`
	res := Compile(src, "Counter.component", config.Options{})
	require.Empty(t, res.Errors, "%v", res.Errors)
	assert.Contains(t, res.BrightScript, "m.state.count = 0")
	assert.Contains(t, res.BrightScript, "m.state.dirty.count = true")
	assert.Contains(t, res.BrightScript, "sub increment()")
	assert.Contains(t, res.BrightScript, "m.state.count = m.state.count + 1")
	assert.Contains(t, res.BrightScript, "m_update()")
}

func TestConditionalRenderingFixture(t *testing.T) {
	src := `<script>
let mode = 0;
</script>
{#if mode===0}<text>Off</text>{:else if mode===1}<text>Low</text>{:else}<text>High</text>{/if}
`
	res := Compile(src, "Mode.component", config.Options{})
	require.Empty(t, res.Errors, "%v", res.Errors)
	for _, id := range []string{"if_0_0", "if_0_1", "if_0_2"} {
		assert.Contains(t, res.XML, `id="`+id+`"`)
	}
	assert.Contains(t, res.BrightScript, "m.state.dirty.mode")
}

func TestFetchedListFixture(t *testing.T) {
	src := `<script>
let movies = fetch("/api/movies");
</script>
<list itemSize="[1920, 100]">{#each movies as m}<text>{m.title}</text>{/each}</list>
`
	res := Compile(src, "Browse.component", config.Options{})
	require.Empty(t, res.Errors, "%v", res.Errors)
	require.Len(t, res.AdditionalComponents, 1)
	assert.Equal(t, "Browse_Item0", res.AdditionalComponents[0].Name)
	assert.Contains(t, res.BrightScript, `fetch(m.fetchTask_movies, "/api/movies", {})`)
	assert.Contains(t, res.BrightScript, `observeField("response", "on_movies_loaded")`)
	assert.True(t, res.RequiresRuntime)
	assert.Contains(t, res.XML, `itemComponentName="Browse_Item0"`)
	assert.Contains(t, res.AdditionalComponents[0].XML, `uri="pkg:/components/Browse_Item0.brs"`)
}

func TestTypeofWindowFixture(t *testing.T) {
	src := `<script>
let x = 0;
function run() {
  x = typeof window === "object" ? 1 : 0;
}
</script>
<text on:select={run}>{x}</text>
`
	res := Compile(src, "Typeof.component", config.Options{})
	require.Empty(t, res.Errors, "%v", res.Errors)
	assert.Empty(t, res.RequiredPolyfills)
	assert.Contains(t, res.BrightScript, "SvelteRoku_iif(true, 1, 0)")
}

func TestSpreadInHandlerFixture(t *testing.T) {
	src := `<script>
let items = [{title: "A"}];
function addOne() {
  items = [...items, { title: "New" }];
}
</script>
<list itemSize="[1920, 100]">{#each items as item}<text>{item.title}</text>{/each}</list>
<rect on:select={addOne} />
`
	res := Compile(src, "Spread.component", config.Options{})
	require.Empty(t, res.Errors, "%v", res.Errors)
	assert.Contains(t, res.BrightScript, ".Append(m.state.items)")
}

func TestUnknownElementFixture(t *testing.T) {
	src := `<script></script><div>hi</div>`
	res := Compile(src, "Unknown.component", config.Options{})
	require.Empty(t, res.Errors, "%v", res.Errors)
	require.NotEmpty(t, res.Warnings)
	assert.Equal(t, "UNKNOWN_ELEMENT", string(res.Warnings[0].Code))
	assert.False(t, strings.Contains(res.XML, "<div"))
}

func TestFatalDiagnosticProducesEmptyArtifacts(t *testing.T) {
	src := `<script>
let x = document.title;
</script>
<text>{x}</text>
`
	res := Compile(src, "Bad.component", config.Options{})
	require.NotEmpty(t, res.Errors)
	assert.Empty(t, res.XML)
	assert.Empty(t, res.BrightScript)
}
