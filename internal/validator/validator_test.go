package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aryamurray/roku-svelte/internal/logger"
	"github.com/aryamurray/roku-svelte/internal/parseradapter"
)

func validateSource(t *testing.T, src string) *logger.Log {
	t.Helper()
	file, err := parseradapter.Parse([]byte(src), "test.component")
	require.Nil(t, err)
	return Validate(file, src, "test.component")
}

func firstFatalCode(log *logger.Log) string {
	for _, m := range log.Msgs() {
		if m.Fatal {
			return string(m.Code)
		}
	}
	return ""
}

func TestCleanComponentHasNoFatalDiagnostics(t *testing.T) {
	log := validateSource(t, `<script>
let count = 0;
function increment() { count++; }
</script>
<text on:select={increment}>{count}</text>
`)
	assert.False(t, log.HasFatal(), "%v", log.Msgs())
}

func TestAsyncArrowIsFatal(t *testing.T) {
	log := validateSource(t, `<script>
let run = async () => {};
</script>
<text>hi</text>
`)
	assert.Equal(t, "NO_ASYNC", firstFatalCode(log))
}

func TestTopLevelAsyncFunctionDeclarationIsAllowed(t *testing.T) {
	log := validateSource(t, `<script>
async function load() {
  let x = await fetch("/a");
}
</script>
<text>hi</text>
`)
	assert.NotEqual(t, "NO_ASYNC", firstFatalCode(log))
}

func TestBareFetchOutsideLetInitializerIsFatal(t *testing.T) {
	log := validateSource(t, `<script>
function run() {
  fetch("/a");
}
</script>
<text>hi</text>
`)
	assert.Equal(t, "NO_FETCH", firstFatalCode(log))
}

func TestFetchAsLetInitializerIsAllowed(t *testing.T) {
	log := validateSource(t, `<script>
let data = fetch("/a");
</script>
<text>hi</text>
`)
	assert.NotEqual(t, "NO_FETCH", firstFatalCode(log))
}

func TestDocumentReferenceIsFatal(t *testing.T) {
	log := validateSource(t, `<script>
let title = document.title;
</script>
<text>{title}</text>
`)
	assert.Equal(t, "NO_DOM", firstFatalCode(log))
}

func TestGestureEventDirectiveIsFatal(t *testing.T) {
	log := validateSource(t, `<script>
function onMove() {}
</script>
<rect on:mousemove={onMove} />
`)
	assert.Equal(t, "NO_GESTURES", firstFatalCode(log))
}

func TestInlineArrowHandlerIsFatal(t *testing.T) {
	log := validateSource(t, `<script>
let count = 0;
</script>
<rect on:select={() => count++} />
`)
	assert.Equal(t, "INLINE_HANDLER", firstFatalCode(log))
}

func TestUnknownImportSpecifierIsFatal(t *testing.T) {
	log := validateSource(t, `<script>
import something from "some-npm-package";
</script>
<text>hi</text>
`)
	assert.Equal(t, "UNKNOWN_IMPORT", firstFatalCode(log))
}

func TestRelativeImportIsAllowed(t *testing.T) {
	log := validateSource(t, `<script>
import helper from "./helper";
</script>
<text>hi</text>
`)
	assert.NotEqual(t, "UNKNOWN_IMPORT", firstFatalCode(log))
}

func TestAwaitBlockIsFatal(t *testing.T) {
	log := validateSource(t, `<script>
let data = fetch("/a");
</script>
{#await data}loading{/await}
`)
	assert.Equal(t, "NO_AWAIT_BLOCK", firstFatalCode(log))
}

func TestWorkerReferenceIsFatal(t *testing.T) {
	log := validateSource(t, `<script>
let w = new Worker("x.js");
</script>
<text>hi</text>
`)
	assert.Equal(t, "NO_WORKERS", firstFatalCode(log))
}

func TestStyleBlockProducesNonFatalWarning(t *testing.T) {
	log := validateSource(t, `<script>
let x = 0;
</script>
<text>{x}</text>
<style>.a { color: red; }</style>
`)
	assert.False(t, log.HasFatal(), "%v", log.Msgs())
	found := false
	for _, m := range log.Msgs() {
		if string(m.Code) == "UNSUPPORTED_STYLE_BLOCK" {
			found = true
		}
	}
	assert.True(t, found, "%v", log.Msgs())
}
