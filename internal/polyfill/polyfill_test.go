package polyfill

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPathResolvesKnownKeys(t *testing.T) {
	assert.Equal(t, "pkg:/source/runtime/fetch.brs", Path(string(FetchAPI)))
	assert.Equal(t, "pkg:/source/runtime/timers.brs", Path(string(Timers)))
	assert.Equal(t, "pkg:/source/runtime/collections.brs", Path(string(Collections)))
}

func TestPathReturnsEmptyForUnknownKey(t *testing.T) {
	assert.Equal(t, "", Path("NotARealPolyfill"))
}

func TestRuntimeAndStdlibPathsAreFixed(t *testing.T) {
	assert.Equal(t, "pkg:/source/runtime/runtime.brs", RuntimePath)
	assert.Equal(t, "pkg:/source/runtime/stdlib.brs", StdlibPath)
}
