// Package polyfill is the registry mapping a polyfill module key to its
// target file path. The core only references these by key (recorded on
// irc.Component.RequiredPolyfills); the file contents themselves are
// supplied by an external runtime package, not by this compiler.
package polyfill

// Key is one of the closed set of polyfill module identifiers the
// builder and transpiler can request.
type Key string

const (
	Timers       Key = "Timers"
	Storage      Key = "Storage"
	DatePolyfill Key = "DatePolyfill"
	URLPolyfill  Key = "URLPolyfill"
	Base64       Key = "Base64"
	EventTarget  Key = "EventTarget"
	FetchAPI     Key = "FetchAPI"
	Collections  Key = "Collections"
)

// paths is the fixed key -> runtime file path table.
var paths = map[Key]string{
	Timers:       "pkg:/source/runtime/timers.brs",
	Storage:      "pkg:/source/runtime/storage.brs",
	DatePolyfill: "pkg:/source/runtime/date.brs",
	URLPolyfill:  "pkg:/source/runtime/url.brs",
	Base64:       "pkg:/source/runtime/base64.brs",
	EventTarget:  "pkg:/source/runtime/eventtarget.brs",
	FetchAPI:     "pkg:/source/runtime/fetch.brs",
	Collections:  "pkg:/source/runtime/collections.brs",
}

// Path resolves a polyfill key to its target file path, or "" if the
// key is not recognized.
func Path(key string) string {
	return paths[Key(key)]
}

// RuntimePath is the single required-runtime module path linked in
// whenever a component sets RequiresRuntime (fetch tasks, async
// continuations).
const RuntimePath = "pkg:/source/runtime/runtime.brs"

// StdlibPath is the single required-stdlib module path linked in
// whenever a component sets RequiresStdlib (array/string helper
// methods the transpiler lowers to a library call instead of inline
// TL).
const StdlibPath = "pkg:/source/runtime/stdlib.brs"
