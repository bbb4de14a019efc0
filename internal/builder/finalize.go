package builder

import "github.com/aryamurray/roku-svelte/internal/logger"

// checkHandlerRefs verifies every event's handler name resolves to a
// declared handler (top-level function or extracted callback). This is a final cross-check over the whole tree rather
// than a per-attribute one, since a forward reference to a function
// declared later in the script is legal and the walk visits markup and
// script in a single pass.
func (c *Context) checkHandlerRefs() {
	for _, ev := range c.Component.Events {
		if c.Component.HandlerByName(ev.HandlerName) == nil {
			c.diag(nil, logger.CodeUnknownHandler, "handler \""+ev.HandlerName+"\" is not declared")
		}
	}
}
