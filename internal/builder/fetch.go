package builder

import "github.com/aryamurray/roku-svelte/internal/irc"

// backfillFetchSchemas fills in a fetch-backed array state's item field
// schema from the field references observed while lowering the
// {#each} body bound to it, per §4.3.1's "back-filled later" note.
func (c *Context) backfillFetchSchemas() {
	itemsByName := map[string]*irc.ItemComponent{}
	for i := range c.Component.ItemComponents {
		ic := &c.Component.ItemComponents[i]
		itemsByName[ic.Name] = ic
	}

	for i := range c.Component.State {
		state := &c.Component.State[i]
		if state.FetchCall == nil {
			continue
		}
		seen := map[string]bool{}
		for _, eb := range c.Component.EachBlocks {
			if eb.ArrayVar != state.Name {
				continue
			}
			item := itemsByName[eb.ItemComponentName]
			if item == nil {
				continue
			}
			for _, fb := range item.FieldBindings {
				if fb.Field != "" && !seen[fb.Field] {
					seen[fb.Field] = true
					state.ArrayItemFields = append(state.ArrayItemFields, irc.ArrayItemField{
						Name: fb.Field, Type: irc.TypeString,
					})
				}
				for _, tp := range fb.TextParts {
					if tp.Static || tp.Expr == "" || seen[tp.Expr] {
						continue
					}
					seen[tp.Expr] = true
					state.ArrayItemFields = append(state.ArrayItemFields, irc.ArrayItemField{
						Name: tp.Expr, Type: irc.TypeString,
					})
				}
			}
		}
	}
}
