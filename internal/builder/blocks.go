package builder

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aryamurray/roku-svelte/internal/irc"
	"github.com/aryamurray/roku-svelte/internal/logger"
	"github.com/aryamurray/roku-svelte/internal/parseradapter"
)

// buildIfBlock lowers {#if}/{:else if}/{:else} to a flat sequence of
// Group wrappers per §4.3.3: each branch's visibility binding is the
// conjunction of every earlier branch's negated test with its own.
func (c *Context) buildIfBlock(el *parseradapter.Element) []*irc.Node {
	blockIdx := c.ifCounter
	c.ifCounter++

	var negations []string
	var allDeps []string
	var nodes []*irc.Node

	for branchIdx, branch := range el.IfBranches {
		id := fmt.Sprintf("if_%d_%d", blockIdx, branchIdx)

		var cond string
		if branch.Test != nil {
			r := c.transpileTemplateExpr(branch.Test)
			cond = r.Code
			if len(negations) > 0 {
				cond = strings.Join(negations, " and ") + " and " + r.Code
			}
			negations = append(negations, "not ("+r.Code+")")
			allDeps = append(allDeps, r.Dependencies...)
		} else {
			cond = strings.Join(negations, " and ")
		}

		group := &irc.Node{ID: id, Type: irc.KindGroup}
		c.walkChildren(branch.Children, &group.Children, group)
		c.Component.Bindings = append(c.Component.Bindings, irc.Binding{
			NodeID: id, Property: "visible", BrsExpression: cond, Dependencies: dedupStrings(allDeps),
		})
		nodes = append(nodes, group)
	}

	return nodes
}

func dedupStrings(in []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// buildEachBlock lowers {#each} to an EachBlock record plus a new item
// component, per §4.3.3.
func (c *Context) buildEachBlock(el *parseradapter.Element, parent *irc.Node) {
	if c.inEachContext() != nil {
		c.diag(nil, logger.CodeEachNested, "nested {#each} blocks are not supported")
		return
	}
	if el.EachHasKey {
		c.diag(nil, logger.CodeEachWithKey, "{#each} key expressions are not supported")
		return
	}
	if el.EachAlias == "" || el.Expr == nil || el.Expr.Type != "identifier" {
		c.diag(nil, logger.CodeEachNoArrayState, "{#each} must iterate an identifier naming an array state variable")
		return
	}
	sv, ok := c.State[el.Expr.Text]
	if !ok || sv.Type != irc.TypeArray {
		c.diag(nil, logger.CodeEachNoArrayState, "{#each} must iterate an array state variable")
		return
	}

	name := fmt.Sprintf("%s_Item%d", c.Component.Name, c.eachCounter)
	c.eachCounter++
	item := &irc.ItemComponent{Name: name}
	item.ItemSizeW, item.ItemSizeH = itemSizeFromListNode(parent)

	frame := &eachFrame{alias: el.EachAlias, indexName: el.EachIndexName, item: item}
	c.eachStack = append(c.eachStack, frame)
	c.tctx.PushLocal(el.EachAlias)
	c.tctx.PushLocal(el.EachIndexName)
	c.walkChildren(el.EachChildren, &item.Children, nil)
	c.tctx.PopLocal(el.EachIndexName)
	c.tctx.PopLocal(el.EachAlias)
	c.eachStack = c.eachStack[:len(c.eachStack)-1]

	c.Component.ItemComponents = append(c.Component.ItemComponents, *item)
	c.Component.EachBlocks = append(c.Component.EachBlocks, irc.EachBlock{
		ArrayVar:          sv.Name,
		ItemAlias:         el.EachAlias,
		ItemComponentName: name,
		ListNodeID:        parent.ID,
		IndexName:         el.EachIndexName,
	})
	parent.Properties = append(parent.Properties, irc.Property{Name: "itemComponentName", Value: name})
	c.Component.Bindings = append(c.Component.Bindings, irc.Binding{
		NodeID:               parent.ID,
		Property:             "content",
		StateVar:             sv.Name,
		Dependencies:         []string{sv.Name},
		ContentItemComponent: name,
	})
}

// itemSizeFromListNode reads back the list element's own `itemSize="[w,
// h]"` attribute, already stored as a plain property by
// applyMappedAttribute, to size the item component's root Group.
func itemSizeFromListNode(parent *irc.Node) (int, int) {
	for _, p := range parent.Properties {
		if p.Name != "itemSize" {
			continue
		}
		v := strings.Trim(p.Value, "[]")
		parts := strings.Split(v, ",")
		if len(parts) != 2 {
			return 0, 0
		}
		w, _ := strconv.Atoi(strings.TrimSpace(parts[0]))
		h, _ := strconv.Atoi(strings.TrimSpace(parts[1]))
		return w, h
	}
	return 0, 0
}
