// Package xmlemit serializes a compiled component into the target
// scene-graph XML document described in §4.5: an XML declaration, a
// <component> root, an optional <interface> block, one <script> tag per
// linked TL file, and a <children> tree mirroring the IR node tree.
//
// Grounded on esbuild's internal/js_printer byte-buffer-accumulation
// style (one growing strings.Builder, no intermediate DOM object) rather
// than on a generic encoding/xml Marshal pass, since the component
// document's attribute ordering and quoting rules are part of the
// contract and encoding/xml's struct-tag model can't express them.
package xmlemit

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aryamurray/roku-svelte/internal/irc"
)

// ScriptRef is one <script uri=…> element: the component's own compiled
// TL file, a required runtime module, or a selected polyfill module.
type ScriptRef struct {
	URI string
}

// Emit renders the full component document. scripts is the ordered list
// of <script> URIs to declare (component script first, then runtime,
// then stdlib, then polyfills, matching the order the compiler package
// assembles).
func Emit(comp *irc.Component, scripts []ScriptRef) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="utf-8" ?>`)
	b.WriteString("\n")
	fmt.Fprintf(&b, `<component name="%s" extends="%s">`, escape(comp.Name), escape(string(comp.Extends)))
	b.WriteString("\n")

	for _, s := range scripts {
		fmt.Fprintf(&b, "  <script type=\"text/brightscript\" uri=\"%s\" />\n", escape(s.URI))
	}

	b.WriteString("  <children>\n")
	for _, n := range comp.Children {
		writeNode(&b, n, 2)
	}
	b.WriteString("  </children>\n")
	b.WriteString("</component>\n")
	return b.String()
}

// EmitItemComponent renders an {#each} body's sibling component document:
// the same node-tree serialization, plus the synthetic itemContent
// interface field and a sized root Group wrapper per §4.5.
func EmitItemComponent(item *irc.ItemComponent, scripts []ScriptRef) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="utf-8" ?>`)
	b.WriteString("\n")
	fmt.Fprintf(&b, `<component name="%s" extends="Group">`, escape(item.Name))
	b.WriteString("\n")
	b.WriteString("  <interface>\n")
	b.WriteString("    <field id=\"itemContent\" type=\"assocarray\" onChange=\"onItemContentChanged\" />\n")
	b.WriteString("  </interface>\n")

	for _, s := range scripts {
		fmt.Fprintf(&b, "  <script type=\"text/brightscript\" uri=\"%s\" />\n", escape(s.URI))
	}

	b.WriteString("  <children>\n")
	fmt.Fprintf(&b, "    <Group id=\"itemRoot\" width=\"%d\" height=\"%d\">\n", item.ItemSizeW, item.ItemSizeH)
	for _, n := range item.Children {
		writeNode(&b, n, 3)
	}
	b.WriteString("    </Group>\n")
	b.WriteString("  </children>\n")
	b.WriteString("</component>\n")
	return b.String()
}

func writeNode(b *strings.Builder, n *irc.Node, indent int) {
	pad := strings.Repeat("  ", indent)
	tag := string(n.Type)

	var attrs strings.Builder
	if n.ID != "" {
		fmt.Fprintf(&attrs, ` id="%s"`, escape(n.ID))
	}
	if n.Focusable {
		attrs.WriteString(` focusable="true"`)
	}

	var props []irc.Property
	for _, p := range n.Properties {
		if !p.Dynamic {
			props = append(props, p)
		}
	}

	for _, p := range props {
		fmt.Fprintf(&attrs, ` %s="%s"`, escape(p.Name), escape(p.Value))
	}
	flexKeys := make([]string, 0, len(n.FlexStyles))
	for k := range n.FlexStyles {
		flexKeys = append(flexKeys, k)
	}
	sort.Strings(flexKeys)
	for _, k := range flexKeys {
		fmt.Fprintf(&attrs, ` %s="%s"`, escape(k), escape(n.FlexStyles[k]))
	}

	if n.TextContent != "" {
		fmt.Fprintf(&attrs, ` text="%s"`, escape(n.TextContent))
	}

	if len(n.Children) == 0 {
		fmt.Fprintf(b, "%s<%s%s />\n", pad, tag, attrs.String())
		return
	}

	fmt.Fprintf(b, "%s<%s%s>\n", pad, tag, attrs.String())
	for _, child := range n.Children {
		writeNode(b, child, indent+1)
	}
	fmt.Fprintf(b, "%s</%s>\n", pad, tag)
}

func escape(s string) string {
	r := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
	)
	return r.Replace(s)
}
