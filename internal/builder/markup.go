package builder

import (
	"strconv"
	"strings"

	"github.com/aryamurray/roku-svelte/internal/ast"
	"github.com/aryamurray/roku-svelte/internal/cssinline"
	"github.com/aryamurray/roku-svelte/internal/irc"
	"github.com/aryamurray/roku-svelte/internal/logger"
	"github.com/aryamurray/roku-svelte/internal/parseradapter"
)

// tagKindTable maps a markup tag name to the target scene-graph node
// kind, per §4.3.2's "fixed mapping table".
var tagKindTable = map[string]irc.NodeKind{
	"rect":      irc.KindRectangle,
	"label":     irc.KindLabel,
	"text":      irc.KindLabel,
	"span":      irc.KindLabel,
	"p":         irc.KindLabel,
	"h1":        irc.KindLabel,
	"h2":        irc.KindLabel,
	"h3":        irc.KindLabel,
	"img":       irc.KindPoster,
	"scroll":    irc.KindScrollingGroup,
	"list":      irc.KindMarkupList,
	"grid":      irc.KindMarkupGrid,
	"input":     irc.KindTextEditBox,
	"video":     irc.KindVideo,
	"spinner":   irc.KindBusySpinner,
	"group":     irc.KindGroup,
}

// mappedAttrTable maps a markup attribute name to its IR property name
// when it differs from the attribute name itself.
var mappedAttrTable = map[string]string{
	"src":   "uri",
	"value": "text",
}

func isListKind(k irc.NodeKind) bool {
	return k == irc.KindMarkupList || k == irc.KindMarkupGrid
}

// walkChildren lowers a sibling list of markup elements into IR nodes,
// appended to out. parent is the enclosing IR node (nil at the
// document root), used for each-block list-kind validation.
func (c *Context) walkChildren(elements []*parseradapter.Element, out *[]*irc.Node, parent *irc.Node) {
	for _, el := range elements {
		switch el.Kind {
		case "element":
			if node := c.buildElementNode(el); node != nil {
				*out = append(*out, node)
			}
		case "if_block":
			*out = append(*out, c.buildIfBlock(el)...)
		case "each_block":
			if parent == nil || !isListKind(parent.Type) {
				c.diag(nil, logger.CodeEachOutsideList, "{#each} must be the sole child of a list-kind element")
				continue
			}
			c.buildEachBlock(el, parent)
		case "text", "mustache":
			// Bare text/interpolation outside a label-kind element's own
			// child list carries no scene-graph meaning.
		}
	}
}

func (c *Context) buildElementNode(el *parseradapter.Element) *irc.Node {
	kind, ok := tagKindTable[el.Tag]
	if !ok {
		c.diag(nil, logger.CodeUnknownElement, "unknown element \""+el.Tag+"\"")
		return nil
	}

	node := &irc.Node{Type: kind}
	var translateX, translateY float64
	var hasTranslate bool

	for _, attr := range el.Attributes {
		if attr.Name == "id" {
			node.ID = attr.StaticValue
		}
	}
	if node.ID == "" {
		node.ID = c.nextNodeID(strings.ToLower(string(kind)))
	}

	for _, attr := range el.Attributes {
		switch {
		case attr.Name == "id":
			node.ID = attr.StaticValue
		case attr.Name == "focusable":
			node.Focusable = attr.StaticValue == "true" || attr.StaticValue == ""
		case attr.Name == "autofocus":
			if attr.StaticValue == "true" || attr.StaticValue == "" {
				node.Focusable = true
				c.pendingAutofocus = node
			}
		case attr.Name == "style":
			c.applyStyleAttribute(attr, node, kind)
		case attr.Name == "x":
			if px, ok := resolveStaticLength(attr.StaticValue); ok {
				translateX = px
				hasTranslate = true
			}
		case attr.Name == "y":
			if px, ok := resolveStaticLength(attr.StaticValue); ok {
				translateY = px
				hasTranslate = true
			}
		case strings.HasPrefix(attr.Name, "on:"):
			c.applyEventDirective(attr, node)
		case strings.HasPrefix(attr.Name, "bind:"):
			c.applyBindDirective(attr, node, kind)
		case attr.Name == "src" && kind == irc.KindPoster && attr.IsStatic:
			c.applyPosterSrc(attr, el, node)
		default:
			c.applyMappedAttribute(attr, node)
		}
	}

	if c.pendingAutofocus == node {
		c.Component.AutofocusNodeID = node.ID
		c.pendingAutofocus = nil
	}
	if hasTranslate {
		node.Properties = append(node.Properties, irc.Property{
			Name:  "translation",
			Value: "[" + trimFloat(translateX) + ", " + trimFloat(translateY) + "]",
		})
	}

	width, height := c.resolveFrameDims(node)
	c.pushStyleFrame(styleFrame{width: width, height: height, fontPx: c.currentStyleFrame().fontPx})
	defer c.popStyleFrame()

	if kind == irc.KindLabel {
		c.buildLabelText(el.Children, node)
	} else {
		c.walkChildren(el.Children, &node.Children, node)
	}

	return node
}

func (c *Context) resolveFrameDims(node *irc.Node) (int, int) {
	width, height := c.currentStyleFrame().width, c.currentStyleFrame().height
	for _, p := range node.Properties {
		switch p.Name {
		case "width":
			if n, err := strconv.Atoi(p.Value); err == nil {
				width = n
			}
		case "height":
			if n, err := strconv.Atoi(p.Value); err == nil {
				height = n
			}
		}
	}
	return width, height
}

func resolveStaticLength(val string) (float64, bool) {
	val = strings.TrimSuffix(strings.TrimSpace(val), "px")
	n, err := strconv.ParseFloat(val, 64)
	return n, err == nil
}

func trimFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func (c *Context) applyStyleAttribute(attr parseradapter.Attribute, node *irc.Node, kind irc.NodeKind) {
	if !attr.IsStatic {
		c.diag(nil, logger.CodeUnsupportedCSS, "dynamic style attributes are not supported")
		return
	}
	res := cssinline.Parse(attr.StaticValue, c.cssContext(), cssinline.NodeContext{
		IsLabel:     kind == irc.KindLabel,
		IsRectangle: kind == irc.KindRectangle,
	})
	for name, val := range res.Properties {
		node.Properties = append(node.Properties, irc.Property{Name: name, Value: val})
	}
	if len(res.FlexStyles) > 0 {
		if node.FlexStyles == nil {
			node.FlexStyles = map[string]string{}
		}
		for k, v := range res.FlexStyles {
			node.FlexStyles[k] = v
		}
	}
	for _, w := range res.Warnings {
		c.diag(nil, logger.Code(w.Code), w.Message)
	}
}

func (c *Context) applyEventDirective(attr parseradapter.Attribute, node *irc.Node) {
	eventType := strings.TrimPrefix(attr.Name, "on:")
	handlerName := attr.StaticValue
	if attr.DynamicExpr != nil {
		handlerName = attr.DynamicExpr.Text
	}
	c.Component.Events = append(c.Component.Events, irc.Event{
		NodeID:      node.ID,
		EventType:   eventType,
		HandlerName: handlerName,
	})
}

func (c *Context) applyBindDirective(attr parseradapter.Attribute, node *irc.Node, kind irc.NodeKind) {
	target := strings.TrimPrefix(attr.Name, "bind:")
	if target != "value" || kind != irc.KindTextEditBox || attr.DynamicExpr == nil || attr.DynamicExpr.Type != "identifier" {
		c.diag(nil, logger.CodeUnsupportedBind, "unsupported bind directive \""+attr.Name+"\"")
		return
	}
	stateVar := attr.DynamicExpr.Text
	c.Component.Bindings = append(c.Component.Bindings, irc.Binding{
		NodeID:   node.ID,
		Property: "text",
		StateVar: stateVar,
	})
	c.Component.TwoWayBindings = append(c.Component.TwoWayBindings, irc.TwoWayBinding{
		NodeID:   node.ID,
		StateVar: stateVar,
	})
}

func (c *Context) applyMappedAttribute(attr parseradapter.Attribute, node *irc.Node) {
	propName := attr.Name
	if mapped, ok := mappedAttrTable[attr.Name]; ok {
		propName = mapped
	}

	if attr.IsStatic {
		node.Properties = append(node.Properties, irc.Property{Name: propName, Value: attr.StaticValue})
		return
	}

	expr := attr.DynamicExpr
	if expr == nil {
		return
	}

	if expr.Type == "identifier" {
		if sv, ok := c.State[expr.Text]; ok {
			c.Component.Bindings = append(c.Component.Bindings, irc.Binding{
				NodeID: node.ID, Property: propName, StateVar: sv.Name, Dependencies: []string{sv.Name},
			})
			node.Properties = append(node.Properties, irc.Property{Name: propName, Dynamic: true})
			return
		}
	}

	if ef := c.inEachContext(); ef != nil {
		if field, ok := aliasFieldName(expr, ef.alias); ok {
			ef.item.FieldBindings = append(ef.item.FieldBindings, irc.ItemFieldBinding{
				NodeID: node.ID, Property: propName, Field: field,
			})
			node.Properties = append(node.Properties, irc.Property{Name: propName, Dynamic: true})
			return
		}
	}

	r := c.transpileTemplateExpr(expr)
	if ef := c.inEachContext(); ef != nil && len(r.Dependencies) > 0 {
		c.diag(nil, logger.CodeEachOuterStateRef, "{#each} body referenced outer state \""+r.Dependencies[0]+"\"")
		return
	}
	c.Component.Bindings = append(c.Component.Bindings, irc.Binding{
		NodeID: node.ID, Property: propName, BrsExpression: r.Code, Dependencies: r.Dependencies,
	})
	node.Properties = append(node.Properties, irc.Property{Name: propName, Dynamic: true})
}

func aliasFieldName(n *ast.Node, alias string) (string, bool) {
	if n == nil || n.Type != "member_expression" {
		return "", false
	}
	obj := n.Field("object")
	prop := n.Field("property")
	if obj == nil || prop == nil || obj.Type != "identifier" || obj.Text != alias {
		return "", false
	}
	return prop.Text, true
}

// buildLabelText lowers a label-kind element's children into either a
// static textContent or a text binding with textParts, per §4.3.2's
// last rule.
func (c *Context) buildLabelText(children []*parseradapter.Element, node *irc.Node) {
	var parts []irc.TextPart
	var sb strings.Builder
	static := true
	var deps []string

	for _, child := range children {
		switch child.Kind {
		case "text":
			parts = append(parts, irc.TextPart{Static: true, Text: child.TextStatic})
			sb.WriteString(child.TextStatic)
		case "mustache":
			static = false
			r := c.transpileTemplateExpr(child.Expr)
			if ef := c.inEachContext(); ef != nil {
				if field, ok := aliasFieldName(child.Expr, ef.alias); ok {
					ef.item.FieldBindings = append(ef.item.FieldBindings, irc.ItemFieldBinding{
						NodeID: node.ID, Property: "text", TextParts: []irc.TextPart{{Expr: field}},
					})
					continue
				}
				if len(r.Dependencies) > 0 {
					c.diag(nil, logger.CodeEachOuterStateRef, "{#each} body referenced outer state \""+r.Dependencies[0]+"\"")
					continue
				}
			}
			parts = append(parts, irc.TextPart{Static: false, Expr: r.Code})
			deps = append(deps, r.Dependencies...)
		}
	}

	if static {
		node.TextContent = sb.String()
		return
	}
	if c.inEachContext() == nil {
		c.Component.Bindings = append(c.Component.Bindings, irc.Binding{
			NodeID: node.ID, Property: "text", TextParts: parts, Dependencies: deps,
		})
	}
}
