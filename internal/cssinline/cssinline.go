// Package cssinline lowers the value of a `style` attribute into
// scene-graph properties and flex-layout hints. `style:prop=` directives
// are not lowered here; the builder records them as ordinary attributes.
// It never touches a <style> block, which the validator's style-block
// rule discards with a warning.
//
// The declaration-table dispatch (a fixed map from CSS property name to
// a small lowering function) is grounded on esbuild's internal/css_parser
// package, which dispatches unknown-at-parse-time declarations through
// css_decls.go's per-property table in exactly this shape.
package cssinline

import (
	"fmt"
	"strconv"
	"strings"
)

// Context carries the unit-resolution state a style declaration needs:
// the style-context stack entry (canvas/parent dimensions, parent font
// size) the IR builder maintains while walking markup.
type Context struct {
	CanvasWidth   int
	CanvasHeight  int
	ParentWidth   int
	ParentHeight  int
	ParentFontPx  int
}

// Result is what one `style=` attribute lowers to.
type Result struct {
	Properties  map[string]string // static scene-graph property assignments
	FlexStyles  map[string]string // consumed by an external layout pass
	Warnings    []Warning
}

type Warning struct {
	Code    string
	Message string
	Hint    string
}

// NodeContext tells the lowering pass whether the node is label-kind or
// rectangle-kind, for color/background-color context checks.
type NodeContext struct {
	IsLabel     bool
	IsRectangle bool
}

var flexRelatedProps = map[string]bool{
	"display": false, // handled specially (flex value only)
	"flex-direction": true, "justify-content": true, "align-items": true,
	"align-self": true, "flex": true, "flex-grow": true, "gap": true,
	"row-gap": true, "column-gap": true, "padding": true, "padding-top": true,
	"padding-right": true, "padding-bottom": true, "padding-left": true,
}

var unsupportedHints = map[string]string{
	"margin":          "use padding on the parent Group instead",
	"border":          "draw a Rectangle behind this node instead",
	"border-radius":   "not supported by the target scene graph",
	"box-shadow":      "not supported; consider a Poster with a pre-rendered shadow",
	"background-image": "use a Poster node with an asset reference instead",
	"overflow":        "use a ScrollingGroup instead",
	"position":        "all nodes are positioned via translation",
	"max-width":       "set width directly instead",
	"max-height":      "set height directly instead",
	"z-index":         "reorder children instead; paint order is z-order",
	"flex-wrap":       "not supported by the target flex layout pass",
}

var fontWeightTable = map[string]string{
	"normal": "SourceSansSmall", "400": "SourceSansSmall",
	"bold": "SourceSansBold", "700": "SourceSansBold",
	"600": "SourceSansSemiBold",
}

var horizAlignTable = map[string]string{
	"left": "left", "right": "right", "center": "center",
}

// Parse splits on `;`, each declaration on `:`, and lowers the small
// fixed set of declarations with bespoke handling.
func Parse(style string, ctx Context, node NodeContext) Result {
	res := Result{Properties: map[string]string{}}
	var translateX, translateY float64
	var hasTranslate bool

	for _, decl := range strings.Split(style, ";") {
		decl = strings.TrimSpace(decl)
		if decl == "" {
			continue
		}
		parts := strings.SplitN(decl, ":", 2)
		if len(parts) != 2 {
			continue
		}
		prop := strings.TrimSpace(parts[0])
		val := strings.TrimSpace(parts[1])
		lowerProp := strings.ToLower(prop)

		switch lowerProp {
		case "display":
			if val == "none" {
				res.Properties["visible"] = "false"
			} else if val == "flex" {
				res.flex()["display"] = "flex"
			}
		case "visibility":
			if val == "hidden" {
				res.Properties["visible"] = "false"
			}
		case "flex-direction", "justify-content", "align-items", "align-self",
			"flex", "flex-grow", "gap", "row-gap", "column-gap",
			"padding", "padding-top", "padding-right", "padding-bottom", "padding-left":
			res.flex()[lowerProp] = val
		case "transform":
			tx, ty, ok := parseTransformTranslate(val)
			if ok {
				translateX += tx
				translateY += ty
				hasTranslate = true
			}
		case "left":
			if px, ok := resolveLength(val, ctx, true); ok {
				translateX += px
				hasTranslate = true
			}
		case "top":
			if px, ok := resolveLength(val, ctx, false); ok {
				translateY += px
				hasTranslate = true
			}
		case "text-align":
			if mapped, ok := horizAlignTable[val]; ok {
				res.Properties["horizAlign"] = mapped
			}
		case "font-weight":
			if mapped, ok := fontWeightTable[val]; ok {
				res.Properties["font"] = mapped
			}
		case "font-family":
			// silently ignored
		case "color":
			if !node.IsLabel {
				res.warn("CSS_CONTEXT_MISMATCH", "color only applies to label-kind nodes", "")
			} else {
				res.Properties["color"] = resolveColor(val)
			}
		case "background-color":
			if !node.IsRectangle {
				res.warn("CSS_CONTEXT_MISMATCH", "background-color only applies to rectangle-kind nodes", "")
			} else {
				res.Properties["color"] = resolveColor(val)
			}
		default:
			if hint, ok := unsupportedHints[lowerProp]; ok {
				res.warn("UNSUPPORTED_CSS_HINT", fmt.Sprintf("unsupported CSS property %q", prop), hint)
			} else {
				res.warn("UNSUPPORTED_CSS", fmt.Sprintf("unsupported CSS property %q", prop), "")
			}
		}
	}

	if hasTranslate {
		res.Properties["translation"] = fmt.Sprintf("[%s, %s]", trimFloat(translateX), trimFloat(translateY))
	}

	return res
}

func (r *Result) flex() map[string]string {
	if r.FlexStyles == nil {
		r.FlexStyles = map[string]string{}
	}
	return r.FlexStyles
}

func (r *Result) warn(code, message, hint string) {
	r.Warnings = append(r.Warnings, Warning{Code: code, Message: message, Hint: hint})
}

func trimFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	return s
}

// resolveLength resolves a CSS length to pixels. horizontal selects
// canvas width vs height for vh/vw and the parent dimension for percent.
// Returns ok=false for "auto", "calc(...)" or missing context.
func resolveLength(val string, ctx Context, horizontal bool) (float64, bool) {
	val = strings.TrimSpace(val)
	if val == "auto" || strings.HasPrefix(val, "calc(") {
		return 0, false
	}
	switch {
	case strings.HasSuffix(val, "px"):
		n, err := strconv.ParseFloat(strings.TrimSuffix(val, "px"), 64)
		return n, err == nil
	case strings.HasSuffix(val, "rem"):
		n, err := strconv.ParseFloat(strings.TrimSuffix(val, "rem"), 64)
		return n * 16, err == nil
	case strings.HasSuffix(val, "em"):
		n, err := strconv.ParseFloat(strings.TrimSuffix(val, "em"), 64)
		if err != nil || ctx.ParentFontPx == 0 {
			return 0, false
		}
		return n * float64(ctx.ParentFontPx), true
	case strings.HasSuffix(val, "vh"):
		n, err := strconv.ParseFloat(strings.TrimSuffix(val, "vh"), 64)
		if err != nil || ctx.CanvasHeight == 0 {
			return 0, false
		}
		return n / 100 * float64(ctx.CanvasHeight), true
	case strings.HasSuffix(val, "vw"):
		n, err := strconv.ParseFloat(strings.TrimSuffix(val, "vw"), 64)
		if err != nil || ctx.CanvasWidth == 0 {
			return 0, false
		}
		return n / 100 * float64(ctx.CanvasWidth), true
	case strings.HasSuffix(val, "%"):
		n, err := strconv.ParseFloat(strings.TrimSuffix(val, "%"), 64)
		if err != nil {
			return 0, false
		}
		dim := ctx.ParentWidth
		if !horizontal {
			dim = ctx.ParentHeight
		}
		if dim == 0 {
			return 0, false
		}
		return n / 100 * float64(dim), true
	default:
		n, err := strconv.ParseFloat(val, 64)
		return n, err == nil
	}
}

func parseTransformTranslate(val string) (tx, ty float64, ok bool) {
	i := strings.Index(val, "translate(")
	if i < 0 {
		return 0, 0, false
	}
	rest := val[i+len("translate("):]
	j := strings.Index(rest, ")")
	if j < 0 {
		return 0, 0, false
	}
	args := strings.Split(rest[:j], ",")
	if len(args) == 0 {
		return 0, 0, false
	}
	xv, xok := resolveLength(strings.TrimSpace(args[0]), Context{}, true)
	if !xok {
		return 0, 0, false
	}
	if len(args) > 1 {
		yv, yok := resolveLength(strings.TrimSpace(args[1]), Context{}, false)
		if yok {
			return xv, yv, true
		}
	}
	return xv, 0, true
}

var namedColors = map[string]string{
	"black": "0x000000FF", "white": "0xFFFFFFFF", "red": "0xFF0000FF",
	"green": "0x008000FF", "blue": "0x0000FFFF", "gray": "0x808080FF",
	"grey": "0x808080FF", "transparent": "0x00000000", "yellow": "0xFFFF00FF",
	"orange": "0xFFA500FF",
}

// resolveColor maps named CSS colors, #rgb, #rrggbb, #rrggbbaa, rgb(),
// rgba() to the target's 0xRRGGBBAA form. Unknown strings pass through
// verbatim.
func resolveColor(val string) string {
	val = strings.TrimSpace(val)
	if mapped, ok := namedColors[strings.ToLower(val)]; ok {
		return mapped
	}
	if strings.HasPrefix(val, "#") {
		hex := val[1:]
		switch len(hex) {
		case 3:
			r, g, b := hex[0:1], hex[1:2], hex[2:3]
			return "0x" + strings.ToUpper(r+r+g+g+b+b) + "FF"
		case 6:
			return "0x" + strings.ToUpper(hex) + "FF"
		case 8:
			return "0x" + strings.ToUpper(hex)
		}
	}
	if strings.HasPrefix(val, "rgba(") || strings.HasPrefix(val, "rgb(") {
		inner := val[strings.Index(val, "(")+1:]
		inner = strings.TrimSuffix(inner, ")")
		parts := strings.Split(inner, ",")
		if len(parts) >= 3 {
			r := clamp255(strings.TrimSpace(parts[0]))
			g := clamp255(strings.TrimSpace(parts[1]))
			b := clamp255(strings.TrimSpace(parts[2]))
			a := 255
			if len(parts) == 4 {
				af, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
				if err == nil {
					a = int(af * 255)
				}
			}
			return fmt.Sprintf("0x%02X%02X%02X%02X", r, g, b, a)
		}
	}
	return val
}

func clamp255(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	if n < 0 {
		return 0
	}
	if n > 255 {
		return 255
	}
	return n
}
