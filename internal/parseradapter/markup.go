package parseradapter

import (
	"context"
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/aryamurray/roku-svelte/internal/ast"
)

// Element is the markup-fragment node the IR builder walks. Unlike the
// <script> body — which is a direct tree-sitter-typescript AST wrapped
// in ast.Node — the template mini-language ({#if}, {#each}, on:/bind:
// directives) is bespoke to this component format and not reliably
// uniform across tree-sitter-svelte grammar versions, so the adapter
// hand-parses it the way a small compiler's own template lexer would,
// and only reaches for tree-sitter again to parse each embedded
// expression snippet ({expr}, attribute values, block headers) with the
// typescript grammar — the same mechanism used for <script>.
type Element struct {
	Kind string // "element", "text", "mustache", "if_block", "each_block"
	Tag  string // tag name, for Kind == "element"

	Attributes []Attribute
	Children   []*Element

	TextStatic string   // for Kind == "text"
	Expr       *ast.Node // for Kind == "mustache", or the each-block's iterated expr

	IfBranches []IfBranch // for Kind == "if_block"

	EachAlias     string
	EachIndexName string
	EachHasKey    bool // a `(keyExpr)` was present; {#each} forbids this
	EachChildren  []*Element

	Start, End int
}

type Attribute struct {
	Name        string
	StaticValue string
	IsStatic    bool
	DynamicExpr *ast.Node
	Start       int
}

type IfBranch struct {
	Test     *ast.Node // nil for the terminal {:else}
	Children []*Element
}

// parseMarkup hand-parses the template fragment, skipping over the byte
// ranges occupied by <script> and <style> elements (already located by
// the svelte-grammar pass).
func parseMarkup(source []byte, skipRanges [][2]int) []*Element {
	p := &markupParser{source: source, skip: skipRanges}
	return p.parseSegments("")
}

type markupParser struct {
	source []byte
	pos    int
	skip   [][2]int
}

func (p *markupParser) skipToAfterRange() bool {
	for _, r := range p.skip {
		if p.pos >= r[0] && p.pos < r[1] {
			p.pos = r[1]
			return true
		}
	}
	return false
}

func (p *markupParser) eof() bool { return p.pos >= len(p.source) }

func (p *markupParser) peekStr(s string) bool {
	return strings.HasPrefix(string(p.source[p.pos:]), s)
}

// parseSegments parses sibling segments until EOF or a closing tag
// matching `until` (a closing-tag/block terminator prefix such as
// "</div", "{/if", "{:else", "{/each").
func (p *markupParser) parseSegments(until string) []*Element {
	var out []*Element
	for {
		for p.skipToAfterRange() {
		}
		if p.eof() {
			break
		}
		if until != "" && p.peekStr(until) {
			break
		}
		if p.peekStr("<!--") {
			p.skipComment()
			continue
		}
		if p.peekStr("<") {
			el := p.parseElement()
			if el != nil {
				out = append(out, el)
			}
			continue
		}
		if p.peekStr("{#if") {
			out = append(out, p.parseIfBlock())
			continue
		}
		if p.peekStr("{#each") {
			out = append(out, p.parseEachBlock())
			continue
		}
		if p.peekStr("{") {
			el := p.parseMustache()
			if el != nil {
				out = append(out, el)
			}
			continue
		}
		text := p.parseText(until)
		if strings.TrimSpace(text.TextStatic) != "" {
			out = append(out, text)
		}
	}
	return out
}

func (p *markupParser) skipComment() {
	end := strings.Index(string(p.source[p.pos:]), "-->")
	if end < 0 {
		p.pos = len(p.source)
		return
	}
	p.pos += end + len("-->")
}

func (p *markupParser) parseText(until string) *Element {
	start := p.pos
	for !p.eof() {
		if p.skipToAfterRangeNoAdvanceCheck() {
			break
		}
		if p.peekStr("<") || p.peekStr("{") {
			break
		}
		if until != "" && p.peekStr(until) {
			break
		}
		p.pos++
	}
	return &Element{Kind: "text", TextStatic: string(p.source[start:p.pos]), Start: start, End: p.pos}
}

func (p *markupParser) skipToAfterRangeNoAdvanceCheck() bool {
	for _, r := range p.skip {
		if p.pos == r[0] {
			return true
		}
	}
	return false
}

var tagNameRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_:-]*`)

func (p *markupParser) parseElement() *Element {
	start := p.pos
	p.pos++ // consume '<'
	name := tagNameRe.FindString(string(p.source[p.pos:]))
	p.pos += len(name)
	el := &Element{Kind: "element", Tag: name, Start: start}

	for {
		p.skipWhitespace()
		if p.eof() {
			break
		}
		if p.peekStr("/>") {
			p.pos += 2
			el.End = p.pos
			return el
		}
		if p.peekStr(">") {
			p.pos++
			break
		}
		attr := p.parseAttribute()
		if attr == nil {
			p.pos++
			continue
		}
		el.Attributes = append(el.Attributes, *attr)
	}

	closeTag := "</" + name
	el.Children = p.parseSegments(closeTag)
	if p.peekStr(closeTag) {
		end := strings.Index(string(p.source[p.pos:]), ">")
		if end >= 0 {
			p.pos += end + 1
		}
	}
	el.End = p.pos
	return el
}

func (p *markupParser) skipWhitespace() {
	for !p.eof() {
		c := p.source[p.pos]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			p.pos++
			continue
		}
		break
	}
}

func (p *markupParser) parseAttribute() *Attribute {
	start := p.pos
	name := attrNameRe.FindString(string(p.source[p.pos:]))
	if name == "" {
		return nil
	}
	p.pos += len(name)
	attr := &Attribute{Name: name, Start: start, IsStatic: true}

	p.skipWhitespace()
	if !p.peekStr("=") {
		attr.StaticValue = "true"
		return attr
	}
	p.pos++ // consume '='
	p.skipWhitespace()

	if p.peekStr(`"`) || p.peekStr("'") {
		quote := p.source[p.pos]
		p.pos++
		valStart := p.pos
		for !p.eof() && p.source[p.pos] != quote {
			p.pos++
		}
		attr.StaticValue = string(p.source[valStart:p.pos])
		if !p.eof() {
			p.pos++
		}
		return attr
	}

	if p.peekStr("{") {
		snippet, _ := p.readBalancedBraces()
		attr.IsStatic = false
		attr.DynamicExpr = parseExprSnippet(snippet, attr.Start)
		return attr
	}

	valStart := p.pos
	for !p.eof() && !isAttrTerminator(p.source[p.pos]) {
		p.pos++
	}
	attr.StaticValue = string(p.source[valStart:p.pos])
	return attr
}

var attrNameRe = regexp.MustCompile(`^[A-Za-z_:][A-Za-z0-9_:.$-]*`)

func isAttrTerminator(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '>' || b == '/'
}

// readBalancedBraces assumes the cursor is on the opening '{' and
// returns the content between the outer braces (not including them),
// respecting nested braces and string literals.
func (p *markupParser) readBalancedBraces() (string, int) {
	start := p.pos
	p.pos++ // consume '{'
	depth := 1
	contentStart := p.pos
	var quote byte
	for !p.eof() && depth > 0 {
		c := p.source[p.pos]
		if quote != 0 {
			if c == '\\' {
				p.pos += 2
				continue
			}
			if c == quote {
				quote = 0
			}
			p.pos++
			continue
		}
		switch c {
		case '"', '\'', '`':
			quote = c
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				content := string(p.source[contentStart:p.pos])
				p.pos++
				return content, start
			}
		}
		p.pos++
	}
	return string(p.source[contentStart:p.pos]), start
}

func (p *markupParser) parseMustache() *Element {
	start := p.pos
	snippet, _ := p.readBalancedBraces()
	return &Element{Kind: "mustache", Expr: parseExprSnippet(snippet, start), Start: start, End: p.pos}
}

var ifHeaderRe = regexp.MustCompile(`^#if\s+(.+)$`)
var elseIfHeaderRe = regexp.MustCompile(`^:else\s+if\s+(.+)$`)

func (p *markupParser) parseIfBlock() *Element {
	start := p.pos
	header, _ := p.readBalancedBraces()
	m := ifHeaderRe.FindStringSubmatch(header)
	el := &Element{Kind: "if_block", Start: start}
	testExpr := ""
	if m != nil {
		testExpr = m[1]
	}
	branch := IfBranch{Test: parseExprSnippet(testExpr, start)}
	branch.Children = p.parseSegments("{:else")
	el.IfBranches = append(el.IfBranches, branch)

	for p.peekStr("{:else") {
		elseStart := p.pos
		elseHeader, _ := p.readBalancedBraces()
		if em := elseIfHeaderRe.FindStringSubmatch(elseHeader); em != nil {
			b := IfBranch{Test: parseExprSnippet(em[1], elseStart)}
			b.Children = p.parseSegments("{:else")
			el.IfBranches = append(el.IfBranches, b)
			continue
		}
		// terminal {:else}
		b := IfBranch{Test: nil}
		b.Children = p.parseSegments("{/if")
		el.IfBranches = append(el.IfBranches, b)
		break
	}

	if p.peekStr("{/if") {
		p.readBalancedBraces()
	}
	el.End = p.pos
	return el
}

var eachHeaderRe = regexp.MustCompile(`^#each\s+(\S+)\s+as\s+(\S+?)(?:\s*,\s*(\S+))?(?:\s*\(([^)]*)\))?\s*$`)

func (p *markupParser) parseEachBlock() *Element {
	start := p.pos
	header, _ := p.readBalancedBraces()
	el := &Element{Kind: "each_block", Start: start}
	if m := eachHeaderRe.FindStringSubmatch(header); m != nil {
		el.Expr = parseExprSnippet(m[1], start)
		el.EachAlias = m[2]
		el.EachIndexName = m[3]
		el.EachHasKey = m[4] != ""
	}
	el.EachChildren = p.parseSegments("{/each")
	if p.peekStr("{/each") {
		p.readBalancedBraces()
	}
	el.End = p.pos
	return el
}

// parseExprSnippet re-parses a raw JS expression snippet with the
// typescript grammar (the same mechanism the adapter uses for the
// <script> body) and unwraps the resulting parenthesized expression.
func parseExprSnippet(snippet string, offsetBase int) *ast.Node {
	snippet = strings.TrimSpace(snippet)
	if snippet == "" {
		return nil
	}
	wrapped := "(" + snippet + ")"
	parser := sitter.NewParser()
	parser.SetLanguage(typescript.GetLanguage())
	tree, err := parser.ParseCtx(context.Background(), nil, []byte(wrapped))
	if err != nil {
		return nil
	}
	defer tree.Close()
	root := tree.RootNode()
	if root.NamedChildCount() == 0 {
		return nil
	}
	stmt := root.NamedChild(0)
	if stmt.Type() != "expression_statement" || stmt.NamedChildCount() == 0 {
		return nil
	}
	paren := stmt.NamedChild(0)
	inner := paren
	if paren.Type() == "parenthesized_expression" && paren.NamedChildCount() == 1 {
		inner = paren.NamedChild(0)
	}
	// offsetBase is passed unchanged: the synthetic leading '(' this
	// function added is one byte wide, like the opening brace at
	// offsetBase in the original source, so node offsets land near the
	// snippet's original position, which is close enough for diagnostic
	// purposes (not used for precise column reporting beyond "which
	// line").
	return convert(inner, []byte(wrapped), offsetBase)
}
