package markup

import (
	"fmt"
	"strings"

	"erblint/internal/source"

	"fortio.org/safecast"
)

// rawTextElements hold character data that is not parsed as markup.
var rawTextElements = map[string]bool{
	"script": true,
	"style":  true,
}

type parser struct {
	cur  Cursor
	tree *Tree
}

// Parse builds a Tree for f. It never fails: lexical problems are collected in Tree.Errors
// and scanning resumes after them.
func Parse(f *source.File) *Tree {
	p := &parser{
		cur:  NewCursor(f),
		tree: &Tree{File: f},
	}
	for !p.cur.EOF() {
		switch {
		case p.cur.HasPrefix("<%"):
			erb := p.scanErb()
			p.push(Node{Kind: KindErb, Span: erb.Span, Erb: erb})
		case p.cur.HasPrefix("<!--"):
			p.scanComment()
		case p.cur.HasPrefix("<!"):
			p.scanDeclaration()
		case p.atTagStart():
			p.scanTag()
		default:
			p.scanText("")
		}
	}
	return p.tree
}

func (p *parser) push(n Node) {
	p.tree.Nodes = append(p.tree.Nodes, n)
}

func (p *parser) errorf(sp source.Span, format string, args ...any) {
	if sp.End > p.cur.Limit {
		sp.End = p.cur.Limit
	}
	if sp.Start > sp.End {
		sp.Start = sp.End
	}
	p.tree.Errors = append(p.tree.Errors, ParseError{Span: sp, Message: fmt.Sprintf(format, args...)})
}

func (p *parser) offset(i int64) uint32 {
	off, err := safecast.Conv[uint32](i)
	if err != nil {
		panic(fmt.Errorf("offset overflow: %w", err))
	}
	return off
}

func (p *parser) atTagStart() bool {
	if p.cur.Peek() != '<' {
		return false
	}
	if p.cur.PeekAt(1) == '/' {
		return isAlpha(p.cur.PeekAt(2))
	}
	return isAlpha(p.cur.PeekAt(1))
}

func (p *parser) atConstruct() bool {
	return p.cur.Peek() == '<' && (p.cur.HasPrefix("<%") || p.cur.HasPrefix("<!") || p.atTagStart())
}

// scanText consumes character data up to the next markup construct.
func (p *parser) scanText(raw string) {
	m := p.cur.Mark()
	p.cur.Bump()
	for !p.cur.EOF() && !p.atConstruct() {
		p.cur.Bump()
	}
	p.pushText(m, raw)
}

func (p *parser) pushText(m Mark, raw string) {
	sp := p.cur.SpanFrom(m)
	if sp.Empty() {
		return
	}
	txt := &Text{Span: sp, Content: string(p.cur.File.Content[sp.Start:sp.End]), Raw: raw}
	p.push(Node{Kind: KindText, Span: sp, Text: txt})
}

func (p *parser) scanComment() {
	m := p.cur.Mark()
	end := p.cur.Index("-->")
	if end < 0 {
		p.cur.Advance(4)
		p.errorf(p.cur.SpanFrom(m), "comment was not closed")
		p.cur.Advance(p.cur.Limit)
	} else {
		p.cur.Reset(Mark(p.offset(end + 3)))
	}
	sp := p.cur.SpanFrom(m)
	p.push(Node{Kind: KindComment, Span: sp})
}

func (p *parser) scanDeclaration() {
	m := p.cur.Mark()
	end := p.cur.Index(">")
	if end < 0 {
		p.cur.Advance(2)
		p.errorf(p.cur.SpanFrom(m), "expected '>' to close declaration")
		p.cur.Advance(p.cur.Limit)
	} else {
		p.cur.Reset(Mark(p.offset(end + 1)))
	}
	p.push(Node{Kind: KindDeclaration, Span: p.cur.SpanFrom(m)})
}

// scanErb consumes "<%" ... "%>". The caller decides whether the tag is a top-level node.
func (p *parser) scanErb() *Erb {
	m := p.cur.Mark()
	erb := &Erb{}
	p.cur.Advance(2)
	erb.Open = p.cur.SpanFrom(m)

	lm := p.cur.Mark()
	if p.cur.Peek() == '-' {
		p.cur.Bump()
		erb.LTrim = "-"
	}
	erb.LTrimSpan = p.cur.SpanFrom(lm)

	im := p.cur.Mark()
	switch {
	case p.cur.HasPrefix("=="):
		p.cur.Advance(2)
	case p.cur.Peek() == '=', p.cur.Peek() == '#', p.cur.Peek() == '%':
		p.cur.Bump()
	}
	erb.IndicatorSpan = p.cur.SpanFrom(im)
	erb.Indicator = string(p.cur.File.Content[erb.IndicatorSpan.Start:erb.IndicatorSpan.End])

	codeStart := p.cur.Off
	end := p.cur.Index("%>")
	if end < 0 {
		p.errorf(erb.Open, "erb tag was not closed")
		p.cur.Advance(p.cur.Limit)
		erb.CodeSpan = source.Span{File: p.cur.File.ID, Start: codeStart, End: p.cur.Off}
		erb.RTrimSpan = erb.CodeSpan.EndPoint()
		erb.Close = erb.CodeSpan.EndPoint()
	} else {
		closeAt := p.offset(end)
		codeEnd := closeAt
		if closeAt > codeStart {
			if b := p.cur.File.Content[closeAt-1]; b == '-' || b == '=' {
				codeEnd = closeAt - 1
				erb.RTrim = string(b)
			}
		}
		erb.CodeSpan = source.Span{File: p.cur.File.ID, Start: codeStart, End: codeEnd}
		erb.RTrimSpan = source.Span{File: p.cur.File.ID, Start: codeEnd, End: closeAt}
		erb.Close = source.Span{File: p.cur.File.ID, Start: closeAt, End: closeAt + 2}
		erb.Closed = true
		p.cur.Reset(Mark(closeAt + 2))
	}
	erb.Code = string(p.cur.File.Content[erb.CodeSpan.Start:erb.CodeSpan.End])
	erb.Span = p.cur.SpanFrom(m)
	p.tree.Erbs = append(p.tree.Erbs, erb)
	return erb
}

func (p *parser) scanTag() {
	m := p.cur.Mark()
	tag := &Tag{}
	p.cur.Bump() // '<'
	tag.Closing = p.cur.Eat('/')

	nm := p.cur.Mark()
	p.cur.EatWhile(isTagNameByte)
	tag.NameSpan = p.cur.SpanFrom(nm)
	tag.Name = strings.ToLower(string(p.cur.File.Content[tag.NameSpan.Start:tag.NameSpan.End]))

	if tag.Closing {
		p.cur.EatWhile(isSpace)
		if !p.cur.Eat('>') {
			p.errorf(p.cur.PointSpan(), "expected '>' after closing tag name")
			if end := p.cur.Index(">"); end >= 0 {
				p.cur.Reset(Mark(p.offset(end + 1)))
			}
		}
		tag.Span = p.cur.SpanFrom(m)
		p.push(Node{Kind: KindTag, Span: tag.Span, Tag: tag})
		return
	}

	p.scanAttrs(tag)
	tag.Span = p.cur.SpanFrom(m)
	p.push(Node{Kind: KindTag, Span: tag.Span, Tag: tag})

	if rawTextElements[tag.Name] && !tag.SelfClosing {
		p.scanRawBody(tag)
	}
}

func (p *parser) scanAttrs(tag *Tag) {
	for {
		p.cur.EatWhile(isSpace)
		switch {
		case p.cur.EOF():
			p.errorf(tag.NameSpan, "tag `%s` was not closed", tag.Name)
			return
		case p.cur.HasPrefix("/>"):
			p.cur.Advance(2)
			tag.SelfClosing = true
			return
		case p.cur.Peek() == '>':
			p.cur.Bump()
			return
		case p.cur.HasPrefix("<%"):
			p.scanErb()
		case p.cur.Peek() == '<':
			// новый тег начался раньше, чем закрылся текущий
			p.errorf(p.cur.PointSpan(), "expected '>' before '<' in tag `%s`", tag.Name)
			return
		case p.cur.Peek() == '/':
			p.cur.Bump()
		case !isAttrNameByte(p.cur.Peek()):
			m := p.cur.Mark()
			p.cur.Bump()
			p.errorf(p.cur.SpanFrom(m), "expected attribute name")
		default:
			p.scanAttr(tag)
		}
	}
}

func (p *parser) scanAttr(tag *Tag) {
	m := p.cur.Mark()
	attr := Attr{}
	p.cur.EatWhile(isAttrNameByte)
	attr.NameSpan = p.cur.SpanFrom(m)
	attr.Name = strings.ToLower(string(p.cur.File.Content[attr.NameSpan.Start:attr.NameSpan.End]))

	after := p.cur.Mark()
	p.cur.EatWhile(isSpace)
	if !p.cur.Eat('=') {
		p.cur.Reset(after)
		attr.ValueSpan = attr.NameSpan.EndPoint()
		attr.Span = p.cur.SpanFrom(m)
		tag.Attrs = append(tag.Attrs, attr)
		return
	}
	p.cur.EatWhile(isSpace)
	attr.HasValue = true

	switch q := p.cur.Peek(); {
	case q == '"' || q == '\'':
		attr.Quote = q
		qm := p.cur.Mark()
		p.cur.Bump()
		vm := p.cur.Mark()
		for !p.cur.EOF() && p.cur.Peek() != q {
			if p.cur.HasPrefix("<%") {
				attr.HasErb = true
				p.scanErb()
				continue
			}
			p.cur.Bump()
		}
		attr.ValueSpan = p.cur.SpanFrom(vm)
		if !p.cur.Eat(q) {
			p.errorf(p.cur.SpanFrom(qm).Resize(1), "unterminated attribute value")
		}
	case q == '>' || q == 0:
		attr.ValueSpan = p.cur.SpanFrom(p.cur.Mark())
		p.errorf(attr.NameSpan, "expected attribute value after '='")
	default:
		vm := p.cur.Mark()
		for !p.cur.EOF() && !isSpace(p.cur.Peek()) && p.cur.Peek() != '>' {
			if p.cur.HasPrefix("<%") {
				attr.HasErb = true
				p.scanErb()
				continue
			}
			p.cur.Bump()
		}
		attr.ValueSpan = p.cur.SpanFrom(vm)
	}
	attr.Value = string(p.cur.File.Content[attr.ValueSpan.Start:attr.ValueSpan.End])
	attr.Span = p.cur.SpanFrom(m)
	tag.Attrs = append(tag.Attrs, attr)
}

// scanRawBody consumes the content of a raw-text element up to its end tag.
// ERB tags are still recognised inside the body.
func (p *parser) scanRawBody(tag *Tag) {
	bodyStart := p.cur.Mark()
	closing := "</" + tag.Name
	textStart := p.cur.Mark()
	for !p.cur.EOF() {
		if p.cur.HasPrefixFold(closing) {
			if next := p.cur.PeekAt(p.offset(int64(len(closing)))); next == 0 || next == '>' || next == '/' || isSpace(next) {
				break
			}
		}
		if p.cur.HasPrefix("<%") {
			p.pushText(textStart, tag.Name)
			erb := p.scanErb()
			p.push(Node{Kind: KindErb, Span: erb.Span, Erb: erb})
			textStart = p.cur.Mark()
			continue
		}
		p.cur.Bump()
	}
	p.pushText(textStart, tag.Name)
	tag.Body = p.cur.SpanFrom(bodyStart)
	tag.HasBody = true
}

func isAlpha(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f'
}

func isTagNameByte(b byte) bool {
	return isAlpha(b) || (b >= '0' && b <= '9') || b == '-' || b == ':' || b == '_' || b == '.'
}

func isAttrNameByte(b byte) bool {
	return b != 0 && !isSpace(b) && b != '/' && b != '>' && b != '=' && b != '"' && b != '\'' && b != '<'
}
