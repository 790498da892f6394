package markup

import (
	"strings"

	"erblint/internal/source"
)

// Kind classifies top-level nodes of a Tree.
type Kind uint8

const (
	KindText Kind = iota
	KindTag
	KindErb
	KindComment
	KindDeclaration // <!DOCTYPE ...>, <![CDATA[...]]>
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindTag:
		return "tag"
	case KindErb:
		return "erb"
	case KindComment:
		return "comment"
	case KindDeclaration:
		return "declaration"
	default:
		return "unknown"
	}
}

// Node is one entry of the flat document-order node list.
// Exactly one of Tag, Erb or Text is meaningful, depending on Kind.
type Node struct {
	Kind Kind
	Span source.Span
	Tag  *Tag
	Erb  *Erb
	Text *Text
}

// Text is a run of character data.
// Raw is the enclosing raw-text element name ("script", "style"), empty for normal text.
type Text struct {
	Span    source.Span
	Content string
	Raw     string
}

// Tag is a start or end tag.
type Tag struct {
	Span        source.Span // '<' .. '>'
	Name        string      // lowercased
	NameSpan    source.Span
	Closing     bool // </name>
	SelfClosing bool // <name />
	Attrs       []Attr

	// Body covers the raw content of script/style elements up to the matching end tag.
	Body    source.Span
	HasBody bool
}

// Attr is a single attribute of a start tag.
type Attr struct {
	Span      source.Span // name through closing quote
	Name      string      // lowercased
	NameSpan  source.Span
	Value     string // без кавычек
	ValueSpan source.Span
	HasValue  bool
	Quote     byte // '"', '\'' or 0 for unquoted
	HasErb    bool // value contains <% %>
}

// Attr finds the first attribute with the given (case-insensitive) name.
func (t *Tag) Attr(name string) (*Attr, bool) {
	name = strings.ToLower(name)
	for i := range t.Attrs {
		if t.Attrs[i].Name == name {
			return &t.Attrs[i], true
		}
	}
	return nil, false
}

// Erb is an embedded-code tag: <% ltrim indicator code rtrim %>.
type Erb struct {
	Span          source.Span
	Open          source.Span // "<%"
	LTrim         string      // "-" or ""
	LTrimSpan     source.Span
	Indicator     string // "=", "==", "#", "%" or ""
	IndicatorSpan source.Span
	Code          string
	CodeSpan      source.Span
	RTrim         string // "-", "=" or ""
	RTrimSpan     source.Span
	Close         source.Span // "%>"
	Closed        bool
}

// IsComment reports whether the tag is an ERB comment <%# ... %>.
func (e *Erb) IsComment() bool {
	return e.Indicator == "#"
}

// IsLiteral reports whether the tag is the escaped literal form <%% ... %>.
func (e *Erb) IsLiteral() bool {
	return e.Indicator == "%"
}

// ParseError is a recoverable lexical error found while building the Tree.
type ParseError struct {
	Span    source.Span
	Message string
}

// Tree is the parsed form of one document. It is read-only after Parse returns.
type Tree struct {
	File   *source.File
	Nodes  []Node
	Erbs   []*Erb // every ERB tag, including those inside attributes and raw text
	Errors []ParseError
}

// StartTags returns opening tags in document order.
func (t *Tree) StartTags() []*Tag {
	out := make([]*Tag, 0, len(t.Nodes))
	for _, n := range t.Nodes {
		if n.Kind == KindTag && !n.Tag.Closing {
			out = append(out, n.Tag)
		}
	}
	return out
}

// Texts returns character-data nodes in document order.
func (t *Tree) Texts() []*Text {
	out := make([]*Text, 0, len(t.Nodes))
	for _, n := range t.Nodes {
		if n.Kind == KindText {
			out = append(out, n.Text)
		}
	}
	return out
}
