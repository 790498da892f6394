package markup

import (
	"bytes"
	"fmt"

	"erblint/internal/source"

	"fortio.org/safecast"
)

// Cursor представляет собой позицию в файле
type Cursor struct {
	File *source.File
	Off  uint32
	// Limit is the exclusive upper bound for Off.
	Limit uint32
}

// NewCursor creates a new cursor for the provided file.
func NewCursor(f *source.File) Cursor {
	limit, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		panic(fmt.Errorf("len file content overflow: %w", err))
	}
	return Cursor{File: f, Off: 0, Limit: limit}
}

// EOF проверяет, достигнут ли конец файла
func (c *Cursor) EOF() bool {
	return c.Off >= c.Limit
}

// PointSpan covers the current byte, or is empty at the limit.
func (c *Cursor) PointSpan() source.Span {
	sp := c.SpanFrom(c.Mark())
	if c.EOF() {
		return sp
	}
	return sp.Resize(1)
}

// Peek читает текущий байт, если есть, иначе возвращает 0
func (c *Cursor) Peek() byte {
	if c.EOF() {
		return 0
	}
	return c.File.Content[c.Off]
}

// PeekAt reads the byte n positions ahead, or 0 past the limit.
func (c *Cursor) PeekAt(n uint32) byte {
	if c.Off+n >= c.Limit {
		return 0
	}
	return c.File.Content[c.Off+n]
}

// HasPrefix reports whether the unread input starts with p.
func (c *Cursor) HasPrefix(p string) bool {
	return bytes.HasPrefix(c.File.Content[c.Off:c.Limit], []byte(p))
}

// HasPrefixFold is HasPrefix with ASCII case folding.
func (c *Cursor) HasPrefixFold(p string) bool {
	rest := c.File.Content[c.Off:c.Limit]
	if len(rest) < len(p) {
		return false
	}
	return bytes.EqualFold(rest[:len(p)], []byte(p))
}

// Bump перемещает курсор на один байт вперед и возвращает прочитанный байт
func (c *Cursor) Bump() byte {
	if c.EOF() {
		return 0
	}
	b := c.File.Content[c.Off]
	c.Off++
	return b
}

// Advance moves the cursor n bytes forward, stopping at the limit.
func (c *Cursor) Advance(n uint32) {
	c.Off += n
	if c.Off > c.Limit {
		c.Off = c.Limit
	}
}

// Eat consumes the next byte if it matches the provided byte.
func (c *Cursor) Eat(b byte) bool {
	if !c.EOF() && c.File.Content[c.Off] == b {
		c.Off++
		return true
	}
	return false
}

// EatWhile consumes bytes while pred holds.
func (c *Cursor) EatWhile(pred func(byte) bool) {
	for !c.EOF() && pred(c.File.Content[c.Off]) {
		c.Off++
	}
}

// Index returns the offset of the next occurrence of p, or -1.
func (c *Cursor) Index(p string) int64 {
	i := bytes.Index(c.File.Content[c.Off:c.Limit], []byte(p))
	if i < 0 {
		return -1
	}
	return int64(c.Off) + int64(i)
}

// Mark это метка, что бы быстро получать Span читаемого фрагмента
type Mark uint32

// Mark сохраняет текущую позицию курсора
func (c *Cursor) Mark() Mark {
	return Mark(c.Off)
}

// SpanFrom получает Span для фрагмента, начиная с метки
func (c *Cursor) SpanFrom(m Mark) source.Span {
	return source.Span{File: c.File.ID, Start: uint32(m), End: c.Off}
}

// Reset возвращает курсор назад к метке
func (c *Cursor) Reset(m Mark) {
	c.Off = uint32(m)
}
