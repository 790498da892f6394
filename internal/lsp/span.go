package lsp

import (
	"sort"
	"unicode/utf8"

	"fortio.org/safecast"

	"erblint/internal/source"
)

const maxUint32 = ^uint32(0)

func safeUint32(n int) uint32 {
	if n < 0 {
		return 0
	}
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		return maxUint32
	}
	return v
}

// positionForOffsetInFile maps a byte offset of a normalized file to an LSP
// position (UTF-16 code units). CRLF normalization keeps line and column
// numbers intact; a stripped BOM is one UTF-16 unit on the first line.
func positionForOffsetInFile(file *source.File, offset uint32) position {
	if file == nil {
		return position{}
	}
	contentLen := safeUint32(len(file.Content))
	if offset > contentLen {
		offset = contentLen
	}
	lineIdx := file.LineIdx
	idx := sort.Search(len(lineIdx), func(i int) bool { return lineIdx[i] >= offset })
	line := idx
	var lineStart uint32
	if idx > 0 {
		lineStart = lineIdx[idx-1] + 1
	}
	if lineStart > offset {
		lineStart = offset
	}
	units := 0
	for off := lineStart; off < offset; {
		r, size := utf8.DecodeRune(file.Content[off:offset])
		if off+safeUint32(size) > offset {
			break
		}
		if r > 0xFFFF {
			units += 2
		} else {
			units++
		}
		off += safeUint32(size)
	}
	if line == 0 && file.Flags&source.FileHadBOM != 0 {
		units++
	}
	return position{Line: line, Character: units}
}

func rangeForOffense(file *source.File, rng source.Range) lspRange {
	return lspRange{
		Start: positionForOffsetInFile(file, rng.Begin),
		End:   positionForOffsetInFile(file, rng.End),
	}
}
