package lsp

import "unicode/utf8"

func applyChanges(text string, changes []textDocumentContentChangeEvent) string {
	for _, change := range changes {
		if change.Range == nil {
			text = change.Text
			continue
		}
		start := offsetForPosition(text, change.Range.Start)
		end := offsetForPosition(text, change.Range.End)
		if end < start {
			end = start
		}
		text = text[:start] + change.Text + text[end:]
	}
	return text
}

// offsetForPosition converts an LSP position to a byte offset of text, clamping
// past-the-end lines and columns.
func offsetForPosition(text string, pos position) int {
	if pos.Line < 0 || pos.Character < 0 {
		return 0
	}
	line := 0
	i := 0
	for i < len(text) && line < pos.Line {
		if text[i] == '\n' {
			line++
		}
		i++
	}
	if line < pos.Line {
		return len(text)
	}
	utf16Units := 0
	for i < len(text) && utf16Units < pos.Character {
		if text[i] == '\n' || (text[i] == '\r' && i+1 < len(text) && text[i+1] == '\n') {
			break
		}
		r, size := utf8.DecodeRuneInString(text[i:])
		need := 1
		if r > 0xFFFF {
			need = 2
		}
		if utf16Units+need > pos.Character {
			break
		}
		utf16Units += need
		i += size
	}
	return i
}

// endPosition is the position just past the last character of text.
func endPosition(text string) position {
	line, units := 0, 0
	for i := 0; i < len(text); {
		if text[i] == '\n' {
			line++
			units = 0
			i++
			continue
		}
		r, size := utf8.DecodeRuneInString(text[i:])
		if r > 0xFFFF {
			units += 2
		} else {
			units++
		}
		i += size
	}
	return position{Line: line, Character: units}
}

// replaceAll is a single edit replacing the whole of text.
func replaceAll(text, newText string) textEdit {
	return textEdit{
		Range:   lspRange{Start: position{}, End: endPosition(text)},
		NewText: newText,
	}
}
