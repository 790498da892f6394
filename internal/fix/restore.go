package fix

import (
	"strings"

	"erblint/internal/source"
)

// Restore replays edits made on the normalized content of file onto the bytes
// it was loaded from. Text outside the edits keeps its BOM and line breaks;
// line breaks inside inserted text follow the line the edit starts on.
func Restore(file *source.File, edits []Edit) ([]byte, error) {
	raw := file.Original()
	if len(edits) == 0 {
		return raw, nil
	}
	mapped := make([]Edit, 0, len(edits))
	for _, e := range edits {
		begin, end := file.RawOffset(e.Begin), file.RawOffset(e.End)
		text := e.NewText
		if strings.Contains(text, "\n") && file.LineBreakAt(e.Begin) == "\r\n" {
			text = strings.ReplaceAll(text, "\n", "\r\n")
		}
		mapped = append(mapped, Edit{
			Begin:   begin,
			End:     end,
			NewText: text,
			OldText: string(raw[begin:end]),
		})
	}
	return splice(raw, nil, mapped)
}
