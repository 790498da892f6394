package diag

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"erblint/internal/source"
)

type goldenOffense struct {
	Severity string
	Linter   string
	Path     string
	Line     uint32
	Column   uint32
	Message  string
}

// FileOffenses pairs the offenses of one document with its file.
type FileOffenses struct {
	File     *source.File
	Offenses []Offense
}

// FormatGoldenOffenses renders offenses into a stable, single-line-per-entry
// representation suitable for golden files and the `short` output format.
// Entries are sorted by path, line, column, severity, linter and message and
// returned as a single string (empty when nothing remains).
func FormatGoldenOffenses(files []FileOffenses, baseDir string) string {
	rendered := make([]goldenOffense, 0, len(files))
	for _, fo := range files {
		if fo.File == nil {
			continue
		}
		path := normalizePath(fo.File.FormatPath("relative", baseDir))
		for _, o := range fo.Offenses {
			lc := fo.File.Resolve(o.Range.Begin)
			rendered = append(rendered, goldenOffense{
				Severity: severityLabel(o.Severity),
				Linter:   o.Linter,
				Path:     path,
				Line:     lc.Line,
				Column:   lc.Col,
				Message:  sanitizeMessage(o.Message),
			})
		}
	}
	if len(rendered) == 0 {
		return ""
	}

	sort.SliceStable(rendered, func(i, j int) bool {
		di, dj := rendered[i], rendered[j]
		if di.Path != dj.Path {
			return di.Path < dj.Path
		}
		if di.Line != dj.Line {
			return di.Line < dj.Line
		}
		if di.Column != dj.Column {
			return di.Column < dj.Column
		}
		if di.Severity != dj.Severity {
			return di.Severity < dj.Severity
		}
		if di.Linter != dj.Linter {
			return di.Linter < dj.Linter
		}
		return di.Message < dj.Message
	})

	var b strings.Builder
	for i, d := range rendered {
		fmt.Fprintf(&b, "%s %s %s:%d:%d %s", d.Severity, d.Linter, d.Path, d.Line, d.Column, d.Message)
		if i < len(rendered)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func normalizePath(path string) string {
	p := filepath.ToSlash(path)
	for strings.HasPrefix(p, "./") {
		p = strings.TrimPrefix(p, "./")
	}
	return p
}

func severityLabel(sev Severity) string {
	switch sev {
	case SevError:
		return "error"
	case SevWarning:
		return "warning"
	default:
		return "info"
	}
}

func sanitizeMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	msg = strings.ReplaceAll(msg, "\r", "\n")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.TrimSpace(msg)
}
