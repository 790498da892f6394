package diagfmt

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"fortio.org/safecast"
	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"erblint/internal/diag"
	"erblint/internal/source"
)

type palette struct {
	path    *color.Color
	linter  *color.Color
	gutter  *color.Color
	summary *color.Color
	ok      *color.Color
	sev     map[diag.Severity]*color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		path:    color.New(color.Bold),
		linter:  color.New(color.Faint),
		gutter:  color.New(color.FgBlue),
		summary: color.New(color.FgRed, color.Bold),
		ok:      color.New(color.FgGreen, color.Bold),
		sev: map[diag.Severity]*color.Color{
			diag.SevError:   color.New(color.FgRed, color.Bold),
			diag.SevWarning: color.New(color.FgYellow, color.Bold),
			diag.SevInfo:    color.New(color.FgCyan),
		},
	}
	all := []*color.Color{p.path, p.linter, p.gutter, p.summary, p.ok}
	for _, c := range p.sev {
		all = append(all, c)
	}
	for _, c := range all {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// Pretty prints offenses for humans:
//
//	<path>:<line>:<col>: <severity> <Linter>: <message>
//
// followed by the source line with a ^~~~ underline and a closing summary.
func Pretty(w io.Writer, r *Report, opts PrettyOpts) error {
	bw := bufio.NewWriter(w)
	p := newPalette(opts.Color)
	tab := opts.TabWidth
	if tab <= 0 {
		tab = 4
	}

	for i := range r.Files {
		fr := &r.Files[i]
		path := displayPath(fr, opts.PathMode, opts.BaseDir)
		for _, o := range fr.Offenses {
			start, _ := position(fr.File, o)
			sevColor := p.sev[o.Severity]
			if sevColor == nil {
				sevColor = p.sev[diag.SevError]
			}
			fmt.Fprintf(bw, "%s: %s %s %s\n",
				p.path.Sprintf("%s:%d:%d", path, start.Line, start.Col),
				sevColor.Sprint(severityName(o.Severity)),
				p.linter.Sprint(o.Linter+":"),
				o.Message,
			)
			if fr.File != nil {
				writeSnippet(bw, fr.File, o, start, opts, tab, p, sevColor)
			}
		}
	}

	s := r.Summary()
	switch {
	case s.Offenses == 0 && s.Corrected == 0:
		fmt.Fprintln(bw, p.ok.Sprintf("No errors were found in %d %s.", s.Files, plural(s.Files, "file", "files")))
	case s.Offenses == 0:
		fmt.Fprintln(bw, p.ok.Sprintf("%d %s corrected in %d %s.", s.Corrected, plural(s.Corrected, "error", "errors"), s.Files, plural(s.Files, "file", "files")))
	default:
		msg := fmt.Sprintf("%d %s found in %d %s", s.Offenses, plural(s.Offenses, "error", "errors"), s.Files, plural(s.Files, "file", "files"))
		if s.Corrected > 0 {
			msg += fmt.Sprintf(" (%d corrected)", s.Corrected)
		}
		fmt.Fprintln(bw, p.summary.Sprint(msg+"."))
	}
	return bw.Flush()
}

func writeSnippet(w io.Writer, f *source.File, o diag.Offense, start source.LineCol, opts PrettyOpts, tab int, p palette, caret *color.Color) {
	first := start.Line
	if back, err := safecast.Conv[uint32](opts.Context); err == nil && back > 0 {
		if back >= first {
			back = first - 1
		}
		first -= back
	}
	numWidth := len(fmt.Sprint(start.Line))
	expand := func(s string) string {
		return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tab))
	}

	for ln := first; ln <= start.Line; ln++ {
		text := expand(strings.TrimRight(f.GetLine(ln), "\r"))
		if opts.Width > 0 {
			text = runewidth.Truncate(text, int(opts.Width), "…")
		}
		fmt.Fprintf(w, "%s %s\n", p.gutter.Sprintf("%*d |", numWidth, ln), text)
	}

	line := f.GetLine(start.Line)
	lineLen, err := safecast.Conv[uint32](len(line))
	if err != nil {
		return
	}
	colOff := min(start.Col-1, lineLen)
	col := int(colOff)
	lineStart := o.Range.Begin - colOff
	segEnd := len(line)
	if o.Range.End-lineStart < lineLen {
		segEnd = int(o.Range.End - lineStart)
	}
	pad := runewidth.StringWidth(expand(line[:col]))
	width := 0
	if segEnd > col {
		width = runewidth.StringWidth(expand(line[col:segEnd]))
	}
	if opts.Width > 0 && pad >= int(opts.Width) {
		return
	}
	mark := "^"
	if width > 1 {
		mark += strings.Repeat("~", width-1)
	}
	fmt.Fprintf(w, "%s %s%s\n", p.gutter.Sprintf("%*s |", numWidth, ""), strings.Repeat(" ", pad), caret.Sprint(mark))
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
