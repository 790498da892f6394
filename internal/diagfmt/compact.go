package diagfmt

import (
	"bufio"
	"fmt"
	"io"

	"erblint/internal/diag"
)

// Compact prints one "<path>:<line>:<col>: <message>" line per offense.
func Compact(w io.Writer, r *Report, mode PathMode, baseDir string) error {
	bw := bufio.NewWriter(w)
	for i := range r.Files {
		fr := &r.Files[i]
		path := displayPath(fr, mode, baseDir)
		for _, o := range fr.Offenses {
			start, _ := position(fr.File, o)
			fmt.Fprintf(bw, "%s:%d:%d: %s\n", path, start.Line, start.Col, o.Message)
		}
	}
	return bw.Flush()
}

// Short prints the sorted single-line form used by golden files.
func Short(w io.Writer, r *Report, baseDir string) error {
	files := make([]diag.FileOffenses, 0, len(r.Files))
	for _, fr := range r.Files {
		files = append(files, diag.FileOffenses{File: fr.File, Offenses: fr.Offenses})
	}
	out := diag.FormatGoldenOffenses(files, baseDir)
	if out == "" {
		return nil
	}
	_, err := fmt.Fprintln(w, out)
	return err
}
