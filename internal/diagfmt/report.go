package diagfmt

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"erblint/internal/diag"
	"erblint/internal/source"
)

// Format names an output format accepted by --format.
type Format string

const (
	FormatPretty  Format = "pretty"
	FormatCompact Format = "compact"
	FormatShort   Format = "short"
	FormatJSON    Format = "json"
	FormatSarif   Format = "sarif"
)

// Formats lists the supported formats in help order.
var Formats = []Format{FormatPretty, FormatCompact, FormatShort, FormatJSON, FormatSarif}

// ParseFormat resolves a --format value; "" means pretty.
func ParseFormat(s string) (Format, error) {
	if s == "" {
		return FormatPretty, nil
	}
	for _, f := range Formats {
		if strings.EqualFold(s, string(f)) {
			return f, nil
		}
	}
	names := make([]string, len(Formats))
	for i, f := range Formats {
		names[i] = string(f)
	}
	return "", fmt.Errorf("unknown format %q (expected one of: %s)", s, strings.Join(names, ", "))
}

// FileReport is one inspected file as seen by the formatters.
type FileReport struct {
	File *source.File
	// Path is the display path; File.Path is used when empty.
	Path      string
	Offenses  []diag.Offense
	Corrected int
}

// Report is the outcome of one run.
type Report struct {
	Files []FileReport
}

// Summary counts offenses over a report.
type Summary struct {
	Files     int
	Offenses  int
	Errors    int
	Warnings  int
	Corrected int
}

// Summary aggregates counters.
func (r *Report) Summary() Summary {
	s := Summary{Files: len(r.Files)}
	for _, f := range r.Files {
		s.Corrected += f.Corrected
		for _, o := range f.Offenses {
			s.Offenses++
			switch o.Severity {
			case diag.SevError:
				s.Errors++
			case diag.SevWarning:
				s.Warnings++
			}
		}
	}
	return s
}

// Options bundles per-format options for Write.
type Options struct {
	Pretty PrettyOpts
	JSON   JSONOpts
	Sarif  SarifRunMeta
}

// Write renders the report in the given format.
func Write(w io.Writer, format Format, r *Report, opts Options) error {
	switch format {
	case FormatPretty, "":
		return Pretty(w, r, opts.Pretty)
	case FormatCompact:
		return Compact(w, r, opts.Pretty.PathMode, opts.Pretty.BaseDir)
	case FormatShort:
		return Short(w, r, opts.Pretty.BaseDir)
	case FormatJSON:
		return JSON(w, r, opts.JSON)
	case FormatSarif:
		return Sarif(w, r, opts.Sarif)
	}
	return fmt.Errorf("unknown format %q", format)
}

func displayPath(fr *FileReport, mode PathMode, baseDir string) string {
	switch {
	case fr.File == nil:
		return fr.Path
	case mode == PathModeAbsolute && fr.File.Flags&source.FileVirtual == 0:
		return fr.File.FormatPath("absolute", "")
	case mode == PathModeRelative:
		return fr.File.FormatPath("relative", baseDir)
	case mode == PathModeBasename:
		return fr.File.FormatPath("basename", "")
	}
	if fr.Path != "" {
		return fr.Path
	}
	return filepath.ToSlash(fr.File.Path)
}

// position resolves the 1-based start and end of an offense.
func position(f *source.File, o diag.Offense) (start, end source.LineCol) {
	if f == nil {
		return source.LineCol{Line: 1, Col: o.Range.Begin + 1}, source.LineCol{Line: 1, Col: o.Range.End + 1}
	}
	start = f.Resolve(o.Range.Begin)
	end = start
	if o.Range.End > o.Range.Begin {
		// последний символ диапазона, а не позиция за ним
		end = f.Resolve(o.Range.End - 1)
	}
	return start, end
}

func severityName(s diag.Severity) string {
	return strings.ToLower(s.String())
}
