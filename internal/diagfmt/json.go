package diagfmt

import (
	"encoding/json"
	"io"
)

// LocationJSON представляет местоположение оффенса в файле.
// Строки и колонки 1-based, last_* указывают на последний символ диапазона.
type LocationJSON struct {
	StartByte   uint32 `json:"start_byte"`
	EndByte     uint32 `json:"end_byte"`
	StartLine   uint32 `json:"start_line"`
	StartColumn uint32 `json:"start_column"`
	LastLine    uint32 `json:"last_line"`
	LastColumn  uint32 `json:"last_column"`
	Length      uint32 `json:"length"`
}

// OffenseJSON представляет оффенс в JSON формате
type OffenseJSON struct {
	Linter   string       `json:"linter"`
	Message  string       `json:"message"`
	Severity string       `json:"severity"`
	Location LocationJSON `json:"location"`
}

// FileJSON groups offenses of one file.
type FileJSON struct {
	Path      string        `json:"path"`
	Offenses  []OffenseJSON `json:"offenses"`
	Corrected int           `json:"corrected,omitempty"`
}

// MetadataJSON describes the producing tool.
type MetadataJSON struct {
	Tool    string `json:"tool"`
	Version string `json:"version,omitempty"`
}

// SummaryJSON mirrors Summary.
type SummaryJSON struct {
	Offenses       int `json:"offenses"`
	InspectedFiles int `json:"inspected_files"`
	Corrected      int `json:"corrected"`
}

// OffensesOutput представляет корневую структуру JSON вывода
type OffensesOutput struct {
	Metadata MetadataJSON `json:"metadata"`
	Files    []FileJSON   `json:"files"`
	Summary  SummaryJSON  `json:"summary"`
}

// BuildOffensesOutput формирует структуру JSON-вывода без сериализации.
func BuildOffensesOutput(r *Report, opts JSONOpts) OffensesOutput {
	out := OffensesOutput{
		Metadata: MetadataJSON{Tool: "erblint", Version: opts.Version},
		Files:    make([]FileJSON, 0, len(r.Files)),
	}
	left := opts.Max
	for i := range r.Files {
		fr := &r.Files[i]
		fj := FileJSON{
			Path:      displayPath(fr, opts.PathMode, opts.BaseDir),
			Offenses:  make([]OffenseJSON, 0, len(fr.Offenses)),
			Corrected: fr.Corrected,
		}
		for _, o := range fr.Offenses {
			if opts.Max > 0 {
				if left == 0 {
					break
				}
				left--
			}
			start, last := position(fr.File, o)
			fj.Offenses = append(fj.Offenses, OffenseJSON{
				Linter:   o.Linter,
				Message:  o.Message,
				Severity: severityName(o.Severity),
				Location: LocationJSON{
					StartByte:   o.Range.Begin,
					EndByte:     o.Range.End,
					StartLine:   start.Line,
					StartColumn: start.Col,
					LastLine:    last.Line,
					LastColumn:  last.Col,
					Length:      o.Range.Len(),
				},
			})
			out.Summary.Offenses++
		}
		out.Summary.Corrected += fr.Corrected
		out.Files = append(out.Files, fj)
	}
	out.Summary.InspectedFiles = len(r.Files)
	return out
}

// JSON форматирует оффенсы в JSON.
func JSON(w io.Writer, r *Report, opts JSONOpts) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildOffensesOutput(r, opts))
}
