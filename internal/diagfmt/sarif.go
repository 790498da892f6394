package diagfmt

import (
	"encoding/json"
	"io"
	"net/url"
	"path/filepath"
	"sort"

	"erblint/internal/diag"
)

const (
	sarifSchema  = "https://json.schemastore.org/sarif-2.1.0.json"
	sarifVersion = "2.1.0"
)

type sarifLog struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool        sarifTool         `json:"tool"`
	Invocations []sarifInvocation `json:"invocations,omitempty"`
	Results     []sarifResult     `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string      `json:"name"`
	Version string      `json:"version,omitempty"`
	Rules   []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID string `json:"id"`
}

type sarifInvocation struct {
	Arguments           []string `json:"arguments,omitempty"`
	ExecutionSuccessful bool     `json:"executionSuccessful"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	RuleIndex int             `json:"ruleIndex"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysical `json:"physicalLocation"`
}

type sarifPhysical struct {
	ArtifactLocation sarifArtifact `json:"artifactLocation"`
	Region           sarifRegion   `json:"region"`
}

type sarifArtifact struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine   uint32 `json:"startLine"`
	StartColumn uint32 `json:"startColumn"`
	EndLine     uint32 `json:"endLine"`
	EndColumn   uint32 `json:"endColumn"`
	ByteOffset  uint32 `json:"byteOffset"`
	ByteLength  uint32 `json:"byteLength"`
}

func sarifLevel(s diag.Severity) string {
	switch s {
	case diag.SevError:
		return "error"
	case diag.SevWarning:
		return "warning"
	}
	return "note"
}

// Sarif форматирует оффенсы в SARIF (v2.1.0).
func Sarif(w io.Writer, r *Report, meta SarifRunMeta) error {
	name := meta.ToolName
	if name == "" {
		name = "erblint"
	}

	ruleSet := map[string]bool{}
	for _, fr := range r.Files {
		for _, o := range fr.Offenses {
			ruleSet[o.Linter] = true
		}
	}
	ruleIDs := make([]string, 0, len(ruleSet))
	for id := range ruleSet {
		ruleIDs = append(ruleIDs, id)
	}
	sort.Strings(ruleIDs)
	ruleIndex := make(map[string]int, len(ruleIDs))
	rules := make([]sarifRule, len(ruleIDs))
	for i, id := range ruleIDs {
		ruleIndex[id] = i
		rules[i] = sarifRule{ID: id}
	}

	results := make([]sarifResult, 0)
	for i := range r.Files {
		fr := &r.Files[i]
		uri := (&url.URL{Path: filepath.ToSlash(displayPath(fr, PathModeRelative, meta.BaseDir))}).String()
		for _, o := range fr.Offenses {
			start, last := position(fr.File, o)
			results = append(results, sarifResult{
				RuleID:    o.Linter,
				RuleIndex: ruleIndex[o.Linter],
				Level:     sarifLevel(o.Severity),
				Message:   sarifMessage{Text: o.Message},
				Locations: []sarifLocation{{PhysicalLocation: sarifPhysical{
					ArtifactLocation: sarifArtifact{URI: uri},
					Region: sarifRegion{
						StartLine:   start.Line,
						StartColumn: start.Col,
						EndLine:     last.Line,
						// SARIF endColumn указывает за последний символ
						EndColumn:  last.Col + 1,
						ByteOffset: o.Range.Begin,
						ByteLength: o.Range.Len(),
					},
				}}},
			})
		}
	}

	log := sarifLog{
		Schema:  sarifSchema,
		Version: sarifVersion,
		Runs: []sarifRun{{
			Tool:        sarifTool{Driver: sarifDriver{Name: name, Version: meta.ToolVersion, Rules: rules}},
			Invocations: []sarifInvocation{{Arguments: meta.InvocationArgs, ExecutionSuccessful: true}},
			Results:     results,
		}},
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(log)
}
