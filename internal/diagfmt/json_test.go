package diagfmt

import (
	"bytes"
	"encoding/json"
	"testing"

	"erblint/internal/diag"
	"erblint/internal/source"
)

func TestJSONLocations(t *testing.T) {
	var buf bytes.Buffer
	r := sampleReport(t, "a.html.erb")
	r.Files[0].Corrected = 1
	if err := JSON(&buf, r, JSONOpts{Version: "1.0.0"}); err != nil {
		t.Fatalf("JSON: %v", err)
	}

	var out OffensesOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if out.Metadata.Tool != "erblint" || out.Metadata.Version != "1.0.0" {
		t.Errorf("metadata = %+v", out.Metadata)
	}
	if len(out.Files) != 1 || len(out.Files[0].Offenses) != 1 {
		t.Fatalf("unexpected files: %+v", out.Files)
	}
	o := out.Files[0].Offenses[0]
	want := LocationJSON{StartByte: 8, EndByte: 10, StartLine: 2, StartColumn: 5, LastLine: 2, LastColumn: 6, Length: 2}
	if o.Location != want {
		t.Errorf("location = %+v, want %+v", o.Location, want)
	}
	if o.Linter != "TrailingWhitespace" || o.Severity != "error" || o.Message != trailingMsg {
		t.Errorf("offense = %+v", o)
	}
	if out.Summary != (SummaryJSON{Offenses: 1, InspectedFiles: 1, Corrected: 1}) {
		t.Errorf("summary = %+v", out.Summary)
	}
}

func TestJSONMaxAndEmptyFiles(t *testing.T) {
	fs := source.NewFileSet()
	f := fs.Get(fs.AddVirtual("a.erb", []byte("abc")))
	r := &Report{Files: []FileReport{
		{File: f, Offenses: []diag.Offense{
			diag.New("A", source.MustRange(f, 0, 1), "one"),
			diag.New("A", source.MustRange(f, 1, 2), "two"),
		}},
		{Path: "clean.erb"},
	}}

	out := BuildOffensesOutput(r, JSONOpts{Max: 1})
	if len(out.Files[0].Offenses) != 1 || out.Summary.Offenses != 1 {
		t.Errorf("max not applied: %+v", out)
	}
	if out.Files[1].Offenses == nil {
		t.Error("clean files must encode an empty offenses array")
	}
}

func TestSarif(t *testing.T) {
	var buf bytes.Buffer
	if err := Sarif(&buf, sampleReport(t, "app/a b.html.erb"), SarifRunMeta{ToolVersion: "1.0.0", InvocationArgs: []string{"erblint", "."}}); err != nil {
		t.Fatalf("Sarif: %v", err)
	}

	var log sarifLog
	if err := json.Unmarshal(buf.Bytes(), &log); err != nil {
		t.Fatalf("invalid SARIF: %v", err)
	}
	if log.Version != "2.1.0" || len(log.Runs) != 1 {
		t.Fatalf("unexpected log: %+v", log)
	}
	run := log.Runs[0]
	if run.Tool.Driver.Name != "erblint" || len(run.Tool.Driver.Rules) != 1 || run.Tool.Driver.Rules[0].ID != "TrailingWhitespace" {
		t.Errorf("driver = %+v", run.Tool.Driver)
	}
	if len(run.Results) != 1 {
		t.Fatalf("results = %+v", run.Results)
	}
	res := run.Results[0]
	if res.Level != "error" || res.RuleIndex != 0 {
		t.Errorf("result = %+v", res)
	}
	loc := res.Locations[0].PhysicalLocation
	if loc.ArtifactLocation.URI != "app/a%20b.html.erb" {
		t.Errorf("uri = %q", loc.ArtifactLocation.URI)
	}
	if want := (sarifRegion{StartLine: 2, StartColumn: 5, EndLine: 2, EndColumn: 7, ByteOffset: 8, ByteLength: 2}); loc.Region != want {
		t.Errorf("region = %+v, want %+v", loc.Region, want)
	}
}
