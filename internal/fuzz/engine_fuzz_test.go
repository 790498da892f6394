package fuzztests

import (
	"context"
	"testing"

	"erblint/internal/driver"
	"erblint/internal/lint"
	"erblint/internal/linters"
	"erblint/internal/source"
	"erblint/internal/testkit"
)

func allLinters(t *testing.T) *lint.Plan {
	t.Helper()
	reg := linters.Default()
	cfg := make(map[string]map[string]any)
	for _, e := range reg.Entries() {
		cfg[e.Name] = map[string]any{"enabled": true}
	}
	cfg[linters.NameAllowedScriptType]["allow_blank"] = false
	plan, err := lint.BuildPlan(reg, cfg, false)
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	return plan
}

func FuzzEngineOffenses(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampInput(input)
		plan := allLinters(t)

		fs := source.NewFileSet()
		file := fs.Get(fs.AddVirtual("fuzz.html.erb", input))
		eng, err := driver.NewEngine(plan, "fuzz.html.erb")
		if err != nil {
			t.Fatalf("NewEngine: %v", err)
		}
		if err := eng.Run(context.Background(), lint.NewDocument(file)); err != nil {
			t.Fatalf("Run: %v", err)
		}
		for _, e := range eng.Errors() {
			t.Fatalf("linter failed: %v\ninput: %q", e, input)
		}
		if err := testkit.CheckOffenses(file.Content, eng.Offenses()); err != nil {
			t.Fatalf("%v\ninput: %q", err, input)
		}
	})
}

func FuzzAutocorrectConverges(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampInput(input)
		plan := allLinters(t)

		fs := source.NewFileSet()
		id := fs.AddVirtual("fuzz.html.erb", input)
		res, err := driver.AutocorrectFile(context.Background(), fs, plan, id, driver.Options{})
		if err != nil {
			t.Fatalf("AutocorrectFile: %v\ninput: %q", err, input)
		}
		if res.Passes > driver.DefaultMaxPasses {
			t.Fatalf("passes = %d, want at most %d", res.Passes, driver.DefaultMaxPasses)
		}
		if res.Changed && res.Output == nil {
			t.Fatalf("changed result without output\ninput: %q", input)
		}
	})
}
