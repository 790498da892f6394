package linters_test

import (
	"context"
	"errors"
	"testing"

	"erblint/internal/diag"
	"erblint/internal/driver"
	"erblint/internal/fix"
	"erblint/internal/lint"
	"erblint/internal/linters"
	"erblint/internal/source"

	"github.com/stretchr/testify/require"
)

type config = map[string]map[string]any

// only enables a single linter with the given options.
func only(name string, opts map[string]any) config {
	section := map[string]any{"enabled": true}
	for k, v := range opts {
		section[k] = v
	}
	return config{name: section}
}

func buildPlan(t *testing.T, cfg config) *lint.Plan {
	t.Helper()
	plan, err := lint.BuildPlan(linters.Default(), cfg, false)
	require.NoError(t, err)
	return plan
}

func run(t *testing.T, cfg config, content string) *driver.Engine {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("app/views/test.html.erb", []byte(content))
	eng, err := driver.NewEngine(buildPlan(t, cfg), "app/views/test.html.erb")
	require.NoError(t, err)
	require.NoError(t, eng.Run(context.Background(), lint.NewDocument(fs.Get(id))))
	require.Empty(t, eng.Errors())
	return eng
}

func inspect(t *testing.T, cfg config, content string) []diag.Offense {
	t.Helper()
	return run(t, cfg, content).Offenses()
}

// correct applies corrections selected by opts; with nothing to correct it
// returns the input.
func correct(t *testing.T, cfg config, content string, opts fix.Options) string {
	t.Helper()
	res, err := run(t, cfg, content).Autocorrect(opts)
	if errors.Is(err, fix.ErrNoCorrections) {
		return string(res.Content)
	}
	require.NoError(t, err)
	require.Empty(t, res.Errors)
	return string(res.Content)
}

func correctAll(t *testing.T, cfg config, content string) string {
	t.Helper()
	return correct(t, cfg, content, fix.Options{Mode: fix.ModeAll})
}

func messages(offenses []diag.Offense) []string {
	out := make([]string, len(offenses))
	for i, o := range offenses {
		out[i] = o.Message
	}
	return out
}
