package lint

import (
	"errors"
	"testing"

	"erblint/internal/diag"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type probeOptions struct {
	Style    string   `yaml:"style" validate:"oneof=- ="`
	Patterns []string `yaml:"patterns" validate:"dive,regexp"`
	Strategy string   `yaml:"strategy"`
}

type probeRule struct {
	name string
	opts probeOptions
}

func (r *probeRule) Name() string { return r.name }

func (r *probeRule) Run(doc *Document, rep diag.Reporter) error {
	diag.ReportOffense(rep, r.name, doc.Range(0, 0), r.opts.Style).Emit()
	return nil
}

var errBadStrategy = errors.New("unknown strategy")

func probeRegistry() *Registry {
	reg := NewRegistry()
	for _, spec := range []struct {
		name    string
		enabled bool
	}{{"Alpha", true}, {"Beta", false}} {
		name := spec.name
		Register(reg, Spec[probeOptions]{
			Name:             name,
			EnabledByDefault: spec.enabled,
			Defaults:         func() probeOptions { return probeOptions{Style: "-"} },
			New: func(opts probeOptions) (Rule, error) {
				if opts.Strategy != "" && opts.Strategy != "i18n" {
					return nil, &ConfigError{Linter: name, Key: "strategy", Err: errBadStrategy}
				}
				return &probeRule{name: name, opts: opts}, nil
			},
		})
	}
	return reg
}

func TestBuildPlanDefaults(t *testing.T) {
	reg := probeRegistry()

	plan, err := BuildPlan(reg, nil, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha"}, plan.Names())

	plan, err = BuildPlan(reg, map[string]map[string]any{
		"Beta":  {"enabled": true, "style": "="},
		"Alpha": {"enabled": false},
	}, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"Beta"}, plan.Names())
	assert.Equal(t, "=", plan.Rules[0].Config.(probeOptions).Style)

	none, err := BuildPlan(reg, nil, false)
	require.NoError(t, err)
	assert.Empty(t, none.Names())
	assert.NotEqual(t, plan.Digest(), none.Digest())
}

func TestBuildPlanConfigErrors(t *testing.T) {
	reg := probeRegistry()
	tests := []struct {
		name    string
		linters map[string]map[string]any
		linter  string
		key     string
		target  error
	}{
		{"unknown linter", map[string]map[string]any{"Gamma": {}}, "Gamma", "", ErrUnknownLinter},
		{"unknown key", map[string]map[string]any{"Alpha": {"colour": "red"}}, "Alpha", "colour", ErrUnknownOption},
		{"bad enum", map[string]map[string]any{"Alpha": {"style": "+"}}, "Alpha", "style", ErrInvalidOption},
		{"bad regexp", map[string]map[string]any{"Alpha": {"patterns": []any{"ok", "("}}}, "Alpha", "patterns[1]", ErrInvalidOption},
		{"bad type", map[string]map[string]any{"Alpha": {"patterns": "x"}}, "Alpha", "", ErrInvalidOption},
		{"bad enabled", map[string]map[string]any{"Alpha": {"enabled": "yes"}}, "Alpha", "enabled", ErrInvalidOption},
		{"bad severity", map[string]map[string]any{"Alpha": {"severity": "fatal"}}, "Alpha", "severity", ErrInvalidOption},
		{"constructor", map[string]map[string]any{"Alpha": {"strategy": "gettext"}}, "Alpha", "strategy", errBadStrategy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildPlan(reg, tt.linters, true)
			require.Error(t, err)
			var cerr *ConfigError
			require.True(t, errors.As(err, &cerr), "expected *ConfigError, got %T", err)
			assert.Equal(t, tt.linter, cerr.Linter)
			assert.Equal(t, tt.key, cerr.Key)
			assert.ErrorIs(t, err, tt.target)
		})
	}
}

func TestInstantiateIsFreshAndHonoursExclude(t *testing.T) {
	reg := probeRegistry()
	plan, err := BuildPlan(reg, map[string]map[string]any{
		"Alpha": {"severity": "warning"},
		"Beta":  {"enabled": true, "exclude": []any{"vendor/**"}},
	}, true)
	require.NoError(t, err)

	first, err := plan.Instantiate("app/a.html.erb")
	require.NoError(t, err)
	second, err := plan.Instantiate("app/a.html.erb")
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.NotSame(t, first[0].Rule, second[0].Rule)
	assert.Equal(t, diag.SevWarning, first[0].Severity)
	assert.True(t, first[0].SeveritySet)
	assert.Equal(t, 1, first[1].Order)

	vendored, err := plan.Instantiate("vendor/x.html.erb")
	require.NoError(t, err)
	require.Len(t, vendored, 1)
	assert.Equal(t, "Alpha", vendored[0].Rule.Name())
}

func TestRegisterTwicePanics(t *testing.T) {
	reg := probeRegistry()
	assert.Panics(t, func() {
		Register(reg, Spec[probeOptions]{Name: "Alpha", New: func(probeOptions) (Rule, error) { return nil, nil }})
	})
}
