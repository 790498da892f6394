package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"erblint/internal/config"
)

const trailingOnly = `enable_default_linters: false
linters:
  TrailingWhitespace:
    enabled: true
`

// resetFlags returns every flag of cmd and its subcommands to its default.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

type result struct {
	stdout string
	stderr string
	err    error
}

func execute(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	resetFlags(rootCmd)
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.ExecuteContext(context.Background())
	traceCleanup()
	traceCleanup = func() {}
	return result{stdout: out.String(), stderr: errOut.String(), err: err}
}

func project(t *testing.T, cfg string, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.YAMLName), []byte(cfg), 0o600))
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
	return dir
}

func exitCode(err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	if err != nil {
		return exitFailure
	}
	return 0
}

func TestLintCompactReportsOffenses(t *testing.T) {
	dir := project(t, trailingOnly, map[string]string{
		"app/a.html.erb": "<p>hi</p>  \n",
		"app/b.html.erb": "<p>ok</p>\n",
	})

	res := execute(t, "", "lint", "--config", filepath.Join(dir, config.YAMLName),
		"--no-cache", "--color", "off", "--format", "compact", dir)

	assert.Equal(t, exitOffenses, exitCode(res.err))
	assert.Equal(t, "app/a.html.erb:1:10: Extra whitespace detected at end of line.\n", res.stdout)
}

func TestLintCleanProjectExitsZero(t *testing.T) {
	dir := project(t, trailingOnly, map[string]string{"app/a.html.erb": "<p>ok</p>\n"})

	res := execute(t, "", "--config", filepath.Join(dir, config.YAMLName),
		"--no-cache", "--color", "off", dir)

	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "No errors were found in 1 file.")
}

func TestLintFailLevelFiltersExitCode(t *testing.T) {
	cfg := trailingOnly + "    severity: warning\n"
	dir := project(t, cfg, map[string]string{"a.html.erb": "x \n"})

	res := execute(t, "", "lint", "--config", filepath.Join(dir, config.YAMLName),
		"--no-cache", "--format", "compact", "--fail-level", "error", dir)
	require.NoError(t, res.err)
	assert.NotEmpty(t, res.stdout)

	res = execute(t, "", "lint", "--config", filepath.Join(dir, config.YAMLName),
		"--no-cache", "--format", "compact", dir)
	assert.Equal(t, exitOffenses, exitCode(res.err))
}

func TestLintUnknownLinterIsConfigFailure(t *testing.T) {
	dir := project(t, "linters:\n  NoSuchLinter:\n    enabled: true\n", map[string]string{"a.html.erb": ""})

	res := execute(t, "", "lint", "--config", filepath.Join(dir, config.YAMLName), "--no-cache", dir)

	assert.Equal(t, exitFailure, exitCode(res.err))
	assert.Contains(t, res.err.Error(), "NoSuchLinter")
}

func TestLintEnableLintersOverridesConfig(t *testing.T) {
	dir := project(t, trailingOnly, map[string]string{"a.html.erb": "x \n<p></p>"})

	res := execute(t, "", "lint", "--config", filepath.Join(dir, config.YAMLName),
		"--no-cache", "--format", "compact", "--enable-linters", "FinalNewline", dir)

	assert.Equal(t, exitOffenses, exitCode(res.err))
	assert.Equal(t, "a.html.erb:2:8: Missing a trailing newline at the end of the file.\n", res.stdout)
}

func TestLintStdinAutocorrect(t *testing.T) {
	dir := project(t, trailingOnly, nil)

	res := execute(t, "a  \nb\n", "lint", "--config", filepath.Join(dir, config.YAMLName),
		"--stdin", "app/x.html.erb", "-a", "--format", "compact")

	require.NoError(t, res.err)
	assert.Equal(t, "a\nb\n", res.stdout)
	assert.Empty(t, res.stderr)
}

func TestLintJSONOutput(t *testing.T) {
	dir := project(t, trailingOnly, map[string]string{"a.html.erb": "x \n"})

	res := execute(t, "", "lint", "--config", filepath.Join(dir, config.YAMLName),
		"--no-cache", "--format", "json", dir)
	assert.Equal(t, exitOffenses, exitCode(res.err))

	var payload struct {
		Files []struct {
			Path     string `json:"path"`
			Offenses []struct {
				Linter string `json:"linter"`
			} `json:"offenses"`
		} `json:"files"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &payload))
	require.Len(t, payload.Files, 1)
	assert.Equal(t, "a.html.erb", payload.Files[0].Path)
	require.Len(t, payload.Files[0].Offenses, 1)
	assert.Equal(t, "TrailingWhitespace", payload.Files[0].Offenses[0].Linter)
}

func TestFixWritesFiles(t *testing.T) {
	dir := project(t, trailingOnly, map[string]string{"app/a.html.erb": "a  \nb \n"})
	path := filepath.Join(dir, "app", "a.html.erb")

	res := execute(t, "", "fix", "--config", filepath.Join(dir, config.YAMLName), "--color", "off", dir)
	require.NoError(t, res.err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a\nb\n", string(data))
	assert.Contains(t, res.stdout, "2 errors corrected in 1 file.")
}

func TestFixSelectedOffenseDryRun(t *testing.T) {
	dir := project(t, trailingOnly, map[string]string{"a.html.erb": "a  \nb \n"})
	path := filepath.Join(dir, "a.html.erb")

	res := execute(t, "", "fix", "--config", filepath.Join(dir, config.YAMLName),
		"--offense", "1", "--dry-run", path)
	require.NoError(t, res.err)
	assert.Equal(t, "a  \nb\n", res.stdout)
	assert.Contains(t, res.stderr, "Applied 1 correction(s) to a.html.erb")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a  \nb \n", string(data), "dry run must not write")
}

func TestFixRejectsOnceWithOffense(t *testing.T) {
	res := execute(t, "", "fix", "--once", "--offense", "0", "a.html.erb")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "mutually exclusive")
}

func TestInitCreatesConfig(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "site")

	res := execute(t, "", "init", dir)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Created")

	cfg, err := config.Load(filepath.Join(dir, config.YAMLName))
	require.NoError(t, err)
	assert.True(t, cfg.EnableDefaultLinters)

	res = execute(t, "", "init", dir)
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "already initialized")

	res = execute(t, "", "init", "--force", dir)
	require.NoError(t, res.err)
}

func TestVersionJSON(t *testing.T) {
	res := execute(t, "", "version", "--format", "json")
	require.NoError(t, res.err)

	var payload versionPayload
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &payload))
	assert.Equal(t, "erblint", payload.Tool)
	assert.NotEmpty(t, payload.Version)
	assert.NotEmpty(t, payload.GoVersion)
}

func TestLintersListsRegistry(t *testing.T) {
	res := execute(t, "", "linters", "--color", "off")
	require.NoError(t, res.err)
	for _, name := range []string{"TrailingWhitespace", "HardCodedString", "SpaceAroundErbTag"} {
		assert.Contains(t, res.stdout, name)
	}
}

func TestCacheDirHonoursFlag(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")

	res := execute(t, "", "cache", "dir", "--cache-dir", dir)
	require.NoError(t, res.err)
	assert.Equal(t, dir+"\n", res.stdout)
}

func lspFrame(body string) string {
	return fmt.Sprintf("Content-Length: %d\r\n\r\n%s", len(body), body)
}

func TestLSPShutdownExit(t *testing.T) {
	in := lspFrame(`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`) +
		lspFrame(`{"jsonrpc":"2.0","id":2,"method":"shutdown"}`) +
		lspFrame(`{"jsonrpc":"2.0","method":"exit"}`)

	res := execute(t, in, "lsp")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, `"name":"erblint"`)
	assert.Contains(t, res.stdout, `"id":2`)
}

func TestLSPExitWithoutShutdown(t *testing.T) {
	res := execute(t, lspFrame(`{"jsonrpc":"2.0","method":"exit"}`), "lsp")
	assert.Equal(t, 1, exitCode(res.err))
}
