package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"erblint/internal/config"
	"erblint/internal/diag"
	"erblint/internal/diagfmt"
	"erblint/internal/driver"
	"erblint/internal/lint"
	"erblint/internal/linters"
	"erblint/internal/observ"
	"erblint/internal/source"
	"erblint/internal/version"
)

var lintCmd = &cobra.Command{
	Use:   "lint [flags] [path...]",
	Short: "Report offenses in ERB templates",
	Long: `Lint the given files or directories. Directories are walked with the configured
glob; files named explicitly are always linted unless excluded. With --stdin NAME
the template is read from standard input and reported as NAME.`,
	Args: cobra.ArbitraryArgs,
	RunE: runLint,
}

func init() {
	addLintFlags(lintCmd)
}

func addLintFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("format", "pretty", "output format ("+formatNames()+")")
	f.IntP("jobs", "j", 0, "number of files linted in parallel (0 = GOMAXPROCS)")
	f.String("stdin", "", "read the template from stdin and report it under this name")
	f.BoolP("autocorrect", "a", false, "correct offenses automatically where possible")
	f.Bool("no-cache", false, "do not read or write the result cache")
	f.String("cache-dir", "", "override the cache directory")
	f.String("ui", "off", "progress UI (auto|on|off)")
	f.StringSlice("enable-linters", nil, "run only these linters (comma-separated)")
	f.Bool("enable-all-linters", false, "run every available linter")
	f.String("fail-level", "info", "lowest severity that makes the exit code non-zero (info|warning|error)")
	f.Int("max-offenses", 0, "limit the number of offenses in json output (0 = unlimited)")
}

func formatNames() string {
	names := make([]string, len(diagfmt.Formats))
	for i, f := range diagfmt.Formats {
		names[i] = string(f)
	}
	return strings.Join(names, "|")
}

// lintSetup is everything resolved from flags and the config file before linting.
type lintSetup struct {
	cfg       *config.Config
	plan      *lint.Plan
	format    diagfmt.Format
	opts      driver.Options
	stdinName string
	uiMode    uiMode
	failLevel diag.Severity
	maxOut    int
	quiet     bool
	timings   bool
}

func loadSetup(cmd *cobra.Command, autocorrect bool) (*lintSetup, error) {
	s := &lintSetup{}
	flags := cmd.Flags()

	cfgPath, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return nil, err
	}
	if cfgPath != "" {
		s.cfg, err = config.Load(cfgPath)
	} else {
		s.cfg, err = config.Discover(".")
	}
	if err != nil {
		return nil, &exitError{code: exitFailure, msg: err.Error()}
	}

	reg := linters.Default()
	only, err := flags.GetStringSlice("enable-linters")
	if err != nil {
		return nil, err
	}
	all, err := flags.GetBool("enable-all-linters")
	if err != nil {
		return nil, err
	}
	switch {
	case all:
		s.cfg.EnableAll(reg)
	case len(only) > 0:
		s.cfg.Only(only)
	}
	s.plan, err = s.cfg.Plan(reg)
	if err != nil {
		return nil, &exitError{code: exitFailure, msg: err.Error()}
	}
	if len(s.plan.Rules) == 0 {
		return nil, &exitError{code: exitFailure, msg: "no linters are enabled"}
	}

	formatStr, err := flags.GetString("format")
	if err != nil {
		return nil, err
	}
	if s.format, err = diagfmt.ParseFormat(formatStr); err != nil {
		return nil, err
	}
	if s.stdinName, err = flags.GetString("stdin"); err != nil {
		return nil, err
	}
	uiValue, err := flags.GetString("ui")
	if err != nil {
		return nil, err
	}
	if s.uiMode, err = readUIMode(uiValue); err != nil {
		return nil, err
	}
	failStr, err := flags.GetString("fail-level")
	if err != nil {
		return nil, err
	}
	if s.failLevel, err = diag.ParseSeverity(failStr); err != nil {
		return nil, fmt.Errorf("invalid --fail-level: %w", err)
	}
	if s.maxOut, err = flags.GetInt("max-offenses"); err != nil {
		return nil, err
	}
	if s.quiet, err = cmd.Root().PersistentFlags().GetBool("quiet"); err != nil {
		return nil, err
	}
	if s.timings, err = cmd.Root().PersistentFlags().GetBool("timings"); err != nil {
		return nil, err
	}

	jobs, err := flags.GetInt("jobs")
	if err != nil {
		return nil, err
	}
	if !autocorrect {
		if autocorrect, err = flags.GetBool("autocorrect"); err != nil {
			return nil, err
		}
	}
	s.opts = driver.Options{
		Jobs:        jobs,
		Autocorrect: autocorrect,
		Write:       autocorrect && s.stdinName == "",
	}

	noCache, err := flags.GetBool("no-cache")
	if err != nil {
		return nil, err
	}
	// кеш хранит только результаты линтинга без коррекций
	if !noCache && !autocorrect {
		dir, err := flags.GetString("cache-dir")
		if err != nil {
			return nil, err
		}
		if dir == "" {
			dir = s.cfg.CacheDir
		}
		if dir == "" {
			dir, err = driver.DefaultCacheDir("erblint")
			if err != nil {
				return nil, err
			}
		}
		cache, err := driver.OpenCache(dir)
		if err != nil {
			// без кеша тоже можно работать
			if !s.quiet {
				fmt.Fprintf(cmd.ErrOrStderr(), "erblint: cache disabled: %v\n", err)
			}
		} else {
			s.opts.Cache = cache
		}
	}
	return s, nil
}

func runLint(cmd *cobra.Command, args []string) error {
	s, err := loadSetup(cmd, false)
	if err != nil {
		return err
	}
	return lintAndReport(cmd, s, args)
}

func lintAndReport(cmd *cobra.Command, s *lintSetup, args []string) error {
	ctx := cmd.Context()
	fileSet := source.NewFileSetWithBase(s.cfg.Root)

	var (
		results []driver.FileResult
		err     error
	)
	out := cmd.OutOrStdout()
	if s.stdinName != "" {
		if len(args) > 0 {
			return fmt.Errorf("--stdin cannot be combined with paths")
		}
		var res *driver.FileResult
		res, err = lintStdin(ctx, cmd.InOrStdin(), fileSet, s)
		if err != nil {
			return err
		}
		results = []driver.FileResult{*res}
		if s.opts.Autocorrect {
			// исправленный шаблон уходит в stdout, отчёт в stderr
			content := res.Output
			if !res.Changed {
				f := fileSet.Get(res.FileID)
				content = f.Original()
			}
			if _, err := out.Write(content); err != nil {
				return err
			}
			out = cmd.ErrOrStderr()
		}
	} else {
		results, err = lintFiles(ctx, cmd, fileSet, s, args)
		if err != nil {
			return err
		}
	}

	if err := writeReport(cmd, out, fileSet, s, results); err != nil {
		return err
	}
	return exitStatus(s, results)
}

func lintStdin(ctx context.Context, in io.Reader, fileSet *source.FileSet, s *lintSetup) (*driver.FileResult, error) {
	content, err := io.ReadAll(in)
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	name := s.stdinName
	if !filepath.IsAbs(name) {
		name = filepath.Join(s.cfg.Root, name)
	}
	id := fileSet.AddNormalized(name, content)
	if s.opts.Autocorrect {
		return driver.AutocorrectFile(ctx, fileSet, s.plan, id, s.opts)
	}
	return driver.LintFile(ctx, fileSet, s.plan, id, s.opts)
}

func lintFiles(ctx context.Context, cmd *cobra.Command, fileSet *source.FileSet, s *lintSetup, args []string) ([]driver.FileResult, error) {
	roots := args
	if len(roots) == 0 {
		roots = []string{s.cfg.Root}
	}
	files, err := driver.ListFiles(roots, s.cfg.Root, s.cfg.Glob, s.cfg.Exclude)
	if err != nil {
		if errors.Is(err, driver.ErrNoFiles) {
			return nil, &exitError{code: exitFailure, msg: err.Error()}
		}
		return nil, err
	}

	var results []driver.FileResult
	if shouldUseTUI(s.uiMode) && s.format == diagfmt.FormatPretty {
		results, err = runLintWithUI(ctx, "erblint", fileSet, s.plan, files, s.opts)
	} else {
		results, err = driver.LintPaths(ctx, fileSet, s.plan, files, s.opts)
	}
	if err != nil {
		dumpRing(cmd)
		return results, err
	}
	return results, nil
}

func writeReport(cmd *cobra.Command, out io.Writer, fileSet *source.FileSet, s *lintSetup, results []driver.FileResult) error {
	report := &diagfmt.Report{Files: make([]diagfmt.FileReport, 0, len(results))}
	var timings []*observ.Report
	for i := range results {
		res := &results[i]
		for _, e := range res.Errors {
			fmt.Fprintf(cmd.ErrOrStderr(), "erblint: %s: %v\n", res.Path, e)
		}
		if res.LoadErr != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "erblint: %s: %v\n", res.Path, res.LoadErr)
			continue
		}
		report.Files = append(report.Files, diagfmt.FileReport{
			File:      fileSet.Get(res.FileID),
			Path:      res.Path,
			Offenses:  res.Offenses,
			Corrected: res.Corrected,
		})
		timings = append(timings, res.Timing)
	}

	colored, err := useColor(cmd, out)
	if err != nil {
		return err
	}
	opts := diagfmt.Options{
		Pretty: diagfmt.PrettyOpts{Color: colored, Context: 1, BaseDir: s.cfg.Root},
		JSON:   diagfmt.JSONOpts{Max: s.maxOut, Version: version.Version, BaseDir: s.cfg.Root},
		Sarif:  diagfmt.SarifRunMeta{ToolVersion: version.Version, InvocationArgs: os.Args, BaseDir: s.cfg.Root},
	}
	if s.quiet && s.format == diagfmt.FormatPretty && report.Summary().Offenses == 0 {
		return nil
	}
	if err := diagfmt.Write(out, s.format, report, opts); err != nil {
		return err
	}
	if s.timings {
		fmt.Fprint(cmd.ErrOrStderr(), observ.Aggregate(timings).Summary())
	}
	return nil
}

func exitStatus(s *lintSetup, results []driver.FileResult) error {
	failed := false
	offending := false
	for i := range results {
		if results[i].Failed() {
			failed = true
		}
		for _, o := range results[i].Offenses {
			if o.Severity >= s.failLevel {
				offending = true
			}
		}
	}
	switch {
	case failed:
		return &exitError{code: exitFailure}
	case offending:
		return &exitError{code: exitOffenses}
	}
	return nil
}
