package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"erblint/internal/driver"
	"erblint/internal/fix"
	"erblint/internal/lint"
	"erblint/internal/source"
)

var fixCmd = &cobra.Command{
	Use:   "fix [flags] [path...]",
	Short: "Correct offenses in place",
	Long: `Lint and correct templates until they are stable (at most 7 passes) and write
them back. With --once or --offense a single file gets exactly one correction
pass restricted to the chosen offenses.`,
	Args: cobra.ArbitraryArgs,
	RunE: runFix,
}

func init() {
	addLintFlags(fixCmd)
	fixCmd.Flags().Bool("once", false, "apply only the first correctable offense of a single file")
	fixCmd.Flags().IntSlice("offense", nil, "apply only these offenses of a single file (0-based, in the order lint prints them)")
	fixCmd.Flags().Bool("dry-run", false, "print the corrected template instead of writing it (single file only)")
}

func runFix(cmd *cobra.Command, args []string) error {
	once, err := cmd.Flags().GetBool("once")
	if err != nil {
		return err
	}
	indices, err := cmd.Flags().GetIntSlice("offense")
	if err != nil {
		return err
	}
	dryRun, err := cmd.Flags().GetBool("dry-run")
	if err != nil {
		return err
	}
	if once && len(indices) > 0 {
		return fmt.Errorf("--once and --offense are mutually exclusive")
	}

	s, err := loadSetup(cmd, true)
	if err != nil {
		return err
	}
	if !once && len(indices) == 0 && !dryRun {
		return lintAndReport(cmd, s, args)
	}

	if len(args) != 1 {
		return fmt.Errorf("--once, --offense and --dry-run need exactly one file")
	}
	opts := fix.Options{Mode: fix.ModeAll}
	switch {
	case once:
		opts.Mode = fix.ModeOnce
	case len(indices) > 0:
		opts = fix.Options{Mode: fix.ModeSelected, Indices: indices}
	}
	return fixSingle(cmd, s, args[0], opts, dryRun)
}

// fixSingle runs one correction pass over path with the given selection.
func fixSingle(cmd *cobra.Command, s *lintSetup, path string, opts fix.Options, dryRun bool) error {
	fileSet := source.NewFileSetWithBase(s.cfg.Root)
	id, err := fileSet.Load(path)
	if err != nil {
		return &exitError{code: exitFailure, msg: err.Error()}
	}
	f := fileSet.Get(id)
	name := f.FormatPath("relative", s.cfg.Root)

	eng, err := driver.NewEngine(s.plan, name)
	if err != nil {
		return err
	}
	if err := eng.Run(cmd.Context(), lint.NewDocument(f)); err != nil {
		return err
	}
	for _, e := range eng.Errors() {
		fmt.Fprintf(cmd.ErrOrStderr(), "erblint: %s: %v\n", name, e)
	}

	res, applyErr := eng.Autocorrect(opts)
	if err := printCorrections(cmd.ErrOrStderr(), name, res, applyErr); err != nil {
		return err
	}
	if !res.Changed() {
		return nil
	}
	out, err := fix.Restore(f, res.Edits)
	if err != nil {
		return err
	}
	if dryRun {
		_, err := cmd.OutOrStdout().Write(out)
		return err
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	// #nosec G306 -- keeps the permissions of the file being rewritten
	return os.WriteFile(path, out, info.Mode().Perm())
}

func printCorrections(w io.Writer, name string, res *fix.Result, applyErr error) error {
	if res == nil {
		return applyErr
	}
	if len(res.Applied) > 0 {
		fmt.Fprintf(w, "Applied %d correction(s) to %s:\n", len(res.Applied), name)
		for _, item := range res.Applied {
			fmt.Fprintf(w, "  %s %s: %s (%d edits)\n", item.Linter, item.Range, item.Message, item.EditCount)
		}
	}
	if len(res.Skipped) > 0 {
		fmt.Fprintln(w, "Skipped corrections:")
		for _, skip := range res.Skipped {
			fmt.Fprintf(w, "  %s %s: %s\n", skip.Linter, skip.Range, skip.Reason)
		}
	}
	for _, err := range res.Errors {
		fmt.Fprintf(w, "  error: %v\n", err)
	}
	if applyErr != nil {
		if errors.Is(applyErr, fix.ErrNoCorrections) {
			fmt.Fprintln(w, "No applicable corrections found.")
			return nil
		}
		return applyErr
	}
	return nil
}
