package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"erblint/internal/driver"
	"erblint/internal/lint"
	"erblint/internal/source"
	"erblint/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch [flags] [dir...]",
	Short: "Re-lint templates whenever they change",
	Long: `Lint everything once, then watch the given directories (default: the project
root) and re-lint changed templates. Stop with Ctrl+C.`,
	Args: cobra.ArbitraryArgs,
	RunE: runWatch,
}

func init() {
	addLintFlags(watchCmd)
	watchCmd.Flags().Duration("debounce", watch.DefaultOptions().Debounce, "quiet period before a batch of changes is linted")
	watchCmd.Flags().Bool("clear", false, "clear the screen before each report")
}

func runWatch(cmd *cobra.Command, args []string) error {
	s, err := loadSetup(cmd, false)
	if err != nil {
		return err
	}
	// прогресс-UI мешает выводу отчётов
	s.uiMode = uiModeOff
	debounce, err := cmd.Flags().GetDuration("debounce")
	if err != nil {
		return err
	}
	clearScreen, err := cmd.Flags().GetBool("clear")
	if err != nil {
		return err
	}

	roots := make([]string, 0, max(len(args), 1))
	for _, arg := range args {
		abs, err := filepath.Abs(arg)
		if err != nil {
			return err
		}
		roots = append(roots, abs)
	}
	if len(roots) == 0 {
		roots = append(roots, s.cfg.Root)
	}
	matcher := lint.NewGlobMatcher(s.cfg.Glob, s.cfg.Exclude)

	opts := watch.DefaultOptions()
	opts.Debounce = debounce
	opts.Match = func(path string) bool {
		rel, err := filepath.Rel(s.cfg.Root, path)
		if err != nil {
			return false
		}
		return matcher.Match(filepath.ToSlash(rel))
	}
	w, err := watch.New(roots, opts)
	if err != nil {
		return err
	}
	defer w.Close()

	// первый полный прогон; офенсы не прерывают наблюдение
	if err := lintAndReport(cmd, s, args); err != nil && !isExitError(err) {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Watching %d director%s for changes...\n", len(roots), pluralSuffix(len(roots), "y", "ies"))

	err = w.Run(cmd.Context(), func(ctx context.Context, changes []watch.Change) error {
		var paths []string
		for _, c := range changes {
			if c.Op == watch.OpRemove || c.Op == watch.OpRename {
				continue
			}
			if _, err := os.Stat(c.Path); err == nil {
				paths = append(paths, c.Path)
			}
		}
		if len(paths) == 0 {
			return nil
		}
		if clearScreen {
			fmt.Fprint(cmd.OutOrStdout(), "\033[H\033[2J")
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "[%s] %d file(s) changed\n", time.Now().Format(time.TimeOnly), len(paths))

		fileSet := source.NewFileSetWithBase(s.cfg.Root)
		results, err := driver.LintPaths(ctx, fileSet, s.plan, paths, s.opts)
		if err != nil {
			return err
		}
		return writeReport(cmd, cmd.OutOrStdout(), fileSet, s, results)
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func isExitError(err error) bool {
	var ee *exitError
	return errors.As(err, &ee) && ee.msg == ""
}

func pluralSuffix(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
