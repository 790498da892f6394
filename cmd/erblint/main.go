package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"erblint/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "erblint [flags] [path...]",
	Short: "Lint and autocorrect ERB templates",
	Long: `erblint checks ERB/HTML templates against a configurable set of linters
and can rewrite the offending code in place. Without a subcommand it lints the
given paths (or the configured glob from the project root).`,
	SilenceUsage:      true,
	Args:              cobra.ArbitraryArgs,
	PersistentPreRunE: preRun,
	RunE:              runLint,
}

// traceCleanup is set by preRun and run once after the command returns.
var traceCleanup = func() {}

// exitError carries a process exit code; an empty message prints nothing.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }

func init() {
	// Устанавливаем версию для автоматического флага --version
	rootCmd.Version = version.Version

	rootCmd.AddCommand(lintCmd)
	rootCmd.AddCommand(fixCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(lintersCmd)
	rootCmd.AddCommand(lspCmd)

	// Глобальные флаги
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: nearest .erb-lint.yml or erblint.toml)")
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.Bool("quiet", false, "suppress non-essential output")
	pf.Bool("timings", false, "show per-linter timing information")
	pf.String("trace", "", "write trace events to a file (\"-\" for stderr)")
	pf.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	pf.String("trace-mode", "stream", "trace storage (stream|ring|both)")
	pf.Int("trace-ring-size", 4096, "ring buffer capacity for --trace-mode ring|both")
	pf.Duration("trace-heartbeat", 0, "emit heartbeat events at this interval (0 disables)")
	pf.String("cpu-profile", "", "write a CPU profile to this file")
	pf.String("mem-profile", "", "write a heap profile to this file on exit")
	pf.String("runtime-trace", "", "write a Go runtime trace to this file")
	addLintFlags(rootCmd)
}

// main executes the root command with a context cancelled on SIGINT/SIGTERM
// and maps errors to exit codes.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	traceCleanup()
	stop()

	if err != nil {
		var ee *exitError
		if errors.As(err, &ee) {
			if ee.msg != "" {
				fmt.Fprintln(os.Stderr, "erblint:", ee.msg)
			}
			os.Exit(ee.code)
		}
		fmt.Fprintln(os.Stderr, "erblint:", err)
		os.Exit(exitFailure)
	}
}

// Exit codes.
const (
	exitOffenses = 1
	exitFailure  = 2
)

func preRun(cmd *cobra.Command, _ []string) error {
	cmd.SilenceErrors = true
	stopProfiling, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	cleanup, err := setupTracing(cmd)
	if err != nil {
		stopProfiling()
		return err
	}
	traceCleanup = func() {
		cleanup()
		stopProfiling()
	}
	return nil
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// useColor resolves --color for out; auto needs a terminal and no NO_COLOR.
func useColor(cmd *cobra.Command, out io.Writer) (bool, error) {
	value, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false, err
	}
	switch value {
	case "on":
		return true, nil
	case "off":
		return false, nil
	case "auto", "":
		f, ok := out.(*os.File)
		return ok && isTerminal(f) && os.Getenv("NO_COLOR") == "", nil
	}
	return false, fmt.Errorf("invalid --color value %q (expected auto|on|off)", value)
}
