package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"erblint/internal/config"
	"erblint/internal/linters"
)

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Write a starter .erb-lint.yml",
	Long: `Write a .erb-lint.yml listing every available linter with its default options.
If [dir] is omitted the current directory is used. An existing config is kept
unless --force is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	initCmd.Flags().Bool("force", false, "overwrite an existing config")
}

func runInit(cmd *cobra.Command, args []string) error {
	target := "."
	if len(args) == 1 {
		target = args[0]
	}
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if st, err := os.Stat(target); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		if err := os.MkdirAll(target, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %q: %w", target, err)
		}
	} else if !st.IsDir() {
		return fmt.Errorf("%q is not a directory", target)
	}

	path := filepath.Join(target, config.YAMLName)
	if !force {
		for _, name := range []string{config.YAMLName, config.TOMLName} {
			existing := filepath.Join(target, name)
			if _, err := os.Stat(existing); err == nil {
				return fmt.Errorf("already initialized: %s exists (use --force to overwrite)", existing)
			}
		}
	}

	data, err := config.Render(linters.Default())
	if err != nil {
		return err
	}
	// #nosec G306 -- config files are meant to be world-readable
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", path)
	return nil
}
