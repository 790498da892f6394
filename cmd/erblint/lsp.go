package main

import (
	"errors"

	"github.com/spf13/cobra"

	"erblint/internal/linters"
	"erblint/internal/lsp"
)

var lspCmd = &cobra.Command{
	Use:   "lsp",
	Short: "Run the erblint language server over stdio",
	Long: `Serve diagnostics, quick fixes and formatting for ERB templates to an editor
speaking the Language Server Protocol on stdin/stdout.`,
	Args: cobra.NoArgs,
	RunE: runLSP,
}

func init() {
	lspCmd.Flags().Duration("debounce", 0, "delay before re-linting an edited document (default 200ms)")
	lspCmd.Flags().Int("max-diagnostics", 0, "maximum diagnostics published per document (default 500)")
}

func runLSP(cmd *cobra.Command, _ []string) error {
	debounce, err := cmd.Flags().GetDuration("debounce")
	if err != nil {
		return err
	}
	maxDiags, err := cmd.Flags().GetInt("max-diagnostics")
	if err != nil {
		return err
	}
	cfgPath, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return err
	}

	server := lsp.NewServer(cmd.InOrStdin(), cmd.OutOrStdout(), lsp.ServerOptions{
		Debounce:       debounce,
		Registry:       linters.Default(),
		ConfigPath:     cfgPath,
		MaxDiagnostics: maxDiags,
		Log:            cmd.ErrOrStderr(),
	})
	err = server.Run(cmd.Context())
	switch {
	case err == nil, errors.Is(err, lsp.ErrExit):
		return nil
	case errors.Is(err, lsp.ErrExitWithoutShutdown):
		// протокол требует код 1
		return &exitError{code: 1}
	default:
		return err
	}
}
