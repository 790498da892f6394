package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"erblint/internal/prof"
)

// setupProfiling starts the profilers named by the persistent flags. The
// returned stop function is safe to call more than once.
func setupProfiling(cmd *cobra.Command) (func(), error) {
	pf := cmd.Root().PersistentFlags()
	var (
		opts prof.Options
		err  error
	)
	if opts.CPU, err = pf.GetString("cpu-profile"); err != nil {
		return nil, err
	}
	if opts.Mem, err = pf.GetString("mem-profile"); err != nil {
		return nil, err
	}
	if opts.Trace, err = pf.GetString("runtime-trace"); err != nil {
		return nil, err
	}
	if !opts.Enabled() {
		return func() {}, nil
	}

	session, err := prof.Start(opts)
	if err != nil {
		return nil, err
	}
	return func() {
		if err := session.Stop(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "erblint: profiling: %v\n", err)
		}
	}, nil
}
