package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"erblint/internal/config"
	"erblint/internal/driver"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the lint result cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached lint result",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cache, err := openConfiguredCache(cmd)
		if err != nil {
			return err
		}
		if err := cache.Clear(); err != nil {
			return fmt.Errorf("clear cache: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s\n", cache.Dir())
		return nil
	},
}

var cacheDirCmd = &cobra.Command{
	Use:   "dir",
	Short: "Print the cache directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cache, err := openConfiguredCache(cmd)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), cache.Dir())
		return nil
	},
}

func init() {
	cacheCmd.PersistentFlags().String("cache-dir", "", "override the cache directory")
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheDirCmd)
}

// openConfiguredCache resolves the cache dir like lint does: flag, config, default.
func openConfiguredCache(cmd *cobra.Command) (*driver.Cache, error) {
	dir, err := cmd.Flags().GetString("cache-dir")
	if err != nil {
		return nil, err
	}
	if dir == "" {
		cfgPath, err := cmd.Root().PersistentFlags().GetString("config")
		if err != nil {
			return nil, err
		}
		var cfg *config.Config
		if cfgPath != "" {
			cfg, err = config.Load(cfgPath)
		} else {
			cfg, err = config.Discover(".")
		}
		if err != nil {
			return nil, err
		}
		dir = cfg.CacheDir
	}
	if dir == "" {
		if dir, err = driver.DefaultCacheDir("erblint"); err != nil {
			return nil, err
		}
	}
	return driver.OpenCache(dir)
}
