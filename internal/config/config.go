// Package config loads the project configuration from .erb-lint.yml or erblint.toml.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"erblint/internal/lint"
)

// Config file names, in lookup priority within one directory.
const (
	YAMLName = ".erb-lint.yml"
	TOMLName = "erblint.toml"
)

// DefaultGlob selects templates when no glob is configured.
const DefaultGlob = "**/*.erb"

var (
	// ErrUnknownKey is returned for top-level keys the config format does not define.
	ErrUnknownKey = errors.New("unknown config key")
	// ErrUnsupportedFormat is returned for config files that are neither YAML nor TOML.
	ErrUnsupportedFormat = errors.New("unsupported config format")
)

// Config is the resolved project configuration.
type Config struct {
	// Path is the file the config was loaded from; empty for built-in defaults.
	Path string
	// Root is the directory globs and excludes are relative to.
	Root string

	EnableDefaultLinters bool
	Glob                 []string
	Exclude              []string
	CacheDir             string
	Linters              map[string]map[string]any
}

// fileConfig mirrors the on-disk layout shared by both formats.
type fileConfig struct {
	EnableDefaultLinters *bool                     `yaml:"enable_default_linters" toml:"enable_default_linters"`
	Glob                 any                       `yaml:"glob" toml:"glob"`
	Exclude              []string                  `yaml:"exclude" toml:"exclude" validate:"dive,required"`
	CacheDir             string                    `yaml:"cache_dir" toml:"cache_dir"`
	Linters              map[string]map[string]any `yaml:"linters" toml:"linters" validate:"dive,keys,required,endkeys"`
}

var validate = validator.New()

// Default returns the built-in configuration rooted at root.
func Default(root string) *Config {
	return &Config{
		Root:                 root,
		EnableDefaultLinters: true,
		Glob:                 []string{DefaultGlob},
		Linters:              map[string]map[string]any{},
	}
}

// Find walks up from startDir looking for a config file.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		for _, name := range []string{YAMLName, TOMLName} {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, true, nil
			} else if !errors.Is(err, os.ErrNotExist) {
				return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Discover loads the nearest config above startDir, or the defaults rooted at
// startDir when there is none.
func Discover(startDir string) (*Config, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return nil, err
	}
	if !ok {
		root, err := filepath.Abs(startDir)
		if err != nil {
			return nil, err
		}
		return Default(root), nil
	}
	return Load(path)
}

// Load reads a config file; the format is chosen by extension.
func Load(path string) (*Config, error) {
	// #nosec G304 -- path is provided by the user or found by Find
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var fc fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		err = decodeYAML(data, &fc)
	case ".toml":
		err = decodeTOML(data, &fc)
	default:
		err = fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := validate.Struct(&fc); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	root, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	cfg := Default(root)
	cfg.Path = path
	if fc.EnableDefaultLinters != nil {
		cfg.EnableDefaultLinters = *fc.EnableDefaultLinters
	}
	globs, err := stringOrList(fc.Glob)
	if err != nil {
		return nil, fmt.Errorf("%s: glob: %w", path, err)
	}
	if len(globs) > 0 {
		cfg.Glob = globs
	}
	cfg.Exclude = fc.Exclude
	cfg.CacheDir = fc.CacheDir
	if cfg.CacheDir != "" && !filepath.IsAbs(cfg.CacheDir) {
		cfg.CacheDir = filepath.Join(root, cfg.CacheDir)
	}
	if fc.Linters != nil {
		cfg.Linters = fc.Linters
	}
	return cfg, nil
}

func decodeYAML(data []byte, out *fileConfig) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		if strings.Contains(err.Error(), "not found in type") {
			return fmt.Errorf("%w: %w", ErrUnknownKey, err)
		}
		return err
	}
	return nil
}

func decodeTOML(data []byte, out *fileConfig) error {
	meta, err := toml.Decode(string(data), out)
	if err != nil {
		return fmt.Errorf("failed to parse TOML: %w", err)
	}
	var keys []string
	for _, k := range meta.Undecoded() {
		// содержимое секций линтеров проверяет lint.BuildPlan
		if len(k) > 1 && k[0] == "linters" {
			continue
		}
		keys = append(keys, k.String())
	}
	if len(keys) > 0 {
		sort.Strings(keys)
		return fmt.Errorf("%w: %s", ErrUnknownKey, strings.Join(keys, ", "))
	}
	return nil
}

func stringOrList(v any) ([]string, error) {
	switch v := v.(type) {
	case nil:
		return nil, nil
	case string:
		return []string{v}, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("expected a string, got %T", item)
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, fmt.Errorf("expected a string or a list of strings, got %T", v)
}

// Plan validates the linter sections against reg.
func (c *Config) Plan(reg *lint.Registry) (*lint.Plan, error) {
	plan, err := lint.BuildPlan(reg, c.Linters, c.EnableDefaultLinters)
	if err != nil && c.Path != "" {
		return nil, fmt.Errorf("%s: %w", c.Path, err)
	}
	return plan, err
}

// Only restricts the config to the named linters, keeping their options.
func (c *Config) Only(names []string) {
	linters := make(map[string]map[string]any, len(names))
	for _, name := range names {
		section := make(map[string]any, len(c.Linters[name])+1)
		for k, v := range c.Linters[name] {
			section[k] = v
		}
		section["enabled"] = true
		linters[name] = section
	}
	c.Linters = linters
	c.EnableDefaultLinters = false
}

// EnableAll turns on every registered linter, keeping configured options.
func (c *Config) EnableAll(reg *lint.Registry) {
	names := make([]string, 0, len(reg.Entries()))
	for _, e := range reg.Entries() {
		names = append(names, e.Name)
	}
	c.Only(names)
}
