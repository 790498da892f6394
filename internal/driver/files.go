package driver

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"erblint/internal/lint"
)

// DefaultGlob selects ERB templates when walking directories.
const DefaultGlob = "**/*.erb"

// ErrNoFiles is returned when no template matched the given roots.
var ErrNoFiles = errors.New("no files found to lint")

// ListFiles expands roots into a sorted, de-duplicated file list. Directories are
// walked and filtered through include and exclude; files named explicitly are
// only subject to exclude. Paths are matched relative to baseDir.
func ListFiles(roots []string, baseDir string, include, exclude []string) ([]string, error) {
	if len(include) == 0 {
		include = []string{DefaultGlob}
	}
	walkMatcher := lint.NewGlobMatcher(include, exclude)
	explicitMatcher := lint.NewGlobMatcher(nil, exclude)

	seen := make(map[string]struct{})
	var files []string
	add := func(path string) {
		clean := filepath.Clean(path)
		if _, ok := seen[clean]; ok {
			return
		}
		seen[clean] = struct{}{}
		files = append(files, clean)
	}

	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", root, err)
		}
		if !info.IsDir() {
			if explicitMatcher.Match(relTo(baseDir, root)) {
				add(root)
			}
			continue
		}
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			rel := relTo(baseDir, path)
			if d.IsDir() {
				// скрытые каталоги (.git, .bundle) и исключённые поддеревья не обходим
				if path != root && (strings.HasPrefix(d.Name(), ".") || explicitMatcher.Excluded(rel+"/")) {
					return filepath.SkipDir
				}
				return nil
			}
			if walkMatcher.Match(rel) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	// Сортируем для детерминированного порядка
	sort.Strings(files)
	if len(files) == 0 {
		return nil, ErrNoFiles
	}
	return files, nil
}

func relTo(baseDir, path string) string {
	if baseDir == "" {
		return filepath.ToSlash(path)
	}
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return filepath.ToSlash(path)
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(absBase, absPath)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
