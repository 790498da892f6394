package lsp

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"erblint/internal/config"
	"erblint/internal/diag"
	"erblint/internal/driver"
	"erblint/internal/fix"
	"erblint/internal/lint"
	"erblint/internal/linters"
	"erblint/internal/source"
)

// resolvedConfig is a loaded config with its plan, cached per directory.
type resolvedConfig struct {
	cfg     *config.Config
	plan    *lint.Plan
	exclude *lint.GlobMatcher
	err     error
}

// analysis is the lint result for one revision of an open document.
type analysis struct {
	uri      string
	state    docState
	text     string
	path     string // relative to the config root
	fileSet  *source.FileSet
	fileID   source.FileID
	file     *source.File
	plan     *lint.Plan
	engine   *driver.Engine
	offenses []diag.Offense
	excluded bool
}

func (s *Server) resolveConfig(docPath string) *resolvedConfig {
	s.mu.Lock()
	fixed := s.configPath
	dir := s.workspaceRoot
	reg := s.registry
	s.mu.Unlock()
	if docPath != "" {
		dir = filepath.Dir(docPath)
	}
	if dir == "" {
		if wd, err := os.Getwd(); err == nil {
			dir = wd
		}
	}
	key := dir
	if fixed != "" {
		key = "=" + fixed
	}

	s.mu.Lock()
	rc, ok := s.configs[key]
	s.mu.Unlock()
	if ok {
		return rc
	}

	rc = &resolvedConfig{}
	if fixed != "" {
		rc.cfg, rc.err = config.Load(fixed)
	} else {
		rc.cfg, rc.err = config.Discover(dir)
	}
	if rc.err == nil {
		if reg == nil {
			reg = linters.Default()
		}
		rc.plan, rc.err = rc.cfg.Plan(reg)
		rc.exclude = lint.NewGlobMatcher(nil, rc.cfg.Exclude)
	}

	s.mu.Lock()
	s.configs[key] = rc
	s.mu.Unlock()
	return rc
}

func (s *Server) invalidateConfigs() {
	s.mu.Lock()
	s.configs = make(map[string]*resolvedConfig)
	s.results = make(map[string]*analysis)
	s.mu.Unlock()
}

func (s *Server) analyze(ctx context.Context, uri string, doc openDoc) (*analysis, error) {
	docPath := uriToPath(uri)
	rc := s.resolveConfig(docPath)
	if rc.err != nil {
		return nil, rc.err
	}
	name := docPath
	if name == "" {
		name = filepath.Join(rc.cfg.Root, "untitled.html.erb")
	}

	fileSet := source.NewFileSetWithBase(rc.cfg.Root)
	id := fileSet.AddNormalized(name, []byte(doc.text))
	file := fileSet.Get(id)
	a := &analysis{
		uri:     uri,
		state:   doc.state,
		text:    doc.text,
		path:    file.FormatPath("relative", rc.cfg.Root),
		fileSet: fileSet,
		fileID:  id,
		file:    file,
		plan:    rc.plan,
	}
	if rc.exclude.Excluded(a.path) {
		a.excluded = true
		return a, nil
	}

	eng, err := driver.NewEngine(rc.plan, a.path)
	if err != nil {
		return nil, err
	}
	if err := eng.Run(ctx, lint.NewDocument(file)); err != nil {
		return nil, err
	}
	for _, e := range eng.Errors() {
		s.logf("%s: %v", a.path, e)
	}
	a.engine = eng
	a.offenses = eng.Offenses()
	return a, nil
}

// currentAnalysis returns the analysis of the open document's current
// revision, linting it now when the cached one is stale. A closed document
// yields nil.
func (s *Server) currentAnalysis(ctx context.Context, uri string) (*analysis, error) {
	s.mu.Lock()
	doc, ok := s.docs[uri]
	if !ok {
		s.mu.Unlock()
		return nil, nil
	}
	snap := *doc
	cached := s.results[uri]
	s.mu.Unlock()
	if cached != nil && cached.state == snap.state {
		return cached, nil
	}

	a, err := s.analyze(ctx, uri, snap)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	if cur, ok := s.docs[uri]; ok && cur.state == snap.state {
		s.results[uri] = a
	}
	s.mu.Unlock()
	return a, nil
}

func lspSeverity(sev diag.Severity) int {
	switch sev {
	case diag.SevError:
		return severityError
	case diag.SevWarning:
		return severityWarning
	default:
		return severityInformation
	}
}

func (a *analysis) diagnostic(o diag.Offense) lspDiagnostic {
	return lspDiagnostic{
		Range:    rangeForOffense(a.file, o.Range),
		Severity: lspSeverity(o.Severity),
		Code:     o.Linter,
		Source:   "erblint",
		Message:  o.Message,
	}
}

func (a *analysis) diagnostics(limit int) []lspDiagnostic {
	if a == nil || a.excluded {
		return nil
	}
	bag := diag.NewBag(limit)
	for _, o := range a.offenses {
		if !bag.Add(o) {
			break
		}
	}
	bag.Dedup()
	bag.Sort()
	out := make([]lspDiagnostic, 0, bag.Len())
	for _, o := range bag.Items() {
		out = append(out, a.diagnostic(o))
	}
	return out
}

// configDiagnostic reports a config or plan failure on the first line.
func configDiagnostic(err error) lspDiagnostic {
	return lspDiagnostic{
		Severity: severityError,
		Source:   "erblint",
		Message:  fmt.Sprintf("erblint is not running: %v", err),
	}
}

// fixAll corrects the document until it is stable and returns the new text.
func (a *analysis) fixAll(ctx context.Context) (string, bool, error) {
	if a.excluded {
		return "", false, nil
	}
	res, err := driver.AutocorrectFile(ctx, a.fileSet, a.plan, a.fileID, driver.Options{})
	if err != nil {
		return "", false, err
	}
	if !res.Changed {
		return "", false, nil
	}
	return string(res.Output), true, nil
}

// fixOne applies the correction of the offense at index idx only.
func (a *analysis) fixOne(idx int) (string, bool, error) {
	res, err := a.engine.Autocorrect(fix.Options{Mode: fix.ModeSelected, Indices: []int{idx}})
	if errors.Is(err, fix.ErrNoCorrections) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	if !res.Changed() {
		return "", false, nil
	}
	out, err := fix.Restore(a.file, res.Edits)
	if err != nil {
		return "", false, err
	}
	return string(out), true, nil
}

func kindAllowed(only []string, kind string) bool {
	if len(only) == 0 {
		return true
	}
	for _, o := range only {
		if kind == o || strings.HasPrefix(kind, o+".") {
			return true
		}
	}
	return false
}
