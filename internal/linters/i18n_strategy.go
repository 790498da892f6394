package linters

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"unicode"

	"erblint/internal/lint"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

const maxKeyLength = 40

// i18nStrategy looks strings up in a YAML locale file and emits t("key") calls.
// Strings missing from the file get a key derived from the text under Scope.
type i18nStrategy struct {
	loadPath string
	scope    string
	locale   string

	once   sync.Once
	byText map[string]string
	err    error
}

func newI18nStrategy(opts CorrectorOptions) correctionStrategy {
	locale := opts.Locale
	if locale == "" {
		locale = "en"
	}
	return &i18nStrategy{
		loadPath: opts.I18nLoadPath,
		scope:    opts.Scope,
		locale:   locale,
	}
}

func (s *i18nStrategy) Expression(text string) (string, error) {
	key, err := s.Key(text)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("t(%q)", key), nil
}

// Key returns the translation key for text.
func (s *i18nStrategy) Key(text string) (string, error) {
	s.once.Do(s.load)
	if s.err != nil {
		return "", s.err
	}
	if key, ok := s.byText[text]; ok {
		return key, nil
	}
	if s.scope == "" {
		return slugKey(text), nil
	}
	return s.scope + "." + slugKey(text), nil
}

func (s *i18nStrategy) load() {
	if s.loadPath == "" {
		s.err = fmt.Errorf("%w: corrector.i18n_load_path is not set", lint.ErrMissingDependency)
		return
	}
	// #nosec G304 -- path comes from the project config
	data, err := os.ReadFile(s.loadPath)
	if err != nil {
		s.err = fmt.Errorf("%w: %w", lint.ErrMissingDependency, err)
		return
	}
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		s.err = fmt.Errorf("%w: %s: %w", lint.ErrMissingDependency, s.loadPath, err)
		return
	}
	root := any(doc)
	if scoped, ok := doc[s.locale]; ok {
		root = scoped
	}

	flat := make(map[string]string)
	flatten("", root, flat)
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	s.byText = make(map[string]string, len(flat))
	for _, k := range keys {
		if _, seen := s.byText[flat[k]]; !seen {
			s.byText[flat[k]] = k
		}
	}
}

func flatten(prefix string, node any, out map[string]string) {
	switch v := node.(type) {
	case map[string]any:
		for k, child := range v {
			key := k
			if prefix != "" {
				key = prefix + "." + k
			}
			flatten(key, child, out)
		}
	case string:
		if prefix != "" {
			out[prefix] = v
		}
	}
}

// slugKey derives a translation key: accents stripped, lower case, runs of other
// characters collapsed to '_'.
func slugKey(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(t, text)
	if err != nil {
		plain = text
	}

	var b strings.Builder
	underscore := false
	for _, r := range strings.ToLower(plain) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			underscore = false
			continue
		}
		if !underscore && b.Len() > 0 {
			b.WriteByte('_')
			underscore = true
		}
	}
	key := strings.TrimRight(b.String(), "_")
	if len(key) > maxKeyLength {
		key = strings.TrimRight(key[:maxKeyLength], "_")
	}
	if key == "" {
		return "text"
	}
	return key
}
