package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const (
	maxSeedBytes = 64 << 10 // 64 KiB — ограничение для тестового корпуса
	maxFuzzInput = 1 << 16
)

// templateSeeds covers the constructs each linter looks at.
var templateSeeds = []string{
	"",
	"<%",
	"%>",
	"<%= foo %>\n",
	"<%=  foo%><%-bar-%><% baz =%>",
	"<%# comment %><%% literal %>",
	"<%\n  foo\n    %>\n",
	"  <%\n    if x\n%>",
	"<script type=\"text/yavascript\">alert(1)</script>",
	"<script>var a = '<%= a %>';</script>",
	"<script type=\"text/html\"><div class=\"foo-1 bar\"></div></script>",
	"<div class=\"a <%= b %>\" data-x='y' disabled>Hello world</div>",
	"<div class=\"unterminated>",
	"<!DOCTYPE html><!-- note --><p>x</p>",
	"line 1\n\n\n\nline 2  \n\n\n",
	"<p>Good Morning, Émile!</p>\r\n",
	"\xEF\xBB\xBF<p>bom</p>",
	"<a href=<%= url %>>link</a>",
	"</>< >",
}

func addCorpusSeeds(f *testing.F) {
	addTestdataSeeds(f)
	for _, seed := range templateSeeds {
		f.Add([]byte(seed))
	}
}

func addTestdataSeeds(f *testing.F) {
	root := filepath.Join("..", "..", "testdata")
	if _, err := os.Stat(root); err != nil {
		return
	}
	// проходим по дереву testdata, добавляем все шаблоны *.erb
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() {
			return nil
		}
		if !strings.HasSuffix(path, ".erb") {
			return nil
		}
		// #nosec G304 -- path comes from repository testdata walk
		src, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		f.Add(clampSeed(src))
		return nil
	})
	if err != nil {
		return
	}
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}

func clampInput(input []byte) []byte {
	if len(input) > maxFuzzInput {
		return append([]byte(nil), input[:maxFuzzInput]...)
	}
	return append([]byte(nil), input...)
}
