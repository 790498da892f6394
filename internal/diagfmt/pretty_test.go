package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"erblint/internal/diag"
	"erblint/internal/source"
)

const trailingMsg = "Extra whitespace detected at end of line."

// sampleReport has one trailing whitespace offense on line 2, columns 5-6.
func sampleReport(t *testing.T, path string) *Report {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual(path, []byte("<p>\n\tfoo  \n</p>\n"))
	f := fs.Get(id)
	return &Report{Files: []FileReport{{
		File:     f,
		Offenses: []diag.Offense{diag.New("TrailingWhitespace", source.MustRange(f, 8, 10), trailingMsg)},
	}}}
}

func TestPrettyUnderlinesRange(t *testing.T) {
	var buf bytes.Buffer
	if err := Pretty(&buf, sampleReport(t, "a.html.erb"), PrettyOpts{}); err != nil {
		t.Fatalf("Pretty: %v", err)
	}
	want := strings.Join([]string{
		"a.html.erb:2:5: error TrailingWhitespace: " + trailingMsg,
		"2 |     foo  ",
		"  | " + strings.Repeat(" ", 7) + "^~",
		"1 error found in 1 file.",
		"",
	}, "\n")
	if got := buf.String(); got != want {
		t.Errorf("output mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestPrettyContextAndWideRunes(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("wide.erb", []byte("<div>\n日本 x  \n"))
	f := fs.Get(id)
	r := &Report{Files: []FileReport{{
		File:     f,
		Offenses: []diag.Offense{diag.New("TrailingWhitespace", source.MustRange(f, 14, 16), trailingMsg)},
	}}}

	var buf bytes.Buffer
	if err := Pretty(&buf, r, PrettyOpts{Context: 3}); err != nil {
		t.Fatalf("Pretty: %v", err)
	}
	lines := strings.Split(buf.String(), "\n")
	if len(lines) < 4 {
		t.Fatalf("too few lines:\n%s", buf.String())
	}
	if lines[1] != "1 | <div>" || lines[2] != "2 | 日本 x  " {
		t.Errorf("context lines = %q, %q", lines[1], lines[2])
	}
	// "日本 x" занимает 6 колонок
	if want := "  | " + strings.Repeat(" ", 6) + "^~"; lines[3] != want {
		t.Errorf("caret line = %q, want %q", lines[3], want)
	}
}

func TestPrettySummaries(t *testing.T) {
	tests := []struct {
		name string
		r    *Report
		want string
	}{
		{"clean", &Report{Files: []FileReport{{Path: "a.erb"}, {Path: "b.erb"}}}, "No errors were found in 2 files.\n"},
		{"all corrected", &Report{Files: []FileReport{{Path: "a.erb", Corrected: 3}}}, "3 errors corrected in 1 file.\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Pretty(&buf, tt.r, PrettyOpts{}); err != nil {
				t.Fatalf("Pretty: %v", err)
			}
			if buf.String() != tt.want {
				t.Errorf("got %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

// TestPathModes проверяет различные режимы форматирования путей
func TestPathModes(t *testing.T) {
	tests := []struct {
		name     string
		mode     PathMode
		path     string
		contains string
	}{
		{"relative", PathModeRelative, "/home/user/project/app/views/a.html.erb", "app/views/a.html.erb:2:5"},
		{"basename", PathModeBasename, "/home/user/project/app/views/a.html.erb", "\na.html.erb:2:5"},
		{"auto keeps the reported path", PathModeAuto, "app/a.html.erb", "app/a.html.erb:2:5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			buf.WriteByte('\n')
			if err := Pretty(&buf, sampleReport(t, tt.path), PrettyOpts{PathMode: tt.mode, BaseDir: "/home/user/project"}); err != nil {
				t.Fatalf("Pretty: %v", err)
			}
			if !strings.Contains(buf.String(), tt.contains) {
				t.Errorf("expected %q in output:\n%s", tt.contains, buf.String())
			}
		})
	}
}

func TestCompactAndShort(t *testing.T) {
	r := sampleReport(t, "a.html.erb")

	var buf bytes.Buffer
	if err := Compact(&buf, r, PathModeAuto, ""); err != nil {
		t.Fatalf("Compact: %v", err)
	}
	if want := "a.html.erb:2:5: " + trailingMsg + "\n"; buf.String() != want {
		t.Errorf("compact = %q, want %q", buf.String(), want)
	}

	buf.Reset()
	if err := Short(&buf, r, ""); err != nil {
		t.Fatalf("Short: %v", err)
	}
	if want := "error TrailingWhitespace a.html.erb:2:5 " + trailingMsg + "\n"; buf.String() != want {
		t.Errorf("short = %q, want %q", buf.String(), want)
	}
}

func TestParseFormat(t *testing.T) {
	for _, f := range Formats {
		got, err := ParseFormat(strings.ToUpper(string(f)))
		if err != nil || got != f {
			t.Errorf("ParseFormat(%q) = %q, %v", f, got, err)
		}
	}
	if got, _ := ParseFormat(""); got != FormatPretty {
		t.Errorf("default format = %q", got)
	}
	if _, err := ParseFormat("junit"); err == nil {
		t.Error("expected error for unknown format")
	}
}
