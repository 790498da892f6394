package fuzztests

import (
	"testing"
	"time"

	"erblint/internal/markup"
	"erblint/internal/source"
	"erblint/internal/testkit"
)

// parseTimeout is the maximum time allowed for parsing a single input.
// If parsing takes longer, it indicates a potential infinite loop.
const parseTimeout = 5 * time.Second

func FuzzMarkupParse(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampInput(input)

		fs := source.NewFileSet()
		file := fs.Get(fs.AddVirtual("fuzz.html.erb", input))

		done := make(chan *markup.Tree, 1)
		go func() {
			done <- markup.Parse(file)
		}()

		select {
		case tree := <-done:
			if err := testkit.CheckTreeInvariants(tree); err != nil {
				t.Fatalf("invariants: %v\ninput: %q", err, input)
			}
		case <-time.After(parseTimeout):
			t.Fatalf("parser timed out after %v on input: %q", parseTimeout, input)
		}
	})
}
