package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDedup(t *testing.T) {
	now := time.Now()
	got := Dedup([]Change{
		{Path: "b.erb", Op: OpWrite, Time: now},
		{Path: "a.erb", Op: OpCreate, Time: now},
		{Path: "a.erb", Op: OpWrite, Time: now},
		{Path: "b.erb", Op: OpRemove, Time: now},
	})
	if len(got) != 2 {
		t.Fatalf("Dedup = %+v", got)
	}
	if got[0].Path != "a.erb" || got[0].Op != OpCreate {
		t.Errorf("a.erb = %+v, want create", got[0])
	}
	if got[1].Path != "b.erb" || got[1].Op != OpRemove {
		t.Errorf("b.erb = %+v, want remove", got[1])
	}
}

func TestWatcherDeliversMatchingChanges(t *testing.T) {
	dir := t.TempDir()
	w, err := New([]string{dir}, Options{
		Debounce: 50 * time.Millisecond,
		Match:    func(path string) bool { return strings.HasSuffix(path, ".erb") },
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	batches := make(chan []Change, 4)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(_ context.Context, changes []Change) error {
			batches <- changes
			return nil
		})
	}()

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	target := filepath.Join(dir, "index.html.erb")
	if err := os.WriteFile(target, []byte("<p></p>\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	select {
	case changes := <-batches:
		for _, c := range changes {
			if c.Path != target {
				t.Errorf("unexpected change %+v", c)
			}
		}
		if len(changes) == 0 {
			t.Error("empty batch")
		}
	case <-ctx.Done():
		t.Fatal("no batch delivered")
	}

	cancel()
	if err := <-done; err != context.Canceled {
		t.Errorf("Run returned %v, want context.Canceled", err)
	}
}

func TestOpString(t *testing.T) {
	if OpRename.String() != "rename" || Op(42).String() != "unknown" {
		t.Error("unexpected Op names")
	}
}
