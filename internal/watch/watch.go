// Package watch reports batches of template changes under a set of roots.
package watch

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Op is the kind of a file change.
type Op int

const (
	OpCreate Op = iota
	OpWrite
	OpRemove
	OpRename
)

func (op Op) String() string {
	switch op {
	case OpCreate:
		return "create"
	case OpWrite:
		return "write"
	case OpRemove:
		return "remove"
	case OpRename:
		return "rename"
	default:
		return "unknown"
	}
}

// Change is one file event after debouncing.
type Change struct {
	Path string
	Op   Op
	Time time.Time
}

// Handler receives debounced batches; an error stops Run.
type Handler func(ctx context.Context, changes []Change) error

// Options tune the watcher.
type Options struct {
	// Debounce is the quiet period that closes a batch.
	Debounce time.Duration
	// Ignore lists directory or file base names (or filepath.Match patterns) to skip.
	Ignore []string
	// Match filters files; nil accepts everything not ignored.
	Match func(path string) bool
}

// DefaultOptions returns the settings used by `erblint watch`.
func DefaultOptions() Options {
	return Options{
		Debounce: 150 * time.Millisecond,
		Ignore:   []string{".git", "node_modules", "tmp", "log", "*.swp", "*~"},
	}
}

// Watcher watches directories recursively.
type Watcher struct {
	fsw  *fsnotify.Watcher
	opts Options
}

// New starts watching roots; directories are added recursively.
func New(roots []string, opts Options) (*Watcher, error) {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultOptions().Debounce
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{fsw: fsw, opts: opts}
	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			_ = fsw.Close()
			return nil, err
		}
		if !info.IsDir() {
			// отдельный файл: следим за его каталогом
			root = filepath.Dir(root)
		}
		if err := w.addRecursive(root); err != nil {
			_ = fsw.Close()
			return nil, err
		}
	}
	return w, nil
}

// Close releases the underlying watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.ignored(path) {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

func (w *Watcher) ignored(path string) bool {
	base := filepath.Base(path)
	for _, pattern := range w.opts.Ignore {
		if base == pattern {
			return true
		}
		if ok, _ := filepath.Match(pattern, base); ok {
			return true
		}
	}
	return false
}

// Run delivers batches to handle until ctx is cancelled or handle fails.
func (w *Watcher) Run(ctx context.Context, handle Handler) error {
	var (
		batch  []Change
		timer  *time.Timer
		timerC <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			change, keep := w.convert(ev)
			if !keep {
				continue
			}
			batch = append(batch, change)
			if timer == nil {
				timer = time.NewTimer(w.opts.Debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.opts.Debounce)
			}

		case <-timerC:
			timer, timerC = nil, nil
			changes := Dedup(batch)
			batch = batch[:0]
			if len(changes) == 0 {
				continue
			}
			if err := handle(ctx, changes); err != nil {
				return err
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				continue
			}
			return err
		}
	}
}

func (w *Watcher) convert(ev fsnotify.Event) (Change, bool) {
	if w.ignored(ev.Name) {
		return Change{}, false
	}
	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			_ = w.addRecursive(ev.Name)
			return Change{}, false
		}
	}
	if ev.Has(fsnotify.Chmod) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
		return Change{}, false
	}
	if w.opts.Match != nil && !w.opts.Match(ev.Name) {
		return Change{}, false
	}
	return Change{Path: ev.Name, Op: convertOp(ev.Op), Time: time.Now()}, true
}

func convertOp(op fsnotify.Op) Op {
	switch {
	case op.Has(fsnotify.Create):
		return OpCreate
	case op.Has(fsnotify.Remove):
		return OpRemove
	case op.Has(fsnotify.Rename):
		return OpRename
	default:
		return OpWrite
	}
}

// Dedup keeps the last change per path, ordered by path.
func Dedup(changes []Change) []Change {
	last := make(map[string]Change, len(changes))
	for _, c := range changes {
		prev, seen := last[c.Path]
		// create+write остаётся create
		if seen && prev.Op == OpCreate && c.Op == OpWrite {
			c.Op = OpCreate
		}
		last[c.Path] = c
	}
	out := make([]Change, 0, len(last))
	for _, c := range last {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return strings.Compare(out[i].Path, out[j].Path) < 0 })
	return out
}
