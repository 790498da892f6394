package driver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"erblint/internal/diag"
	"erblint/internal/fix"
	"erblint/internal/lint"
	"erblint/internal/observ"
	"erblint/internal/source"
	"erblint/internal/trace"
)

// DefaultMaxPasses bounds the lint→correct loop of AutocorrectFile.
const DefaultMaxPasses = 7

// Options configures a batch run.
type Options struct {
	Jobs        int
	Cache       *Cache       // nil disables the result cache
	Progress    ProgressSink // nil disables progress events
	Autocorrect bool         // run AutocorrectFile instead of a single lint
	Write       bool         // write corrected files back to disk
	MaxPasses   int          // 0 means DefaultMaxPasses
}

// FileResult is the outcome for one file. Offenses are the ones left after
// corrections when autocorrect was on.
type FileResult struct {
	Path     string // relative to the file set's base dir
	FileID   source.FileID
	Offenses []diag.Offense
	Errors   []error
	LoadErr  error
	Cached   bool

	// autocorrect
	Corrected int
	Passes    int
	Changed   bool
	Output    []byte // corrected bytes with BOM/CRLF restored, set when Changed

	Timing *observ.Report
}

// Failed reports whether the file could not be linted completely.
func (r *FileResult) Failed() bool {
	return r.LoadErr != nil || len(r.Errors) > 0
}

// LintPaths lints every path with one Engine per file. Results are indexed like
// paths. Cancellation stops launching new files; the error is returned with the
// partial results.
func LintPaths(ctx context.Context, fileSet *source.FileSet, plan *lint.Plan, paths []string, opts Options) ([]FileResult, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	tracer := trace.FromContext(ctx)
	batch := trace.Begin(tracer, trace.ScopePass, "batch", trace.CurrentSpan(ctx).SpanID)
	defer batch.End("")
	ctx = trace.WithSpanContext(ctx, trace.SpanContext{SpanID: batch.ID()})

	// Предзагружаем файлы последовательно, чтобы FileID были детерминированы
	fileIDs := make([]source.FileID, len(paths))
	loadErrors := make([]error, len(paths))
	names := make([]string, len(paths))
	for i, path := range paths {
		names[i] = path
		id, err := fileSet.Load(path)
		if err != nil {
			loadErrors[i] = err
		} else {
			fileIDs[i] = id
			names[i] = displayPath(fileSet, fileSet.Get(id))
		}
		emit(opts.Progress, Event{File: names[i], Stage: StageLoad, Status: StatusQueued})
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// индексы уникальны для каждой горутины, мьютекс не нужен
	results := make([]FileResult, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))

	for i, path := range paths {
		// отмена: новые файлы больше не запускаем
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			started := time.Now()

			if loadErr := loadErrors[i]; loadErr != nil {
				results[i] = FileResult{Path: names[i], LoadErr: loadErr}
				emit(opts.Progress, Event{File: names[i], Stage: StageLoad, Status: StatusError, Err: loadErr})
				return nil
			}

			emit(opts.Progress, Event{File: names[i], Stage: StageLint, Status: StatusWorking})
			var (
				res *FileResult
				err error
			)
			if opts.Autocorrect {
				res, err = AutocorrectFile(gctx, fileSet, plan, fileIDs[i], opts)
			} else {
				res, err = LintFile(gctx, fileSet, plan, fileIDs[i], opts)
			}
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			results[i] = *res

			status := StatusDone
			if res.Failed() {
				status = StatusError
			}
			emit(opts.Progress, Event{File: names[i], Stage: StageLint, Status: status, Elapsed: time.Since(started)})
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}

func displayPath(fileSet *source.FileSet, f *source.File) string {
	if f.Flags&source.FileVirtual != 0 {
		return f.Path
	}
	return f.FormatPath("relative", fileSet.BaseDir())
}

// LintFile lints one loaded file, consulting the cache first.
func LintFile(ctx context.Context, fileSet *source.FileSet, plan *lint.Plan, id source.FileID, opts Options) (*FileResult, error) {
	f := fileSet.Get(id)
	if f == nil {
		return nil, fmt.Errorf("unknown file id %d", id)
	}
	path := displayPath(fileSet, f)
	res := &FileResult{Path: path, FileID: id}

	var key [32]byte
	if opts.Cache != nil {
		key = CacheKey(f, path, plan.Digest())
		payload, ok, err := opts.Cache.Get(key, f.Hash)
		if err == nil && ok {
			if offenses, convErr := fromCachePayload(f, payload); convErr == nil {
				res.Offenses = offenses
				res.Cached = true
				trace.Point(trace.FromContext(ctx), trace.ScopeFile, "cache-hit", path)
				return res, nil
			}
		}
	}

	eng, err := lintOnce(ctx, plan, path, f)
	if err != nil {
		return nil, err
	}
	res.Offenses = eng.Offenses()
	res.Errors = eng.Errors()
	report := eng.Timings()
	res.Timing = &report

	// результаты с ошибками правил не кешируем
	if opts.Cache != nil && len(res.Errors) == 0 {
		if err := opts.Cache.Put(key, toCachePayload(f, path, plan.Digest(), res.Offenses)); err != nil {
			trace.Point(trace.FromContext(ctx), trace.ScopeFile, "cache-put-failed", err.Error())
		}
	}
	return res, nil
}

func lintOnce(ctx context.Context, plan *lint.Plan, path string, f *source.File) (*Engine, error) {
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeFile, "file:"+path, trace.CurrentSpan(ctx).SpanID)
	ctx = trace.WithSpanContext(ctx, trace.SpanContext{SpanID: span.ID()})

	eng, err := NewEngine(plan, path)
	if err != nil {
		span.End(err.Error())
		return nil, err
	}
	if err := eng.Run(ctx, lint.NewDocument(f)); err != nil {
		span.End(err.Error())
		return nil, err
	}
	span.WithExtra("offenses", fmt.Sprint(len(eng.offenses))).End("")
	return eng, nil
}

// AutocorrectFile repeats lint→correct until a pass applies nothing or the pass
// limit is hit. Each pass re-parses the corrected content as a new file version.
// With opts.Write the final content is written back to the original path.
func AutocorrectFile(ctx context.Context, fileSet *source.FileSet, plan *lint.Plan, id source.FileID, opts Options) (*FileResult, error) {
	orig := fileSet.Get(id)
	if orig == nil {
		return nil, fmt.Errorf("unknown file id %d", id)
	}
	maxPasses := opts.MaxPasses
	if maxPasses <= 0 {
		maxPasses = DefaultMaxPasses
	}
	path := displayPath(fileSet, orig)
	res := &FileResult{Path: path, FileID: id}
	timer := observ.NewTimer()

	cur := orig
	settled := false
	for pass := 1; pass <= maxPasses; pass++ {
		phase := timer.Begin(fmt.Sprintf("pass %d", pass))
		emit(opts.Progress, Event{File: path, Stage: StageCorrect, Status: StatusWorking})

		eng, err := lintOnce(ctx, plan, path, cur)
		if err != nil {
			return nil, err
		}
		res.Passes = pass
		res.Offenses = eng.Offenses()
		res.Errors = eng.Errors()

		out, err := eng.Autocorrect(fix.Options{Mode: fix.ModeAll})
		if out != nil {
			res.Errors = append(res.Errors, out.Errors...)
		}
		if errors.Is(err, fix.ErrNoCorrections) {
			timer.End(phase, "stable")
			settled = true
			break
		}
		if err != nil {
			return nil, err
		}
		res.Corrected += len(out.Applied)
		raw, err := fix.Restore(cur, out.Edits)
		if err != nil {
			return nil, err
		}
		newID := fileSet.Reload(cur, raw)
		cur = fileSet.Get(newID)
		res.FileID = newID
		timer.End(phase, fmt.Sprintf("%d applied", len(out.Applied)))
	}

	// лимит проходов исчерпан: отчитываемся о том, что осталось
	if !settled {
		eng, err := lintOnce(ctx, plan, path, cur)
		if err != nil {
			return nil, err
		}
		res.Offenses = eng.Offenses()
		res.Errors = append(res.Errors, eng.Errors()...)
	}

	report := timer.Report()
	res.Timing = &report
	if cur == orig {
		return res, nil
	}
	res.Changed = true
	res.Output = cur.Original()

	if opts.Write && orig.Flags&source.FileVirtual == 0 {
		emit(opts.Progress, Event{File: path, Stage: StageWrite, Status: StatusWorking})
		if err := writeBack(orig.Path, res.Output); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func writeBack(path string, content []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	// #nosec G306 -- keeps the permissions of the file being rewritten
	if err := os.WriteFile(path, content, mode); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
