package driver

import (
	"context"
	"errors"
	"fmt"

	"erblint/internal/diag"
	"erblint/internal/fix"
	"erblint/internal/lint"
	"erblint/internal/observ"
	"erblint/internal/trace"
)

var (
	// ErrAlreadyRan is returned by a second Run on the same engine.
	ErrAlreadyRan = errors.New("engine already ran")
	// ErrNotRun is returned when offenses or corrections are requested before Run.
	ErrNotRun = errors.New("engine has not run")
)

// State is the engine lifecycle: Uninitialized → Configured → Ran.
type State uint8

const (
	StateUninitialized State = iota
	StateConfigured
	StateRan
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateConfigured:
		return "configured"
	case StateRan:
		return "ran"
	default:
		return "unknown"
	}
}

// RuleError is a failure of one linter on one document. Other linters keep running.
type RuleError struct {
	Linter   string
	Err      error
	Panicked bool
}

func (e *RuleError) Error() string {
	if e.Panicked {
		return fmt.Sprintf("%s: panic: %v", e.Linter, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Linter, e.Err)
}

func (e *RuleError) Unwrap() error { return e.Err }

// Engine runs a fixed set of freshly built rules over exactly one document.
type Engine struct {
	path      string
	instances []lint.Instance
	state     State

	doc      *lint.Document
	offenses []diag.Offense
	owners   []int // offense index → instance index
	errs     []error
	timer    *observ.Timer
}

// NewEngine builds rule instances for path from a validated plan.
func NewEngine(plan *lint.Plan, path string) (*Engine, error) {
	if plan == nil {
		return nil, errors.New("driver: nil plan")
	}
	instances, err := plan.Instantiate(path)
	if err != nil {
		return nil, err
	}
	return &Engine{
		path:      path,
		instances: instances,
		state:     StateConfigured,
		timer:     observ.NewTimer(),
	}, nil
}

// State reports the current lifecycle state.
func (e *Engine) State() State {
	if e == nil {
		return StateUninitialized
	}
	return e.state
}

// Linters returns the names of the rules that will run, in rule order.
func (e *Engine) Linters() []string {
	out := make([]string, 0, len(e.instances))
	for _, inst := range e.instances {
		out = append(out, inst.Rule.Name())
	}
	return out
}

// Run executes every rule in order. Rule failures are recorded (see Errors) and do
// not abort the run; only cancellation does.
func (e *Engine) Run(ctx context.Context, doc *lint.Document) error {
	switch e.State() {
	case StateRan:
		return ErrAlreadyRan
	case StateUninitialized:
		return errors.New("driver: engine is not configured")
	}
	if doc == nil {
		return errors.New("driver: nil document")
	}
	e.state = StateRan
	e.doc = doc

	tracer := trace.FromContext(ctx)
	parent := trace.CurrentSpan(ctx).SpanID

	for i, inst := range e.instances {
		if err := ctx.Err(); err != nil {
			return err
		}
		name := inst.Rule.Name()
		span := trace.Begin(tracer, trace.ScopeRule, "rule:"+name, parent)
		phase := e.timer.Begin(name)

		// буфер на одно правило: упавшее правило не даёт оффенсов
		buf := diag.NewBag(0)
		var rep diag.Reporter = diag.BagReporter{Bag: buf}
		if inst.SeveritySet {
			rep = diag.SeverityReporter{Next: rep, Severity: inst.Severity}
		}

		if err := runRule(inst.Rule, doc, rep); err != nil {
			e.errs = append(e.errs, err)
			e.timer.End(phase, "failed")
			span.End(err.Error())
			continue
		}
		buf.Sort()
		for _, off := range buf.Items() {
			e.offenses = append(e.offenses, off)
			e.owners = append(e.owners, i)
		}
		e.timer.End(phase, fmt.Sprintf("%d offense%s", buf.Len(), plural(buf.Len())))
		span.WithExtra("offenses", fmt.Sprint(buf.Len())).End("")
	}
	return nil
}

func runRule(rule lint.Rule, doc *lint.Document, r diag.Reporter) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = &RuleError{Linter: rule.Name(), Err: fmt.Errorf("%v", p), Panicked: true}
		}
	}()
	if runErr := rule.Run(doc, r); runErr != nil {
		return &RuleError{Linter: rule.Name(), Err: runErr}
	}
	return nil
}

// Offenses returns a copy of the collected offenses in emission order.
func (e *Engine) Offenses() []diag.Offense {
	out := make([]diag.Offense, len(e.offenses))
	copy(out, e.offenses)
	return out
}

// Errors returns the rule failures of the last run.
func (e *Engine) Errors() []error {
	out := make([]error, len(e.errs))
	copy(out, e.errs)
	return out
}

// Timings returns the per-rule timer report.
func (e *Engine) Timings() observ.Report {
	return e.timer.Report()
}

// Candidates materialises correctable offenses. Rules without autocorrect, and
// corrections that need an unavailable dependency, contribute nothing. Other
// autocorrect failures are returned alongside.
func (e *Engine) Candidates() ([]fix.Candidate, []error, error) {
	if e.State() != StateRan {
		return nil, nil, ErrNotRun
	}
	var (
		cands []fix.Candidate
		errs  []error
	)
	for i, off := range e.offenses {
		inst := e.instances[e.owners[i]]
		corrector, ok := inst.Rule.(lint.Corrector)
		if !ok {
			continue
		}
		proc, err := autocorrect(corrector, e.doc, off)
		if errors.Is(err, lint.ErrMissingDependency) {
			continue
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", off.Linter, err))
			continue
		}
		if proc == nil {
			continue
		}
		cands = append(cands, fix.Candidate{
			Offense:   off,
			Index:     i,
			RuleOrder: inst.Order,
			Procedure: proc,
		})
	}
	return cands, errs, nil
}

func autocorrect(c lint.Corrector, doc *lint.Document, off diag.Offense) (proc fix.Procedure, err error) {
	defer func() {
		if p := recover(); p != nil {
			proc, err = nil, fmt.Errorf("autocorrect panic: %v", p)
		}
	}()
	return c.Autocorrect(doc, off)
}

// Autocorrect applies corrections for the offenses selected by opts to the
// document's original content. The content itself is never modified.
func (e *Engine) Autocorrect(opts fix.Options) (*fix.Result, error) {
	cands, errs, err := e.Candidates()
	if err != nil {
		return nil, err
	}
	res, err := fix.NewCorrector(e.doc.Content(), cands).Correct(opts)
	if res != nil && len(errs) > 0 {
		res.Errors = append(errs, res.Errors...)
	}
	return res, err
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
