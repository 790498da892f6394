// Package observ measures how long each linter and autocorrect pass takes.
package observ

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Phase is one timed step: a linter run or an autocorrect pass.
type Phase struct {
	Name  string
	Start time.Time
	Dur   time.Duration
	Note  string
}

// Timer collects phases of one document. It is not goroutine-safe; each
// engine owns its own timer.
type Timer struct {
	phases []Phase
}

// NewTimer creates a new empty Timer.
func NewTimer() *Timer { return &Timer{phases: make([]Phase, 0, 8)} }

// Begin starts a new phase and returns its index.
func (t *Timer) Begin(name string) int {
	t.phases = append(t.phases, Phase{Name: name, Start: time.Now()})
	return len(t.phases) - 1
}

// End finishes a phase by its index.
func (t *Timer) End(idx int, note string) {
	if idx < 0 || idx >= len(t.phases) {
		return
	}
	p := &t.phases[idx]
	p.Dur = time.Since(p.Start)
	p.Note = note
}

// PhaseReport представляет сжатую информацию о фазе для сериализации.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Count      int     `json:"count,omitempty"`
	Note       string  `json:"note,omitempty"`
}

// Report описывает агрегированные данные таймера.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

// Report формирует срез фаз и общую длительность в миллисекундах.
func (t *Timer) Report() Report {
	if len(t.phases) == 0 {
		return Report{}
	}
	report := Report{
		Phases: make([]PhaseReport, len(t.phases)),
	}
	var total time.Duration
	for i, phase := range t.phases {
		total += phase.Dur
		report.Phases[i] = PhaseReport{
			Name:       phase.Name,
			DurationMS: durationToMillis(phase.Dur),
			Count:      1,
			Note:       phase.Note,
		}
	}
	report.TotalMS = durationToMillis(total)
	return report
}

// Aggregate sums phases with the same name over many reports, slowest first.
// Notes are dropped since they describe a single file.
func Aggregate(reports []*Report) Report {
	byName := make(map[string]*PhaseReport)
	var out Report
	for _, r := range reports {
		if r == nil {
			continue
		}
		out.TotalMS += r.TotalMS
		for _, p := range r.Phases {
			acc, ok := byName[p.Name]
			if !ok {
				acc = &PhaseReport{Name: p.Name}
				byName[p.Name] = acc
			}
			acc.DurationMS += p.DurationMS
			acc.Count += max(p.Count, 1)
		}
	}
	out.Phases = make([]PhaseReport, 0, len(byName))
	for _, p := range byName {
		out.Phases = append(out.Phases, *p)
	}
	sort.Slice(out.Phases, func(i, j int) bool {
		if out.Phases[i].DurationMS != out.Phases[j].DurationMS {
			return out.Phases[i].DurationMS > out.Phases[j].DurationMS
		}
		return out.Phases[i].Name < out.Phases[j].Name
	})
	return out
}

// Summary renders the report as an aligned table.
func (r Report) Summary() string {
	var b strings.Builder
	b.WriteString("timings:\n")
	for _, p := range r.Phases {
		fmt.Fprintf(&b, "  %-24s %9.2f ms", p.Name, p.DurationMS)
		if p.Count > 1 {
			fmt.Fprintf(&b, "  x%d", p.Count)
		}
		if p.Note != "" {
			b.WriteString("  // " + p.Note)
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "  %-24s %9.2f ms\n", "total", r.TotalMS)
	return b.String()
}

func durationToMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
