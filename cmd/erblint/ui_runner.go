package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"erblint/internal/driver"
	"erblint/internal/lint"
	"erblint/internal/source"
	"erblint/internal/ui"
)

type lintOutcome struct {
	results []driver.FileResult
	err     error
}

// runLintWithUI runs LintPaths while a Bubble Tea program renders its progress
// on stderr, so stdout stays clean for the report.
func runLintWithUI(ctx context.Context, title string, fileSet *source.FileSet, plan *lint.Plan, files []string, opts driver.Options) ([]driver.FileResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan driver.Event, 256)
	outcomeCh := make(chan lintOutcome, 1)

	go func() {
		runOpts := opts
		runOpts.Progress = driver.ChannelSink{Ch: events}
		res, err := driver.LintPaths(ctx, fileSet, plan, files, runOpts)
		outcomeCh <- lintOutcome{results: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, nil, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr), tea.WithContext(ctx))
	_, uiErr := program.Run()

	// дочитываем события, чтобы воркеры не блокировались
	go func() {
		for range events {
		}
	}()

	var outcome lintOutcome
	select {
	case outcome = <-outcomeCh:
	default:
		// UI закрыли до конца прогона (Ctrl+C)
		cancel()
		outcome = <-outcomeCh
	}
	if outcome.err == nil && uiErr != nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}
