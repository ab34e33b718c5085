package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/founders/internal/models"
	"github.com/desertthunder/founders/internal/shared"
	"github.com/desertthunder/founders/internal/tasks"
	"github.com/desertthunder/founders/internal/ui"
)

// logToFile redirects logs to path until restore is called, so they don't interfere with TUI rendering.
func (r *Runner) logToFile(path string) (restore func(), err error) {
	fileLogger, err := shared.NewFileLogger(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create file logger: %w", err)
	}
	fileLogger.SetLevel(r.logger.GetLevel())

	previous := r.logger
	r.logger = fileLogger
	return func() { r.logger = previous }, nil
}

// importInteractive reviews a dry run in the terminal UI and imports only after confirmation.
// Returns a nil result when the user quits before importing.
func (r *Runner) importInteractive(ctx context.Context, engine *tasks.ImportEngine, job importJob) (*models.ImportResult, error) {
	model := ui.NewModel(ctx, engine, job.source, job.data, job.opts)
	final, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil {
		return nil, fmt.Errorf("error running TUI: %w", err)
	}

	m, ok := final.(*ui.Model)
	if !ok {
		return nil, fmt.Errorf("unexpected TUI model %T", final)
	}
	result, imported, runErr := m.Result()
	if runErr == nil && !imported && !job.opts.DryRun {
		return nil, nil
	}

	return r.recordRun(ctx, job, func() (*models.ImportResult, error) {
		return result, runErr
	})
}
