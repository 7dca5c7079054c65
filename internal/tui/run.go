package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the month browser and blocks until the user quits or ctx ends.
func Run(ctx context.Context, loader SummaryLoader, opts ...Option) error {
	m := New(ctx, append(opts, WithLoader(loader))...)

	programOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if m.config.AltScreen {
		programOpts = append(programOpts, tea.WithAltScreen())
	}

	if _, err := tea.NewProgram(m, programOpts...).Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}
