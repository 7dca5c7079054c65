package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/sats-budget/internal/model"
)

var errNoLoader = errors.New("no summary loader configured")

// loadSummary computes the summary for month off the UI goroutine.
func (m Model) loadSummary(month model.Month) tea.Cmd {
	loader := m.config.Loader
	parent := m.ctx
	timeout := m.config.LoadTimeout
	return func() tea.Msg {
		if loader == nil {
			return summaryLoadedMsg{month: month, err: errNoLoader}
		}
		ctx, cancel := context.WithTimeout(parent, timeout)
		defer cancel()

		summary, err := loader.MonthSummary(ctx, month)
		return summaryLoadedMsg{month: month, summary: summary, err: err}
	}
}
