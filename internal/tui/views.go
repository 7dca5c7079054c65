package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/sats-budget/internal/ledger"
	"github.com/Veraticus/sats-budget/internal/model"
)

// View renders the current state.
func (m Model) View() string {
	if m.quit {
		return ""
	}
	theme := m.config.Theme

	var b strings.Builder
	title := theme.Title.Render("₿ Sats Budget") + "  " + theme.Subtitle.Render("‹ "+m.month.String()+" ›")
	b.WriteString(title)
	b.WriteString("\n\n")

	switch {
	case m.err != nil:
		b.WriteString(theme.Error.Render("Error: " + m.err.Error()))
		b.WriteString("\n")
		b.WriteString(theme.Muted.Render("press r to retry"))
	case m.loading && m.summary == nil:
		b.WriteString(m.spinner.View() + " Loading " + m.month.String() + "...")
	default:
		b.WriteString(m.totalsView())
		b.WriteString("\n")
		if len(m.summary.Categories) == 0 {
			b.WriteString(theme.Muted.Render("No categories yet."))
		} else {
			b.WriteString(m.table.View())
		}
		if m.loading {
			b.WriteString("\n" + m.spinner.View())
		}
	}

	b.WriteString("\n\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) totalsView() string {
	theme := m.config.Theme
	s := m.summary

	line := func(label string, v model.Sats) string {
		return theme.Label.Render(label) + m.amount(v)
	}
	lines := []string{
		line("Income", s.Income),
		line("Rollover", s.Rollover),
		line("Allocated", s.Allocated),
		line("Spent", s.Spent()),
		line("Available to assign", s.Available),
	}
	return theme.Box.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m Model) amount(v model.Sats) string {
	text := model.FormatSats(v)
	if v < 0 {
		return m.config.Theme.Negative.Render(text)
	}
	return text
}

func columns(width int) []table.Column {
	amount := 16
	name := max(width-4*amount-12, 12)
	return []table.Column{
		{Title: "Category", Width: name},
		{Title: "Allocated", Width: amount},
		{Title: "Rollover", Width: amount},
		{Title: "Spent", Width: amount},
		{Title: "Balance", Width: amount},
	}
}

func rows(s *ledger.Summary) []table.Row {
	out := make([]table.Row, 0, len(s.Categories))
	for _, c := range s.Categories {
		name := c.Category.Name
		if c.Category.GroupName != "" {
			name = fmt.Sprintf("%s / %s", c.Category.GroupName, c.Category.Name)
		}
		balance := model.FormatSats(c.Balance)
		if c.Overspent() {
			balance += " !"
		}
		out = append(out, table.Row{
			name,
			model.FormatSats(c.Allocated),
			model.FormatSats(c.Rollover),
			model.FormatSats(c.Spent),
			balance,
		})
	}
	return out
}
