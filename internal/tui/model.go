package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/sats-budget/internal/ledger"
	"github.com/Veraticus/sats-budget/internal/model"
)

// chrome is the number of lines used around the envelope table.
const chrome = 14

// tableHeight is the table height for a terminal of height lines. The table
// counts its header row against the height it is given.
func tableHeight(height int) int {
	return max(height-chrome, 3) + 1
}

// Model is the bubbletea model for the month browser.
type Model struct {
	ctx     context.Context
	err     error
	summary *ledger.Summary
	keys    KeyMap
	help    help.Model
	spinner spinner.Model
	table   table.Model
	config  Config
	month   model.Month
	width   int
	height  int
	loading bool
	quit    bool
}

// New creates the month browser model.
func New(ctx context.Context, opts ...Option) Model {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = lipgloss.NewStyle().Foreground(cfg.Theme.Primary)

	t := table.New(
		table.WithColumns(columns(cfg.Width)),
		table.WithFocused(true),
		table.WithHeight(tableHeight(cfg.Height)),
	)
	styles := table.DefaultStyles()
	styles.Header = cfg.Theme.Header
	styles.Selected = cfg.Theme.Selected
	t.SetStyles(styles)

	return Model{
		ctx:     ctx,
		config:  cfg,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		spinner: sp,
		table:   t,
		month:   cfg.Month,
		width:   cfg.Width,
		height:  cfg.Height,
		loading: true,
	}
}

// Init starts the first load.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadSummary(m.month))
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.table.SetColumns(columns(msg.Width))
		m.table.SetHeight(tableHeight(msg.Height))
		return m, nil

	case summaryLoadedMsg:
		if msg.month != m.month {
			return m, nil
		}
		m.loading = false
		m.err = msg.err
		if msg.err != nil {
			m.summary = nil
			m.table.SetRows(nil)
			return m, nil
		}
		m.summary = msg.summary
		m.table.SetRows(rows(msg.summary))
		m.table.GotoTop()
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quit = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.PrevMonth):
		return m.goTo(m.month.Prev())
	case key.Matches(msg, m.keys.NextMonth):
		return m.goTo(m.month.Next())
	case key.Matches(msg, m.keys.ThisMonth):
		return m.goTo(model.CurrentMonth())
	case key.Matches(msg, m.keys.Reload):
		return m.goTo(m.month)
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) goTo(month model.Month) (tea.Model, tea.Cmd) {
	m.month = month
	m.err = nil
	m.loading = true
	return m, tea.Batch(m.spinner.Tick, m.loadSummary(month))
}

// Month returns the month being shown.
func (m Model) Month() model.Month {
	return m.month
}

// Summary returns the loaded summary, nil while loading or after an error.
func (m Model) Summary() *ledger.Summary {
	return m.summary
}

// Err returns the last load error.
func (m Model) Err() error {
	return m.err
}
