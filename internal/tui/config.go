// Package tui is the interactive month browser.
package tui

import (
	"context"
	"time"

	"github.com/Veraticus/sats-budget/internal/ledger"
	"github.com/Veraticus/sats-budget/internal/model"
	"github.com/Veraticus/sats-budget/internal/tui/themes"
)

// SummaryLoader computes a month summary. *ledger.Engine satisfies it.
type SummaryLoader interface {
	MonthSummary(ctx context.Context, month model.Month) (*ledger.Summary, error)
}

// Config holds TUI configuration.
type Config struct {
	Loader      SummaryLoader
	Theme       themes.Theme
	Month       model.Month
	LoadTimeout time.Duration
	Width       int
	Height      int
	AltScreen   bool
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

func defaultConfig() Config {
	return Config{
		Theme:       themes.Default,
		Month:       model.CurrentMonth(),
		LoadTimeout: 10 * time.Second,
		Width:       80,
		Height:      24,
		AltScreen:   true,
	}
}

// WithMonth sets the first month shown.
func WithMonth(m model.Month) Option {
	return func(c *Config) { c.Month = m }
}

// WithTheme sets the color theme.
func WithTheme(t themes.Theme) Option {
	return func(c *Config) { c.Theme = t }
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithAltScreen toggles the alternate screen buffer.
func WithAltScreen(enabled bool) Option {
	return func(c *Config) { c.AltScreen = enabled }
}

// WithLoader sets the source of month summaries.
func WithLoader(l SummaryLoader) Option {
	return func(c *Config) { c.Loader = l }
}
