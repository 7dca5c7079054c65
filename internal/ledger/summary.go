package ledger

import (
	"context"
	"fmt"

	"github.com/Veraticus/sats-budget/internal/model"
)

// CategoryStatus is one envelope's figures for a month.
type CategoryStatus struct {
	Category  model.Category
	Allocated model.Sats
	Rollover  model.Sats
	Spent     model.Sats
	Balance   model.Sats
}

// Overspent reports whether the envelope balance is below zero.
func (c CategoryStatus) Overspent() bool {
	return c.Balance < 0
}

// Summary is the whole budget for one month.
type Summary struct {
	Month      model.Month
	Categories []CategoryStatus
	Income     model.Sats
	Rollover   model.Sats
	Allocated  model.Sats
	Available  model.Sats
}

// Spent totals spending across all envelopes.
func (s *Summary) Spent() model.Sats {
	var total model.Sats
	for _, c := range s.Categories {
		total += c.Spent
	}
	return total
}

// MonthSummary computes the month's totals and every category's envelope, in category name order.
func (e *Engine) MonthSummary(ctx context.Context, month model.Month) (*Summary, error) {
	if !month.Valid() {
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidMonth, month)
	}

	income, err := e.TotalIncome(ctx, &month)
	if err != nil {
		return nil, err
	}
	rollover, err := e.RolloverAmount(ctx, month)
	if err != nil {
		return nil, err
	}
	allocated, err := e.TotalAllocatedDirect(ctx, month)
	if err != nil {
		return nil, err
	}

	cats, err := e.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}

	summary := &Summary{
		Month:      month,
		Income:     income,
		Rollover:   rollover,
		Allocated:  allocated,
		Available:  income + rollover - allocated,
		Categories: make([]CategoryStatus, 0, len(cats)),
	}

	for _, cat := range cats {
		status, err := e.categoryStatus(ctx, cat, month)
		if err != nil {
			return nil, err
		}
		summary.Categories = append(summary.Categories, status)
	}

	return summary, nil
}
