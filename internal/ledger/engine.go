// Package ledger derives envelope-budget figures from stored transactions and allocations.
//
// Every derived value is recomputed from the store on demand. Rollover looks back
// exactly one month: a month's rollover depends only on the previous month's
// income and allocations, never on how that month itself was funded.
package ledger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/sats-budget/internal/model"
	"github.com/Veraticus/sats-budget/internal/service"
)

// Reader is the slice of service.Store the engine needs.
type Reader interface {
	QueryTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error)
	QueryAllocation(ctx context.Context, categoryID int64, month model.Month) (model.Sats, bool, error)
	QueryAllocations(ctx context.Context, month model.Month) ([]model.Allocation, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
}

// Engine computes budget figures. It never writes to the store.
type Engine struct {
	store Reader
}

// New returns an engine reading from store.
func New(store Reader) *Engine {
	return &Engine{store: store}
}

// TotalIncome sums income in month, or across all time when month is nil.
func (e *Engine) TotalIncome(ctx context.Context, month *model.Month) (model.Sats, error) {
	kind := model.KindIncome
	filter := service.TransactionFilter{Kind: &kind}
	if month != nil {
		filter = service.ForMonth(*month)
		filter.Kind = &kind
	}

	txns, err := e.store.QueryTransactions(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to load income: %w", err)
	}
	return sum(txns), nil
}

// TotalAllocatedDirect sums every allocation recorded for month.
func (e *Engine) TotalAllocatedDirect(ctx context.Context, month model.Month) (model.Sats, error) {
	allocs, err := e.store.QueryAllocations(ctx, month)
	if err != nil {
		return 0, fmt.Errorf("failed to load allocations for %s: %w", month, err)
	}

	var total model.Sats
	for _, a := range allocs {
		total += a.Amount
	}
	return total, nil
}

// CategorySpent sums a category's expenses in month.
func (e *Engine) CategorySpent(ctx context.Context, categoryID int64, month model.Month) (model.Sats, error) {
	kind := model.KindExpense
	filter := service.ForMonth(month)
	filter.Kind = &kind
	filter.CategoryID = &categoryID

	txns, err := e.store.QueryTransactions(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to load spending for category %d: %w", categoryID, err)
	}
	return sum(txns), nil
}

// CategoryAllocatedDirect returns the allocation for a category and month, or zero.
func (e *Engine) CategoryAllocatedDirect(ctx context.Context, categoryID int64, month model.Month) (model.Sats, error) {
	amount, _, err := e.store.QueryAllocation(ctx, categoryID, month)
	if err != nil {
		return 0, fmt.Errorf("failed to load allocation for category %d: %w", categoryID, err)
	}
	return amount, nil
}

// RolloverAmount is the unassigned income carried into month from the month before.
// A previous month with no income carries nothing, whatever was allocated in it.
func (e *Engine) RolloverAmount(ctx context.Context, month model.Month) (model.Sats, error) {
	prev := month.Prev()

	income, err := e.TotalIncome(ctx, &prev)
	if err != nil {
		return 0, err
	}
	if income == 0 {
		return 0, nil
	}

	allocated, err := e.TotalAllocatedDirect(ctx, prev)
	if err != nil {
		return 0, err
	}

	rollover := max(0, income-allocated)
	slog.Debug("computed rollover", "month", month.String(), "amount", int64(rollover))
	return rollover, nil
}

// AvailableToAssign is income plus rollover less allocations for month. It goes negative when over-allocated.
func (e *Engine) AvailableToAssign(ctx context.Context, month model.Month) (model.Sats, error) {
	income, err := e.TotalIncome(ctx, &month)
	if err != nil {
		return 0, err
	}
	rollover, err := e.RolloverAmount(ctx, month)
	if err != nil {
		return 0, err
	}
	allocated, err := e.TotalAllocatedDirect(ctx, month)
	if err != nil {
		return 0, err
	}

	available := income + rollover - allocated
	slog.Debug("computed available to assign", "month", month.String(), "amount", int64(available))
	return available, nil
}

// CategoryRolloverBalance is what a category carries into month from its previous month's envelope.
// Overspending is not carried; a previous month without income carries nothing.
func (e *Engine) CategoryRolloverBalance(ctx context.Context, categoryID int64, month model.Month) (model.Sats, error) {
	prev := month.Prev()

	income, err := e.TotalIncome(ctx, &prev)
	if err != nil {
		return 0, err
	}
	if income == 0 {
		return 0, nil
	}

	allocated, err := e.CategoryAllocatedDirect(ctx, categoryID, prev)
	if err != nil {
		return 0, err
	}
	spent, err := e.CategorySpent(ctx, categoryID, prev)
	if err != nil {
		return 0, err
	}

	return max(0, allocated-spent), nil
}

// CategoryBalance is allocation plus rollover less spending. Negative means overspent.
func (e *Engine) CategoryBalance(ctx context.Context, categoryID int64, month model.Month) (model.Sats, error) {
	status, err := e.categoryStatus(ctx, model.Category{ID: categoryID}, month)
	if err != nil {
		return 0, err
	}
	return status.Balance, nil
}

// AllocationHeadroom reports how far setting a category's allocation to amount would
// push the month past what is available. Zero means the allocation fits.
func (e *Engine) AllocationHeadroom(ctx context.Context, categoryID int64, month model.Month, amount model.Sats) (model.Sats, error) {
	current, err := e.CategoryAllocatedDirect(ctx, categoryID, month)
	if err != nil {
		return 0, err
	}
	available, err := e.AvailableToAssign(ctx, month)
	if err != nil {
		return 0, err
	}

	// Lowering an allocation always fits, even in an over-allocated month.
	additional := amount - current
	if additional > 0 && additional > available {
		return additional - available, nil
	}
	return 0, nil
}

func (e *Engine) categoryStatus(ctx context.Context, cat model.Category, month model.Month) (CategoryStatus, error) {
	allocated, err := e.CategoryAllocatedDirect(ctx, cat.ID, month)
	if err != nil {
		return CategoryStatus{}, err
	}
	rollover, err := e.CategoryRolloverBalance(ctx, cat.ID, month)
	if err != nil {
		return CategoryStatus{}, err
	}
	spent, err := e.CategorySpent(ctx, cat.ID, month)
	if err != nil {
		return CategoryStatus{}, err
	}

	return CategoryStatus{
		Category:  cat,
		Allocated: allocated,
		Rollover:  rollover,
		Spent:     spent,
		Balance:   allocated + rollover - spent,
	}, nil
}

func sum(txns []model.Transaction) model.Sats {
	var total model.Sats
	for _, t := range txns {
		total += t.Amount
	}
	return total
}
