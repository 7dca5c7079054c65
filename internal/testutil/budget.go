package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/Veraticus/sats-budget/internal/model"
	"github.com/Veraticus/sats-budget/internal/service"
)

// Budget seeds a store through a fluent API. Categories are created on first mention.
//
//	b := testutil.NewBudget(t, store).
//		Income("2025-06-01", 100_000).
//		Allocate("2025-06", "Groceries", 30_000).
//		Expense("2025-06-12", "Groceries", 20_000)
type Budget struct {
	t          *testing.T
	store      service.Store
	categories map[string]int64
}

// NewBudget returns a builder writing into store.
func NewBudget(t *testing.T, store service.Store) *Budget {
	t.Helper()
	return &Budget{t: t, store: store, categories: make(map[string]int64)}
}

// Store returns the underlying store.
func (b *Budget) Store() service.Store {
	return b.store
}

// Category returns the id for name, creating the category if needed.
func (b *Budget) Category(name string) int64 {
	b.t.Helper()
	if id, ok := b.categories[name]; ok {
		return id
	}
	id, err := b.store.InsertCategory(context.Background(), name)
	if err != nil {
		b.t.Fatalf("failed to seed category %q: %v", name, err)
	}
	b.categories[name] = id
	return id
}

// WithCategories creates each named category up front.
func (b *Budget) WithCategories(names ...string) *Budget {
	b.t.Helper()
	for _, name := range names {
		b.Category(name)
	}
	return b
}

// Income records income on date (YYYY-MM-DD).
func (b *Budget) Income(date string, amount model.Sats) *Budget {
	b.t.Helper()
	if _, err := b.store.InsertIncome(context.Background(), amount, "income", b.date(date)); err != nil {
		b.t.Fatalf("failed to seed income on %s: %v", date, err)
	}
	return b
}

// Expense records spending in category on date (YYYY-MM-DD).
func (b *Budget) Expense(date, category string, amount model.Sats) *Budget {
	b.t.Helper()
	id := b.Category(category)
	if _, err := b.store.InsertExpense(context.Background(), amount, category+" spending", id, b.date(date)); err != nil {
		b.t.Fatalf("failed to seed expense on %s: %v", date, err)
	}
	return b
}

// Allocate assigns amount to category for month (YYYY-MM).
func (b *Budget) Allocate(month, category string, amount model.Sats) *Budget {
	b.t.Helper()
	m, err := model.ParseMonth(month)
	if err != nil {
		b.t.Fatalf("bad month %q: %v", month, err)
	}
	if err := b.store.UpsertAllocation(context.Background(), b.Category(category), m, amount); err != nil {
		b.t.Fatalf("failed to seed allocation for %s: %v", month, err)
	}
	return b
}

func (b *Budget) date(s string) time.Time {
	b.t.Helper()
	d, err := model.ParseDate(s)
	if err != nil {
		b.t.Fatalf("bad date %q: %v", s, err)
	}
	return d
}
