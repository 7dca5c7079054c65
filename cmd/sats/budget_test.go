package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/sats-budget/internal/common"
	"github.com/Veraticus/sats-budget/internal/memstore"
	"github.com/Veraticus/sats-budget/internal/model"
	"github.com/Veraticus/sats-budget/internal/testutil"
)

func TestMonthSummaryFlow(t *testing.T) {
	setupCLI(t)

	mustExecute(t, "category", "add", "Groceries")
	mustExecute(t, "category", "add", "Rent")
	out := mustExecute(t, "income", "add", "1,000,000", "June salary", "--date", "2025-06-01")
	assert.Contains(t, out, "1,000,000 sats on 2025-06-01")

	out = mustExecute(t, "allocate", "Groceries", "300,000", "--month", "2025-06")
	assert.Contains(t, out, "Available to assign: 700,000 sats")
	mustExecute(t, "allocate", "rent", "0.002 BTC", "--month", "2025-06")

	mustExecute(t, "expense", "add", "320,000", "Groceries", "market", "--date", "2025-06-10")

	out = mustExecute(t, "month", "2025-06")
	assert.Contains(t, out, "Budget for 2025-06")
	assert.Contains(t, out, "500,000 sats")
	assert.Contains(t, out, "-20,000 sats")
	assert.Contains(t, out, "overspent")
	assert.NotContains(t, out, "More is allocated than available")

	// July rolls over what June left unassigned; overspending does not carry.
	out = mustExecute(t, "month", "2025-07", "--btc")
	assert.Contains(t, out, "Budget for 2025-07")
	assert.Contains(t, out, "0.00500000 BTC")
	assert.NotContains(t, out, "overspent")
}

func TestAllocateRefusesMoreThanAvailable(t *testing.T) {
	setupCLI(t)

	mustExecute(t, "category", "add", "Travel")
	mustExecute(t, "income", "add", "100,000", "bonus", "--date", "2025-06-02")

	_, err := execute(t, "allocate", "Travel", "150,000", "--month", "2025-06")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInsufficientFunds)
	assert.Contains(t, err.Error(), "by 50,000 sats")

	out := mustExecute(t, "allocate", "Travel", "150,000", "--month", "2025-06", "--force")
	assert.Contains(t, out, "-50,000 sats")

	out = mustExecute(t, "month", "2025-06")
	assert.Contains(t, out, "More is allocated than available")

	// Lowering an over-allocation always fits.
	mustExecute(t, "allocate", "Travel", "120,000", "--month", "2025-06")
	mustExecute(t, "allocate", "Travel", "0", "--month", "2025-06")

	out = mustExecute(t, "unallocate", "Travel", "--month", "2025-06")
	assert.Contains(t, out, "Removed the Travel allocation")
	out = mustExecute(t, "unallocate", "Travel", "--month", "2025-06")
	assert.Contains(t, out, "has no allocation")
}

func TestTransactionCommands(t *testing.T) {
	setupCLI(t)

	mustExecute(t, "category", "add", "Food")
	mustExecute(t, "category", "add", "Fun")
	mustExecute(t, "income", "add", "50,000", "gift", "--date", "2025-05-20")
	mustExecute(t, "expense", "add", "1,200", "Food", "lunch", "--date", "2025-06-03")

	out := mustExecute(t, "tx", "list", "--month", "2025-06")
	assert.Contains(t, out, "lunch")
	assert.NotContains(t, out, "gift")
	assert.Contains(t, out, "1 transactions, net -1,200 sats")

	out = mustExecute(t, "tx", "list", "--all", "--kind", "income")
	assert.Contains(t, out, "gift")
	assert.NotContains(t, out, "lunch")

	out = mustExecute(t, "tx", "list", "--from", "2025-05-01", "--to", "2025-06-30", "--category", "food")
	assert.Contains(t, out, "lunch")

	mustExecute(t, "tx", "update", "2", "--amount", "1,500", "--category", "Fun", "--description", "cinema")
	out = mustExecute(t, "tx", "list", "--month", "2025-06")
	assert.Contains(t, out, "cinema")
	assert.Contains(t, out, "Fun")
	assert.Contains(t, out, "-1,500 sats")

	_, err := execute(t, "tx", "update", "1", "--category", "Food")
	assert.ErrorIs(t, err, model.ErrUnexpectedCategory)

	mustExecute(t, "tx", "delete", "2", "--yes")
	out = mustExecute(t, "tx", "list", "--month", "2025-06")
	assert.Contains(t, out, "No transactions found")

	_, err = execute(t, "tx", "delete", "2", "--yes")
	assert.Error(t, err)
}

func TestTransactionValidation(t *testing.T) {
	setupCLI(t)
	mustExecute(t, "category", "add", "Food")

	tests := []struct {
		name string
		args []string
	}{
		{"zero amount", []string{"income", "add", "0", "nothing"}},
		{"bad amount", []string{"income", "add", "12abc", "oops"}},
		{"bad date", []string{"income", "add", "100", "x", "--date", "2025-13-01"}},
		{"blank description", []string{"income", "add", "100", "  "}},
		{"unknown category", []string{"expense", "add", "100", "Nope", "x"}},
		{"bad month", []string{"month", "2025-6"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestCategoryCommands(t *testing.T) {
	setupCLI(t)

	out := mustExecute(t, "category", "list")
	assert.Contains(t, out, "No categories found")

	mustExecute(t, "group", "add", "Housing")
	mustExecute(t, "category", "add", "Rent", "--group", "Housing")
	mustExecute(t, "category", "add", "Power")
	mustExecute(t, "category", "group", "Power", "housing")

	out = mustExecute(t, "group", "list")
	assert.Contains(t, out, "Housing")
	assert.Contains(t, out, "2")

	mustExecute(t, "category", "rename", "Power", "Electricity")
	mustExecute(t, "group", "rename", "Housing", "Home")
	out = mustExecute(t, "category", "list")
	assert.Contains(t, out, "Electricity")
	assert.Contains(t, out, "Home")
	assert.NotContains(t, out, "Power")

	mustExecute(t, "category", "group", "Electricity", "--clear")
	_, err := execute(t, "category", "group", "Electricity")
	assert.Error(t, err)

	_, err = execute(t, "category", "add", "Rent")
	assert.ErrorIs(t, err, common.ErrDuplicateName)
}

func TestCategoryDeleteCascades(t *testing.T) {
	setupCLI(t)

	mustExecute(t, "category", "add", "Hobby")
	mustExecute(t, "income", "add", "10,000", "pay", "--date", "2025-06-01")
	mustExecute(t, "allocate", "Hobby", "5,000", "--month", "2025-06")
	mustExecute(t, "expense", "add", "1,000", "Hobby", "paint", "--date", "2025-06-02")
	mustExecute(t, "expense", "add", "2,000", "Hobby", "brushes", "--date", "2025-06-03")

	out := mustExecute(t, "category", "delete", "Hobby")
	assert.Contains(t, out, "with 2 transactions and 1 allocations")
	assert.Contains(t, out, "Saved checkpoint auto-category-delete")

	out = mustExecute(t, "tx", "list", "--all")
	assert.NotContains(t, out, "paint")
	assert.Contains(t, out, "pay")

	out = mustExecute(t, "checkpoint", "list")
	assert.Contains(t, out, "auto")
}

func TestResolveCategory(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	b := testutil.NewBudget(t, store).WithCategories("Food", "food court")

	cat, err := resolveCategory(ctx, store, "food court")
	require.NoError(t, err)
	assert.Equal(t, "food court", cat.Name)

	cat, err = resolveCategory(ctx, store, "FOOD")
	require.NoError(t, err)
	assert.Equal(t, "Food", cat.Name)

	cat, err = resolveCategory(ctx, store, "2")
	require.NoError(t, err)
	assert.Equal(t, b.Category("food court"), cat.ID)

	_, err = resolveCategory(ctx, store, "99")
	assert.ErrorIs(t, err, common.ErrNotFound)
	_, err = resolveCategory(ctx, store, "Rent")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestTransactionFilter(t *testing.T) {
	f, err := transactionFilter("2025-02", "", "", "", 0, false)
	require.NoError(t, err)
	assert.Equal(t, "2025-02-01", f.Start.Format(model.DateLayout))
	assert.Equal(t, "2025-02-28", f.End.Format(model.DateLayout))

	f, err = transactionFilter("", "", "", "expense", 5, true)
	require.NoError(t, err)
	assert.Nil(t, f.Start)
	assert.Equal(t, model.KindExpense, *f.Kind)
	assert.Equal(t, 5, f.Limit)

	f, err = transactionFilter("2025-02", "2025-01-10", "", "", 0, false)
	require.NoError(t, err)
	assert.Equal(t, "2025-01-10", f.Start.Format(model.DateLayout))
	assert.Nil(t, f.End)

	_, err = transactionFilter("", "", "", "transfer", 0, true)
	assert.ErrorIs(t, err, model.ErrInvalidKind)
}

func TestParseAllocationAmount(t *testing.T) {
	v, err := parseAllocationAmount(" 0 ")
	require.NoError(t, err)
	assert.Zero(t, v)

	v, err = parseAllocationAmount("0.001 BTC")
	require.NoError(t, err)
	assert.Equal(t, model.Sats(100_000), v)

	for _, zero := range []string{"0 BTC", "0,000", "0.0btc"} {
		v, err = parseAllocationAmount(zero)
		require.NoError(t, err, zero)
		assert.Zero(t, v, zero)
	}

	_, err = parseAllocationAmount("-5")
	assert.Error(t, err)
}
