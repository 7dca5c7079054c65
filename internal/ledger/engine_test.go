package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/sats-budget/internal/memstore"
	"github.com/Veraticus/sats-budget/internal/model"
	"github.com/Veraticus/sats-budget/internal/service"
	"github.com/Veraticus/sats-budget/internal/testutil"
)

var (
	may  = model.MustParseMonth("2025-05")
	june = model.MustParseMonth("2025-06")
	july = model.MustParseMonth("2025-07")
	aug  = model.MustParseMonth("2025-08")
)

// forEachStore runs fn against every store implementation.
func forEachStore(t *testing.T, fn func(t *testing.T, store service.Store)) {
	t.Helper()
	t.Run("sqlite", func(t *testing.T) {
		fn(t, testutil.SetupTestDB(t))
	})
	t.Run("memory", func(t *testing.T) {
		store := memstore.New()
		t.Cleanup(func() { _ = store.Close() })
		fn(t, store)
	})
}

func mustSats(t *testing.T) func(model.Sats, error) model.Sats {
	return func(v model.Sats, err error) model.Sats {
		t.Helper()
		require.NoError(t, err)
		return v
	}
}

func TestEngine_EmptyMonth(t *testing.T) {
	forEachStore(t, func(t *testing.T, store service.Store) {
		e := New(store)
		ctx := context.Background()
		must := mustSats(t)

		assert.Equal(t, model.Sats(0), must(e.AvailableToAssign(ctx, june)))
		assert.Equal(t, model.Sats(0), must(e.RolloverAmount(ctx, june)))
		assert.Equal(t, model.Sats(0), must(e.TotalIncome(ctx, nil)))
		assert.Equal(t, model.Sats(0), must(e.TotalAllocatedDirect(ctx, june)))
		assert.Equal(t, model.Sats(0), must(e.CategoryBalance(ctx, 1, june)))
	})
}

func TestEngine_EnvelopeBalanceAndRollover(t *testing.T) {
	forEachStore(t, func(t *testing.T, store service.Store) {
		b := testutil.NewBudget(t, store).
			Income("2025-06-01", 100_000).
			Allocate("2025-06", "Groceries", 30_000).
			Expense("2025-06-12", "Groceries", 20_000)
		groceries := b.Category("Groceries")

		e := New(store)
		ctx := context.Background()
		must := mustSats(t)

		assert.Equal(t, model.Sats(10_000), must(e.CategoryBalance(ctx, groceries, june)))
		assert.Equal(t, model.Sats(20_000), must(e.CategorySpent(ctx, groceries, june)))
		assert.Equal(t, model.Sats(30_000), must(e.CategoryAllocatedDirect(ctx, groceries, june)))

		assert.Equal(t, model.Sats(10_000), must(e.CategoryRolloverBalance(ctx, groceries, july)))
		assert.Equal(t, model.Sats(10_000), must(e.CategoryBalance(ctx, groceries, july)))
		assert.Equal(t, model.Sats(70_000), must(e.RolloverAmount(ctx, july)))
		assert.Equal(t, model.Sats(70_000), must(e.AvailableToAssign(ctx, july)))
	})
}

func TestEngine_AvailableToAssign(t *testing.T) {
	tests := []struct {
		name        string
		allocations map[string]model.Sats
		want        model.Sats
	}{
		{
			name:        "partially assigned",
			allocations: map[string]model.Sats{"Rent": 50_000, "Food": 30_000},
			want:        20_000,
		},
		{
			name:        "over assigned goes negative",
			allocations: map[string]model.Sats{"Rent": 90_000, "Food": 30_000},
			want:        -20_000,
		},
		{
			name:        "nothing assigned",
			allocations: nil,
			want:        100_000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			forEachStore(t, func(t *testing.T, store service.Store) {
				b := testutil.NewBudget(t, store).Income("2025-06-03", 100_000)
				for cat, amount := range tt.allocations {
					b.Allocate("2025-06", cat, amount)
				}

				e := New(store)
				got, err := e.AvailableToAssign(context.Background(), june)
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			})
		})
	}
}

func TestEngine_OverAllocationCarriesNothing(t *testing.T) {
	forEachStore(t, func(t *testing.T, store service.Store) {
		testutil.NewBudget(t, store).
			Income("2025-06-03", 100_000).
			Allocate("2025-06", "Rent", 120_000)

		e := New(store)
		ctx := context.Background()
		must := mustSats(t)

		assert.Equal(t, model.Sats(-20_000), must(e.AvailableToAssign(ctx, june)))
		assert.Equal(t, model.Sats(0), must(e.RolloverAmount(ctx, july)))
	})
}

func TestEngine_RolloverIsSingleStep(t *testing.T) {
	forEachStore(t, func(t *testing.T, store service.Store) {
		testutil.NewBudget(t, store).
			Income("2025-05-01", 100_000).
			Allocate("2025-05", "Rent", 10_000)

		e := New(store)
		ctx := context.Background()
		must := mustSats(t)

		// June inherits May's surplus but records no income of its own.
		assert.Equal(t, model.Sats(90_000), must(e.RolloverAmount(ctx, june)))
		assert.Equal(t, model.Sats(90_000), must(e.AvailableToAssign(ctx, june)))

		// July looks only at June, which had no income.
		assert.Equal(t, model.Sats(0), must(e.RolloverAmount(ctx, july)))

		// Adding June income changes July without consulting May.
		testutil.NewBudget(t, store).
			Income("2025-06-15", 40_000).
			Allocate("2025-06", "Food", 15_000)
		assert.Equal(t, model.Sats(25_000), must(e.RolloverAmount(ctx, july)))
		assert.Equal(t, model.Sats(0), must(e.RolloverAmount(ctx, aug)))
	})
}

func TestEngine_RolloverWrapsYear(t *testing.T) {
	forEachStore(t, func(t *testing.T, store service.Store) {
		testutil.NewBudget(t, store).Income("2024-12-31", 5_000)

		e := New(store)
		got, err := e.RolloverAmount(context.Background(), model.MustParseMonth("2025-01"))
		require.NoError(t, err)
		assert.Equal(t, model.Sats(5_000), got)
	})
}

func TestEngine_CategoryRolloverEdges(t *testing.T) {
	forEachStore(t, func(t *testing.T, store service.Store) {
		b := testutil.NewBudget(t, store).
			// May: no income, allocation only.
			Allocate("2025-05", "Fun", 5_000).
			// June: income, overspent envelope.
			Income("2025-06-01", 50_000).
			Allocate("2025-06", "Dining", 10_000).
			Expense("2025-06-20", "Dining", 15_000)
		fun, dining := b.Category("Fun"), b.Category("Dining")

		e := New(store)
		ctx := context.Background()
		must := mustSats(t)

		assert.Equal(t, model.Sats(0), must(e.CategoryRolloverBalance(ctx, fun, june)),
			"previous month without income carries nothing")

		assert.Equal(t, model.Sats(-5_000), must(e.CategoryBalance(ctx, dining, june)))
		assert.Equal(t, model.Sats(0), must(e.CategoryRolloverBalance(ctx, dining, july)),
			"overspending is not carried forward")
	})
}

func TestEngine_BalanceIdentity(t *testing.T) {
	forEachStore(t, func(t *testing.T, store service.Store) {
		b := testutil.NewBudget(t, store).
			Income("2025-05-01", 80_000).
			Allocate("2025-05", "A", 20_000).
			Expense("2025-05-09", "A", 5_000).
			Allocate("2025-05", "B", 10_000).
			Expense("2025-05-10", "B", 12_000).
			Income("2025-06-01", 60_000).
			Allocate("2025-06", "A", 7_000).
			Expense("2025-06-02", "A", 30_000).
			Allocate("2025-06", "C", 1_000)

		e := New(store)
		ctx := context.Background()
		must := mustSats(t)

		for _, name := range []string{"A", "B", "C"} {
			id := b.Category(name)
			for _, m := range []model.Month{may, june, july} {
				allocated := must(e.CategoryAllocatedDirect(ctx, id, m))
				rollover := must(e.CategoryRolloverBalance(ctx, id, m))
				spent := must(e.CategorySpent(ctx, id, m))
				assert.Equal(t, allocated+rollover-spent, must(e.CategoryBalance(ctx, id, m)), "%s %s", name, m)
				assert.GreaterOrEqual(t, rollover, model.Sats(0))
			}
		}
	})
}

func TestEngine_TotalIncome(t *testing.T) {
	forEachStore(t, func(t *testing.T, store service.Store) {
		testutil.NewBudget(t, store).
			Income("2025-05-31", 1_000).
			Income("2025-06-01", 2_000).
			Income("2025-06-30", 3_000).
			Income("2025-07-01", 4_000).
			Expense("2025-06-15", "Food", 500)

		e := New(store)
		ctx := context.Background()
		must := mustSats(t)

		m := june
		assert.Equal(t, model.Sats(5_000), must(e.TotalIncome(ctx, &m)))
		assert.Equal(t, model.Sats(10_000), must(e.TotalIncome(ctx, nil)))
	})
}

func TestEngine_AllocationHeadroom(t *testing.T) {
	forEachStore(t, func(t *testing.T, store service.Store) {
		b := testutil.NewBudget(t, store).
			Income("2025-06-01", 100_000).
			Allocate("2025-06", "Rent", 80_000)
		rent, food := b.Category("Rent"), b.Category("Food")

		e := New(store)
		ctx := context.Background()
		must := mustSats(t)

		assert.Equal(t, model.Sats(0), must(e.AllocationHeadroom(ctx, food, june, 20_000)))
		assert.Equal(t, model.Sats(5_000), must(e.AllocationHeadroom(ctx, food, june, 25_000)))
		// Raising an existing allocation only counts the difference.
		assert.Equal(t, model.Sats(0), must(e.AllocationHeadroom(ctx, rent, june, 100_000)))
		assert.Equal(t, model.Sats(1), must(e.AllocationHeadroom(ctx, rent, june, 100_001)))

		b.Allocate("2025-06", "Food", 40_000)
		assert.Equal(t, model.Sats(0), must(e.AllocationHeadroom(ctx, rent, june, 70_000)),
			"lowering an allocation is always allowed")
	})
}

func TestEngine_MonthSummary(t *testing.T) {
	forEachStore(t, func(t *testing.T, store service.Store) {
		testutil.NewBudget(t, store).
			WithCategories("Utilities", "Groceries").
			Income("2025-05-01", 50_000).
			Allocate("2025-05", "Groceries", 20_000).
			Expense("2025-05-10", "Groceries", 5_000).
			Income("2025-06-01", 100_000).
			Allocate("2025-06", "Groceries", 30_000).
			Allocate("2025-06", "Utilities", 10_000).
			Expense("2025-06-12", "Groceries", 20_000).
			Expense("2025-06-14", "Utilities", 12_000)

		e := New(store)
		summary, err := e.MonthSummary(context.Background(), june)
		require.NoError(t, err)

		assert.Equal(t, june, summary.Month)
		assert.Equal(t, model.Sats(100_000), summary.Income)
		assert.Equal(t, model.Sats(30_000), summary.Rollover)
		assert.Equal(t, model.Sats(40_000), summary.Allocated)
		assert.Equal(t, model.Sats(90_000), summary.Available)
		assert.Equal(t, model.Sats(32_000), summary.Spent())

		require.Len(t, summary.Categories, 2)
		groceries, utilities := summary.Categories[0], summary.Categories[1]
		assert.Equal(t, "Groceries", groceries.Category.Name)
		assert.Equal(t, model.Sats(15_000), groceries.Rollover)
		assert.Equal(t, model.Sats(25_000), groceries.Balance)
		assert.Equal(t, "Utilities", utilities.Category.Name)
		assert.Equal(t, model.Sats(-2_000), utilities.Balance)
		assert.True(t, utilities.Overspent())

		_, err = e.MonthSummary(context.Background(), model.Month{})
		assert.ErrorIs(t, err, model.ErrInvalidMonth)
	})
}

type failingReader struct{ err error }

func (f failingReader) QueryTransactions(context.Context, service.TransactionFilter) ([]model.Transaction, error) {
	return nil, f.err
}

func (f failingReader) QueryAllocation(context.Context, int64, model.Month) (model.Sats, bool, error) {
	return 0, false, f.err
}

func (f failingReader) QueryAllocations(context.Context, model.Month) ([]model.Allocation, error) {
	return nil, f.err
}

func (f failingReader) ListCategories(context.Context) ([]model.Category, error) {
	return nil, f.err
}

func TestEngine_PropagatesStoreErrors(t *testing.T) {
	boom := errors.New("disk on fire")
	e := New(failingReader{err: boom})
	ctx := context.Background()

	_, err := e.AvailableToAssign(ctx, june)
	assert.ErrorIs(t, err, boom)
	_, err = e.CategoryBalance(ctx, 1, june)
	assert.ErrorIs(t, err, boom)
	_, err = e.MonthSummary(ctx, june)
	assert.ErrorIs(t, err, boom)
}
