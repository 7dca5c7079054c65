// Package report builds read-only summaries over a range of transactions.
package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/Veraticus/sats-budget/internal/model"
	"github.com/Veraticus/sats-budget/internal/service"
)

// Period names a reporting window ending with a base month.
type Period string

// Supported periods.
const (
	CurrentMonth  Period = "current_month"
	LastMonths3   Period = "last_3_months"
	LastMonths6   Period = "last_6_months"
	LastMonths12  Period = "last_12_months"
	uncategorized        = "Unknown"
)

// ErrInvalidPeriod is returned for an unknown period name.
var ErrInvalidPeriod = errors.New("invalid period")

// Periods lists the supported periods in display order.
func Periods() []Period {
	return []Period{CurrentMonth, LastMonths3, LastMonths6, LastMonths12}
}

func (p Period) months() (int, error) {
	switch p {
	case CurrentMonth:
		return 1, nil
	case LastMonths3:
		return 3, nil
	case LastMonths6:
		return 6, nil
	case LastMonths12:
		return 12, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidPeriod, string(p))
	}
}

// PeriodRange returns the inclusive date range covering p and ending on the
// last day of base.
func PeriodRange(base model.Month, p Period) (start, end time.Time, err error) {
	if !base.Valid() {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %v", model.ErrInvalidMonth, base)
	}
	n, err := p.months()
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return base.Add(-(n - 1)).Start(), base.End(), nil
}

// Reader is the slice of a store the reports need.
type Reader interface {
	QueryTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error)
}

// Reporter answers reporting queries against a store.
type Reporter struct {
	store Reader
}

// New returns a Reporter over store.
func New(store Reader) *Reporter {
	return &Reporter{store: store}
}

// CategorySpending is one line of a spending breakdown.
type CategorySpending struct {
	Category string
	Amount   model.Sats
	Percent  float64
}

// Breakdown is spending per category over a date range.
type Breakdown struct {
	Start      time.Time
	End        time.Time
	Categories []CategorySpending
	Total      model.Sats
}

// SpendingBreakdown totals expenses per category between start and end inclusive,
// largest first.
func (r *Reporter) SpendingBreakdown(ctx context.Context, start, end time.Time) (*Breakdown, error) {
	txs, err := r.transactions(ctx, start, end, model.KindExpense)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]model.Sats)
	var total model.Sats
	for _, tx := range txs {
		name := tx.CategoryName
		if name == "" {
			name = uncategorized
		}
		byName[name] += tx.Amount
		total += tx.Amount
	}

	b := &Breakdown{
		Start:      model.Day(start),
		End:        model.Day(end),
		Total:      total,
		Categories: make([]CategorySpending, 0, len(byName)),
	}
	for name, amount := range byName {
		line := CategorySpending{Category: name, Amount: amount}
		if total > 0 {
			line.Percent = float64(amount) / float64(total) * 100
		}
		b.Categories = append(b.Categories, line)
	}
	sort.Slice(b.Categories, func(i, j int) bool {
		if b.Categories[i].Amount != b.Categories[j].Amount {
			return b.Categories[i].Amount > b.Categories[j].Amount
		}
		return b.Categories[i].Category < b.Categories[j].Category
	})

	slog.Debug("built spending breakdown", "start", b.Start.Format(model.DateLayout),
		"end", b.End.Format(model.DateLayout), "categories", len(b.Categories), "total", total)
	return b, nil
}

// FlowRow is one month of net flow.
type FlowRow struct {
	Month      model.Month
	Income     model.Sats
	Expenses   model.Sats
	Net        model.Sats
	Cumulative model.Sats
}

// NetFlow returns income, expenses and running net per month between start and
// end inclusive. Months with no transactions are omitted.
func (r *Reporter) NetFlow(ctx context.Context, start, end time.Time) ([]FlowRow, error) {
	txs, err := r.transactions(ctx, start, end, "")
	if err != nil {
		return nil, err
	}

	byMonth := make(map[model.Month]*FlowRow)
	for _, tx := range txs {
		m := model.MonthOf(tx.Date)
		row, ok := byMonth[m]
		if !ok {
			row = &FlowRow{Month: m}
			byMonth[m] = row
		}
		switch tx.Kind {
		case model.KindIncome:
			row.Income += tx.Amount
		case model.KindExpense:
			row.Expenses += tx.Amount
		}
	}

	rows := make([]FlowRow, 0, len(byMonth))
	for _, row := range byMonth {
		row.Net = row.Income - row.Expenses
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Month.Before(rows[j].Month) })

	var running model.Sats
	for i := range rows {
		running += rows[i].Net
		rows[i].Cumulative = running
	}
	return rows, nil
}

func (r *Reporter) transactions(ctx context.Context, start, end time.Time, kind model.Kind) ([]model.Transaction, error) {
	start, end = model.Day(start), model.Day(end)
	filter := service.TransactionFilter{Start: &start, End: &end}
	if kind != "" {
		filter.Kind = &kind
	}
	txs, err := r.store.QueryTransactions(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	return txs, nil
}
