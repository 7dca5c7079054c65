package sheets

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/sats-budget/internal/ledger"
	"github.com/Veraticus/sats-budget/internal/model"
)

// ReportWriter publishes a month report somewhere.
type ReportWriter interface {
	Write(ctx context.Context, report *Report) error
}

// Report is everything exported for one month.
type Report struct {
	Generated    time.Time
	Summary      *ledger.Summary
	Transactions []model.Transaction
}

// EnvelopeRow is one category line of the Envelopes section.
type EnvelopeRow struct {
	Category  string
	Group     string
	Allocated decimal.Decimal
	Rollover  decimal.Decimal
	Spent     decimal.Decimal
	Balance   decimal.Decimal
}

// TransactionRow is one line of the Transactions section.
type TransactionRow struct {
	Date        time.Time
	Kind        string
	Description string
	Category    string
	Amount      decimal.Decimal // signed, income positive
}

// toBTC converts sats to an exact BTC decimal.
func toBTC(s model.Sats) decimal.Decimal {
	return decimal.New(int64(s), -8)
}

// cell renders a BTC decimal the way USER_ENTERED input parses it back exactly.
func cell(d decimal.Decimal) string {
	return d.StringFixed(8)
}

func envelopeRows(summary *ledger.Summary) []EnvelopeRow {
	rows := make([]EnvelopeRow, 0, len(summary.Categories))
	for _, c := range summary.Categories {
		rows = append(rows, EnvelopeRow{
			Category:  c.Category.Name,
			Group:     c.Category.GroupName,
			Allocated: toBTC(c.Allocated),
			Rollover:  toBTC(c.Rollover),
			Spent:     toBTC(c.Spent),
			Balance:   toBTC(c.Balance),
		})
	}
	return rows
}

func transactionRows(txs []model.Transaction) []TransactionRow {
	rows := make([]TransactionRow, 0, len(txs))
	for i := range txs {
		tx := &txs[i]
		rows = append(rows, TransactionRow{
			Date:        tx.Date,
			Kind:        string(tx.Kind),
			Description: tx.Description,
			Category:    tx.CategoryName,
			Amount:      toBTC(tx.Signed()),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Date.After(rows[j].Date) })
	return rows
}

// buildValues lays the report out as sheet rows.
func buildValues(r *Report) [][]any {
	s := r.Summary
	envelopes := envelopeRows(s)
	txs := transactionRows(r.Transactions)

	values := make([][]any, 0, 16+len(envelopes)+len(txs))
	values = append(values,
		[]any{"Sats Budget", s.Month.String()},
		[]any{"Generated", r.Generated.UTC().Format(time.RFC3339)},
		[]any{},
		[]any{"Summary", "BTC"},
		[]any{"Income", cell(toBTC(s.Income))},
		[]any{"Rollover", cell(toBTC(s.Rollover))},
		[]any{"Allocated", cell(toBTC(s.Allocated))},
		[]any{"Spent", cell(toBTC(s.Spent()))},
		[]any{"Available to assign", cell(toBTC(s.Available))},
		[]any{},
		[]any{"Envelopes"},
		[]any{"Category", "Group", "Allocated", "Rollover", "Spent", "Balance"},
	)
	for _, e := range envelopes {
		values = append(values, []any{
			e.Category, e.Group, cell(e.Allocated), cell(e.Rollover), cell(e.Spent), cell(e.Balance),
		})
	}

	values = append(values,
		[]any{},
		[]any{"Transactions"},
		[]any{"Date", "Kind", "Description", "Category", "Amount"},
	)
	for _, t := range txs {
		values = append(values, []any{
			t.Date.Format(model.DateLayout), t.Kind, t.Description, t.Category, cell(t.Amount),
		})
	}
	return values
}
