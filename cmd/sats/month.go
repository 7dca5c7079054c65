package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Veraticus/sats-budget/internal/cli"
	"github.com/Veraticus/sats-budget/internal/ledger"
	"github.com/Veraticus/sats-budget/internal/storage"
)

func monthCmd() *cobra.Command {
	var showBTC bool

	cmd := &cobra.Command{
		Use:   "month [YYYY-MM]",
		Short: "Show the budget for a month",
		Long: `Show income, rollover, allocations and what is left to assign for a month,
followed by every category envelope.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var arg string
			if len(args) == 1 {
				arg = args[0]
			}
			m, err := parseMonth(arg)
			if err != nil {
				return err
			}

			return withStore(cmd, func(ctx context.Context, store *storage.SQLiteStorage) error {
				summary, err := ledger.New(store).MonthSummary(ctx, m)
				if err != nil {
					return err
				}
				return printSummary(cmd.OutOrStdout(), summary, showBTC)
			})
		},
	}

	cmd.Flags().BoolVar(&showBTC, "btc", false, "show amounts in BTC as well")
	return cmd
}

func printSummary(out io.Writer, s *ledger.Summary, showBTC bool) error {
	amount := cli.Amount
	if showBTC {
		amount = cli.AmountWithBTC
	}

	_, _ = fmt.Fprintln(out, cli.FormatTitle("Budget for "+s.Month.String()))

	totals := cli.NewTable(out)
	totals.Row("Income", amount(s.Income))
	totals.Row("Rollover", amount(s.Rollover))
	totals.Row("Allocated", amount(s.Allocated))
	totals.Row("Spent", amount(s.Spent()))
	totals.Row(cli.BoldStyle.Render("Available to assign"), amount(s.Available))
	if err := totals.Flush(); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(out)

	if len(s.Categories) == 0 {
		notice(out, "No categories yet. Use 'sats category add' to create one.")
		return nil
	}

	t := cli.NewTable(out)
	t.Header("CATEGORY", "GROUP", "ALLOCATED", "ROLLOVER", "SPENT", "BALANCE")
	for _, c := range s.Categories {
		balance := amount(c.Balance)
		if c.Overspent() {
			balance += " " + cli.WarningStyle.Render("overspent")
		}
		t.Row(c.Category.Name, c.Category.GroupName,
			amount(c.Allocated), amount(c.Rollover), amount(c.Spent), balance)
	}
	if err := t.Flush(); err != nil {
		return err
	}

	if s.Available < 0 {
		_, _ = fmt.Fprintln(out, "\n"+cli.FormatWarning("More is allocated than available this month."))
	}
	return nil
}
