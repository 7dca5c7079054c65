package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/sats-budget/internal/cli"
	"github.com/Veraticus/sats-budget/internal/report"
	"github.com/Veraticus/sats-budget/internal/storage"
)

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Spending and cash-flow reports",
	}

	cmd.AddCommand(spendingReportCmd())
	cmd.AddCommand(flowReportCmd())

	return cmd
}

func periodFlags(cmd *cobra.Command, period, month *string) {
	names := make([]string, 0, len(report.Periods()))
	for _, p := range report.Periods() {
		names = append(names, string(p))
	}
	cmd.Flags().StringVarP(period, "period", "p", string(report.CurrentMonth), "period: "+strings.Join(names, ", "))
	cmd.Flags().StringVarP(month, "month", "m", "", "last month of the period (YYYY-MM, default current)")
}

func reportRange(period, month string) (start, end time.Time, err error) {
	base, err := parseMonth(month)
	if err != nil {
		return start, end, err
	}
	return report.PeriodRange(base, report.Period(period))
}

func spendingReportCmd() *cobra.Command {
	var period, month string

	cmd := &cobra.Command{
		Use:   "spending",
		Short: "Spending by category",
		RunE: func(cmd *cobra.Command, _ []string) error {
			start, end, err := reportRange(period, month)
			if err != nil {
				return err
			}

			return withStore(cmd, func(ctx context.Context, store *storage.SQLiteStorage) error {
				b, err := report.New(store).SpendingBreakdown(ctx, start, end)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				_, _ = fmt.Fprintln(out, cli.TitleStyle.Render(fmt.Sprintf("Spending %s to %s", cli.Date(b.Start), cli.Date(b.End))))
				if len(b.Categories) == 0 {
					notice(out, "No spending in this period.")
					return nil
				}

				t := cli.NewTable(out)
				t.Header("CATEGORY", "SPENT", "SHARE")
				for _, c := range b.Categories {
					t.Row(c.Category, cli.Amount(c.Amount), cli.Percent(c.Percent))
				}
				t.Row(cli.BoldStyle.Render("Total"), cli.Amount(b.Total), cli.Percent(100))
				return t.Flush()
			})
		},
	}

	periodFlags(cmd, &period, &month)
	return cmd
}

func flowReportCmd() *cobra.Command {
	var period, month string

	cmd := &cobra.Command{
		Use:   "flow",
		Short: "Income, expenses and cumulative net by month",
		RunE: func(cmd *cobra.Command, _ []string) error {
			start, end, err := reportRange(period, month)
			if err != nil {
				return err
			}

			return withStore(cmd, func(ctx context.Context, store *storage.SQLiteStorage) error {
				rows, err := report.New(store).NetFlow(ctx, start, end)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				_, _ = fmt.Fprintln(out, cli.TitleStyle.Render(fmt.Sprintf("Net flow %s to %s", cli.Date(start), cli.Date(end))))
				if len(rows) == 0 {
					notice(out, "No transactions in this period.")
					return nil
				}

				t := cli.NewTable(out)
				t.Header("MONTH", "INCOME", "EXPENSES", "NET", "CUMULATIVE")
				for _, r := range rows {
					t.Row(r.Month.String(), cli.Amount(r.Income), cli.Amount(r.Expenses), cli.Amount(r.Net), cli.Amount(r.Cumulative))
				}
				return t.Flush()
			})
		},
	}

	periodFlags(cmd, &period, &month)
	return cmd
}
