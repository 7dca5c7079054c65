package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Veraticus/sats-budget/internal/cli"
	"github.com/Veraticus/sats-budget/internal/model"
	"github.com/Veraticus/sats-budget/internal/service"
	"github.com/Veraticus/sats-budget/internal/storage"
)

func incomeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "income",
		Short: "Record income",
	}

	var date string
	add := &cobra.Command{
		Use:   "add <amount> <description>",
		Short: "Record income received",
		Long: `Record income. Amounts are sats ("150000", "150,000") or BTC with a
suffix ("0.0015 BTC").`,
		Example: `  sats income add 2,500,000 "June salary" --date 2025-06-01
  sats income add "0.025 BTC" "Consulting"`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := model.ParseAmount(args[0])
			if err != nil {
				return err
			}
			day, err := parseDate(date)
			if err != nil {
				return err
			}

			return withStore(cmd, func(ctx context.Context, store *storage.SQLiteStorage) error {
				id, err := store.InsertIncome(ctx, amount, args[1], day)
				if err != nil {
					return fmt.Errorf("failed to record income: %w", err)
				}
				success(cmd.OutOrStdout(), "Recorded income #%d: %s on %s", id, model.FormatSats(amount), cli.Date(day))
				return nil
			})
		},
	}
	add.Flags().StringVarP(&date, "date", "d", "", "date received (YYYY-MM-DD, default today)")

	cmd.AddCommand(add)
	return cmd
}

func expenseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expense",
		Short: "Record spending",
	}

	var date string
	add := &cobra.Command{
		Use:   "add <amount> <category> <description>",
		Short: "Record spending from a category envelope",
		Example: `  sats expense add 45,000 Groceries "Farmers market"
  sats expense add "0.001 BTC" 3 "Dinner" --date 2025-06-14`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := model.ParseAmount(args[0])
			if err != nil {
				return err
			}
			day, err := parseDate(date)
			if err != nil {
				return err
			}

			return withStore(cmd, func(ctx context.Context, store *storage.SQLiteStorage) error {
				cat, err := resolveCategory(ctx, store, args[1])
				if err != nil {
					return err
				}
				id, err := store.InsertExpense(ctx, amount, args[2], cat.ID, day)
				if err != nil {
					return fmt.Errorf("failed to record expense: %w", err)
				}
				success(cmd.OutOrStdout(), "Recorded expense #%d: %s from %s on %s",
					id, model.FormatSats(amount), cat.Name, cli.Date(day))
				return nil
			})
		},
	}
	add.Flags().StringVarP(&date, "date", "d", "", "date spent (YYYY-MM-DD, default today)")

	cmd.AddCommand(add)
	return cmd
}

func txCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tx",
		Aliases: []string{"transactions"},
		Short:   "List, correct and delete transactions",
	}

	cmd.AddCommand(listTransactionsCmd())
	cmd.AddCommand(updateTransactionCmd())
	cmd.AddCommand(deleteTransactionCmd())

	return cmd
}

func listTransactionsCmd() *cobra.Command {
	var (
		month    string
		from     string
		to       string
		category string
		kind     string
		limit    int
		all      bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions, newest first",
		Long: `List transactions newest first. By default only the current month is
shown; use --month, --from/--to or --all to widen the range.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter, err := transactionFilter(month, from, to, kind, limit, all)
			if err != nil {
				return err
			}

			return withStore(cmd, func(ctx context.Context, store *storage.SQLiteStorage) error {
				if category != "" {
					cat, err := resolveCategory(ctx, store, category)
					if err != nil {
						return err
					}
					filter.CategoryID = &cat.ID
				}

				txns, err := store.QueryTransactions(ctx, filter)
				if err != nil {
					return fmt.Errorf("failed to get transactions: %w", err)
				}
				slog.Debug("Listed transactions", "count", len(txns))

				out := cmd.OutOrStdout()
				if len(txns) == 0 {
					notice(out, "No transactions found.")
					return nil
				}

				t := cli.NewTable(out)
				t.Header("ID", "DATE", "KIND", "CATEGORY", "AMOUNT", "DESCRIPTION")
				var net model.Sats
				for _, tx := range txns {
					net += tx.Signed()
					t.Row(fmt.Sprint(tx.ID), cli.Date(tx.Date), string(tx.Kind), tx.CategoryName,
						cli.Amount(tx.Signed()), tx.Description)
				}
				if err := t.Flush(); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(out, "\n%d transactions, net %s\n", len(txns), cli.Amount(net))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&month, "month", "m", "", "month to list (YYYY-MM)")
	cmd.Flags().StringVar(&from, "from", "", "first date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "last date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&category, "category", "c", "", "only this category (name or id)")
	cmd.Flags().StringVarP(&kind, "kind", "k", "", "only income or expense")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of rows")
	cmd.Flags().BoolVarP(&all, "all", "a", false, "list every transaction")

	return cmd
}

func transactionFilter(month, from, to, kind string, limit int, all bool) (service.TransactionFilter, error) {
	var filter service.TransactionFilter

	switch {
	case from != "" || to != "":
		if from != "" {
			start, err := model.ParseDate(from)
			if err != nil {
				return filter, err
			}
			filter.Start = &start
		}
		if to != "" {
			end, err := model.ParseDate(to)
			if err != nil {
				return filter, err
			}
			filter.End = &end
		}
	case !all:
		m, err := parseMonth(month)
		if err != nil {
			return filter, err
		}
		filter = service.ForMonth(m)
	}

	if kind != "" {
		k, err := model.ParseKind(kind)
		if err != nil {
			return filter, err
		}
		filter.Kind = &k
	}
	filter.Limit = limit
	return filter, nil
}

func updateTransactionCmd() *cobra.Command {
	var (
		amount      string
		date        string
		description string
		category    string
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Correct a transaction in place",
		Example: `  sats tx update 42 --amount 41,500
  sats tx update 42 --category "Dining out" --date 2025-06-13`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "transaction")
			if err != nil {
				return err
			}

			return withStore(cmd, func(ctx context.Context, store *storage.SQLiteStorage) error {
				txn, err := findTransaction(ctx, store, id)
				if err != nil {
					return err
				}

				if amount != "" {
					if txn.Amount, err = model.ParseAmount(amount); err != nil {
						return err
					}
				}
				if date != "" {
					if txn.Date, err = model.ParseDate(date); err != nil {
						return err
					}
				}
				if description != "" {
					txn.Description = description
				}
				if category != "" {
					if txn.Kind != model.KindExpense {
						return model.ErrUnexpectedCategory
					}
					cat, err := resolveCategory(ctx, store, category)
					if err != nil {
						return err
					}
					txn.CategoryID = &cat.ID
				}

				ok, err := store.UpdateTransaction(ctx, *txn)
				if err != nil {
					return fmt.Errorf("failed to update transaction: %w", err)
				}
				if !ok {
					return fmt.Errorf("transaction %d not found", id)
				}
				success(cmd.OutOrStdout(), "Updated transaction #%d", id)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&amount, "amount", "", "new amount")
	cmd.Flags().StringVarP(&date, "date", "d", "", "new date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&description, "description", "", "new description")
	cmd.Flags().StringVarP(&category, "category", "c", "", "new category for an expense")

	return cmd
}

// findTransaction scans the store for id. Transactions are only addressable
// through queries.
func findTransaction(ctx context.Context, store service.Store, id int64) (*model.Transaction, error) {
	txns, err := store.QueryTransactions(ctx, service.TransactionFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions: %w", err)
	}
	for i := range txns {
		if txns[i].ID == id {
			return &txns[i], nil
		}
	}
	return nil, fmt.Errorf("transaction %d not found", id)
}

func deleteTransactionCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "transaction")
			if err != nil {
				return err
			}

			return withStore(cmd, func(ctx context.Context, store *storage.SQLiteStorage) error {
				txn, err := findTransaction(ctx, store, id)
				if err != nil {
					return err
				}

				desc := fmt.Sprintf("%s %s on %s: %s", txn.Kind, model.FormatSats(txn.Amount), cli.Date(txn.Date), txn.Description)
				if err := cli.Confirm(confirm, yes, fmt.Sprintf("Delete transaction #%d?", id), desc); err != nil {
					return err
				}

				deleted, err := store.DeleteTransaction(ctx, id)
				if err != nil {
					return fmt.Errorf("failed to delete transaction: %w", err)
				}
				if !deleted {
					return fmt.Errorf("transaction %d not found", id)
				}
				success(cmd.OutOrStdout(), "Deleted transaction #%d", id)
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation")
	return cmd
}
