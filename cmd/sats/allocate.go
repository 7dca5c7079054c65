package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Veraticus/sats-budget/internal/cli"
	"github.com/Veraticus/sats-budget/internal/common"
	"github.com/Veraticus/sats-budget/internal/ledger"
	"github.com/Veraticus/sats-budget/internal/model"
	"github.com/Veraticus/sats-budget/internal/storage"
)

func allocateCmd() *cobra.Command {
	var (
		month string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "allocate <category> <amount>",
		Short: "Assign income to a category envelope",
		Long: `Set a category's allocation for a month, replacing any earlier allocation.

The allocation is refused when it would assign more than is available to
assign for the month, unless --force is given.`,
		Example: `  sats allocate Groceries 300,000
  sats allocate Rent "0.006 BTC" --month 2025-07`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAllocationAmount(args[1])
			if err != nil {
				return err
			}
			m, err := parseMonth(month)
			if err != nil {
				return err
			}

			return withStore(cmd, func(ctx context.Context, store *storage.SQLiteStorage) error {
				cat, err := resolveCategory(ctx, store, args[0])
				if err != nil {
					return err
				}

				engine := ledger.New(store)
				shortfall, err := engine.AllocationHeadroom(ctx, cat.ID, m, amount)
				if err != nil {
					return err
				}
				if shortfall > 0 && !force {
					return common.NewUserError(
						fmt.Sprintf("allocating %s to %s exceeds what is available in %s by %s (use --force to allocate anyway)",
							model.FormatSats(amount), cat.Name, m, model.FormatSats(shortfall)),
						common.ErrInsufficientFunds)
				}

				if err := store.UpsertAllocation(ctx, cat.ID, m, amount); err != nil {
					return fmt.Errorf("failed to save allocation: %w", err)
				}
				slog.Info("Allocated", "category", cat.Name, "month", m.String(), "amount", int64(amount), "forced", shortfall > 0)

				available, err := engine.AvailableToAssign(ctx, m)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				success(out, "Allocated %s to %s for %s", model.FormatSats(amount), cat.Name, m)
				_, _ = fmt.Fprintf(out, "  Available to assign: %s\n", cli.Amount(available))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&month, "month", "m", "", "budget month (YYYY-MM, default current)")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "allocate even when it exceeds what is available")
	return cmd
}

func unallocateCmd() *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "unallocate <category>",
		Short: "Remove a category's allocation for a month",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := parseMonth(month)
			if err != nil {
				return err
			}

			return withStore(cmd, func(ctx context.Context, store *storage.SQLiteStorage) error {
				cat, err := resolveCategory(ctx, store, args[0])
				if err != nil {
					return err
				}

				removed, err := store.DeleteAllocation(ctx, cat.ID, m)
				if err != nil {
					return fmt.Errorf("failed to remove allocation: %w", err)
				}

				out := cmd.OutOrStdout()
				if !removed {
					notice(out, "%s has no allocation for %s.", cat.Name, m)
					return nil
				}
				success(out, "Removed the %s allocation for %s", cat.Name, m)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&month, "month", "m", "", "budget month (YYYY-MM, default current)")
	return cmd
}
