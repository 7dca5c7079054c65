package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/Veraticus/sats-budget/internal/ledger"
	"github.com/Veraticus/sats-budget/internal/storage"
	"github.com/Veraticus/sats-budget/internal/tui"
)

func tuiCmd() *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Browse the budget month by month",
		Long:  `Open an interactive month browser. Use ←/→ to change month, r to reload and q to quit.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := parseMonth(month)
			if err != nil {
				return err
			}
			return withStore(cmd, func(ctx context.Context, store *storage.SQLiteStorage) error {
				return tui.Run(ctx, ledger.New(store), tui.WithMonth(m))
			})
		},
	}

	cmd.Flags().StringVarP(&month, "month", "m", "", "month to open (YYYY-MM, default current)")
	return cmd
}
